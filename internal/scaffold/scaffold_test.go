package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

func readArtifact(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, rel))
	require.NoError(t, err)
	return string(data)
}

func TestWriterArtifacts(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, DefaultAlias)

	require.NoError(t, w.WriteTailwindConfig())
	require.NoError(t, w.WriteGlobalStylesheet())
	require.NoError(t, w.WriteTSConfig())
	require.NoError(t, w.WriteViteConfig())

	snaps.MatchSnapshot(t, readArtifact(t, dir, "tailwind.config.js"))
	snaps.MatchSnapshot(t, readArtifact(t, dir, filepath.Join("src", "index.css")))
	snaps.MatchSnapshot(t, readArtifact(t, dir, "tsconfig.json"))
	snaps.MatchSnapshot(t, readArtifact(t, dir, "vite.config.ts"))
}

func TestGlobalStylesheetAtRules(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, DefaultAlias)
	require.NoError(t, w.WriteGlobalStylesheet())

	css := readArtifact(t, dir, filepath.Join("src", "index.css"))
	assert.Contains(t, css, "@tailwind base;")
	assert.Contains(t, css, "@tailwind components;")
	assert.Contains(t, css, "@tailwind utilities;")
}

func TestAliasFlowsIntoBothConfigs(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, AliasConfig{Alias: "~", SourceDir: "app"})

	require.NoError(t, w.WriteTSConfig())
	require.NoError(t, w.WriteViteConfig())

	tsconfig := readArtifact(t, dir, "tsconfig.json")
	assert.Contains(t, tsconfig, `"~/*": ["./app/*"]`)

	vite := readArtifact(t, dir, "vite.config.ts")
	assert.Contains(t, vite, `"~": path.resolve(__dirname, "./app")`)
}

func TestWriteAppComponent(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, DefaultAlias)

	require.NoError(t, w.WriteAppComponent("function App() {}\n\nexport default App;\n"))
	content := readArtifact(t, dir, filepath.Join("src", "App.tsx"))
	assert.Contains(t, content, "function App()")
}

func TestRewriteEntryFile(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, DefaultAlias)

	entryPath := w.EntryFilePath()
	require.NoError(t, os.MkdirAll(filepath.Dir(entryPath), 0o755))
	require.NoError(t, os.WriteFile(entryPath, []byte("import App from \"./App\";\n"), 0o644))

	require.NoError(t, w.RewriteEntryFile(func(s string) string {
		return "// banner\n" + s
	}))
	content := readArtifact(t, dir, filepath.Join("src", "main.tsx"))
	assert.True(t, strings.HasPrefix(content, "// banner\n"))

	// A rewrite that changes nothing leaves the file untouched.
	require.NoError(t, w.RewriteEntryFile(func(s string) string { return s }))
}

func TestRewriteEntryFileMissing(t *testing.T) {
	w := NewWriter(t.TempDir(), DefaultAlias)
	err := w.RewriteEntryFile(func(s string) string { return s })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading entry file")
}
