// Package scaffold writes the generated configuration artifacts into a
// scaffolded Vite project: the Tailwind config, the global stylesheet, the
// TypeScript path-alias config, and the bundler config wiring the same alias
// into module resolution.
package scaffold

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// AliasConfig describes the single path alias shared by the TypeScript and
// bundler configurations.
type AliasConfig struct {
	Alias     string // alias prefix, e.g. "@"
	SourceDir string // local source directory the alias resolves to, e.g. "src"
}

// DefaultAlias is the alias configuration shadcn/ui expects.
var DefaultAlias = AliasConfig{Alias: "@", SourceDir: "src"}

var (
	tsconfigTmpl   = template.Must(template.New("tsconfig").Parse(tsconfigTemplate))
	viteConfigTmpl = template.Must(template.New("vite").Parse(viteConfigTemplate))
)

// Writer regenerates configuration artifacts inside one project directory.
type Writer struct {
	projectDir string
	alias      AliasConfig
}

// NewWriter creates a Writer for projectDir using alias.
func NewWriter(projectDir string, alias AliasConfig) *Writer {
	return &Writer{projectDir: projectDir, alias: alias}
}

// WriteTailwindConfig overwrites tailwind.config.js with the fixed template.
func (w *Writer) WriteTailwindConfig() error {
	return w.write("tailwind.config.js", []byte(tailwindConfig))
}

// WriteGlobalStylesheet overwrites src/index.css with the three Tailwind
// at-rules.
func (w *Writer) WriteGlobalStylesheet() error {
	return w.write(filepath.Join("src", "index.css"), []byte(globalStylesheet))
}

// WriteTSConfig overwrites tsconfig.json with the path-alias document.
func (w *Writer) WriteTSConfig() error {
	content, err := render(tsconfigTmpl, w.alias)
	if err != nil {
		return err
	}
	return w.write("tsconfig.json", content)
}

// WriteViteConfig overwrites vite.config.ts, wiring the alias into module
// resolution and enabling the React plugin.
func (w *Writer) WriteViteConfig() error {
	content, err := render(viteConfigTmpl, w.alias)
	if err != nil {
		return err
	}
	return w.write("vite.config.ts", content)
}

// WriteAppComponent installs source as the application root component.
func (w *Writer) WriteAppComponent(source string) error {
	return w.write(filepath.Join("src", "App.tsx"), []byte(source))
}

// EntryFilePath returns the application entry file path.
func (w *Writer) EntryFilePath() string {
	return filepath.Join(w.projectDir, "src", "main.tsx")
}

// RewriteEntryFile applies rewrite to the entry file's current contents and
// writes the result back only when it changed.
func (w *Writer) RewriteEntryFile(rewrite func(string) string) error {
	path := w.EntryFilePath()
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading entry file: %w", err)
	}

	updated := rewrite(string(data))
	if updated == string(data) {
		return nil
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("rewriting entry file: %w", err)
	}
	return nil
}

func (w *Writer) write(rel string, content []byte) error {
	path := filepath.Join(w.projectDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	return nil
}

func render(tmpl *template.Template, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering %s template: %w", tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}
