package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	forgeerrors "github.com/previewlab/forge/internal/errors"
)

func TestStripClientDirective(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "double quoted with semicolon",
			src:  "\"use client\";\nexport default function Foo() {}",
			want: "export default function Foo() {}",
		},
		{
			name: "single quoted without semicolon",
			src:  "'use client'\nexport default function Foo() {}",
			want: "export default function Foo() {}",
		},
		{
			name: "preceded by blank lines",
			src:  "\n\n\"use client\";\nconst x = 1;",
			want: "const x = 1;",
		},
		{
			name: "no directive is a no-op",
			src:  "export default function Foo() {}",
			want: "export default function Foo() {}",
		},
		{
			name: "directive mid-file is untouched",
			src:  "const a = 1;\n\"use client\";\n",
			want: "const a = 1;\n\"use client\";\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripClientDirective(tt.src))
		})
	}
}

func TestRenameDefaultExport(t *testing.T) {
	t.Run("named function", func(t *testing.T) {
		out, err := RenameDefaultExport("export default function MyWidget() { return <div/>; }")
		require.NoError(t, err)
		assert.Contains(t, out, "function App(")
		assert.NotContains(t, out, "MyWidget")
		assert.True(t, strings.HasSuffix(out, "export default App;\n"))
	})

	t.Run("anonymous function", func(t *testing.T) {
		out, err := RenameDefaultExport("export default function () { return null; }")
		require.NoError(t, err)
		assert.Contains(t, out, "function App(")
		assert.True(t, strings.HasSuffix(out, "export default App;\n"))
	})

	t.Run("only first declaration is renamed", func(t *testing.T) {
		src := "export default function A() {}\nexport default function B() {}\n"
		out, err := RenameDefaultExport(src)
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(out, "function App("))
		assert.Contains(t, out, "function B(")
	})

	t.Run("no default export is rejected", func(t *testing.T) {
		_, err := RenameDefaultExport("const App = () => <div/>;")
		assert.ErrorIs(t, err, forgeerrors.ErrNoDefaultExport)
	})
}

func TestApply(t *testing.T) {
	src := "\"use client\";\nexport default function Foo(){ return <div>Hi</div>; }"
	out, err := Apply(src)
	require.NoError(t, err)

	assert.NotContains(t, out, "use client")
	assert.Contains(t, out, "function App(")
	assert.Contains(t, out, "<div>Hi</div>")
	assert.True(t, strings.HasSuffix(out, "export default App;\n"))
}

func TestEnsureStylesheetImport(t *testing.T) {
	entry := "import React from \"react\";\nimport App from \"./App\";\n"

	once := EnsureStylesheetImport(entry)
	assert.True(t, strings.HasPrefix(once, StylesheetImport+"\n"))

	// Idempotent: a second run changes nothing.
	twice := EnsureStylesheetImport(once)
	assert.Equal(t, once, twice)
	assert.Equal(t, 1, strings.Count(twice, "index.css"))

	// Single-quoted variants are recognized as already present.
	singleQuoted := "import './index.css'\nimport App from './App';\n"
	assert.Equal(t, singleQuoted, EnsureStylesheetImport(singleQuoted))
}
