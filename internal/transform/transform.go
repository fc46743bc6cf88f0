// Package transform rewrites submitted React component source into the shape
// the scaffolded project expects as its application root.
//
// The transform is pattern-based text substitution, not a TSX parse: the
// output is never validated as compilable code. Unlike a blind rewrite,
// though, a source with no default-exported function declaration is rejected
// with an explicit error instead of being silently decorated with a duplicate
// export statement.
package transform

import (
	"regexp"
	"strings"

	forgeerrors "github.com/previewlab/forge/internal/errors"
)

// RootComponentName is the fixed identifier every submitted component is
// renamed to. The scaffolded entry point imports and mounts this name.
const RootComponentName = "App"

// StylesheetImport is the import line the application entry file must carry
// so the generated Tailwind stylesheet is bundled.
const StylesheetImport = `import "./index.css";`

var (
	// A leading client-only directive, e.g. `"use client";` or 'use client'.
	clientDirectiveRe = regexp.MustCompile(`^\s*(?:"use client"|'use client');?[ \t]*\r?\n?`)

	// A default-exported function declaration, named or anonymous.
	defaultExportFuncRe = regexp.MustCompile(`export\s+default\s+function(\s+[A-Za-z_$][A-Za-z0-9_$]*)?\s*\(`)
)

// StripClientDirective removes a leading "use client" directive line if
// present; otherwise the source is returned unchanged.
func StripClientDirective(src string) string {
	return clientDirectiveRe.ReplaceAllString(src, "")
}

// RenameDefaultExport rewrites the first default-exported function
// declaration into a plain function declaration named RootComponentName and
// appends the matching default-export statement. It returns
// errors.ErrNoDefaultExport when the source has no such declaration.
func RenameDefaultExport(src string) (string, error) {
	if !defaultExportFuncRe.MatchString(src) {
		return "", forgeerrors.ErrNoDefaultExport
	}

	replaced := false
	out := defaultExportFuncRe.ReplaceAllStringFunc(src, func(match string) string {
		if replaced {
			return match
		}
		replaced = true
		return "function " + RootComponentName + "("
	})

	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out + "\nexport default " + RootComponentName + ";\n", nil
}

// Apply runs the full transform: directive strip, then export normalization.
func Apply(src string) (string, error) {
	return RenameDefaultExport(StripClientDirective(src))
}

// EnsureStylesheetImport prepends StylesheetImport to entry unless the import
// is already present. Running it twice yields the same result as once.
func EnsureStylesheetImport(entry string) string {
	if strings.Contains(entry, StylesheetImport) ||
		strings.Contains(entry, `import './index.css'`) ||
		strings.Contains(entry, `import "./index.css"`) {
		return entry
	}
	return StylesheetImport + "\n" + entry
}
