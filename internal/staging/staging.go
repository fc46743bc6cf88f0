// Package staging manages the per-request filesystem workspace.
//
// Every build request gets its own uniquely named directory so concurrent
// requests never race on shared paths. The decoded component source is staged
// inside that directory and the whole tree is removed when the request
// completes, success or failure.
package staging

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/google/uuid"
)

// StagedFileName is the fixed name of the staged component source inside a
// workspace.
const StagedFileName = "component.tsx"

// Workspace is an isolated directory tree for one build request.
type Workspace struct {
	ID   string // request-scoped identifier, also the directory name suffix
	Root string // absolute path of the workspace directory
}

// DecodeSource decodes a base64 payload and verifies it is valid UTF-8 text.
// Nothing beyond the decode is validated; the source may or may not be
// compilable component code.
func DecodeSource(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decoding component source: %w", err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("decoded component source is not valid UTF-8")
	}
	return string(raw), nil
}

// NewWorkspace creates a fresh workspace under root. An empty root means the
// system temporary directory. A stale directory with the same name is removed
// first, though the uuid suffix makes collisions practically impossible.
func NewWorkspace(root string) (*Workspace, error) {
	if root == "" {
		root = os.TempDir()
	}

	id := uuid.NewString()
	dir := filepath.Join(root, "forge-"+id)

	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("cleaning stale workspace %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace %s: %w", dir, err)
	}

	return &Workspace{ID: id, Root: dir}, nil
}

// StagedPath returns the path of the staged component source.
func (w *Workspace) StagedPath() string {
	return filepath.Join(w.Root, StagedFileName)
}

// ProjectDir returns the path of the scaffolded project named name.
func (w *Workspace) ProjectDir(name string) string {
	return filepath.Join(w.Root, name)
}

// StageSource writes the decoded component source into the workspace,
// replacing any prior file at that path.
func (w *Workspace) StageSource(source string) error {
	if err := os.WriteFile(w.StagedPath(), []byte(source), 0o644); err != nil {
		return fmt.Errorf("staging component source: %w", err)
	}
	return nil
}

// ReadStaged loads the staged component source, failing with a message that
// names the missing path when it does not exist.
func (w *Workspace) ReadStaged() (string, error) {
	data, err := os.ReadFile(w.StagedPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("staged component file not found at %s", w.StagedPath())
		}
		return "", fmt.Errorf("reading staged component: %w", err)
	}
	return string(data), nil
}

// Cleanup removes the whole workspace tree. It is safe to call more than
// once.
func (w *Workspace) Cleanup() error {
	return os.RemoveAll(w.Root)
}
