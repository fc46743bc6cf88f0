// Package runner executes external build and deploy tools with command
// allowlist validation.
//
// Every invocation is synchronous: stdout and stderr stream to the runner's
// configured writers for observability while a bounded tail is retained so a
// non-zero exit can report the tool's own failure text. Commands run under
// the caller's context, so cancellation or a step timeout terminates the
// child process.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// outputTailLimit bounds how much tool output is kept for error messages.
const outputTailLimit = 4096

// Command describes one external tool invocation.
type Command struct {
	Dir  string   // working directory, empty for the process default
	Name string   // executable name, must be allowlisted
	Args []string // arguments, passed verbatim (no shell involved)
	Env  []string // extra environment entries appended to os.Environ
}

// Executor runs external commands. Implementations must treat any non-zero
// exit as an error. The pipeline depends on this interface so tests can
// substitute a mock.
type Executor interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner is the os/exec backed Executor.
type ExecRunner struct {
	stdout  io.Writer
	stderr  io.Writer
	allowed map[string]bool
}

// NewExecRunner creates an ExecRunner that streams tool output to stdout and
// stderr and permits only the named executables.
func NewExecRunner(stdout, stderr io.Writer, allowed ...string) *ExecRunner {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	allowedSet := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		allowedSet[name] = true
	}
	return &ExecRunner{stdout: stdout, stderr: stderr, allowed: allowedSet}
}

// Run executes cmd, streaming its output, and returns an error carrying the
// tail of the combined output when the tool exits non-zero.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	if err := r.validate(cmd); err != nil {
		return fmt.Errorf("command validation failed: %w", err)
	}

	tail := newTailBuffer(outputTailLimit)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = io.MultiWriter(r.stdout, tail)
	c.Stderr = io.MultiWriter(r.stderr, tail)
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	if err := c.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s timed out or was cancelled: %w", cmd.Name, ctx.Err())
		}
		if out := tail.String(); out != "" {
			return fmt.Errorf("%s %s failed: %w\nOutput: %s",
				cmd.Name, strings.Join(cmd.Args, " "), err, out)
		}
		return fmt.Errorf("%s %s failed: %w", cmd.Name, strings.Join(cmd.Args, " "), err)
	}

	return nil
}

// validate checks the command and arguments to prevent command injection.
func (r *ExecRunner) validate(cmd Command) error {
	if cmd.Name == "" {
		return fmt.Errorf("empty command")
	}
	if !r.allowed[cmd.Name] {
		return fmt.Errorf("command %q is not allowlisted", cmd.Name)
	}
	for _, arg := range cmd.Args {
		if err := validateArgument(arg); err != nil {
			return fmt.Errorf("invalid argument %q: %w", arg, err)
		}
	}
	return nil
}

// validateArgument rejects shell metacharacters. Arguments are never passed
// through a shell, but some npm lifecycle scripts re-evaluate them.
func validateArgument(arg string) error {
	for _, char := range []string{";", "&", "|", "`", "$(", "\n"} {
		if strings.Contains(arg, char) {
			return fmt.Errorf("contains %q", char)
		}
	}
	return nil
}

// tailBuffer retains the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.limit {
		t.buf = t.buf[len(t.buf)-t.limit:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(string(t.buf))
}
