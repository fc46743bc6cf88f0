// Package errors defines the error types surfaced by the build pipeline.
//
// Every pipeline failure is terminal for the request that triggered it and is
// reported to the HTTP caller verbatim, with one exception: shadcn/ui
// initialization failures are normalized to a fixed message so tool-specific
// noise never reaches clients. The underlying cause stays reachable through
// errors.Unwrap for logging.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors compared with errors.Is across the pipeline and HTTP layer.
var (
	// ErrNoCode is returned when a build request carries no component source.
	ErrNoCode = errors.New("No code provided")

	// ErrNoDefaultExport is returned when the submitted component source does
	// not contain an `export default function` declaration to rewrite.
	ErrNoDefaultExport = errors.New("component has no default-exported function declaration")

	// ErrBuildOutputMissing is returned when the bundler exits zero but the
	// expected output directory does not exist.
	ErrBuildOutputMissing = errors.New("build output directory missing")

	// ErrTooManyBuilds is returned when the concurrent build limit is reached.
	ErrTooManyBuilds = errors.New("too many concurrent builds")
)

// shadcnInitMessage is the fixed client-facing message for component library
// initialization failures.
const shadcnInitMessage = "shadcn/ui initialization failed"

// StepError wraps a failure from one pipeline step with enough context to
// identify the step and the external tool involved.
type StepError struct {
	Step string // pipeline step name, e.g. "scaffold", "install", "build"
	Tool string // external command, empty for internal steps
	Err  error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.Tool != "" {
		return fmt.Sprintf("step %s (%s): %v", e.Step, e.Tool, e.Err)
	}
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StepError) Unwrap() error {
	return e.Err
}

// NewStepError wraps err as a failure of the named step.
func NewStepError(step, tool string, err error) *StepError {
	return &StepError{Step: step, Tool: tool, Err: err}
}

// ShadcnInitError normalizes a shadcn/ui initializer failure. The message is
// fixed; the original cause remains available via Unwrap.
type ShadcnInitError struct {
	cause error
}

// NewShadcnInitError wraps cause in a ShadcnInitError.
func NewShadcnInitError(cause error) *ShadcnInitError {
	return &ShadcnInitError{cause: cause}
}

// Error returns the fixed normalized message.
func (e *ShadcnInitError) Error() string {
	return shadcnInitMessage
}

// Unwrap returns the underlying initializer failure.
func (e *ShadcnInitError) Unwrap() error {
	return e.cause
}

// ClientMessage returns the text to surface to an HTTP caller for err.
// A ShadcnInitError anywhere in the chain collapses the whole message to the
// fixed normalized text; every other failure is reported verbatim.
func ClientMessage(err error) string {
	if err == nil {
		return ""
	}
	var initErr *ShadcnInitError
	if errors.As(err, &initErr) {
		return initErr.Error()
	}
	return err.Error()
}
