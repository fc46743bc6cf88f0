package runner

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStreamsOutput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewExecRunner(&stdout, &stderr, "sh")

	err := r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo hello"},
	})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "hello")
}

func TestRunNonZeroExit(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewExecRunner(&stdout, &stderr, "sh")

	err := r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo broken build 1>&2 && exit 3"},
	})
	require.Error(t, err)
	// The tool's own failure text is part of the error.
	assert.Contains(t, err.Error(), "broken build")
	assert.Contains(t, err.Error(), "exit status 3")
}

func TestRunRejectsUnlistedCommand(t *testing.T) {
	r := NewExecRunner(nil, nil, "npm")

	err := r.Run(context.Background(), Command{Name: "rm", Args: []string{"-rf", "/"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowlisted")
}

func TestRunRejectsShellMetacharacters(t *testing.T) {
	r := NewExecRunner(nil, nil, "npm")

	err := r.Run(context.Background(), Command{Name: "npm", Args: []string{"install; rm -rf /"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid argument")
}

func TestRunHonorsContextCancellation(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewExecRunner(&stdout, &stderr, "sleep")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := r.Run(ctx, Command{Name: "sleep", Args: []string{"10"}})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Contains(t, err.Error(), "timed out or was cancelled")
}

func TestRunUsesWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	var stdout bytes.Buffer
	r := NewExecRunner(&stdout, nil, "pwd")

	require.NoError(t, r.Run(context.Background(), Command{Name: "pwd", Dir: dir}))
	assert.Contains(t, stdout.String(), dir)
}

func TestTailBufferKeepsTail(t *testing.T) {
	tail := newTailBuffer(8)
	_, err := tail.Write([]byte("0123456789abcdef"))
	require.NoError(t, err)
	assert.Equal(t, "89abcdef", tail.String())
}
