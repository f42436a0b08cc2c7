package prlctl

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCLIRunCapturesStdout(t *testing.T) {
	cli := NewCLI("/bin/echo", 5*time.Second, zap.NewNop())

	out, err := cli.Run(context.Background(), "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out.Stdout)
	assert.Empty(t, out.Stderr)
}

func TestCLIRunNonZeroExit(t *testing.T) {
	cli := NewCLI("/bin/sh", 5*time.Second, zap.NewNop())

	out, err := cli.Run(context.Background(), "-c", "echo oops >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oops")
	assert.Contains(t, out.Stderr, "oops")
}

func TestCLIRunSpawnFailure(t *testing.T) {
	cli := NewCLI("/nonexistent/prlctl", time.Second, zap.NewNop())

	_, err := cli.Run(context.Background(), "list", "--all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list")
}

func TestCLIRunTimeout(t *testing.T) {
	cli := NewCLI("/bin/sleep", 50*time.Millisecond, zap.NewNop())

	_, err := cli.Run(context.Background(), "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestCLIRunNoArgs(t *testing.T) {
	cli := NewCLI("/bin/echo", time.Second, nil)

	_, err := cli.Run(context.Background())
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", maxCapturedOutput+100)
	got := truncate(long)
	assert.True(t, strings.HasSuffix(got, "...[truncated]"))
	assert.Less(t, len(got), len(long))

	assert.Equal(t, "short", truncate("short"))
}
