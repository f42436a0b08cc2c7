package prlctl

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxCapturedOutput caps how much controller output is kept per stream.
// The controller is chatty on some errors; nothing downstream needs more.
const maxCapturedOutput = 50000

// Output is the captured result of one controller invocation.
type Output struct {
	Stdout string
	Stderr string
}

// Runner invokes the virtualization controller with an argument vector and
// returns its captured output. Implementations fail with an error on
// non-zero exit, spawn failure, or timeout. The argument vector is passed
// through verbatim; callers are responsible for sanitizing any untrusted
// identifier before it gets here.
type Runner interface {
	Run(ctx context.Context, args ...string) (Output, error)
}

// CLI is the production Runner. It spawns the controller binary as a
// subprocess per call; there is no connection state to hold.
type CLI struct {
	path    string
	timeout time.Duration
	log     *zap.Logger
}

// NewCLI returns a Runner that executes the controller at path with the
// given per-call timeout. A zero timeout means calls run until ctx is done.
func NewCLI(path string, timeout time.Duration, log *zap.Logger) *CLI {
	if log == nil {
		log = zap.NewNop()
	}
	return &CLI{path: path, timeout: timeout, log: log}
}

// Run executes one controller command.
func (c *CLI) Run(ctx context.Context, args ...string) (Output, error) {
	if len(args) == 0 {
		return Output{}, fmt.Errorf("no controller command given")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.log.Debug("running controller command",
		zap.String("path", c.path),
		zap.Strings("args", args))

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	out := Output{
		Stdout: truncate(stdout.String()),
		Stderr: truncate(stderr.String()),
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			c.log.Warn("controller command timed out",
				zap.Strings("args", args),
				zap.Duration("timeout", c.timeout))
			return out, fmt.Errorf("%s %s timed out after %v", c.path, args[0], c.timeout)
		}
		c.log.Warn("controller command failed",
			zap.Strings("args", args),
			zap.Error(err))
		msg := strings.TrimSpace(out.Stderr)
		if msg == "" {
			msg = err.Error()
		}
		return out, fmt.Errorf("%s %s failed: %s", c.path, args[0], msg)
	}

	c.log.Debug("controller command completed",
		zap.Strings("args", args),
		zap.Duration("elapsed", elapsed),
		zap.Int("stdout_bytes", len(out.Stdout)))
	return out, nil
}

func truncate(s string) string {
	if len(s) > maxCapturedOutput {
		return s[:maxCapturedOutput] + "\n...[truncated]"
	}
	return s
}
