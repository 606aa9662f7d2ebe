package iodb

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Command is an external tool invocation.
type Command struct {
	Binary string
	Args   []string

	// Env is added to the environment of the current process.
	Env []string
}

// Runner runs external tools such as pg_dump and psql.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// execRunner runs commands with os/exec.
type execRunner struct{}

// Run executes the command and waits for it. Output of the tool is
// returned inside the error when the tool fails.
func (execRunner) Run(ctx context.Context, cmd Command) error {
	if cmd.Binary == "" {
		return fmt.Errorf("binary is required")
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...)
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var stderr bytes.Buffer
	c.Stderr = &stderr
	c.WaitDelay = 5 * time.Second

	if err := c.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s killed by context: %w", cmd.Binary, ctx.Err())
		}
		return fmt.Errorf("%s exit code %d: %w: %s",
			cmd.Binary, c.ProcessState.ExitCode(), err,
			strings.TrimSpace(stderr.String()),
		)
	}
	return nil
}
