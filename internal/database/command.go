// Package database builds and executes the dialect-parameterized dump and
// restore client invocations, both natively and through docker exec.
package database

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// CommandSpec describes a single client invocation. Stdin feeds restores,
// Stdout collects dumps.
type CommandSpec struct {
	Name   string
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
}

// Executor runs client commands. The orchestrators receive a fake in tests.
type Executor interface {
	Execute(ctx context.Context, spec CommandSpec) error
}

type execExecutor struct{}

// NewExecExecutor returns an Executor backed by os/exec.
func NewExecExecutor() Executor {
	return execExecutor{}
}

// maxStderr bounds how much client stderr is carried into error messages.
const maxStderr = 512

func (execExecutor) Execute(ctx context.Context, spec CommandSpec) error {
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Stdin = spec.Stdin
	cmd.Stdout = spec.Stdout

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// The command line is never echoed here: it can carry credentials.
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderr {
			msg = msg[:maxStderr] + "..."
		}
		if msg != "" {
			return fmt.Errorf("%s failed: %w (stderr: %s)", spec.Name, err, msg)
		}
		return fmt.Errorf("%s failed: %w", spec.Name, err)
	}
	return nil
}

// splitHostPort separates an optional ":port" suffix from a DB_HOST value.
// A suffix that is not numeric (socket paths use "host:/path") is left on
// the host untouched.
func splitHostPort(host string) (string, string) {
	idx := strings.LastIndex(host, ":")
	if idx < 0 {
		return host, ""
	}
	port := host[idx+1:]
	if port == "" || strings.ContainsAny(port, "/\\") {
		return host, ""
	}
	for _, r := range port {
		if r < '0' || r > '9' {
			return host, ""
		}
	}
	return host[:idx], port
}
