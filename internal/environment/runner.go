package environment

import (
	"bytes"
	"context"
	"os/exec"
)

// CommandRunner abstracts external process invocation so detection and
// resolution logic can be tested without docker or database clients installed.
type CommandRunner interface {
	// Run executes a command and returns its combined stdout. A non-nil
	// error carries the process exit failure.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// LookPath reports where a binary lives on PATH, or an error when absent.
	LookPath(name string) (string, error)
}

type execRunner struct{}

// NewExecRunner returns a CommandRunner backed by os/exec.
func NewExecRunner() CommandRunner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	err := cmd.Run()
	return stdout.Bytes(), err
}

func (execRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
