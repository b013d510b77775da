package environment

import (
	"context"
	"errors"
	"strings"
)

// fakeRunner scripts command output for tests. Keys are the command name
// followed by its arguments, space-joined.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	paths   map[string]string
	calls   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: map[string]string{},
		errs:    map[string]error{},
		paths:   map[string]string{},
	}
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if out, ok := f.outputs[key]; ok {
		return []byte(out), nil
	}
	return nil, errors.New("command not scripted: " + key)
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if path, ok := f.paths[name]; ok {
		return path, nil
	}
	return "", errors.New("executable file not found in $PATH")
}
