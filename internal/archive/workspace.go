// Package archive builds and unpacks the self-describing backup archive:
// a zip container holding files/, database.sql and an optional
// backup_info.txt manifest.
package archive

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Workspace is a scoped temporary directory owned by exactly one operation.
// It is removed on every exit path: normal return, error return, and
// interrupt signals.
type Workspace struct {
	Root string

	sigCh chan os.Signal
	once  sync.Once
}

// NewWorkspace creates the temporary directory and installs a signal
// handler that removes it before the process dies.
func NewWorkspace(prefix string) (*Workspace, error) {
	root, err := os.MkdirTemp("", prefix)
	if err != nil {
		return nil, err
	}

	w := &Workspace{
		Root:  root,
		sigCh: make(chan os.Signal, 1),
	}
	signal.Notify(w.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		if _, ok := <-w.sigCh; ok {
			os.RemoveAll(root)
			os.Exit(1)
		}
	}()
	return w, nil
}

// Close removes the workspace and detaches the signal handler. Safe to
// call more than once.
func (w *Workspace) Close() {
	w.once.Do(func() {
		signal.Stop(w.sigCh)
		close(w.sigCh)
		os.RemoveAll(w.Root)
	})
}
