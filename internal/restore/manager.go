// Package restore replaces a live site from a backup archive. The run
// is an explicit state machine so every failure names the phase it
// happened in and nothing destructive runs before the archive is
// proven valid.
package restore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"wp-backup/internal/archive"
	"wp-backup/internal/database"
	"wp-backup/internal/display"
	"wp-backup/internal/environment"
	apperrors "wp-backup/internal/errors"
	"wp-backup/internal/logging"
	"wp-backup/internal/wpconfig"
)

// State identifies a phase of the restore run.
type State string

const (
	StateValidating           State = "validating"
	StateDetectingEnvironment State = "detecting_environment"
	StateExtractingConfig     State = "extracting_config"
	StateRestoringDatabase    State = "restoring_database"
	StateRestoringFiles       State = "restoring_files"
	StateDone                 State = "done"
	StateFailed               State = "failed"
)

// Options configures a restore run.
type Options struct {
	ArchivePath string
	SiteRoot    string
	DBOverride  string
	AutoApprove bool
	Timeout     time.Duration
}

// Result describes a completed restore.
type Result struct {
	ArchivePath   string
	SiteRoot      string
	SafetyNetPath string
	Environment   *environment.Descriptor
	DatabaseName  string
	Duration      time.Duration
}

// ErrAborted is returned when the operator declines the confirmation.
var ErrAborted = fmt.Errorf("restore aborted by operator")

// Manager runs restores.
type Manager struct {
	runner    environment.CommandRunner
	executor  database.Executor
	logger    *logging.Logger
	display   *display.Service
	confirmer *display.Confirmer
	now       func() time.Time

	state State
}

// NewManager creates a restore manager.
func NewManager(runner environment.CommandRunner, executor database.Executor, logger *logging.Logger, disp *display.Service, confirmer *display.Confirmer) *Manager {
	return &Manager{
		runner:    runner,
		executor:  executor,
		logger:    logger,
		display:   disp,
		confirmer: confirmer,
		now:       time.Now,
	}
}

// State returns the phase the manager is currently in.
func (m *Manager) State() State {
	return m.state
}

func (m *Manager) transition(next State, runID string) {
	m.state = next
	m.logger.WithFields(map[string]interface{}{
		"run_id": runID,
		"state":  string(next),
	}).Debug("Restore state transition")
}

// Run performs a full restore. The live site is only touched after the
// archive has been extracted and validated and the database restore has
// succeeded; the previous file tree is kept under a timestamped name
// rather than deleted.
func (m *Manager) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	runID := uuid.New().String()
	start := m.now()

	result, err := m.run(ctx, runID, opts)
	if err != nil {
		m.transition(StateFailed, runID)
		return nil, err
	}
	result.Duration = m.now().Sub(start)
	m.transition(StateDone, runID)
	return result, nil
}

func (m *Manager) run(ctx context.Context, runID string, opts Options) (*Result, error) {
	m.transition(StateValidating, runID)

	archivePath, err := filepath.Abs(opts.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("resolving archive path: %w", err)
	}
	if _, err := os.Stat(archivePath); err != nil {
		return nil, apperrors.NewInvalidArchive(fmt.Sprintf("archive %s not found", archivePath), err)
	}
	siteRoot, err := filepath.Abs(opts.SiteRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving site root: %w", err)
	}

	ws, err := archive.NewWorkspace("wp-restore-")
	if err != nil {
		return nil, apperrors.NewFileRestoreIO("cannot create extraction workspace", err)
	}
	defer ws.Close()

	extractStart := m.now()
	extracted, err := archive.ExtractAndValidate(archivePath, ws.Root)
	m.logger.LogArchiveOperation("extract", archivePath, 0, m.now().Sub(extractStart), err)
	if err != nil {
		return nil, err
	}
	m.display.Step("archive", "archive validated: %s", archivePath)

	if manifest, err := archive.ReadManifest(extracted); err == nil && manifest != "" {
		m.display.ShowManifest(manifest)
	}

	if !m.confirmer.Confirm("Restore will overwrite the database and replace files at %s. Continue?", siteRoot) {
		return nil, ErrAborted
	}

	m.transition(StateDetectingEnvironment, runID)
	env, err := environment.ResolveForSite(ctx, m.runner, m.logger, siteRoot, opts.DBOverride)
	if err != nil {
		return nil, err
	}
	if env.Containerized {
		if err := environment.CheckContainerRunning(ctx, m.runner, env.ContainerName); err != nil {
			return nil, err
		}
	}
	if err := database.CheckRestoreDependencies(env, m.runner.LookPath); err != nil {
		return nil, err
	}

	m.transition(StateExtractingConfig, runID)
	// Credentials come from the archive's own configuration, not from
	// whatever is currently on disk.
	cfg, err := wpconfig.Parse(extracted.ConfigPath)
	if err != nil {
		return nil, err
	}

	m.transition(StateRestoringDatabase, runID)
	if err := database.Restore(ctx, m.executor, env, cfg, extracted.SQLPath, m.logger); err != nil {
		return nil, err
	}
	m.display.Step("database", "database %s restored", cfg.DatabaseName)

	m.transition(StateRestoringFiles, runID)
	safetyNet, err := m.restoreFiles(extracted, siteRoot)
	if err != nil {
		return nil, err
	}
	m.display.Step("done", "site files restored to %s", siteRoot)

	return &Result{
		ArchivePath:   archivePath,
		SiteRoot:      siteRoot,
		SafetyNetPath: safetyNet,
		Environment:   env,
		DatabaseName:  cfg.DatabaseName,
	}, nil
}

// restoreFiles swaps the archived site tree into place. An existing
// site root is renamed to a timestamped sibling first and never
// deleted; the rename is the safety net for a failed swap.
func (m *Manager) restoreFiles(extracted *archive.Extracted, siteRoot string) (string, error) {
	safetyNet := ""
	if _, err := os.Stat(siteRoot); err == nil {
		safetyNet = fmt.Sprintf("%s.backup.%s", siteRoot, m.now().Format("20060102_150405"))
		if err := os.Rename(siteRoot, safetyNet); err != nil {
			return "", apperrors.NewFileRestoreIO(
				fmt.Sprintf("cannot move existing site root aside to %s", safetyNet), err)
		}
	}

	// The archived tree is the directory holding wp-config.php.
	source := filepath.Dir(extracted.ConfigPath)
	if err := os.Rename(source, siteRoot); err != nil {
		// Rename fails across filesystems; fall back to a copy out of
		// the extraction workspace.
		if mkErr := os.MkdirAll(siteRoot, 0755); mkErr != nil {
			return safetyNet, apperrors.NewFileRestoreIO("cannot create site root", mkErr)
		}
		if copyErr := archive.CopyTree(source, siteRoot); copyErr != nil {
			return safetyNet, apperrors.NewFileRestoreIO("cannot copy restored files into site root", copyErr)
		}
	}
	return safetyNet, nil
}
