// Package backup orchestrates the full site backup: environment
// detection, database dump, file staging and archive packaging.
package backup

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

// Options configures a backup run.
type Options struct {
	SiteRoot  string
	OutputDir string
	// DBOverride is either a dialect name forcing the native path or a
	// directory forcing the containerized path.
	DBOverride string
	// Ping runs a driver-level connectivity check before dumping a
	// native database.
	Ping bool
	// SkipVerify disables the post-write archive checksum pass.
	SkipVerify bool
	// NoManifest omits the metadata file from the archive.
	NoManifest bool
	// Timeout bounds the whole run; zero means no limit.
	Timeout time.Duration
}

// Result describes a completed backup.
type Result struct {
	ArchivePath   string
	ArchiveSize   int64
	Entries       int
	Duration      time.Duration
	Environment   *environment.Descriptor
	DatabaseName  string
	VerifyWarning string
}

// Manager runs backups. All external effects go through the injected
// runner and executor so tests can script them.
type Manager struct {
	runner   environment.CommandRunner
	executor database.Executor
	logger   *logging.Logger
	display  *display.Service
	version  string
	now      func() time.Time
}

// NewManager creates a backup manager.
func NewManager(runner environment.CommandRunner, executor database.Executor, logger *logging.Logger, disp *display.Service, version string) *Manager {
	return &Manager{
		runner:   runner,
		executor: executor,
		logger:   logger,
		display:  disp,
		version:  version,
		now:      time.Now,
	}
}

// Run performs a full backup and returns the archive location.
func (m *Manager) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	runID := uuid.New().String()
	start := m.now()
	log := m.logger.WithField("run_id", runID)
	log.Info("Starting backup")

	siteRoot, err := filepath.Abs(opts.SiteRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving site root: %w", err)
	}
	if info, err := os.Stat(siteRoot); err != nil || !info.IsDir() {
		return nil, apperrors.NewConfigNotFound(fmt.Sprintf("site root %s is not a directory", siteRoot), err)
	}

	configPath, err := wpconfig.Locate(siteRoot)
	if err != nil {
		return nil, err
	}
	cfg, err := wpconfig.Parse(configPath)
	if err != nil {
		return nil, err
	}
	m.display.Step("info", "site configuration read from %s", configPath)

	env, err := environment.ResolveForSite(ctx, m.runner, m.logger, siteRoot, opts.DBOverride)
	if err != nil {
		return nil, err
	}
	if env.Containerized {
		if err := environment.CheckContainerRunning(ctx, m.runner, env.ContainerName); err != nil {
			return nil, err
		}
		m.display.Step("container", "database container %s is running", env.ContainerName)
	} else {
		m.display.Step("database", "native %s database at %s", env.Dialect, cfg.DatabaseHost)
	}

	if err := database.CheckDumpDependencies(env, m.runner.LookPath); err != nil {
		return nil, err
	}

	if opts.Ping && !env.Containerized {
		if err := database.Ping(ctx, cfg); err != nil {
			return nil, apperrors.NewDumpEmpty("database is not reachable", err)
		}
		m.display.Step("done", "database connectivity verified")
	}

	ws, err := archive.NewWorkspace("wp-backup-")
	if err != nil {
		return nil, apperrors.NewPackaging("cannot create staging workspace", err)
	}
	defer ws.Close()

	sqlPath := filepath.Join(ws.Root, archive.SQLFileName)
	if err := database.Dump(ctx, m.executor, env, cfg, sqlPath, m.logger); err != nil {
		return nil, err
	}
	m.display.Step("database", "database %s dumped", cfg.DatabaseName)

	filesDir := filepath.Join(ws.Root, archive.FilesDirName, filepath.Base(siteRoot))
	if err := os.MkdirAll(filesDir, 0755); err != nil {
		return nil, apperrors.NewPackaging("cannot create staging files directory", err)
	}
	if err := archive.CopyTree(siteRoot, filesDir); err != nil {
		return nil, apperrors.NewPackaging("cannot stage site files", err)
	}
	m.display.Step("info", "site files staged from %s", siteRoot)

	if !opts.NoManifest {
		manifest := &archive.Manifest{
			CreatedAt:     start,
			ToolVersion:   m.version,
			Dialect:       string(env.Dialect),
			Containerized: env.Containerized,
			ContainerName: env.ContainerName,
			DatabaseHost:  cfg.DatabaseHost,
			DatabaseName:  cfg.DatabaseName,
			SiteRoot:      siteRoot,
		}
		if err := manifest.Write(ws.Root); err != nil {
			return nil, apperrors.NewPackaging("cannot write manifest", err)
		}
	}

	zipPath, err := m.archivePath(opts.OutputDir, siteRoot, start)
	if err != nil {
		return nil, err
	}
	packStart := m.now()
	entries, err := archive.Package(ws.Root, zipPath)
	m.logger.LogArchiveOperation("package", zipPath, entries, m.now().Sub(packStart), err)
	if err != nil {
		return nil, err
	}

	result := &Result{
		ArchivePath:  zipPath,
		Entries:      entries,
		Environment:  env,
		DatabaseName: cfg.DatabaseName,
	}
	if info, err := os.Stat(zipPath); err == nil {
		result.ArchiveSize = info.Size()
	}

	if !opts.SkipVerify {
		if err := archive.Verify(zipPath); err != nil {
			// The archive is already delivered; report and carry on.
			log.Warnf("archive verification failed: %v", err)
			result.VerifyWarning = err.Error()
		}
	}

	result.Duration = m.now().Sub(start)
	log.WithField("archive", zipPath).Info("Backup finished")
	return result, nil
}

// archivePath builds the timestamped destination name inside outputDir,
// refusing to overwrite an existing archive.
func (m *Manager) archivePath(outputDir, siteRoot string, start time.Time) (string, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", apperrors.NewPackaging(fmt.Sprintf("cannot create output directory %s", outputDir), err)
	}

	name := fmt.Sprintf("%s_%s.zip", start.Format("20060102_150405"), filepath.Base(siteRoot))
	path := filepath.Join(outputDir, name)
	if _, err := os.Stat(path); err == nil {
		return "", apperrors.NewPackaging(fmt.Sprintf("archive %s already exists", path), nil)
	}
	return path, nil
}
