package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"wp-backup/internal/archive"
	"wp-backup/internal/database"
	"wp-backup/internal/environment"
	apperrors "wp-backup/internal/errors"
	"wp-backup/internal/wpconfig"
)

// ExportOptions configures a database-only export.
type ExportOptions struct {
	SiteRoot    string
	OutputPath  string
	DBOverride  string
	Compression archive.CompressionType
	Timeout     time.Duration
}

// ExportResult describes a completed database export.
type ExportResult struct {
	OutputPath   string
	OutputSize   int64
	DatabaseName string
	Compression  archive.CompressionType
	Duration     time.Duration
}

// ExportDatabase dumps only the site database, optionally compressed,
// without building a site archive.
func (m *Manager) ExportDatabase(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	start := m.now()

	siteRoot, err := filepath.Abs(opts.SiteRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving site root: %w", err)
	}
	configPath, err := wpconfig.Locate(siteRoot)
	if err != nil {
		return nil, err
	}
	cfg, err := wpconfig.Parse(configPath)
	if err != nil {
		return nil, err
	}

	env, err := environment.ResolveForSite(ctx, m.runner, m.logger, siteRoot, opts.DBOverride)
	if err != nil {
		return nil, err
	}
	if env.Containerized {
		if err := environment.CheckContainerRunning(ctx, m.runner, env.ContainerName); err != nil {
			return nil, err
		}
	}
	if err := database.CheckDumpDependencies(env, m.runner.LookPath); err != nil {
		return nil, err
	}

	outPath := opts.OutputPath
	if outPath == "" {
		outPath = fmt.Sprintf("%s_%s.sql%s",
			start.Format("20060102_150405"), cfg.DatabaseName, opts.Compression.Extension())
	}

	ws, err := archive.NewWorkspace("wp-backup-export-")
	if err != nil {
		return nil, apperrors.NewPackaging("cannot create staging workspace", err)
	}
	defer ws.Close()

	sqlPath := filepath.Join(ws.Root, archive.SQLFileName)
	if err := database.Dump(ctx, m.executor, env, cfg, sqlPath, m.logger); err != nil {
		return nil, err
	}

	if err := archive.CompressFile(sqlPath, outPath, opts.Compression); err != nil {
		os.Remove(outPath)
		return nil, apperrors.NewPackaging("cannot write export file", err)
	}

	result := &ExportResult{
		OutputPath:   outPath,
		DatabaseName: cfg.DatabaseName,
		Compression:  opts.Compression,
		Duration:     m.now().Sub(start),
	}
	if info, err := os.Stat(outPath); err == nil {
		result.OutputSize = info.Size()
	}
	m.display.Step("database", "database %s exported to %s", cfg.DatabaseName, outPath)
	return result, nil
}
