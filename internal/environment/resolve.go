package environment

import (
	"context"
	"fmt"
	"os"

	"wp-backup/internal/logging"
)

// ResolveForSite runs detection and completes the descriptor so it is
// ready for database operations.
//
// The override accepts either a dialect name, which forces the native
// path with that dialect, or a directory path, which forces the
// containerized path with that directory as the compose location. An
// empty override means full auto-detection.
func ResolveForSite(ctx context.Context, runner CommandRunner, logger *logging.Logger, siteRoot, override string) (*Descriptor, error) {
	if override != "" {
		if dialect, err := ParseDialect(override); err == nil {
			logger.LogDialectResolution(string(dialect), "override", false)
			return &Descriptor{Dialect: dialect}, nil
		}
		info, err := os.Stat(override)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("database override %q is neither a dialect name nor a directory", override)
		}
		desc := &Descriptor{Containerized: true, ComposeDir: override}
		if err := ResolveContainer(desc); err != nil {
			return nil, err
		}
		return desc, nil
	}

	detector := NewDetector(runner, logger)
	desc, err := detector.Detect(ctx, siteRoot)
	if err != nil {
		return nil, err
	}

	if desc.Containerized {
		if err := ResolveContainer(desc); err != nil {
			return nil, err
		}
		logger.LogDialectResolution(string(desc.Dialect), "compose", false)
		return desc, nil
	}

	desc.Dialect, desc.DialectDefaulted = ResolveNativeDialect(ctx, NativeProbes(runner), logger)
	return desc, nil
}
