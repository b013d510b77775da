package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"wp-backup/internal/environment"
	apperrors "wp-backup/internal/errors"
	"wp-backup/internal/logging"
	"wp-backup/internal/wpconfig"
)

// BuildRestoreCommand constructs the restore invocation for the environment.
func BuildRestoreCommand(env *environment.Descriptor, cfg *wpconfig.SiteConfig) (string, []string) {
	client := env.Dialect.Client()
	args := append(connectionArgs(env, cfg), cfg.DatabaseName)

	if env.Containerized {
		full := append([]string{"exec", "-i", env.ContainerName, client}, args...)
		return "docker", full
	}
	return client, args
}

// Restore feeds the SQL dump at sqlPath into the site database through the
// dialect client's stdin.
func Restore(ctx context.Context, executor Executor, env *environment.Descriptor, cfg *wpconfig.SiteConfig, sqlPath string, logger *logging.Logger) error {
	if err := env.ValidateForDatabaseOps(); err != nil {
		return err
	}

	start := time.Now()
	name, args := BuildRestoreCommand(env, cfg)

	in, err := os.Open(sqlPath)
	if err != nil {
		return apperrors.NewRestoreExec(fmt.Sprintf("cannot open dump file %s", sqlPath), err)
	}
	defer in.Close()

	if err := executor.Execute(ctx, CommandSpec{Name: name, Args: args, Stdin: in}); err != nil {
		wrapped := apperrors.NewRestoreExec("database restore failed", err).
			WithContext("database", cfg.DatabaseName)
		logger.LogRestoreExecution(cfg.DatabaseName, env.Containerized, time.Since(start), wrapped)
		return wrapped
	}

	logger.LogRestoreExecution(cfg.DatabaseName, env.Containerized, time.Since(start), nil)
	return nil
}
