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

// dumpFlags guarantee a consistent snapshot including stored routines and
// triggers, for both dialects.
var dumpFlags = []string{"--single-transaction", "--routines", "--triggers"}

// connectionArgs builds the shared flag shape: -h<host> for native targets
// only (a containerized client connects through the container's loopback),
// -u<user>, and -p<password> only when the password is non-empty, so the
// client never falls back to prompting.
func connectionArgs(env *environment.Descriptor, cfg *wpconfig.SiteConfig) []string {
	var args []string
	if !env.Containerized {
		host, port := splitHostPort(cfg.DatabaseHost)
		args = append(args, "-h"+host)
		if port != "" {
			args = append(args, "-P"+port)
		}
	}
	args = append(args, "-u"+cfg.DatabaseUser)
	if cfg.DatabasePassword != "" {
		args = append(args, "-p"+cfg.DatabasePassword)
	}
	return args
}

// BuildDumpCommand constructs the dump invocation for the environment.
func BuildDumpCommand(env *environment.Descriptor, cfg *wpconfig.SiteConfig) (string, []string) {
	client := env.Dialect.DumpClient()
	args := append(connectionArgs(env, cfg), dumpFlags...)
	args = append(args, cfg.DatabaseName)

	if env.Containerized {
		full := append([]string{"exec", "-i", env.ContainerName, client}, args...)
		return "docker", full
	}
	return client, args
}

// Dump writes a plain-text SQL dump of the site database to outPath. A
// non-zero client exit or a zero-byte dump after a clean exit both fail
// with DumpEmptyError; success with no data is never reported as success.
func Dump(ctx context.Context, executor Executor, env *environment.Descriptor, cfg *wpconfig.SiteConfig, outPath string, logger *logging.Logger) error {
	if err := env.ValidateForDatabaseOps(); err != nil {
		return err
	}

	start := time.Now()
	name, args := BuildDumpCommand(env, cfg)

	out, err := os.Create(outPath)
	if err != nil {
		return apperrors.NewDumpEmpty(fmt.Sprintf("cannot create dump file %s", outPath), err)
	}

	execErr := executor.Execute(ctx, CommandSpec{Name: name, Args: args, Stdout: out})
	closeErr := out.Close()

	if execErr != nil {
		os.Remove(outPath)
		wrapped := apperrors.NewDumpEmpty("database dump failed", execErr).
			WithContext("database", cfg.DatabaseName)
		logger.LogDumpExecution(cfg.DatabaseName, env.Containerized, 0, time.Since(start), wrapped)
		return wrapped
	}
	if closeErr != nil {
		return apperrors.NewDumpEmpty("cannot finalize dump file", closeErr)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return apperrors.NewDumpEmpty("dump file vanished after write", err)
	}
	if info.Size() == 0 {
		wrapped := apperrors.NewDumpEmpty(
			fmt.Sprintf("dump client exited cleanly but %s is empty", outPath), nil).
			WithContext("database", cfg.DatabaseName)
		logger.LogDumpExecution(cfg.DatabaseName, env.Containerized, 0, time.Since(start), wrapped)
		return wrapped
	}

	logger.LogDumpExecution(cfg.DatabaseName, env.Containerized, info.Size(), time.Since(start), nil)
	return nil
}

// CheckDumpDependencies verifies the external tools the dump path needs.
func CheckDumpDependencies(env *environment.Descriptor, lookPath func(string) (string, error)) error {
	return checkClientDependency(env, env.Dialect.DumpClient(), lookPath)
}

// CheckRestoreDependencies verifies the external tools the restore path needs.
func CheckRestoreDependencies(env *environment.Descriptor, lookPath func(string) (string, error)) error {
	return checkClientDependency(env, env.Dialect.Client(), lookPath)
}

func checkClientDependency(env *environment.Descriptor, client string, lookPath func(string) (string, error)) error {
	if env.Containerized {
		// The client runs inside the container; only docker is needed here.
		if _, err := lookPath("docker"); err != nil {
			return apperrors.NewDependencyMissing("docker is required for containerized databases", err)
		}
		return nil
	}
	if _, err := lookPath(client); err != nil {
		return apperrors.NewDependencyMissing(fmt.Sprintf("%s not found on PATH", client), err)
	}
	return nil
}
