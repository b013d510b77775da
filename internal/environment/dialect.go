package environment

import (
	"context"
	"strings"

	"wp-backup/internal/logging"
)

// DialectProbe is one strategy for identifying the native database dialect.
// Probes are tried in priority order; the first conclusive result wins.
type DialectProbe interface {
	Name() string
	Probe(ctx context.Context) (Dialect, bool)
}

// NativeProbes returns the standard probe chain for a host-local database:
// process table, installed packages, dialect-specific client binary, then
// the generic client's version report.
func NativeProbes(runner CommandRunner) []DialectProbe {
	return []DialectProbe{
		&processProbe{runner: runner},
		&packageProbe{runner: runner},
		&clientBinaryProbe{runner: runner},
		&versionReportProbe{runner: runner},
	}
}

// ResolveNativeDialect runs the probe chain and falls back to MySQL when
// every probe is inconclusive. The fallback is deliberate fail-open
// behavior, reported as low confidence, never as an error.
func ResolveNativeDialect(ctx context.Context, probes []DialectProbe, logger *logging.Logger) (Dialect, bool) {
	for _, p := range probes {
		if dialect, ok := p.Probe(ctx); ok {
			logger.LogDialectResolution(string(dialect), p.Name(), false)
			return dialect, false
		}
		logger.Debugf("dialect probe %s inconclusive", p.Name())
	}

	logger.LogDialectResolution(string(DialectMySQL), "default", true)
	return DialectMySQL, true
}

// processProbe scans the process table for dialect-specific daemon names.
// mariadbd only ships with MariaDB; a bare mysqld on a MariaDB host is
// caught by the later probes.
type processProbe struct {
	runner CommandRunner
}

func (p *processProbe) Name() string { return "process-table" }

func (p *processProbe) Probe(ctx context.Context) (Dialect, bool) {
	out, err := p.runner.Run(ctx, "ps", "-eo", "comm=")
	if err != nil {
		return "", false
	}
	names := strings.ToLower(string(out))
	if strings.Contains(names, "mariadbd") {
		return DialectMariaDB, true
	}
	if strings.Contains(names, "mysqld") {
		return DialectMySQL, true
	}
	return "", false
}

// packageProbe checks the installed-package manifest, trying dpkg first
// and rpm second.
type packageProbe struct {
	runner CommandRunner
}

func (p *packageProbe) Name() string { return "package-manifest" }

func (p *packageProbe) Probe(ctx context.Context) (Dialect, bool) {
	if out, err := p.runner.Run(ctx, "dpkg-query", "-W", "-f", "${Package}\n"); err == nil {
		if dialect, ok := dialectFromPackageList(string(out)); ok {
			return dialect, true
		}
	}
	if out, err := p.runner.Run(ctx, "rpm", "-qa"); err == nil {
		if dialect, ok := dialectFromPackageList(string(out)); ok {
			return dialect, true
		}
	}
	return "", false
}

func dialectFromPackageList(list string) (Dialect, bool) {
	lower := strings.ToLower(list)
	if strings.Contains(lower, "mariadb-server") {
		return DialectMariaDB, true
	}
	if strings.Contains(lower, "mysql-server") || strings.Contains(lower, "mysql-community-server") {
		return DialectMySQL, true
	}
	return "", false
}

// clientBinaryProbe checks for the MariaDB-specific client on PATH. The
// generic mysql binary exists on both engines, so only a MariaDB hit is
// conclusive here.
type clientBinaryProbe struct {
	runner CommandRunner
}

func (p *clientBinaryProbe) Name() string { return "client-binary" }

func (p *clientBinaryProbe) Probe(ctx context.Context) (Dialect, bool) {
	if _, err := p.runner.LookPath("mariadb"); err == nil {
		return DialectMariaDB, true
	}
	if _, err := p.runner.LookPath("mariadb-dump"); err == nil {
		return DialectMariaDB, true
	}
	return "", false
}

// versionReportProbe invokes the generic client's version report and
// matches the dialect name in its output.
type versionReportProbe struct {
	runner CommandRunner
}

func (p *versionReportProbe) Name() string { return "version-report" }

func (p *versionReportProbe) Probe(ctx context.Context) (Dialect, bool) {
	out, err := p.runner.Run(ctx, "mysql", "--version")
	if err != nil {
		return "", false
	}
	report := strings.ToLower(string(out))
	if strings.Contains(report, string(DialectMariaDB)) {
		return DialectMariaDB, true
	}
	if strings.Contains(report, string(DialectMySQL)) {
		return DialectMySQL, true
	}
	return "", false
}
