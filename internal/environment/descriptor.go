// Package environment determines how a site's database is reachable:
// inside a compose-managed container or natively on the host, and which
// of the two SQL dialects is in use.
package environment

import (
	"fmt"

	apperrors "wp-backup/internal/errors"
)

// Dialect identifies one of the two supported SQL engines.
type Dialect string

const (
	// DialectMariaDB is checked first wherever both engines could match.
	DialectMariaDB Dialect = "mariadb"
	// DialectMySQL is the fail-open default for inconclusive detection.
	DialectMySQL Dialect = "mysql"
)

// ParseDialect converts an operator-supplied override string.
func ParseDialect(s string) (Dialect, error) {
	switch s {
	case string(DialectMariaDB):
		return DialectMariaDB, nil
	case string(DialectMySQL):
		return DialectMySQL, nil
	default:
		return "", fmt.Errorf("unknown dialect %q (expected mariadb or mysql)", s)
	}
}

// DumpClient returns the dump utility binary name for the dialect.
func (d Dialect) DumpClient() string {
	if d == DialectMariaDB {
		return "mariadb-dump"
	}
	return "mysqldump"
}

// Client returns the interactive client binary name for the dialect.
func (d Dialect) Client() string {
	if d == DialectMariaDB {
		return "mariadb"
	}
	return "mysql"
}

// Descriptor describes the detected database environment. It is produced
// by the Detector, completed by the resolver, and threaded explicitly
// through the orchestrators rather than held as shared state.
type Descriptor struct {
	Containerized bool
	Dialect       Dialect
	ContainerName string
	ComposeDir    string
	// DialectDefaulted marks the fail-open native fallback; the result is
	// usable but logged as low confidence.
	DialectDefaulted bool
}

// ValidateForDatabaseOps enforces the invariant that a containerized
// environment must carry a container name before any dump or restore runs.
func (d *Descriptor) ValidateForDatabaseOps() error {
	if d.Containerized && d.ContainerName == "" {
		return apperrors.NewContainerResolution(
			"containerized environment has no resolved container name", nil)
	}
	if d.Dialect == "" {
		return apperrors.NewDetectionFailed("no database dialect resolved", nil)
	}
	return nil
}
