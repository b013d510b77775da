package database

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the mysql driver; the wire protocol is shared by both dialects.
	_ "github.com/go-sql-driver/mysql"

	"wp-backup/internal/wpconfig"
)

// DSN builds a driver connection string from the site's credentials.
func DSN(cfg *wpconfig.SiteConfig) string {
	host, port := splitHostPort(cfg.DatabaseHost)
	if port == "" {
		port = "3306"
	}

	cred := cfg.DatabaseUser
	if cfg.DatabasePassword != "" {
		cred += ":" + cfg.DatabasePassword
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?timeout=5s", cred, host, port, cfg.DatabaseName)
}

// Ping opens a short-lived connection to verify the native database is
// reachable before a dump is attempted. Optional preflight; the
// containerized path relies on the container liveness check instead.
func Ping(ctx context.Context, cfg *wpconfig.SiteConfig) error {
	db, err := sql.Open("mysql", DSN(cfg))
	if err != nil {
		return fmt.Errorf("opening database connection: %w", err)
	}
	defer db.Close()

	return PingConn(ctx, db)
}

// PingConn verifies liveness on an already-open handle.
func PingConn(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
