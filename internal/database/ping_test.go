package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"wp-backup/internal/wpconfig"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  wpconfig.SiteConfig
		want string
	}{
		{
			"host without port",
			wpconfig.SiteConfig{DatabaseName: "wp", DatabaseUser: "root", DatabasePassword: "pw", DatabaseHost: "localhost"},
			"root:pw@tcp(localhost:3306)/wp?timeout=5s",
		},
		{
			"host with port",
			wpconfig.SiteConfig{DatabaseName: "wp", DatabaseUser: "root", DatabaseHost: "db.internal:3307"},
			"root@tcp(db.internal:3307)/wp?timeout=5s",
		},
		{
			"empty password omits colon",
			wpconfig.SiteConfig{DatabaseName: "wp", DatabaseUser: "admin", DatabaseHost: "127.0.0.1"},
			"admin@tcp(127.0.0.1:3306)/wp?timeout=5s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DSN(&tt.cfg); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPingConn(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectPing()

	if err := PingConn(context.Background(), db); err != nil {
		t.Errorf("PingConn() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPingConnFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	if err := PingConn(context.Background(), db); err == nil {
		t.Error("Expected ping failure to propagate")
	}
}

func TestSplitHostPort(t *testing.T) {
	tests := []struct {
		input    string
		wantHost string
		wantPort string
	}{
		{"localhost", "localhost", ""},
		{"localhost:3306", "localhost", "3306"},
		{"db.internal:3307", "db.internal", "3307"},
		{"localhost:/var/run/mysqld/mysqld.sock", "localhost:/var/run/mysqld/mysqld.sock", ""},
		{"127.0.0.1:", "127.0.0.1:", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			host, port := splitHostPort(tt.input)
			if host != tt.wantHost || port != tt.wantPort {
				t.Errorf("splitHostPort(%q) = %q, %q; want %q, %q", tt.input, host, port, tt.wantHost, tt.wantPort)
			}
		})
	}
}
