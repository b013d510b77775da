package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Archive layout constants. Every valid archive carries files/ and
// database.sql; the manifest is optional.
const (
	FilesDirName     = "files"
	SQLFileName      = "database.sql"
	ManifestFileName = "backup_info.txt"

	// FormatVersion is recorded in the manifest so future layout changes
	// stay recognizable.
	FormatVersion = 1
)

// Manifest is the human-readable environment metadata embedded in a
// backup. It is informational only: restore re-detects the environment
// and never parses the manifest back into structured state. The database
// password is deliberately not part of it.
type Manifest struct {
	CreatedAt     time.Time
	ToolVersion   string
	Dialect       string
	Containerized bool
	ContainerName string
	DatabaseHost  string
	DatabaseName  string
	SiteRoot      string
}

// Render formats the manifest as key: value lines.
func (m *Manifest) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "format_version: %d\n", FormatVersion)
	fmt.Fprintf(&b, "created_at: %s\n", m.CreatedAt.Format(time.RFC3339))
	if m.ToolVersion != "" {
		fmt.Fprintf(&b, "tool_version: %s\n", m.ToolVersion)
	}
	fmt.Fprintf(&b, "dialect: %s\n", m.Dialect)
	fmt.Fprintf(&b, "containerized: %t\n", m.Containerized)
	if m.ContainerName != "" {
		fmt.Fprintf(&b, "container_name: %s\n", m.ContainerName)
	}
	if m.DatabaseHost != "" {
		fmt.Fprintf(&b, "database_host: %s\n", m.DatabaseHost)
	}
	fmt.Fprintf(&b, "database_name: %s\n", m.DatabaseName)
	fmt.Fprintf(&b, "site_root: %s\n", m.SiteRoot)
	return b.String()
}

// Write stores the manifest at the top of the staging directory.
func (m *Manifest) Write(stagingDir string) error {
	path := filepath.Join(stagingDir, ManifestFileName)
	return os.WriteFile(path, []byte(m.Render()), 0644)
}
