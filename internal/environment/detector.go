package environment

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wp-backup/internal/logging"
)

// maxParentLevels bounds the upward compose-file search: the site root
// itself plus at most three parent directories.
const maxParentLevels = 3

// composeFileNames lists the orchestration descriptor names probed at each
// level, in order.
var composeFileNames = []string{
	"docker-compose.yml",
	"docker-compose.yaml",
	"compose.yml",
	"compose.yaml",
}

// containerKeywords match typical WordPress stack container names during
// the degraded docker-ps probe.
var containerKeywords = []string{"wordpress", "mariadb", "mysql", "wp", "db"}

// Detector performs best-effort environment detection. It never fails on a
// missing docker binary; absence simply forces the native path.
type Detector struct {
	runner CommandRunner
	logger *logging.Logger
}

// NewDetector creates a Detector using the given command runner.
func NewDetector(runner CommandRunner, logger *logging.Logger) *Detector {
	return &Detector{runner: runner, logger: logger}
}

// Detect determines whether the database behind siteRoot is containerized.
// The returned descriptor has no dialect resolved yet unless the compose
// descriptor named one; resolution is the resolver's job.
func (d *Detector) Detect(ctx context.Context, siteRoot string) (*Descriptor, error) {
	start := time.Now()
	desc := &Descriptor{}

	if composeDir := d.findComposeDir(siteRoot); composeDir != "" {
		desc.Containerized = true
		desc.ComposeDir = composeDir
	} else if d.runningContainerMatch(ctx) {
		// Degraded state: something database-shaped is running but no
		// compose descriptor was found. The resolver must reject this
		// unless the operator supplies a compose directory.
		desc.Containerized = true
	}

	d.logger.LogEnvironmentDetection(siteRoot, desc.Containerized, desc.ComposeDir, time.Since(start))
	return desc, nil
}

// findComposeDir walks upward from siteRoot through at most maxParentLevels
// parents looking for a compose descriptor that mentions either dialect.
// The walk stops early at the filesystem root.
func (d *Detector) findComposeDir(siteRoot string) string {
	dir := filepath.Clean(siteRoot)
	for level := 0; level <= maxParentLevels; level++ {
		if path := composeFileIn(dir); path != "" {
			if fileMentionsDialect(path) {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// composeFileIn returns the first compose descriptor present in dir.
func composeFileIn(dir string) string {
	for _, name := range composeFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// fileMentionsDialect reports whether the descriptor references either SQL
// dialect keyword, case-insensitively.
func fileMentionsDialect(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	content := strings.ToLower(string(data))
	return strings.Contains(content, string(DialectMariaDB)) ||
		strings.Contains(content, string(DialectMySQL))
}

// runningContainerMatch probes docker for running containers whose names
// look WordPress- or database-related. Absence of docker is not an error.
func (d *Detector) runningContainerMatch(ctx context.Context) bool {
	if _, err := d.runner.LookPath("docker"); err != nil {
		return false
	}
	out, err := d.runner.Run(ctx, "docker", "ps", "--format", "{{.Names}}")
	if err != nil {
		return false
	}
	for _, name := range strings.Fields(string(out)) {
		lower := strings.ToLower(name)
		for _, kw := range containerKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

// ListRunningContainers returns the names of currently running containers,
// or an empty list when docker is unavailable.
func ListRunningContainers(ctx context.Context, runner CommandRunner) []string {
	if _, err := runner.LookPath("docker"); err != nil {
		return nil
	}
	out, err := runner.Run(ctx, "docker", "ps", "--format", "{{.Names}}")
	if err != nil {
		return nil
	}
	return strings.Fields(string(out))
}
