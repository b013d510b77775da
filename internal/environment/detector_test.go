package environment

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"wp-backup/internal/logging"
)

func quietLogger() *logging.Logger {
	logger, _ := logging.NewLogger(logging.Config{Level: logging.LogLevelQuiet, Output: io.Discard})
	return logger
}

func writeCompose(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

const mariadbCompose = `services:
  db:
    image: mariadb:11
    container_name: site_db
`

func TestDetectComposeInSiteRoot(t *testing.T) {
	root := t.TempDir()
	writeCompose(t, root, "docker-compose.yml", mariadbCompose)

	d := NewDetector(newFakeRunner(), quietLogger())
	desc, err := d.Detect(context.Background(), root)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if !desc.Containerized {
		t.Error("Expected containerized detection")
	}
	if desc.ComposeDir != filepath.Clean(root) {
		t.Errorf("ComposeDir = %q, want %q", desc.ComposeDir, root)
	}
}

func TestDetectComposeInParent(t *testing.T) {
	base := t.TempDir()
	siteRoot := filepath.Join(base, "stack", "sites", "blog")
	if err := os.MkdirAll(siteRoot, 0755); err != nil {
		t.Fatal(err)
	}
	writeCompose(t, filepath.Join(base, "stack"), "compose.yaml", `services:
  database:
    image: mysql:8.4
`)

	d := NewDetector(newFakeRunner(), quietLogger())
	desc, err := d.Detect(context.Background(), siteRoot)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if !desc.Containerized {
		t.Error("Expected containerized detection from parent compose file")
	}
	if desc.ComposeDir != filepath.Join(base, "stack") {
		t.Errorf("ComposeDir = %q, want %q", desc.ComposeDir, filepath.Join(base, "stack"))
	}
}

func TestDetectComposeBeyondSearchDepth(t *testing.T) {
	base := t.TempDir()
	siteRoot := filepath.Join(base, "a", "b", "c", "d")
	if err := os.MkdirAll(siteRoot, 0755); err != nil {
		t.Fatal(err)
	}
	// base is four levels above siteRoot, one past the search bound.
	writeCompose(t, base, "docker-compose.yml", mariadbCompose)

	d := NewDetector(newFakeRunner(), quietLogger())
	desc, err := d.Detect(context.Background(), siteRoot)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if desc.Containerized {
		t.Error("Compose file beyond three parent levels should not be found")
	}
}

func TestDetectComposeWithoutDialectKeyword(t *testing.T) {
	root := t.TempDir()
	writeCompose(t, root, "docker-compose.yml", `services:
  cache:
    image: redis:7
`)

	d := NewDetector(newFakeRunner(), quietLogger())
	desc, err := d.Detect(context.Background(), root)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if desc.Containerized {
		t.Error("Compose file without dialect keywords should be ignored")
	}
}

func TestDetectRunningContainerFallback(t *testing.T) {
	root := t.TempDir()

	runner := newFakeRunner()
	runner.paths["docker"] = "/usr/bin/docker"
	runner.outputs["docker ps --format {{.Names}}"] = "proxy\nwordpress_db_1\n"

	d := NewDetector(runner, quietLogger())
	desc, err := d.Detect(context.Background(), root)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if !desc.Containerized {
		t.Error("Expected containerized detection from running container names")
	}
	if desc.ComposeDir != "" {
		t.Errorf("Degraded detection should leave ComposeDir unset, got %q", desc.ComposeDir)
	}
}

func TestDetectNoSignals(t *testing.T) {
	root := t.TempDir()

	runner := newFakeRunner()
	runner.paths["docker"] = "/usr/bin/docker"
	runner.outputs["docker ps --format {{.Names}}"] = "nginx\nredis\n"

	d := NewDetector(runner, quietLogger())
	desc, err := d.Detect(context.Background(), root)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if desc.Containerized {
		t.Error("Expected native detection with no compose file and no matching containers")
	}
}

func TestDetectDockerAbsentIsNotAnError(t *testing.T) {
	root := t.TempDir()

	d := NewDetector(newFakeRunner(), quietLogger())
	desc, err := d.Detect(context.Background(), root)
	if err != nil {
		t.Fatalf("Detect() must not fail when docker is absent, got %v", err)
	}
	if desc.Containerized {
		t.Error("Expected native path when docker is unavailable")
	}
}
