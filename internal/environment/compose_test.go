package environment

import (
	"context"
	"testing"

	apperrors "wp-backup/internal/errors"
)

func TestResolveContainerFromYAML(t *testing.T) {
	dir := t.TempDir()
	writeCompose(t, dir, "docker-compose.yml", `services:
  wordpress:
    image: wordpress:6.5
  db:
    image: mariadb:11.4
    container_name: blog_mariadb
`)

	desc := &Descriptor{Containerized: true, ComposeDir: dir}
	if err := ResolveContainer(desc); err != nil {
		t.Fatalf("ResolveContainer() error = %v", err)
	}

	if desc.Dialect != DialectMariaDB {
		t.Errorf("Dialect = %v, want mariadb", desc.Dialect)
	}
	if desc.ContainerName != "blog_mariadb" {
		t.Errorf("ContainerName = %q, want blog_mariadb", desc.ContainerName)
	}
}

func TestResolveContainerServiceKeyFallback(t *testing.T) {
	dir := t.TempDir()
	writeCompose(t, dir, "docker-compose.yml", `services:
  mysql:
    image: mysql:8.4
    environment:
      MYSQL_DATABASE: wordpress
`)

	desc := &Descriptor{Containerized: true, ComposeDir: dir}
	if err := ResolveContainer(desc); err != nil {
		t.Fatalf("ResolveContainer() error = %v", err)
	}

	if desc.Dialect != DialectMySQL {
		t.Errorf("Dialect = %v, want mysql", desc.Dialect)
	}
	if desc.ContainerName != "mysql" {
		t.Errorf("ContainerName = %q, want mysql (service key)", desc.ContainerName)
	}
}

func TestResolveContainerMariaDBPriority(t *testing.T) {
	// Descriptor mentions both dialects; MariaDB must win deterministically.
	dir := t.TempDir()
	writeCompose(t, dir, "docker-compose.yml", `services:
  legacy:
    image: mysql:5.7
    container_name: old_mysql
  db:
    image: mariadb:11
    container_name: new_mariadb
`)

	for i := 0; i < 10; i++ {
		desc := &Descriptor{Containerized: true, ComposeDir: dir}
		if err := ResolveContainer(desc); err != nil {
			t.Fatalf("ResolveContainer() error = %v", err)
		}
		if desc.Dialect != DialectMariaDB {
			t.Fatalf("run %d: Dialect = %v, want mariadb", i, desc.Dialect)
		}
		if desc.ContainerName != "new_mariadb" {
			t.Fatalf("run %d: ContainerName = %q, want new_mariadb", i, desc.ContainerName)
		}
	}
}

func TestResolveContainerTextFallback(t *testing.T) {
	// Tabs make this invalid YAML, forcing the textual window scan.
	dir := t.TempDir()
	writeCompose(t, dir, "docker-compose.yml", "services:\n  db:\n\timage: mariadb:10.6\n\tcontainer_name: txt_db\n")

	desc := &Descriptor{Containerized: true, ComposeDir: dir}
	if err := ResolveContainer(desc); err != nil {
		t.Fatalf("ResolveContainer() error = %v", err)
	}

	if desc.Dialect != DialectMariaDB {
		t.Errorf("Dialect = %v, want mariadb", desc.Dialect)
	}
	if desc.ContainerName != "txt_db" {
		t.Errorf("ContainerName = %q, want txt_db", desc.ContainerName)
	}
}

func TestResolveContainerDegradedState(t *testing.T) {
	desc := &Descriptor{Containerized: true}

	err := ResolveContainer(desc)
	if err == nil {
		t.Fatal("Expected error for degraded descriptor without compose dir")
	}
	if !apperrors.IsType(err, apperrors.TypeContainerResolution) {
		t.Errorf("Expected CONTAINER_RESOLUTION_ERROR, got %v", apperrors.TypeOf(err))
	}
}

func TestResolveContainerNoDatabaseService(t *testing.T) {
	dir := t.TempDir()
	writeCompose(t, dir, "docker-compose.yml", `services:
  web:
    image: nginx:1.27
`)

	desc := &Descriptor{Containerized: true, ComposeDir: dir}
	err := ResolveContainer(desc)
	if err == nil {
		t.Fatal("Expected error when descriptor names no database service")
	}
	if !apperrors.IsType(err, apperrors.TypeContainerResolution) {
		t.Errorf("Expected CONTAINER_RESOLUTION_ERROR, got %v", apperrors.TypeOf(err))
	}
}

func TestResolveFromTextWindow(t *testing.T) {
	content := `services:
  db:
    image: mariadb:11
    restart: always
    container_name: windowed_db
`
	dialect, name, ok := resolveFromText(content)
	if !ok {
		t.Fatal("resolveFromText() found nothing")
	}
	if dialect != DialectMariaDB || name != "windowed_db" {
		t.Errorf("resolveFromText() = %v, %q", dialect, name)
	}
}

func TestCheckContainerRunning(t *testing.T) {
	runner := newFakeRunner()
	runner.paths["docker"] = "/usr/bin/docker"
	runner.outputs["docker ps --format {{.Names}}"] = "site_db\nnginx\n"

	if err := CheckContainerRunning(context.Background(), runner, "site_db"); err != nil {
		t.Errorf("CheckContainerRunning() error = %v for running container", err)
	}

	err := CheckContainerRunning(context.Background(), runner, "gone_db")
	if err == nil {
		t.Fatal("Expected error for absent container")
	}
	if !apperrors.IsType(err, apperrors.TypeContainerNotRunning) {
		t.Errorf("Expected CONTAINER_NOT_RUNNING, got %v", apperrors.TypeOf(err))
	}
}

func TestValidateForDatabaseOps(t *testing.T) {
	tests := []struct {
		name    string
		desc    Descriptor
		wantErr bool
	}{
		{"native resolved", Descriptor{Dialect: DialectMySQL}, false},
		{"containerized resolved", Descriptor{Containerized: true, ContainerName: "db", Dialect: DialectMariaDB}, false},
		{"containerized without name", Descriptor{Containerized: true, Dialect: DialectMariaDB}, true},
		{"no dialect", Descriptor{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.ValidateForDatabaseOps()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateForDatabaseOps() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
