package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "wp-backup/internal/errors"
)

func packStaged(t *testing.T, staging string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "backup.zip")
	_, err := Package(staging, zipPath)
	require.NoError(t, err)
	return zipPath
}

func TestExtractAndValidateRoundTrip(t *testing.T) {
	zipPath := packStaged(t, stageSite(t, true))
	dest := t.TempDir()

	extracted, err := ExtractAndValidate(zipPath, dest)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dest, SQLFileName), extracted.SQLPath)
	assert.Equal(t, filepath.Join(dest, FilesDirName), extracted.FilesDir)
	assert.Equal(t, filepath.Join(dest, FilesDirName, "site", "wp-config.php"), extracted.ConfigPath)
	assert.NotEmpty(t, extracted.ManifestPath)

	text, err := ReadManifest(extracted)
	require.NoError(t, err)
	assert.Contains(t, text, "database_name: wp")
}

func TestValidateRejectsMissingDump(t *testing.T) {
	staging := stageSite(t, false)
	require.NoError(t, os.Remove(filepath.Join(staging, SQLFileName)))
	zipPath := packStaged(t, staging)

	_, err := ExtractAndValidate(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeInvalidArchive, apperrors.TypeOf(err))
	assert.Contains(t, err.Error(), "database.sql")
}

func TestValidateRejectsEmptyDump(t *testing.T) {
	staging := stageSite(t, false)
	require.NoError(t, os.WriteFile(filepath.Join(staging, SQLFileName), nil, 0644))
	zipPath := packStaged(t, staging)

	_, err := ExtractAndValidate(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeInvalidArchive, apperrors.TypeOf(err))
}

func TestValidateRejectsMissingFilesDir(t *testing.T) {
	staging := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staging, SQLFileName), []byte("SELECT 1;"), 0644))
	zipPath := packStaged(t, staging)

	_, err := ExtractAndValidate(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "files/")
}

func TestValidateRejectsMissingConfig(t *testing.T) {
	staging := stageSite(t, false)
	require.NoError(t, os.Remove(filepath.Join(staging, FilesDirName, "site", "wp-config.php")))
	zipPath := packStaged(t, staging)

	_, err := ExtractAndValidate(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wp-config.php")
}

func TestValidateRejectsAmbiguousArchive(t *testing.T) {
	staging := stageSite(t, false)
	second := filepath.Join(staging, FilesDirName, "other")
	require.NoError(t, os.MkdirAll(second, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(second, "wp-config.php"),
		[]byte("<?php define('DB_NAME', 'wp2');"), 0644))
	zipPath := packStaged(t, staging)

	_, err := ExtractAndValidate(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeInvalidArchive, apperrors.TypeOf(err))
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestExtractRejectsPathEscape(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "evil.zip")
	out, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	w, err := zw.Create("../escape.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("nope"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())

	dest := t.TempDir()
	err = Extract(zipPath, dest)
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeInvalidArchive, apperrors.TypeOf(err))

	_, statErr := os.Stat(filepath.Join(filepath.Dir(dest), "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExtractRejectsGarbageFile(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "not-a.zip")
	require.NoError(t, os.WriteFile(zipPath, []byte("this is not a zip archive"), 0644))

	err := Extract(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeInvalidArchive, apperrors.TypeOf(err))
}

func TestReadManifestAbsent(t *testing.T) {
	zipPath := packStaged(t, stageSite(t, false))
	extracted, err := ExtractAndValidate(zipPath, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, extracted.ManifestPath)

	text, err := ReadManifest(extracted)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestManifestNeverContainsPassword(t *testing.T) {
	m := &Manifest{
		DatabaseName: "wp",
		DatabaseHost: "db:3306",
		Dialect:      "mariadb",
		SiteRoot:     "/srv/site",
	}
	rendered := m.Render()
	assert.False(t, strings.Contains(strings.ToLower(rendered), "password"))
	assert.Contains(t, rendered, "format_version: 1")
}
