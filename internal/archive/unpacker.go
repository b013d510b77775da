package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "wp-backup/internal/errors"
	"wp-backup/internal/wpconfig"
)

// Extracted describes a validated, unpacked archive.
type Extracted struct {
	Root         string
	SQLPath      string
	FilesDir     string
	ConfigPath   string
	ManifestPath string // empty when the archive carries no manifest
}

// Extract unpacks zipPath into destDir. Entry names are confined to the
// destination directory.
func Extract(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return apperrors.NewInvalidArchive(fmt.Sprintf("cannot open archive %s", zipPath), err)
	}
	defer r.Close()

	for _, f := range r.File {
		target, err := safeJoin(destDir, f.Name)
		if err != nil {
			return apperrors.NewInvalidArchive("archive contains an unsafe entry path", err).
				WithContext("entry", f.Name)
		}

		mode := f.FileInfo().Mode()
		switch {
		case f.FileInfo().IsDir():
			if err := os.MkdirAll(target, mode.Perm()); err != nil {
				return apperrors.NewInvalidArchive("extraction failed", err)
			}
		case mode&os.ModeSymlink != 0:
			link, err := readEntry(f)
			if err != nil {
				return apperrors.NewInvalidArchive("extraction failed", err)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return apperrors.NewInvalidArchive("extraction failed", err)
			}
			if err := os.Symlink(string(link), target); err != nil {
				return apperrors.NewInvalidArchive("extraction failed", err)
			}
		default:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return apperrors.NewInvalidArchive("extraction failed", err)
			}
			if err := extractFile(f, target, mode.Perm()); err != nil {
				return apperrors.NewInvalidArchive("extraction failed", err).
					WithContext("entry", f.Name)
			}
		}
	}
	return nil
}

func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("entry %q escapes the extraction directory", name)
	}
	return target, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func extractFile(f *zip.File, target string, perm os.FileMode) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Validate checks the fixed archive layout inside an extraction root, in
// order: database.sql present and non-empty, files/ present, and exactly
// one wp-config.php somewhere under files/. More than one configuration
// artifact makes the archive ambiguous (nested multi-site trees) and is
// rejected rather than silently picking the first match.
func Validate(root string) (*Extracted, error) {
	sqlPath := filepath.Join(root, SQLFileName)
	info, err := os.Stat(sqlPath)
	if err != nil {
		return nil, apperrors.NewInvalidArchive("archive has no database.sql", err)
	}
	if info.Size() == 0 {
		return nil, apperrors.NewInvalidArchive("archive database.sql is empty", nil)
	}

	filesDir := filepath.Join(root, FilesDirName)
	if info, err := os.Stat(filesDir); err != nil || !info.IsDir() {
		return nil, apperrors.NewInvalidArchive("archive has no files/ directory", err)
	}

	configs, err := wpconfig.FindAll(filesDir)
	if err != nil {
		return nil, apperrors.NewInvalidArchive("cannot search archive for wp-config.php", err)
	}
	switch len(configs) {
	case 0:
		return nil, apperrors.NewInvalidArchive("archive files/ contains no wp-config.php", nil)
	case 1:
		// The expected shape: exactly one site in the archive.
	default:
		return nil, apperrors.NewInvalidArchive(
			fmt.Sprintf("archive is ambiguous: %d wp-config.php files found under files/", len(configs)), nil)
	}

	extracted := &Extracted{
		Root:       root,
		SQLPath:    sqlPath,
		FilesDir:   filesDir,
		ConfigPath: configs[0],
	}

	manifestPath := filepath.Join(root, ManifestFileName)
	if info, err := os.Stat(manifestPath); err == nil && !info.IsDir() {
		extracted.ManifestPath = manifestPath
	}
	return extracted, nil
}

// ExtractAndValidate unpacks an archive into destDir and validates its
// layout before anything destructive happens to the live installation.
func ExtractAndValidate(zipPath, destDir string) (*Extracted, error) {
	if err := Extract(zipPath, destDir); err != nil {
		return nil, err
	}
	return Validate(destDir)
}

// ReadManifest returns the raw manifest text for operator display, or an
// empty string when the archive has none.
func ReadManifest(e *Extracted) (string, error) {
	if e.ManifestPath == "" {
		return "", nil
	}
	data, err := os.ReadFile(e.ManifestPath)
	if err != nil {
		return "", fmt.Errorf("reading manifest: %w", err)
	}
	return string(data), nil
}
