package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"

	apperrors "wp-backup/internal/errors"
)

// newDeflateWriter plugs the faster flate implementation into archive/zip.
func newDeflateWriter(out io.Writer) (io.WriteCloser, error) {
	return flate.NewWriter(out, flate.DefaultCompression)
}

// Package builds a zip archive at zipPath from the contents of stagingDir
// and returns the number of entries written.
func Package(stagingDir, zipPath string) (int, error) {
	out, err := os.Create(zipPath)
	if err != nil {
		return 0, apperrors.NewPackaging(fmt.Sprintf("cannot create archive %s", zipPath), err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, newDeflateWriter)

	entries := 0
	walkErr := filepath.WalkDir(stagingDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(stagingDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)

		switch {
		case d.IsDir():
			header.Name += "/"
			if _, err := zw.CreateHeader(header); err != nil {
				return err
			}
		case info.Mode()&os.ModeSymlink != 0:
			// Symlinks are stored uncompressed with their target as content.
			header.Method = zip.Store
			w, err := zw.CreateHeader(header)
			if err != nil {
				return err
			}
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			if _, err := w.Write([]byte(link)); err != nil {
				return err
			}
		default:
			header.Method = zip.Deflate
			w, err := zw.CreateHeader(header)
			if err != nil {
				return err
			}
			in, err := os.Open(path)
			if err != nil {
				return err
			}
			_, copyErr := io.Copy(w, in)
			in.Close()
			if copyErr != nil {
				return copyErr
			}
		}
		entries++
		return nil
	})

	if walkErr != nil {
		zw.Close()
		os.Remove(zipPath)
		return 0, apperrors.NewPackaging("archive packaging failed", walkErr)
	}
	if err := zw.Close(); err != nil {
		os.Remove(zipPath)
		return 0, apperrors.NewPackaging("cannot finalize archive", err)
	}
	if err := out.Close(); err != nil {
		return 0, apperrors.NewPackaging("cannot flush archive", err)
	}
	return entries, nil
}

// Verify re-opens a written archive and reads every entry to force the
// per-entry checksum pass. The caller treats a failure here as a warning:
// by the time Verify runs, the archive has already been delivered.
func Verify(zipPath string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("cannot reopen archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("entry %s: %w", f.Name, err)
		}
		_, copyErr := io.Copy(io.Discard, rc)
		closeErr := rc.Close()
		if copyErr != nil {
			return fmt.Errorf("entry %s failed checksum: %w", f.Name, copyErr)
		}
		if closeErr != nil {
			return fmt.Errorf("entry %s failed checksum: %w", f.Name, closeErr)
		}
	}
	return nil
}
