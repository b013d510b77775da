package archive

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType selects the algorithm for standalone database exports.
type CompressionType string

const (
	CompressionNone CompressionType = "none"
	CompressionGzip CompressionType = "gzip"
	CompressionLZ4  CompressionType = "lz4"
	CompressionZstd CompressionType = "zstd"
)

// ParseCompressionType validates an operator-supplied algorithm name.
func ParseCompressionType(s string) (CompressionType, error) {
	switch CompressionType(s) {
	case CompressionNone, CompressionGzip, CompressionLZ4, CompressionZstd:
		return CompressionType(s), nil
	default:
		return "", fmt.Errorf("unsupported compression type %q (none, gzip, lz4, zstd)", s)
	}
}

// Extension returns the filename suffix appended for the algorithm.
func (c CompressionType) Extension() string {
	switch c {
	case CompressionGzip:
		return ".gz"
	case CompressionLZ4:
		return ".lz4"
	case CompressionZstd:
		return ".zst"
	default:
		return ""
	}
}

// newCompressingWriter wraps out with the selected algorithm's encoder.
func newCompressingWriter(out io.Writer, algorithm CompressionType) (io.WriteCloser, error) {
	switch algorithm {
	case CompressionGzip:
		return gzip.NewWriterLevel(out, gzip.BestCompression)
	case CompressionLZ4:
		return lz4.NewWriter(out), nil
	case CompressionZstd:
		return zstd.NewWriter(out)
	default:
		return nil, fmt.Errorf("unsupported compression type %q", algorithm)
	}
}

// CompressFile streams srcPath into dstPath using the given algorithm.
// CompressionNone degrades to a plain copy.
func CompressFile(srcPath, dstPath string, algorithm CompressionType) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", srcPath, err)
	}
	defer in.Close()

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dstPath, err)
	}

	if algorithm == CompressionNone {
		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return fmt.Errorf("copying dump: %w", err)
		}
		return out.Close()
	}

	cw, err := newCompressingWriter(out, algorithm)
	if err != nil {
		out.Close()
		return err
	}
	if _, err := io.Copy(cw, in); err != nil {
		cw.Close()
		out.Close()
		return fmt.Errorf("compressing dump: %w", err)
	}
	if err := cw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("finalizing compressed dump: %w", err)
	}
	return out.Close()
}

// DecompressFile reverses CompressFile, selecting the decoder by algorithm.
func DecompressFile(srcPath, dstPath string, algorithm CompressionType) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", srcPath, err)
	}
	defer in.Close()

	var reader io.Reader
	switch algorithm {
	case CompressionNone:
		reader = in
	case CompressionGzip:
		gr, err := gzip.NewReader(in)
		if err != nil {
			return fmt.Errorf("reading gzip stream: %w", err)
		}
		defer gr.Close()
		reader = gr
	case CompressionLZ4:
		reader = lz4.NewReader(in)
	case CompressionZstd:
		zr, err := zstd.NewReader(in)
		if err != nil {
			return fmt.Errorf("reading zstd stream: %w", err)
		}
		defer zr.Close()
		reader = zr
	default:
		return fmt.Errorf("unsupported compression type %q", algorithm)
	}

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dstPath, err)
	}
	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		return fmt.Errorf("decompressing: %w", err)
	}
	return out.Close()
}
