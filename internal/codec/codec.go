// Package codec provides decompression for opening book data files.
// The codec for a file is chosen by its extension.
package codec

import (
	"compress/gzip"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Codec provides compression and decompression functionality.
type Codec interface {
	// Reader wraps r to decompress data read from it.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it.
	Writer(w io.Writer) (io.WriteCloser, error)
	// Extension returns the file extension without dot (e.g. "zst", "gz").
	// Returns empty string for no compression.
	Extension() string
}

// ForPath returns the codec matching the path's extension. Unrecognized
// extensions get the no-op codec.
func ForPath(path string) Codec {
	switch {
	case strings.HasSuffix(path, ".zst"):
		return Zstd{}
	case strings.HasSuffix(path, ".gz"):
		return Gzip{}
	default:
		return Noop{}
	}
}

// Zstd implements zstd compression.
type Zstd struct{}

var _ Codec = Zstd{}

func (Zstd) Reader(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return decoder.IOReadCloser(), nil
}

func (Zstd) Writer(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w)
}

func (Zstd) Extension() string { return "zst" }

// Gzip implements gzip compression.
type Gzip struct{}

var _ Codec = Gzip{}

func (Gzip) Reader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

func (Gzip) Writer(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}

func (Gzip) Extension() string { return "gz" }

// Noop passes data through unchanged.
type Noop struct{}

var _ Codec = Noop{}

func (Noop) Reader(r io.Reader) (io.ReadCloser, error) {
	if rc, ok := r.(io.ReadCloser); ok {
		return rc, nil
	}
	return io.NopCloser(r), nil
}

func (Noop) Writer(w io.Writer) (io.WriteCloser, error) {
	if wc, ok := w.(io.WriteCloser); ok {
		return wc, nil
	}
	return nopWriteCloser{w}, nil
}

func (Noop) Extension() string { return "" }

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
