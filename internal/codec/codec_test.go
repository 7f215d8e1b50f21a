package codec

import (
	"bytes"
	"io"
	"testing"
)

func TestForPath(t *testing.T) {
	tests := []struct {
		path string
		ext  string
	}{
		{"openings/a.tsv", ""},
		{"openings/a.tsv.gz", "gz"},
		{"openings/a.tsv.zst", "zst"},
		{"openings/a.unknown", ""},
	}

	for _, tt := range tests {
		if got := ForPath(tt.path).Extension(); got != tt.ext {
			t.Errorf("ForPath(%q).Extension() = %q, want %q", tt.path, got, tt.ext)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	payload := []byte("eco\tname\t1. e4 e5 2. Nf3 Nc6 3. Bb5\n")

	for _, c := range []Codec{Noop{}, Gzip{}, Zstd{}} {
		t.Run("ext="+c.Extension(), func(t *testing.T) {
			var buf bytes.Buffer

			w, err := c.Writer(&buf)
			if err != nil {
				t.Fatalf("Writer() error = %v", err)
			}
			if _, err := w.Write(payload); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			r, err := c.Reader(&buf)
			if err != nil {
				t.Fatalf("Reader() error = %v", err)
			}
			defer r.Close()

			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("round trip = %q, want %q", got, payload)
			}
		})
	}
}
