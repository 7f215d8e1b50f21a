package engine

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// DefaultDownloadURL is the release artifact fetched when no engine
// binary is available locally.
const DefaultDownloadURL = "https://github.com/official-stockfish/Stockfish/releases/download/sf_18/stockfish-ubuntu-x86-64.tar"

// DefaultBinaryName is the executable searched for on PATH.
const DefaultBinaryName = "stockfish"

// cachedBinaryName is the filename of the downloaded engine in CacheDir.
const cachedBinaryName = "stockfish_sf18"

// ErrUnavailable indicates no engine binary could be resolved. It is a
// distinct condition from an evaluation failure: nothing was evaluated.
var ErrUnavailable = errors.New("engine: no engine binary available")

// ResolverConfig configures binary resolution.
type ResolverConfig struct {
	// Path is an explicitly configured engine binary. When set and
	// present it wins over every other source.
	// Defaults to the STOCKFISH_PATH environment variable.
	Path string

	// CacheDir is where downloaded binaries are kept.
	// Defaults to the OS temp directory.
	CacheDir string

	// DownloadURL overrides the release artifact URL.
	DownloadURL string

	// BinaryName is the executable searched for on PATH.
	// Defaults to DefaultBinaryName.
	BinaryName string

	// DisableDownload skips the network fetch step.
	DisableDownload bool

	Logger *zap.Logger
}

// Resolver locates a usable engine binary. Resolution order: the
// configured path, a previously downloaded binary, a fresh download of
// the release artifact, and finally the system PATH. The result is
// memoized.
type Resolver struct {
	cfg ResolverConfig

	mu       sync.Mutex
	resolved string
}

// NewResolver creates a Resolver from cfg, filling in defaults.
func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.Path == "" {
		cfg.Path = os.Getenv("STOCKFISH_PATH")
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = os.TempDir()
	}
	if cfg.DownloadURL == "" {
		cfg.DownloadURL = DefaultDownloadURL
	}
	if cfg.BinaryName == "" {
		cfg.BinaryName = DefaultBinaryName
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Resolver{cfg: cfg}
}

// Resolve returns the path to a usable engine binary, or ErrUnavailable
// (possibly wrapped with detail) when every source fails.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved != "" && isFile(r.resolved) {
		return r.resolved, nil
	}

	if r.cfg.Path != "" && isFile(r.cfg.Path) {
		r.resolved = r.cfg.Path
		return r.resolved, nil
	}

	cached := filepath.Join(r.cfg.CacheDir, cachedBinaryName)
	if isFile(cached) {
		r.resolved = cached
		return r.resolved, nil
	}

	if !r.cfg.DisableDownload {
		if err := r.download(ctx, cached); err != nil {
			r.cfg.Logger.Warn("engine download failed", zap.Error(err))
		} else if isFile(cached) {
			r.resolved = cached
			return r.resolved, nil
		}
	}

	if found, err := exec.LookPath(r.cfg.BinaryName); err == nil {
		r.resolved = found
		return r.resolved, nil
	}

	return "", fmt.Errorf("%w: set an explicit engine path", ErrUnavailable)
}

// download fetches the release tar and extracts the engine binary to
// dest. A file lock serializes concurrent processes populating the same
// cache entry.
func (r *Resolver) download(ctx context.Context, dest string) error {
	lock := flock.New(dest + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking cache: %w", err)
	}
	defer lock.Unlock()

	// Another process may have finished the download while we waited.
	if isFile(dest) {
		return nil
	}

	r.cfg.Logger.Info("downloading engine",
		zap.String("url", r.cfg.DownloadURL),
		zap.String("dest", dest),
	)

	tarPath := dest + ".tar"
	defer os.Remove(tarPath)

	dl := NewDownloader()
	if err := dl.DownloadToFile(ctx, r.cfg.DownloadURL, tarPath); err != nil {
		return fmt.Errorf("downloading engine: %w", err)
	}

	if err := extractBinary(tarPath, dest); err != nil {
		return fmt.Errorf("extracting engine: %w", err)
	}

	r.cfg.Logger.Info("engine ready", zap.String("path", dest))
	return nil
}

// extractBinary scans the tar archive for the engine executable and
// writes it to dest with execute permission.
func extractBinary(tarPath, dest string) error {
	f, err := os.Open(tarPath)
	if err != nil {
		return err
	}
	defer f.Close()

	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name := filepath.Base(hdr.Name)
		if name != "stockfish" && !strings.HasPrefix(name, "stockfish-ubuntu-x86-64") {
			continue
		}

		out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o750)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			os.Remove(dest)
			return err
		}
		return out.Close()
	}

	return fmt.Errorf("no engine binary in archive")
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
