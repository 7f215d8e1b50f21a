package engine

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
const afterE4FEN = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"

// fakeEngine is a shell script speaking just enough UCI for the session:
// always two candidate lines, cp 25 and cp -5 from the mover's view.
const fakeEngine = `#!/bin/sh
while read line; do
  case "$line" in
    uci)
      echo "id name fakefish"
      echo "uciok"
      ;;
    go*)
      echo "info depth 1 multipv 1 score cp 25 pv e2e4 e7e5"
      echo "info string irrelevant chatter"
      echo "info depth 2 multipv 1 score cp 30 pv e2e4 e7e5 g1f3"
      echo "info depth 2 multipv 2 score cp -5 pv d2d4"
      echo "bestmove e2e4"
      ;;
    quit)
      exit 0
      ;;
  esac
done
`

func fakeEnginePath(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine script requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "fakefish")
	if err := os.WriteFile(path, []byte(fakeEngine), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSession_Analyze(t *testing.T) {
	sess, err := NewSession(fakeEnginePath(t), nil)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer sess.Close()

	ev, err := sess.Analyze(context.Background(), startFEN, 2, 3)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	// The deeper info line wins; the chatter line is ignored.
	if got := ev.BestCP(); got != 30 {
		t.Errorf("BestCP() = %d, want 30", got)
	}
	if got := ev.BestMove(); got != "e2e4" {
		t.Errorf("BestMove() = %q, want e2e4", got)
	}
	if len(ev.Lines) != 2 {
		t.Fatalf("len(Lines) = %d, want 2", len(ev.Lines))
	}
	if ev.Lines[1].CP != -5 {
		t.Errorf("second line cp = %d, want -5", ev.Lines[1].CP)
	}
}

func TestSession_Analyze_BlackToMoveFlipsSign(t *testing.T) {
	sess, err := NewSession(fakeEnginePath(t), nil)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer sess.Close()

	ev, err := sess.Analyze(context.Background(), afterE4FEN, 2, 1)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	// The fake reports +30 for the mover; with Black to move that is
	// -30 from White's perspective.
	if got := ev.BestCP(); got != -30 {
		t.Errorf("BestCP() = %d, want -30", got)
	}
}

func TestSession_Analyze_InvalidFEN(t *testing.T) {
	sess, err := NewSession(fakeEnginePath(t), nil)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	defer sess.Close()

	if _, err := sess.Analyze(context.Background(), "not a fen", 2, 1); err == nil {
		t.Error("Analyze() error = nil, want error for invalid FEN")
	}
}

func TestSession_CloseTwice(t *testing.T) {
	sess, err := NewSession(fakeEnginePath(t), nil)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	if err := sess.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestNewSession_MissingBinary(t *testing.T) {
	if _, err := NewSession(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Error("NewSession() error = nil, want error")
	}
}

func TestResolver_ExplicitPath(t *testing.T) {
	path := fakeEnginePath(t)
	r := NewResolver(ResolverConfig{Path: path, DisableDownload: true})

	got, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != path {
		t.Errorf("Resolve() = %q, want %q", got, path)
	}
}

func TestResolver_CachedBinary(t *testing.T) {
	cacheDir := t.TempDir()
	cached := filepath.Join(cacheDir, cachedBinaryName)
	if err := os.WriteFile(cached, []byte(fakeEngine), 0o755); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(ResolverConfig{CacheDir: cacheDir, DisableDownload: true, BinaryName: "gamereview-no-such-binary"})

	got, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != cached {
		t.Errorf("Resolve() = %q, want %q", got, cached)
	}
}

func TestResolver_Unavailable(t *testing.T) {
	t.Setenv("STOCKFISH_PATH", "")
	r := NewResolver(ResolverConfig{
		CacheDir:        t.TempDir(),
		DisableDownload: true,
		BinaryName:      "gamereview-no-such-binary",
	})

	if _, err := r.Resolve(context.Background()); err == nil {
		t.Error("Resolve() error = nil, want ErrUnavailable")
	}
}

func TestResolver_Memoizes(t *testing.T) {
	path := fakeEnginePath(t)
	r := NewResolver(ResolverConfig{Path: path, DisableDownload: true})

	first, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	second, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if first != second {
		t.Errorf("Resolve() not stable: %q then %q", first, second)
	}
}
