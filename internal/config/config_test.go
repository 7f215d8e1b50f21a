package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerAddr != ":8080" {
		t.Errorf("ServerAddr = %q, want :8080", cfg.ServerAddr)
	}
	if cfg.Depth != 12 {
		t.Errorf("Depth = %d, want 12", cfg.Depth)
	}
	if cfg.CacheSize != 4096 {
		t.Errorf("CacheSize = %d, want 4096", cfg.CacheSize)
	}
	if cfg.DisableDownload {
		t.Error("DisableDownload = true, want false")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GAMEREVIEW_SERVER_ADDR", ":9000")
	t.Setenv("GAMEREVIEW_DEPTH", "16")
	t.Setenv("GAMEREVIEW_ENGINE_PATH", "/usr/bin/stockfish")
	t.Setenv("GAMEREVIEW_DISABLE_DOWNLOAD", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerAddr != ":9000" {
		t.Errorf("ServerAddr = %q, want :9000", cfg.ServerAddr)
	}
	if cfg.Depth != 16 {
		t.Errorf("Depth = %d, want 16", cfg.Depth)
	}
	if cfg.EnginePath != "/usr/bin/stockfish" {
		t.Errorf("EnginePath = %q, want /usr/bin/stockfish", cfg.EnginePath)
	}
	if !cfg.DisableDownload {
		t.Error("DisableDownload = false, want true")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gamereview.env")
	content := "SERVER_ADDR=:7070\nBOOK_DIR=/data/books\nDEPTH=14\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerAddr != ":7070" {
		t.Errorf("ServerAddr = %q, want :7070", cfg.ServerAddr)
	}
	if cfg.BookDir != "/data/books" {
		t.Errorf("BookDir = %q, want /data/books", cfg.BookDir)
	}
	if cfg.Depth != 14 {
		t.Errorf("Depth = %d, want 14", cfg.Depth)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("Load() with missing file: expected error")
	}
}

func TestLoadInvalidValues(t *testing.T) {
	t.Setenv("GAMEREVIEW_DEPTH", "0")
	if _, err := Load(""); err == nil {
		t.Error("Load() with zero depth: expected error")
	}
}
