package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Backend != BackendJSON {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendJSON)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %s, want 10s", cfg.Timeout)
	}
	if cfg.Server != "" {
		t.Errorf("Server = %q, want empty", cfg.Server)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "backend: sqlite\ntimeout: 3s\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TADA_SERVER", "http://example.test:9000")
	t.Setenv("TADA_LOG_LEVEL", "info")

	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Backend != BackendSQLite {
		t.Errorf("Backend = %q, want sqlite", cfg.Backend)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("Timeout = %s, want 3s", cfg.Timeout)
	}
	if cfg.Server != "http://example.test:9000" {
		t.Errorf("Server = %q, env override not applied", cfg.Server)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info (env beats file)", cfg.Log.Level)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() with missing explicit file succeeded")
	}

	t.Setenv("TADA_BACKEND", "postgres")
	if _, err := Load(New(), ""); err == nil {
		t.Error("Load() with unknown backend succeeded")
	}
}
