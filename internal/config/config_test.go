package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRead_DefaultsFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TODO_CONFIG_DIR", dir)

	cfg, err := NewEnvReader().Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if cfg.ConfigDir != dir {
		t.Fatalf("expected config dir %q; got %q", dir, cfg.ConfigDir)
	}
	if cfg.Dir != filepath.Join(dir, "data") {
		t.Fatalf("expected default data dir; got %q", cfg.Dir)
	}
	if cfg.Storage != "sqlite" || cfg.Format != "json" || cfg.LogLevel != "warn" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Web.Addr != "127.0.0.1:3335" || cfg.Web.TUIAddr != "127.0.0.1:3334" {
		t.Fatalf("unexpected web defaults: %+v", cfg.Web)
	}
}

func TestRead_FileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TODO_CONFIG_DIR", dir)
	yaml := "storage: file\nformat: edn\ntui:\n  glyphs: ascii\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TODO_FORMAT", "json")

	cfg, err := NewEnvReader().Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if cfg.Storage != "file" {
		t.Fatalf("expected storage from file; got %q", cfg.Storage)
	}
	if cfg.Format != "json" {
		t.Fatalf("expected env to override file; got %q", cfg.Format)
	}
	if cfg.TUI.Glyphs != "ascii" {
		t.Fatalf("expected nested value from file; got %q", cfg.TUI.Glyphs)
	}
}
