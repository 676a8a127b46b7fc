package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := "prefix: \"b\"\nredraw_tick_ms: 10\nlog_path: sm.log\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got := cfg.PrefixByte(); got != 'b' {
		t.Errorf("PrefixByte = %q, want 'b'", got)
	}
	if got := cfg.RedrawTick(); got != 10*time.Millisecond {
		t.Errorf("RedrawTick = %v, want 10ms", got)
	}
	if got := cfg.LogFilePath(); got != "sm.log" {
		t.Errorf("LogFilePath = %q, want sm.log", got)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if got := cfg.PrefixByte(); got != DefaultPrefix {
		t.Errorf("PrefixByte on zero-value config = %v, want DefaultPrefix", got)
	}
	if got := cfg.RedrawTick(); got != DefaultRedrawTick {
		t.Errorf("RedrawTick on zero-value config = %v, want DefaultRedrawTick", got)
	}
	if got := cfg.LogFilePath(); got != DefaultLogPath {
		t.Errorf("LogFilePath on zero-value config = %q, want %q", got, DefaultLogPath)
	}
}
