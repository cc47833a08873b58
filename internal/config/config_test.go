package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoadWithoutFilesUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, path, err := Load("", t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != "" {
		t.Fatalf("expected no config path, got %q", path)
	}
	if cfg != Defaults() {
		t.Fatalf("Load() = %+v, want defaults %+v", cfg, Defaults())
	}
}

func TestLoadParsesYAML(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeConfig(t, path, `
tab_width: 8
theme: Light
context:
  enabled: false
  max_lines: 7
sidebar:
  width: 30
  hidden: true
watch:
  debounce: 1s
  poll_interval: 2m
`)

	cfg, got, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != path {
		t.Fatalf("path = %q, want %q", got, path)
	}
	want := Config{
		TabWidth: 8,
		Context:  ContextConfig{Enabled: false, MaxLines: 7},
		Theme:    "light",
		Sidebar:  SidebarConfig{Width: 30, Hidden: true},
		Watch:    WatchConfig{Debounce: time.Second, PollInterval: 2 * time.Minute},
	}
	if cfg != want {
		t.Fatalf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestLoadPrefersRepoFile(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeConfig(t, filepath.Join(xdg, "reviewdiff", "config.yaml"), "tab_width: 2\n")

	repo := t.TempDir()
	cfg, _, err := Load("", repo)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TabWidth != 2 {
		t.Fatalf("user config not applied: %+v", cfg)
	}

	writeConfig(t, filepath.Join(repo, RepoFileName), "tab_width: 6\n")
	cfg, path, err := Load("", repo)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TabWidth != 6 || path != filepath.Join(repo, RepoFileName) {
		t.Fatalf("repo config not preferred: %+v from %q", cfg, path)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("REVIEWDIFF_TAB_WIDTH", "3")
	t.Setenv("REVIEWDIFF_CONTEXT_MAX_LINES", "9")

	cfg, _, err := Load("", "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TabWidth != 3 || cfg.Context.MaxLines != 9 {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), ""); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestValidateClampsAndRejects(t *testing.T) {
	cfg := Defaults()
	cfg.TabWidth = 99
	cfg.Context.MaxLines = -4
	cfg.Watch.Debounce = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.TabWidth != 16 || cfg.Context.MaxLines != 0 || cfg.Watch.Debounce != 300*time.Millisecond {
		t.Fatalf("Validate() did not clamp: %+v", cfg)
	}

	cfg.Theme = "neon"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Validate() error = %v, want ErrInvalid", err)
	}
}

func TestDefaultPathUsesXDGConfigHome(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error = %v", err)
	}

	want := filepath.Join(xdg, "reviewdiff", "config.yaml")
	if got != want {
		t.Fatalf("DefaultPath()=%q want %q", got, want)
	}
}
