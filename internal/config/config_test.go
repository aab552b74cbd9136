package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"rscapture/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("DISPLAY", ":1.0")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "rscapture", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "Videos") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Capture.Display != ":1.0" {
		t.Fatalf("expected display from env, got %q", cfg.Capture.Display)
	}
	if cfg.Capture.StopTimeoutSeconds != 5 {
		t.Fatalf("unexpected stop timeout: %d", cfg.Capture.StopTimeoutSeconds)
	}
	if cfg.Encode.DefaultQuality != "medium" {
		t.Fatalf("unexpected default quality: %q", cfg.Encode.DefaultQuality)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be a directory", dir)
		}
	}
}

func TestLoadExplicitFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
staging_dir = "` + filepath.Join(dir, "staging") + `"
output_dir = "` + filepath.Join(dir, "out") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[capture]
display = ":9.0"
framerate = 60
stop_timeout_seconds = 2

[encode]
default_quality = "high"
preset = "fast"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Capture.Display != ":9.0" {
		t.Fatalf("unexpected display: %q", cfg.Capture.Display)
	}
	if cfg.Capture.Framerate != 60 {
		t.Fatalf("unexpected framerate: %d", cfg.Capture.Framerate)
	}
	if cfg.Encode.DefaultQuality != "high" {
		t.Fatalf("unexpected quality: %q", cfg.Encode.DefaultQuality)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad quality", func(c *config.Config) { c.Encode.DefaultQuality = "extreme" }},
		{"bad preset", func(c *config.Config) { c.Encode.Preset = "warp" }},
		{"bad framerate", func(c *config.Config) { c.Capture.Framerate = 0 }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected sample config content")
	}
}
