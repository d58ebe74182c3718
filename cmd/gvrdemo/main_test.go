package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
width = 320
height = 240
backend = "noop"
font_size = 12.5
`)
	cfg := defaultConfig()
	if err := loadConfig(path, &cfg); err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Width != 320 || cfg.Height != 240 {
		t.Errorf("size = %dx%d, want 320x240", cfg.Width, cfg.Height)
	}
	if cfg.Backend != "noop" {
		t.Errorf("Backend = %q, want noop", cfg.Backend)
	}
	if cfg.FontSize != 12.5 {
		t.Errorf("FontSize = %v, want 12.5", cfg.FontSize)
	}
	if cfg.AtlasSize != 2048 {
		t.Errorf("AtlasSize = %d, want default 2048", cfg.AtlasSize)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "colour = 1\n", "unknown keys: colour"},
		{"bad type", "width = \"wide\"\n", "read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			err := loadConfig(writeConfig(t, tt.body), &cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("loadConfig() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config)
		wantErr bool
	}{
		{"defaults", func(*config) {}, false},
		{"zero width", func(c *config) { c.Width = 0 }, true},
		{"zero ratio", func(c *config) { c.PixelRatio = 0 }, true},
		{"negative frames", func(c *config) { c.Frames = -1 }, true},
		{"unknown backend", func(c *config) { c.Backend = "vulkan" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			if err := cfg.validate(); (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRun(t *testing.T) {
	for _, backend := range []string{"memory", "noop"} {
		t.Run(backend, func(t *testing.T) {
			err := run([]string{"-backend", backend, "-frames", "2", "-width", "200", "-height", "150"})
			if err != nil {
				t.Errorf("run() error = %v", err)
			}
		})
	}
}

func TestRunFlagsOverrideConfig(t *testing.T) {
	path := writeConfig(t, "backend = \"bogus\"\n")
	if err := run([]string{"-config", path, "-frames", "0"}); err == nil {
		t.Error("run() with bogus backend: expected error")
	}
	if err := run([]string{"-config", path, "-backend", "memory", "-frames", "1"}); err != nil {
		t.Errorf("run() with flag override error = %v", err)
	}
}
