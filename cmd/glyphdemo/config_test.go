package main

import (
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "glyphdemo.toml")
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("glyphdemo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[window]
width = 640
height = 480
vsync = false

[render]
smoothing = 0.5
program_limit = 8

[shaders]
dir = "shaders"

[log]
level = "debug"
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.Window.Width != 640 || cfg.Window.Height != 480 || cfg.Window.VSync {
		t.Errorf("window = %+v", cfg.Window)
	}
	if cfg.Window.Title != "glyphdemo" {
		t.Errorf("title default lost: %q", cfg.Window.Title)
	}
	if cfg.Render.Smoothing != 0.5 || cfg.Render.ProgramLimit != 8 {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Shaders.Dir != "shaders" {
		t.Errorf("shaders dir = %q", cfg.Shaders.Dir)
	}
	if level, _ := cfg.logLevel(); level != slog.LevelDebug {
		t.Errorf("log level = %v", level)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"syntax", "[window\n", "failed to parse TOML"},
		{"unknown key", "[window]\ndepth = 3\n", "unknown keys: window.depth"},
		{"bad size", "[window]\nwidth = -1\n", "invalid window size"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.text))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("loadConfig error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "[window]\nwidth = 640\nheight = 480\n")
	cfg, err := parseFlags(newFlagSet(), []string{"-config", path, "-width", "800", "-log", "info"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Window.Width != 800 || cfg.Window.Height != 480 {
		t.Errorf("size = %dx%d, want 800x480", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestFlagsDefaults(t *testing.T) {
	cfg, err := parseFlags(newFlagSet(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != defaultConfig() {
		t.Errorf("parseFlags() = %+v, want defaults", cfg)
	}
}
