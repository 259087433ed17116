package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
)

type config struct {
	Window  windowConfig  `toml:"window"`
	Render  renderConfig  `toml:"render"`
	Shaders shadersConfig `toml:"shaders"`
	Log     logConfig     `toml:"log"`
}

type windowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

type renderConfig struct {
	// Smoothing scales the jitter between coverage samples, in pixels.
	Smoothing    float64 `toml:"smoothing"`
	ProgramLimit int     `toml:"program_limit"`
}

type shadersConfig struct {
	// Dir enables loading from disk with hot reload. Empty uses the
	// embedded shaders.
	Dir string `toml:"dir"`
}

type logConfig struct {
	Level string `toml:"level"`
}

func defaultConfig() config {
	return config{
		Window: windowConfig{
			Width:  1280,
			Height: 720,
			Title:  "glyphdemo",
			VSync:  true,
		},
		Render: renderConfig{Smoothing: 1},
		Log:    logConfig{Level: "warn"},
	}
}

// loadConfig decodes path over the defaults. Unknown keys are an error.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Render.Smoothing < 0 {
		return errors.New("smoothing must not be negative")
	}
	if _, err := c.logLevel(); err != nil {
		return err
	}
	return nil
}

func (c config) logLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.Log.Level, err)
	}
	return level, nil
}

// parseFlags reads an optional TOML file named by -config, then applies
// the flags that were set explicitly.
func parseFlags(fs *flag.FlagSet, args []string) (config, error) {
	var (
		path      = fs.String("config", "", "TOML config file")
		width     = fs.Int("width", 0, "window width")
		height    = fs.Int("height", 0, "window height")
		shaderDir = fs.String("shaders", "", "shader directory to load and watch (default: embedded)")
		vsync     = fs.Bool("vsync", true, "wait for vertical sync")
		smoothing = fs.Float64("smoothing", 0, "coverage sample spread in pixels")
		limit     = fs.Int("program-limit", 0, "max cached programs (0 = unlimited)")
		level     = fs.String("log", "", "log level: debug, info, warn, error")
	)
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	cfg := defaultConfig()
	if *path != "" {
		var err error
		if cfg, err = loadConfig(*path); err != nil {
			return config{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Window.Width = *width
		case "height":
			cfg.Window.Height = *height
		case "shaders":
			cfg.Shaders.Dir = *shaderDir
		case "vsync":
			cfg.Window.VSync = *vsync
		case "smoothing":
			cfg.Render.Smoothing = *smoothing
		case "program-limit":
			cfg.Render.ProgramLimit = *limit
		case "log":
			cfg.Log.Level = *level
		}
	})
	return cfg, cfg.validate()
}
