package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/gvr/backend"
)

type config struct {
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	PixelRatio float32 `toml:"pixel_ratio"`
	Frames     int     `toml:"frames"`

	// Backend is a registered backend name, "memory" or "noop".
	Backend string `toml:"backend"`

	AtlasSize      int     `toml:"atlas_size"`
	AtlasThreshold float64 `toml:"atlas_threshold"`
	MaxPrims       int     `toml:"max_prims"`

	Text     string  `toml:"text"`
	FontSize float32 `toml:"font_size"`

	LogLevel string `toml:"log_level"`
}

func defaultConfig() config {
	return config{
		Width:          800,
		Height:         600,
		PixelRatio:     1,
		Frames:         3,
		Backend:        "memory",
		AtlasSize:      2048,
		AtlasThreshold: 0.7,
		MaxPrims:       65536,
		Text:           "Hello, gvr!",
		FontSize:       24,
		LogLevel:       "info",
	}
}

// loadConfig overlays the TOML file at path onto cfg. Keys missing from
// the file keep their current values; unknown keys are an error.
func loadConfig(path string, cfg *config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func (c config) validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
	case c.PixelRatio <= 0:
		return fmt.Errorf("invalid pixel ratio %v", c.PixelRatio)
	case c.Frames < 0:
		return fmt.Errorf("invalid frame count %d", c.Frames)
	case !backend.IsRegistered(c.Backend):
		return fmt.Errorf("unknown backend %q (available: %v)", c.Backend, backend.Available())
	}
	return nil
}

func (c config) level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
