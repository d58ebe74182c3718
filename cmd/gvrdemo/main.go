// Command gvrdemo renders a few frames of a demo scene and logs renderer
// statistics for each frame.
//
// Usage:
//
//	gvrdemo [-config demo.toml] [-backend memory|noop] [-frames N] [-v]
//
// The memory backend records commands without a device; noop runs the
// full wgpu HAL path on the noop device.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/gvr"
	"github.com/gogpu/gvr/backend"
	_ "github.com/gogpu/gvr/backend/memory"
	_ "github.com/gogpu/gvr/backend/wgpu"
	"github.com/gogpu/gvr/gpucore"
	"github.com/gogpu/gvr/text"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "gvrdemo: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := defaultConfig()

	fs := flag.NewFlagSet("gvrdemo", flag.ContinueOnError)
	var (
		configPath  = fs.String("config", "", "TOML config file")
		width       = fs.Int("width", cfg.Width, "target width")
		height      = fs.Int("height", cfg.Height, "target height")
		frames      = fs.Int("frames", cfg.Frames, "frames to render")
		backendName = fs.String("backend", cfg.Backend, "backend: memory or noop")
		verbose     = fs.Bool("v", false, "debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			return err
		}
	}
	// Flags given on the command line win over the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "frames":
			cfg.Frames = *frames
		case "backend":
			cfg.Backend = *backendName
		case "v":
			if *verbose {
				cfg.LogLevel = "debug"
			}
		}
	})
	if err := cfg.validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.level()}))
	gvr.SetLogger(logger)
	defer gvr.SetLogger(nil)

	b, err := backend.Open(cfg.Backend)
	if err != nil {
		return err
	}
	defer b.Release()

	r, err := gvr.New(b,
		gvr.WithLogger(logger),
		gvr.WithAtlasSize(cfg.AtlasSize),
		gvr.WithAtlasThreshold(cfg.AtlasThreshold),
		gvr.WithMaxPrims(cfg.MaxPrims),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	defer r.Release()

	target, err := b.CreateTexture(&gpucore.TextureDesc{
		Label:  "gvrdemo_target",
		Width:  int(float32(cfg.Width) * cfg.PixelRatio),
		Height: int(float32(cfg.Height) * cfg.PixelRatio),
		Format: gpucore.TextureFormatBGRA8Unorm,
		Usage:  gpucore.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}
	defer b.DestroyTexture(target)

	font, err := text.NewFont(goregular.TTF)
	if err != nil {
		return err
	}
	d := &demo{
		r:      r,
		cfg:    cfg,
		font:   font,
		drawer: text.NewDrawer(),
	}
	if err := d.init(); err != nil {
		return err
	}

	for frame := 0; frame < cfg.Frames; frame++ {
		if err := r.Begin(float32(cfg.Width), float32(cfg.Height), cfg.PixelRatio); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		d.draw(frame)
		if err := r.Encode(&gpucore.RenderPassDesc{
			Label:      "gvrdemo",
			Target:     target,
			Clear:      true,
			ClearColor: [4]float64{0.1, 0.1, 0.12, 1},
		}); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}

		s := r.Stats()
		logger.Info("frame",
			"frame", s.Frame,
			"prims", s.Prims,
			"runs", s.Runs,
			"paints", s.Paints,
			"atlas_usage", s.AtlasUsage,
			"atlas_entries", s.AtlasEntries,
			"skipped", s.SkippedDraws)
	}
	return nil
}
