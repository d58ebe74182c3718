package gvr

import (
	"log/slog"

	"github.com/gogpu/gvr/atlas"
	"github.com/gogpu/gvr/gpucore"
)

// MaxPrims is the default per-frame bound on recorded transforms,
// scissors and paints.
const MaxPrims = 65536

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := gvr.New(backend,
//		gvr.WithAtlasSize(2048),
//		gvr.WithTargetFormat(gpucore.TextureFormatRGBA8Unorm))
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	maxPrims        int
	atlasSize       int
	atlasThreshold  float64
	targetFormat    gpucore.TextureFormat
	initialCapacity int
	logger          *slog.Logger
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		maxPrims:        MaxPrims,
		atlasSize:       atlas.DefaultSize,
		atlasThreshold:  atlas.DefaultThreshold,
		targetFormat:    gpucore.TextureFormatBGRA8Unorm,
		initialCapacity: 1024,
	}
}

// WithMaxPrims sets the per-frame bound on transforms, scissors and
// paints. Past the bound, new entries alias index 0 and the overflow is
// counted in Stats.
func WithMaxPrims(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPrims = n
		}
	}
}

// WithAtlasSize sets the edge length of both atlas textures in texels.
// Values below atlas.MinSize are raised to it.
func WithAtlasSize(px int) Option {
	return func(o *options) {
		o.atlasSize = px
	}
}

// WithAtlasThreshold sets the atlas utilization above which the whole
// glyph cache is discarded at the next Begin.
func WithAtlasThreshold(f float64) Option {
	return func(o *options) {
		o.atlasThreshold = f
	}
}

// WithTargetFormat sets the color format of the render targets passed
// to Encode.
func WithTargetFormat(f gpucore.TextureFormat) Option {
	return func(o *options) {
		o.targetFormat = f
	}
}

// WithInitialCapacity sets the starting element capacity of every
// per-frame GPU array. Arrays grow on demand.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.initialCapacity = n
		}
	}
}

// WithLogger sets a logger for this renderer and its backend, overriding
// the package logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
