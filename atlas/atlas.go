// Package atlas packs rasterized glyphs, images and icons into shared
// GPU textures and caches where each piece of content landed.
package atlas

import (
	"errors"
	"fmt"

	"github.com/gogpu/gvr/gpucore"
)

// Atlas errors.
var (
	// ErrAtlasFull is returned when the atlas cannot fit the requested region.
	ErrAtlasFull = errors.New("atlas: texture atlas is full")

	// ErrBitmapTooLarge is returned for content that cannot fit even an
	// empty atlas.
	ErrBitmapTooLarge = errors.New("atlas: bitmap larger than atlas")

	// ErrBitmapSize is returned when pixel data is shorter than its dimensions.
	ErrBitmapSize = errors.New("atlas: pixel data does not match bitmap size")

	// ErrReleased is returned when operating on a released atlas.
	ErrReleased = errors.New("atlas: atlas has been released")
)

// Default atlas settings.
const (
	// DefaultSize is the default atlas dimension (1024x1024).
	DefaultSize = 1024

	// MinSize is the minimum atlas dimension.
	MinSize = 256

	// DefaultPadding is the empty border kept between packed regions.
	DefaultPadding = 1

	// DefaultThreshold is the utilization above which the cache resets.
	DefaultThreshold = 0.7

	// retireFrames is how many CheckUsage calls a replaced texture survives
	// before it is destroyed, covering frames still in flight.
	retireFrames = 3
)

type upload struct {
	region Region
	pixels []byte
}

type retired struct {
	texture gpucore.TextureID
	frames  int
}

// Atlas is one square texture plus the allocator that packs it.
//
// Add only stages pixels. Flush writes every staged region to the texture
// in one pass, once per frame after all lookups.
type Atlas struct {
	backend gpucore.Backend
	label   string
	format  gpucore.TextureFormat
	size    int

	texture   gpucore.TextureID
	allocator *RectAllocator
	pending   []upload
	retired   []retired

	// full is set when an allocation ran out of room since the last reset.
	full     bool
	released bool
}

// New creates an atlas texture of size x size texels.
func New(backend gpucore.Backend, label string, format gpucore.TextureFormat, size int) (*Atlas, error) {
	if size < MinSize {
		size = MinSize
	}
	a := &Atlas{
		backend:   backend,
		label:     label,
		format:    format,
		size:      size,
		allocator: NewRectAllocator(size, size, DefaultPadding),
	}
	if err := a.createTexture(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Atlas) createTexture() error {
	tex, err := a.backend.CreateTexture(&gpucore.TextureDesc{
		Label:  a.label,
		Width:  a.size,
		Height: a.size,
		Format: a.format,
		Usage:  gpucore.TextureUsageCopyDst | gpucore.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("atlas: create %s texture: %w", a.label, err)
	}
	a.texture = tex
	return nil
}

// Add reserves space for a width x height bitmap and stages a copy of its
// pixels. pixels must hold width*height texels of the atlas format,
// tightly packed.
//
// Content larger than the atlas fails with ErrBitmapTooLarge and leaves
// the atlas usable; only ErrAtlasFull marks it Full.
func (a *Atlas) Add(width, height int, pixels []byte) (Region, error) {
	if a.released {
		return Region{}, ErrReleased
	}
	if len(pixels) < width*height*a.format.BytesPerPixel() {
		return Region{}, fmt.Errorf("%w: %dx%d needs %d bytes, got %d",
			ErrBitmapSize, width, height, width*height*a.format.BytesPerPixel(), len(pixels))
	}
	if !a.allocator.Fits(width, height) {
		return Region{}, fmt.Errorf("%w: %dx%d in %dx%d", ErrBitmapTooLarge, width, height, a.size, a.size)
	}
	r := a.allocator.Allocate(width, height)
	if !r.IsValid() {
		a.full = true
		return Region{}, ErrAtlasFull
	}
	n := width * height * a.format.BytesPerPixel()
	a.pending = append(a.pending, upload{region: r, pixels: append([]byte(nil), pixels[:n]...)})
	return r, nil
}

// Flush writes all staged regions to the texture.
func (a *Atlas) Flush() error {
	if a.released {
		return ErrReleased
	}
	for i, u := range a.pending {
		reg := gpucore.TextureRegion{X: u.region.X, Y: u.region.Y, Width: u.region.Width, Height: u.region.Height}
		if err := a.backend.WriteTexture(a.texture, reg, u.pixels); err != nil {
			a.pending = a.pending[i:]
			return fmt.Errorf("atlas: upload %s %v: %w", a.label, u.region, err)
		}
	}
	clear(a.pending)
	a.pending = a.pending[:0]
	return nil
}

// Reset discards every allocation and staged upload and replaces the
// texture. The old texture is destroyed after it can no longer be in use.
func (a *Atlas) Reset() error {
	if a.released {
		return ErrReleased
	}
	old := a.texture
	if err := a.createTexture(); err != nil {
		return err
	}
	a.retired = append(a.retired, retired{texture: old, frames: retireFrames})
	a.allocator.Reset()
	a.pending = a.pending[:0]
	a.full = false
	return nil
}

// tick ages retired textures and destroys expired ones.
func (a *Atlas) tick() {
	kept := a.retired[:0]
	for _, r := range a.retired {
		r.frames--
		if r.frames <= 0 {
			a.backend.DestroyTexture(r.texture)
			continue
		}
		kept = append(kept, r)
	}
	a.retired = kept
}

// Texture returns the current texture.
func (a *Atlas) Texture() gpucore.TextureID {
	return a.texture
}

// Size returns the atlas edge length in texels.
func (a *Atlas) Size() int {
	return a.size
}

// Format returns the texel format.
func (a *Atlas) Format() gpucore.TextureFormat {
	return a.format
}

// Usage returns the packed fraction of the atlas area.
func (a *Atlas) Usage() float64 {
	return a.allocator.Utilization()
}

// Full reports whether an allocation ran out of room since the last reset.
func (a *Atlas) Full() bool {
	return a.full
}

// Pending returns the number of staged uploads.
func (a *Atlas) Pending() int {
	return len(a.pending)
}

// Release destroys the texture and any retired textures.
func (a *Atlas) Release() {
	if a.released {
		return
	}
	for _, r := range a.retired {
		a.backend.DestroyTexture(r.texture)
	}
	a.retired = nil
	a.backend.DestroyTexture(a.texture)
	a.texture = gpucore.InvalidID
	a.pending = nil
	a.released = true
}
