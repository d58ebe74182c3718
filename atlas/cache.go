package atlas

import (
	"errors"
	"fmt"

	"github.com/gogpu/gvr/gpucore"
	"github.com/gogpu/gvr/internal/cache"
)

// Bitmap is a rasterized glyph.
//
// Pixels holds Width*Height coverage bytes when Colored is false and
// Width*Height RGBA8 texels when Colored is true.
type Bitmap struct {
	Width   int
	Height  int
	Left    int // horizontal bearing from the pen to the bitmap's left edge
	Top     int // vertical bearing from the baseline up to the bitmap's top edge
	Colored bool
	Pixels  []byte
}

// Image is RGBA8 pixel data.
type Image struct {
	Width  int
	Height int
	Pixels []byte
}

// GlyphKey identifies one rasterization of a glyph.
type GlyphKey struct {
	Font  uint64
	Glyph uint32
	Size  uint32
	X, Y  SubpixelOffset
}

type contentKey struct {
	hash   string
	width  uint32
	height uint32
}

// Entry is the cached result of one rasterization.
// An invalid Rect means the content rasterized to nothing and is not drawn.
type Entry struct {
	Rect    Region
	Left    int
	Top     int
	Colored bool
}

// Cache maps content keys to packed atlas regions.
//
// Coverage glyphs are packed into the mask atlas (R8); color glyphs,
// images and icon renders into the color atlas (RGBA8). On a miss the
// rasterize callback is called exactly once and a copy of its pixels is
// staged for upload at the next Flush, so callbacks may reuse a scratch
// buffer. Content larger than the atlas is cached as an empty entry and
// never drawn. Entries are never evicted one by one: when
// either atlas passes the usage threshold, CheckUsage drops the whole
// cache and replaces both textures.
type Cache struct {
	mask      *Atlas
	color     *Atlas
	threshold float64

	glyphs *cache.Cache[GlyphKey, Entry]
	images *cache.Cache[contentKey, Entry]
	icons  *cache.Cache[contentKey, Entry]

	resets int
}

// NewCache creates both atlases with the given edge length.
// A threshold outside (0, 1] selects DefaultThreshold.
func NewCache(backend gpucore.Backend, size int, threshold float64) (*Cache, error) {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	mask, err := New(backend, "mask atlas", gpucore.TextureFormatR8Unorm, size)
	if err != nil {
		return nil, err
	}
	color, err := New(backend, "color atlas", gpucore.TextureFormatRGBA8Unorm, size)
	if err != nil {
		mask.Release()
		return nil, err
	}
	return &Cache{
		mask:      mask,
		color:     color,
		threshold: threshold,
		glyphs:    cache.New[GlyphKey, Entry](),
		images:    cache.New[contentKey, Entry](),
		icons:     cache.New[contentKey, Entry](),
	}, nil
}

// Glyph returns the entry for key, calling rasterize on a miss.
func (c *Cache) Glyph(key GlyphKey, rasterize func() Bitmap) Entry {
	return c.glyphs.GetOrCreate(key, func() (Entry, bool) {
		bm := rasterize()
		e := Entry{Left: bm.Left, Top: bm.Top, Colored: bm.Colored}
		if bm.Width <= 0 || bm.Height <= 0 {
			return e, true
		}
		target := c.mask
		if bm.Colored {
			target = c.color
		}
		r, err := target.Add(bm.Width, bm.Height, bm.Pixels)
		if err != nil {
			c.logAddFailure("glyph", err, bm.Width, bm.Height)
			return e, errors.Is(err, ErrBitmapTooLarge)
		}
		e.Rect = r
		return e, true
	})
}

// Image returns the entry for an RGBA8 image identified by hash, calling
// rasterize on a miss.
func (c *Cache) Image(hash []byte, rasterize func() Image) Entry {
	return c.images.GetOrCreate(contentKey{hash: string(hash)}, func() (Entry, bool) {
		img := rasterize()
		return c.addColor("image", img.Width, img.Height, img.Pixels)
	})
}

// SVG returns the entry for an icon render identified by hash at
// width x height, calling rasterize on a miss. rasterize returns
// width*height RGBA8 texels.
func (c *Cache) SVG(hash []byte, width, height uint32, rasterize func() []byte) Entry {
	key := contentKey{hash: string(hash), width: width, height: height}
	return c.icons.GetOrCreate(key, func() (Entry, bool) {
		return c.addColor("svg", int(width), int(height), rasterize())
	})
}

func (c *Cache) addColor(kind string, width, height int, pixels []byte) (Entry, bool) {
	e := Entry{Colored: true}
	if width <= 0 || height <= 0 {
		return e, true
	}
	r, err := c.color.Add(width, height, pixels)
	if err != nil {
		c.logAddFailure(kind, err, width, height)
		return e, errors.Is(err, ErrBitmapTooLarge)
	}
	e.Rect = r
	return e, true
}

func (c *Cache) logAddFailure(kind string, err error, width, height int) {
	var msg string
	switch {
	case errors.Is(err, ErrAtlasFull):
		msg = "atlas full, draw skipped until reset"
	case errors.Is(err, ErrBitmapTooLarge):
		msg = "content larger than atlas, draw skipped"
	default:
		msg = "rasterization rejected"
	}
	slogger().Warn(msg, "kind", kind, "width", width, "height", height, "err", err)
}

// Flush uploads every staged bitmap.
func (c *Cache) Flush() error {
	if err := c.mask.Flush(); err != nil {
		return err
	}
	return c.color.Flush()
}

// CheckUsage resets the cache when either atlas passed the threshold or
// ran out of room. It returns true after a reset: both textures were
// replaced and every bind group referencing them must be recreated.
func (c *Cache) CheckUsage() (bool, error) {
	c.mask.tick()
	c.color.tick()

	mu, cu := c.mask.Usage(), c.color.Usage()
	if mu <= c.threshold && cu <= c.threshold && !c.mask.Full() && !c.color.Full() {
		return false, nil
	}

	slogger().Debug("atlas reset",
		"mask_usage", mu, "color_usage", cu,
		"entries", c.Len(), "threshold", c.threshold)

	c.glyphs.Clear()
	c.images.Clear()
	c.icons.Clear()
	if err := c.mask.Reset(); err != nil {
		return false, fmt.Errorf("atlas: reset: %w", err)
	}
	if err := c.color.Reset(); err != nil {
		return false, fmt.Errorf("atlas: reset: %w", err)
	}
	c.resets++
	return true, nil
}

// MaskTexture returns the current coverage atlas texture.
func (c *Cache) MaskTexture() gpucore.TextureID {
	return c.mask.Texture()
}

// ColorTexture returns the current color atlas texture.
func (c *Cache) ColorTexture() gpucore.TextureID {
	return c.color.Texture()
}

// Size returns the atlas edge length in texels.
func (c *Cache) Size() int {
	return c.mask.Size()
}

// Usage returns the higher utilization of the two atlases.
func (c *Cache) Usage() float64 {
	return max(c.mask.Usage(), c.color.Usage())
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.glyphs.Len() + c.images.Len() + c.icons.Len()
}

// Resets returns how many times the cache was discarded.
func (c *Cache) Resets() int {
	return c.resets
}

// Release destroys both atlases.
func (c *Cache) Release() {
	c.mask.Release()
	c.color.Release()
}
