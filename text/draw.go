package text

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/gvr"
	"github.com/gogpu/gvr/atlas"
)

// Drawer draws shaped text through a renderer's glyph cache.
type Drawer struct {
	Shaper     *Shaper
	Rasterizer *Rasterizer
}

// NewDrawer creates a Drawer with a default Shaper and Rasterizer.
func NewDrawer() *Drawer {
	return &Drawer{
		Shaper:     NewShaper(""),
		Rasterizer: NewRasterizer(),
	}
}

// DrawText shapes str and draws it with the baseline starting at pos.
// It returns the advance of the line. The size is rounded to whole pixels.
//
// Each glyph position is split into an integer pen position and a
// quarter-pixel subpixel bin; the bin is part of the cache key so the
// glyph is rasterized once per bin.
func (d *Drawer) DrawText(r *gvr.Renderer, pos gvr.Point, str string, f *Font, size float32, paint gvr.PaintIndex) float32 {
	px := uint32(math32.Round(size))
	line := d.Shaper.Shape(str, f, float32(px))
	for _, g := range line.Glyphs {
		x, bx := snap(pos.X + g.X)
		y, by := snap(pos.Y + g.Y)
		key := atlas.GlyphKey{
			Font:  f.ID(),
			Glyph: g.ID,
			Size:  px,
			X:     bx,
			Y:     by,
		}
		id := g.ID
		r.RenderGlyph(gvr.Pt(x, y), key, func() atlas.Bitmap {
			return d.Rasterizer.Rasterize(f, id, float32(px), key.X, key.Y)
		}, paint)
	}
	return line.Advance
}

// snap splits v into an integer pen position and a subpixel bin such that
// base + bin.Float() is within an eighth of a pixel of v.
func snap(v float32) (float32, atlas.SubpixelOffset) {
	return math32.Floor(v + 0.125), atlas.QuantizeSubpixel(v)
}
