package gvr

import (
	"github.com/gogpu/gvr/atlas"
	"github.com/gogpu/gvr/gpucore"
)

// RenderGlyph draws a glyph with its pen position at pos (on the
// baseline). rasterize is called only if key is not cached. Mask glyphs
// are shaded with paint; color glyphs keep their own colors. Glyphs that
// rasterize to nothing are skipped.
func (r *Renderer) RenderGlyph(pos Point, key atlas.GlyphKey, rasterize func() atlas.Bitmap, paint PaintIndex) {
	e := r.cache.Glyph(key, rasterize)
	typ := gpucore.PrimGlyph
	if e.Colored {
		typ = gpucore.PrimColorGlyph
	}
	r.renderEntry(e, typ, pos, float32(e.Rect.Width), float32(e.Rect.Height), paint)
}

// RenderImage draws cached RGBA8 content identified by hash into the
// width x height box at pos. rasterize is called only on a cache miss.
func (r *Renderer) RenderImage(pos Point, hash []byte, width, height float32, rasterize func() atlas.Image) {
	e := r.cache.Image(hash, rasterize)
	r.renderEntry(e, gpucore.PrimColorGlyph, pos, width, height, PaintIndex{})
}

// RenderSVG draws a vector icon rendered at width x height pixels,
// identified by hash. rasterize returns the RGBA8 render and is called
// only on a cache miss. A non-nil paint replaces the icon's colors,
// keeping its alpha.
func (r *Renderer) RenderSVG(pos Point, hash []byte, width, height uint32, rasterize func() []byte, paint *PaintIndex) {
	e := r.cache.SVG(hash, width, height, rasterize)
	typ := gpucore.PrimColorGlyph
	var pi PaintIndex
	if paint != nil {
		typ = gpucore.PrimOverrideColorSvg
		pi = *paint
	}
	r.renderEntry(e, typ, pos, float32(e.Rect.Width), float32(e.Rect.Height), pi)
}

func (r *Renderer) renderEntry(e atlas.Entry, typ gpucore.PrimType, pos Point, width, height float32, paint PaintIndex) {
	if !e.Rect.IsValid() {
		r.stats.SkippedDraws++
		return
	}
	x := pos.X + float32(e.Left)
	y := pos.Y - float32(e.Top)
	rect := e.Rect
	p := gpucore.Prim{
		Type:       typ,
		Paint:      paint.index,
		QuadBounds: [4]float32{x, y, x + width, y + height},
		TexBounds: [4]float32{
			float32(rect.X), float32(rect.Y),
			float32(rect.X + rect.Width), float32(rect.Y + rect.Height),
		},
	}
	r.render(p)
}

// GlyphCache returns the renderer's atlas cache.
func (r *Renderer) GlyphCache() *atlas.Cache {
	return r.cache
}
