package text

import (
	"image"
	"sync"

	"github.com/chewxy/math32"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/gvr/atlas"
)

// Rasterizer fills glyph outlines into coverage bitmaps.
//
// Rasterizer is safe for concurrent use; calls are serialized because the
// sfnt buffer and the vector rasterizer are reused.
type Rasterizer struct {
	mu  sync.Mutex
	buf sfnt.Buffer
	vr  *vector.Rasterizer

	count int
}

// NewRasterizer creates a glyph rasterizer.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{vr: vector.NewRasterizer(0, 0)}
}

// Rasterize renders glyph id of f at size pixels per em, with the pen
// shifted right by dx and down by dy. The result is a coverage bitmap
// whose Left and Top bearings are measured from the integer pen position.
// Glyphs without outlines, such as spaces, return an empty Bitmap.
func (r *Rasterizer) Rasterize(f *Font, id uint32, size float32, dx, dy atlas.SubpixelOffset) atlas.Bitmap {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++

	segs, err := f.sfnt.LoadGlyph(&r.buf, sfnt.GlyphIndex(id), toFixed(size), nil)
	if err != nil || len(segs) == 0 {
		return atlas.Bitmap{}
	}

	ox, oy := dx.Float(), dy.Float()
	minX, minY := math32.Inf(1), math32.Inf(1)
	maxX, maxY := math32.Inf(-1), math32.Inf(-1)
	for _, s := range segs {
		for _, p := range s.Args[:segmentArgs(s.Op)] {
			x, y := fromFixed(p.X)+ox, fromFixed(p.Y)+oy
			minX, maxX = math32.Min(minX, x), math32.Max(maxX, x)
			minY, maxY = math32.Min(minY, y), math32.Max(maxY, y)
		}
	}
	left, top := math32.Floor(minX), math32.Floor(minY)
	w := int(math32.Ceil(maxX) - left)
	h := int(math32.Ceil(maxY) - top)
	if w <= 0 || h <= 0 {
		return atlas.Bitmap{}
	}

	r.vr.Reset(w, h)
	at := func(p fixed.Point26_6) (float32, float32) {
		return fromFixed(p.X) + ox - left, fromFixed(p.Y) + oy - top
	}
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			r.vr.MoveTo(at(s.Args[0]))
		case sfnt.SegmentOpLineTo:
			r.vr.LineTo(at(s.Args[0]))
		case sfnt.SegmentOpQuadTo:
			bx, by := at(s.Args[0])
			cx, cy := at(s.Args[1])
			r.vr.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := at(s.Args[0])
			cx, cy := at(s.Args[1])
			qx, qy := at(s.Args[2])
			r.vr.CubeTo(bx, by, cx, cy, qx, qy)
		}
	}
	r.vr.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r.vr.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return atlas.Bitmap{
		Width:  w,
		Height: h,
		Left:   int(left),
		Top:    -int(top),
		Pixels: mask.Pix,
	}
}

// Count returns the number of Rasterize calls.
func (r *Rasterizer) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func segmentArgs(op sfnt.SegmentOp) int {
	switch op {
	case sfnt.SegmentOpQuadTo:
		return 2
	case sfnt.SegmentOpCubeTo:
		return 3
	default:
		return 1
	}
}
