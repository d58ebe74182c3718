package gvr

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/gvr/gpucore"
	"github.com/gogpu/gvr/internal/batch"
)

// PaintIndex refers to a paint recorded in the current frame. It is only
// valid until the next Begin.
type PaintIndex struct {
	index uint32
}

// Index returns the position of the paint in the frame's paint array.
func (p PaintIndex) Index() int {
	return int(p.index)
}

// solidPaint fills with one color.
func solidPaint(c Color) gpucore.Paint {
	return gpucore.Paint{
		Xform:      Identity().columns(),
		Image:      batch.NoImage,
		InnerColor: c.array(),
		OuterColor: c.array(),
	}
}

// gradientPaint blends inner into outer color along start->end. The
// paint transform maps start to x=0 and end to x=1.
func gradientPaint(start, end Point, inner, outer Color, glow float32) gpucore.Paint {
	d := end.Sub(start)
	if d.Length() < 0.0001 {
		d = Point{X: 0, Y: 1}
	}
	m := Transform{
		A: d.X, B: -d.Y, C: start.X,
		D: d.Y, E: d.X, F: start.Y,
	}
	inv, _ := m.Inverse()
	return gpucore.Paint{
		Xform:      inv.columns(),
		Glow:       glow,
		Image:      batch.NoImage,
		InnerColor: inner.array(),
		OuterColor: outer.array(),
	}
}

// patternPaint samples an image over the rectangle at origin with the
// given size, rotated by angle around origin.
func patternPaint(origin, size Point, angle float32, image int32, alpha float32) gpucore.Paint {
	if math32.Abs(size.X) < 1e-6 {
		size.X = 1
	}
	if math32.Abs(size.Y) < 1e-6 {
		size.Y = 1
	}
	m := Translate(origin.X, origin.Y).
		Multiply(Rotate(angle)).
		Multiply(Scale(size.X, size.Y))
	inv, _ := m.Inverse()
	tint := [4]float32{1, 1, 1, alpha}
	return gpucore.Paint{
		Xform:      inv.columns(),
		Image:      image,
		InnerColor: tint,
		OuterColor: tint,
	}
}

// ColorPaint records a solid color paint.
func (r *Renderer) ColorPaint(c Color) PaintIndex {
	return r.addPaint(solidPaint(c))
}

// LinearGradient records a paint that blends inner into outer color
// from start to end. glow widens the antialiased edge into a soft halo.
func (r *Renderer) LinearGradient(start, end Point, inner, outer Color, glow float32) PaintIndex {
	return r.addPaint(gradientPaint(start, end, inner, outer, glow))
}

// ImagePattern records a paint that samples a created image over the
// rectangle at origin with the given size, rotated by angle. Primitives
// using it are drawn with the image texture bound, which splits draw
// runs. An invalid or deleted image falls back to a transparent paint.
func (r *Renderer) ImagePattern(origin, size Point, angle float32, image ImageIndex, alpha float32) PaintIndex {
	if !r.images.valid(image) {
		r.logger.Warn("image pattern on invalid image", "image", image.index)
		return r.addPaint(solidPaint(Transparent))
	}
	return r.addPaint(patternPaint(origin, size, angle, int32(image.index), alpha))
}

// addPaint appends to the frame's paints. Past the per-frame bound it
// returns index 0.
func (r *Renderer) addPaint(p gpucore.Paint) PaintIndex {
	if r.paintCount >= r.opts.maxPrims {
		r.stats.PaintOverflow++
		return PaintIndex{}
	}
	r.scene.Paints.Push(p)
	r.paintCount++
	return PaintIndex{index: uint32(r.paintCount - 1)}
}
