package gvr

import (
	"github.com/gogpu/gvr/gpucore"
	"github.com/gogpu/gvr/internal/path"
)

// MoveTo moves the path cursor to p. The next edge starts a new contour.
func (r *Renderer) MoveTo(p Point) {
	r.scanner.MoveTo(path.Point(p))
}

// QuadTo adds a quadratic edge from the cursor through control b to c.
func (r *Renderer) QuadTo(b, c Point) {
	r.scanner.QuadTo(path.Point(b), path.Point(c))
}

// LineTo adds a straight edge from the cursor to p.
func (r *Renderer) LineTo(p Point) {
	r.scanner.LineTo(path.Point(p))
}

// Fill fills every contour added since the last Fill and clears them.
//
// Each contour becomes one PathFill primitive over its own slice of the
// curve-vertex array. Contours are blended independently: overlap
// between contours, or within one, is not resolved by a winding rule.
func (r *Renderer) Fill(paint PaintIndex) {
	xform := r.addXform()
	scissor := r.addScissor()
	cvs := r.scene.CVs

	r.scanner.Init()
	for r.scanner.Next() {
		p := gpucore.Prim{
			Type:    gpucore.PrimPathFill,
			Paint:   paint.index,
			Scissor: scissor,
			Xform:   xform,
			Start:   uint32(cvs.Len()),
		}
		xs := path.EmptyInterval()
		for _, seg := range r.scanner.Contour() {
			for _, pt := range seg.Points() {
				cvs.Push(gpucore.CV{X: pt.X, Y: pt.Y})
				xs.Include(pt.X)
			}
			p.Count++
		}
		ys := r.scanner.Interval()
		p.QuadBounds = [4]float32{xs.A, ys.A, xs.B, ys.B}
		p.TexBounds = p.QuadBounds
		r.scene.Add(r.z, p)
	}
	r.scanner.Reset()
}
