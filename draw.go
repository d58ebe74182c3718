package gvr

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/gvr/gpucore"
)

// Shape draw calls. Each records one primitive whose destination quad
// bounds the shape including stroke width or blur, in local coordinates.

// FillCircle fills a circle.
func (r *Renderer) FillCircle(center Point, radius float32, paint PaintIndex) {
	p := gpucore.Prim{
		Type:   gpucore.PrimCircle,
		Radius: radius,
		Paint:  paint.index,
	}
	p.CVs[0], p.CVs[1] = center.X, center.Y
	p.QuadBounds = [4]float32{center.X - radius, center.Y - radius, center.X + radius, center.Y + radius}
	p.TexBounds = p.QuadBounds
	r.render(p)
}

// StrokeArc strokes an arc of the circle at center. rotation orients the
// arc's midpoint and aperture is its half-angle, both in radians.
func (r *Renderer) StrokeArc(center Point, radius, width, rotation, aperture float32, paint PaintIndex) {
	p := gpucore.Prim{
		Type:   gpucore.PrimArc,
		Radius: radius,
		Width:  width,
		Paint:  paint.index,
	}
	p.CVs = [6]float32{
		center.X, center.Y,
		math32.Sin(rotation), math32.Cos(rotation),
		math32.Sin(aperture), math32.Cos(aperture),
	}
	m := radius + width
	p.QuadBounds = [4]float32{center.X - m, center.Y - m, center.X + m, center.Y + m}
	p.TexBounds = p.QuadBounds
	r.render(p)
}

// FillRect fills a rectangle with corners rounded by radius. A positive
// blur softens the edge over blur pixels on each side.
func (r *Renderer) FillRect(rect Rect, radius float32, paint PaintIndex, blur float32) {
	lo, hi := rect.Origin, rect.Max()
	p := gpucore.Prim{
		Type:   gpucore.PrimRect,
		Radius: radius,
		Paint:  paint.index,
	}
	p.CVs = [6]float32{lo.X, lo.Y, hi.X, hi.Y, blur}
	p.QuadBounds = rect.Outset(blur * 3).bounds()
	p.TexBounds = p.QuadBounds
	r.render(p)
}

// StrokeRect strokes the outline of a rounded rectangle.
func (r *Renderer) StrokeRect(rect Rect, radius, width float32, paint PaintIndex) {
	lo, hi := rect.Origin, rect.Max()
	p := gpucore.Prim{
		Type:   gpucore.PrimRectStroke,
		Radius: radius,
		Width:  width,
		Paint:  paint.index,
	}
	p.CVs = [6]float32{lo.X, lo.Y, hi.X, hi.Y}
	p.QuadBounds = rect.Outset(width).bounds()
	p.TexBounds = p.QuadBounds
	r.render(p)
}

// StrokeSegment strokes the line from a to b.
func (r *Renderer) StrokeSegment(a, b Point, width float32, paint PaintIndex) {
	p := gpucore.Prim{
		Type:  gpucore.PrimSegment,
		Width: width,
		Paint: paint.index,
	}
	p.CVs = [6]float32{a.X, a.Y, b.X, b.Y}
	lo, hi := a.Min(b), a.Max(b)
	m := width * 2
	p.QuadBounds = [4]float32{lo.X - m, lo.Y - m, hi.X + m, hi.Y + m}
	p.TexBounds = p.QuadBounds
	r.render(p)
}

// StrokeBezier strokes the quadratic bezier from a through control b to c.
func (r *Renderer) StrokeBezier(a, b, c Point, width float32, paint PaintIndex) {
	p := gpucore.Prim{
		Type:  gpucore.PrimBezier,
		Width: width,
		Paint: paint.index,
	}
	p.CVs = [6]float32{a.X, a.Y, b.X, b.Y, c.X, c.Y}
	lo, hi := a.Min(b).Min(c), a.Max(b).Max(c)
	p.QuadBounds = [4]float32{lo.X - width, lo.Y - width, hi.X + width, hi.Y + width}
	p.TexBounds = p.QuadBounds
	r.render(p)
}
