package gvr

import "github.com/chewxy/math32"

// Point represents a 2D point or vector in local coordinates.
type Point struct {
	X, Y float32
}

// Pt is a convenience function to create a Point.
func Pt(x, y float32) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul scales the point by a scalar.
func (p Point) Mul(s float32) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Length returns the length of the vector.
func (p Point) Length() float32 {
	return math32.Hypot(p.X, p.Y)
}

// Lerp performs linear interpolation between two points.
func (p Point) Lerp(q Point, t float32) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Min returns the component-wise minimum.
func (p Point) Min(q Point) Point {
	return Point{X: math32.Min(p.X, q.X), Y: math32.Min(p.Y, q.Y)}
}

// Max returns the component-wise maximum.
func (p Point) Max(q Point) Point {
	return Point{X: math32.Max(p.X, q.X), Y: math32.Max(p.Y, q.Y)}
}

// Rect is an axis-aligned rectangle given by its origin and size.
type Rect struct {
	Origin Point
	Size   Point
}

// NewRect creates a rectangle from its origin and size.
func NewRect(x, y, w, h float32) Rect {
	return Rect{Origin: Point{X: x, Y: y}, Size: Point{X: w, Y: h}}
}

// Max returns the corner opposite the origin.
func (r Rect) Max() Point {
	return r.Origin.Add(r.Size)
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return r.Origin.Add(r.Size.Mul(0.5))
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Size.X <= 0 || r.Size.Y <= 0
}

// Outset returns the rectangle grown by d on every side (shrunk for d < 0).
func (r Rect) Outset(d float32) Rect {
	return Rect{
		Origin: Point{X: r.Origin.X - d, Y: r.Origin.Y - d},
		Size:   Point{X: r.Size.X + 2*d, Y: r.Size.Y + 2*d},
	}
}

// bounds returns [minX, minY, maxX, maxY].
func (r Rect) bounds() [4]float32 {
	m := r.Max()
	return [4]float32{r.Origin.X, r.Origin.Y, m.X, m.Y}
}
