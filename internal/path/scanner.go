// Package path groups submitted quadratic edges into closed contours.
package path

import "github.com/chewxy/math32"

// Point is a 2D point in local coordinates.
type Point struct {
	X, Y float32
}

// Segment is one quadratic edge: start A, control B, end C.
type Segment struct {
	A, B, C Point

	// contourStart marks the first edge after a MoveTo.
	contourStart bool
}

// Points returns the control points in order.
func (s Segment) Points() [3]Point {
	return [3]Point{s.A, s.B, s.C}
}

// Interval is a closed 1D range. An empty interval has A > B.
type Interval struct {
	A, B float32
}

// EmptyInterval returns an interval that any Include call replaces.
func EmptyInterval() Interval {
	return Interval{A: math32.MaxFloat32, B: -math32.MaxFloat32}
}

// Include grows the interval to contain v.
func (i *Interval) Include(v float32) {
	i.A = math32.Min(i.A, v)
	i.B = math32.Max(i.B, v)
}

// Empty reports whether the interval contains no values.
func (i Interval) Empty() bool {
	return i.A > i.B
}

// Scanner collects edges through a pen cursor and yields them back as
// contours: maximal runs of consecutive edges where each edge starts
// exactly where the previous one ended and no MoveTo intervened.
//
// Continuity uses exact float equality. Callers that build paths from
// independently rounded coordinates must emit identical end/start values
// or the contour splits.
//
// Usage:
//
//	s.MoveTo(p0)
//	s.QuadTo(b, c)
//	...
//	s.Init()
//	for s.Next() {
//		use(s.Contour(), s.Interval())
//	}
//	s.Reset()
type Scanner struct {
	segments []Segment
	pen      Point
	pendMove bool

	pos      int
	first    int
	end      int
	interval Interval
}

// MoveTo moves the pen without emitting an edge. The next edge starts a
// new contour.
func (s *Scanner) MoveTo(p Point) {
	s.pen = p
	s.pendMove = true
}

// QuadTo emits an edge from the pen through control b to c and moves the
// pen to c.
func (s *Scanner) QuadTo(b, c Point) {
	s.segments = append(s.segments, Segment{
		A:            s.pen,
		B:            b,
		C:            c,
		contourStart: s.pendMove,
	})
	s.pen = c
	s.pendMove = false
}

// LineTo emits a straight edge as a quadratic with its control point at
// the midpoint.
func (s *Scanner) LineTo(c Point) {
	mid := Point{X: (s.pen.X + c.X) / 2, Y: (s.pen.Y + c.Y) / 2}
	s.QuadTo(mid, c)
}

// Pen returns the current cursor position.
func (s *Scanner) Pen() Point {
	return s.pen
}

// Len returns the number of submitted edges.
func (s *Scanner) Len() int {
	return len(s.segments)
}

// Init rewinds the contour iteration to the first edge.
func (s *Scanner) Init() {
	s.pos = 0
	s.first = 0
	s.end = 0
	s.interval = EmptyInterval()
}

// Next advances to the next contour. It returns false when every edge
// has been consumed.
func (s *Scanner) Next() bool {
	if s.pos >= len(s.segments) {
		return false
	}
	s.first = s.pos
	s.interval = EmptyInterval()

	for i := s.pos; i < len(s.segments); i++ {
		seg := s.segments[i]
		if i > s.first && (seg.contourStart || seg.A != s.segments[i-1].C) {
			break
		}
		s.interval.Include(seg.A.Y)
		s.interval.Include(seg.B.Y)
		s.interval.Include(seg.C.Y)
		s.pos = i + 1
	}
	s.end = s.pos
	return true
}

// Contour returns the edges of the current contour in submission order.
func (s *Scanner) Contour() []Segment {
	return s.segments[s.first:s.end]
}

// Interval returns the vertical extent of the current contour.
func (s *Scanner) Interval() Interval {
	return s.interval
}

// Reset discards all edges. The pen is kept.
func (s *Scanner) Reset() {
	s.segments = s.segments[:0]
	s.pendMove = true
	s.Init()
}
