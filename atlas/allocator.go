package atlas

import "fmt"

// Region is a rectangle inside an atlas, in texels.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// IsValid returns true if the region has valid dimensions.
func (r Region) IsValid() bool {
	return r.Width > 0 && r.Height > 0
}

// String returns a string representation of the region.
func (r Region) String() string {
	return fmt.Sprintf("Region(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// shelf is one horizontal strip of the packing area.
type shelf struct {
	y      int // top of the shelf
	height int // tallest item so far, padding included
	nextX  int // next free x
}

// RectAllocator packs rectangles into a fixed area with a shelf algorithm.
//
// Each rectangle goes on the first shelf with enough horizontal room that
// is tall enough for it; otherwise a new shelf is opened below the last.
// Space is only reclaimed by Reset.
type RectAllocator struct {
	width   int
	height  int
	padding int
	shelves []shelf

	allocCount int
	usedArea   int
}

// NewRectAllocator creates an allocator for a width x height area.
func NewRectAllocator(width, height, padding int) *RectAllocator {
	if padding < 0 {
		padding = 0
	}
	return &RectAllocator{
		width:   width,
		height:  height,
		padding: padding,
		shelves: make([]shelf, 0, 16),
	}
}

// Fits reports whether a width x height rectangle fits the empty area.
func (a *RectAllocator) Fits(width, height int) bool {
	return width+a.padding <= a.width && height+a.padding <= a.height
}

// Allocate finds space for a width x height rectangle.
// Returns an invalid region if it does not fit.
func (a *RectAllocator) Allocate(width, height int) Region {
	if width <= 0 || height <= 0 {
		return Region{}
	}
	pw := width + a.padding
	ph := height + a.padding
	if pw > a.width || ph > a.height {
		return Region{}
	}

	for i := range a.shelves {
		s := &a.shelves[i]
		if s.nextX+pw > a.width {
			continue
		}
		// Shelves never grow once placed.
		if ph > s.height {
			continue
		}
		r := Region{X: s.nextX, Y: s.y, Width: width, Height: height}
		s.nextX += pw
		a.record(width, height)
		return r
	}

	y := 0
	if n := len(a.shelves); n > 0 {
		y = a.shelves[n-1].y + a.shelves[n-1].height
	}
	if y+ph > a.height {
		return Region{}
	}
	a.shelves = append(a.shelves, shelf{y: y, height: ph, nextX: pw})
	a.record(width, height)
	return Region{X: 0, Y: y, Width: width, Height: height}
}

func (a *RectAllocator) record(width, height int) {
	a.allocCount++
	a.usedArea += width * height
}

// Reset clears all allocations, making the entire area available again.
func (a *RectAllocator) Reset() {
	a.shelves = a.shelves[:0]
	a.allocCount = 0
	a.usedArea = 0
}

// UsedArea returns the total area of allocated rectangles.
func (a *RectAllocator) UsedArea() int {
	return a.usedArea
}

// Utilization returns the fraction of area used (0.0 to 1.0).
func (a *RectAllocator) Utilization() float64 {
	total := a.width * a.height
	if total == 0 {
		return 0
	}
	return float64(a.usedArea) / float64(total)
}

// AllocCount returns the number of successful allocations.
func (a *RectAllocator) AllocCount() int {
	return a.allocCount
}
