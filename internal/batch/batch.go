// Package batch splits a flattened primitive order into texture-bound
// draw runs.
package batch

// NoImage marks primitives that sample the shared atlases.
const NoImage int32 = -1

// Run is a contiguous range of primitives drawn with one bound texture.
type Run struct {
	// Image is the bound image index, or NoImage for the atlases.
	Image int32
	Start uint32
	Count uint32
}

// End returns the index one past the last primitive of the run.
func (r Run) End() uint32 {
	return r.Start + r.Count
}

// Compile scans n primitives in order and appends their runs to dst.
//
// A run ends only where a primitive names an image other than the bound
// one. Primitives with NoImage keep whatever texture is bound, so they
// extend the current run. Primitives are never reordered.
func Compile(dst []Run, n int, image func(i int) int32) []Run {
	current := NoImage
	var start, count uint32
	for i := 0; i < n; i++ {
		if img := image(i); img >= 0 && img != current {
			if count > 0 {
				dst = append(dst, Run{Image: current, Start: start, Count: count})
			}
			current = img
			start += count
			count = 0
		}
		count++
	}
	if count > 0 {
		dst = append(dst, Run{Image: current, Start: start, Count: count})
	}
	return dst
}
