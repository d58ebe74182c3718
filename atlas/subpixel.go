package atlas

import "github.com/chewxy/math32"

// SubpixelOffset is a glyph position's fractional pixel offset quantized
// to quarter pixels.
type SubpixelOffset uint8

// Quantized offsets.
const (
	SubpixelZero SubpixelOffset = iota
	SubpixelQuarter
	SubpixelHalf
	SubpixelThreeQuarters
)

// QuantizeSubpixel maps a position to its offset bin:
//
//	[0.0, 0.125)   -> Zero
//	[0.125, 0.375) -> Quarter
//	[0.375, 0.625) -> Half
//	[0.625, 0.875) -> ThreeQuarters
//	[0.875, 1.0)   -> Zero
//
// Only the fractional part after flooring matters, so the mapping has
// period 1 and negative positions use pos - floor(pos).
func QuantizeSubpixel(pos float32) SubpixelOffset {
	eighths := int((pos - math32.Floor(pos)) * 8)
	switch eighths {
	case 1, 2:
		return SubpixelQuarter
	case 3, 4:
		return SubpixelHalf
	case 5, 6:
		return SubpixelThreeQuarters
	default:
		return SubpixelZero
	}
}

// Float returns the offset in pixels.
func (o SubpixelOffset) Float() float32 {
	return float32(o) * 0.25
}

// String returns the offset name.
func (o SubpixelOffset) String() string {
	switch o {
	case SubpixelZero:
		return "Zero"
	case SubpixelQuarter:
		return "Quarter"
	case SubpixelHalf:
		return "Half"
	case SubpixelThreeQuarters:
		return "ThreeQuarters"
	default:
		return "Unknown"
	}
}
