package atlas

import "testing"

func TestQuantizeSubpixel(t *testing.T) {
	tests := []struct {
		pos  float32
		want SubpixelOffset
	}{
		{0.0, SubpixelZero},
		{0.10, SubpixelZero},
		{0.124, SubpixelZero},
		{0.125, SubpixelQuarter},
		{0.20, SubpixelQuarter},
		{0.374, SubpixelQuarter},
		{0.375, SubpixelHalf},
		{0.40, SubpixelHalf},
		{0.624, SubpixelHalf},
		{0.625, SubpixelThreeQuarters},
		{0.70, SubpixelThreeQuarters},
		{0.874, SubpixelThreeQuarters},
		{0.875, SubpixelZero},
		{0.90, SubpixelZero},
		{12.40, SubpixelHalf},
		{-0.10, SubpixelZero},
		{-0.60, SubpixelHalf},
	}
	for _, tt := range tests {
		if got := QuantizeSubpixel(tt.pos); got != tt.want {
			t.Errorf("QuantizeSubpixel(%v) = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestQuantizeSubpixelPeriodic(t *testing.T) {
	for _, frac := range []float32{0.05, 0.2, 0.3, 0.45, 0.55, 0.7, 0.8, 0.95} {
		base := QuantizeSubpixel(frac)
		for _, n := range []float32{-3, -1, 1, 7} {
			if got := QuantizeSubpixel(frac + n); got != base {
				t.Errorf("QuantizeSubpixel(%v) = %v, want %v (same as %v)", frac+n, got, base, frac)
			}
		}
	}
	if QuantizeSubpixel(-0.10) != QuantizeSubpixel(0.90) {
		t.Error("QuantizeSubpixel(-0.10) != QuantizeSubpixel(0.90)")
	}
}

func TestSubpixelFloat(t *testing.T) {
	want := []float32{0, 0.25, 0.5, 0.75}
	for i, w := range want {
		if got := SubpixelOffset(i).Float(); got != w {
			t.Errorf("SubpixelOffset(%d).Float() = %v, want %v", i, got, w)
		}
	}
}
