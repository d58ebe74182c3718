package text

import (
	"bytes"
	"fmt"
	"hash/fnv"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Font is a parsed font file.
//
// The go-text font is read-only and shared by all shaping calls. The
// sfnt font needs a per-call sfnt.Buffer, which the Rasterizer owns.
type Font struct {
	id     uint64
	name   string
	sfnt   *sfnt.Font
	gotext *gotext.Font
}

// Metrics are vertical font metrics in pixels at one size.
// Descent is positive below the baseline.
type Metrics struct {
	Ascent  float32
	Descent float32
	LineGap float32
}

// NewFont parses TrueType or OpenType data.
// The data is not retained after parsing.
func NewFont(data []byte) (*Font, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: failed to parse font: %w", err)
	}
	face, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("text: failed to parse font for shaping: %w", err)
	}

	h := fnv.New64a()
	_, _ = h.Write(data)

	name, _ := sf.Name(nil, sfnt.NameIDFull)
	return &Font{
		id:     h.Sum64(),
		name:   name,
		sfnt:   sf,
		gotext: face.Font,
	}, nil
}

// ID returns the font identity used in glyph cache keys. It is a hash of
// the font data, so two Fonts parsed from the same bytes share entries.
func (f *Font) ID() uint64 {
	return f.id
}

// Name returns the font's full name, or "" if it has none.
func (f *Font) Name() string {
	return f.name
}

// Metrics returns the vertical metrics at size pixels per em.
func (f *Font) Metrics(size float32) Metrics {
	var buf sfnt.Buffer
	m, err := f.sfnt.Metrics(&buf, toFixed(size), font.HintingNone)
	if err != nil {
		return Metrics{}
	}
	return Metrics{
		Ascent:  fromFixed(m.Ascent),
		Descent: fromFixed(m.Descent),
		LineGap: fromFixed(m.Height) - fromFixed(m.Ascent) - fromFixed(m.Descent),
	}
}

// toFixed converts a float32 pixel value to fixed.Int26_6.
func toFixed(v float32) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

// fromFixed converts a fixed.Int26_6 value to float32 pixels.
func fromFixed(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
