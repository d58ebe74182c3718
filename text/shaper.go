package text

import (
	"sync"

	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/text/unicode/bidi"
)

// Glyph is one shaped glyph positioned relative to the start of the line.
type Glyph struct {
	ID uint32

	// X and Y are the pen position plus the glyph offset, in pixels.
	// Y grows downward.
	X, Y float32

	Advance float32

	// Cluster is the rune index of the first character the glyph maps to.
	Cluster int

	RTL bool
}

// Line is a shaped single line of text in visual order.
type Line struct {
	Glyphs  []Glyph
	Advance float32
}

// Shaper shapes text with HarfBuzz from go-text/typesetting.
//
// Shaper is safe for concurrent use. HarfbuzzShaper keeps a mutable
// buffer, so instances are pooled.
type Shaper struct {
	pool sync.Pool
	lang language.Language
}

// NewShaper creates a shaper tagging runs with the given BCP 47 language.
// An empty lang defaults to "en".
func NewShaper(lang string) *Shaper {
	if lang == "" {
		lang = "en"
	}
	return &Shaper{
		pool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
		lang: language.NewLanguage(lang),
	}
}

// run is a maximal range of runes sharing one embedding direction.
type run struct {
	start, end int // rune indices, end exclusive
	rtl        bool
}

// Shape shapes a single line of text at size pixels per em.
// Mixed-direction text is split into bidi runs that are laid out left to
// right in visual order.
func (s *Shaper) Shape(str string, f *Font, size float32) Line {
	if str == "" || f == nil || !(size > 0) {
		return Line{}
	}
	runes := []rune(str)
	face := gotext.NewFace(f.gotext)

	var line Line
	for _, r := range splitRuns(str, len(runes)) {
		dir := di.DirectionLTR
		if r.rtl {
			dir = di.DirectionRTL
		}
		input := shaping.Input{
			Text:      runes,
			RunStart:  r.start,
			RunEnd:    r.end,
			Direction: dir,
			Face:      face,
			Size:      toFixed(size),
			Script:    detectScript(runes[r.start:r.end]),
			Language:  s.lang,
		}

		hb := s.pool.Get().(*shaping.HarfbuzzShaper)
		out := hb.Shape(input)
		s.pool.Put(hb)

		for _, g := range out.Glyphs {
			adv := fromFixed(g.Advance)
			line.Glyphs = append(line.Glyphs, Glyph{
				ID:      uint32(g.GlyphID),
				X:       line.Advance + fromFixed(g.XOffset),
				Y:       -fromFixed(g.YOffset),
				Advance: adv,
				Cluster: g.TextIndex(),
				RTL:     r.rtl,
			})
			line.Advance += adv
		}
	}
	return line
}

// Measure returns the advance width of str.
func (s *Shaper) Measure(str string, f *Font, size float32) float32 {
	return s.Shape(str, f, size).Advance
}

// splitRuns returns the bidi runs of str in visual order. If the bidi
// algorithm rejects the input the whole string is one LTR run.
func splitRuns(str string, n int) []run {
	var p bidi.Paragraph
	if _, err := p.SetString(str, bidi.DefaultDirection(bidi.Neutral)); err != nil {
		return []run{{start: 0, end: n}}
	}
	ordering, err := p.Order()
	if err != nil || ordering.NumRuns() == 0 {
		return []run{{start: 0, end: n}}
	}

	runs := make([]run, 0, ordering.NumRuns())
	for i := 0; i < ordering.NumRuns(); i++ {
		r := ordering.Run(i)
		// Pos is inclusive at both ends.
		start, end := r.Pos()
		if start < 0 || end >= n || start > end {
			continue
		}
		runs = append(runs, run{
			start: start,
			end:   end + 1,
			rtl:   r.Direction() == bidi.RightToLeft,
		})
	}
	if len(runs) == 0 {
		return []run{{start: 0, end: n}}
	}
	return runs
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
