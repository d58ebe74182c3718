package text

import "errors"

// Sentinel errors for text package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrInvalidSize is returned for non-positive or non-finite font sizes.
	ErrInvalidSize = errors.New("text: invalid font size")
)
