package gvr

import "errors"

// Renderer errors.
var (
	// ErrStackUnderflow is returned by Restore without a matching Save.
	ErrStackUnderflow = errors.New("gvr: restore without matching save")

	// ErrNoFrame is returned by Encode before the first Begin.
	ErrNoFrame = errors.New("gvr: encode called before begin")

	// ErrInvalidImage is returned for unknown or deleted image indices.
	ErrInvalidImage = errors.New("gvr: invalid image index")

	// ErrImageSize is returned when image pixel data does not match its size.
	ErrImageSize = errors.New("gvr: image data does not match dimensions")

	// ErrReleased is returned when using a released renderer.
	ErrReleased = errors.New("gvr: renderer has been released")
)
