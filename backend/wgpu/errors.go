package wgpu

import "errors"

var (
	// ErrUnsupportedFormat is returned for texture formats the backend
	// cannot map to a HAL format.
	ErrUnsupportedFormat = errors.New("wgpu: unsupported texture format")

	// ErrProvider is returned when a device provider does not expose the
	// HAL device and queue.
	ErrProvider = errors.New("wgpu: provider does not expose HAL device")

	// ErrFrameTimeout is returned when an earlier frame did not complete
	// within the frame timeout.
	ErrFrameTimeout = errors.New("wgpu: timed out waiting for frame")

	// ErrReleased is returned when operating on a released backend.
	ErrReleased = errors.New("wgpu: backend has been released")
)
