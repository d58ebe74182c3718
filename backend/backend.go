package backend

import (
	"errors"

	"github.com/gogpu/gvr/gpucore"
)

// Backend names.
const (
	// BackendMemory records commands in host memory.
	BackendMemory = "memory"

	// BackendNoop runs the wgpu HAL path on the noop device.
	BackendNoop = "noop"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Device is a gpucore.Backend that owns its device and can be released.
//
// Release destroys every resource still alive on the device. The device
// must not be used after Release.
type Device interface {
	gpucore.Backend
	Release()
}
