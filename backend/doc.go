// Package backend registers the gpucore.Backend implementations that
// can be opened by name.
//
// # Backend Registration
//
// Backend packages register a factory from init(), so importing a
// backend package makes it available:
//
//	import (
//		_ "github.com/gogpu/gvr/backend/memory"
//		_ "github.com/gogpu/gvr/backend/wgpu"
//	)
//
// # Backend Selection
//
// Use Open to request a backend by name, or Default for the best one
// that opens:
//
//	d, err := backend.Open(backend.BackendMemory)
//	if err != nil {
//		return err
//	}
//	defer d.Release()
//
//	r, err := gvr.New(d)
//
// Applications sharing a device with a host (a window toolkit, a game
// loop) construct the wgpu backend directly with wgpu.NewFromProvider
// instead.
package backend
