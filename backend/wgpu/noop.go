package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/gvr/backend"
)

func init() {
	backend.Register(backend.BackendNoop, func() (backend.Device, error) {
		b, err := NewNoop()
		if err != nil {
			return nil, err
		}
		return b, nil
	})
}

// NewNoop opens the HAL noop device and creates a backend on it.
// Release closes the device.
func NewNoop(opts ...Option) (*Backend, error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("wgpu: noop instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: noop instance has no adapters")
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open noop device: %w", err)
	}
	b, err := New(open.Device, open.Queue, opts...)
	if err != nil {
		open.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	b.closer = func() {
		open.Device.Destroy()
		instance.Destroy()
	}
	return b, nil
}
