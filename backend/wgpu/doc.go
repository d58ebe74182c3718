// Package wgpu implements gpucore.Backend on the gogpu/wgpu HAL.
//
// The backend does not create a GPU device of its own. It receives a
// hal.Device and hal.Queue from the host, either directly through New or
// from a gpucontext.DeviceProvider through NewFromProvider, so the
// renderer shares the device with the rest of the application:
//
//	b, err := wgpu.NewFromProvider(app, wgpu.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer b.Release()
//	r, err := gvr.New(b, gvr.WithTargetFormat(gpucore.TextureFormatBGRA8Unorm))
//
// Render targets owned by the host, such as a swapchain view, are
// registered with RegisterView and addressed like any other texture.
//
// # Frame pacing
//
// Each Submit signals a fence with an increasing value and then waits
// until the submission two frames back has completed. At most two
// frames are ever in flight, which is what the renderer's three scene
// slots require.
//
// # Shaders
//
// Pipelines are created from WGSL by default. WithSPIRV compiles the
// WGSL to SPIR-V with gogpu/naga first, for HAL backends that only
// accept SPIR-V.
//
// NewNoop opens the HAL noop device, which accepts every call and draws
// nothing. It is used for headless runs and tests.
package wgpu
