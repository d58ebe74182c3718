// Package gpucore defines the GPU backend contract used by the gvr renderer
// and the record layouts shared between the CPU encoder and the shader.
//
// The renderer never talks to a graphics API directly. It creates buffers,
// textures, samplers, bind groups and one render pipeline through the
// [Backend] interface, addressing every resource by an opaque ID:
//
//	               +-----------------+
//	               |   gvr.Renderer  |
//	               +--------+--------+
//	                        |
//	                 gpucore.Backend
//	                        |
//	         +--------------+--------------+
//	         |                             |
//	+--------v--------+          +--------v--------+
//	|  backend/wgpu   |          | backend/memory  |
//	|  (hal.Device)   |          |  (recording)    |
//	+-----------------+          +-----------------+
//
// # Record layouts
//
// [Prim], [Paint], [Scissor] and [Uniforms] are uploaded verbatim into
// storage and uniform buffers. Field order, sizes and padding match the
// structs declared in the renderer's WGSL shader and must be kept in sync.
package gpucore
