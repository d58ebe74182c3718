package gpucore

// Backend abstracts the graphics device the renderer draws through.
//
// Resource lifecycle:
//   - Resources are created via Create* methods
//   - Resources must be explicitly destroyed via Destroy* methods
//   - IDs become invalid after destruction and are never reused
//
// Writes (WriteBuffer, WriteTexture) are ordered before any render pass
// submitted after them. Submit may return before the GPU has executed the
// work; the renderer relies on frame rotation rather than fences.
type Backend interface {
	// === Buffer Management ===

	// CreateBuffer creates a GPU buffer of size bytes.
	CreateBuffer(label string, size int, usage BufferUsage) (BufferID, error)

	// WriteBuffer writes data at offset into a buffer.
	WriteBuffer(id BufferID, offset uint64, data []byte) error

	// DestroyBuffer releases a GPU buffer.
	DestroyBuffer(id BufferID)

	// === Texture Management ===

	// CreateTexture creates a 2D texture.
	CreateTexture(desc *TextureDesc) (TextureID, error)

	// WriteTexture writes tightly packed texels into region.
	WriteTexture(id TextureID, region TextureRegion, data []byte) error

	// DestroyTexture releases a texture.
	DestroyTexture(id TextureID)

	// CreateSampler creates a linear filtering, clamp-to-edge sampler.
	CreateSampler(label string) (SamplerID, error)

	// DestroySampler releases a sampler.
	DestroySampler(id SamplerID)

	// === Pipeline Management ===

	// CreateBindGroupLayout creates a bind group layout.
	CreateBindGroupLayout(desc *BindGroupLayoutDesc) (BindGroupLayoutID, error)

	// DestroyBindGroupLayout releases a bind group layout.
	DestroyBindGroupLayout(id BindGroupLayoutID)

	// CreateBindGroup binds resources to a layout.
	CreateBindGroup(desc *BindGroupDesc) (BindGroupID, error)

	// DestroyBindGroup releases a bind group.
	DestroyBindGroup(id BindGroupID)

	// CreateRenderPipeline compiles the shader and creates a pipeline.
	CreateRenderPipeline(desc *RenderPipelineDesc) (RenderPipelineID, error)

	// DestroyRenderPipeline releases a render pipeline.
	DestroyRenderPipeline(id RenderPipelineID)

	// === Command Recording and Execution ===

	// BeginRenderPass starts recording a render pass.
	// The encoder must be ended before Submit.
	BeginRenderPass(desc *RenderPassDesc) (RenderPassEncoder, error)

	// Submit submits all recorded passes.
	Submit() error
}

// RenderPassEncoder records draw commands.
//
// Usage:
//  1. Obtain encoder from Backend.BeginRenderPass()
//  2. Set pipeline and bind groups
//  3. Draw instanced quads
//  4. Call End() to finish recording
//  5. Call Backend.Submit() to execute
//
// The encoder is single-use and cannot be reused after End().
type RenderPassEncoder interface {
	// SetPipeline sets the active render pipeline.
	SetPipeline(pipeline RenderPipelineID)

	// SetBindGroup sets a bind group at the specified index.
	SetBindGroup(index uint32, group BindGroupID)

	// Draw issues an instanced draw.
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)

	// End finishes the render pass.
	End()
}
