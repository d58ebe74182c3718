package wgpu

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gvr/gpucore"
)

// maxFramesInFlight is the number of submissions allowed to run on the
// GPU while the host records the next frame.
const maxFramesInFlight = 2

// DefaultFrameTimeout bounds the wait for an earlier frame in Submit.
const DefaultFrameTimeout = 5 * time.Second

// Option configures a Backend.
type Option func(*config)

type config struct {
	logger  *slog.Logger
	spirv   bool
	timeout time.Duration
}

// WithLogger sets the logger for backend diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithSPIRV compiles pipeline shaders to SPIR-V with naga instead of
// passing WGSL to the HAL.
func WithSPIRV() Option {
	return func(c *config) {
		c.spirv = true
	}
}

// WithFrameTimeout sets how long Submit waits for an earlier frame.
func WithFrameTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

type buffer struct {
	buf  hal.Buffer
	size uint64
}

// texture is a texture created by the backend or a view registered by
// the host. Registered views have no texture and are never destroyed.
type texture struct {
	tex    hal.Texture
	view   hal.TextureView
	width  int
	height int
	format gpucore.TextureFormat
}

type pipeline struct {
	shader   hal.ShaderModule
	layout   hal.PipelineLayout
	pipeline hal.RenderPipeline
}

type submission struct {
	cmd   hal.CommandBuffer
	value uint64
}

// Backend implements gpucore.Backend on a HAL device.
//
// Backend is safe for concurrent use. Resource maps are guarded by a
// mutex; only one render pass may be open at a time.
type Backend struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue
	cfg    config
	logger atomic.Pointer[slog.Logger]

	// ID generation
	nextID atomic.Uint64

	buffers    map[gpucore.BufferID]*buffer
	textures   map[gpucore.TextureID]*texture
	samplers   map[gpucore.SamplerID]hal.Sampler
	layouts    map[gpucore.BindGroupLayoutID]hal.BindGroupLayout
	bindGroups map[gpucore.BindGroupID]hal.BindGroup
	pipelines  map[gpucore.RenderPipelineID]*pipeline

	encoder    hal.CommandEncoder
	passActive bool

	fence      hal.Fence
	fenceValue uint64
	inflight   []submission

	closer   func()
	released bool
}

// New creates a backend on a device and queue owned by the caller.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Backend, error) {
	cfg := config{timeout: DefaultFrameTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	fence, err := device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("wgpu: create fence: %w", err)
	}
	b := &Backend{
		device:     device,
		queue:      queue,
		cfg:        cfg,
		buffers:    make(map[gpucore.BufferID]*buffer),
		textures:   make(map[gpucore.TextureID]*texture),
		samplers:   make(map[gpucore.SamplerID]hal.Sampler),
		layouts:    make(map[gpucore.BindGroupLayoutID]hal.BindGroupLayout),
		bindGroups: make(map[gpucore.BindGroupID]hal.BindGroup),
		pipelines:  make(map[gpucore.RenderPipelineID]*pipeline),
		fence:      fence,
	}
	// Start ID generation at 1 (0 is invalid)
	b.nextID.Store(1)
	b.SetLogger(cfg.logger)
	return b, nil
}

// NewFromProvider creates a backend on the device shared by a host
// application. The provider must also implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Backend, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrProvider)
	}
	return New(device, queue, opts...)
}

// SetLogger sets the logger for backend diagnostics. Nil silences them.
func (b *Backend) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	b.logger.Store(l)
}

func (b *Backend) log() *slog.Logger {
	return b.logger.Load()
}

func (b *Backend) newID() uint64 {
	return b.nextID.Add(1) - 1
}

// === Buffer Management ===

// CreateBuffer creates a GPU buffer.
func (b *Backend) CreateBuffer(label string, size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	if size <= 0 {
		return gpucore.InvalidID, fmt.Errorf("wgpu: buffer %q: %w", label, gpucore.ErrInvalidSize)
	}
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(size),
		Usage: convertBufferUsage(usage),
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("wgpu: create buffer %q: %w", label, err)
	}
	id := gpucore.BufferID(b.newID())

	b.mu.Lock()
	b.buffers[id] = &buffer{buf: buf, size: uint64(size)}
	b.mu.Unlock()
	return id, nil
}

// WriteBuffer writes data at offset through the queue.
func (b *Backend) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	b.mu.Lock()
	buf, ok := b.buffers[id]
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("wgpu: buffer %d: %w", id, gpucore.ErrUnknownResource)
	}
	if offset+uint64(len(data)) > buf.size {
		return fmt.Errorf("wgpu: buffer %d write of %d at %d: %w", id, len(data), offset, gpucore.ErrInvalidSize)
	}
	b.queue.WriteBuffer(buf.buf, offset, data)
	return nil
}

// DestroyBuffer releases a GPU buffer.
func (b *Backend) DestroyBuffer(id gpucore.BufferID) {
	b.mu.Lock()
	buf, ok := b.buffers[id]
	delete(b.buffers, id)
	b.mu.Unlock()

	if ok {
		b.device.DestroyBuffer(buf.buf)
	}
}

// === Texture Management ===

// CreateTexture creates a 2D texture and its default view.
func (b *Backend) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if desc == nil || desc.Width <= 0 || desc.Height <= 0 {
		return gpucore.InvalidID, fmt.Errorf("wgpu: texture: %w", gpucore.ErrInvalidSize)
	}
	format, err := convertTextureFormat(desc.Format)
	if err != nil {
		return gpucore.InvalidID, err
	}
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(desc.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         convertTextureUsage(desc.Usage),
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("wgpu: create texture %q: %w", desc.Label, err)
	}
	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         desc.Label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		b.device.DestroyTexture(tex)
		return gpucore.InvalidID, fmt.Errorf("wgpu: create view %q: %w", desc.Label, err)
	}

	id := gpucore.TextureID(b.newID())
	b.mu.Lock()
	b.textures[id] = &texture{
		tex:    tex,
		view:   view,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
	}
	b.mu.Unlock()
	return id, nil
}

// RegisterView makes a host-owned texture view, such as the current
// swapchain image, usable as a render pass target. DestroyTexture
// unregisters it without destroying the view.
func (b *Backend) RegisterView(view hal.TextureView, width, height int, format gpucore.TextureFormat) gpucore.TextureID {
	id := gpucore.TextureID(b.newID())
	b.mu.Lock()
	b.textures[id] = &texture{view: view, width: width, height: height, format: format}
	b.mu.Unlock()
	return id
}

// WriteTexture writes tightly packed texels into region.
func (b *Backend) WriteTexture(id gpucore.TextureID, region gpucore.TextureRegion, data []byte) error {
	b.mu.Lock()
	t, ok := b.textures[id]
	b.mu.Unlock()
	if !ok || t.tex == nil {
		return fmt.Errorf("wgpu: texture %d: %w", id, gpucore.ErrUnknownResource)
	}
	bpp := t.format.BytesPerPixel()
	if region.X < 0 || region.Y < 0 || region.Width <= 0 || region.Height <= 0 ||
		region.X+region.Width > t.width || region.Y+region.Height > t.height ||
		len(data) < region.Width*region.Height*bpp {
		return fmt.Errorf("wgpu: texture %d region %+v: %w", id, region, gpucore.ErrInvalidSize)
	}

	b.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(region.X), Y: uint32(region.Y), Z: 0},
			Aspect:   gputypes.TextureAspectAll,
		},
		data[:region.Width*region.Height*bpp],
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(region.Width * bpp),
			RowsPerImage: uint32(region.Height),
		},
		&hal.Extent3D{Width: uint32(region.Width), Height: uint32(region.Height), DepthOrArrayLayers: 1},
	)
	return nil
}

// DestroyTexture releases a texture and its view, or unregisters a
// registered view.
func (b *Backend) DestroyTexture(id gpucore.TextureID) {
	b.mu.Lock()
	t, ok := b.textures[id]
	delete(b.textures, id)
	b.mu.Unlock()

	if !ok || t.tex == nil {
		return
	}
	b.device.DestroyTextureView(t.view)
	b.device.DestroyTexture(t.tex)
}

// CreateSampler creates a linear, clamp-to-edge sampler.
func (b *Backend) CreateSampler(label string) (gpucore.SamplerID, error) {
	s, err := b.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        label,
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("wgpu: create sampler %q: %w", label, err)
	}
	id := gpucore.SamplerID(b.newID())
	b.mu.Lock()
	b.samplers[id] = s
	b.mu.Unlock()
	return id, nil
}

// DestroySampler releases a sampler.
func (b *Backend) DestroySampler(id gpucore.SamplerID) {
	b.mu.Lock()
	s, ok := b.samplers[id]
	delete(b.samplers, id)
	b.mu.Unlock()

	if ok {
		b.device.DestroySampler(s)
	}
}

// === Pipeline Management ===

// CreateBindGroupLayout creates a bind group layout.
func (b *Backend) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	entries := make([]gputypes.BindGroupLayoutEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		out, err := convertLayoutEntry(e)
		if err != nil {
			return gpucore.InvalidID, err
		}
		entries = append(entries, out)
	}
	layout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("wgpu: create layout %q: %w", desc.Label, err)
	}
	id := gpucore.BindGroupLayoutID(b.newID())
	b.mu.Lock()
	b.layouts[id] = layout
	b.mu.Unlock()
	return id, nil
}

// DestroyBindGroupLayout releases a bind group layout.
func (b *Backend) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {
	b.mu.Lock()
	l, ok := b.layouts[id]
	delete(b.layouts, id)
	b.mu.Unlock()

	if ok {
		b.device.DestroyBindGroupLayout(l)
	}
}

// CreateBindGroup binds buffers, texture views and samplers to a layout.
func (b *Backend) CreateBindGroup(desc *gpucore.BindGroupDesc) (gpucore.BindGroupID, error) {
	b.mu.Lock()
	layout, ok := b.layouts[desc.Layout]
	if !ok {
		b.mu.Unlock()
		return gpucore.InvalidID, fmt.Errorf("wgpu: bind group %q layout %d: %w", desc.Label, desc.Layout, gpucore.ErrUnknownResource)
	}
	entries := make([]gputypes.BindGroupEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		out, err := b.convertEntryLocked(e)
		if err != nil {
			b.mu.Unlock()
			return gpucore.InvalidID, fmt.Errorf("wgpu: bind group %q: %w", desc.Label, err)
		}
		entries = append(entries, out)
	}
	b.mu.Unlock()

	group, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("wgpu: create bind group %q: %w", desc.Label, err)
	}
	id := gpucore.BindGroupID(b.newID())
	b.mu.Lock()
	b.bindGroups[id] = group
	b.mu.Unlock()
	return id, nil
}

// convertEntryLocked resolves the resource of a bind group entry.
// b.mu must be held.
func (b *Backend) convertEntryLocked(e gpucore.BindGroupEntry) (gputypes.BindGroupEntry, error) {
	out := gputypes.BindGroupEntry{Binding: e.Binding}
	switch {
	case e.Buffer != gpucore.InvalidID:
		buf, ok := b.buffers[e.Buffer]
		if !ok {
			return out, fmt.Errorf("binding %d buffer %d: %w", e.Binding, e.Buffer, gpucore.ErrUnknownResource)
		}
		size := e.Size
		if size == 0 {
			size = buf.size
		}
		out.Resource = gputypes.BufferBinding{Buffer: buf.buf.NativeHandle(), Offset: 0, Size: size}
	case e.Texture != gpucore.InvalidID:
		t, ok := b.textures[e.Texture]
		if !ok {
			return out, fmt.Errorf("binding %d texture %d: %w", e.Binding, e.Texture, gpucore.ErrUnknownResource)
		}
		out.Resource = gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()}
	case e.Sampler != gpucore.InvalidID:
		s, ok := b.samplers[e.Sampler]
		if !ok {
			return out, fmt.Errorf("binding %d sampler %d: %w", e.Binding, e.Sampler, gpucore.ErrUnknownResource)
		}
		out.Resource = gputypes.SamplerBinding{Sampler: s.NativeHandle()}
	default:
		return out, fmt.Errorf("binding %d: no resource", e.Binding)
	}
	return out, nil
}

// DestroyBindGroup releases a bind group.
func (b *Backend) DestroyBindGroup(id gpucore.BindGroupID) {
	b.mu.Lock()
	g, ok := b.bindGroups[id]
	delete(b.bindGroups, id)
	b.mu.Unlock()

	if ok {
		b.device.DestroyBindGroup(g)
	}
}

// CreateRenderPipeline compiles the shader and creates a pipeline that
// draws triangle strips without vertex buffers, blending premultiplied
// color source-over.
func (b *Backend) CreateRenderPipeline(desc *gpucore.RenderPipelineDesc) (gpucore.RenderPipelineID, error) {
	format, err := convertTextureFormat(desc.Format)
	if err != nil {
		return gpucore.InvalidID, err
	}

	b.mu.Lock()
	layouts := make([]hal.BindGroupLayout, 0, len(desc.BindGroups))
	for _, id := range desc.BindGroups {
		l, ok := b.layouts[id]
		if !ok {
			b.mu.Unlock()
			return gpucore.InvalidID, fmt.Errorf("wgpu: pipeline %q layout %d: %w", desc.Label, id, gpucore.ErrUnknownResource)
		}
		layouts = append(layouts, l)
	}
	b.mu.Unlock()

	source := hal.ShaderSource{WGSL: desc.Shader}
	if b.cfg.spirv {
		words, err := compileSPIRV(desc.Shader)
		if err != nil {
			return gpucore.InvalidID, err
		}
		source = hal.ShaderSource{SPIRV: words}
	}

	p := &pipeline{}
	p.shader, err = b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label + "_shader",
		Source: source,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("wgpu: compile %q shader: %w", desc.Label, err)
	}
	p.layout, err = b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label + "_layout",
		BindGroupLayouts: layouts,
	})
	if err != nil {
		b.destroyPipeline(p)
		return gpucore.InvalidID, fmt.Errorf("wgpu: create %q pipeline layout: %w", desc.Label, err)
	}

	blend := gputypes.BlendStatePremultiplied()
	p.pipeline, err = b.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: p.layout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: desc.VertexEntry,
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: desc.FragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		b.destroyPipeline(p)
		return gpucore.InvalidID, fmt.Errorf("wgpu: create pipeline %q: %w", desc.Label, err)
	}

	id := gpucore.RenderPipelineID(b.newID())
	b.mu.Lock()
	b.pipelines[id] = p
	b.mu.Unlock()
	b.log().Debug("wgpu: pipeline created", "label", desc.Label, "spirv", b.cfg.spirv, "format", desc.Format)
	return id, nil
}

// DestroyRenderPipeline releases a render pipeline.
func (b *Backend) DestroyRenderPipeline(id gpucore.RenderPipelineID) {
	b.mu.Lock()
	p, ok := b.pipelines[id]
	delete(b.pipelines, id)
	b.mu.Unlock()

	if ok {
		b.destroyPipeline(p)
	}
}

// destroyPipeline releases pipeline objects in reverse creation order.
func (b *Backend) destroyPipeline(p *pipeline) {
	if p.pipeline != nil {
		b.device.DestroyRenderPipeline(p.pipeline)
	}
	if p.layout != nil {
		b.device.DestroyPipelineLayout(p.layout)
	}
	if p.shader != nil {
		b.device.DestroyShaderModule(p.shader)
	}
}

// Live returns the number of resources the backend currently tracks.
func (b *Backend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buffers) + len(b.textures) + len(b.samplers) +
		len(b.layouts) + len(b.bindGroups) + len(b.pipelines)
}

// Release waits for submitted frames, then destroys every tracked
// resource and the fence. A device opened by NewNoop is closed too.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return
	}
	b.released = true

	if err := b.reclaimLocked(0); err != nil {
		b.log().Warn("wgpu: release before frames completed", "err", err)
	}
	if b.encoder != nil {
		b.encoder.DiscardEncoding()
		b.encoder = nil
	}
	for id, g := range b.bindGroups {
		b.device.DestroyBindGroup(g)
		delete(b.bindGroups, id)
	}
	for id, p := range b.pipelines {
		b.destroyPipeline(p)
		delete(b.pipelines, id)
	}
	for id, l := range b.layouts {
		b.device.DestroyBindGroupLayout(l)
		delete(b.layouts, id)
	}
	for id, s := range b.samplers {
		b.device.DestroySampler(s)
		delete(b.samplers, id)
	}
	for id, t := range b.textures {
		if t.tex != nil {
			b.device.DestroyTextureView(t.view)
			b.device.DestroyTexture(t.tex)
		}
		delete(b.textures, id)
	}
	for id, buf := range b.buffers {
		b.device.DestroyBuffer(buf.buf)
		delete(b.buffers, id)
	}
	b.device.DestroyFence(b.fence)
	if b.closer != nil {
		b.closer()
	}
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
