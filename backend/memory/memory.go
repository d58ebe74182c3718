// Package memory provides a gpucore.Backend that keeps every resource in
// host memory and records render passes instead of executing them.
//
// It is used for tests and headless runs: buffer and texture writes are
// stored byte for byte, and each draw is appended to the pass it belongs
// to so callers can inspect exactly what a frame would have issued.
package memory

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gvr/backend"
	"github.com/gogpu/gvr/gpucore"
)

func init() {
	backend.Register(backend.BackendMemory, func() (backend.Device, error) {
		return New(), nil
	})
}

// Texture is a host-side texture.
type Texture struct {
	Desc   gpucore.TextureDesc
	Pixels []byte
}

// CommandKind identifies a recorded render pass command.
type CommandKind int

// Recorded command kinds.
const (
	CommandSetPipeline CommandKind = iota
	CommandSetBindGroup
	CommandDraw
)

// Command is one recorded render pass command.
type Command struct {
	Kind     CommandKind
	Pipeline gpucore.RenderPipelineID
	Index    uint32
	Group    gpucore.BindGroupID

	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

// Pass is a recorded render pass.
type Pass struct {
	Desc     gpucore.RenderPassDesc
	Commands []Command
	Ended    bool
}

// Draws returns the draw commands of the pass in order.
func (p *Pass) Draws() []Command {
	var draws []Command
	for _, c := range p.Commands {
		if c.Kind == CommandDraw {
			draws = append(draws, c)
		}
	}
	return draws
}

// Backend is an in-memory gpucore.Backend.
//
// Backend is safe for concurrent use.
type Backend struct {
	mu sync.Mutex

	nextID atomic.Uint64

	buffers    map[gpucore.BufferID][]byte
	textures   map[gpucore.TextureID]*Texture
	samplers   map[gpucore.SamplerID]string
	layouts    map[gpucore.BindGroupLayoutID]gpucore.BindGroupLayoutDesc
	bindGroups map[gpucore.BindGroupID]gpucore.BindGroupDesc
	pipelines  map[gpucore.RenderPipelineID]gpucore.RenderPipelineDesc

	pending   []*Pass
	submitted []*Pass
	submits   int
	active    bool

	created   int
	destroyed int
}

// New creates an empty backend.
func New() *Backend {
	b := &Backend{
		buffers:    make(map[gpucore.BufferID][]byte),
		textures:   make(map[gpucore.TextureID]*Texture),
		samplers:   make(map[gpucore.SamplerID]string),
		layouts:    make(map[gpucore.BindGroupLayoutID]gpucore.BindGroupLayoutDesc),
		bindGroups: make(map[gpucore.BindGroupID]gpucore.BindGroupDesc),
		pipelines:  make(map[gpucore.RenderPipelineID]gpucore.RenderPipelineDesc),
	}
	// Start ID generation at 1 (0 is invalid)
	b.nextID.Store(1)
	return b
}

func (b *Backend) newID() uint64 {
	b.created++
	return b.nextID.Add(1) - 1
}

// === Buffer Management ===

// CreateBuffer creates a zeroed host buffer.
func (b *Backend) CreateBuffer(label string, size int, usage gpucore.BufferUsage) (gpucore.BufferID, error) {
	if size <= 0 {
		return gpucore.InvalidID, fmt.Errorf("memory: buffer %q: %w", label, gpucore.ErrInvalidSize)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := gpucore.BufferID(b.newID())
	b.buffers[id] = make([]byte, size)
	return id, nil
}

// WriteBuffer copies data into a buffer.
func (b *Backend) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf, ok := b.buffers[id]
	if !ok {
		return fmt.Errorf("memory: buffer %d: %w", id, gpucore.ErrUnknownResource)
	}
	if offset+uint64(len(data)) > uint64(len(buf)) {
		return fmt.Errorf("memory: write of %d bytes at %d overflows buffer %d (%d bytes): %w",
			len(data), offset, id, len(buf), gpucore.ErrInvalidSize)
	}
	copy(buf[offset:], data)
	return nil
}

// DestroyBuffer releases a buffer.
func (b *Backend) DestroyBuffer(id gpucore.BufferID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.buffers[id]; ok {
		delete(b.buffers, id)
		b.destroyed++
	}
}

// BufferData returns a copy of a buffer's contents.
func (b *Backend) BufferData(id gpucore.BufferID) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf, ok := b.buffers[id]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), buf...), true
}

// === Texture Management ===

// CreateTexture creates a zeroed host texture.
func (b *Backend) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if desc == nil || desc.Width <= 0 || desc.Height <= 0 {
		return gpucore.InvalidID, fmt.Errorf("memory: texture: %w", gpucore.ErrInvalidSize)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := gpucore.TextureID(b.newID())
	b.textures[id] = &Texture{
		Desc:   *desc,
		Pixels: make([]byte, desc.Width*desc.Height*desc.Format.BytesPerPixel()),
	}
	return id, nil
}

// WriteTexture copies tightly packed rows into region.
func (b *Backend) WriteTexture(id gpucore.TextureID, region gpucore.TextureRegion, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	tex, ok := b.textures[id]
	if !ok {
		return fmt.Errorf("memory: texture %d: %w", id, gpucore.ErrUnknownResource)
	}
	bpp := tex.Desc.Format.BytesPerPixel()
	if region.X < 0 || region.Y < 0 ||
		region.X+region.Width > tex.Desc.Width ||
		region.Y+region.Height > tex.Desc.Height ||
		len(data) < region.Width*region.Height*bpp {
		return fmt.Errorf("memory: texture %d region %+v: %w", id, region, gpucore.ErrInvalidSize)
	}
	rowBytes := region.Width * bpp
	stride := tex.Desc.Width * bpp
	for row := 0; row < region.Height; row++ {
		dst := (region.Y+row)*stride + region.X*bpp
		copy(tex.Pixels[dst:dst+rowBytes], data[row*rowBytes:(row+1)*rowBytes])
	}
	return nil
}

// DestroyTexture releases a texture.
func (b *Backend) DestroyTexture(id gpucore.TextureID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.textures[id]; ok {
		delete(b.textures, id)
		b.destroyed++
	}
}

// Texture returns a live texture.
func (b *Backend) Texture(id gpucore.TextureID) (*Texture, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tex, ok := b.textures[id]
	return tex, ok
}

// CreateSampler creates a sampler.
func (b *Backend) CreateSampler(label string) (gpucore.SamplerID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := gpucore.SamplerID(b.newID())
	b.samplers[id] = label
	return id, nil
}

// DestroySampler releases a sampler.
func (b *Backend) DestroySampler(id gpucore.SamplerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.samplers[id]; ok {
		delete(b.samplers, id)
		b.destroyed++
	}
}

// === Pipeline Management ===

// CreateBindGroupLayout records a layout.
func (b *Backend) CreateBindGroupLayout(desc *gpucore.BindGroupLayoutDesc) (gpucore.BindGroupLayoutID, error) {
	if desc == nil {
		return gpucore.InvalidID, fmt.Errorf("memory: nil bind group layout descriptor")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := gpucore.BindGroupLayoutID(b.newID())
	b.layouts[id] = *desc
	return id, nil
}

// DestroyBindGroupLayout releases a layout.
func (b *Backend) DestroyBindGroupLayout(id gpucore.BindGroupLayoutID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.layouts[id]; ok {
		delete(b.layouts, id)
		b.destroyed++
	}
}

// CreateBindGroup records a bind group after checking every referenced
// resource is live.
func (b *Backend) CreateBindGroup(desc *gpucore.BindGroupDesc) (gpucore.BindGroupID, error) {
	if desc == nil {
		return gpucore.InvalidID, fmt.Errorf("memory: nil bind group descriptor")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.layouts[desc.Layout]; !ok {
		return gpucore.InvalidID, fmt.Errorf("memory: bind group layout %d: %w", desc.Layout, gpucore.ErrUnknownResource)
	}
	for _, e := range desc.Entries {
		if err := b.checkEntry(e); err != nil {
			return gpucore.InvalidID, fmt.Errorf("memory: bind group %q entry %d: %w", desc.Label, e.Binding, err)
		}
	}
	id := gpucore.BindGroupID(b.newID())
	d := *desc
	d.Entries = append([]gpucore.BindGroupEntry(nil), desc.Entries...)
	b.bindGroups[id] = d
	return id, nil
}

// checkEntry must be called with mu held.
func (b *Backend) checkEntry(e gpucore.BindGroupEntry) error {
	switch {
	case e.Buffer != gpucore.InvalidID:
		if _, ok := b.buffers[e.Buffer]; !ok {
			return gpucore.ErrUnknownResource
		}
	case e.Texture != gpucore.InvalidID:
		if _, ok := b.textures[e.Texture]; !ok {
			return gpucore.ErrUnknownResource
		}
	case e.Sampler != gpucore.InvalidID:
		if _, ok := b.samplers[e.Sampler]; !ok {
			return gpucore.ErrUnknownResource
		}
	default:
		return gpucore.ErrUnknownResource
	}
	return nil
}

// DestroyBindGroup releases a bind group.
func (b *Backend) DestroyBindGroup(id gpucore.BindGroupID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.bindGroups[id]; ok {
		delete(b.bindGroups, id)
		b.destroyed++
	}
}

// BindGroup returns the descriptor of a live bind group.
func (b *Backend) BindGroup(id gpucore.BindGroupID) (gpucore.BindGroupDesc, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.bindGroups[id]
	return d, ok
}

// CreateRenderPipeline records a pipeline.
func (b *Backend) CreateRenderPipeline(desc *gpucore.RenderPipelineDesc) (gpucore.RenderPipelineID, error) {
	if desc == nil || desc.Shader == "" {
		return gpucore.InvalidID, fmt.Errorf("memory: render pipeline needs a shader")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range desc.BindGroups {
		if _, ok := b.layouts[l]; !ok {
			return gpucore.InvalidID, fmt.Errorf("memory: bind group layout %d: %w", l, gpucore.ErrUnknownResource)
		}
	}
	id := gpucore.RenderPipelineID(b.newID())
	b.pipelines[id] = *desc
	return id, nil
}

// DestroyRenderPipeline releases a pipeline.
func (b *Backend) DestroyRenderPipeline(id gpucore.RenderPipelineID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.pipelines[id]; ok {
		delete(b.pipelines, id)
		b.destroyed++
	}
}

// === Command Recording and Execution ===

// BeginRenderPass starts recording a pass.
func (b *Backend) BeginRenderPass(desc *gpucore.RenderPassDesc) (gpucore.RenderPassEncoder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active {
		return nil, gpucore.ErrPassActive
	}
	if _, ok := b.textures[desc.Target]; !ok {
		return nil, fmt.Errorf("memory: render target %d: %w", desc.Target, gpucore.ErrUnknownResource)
	}
	p := &Pass{Desc: *desc}
	b.pending = append(b.pending, p)
	b.active = true
	return &passEncoder{backend: b, pass: p}, nil
}

// Submit moves all ended passes to the submitted list.
func (b *Backend) Submit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active {
		return gpucore.ErrPassActive
	}
	b.submitted = append(b.submitted, b.pending...)
	b.pending = nil
	b.submits++
	return nil
}

// Passes returns all submitted passes in submission order.
func (b *Backend) Passes() []*Pass {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Pass(nil), b.submitted...)
}

// LastPass returns the most recently submitted pass, or nil.
func (b *Backend) LastPass() *Pass {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.submitted) == 0 {
		return nil
	}
	return b.submitted[len(b.submitted)-1]
}

// Submits returns the number of Submit calls.
func (b *Backend) Submits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.submits
}

// Live returns the number of resources created and not yet destroyed.
func (b *Backend) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.created - b.destroyed
}

// Release destroys every live resource. Recorded passes are kept.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyed += len(b.buffers) + len(b.textures) + len(b.samplers) +
		len(b.layouts) + len(b.bindGroups) + len(b.pipelines)
	clear(b.buffers)
	clear(b.textures)
	clear(b.samplers)
	clear(b.layouts)
	clear(b.bindGroups)
	clear(b.pipelines)
}

type passEncoder struct {
	backend *Backend
	pass    *Pass
}

func (e *passEncoder) record(c Command) {
	e.backend.mu.Lock()
	defer e.backend.mu.Unlock()
	if e.pass.Ended {
		return
	}
	e.pass.Commands = append(e.pass.Commands, c)
}

func (e *passEncoder) SetPipeline(pipeline gpucore.RenderPipelineID) {
	e.record(Command{Kind: CommandSetPipeline, Pipeline: pipeline})
}

func (e *passEncoder) SetBindGroup(index uint32, group gpucore.BindGroupID) {
	e.record(Command{Kind: CommandSetBindGroup, Index: index, Group: group})
}

func (e *passEncoder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	e.record(Command{
		Kind:          CommandDraw,
		VertexCount:   vertexCount,
		InstanceCount: instanceCount,
		FirstVertex:   firstVertex,
		FirstInstance: firstInstance,
	})
}

func (e *passEncoder) End() {
	e.backend.mu.Lock()
	defer e.backend.mu.Unlock()
	if e.pass.Ended {
		return
	}
	e.pass.Ended = true
	e.backend.active = false
}

var _ gpucore.Backend = (*Backend)(nil)
