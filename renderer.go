package gvr

import (
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/gogpu/gvr/atlas"
	"github.com/gogpu/gvr/gpucore"
	"github.com/gogpu/gvr/internal/batch"
	"github.com/gogpu/gvr/internal/gpuvec"
	"github.com/gogpu/gvr/internal/path"
	"github.com/gogpu/gvr/internal/scene"
)

//go:embed shader.wgsl
var shaderSource string

// ShaderSource returns the WGSL source of the primitive shader.
func ShaderSource() string {
	return shaderSource
}

// Bind group slots used by the pipeline.
const (
	groupScene    = 0
	groupUniforms = 1
	groupTextures = 2
)

// Texture bindings inside the texture group.
const (
	bindingMask uint32 = iota
	bindingColor
	bindingImage
)

// Renderer records one frame of primitives at a time and encodes them
// into instanced draws on a gpucore.Backend.
//
// A Renderer is not safe for concurrent use. All calls for a frame must
// come from one goroutine, between Begin and Encode.
type Renderer struct {
	backend gpucore.Backend
	opts    options
	logger  *slog.Logger

	sceneLayout   gpucore.BindGroupLayoutID
	uniformLayout gpucore.BindGroupLayoutID
	textureLayout gpucore.BindGroupLayoutID
	pipeline      gpucore.RenderPipelineID
	sampler       gpucore.SamplerID

	ring  *scene.Ring
	scene *scene.Scene

	uniforms     *gpuvec.Vec[gpucore.Uniforms]
	uniformGroup gpucore.BindGroupID

	cache      *atlas.Cache
	cacheGroup gpucore.BindGroupID

	images    imageTable
	graveyard graveyard

	xforms   []Transform
	scissors []gpucore.Scissor
	z        int32

	xformCount   int
	scissorCount int
	paintCount   int

	scanner path.Scanner

	size       Point
	pixelRatio float32
	frames     uint64
	runs       []batch.Run
	stats      Stats
	released   bool
}

// New creates a renderer drawing through backend.
//
// It compiles the pipeline, creates the three scene slots, the uniform
// buffer and both atlas textures. Release frees all of them.
func New(backend gpucore.Backend, opts ...Option) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	// Without an override, log through the package logger current at
	// each call.
	logger := o.logger
	if logger == nil {
		logger = slog.New(followHandler{})
	}
	propagateLogger(backend, logger)

	r := &Renderer{
		backend: backend,
		opts:    o,
		logger:  logger,
	}
	if err := r.init(); err != nil {
		r.Release()
		return nil, err
	}
	r.resetStacks()
	r.scene = r.ring.Current()

	r.logger.Info("gvr: renderer created",
		"format", o.targetFormat,
		"atlas_size", r.cache.Size(),
		"max_prims", o.maxPrims)
	return r, nil
}

func (r *Renderer) init() error {
	var err error
	if r.sceneLayout, err = r.backend.CreateBindGroupLayout(scene.LayoutDesc()); err != nil {
		return fmt.Errorf("gvr: scene layout: %w", err)
	}
	r.uniformLayout, err = r.backend.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{
		Label: "uniforms",
		Entries: []gpucore.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gpucore.ShaderStageVertex | gpucore.ShaderStageFragment, Type: gpucore.BindingTypeUniformBuffer},
			{Binding: 1, Visibility: gpucore.ShaderStageFragment, Type: gpucore.BindingTypeSampler},
		},
	})
	if err != nil {
		return fmt.Errorf("gvr: uniform layout: %w", err)
	}
	r.textureLayout, err = r.backend.CreateBindGroupLayout(&gpucore.BindGroupLayoutDesc{
		Label: "textures",
		Entries: []gpucore.BindGroupLayoutEntry{
			{Binding: bindingMask, Visibility: gpucore.ShaderStageFragment, Type: gpucore.BindingTypeSampledTexture},
			{Binding: bindingColor, Visibility: gpucore.ShaderStageFragment, Type: gpucore.BindingTypeSampledTexture},
			{Binding: bindingImage, Visibility: gpucore.ShaderStageFragment, Type: gpucore.BindingTypeSampledTexture},
		},
	})
	if err != nil {
		return fmt.Errorf("gvr: texture layout: %w", err)
	}

	r.pipeline, err = r.backend.CreateRenderPipeline(&gpucore.RenderPipelineDesc{
		Label:         "gvr",
		Shader:        shaderSource,
		VertexEntry:   "vs_main",
		FragmentEntry: "fs_main",
		BindGroups:    []gpucore.BindGroupLayoutID{r.sceneLayout, r.uniformLayout, r.textureLayout},
		Format:        r.opts.targetFormat,
	})
	if err != nil {
		return fmt.Errorf("gvr: pipeline: %w", err)
	}
	if r.sampler, err = r.backend.CreateSampler("gvr"); err != nil {
		return fmt.Errorf("gvr: sampler: %w", err)
	}

	if r.ring, err = scene.NewRing(r.backend, r.sceneLayout, r.opts.initialCapacity); err != nil {
		return err
	}
	if r.uniforms, err = gpuvec.New[gpucore.Uniforms](r.backend, "uniforms", gpucore.BufferUsageUniform, 1); err != nil {
		return err
	}
	if err := r.rebindUniforms(); err != nil {
		return err
	}

	if r.cache, err = atlas.NewCache(r.backend, r.opts.atlasSize, r.opts.atlasThreshold); err != nil {
		return err
	}
	return r.rebindCache()
}

// defaultScissor covers every reachable pixel.
func defaultScissor() gpucore.Scissor {
	return gpucore.Scissor{
		Xform:  Identity().columns(),
		Origin: [2]float32{-10000, -10000},
		Size:   [2]float32{20000, 20000},
	}
}

func (r *Renderer) resetStacks() {
	r.xforms = append(r.xforms[:0], Identity())
	r.scissors = append(r.scissors[:0], defaultScissor())
}

// Begin starts a frame of width x height logical pixels.
//
// It selects the next scene slot and clears it, resets the transform and
// scissor stacks, the z-index and the path cursor, and discards the glyph
// cache if the atlases passed their usage threshold.
func (r *Renderer) Begin(width, height, pixelRatio float32) error {
	if r.released {
		return ErrReleased
	}
	r.size = Point{X: width, Y: height}
	r.pixelRatio = pixelRatio
	r.z = 0
	r.scene = r.ring.Advance()
	r.resetStacks()
	r.xformCount = 0
	r.scissorCount = 0
	r.paintCount = 0
	r.addXform()
	r.scanner.Reset()
	r.scanner.MoveTo(path.Point{})
	r.stats.beginFrame()
	r.graveyard.tick()

	reset, err := r.cache.CheckUsage()
	if err != nil {
		return fmt.Errorf("gvr: begin: %w", err)
	}
	if reset {
		if err := r.rebindCache(); err != nil {
			return fmt.Errorf("gvr: begin: %w", err)
		}
		if err := r.rebindImages(); err != nil {
			return fmt.Errorf("gvr: begin: %w", err)
		}
		r.logger.Debug("gvr: atlas reset", "resets", r.cache.Resets(), "frame", r.frames)
	}

	size := float32(r.cache.Size())
	r.uniforms.Clear()
	r.uniforms.Push(gpucore.Uniforms{
		Size:      [2]float32{width, height},
		AtlasSize: [2]float32{size, size},
	})
	r.frames++
	return nil
}

// Save pushes a copy of the current transform and scissor.
func (r *Renderer) Save() {
	r.xforms = append(r.xforms, r.xforms[len(r.xforms)-1])
	r.scissors = append(r.scissors, r.scissors[len(r.scissors)-1])
}

// Restore pops the transform and scissor pushed by the matching Save.
// Without one it returns ErrStackUnderflow and changes nothing.
func (r *Renderer) Restore() error {
	if len(r.xforms) <= 1 || len(r.scissors) <= 1 {
		return ErrStackUnderflow
	}
	r.xforms = r.xforms[:len(r.xforms)-1]
	r.scissors = r.scissors[:len(r.scissors)-1]
	return nil
}

// SetZIndex selects the bucket for subsequent primitives. Buckets draw
// in ascending order; the default is 0.
func (r *Renderer) SetZIndex(z int32) {
	r.z = z
}

// Translate moves the coordinate system by (x, y).
func (r *Renderer) Translate(x, y float32) {
	r.preMultiply(Translate(x, y))
}

// Scale scales the coordinate system.
func (r *Renderer) Scale(x, y float32) {
	r.preMultiply(Scale(x, y))
}

// Rotate rotates the coordinate system by theta radians.
func (r *Renderer) Rotate(theta float32) {
	r.preMultiply(Rotate(theta))
}

func (r *Renderer) preMultiply(m Transform) {
	top := &r.xforms[len(r.xforms)-1]
	*top = top.Multiply(m)
}

// CurrentTransform returns the top of the transform stack.
func (r *Renderer) CurrentTransform() Transform {
	return r.xforms[len(r.xforms)-1]
}

// Scissor clips subsequent primitives to rect, in the current local
// coordinates, with rounded corners of the given radius. A singular
// current transform leaves clipping disabled.
func (r *Renderer) Scissor(rect Rect, radius float32) {
	top := &r.scissors[len(r.scissors)-1]
	*top = defaultScissor()
	inv, ok := r.CurrentTransform().Inverse()
	if !ok {
		return
	}
	top.Xform = inv.columns()
	top.Origin = [2]float32{rect.Origin.X, rect.Origin.Y}
	top.Size = [2]float32{rect.Size.X, rect.Size.Y}
	top.Radius = radius
}

// ResetScissor disables clipping.
func (r *Renderer) ResetScissor() {
	r.scissors[len(r.scissors)-1] = defaultScissor()
}

// Size returns the frame size passed to the last Begin.
func (r *Renderer) Size() (width, height, pixelRatio float32) {
	return r.size.X, r.size.Y, r.pixelRatio
}

// addXform snapshots the current transform into the frame. Past the
// per-frame bound it returns index 0.
func (r *Renderer) addXform() uint32 {
	if r.xformCount >= r.opts.maxPrims {
		r.stats.XformOverflow++
		return 0
	}
	r.scene.Xforms.Push(r.CurrentTransform().To3D())
	r.xformCount++
	return uint32(r.xformCount - 1)
}

// addScissor snapshots the current scissor into the frame. Past the
// per-frame bound it returns index 0.
func (r *Renderer) addScissor() uint32 {
	if r.scissorCount >= r.opts.maxPrims {
		r.stats.ScissorOverflow++
		return 0
	}
	r.scene.Scissors.Push(r.scissors[len(r.scissors)-1])
	r.scissorCount++
	return uint32(r.scissorCount - 1)
}

// render snapshots transform and scissor into p and files it under the
// current z-index.
func (r *Renderer) render(p gpucore.Prim) {
	p.Xform = r.addXform()
	p.Scissor = r.addScissor()
	r.scene.Add(r.z, p)
}

// Encode uploads the frame and records it into one render pass.
//
// Primitives are drawn in ascending z, submission order within a z. Each
// run of primitives sharing a bound image becomes one instanced draw of
// four vertices per primitive.
func (r *Renderer) Encode(pass *gpucore.RenderPassDesc) error {
	if r.released {
		return ErrReleased
	}
	if r.frames == 0 {
		return ErrNoFrame
	}

	r.scene.Flatten()
	if err := r.scene.Update(); err != nil {
		return fmt.Errorf("gvr: encode: %w", err)
	}
	changed, err := r.uniforms.Update()
	if err != nil {
		return fmt.Errorf("gvr: encode: %w", err)
	}
	if changed {
		if err := r.rebindUniforms(); err != nil {
			return fmt.Errorf("gvr: encode: %w", err)
		}
	}
	if err := r.cache.Flush(); err != nil {
		return fmt.Errorf("gvr: encode: %w", err)
	}

	n := r.scene.Prims.Len()
	r.runs = batch.Compile(r.runs[:0], n, r.primImage)

	enc, err := r.backend.BeginRenderPass(pass)
	if err != nil {
		return fmt.Errorf("gvr: encode: %w", err)
	}
	enc.SetPipeline(r.pipeline)
	enc.SetBindGroup(groupScene, r.scene.BindGroup())
	enc.SetBindGroup(groupUniforms, r.uniformGroup)
	enc.SetBindGroup(groupTextures, r.cacheGroup)

	draws := 0
	for _, run := range r.runs {
		if run.Image != batch.NoImage {
			group, ok := r.images.bindGroup(run.Image)
			if !ok {
				r.logger.Warn("gvr: run skipped, image deleted", "image", run.Image, "prims", run.Count)
				r.stats.SkippedDraws += int(run.Count)
				continue
			}
			enc.SetBindGroup(groupTextures, group)
		}
		enc.Draw(4, run.Count, 0, run.Start)
		draws++
	}
	enc.End()

	r.stats.Prims = n
	r.stats.Runs = draws
	r.logger.Debug("gvr: encode", "frame", r.frames, "prims", n, "runs", draws)

	if err := r.backend.Submit(); err != nil {
		return fmt.Errorf("gvr: submit: %w", err)
	}
	return nil
}

// primImage returns the image a primitive needs bound. Color glyphs
// never read their paint, so they have no image affinity.
func (r *Renderer) primImage(i int) int32 {
	p := r.scene.Prims.At(i)
	if p.Type == gpucore.PrimColorGlyph {
		return batch.NoImage
	}
	if int(p.Paint) >= r.scene.Paints.Len() {
		return batch.NoImage
	}
	return r.scene.Paints.At(int(p.Paint)).Image
}

func (r *Renderer) rebindUniforms() error {
	group, err := r.backend.CreateBindGroup(&gpucore.BindGroupDesc{
		Label:  "uniforms",
		Layout: r.uniformLayout,
		Entries: []gpucore.BindGroupEntry{
			{Binding: 0, Buffer: r.uniforms.Buffer(), Size: r.uniforms.ByteSize()},
			{Binding: 1, Sampler: r.sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("gvr: uniform bind group: %w", err)
	}
	r.retireBindGroup(r.uniformGroup)
	r.uniformGroup = group
	return nil
}

// textureGroup binds both atlases plus image in the texture slot.
func (r *Renderer) textureGroup(label string, image gpucore.TextureID) (gpucore.BindGroupID, error) {
	group, err := r.backend.CreateBindGroup(&gpucore.BindGroupDesc{
		Label:  label,
		Layout: r.textureLayout,
		Entries: []gpucore.BindGroupEntry{
			{Binding: bindingMask, Texture: r.cache.MaskTexture()},
			{Binding: bindingColor, Texture: r.cache.ColorTexture()},
			{Binding: bindingImage, Texture: image},
		},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("gvr: %s bind group: %w", label, err)
	}
	return group, nil
}

// rebindCache recreates the atlas bind group. The image binding repeats
// the color atlas since no image is bound.
func (r *Renderer) rebindCache() error {
	group, err := r.textureGroup("atlas", r.cache.ColorTexture())
	if err != nil {
		return err
	}
	r.retireBindGroup(r.cacheGroup)
	r.cacheGroup = group
	return nil
}

func (r *Renderer) retireBindGroup(group gpucore.BindGroupID) {
	if group == gpucore.InvalidID {
		return
	}
	r.graveyard.add(func() { r.backend.DestroyBindGroup(group) })
}

// Release destroys every backend resource the renderer owns. The
// renderer cannot be used afterwards.
func (r *Renderer) Release() {
	if r.released {
		return
	}
	r.released = true
	r.graveyard.flush()
	r.images.release(r.backend)
	if r.cacheGroup != gpucore.InvalidID {
		r.backend.DestroyBindGroup(r.cacheGroup)
	}
	if r.cache != nil {
		r.cache.Release()
	}
	if r.uniformGroup != gpucore.InvalidID {
		r.backend.DestroyBindGroup(r.uniformGroup)
	}
	if r.uniforms != nil {
		r.uniforms.Release()
	}
	if r.ring != nil {
		r.ring.Release()
	}
	if r.sampler != gpucore.InvalidID {
		r.backend.DestroySampler(r.sampler)
	}
	if r.pipeline != gpucore.InvalidID {
		r.backend.DestroyRenderPipeline(r.pipeline)
	}
	for _, l := range []gpucore.BindGroupLayoutID{r.textureLayout, r.uniformLayout, r.sceneLayout} {
		if l != gpucore.InvalidID {
			r.backend.DestroyBindGroupLayout(l)
		}
	}
}
