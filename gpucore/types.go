package gpucore

import (
	"errors"
	"unsafe"
)

// Resource IDs
//
// These opaque IDs represent GPU resources. Each backend maintains a
// mapping between IDs and its native resources.

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// TextureID is an opaque handle to a GPU texture.
type TextureID uint64

// SamplerID is an opaque handle to a texture sampler.
type SamplerID uint64

// BindGroupLayoutID is an opaque handle to a bind group layout.
type BindGroupLayoutID uint64

// BindGroupID is an opaque handle to a bind group.
type BindGroupID uint64

// RenderPipelineID is an opaque handle to a render pipeline.
type RenderPipelineID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// Backend errors.
var (
	// ErrUnknownResource is returned when an ID does not name a live resource.
	ErrUnknownResource = errors.New("gpucore: unknown resource")

	// ErrInvalidSize is returned for zero or negative buffer/texture sizes.
	ErrInvalidSize = errors.New("gpucore: invalid size")

	// ErrPassActive is returned when a render pass is begun while another is open.
	ErrPassActive = errors.New("gpucore: render pass already active")
)

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageCopySrc indicates the buffer can be used as a copy source.
	BufferUsageCopySrc BufferUsage = 1 << 2

	// BufferUsageCopyDst indicates the buffer can be used as a copy destination.
	BufferUsageCopyDst BufferUsage = 1 << 3

	// BufferUsageUniform indicates the buffer can be used as a uniform buffer.
	BufferUsageUniform BufferUsage = 1 << 6

	// BufferUsageStorage indicates the buffer can be used as a storage buffer.
	BufferUsageStorage BufferUsage = 1 << 7
)

// TextureFormat specifies the format of texture data.
type TextureFormat uint32

// Texture formats.
const (
	// TextureFormatRGBA8Unorm is 8-bit RGBA, normalized unsigned integer.
	TextureFormatRGBA8Unorm TextureFormat = iota + 1

	// TextureFormatRGBA8UnormSRGB is 8-bit RGBA in sRGB color space.
	TextureFormatRGBA8UnormSRGB

	// TextureFormatBGRA8Unorm is 8-bit BGRA, normalized unsigned integer.
	TextureFormatBGRA8Unorm

	// TextureFormatBGRA8UnormSRGB is 8-bit BGRA in sRGB color space.
	TextureFormatBGRA8UnormSRGB

	// TextureFormatR8Unorm is 8-bit red channel only, normalized unsigned integer.
	TextureFormatR8Unorm
)

// BytesPerPixel returns the texel size of the format.
func (f TextureFormat) BytesPerPixel() int {
	if f == TextureFormatR8Unorm {
		return 1
	}
	return 4
}

// String returns the format name.
func (f TextureFormat) String() string {
	switch f {
	case TextureFormatRGBA8Unorm:
		return "RGBA8Unorm"
	case TextureFormatRGBA8UnormSRGB:
		return "RGBA8UnormSRGB"
	case TextureFormatBGRA8Unorm:
		return "BGRA8Unorm"
	case TextureFormatBGRA8UnormSRGB:
		return "BGRA8UnormSRGB"
	case TextureFormatR8Unorm:
		return "R8Unorm"
	default:
		return "Unknown"
	}
}

// TextureUsage is a bitmask specifying how a texture will be used.
type TextureUsage uint32

// Texture usage flags.
const (
	// TextureUsageCopySrc indicates the texture can be used as a copy source.
	TextureUsageCopySrc TextureUsage = 1 << 0

	// TextureUsageCopyDst indicates the texture can be used as a copy destination.
	TextureUsageCopyDst TextureUsage = 1 << 1

	// TextureUsageTextureBinding indicates the texture can be bound as a sampled texture.
	TextureUsageTextureBinding TextureUsage = 1 << 2

	// TextureUsageRenderAttachment indicates the texture can be used as a render target.
	TextureUsageRenderAttachment TextureUsage = 1 << 4
)

// ShaderStage is a bitmask of shader stages a binding is visible to.
type ShaderStage uint32

// Shader stages.
const (
	ShaderStageVertex   ShaderStage = 1 << 0
	ShaderStageFragment ShaderStage = 1 << 1
)

// BindingType specifies the type of a shader binding.
type BindingType uint32

// Binding types.
const (
	// BindingTypeUniformBuffer is a uniform buffer binding.
	BindingTypeUniformBuffer BindingType = iota + 1

	// BindingTypeReadOnlyStorageBuffer is a read-only storage buffer binding.
	BindingTypeReadOnlyStorageBuffer

	// BindingTypeSampler is a filtering sampler binding.
	BindingTypeSampler

	// BindingTypeSampledTexture is a 2D float texture binding.
	BindingTypeSampledTexture
)

// TextureDesc describes a 2D texture.
type TextureDesc struct {
	Label  string
	Width  int
	Height int
	Format TextureFormat
	Usage  TextureUsage
}

// TextureRegion addresses a sub-rectangle of a texture for uploads.
type TextureRegion struct {
	X, Y          int
	Width, Height int
}

// BindGroupLayoutDesc describes a bind group layout.
type BindGroupLayoutDesc struct {
	// Label is an optional debug label.
	Label string

	// Entries defines the bindings in this layout.
	Entries []BindGroupLayoutEntry
}

// BindGroupLayoutEntry describes a single binding in a bind group layout.
type BindGroupLayoutEntry struct {
	// Binding is the binding index.
	Binding uint32

	// Visibility lists the stages that read the binding.
	Visibility ShaderStage

	// Type is the type of resource bound at this index.
	Type BindingType
}

// BindGroupEntry describes a single binding in a bind group.
// Exactly one of Buffer, Texture or Sampler is set.
type BindGroupEntry struct {
	// Binding is the binding index.
	Binding uint32

	// Buffer is the buffer to bind (for buffer bindings).
	Buffer BufferID

	// Size is the size of the buffer range to bind.
	// Use 0 to bind the entire buffer.
	Size uint64

	// Texture is the texture to bind (for texture bindings).
	Texture TextureID

	// Sampler is the sampler to bind (for sampler bindings).
	Sampler SamplerID
}

// BindGroupDesc describes a bind group.
type BindGroupDesc struct {
	// Label is an optional debug label.
	Label string

	// Layout is the bind group layout.
	Layout BindGroupLayoutID

	// Entries are the resource bindings.
	Entries []BindGroupEntry
}

// RenderPipelineDesc describes the instanced quad pipeline.
// The pipeline draws triangle strips without vertex buffers. The fragment
// shader outputs premultiplied color, blended source-over.
type RenderPipelineDesc struct {
	Label string

	// Shader is WGSL source containing both entry points.
	Shader        string
	VertexEntry   string
	FragmentEntry string
	BindGroups    []BindGroupLayoutID
	Format        TextureFormat
}

// RenderPassDesc describes a single-attachment render pass.
type RenderPassDesc struct {
	Label string

	// Target is a texture created with TextureUsageRenderAttachment or an
	// external view registered with the backend.
	Target TextureID

	// Clear requests a clear to ClearColor; otherwise existing contents load.
	Clear      bool
	ClearColor [4]float64
}

// GPU Data Structures
//
// These structures match the WGSL shader data layouts and are uploaded
// verbatim. All structures are 4-byte aligned scalars or arrays so the
// Go layout equals the WGSL storage layout.

// PrimType identifies the shape a Prim draws.
type PrimType uint32

// Primitive kinds. Values are shared with the shader.
const (
	PrimCircle PrimType = iota
	PrimArc
	PrimRect
	PrimRectStroke
	PrimSegment
	PrimBezier
	PrimPathFill
	PrimGlyph
	PrimColorGlyph
	PrimOverrideColorSvg
)

// String returns the primitive kind name.
func (t PrimType) String() string {
	switch t {
	case PrimCircle:
		return "Circle"
	case PrimArc:
		return "Arc"
	case PrimRect:
		return "Rect"
	case PrimRectStroke:
		return "RectStroke"
	case PrimSegment:
		return "Segment"
	case PrimBezier:
		return "Bezier"
	case PrimPathFill:
		return "PathFill"
	case PrimGlyph:
		return "Glyph"
	case PrimColorGlyph:
		return "ColorGlyph"
	case PrimOverrideColorSvg:
		return "OverrideColorSvg"
	default:
		return "Unknown"
	}
}

// Prim is one instanced draw record.
// Must match Prim in shader.wgsl.
type Prim struct {
	Type   PrimType
	Width  float32 // stroke width
	Radius float32 // circle radius or corner radius

	// CVs are the control values; interpretation depends on Type.
	CVs [6]float32

	// Start and Count slice the curve-vertex array (PathFill only).
	// Count is the number of quadratic edges; each edge owns 3 vertices.
	Start uint32
	Count uint32

	Paint   uint32
	Scissor uint32
	Xform   uint32

	// QuadBounds is the destination box (min x, min y, max x, max y).
	QuadBounds [4]float32

	// TexBounds is the atlas texel box for bitmap kinds, QuadBounds otherwise.
	TexBounds [4]float32

	Padding uint32
}

// Paint is a solid, gradient or image paint.
// Must match Paint in shader.wgsl.
type Paint struct {
	// Xform maps local coordinates into paint space (mat3x2, column-major).
	Xform [6]float32
	Glow  float32

	// Image is the bound image index, or -1 for the shared atlases.
	Image int32

	InnerColor [4]float32
	OuterColor [4]float32
}

// Scissor clips primitives to a rounded rectangle in a local space.
// Must match Scissor in shader.wgsl.
type Scissor struct {
	// Xform maps world coordinates into the scissor's local space
	// (mat3x2, column-major).
	Xform  [6]float32
	Origin [2]float32
	Size   [2]float32
	Radius float32
	Pad    float32
}

// Uniforms holds per-frame shader constants.
// Must match Uniforms in shader.wgsl.
type Uniforms struct {
	Size      [2]float32
	AtlasSize [2]float32
}

// CV is one curve vertex.
// Must match the vec2<f32> element of the cvs array in shader.wgsl.
type CV struct {
	X, Y float32
}

// Xform is a column-major 4x4 transform.
// Must match the mat4x4<f32> element of the xforms array in shader.wgsl.
type Xform [16]float32

// SliceBytes reinterprets a slice of plain GPU records as bytes.
// T must not contain pointers.
func SliceBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}

// SizeOf returns the byte size of one record of type T.
func SizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}
