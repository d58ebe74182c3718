package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"

	"github.com/gogpu/gvr/gpucore"
)

// convertBufferUsage converts gpucore.BufferUsage to gputypes.BufferUsage.
// Every buffer is written from the host, so CopyDst is always added.
func convertBufferUsage(usage gpucore.BufferUsage) gputypes.BufferUsage {
	result := gputypes.BufferUsageCopyDst
	if usage&gpucore.BufferUsageCopySrc != 0 {
		result |= gputypes.BufferUsageCopySrc
	}
	if usage&gpucore.BufferUsageUniform != 0 {
		result |= gputypes.BufferUsageUniform
	}
	if usage&gpucore.BufferUsageStorage != 0 {
		result |= gputypes.BufferUsageStorage
	}
	return result
}

// convertTextureUsage converts gpucore.TextureUsage to gputypes.TextureUsage.
func convertTextureUsage(usage gpucore.TextureUsage) gputypes.TextureUsage {
	var result gputypes.TextureUsage
	if usage&gpucore.TextureUsageCopySrc != 0 {
		result |= gputypes.TextureUsageCopySrc
	}
	if usage&gpucore.TextureUsageCopyDst != 0 {
		result |= gputypes.TextureUsageCopyDst
	}
	if usage&gpucore.TextureUsageTextureBinding != 0 {
		result |= gputypes.TextureUsageTextureBinding
	}
	if usage&gpucore.TextureUsageRenderAttachment != 0 {
		result |= gputypes.TextureUsageRenderAttachment
	}
	return result
}

// convertTextureFormat converts gpucore.TextureFormat to gputypes.TextureFormat.
func convertTextureFormat(format gpucore.TextureFormat) (gputypes.TextureFormat, error) {
	switch format {
	case gpucore.TextureFormatRGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm, nil
	case gpucore.TextureFormatRGBA8UnormSRGB:
		return gputypes.TextureFormatRGBA8UnormSrgb, nil
	case gpucore.TextureFormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm, nil
	case gpucore.TextureFormatBGRA8UnormSRGB:
		return gputypes.TextureFormatBGRA8UnormSrgb, nil
	case gpucore.TextureFormatR8Unorm:
		return gputypes.TextureFormatR8Unorm, nil
	default:
		return gputypes.TextureFormatUndefined, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// convertShaderStage converts gpucore.ShaderStage to gputypes.ShaderStage.
func convertShaderStage(stage gpucore.ShaderStage) gputypes.ShaderStage {
	var result gputypes.ShaderStage
	if stage&gpucore.ShaderStageVertex != 0 {
		result |= gputypes.ShaderStageVertex
	}
	if stage&gpucore.ShaderStageFragment != 0 {
		result |= gputypes.ShaderStageFragment
	}
	return result
}

// convertLayoutEntry converts a layout entry to its HAL form.
func convertLayoutEntry(e gpucore.BindGroupLayoutEntry) (gputypes.BindGroupLayoutEntry, error) {
	out := gputypes.BindGroupLayoutEntry{
		Binding:    e.Binding,
		Visibility: convertShaderStage(e.Visibility),
	}
	switch e.Type {
	case gpucore.BindingTypeUniformBuffer:
		out.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
	case gpucore.BindingTypeReadOnlyStorageBuffer:
		out.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}
	case gpucore.BindingTypeSampler:
		out.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
	case gpucore.BindingTypeSampledTexture:
		out.Texture = &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	default:
		return out, fmt.Errorf("wgpu: binding %d: unknown type %d", e.Binding, e.Type)
	}
	return out, nil
}

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("wgpu: compile shader: SPIR-V length %d is not word aligned", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
