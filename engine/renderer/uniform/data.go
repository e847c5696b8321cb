package uniform

import (
	"github.com/vireo3d/vireo/engine/math"
	"github.com/vireo3d/vireo/engine/renderer/vulkan"
)

// LightType discriminates the light record on the shader side.
type LightType int32

const (
	LightTypeDirectional LightType = iota
	LightTypePoint
)

// Light mirrors the shader-side light record. Coords is a direction for
// directional lights and a position for point lights.
type Light struct {
	Coords math.Vec3
	Type   LightType
	Colour math.Vec4
}

// WorldData is the single record behind the world descriptor set, written
// once per draw pass. Field order and padding match the shader block layout.
type WorldData struct {
	WorldMatrix    math.Mat4
	LightMatrices  [vulkan.MaxCascades]math.Mat4
	Lights         [4]Light
	CameraPosition math.Vec3
	Time           float32
	CascadeSplits  [vulkan.MaxCascades]float32
	ShadowBias     float32
	_              [3]float32
}

// MaterialData is the single record behind a material descriptor set. The
// eight vec4 arguments are interpreted per shader; Args[0] is the albedo
// tint by convention.
type MaterialData struct {
	Args [8]math.Vec4
}

// PushConstants is the per-order payload recorded into the command stream.
type PushConstants struct {
	ModelMatrix  math.Mat4
	AlbedoIndex  int32
	SamplerIndex SamplerIndex
}

// SamplerIndex selects one of the precomputed sampler combinations by
// bit-packing the three sampler axes. The zero value is linear filtering,
// repeat addressing, mipmaps enabled.
type SamplerIndex int32

const (
	SamplerNoMipmaps SamplerIndex = 1 << 0
	SamplerClamp     SamplerIndex = 1 << 1
	SamplerNearest   SamplerIndex = 1 << 2
)

// Options expands the packed index into sampler creation options.
func (i SamplerIndex) Options(anisotropy float32) vulkan.SamplerOptions {
	options := vulkan.SamplerOptions{Anisotropy: anisotropy}
	if i&SamplerNearest != 0 {
		options.Filter = vulkan.SamplerFilterNearest
	}
	if i&SamplerClamp != 0 {
		options.Address = vulkan.SamplerAddressClamp
	}
	if i&SamplerNoMipmaps != 0 {
		options.Mipmaps = vulkan.SamplerMipmapsDisabled
	}
	return options
}
