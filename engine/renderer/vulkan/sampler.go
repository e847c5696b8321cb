package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/vireo3d/vireo/engine/core"
)

type SamplerFilter int

const (
	SamplerFilterLinear SamplerFilter = iota
	SamplerFilterNearest
)

type SamplerAddress int

const (
	SamplerAddressRepeat SamplerAddress = iota
	SamplerAddressClamp
)

type SamplerMipmaps int

const (
	SamplerMipmapsEnabled SamplerMipmaps = iota
	SamplerMipmapsDisabled
)

type SamplerOptions struct {
	Anisotropy float32
	Filter     SamplerFilter
	Address    SamplerAddress
	Mipmaps    SamplerMipmaps
}

type Sampler struct {
	handle vk.Sampler
	device *Device
}

func NewSampler(device *Device, options SamplerOptions) (*Sampler, error) {
	filter := vk.FilterLinear
	if options.Filter == SamplerFilterNearest {
		filter = vk.FilterNearest
	}
	address := vk.SamplerAddressModeRepeat
	if options.Address == SamplerAddressClamp {
		address = vk.SamplerAddressModeClampToBorder
	}
	mipmapMode := vk.SamplerMipmapModeLinear
	maxLod := float32(vk.LodClampNone)
	if options.Mipmaps == SamplerMipmapsDisabled {
		mipmapMode = vk.SamplerMipmapModeNearest
		maxLod = 0
	}

	createInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               filter,
		MinFilter:               filter,
		AddressModeU:            address,
		AddressModeV:            address,
		AddressModeW:            address,
		AnisotropyEnable:        ConditionalOperator[vk.Bool32](options.Anisotropy > 0, vk.True, vk.False),
		MaxAnisotropy:           options.Anisotropy,
		BorderColor:             vk.BorderColorFloatOpaqueWhite,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              mipmapMode,
		MipLodBias:              0,
		MinLod:                  0,
		MaxLod:                  maxLod,
	}

	var handle vk.Sampler
	if res := vk.CreateSampler(device.Logical(), &createInfo, nil, &handle); res != vk.Success {
		err := fmt.Errorf("failed to create sampler: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return nil, err
	}

	return &Sampler{handle: handle, device: device}, nil
}

func (s *Sampler) Handle() vk.Sampler {
	return s.handle
}

func (s *Sampler) Destroy() {
	vk.DestroySampler(s.device.Logical(), s.handle, nil)
	s.handle = vk.NullSampler
}
