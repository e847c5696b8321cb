package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/vireo3d/vireo/engine/core"
)

// MaxCascades is the size of the shadow-map binding array. Configurations may
// use fewer cascades; unused entries repeat the last view.
const MaxCascades = 4

// SamplerCombinationCount is the filter x address x mipmap cross product.
const SamplerCombinationCount = 8

// Push constants get the minimum size the spec guarantees everywhere.
const pushConstantsSize = 128

// ShaderLayout owns the four fixed descriptor set layouts, the descriptor
// pool they allocate from, and the single pipeline layout shared by every
// shader. Set slot assignments never change after construction.
type ShaderLayout struct {
	device *Device

	worldLayout     vk.DescriptorSetLayout
	materialLayout  vk.DescriptorSetLayout
	imageLayout     vk.DescriptorSetLayout
	shadowMapLayout vk.DescriptorSetLayout

	pool           vk.DescriptorPool
	pipelineLayout vk.PipelineLayout

	imageSlotCapacity int
}

type ShaderLayoutOptions struct {
	// Capacity of the image descriptor array in set 2.
	ImageSlotCapacity int
}

func NewShaderLayout(device *Device, options ShaderLayoutOptions) (*ShaderLayout, error) {
	if options.ImageSlotCapacity < 1 {
		options.ImageSlotCapacity = 100
	}

	l := &ShaderLayout{
		device:            device,
		imageSlotCapacity: options.ImageSlotCapacity,
	}

	stages := vk.ShaderStageFlags(vk.ShaderStageVertexBit) | vk.ShaderStageFlags(vk.ShaderStageFragmentBit)

	var err error
	l.worldLayout, err = l.createSetLayout([]vk.DescriptorSetLayoutBinding{
		{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      stages,
		},
	})
	if err != nil {
		return nil, err
	}

	l.materialLayout, err = l.createSetLayout([]vk.DescriptorSetLayoutBinding{
		{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      stages,
		},
	})
	if err != nil {
		return nil, err
	}

	l.imageLayout, err = l.createSetLayout([]vk.DescriptorSetLayoutBinding{
		{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeSampledImage,
			DescriptorCount: uint32(options.ImageSlotCapacity),
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
		{
			Binding:         1,
			DescriptorType:  vk.DescriptorTypeSampler,
			DescriptorCount: SamplerCombinationCount,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
		{
			Binding:         2,
			DescriptorType:  vk.DescriptorTypeSampledImage,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	})
	if err != nil {
		return nil, err
	}

	l.shadowMapLayout, err = l.createSetLayout([]vk.DescriptorSetLayoutBinding{
		{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeSampledImage,
			DescriptorCount: MaxCascades,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	})
	if err != nil {
		return nil, err
	}

	poolSizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: 512},
		{Type: vk.DescriptorTypeSampledImage, DescriptorCount: uint32(options.ImageSlotCapacity) + 64},
		{Type: vk.DescriptorTypeSampler, DescriptorCount: SamplerCombinationCount * 4},
	}
	poolCreateInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       512,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}
	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(device.Logical(), &poolCreateInfo, nil, &pool); res != vk.Success {
		err := fmt.Errorf("failed to create descriptor pool: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return nil, err
	}
	l.pool = pool

	pushConstantRange := vk.PushConstantRange{
		StageFlags: stages,
		Offset:     0,
		Size:       pushConstantsSize,
	}
	setLayouts := []vk.DescriptorSetLayout{
		l.worldLayout, l.materialLayout, l.imageLayout, l.shadowMapLayout,
	}
	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(setLayouts)),
		PSetLayouts:            setLayouts,
		PushConstantRangeCount: 1,
		PPushConstantRanges:    []vk.PushConstantRange{pushConstantRange},
	}
	pipelineLayoutCreateInfo.Deref()

	var pipelineLayout vk.PipelineLayout
	if err := lockPool.SafeCall(PipelineManagement, func() error {
		if res := vk.CreatePipelineLayout(device.Logical(), &pipelineLayoutCreateInfo, nil, &pipelineLayout); res != vk.Success {
			return fmt.Errorf("vkCreatePipelineLayout failed with %s", VulkanResultString(res, true))
		}
		return nil
	}); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	l.pipelineLayout = pipelineLayout

	core.LogDebug("shader layout created with %d image slots", options.ImageSlotCapacity)
	return l, nil
}

func (l *ShaderLayout) createSetLayout(bindings []vk.DescriptorSetLayoutBinding) (vk.DescriptorSetLayout, error) {
	createInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(l.device.Logical(), &createInfo, nil, &layout); res != vk.Success {
		err := fmt.Errorf("failed to create descriptor set layout: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return vk.NullDescriptorSetLayout, err
	}
	return layout, nil
}

func (l *ShaderLayout) allocateSet(layout vk.DescriptorSetLayout) (vk.DescriptorSet, error) {
	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     l.pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}
	var set vk.DescriptorSet
	err := lockPool.SafeCall(DescriptorManagement, func() error {
		if res := vk.AllocateDescriptorSets(l.device.Logical(), &allocateInfo, &set); res != vk.Success {
			return fmt.Errorf("failed to allocate descriptor set: %s", VulkanResultString(res, false))
		}
		return nil
	})
	if err != nil {
		core.LogError(err.Error())
		return vk.NullDescriptorSet, err
	}
	return set, nil
}

func (l *ShaderLayout) writeBufferSet(set vk.DescriptorSet, buffer vk.Buffer, size vk.DeviceSize) {
	bufferInfo := vk.DescriptorBufferInfo{
		Buffer: buffer,
		Offset: 0,
		Range:  size,
	}
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      0,
		DstArrayElement: 0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
	}
	l.device.UpdateDescriptorSets([]vk.WriteDescriptorSet{write})
}

// WorldSet allocates a world descriptor set bound to the given buffer.
func (l *ShaderLayout) WorldSet(buffer vk.Buffer, size vk.DeviceSize) (vk.DescriptorSet, error) {
	set, err := l.allocateSet(l.worldLayout)
	if err != nil {
		return vk.NullDescriptorSet, err
	}
	l.writeBufferSet(set, buffer, size)
	return set, nil
}

// MaterialSet allocates a material descriptor set bound to the given buffer.
func (l *ShaderLayout) MaterialSet(buffer vk.Buffer, size vk.DeviceSize) (vk.DescriptorSet, error) {
	set, err := l.allocateSet(l.materialLayout)
	if err != nil {
		return vk.NullDescriptorSet, err
	}
	l.writeBufferSet(set, buffer, size)
	return set, nil
}

// ImageSet allocates the image descriptor set. All writes are deferred to the
// image uniform group's flush.
func (l *ShaderLayout) ImageSet() (vk.DescriptorSet, error) {
	return l.allocateSet(l.imageLayout)
}

// ShadowMapSet allocates and writes a shadow-map descriptor set from the
// cascade depth views. Unused array entries repeat the last view.
func (l *ShaderLayout) ShadowMapSet(views []vk.ImageView) (vk.DescriptorSet, error) {
	if len(views) == 0 || len(views) > MaxCascades {
		return vk.NullDescriptorSet, fmt.Errorf("shadow map set needs 1 to %d views, got %d", MaxCascades, len(views))
	}

	set, err := l.allocateSet(l.shadowMapLayout)
	if err != nil {
		return vk.NullDescriptorSet, err
	}

	imageInfos := make([]vk.DescriptorImageInfo, MaxCascades)
	for i := 0; i < MaxCascades; i++ {
		view := views[len(views)-1]
		if i < len(views) {
			view = views[i]
		}
		imageInfos[i] = vk.DescriptorImageInfo{
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			ImageView:   view,
		}
	}
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      0,
		DstArrayElement: 0,
		DescriptorType:  vk.DescriptorTypeSampledImage,
		DescriptorCount: MaxCascades,
		PImageInfo:      imageInfos,
	}
	l.device.UpdateDescriptorSets([]vk.WriteDescriptorSet{write})

	return set, nil
}

func (l *ShaderLayout) PipelineLayout() vk.PipelineLayout {
	return l.pipelineLayout
}

// ImageSlotCapacity is the size of the image descriptor array in set 2.
func (l *ShaderLayout) ImageSlotCapacity() int {
	return l.imageSlotCapacity
}

func (l *ShaderLayout) Destroy() {
	dev := l.device.Logical()
	_ = lockPool.SafeCall(PipelineManagement, func() error {
		vk.DestroyPipelineLayout(dev, l.pipelineLayout, nil)
		return nil
	})
	vk.DestroyDescriptorPool(dev, l.pool, nil)
	vk.DestroyDescriptorSetLayout(dev, l.worldLayout, nil)
	vk.DestroyDescriptorSetLayout(dev, l.materialLayout, nil)
	vk.DestroyDescriptorSetLayout(dev, l.imageLayout, nil)
	vk.DestroyDescriptorSetLayout(dev, l.shadowMapLayout, nil)
}
