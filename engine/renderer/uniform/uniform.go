package uniform

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/vireo3d/vireo/engine/core"
	"github.com/vireo3d/vireo/engine/renderer/vulkan"
)

// WorldUniform wraps a single-record world buffer and its descriptor. The
// descriptor binding never changes after construction, only the contents.
type WorldUniform struct {
	buffer     *vulkan.DynamicBuffer[WorldData]
	descriptor vulkan.Descriptor
}

func NewWorldUniform(device *vulkan.Device, layout *vulkan.ShaderLayout) (*WorldUniform, error) {
	buffer, err := vulkan.NewDynamicBuffer[WorldData](device, vulkan.BufferUsageUniform, 1)
	if err != nil {
		return nil, err
	}
	set, err := layout.WorldSet(buffer.Handle(), buffer.SizeBytes())
	if err != nil {
		buffer.Destroy()
		return nil, err
	}
	return &WorldUniform{
		buffer:     buffer,
		descriptor: vulkan.Descriptor{Set: vulkan.DescriptorSetWorld, Handle: set},
	}, nil
}

// Update overwrites the world record. Called once per draw pass, before any
// draw that consumes it.
func (u *WorldUniform) Update(data WorldData) error {
	return u.buffer.Write([]WorldData{data})
}

func (u *WorldUniform) Descriptor() vulkan.Descriptor {
	return u.descriptor
}

func (u *WorldUniform) Destroy() {
	u.buffer.Destroy()
}

// MaterialUniform wraps a single-record material buffer and its descriptor.
type MaterialUniform struct {
	buffer     *vulkan.DynamicBuffer[MaterialData]
	descriptor vulkan.Descriptor
}

func NewMaterialUniform(device *vulkan.Device, layout *vulkan.ShaderLayout) (*MaterialUniform, error) {
	buffer, err := vulkan.NewDynamicBuffer[MaterialData](device, vulkan.BufferUsageUniform, 1)
	if err != nil {
		return nil, err
	}
	set, err := layout.MaterialSet(buffer.Handle(), buffer.SizeBytes())
	if err != nil {
		buffer.Destroy()
		return nil, err
	}
	return &MaterialUniform{
		buffer:     buffer,
		descriptor: vulkan.Descriptor{Set: vulkan.DescriptorSetMaterial, Handle: set},
	}, nil
}

func (u *MaterialUniform) Update(data MaterialData) error {
	return u.buffer.Write([]MaterialData{data})
}

func (u *MaterialUniform) Descriptor() vulkan.Descriptor {
	return u.descriptor
}

// Equal compares by underlying buffer identity, used for material diffing.
func (u *MaterialUniform) Equal(other *MaterialUniform) bool {
	if u == nil || other == nil {
		return u == other
	}
	return u.buffer.Equal(other.buffer)
}

func (u *MaterialUniform) Destroy() {
	u.buffer.Destroy()
}

// ImageUniform owns the shared image descriptor set: a fixed-capacity array
// of texture views, the precomputed sampler combinations and the skybox
// binding. Slot mutations are batched behind a dirty flag and flushed by
// UpdateIfNeeded at most once per frame, before the first draw that reads
// the set.
type ImageUniform struct {
	device     *vulkan.Device
	descriptor vulkan.Descriptor
	capacity   int

	views        []vk.ImageView
	samplers     [vulkan.SamplerCombinationCount]*vulkan.Sampler
	skybox       vk.ImageView
	shouldUpdate bool
}

func NewImageUniform(device *vulkan.Device, layout *vulkan.ShaderLayout, anisotropy float32) (*ImageUniform, error) {
	set, err := layout.ImageSet()
	if err != nil {
		return nil, err
	}

	u := &ImageUniform{
		device:     device,
		descriptor: vulkan.Descriptor{Set: vulkan.DescriptorSetImage, Handle: set},
		capacity:   layout.ImageSlotCapacity(),
	}
	for i := range u.samplers {
		sampler, err := vulkan.NewSampler(device, SamplerIndex(i).Options(anisotropy))
		if err != nil {
			u.Destroy()
			return nil, err
		}
		u.samplers[i] = sampler
	}
	return u, nil
}

// Add assigns the view to the lowest free slot, reusing tombstones left by
// Remove before growing the array. The returned index is baked into draw
// push constants, so occupied slots never move.
func (u *ImageUniform) Add(view vk.ImageView) (int32, error) {
	for i, v := range u.views {
		if v == vk.NullImageView {
			u.views[i] = view
			u.shouldUpdate = true
			return int32(i), nil
		}
	}
	if len(u.views) >= u.capacity {
		err := fmt.Errorf("image uniform is full: all %d slots in use", u.capacity)
		core.LogError(err.Error())
		return 0, err
	}
	u.views = append(u.views, view)
	u.shouldUpdate = true
	return int32(len(u.views) - 1), nil
}

// Remove tombstones the slot without compacting, keeping every other slot
// index stable.
func (u *ImageUniform) Remove(index int32) {
	if index < 0 || int(index) >= len(u.views) {
		core.LogWarn("image uniform remove ignored for out-of-range slot %d", index)
		return
	}
	u.views[index] = vk.NullImageView
	u.shouldUpdate = true
}

func (u *ImageUniform) SetSkybox(view vk.ImageView) {
	u.skybox = view
	u.shouldUpdate = true
}

// Count reports the number of occupied slots.
func (u *ImageUniform) Count() int {
	n := 0
	for _, v := range u.views {
		if v != vk.NullImageView {
			n++
		}
	}
	return n
}

// UpdateIfNeeded flushes pending slot mutations as one batched descriptor
// write. Empty slots repeat slot 0 so shaders never sample an unbound entry;
// slot 0 itself must therefore hold a valid view whenever a flush is due.
func (u *ImageUniform) UpdateIfNeeded() error {
	if !u.shouldUpdate {
		return nil
	}
	if len(u.views) == 0 || u.views[0] == vk.NullImageView {
		core.LogError("image uniform flush with empty default slot")
		return core.ErrEmptyDefaultImageSlot
	}

	imageInfos := make([]vk.DescriptorImageInfo, u.capacity)
	for i := range imageInfos {
		view := u.views[0]
		if i < len(u.views) && u.views[i] != vk.NullImageView {
			view = u.views[i]
		}
		imageInfos[i] = vk.DescriptorImageInfo{
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			ImageView:   view,
		}
	}

	samplerInfos := make([]vk.DescriptorImageInfo, len(u.samplers))
	for i, sampler := range u.samplers {
		samplerInfos[i] = vk.DescriptorImageInfo{Sampler: sampler.Handle()}
	}

	writes := []vk.WriteDescriptorSet{
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          u.descriptor.Handle,
			DstBinding:      0,
			DstArrayElement: 0,
			DescriptorType:  vk.DescriptorTypeSampledImage,
			DescriptorCount: uint32(len(imageInfos)),
			PImageInfo:      imageInfos,
		},
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          u.descriptor.Handle,
			DstBinding:      1,
			DstArrayElement: 0,
			DescriptorType:  vk.DescriptorTypeSampler,
			DescriptorCount: uint32(len(samplerInfos)),
			PImageInfo:      samplerInfos,
		},
	}
	if u.skybox != vk.NullImageView {
		writes = append(writes, vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          u.descriptor.Handle,
			DstBinding:      2,
			DstArrayElement: 0,
			DescriptorType:  vk.DescriptorTypeSampledImage,
			DescriptorCount: 1,
			PImageInfo: []vk.DescriptorImageInfo{{
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
				ImageView:   u.skybox,
			}},
		})
	}

	u.device.UpdateDescriptorSets(writes)
	u.shouldUpdate = false
	return nil
}

func (u *ImageUniform) Descriptor() vulkan.Descriptor {
	return u.descriptor
}

func (u *ImageUniform) Destroy() {
	for i, sampler := range u.samplers {
		if sampler != nil {
			sampler.Destroy()
			u.samplers[i] = nil
		}
	}
}

// ShadowMapUniform binds the cascade depth views once at construction and is
// immutable thereafter. Cascade contents change by re-rendering into the
// underlying framebuffers, not by rewriting this set.
type ShadowMapUniform struct {
	descriptor vulkan.Descriptor
}

func NewShadowMapUniform(layout *vulkan.ShaderLayout, views []vk.ImageView) (*ShadowMapUniform, error) {
	set, err := layout.ShadowMapSet(views)
	if err != nil {
		return nil, err
	}
	return &ShadowMapUniform{
		descriptor: vulkan.Descriptor{Set: vulkan.DescriptorSetShadowMap, Handle: set},
	}, nil
}

func (u *ShadowMapUniform) Descriptor() vulkan.Descriptor {
	return u.descriptor
}
