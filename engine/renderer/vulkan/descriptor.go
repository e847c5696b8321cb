package vulkan

import vk "github.com/goki/vulkan"

// Set slot assignments are fixed for every pipeline so any shader can rely on
// where its inputs live. They never change after construction.
const (
	DescriptorSetWorld     uint32 = 0
	DescriptorSetMaterial  uint32 = 1
	DescriptorSetImage     uint32 = 2
	DescriptorSetShadowMap uint32 = 3
)

// Descriptor is the binding identity of one uniform group: the set slot it
// occupies plus the GPU descriptor set bound there.
type Descriptor struct {
	Set    uint32
	Handle vk.DescriptorSet
}
