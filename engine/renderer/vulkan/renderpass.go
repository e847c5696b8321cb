package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/vireo3d/vireo/engine/core"
)

// RenderPass describes one offscreen pass. Every attachment ends in shader
// read-only layout so the pass output can be sampled by a later pass.
type RenderPass struct {
	Handle   vk.RenderPass
	HasColor bool
	HasDepth bool
	device   *Device
}

func NewRenderPass(device *Device, attachmentTypes []AttachmentType) (*RenderPass, error) {
	rp := &RenderPass{device: device}

	attachments := make([]vk.AttachmentDescription, 0, len(attachmentTypes))
	var colorRefs []vk.AttachmentReference
	var depthRef *vk.AttachmentReference

	for i, t := range attachmentTypes {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         t.format(),
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutShaderReadOnlyOptimal,
		})

		ref := vk.AttachmentReference{Attachment: uint32(i)}
		switch t {
		case AttachmentDepth:
			ref.Layout = vk.ImageLayoutDepthStencilAttachmentOptimal
			r := ref
			depthRef = &r
			rp.HasDepth = true
		default:
			ref.Layout = vk.ImageLayoutColorAttachmentOptimal
			colorRefs = append(colorRefs, ref)
			rp.HasColor = true
		}
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    uint32(len(colorRefs)),
		PColorAttachments:       colorRefs,
		PDepthStencilAttachment: depthRef,
	}

	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		SrcAccessMask: vk.AccessFlags(vk.AccessShaderReadBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit) | vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit) | vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit),
	}

	createInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var handle vk.RenderPass
	if res := vk.CreateRenderPass(device.Logical(), &createInfo, nil, &handle); res != vk.Success {
		err := fmt.Errorf("failed to create render pass: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return nil, err
	}
	rp.Handle = handle

	return rp, nil
}

func (rp *RenderPass) Destroy() {
	vk.DestroyRenderPass(rp.device.Logical(), rp.Handle, nil)
	rp.Handle = vk.NullRenderPass
}
