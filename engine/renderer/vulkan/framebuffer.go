package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/vireo3d/vireo/engine/core"
)

// Framebuffer is one offscreen render target: a render pass plus its
// attachment images. The stored view is the attachment meant to be sampled by
// later passes (depth for shadow maps, color otherwise).
type Framebuffer struct {
	handle      vk.Framebuffer
	renderPass  *RenderPass
	attachments []*Image
	storedView  vk.ImageView
	width       uint32
	height      uint32
	device      *Device
}

func NewFramebuffer(device *Device, attachmentTypes []AttachmentType, width, height uint32) (*Framebuffer, error) {
	renderPass, err := NewRenderPass(device, attachmentTypes)
	if err != nil {
		return nil, err
	}

	fb := &Framebuffer{
		renderPass: renderPass,
		width:      width,
		height:     height,
		device:     device,
	}

	views := make([]vk.ImageView, 0, len(attachmentTypes))
	for _, t := range attachmentTypes {
		img, err := NewAttachmentImage(device, t, width, height)
		if err != nil {
			fb.Destroy()
			return nil, err
		}
		fb.attachments = append(fb.attachments, img)
		views = append(views, img.View())

		// Prefer sampling the color output; depth-only targets store depth.
		if t == AttachmentColor || fb.storedView == vk.NullImageView {
			fb.storedView = img.View()
		}
	}

	createInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderPass.Handle,
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           width,
		Height:          height,
		Layers:          1,
	}
	var handle vk.Framebuffer
	if res := vk.CreateFramebuffer(device.Logical(), &createInfo, nil, &handle); res != vk.Success {
		fb.Destroy()
		err := fmt.Errorf("failed to create framebuffer: %s", VulkanResultString(res, false))
		core.LogError(err.Error())
		return nil, err
	}
	fb.handle = handle

	return fb, nil
}

func (fb *Framebuffer) clearValues(clear [4]float32) []vk.ClearValue {
	values := make([]vk.ClearValue, 0, len(fb.attachments))
	for _, img := range fb.attachments {
		var value vk.ClearValue
		if img.format == vk.FormatD32Sfloat {
			value.SetDepthStencil(1.0, 0)
		} else {
			value.SetColor([]float32{clear[0], clear[1], clear[2], clear[3]})
		}
		values = append(values, value)
	}
	return values
}

func (fb *Framebuffer) Handle() vk.Framebuffer {
	return fb.handle
}

func (fb *Framebuffer) RenderPass() *RenderPass {
	return fb.renderPass
}

// StoredView is the attachment view sampled by later passes.
func (fb *Framebuffer) StoredView() vk.ImageView {
	return fb.storedView
}

func (fb *Framebuffer) Width() uint32 {
	return fb.width
}

func (fb *Framebuffer) Height() uint32 {
	return fb.height
}

func (fb *Framebuffer) Destroy() {
	if fb.handle != vk.NullFramebuffer {
		vk.DestroyFramebuffer(fb.device.Logical(), fb.handle, nil)
		fb.handle = vk.NullFramebuffer
	}
	for _, img := range fb.attachments {
		img.Destroy()
	}
	fb.attachments = nil
	if fb.renderPass != nil {
		fb.renderPass.Destroy()
		fb.renderPass = nil
	}
}
