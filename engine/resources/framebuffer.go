package resources

import (
	"github.com/google/uuid"

	"github.com/vireo3d/vireo/engine/renderer/uniform"
	"github.com/vireo3d/vireo/engine/renderer/vulkan"
)

// Framebuffer is a render target with its own world uniform, so offscreen
// passes carry their own camera data without touching the window target's
// set. Targets with a sampled attachment claim an image slot, which lets a
// later pass draw the result like any other texture.
type Framebuffer struct {
	framebuffer *vulkan.Framebuffer
	world       *uniform.WorldUniform
	slot        int32
	name        string
}

type FramebufferOptions struct {
	Attachments []vulkan.AttachmentType
	Width       uint32
	Height      uint32
	// Registers the stored view in the image uniform when set.
	Sampled bool
}

func NewFramebuffer(device *vulkan.Device, layout *vulkan.ShaderLayout, images *uniform.ImageUniform, options FramebufferOptions) (*Framebuffer, error) {
	fb, err := vulkan.NewFramebuffer(device, options.Attachments, options.Width, options.Height)
	if err != nil {
		return nil, err
	}
	world, err := uniform.NewWorldUniform(device, layout)
	if err != nil {
		fb.Destroy()
		return nil, err
	}

	slot := int32(-1)
	if options.Sampled {
		slot, err = images.Add(fb.StoredView())
		if err != nil {
			world.Destroy()
			fb.Destroy()
			return nil, err
		}
	}

	return &Framebuffer{
		framebuffer: fb,
		world:       world,
		slot:        slot,
		name:        "framebuffer-" + uuid.NewString(),
	}, nil
}

func (f *Framebuffer) Handle() *vulkan.Framebuffer {
	return f.framebuffer
}

func (f *Framebuffer) World() *uniform.WorldUniform {
	return f.world
}

// Slot is the image uniform slot of the stored attachment, or -1 when the
// target is not sampled.
func (f *Framebuffer) Slot() int32 {
	return f.slot
}

func (f *Framebuffer) Name() string {
	return f.name
}

func (f *Framebuffer) Width() uint32 {
	return f.framebuffer.Width()
}

func (f *Framebuffer) Height() uint32 {
	return f.framebuffer.Height()
}

// ReleaseSlot hands the sampled slot back to the image uniform. Called by
// the owner before Destroy when the target was sampled.
func (f *Framebuffer) ReleaseSlot(images *uniform.ImageUniform) {
	if f.slot >= 0 {
		images.Remove(f.slot)
		f.slot = -1
	}
}

func (f *Framebuffer) Destroy() {
	f.world.Destroy()
	f.framebuffer.Destroy()
}
