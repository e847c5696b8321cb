package resources

import (
	vk "github.com/goki/vulkan"

	"github.com/vireo3d/vireo/engine/renderer/uniform"
	"github.com/vireo3d/vireo/engine/renderer/vulkan"
)

// Texture is an uploaded RGBA image registered in the image uniform. The
// slot index it occupies is what draw orders carry as their albedo index.
type Texture struct {
	image *vulkan.Image
	slot  int32
	name  string
}

// NewTexture uploads the pixel data and claims an image slot. Pixels are
// tightly packed RGBA8; decoding happens upstream.
func NewTexture(device *vulkan.Device, images *uniform.ImageUniform, name string, pixels []uint8, width, height uint32) (*Texture, error) {
	image, err := vulkan.NewTextureImage(device, pixels, width, height)
	if err != nil {
		return nil, err
	}
	slot, err := images.Add(image.View())
	if err != nil {
		image.Destroy()
		return nil, err
	}
	return &Texture{image: image, slot: slot, name: name}, nil
}

// Slot is the image uniform slot this texture occupies.
func (t *Texture) Slot() int32 {
	return t.slot
}

// View exposes the sampled image view, for bindings outside the slot array
// such as the skybox.
func (t *Texture) View() vk.ImageView {
	if t.image == nil {
		return vk.NullImageView
	}
	return t.image.View()
}

func (t *Texture) Name() string {
	return t.name
}

func (t *Texture) Destroy() {
	if t.image != nil {
		t.image.Destroy()
		t.image = nil
	}
}
