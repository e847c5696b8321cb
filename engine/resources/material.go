package resources

import (
	"github.com/vireo3d/vireo/engine/math"
	"github.com/vireo3d/vireo/engine/renderer/uniform"
	"github.com/vireo3d/vireo/engine/renderer/vulkan"
)

// Material pairs a material uniform with the CPU-side copy of its
// arguments. Mutations stay local until Update pushes them to the buffer,
// once per frame at most.
type Material struct {
	uniform *uniform.MaterialUniform
	data    uniform.MaterialData
	dirty   bool
}

func NewMaterial(device *vulkan.Device, layout *vulkan.ShaderLayout) (*Material, error) {
	u, err := uniform.NewMaterialUniform(device, layout)
	if err != nil {
		return nil, err
	}
	m := &Material{uniform: u, dirty: true}
	m.SetAlbedoColour(math.Vec3{X: 1, Y: 1, Z: 1})
	return m, nil
}

// SetAlbedoColour writes the albedo tint into the first argument slot.
func (m *Material) SetAlbedoColour(colour math.Vec3) {
	m.data.Args[0].X = colour.X
	m.data.Args[0].Y = colour.Y
	m.data.Args[0].Z = colour.Z
	m.data.Args[0].W = 1
	m.dirty = true
}

// SetArg writes one raw vec4 argument. Interpretation is up to the shader.
func (m *Material) SetArg(index int, value math.Vec4) {
	if index < 0 || index >= len(m.data.Args) {
		return
	}
	m.data.Args[index] = value
	m.dirty = true
}

// Update flushes pending argument changes to the uniform buffer.
func (m *Material) Update() error {
	if !m.dirty {
		return nil
	}
	if err := m.uniform.Update(m.data); err != nil {
		return err
	}
	m.dirty = false
	return nil
}

func (m *Material) Descriptor() vulkan.Descriptor {
	return m.uniform.Descriptor()
}

// Uniform exposes the underlying uniform for identity comparisons.
func (m *Material) Uniform() *uniform.MaterialUniform {
	return m.uniform
}

func (m *Material) Destroy() {
	if m.uniform != nil {
		m.uniform.Destroy()
		m.uniform = nil
	}
}
