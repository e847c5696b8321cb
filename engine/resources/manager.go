package resources

import (
	"github.com/vireo3d/vireo/engine/core"
)

// ImageSlots is the slice of the image uniform the manager needs when
// collecting: handing freed texture slots back.
type ImageSlots interface {
	Remove(index int32)
}

// Manager is the resource table. Textures, shaders and fonts are
// reference-counted and reclaimed by CleanUnused; meshes, materials and
// framebuffers are indexed monotonically and live until removed or the
// manager is destroyed. The asymmetry is deliberate: the indexed kinds are
// cheap to keep and commonly shared as builtins, so their lifetime stays
// with the caller.
type Manager struct {
	textures []Ref[*Texture]
	shaders  []Ref[*Shader]
	fonts    []Ref[*Font]

	meshes       map[Index]*Mesh
	materials    map[Index]*Material
	framebuffers map[Index]*Framebuffer

	nextIndex Index
}

func NewManager() *Manager {
	return &Manager{
		meshes:       make(map[Index]*Mesh),
		materials:    make(map[Index]*Material),
		framebuffers: make(map[Index]*Framebuffer),
	}
}

// AddTexture stores the texture and returns a counted handle to it.
func (m *Manager) AddTexture(t *Texture) Ref[*Texture] {
	ref := newRef(t)
	m.textures = append(m.textures, ref)
	return ref.Clone()
}

func (m *Manager) AddShader(s *Shader) Ref[*Shader] {
	ref := newRef(s)
	m.shaders = append(m.shaders, ref)
	return ref.Clone()
}

func (m *Manager) AddFont(f *Font) Ref[*Font] {
	ref := newRef(f)
	m.fonts = append(m.fonts, ref)
	return ref.Clone()
}

func (m *Manager) AddMesh(mesh *Mesh) Index {
	m.nextIndex++
	m.meshes[m.nextIndex] = mesh
	return m.nextIndex
}

func (m *Manager) AddMaterial(material *Material) Index {
	m.nextIndex++
	m.materials[m.nextIndex] = material
	return m.nextIndex
}

func (m *Manager) AddFramebuffer(fb *Framebuffer) Index {
	m.nextIndex++
	m.framebuffers[m.nextIndex] = fb
	return m.nextIndex
}

// WithMesh resolves the index for the duration of the closure. It reports
// whether the index resolved; a false return means the resource is gone and
// the caller should skip, not abort.
func (m *Manager) WithMesh(index Index, fn func(*Mesh)) bool {
	mesh, ok := m.meshes[index]
	if ok {
		fn(mesh)
	}
	return ok
}

func (m *Manager) WithMaterial(index Index, fn func(*Material)) bool {
	material, ok := m.materials[index]
	if ok {
		fn(material)
	}
	return ok
}

func (m *Manager) WithFramebuffer(index Index, fn func(*Framebuffer)) bool {
	fb, ok := m.framebuffers[index]
	if ok {
		fn(fb)
	}
	return ok
}

// RemoveMesh drops an indexed mesh explicitly. The index is never reused.
func (m *Manager) RemoveMesh(index Index) error {
	mesh, ok := m.meshes[index]
	if !ok {
		return core.ErrInvalidHandle
	}
	mesh.Destroy()
	delete(m.meshes, index)
	return nil
}

func (m *Manager) RemoveMaterial(index Index) error {
	material, ok := m.materials[index]
	if !ok {
		return core.ErrInvalidHandle
	}
	material.Destroy()
	delete(m.materials, index)
	return nil
}

func (m *Manager) RemoveFramebuffer(index Index) error {
	fb, ok := m.framebuffers[index]
	if !ok {
		return core.ErrInvalidHandle
	}
	fb.Destroy()
	delete(m.framebuffers, index)
	return nil
}

// CleanUnused reclaims every texture, shader and font whose only remaining
// handle is the manager's own, compacting the slot vectors. Freed texture
// and font atlas slots go back to the image uniform so the next Add can
// reuse them. The caller must drain in-flight frames first.
func (m *Manager) CleanUnused(slots ImageSlots) {
	kept := m.textures[:0]
	for _, ref := range m.textures {
		if ref.count() > 1 {
			kept = append(kept, ref)
			continue
		}
		ref.With(func(t **Texture) {
			slots.Remove((*t).Slot())
			(*t).Destroy()
		})
	}
	m.textures = kept

	keptShaders := m.shaders[:0]
	for _, ref := range m.shaders {
		if ref.count() > 1 {
			keptShaders = append(keptShaders, ref)
			continue
		}
		ref.With(func(s **Shader) { (*s).Destroy() })
	}
	m.shaders = keptShaders

	keptFonts := m.fonts[:0]
	for _, ref := range m.fonts {
		if ref.count() > 1 {
			keptFonts = append(keptFonts, ref)
			continue
		}
		ref.With(func(f **Font) {
			slots.Remove((*f).TextureSlot())
			(*f).Destroy()
		})
	}
	m.fonts = keptFonts
}

// Destroy releases everything regardless of reference counts. Only valid
// after the device is idle.
func (m *Manager) Destroy() {
	for _, ref := range m.textures {
		ref.With(func(t **Texture) { (*t).Destroy() })
	}
	m.textures = nil
	for _, ref := range m.shaders {
		ref.With(func(s **Shader) { (*s).Destroy() })
	}
	m.shaders = nil
	for _, ref := range m.fonts {
		ref.With(func(f **Font) { (*f).Destroy() })
	}
	m.fonts = nil

	for index, mesh := range m.meshes {
		mesh.Destroy()
		delete(m.meshes, index)
	}
	for index, material := range m.materials {
		material.Destroy()
		delete(m.materials, index)
	}
	for index, fb := range m.framebuffers {
		fb.Destroy()
		delete(m.framebuffers, index)
	}
}
