package resources

import "testing"

// slotRecorder stands in for the image uniform during collection tests.
type slotRecorder struct {
	removed []int32
}

func (r *slotRecorder) Remove(index int32) {
	r.removed = append(r.removed, index)
}

func TestRefClone(t *testing.T) {
	ref := newRef(&Texture{name: "a"})
	if got := ref.count(); got != 1 {
		t.Fatalf("fresh ref count = %d, want 1", got)
	}

	clone := ref.Clone()
	if got := ref.count(); got != 2 {
		t.Errorf("count after clone = %d, want 2", got)
	}
	if !ref.Equal(clone) {
		t.Error("clone does not compare equal to its source")
	}

	clone.Release()
	if got := ref.count(); got != 1 {
		t.Errorf("count after release = %d, want 1", got)
	}
}

func TestRefValid(t *testing.T) {
	var zero Ref[*Texture]
	if zero.Valid() {
		t.Error("zero ref reports valid")
	}
	if !newRef(&Texture{}).Valid() {
		t.Error("fresh ref reports invalid")
	}
}

func TestManagerCleanUnusedReleasesSlots(t *testing.T) {
	m := NewManager()

	kept := m.AddTexture(&Texture{slot: 3, name: "kept"})
	dropped := m.AddTexture(&Texture{slot: 7, name: "dropped"})
	dropped.Release()

	slots := &slotRecorder{}
	m.CleanUnused(slots)

	if len(slots.removed) != 1 || slots.removed[0] != 7 {
		t.Errorf("released slots = %v, want [7]", slots.removed)
	}
	if len(m.textures) != 1 {
		t.Fatalf("surviving textures = %d, want 1", len(m.textures))
	}
	if !m.textures[0].Equal(kept) {
		t.Error("wrong texture survived collection")
	}

	// A second pass with no releases collects nothing further.
	slots.removed = nil
	m.CleanUnused(slots)
	if len(slots.removed) != 0 {
		t.Errorf("second pass released %v, want none", slots.removed)
	}
}

func TestManagerCleanUnusedShaders(t *testing.T) {
	m := NewManager()

	kept := m.AddShader(NewShaderResource(nil, "phong"))
	m.AddShader(NewShaderResource(nil, "stale")).Release()

	m.CleanUnused(&slotRecorder{})

	if len(m.shaders) != 1 {
		t.Fatalf("surviving shaders = %d, want 1", len(m.shaders))
	}
	var name string
	kept.With(func(s **Shader) { name = (*s).Name() })
	if name != "phong" {
		t.Errorf("surviving shader = %q, want %q", name, "phong")
	}
}

func TestManagerIndexedLifetime(t *testing.T) {
	m := NewManager()

	first := m.AddMesh(&Mesh{})
	second := m.AddMaterial(&Material{})
	if first == NilIndex || second == NilIndex {
		t.Fatal("Add returned the nil index")
	}
	if first == second {
		t.Fatalf("mesh and material share index %d", first)
	}

	// Indexed resources survive collection.
	m.CleanUnused(&slotRecorder{})
	if !m.WithMesh(first, func(*Mesh) {}) {
		t.Error("mesh collected by CleanUnused")
	}

	if err := m.RemoveMesh(first); err != nil {
		t.Fatalf("RemoveMesh: %v", err)
	}
	if m.WithMesh(first, func(*Mesh) {}) {
		t.Error("mesh resolves after removal")
	}
	if err := m.RemoveMesh(first); err == nil {
		t.Error("second RemoveMesh should fail")
	}

	// Removed indices are never handed out again.
	third := m.AddMesh(&Mesh{})
	if third == first || third == second {
		t.Errorf("index %d reused", third)
	}
}

func TestManagerWithMissingIndex(t *testing.T) {
	m := NewManager()

	called := false
	if m.WithMaterial(42, func(*Material) { called = true }) {
		t.Error("WithMaterial resolved a never-added index")
	}
	if called {
		t.Error("closure ran for a missing index")
	}
	if m.WithFramebuffer(NilIndex, func(*Framebuffer) {}) {
		t.Error("WithFramebuffer resolved the nil index")
	}
}
