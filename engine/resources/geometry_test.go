package resources

import (
	"testing"

	"github.com/vireo3d/vireo/engine/math"
)

func checkIndices(t *testing.T, vertices []math.Vertex3D, indices []uint32) {
	t.Helper()
	if len(indices)%3 != 0 {
		t.Errorf("index count %d is not a triangle list", len(indices))
	}
	for _, index := range indices {
		if int(index) >= len(vertices) {
			t.Fatalf("index %d out of range for %d vertices", index, len(vertices))
		}
	}
}

func TestCubeGeometry(t *testing.T) {
	vertices, indices := CubeGeometry()
	if len(vertices) != 24 {
		t.Errorf("cube vertices = %d, want 24", len(vertices))
	}
	if len(indices) != 36 {
		t.Errorf("cube indices = %d, want 36", len(indices))
	}
	checkIndices(t, vertices, indices)

	for i, v := range vertices {
		// Unit cube centered on the origin.
		if math.Abs(v.Position.X) > 0.5 || math.Abs(v.Position.Y) > 0.5 || math.Abs(v.Position.Z) > 0.5 {
			t.Errorf("vertex %d outside the unit cube: %v", i, v.Position)
		}
		if math.Abs(v.Normal.Length()-1) > 1e-5 {
			t.Errorf("vertex %d normal not unit length: %v", i, v.Normal)
		}
		// Hard normals: every face normal points away from the face plane.
		if v.Position.Dot(v.Normal) <= 0 {
			t.Errorf("vertex %d normal points inward: pos %v normal %v", i, v.Position, v.Normal)
		}
	}
}

func TestSphereGeometry(t *testing.T) {
	rings, sectors := 8, 12
	vertices, indices := SphereGeometry(rings, sectors)
	if want := (rings + 1) * (sectors + 1); len(vertices) != want {
		t.Errorf("sphere vertices = %d, want %d", len(vertices), want)
	}
	if want := rings * sectors * 6; len(indices) != want {
		t.Errorf("sphere indices = %d, want %d", len(indices), want)
	}
	checkIndices(t, vertices, indices)

	for i, v := range vertices {
		// Unit diameter: every vertex sits on the radius 0.5 shell.
		if math.Abs(v.Position.Length()-0.5) > 1e-5 {
			t.Errorf("vertex %d off the sphere shell: %v", i, v.Position)
		}
	}

	// Degenerate parameters clamp instead of failing.
	vertices, indices = SphereGeometry(0, 0)
	if len(vertices) == 0 || len(indices) == 0 {
		t.Error("clamped sphere produced no geometry")
	}
	checkIndices(t, vertices, indices)
}

func TestSurfaceAndQuadGeometry(t *testing.T) {
	vertices, indices := SurfaceGeometry()
	checkIndices(t, vertices, indices)
	if len(vertices) != 4 || len(indices) != 6 {
		t.Errorf("surface = %d vertices %d indices, want 4 and 6", len(vertices), len(indices))
	}

	vertices, indices = QuadGeometry()
	checkIndices(t, vertices, indices)
	for i, v := range vertices {
		if v.Position.X < 0 || v.Position.X > 1 || v.Position.Y < 0 || v.Position.Y > 1 {
			t.Errorf("quad vertex %d outside the unit square: %v", i, v.Position)
		}
	}
}
