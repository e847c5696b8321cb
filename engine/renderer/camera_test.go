package renderer

import (
	"testing"

	"github.com/vireo3d/vireo/engine/math"
)

func TestCameraMatrixDepthRange(t *testing.T) {
	camera := NewPerspectiveCamera(1280, 720, 90)
	m := camera.Matrix()

	// A point at the far distance straight ahead projects onto depth 1.
	clip := m.MulVec4(math.NewVec4(0, 0, camera.Depth, 1))
	if z := clip.Z / clip.W; math.Abs(z-1) > 1e-4 {
		t.Errorf("far point depth = %f, want 1", z)
	}
}

func TestBoundingSphereContainsFrustumSlice(t *testing.T) {
	camera := NewOrthographicCamera(10, 10)
	sphere := camera.BoundingSphereForSplit(0, 0.5)

	near := float32(0)
	far := camera.Depth * 0.5
	for _, d := range []float32{near, far} {
		for _, sx := range []float32{-1, 1} {
			for _, sy := range []float32{-1, 1} {
				corner := math.NewVec3(sx*5, sy*5, d)
				if dist := corner.Distance(sphere.Center); dist > sphere.Radius+1e-3 {
					t.Errorf("corner %v outside sphere: dist %f > radius %f", corner, dist, sphere.Radius)
				}
			}
		}
	}

	want := math.NewVec3(0, 0, 25)
	if !sphere.Center.Compare(want, 1e-3) {
		t.Errorf("center = %v, want %v", sphere.Center, want)
	}
}

func TestBoundingSphereStableUnderRotation(t *testing.T) {
	camera := NewPerspectiveCamera(1280, 720, 60)
	camera.Transform.Position = math.NewVec3(3, 1, -4)

	base := camera.BoundingSphereForSplit(0.2, 0.45)

	rotated := camera
	rotated.Transform.Rotation = math.NewQuatFromAxisAngle(math.NewVec3Up(), 1.3)
	turned := rotated.BoundingSphereForSplit(0.2, 0.45)

	// The slice geometry is camera-local, so rotating the camera must not
	// change the sphere radius. This is what keeps cascade projections a
	// constant size while the camera looks around.
	if math.Abs(base.Radius-turned.Radius) > 1e-3 {
		t.Errorf("radius changed under rotation: %f vs %f", base.Radius, turned.Radius)
	}

	// The center follows the camera orientation at a fixed distance.
	baseDist := base.Center.Distance(camera.Transform.Position)
	turnedDist := turned.Center.Distance(camera.Transform.Position)
	if math.Abs(baseDist-turnedDist) > 1e-3 {
		t.Errorf("center distance changed under rotation: %f vs %f", baseDist, turnedDist)
	}
}

func TestBoundingSpherePerspectiveContainsSlice(t *testing.T) {
	camera := NewPerspectiveCamera(1600, 900, 75)
	prevSplit, split := float32(0.45), float32(1.0)
	sphere := camera.BoundingSphereForSplit(prevSplit, split)

	tanHalf := math.Tan(math.DegToRad(camera.FovDegrees) / 2)
	aspect := camera.Width / camera.Height
	for _, d := range []float32{camera.Depth * prevSplit, camera.Depth * split} {
		hh := d * tanHalf
		hw := hh * aspect
		for _, sx := range []float32{-1, 1} {
			for _, sy := range []float32{-1, 1} {
				corner := math.NewVec3(sx*hw, sy*hh, d)
				if dist := corner.Distance(sphere.Center); dist > sphere.Radius+1e-2 {
					t.Errorf("corner %v outside sphere: dist %f > radius %f", corner, dist, sphere.Radius)
				}
			}
		}
	}
}
