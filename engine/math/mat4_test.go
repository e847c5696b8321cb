package math

import "testing"

const tolerance = 1e-5

func TestMat4IdentityMul(t *testing.T) {
	id := NewMat4Identity()
	m := NewMat4Translation(NewVec3(1, 2, 3))

	if got := id.Mul(m); !got.Compare(m, tolerance) {
		t.Errorf("identity * m != m: %v", got)
	}
	if got := m.Mul(id); !got.Compare(m, tolerance) {
		t.Errorf("m * identity != m: %v", got)
	}
}

func TestMat4TranslationMulVec4(t *testing.T) {
	m := NewMat4Translation(NewVec3(1, 2, 3))

	got := m.MulVec4(NewVec4(5, 5, 5, 1))
	want := NewVec4(6, 7, 8, 1)
	if !got.Compare(want, tolerance) {
		t.Errorf("translated point = %v, want %v", got, want)
	}

	// Directions (w = 0) must be unaffected by translation.
	got = m.MulVec4(NewVec4(5, 5, 5, 0))
	want = NewVec4(5, 5, 5, 0)
	if !got.Compare(want, tolerance) {
		t.Errorf("translated direction = %v, want %v", got, want)
	}
}

func TestMat4MulOrder(t *testing.T) {
	// Mul applies the right operand first: T * S scales, then translates.
	ts := NewMat4Translation(NewVec3(10, 0, 0)).Mul(NewMat4Scale(NewVec3(2, 2, 2)))

	got := ts.MulVec4(NewVec4(1, 1, 1, 1))
	want := NewVec4(12, 2, 2, 1)
	if !got.Compare(want, tolerance) {
		t.Errorf("(T*S) * v = %v, want %v", got, want)
	}
}

func TestMat4OrthographicCenterDepthRange(t *testing.T) {
	m := NewMat4OrthographicCenter(20, 20, 0, 50)

	tests := []struct {
		name  string
		point Vec4
		want  Vec4
	}{
		{"near plane center", NewVec4(0, 0, 0, 1), NewVec4(0, 0, 0, 1)},
		{"far plane center", NewVec4(0, 0, 50, 1), NewVec4(0, 0, 1, 1)},
		{"half depth right edge", NewVec4(10, 0, 25, 1), NewVec4(1, 0, 0.5, 1)},
		{"left bottom", NewVec4(-10, -10, 0, 1), NewVec4(-1, -1, 0, 1)},
	}
	for _, tc := range tests {
		if got := m.MulVec4(tc.point); !got.Compare(tc.want, tolerance) {
			t.Errorf("%s: projected to %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMat4PerspectiveDepthRange(t *testing.T) {
	near, far := float32(0.1), float32(100.0)
	m := NewMat4Perspective(DegToRad(90), 1.0, near, far)

	nearPoint := m.MulVec4(NewVec4(0, 0, near, 1))
	if z := nearPoint.Z / nearPoint.W; Abs(z) > tolerance {
		t.Errorf("near plane depth = %f, want 0", z)
	}
	farPoint := m.MulVec4(NewVec4(0, 0, far, 1))
	if z := farPoint.Z / farPoint.W; Abs(z-1) > tolerance {
		t.Errorf("far plane depth = %f, want 1", z)
	}
}

func TestMat4LookRotation(t *testing.T) {
	// A camera looking down -Z sees +Z world points behind it.
	m := NewMat4LookRotation(NewVec3(0, 0, -1), NewVec3Up())

	got := m.MulVec4(NewVec4(0, 0, -5, 1))
	if Abs(got.Z-5) > tolerance {
		t.Errorf("forward point view depth = %f, want 5", got.Z)
	}

	// Rotation only, so the origin stays put.
	origin := m.MulVec4(NewVec4(0, 0, 0, 1))
	if !origin.Compare(NewVec4(0, 0, 0, 1), tolerance) {
		t.Errorf("origin moved to %v", origin)
	}
}

func TestTransformMatrix(t *testing.T) {
	tr := TransformFromPositionRotationScale(
		NewVec3(1, 2, 3),
		NewQuatFromAxisAngle(NewVec3Up(), Pi/2),
		NewVec3(2, 2, 2),
	)

	// Local +X scaled to length 2, rotated 90 degrees around Y onto -Z,
	// then translated.
	got := tr.Matrix().MulVec4(NewVec4(1, 0, 0, 1))
	want := NewVec4(1, 2, 1, 1)
	if !got.Compare(want, 1e-4) {
		t.Errorf("transformed point = %v, want %v", got, want)
	}
}

func TestTransformMatrixForCamera(t *testing.T) {
	tr := TransformFromPosition(NewVec3(0, 0, -10))

	// A world point in front of the camera lands on the view +Z axis at the
	// camera distance.
	got := tr.MatrixForCamera().MulVec4(NewVec4(0, 0, 0, 1))
	want := NewVec4(0, 0, 10, 1)
	if !got.Compare(want, 1e-4) {
		t.Errorf("view-space point = %v, want %v", got, want)
	}
}

func TestQuatRotateMatchesMat4(t *testing.T) {
	axes := []Vec3{NewVec3Up(), NewVec3(1, 0, 0), NewVec3(1, 1, 0), NewVec3(0.3, -0.7, 0.2)}
	v := NewVec3(1, 2, 3)

	for _, axis := range axes {
		q := NewQuatFromAxisAngle(axis, 1.1)
		direct := q.Rotate(v)
		viaMatrix := q.Mat4().MulVec4(v.ToVec4(1)).ToVec3()
		if !direct.Compare(viaMatrix, 1e-4) {
			t.Errorf("axis %v: Rotate = %v, Mat4 = %v", axis, direct, viaMatrix)
		}
	}
}
