package math

func NewMat4Identity() Mat4 {
	m := Mat4{}
	m.Data[0] = 1
	m.Data[5] = 1
	m.Data[10] = 1
	m.Data[15] = 1
	return m
}

// At returns element (row, col).
func (mt Mat4) At(row, col int) float32 {
	return mt.Data[col*4+row]
}

func (mt *Mat4) Set(row, col int, value float32) {
	mt.Data[col*4+row] = value
}

// Mul returns mt * other, so other is applied first when transforming vectors.
func (mt Mat4) Mul(other Mat4) Mat4 {
	out := Mat4{}
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += mt.At(row, k) * other.At(k, col)
			}
			out.Set(row, col, sum)
		}
	}
	return out
}

func (mt Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		X: mt.At(0, 0)*v.X + mt.At(0, 1)*v.Y + mt.At(0, 2)*v.Z + mt.At(0, 3)*v.W,
		Y: mt.At(1, 0)*v.X + mt.At(1, 1)*v.Y + mt.At(1, 2)*v.Z + mt.At(1, 3)*v.W,
		Z: mt.At(2, 0)*v.X + mt.At(2, 1)*v.Y + mt.At(2, 2)*v.Z + mt.At(2, 3)*v.W,
		W: mt.At(3, 0)*v.X + mt.At(3, 1)*v.Y + mt.At(3, 2)*v.Z + mt.At(3, 3)*v.W,
	}
}

func NewMat4Translation(position Vec3) Mat4 {
	m := NewMat4Identity()
	m.Data[12] = position.X
	m.Data[13] = position.Y
	m.Data[14] = position.Z
	return m
}

func NewMat4Scale(scale Vec3) Mat4 {
	m := NewMat4Identity()
	m.Data[0] = scale.X
	m.Data[5] = scale.Y
	m.Data[10] = scale.Z
	return m
}

// NewMat4OrthographicCenter builds an orthographic projection centered on the
// origin with a 0..1 depth range.
func NewMat4OrthographicCenter(width, height, near, far float32) Mat4 {
	m := NewMat4Identity()
	m.Data[0] = 2.0 / width
	m.Data[5] = 2.0 / height
	m.Data[10] = 1.0 / (far - near)
	m.Data[14] = -near / (far - near)
	return m
}

// NewMat4Perspective builds a perspective projection with a 0..1 depth range.
// fov is the vertical field of view in radians.
func NewMat4Perspective(fov, aspect, near, far float32) Mat4 {
	f := 1.0 / Tan(fov*0.5)
	m := Mat4{}
	m.Data[0] = f / aspect
	m.Data[5] = f
	m.Data[10] = far / (far - near)
	m.Data[11] = 1.0
	m.Data[14] = -(far * near) / (far - near)
	return m
}

// NewMat4LookRotation builds the world-to-view rotation for a camera facing
// along forward. Combine with a negated translation to get a view matrix.
func NewMat4LookRotation(forward, up Vec3) Mat4 {
	f := forward.Normalized()
	r := up.Cross(f).Normalized()
	u := f.Cross(r)

	m := NewMat4Identity()
	m.Set(0, 0, r.X)
	m.Set(0, 1, r.Y)
	m.Set(0, 2, r.Z)
	m.Set(1, 0, u.X)
	m.Set(1, 1, u.Y)
	m.Set(1, 2, u.Z)
	m.Set(2, 0, f.X)
	m.Set(2, 1, f.Y)
	m.Set(2, 2, f.Z)
	return m
}

func (mt Mat4) Compare(other Mat4, tolerance float32) bool {
	for i := range mt.Data {
		if Abs(mt.Data[i]-other.Data[i]) > tolerance {
			return false
		}
	}
	return true
}
