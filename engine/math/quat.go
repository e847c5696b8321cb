package math

func NewQuatIdentity() Quaternion {
	return Quaternion{W: 1}
}

// NewQuatFromAxisAngle builds a rotation of angle radians around axis.
func NewQuatFromAxisAngle(axis Vec3, angle float32) Quaternion {
	half := angle * 0.5
	s := Sin(half)
	a := axis.Normalized()
	return Quaternion{X: a.X * s, Y: a.Y * s, Z: a.Z * s, W: Cos(half)}
}

func (q Quaternion) Mul(other Quaternion) Quaternion {
	return Quaternion{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Rotate applies the rotation to a vector.
func (q Quaternion) Rotate(v Vec3) Vec3 {
	u := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	t := u.Cross(v).MulScalar(2.0)
	return v.Add(t.MulScalar(q.W)).Add(u.Cross(t))
}

// Mat4 expands the quaternion into a rotation matrix.
func (q Quaternion) Mat4() Mat4 {
	x, y, z, w := q.X, q.Y, q.Z, q.W

	m := NewMat4Identity()
	m.Set(0, 0, 1-2*(y*y+z*z))
	m.Set(0, 1, 2*(x*y-z*w))
	m.Set(0, 2, 2*(x*z+y*w))
	m.Set(1, 0, 2*(x*y+z*w))
	m.Set(1, 1, 1-2*(x*x+z*z))
	m.Set(1, 2, 2*(y*z-x*w))
	m.Set(2, 0, 2*(x*z-y*w))
	m.Set(2, 1, 2*(y*z+x*w))
	m.Set(2, 2, 1-2*(x*x+y*y))
	return m
}
