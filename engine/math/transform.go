package math

func TransformIdentity() Transform {
	return Transform{
		Rotation: NewQuatIdentity(),
		Scale:    NewVec3One(),
	}
}

func TransformFromPosition(position Vec3) Transform {
	t := TransformIdentity()
	t.Position = position
	return t
}

func TransformFromPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) Transform {
	return Transform{Position: position, Rotation: rotation, Scale: scale}
}

// Matrix composes translation * rotation * scale.
func (t Transform) Matrix() Mat4 {
	return NewMat4Translation(t.Position).
		Mul(t.Rotation.Mat4()).
		Mul(NewMat4Scale(t.Scale))
}

// MatrixForCamera composes the inverse transform used as a view matrix:
// rotation applied to the negated position, scale ignored.
func (t Transform) MatrixForCamera() Mat4 {
	forward := t.Rotation.Rotate(NewVec3Forward())
	up := t.Rotation.Rotate(NewVec3Up())
	return NewMat4LookRotation(forward, up).
		Mul(NewMat4Translation(t.Position.Negate()))
}
