package math

import gomath "math"

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

func (v Vec2) MulScalar(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func NewVec3Zero() Vec3 {
	return Vec3{}
}

func NewVec3One() Vec3 {
	return Vec3{X: 1, Y: 1, Z: 1}
}

func NewVec3Up() Vec3 {
	return Vec3{Y: 1}
}

func NewVec3Forward() Vec3 {
	return Vec3{Z: 1}
}

func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

func (v Vec3) Mul(other Vec3) Vec3 {
	return Vec3{X: v.X * other.X, Y: v.Y * other.Y, Z: v.Z * other.Z}
}

func (v Vec3) MulScalar(s float32) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func (v Vec3) Negate() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

func (v Vec3) LengthSquared() float32 {
	return v.Dot(v)
}

func (v Vec3) Length() float32 {
	return Sqrt(v.LengthSquared())
}

// Normalized returns a unit-length copy. The zero vector is returned as is.
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.MulScalar(1.0 / l)
}

func (v Vec3) Distance(other Vec3) float32 {
	return v.Sub(other).Length()
}

// Compare reports whether every component differs by at most tolerance.
func (v Vec3) Compare(other Vec3, tolerance float32) bool {
	return Abs(v.X-other.X) <= tolerance &&
		Abs(v.Y-other.Y) <= tolerance &&
		Abs(v.Z-other.Z) <= tolerance
}

func (v Vec3) ToVec4(w float32) Vec4 {
	return Vec4{X: v.X, Y: v.Y, Z: v.Z, W: w}
}

func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

func (v Vec4) ToVec3() Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

func (v Vec4) Add(other Vec4) Vec4 {
	return Vec4{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z, W: v.W + other.W}
}

func (v Vec4) Sub(other Vec4) Vec4 {
	return Vec4{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z, W: v.W - other.W}
}

func (v Vec4) MulScalar(s float32) Vec4 {
	return Vec4{X: v.X * s, Y: v.Y * s, Z: v.Z * s, W: v.W * s}
}

// Round rounds every component to the nearest integer, halves away from zero.
func (v Vec4) Round() Vec4 {
	return Vec4{
		X: float32(gomath.Round(float64(v.X))),
		Y: float32(gomath.Round(float64(v.Y))),
		Z: float32(gomath.Round(float64(v.Z))),
		W: float32(gomath.Round(float64(v.W))),
	}
}

func (v Vec4) Compare(other Vec4, tolerance float32) bool {
	return Abs(v.X-other.X) <= tolerance &&
		Abs(v.Y-other.Y) <= tolerance &&
		Abs(v.Z-other.Z) <= tolerance &&
		Abs(v.W-other.W) <= tolerance
}
