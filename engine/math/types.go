package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

// Quaternion represents a rotational orientation.
type Quaternion struct {
	X, Y, Z, W float32
}

// Mat4 is a 4x4 matrix stored column-major: element (row, col) lives at
// Data[col*4+row]. Vectors are treated as columns, so transforming is M * v
// and composed transforms apply right to left.
type Mat4 struct {
	Data [16]float32
}

// Vertex3D is the fixed vertex layout consumed by every pipeline.
type Vertex3D struct {
	Position Vec3
	Normal   Vec3
	Texcoord Vec2
	Colour   Vec4
}

// Sphere is a bounding sphere in world space.
type Sphere struct {
	Center Vec3
	Radius float32
}

// Transform is a position/rotation/scale triple composable to a matrix.
type Transform struct {
	Position Vec3
	Rotation Quaternion
	Scale    Vec3
}
