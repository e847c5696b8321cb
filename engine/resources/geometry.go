package resources

import (
	"github.com/vireo3d/vireo/engine/math"
)

// CubeGeometry is a unit cube centered on the origin, one quad per face so
// normals stay hard.
func CubeGeometry() ([]math.Vertex3D, []uint32) {
	faces := []struct {
		normal math.Vec3
		right  math.Vec3
		up     math.Vec3
	}{
		{math.Vec3{Z: 1}, math.Vec3{X: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Z: -1}, math.Vec3{X: -1}, math.Vec3{Y: 1}},
		{math.Vec3{X: 1}, math.Vec3{Z: -1}, math.Vec3{Y: 1}},
		{math.Vec3{X: -1}, math.Vec3{Z: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Y: 1}, math.Vec3{X: 1}, math.Vec3{Z: -1}},
		{math.Vec3{Y: -1}, math.Vec3{X: 1}, math.Vec3{Z: 1}},
	}

	uvs := []math.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}
	white := math.Vec4{X: 1, Y: 1, Z: 1, W: 1}

	vertices := make([]math.Vertex3D, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, face := range faces {
		base := uint32(len(vertices))
		corners := []math.Vec3{
			face.normal.Sub(face.right).Sub(face.up),
			face.normal.Add(face.right).Sub(face.up),
			face.normal.Add(face.right).Add(face.up),
			face.normal.Sub(face.right).Add(face.up),
		}
		for i, corner := range corners {
			vertices = append(vertices, math.Vertex3D{
				Position: corner.MulScalar(0.5),
				Normal:   face.normal,
				Texcoord: uvs[i],
				Colour:   white,
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}

// SphereGeometry is a UV sphere of unit diameter.
func SphereGeometry(rings, sectors int) ([]math.Vertex3D, []uint32) {
	if rings < 3 {
		rings = 3
	}
	if sectors < 3 {
		sectors = 3
	}

	white := math.Vec4{X: 1, Y: 1, Z: 1, W: 1}
	vertices := make([]math.Vertex3D, 0, (rings+1)*(sectors+1))
	for r := 0; r <= rings; r++ {
		phi := math.Pi * float32(r) / float32(rings)
		for s := 0; s <= sectors; s++ {
			theta := 2 * math.Pi * float32(s) / float32(sectors)
			normal := math.Vec3{
				X: math.Sin(phi) * math.Cos(theta),
				Y: math.Cos(phi),
				Z: math.Sin(phi) * math.Sin(theta),
			}
			vertices = append(vertices, math.Vertex3D{
				Position: normal.MulScalar(0.5),
				Normal:   normal,
				Texcoord: math.Vec2{X: float32(s) / float32(sectors), Y: float32(r) / float32(rings)},
				Colour:   white,
			})
		}
	}

	indices := make([]uint32, 0, rings*sectors*6)
	stride := uint32(sectors + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < sectors; s++ {
			a := uint32(r)*stride + uint32(s)
			b := a + stride
			indices = append(indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return vertices, indices
}

// SurfaceGeometry is a fullscreen quad in clip-ish coordinates, used for
// blits and post passes.
func SurfaceGeometry() ([]math.Vertex3D, []uint32) {
	white := math.Vec4{X: 1, Y: 1, Z: 1, W: 1}
	vertices := []math.Vertex3D{
		{Position: math.Vec3{X: -1, Y: -1}, Normal: math.Vec3{Z: 1}, Texcoord: math.Vec2{X: 0, Y: 1}, Colour: white},
		{Position: math.Vec3{X: 1, Y: -1}, Normal: math.Vec3{Z: 1}, Texcoord: math.Vec2{X: 1, Y: 1}, Colour: white},
		{Position: math.Vec3{X: 1, Y: 1}, Normal: math.Vec3{Z: 1}, Texcoord: math.Vec2{X: 1, Y: 0}, Colour: white},
		{Position: math.Vec3{X: -1, Y: 1}, Normal: math.Vec3{Z: 1}, Texcoord: math.Vec2{X: 0, Y: 0}, Colour: white},
	}
	return vertices, []uint32{0, 1, 2, 0, 2, 3}
}

// QuadGeometry is a unit quad in the XY plane, origin at the bottom left.
func QuadGeometry() ([]math.Vertex3D, []uint32) {
	white := math.Vec4{X: 1, Y: 1, Z: 1, W: 1}
	vertices := []math.Vertex3D{
		{Position: math.Vec3{}, Normal: math.Vec3{Z: 1}, Texcoord: math.Vec2{X: 0, Y: 1}, Colour: white},
		{Position: math.Vec3{X: 1}, Normal: math.Vec3{Z: 1}, Texcoord: math.Vec2{X: 1, Y: 1}, Colour: white},
		{Position: math.Vec3{X: 1, Y: 1}, Normal: math.Vec3{Z: 1}, Texcoord: math.Vec2{X: 1, Y: 0}, Colour: white},
		{Position: math.Vec3{Y: 1}, Normal: math.Vec3{Z: 1}, Texcoord: math.Vec2{X: 0, Y: 0}, Colour: white},
	}
	return vertices, []uint32{0, 1, 2, 0, 2, 3}
}
