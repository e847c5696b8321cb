package renderer

import (
	"github.com/vireo3d/vireo/engine/math"
)

type CameraProjection int

const (
	CameraProjectionPerspective CameraProjection = iota
	CameraProjectionOrthographic
)

// Camera describes a view into the scene. Width and Height are the view
// plane size for orthographic cameras and the aspect source for perspective
// ones; Depth is the far distance.
type Camera struct {
	Transform  math.Transform
	Projection CameraProjection
	FovDegrees float32
	Width      float32
	Height     float32
	Depth      float32
}

func NewPerspectiveCamera(width, height, fovDegrees float32) Camera {
	return Camera{
		Transform:  math.TransformIdentity(),
		Projection: CameraProjectionPerspective,
		FovDegrees: fovDegrees,
		Width:      width,
		Height:     height,
		Depth:      100,
	}
}

func NewOrthographicCamera(width, height float32) Camera {
	return Camera{
		Transform:  math.TransformIdentity(),
		Projection: CameraProjectionOrthographic,
		Width:      width,
		Height:     height,
		Depth:      100,
	}
}

func (c Camera) ProjectionMatrix() math.Mat4 {
	if c.Projection == CameraProjectionOrthographic {
		return math.NewMat4OrthographicCenter(c.Width, c.Height, 0.001, c.Depth)
	}
	return math.NewMat4Perspective(math.DegToRad(c.FovDegrees), c.Width/c.Height, 0.001, c.Depth)
}

func (c Camera) ViewMatrix() math.Mat4 {
	return c.Transform.MatrixForCamera()
}

// Matrix is the combined view-projection matrix.
func (c Camera) Matrix() math.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// BoundingSphereForSplit fits a sphere around the frustum slice between two
// fractions of the camera's depth, in world space. Shadow cascades use the
// sphere to size their orthographic light projection, which keeps the
// projection extent constant under camera rotation.
func (c Camera) BoundingSphereForSplit(prevSplit, split float32) math.Sphere {
	near := c.Depth * prevSplit
	far := c.Depth * split

	halfWidth := func(d float32) float32 { return c.Width / 2 }
	halfHeight := func(d float32) float32 { return c.Height / 2 }
	if c.Projection == CameraProjectionPerspective {
		tanHalf := math.Tan(math.DegToRad(c.FovDegrees) / 2)
		aspect := c.Width / c.Height
		halfHeight = func(d float32) float32 { return d * tanHalf }
		halfWidth = func(d float32) float32 { return d * tanHalf * aspect }
	}

	corners := make([]math.Vec3, 0, 8)
	for _, d := range []float32{near, far} {
		hw := halfWidth(d)
		hh := halfHeight(d)
		corners = append(corners,
			math.Vec3{X: -hw, Y: -hh, Z: d},
			math.Vec3{X: hw, Y: -hh, Z: d},
			math.Vec3{X: hw, Y: hh, Z: d},
			math.Vec3{X: -hw, Y: hh, Z: d},
		)
	}

	var center math.Vec3
	for _, corner := range corners {
		center = center.Add(corner)
	}
	center = center.MulScalar(1.0 / float32(len(corners)))

	radius := float32(0)
	for _, corner := range corners {
		radius = math.Max(radius, corner.Distance(center))
	}

	worldCenter := c.Transform.Position.Add(c.Transform.Rotation.Rotate(center))
	return math.Sphere{Center: worldCenter, Radius: radius}
}
