package testbed

import (
	"github.com/vireo3d/vireo/engine"
	"github.com/vireo3d/vireo/engine/config"
	"github.com/vireo3d/vireo/engine/core"
	"github.com/vireo3d/vireo/engine/math"
	"github.com/vireo3d/vireo/engine/renderer"
	"github.com/vireo3d/vireo/engine/resources"
)

const (
	frameWidth  = 1280
	frameHeight = 720
	frameCount  = 300
)

// Run renders a short scene offscreen: a few spinning cubes and a sphere
// under a shadow-casting sun, with a wireframe overlay for the last third.
func Run(cfg *config.Config) error {
	deviceOpts, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	v, err := engine.New(cfg, deviceOpts)
	if err != nil {
		return err
	}
	defer v.Destroy()

	framebuffer, err := v.CreateFramebuffer(frameWidth, frameHeight, false)
	if err != nil {
		return err
	}

	redMaterial, err := v.CreateMaterial()
	if err != nil {
		return err
	}
	v.Manager().WithMaterial(redMaterial, func(m *resources.Material) {
		m.SetAlbedoColour(math.NewVec3(0.9, 0.2, 0.2))
	})

	camera := renderer.NewPerspectiveCamera(frameWidth, frameHeight, 60)
	camera.Transform.Position = math.NewVec3(6, 5, -8)

	target := v.NewTarget()
	for frame := 0; frame < frameCount; frame++ {
		target.Clear()
		target.SetClear(0.1, 0.1, 0.15, 1)
		target.AddDirectionalLight(math.NewVec3(-1, -1.5, 1), math.NewVec4(1, 1, 0.95, 1))

		angle := float32(frame) * 0.02
		spin := math.NewQuatFromAxisAngle(math.NewVec3Up(), angle)

		target.DrawCube(math.TransformFromPositionRotationScale(math.NewVec3(0, 1, 0), spin, math.NewVec3One()))
		target.SetMaterial(redMaterial)
		target.DrawCube(math.TransformFromPositionRotationScale(math.NewVec3(2.5, 0.5, 1), spin, math.NewVec3(0.7, 0.7, 0.7)))
		target.DrawSphere(math.TransformFromPosition(math.NewVec3(-2, 1, 1)))

		// ground plane does not cast onto itself
		target.SetMaterial(v.Builtins().WhiteMat)
		target.SetCastShadows(false)
		target.DrawCube(math.TransformFromPositionRotationScale(math.NewVec3(0, -0.5, 0), math.NewQuatIdentity(), math.NewVec3(20, 0.2, 20)))

		if frame > frameCount*2/3 {
			target.SetWireframes(true)
			target.SetCastShadows(true)
			target.DrawSphere(math.TransformFromPosition(math.NewVec3(0, 2.5, 0)))
		}

		if err := v.Draw(framebuffer, camera, target); err != nil {
			return err
		}
	}

	stats := v.Stats()
	fps, frameTime := core.MetricsFrame()
	core.LogInfo("rendered %d frames: %d draw calls last frame, %.1f fps (%.2fms)",
		frameCount, stats.DrawCalls, fps, frameTime)
	return nil
}
