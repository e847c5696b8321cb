package renderer

import (
	"fmt"
	"time"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/vireo3d/vireo/engine/core"
	"github.com/vireo3d/vireo/engine/math"
	"github.com/vireo3d/vireo/engine/renderer/uniform"
	"github.com/vireo3d/vireo/engine/renderer/vulkan"
	"github.com/vireo3d/vireo/engine/resources"
)

// ForwardRenderer drives the shadow cascades and the color pass for one
// frame. Shadow framebuffers and shadow-map descriptor sets exist once per
// frame-in-flight so the host never rewrites data the GPU is still reading.
type ForwardRenderer struct {
	device   *vulkan.Device
	layout   *vulkan.ShaderLayout
	manager  *resources.Manager
	images   *uniform.ImageUniform
	builtins *resources.Builtins

	shadowTargets [][]*resources.Framebuffer
	shadowMaps    []*uniform.ShadowMapUniform
	cascadeSplits []float32
	shadowMapSize uint32

	lightMatrices [vulkan.MaxCascades]math.Mat4
	splitDepths   [vulkan.MaxCascades]float32

	startTime time.Time
	stats     RenderStats
}

type ForwardRendererOptions struct {
	ShadowMapSize uint32
	// Cascade boundaries as ascending fractions of the camera depth, the
	// last one 1.0.
	CascadeSplits []float32
}

func NewForwardRenderer(device *vulkan.Device, layout *vulkan.ShaderLayout, manager *resources.Manager, images *uniform.ImageUniform, builtins *resources.Builtins, options ForwardRendererOptions) (*ForwardRenderer, error) {
	if len(options.CascadeSplits) == 0 || len(options.CascadeSplits) > vulkan.MaxCascades {
		return nil, fmt.Errorf("cascade count must be 1 to %d, got %d", vulkan.MaxCascades, len(options.CascadeSplits))
	}
	if options.ShadowMapSize == 0 {
		options.ShadowMapSize = 2048
	}

	f := &ForwardRenderer{
		device:        device,
		layout:        layout,
		manager:       manager,
		images:        images,
		builtins:      builtins,
		cascadeSplits: options.CascadeSplits,
		shadowMapSize: options.ShadowMapSize,
		startTime:     time.Now(),
	}

	for frame := 0; frame < device.FramesInFlight(); frame++ {
		cascades := make([]*resources.Framebuffer, len(options.CascadeSplits))
		views := make([]vk.ImageView, len(options.CascadeSplits))
		for i := range cascades {
			fb, err := resources.NewFramebuffer(device, layout, images, resources.FramebufferOptions{
				Attachments: []vulkan.AttachmentType{vulkan.AttachmentDepth},
				Width:       options.ShadowMapSize,
				Height:      options.ShadowMapSize,
			})
			if err != nil {
				f.Destroy()
				return nil, err
			}
			cascades[i] = fb
			views[i] = fb.Handle().StoredView()
		}
		shadowMap, err := uniform.NewShadowMapUniform(layout, views)
		if err != nil {
			f.Destroy()
			return nil, err
		}
		f.shadowTargets = append(f.shadowTargets, cascades)
		f.shadowMaps = append(f.shadowMaps, shadowMap)
	}

	core.LogInfo("forward renderer ready: %d cascades at %dpx", len(options.CascadeSplits), options.ShadowMapSize)
	return f, nil
}

// Render runs the shadow pass followed by the color pass into the given
// framebuffer. One call per frame.
func (f *ForwardRenderer) Render(fb *resources.Framebuffer, camera Camera, target *Target) error {
	f.stats = RenderStats{}
	if err := f.shadowPass(target, camera); err != nil {
		return err
	}
	return f.colorPass(fb, camera, target)
}

// Stats reports the counters of the last Render call.
func (f *ForwardRenderer) Stats() RenderStats {
	return f.stats
}

func (f *ForwardRenderer) shadowPass(target *Target, camera Camera) error {
	if !target.HasShadows() {
		f.lightMatrices = [vulkan.MaxCascades]math.Mat4{}
		f.splitDepths = [vulkan.MaxCascades]float32{}
		return nil
	}

	lights := target.Lights()
	lightDir := lights[0].Coords
	if lightDir.LengthSquared() == 0 {
		lightDir = math.Vec3{X: -1, Y: -1, Z: 1}
	}
	lightDir = lightDir.Normalized()

	// Slot mutations must settle before any pass reads the image set.
	if err := f.images.UpdateIfNeeded(); err != nil {
		return err
	}

	cmd := f.device.CommandBuffer()
	frame := f.device.CurrentFrame()

	// The cascade maps being written this frame cannot be sampled, so the
	// shadow-map set of the next frame in flight is bound for the duration
	// of the depth passes.
	next := (frame + 1) % f.device.FramesInFlight()
	f.device.CmdBindDescriptor(cmd, f.shadowMaps[next].Descriptor(), f.layout)

	shadowPipeline := f.shaderPipeline(f.builtins.ShadowShader)

	prevSplit := float32(0)
	for i, split := range f.cascadeSplits {
		sphere := camera.BoundingSphereForSplit(prevSplit, split)

		position := sphere.Center.Sub(lightDir.MulScalar(sphere.Radius))
		up := math.Vec3{Y: 1}
		if math.Abs(lightDir.Dot(up)) > 0.99 {
			up = math.Vec3{Z: 1}
		}
		lightView := math.NewMat4LookRotation(lightDir, up).Mul(math.NewMat4Translation(position.Negate()))
		diameter := sphere.Radius * 2
		lightProj := math.NewMat4OrthographicCenter(diameter, diameter, 0, diameter)

		matrix := snapToShadowTexel(lightProj, lightView, f.shadowMapSize)
		f.lightMatrices[i] = matrix
		f.splitDepths[i] = camera.Depth * split

		fb := f.shadowTargets[frame][i]
		if err := fb.World().Update(uniform.WorldData{WorldMatrix: matrix}); err != nil {
			return err
		}

		f.device.CmdBeginRenderPass(cmd, fb.Handle(), [4]float32{1, 1, 1, 1})
		f.device.CmdSetView(cmd, fb.Width(), fb.Height())
		f.device.CmdBindShader(cmd, shadowPipeline)
		f.stats.ShadersBound++
		f.device.CmdBindDescriptor(cmd, fb.World().Descriptor(), f.layout)

		for _, shaderBucket := range target.Orders() {
			for _, materialBucket := range shaderBucket.Materials {
				casting := castingOrderCount(materialBucket.Orders)
				if casting == 0 {
					continue
				}
				// Bound for layout consistency, the depth shader reads
				// nothing from it.
				if !f.bindMaterial(cmd, materialBucket.Material) {
					core.LogWarn("material bucket skipped in shadow pass: material %d no longer resolves (%d orders)", materialBucket.Material, casting)
					f.stats.OrdersSkipped += uint32(casting)
					continue
				}
				for _, order := range materialBucket.Orders {
					if !order.CastShadows {
						continue
					}
					f.recordOrder(cmd, order)
				}
			}
		}

		f.device.CmdEndRenderPass(cmd)
		prevSplit = split
	}

	// Unused cascade entries repeat the last matrix so the shader array is
	// never read uninitialized.
	for i := len(f.cascadeSplits); i < vulkan.MaxCascades; i++ {
		f.lightMatrices[i] = f.lightMatrices[len(f.cascadeSplits)-1]
		f.splitDepths[i] = f.splitDepths[len(f.cascadeSplits)-1]
	}
	return nil
}

func (f *ForwardRenderer) colorPass(fb *resources.Framebuffer, camera Camera, target *Target) error {
	if err := f.images.UpdateIfNeeded(); err != nil {
		return err
	}

	lights := target.Lights()
	var worldLights [4]uniform.Light
	copy(worldLights[:], lights[:])

	if err := fb.World().Update(uniform.WorldData{
		WorldMatrix:    camera.Matrix(),
		LightMatrices:  f.lightMatrices,
		Lights:         worldLights,
		CameraPosition: camera.Transform.Position,
		Time:           float32(time.Since(f.startTime).Seconds()),
		CascadeSplits:  f.splitDepths,
		ShadowBias:     target.ShadowBias(),
	}); err != nil {
		return err
	}

	cmd := f.device.CommandBuffer()
	frame := f.device.CurrentFrame()

	f.device.CmdBeginRenderPass(cmd, fb.Handle(), target.ClearColour())
	f.device.CmdSetView(cmd, fb.Width(), fb.Height())
	f.device.CmdBindDescriptor(cmd, fb.World().Descriptor(), f.layout)
	f.device.CmdBindDescriptor(cmd, f.images.Descriptor(), f.layout)
	f.device.CmdBindDescriptor(cmd, f.shadowMaps[frame].Descriptor(), f.layout)

	for _, shaderBucket := range target.Orders() {
		pipeline := f.shaderPipeline(shaderBucket.Shader)
		if pipeline == nil {
			skipped := 0
			for _, materialBucket := range shaderBucket.Materials {
				skipped += len(materialBucket.Orders)
			}
			core.LogWarn("shader bucket skipped: pipeline no longer resolves (%d orders)", skipped)
			f.stats.OrdersSkipped += uint32(skipped)
			continue
		}
		f.device.CmdBindShader(cmd, pipeline)
		f.stats.ShadersBound++
		if pipeline.Options().Wireframe {
			f.device.CmdSetLineWidth(cmd, 1)
		}

		for _, materialBucket := range shaderBucket.Materials {
			if !f.bindMaterial(cmd, materialBucket.Material) {
				core.LogWarn("material bucket skipped: material %d no longer resolves (%d orders)", materialBucket.Material, len(materialBucket.Orders))
				f.stats.OrdersSkipped += uint32(len(materialBucket.Orders))
				continue
			}
			for _, order := range materialBucket.Orders {
				f.recordOrder(cmd, order)
			}
		}
	}

	f.device.CmdEndRenderPass(cmd)
	return nil
}

// castingOrderCount reports how many orders of a bucket take part in the
// shadow pass.
func castingOrderCount(orders []Order) int {
	n := 0
	for _, order := range orders {
		if order.CastShadows {
			n++
		}
	}
	return n
}

func (f *ForwardRenderer) bindMaterial(cmd vk.CommandBuffer, index resources.Index) bool {
	ok := f.manager.WithMaterial(index, func(m *resources.Material) {
		if err := m.Update(); err != nil {
			core.LogError("material %d update failed: %v", index, err)
		}
		f.device.CmdBindDescriptor(cmd, m.Descriptor(), f.layout)
	})
	if ok {
		f.stats.MaterialsBound++
	}
	return ok
}

// recordOrder resolves the order's resources and issues one indexed draw.
// A handle that no longer resolves skips this order only.
func (f *ForwardRenderer) recordOrder(cmd vk.CommandBuffer, order Order) {
	slot := order.AlbedoSlot
	if slot < 0 {
		switch {
		case order.Texture.Valid():
			order.Texture.With(func(t **resources.Texture) { slot = (*t).Slot() })
		case order.Framebuffer != resources.NilIndex:
			if !f.manager.WithFramebuffer(order.Framebuffer, func(fb *resources.Framebuffer) { slot = fb.Slot() }) || slot < 0 {
				core.LogWarn("draw order skipped: framebuffer %d has no sampled attachment", order.Framebuffer)
				f.stats.OrdersSkipped++
				return
			}
		default:
			slot = 0
		}
	}

	constants := uniform.PushConstants{
		ModelMatrix:  order.Model,
		AlbedoIndex:  slot,
		SamplerIndex: order.Sampler,
	}

	ok := f.manager.WithMesh(order.Mesh, func(m *resources.Mesh) {
		f.device.CmdPushConstants(cmd, f.layout, unsafe.Pointer(&constants), uint32(unsafe.Sizeof(constants)))
		f.device.CmdBindVertexBuffer(cmd, m.VertexBuffer())
		f.device.CmdBindIndexBuffer(cmd, m.IndexBuffer())
		f.device.CmdDraw(cmd, m.IndexCount())
		f.stats.DrawCalls++
		f.stats.IndicesDrawn += m.IndexCount()
	})
	if !ok {
		core.LogWarn("draw order skipped: mesh %d no longer resolves", order.Mesh)
		f.stats.OrdersSkipped++
	}
}

func (f *ForwardRenderer) shaderPipeline(ref resources.Ref[*resources.Shader]) *vulkan.Shader {
	if !ref.Valid() {
		return nil
	}
	var pipeline *vulkan.Shader
	ref.With(func(s **resources.Shader) { pipeline = (*s).Pipeline() })
	return pipeline
}

func (f *ForwardRenderer) Destroy() {
	for _, cascades := range f.shadowTargets {
		for _, fb := range cascades {
			fb.Destroy()
		}
	}
	f.shadowTargets = nil
	f.shadowMaps = nil
}

// snapToShadowTexel rounds the light projection's translation to whole
// shadow-map texels. The world origin is taken through the full light
// matrix into clip space, scaled to texel units, rounded, and the sub-texel
// remainder is folded back into the projection before recomposing. Skipping
// this makes shadow edges shimmer as the camera moves.
func snapToShadowTexel(lightProj, lightView math.Mat4, mapSize uint32) math.Mat4 {
	lightMatrix := lightProj.Mul(lightView)

	shadowOrigin := lightMatrix.MulVec4(math.Vec4{W: 1})
	shadowOrigin = shadowOrigin.MulScalar(float32(mapSize) / 2)

	roundedOrigin := shadowOrigin.Round()
	roundOffset := roundedOrigin.Sub(shadowOrigin).MulScalar(2 / float32(mapSize))

	snappedProj := lightProj
	snappedProj.Data[12] += roundOffset.X
	snappedProj.Data[13] += roundOffset.Y
	return snappedProj.Mul(lightView)
}
