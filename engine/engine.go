package engine

import (
	"github.com/vireo3d/vireo/engine/assets"
	"github.com/vireo3d/vireo/engine/config"
	"github.com/vireo3d/vireo/engine/core"
	"github.com/vireo3d/vireo/engine/renderer"
	"github.com/vireo3d/vireo/engine/renderer/uniform"
	"github.com/vireo3d/vireo/engine/renderer/vulkan"
	"github.com/vireo3d/vireo/engine/resources"
)

// Vireo is the engine context: one device, the shared descriptor layout and
// uniforms, the resource manager with its builtins, and the forward
// renderer. Windowing and device bring-up happen outside; the embedder
// hands in pre-created Vulkan handles through DeviceOptions.
type Vireo struct {
	config *config.Config

	device *vulkan.Device
	layout *vulkan.ShaderLayout
	images *uniform.ImageUniform

	manager  *resources.Manager
	builtins *resources.Builtins
	forward  *renderer.ForwardRenderer

	colorPass *vulkan.RenderPass
	depthPass *vulkan.RenderPass

	shaderDir *assets.ShaderDir
	watcher   *assets.ShaderWatcher

	clock *core.Clock
}

func New(cfg *config.Config, deviceOpts vulkan.DeviceOptions) (*Vireo, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	core.SetLogLevel(cfg.LogLevel)
	if err := core.MetricsInitialize(); err != nil {
		return nil, err
	}

	deviceOpts.FramesInFlight = cfg.Renderer.FramesInFlight
	device, err := vulkan.NewDevice(deviceOpts)
	if err != nil {
		return nil, err
	}

	v := &Vireo{
		config:    cfg,
		device:    device,
		manager:   resources.NewManager(),
		shaderDir: assets.NewShaderDir(cfg.Assets.ShaderDir),
		clock:     core.NewClock(),
	}

	v.layout, err = vulkan.NewShaderLayout(device, vulkan.ShaderLayoutOptions{
		ImageSlotCapacity: cfg.Renderer.ImageSlotCapacity,
	})
	if err != nil {
		v.Destroy()
		return nil, err
	}

	v.images, err = uniform.NewImageUniform(device, v.layout, cfg.Renderer.Anisotropy)
	if err != nil {
		v.Destroy()
		return nil, err
	}

	v.colorPass, err = vulkan.NewRenderPass(device, []vulkan.AttachmentType{vulkan.AttachmentColor, vulkan.AttachmentDepth})
	if err != nil {
		v.Destroy()
		return nil, err
	}
	v.depthPass, err = vulkan.NewRenderPass(device, []vulkan.AttachmentType{vulkan.AttachmentDepth})
	if err != nil {
		v.Destroy()
		return nil, err
	}

	v.builtins, err = resources.NewBuiltins(device, v.layout, v.images, v.manager, resources.BuiltinOptions{
		ColorPass: v.colorPass,
		DepthPass: v.depthPass,
		Load:      v.shaderDir.Load,
	})
	if err != nil {
		v.Destroy()
		return nil, err
	}

	v.forward, err = renderer.NewForwardRenderer(device, v.layout, v.manager, v.images, v.builtins, renderer.ForwardRendererOptions{
		ShadowMapSize: cfg.Renderer.ShadowMapSize,
		CascadeSplits: cfg.Renderer.CascadeSplits,
	})
	if err != nil {
		v.Destroy()
		return nil, err
	}

	if cfg.Assets.WatchShaders {
		v.watcher, err = assets.NewShaderWatcher(device, v.shaderDir)
		if err != nil {
			v.Destroy()
			return nil, err
		}
		for name, ref := range map[string]resources.Ref[*resources.Shader]{
			"phong":     v.builtins.PhongShader,
			"shadow":    v.builtins.ShadowShader,
			"font":      v.builtins.FontShader,
			"wireframe": v.builtins.WireframeShader,
			"blit":      v.builtins.BlitShader,
		} {
			v.watcher.Register(name, ref)
		}
	}

	v.clock.Start()
	core.LogInfo("engine initialized")
	return v, nil
}

// NewTarget starts an order collector seeded with the builtin defaults and
// the configured shadow bias.
func (v *Vireo) NewTarget() *renderer.Target {
	t := renderer.NewTarget(v.builtins)
	t.SetDefaultShadowBias(v.config.Renderer.ShadowBias)
	return t
}

// CreateFramebuffer makes a color+depth render target. A sampled target can
// later be drawn like a texture.
func (v *Vireo) CreateFramebuffer(width, height uint32, sampled bool) (resources.Index, error) {
	fb, err := resources.NewFramebuffer(v.device, v.layout, v.images, resources.FramebufferOptions{
		Attachments: []vulkan.AttachmentType{vulkan.AttachmentColor, vulkan.AttachmentDepth},
		Width:       width,
		Height:      height,
		Sampled:     sampled,
	})
	if err != nil {
		return resources.NilIndex, err
	}
	return v.manager.AddFramebuffer(fb), nil
}

// CreateTexture uploads RGBA pixels and returns a counted texture handle.
func (v *Vireo) CreateTexture(name string, pixels []uint8, width, height uint32) (resources.Ref[*resources.Texture], error) {
	texture, err := resources.NewTexture(v.device, v.images, name, pixels, width, height)
	if err != nil {
		return resources.Ref[*resources.Texture]{}, err
	}
	return v.manager.AddTexture(texture), nil
}

// CreateMaterial returns the index of a fresh white material.
func (v *Vireo) CreateMaterial() (resources.Index, error) {
	material, err := resources.NewMaterial(v.device, v.layout)
	if err != nil {
		return resources.NilIndex, err
	}
	return v.manager.AddMaterial(material), nil
}

// SetSkybox binds the texture as the skybox image. It takes effect at the
// next descriptor flush.
func (v *Vireo) SetSkybox(texture resources.Ref[*resources.Texture]) {
	if !texture.Valid() {
		core.LogWarn("set skybox ignored: invalid texture handle")
		return
	}
	texture.With(func(t **resources.Texture) {
		v.images.SetSkybox((*t).View())
	})
}

// Draw records one frame into the indexed framebuffer, submits it to the
// queue and advances the frame counter.
func (v *Vireo) Draw(framebuffer resources.Index, camera renderer.Camera, target *renderer.Target) error {
	v.clock.Update()

	var fb *resources.Framebuffer
	if !v.manager.WithFramebuffer(framebuffer, func(f *resources.Framebuffer) { fb = f }) {
		return core.ErrInvalidHandle
	}

	if err := v.device.BeginFrame(); err != nil {
		return err
	}
	if err := v.forward.Render(fb, camera, target); err != nil {
		return err
	}
	if err := v.device.EndFrame(); err != nil {
		return err
	}

	v.device.NextFrame()
	core.MetricsUpdate(v.clock.ElapsedSeconds())
	v.clock.Start()
	return nil
}

// CleanUnused drains the GPU and collects unreferenced textures, shaders
// and fonts, handing their image slots back.
func (v *Vireo) CleanUnused() error {
	if err := v.device.WaitIdle(); err != nil {
		return err
	}
	v.manager.CleanUnused(v.images)
	return nil
}

func (v *Vireo) Manager() *resources.Manager {
	return v.manager
}

func (v *Vireo) Builtins() *resources.Builtins {
	return v.builtins
}

func (v *Vireo) Stats() renderer.RenderStats {
	return v.forward.Stats()
}

func (v *Vireo) Destroy() {
	if v.device != nil {
		if err := v.device.WaitIdle(); err != nil {
			core.LogWarn("device wait before shutdown failed: %v", err)
		}
	}
	if v.watcher != nil {
		if err := v.watcher.Close(); err != nil {
			core.LogWarn(err.Error())
		}
	}
	if v.forward != nil {
		v.forward.Destroy()
	}
	if v.manager != nil {
		v.manager.Destroy()
	}
	if v.builtins != nil {
		v.builtins = nil
	}
	if v.images != nil {
		v.images.Destroy()
	}
	if v.depthPass != nil {
		v.depthPass.Destroy()
	}
	if v.colorPass != nil {
		v.colorPass.Destroy()
	}
	if v.layout != nil {
		v.layout.Destroy()
	}
	if v.device != nil {
		v.device.Destroy()
	}
}
