package renderer

import (
	"github.com/vireo3d/vireo/engine/core"
	"github.com/vireo3d/vireo/engine/math"
	"github.com/vireo3d/vireo/engine/renderer/uniform"
	"github.com/vireo3d/vireo/engine/resources"
)

// Order is one collected draw call. The albedo is either a texture handle
// or a sampled framebuffer; the renderer resolves it to an image slot when
// recording, so a resource deleted between collection and recording skips
// only this order.
type Order struct {
	Mesh        resources.Index
	Texture     resources.Ref[*resources.Texture]
	Framebuffer resources.Index
	// AlbedoSlot short-circuits resolution when non-negative. Text orders
	// use it to sample the font atlas directly.
	AlbedoSlot  int32
	Model       math.Mat4
	CastShadows bool
	Sampler     uniform.SamplerIndex
}

// OrdersByMaterial is one material bucket; orders keep insertion order.
type OrdersByMaterial struct {
	Material resources.Index
	Orders   []Order
}

// OrdersByShader is one shader bucket holding its material buckets in
// first-seen order.
type OrdersByShader struct {
	Shader    resources.Ref[*resources.Shader]
	Materials []*OrdersByMaterial
}

// Target collects one frame of draw orders, grouped by shader then material
// to keep GPU state changes down. Grouping is insertion-stable at both
// levels; nothing is sorted, so draw order within a bucket is submission
// order and transparency correctness stays with the caller.
type Target struct {
	builtins *resources.Builtins

	orders []*OrdersByShader
	lights []uniform.Light

	clear       [4]float32
	shadowBias  float32
	defaultBias float32

	currentShader      resources.Ref[*resources.Shader]
	currentMaterial    resources.Index
	currentTexture     resources.Ref[*resources.Texture]
	currentFramebuffer resources.Index
	currentSampler     uniform.SamplerIndex
	currentFont        resources.Ref[*resources.Font]

	castShadows bool
	wireframes  bool
	hasShadows  bool
}

// MaxLights is the fixed light array size consumed by shaders.
const MaxLights = 3

const defaultShadowBias = 0.004

func NewTarget(builtins *resources.Builtins) *Target {
	t := &Target{builtins: builtins, defaultBias: defaultShadowBias}
	t.Reset()
	return t
}

// SetDefaultShadowBias overrides the bias Reset restores. SetShadowBias still
// adjusts single frames on top of it.
func (t *Target) SetDefaultShadowBias(bias float32) {
	t.defaultBias = bias
	t.shadowBias = bias
}

// Reset restores the current-state fields to the builtin defaults. Already
// collected orders and lights are kept; Clear drops those.
func (t *Target) Reset() {
	t.currentShader = t.builtins.PhongShader
	t.currentMaterial = t.builtins.WhiteMat
	t.currentTexture = t.builtins.WhiteTexture
	t.currentFramebuffer = resources.NilIndex
	t.currentSampler = 0
	t.castShadows = true
	t.wireframes = false
	t.shadowBias = t.defaultBias
	t.clear = [4]float32{0, 0, 0, 1}
}

// Clear drops all collected orders and lights for the next frame.
func (t *Target) Clear() {
	t.orders = nil
	t.lights = nil
	t.hasShadows = false
	t.Reset()
}

func (t *Target) Draw(mesh resources.Index, transform math.Transform) {
	t.addOrder(Order{
		Mesh:        mesh,
		Texture:     t.currentTexture,
		Framebuffer: t.currentFramebuffer,
		AlbedoSlot:  -1,
		Model:       transform.Matrix(),
		CastShadows: t.castShadows,
		Sampler:     t.currentSampler,
	})
}

func (t *Target) DrawCube(transform math.Transform) {
	t.Draw(t.builtins.CubeMesh, transform)
}

func (t *Target) DrawSphere(transform math.Transform) {
	t.Draw(t.builtins.SphereMesh, transform)
}

func (t *Target) DrawSurface() {
	t.Draw(t.builtins.SurfaceMesh, math.TransformIdentity())
}

// DrawText lays the string out glyph by glyph under the font shader. A font
// must be set first; text never casts shadows.
func (t *Target) DrawText(text string, transform math.Transform) {
	if !t.currentFont.Valid() {
		core.LogWarn("draw text skipped: no font set")
		return
	}

	var font *resources.Font
	t.currentFont.With(func(f **resources.Font) { font = *f })

	penX := float32(0)
	penY := float32(0)
	prev := rune(0)
	for _, r := range text {
		if r == '\n' {
			penX = 0
			penY -= font.LineHeight()
			prev = 0
			continue
		}
		glyph, ok := font.Glyph(r)
		if !ok {
			continue
		}
		penX += font.Kerning(prev, r)

		model := transform.Matrix().Mul(math.NewMat4Translation(math.Vec3{X: penX, Y: penY}))
		t.addOrderTo(t.builtins.FontShader, t.currentMaterial, Order{
			Mesh:       glyph.Mesh,
			AlbedoSlot: font.TextureSlot(),
			Model:      model,
			Sampler:    t.currentSampler,
		})

		penX += glyph.Advance
		prev = r
	}
}

// BlitFramebuffer draws a sampled framebuffer over the full surface with
// the blit shader.
func (t *Target) BlitFramebuffer(framebuffer resources.Index) {
	t.addOrderTo(t.builtins.BlitShader, t.builtins.WhiteMat, Order{
		Mesh:        t.builtins.SurfaceMesh,
		Framebuffer: framebuffer,
		AlbedoSlot:  -1,
		Model:       math.NewMat4Identity(),
		Sampler:     t.currentSampler,
	})
}

// AddDirectionalLight registers a light for this frame. Lights beyond the
// fixed cap are dropped.
func (t *Target) AddDirectionalLight(direction math.Vec3, colour math.Vec4) {
	if len(t.lights) >= MaxLights {
		core.LogWarn("directional light dropped: %d lights already added", MaxLights)
		return
	}
	t.lights = append(t.lights, uniform.Light{
		Coords: direction.Normalized(),
		Type:   uniform.LightTypeDirectional,
		Colour: colour,
	})
}

// Lights returns the fixed-size light array, zero-padded.
func (t *Target) Lights() [MaxLights]uniform.Light {
	var lights [MaxLights]uniform.Light
	copy(lights[:], t.lights)
	return lights
}

func (t *Target) SetClear(r, g, b, a float32)                       { t.clear = [4]float32{r, g, b, a} }
func (t *Target) SetShader(shader resources.Ref[*resources.Shader]) { t.currentShader = shader }
func (t *Target) SetMaterial(material resources.Index)              { t.currentMaterial = material }
func (t *Target) SetFont(font resources.Ref[*resources.Font])       { t.currentFont = font }
func (t *Target) SetCastShadows(cast bool)                          { t.castShadows = cast }
func (t *Target) SetWireframes(enabled bool)                        { t.wireframes = enabled }
func (t *Target) SetShadowBias(bias float32)                        { t.shadowBias = bias }

// SetAlbedoTexture sources the albedo of subsequent draws from a texture.
func (t *Target) SetAlbedoTexture(texture resources.Ref[*resources.Texture]) {
	t.currentTexture = texture
	t.currentFramebuffer = resources.NilIndex
}

// SetAlbedoFramebuffer sources the albedo of subsequent draws from a
// sampled framebuffer's stored attachment.
func (t *Target) SetAlbedoFramebuffer(framebuffer resources.Index) {
	t.currentFramebuffer = framebuffer
	t.currentTexture = resources.Ref[*resources.Texture]{}
}

func (t *Target) EnableSamplerNearest()   { t.currentSampler |= uniform.SamplerNearest }
func (t *Target) EnableSamplerClamp()     { t.currentSampler |= uniform.SamplerClamp }
func (t *Target) EnableSamplerNoMipmaps() { t.currentSampler |= uniform.SamplerNoMipmaps }

// HasShadows reports whether any shadow-casting order was collected. Sticky
// for the frame.
func (t *Target) HasShadows() bool {
	return t.hasShadows
}

func (t *Target) ShadowBias() float32 {
	return t.shadowBias
}

func (t *Target) ClearColour() [4]float32 {
	return t.clear
}

// Orders exposes the collected buckets in first-seen order.
func (t *Target) Orders() []*OrdersByShader {
	return t.orders
}

func (t *Target) addOrder(order Order) {
	if order.CastShadows {
		t.hasShadows = true
	}
	t.addOrderTo(t.currentShader, t.currentMaterial, order)
	if t.wireframes {
		wireframe := order
		wireframe.CastShadows = false
		t.addOrderTo(t.builtins.WireframeShader, t.currentMaterial, wireframe)
	}
}

// addOrderTo appends under the bucket for the given shader and material,
// creating either on first sight.
func (t *Target) addOrderTo(shader resources.Ref[*resources.Shader], material resources.Index, order Order) {
	var shaderBucket *OrdersByShader
	for _, bucket := range t.orders {
		if bucket.Shader.Equal(shader) {
			shaderBucket = bucket
			break
		}
	}
	if shaderBucket == nil {
		shaderBucket = &OrdersByShader{Shader: shader}
		t.orders = append(t.orders, shaderBucket)
	}

	var materialBucket *OrdersByMaterial
	for _, bucket := range shaderBucket.Materials {
		if bucket.Material == material {
			materialBucket = bucket
			break
		}
	}
	if materialBucket == nil {
		materialBucket = &OrdersByMaterial{Material: material}
		shaderBucket.Materials = append(shaderBucket.Materials, materialBucket)
	}

	materialBucket.Orders = append(materialBucket.Orders, order)
}
