package renderer

import (
	"testing"

	"github.com/vireo3d/vireo/engine/math"
	"github.com/vireo3d/vireo/engine/resources"
)

// testBuiltins builds a builtin set without a device. Bucket grouping only
// compares handles, so nil-backed shaders and empty meshes suffice.
func testBuiltins() (*resources.Manager, *resources.Builtins) {
	m := resources.NewManager()
	b := &resources.Builtins{
		WhiteTexture:    m.AddTexture(&resources.Texture{}),
		WhiteMat:        m.AddMaterial(&resources.Material{}),
		CubeMesh:        m.AddMesh(&resources.Mesh{}),
		SphereMesh:      m.AddMesh(&resources.Mesh{}),
		SurfaceMesh:     m.AddMesh(&resources.Mesh{}),
		QuadMesh:        m.AddMesh(&resources.Mesh{}),
		PhongShader:     m.AddShader(resources.NewShaderResource(nil, "phong")),
		ShadowShader:    m.AddShader(resources.NewShaderResource(nil, "shadow")),
		FontShader:      m.AddShader(resources.NewShaderResource(nil, "font")),
		WireframeShader: m.AddShader(resources.NewShaderResource(nil, "wireframe")),
		BlitShader:      m.AddShader(resources.NewShaderResource(nil, "blit")),
	}
	return m, b
}

func TestTargetGroupsByShaderThenMaterial(t *testing.T) {
	manager, builtins := testBuiltins()
	target := NewTarget(builtins)

	materials := []resources.Index{
		manager.AddMaterial(&resources.Material{}),
		manager.AddMaterial(&resources.Material{}),
		manager.AddMaterial(&resources.Material{}),
	}
	for _, material := range materials {
		target.SetMaterial(material)
		target.DrawCube(math.TransformIdentity())
	}
	// Revisiting the first material must land in its existing bucket, not
	// open a new one.
	target.SetMaterial(materials[0])
	target.DrawSphere(math.TransformIdentity())

	orders := target.Orders()
	if len(orders) != 1 {
		t.Fatalf("shader buckets = %d, want 1", len(orders))
	}
	if !orders[0].Shader.Equal(builtins.PhongShader) {
		t.Error("bucket keyed to wrong shader")
	}

	buckets := orders[0].Materials
	if len(buckets) != 3 {
		t.Fatalf("material buckets = %d, want 3", len(buckets))
	}
	for i, bucket := range buckets {
		if bucket.Material != materials[i] {
			t.Errorf("bucket %d keyed to material %d, want %d", i, bucket.Material, materials[i])
		}
	}
	if got := len(buckets[0].Orders); got != 2 {
		t.Errorf("first bucket orders = %d, want 2", got)
	}
	if got := len(buckets[1].Orders); got != 1 {
		t.Errorf("second bucket orders = %d, want 1", got)
	}
	if buckets[0].Orders[1].Mesh != builtins.SphereMesh {
		t.Error("revisited bucket did not receive the late order")
	}
}

func TestTargetShaderBucketsFirstSeenOrder(t *testing.T) {
	_, builtins := testBuiltins()
	target := NewTarget(builtins)

	target.DrawCube(math.TransformIdentity())
	target.SetShader(builtins.BlitShader)
	target.DrawCube(math.TransformIdentity())
	target.SetShader(builtins.PhongShader)
	target.DrawCube(math.TransformIdentity())

	orders := target.Orders()
	if len(orders) != 2 {
		t.Fatalf("shader buckets = %d, want 2", len(orders))
	}
	if !orders[0].Shader.Equal(builtins.PhongShader) || !orders[1].Shader.Equal(builtins.BlitShader) {
		t.Error("buckets not in first-seen order")
	}
	if got := len(orders[0].Materials[0].Orders); got != 2 {
		t.Errorf("phong orders = %d, want 2", got)
	}
}

func TestTargetWireframeDuplicatesOrders(t *testing.T) {
	_, builtins := testBuiltins()
	target := NewTarget(builtins)

	target.SetWireframes(true)
	target.DrawCube(math.TransformIdentity())

	orders := target.Orders()
	if len(orders) != 2 {
		t.Fatalf("shader buckets = %d, want 2", len(orders))
	}
	if !orders[1].Shader.Equal(builtins.WireframeShader) {
		t.Fatal("second bucket is not the wireframe shader")
	}

	solid := orders[0].Materials[0].Orders[0]
	wire := orders[1].Materials[0].Orders[0]
	if !solid.CastShadows {
		t.Error("solid order should cast shadows")
	}
	if wire.CastShadows {
		t.Error("wireframe duplicate must never cast shadows")
	}
	if wire.Mesh != solid.Mesh {
		t.Error("wireframe duplicate draws a different mesh")
	}
}

func TestTargetHasShadowsSticky(t *testing.T) {
	_, builtins := testBuiltins()
	target := NewTarget(builtins)

	target.SetCastShadows(false)
	target.DrawCube(math.TransformIdentity())
	if target.HasShadows() {
		t.Error("non-casting order marked the frame shadowed")
	}

	target.SetCastShadows(true)
	target.DrawCube(math.TransformIdentity())
	target.SetCastShadows(false)
	target.DrawCube(math.TransformIdentity())
	if !target.HasShadows() {
		t.Error("shadow flag did not stick for the frame")
	}

	target.Clear()
	if target.HasShadows() {
		t.Error("Clear did not drop the shadow flag")
	}
}

func TestTargetLightsCap(t *testing.T) {
	_, builtins := testBuiltins()
	target := NewTarget(builtins)

	for i := 0; i < MaxLights+2; i++ {
		target.AddDirectionalLight(math.NewVec3(0, -2, 0), math.NewVec4(1, 1, 1, 1))
	}

	lights := target.Lights()
	for i, light := range lights {
		if !light.Coords.Compare(math.NewVec3(0, -1, 0), 1e-5) {
			t.Errorf("light %d direction = %v, want normalized (0,-1,0)", i, light.Coords)
		}
	}
}

func TestTargetClearRestoresDefaults(t *testing.T) {
	_, builtins := testBuiltins()
	target := NewTarget(builtins)

	target.SetClear(1, 0, 0, 1)
	target.SetShadowBias(0.1)
	target.SetShader(builtins.BlitShader)
	target.DrawCube(math.TransformIdentity())

	target.Clear()
	if got := target.Orders(); len(got) != 0 {
		t.Errorf("orders after Clear = %d, want 0", len(got))
	}
	if got := target.ClearColour(); got != [4]float32{0, 0, 0, 1} {
		t.Errorf("clear colour = %v, want default", got)
	}
	if got := target.ShadowBias(); got != defaultShadowBias {
		t.Errorf("shadow bias = %f, want %f", got, defaultShadowBias)
	}

	// State setters rebound to the builtins: the next draw uses phong again.
	target.DrawCube(math.TransformIdentity())
	if !target.Orders()[0].Shader.Equal(builtins.PhongShader) {
		t.Error("Clear did not rebind the builtin shader")
	}
}

func TestTargetConfiguredShadowBiasSurvivesClear(t *testing.T) {
	_, builtins := testBuiltins()
	target := NewTarget(builtins)
	target.SetDefaultShadowBias(0.01)

	// A per-frame override still clears back to the configured value, not
	// the compiled-in one.
	target.SetShadowBias(0.1)
	target.Clear()
	if got := target.ShadowBias(); got != 0.01 {
		t.Errorf("shadow bias after Clear = %f, want 0.01", got)
	}
}

func TestTargetBlitFramebuffer(t *testing.T) {
	manager, builtins := testBuiltins()
	target := NewTarget(builtins)

	fb := manager.AddFramebuffer(&resources.Framebuffer{})
	target.BlitFramebuffer(fb)

	orders := target.Orders()
	if len(orders) != 1 || !orders[0].Shader.Equal(builtins.BlitShader) {
		t.Fatal("blit order not bucketed under the blit shader")
	}
	order := orders[0].Materials[0].Orders[0]
	if order.Framebuffer != fb {
		t.Error("blit order lost the framebuffer handle")
	}
	if order.Mesh != builtins.SurfaceMesh {
		t.Error("blit order should draw the surface mesh")
	}
	if order.CastShadows {
		t.Error("blit order must not cast shadows")
	}
}

func TestTargetDrawTextWithoutFont(t *testing.T) {
	_, builtins := testBuiltins()
	target := NewTarget(builtins)

	target.DrawText("hello", math.TransformIdentity())
	if got := target.Orders(); len(got) != 0 {
		t.Errorf("orders without a font = %d, want 0", len(got))
	}
}
