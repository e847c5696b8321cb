package resources

import (
	"github.com/vireo3d/vireo/engine/renderer/uniform"
	"github.com/vireo3d/vireo/engine/renderer/vulkan"
)

// Builtins are the resources every target starts from: a white texture in
// slot 0, a white material, the primitive meshes and the stock shaders.
// The white texture must be created before anything else so the image
// uniform's default slot is never empty.
type Builtins struct {
	WhiteTexture Ref[*Texture]
	WhiteMat     Index

	CubeMesh    Index
	SphereMesh  Index
	SurfaceMesh Index
	QuadMesh    Index

	PhongShader     Ref[*Shader]
	ShadowShader    Ref[*Shader]
	FontShader      Ref[*Shader]
	WireframeShader Ref[*Shader]
	BlitShader      Ref[*Shader]
}

// ShaderLoader resolves a shader name to its compiled SPIR-V stages.
type ShaderLoader func(name string) (vulkan.SpirV, error)

type BuiltinOptions struct {
	ColorPass *vulkan.RenderPass
	DepthPass *vulkan.RenderPass
	Load      ShaderLoader
}

func NewBuiltins(device *vulkan.Device, layout *vulkan.ShaderLayout, images *uniform.ImageUniform, manager *Manager, options BuiltinOptions) (*Builtins, error) {
	b := &Builtins{}

	white, err := NewTexture(device, images, "builtin-white", []uint8{255, 255, 255, 255}, 1, 1)
	if err != nil {
		return nil, err
	}
	b.WhiteTexture = manager.AddTexture(white)

	material, err := NewMaterial(device, layout)
	if err != nil {
		return nil, err
	}
	b.WhiteMat = manager.AddMaterial(material)

	cubeVerts, cubeIdx := CubeGeometry()
	cube, err := NewMesh(device, cubeVerts, cubeIdx)
	if err != nil {
		return nil, err
	}
	b.CubeMesh = manager.AddMesh(cube)

	sphereVerts, sphereIdx := SphereGeometry(24, 32)
	sphere, err := NewMesh(device, sphereVerts, sphereIdx)
	if err != nil {
		return nil, err
	}
	b.SphereMesh = manager.AddMesh(sphere)

	surfaceVerts, surfaceIdx := SurfaceGeometry()
	surface, err := NewMesh(device, surfaceVerts, surfaceIdx)
	if err != nil {
		return nil, err
	}
	b.SurfaceMesh = manager.AddMesh(surface)

	quadVerts, quadIdx := QuadGeometry()
	quad, err := NewMesh(device, quadVerts, quadIdx)
	if err != nil {
		return nil, err
	}
	b.QuadMesh = manager.AddMesh(quad)

	shaders := []struct {
		target  *Ref[*Shader]
		name    string
		pass    *vulkan.RenderPass
		options vulkan.ShaderOptions
	}{
		{&b.PhongShader, "phong", options.ColorPass, vulkan.ShaderOptions{DepthTest: true, DepthWrite: true}},
		{&b.ShadowShader, "shadow", options.DepthPass, vulkan.ShaderOptions{FrontCull: true, DepthTest: true, DepthWrite: true}},
		{&b.FontShader, "font", options.ColorPass, vulkan.ShaderOptions{DepthTest: true}},
		{&b.WireframeShader, "wireframe", options.ColorPass, vulkan.ShaderOptions{Wireframe: true}},
		{&b.BlitShader, "blit", options.ColorPass, vulkan.ShaderOptions{}},
	}
	for _, s := range shaders {
		spirv, err := options.Load(s.name)
		if err != nil {
			return nil, err
		}
		shader, err := vulkan.NewShader(device, s.pass, layout, spirv, s.options)
		if err != nil {
			return nil, err
		}
		*s.target = manager.AddShader(NewShaderResource(shader, s.name))
	}

	return b, nil
}
