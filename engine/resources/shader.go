package resources

import (
	"github.com/vireo3d/vireo/engine/renderer/vulkan"
)

// Shader wraps a pipeline together with the name it was loaded under, so the
// hot-reload watcher can map a changed file back to the pipeline to rebuild.
type Shader struct {
	shader *vulkan.Shader
	name   string
}

func NewShaderResource(shader *vulkan.Shader, name string) *Shader {
	return &Shader{shader: shader, name: name}
}

func (s *Shader) Pipeline() *vulkan.Shader {
	return s.shader
}

func (s *Shader) Name() string {
	return s.name
}

// Recreate rebuilds the pipeline in place from new bytecode. Handles held by
// collected orders stay valid because the wrapper identity is unchanged.
func (s *Shader) Recreate(spirv vulkan.SpirV) error {
	return s.shader.Recreate(spirv)
}

func (s *Shader) Destroy() {
	if s.shader != nil {
		s.shader.Destroy()
	}
}
