package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fzipp/bmfont"

	"github.com/vireo3d/vireo/engine/renderer/vulkan"
)

// ShaderDir resolves shader names to compiled SPIR-V stage pairs on disk,
// laid out as <dir>/<name>.vert.spv and <dir>/<name>.frag.spv.
type ShaderDir struct {
	dir string
}

func NewShaderDir(dir string) *ShaderDir {
	return &ShaderDir{dir: dir}
}

func (s *ShaderDir) Load(name string) (vulkan.SpirV, error) {
	vert, err := os.ReadFile(filepath.Join(s.dir, name+".vert.spv"))
	if err != nil {
		return vulkan.SpirV{}, fmt.Errorf("failed to read vertex stage of shader %q: %w", name, err)
	}
	frag, err := os.ReadFile(filepath.Join(s.dir, name+".frag.spv"))
	if err != nil {
		return vulkan.SpirV{}, fmt.Errorf("failed to read fragment stage of shader %q: %w", name, err)
	}
	return vulkan.SpirV{Vertex: vert, Fragment: frag}, nil
}

func (s *ShaderDir) Dir() string {
	return s.dir
}

// ShaderName maps a watched file path back to the shader it belongs to, or
// "" when the path is not a SPIR-V stage.
func ShaderName(path string) string {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".spv") {
		return ""
	}
	base = strings.TrimSuffix(base, ".spv")
	base = strings.TrimSuffix(base, ".vert")
	base = strings.TrimSuffix(base, ".frag")
	return base
}

// LoadFontDescriptor reads a BMFont .fnt file. Page images are decoded by
// the caller; only the descriptor is parsed here.
func LoadFontDescriptor(path string) (*bmfont.Descriptor, error) {
	desc, err := bmfont.LoadDescriptor(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load font descriptor %q: %w", path, err)
	}
	return desc, nil
}
