package assets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestShaderDirLoad(t *testing.T) {
	dir := t.TempDir()
	vert := []byte{0x03, 0x02, 0x23, 0x07}
	frag := []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}
	if err := os.WriteFile(filepath.Join(dir, "phong.vert.spv"), vert, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "phong.frag.spv"), frag, 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewShaderDir(dir)
	spirv, err := loader.Load("phong")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(spirv.Vertex) != len(vert) || len(spirv.Fragment) != len(frag) {
		t.Errorf("stage sizes = %d/%d, want %d/%d", len(spirv.Vertex), len(spirv.Fragment), len(vert), len(frag))
	}

	if _, err := loader.Load("missing"); err == nil {
		t.Error("Load of a missing shader should fail")
	}
}

func TestBuiltinShaderSourcesShip(t *testing.T) {
	// Every builtin pipeline needs a GLSL stage pair under the source tree
	// for the shader build to compile.
	srcDir := filepath.Join("..", "..", "assets", "shaders", "src")
	for _, name := range []string{"phong", "shadow", "font", "wireframe", "blit"} {
		for _, stage := range []string{"vert", "frag"} {
			path := filepath.Join(srcDir, name+"."+stage)
			if _, err := os.Stat(path); err != nil {
				t.Errorf("missing shader source %s: %v", path, err)
			}
		}
	}
}

func TestShaderName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"assets/shaders/phong.vert.spv", "phong"},
		{"assets/shaders/phong.frag.spv", "phong"},
		{"/abs/path/wireframe.frag.spv", "wireframe"},
		{"assets/shaders/phong.vert", ""},
		{"assets/shaders/notes.txt", ""},
	}
	for _, tc := range tests {
		if got := ShaderName(tc.path); got != tc.want {
			t.Errorf("ShaderName(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
