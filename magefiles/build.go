//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

var shaderNames = []string{"phong", "shadow", "font", "wireframe", "blit"}

// Compiles every GLSL shader pair into SPIR-V under assets/shaders.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the engine binary.
func (Build) Engine() error {
	mg.Deps(Build.Shaders)
	if _, err := executeCmd("go", withArgs("build", "-o", "vireo", "main.go"), withStream()); err != nil {
		return err
	}
	return nil
}

func buildShaders() error {
	for _, name := range shaderNames {
		for _, stage := range []string{"vert", "frag"} {
			src := filepath.Join("assets", "shaders", "src", fmt.Sprintf("%s.%s", name, stage))
			out := filepath.Join("assets", "shaders", fmt.Sprintf("%s.%s.spv", name, stage))
			if _, err := executeCmd("glslc", withArgs(src, "-o", out), withStream()); err != nil {
				return err
			}
		}
	}
	return nil
}
