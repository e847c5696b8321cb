package resources

import (
	"fmt"

	"github.com/fzipp/bmfont"

	"github.com/vireo3d/vireo/engine/math"
	"github.com/vireo3d/vireo/engine/renderer/uniform"
	"github.com/vireo3d/vireo/engine/renderer/vulkan"
)

// Glyph is one renderable character: a quad mesh with atlas texcoords plus
// the pen advance, both in em units.
type Glyph struct {
	Mesh    Index
	Advance float32
}

// Font is a bitmap font built from a BMFont descriptor and its atlas page.
// Glyph quads are registered as regular meshes so text draws flow through
// the same order pipeline as any other geometry.
type Font struct {
	texture    *Texture
	glyphs     map[rune]Glyph
	kernings   map[[2]rune]float32
	lineHeight float32
}

// NewFont uploads the atlas page and builds one quad mesh per glyph.
// pagePixels is the decoded RGBA data of the descriptor's first page.
func NewFont(device *vulkan.Device, manager *Manager, images *uniform.ImageUniform, desc *bmfont.Descriptor, pagePixels []uint8, pageWidth, pageHeight uint32) (*Font, error) {
	if len(desc.Chars) == 0 {
		return nil, fmt.Errorf("font %q has no characters", desc.Info.Face)
	}

	texture, err := NewTexture(device, images, "font-"+desc.Info.Face, pagePixels, pageWidth, pageHeight)
	if err != nil {
		return nil, err
	}

	f := &Font{
		texture:    texture,
		glyphs:     make(map[rune]Glyph, len(desc.Chars)),
		kernings:   make(map[[2]rune]float32, len(desc.Kerning)),
		lineHeight: float32(desc.Common.LineHeight) / float32(desc.Info.Size),
	}

	em := float32(desc.Info.Size)
	atlasW := float32(desc.Common.ScaleW)
	atlasH := float32(desc.Common.ScaleH)
	baseline := float32(desc.Common.Base)

	for r, c := range desc.Chars {
		u0 := float32(c.X) / atlasW
		v0 := float32(c.Y) / atlasH
		u1 := float32(c.X+c.Width) / atlasW
		v1 := float32(c.Y+c.Height) / atlasH

		x0 := float32(c.XOffset) / em
		x1 := float32(c.XOffset+c.Width) / em
		y0 := (baseline - float32(c.YOffset)) / em
		y1 := (baseline - float32(c.YOffset+c.Height)) / em

		vertices := []math.Vertex3D{
			{Position: math.Vec3{X: x0, Y: y1}, Normal: math.Vec3{Z: 1}, Texcoord: math.Vec2{X: u0, Y: v1}, Colour: math.Vec4{X: 1, Y: 1, Z: 1, W: 1}},
			{Position: math.Vec3{X: x1, Y: y1}, Normal: math.Vec3{Z: 1}, Texcoord: math.Vec2{X: u1, Y: v1}, Colour: math.Vec4{X: 1, Y: 1, Z: 1, W: 1}},
			{Position: math.Vec3{X: x1, Y: y0}, Normal: math.Vec3{Z: 1}, Texcoord: math.Vec2{X: u1, Y: v0}, Colour: math.Vec4{X: 1, Y: 1, Z: 1, W: 1}},
			{Position: math.Vec3{X: x0, Y: y0}, Normal: math.Vec3{Z: 1}, Texcoord: math.Vec2{X: u0, Y: v0}, Colour: math.Vec4{X: 1, Y: 1, Z: 1, W: 1}},
		}
		mesh, err := NewMesh(device, vertices, []uint32{0, 1, 2, 0, 2, 3})
		if err != nil {
			f.texture.Destroy()
			return nil, err
		}
		f.glyphs[r] = Glyph{
			Mesh:    manager.AddMesh(mesh),
			Advance: float32(c.XAdvance) / em,
		}
	}

	for pair, k := range desc.Kerning {
		f.kernings[[2]rune{pair.First, pair.Second}] = float32(k.Amount) / em
	}

	return f, nil
}

// Glyph resolves the character, falling back to '?' for glyphs the font
// does not carry.
func (f *Font) Glyph(r rune) (Glyph, bool) {
	if g, ok := f.glyphs[r]; ok {
		return g, true
	}
	g, ok := f.glyphs['?']
	return g, ok
}

// Kerning is the extra advance between a character pair, zero when the
// font defines none.
func (f *Font) Kerning(prev, next rune) float32 {
	return f.kernings[[2]rune{prev, next}]
}

// LineHeight is the vertical pen advance between lines, in em units.
func (f *Font) LineHeight() float32 {
	return f.lineHeight
}

// TextureSlot is the image slot of the atlas page.
func (f *Font) TextureSlot() int32 {
	return f.texture.Slot()
}

func (f *Font) Destroy() {
	f.texture.Destroy()
}
