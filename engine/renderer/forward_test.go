package renderer

import (
	"testing"

	"github.com/vireo3d/vireo/engine/math"
	"github.com/vireo3d/vireo/engine/resources"
)

// lightMatrices builds the projection and view a cascade would use for the
// given sphere, mirroring the shadow pass setup.
func lightMatrices(center math.Vec3, radius float32, lightDir math.Vec3) (proj, view math.Mat4) {
	lightDir = lightDir.Normalized()
	position := center.Sub(lightDir.MulScalar(radius))
	view = math.NewMat4LookRotation(lightDir, math.NewVec3Up()).
		Mul(math.NewMat4Translation(position.Negate()))
	diameter := radius * 2
	proj = math.NewMat4OrthographicCenter(diameter, diameter, 0, diameter)
	return proj, view
}

func texelOrigin(m math.Mat4, mapSize uint32) math.Vec4 {
	return m.MulVec4(math.Vec4{W: 1}).MulScalar(float32(mapSize) / 2)
}

func TestCastingOrderCount(t *testing.T) {
	tests := []struct {
		name   string
		orders []Order
		want   int
	}{
		{"empty", nil, 0},
		{"none casting", []Order{{}, {}}, 0},
		{"mixed", []Order{{CastShadows: true}, {}, {CastShadows: true}}, 2},
		{"all casting", []Order{{CastShadows: true}, {CastShadows: true}}, 2},
	}
	for _, tc := range tests {
		if got := castingOrderCount(tc.orders); got != tc.want {
			t.Errorf("%s: count = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestBindMaterialUnresolvableIndex(t *testing.T) {
	// A material index that no longer resolves must fail the bind without
	// recording anything, so the pass can count the bucket as skipped.
	f := &ForwardRenderer{manager: resources.NewManager()}

	if f.bindMaterial(nil, 42) {
		t.Fatal("bindMaterial resolved a never-added material")
	}
	if f.stats.MaterialsBound != 0 {
		t.Errorf("materials bound = %d, want 0", f.stats.MaterialsBound)
	}
}

func TestSnapToShadowTexelLandsOnWholeTexel(t *testing.T) {
	const mapSize = 2048

	centers := []math.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 3.17, Y: -1.4, Z: 12.9},
		{X: -100.05, Y: 55.5, Z: 0.003},
	}
	for _, center := range centers {
		proj, view := lightMatrices(center, 26.0, math.NewVec3(-1, -1, 1))
		snapped := snapToShadowTexel(proj, view, mapSize)

		origin := texelOrigin(snapped, mapSize)
		rounded := origin.Round()
		if math.Abs(origin.X-rounded.X) > 1e-2 || math.Abs(origin.Y-rounded.Y) > 1e-2 {
			t.Errorf("center %v: snapped origin %v off the texel grid", center, origin)
		}
	}
}

func TestSnapToShadowTexelMovesLessThanOneTexel(t *testing.T) {
	const mapSize = 1024

	proj, view := lightMatrices(math.NewVec3(7.3, 2.8, -4.1), 40.0, math.NewVec3(0.2, -1, 0.4))
	snapped := snapToShadowTexel(proj, view, mapSize)

	raw := texelOrigin(proj.Mul(view), mapSize)
	adjusted := texelOrigin(snapped, mapSize)
	if d := math.Abs(adjusted.X - raw.X); d > 0.5+1e-3 {
		t.Errorf("snap moved origin %f texels in x, want at most half", d)
	}
	if d := math.Abs(adjusted.Y - raw.Y); d > 0.5+1e-3 {
		t.Errorf("snap moved origin %f texels in y, want at most half", d)
	}
}

func TestSnapToShadowTexelIdempotent(t *testing.T) {
	const mapSize = 2048

	proj, view := lightMatrices(math.NewVec3(3.17, -1.4, 12.9), 26.0, math.NewVec3(-1, -1, 1))
	snapped := snapToShadowTexel(proj, view, mapSize)

	// A snapped matrix is already on the texel grid, so snapping it again
	// must be a numerical no-op.
	again := snapToShadowTexel(snapped, math.NewMat4Identity(), mapSize)
	if !again.Compare(snapped, 1e-4) {
		t.Errorf("second snap changed the matrix:\n%v\nvs\n%v", again, snapped)
	}
}

func TestSnapToShadowTexelStableUnderSubTexelMotion(t *testing.T) {
	const mapSize = 2048
	radius := float32(26.0)
	lightDir := math.NewVec3(-1, -1, 1).Normalized()

	// Cascade centers a fraction of a texel apart must snap to origins a
	// whole number of texels apart, and no more than one. Whole-texel shifts
	// keep shadow map samples aligned between frames; fractional shifts are
	// what shimmer.
	texelWorld := 2 * radius / mapSize
	center := math.NewVec3(5, 0, 5)
	nudged := center.Add(math.NewVec3(texelWorld*0.2, 0, texelWorld*0.2))

	projA, viewA := lightMatrices(center, radius, lightDir)
	projB, viewB := lightMatrices(nudged, radius, lightDir)

	originA := texelOrigin(snapToShadowTexel(projA, viewA, mapSize), mapSize)
	originB := texelOrigin(snapToShadowTexel(projB, viewB, mapSize), mapSize)

	delta := originA.Sub(originB)
	whole := delta.Round()
	if math.Abs(delta.X-whole.X) > 1e-2 || math.Abs(delta.Y-whole.Y) > 1e-2 {
		t.Errorf("snapped origins drifted by a fractional texel: %v", delta)
	}
	if math.Abs(whole.X) > 1 || math.Abs(whole.Y) > 1 {
		t.Errorf("sub-texel motion shifted the origin by %v texels", whole)
	}
}
