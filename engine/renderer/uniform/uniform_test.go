package uniform

import (
	"testing"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/vireo3d/vireo/engine/renderer/vulkan"
)

var viewSlab [16]int

// fakeView fabricates distinct non-null view handles for slot bookkeeping
// tests. The handles are never dereferenced.
func fakeView(n int) vk.ImageView {
	return vk.ImageView(unsafe.Pointer(&viewSlab[n]))
}

func TestImageUniformAddReusesFreedSlot(t *testing.T) {
	u := &ImageUniform{capacity: 8}

	for i := 1; i <= 3; i++ {
		index, err := u.Add(fakeView(i))
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		if index != int32(i-1) {
			t.Fatalf("slot for view %d = %d, want %d", i, index, i-1)
		}
	}

	u.Remove(1)
	if got := u.Count(); got != 2 {
		t.Errorf("count after remove = %d, want 2", got)
	}

	// The freed slot is reused before the array grows.
	index, err := u.Add(fakeView(4))
	if err != nil {
		t.Fatalf("Add after remove: %v", err)
	}
	if index != 1 {
		t.Errorf("reused slot = %d, want 1", index)
	}

	// A further add appends past the surviving slots.
	index, err = u.Add(fakeView(5))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if index != 3 {
		t.Errorf("appended slot = %d, want 3", index)
	}
	if got := u.Count(); got != 4 {
		t.Errorf("count = %d, want 4", got)
	}
}

func TestImageUniformRemoveKeepsIndicesStable(t *testing.T) {
	u := &ImageUniform{capacity: 8}

	views := make([]vk.ImageView, 4)
	for i := range views {
		views[i] = fakeView(i + 1)
		if _, err := u.Add(views[i]); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	u.Remove(0)
	u.Remove(2)

	// Survivors must still sit at their original indices.
	if u.views[1] != views[1] || u.views[3] != views[3] {
		t.Errorf("surviving slots moved: %v", u.views)
	}
	if u.views[0] != vk.NullImageView || u.views[2] != vk.NullImageView {
		t.Errorf("removed slots not tombstoned: %v", u.views)
	}
}

func TestImageUniformRemoveOutOfRange(t *testing.T) {
	u := &ImageUniform{capacity: 4}
	if _, err := u.Add(fakeView(1)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	u.Remove(-1)
	u.Remove(5)

	if got := u.Count(); got != 1 {
		t.Errorf("count after out-of-range removes = %d, want 1", got)
	}
}

func TestImageUniformAddFull(t *testing.T) {
	u := &ImageUniform{capacity: 2}

	for i := 1; i <= 2; i++ {
		if _, err := u.Add(fakeView(i)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if _, err := u.Add(fakeView(3)); err == nil {
		t.Error("Add beyond capacity should fail")
	}
}

func TestImageUniformFailedAddLeavesCleanState(t *testing.T) {
	u := &ImageUniform{capacity: 1}

	if _, err := u.Add(fakeView(1)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	u.shouldUpdate = false

	if _, err := u.Add(fakeView(2)); err == nil {
		t.Fatal("Add beyond capacity should fail")
	}
	// A rejected add changes nothing, so it must not schedule a flush.
	if u.shouldUpdate {
		t.Error("failed Add marked the set dirty")
	}
}

func TestSamplerIndexOptions(t *testing.T) {
	tests := []struct {
		name  string
		index SamplerIndex
		want  vulkan.SamplerOptions
	}{
		{
			"default",
			0,
			vulkan.SamplerOptions{Anisotropy: 4},
		},
		{
			"nearest clamp",
			SamplerNearest | SamplerClamp,
			vulkan.SamplerOptions{
				Anisotropy: 4,
				Filter:     vulkan.SamplerFilterNearest,
				Address:    vulkan.SamplerAddressClamp,
			},
		},
		{
			"no mipmaps",
			SamplerNoMipmaps,
			vulkan.SamplerOptions{
				Anisotropy: 4,
				Mipmaps:    vulkan.SamplerMipmapsDisabled,
			},
		},
	}
	for _, tc := range tests {
		if got := tc.index.Options(4); got != tc.want {
			t.Errorf("%s: options = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}
