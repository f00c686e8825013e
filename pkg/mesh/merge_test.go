package mesh

import (
	"errors"
	"testing"
)

// tri16 returns a one-triangle 16-bit mesh offset along x.
func tri16(x float32, material uint32) *Mesh16 {
	return New(Position, []float32{
		x, 0, 0,
		x + 1, 0, 0,
		x, 1, 0,
	}, []uint16{0, 1, 2}, []Shape{{IndexCount: 3, VertexCount: 3, MaterialID: material}})
}

func TestMergeShapes(t *testing.T) {
	merged, err := MergeShapes([]*Mesh16{tri16(0, 1), tri16(10, 2), tri16(20, 3)})
	if err != nil {
		t.Fatalf("MergeShapes failed: %v", err)
	}

	shapes := merged.Shapes()
	if len(shapes) != 3 {
		t.Fatalf("got %d shapes, want 3", len(shapes))
	}
	for i, s := range shapes {
		if s.IndexOffset != uint32(3*i) || s.VertexOffset != uint32(3*i) {
			t.Errorf("shape %d offsets = (%d, %d), want (%d, %d)", i, s.IndexOffset, s.VertexOffset, 3*i, 3*i)
		}
		if s.MaterialID != uint32(i+1) {
			t.Errorf("shape %d material = %d, want %d", i, s.MaterialID, i+1)
		}
	}
	// indices stay shape relative
	for i, idx := range merged.Indices() {
		if idx != uint16(i%3) {
			t.Errorf("Indices()[%d] = %d, want %d", i, idx, i%3)
		}
	}
	if x := merged.vertex(6)[0]; x != 20 {
		t.Errorf("vertex 6 x = %v, want 20", x)
	}
	if err := merged.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestMergeShapes_Errors(t *testing.T) {
	if _, err := MergeShapes(nil); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("MergeShapes(nil) error = %v, want ErrNoGeometry", err)
	}

	other := New(Position|Normal, make([]float32, 18), []uint16{0, 1, 2}, []Shape{{IndexCount: 3, VertexCount: 3}})
	if _, err := MergeShapes([]*Mesh16{tri16(0, 0), other}); !errors.Is(err, ErrInvalidMesh) {
		t.Errorf("layout mismatch error = %v, want ErrInvalidMesh", err)
	}
}

func TestMergeByTransparency(t *testing.T) {
	transparent := func(id uint32) bool { return id == 2 }
	meshes := []*Mesh16{tri16(0, 1), tri16(1, 2), tri16(2, 1), tri16(3, 2), tri16(4, 3)}

	groups, err := MergeByTransparency(meshes, transparent)
	if err != nil {
		t.Fatalf("MergeByTransparency failed: %v", err)
	}

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Transparent || !groups[1].Transparent {
		t.Fatalf("group order = (%v, %v), want (false, true)", groups[0].Transparent, groups[1].Transparent)
	}
	var opaqueMats []uint32
	for _, s := range groups[0].Mesh.Shapes() {
		opaqueMats = append(opaqueMats, s.MaterialID)
	}
	if len(opaqueMats) != 3 || opaqueMats[0] != 1 || opaqueMats[1] != 1 || opaqueMats[2] != 3 {
		t.Errorf("opaque materials = %v, want [1 1 3]", opaqueMats)
	}
	if got := groups[1].Mesh.NumTriangles(); got != 2 {
		t.Errorf("transparent triangles = %d, want 2", got)
	}
}

func TestMergeByTransparency_OmitsEmptyGroup(t *testing.T) {
	groups, err := MergeByTransparency([]*Mesh16{tri16(0, 1)}, func(uint32) bool { return false })
	if err != nil {
		t.Fatalf("MergeByTransparency failed: %v", err)
	}
	if len(groups) != 1 || groups[0].Transparent {
		t.Errorf("groups = %+v, want one opaque group", groups)
	}

	if _, err := MergeByTransparency(nil, func(uint32) bool { return false }); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("error = %v, want ErrNoGeometry", err)
	}
}
