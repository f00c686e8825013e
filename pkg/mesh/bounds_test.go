package mesh

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestGenerateBoundingVolumes(t *testing.T) {
	m := New(Position, []float32{
		0, 0, 0, 1, 0, 0, 0, 1, 0,
		5, 5, 5, 6, 5, 5, 5, -2, 7,
	}, []uint16{0, 1, 2, 0, 1, 2}, []Shape{
		{IndexOffset: 0, IndexCount: 3, VertexOffset: 0, VertexCount: 3},
		{IndexOffset: 3, IndexCount: 3, VertexOffset: 3, VertexCount: 3},
	})

	bv := m.GenerateBoundingVolumes()

	if m.Volumes() != bv {
		t.Error("Volumes() does not return the generated volumes")
	}
	want := AABB{Min: mgl32.Vec3{0, -2, 0}, Max: mgl32.Vec3{6, 5, 7}}
	if bv.Bounds != want {
		t.Errorf("Bounds = %+v, want %+v", bv.Bounds, want)
	}
	if len(bv.Shapes) != 2 {
		t.Fatalf("got %d shape boxes, want 2", len(bv.Shapes))
	}
	if want := (AABB{Max: mgl32.Vec3{1, 1, 0}}); bv.Shapes[0] != want {
		t.Errorf("Shapes[0] = %+v, want %+v", bv.Shapes[0], want)
	}
	if want := (AABB{Min: mgl32.Vec3{5, -2, 5}, Max: mgl32.Vec3{6, 5, 7}}); bv.Shapes[1] != want {
		t.Errorf("Shapes[1] = %+v, want %+v", bv.Shapes[1], want)
	}
}

func TestGenerateBoundingVolumes_Tree(t *testing.T) {
	m := soupMesh(7)

	bv := m.GenerateBoundingVolumes()

	if len(bv.Nodes) != 2*7-1 {
		t.Fatalf("got %d nodes, want 13", len(bv.Nodes))
	}
	root := bv.Nodes[0]
	if root.Leaf() || int(-root.Index) != len(bv.Nodes) {
		t.Errorf("root index = %d, want %d", root.Index, -len(bv.Nodes))
	}
	if root.Bounds != bv.Bounds {
		t.Errorf("root bounds = %+v, want %+v", root.Bounds, bv.Bounds)
	}

	seen := make(map[int32]bool)
	for _, n := range bv.Nodes {
		if n.Leaf() {
			seen[n.Index] = true
		}
	}
	if len(seen) != 7 {
		t.Errorf("leaves reference %d triangles, want 7", len(seen))
	}
}

func TestGenerateBoundingVolumes_SinglePoint(t *testing.T) {
	m := New(Position, []float32{2, 3, 4, 2, 3, 4, 2, 3, 4}, []uint32{0, 1, 2}, []Shape{{IndexCount: 3, VertexCount: 3}})

	bv := m.GenerateBoundingVolumes()

	p := mgl32.Vec3{2, 3, 4}
	if bv.Bounds.Min != p || bv.Bounds.Max != p {
		t.Errorf("Bounds = %+v, want a point at %v", bv.Bounds, p)
	}
	if len(bv.Nodes) != 1 || !bv.Nodes[0].Leaf() {
		t.Errorf("nodes = %+v, want one leaf", bv.Nodes)
	}
}

func TestSwapAxes(t *testing.T) {
	m := New(Position|Normal, []float32{1, 2, 3, 4, 5, 6}, []uint32{}, nil)
	m.GenerateBoundingVolumes()

	m.SwapAxes(1, 2)

	want := []float32{1, 3, 2, 4, 6, 5}
	for i, v := range m.Vertices() {
		if v != want[i] {
			t.Fatalf("Vertices() = %v, want %v", m.Vertices(), want)
		}
	}
	if m.Volumes() != nil {
		t.Error("volumes survived an axis swap")
	}
}

func TestBoundingVolumes_Validate(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(bv *BoundingVolumes)
	}{
		{"missing shape box", func(bv *BoundingVolumes) { bv.Shapes = nil }},
		{"missing node", func(bv *BoundingVolumes) { bv.Nodes = bv.Nodes[:len(bv.Nodes)-1] }},
		{"leaf out of range", func(bv *BoundingVolumes) {
			for i := range bv.Nodes {
				if bv.Nodes[i].Leaf() {
					bv.Nodes[i].Index = 99
					return
				}
			}
		}},
		{"skip past the end", func(bv *BoundingVolumes) { bv.Nodes[0].Index = -100 }},
	}

	if err := soupMesh(7).GenerateBoundingVolumes().Validate(1, 7); err != nil {
		t.Fatalf("generated volumes are invalid: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := soupMesh(7)
			tt.corrupt(m.GenerateBoundingVolumes())
			if err := m.Validate(); !errors.Is(err, ErrInvalidMesh) {
				t.Errorf("expected ErrInvalidMesh, got %v", err)
			}
		})
	}
}

func TestAABB_CenterSize(t *testing.T) {
	b := AABB{Min: mgl32.Vec3{-1, 0, 2}, Max: mgl32.Vec3{3, 4, 2}}
	if c := b.Center(); c != (mgl32.Vec3{1, 2, 2}) {
		t.Errorf("Center() = %v", c)
	}
	if s := b.Size(); s != (mgl32.Vec3{4, 4, 0}) {
		t.Errorf("Size() = %v", s)
	}
}
