package mesh

import (
	"errors"
	"math/rand"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mesh    *Mesh16
		wantErr bool
	}{
		{
			name: "valid",
			mesh: tri16(0, 0),
		},
		{
			name:    "index past shape vertices",
			mesh:    New(Position, make([]float32, 9), []uint16{0, 1, 3}, []Shape{{IndexCount: 3, VertexCount: 3}}),
			wantErr: true,
		},
		{
			name:    "partial triangle",
			mesh:    New(Position, make([]float32, 9), []uint16{0, 1}, []Shape{{IndexCount: 2, VertexCount: 3}}),
			wantErr: true,
		},
		{
			name:    "uncovered indices",
			mesh:    New(Position, make([]float32, 9), []uint16{0, 1, 2, 0, 1, 2}, []Shape{{IndexCount: 3, VertexCount: 3}}),
			wantErr: true,
		},
		{
			name:    "ragged vertex buffer",
			mesh:    New(Position, make([]float32, 10), []uint16{0, 1, 2}, []Shape{{IndexCount: 3, VertexCount: 3}}),
			wantErr: true,
		},
		{
			name: "overlapping vertex ranges",
			mesh: New(Position, make([]float32, 12), []uint16{0, 1, 2, 0, 1, 2}, []Shape{
				{IndexOffset: 0, IndexCount: 3, VertexOffset: 0, VertexCount: 3},
				{IndexOffset: 3, IndexCount: 3, VertexOffset: 1, VertexCount: 3},
			}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMesh) {
					t.Errorf("Validate() = %v, want ErrInvalidMesh", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestRemapMaterials(t *testing.T) {
	m := tri16(0, NoMaterial)
	m.RemapMaterials(func(id uint32) uint32 {
		if id == NoMaterial {
			return 9
		}
		return id
	})
	if got := m.Shapes()[0].MaterialID; got != 9 {
		t.Errorf("material = %d, want 9", got)
	}
}

// The full chain keeps every source triangle and yields valid 16-bit meshes.
func TestPipeline_ConservesTriangles(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const numTris = 500
	src, sub := stripSource(numTris, func(int) int { return rng.Intn(3) })

	raw, mats, _, err := BuildRaw(src, sub, Position|Normal|Texcoord0)
	if err != nil {
		t.Fatalf("BuildRaw failed: %v", err)
	}

	var final []*Mesh16
	for _, part := range SplitByMaterial(raw, mats) {
		part.RemoveDuplicateVertices(1e-5)
		for _, frag := range part.Force16BitIndices() {
			frag.ChangeAttributes(Position|Normal|Texcoord0, DefaultGenerators())
			final = append(final, frag)
		}
	}

	groups, err := MergeByTransparency(final, func(id uint32) bool { return id == 2 })
	if err != nil {
		t.Fatalf("MergeByTransparency failed: %v", err)
	}

	total := 0
	for _, g := range groups {
		if err := g.Mesh.Validate(); err != nil {
			t.Errorf("group Validate() = %v", err)
		}
		if g.Mesh.Attributes() != Position|Normal|Texcoord0 {
			t.Errorf("group attributes = %s", g.Mesh.Attributes())
		}
		for _, s := range g.Mesh.Shapes() {
			if (s.MaterialID == 2) != g.Transparent {
				t.Errorf("material %d in transparent=%v group", s.MaterialID, g.Transparent)
			}
		}
		g.Mesh.GenerateBoundingVolumes()
		total += g.Mesh.NumTriangles()
	}
	if total != numTris {
		t.Errorf("total triangles = %d, want %d", total, numTris)
	}
}
