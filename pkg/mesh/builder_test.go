package mesh

import (
	"errors"
	"testing"
)

// quadSource returns two triangles sharing the edge 1-2.
func quadSource() (*Attrib, *SubMesh) {
	src := &Attrib{
		Positions: []float32{
			0, 0, 0,
			1, 0, 0,
			0, 1, 0,
			1, 1, 0,
		},
		Normals:   []float32{0, 0, 1},
		Texcoords: []float32{0, 0, 1, 0, 0, 1, 1, 1},
	}
	sub := &SubMesh{Name: "quad"}
	for _, p := range []int{0, 1, 2, 2, 1, 3} {
		sub.Corners = append(sub.Corners, Corner{Position: p, Normal: 0, Texcoord: p})
	}
	return src, sub
}

func TestBuildRaw_OneVertexPerCorner(t *testing.T) {
	src, sub := quadSource()

	m, mats, _, err := BuildRaw(src, sub, Position|Normal|Texcoord0)
	if err != nil {
		t.Fatalf("BuildRaw failed: %v", err)
	}

	if m.Attributes() != Position|Normal|Texcoord0 {
		t.Errorf("attributes = %s, want Position|Normal|Texcoord0", m.Attributes())
	}
	if m.NumVertices() != 6 {
		t.Errorf("NumVertices() = %d, want 6", m.NumVertices())
	}
	for i, idx := range m.Indices() {
		if idx != uint32(i) {
			t.Errorf("Indices()[%d] = %d, want %d", i, idx, i)
		}
	}
	if len(mats) != 2 || mats[0] != NoMaterial || mats[1] != NoMaterial {
		t.Errorf("materials = %v, want [NoMaterial NoMaterial]", mats)
	}
	if s := m.Shapes(); len(s) != 1 || s[0].MaterialID != NoMaterial || s[0].IndexCount != 6 {
		t.Errorf("shapes = %+v, want one NoMaterial shape of 6 indices", s)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestBuildRaw_FlipsTexcoordV(t *testing.T) {
	src, sub := quadSource()

	m, _, _, err := BuildRaw(src, sub, Position|Texcoord0)
	if err != nil {
		t.Fatalf("BuildRaw failed: %v", err)
	}

	// corner 2 references texcoord (0, 1)
	rec := m.vertex(2)
	if rec[3] != 0 || rec[4] != 0 {
		t.Errorf("texcoord = (%v, %v), want (0, 0)", rec[3], rec[4])
	}
	// corner 0 references texcoord (0, 0)
	rec = m.vertex(0)
	if rec[4] != 1 {
		t.Errorf("v = %v, want 1", rec[4])
	}
}

func TestBuildRaw_LayoutFromFirstCorner(t *testing.T) {
	tests := []struct {
		name      string
		requested Attributes
		normal    int
		texcoord  int
		want      Attributes
	}{
		{"all present", Position | Normal | Texcoord0, 0, 0, Position | Normal | Texcoord0},
		{"normals not requested", Position | Texcoord0, 0, 0, Position | Texcoord0},
		{"first corner lacks normal", Position | Normal | Texcoord0, -1, 0, Position | Texcoord0},
		{"first corner lacks texcoord", Position | Normal | Texcoord0, 0, -1, Position | Normal},
		{"position only", Position, 0, 0, Position},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, sub := quadSource()
			sub.Corners[0].Normal = tt.normal
			sub.Corners[0].Texcoord = tt.texcoord

			m, _, _, err := BuildRaw(src, sub, tt.requested)
			if err != nil {
				t.Fatalf("BuildRaw failed: %v", err)
			}
			if m.Attributes() != tt.want {
				t.Errorf("attributes = %s, want %s", m.Attributes(), tt.want)
			}
		})
	}
}

func TestBuildRaw_ZeroFillsLaterMissingChannels(t *testing.T) {
	src, sub := quadSource()
	sub.Corners[4].Normal = -1

	m, _, stats, err := BuildRaw(src, sub, Position|Normal)
	if err != nil {
		t.Fatalf("BuildRaw failed: %v", err)
	}
	if stats.MissingAttributes != 1 {
		t.Errorf("MissingAttributes = %d, want 1", stats.MissingAttributes)
	}
	rec := m.vertex(4)
	if rec[3] != 0 || rec[4] != 0 || rec[5] != 0 {
		t.Errorf("normal = %v, want zero", rec[3:6])
	}
}

func TestBuildRaw_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Attrib, *SubMesh)
		wantErr error
	}{
		{
			name:    "no positions",
			mutate:  func(a *Attrib, _ *SubMesh) { a.Positions = nil },
			wantErr: ErrEmptyGeometry,
		},
		{
			name:    "no triangles",
			mutate:  func(_ *Attrib, s *SubMesh) { s.Corners = s.Corners[:2] },
			wantErr: ErrSourceLoad,
		},
		{
			name:    "position out of range",
			mutate:  func(_ *Attrib, s *SubMesh) { s.Corners[3].Position = 4 },
			wantErr: ErrSourceLoad,
		},
		{
			name:    "normal out of range",
			mutate:  func(_ *Attrib, s *SubMesh) { s.Corners[1].Normal = 9 },
			wantErr: ErrSourceLoad,
		},
		{
			name:    "texcoord out of range",
			mutate:  func(_ *Attrib, s *SubMesh) { s.Corners[5].Texcoord = 4 },
			wantErr: ErrSourceLoad,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, sub := quadSource()
			tt.mutate(src, sub)
			_, _, _, err := BuildRaw(src, sub, Position|Normal|Texcoord0)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildRaw_Materials(t *testing.T) {
	src, sub := quadSource()
	sub.MaterialIDs = []int{3, -1}

	m, mats, _, err := BuildRaw(src, sub, Position)
	if err != nil {
		t.Fatalf("BuildRaw failed: %v", err)
	}
	if mats[0] != 3 || mats[1] != NoMaterial {
		t.Errorf("materials = %v, want [3 NoMaterial]", mats)
	}
	if m.Shapes()[0].MaterialID != 3 {
		t.Errorf("shape material = %d, want 3", m.Shapes()[0].MaterialID)
	}
	if !MixedMaterials(mats) {
		t.Error("MixedMaterials() = false, want true")
	}
	if MixedMaterials([]uint32{2, 2, 2}) {
		t.Error("MixedMaterials() = true for a single material")
	}
}
