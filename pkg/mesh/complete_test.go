package mesh

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func singleTriangle() *Mesh32 {
	return New(Position, []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}, []uint32{0, 1, 2}, []Shape{{IndexCount: 3, VertexCount: 3}})
}

func TestChangeAttributes_GeneratesFlatNormals(t *testing.T) {
	m := singleTriangle()

	stats := m.ChangeAttributes(Position|Normal, DefaultGenerators())

	if m.Attributes() != Position|Normal {
		t.Fatalf("attributes = %s, want Position|Normal", m.Attributes())
	}
	if stats.Generated[Normal] != 3 {
		t.Errorf("Generated[Normal] = %d, want 3", stats.Generated[Normal])
	}
	for v := 0; v < 3; v++ {
		rec := m.vertex(v)
		n := mgl32.Vec3{rec[3], rec[4], rec[5]}
		if !n.ApproxEqual(mgl32.Vec3{0, 0, 1}) {
			t.Errorf("vertex %d normal = %v, want (0, 0, 1)", v, n)
		}
		if math.Abs(float64(n.Len())-1) > 1e-6 {
			t.Errorf("vertex %d normal length = %v, want 1", v, n.Len())
		}
	}
	// positions survive the relayout
	if rec := m.vertex(1); rec[0] != 1 || rec[1] != 0 || rec[2] != 0 {
		t.Errorf("vertex 1 position = %v, want (1, 0, 0)", rec[:3])
	}
}

func TestChangeAttributes_ConstantTexcoord(t *testing.T) {
	m := singleTriangle()

	m.ChangeAttributes(Position|Texcoord0, []VertexGenerator{NewConstantGenerator(Texcoord0, 0.25, 0.75)})

	for v := 0; v < 3; v++ {
		rec := m.vertex(v)
		if rec[3] != 0.25 || rec[4] != 0.75 {
			t.Errorf("vertex %d texcoord = %v, want (0.25, 0.75)", v, rec[3:5])
		}
	}
}

func TestChangeAttributes_RemovesChannels(t *testing.T) {
	src, sub := quadSource()
	m, _, _, err := BuildRaw(src, sub, Position|Normal|Texcoord0)
	if err != nil {
		t.Fatalf("BuildRaw failed: %v", err)
	}

	stats := m.ChangeAttributes(Position|Texcoord0, nil)

	if m.Attributes() != Position|Texcoord0 {
		t.Fatalf("attributes = %s, want Position|Texcoord0", m.Attributes())
	}
	if stats.Removed[Normal] != 6 {
		t.Errorf("Removed[Normal] = %d, want 6", stats.Removed[Normal])
	}
	if len(m.Vertices()) != 6*5 {
		t.Errorf("vertex buffer length = %d, want 30", len(m.Vertices()))
	}
	// corner 1 is position (1, 0, 0), texcoord (1, 1-0)
	if rec := m.vertex(1); rec[0] != 1 || rec[3] != 1 || rec[4] != 1 {
		t.Errorf("vertex 1 = %v, want [1 0 0 1 1]", rec)
	}
}

func TestChangeAttributes_UnfilledStaysZero(t *testing.T) {
	m := singleTriangle()

	stats := m.ChangeAttributes(Position|Normal|Texcoord0, []VertexGenerator{FlatNormalGenerator{}})

	if stats.Unfilled[Texcoord0] != 3 {
		t.Errorf("Unfilled[Texcoord0] = %d, want 3", stats.Unfilled[Texcoord0])
	}
	if stats.Generated[Normal] != 3 {
		t.Errorf("Generated[Normal] = %d, want 3", stats.Generated[Normal])
	}
	for v := 0; v < 3; v++ {
		if rec := m.vertex(v); rec[6] != 0 || rec[7] != 0 {
			t.Errorf("vertex %d texcoord = %v, want zero", v, rec[6:8])
		}
	}
}

func TestChangeAttributes_SameLayoutIsNoop(t *testing.T) {
	m := singleTriangle()
	before := m.Vertices()

	stats := m.ChangeAttributes(Position, DefaultGenerators())

	if len(stats.Generated)+len(stats.Removed)+len(stats.Unfilled) != 0 {
		t.Errorf("stats = %+v, want empty", stats)
	}
	if &m.Vertices()[0] != &before[0] {
		t.Error("vertex buffer was reallocated")
	}
}

func TestFaceNormal_Degenerate(t *testing.T) {
	p := mgl32.Vec3{1, 2, 3}
	got := FaceNormal(p, p, mgl32.Vec3{2, 4, 6})
	if got != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("FaceNormal() = %v, want (0, 1, 0)", got)
	}
}
