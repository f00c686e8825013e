package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GenerateContext exposes a mesh to a VertexGenerator. Vertices is laid
// out with Attributes; the channel being generated is zero-filled.
type GenerateContext struct {
	Attributes Attributes
	Vertices   []float32
	// Triangles holds absolute vertex record indices.
	Triangles [][3]int
}

// set writes value into channel ch of vertex v.
func (c *GenerateContext) set(v int, ch Attributes, value []float32) {
	off := v*c.Attributes.Stride() + c.Attributes.mustOffset(ch)
	copy(c.Vertices[off:off+ElementCount(ch)], value)
}

// position returns the position of vertex v.
func (c *GenerateContext) position(v int) mgl32.Vec3 {
	off := v*c.Attributes.Stride() + c.Attributes.mustOffset(Position)
	return mgl32.Vec3{c.Vertices[off], c.Vertices[off+1], c.Vertices[off+2]}
}

// VertexGenerator fills a channel missing from the source data.
type VertexGenerator interface {
	// Supports reports whether the generator can produce ch.
	Supports(ch Attributes) bool
	// Generate writes ch for every vertex in ctx.
	Generate(ch Attributes, ctx *GenerateContext)
}

// FlatNormalGenerator assigns every triangle's face normal to its three
// corners. Vertices shared between triangles keep the last one written.
type FlatNormalGenerator struct{}

// Supports implements VertexGenerator.
func (FlatNormalGenerator) Supports(ch Attributes) bool { return ch == Normal }

// Generate implements VertexGenerator.
func (FlatNormalGenerator) Generate(ch Attributes, ctx *GenerateContext) {
	for _, tri := range ctx.Triangles {
		n := FaceNormal(ctx.position(tri[0]), ctx.position(tri[1]), ctx.position(tri[2]))
		for _, v := range tri {
			ctx.set(v, Normal, n[:])
		}
	}
}

// FaceNormal returns the normalized cross product of the triangle edges
// b-a and c-a. Degenerate triangles get +Y.
func FaceNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Len()
	if !(l > 0) || math.IsInf(float64(l), 0) {
		return mgl32.Vec3{0, 1, 0}
	}
	return n.Mul(1 / l)
}

// ConstantGenerator writes the same value into every vertex.
type ConstantGenerator struct {
	Channel Attributes
	Value   []float32
}

// NewConstantGenerator returns a generator for ch. Missing trailing
// components of value are zero.
func NewConstantGenerator(ch Attributes, value ...float32) *ConstantGenerator {
	v := make([]float32, ElementCount(ch))
	copy(v, value)
	return &ConstantGenerator{Channel: ch, Value: v}
}

// Supports implements VertexGenerator.
func (g *ConstantGenerator) Supports(ch Attributes) bool { return ch == g.Channel }

// Generate implements VertexGenerator.
func (g *ConstantGenerator) Generate(ch Attributes, ctx *GenerateContext) {
	n := len(ctx.Vertices) / ctx.Attributes.Stride()
	for v := 0; v < n; v++ {
		ctx.set(v, ch, g.Value)
	}
}

// DefaultGenerators returns the generators the converter registers: flat
// normals and a (0, 0) texcoord.
func DefaultGenerators() []VertexGenerator {
	return []VertexGenerator{
		FlatNormalGenerator{},
		NewConstantGenerator(Texcoord0, 0, 0),
	}
}
