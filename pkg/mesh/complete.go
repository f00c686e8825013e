package mesh

// ChangeStats counts vertex records per channel touched by ChangeAttributes.
type ChangeStats struct {
	Generated map[Attributes]int
	Removed   map[Attributes]int
	// Unfilled counts records of channels no generator supports; they
	// stay zero.
	Unfilled map[Attributes]int
}

// ChangeAttributes re-lays every vertex record to target. Channels the
// mesh lacks are zero-filled and handed to the first generator in gens
// that supports them; channels absent from target are dropped.
func (m *Mesh[I]) ChangeAttributes(target Attributes, gens []VertexGenerator) ChangeStats {
	target = NewAttributes(uint32(target))
	stats := ChangeStats{
		Generated: make(map[Attributes]int),
		Removed:   make(map[Attributes]int),
		Unfilled:  make(map[Attributes]int),
	}
	if target == m.attributes {
		return stats
	}

	src := m.attributes
	n := m.NumVertices()
	for _, ch := range src.Channels() {
		if !target.Has(ch) {
			stats.Removed[ch] += n
		}
	}

	srcStride, dstStride := src.Stride(), target.Stride()
	out := make([]float32, n*dstStride)
	for _, ch := range target.Channels() {
		if !src.Has(ch) {
			continue
		}
		so, do, cnt := src.mustOffset(ch), target.mustOffset(ch), ElementCount(ch)
		for v := 0; v < n; v++ {
			copy(out[v*dstStride+do:v*dstStride+do+cnt], m.vertices[v*srcStride+so:v*srcStride+so+cnt])
		}
	}

	ctx := &GenerateContext{Attributes: target, Vertices: out}
	m.forEachTriangle(func(_, _ int, a, b, c int) {
		ctx.Triangles = append(ctx.Triangles, [3]int{a, b, c})
	})
	for _, ch := range target.Channels() {
		if src.Has(ch) {
			continue
		}
		gen := findGenerator(gens, ch)
		if gen == nil {
			stats.Unfilled[ch] += n
			continue
		}
		gen.Generate(ch, ctx)
		stats.Generated[ch] += n
	}

	m.attributes = target
	m.vertices = out
	return stats
}

func findGenerator(gens []VertexGenerator, ch Attributes) VertexGenerator {
	for _, g := range gens {
		if g.Supports(ch) {
			return g
		}
	}
	return nil
}
