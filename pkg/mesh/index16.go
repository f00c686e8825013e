package mesh

// MaxVertices16 is the number of vertices addressable by a 16-bit index.
const MaxVertices16 = 1 << 16

// Force16BitIndices splits the mesh into fragments of at most
// MaxVertices16 vertices each, converting indices to 16 bits.
//
// Triangles are appended to the current fragment in order; when a
// triangle's unseen vertices would overflow it, the fragment is closed and
// the triangle starts a new one with fresh copies of its vertices. Every
// input shape yields one shape record per fragment it reaches, with the
// same material. Together the fragments cover each triangle exactly once.
func (m *Mesh[I]) Force16BitIndices() []*Mesh16 {
	r := reducer{attrs: m.attributes, stride: m.Stride()}
	for _, s := range m.shapes {
		if s.IndexCount < 3 {
			continue
		}
		r.beginShape(s)
		base := int(s.VertexOffset)
		idx := m.indices[s.IndexOffset : s.IndexOffset+s.IndexCount]
		for i := 0; i+2 < len(idx); i += 3 {
			tri := [3]int{int(idx[i]), int(idx[i+1]), int(idx[i+2])}
			if r.fragmentVertices()+r.unseen(tri) > MaxVertices16 {
				r.endShape()
				r.endFragment()
				r.resume()
			}
			for _, v := range tri {
				r.addCorner(v, m.vertex(base+v))
			}
		}
		r.endShape()
	}
	r.endFragment()
	return r.out
}

// reducer accumulates the fragment under construction.
type reducer struct {
	attrs  Attributes
	stride int
	out    []*Mesh16

	vertices []float32
	indices  []uint16
	shapes   []Shape

	// current input shape
	shape   Shape
	remap   []int32
	touched []int
}

func (r *reducer) fragmentVertices() int { return len(r.vertices) / r.stride }

func (r *reducer) beginShape(s Shape) {
	r.remap = make([]int32, s.VertexCount)
	for i := range r.remap {
		r.remap[i] = -1
	}
	r.touched = r.touched[:0]
	r.shape = Shape{MaterialID: s.MaterialID}
	r.resume()
}

// resume opens a shape record for the current input shape in the current
// fragment, forgetting vertices copied into earlier fragments.
func (r *reducer) resume() {
	for _, v := range r.touched {
		r.remap[v] = -1
	}
	r.touched = r.touched[:0]
	r.shape.IndexOffset = uint32(len(r.indices))
	r.shape.IndexCount = 0
	r.shape.VertexOffset = uint32(r.fragmentVertices())
	r.shape.VertexCount = 0
}

// unseen counts the distinct corners of tri not yet copied into the
// current fragment.
func (r *reducer) unseen(tri [3]int) int {
	n := 0
	for i, v := range tri {
		if r.remap[v] >= 0 {
			continue
		}
		dup := false
		for _, prev := range tri[:i] {
			if prev == v {
				dup = true
			}
		}
		if !dup {
			n++
		}
	}
	return n
}

func (r *reducer) addCorner(v int, rec []float32) {
	if r.remap[v] < 0 {
		r.remap[v] = int32(r.shape.VertexCount)
		r.touched = append(r.touched, v)
		r.vertices = append(r.vertices, rec...)
		r.shape.VertexCount++
	}
	r.indices = append(r.indices, uint16(r.remap[v]))
	r.shape.IndexCount++
}

func (r *reducer) endShape() {
	if r.shape.IndexCount > 0 {
		r.shapes = append(r.shapes, r.shape)
	}
}

func (r *reducer) endFragment() {
	if len(r.shapes) == 0 {
		return
	}
	r.out = append(r.out, New(r.attrs, r.vertices, r.indices, r.shapes))
	r.vertices = nil
	r.indices = nil
	r.shapes = nil
}
