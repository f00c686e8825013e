package mesh

import (
	"encoding/binary"
	"math"
)

// RemoveDuplicateVertices folds vertex records whose summed per-component
// absolute difference is <= tolerance, rewriting the index buffer, and
// returns the number of removed records. A tolerance of 0 merges exact
// duplicates only; a negative tolerance merges nothing.
//
// Records are visited in buffer order and compared with the already kept
// records in kept order. A record merges into the first kept record that
// matches, not the closest one, so the output depends on visiting order.
// The scan is O(n²·stride) for a positive tolerance. Each shape is
// processed on its own since its indices are relative to its vertex range.
func (m *Mesh[I]) RemoveDuplicateVertices(tolerance float32) int {
	if !(tolerance >= 0) || len(m.shapes) == 0 {
		return 0
	}
	stride := m.Stride()
	before := m.NumVertices()
	out := make([]float32, 0, len(m.vertices))

	for si := range m.shapes {
		s := &m.shapes[si]
		base := int(s.VertexOffset)
		kept := newKeptSet(stride, tolerance)
		remap := make([]uint32, s.VertexCount)
		for v := range remap {
			remap[v] = kept.insert(m.vertex(base + v))
		}

		s.VertexOffset = uint32(len(out) / stride)
		s.VertexCount = uint32(len(kept.records))
		for _, rec := range kept.records {
			out = append(out, rec...)
		}
		idx := m.indices[s.IndexOffset : s.IndexOffset+s.IndexCount]
		for i, v := range idx {
			idx[i] = I(remap[v])
		}
	}

	m.vertices = out
	m.volumes = nil
	return before - m.NumVertices()
}

// keptSet holds the surviving records of one shape in kept order.
type keptSet struct {
	stride    int
	tolerance float32
	records   [][]float32
	// exact maps canonical record bits to kept positions when tolerance
	// is 0. Distinct kept records never compare equal, so the single
	// hit is also the first match.
	exact map[string]uint32
	key   []byte
}

func newKeptSet(stride int, tolerance float32) *keptSet {
	k := &keptSet{stride: stride, tolerance: tolerance}
	if tolerance == 0 {
		k.exact = make(map[string]uint32)
		k.key = make([]byte, 4*stride)
	}
	return k
}

// insert returns the kept position rec maps to, keeping rec when nothing
// matches.
func (k *keptSet) insert(rec []float32) uint32 {
	if k.exact != nil {
		return k.insertExact(rec)
	}
	for j, other := range k.records {
		if difference(rec, other, k.tolerance) <= k.tolerance {
			return uint32(j)
		}
	}
	return k.keep(rec)
}

func (k *keptSet) insertExact(rec []float32) uint32 {
	for i, f := range rec {
		if f != f || math.IsInf(float64(f), 0) {
			// |Inf-Inf| and NaN never compare within tolerance.
			return k.keep(rec)
		}
		if f == 0 {
			f = 0 // -0 and +0 differ by nothing
		}
		binary.LittleEndian.PutUint32(k.key[4*i:], math.Float32bits(f))
	}
	if j, ok := k.exact[string(k.key)]; ok {
		return j
	}
	j := k.keep(rec)
	k.exact[string(k.key)] = j
	return j
}

func (k *keptSet) keep(rec []float32) uint32 {
	k.records = append(k.records, rec)
	return uint32(len(k.records) - 1)
}

// difference sums |a[i]-b[i]| in float32, stopping once the sum exceeds
// limit. Partial sums never decrease, so stopping early cannot turn a
// mismatch into a match.
func difference(a, b []float32, limit float32) float32 {
	var err float32
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		err += d
		if err > limit {
			return err
		}
	}
	return err
}
