package mesh

// SwapAxes exchanges two coordinate axes (0=x, 1=y, 2=z) of every position
// and, when present, every normal.
func (m *Mesh[I]) SwapAxes(axis1, axis2 int) {
	if axis1 == axis2 {
		return
	}
	stride := m.Stride()
	offsets := []int{m.attributes.mustOffset(Position)}
	if m.attributes.Has(Normal) {
		offsets = append(offsets, m.attributes.mustOffset(Normal))
	}
	for v := 0; v+stride <= len(m.vertices); v += stride {
		for _, off := range offsets {
			rec := m.vertices[v+off:]
			rec[axis1], rec[axis2] = rec[axis2], rec[axis1]
		}
	}
	m.volumes = nil
}
