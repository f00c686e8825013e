package mesh

// SplitByMaterial cuts a trivially indexed mesh into one mesh per run of
// consecutive triangles sharing a material, in source order. Vertex i
// belongs to triangle i/3, so every run is a plain slice of the vertex
// buffer. The copies are exact; RemoveDuplicateVertices folds the
// redundancy inside each piece afterwards.
func SplitByMaterial(m *Mesh32, materialIDs []uint32) []*Mesh32 {
	stride := m.Stride()
	numTris := m.NumTriangles()
	if numTris == 0 {
		return nil
	}

	var out []*Mesh32
	start := 0
	closeRun := func(end int) {
		count := (end - start) * 3
		vertices := make([]float32, count*stride)
		copy(vertices, m.vertices[start*3*stride:end*3*stride])
		indices := make([]uint32, count)
		for i := range indices {
			indices[i] = uint32(i)
		}
		out = append(out, New(m.attributes, vertices, indices, []Shape{{
			IndexCount:  uint32(count),
			VertexCount: uint32(count),
			MaterialID:  materialAt(materialIDs, start),
		}}))
		start = end
	}

	for t := 1; t < numTris; t++ {
		if materialAt(materialIDs, t) != materialAt(materialIDs, t-1) {
			closeRun(t)
		}
	}
	closeRun(numTris)
	return out
}

func materialAt(ids []uint32, tri int) uint32 {
	if tri < len(ids) {
		return ids[tri]
	}
	return NoMaterial
}
