package mesh

import "fmt"

// Attrib holds the raw attribute arrays shared by all sub-meshes of a
// source. Positions and normals are xyz triples, texcoords are uv pairs.
type Attrib struct {
	Positions []float32
	Normals   []float32
	Texcoords []float32
}

// NumPositions returns the number of position records.
func (a *Attrib) NumPositions() int { return len(a.Positions) / 3 }

// NumNormals returns the number of normal records.
func (a *Attrib) NumNormals() int { return len(a.Normals) / 3 }

// NumTexcoords returns the number of texcoord records.
func (a *Attrib) NumTexcoords() int { return len(a.Texcoords) / 2 }

// Corner references one vertex of one triangle. Normal and Texcoord are
// negative when the corner has no such attribute.
type Corner struct {
	Position int
	Normal   int
	Texcoord int
}

// SubMesh is a source grouping of triangle corners.
type SubMesh struct {
	Name    string
	Corners []Corner
	// MaterialIDs holds one material per triangle. Negative entries and a
	// nil slice mean no material.
	MaterialIDs []int
}

// NumTriangles returns the number of complete triangles.
func (s *SubMesh) NumTriangles() int { return len(s.Corners) / 3 }

// BuildStats reports what BuildRaw had to patch up.
type BuildStats struct {
	// MissingAttributes counts corners that lacked a channel present in
	// the sub-mesh layout and were zero-filled.
	MissingAttributes int
}

// BuildRaw emits one vertex record per corner and a trivial 0..n-1 index
// buffer. The layout is decided by the first corner: Normal and Texcoord0
// are included when requested and present there. Texcoord v is stored as
// 1-v. It returns the mesh, the per-triangle material ids and stats.
func BuildRaw(src *Attrib, sub *SubMesh, requested Attributes) (*Mesh32, []uint32, BuildStats, error) {
	var stats BuildStats
	if src.NumPositions() == 0 {
		return nil, nil, stats, ErrEmptyGeometry
	}
	numTris := sub.NumTriangles()
	if numTris == 0 {
		return nil, nil, stats, fmt.Errorf("%w: sub-mesh %q has no triangles", ErrSourceLoad, sub.Name)
	}
	corners := sub.Corners[:numTris*3]

	attrs := Position
	first := corners[0]
	if requested.Has(Normal) && first.Normal >= 0 {
		attrs |= Normal
	}
	if requested.Has(Texcoord0) && first.Texcoord >= 0 {
		attrs |= Texcoord0
	}

	stride := attrs.Stride()
	vertices := make([]float32, 0, len(corners)*stride)
	indices := make([]uint32, 0, len(corners))
	for i, c := range corners {
		if c.Position < 0 || c.Position >= src.NumPositions() {
			return nil, nil, stats, fmt.Errorf("%w: sub-mesh %q corner %d: position %d out of range",
				ErrSourceLoad, sub.Name, i, c.Position)
		}
		indices = append(indices, uint32(len(indices)))
		vertices = append(vertices, src.Positions[3*c.Position:3*c.Position+3]...)

		if attrs.Has(Normal) {
			switch {
			case c.Normal < 0:
				stats.MissingAttributes++
				vertices = append(vertices, 0, 0, 0)
			case c.Normal >= src.NumNormals():
				return nil, nil, stats, fmt.Errorf("%w: sub-mesh %q corner %d: normal %d out of range",
					ErrSourceLoad, sub.Name, i, c.Normal)
			default:
				vertices = append(vertices, src.Normals[3*c.Normal:3*c.Normal+3]...)
			}
		}
		if attrs.Has(Texcoord0) {
			switch {
			case c.Texcoord < 0:
				stats.MissingAttributes++
				vertices = append(vertices, 0, 0)
			case c.Texcoord >= src.NumTexcoords():
				return nil, nil, stats, fmt.Errorf("%w: sub-mesh %q corner %d: texcoord %d out of range",
					ErrSourceLoad, sub.Name, i, c.Texcoord)
			default:
				// Destination images have a top-left origin.
				vertices = append(vertices, src.Texcoords[2*c.Texcoord], 1-src.Texcoords[2*c.Texcoord+1])
			}
		}
	}

	materials := make([]uint32, numTris)
	for t := range materials {
		materials[t] = NoMaterial
		if t < len(sub.MaterialIDs) && sub.MaterialIDs[t] >= 0 {
			materials[t] = uint32(sub.MaterialIDs[t])
		}
	}

	shapes := []Shape{{
		IndexCount:  uint32(len(indices)),
		VertexCount: uint32(len(indices)),
		MaterialID:  materials[0],
	}}
	return New(attrs, vertices, indices, shapes), materials, stats, nil
}

// MixedMaterials reports whether the per-triangle ids name more than one
// material.
func MixedMaterials(ids []uint32) bool {
	for _, id := range ids {
		if id != ids[0] {
			return true
		}
	}
	return false
}
