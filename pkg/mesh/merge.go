package mesh

import "fmt"

// Group is a merged mesh together with its transparency class.
type Group struct {
	Transparent bool
	Mesh        *Mesh16
}

// MergeShapes concatenates same-layout meshes into one. Shape records are
// kept in input order with their index and vertex offsets shifted by the
// running totals; indices stay relative to their shape. The inputs must not
// be used afterwards.
func MergeShapes(meshes []*Mesh16) (*Mesh16, error) {
	if len(meshes) == 0 {
		return nil, ErrNoGeometry
	}
	attrs := meshes[0].attributes
	var numVerts, numIdx, numShapes int
	for i, m := range meshes {
		if m.attributes != attrs {
			return nil, fmt.Errorf("%w: mesh %d has layout %s, expected %s", ErrInvalidMesh, i, m.attributes, attrs)
		}
		numVerts += len(m.vertices)
		numIdx += len(m.indices)
		numShapes += len(m.shapes)
	}

	vertices := make([]float32, 0, numVerts)
	indices := make([]uint16, 0, numIdx)
	shapes := make([]Shape, 0, numShapes)
	for _, m := range meshes {
		vertexBase := uint32(len(vertices) / attrs.Stride())
		indexBase := uint32(len(indices))
		for _, s := range m.shapes {
			s.VertexOffset += vertexBase
			s.IndexOffset += indexBase
			shapes = append(shapes, s)
		}
		vertices = append(vertices, m.vertices...)
		indices = append(indices, m.indices...)
	}
	return New(attrs, vertices, indices, shapes), nil
}

// MergeByTransparency merges opaque and transparent meshes separately. A
// mesh is classified by the material of its first shape. The opaque group
// comes first; empty groups are omitted.
func MergeByTransparency(meshes []*Mesh16, isTransparent func(materialID uint32) bool) ([]Group, error) {
	var opaque, transparent []*Mesh16
	for _, m := range meshes {
		if len(m.shapes) == 0 {
			continue
		}
		if isTransparent(m.shapes[0].MaterialID) {
			transparent = append(transparent, m)
		} else {
			opaque = append(opaque, m)
		}
	}

	var groups []Group
	for _, g := range []struct {
		transparent bool
		meshes      []*Mesh16
	}{{false, opaque}, {true, transparent}} {
		if len(g.meshes) == 0 {
			continue
		}
		merged, err := MergeShapes(g.meshes)
		if err != nil {
			return nil, err
		}
		groups = append(groups, Group{Transparent: g.transparent, Mesh: merged})
	}
	if len(groups) == 0 {
		return nil, ErrNoGeometry
	}
	return groups, nil
}
