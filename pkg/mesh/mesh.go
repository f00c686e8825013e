package mesh

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/multierr"
)

// Mesh engine errors.
var (
	ErrInvalidChannel = errors.New("invalid vertex channel")
	ErrSourceLoad     = errors.New("malformed mesh source")
	ErrEmptyGeometry  = errors.New("mesh source has no positions")
	ErrNoGeometry     = errors.New("no opaque or transparent geometry")
	ErrInvalidMesh    = errors.New("invalid mesh")
)

// NoMaterial marks a shape whose source faces carry no material.
// The converter resolves it to the fallback material.
const NoMaterial uint32 = math.MaxUint32

// Index is the element type of an index buffer.
type Index interface {
	~uint16 | ~uint32
}

// Shape is a single-material slice of a mesh's index and vertex buffers.
// Indices inside the slice are relative to VertexOffset.
type Shape struct {
	IndexOffset  uint32
	IndexCount   uint32
	VertexOffset uint32
	VertexCount  uint32
	MaterialID   uint32
}

// Mesh is an interleaved vertex buffer with a single index buffer, split
// into shapes.
type Mesh[I Index] struct {
	attributes Attributes
	vertices   []float32
	indices    []I
	shapes     []Shape
	volumes    *BoundingVolumes
}

// Mesh16 is the final, 16-bit indexed form.
type Mesh16 = Mesh[uint16]

// Mesh32 is the intermediate form with unrestricted index width.
type Mesh32 = Mesh[uint32]

// New creates a mesh that takes ownership of the given buffers.
func New[I Index](attrs Attributes, vertices []float32, indices []I, shapes []Shape) *Mesh[I] {
	return &Mesh[I]{
		attributes: attrs | Position,
		vertices:   vertices,
		indices:    indices,
		shapes:     shapes,
	}
}

// Attributes returns the vertex layout.
func (m *Mesh[I]) Attributes() Attributes { return m.attributes }

// Stride returns the number of floats per vertex record.
func (m *Mesh[I]) Stride() int { return m.attributes.Stride() }

// Vertices returns the interleaved vertex buffer. Callers may modify
// values in place but must not change its length.
func (m *Mesh[I]) Vertices() []float32 { return m.vertices }

// Indices returns the index buffer.
func (m *Mesh[I]) Indices() []I { return m.indices }

// Shapes returns the shape records.
func (m *Mesh[I]) Shapes() []Shape { return m.shapes }

// NumVertices returns the number of vertex records.
func (m *Mesh[I]) NumVertices() int { return len(m.vertices) / m.Stride() }

// NumIndices returns the length of the index buffer.
func (m *Mesh[I]) NumIndices() int { return len(m.indices) }

// NumTriangles returns the number of triangles across all shapes.
func (m *Mesh[I]) NumTriangles() int { return len(m.indices) / 3 }

// Volumes returns the bounding volumes, or nil before
// GenerateBoundingVolumes was called.
func (m *Mesh[I]) Volumes() *BoundingVolumes { return m.volumes }

// SetVolumes attaches previously computed bounding volumes, e.g. ones read
// back from a file.
func (m *Mesh[I]) SetVolumes(bv *BoundingVolumes) { m.volumes = bv }

// vertex returns the record of vertex v.
func (m *Mesh[I]) vertex(v int) []float32 {
	stride := m.Stride()
	return m.vertices[v*stride : (v+1)*stride]
}

// forEachTriangle calls fn with the absolute vertex indices of every
// triangle, in index buffer order.
func (m *Mesh[I]) forEachTriangle(fn func(shape, tri int, a, b, c int)) {
	tri := 0
	for si, s := range m.shapes {
		base := int(s.VertexOffset)
		idx := m.indices[s.IndexOffset : s.IndexOffset+s.IndexCount]
		for i := 0; i+2 < len(idx); i += 3 {
			fn(si, tri, base+int(idx[i]), base+int(idx[i+1]), base+int(idx[i+2]))
			tri++
		}
	}
}

// Validate checks the mesh invariants and reports every violation.
func (m *Mesh[I]) Validate() error {
	var err error
	stride := m.Stride()
	if len(m.vertices)%stride != 0 {
		err = multierr.Append(err, fmt.Errorf("%w: vertex buffer length %d is not a multiple of stride %d",
			ErrInvalidMesh, len(m.vertices), stride))
	}
	numVertices := uint64(m.NumVertices())

	var next uint64
	for i, s := range m.shapes {
		if uint64(s.IndexOffset) != next {
			err = multierr.Append(err, fmt.Errorf("%w: shape %d starts at index %d, expected %d",
				ErrInvalidMesh, i, s.IndexOffset, next))
		}
		if s.IndexCount%3 != 0 {
			err = multierr.Append(err, fmt.Errorf("%w: shape %d index count %d is not a multiple of 3",
				ErrInvalidMesh, i, s.IndexCount))
		}
		next = uint64(s.IndexOffset) + uint64(s.IndexCount)
		if next > uint64(len(m.indices)) {
			err = multierr.Append(err, fmt.Errorf("%w: shape %d index range ends at %d, buffer has %d",
				ErrInvalidMesh, i, next, len(m.indices)))
			continue
		}
		if uint64(s.VertexOffset)+uint64(s.VertexCount) > numVertices {
			err = multierr.Append(err, fmt.Errorf("%w: shape %d vertex range ends at %d, buffer has %d",
				ErrInvalidMesh, i, uint64(s.VertexOffset)+uint64(s.VertexCount), numVertices))
		}
		for _, idx := range m.indices[s.IndexOffset:next] {
			if uint32(idx) >= s.VertexCount {
				err = multierr.Append(err, fmt.Errorf("%w: shape %d references vertex %d of %d",
					ErrInvalidMesh, i, idx, s.VertexCount))
				break
			}
		}
	}
	if next != uint64(len(m.indices)) {
		err = multierr.Append(err, fmt.Errorf("%w: shapes cover %d of %d indices",
			ErrInvalidMesh, next, len(m.indices)))
	}

	ranges := make([]Shape, len(m.shapes))
	copy(ranges, m.shapes)
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].VertexOffset < ranges[j].VertexOffset })
	for i := 1; i < len(ranges); i++ {
		prev := ranges[i-1]
		if uint64(prev.VertexOffset)+uint64(prev.VertexCount) > uint64(ranges[i].VertexOffset) {
			err = multierr.Append(err, fmt.Errorf("%w: vertex ranges at %d and %d overlap",
				ErrInvalidMesh, prev.VertexOffset, ranges[i].VertexOffset))
		}
	}
	if m.volumes != nil && next == uint64(len(m.indices)) {
		err = multierr.Append(err, m.volumes.Validate(len(m.shapes), m.NumTriangles()))
	}
	return err
}

// RemapMaterials replaces every shape's material id with remap(id).
func (m *Mesh[I]) RemapMaterials(remap func(id uint32) uint32) {
	for i := range m.shapes {
		m.shapes[i].MaterialID = remap(m.shapes[i].MaterialID)
	}
}
