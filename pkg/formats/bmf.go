package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/objconv/pkg/mesh"
)

// BMF format errors.
var (
	ErrInvalidBMFSignature   = errors.New("invalid BMF signature: expected 'BMF'")
	ErrUnsupportedBMFVersion = errors.New("unsupported BMF version")
	ErrTruncatedBMFData      = errors.New("truncated BMF data")
	ErrInvalidBMFData        = errors.New("invalid BMF data")
)

const (
	bmfSignature = "BMF"
	bmfVersion   = 2
	// version 1 files carry only the whole-mesh bounds
	bmfVersionBoundsOnly = 1

	aabbSize   = 24
	bvNodeSize = aabbSize + 4
)

// BMF is a merged, 16-bit indexed mesh with per-shape materials and
// bounding volumes. Shape indices are relative to the shape's vertex
// offset. ShapeBounds and Nodes are empty in version 1 files.
type BMF struct {
	Attributes  mesh.Attributes
	Shapes      []mesh.Shape
	Bounds      mesh.AABB
	ShapeBounds []mesh.AABB
	Nodes       []mesh.BVNode
	Vertices    []float32
	Indices     []uint16
}

// bvNode is the on-disk form of mesh.BVNode.
type bvNode struct {
	Bounds [6]float32
	Index  int32
}

func packAABB(b mesh.AABB) [6]float32 {
	return [6]float32{b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2]}
}

func unpackAABB(f [6]float32) mesh.AABB {
	return mesh.AABB{
		Min: mgl32.Vec3{f[0], f[1], f[2]},
		Max: mgl32.Vec3{f[3], f[4], f[5]},
	}
}

// BMFFromMesh captures m, generating its bounding volumes if needed.
func BMFFromMesh(m *mesh.Mesh16) *BMF {
	bv := m.Volumes()
	if bv == nil {
		bv = m.GenerateBoundingVolumes()
	}
	return &BMF{
		Attributes:  m.Attributes(),
		Shapes:      m.Shapes(),
		Bounds:      bv.Bounds,
		ShapeBounds: bv.Shapes,
		Nodes:       bv.Nodes,
		Vertices:    m.Vertices(),
		Indices:     m.Indices(),
	}
}

// Mesh returns the mesh stored in the file with its bounding volumes
// attached. It shares the file's buffers.
func (b *BMF) Mesh() *mesh.Mesh16 {
	m := mesh.New(b.Attributes, b.Vertices, b.Indices, b.Shapes)
	if b.ShapeBounds != nil || b.Nodes != nil {
		m.SetVolumes(&mesh.BoundingVolumes{Bounds: b.Bounds, Shapes: b.ShapeBounds, Nodes: b.Nodes})
	}
	return m
}

// NumVertices returns the number of vertex records.
func (b *BMF) NumVertices() int {
	return len(b.Vertices) / b.Attributes.Stride()
}

// ParseBMF parses a BMF file from raw bytes. Shape ranges, indices and
// bounding volumes are checked against the buffers.
func ParseBMF(data []byte) (*BMF, error) {
	if len(data) < 15 {
		return nil, ErrTruncatedBMFData
	}
	if string(data[0:3]) != bmfSignature {
		return nil, ErrInvalidBMFSignature
	}

	r := bytes.NewReader(data[3:])

	var header struct {
		Version    uint32
		Attributes uint32
		ShapeCount uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedBMFData)
	}
	if header.Version != bmfVersion && header.Version != bmfVersionBoundsOnly {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBMFVersion, header.Version)
	}

	b := &BMF{Attributes: mesh.NewAttributes(header.Attributes)}
	if uint64(header.ShapeCount)*20 > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: %d shapes", ErrTruncatedBMFData, header.ShapeCount)
	}
	b.Shapes = make([]mesh.Shape, header.ShapeCount)
	if err := binary.Read(r, binary.LittleEndian, b.Shapes); err != nil {
		return nil, fmt.Errorf("%w: reading shapes", ErrTruncatedBMFData)
	}

	var bounds [6]float32
	if err := binary.Read(r, binary.LittleEndian, &bounds); err != nil {
		return nil, fmt.Errorf("%w: reading bounds", ErrTruncatedBMFData)
	}
	b.Bounds = unpackAABB(bounds)

	if header.Version == bmfVersion {
		if err := b.readVolumes(r); err != nil {
			return nil, err
		}
	}

	var numVertices uint32
	if err := binary.Read(r, binary.LittleEndian, &numVertices); err != nil {
		return nil, fmt.Errorf("%w: reading vertex count", ErrTruncatedBMFData)
	}
	floats := uint64(numVertices) * uint64(b.Attributes.Stride())
	if floats*4 > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: %d vertices", ErrTruncatedBMFData, numVertices)
	}
	b.Vertices = make([]float32, floats)
	if err := binary.Read(r, binary.LittleEndian, b.Vertices); err != nil {
		return nil, fmt.Errorf("%w: reading vertices", ErrTruncatedBMFData)
	}

	var numIndices uint32
	if err := binary.Read(r, binary.LittleEndian, &numIndices); err != nil {
		return nil, fmt.Errorf("%w: reading index count", ErrTruncatedBMFData)
	}
	if uint64(numIndices)*2 > uint64(r.Len()) {
		return nil, fmt.Errorf("%w: %d indices", ErrTruncatedBMFData, numIndices)
	}
	b.Indices = make([]uint16, numIndices)
	if err := binary.Read(r, binary.LittleEndian, b.Indices); err != nil {
		return nil, fmt.Errorf("%w: reading indices", ErrTruncatedBMFData)
	}

	if err := b.Mesh().Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBMFData, err)
	}
	return b, nil
}

// readVolumes reads the per-shape boxes and the triangle tree.
func (b *BMF) readVolumes(r *bytes.Reader) error {
	if uint64(len(b.Shapes))*aabbSize > uint64(r.Len()) {
		return fmt.Errorf("%w: %d shape bounds", ErrTruncatedBMFData, len(b.Shapes))
	}
	boxes := make([][6]float32, len(b.Shapes))
	if err := binary.Read(r, binary.LittleEndian, boxes); err != nil {
		return fmt.Errorf("%w: reading shape bounds", ErrTruncatedBMFData)
	}
	b.ShapeBounds = make([]mesh.AABB, len(boxes))
	for i, box := range boxes {
		b.ShapeBounds[i] = unpackAABB(box)
	}

	var numNodes uint32
	if err := binary.Read(r, binary.LittleEndian, &numNodes); err != nil {
		return fmt.Errorf("%w: reading node count", ErrTruncatedBMFData)
	}
	if uint64(numNodes)*bvNodeSize > uint64(r.Len()) {
		return fmt.Errorf("%w: %d nodes", ErrTruncatedBMFData, numNodes)
	}
	nodes := make([]bvNode, numNodes)
	if err := binary.Read(r, binary.LittleEndian, nodes); err != nil {
		return fmt.Errorf("%w: reading nodes", ErrTruncatedBMFData)
	}
	b.Nodes = make([]mesh.BVNode, len(nodes))
	for i, n := range nodes {
		b.Nodes[i] = mesh.BVNode{Bounds: unpackAABB(n.Bounds), Index: n.Index}
	}
	return nil
}

// ParseBMFFile parses a BMF file from disk.
func ParseBMFFile(path string) (*BMF, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading BMF file: %w", err)
	}
	return ParseBMF(data)
}

// WriteTo encodes the file to w.
func (b *BMF) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString(bmfSignature)
	binary.Write(&buf, binary.LittleEndian, uint32(bmfVersion))
	binary.Write(&buf, binary.LittleEndian, uint32(b.Attributes))
	binary.Write(&buf, binary.LittleEndian, uint32(len(b.Shapes)))
	binary.Write(&buf, binary.LittleEndian, b.Shapes)
	binary.Write(&buf, binary.LittleEndian, packAABB(b.Bounds))
	// shapes without a generated box are written as empty boxes
	for i := range b.Shapes {
		var box mesh.AABB
		if i < len(b.ShapeBounds) {
			box = b.ShapeBounds[i]
		}
		binary.Write(&buf, binary.LittleEndian, packAABB(box))
	}
	binary.Write(&buf, binary.LittleEndian, uint32(len(b.Nodes)))
	for _, n := range b.Nodes {
		binary.Write(&buf, binary.LittleEndian, bvNode{Bounds: packAABB(n.Bounds), Index: n.Index})
	}
	binary.Write(&buf, binary.LittleEndian, uint32(b.NumVertices()))
	binary.Write(&buf, binary.LittleEndian, b.Vertices)
	binary.Write(&buf, binary.LittleEndian, uint32(len(b.Indices)))
	binary.Write(&buf, binary.LittleEndian, b.Indices)
	return buf.WriteTo(w)
}

// Bytes returns the encoded file.
func (b *BMF) Bytes() []byte {
	var buf bytes.Buffer
	b.WriteTo(&buf)
	return buf.Bytes()
}
