package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/objconv/pkg/mesh"
)

// MSH format errors.
var (
	ErrInvalidMSHSignature   = errors.New("invalid MSH signature: expected 'MSH'")
	ErrUnsupportedMSHVersion = errors.New("unsupported MSH version")
	ErrTruncatedMSHData      = errors.New("truncated MSH data")
	ErrInvalidMSHFlag        = errors.New("invalid MSH channel flag")
)

const (
	mshSignature = "MSH"
	mshVersion   = 0
)

// MSH is the minimal single-buffer mesh container. Indices are absolute
// into Vertices, which holds interleaved records laid out by Attributes.
type MSH struct {
	HasNormals  bool
	HasTexcoord bool
	Shapes      [][]int32
	Vertices    []float32
}

// Attributes returns the vertex layout encoded by the channel flags.
func (m *MSH) Attributes() mesh.Attributes {
	attrs := mesh.Position
	if m.HasNormals {
		attrs |= mesh.Normal
	}
	if m.HasTexcoord {
		attrs |= mesh.Texcoord0
	}
	return attrs
}

// NumRecords returns the number of whole vertex records.
func (m *MSH) NumRecords() int {
	return len(m.Vertices) / m.Attributes().Stride()
}

// NumIndices returns the index count summed over all shapes.
func (m *MSH) NumIndices() int {
	n := 0
	for _, s := range m.Shapes {
		n += len(s)
	}
	return n
}

// Validate checks that the vertex buffer holds whole records and that every
// index references one of them.
func (m *MSH) Validate() error {
	stride := m.Attributes().Stride()
	if len(m.Vertices)%stride != 0 {
		return fmt.Errorf("%w: %d floats is not a multiple of stride %d", mesh.ErrInvalidMesh, len(m.Vertices), stride)
	}
	records := int32(m.NumRecords())
	for i, s := range m.Shapes {
		if len(s)%3 != 0 {
			return fmt.Errorf("%w: shape %d has %d indices", mesh.ErrInvalidMesh, i, len(s))
		}
		for _, idx := range s {
			if idx < 0 || idx >= records {
				return fmt.Errorf("%w: shape %d references vertex %d of %d", mesh.ErrInvalidMesh, i, idx, records)
			}
		}
	}
	return nil
}

// MSHFromMeshes flattens meshes sharing one layout into a single container.
// Each mesh shape becomes an MSH shape with absolute indices.
func MSHFromMeshes(meshes []*mesh.Mesh16) (*MSH, error) {
	if len(meshes) == 0 {
		return nil, mesh.ErrNoGeometry
	}
	attrs := meshes[0].Attributes()
	out := &MSH{
		HasNormals:  attrs.Has(mesh.Normal),
		HasTexcoord: attrs.Has(mesh.Texcoord0),
	}

	for i, m := range meshes {
		if m.Attributes() != attrs {
			return nil, fmt.Errorf("%w: mesh %d has layout %s, expected %s", mesh.ErrInvalidMesh, i, m.Attributes(), attrs)
		}
		base := int32(len(out.Vertices) / attrs.Stride())
		indices := m.Indices()
		for _, s := range m.Shapes() {
			shape := make([]int32, s.IndexCount)
			for j, idx := range indices[s.IndexOffset : s.IndexOffset+s.IndexCount] {
				shape[j] = base + int32(s.VertexOffset) + int32(idx)
			}
			out.Shapes = append(out.Shapes, shape)
		}
		out.Vertices = append(out.Vertices, m.Vertices()...)
	}
	return out, nil
}

// ParseMSH parses an MSH container from raw bytes.
func ParseMSH(data []byte) (*MSH, error) {
	if len(data) < 17 {
		return nil, ErrTruncatedMSHData
	}
	if string(data[0:3]) != mshSignature {
		return nil, ErrInvalidMSHSignature
	}

	r := bytes.NewReader(data[3:])

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("%w: reading version", ErrTruncatedMSHData)
	}
	if version != mshVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMSHVersion, version)
	}

	m := &MSH{}
	var flags [2]byte
	if _, err := io.ReadFull(r, flags[:]); err != nil {
		return nil, fmt.Errorf("%w: reading channel flags", ErrTruncatedMSHData)
	}
	for i, f := range flags {
		if f > 1 {
			return nil, fmt.Errorf("%w: byte %d is %d", ErrInvalidMSHFlag, 7+i, f)
		}
	}
	m.HasNormals = flags[0] == 1
	m.HasTexcoord = flags[1] == 1

	shapeCount, err := readCount(r, 4, "shape count")
	if err != nil {
		return nil, err
	}
	m.Shapes = make([][]int32, shapeCount)
	for i := range m.Shapes {
		n, err := readCount(r, 4, fmt.Sprintf("shape %d index count", i))
		if err != nil {
			return nil, err
		}
		m.Shapes[i] = make([]int32, n)
		if err := binary.Read(r, binary.LittleEndian, m.Shapes[i]); err != nil {
			return nil, fmt.Errorf("%w: reading shape %d indices", ErrTruncatedMSHData, i)
		}
	}

	n, err := readCount(r, 4, "vertex count")
	if err != nil {
		return nil, err
	}
	m.Vertices = make([]float32, n)
	if err := binary.Read(r, binary.LittleEndian, m.Vertices); err != nil {
		return nil, fmt.Errorf("%w: reading vertices", ErrTruncatedMSHData)
	}

	return m, nil
}

// readCount reads a uint32 element count and checks that the remaining
// data can hold that many elements of elemSize bytes.
func readCount(r *bytes.Reader, elemSize int, what string) (int, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, fmt.Errorf("%w: reading %s", ErrTruncatedMSHData, what)
	}
	if uint64(n)*uint64(elemSize) > uint64(r.Len()) {
		return 0, fmt.Errorf("%w: %s %d exceeds remaining %d bytes", ErrTruncatedMSHData, what, n, r.Len())
	}
	return int(n), nil
}

// ParseMSHFile parses an MSH file from disk.
func ParseMSHFile(path string) (*MSH, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading MSH file: %w", err)
	}
	return ParseMSH(data)
}

// WriteTo encodes the container to w.
func (m *MSH) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	bw.WriteString(mshSignature)
	binary.Write(bw, binary.LittleEndian, uint32(mshVersion))
	bw.WriteByte(boolByte(m.HasNormals))
	bw.WriteByte(boolByte(m.HasTexcoord))
	binary.Write(bw, binary.LittleEndian, uint32(len(m.Shapes)))
	for _, s := range m.Shapes {
		binary.Write(bw, binary.LittleEndian, uint32(len(s)))
		binary.Write(bw, binary.LittleEndian, s)
	}
	binary.Write(bw, binary.LittleEndian, uint32(len(m.Vertices)))
	binary.Write(bw, binary.LittleEndian, m.Vertices)

	if err := bw.Flush(); err != nil {
		return cw.n, fmt.Errorf("writing MSH: %w", err)
	}
	return cw.n, nil
}

// Bytes returns the encoded container.
func (m *MSH) Bytes() []byte {
	var buf bytes.Buffer
	m.WriteTo(&buf)
	return buf.Bytes()
}

// WriteFile writes the container to path.
func (m *MSH) WriteFile(path string) error {
	if err := os.WriteFile(path, m.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing MSH file: %w", err)
	}
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
