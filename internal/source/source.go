// Package source loads OBJ/MTL files into the mesh builder's input form.
package source

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/g3n/engine/loader/obj"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"github.com/Faultbox/objconv/internal/logger"
	textenc "github.com/Faultbox/objconv/pkg/encoding"
	"github.com/Faultbox/objconv/pkg/mesh"
)

// Material is an MTL material as read from the source.
type Material struct {
	Name      string
	Diffuse   [3]float32
	Specular  [3]float32
	Emissive  [3]float32
	Shininess float32
	// Dissolve is the MTL "d" value; 1 is fully opaque.
	Dissolve float32
	// Texture paths are relative to Dir, empty when the material has none.
	DiffuseTexture  string // map_Kd
	AlphaTexture    string // map_d
	SpecularTexture string // map_Ks
}

// defaultMaterialName is the material the decoder assigns to faces that
// follow no usemtl statement.
const defaultMaterialName = "internal default"

// Model is a loaded source file.
type Model struct {
	// Dir is the directory holding the source, used to resolve textures.
	Dir       string
	Attrib    mesh.Attrib
	SubMeshes []mesh.SubMesh
	// Materials is indexed by SubMesh.MaterialIDs.
	Materials []Material
	Warnings  []string
}

// Stats summarizes a loaded model.
type Stats struct {
	Positions int
	Normals   int
	Texcoords int
	Materials int
	Shapes    int
	Indices   int
	Triangles int
}

// Stats returns the model's counters.
func (m *Model) Stats() Stats {
	s := Stats{
		Positions: m.Attrib.NumPositions(),
		Normals:   m.Attrib.NumNormals(),
		Texcoords: m.Attrib.NumTexcoords(),
		Materials: len(m.Materials),
		Shapes:    len(m.SubMeshes),
	}
	for _, sub := range m.SubMeshes {
		s.Indices += len(sub.Corners)
		s.Triangles += sub.NumTriangles()
	}
	return s
}

// Options control how names are read.
type Options struct {
	// MtlPath overrides the material library named by the OBJ file.
	MtlPath string
	// NameEncoding decodes object, material and texture names that are
	// not UTF-8. Nil keeps them as they are.
	NameEncoding encoding.Encoding
}

// Load reads the OBJ file at path and its material library.
func Load(path string, opts Options) (*Model, error) {
	dec, err := obj.Decode(path, opts.MtlPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", mesh.ErrSourceLoad, path, err)
	}
	m, err := FromDecoder(dec, opts.NameEncoding)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Dir = filepath.Dir(path)

	if f, err := openMaterialLibrary(path, opts.MtlPath, dec.Matlib); err == nil {
		maps, err := scanTextureMaps(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: material library: %v", mesh.ErrSourceLoad, path, err)
		}
		m.applyTextureMaps(maps, opts.NameEncoding)
	}
	return m, nil
}

// FromDecoder converts a decoded OBJ file. Polygons are fan-triangulated
// around their first corner. Each object becomes one sub-mesh.
func FromDecoder(dec *obj.Decoder, names encoding.Encoding) (*Model, error) {
	m := &Model{
		Attrib: mesh.Attrib{
			Positions: []float32(dec.Vertices),
			Normals:   []float32(dec.Normals),
			Texcoords: []float32(dec.Uvs),
		},
		Warnings: append([]string(nil), dec.Warnings...),
	}
	if m.Attrib.NumPositions() == 0 {
		return nil, mesh.ErrEmptyGeometry
	}

	materialIDs := make(map[string]int)
	materialID := func(name string) int {
		if name == "" || (name == defaultMaterialName && dec.Materials[name] == nil) {
			return -1
		}
		if id, ok := materialIDs[name]; ok {
			return id
		}
		mat, ok := dec.Materials[name]
		if !ok {
			m.Warnings = append(m.Warnings, fmt.Sprintf("material %q is not defined", name))
			materialIDs[name] = -1
			return -1
		}
		id := len(m.Materials)
		m.Materials = append(m.Materials, convertMaterial(name, mat, names))
		materialIDs[name] = id
		return id
	}

	for _, o := range dec.Objects {
		sub := mesh.SubMesh{Name: textenc.StringToUTF8(o.Name, names)}
		for fi, f := range o.Faces {
			if len(f.Vertices) < 3 {
				m.Warnings = append(m.Warnings, fmt.Sprintf("%s: face %d has %d vertices", sub.Name, fi, len(f.Vertices)))
				continue
			}
			id := materialID(f.Material)
			for k := 1; k+1 < len(f.Vertices); k++ {
				for _, c := range [3]int{0, k, k + 1} {
					sub.Corners = append(sub.Corners, mesh.Corner{
						Position: f.Vertices[c],
						Normal:   optionalIndex(f.Normals, c, m.Attrib.NumNormals()),
						Texcoord: optionalIndex(f.Uvs, c, m.Attrib.NumTexcoords()),
					})
				}
				sub.MaterialIDs = append(sub.MaterialIDs, id)
			}
		}
		if len(sub.Corners) == 0 {
			continue
		}
		m.SubMeshes = append(m.SubMeshes, sub)
	}

	// Materials no face references still belong to the library.
	var unused []string
	for name := range dec.Materials {
		if _, ok := materialIDs[name]; !ok {
			unused = append(unused, name)
		}
	}
	sort.Strings(unused)
	for _, name := range unused {
		materialID(name)
	}

	logger.Debug("source decoded",
		zap.Int("objects", len(dec.Objects)),
		zap.Int("subMeshes", len(m.SubMeshes)),
		zap.Int("materials", len(m.Materials)))
	return m, nil
}

// optionalIndex returns the i-th entry of indices, or -1 when the face has
// no such index or it is out of range.
func optionalIndex(indices []int, i, count int) int {
	if i >= len(indices) {
		return -1
	}
	idx := indices[i]
	if idx < 0 || idx >= count {
		return -1
	}
	return idx
}

func convertMaterial(name string, mat *obj.Material, names encoding.Encoding) Material {
	out := Material{
		Name:      textenc.StringToUTF8(name, names),
		Diffuse:   [3]float32{mat.Diffuse.R, mat.Diffuse.G, mat.Diffuse.B},
		Specular:  [3]float32{mat.Specular.R, mat.Specular.G, mat.Specular.B},
		Emissive:  [3]float32{mat.Emissive.R, mat.Emissive.G, mat.Emissive.B},
		Shininess: mat.Shininess,
		Dissolve:  mat.Opacity,
	}
	// the decoder leaves Opacity at 0 when the material has no "d" line
	if out.Dissolve <= 0 {
		out.Dissolve = 1
	}
	if mat.MapKd != "" {
		out.DiffuseTexture = textenc.NormalizePath(textenc.StringToUTF8(mat.MapKd, names))
	}
	return out
}
