package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/objconv/internal/logger"
	"github.com/Faultbox/objconv/internal/staging"
	"github.com/Faultbox/objconv/pkg/formats"
	"github.com/Faultbox/objconv/pkg/mesh"
)

// FileVersion is the scene description version written by Save.
const FileVersion = 1

// ErrUnsupportedVersion is returned by Load for unknown description versions.
var ErrUnsupportedVersion = errors.New("unsupported scene version")

// Bounds is an axis-aligned box in the scene description.
type Bounds struct {
	Min [3]float32 `yaml:"min,flow"`
	Max [3]float32 `yaml:"max,flow"`
}

// MeshEntry describes one mesh file of a saved scene.
type MeshEntry struct {
	File        string `yaml:"file"`
	Transparent bool   `yaml:"transparent"`
	Attributes  string `yaml:"attributes"`
	Shapes      int    `yaml:"shapes"`
	Vertices    int    `yaml:"vertices"`
	Triangles   int    `yaml:"triangles"`
	Nodes       int    `yaml:"bounding_nodes"`
	Bounds      Bounds `yaml:"bounds"`
}

// File is the YAML scene description.
type File struct {
	Version     int         `yaml:"version"`
	Meshes      []MeshEntry `yaml:"meshes"`
	Materials   []Material  `yaml:"materials"`
	Camera      Camera      `yaml:"camera"`
	Lights      []Light     `yaml:"lights"`
	Environment Environment `yaml:"environment"`
}

// MeshFileName returns the name of the n-th mesh file of the scene saved
// at dst.
func MeshFileName(dst string, n int) string {
	return fmt.Sprintf("%s.%d.bmf", filepath.Base(trimExt(dst)), n)
}

// DescriptionPath returns the path of the YAML description for dst.
func DescriptionPath(dst string) string {
	return trimExt(dst) + ".yaml"
}

func trimExt(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml":
		return strings.TrimSuffix(p, filepath.Ext(p))
	}
	return p
}

// Save writes the description to <dst>.yaml and each mesh to <dst>.<n>.bmf
// next to it. Either every file is written or none is. It returns the path
// of the description.
func (s *Scene) Save(dst string) (string, error) {
	files := staging.New()
	path, err := s.Stage(files, dst)
	if err != nil {
		return "", multierr.Append(err, files.Abort())
	}
	if err := files.Commit(); err != nil {
		return "", err
	}
	return path, nil
}

// Stage adds the files Save writes to files without committing them.
func (s *Scene) Stage(files *staging.Files, dst string) (string, error) {
	dir := filepath.Dir(dst)
	f := File{
		Version:     FileVersion,
		Materials:   s.Materials,
		Camera:      s.Camera,
		Lights:      s.Lights,
		Environment: s.Environment,
	}
	for i, g := range s.Meshes {
		bmf := formats.BMFFromMesh(g.Mesh)
		name := MeshFileName(dst, i)
		if err := files.WriteFile(filepath.Join(dir, name), bmf.Bytes()); err != nil {
			return "", fmt.Errorf("writing %s: %w", name, err)
		}
		f.Meshes = append(f.Meshes, MeshEntry{
			File:        name,
			Transparent: g.Transparent,
			Attributes:  g.Mesh.Attributes().String(),
			Shapes:      len(g.Mesh.Shapes()),
			Vertices:    g.Mesh.NumVertices(),
			Triangles:   g.Mesh.NumTriangles(),
			Nodes:       len(bmf.Nodes),
			Bounds:      Bounds{Min: bmf.Bounds.Min, Max: bmf.Bounds.Max},
		})
		logger.Debug("mesh staged",
			zap.String("file", name),
			zap.Bool("transparent", g.Transparent),
			zap.Int("vertices", g.Mesh.NumVertices()))
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return "", err
	}
	path := DescriptionPath(dst)
	if err := files.WriteFile(path, data); err != nil {
		return "", fmt.Errorf("writing scene: %w", err)
	}
	return path, nil
}

// Load reads a scene description and the mesh files it names.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scene %s: %w", path, err)
	}
	if f.Version != FileVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.Version)
	}

	s := &Scene{
		Materials:   f.Materials,
		Camera:      f.Camera,
		Lights:      f.Lights,
		Environment: f.Environment,
	}
	dir := filepath.Dir(path)
	for _, e := range f.Meshes {
		bmf, err := formats.ParseBMFFile(filepath.Join(dir, e.File))
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", e.File, err)
		}
		s.Meshes = append(s.Meshes, mesh.Group{Transparent: e.Transparent, Mesh: bmf.Mesh()})
	}
	return s, nil
}
