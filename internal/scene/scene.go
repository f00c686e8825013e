// Package scene assembles converted meshes, materials and defaults into a
// scene and writes it as a YAML description plus one BMF file per mesh.
package scene

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/objconv/pkg/mesh"
)

// Scene errors.
var (
	ErrInvalidScene = errors.New("invalid scene")
)

// FallbackMaterialName names the material used by shapes without one.
const FallbackMaterialName = "missing_material"

// Textures holds texture paths relative to the scene description.
type Textures struct {
	Albedo    string `yaml:"albedo,omitempty"`
	Occlusion string `yaml:"occlusion,omitempty"`
	Specular  string `yaml:"specular,omitempty"`
}

// Material is a physically based material.
type Material struct {
	Name         string     `yaml:"name"`
	Albedo       [3]float32 `yaml:"albedo,flow"`
	Specular     float32    `yaml:"specular"`
	Occlusion    float32    `yaml:"occlusion"` // 1 is fully opaque
	Emission     [3]float32 `yaml:"emission,flow"`
	Translucency [3]float32 `yaml:"translucency,flow"`
	Roughness    float32    `yaml:"roughness"`
	Metalness    float32    `yaml:"metalness"`
	Transparent  bool       `yaml:"transparent"`
	Textures     Textures   `yaml:"textures"`
}

// DefaultMaterial returns a white, opaque, fairly rough material.
func DefaultMaterial(name string) Material {
	return Material{
		Name:      name,
		Albedo:    [3]float32{1, 1, 1},
		Occlusion: 1,
		Roughness: 0.5,
	}
}

// Camera is a perspective camera.
type Camera struct {
	Position  [3]float32 `yaml:"position,flow"`
	Direction [3]float32 `yaml:"direction,flow"`
	FOV       float32    `yaml:"fov"` // vertical, in degrees
	Near      float32    `yaml:"near"`
	Far       float32    `yaml:"far"`
}

// DefaultCamera returns a camera at the origin looking down +Z.
func DefaultCamera() Camera {
	return Camera{
		Direction: [3]float32{0, 0, 1},
		FOV:       60,
		Near:      0.01,
		Far:       100,
	}
}

// LightType identifies a light model.
type LightType string

// Light types.
const (
	LightDirectional LightType = "directional"
	LightPoint       LightType = "point"
)

// Light is a scene light.
type Light struct {
	Type      LightType  `yaml:"type"`
	Color     [3]float32 `yaml:"color,flow"`
	Direction [3]float32 `yaml:"direction,flow,omitempty"`
	Position  [3]float32 `yaml:"position,flow,omitempty"`
}

// Environment describes the background.
type Environment struct {
	Color [3]float32 `yaml:"color,flow"`
}

// Scene is a converted model.
type Scene struct {
	Meshes      []mesh.Group
	Materials   []Material
	Camera      Camera
	Lights      []Light
	Environment Environment
}

// New returns a scene with the default camera, a single white
// directional light from above and a white environment.
func New(meshes []mesh.Group, materials []Material) *Scene {
	return &Scene{
		Meshes:    meshes,
		Materials: materials,
		Camera:    DefaultCamera(),
		Lights: []Light{{
			Type:      LightDirectional,
			Color:     [3]float32{1, 1, 1},
			Direction: [3]float32{0.1, -1, 0.1},
		}},
		Environment: Environment{Color: [3]float32{1, 1, 1}},
	}
}

// Verify reports every structural problem in the scene.
func (s *Scene) Verify() error {
	var err error
	if len(s.Meshes) == 0 {
		err = multierr.Append(err, fmt.Errorf("%w: no meshes", ErrInvalidScene))
	}
	for i, m := range s.Meshes {
		if m.Mesh == nil {
			err = multierr.Append(err, fmt.Errorf("%w: mesh %d is nil", ErrInvalidScene, i))
			continue
		}
		if verr := m.Mesh.Validate(); verr != nil {
			err = multierr.Append(err, fmt.Errorf("mesh %d: %w", i, verr))
		}
		for j, sh := range m.Mesh.Shapes() {
			if sh.VertexCount > mesh.MaxVertices16 {
				err = multierr.Append(err, fmt.Errorf("%w: mesh %d shape %d has %d vertices",
					ErrInvalidScene, i, j, sh.VertexCount))
			}
			if int(sh.MaterialID) >= len(s.Materials) {
				err = multierr.Append(err, fmt.Errorf("%w: mesh %d shape %d uses material %d of %d",
					ErrInvalidScene, i, j, sh.MaterialID, len(s.Materials)))
			}
		}
	}
	for i, l := range s.Lights {
		if l.Type != LightDirectional && l.Type != LightPoint {
			err = multierr.Append(err, fmt.Errorf("%w: light %d has type %q", ErrInvalidScene, i, l.Type))
		}
	}
	return err
}

// RemoveUnusedMaterials drops materials no shape references, renumbers
// the remaining ones in order and returns how many were removed.
func (s *Scene) RemoveUnusedMaterials() int {
	used := make([]bool, len(s.Materials))
	for _, m := range s.Meshes {
		for _, sh := range m.Mesh.Shapes() {
			if int(sh.MaterialID) < len(used) {
				used[sh.MaterialID] = true
			}
		}
	}

	remap := make([]uint32, len(s.Materials))
	kept := s.Materials[:0]
	for i, mat := range s.Materials {
		if !used[i] {
			continue
		}
		remap[i] = uint32(len(kept))
		kept = append(kept, mat)
	}
	removed := len(s.Materials) - len(kept)
	s.Materials = kept

	for _, m := range s.Meshes {
		m.Mesh.RemapMaterials(func(id uint32) uint32 {
			if int(id) < len(remap) {
				return remap[id]
			}
			return id
		})
	}
	return removed
}
