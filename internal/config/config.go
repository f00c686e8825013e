// Package config handles converter configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/objconv/pkg/encoding"
)

// Configuration errors.
var (
	ErrUnbalancedFlipAxes = errors.New("flip_axes must list axes in pairs")
	ErrInvalidFlipAxis    = errors.New("flip axis must be 0 (x), 1 (y) or 2 (z)")
	ErrInvalidFormat      = errors.New("unknown output format")
)

// Output formats.
const (
	FormatScene = "scene"
	FormatMSH   = "msh"
	FormatBoth  = "both"
)

// Config holds all converter settings.
type Config struct {
	Mesh      MeshConfig      `yaml:"mesh"`
	Materials MaterialsConfig `yaml:"materials"`
	Textures  TexturesConfig  `yaml:"textures"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// MeshConfig holds geometry processing settings.
type MeshConfig struct {
	Normals          bool    `yaml:"normals"`           // Keep or generate normals
	Texcoords        bool    `yaml:"texcoords"`         // Keep or generate texcoords
	RemoveDuplicates bool    `yaml:"remove_duplicates"` // Fold duplicate vertex records
	Tolerance        float32 `yaml:"tolerance"`         // Summed absolute difference for a duplicate
	SplitMaterials   bool    `yaml:"split_materials"`   // One shape per material run
	FlipAxes         []int   `yaml:"flip_axes"`         // Axis pairs to swap, e.g. [1, 2]
}

// MaterialsConfig holds material handling settings.
type MaterialsConfig struct {
	Transparent  []string `yaml:"transparent"`   // Materials forced into the transparent group
	NameEncoding string   `yaml:"name_encoding"` // Encoding of non-UTF-8 names, e.g. "euc-kr"
}

// TexturesConfig holds texture conversion settings.
type TexturesConfig struct {
	Generate  bool   `yaml:"generate"`   // Convert referenced textures to PNG
	OutputDir string `yaml:"output_dir"` // Relative to the output file
}

// OutputConfig holds output settings.
type OutputConfig struct {
	Format string `yaml:"format"` // scene, msh or both
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Mesh: MeshConfig{
			Normals:          true,
			Texcoords:        true,
			RemoveDuplicates: true,
			Tolerance:        1e-5,
			SplitMaterials:   true,
		},
		Textures: TexturesConfig{
			Generate:  true,
			OutputDir: "textures",
		},
		Output: OutputConfig{
			Format: FormatScene,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var err error
	if len(c.Mesh.FlipAxes)%2 != 0 {
		err = multierr.Append(err, fmt.Errorf("%w: got %d axes", ErrUnbalancedFlipAxes, len(c.Mesh.FlipAxes)))
	}
	for _, axis := range c.Mesh.FlipAxes {
		if axis < 0 || axis > 2 {
			err = multierr.Append(err, fmt.Errorf("%w: got %d", ErrInvalidFlipAxis, axis))
		}
	}
	switch c.Output.Format {
	case FormatScene, FormatMSH, FormatBoth:
	default:
		err = multierr.Append(err, fmt.Errorf("%w: %q", ErrInvalidFormat, c.Output.Format))
	}
	if _, encErr := encoding.Lookup(c.Materials.NameEncoding); encErr != nil {
		err = multierr.Append(err, encErr)
	}
	return err
}

// FlipPairs returns FlipAxes grouped in pairs. A trailing unpaired axis is
// ignored; Validate rejects it.
func (c *Config) FlipPairs() [][2]int {
	var pairs [][2]int
	for i := 0; i+1 < len(c.Mesh.FlipAxes); i += 2 {
		pairs = append(pairs, [2]int{c.Mesh.FlipAxes[i], c.Mesh.FlipAxes[i+1]})
	}
	return pairs
}
