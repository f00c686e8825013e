// Package convert drives the conversion of an OBJ model into merged 16-bit
// meshes, scene materials and output files.
package convert

import (
	"fmt"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/objconv/internal/config"
	"github.com/Faultbox/objconv/internal/logger"
	"github.com/Faultbox/objconv/internal/scene"
	"github.com/Faultbox/objconv/internal/source"
	"github.com/Faultbox/objconv/internal/staging"
	"github.com/Faultbox/objconv/internal/texture"
	"github.com/Faultbox/objconv/pkg/encoding"
	"github.com/Faultbox/objconv/pkg/formats"
	"github.com/Faultbox/objconv/pkg/mesh"
)

// Stats summarizes what a conversion changed.
type Stats struct {
	GeneratedNormals   int
	GeneratedTexcoords int
	RemovedVertices    int
	RemovedNormals     int
	RemovedTexcoords   int
	ZeroFilled         int // corners missing a channel of their sub-mesh layout
	ExtraFragments     int // meshes added by the 16-bit split
	RemovedMaterials   int
	MaxVertexCount     int
	Textures           int // distinct texture paths resolved
	TextureCacheHits   int // references served by an earlier resolve
}

// Converter converts models with a fixed configuration.
type Converter struct {
	cfg      *config.Config
	stats    Stats
	textures *texture.Converter // of the last conversion
}

// New creates a converter.
func New(cfg *config.Config) *Converter {
	return &Converter{cfg: cfg}
}

// Stats returns the counters of the last conversion.
func (c *Converter) Stats() Stats { return c.stats }

// attributes returns the vertex layout every output mesh gets.
func (c *Converter) attributes() mesh.Attributes {
	attrs := mesh.Position
	if c.cfg.Mesh.Normals {
		attrs |= mesh.Normal
	}
	if c.cfg.Mesh.Texcoords {
		attrs |= mesh.Texcoord0
	}
	return attrs
}

// Load reads the source model and logs its statistics.
func (c *Converter) Load(input string) (*source.Model, error) {
	names, err := encoding.Lookup(c.cfg.Materials.NameEncoding)
	if err != nil {
		return nil, err
	}
	model, err := source.Load(input, source.Options{NameEncoding: names})
	if err != nil {
		return nil, err
	}
	for _, w := range model.Warnings {
		logger.Warn("source", zap.String("warning", w))
	}

	s := model.Stats()
	logger.Info("model loaded",
		zap.String("path", input),
		zap.Int("positions", s.Positions),
		zap.Int("normals", s.Normals),
		zap.Int("texcoords", s.Texcoords),
		zap.Int("materials", s.Materials),
		zap.Int("shapes", s.Shapes),
		zap.Int("indices", s.Indices),
		zap.Int("triangles", s.Triangles))
	return model, nil
}

// Convert turns a loaded model into a verified scene. Converted textures
// are referenced relative to outputDir and written by Write.
func (c *Converter) Convert(model *source.Model, outputDir string) (*scene.Scene, error) {
	c.stats = Stats{}
	if len(model.SubMeshes) == 0 {
		return nil, mesh.ErrNoGeometry
	}

	fallback := uint32(len(model.Materials))
	meshes, err := c.buildMeshes(model, fallback)
	if err != nil {
		return nil, err
	}

	forced := make(map[string]bool, len(c.cfg.Materials.Transparent))
	for _, name := range c.cfg.Materials.Transparent {
		forced[name] = true
	}
	c.textures = texture.NewConverter(model.Dir, outputDir, c.cfg.Textures.OutputDir, c.cfg.Textures.Generate)
	materials := convertMaterials(model.Materials, c.textures, forced)

	groups, err := mesh.MergeByTransparency(meshes, func(id uint32) bool {
		return int(id) < len(materials) && materials[id].Transparent
	})
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		g.Mesh.GenerateBoundingVolumes()
		c.stats.MaxVertexCount = max(c.stats.MaxVertexCount, g.Mesh.NumVertices())
	}

	s := scene.New(groups, materials)
	if err := s.Verify(); err != nil {
		return nil, fmt.Errorf("verifying scene: %w", err)
	}
	c.stats.RemovedMaterials = s.RemoveUnusedMaterials()
	c.stats.Textures = c.textures.Cache().Len()
	c.stats.TextureCacheHits, _ = c.textures.Cache().Stats()

	logger.Info("conversion finished",
		zap.Int("meshes", len(groups)),
		zap.Int("materials", len(s.Materials)),
		zap.Int("generatedNormals", c.stats.GeneratedNormals),
		zap.Int("generatedTexcoords", c.stats.GeneratedTexcoords),
		zap.Int("removedVertices", c.stats.RemovedVertices),
		zap.Int("removedNormals", c.stats.RemovedNormals),
		zap.Int("removedTexcoords", c.stats.RemovedTexcoords),
		zap.Int("removedMaterials", c.stats.RemovedMaterials),
		zap.Int("maxVertexCount", c.stats.MaxVertexCount),
		zap.Int("textures", c.stats.Textures),
		zap.Int("textureCacheHits", c.stats.TextureCacheHits))
	return s, nil
}

// buildMeshes runs every sub-mesh through the geometry stages and returns
// the 16-bit fragments in sub-mesh order. Faces without a material get
// the fallback id.
func (c *Converter) buildMeshes(model *source.Model, fallback uint32) ([]*mesh.Mesh16, error) {
	attrs := c.attributes()
	gens := mesh.DefaultGenerators()
	progress := logger.NewProgress("processing meshes", len(model.SubMeshes))

	var out []*mesh.Mesh16
	for i := range model.SubMeshes {
		sub := &model.SubMeshes[i]
		raw, ids, buildStats, err := mesh.BuildRaw(&model.Attrib, sub, attrs)
		if err != nil {
			return nil, err
		}
		if buildStats.MissingAttributes > 0 {
			logger.Warn("corners missing attributes were zero-filled",
				zap.String("mesh", sub.Name),
				zap.Int("corners", buildStats.MissingAttributes))
		}
		c.stats.ZeroFilled += buildStats.MissingAttributes

		for t, id := range ids {
			if id == mesh.NoMaterial {
				ids[t] = fallback
			}
		}
		raw.RemapMaterials(func(id uint32) uint32 {
			if id == mesh.NoMaterial {
				return fallback
			}
			return id
		})

		parts := []*mesh.Mesh32{raw}
		if mesh.MixedMaterials(ids) {
			if c.cfg.Mesh.SplitMaterials {
				parts = mesh.SplitByMaterial(raw, ids)
			} else {
				logger.Warn("mesh has mixed materials, using the first",
					zap.String("mesh", sub.Name))
			}
		}

		for _, part := range parts {
			if c.cfg.Mesh.RemoveDuplicates {
				c.stats.RemovedVertices += part.RemoveDuplicateVertices(c.cfg.Mesh.Tolerance)
			}
			fragments := part.Force16BitIndices()
			if len(fragments) > 1 {
				logger.Warn("mesh split for 16-bit indices",
					zap.String("mesh", sub.Name),
					zap.Int("fragments", len(fragments)))
				c.stats.ExtraFragments += len(fragments) - 1
			}
			for _, f := range fragments {
				c.complete(f, attrs, gens)
				out = append(out, f)
			}
		}
		progress.Update(i + 1)
	}
	return out, nil
}

// complete brings f to the output layout and applies the axis flips.
func (c *Converter) complete(f *mesh.Mesh16, attrs mesh.Attributes, gens []mesh.VertexGenerator) {
	cs := f.ChangeAttributes(attrs, gens)
	c.stats.GeneratedNormals += cs.Generated[mesh.Normal]
	c.stats.GeneratedTexcoords += cs.Generated[mesh.Texcoord0]
	c.stats.RemovedNormals += cs.Removed[mesh.Normal]
	c.stats.RemovedTexcoords += cs.Removed[mesh.Texcoord0]
	for ch, n := range cs.Unfilled {
		logger.Warn("channel left zero", zap.Stringer("channel", ch), zap.Int("vertices", n))
	}
	for _, p := range c.cfg.FlipPairs() {
		f.SwapAxes(p[0], p[1])
	}
}

// Write stores the scene at output according to the configured format and
// returns the paths of the description and MSH files. Converted textures
// are written alongside. Either every file appears or none does.
func (c *Converter) Write(s *scene.Scene, output string) ([]string, error) {
	files := staging.New()
	written, err := c.stage(files, s, trimExt(output))
	if err != nil {
		return nil, multierr.Append(err, files.Abort())
	}
	if err := files.Commit(); err != nil {
		return nil, err
	}
	return written, nil
}

// stage adds every output file to files and returns the paths of the
// scene description and MSH file among them.
func (c *Converter) stage(files *staging.Files, s *scene.Scene, output string) ([]string, error) {
	var written []string
	if c.textures != nil {
		logger.Debug("staging textures", zap.Int("count", c.textures.Pending()))
		if err := c.textures.Flush(files); err != nil {
			return nil, err
		}
	}
	format := c.cfg.Output.Format
	if format == config.FormatScene || format == config.FormatBoth {
		path, err := s.Stage(files, output)
		if err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	if format == config.FormatMSH || format == config.FormatBoth {
		meshes := make([]*mesh.Mesh16, len(s.Meshes))
		for i, g := range s.Meshes {
			meshes[i] = g.Mesh
		}
		msh, err := formats.MSHFromMeshes(meshes)
		if err != nil {
			return nil, err
		}
		path := output + ".msh"
		if err := files.WriteFile(path, msh.Bytes()); err != nil {
			return nil, fmt.Errorf("writing MSH file: %w", err)
		}
		written = append(written, path)
	}
	return written, nil
}

// Run loads input, converts it and writes the result next to output.
func (c *Converter) Run(input, output string) ([]string, error) {
	model, err := c.Load(input)
	if err != nil {
		return nil, err
	}
	s, err := c.Convert(model, filepath.Dir(output))
	if err != nil {
		return nil, err
	}
	return c.Write(s, output)
}

// trimExt drops an output extension the converter itself appends.
func trimExt(p string) string {
	if ext := filepath.Ext(p); ext == ".yaml" || ext == ".msh" {
		return p[:len(p)-len(ext)]
	}
	return p
}
