package convert

import (
	"math"

	"github.com/Faultbox/objconv/internal/scene"
	"github.com/Faultbox/objconv/internal/source"
	"github.com/Faultbox/objconv/internal/texture"
)

// Roughness maps a Phong shininess exponent to a roughness in [0, 1].
func Roughness(shininess float32) float32 {
	if shininess < 0 {
		shininess = 0
	}
	return float32(math.Sqrt(2 / (float64(shininess) + 2)))
}

// convertMaterials turns the source materials into scene materials and
// appends the fallback material. forced names materials that are always
// transparent.
func convertMaterials(src []source.Material, textures *texture.Converter, forced map[string]bool) []scene.Material {
	out := make([]scene.Material, 0, len(src)+1)
	for _, m := range src {
		mat := scene.Material{
			Name:      m.Name,
			Albedo:    m.Diffuse,
			Specular:  (m.Specular[0] + m.Specular[1] + m.Specular[2]) / 3,
			Occlusion: m.Dissolve,
			Emission:  m.Emissive,
			Roughness: Roughness(m.Shininess),
		}

		albedo := textures.Resolve(m.DiffuseTexture)
		mat.Textures.Albedo = albedo.Path
		mat.Textures.Occlusion = textures.Resolve(m.AlphaTexture).Path
		mat.Textures.Specular = textures.Resolve(m.SpecularTexture).Path

		mat.Transparent = mat.Occlusion < 1 ||
			mat.Textures.Occlusion != "" ||
			albedo.HasAlpha ||
			forced[m.Name]
		out = append(out, mat)
	}
	out = append(out, scene.DefaultMaterial(scene.FallbackMaterialName))
	return out
}
