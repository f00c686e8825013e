package source

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"

	textenc "github.com/Faultbox/objconv/pkg/encoding"
)

// textureMaps holds the MTL texture statements the OBJ decoder skips.
type textureMaps struct {
	Alpha    string // map_d
	Specular string // map_Ks
}

// skippedMaps lists the statements scanTextureMaps reads itself.
var skippedMaps = []string{"map_d", "map_Ks"}

// scanTextureMaps reads map_d and map_Ks per material. Options before
// the file name are ignored; the last field is the file.
func scanTextureMaps(r io.Reader) (map[string]textureMaps, error) {
	maps := make(map[string]textureMaps)
	var current string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		file := fields[len(fields)-1]
		switch fields[0] {
		case "newmtl":
			current = fields[1]
		case "map_d":
			if current != "" {
				tm := maps[current]
				tm.Alpha = file
				maps[current] = tm
			}
		case "map_Ks":
			if current != "" {
				tm := maps[current]
				tm.Specular = file
				maps[current] = tm
			}
		}
	}
	return maps, sc.Err()
}

// openMaterialLibrary opens the material library the decoder read for the
// OBJ at objPath: the explicit override, then the mtllib name, then the
// OBJ path with an .mtl extension.
func openMaterialLibrary(objPath, override, matlib string) (*os.File, error) {
	var candidates []string
	if override != "" {
		candidates = append(candidates, override)
	}
	if matlib != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(objPath), matlib))
	}
	candidates = append(candidates, strings.TrimSuffix(objPath, ".obj")+".mtl")

	var err error
	for _, path := range candidates {
		var f *os.File
		if f, err = os.Open(path); err == nil {
			return f, nil
		}
	}
	return nil, err
}

// applyTextureMaps sets the alpha and specular textures of the model's
// materials from maps, keyed by raw material name.
func (m *Model) applyTextureMaps(maps map[string]textureMaps, names encoding.Encoding) {
	byName := make(map[string]textureMaps, len(maps))
	for raw, tm := range maps {
		byName[textenc.StringToUTF8(raw, names)] = tm
	}
	for i := range m.Materials {
		tm, ok := byName[m.Materials[i].Name]
		if !ok {
			continue
		}
		if tm.Alpha != "" {
			m.Materials[i].AlphaTexture = textenc.NormalizePath(textenc.StringToUTF8(tm.Alpha, names))
		}
		if tm.Specular != "" {
			m.Materials[i].SpecularTexture = textenc.NormalizePath(textenc.StringToUTF8(tm.Specular, names))
		}
	}

	// the decoder reported these statements as unsupported
	kept := m.Warnings[:0]
	for _, w := range m.Warnings {
		if !isSkippedMapWarning(w) {
			kept = append(kept, w)
		}
	}
	m.Warnings = kept
}

func isSkippedMapWarning(w string) bool {
	for _, key := range skippedMaps {
		if strings.HasSuffix(w, "field not supported: "+key) {
			return true
		}
	}
	return false
}
