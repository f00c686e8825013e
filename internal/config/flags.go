package config

import (
	"flag"
	"strconv"
	"strings"
)

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagNoNormals   = flag.Bool("no-normals", false, "Drop normals from the output")
	flagNoTexcoords = flag.Bool("no-texcoords", false, "Drop texture coordinates from the output")
	flagNoDedup     = flag.Bool("no-dedup", false, "Keep duplicate vertices")
	flagTolerance   = flag.Float64("tolerance", -1, "Duplicate vertex tolerance")
	flagNoSplit     = flag.Bool("no-split", false, "Do not split sub-meshes by material")
	flagFlip        = flag.String("flip", "", "Comma-separated axis pairs to swap, e.g. 1,2")
	flagTransparent = flag.String("transparent", "", "Comma-separated materials to force transparent")
	flagNoTextures  = flag.Bool("no-textures", false, "Do not convert textures")
	flagFormat      = flag.String("format", "", "Output format: scene, msh or both")
	flagLogFile     = flag.String("log-file", "", "Write logs to this file as well")
	flagSaveConfig  = flag.Bool("save-config", false, "Save the effective settings as the user config")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether -save-config was given.
func SaveRequested() bool {
	return *flagSaveConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagNoNormals {
		cfg.Mesh.Normals = false
	}
	if *flagNoTexcoords {
		cfg.Mesh.Texcoords = false
	}
	if *flagNoDedup {
		cfg.Mesh.RemoveDuplicates = false
	}
	if *flagTolerance >= 0 {
		cfg.Mesh.Tolerance = float32(*flagTolerance)
	}
	if *flagNoSplit {
		cfg.Mesh.SplitMaterials = false
	}
	if *flagFlip != "" {
		axes, err := parseAxes(*flagFlip)
		if err != nil {
			return err
		}
		cfg.Mesh.FlipAxes = axes
	}
	if *flagTransparent != "" {
		cfg.Materials.Transparent = splitList(*flagTransparent)
	}
	if *flagNoTextures {
		cfg.Textures.Generate = false
	}
	if *flagFormat != "" {
		cfg.Output.Format = *flagFormat
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	return nil
}

// parseAxes parses "1,2" or "x,z" into axis numbers.
func parseAxes(s string) ([]int, error) {
	var axes []int
	for _, part := range splitList(s) {
		switch strings.ToLower(part) {
		case "x":
			axes = append(axes, 0)
		case "y":
			axes = append(axes, 1)
		case "z":
			axes = append(axes, 2)
		default:
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, ErrInvalidFlipAxis
			}
			axes = append(axes, n)
		}
	}
	return axes, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
