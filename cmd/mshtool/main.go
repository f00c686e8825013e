// mshtool is a CLI utility for inspecting converter output files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/objconv/internal/scene"
	"github.com/Faultbox/objconv/pkg/formats"
	"github.com/Faultbox/objconv/pkg/mesh"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "verify", "check":
		cmdVerify(args)
	case "dump":
		cmdDump(args)
	case "export":
		cmdExport(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`mshtool - converted mesh utility

Usage:
  mshtool <command> [options]

Commands:
  info <file>                  Show file summary (.msh, .bmf or scene .yaml)
  verify <file>                Check mesh and scene invariants
  dump [-n N] <file>           Print vertex records and triangles
  export <scene.yaml> <out>    Flatten a scene into an MSH file

Examples:
  mshtool info house.yaml
  mshtool dump -n 10 house.0.bmf
  mshtool export house.yaml house.msh`)
}

// file is a loaded output file. Exactly one field is set.
type file struct {
	msh   *formats.MSH
	bmf   *formats.BMF
	scene *scene.Scene
}

func load(path string) (*file, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		s, err := scene.Load(path)
		return &file{scene: s}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch formats.Detect(data) {
	case formats.KindMSH:
		m, err := formats.ParseMSH(data)
		return &file{msh: m}, err
	case formats.KindBMF:
		b, err := formats.ParseBMF(data)
		return &file{bmf: b}, err
	}
	return nil, fmt.Errorf("unknown file type: %s", path)
}

func mustLoad(path string) *file {
	f, err := load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return f
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mshtool info <file>")
		os.Exit(1)
	}

	f := mustLoad(args[0])
	fmt.Printf("File: %s\n", args[0])
	switch {
	case f.msh != nil:
		fmt.Printf("Type:       MSH\n")
		fmt.Printf("Attributes: %s\n", f.msh.Attributes())
		fmt.Printf("Shapes:     %d\n", len(f.msh.Shapes))
		fmt.Printf("Vertices:   %d\n", f.msh.NumRecords())
		fmt.Printf("Triangles:  %d\n", f.msh.NumIndices()/3)
	case f.bmf != nil:
		fmt.Printf("Type:       BMF\n")
		printMesh(f.bmf.Mesh())
	case f.scene != nil:
		s := f.scene
		fmt.Printf("Type:       scene\n")
		fmt.Printf("Meshes:     %d\n", len(s.Meshes))
		fmt.Printf("Materials:  %d\n", len(s.Materials))
		fmt.Printf("Lights:     %d\n", len(s.Lights))
		for i, g := range s.Meshes {
			kind := "opaque"
			if g.Transparent {
				kind = "transparent"
			}
			fmt.Printf("\nMesh %d (%s):\n", i, kind)
			printMesh(g.Mesh)
		}
		fmt.Println("\nMaterials:")
		for i, m := range s.Materials {
			flags := ""
			if m.Transparent {
				flags = " transparent"
			}
			fmt.Printf("  %3d %-24s roughness %.3f%s\n", i, m.Name, m.Roughness, flags)
		}
	}
}

func printMesh(m *mesh.Mesh16) {
	fmt.Printf("Attributes: %s\n", m.Attributes())
	fmt.Printf("Shapes:     %d\n", len(m.Shapes()))
	fmt.Printf("Vertices:   %d\n", m.NumVertices())
	fmt.Printf("Triangles:  %d\n", m.NumTriangles())

	bv := m.Volumes()
	if bv == nil {
		return
	}
	fmt.Printf("Bounds:     %v - %v (center %v)\n", bv.Bounds.Min, bv.Bounds.Max, bv.Bounds.Center())
	leaves := 0
	for _, n := range bv.Nodes {
		if n.Leaf() {
			leaves++
		}
	}
	fmt.Printf("Tree:       %d nodes, %d leaves\n", len(bv.Nodes), leaves)
	for i, box := range bv.Shapes {
		fmt.Printf("  shape %3d  %v - %v\n", i, box.Min, box.Max)
	}
}

func cmdVerify(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mshtool verify <file>")
		os.Exit(1)
	}

	f := mustLoad(args[0])
	var err error
	switch {
	case f.msh != nil:
		err = f.msh.Validate()
	case f.bmf != nil:
		err = f.bmf.Mesh().Validate()
	case f.scene != nil:
		err = f.scene.Verify()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")
}

func cmdDump(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	limit := fs.Int("n", 20, "Limit records per section (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: mshtool dump [-n N] <file>")
		os.Exit(1)
	}

	f := mustLoad(fs.Arg(0))
	switch {
	case f.msh != nil:
		stride := f.msh.Attributes().Stride()
		dumpVertices(f.msh.Vertices, stride, *limit)
		for i, shape := range f.msh.Shapes {
			fmt.Printf("Shape %d: %d indices\n", i, len(shape))
			dumpTriangles(shape, *limit)
		}
	case f.bmf != nil:
		dumpMesh(f.bmf.Mesh(), *limit)
	case f.scene != nil:
		for i, g := range f.scene.Meshes {
			fmt.Printf("Mesh %d\n", i)
			dumpMesh(g.Mesh, *limit)
		}
	}
}

func dumpMesh(m *mesh.Mesh16, limit int) {
	dumpVertices(m.Vertices(), m.Stride(), limit)
	indices := m.Indices()
	for i, s := range m.Shapes() {
		fmt.Printf("Shape %d: material %d, vertices %d+%d, indices %d+%d\n",
			i, s.MaterialID, s.VertexOffset, s.VertexCount, s.IndexOffset, s.IndexCount)
		dumpTriangles(indices[s.IndexOffset:s.IndexOffset+s.IndexCount], limit)
	}
}

func dumpVertices(vertices []float32, stride, limit int) {
	n := len(vertices) / stride
	for v := 0; v < n; v++ {
		if limit > 0 && v >= limit {
			fmt.Printf("  ... %d more\n", n-v)
			break
		}
		fmt.Printf("  v%-6d %v\n", v, vertices[v*stride:(v+1)*stride])
	}
}

func dumpTriangles[I int32 | uint16](indices []I, limit int) {
	n := len(indices) / 3
	for t := 0; t < n; t++ {
		if limit > 0 && t >= limit {
			fmt.Printf("  ... %d more\n", n-t)
			break
		}
		fmt.Printf("  t%-6d %v\n", t, indices[3*t:3*t+3])
	}
}

func cmdExport(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: mshtool export <scene.yaml> <out.msh>")
		os.Exit(1)
	}

	s, err := scene.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	meshes := make([]*mesh.Mesh16, len(s.Meshes))
	for i, g := range s.Meshes {
		meshes[i] = g.Mesh
	}
	msh, err := formats.MSHFromMeshes(meshes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := msh.WriteFile(args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported: %s (%d shapes, %d vertices)\n", args[1], len(msh.Shapes), msh.NumRecords())
}
