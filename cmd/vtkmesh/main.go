// Command vtkmesh inspects and transforms legacy VTK meshes: it extracts
// surface geometry, builds detail levels, elevates mesh order, subdivides,
// generates wave surfaces, and writes STL.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/echolmy/vtkmesh/pkg/colormap"
	"github.com/echolmy/vtkmesh/pkg/export"
	"github.com/echolmy/vtkmesh/pkg/lod"
	"github.com/echolmy/vtkmesh/pkg/mesh"
	"github.com/echolmy/vtkmesh/pkg/refine"
	"github.com/echolmy/vtkmesh/pkg/vtk"
	"github.com/echolmy/vtkmesh/pkg/wave"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: vtkmesh <command> [flags]

Commands:
  info       print mesh statistics for a VTK file
  simplify   reduce triangle count and write STL
  levels     report eager LOD level sizes for a VTK file
  elevate    raise a linear mesh to quadratic order
  subdivide  tessellate each triangle into four and write STL
  wave       generate a plane-wave surface and write STL

Run "vtkmesh <command> -h" for command flags.
`)
}

func main() {
	verbose := false
	for _, arg := range os.Args[1:] {
		if arg == "-v" || arg == "--verbose" {
			verbose = true
		}
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo(os.Args[2:])
	case "simplify":
		err = runSimplify(os.Args[2:])
	case "levels":
		err = runLevels(os.Args[2:])
	case "elevate":
		err = runElevate(os.Args[2:])
	case "subdivide":
		err = runSubdivide(os.Args[2:])
	case "wave":
		err = runWave(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Bool("v", false, "Verbose logging")
	return fs
}

func runInfo(args []string) error {
	fs := newFlagSet("info")
	in := fs.String("in", "", "Path to a legacy VTK file")
	fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("-in is required")
	}

	g, err := vtk.Load(*in)
	if err != nil {
		return err
	}
	center, size := g.Bounds()
	fmt.Printf("%s: %d vertices, %d triangles\n", *in, g.VertexCount(), g.TriangleCount())
	fmt.Printf("bounds center (%.3f, %.3f, %.3f), diagonal %.3f\n",
		center[0], center[1], center[2], size)
	if len(g.QuadraticTriangles) > 0 || len(g.QuadraticEdges) > 0 {
		fmt.Printf("higher-order cells: %d quadratic triangles, %d quadratic edges\n",
			len(g.QuadraticTriangles), len(g.QuadraticEdges))
	}
	for _, key := range attributeKeys(g) {
		attr := g.Attributes[key]
		fmt.Printf("attribute %q (%s, %s): %d values\n",
			key.Name, key.Loc, attr.Kind, attr.Count())
	}
	for _, name := range g.LookupTableNames() {
		table, _ := g.LookupTable(name)
		fmt.Printf("lookup table %q: %d colors\n", name, len(table))
	}
	return nil
}

func attributeKeys(g *mesh.Geometry) []mesh.AttributeKey {
	var keys []mesh.AttributeKey
	for key := range g.Attributes {
		keys = append(keys, key)
	}
	// Point attributes first, names alphabetical.
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			a, b := keys[i], keys[j]
			if b.Loc < a.Loc || (b.Loc == a.Loc && b.Name < a.Name) {
				keys[i], keys[j] = keys[j], keys[i]
			}
		}
	}
	return keys
}

func runSimplify(args []string) error {
	fs := newFlagSet("simplify")
	in := fs.String("in", "", "Path to a legacy VTK file")
	out := fs.String("out", "", "Output STL path")
	ratio := fs.Float64("ratio", 0.5, "Target triangle ratio in (0, 1]")
	fs.Parse(args)
	if *in == "" || *out == "" {
		return fmt.Errorf("-in and -out are required")
	}

	g, err := vtk.Load(*in)
	if err != nil {
		return err
	}
	simplified, err := lod.Simplify(g, float32(*ratio))
	if err != nil {
		return err
	}
	fmt.Printf("simplified %d -> %d triangles\n", g.TriangleCount(), simplified.TriangleCount())
	return export.SaveSTL(*out, simplified)
}

func runLevels(args []string) error {
	fs := newFlagSet("levels")
	in := fs.String("in", "", "Path to a legacy VTK file")
	distance := fs.Float64("distance", 0, "Report the level selected at this viewer distance")
	fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("-in is required")
	}

	g, err := vtk.Load(*in)
	if err != nil {
		return err
	}
	m, err := lod.NewManager(g, nil)
	if err != nil {
		return err
	}
	for _, level := range lod.Levels() {
		lm, ok := m.Mesh(level)
		if !ok {
			fmt.Printf("level %d: absent\n", int(level))
			continue
		}
		fmt.Printf("level %d: %d triangles\n", int(level), lm.TriangleCount)
	}
	if *distance > 0 {
		selected := m.SelectByDistance(float32(*distance))
		fmt.Printf("distance %.1f selects level %d\n", *distance, int(selected))
	}
	return nil
}

func runElevate(args []string) error {
	fs := newFlagSet("elevate")
	in := fs.String("in", "", "Path to a legacy VTK file")
	out := fs.String("out", "", "Output STL path (written after subdividing the quadratic mesh)")
	order := fs.Int("order", 2, "Target mesh order")
	fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("-in is required")
	}

	g, err := vtk.Load(*in)
	if err != nil {
		return err
	}
	elevated, err := refine.Elevate(g, *order)
	if err != nil {
		return err
	}
	fmt.Printf("elevated to order %d: %d vertices, %d quadratic cells\n",
		*order, elevated.VertexCount(), len(elevated.QuadraticTriangles))

	if *out == "" {
		return nil
	}
	// STL holds linear triangles only, so tessellate before writing.
	tessellated, err := refine.Subdivide(elevated)
	if err != nil {
		return err
	}
	return export.SaveSTL(*out, tessellated)
}

func runSubdivide(args []string) error {
	fs := newFlagSet("subdivide")
	in := fs.String("in", "", "Path to a legacy VTK file")
	out := fs.String("out", "", "Output STL path")
	fs.Parse(args)
	if *in == "" || *out == "" {
		return fmt.Errorf("-in and -out are required")
	}

	g, err := vtk.Load(*in)
	if err != nil {
		return err
	}
	subdivided, err := refine.Subdivide(g)
	if err != nil {
		return err
	}
	fmt.Printf("subdivided %d -> %d triangles\n", g.TriangleCount(), subdivided.TriangleCount())
	return export.SaveSTL(*out, subdivided)
}

func runWave(args []string) error {
	fs := newFlagSet("wave")
	out := fs.String("out", "", "Output STL path")
	amplitude := fs.Float64("amplitude", 1, "Wave amplitude")
	kx := fs.Float64("kx", 1, "Wave vector x component")
	ky := fs.Float64("ky", 0, "Wave vector y component")
	omega := fs.Float64("omega", 1, "Angular frequency")
	tm := fs.Float64("time", 0, "Sample time")
	width := fs.Float64("width", 10, "Surface width")
	depth := fs.Float64("depth", 10, "Surface depth")
	res := fs.Int("res", 64, "Grid resolution per axis")
	ramp := fs.String("ramp", "viridis", "Color ramp for the height field")
	fs.Parse(args)
	if *out == "" {
		return fmt.Errorf("-out is required")
	}

	w := wave.PlaneWave{
		Amplitude: float32(*amplitude),
		Omega:     float32(*omega),
		Time:      float32(*tm),
	}
	w.SetDirection(float32(*kx), float32(*ky))

	g, err := wave.Surface(w, float32(*width), float32(*depth), *res, *res)
	if err != nil {
		return err
	}

	// Attach height as a scalar so downstream viewers can color it.
	heights := make([]float32, g.VertexCount())
	for i, v := range g.Vertices {
		heights[i] = v[1]
	}
	g.SetAttribute("height", mesh.LocationPoint, mesh.Attribute{
		Kind: mesh.AttrScalar, NumComp: 1, TableName: *ramp, Scalars: heights,
	})
	colors, err := colormap.VertexColors(g, colormap.Options{MapName: *ramp})
	if err != nil {
		return err
	}
	rgba := make([][]float32, len(colors))
	for i, c := range colors {
		rgba[i] = []float32{c[0], c[1], c[2], c[3]}
	}
	g.SetAttribute("color", mesh.LocationPoint, mesh.Attribute{
		Kind: mesh.AttrColorScalar, NValues: 4, Colors: rgba,
	})

	fmt.Printf("wave surface: %d vertices, %d triangles\n", g.VertexCount(), g.TriangleCount())
	return export.SaveSTL(*out, g)
}
