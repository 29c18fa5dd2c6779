package colormap

import (
	"sort"
	"strings"

	"github.com/echolmy/vtkmesh/pkg/mesh"
)

// Options tunes how VertexColors converts attribute data to colors. The
// zero value derives everything from the geometry itself.
type Options struct {
	// MapName forces a specific ramp. Empty uses the scalar attribute's own
	// table name.
	MapName string

	// Min and Max fix the normalization range. When Min >= Max the range is
	// derived from the data.
	Min, Max float32
}

// VertexColors produces one RGBA color per vertex from the geometry's
// attributes, in priority order: single-component point scalars mapped
// through a color ramp, then per-cell color scalars broadcast over the
// triangle-to-cell mapping, then per-point color scalars. Without any
// applicable attribute every vertex is white.
func VertexColors(g *mesh.Geometry, opts Options) ([]mesh.RGBA, error) {
	if g.IsEmpty() {
		return nil, mesh.ErrMissingData("no vertices to color")
	}

	if attr, ok := findScalar(g, mesh.LocationPoint); ok {
		return pointScalarColors(g, attr, opts), nil
	}
	if attr, ok := findColorScalar(g, mesh.LocationCell); ok {
		return cellColorScalars(g, attr), nil
	}
	if attr, ok := findColorScalar(g, mesh.LocationPoint); ok {
		return pointColorScalars(g, attr), nil
	}

	colors := make([]mesh.RGBA, g.VertexCount())
	for i := range colors {
		colors[i] = mesh.White
	}
	return colors, nil
}

// findScalar returns the first single-component scalar attribute at loc,
// by attribute name order.
func findScalar(g *mesh.Geometry, loc mesh.Location) (mesh.Attribute, bool) {
	for _, key := range sortedKeys(g, loc) {
		attr := g.Attributes[key]
		if attr.Kind == mesh.AttrScalar && attr.NumComp <= 1 && len(attr.Scalars) > 0 {
			return attr, true
		}
	}
	return mesh.Attribute{}, false
}

func findColorScalar(g *mesh.Geometry, loc mesh.Location) (mesh.Attribute, bool) {
	for _, key := range sortedKeys(g, loc) {
		attr := g.Attributes[key]
		if attr.Kind == mesh.AttrColorScalar && len(attr.Colors) > 0 {
			return attr, true
		}
	}
	return mesh.Attribute{}, false
}

func sortedKeys(g *mesh.Geometry, loc mesh.Location) []mesh.AttributeKey {
	var keys []mesh.AttributeKey
	for key := range g.Attributes {
		if key.Loc == loc && !strings.HasPrefix(key.Name, mesh.LookupTablePrefix) {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
	return keys
}

func pointScalarColors(g *mesh.Geometry, attr mesh.Attribute, opts Options) []mesh.RGBA {
	ramp := rampFor(g, attr, opts)

	lo, hi := opts.Min, opts.Max
	if lo >= hi {
		lo, hi = attr.Scalars[0], attr.Scalars[0]
		for _, v := range attr.Scalars {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	span := hi - lo

	colors := make([]mesh.RGBA, g.VertexCount())
	for i := range colors {
		colors[i] = mesh.White
	}
	for i := 0; i < len(attr.Scalars) && i < len(colors); i++ {
		normalized := float32(0.5)
		if span > 0 {
			normalized = (attr.Scalars[i] - lo) / span
		}
		colors[i] = ramp.InterpolatedColor(normalized)
	}
	return colors
}

// rampFor resolves the ramp used for a scalar attribute: an explicit
// option wins, then the file's inline lookup table, then the named ramp.
func rampFor(g *mesh.Geometry, attr mesh.Attribute, opts Options) ColorMap {
	if opts.MapName != "" {
		return Get(opts.MapName)
	}
	if attr.Table != nil {
		return ColorMap{Name: attr.TableName, Colors: attr.Table}
	}
	if table, ok := g.LookupTable(attr.TableName); ok {
		return ColorMap{Name: attr.TableName, Colors: table}
	}
	return Get(attr.TableName)
}

func cellColorScalars(g *mesh.Geometry, attr mesh.Attribute) []mesh.RGBA {
	colors := make([]mesh.RGBA, g.VertexCount())
	for i := range colors {
		colors[i] = mesh.White
	}
	for tri := 0; tri < g.TriangleCount(); tri++ {
		cell := g.CellFor(tri)
		if cell >= len(attr.Colors) {
			continue
		}
		c := toRGBA(attr.Colors[cell])
		for j := 0; j < 3; j++ {
			if idx := g.Indices[3*tri+j]; int(idx) < len(colors) {
				colors[idx] = c
			}
		}
	}
	return colors
}

func pointColorScalars(g *mesh.Geometry, attr mesh.Attribute) []mesh.RGBA {
	colors := make([]mesh.RGBA, g.VertexCount())
	for i := range colors {
		colors[i] = mesh.White
		if i < len(attr.Colors) {
			colors[i] = toRGBA(attr.Colors[i])
		}
	}
	return colors
}

func toRGBA(c []float32) mesh.RGBA {
	out := mesh.White
	for i := 0; i < len(c) && i < 4; i++ {
		out[i] = c[i]
	}
	return out
}
