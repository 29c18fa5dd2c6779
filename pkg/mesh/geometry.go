package mesh

import (
	"fmt"
	"sort"
)

// LookupTablePrefix marks scalar attributes that are really inline lookup
// tables: the extractor stores a table named "ramp" under the attribute
// name LookupTablePrefix + "ramp" and ExtractLookupTables collects it.
const LookupTablePrefix = "__lut_"

// Geometry is the canonical triangle mesh: vertex positions, a flat
// triangle-list index buffer, named attributes, and bookkeeping that maps
// each triangle back to the source cell that produced it.
type Geometry struct {
	Vertices   []Vec3
	Indices    []uint32
	Attributes map[AttributeKey]Attribute

	// LookupTables maps table name to its RGBA palette, collected from
	// attributes carrying the reserved LookupTablePrefix.
	LookupTables map[string][]RGBA

	// TriangleToCell is parallel to Indices/3 and records the source cell
	// index of each triangle. Nil means triangles map 1:1 to cells.
	TriangleToCell []int

	// Auxiliary records for higher-order cells parsed directly from the
	// source data. Empty for purely linear meshes.
	QuadraticTriangles []QuadraticTriangle
	QuadraticEdges     []QuadraticEdge
}

// New creates a Geometry from vertices, a triangle index buffer, and
// attributes. attrs may be nil.
func New(vertices []Vec3, indices []uint32, attrs map[AttributeKey]Attribute) *Geometry {
	if attrs == nil {
		attrs = make(map[AttributeKey]Attribute)
	}
	return &Geometry{
		Vertices:     vertices,
		Indices:      indices,
		Attributes:   attrs,
		LookupTables: make(map[string][]RGBA),
	}
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Vertices)
}

// TriangleCount returns the number of triangles.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (g *Geometry) IsEmpty() bool {
	return len(g.Vertices) == 0
}

// Attribute returns the attribute stored under (name, loc).
func (g *Geometry) Attribute(name string, loc Location) (Attribute, bool) {
	a, ok := g.Attributes[AttributeKey{Name: name, Loc: loc}]
	return a, ok
}

// SetAttribute stores attr under (name, loc), replacing any previous value.
func (g *Geometry) SetAttribute(name string, loc Location, attr Attribute) {
	if g.Attributes == nil {
		g.Attributes = make(map[AttributeKey]Attribute)
	}
	g.Attributes[AttributeKey{Name: name, Loc: loc}] = attr
}

// CellFor returns the source cell index for triangle tri. Without an
// explicit mapping, triangles correspond 1:1 to cells.
func (g *Geometry) CellFor(tri int) int {
	if g.TriangleToCell == nil {
		return tri
	}
	return g.TriangleToCell[tri]
}

// ExtractLookupTables collects every attribute stored under the reserved
// lookup-table prefix into the LookupTables map, keyed by table name.
func (g *Geometry) ExtractLookupTables() {
	if g.LookupTables == nil {
		g.LookupTables = make(map[string][]RGBA)
	}
	for key, attr := range g.Attributes {
		if len(key.Name) <= len(LookupTablePrefix) || key.Name[:len(LookupTablePrefix)] != LookupTablePrefix {
			continue
		}
		if attr.Kind == AttrScalar && attr.Table != nil {
			g.LookupTables[attr.TableName] = attr.Table
		}
	}
}

// LookupTable returns the palette stored under name.
func (g *Geometry) LookupTable(name string) ([]RGBA, bool) {
	t, ok := g.LookupTables[name]
	return t, ok
}

// LookupTableNames returns the stored table names in sorted order.
func (g *Geometry) LookupTableNames() []string {
	names := make([]string, 0, len(g.LookupTables))
	for name := range g.LookupTables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bounds returns the center of the axis-aligned bounding box and its
// diagonal length. An empty mesh reports a unit size at the origin so that
// distance-based LOD selection stays well defined.
func (g *Geometry) Bounds() (center Vec3, size float32) {
	if len(g.Vertices) == 0 {
		return Vec3{}, 1
	}
	min, max := g.Vertices[0], g.Vertices[0]
	for _, v := range g.Vertices[1:] {
		min = minVec(min, v)
		max = maxVec(max, v)
	}
	return min.Add(max).Scale(0.5), max.Sub(min).Length()
}

// Clone returns a deep copy sharing no mutable backing storage with g.
func (g *Geometry) Clone() *Geometry {
	out := &Geometry{
		Vertices:           append([]Vec3(nil), g.Vertices...),
		Indices:            append([]uint32(nil), g.Indices...),
		Attributes:         make(map[AttributeKey]Attribute, len(g.Attributes)),
		LookupTables:       make(map[string][]RGBA, len(g.LookupTables)),
		TriangleToCell:     append([]int(nil), g.TriangleToCell...),
		QuadraticTriangles: append([]QuadraticTriangle(nil), g.QuadraticTriangles...),
		QuadraticEdges:     append([]QuadraticEdge(nil), g.QuadraticEdges...),
	}
	for key, attr := range g.Attributes {
		out.Attributes[key] = attr.Clone()
	}
	for name, table := range g.LookupTables {
		out.LookupTables[name] = append([]RGBA(nil), table...)
	}
	return out
}

// Validate checks the structural invariants: the index buffer holds whole
// triangles, every index addresses a vertex, the triangle-to-cell mapping
// is parallel to the triangle list, and every attribute is addressable by
// vertex index or by mapped cell index.
func (g *Geometry) Validate() error {
	if len(g.Indices)%3 != 0 {
		return ErrInvalidFormat(fmt.Sprintf("index count %d is not a multiple of 3", len(g.Indices)))
	}
	for _, idx := range g.Indices {
		if int(idx) >= len(g.Vertices) {
			return ErrIndexOutOfBounds(int(idx), len(g.Vertices)-1)
		}
	}
	if g.TriangleToCell != nil && len(g.TriangleToCell) != g.TriangleCount() {
		return ErrAttributeMismatch(len(g.TriangleToCell), g.TriangleCount())
	}
	for key, attr := range g.Attributes {
		// Inline lookup tables are palettes, not per-element data.
		if len(key.Name) > len(LookupTablePrefix) && key.Name[:len(LookupTablePrefix)] == LookupTablePrefix {
			continue
		}
		switch key.Loc {
		case LocationPoint:
			if n := attr.Count(); n < len(g.Vertices) {
				return ErrAttributeMismatch(n, len(g.Vertices))
			}
		case LocationCell:
			n := attr.Count()
			for tri := 0; tri < g.TriangleCount(); tri++ {
				if cell := g.CellFor(tri); cell >= n {
					return ErrIndexOutOfBounds(cell, n-1)
				}
			}
		}
	}
	return nil
}
