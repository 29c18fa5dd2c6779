// Package refine raises and tessellates mesh order: linear triangle meshes
// elevate to quadratic ones by inserting deduplicated edge midpoints, and
// quadratic or linear meshes subdivide 1:4 for rendering.
package refine

import (
	"fmt"
	"strings"

	"github.com/echolmy/vtkmesh/pkg/mesh"
)

// edgeKey identifies an undirected edge, smaller index first.
type edgeKey struct {
	a, b uint32
}

func edge(a, b uint32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// midpointCache creates one midpoint vertex per distinct undirected edge.
// Triangles sharing an edge reuse the same vertex, which keeps the refined
// mesh watertight. Creation order follows triangle walk order, so repeated
// runs on the same input produce identical meshes.
type midpointCache struct {
	vertices []mesh.Vec3
	index    map[edgeKey]uint32
	created  []edgeKey
}

func newMidpointCache(vertices []mesh.Vec3) *midpointCache {
	return &midpointCache{
		vertices: append([]mesh.Vec3(nil), vertices...),
		index:    make(map[edgeKey]uint32),
	}
}

// seed registers an existing vertex as the midpoint of an edge, so
// triangles touching that edge reuse it instead of creating a flat one.
func (c *midpointCache) seed(a, b, mid uint32) {
	c.index[edge(a, b)] = mid
}

func (c *midpointCache) midpoint(a, b uint32) uint32 {
	key := edge(a, b)
	if idx, ok := c.index[key]; ok {
		return idx
	}
	idx := uint32(len(c.vertices))
	c.vertices = append(c.vertices, mesh.Mid(c.vertices[key.a], c.vertices[key.b]))
	c.index[key] = idx
	c.created = append(c.created, key)
	return idx
}

// Elevate converts a linear triangle mesh into a quadratic one of the given
// order. Each output cell carries 6 indices in the standard layout
// [v0, v1, v2, m01, m12, m20]. Only order 2 is implemented.
func Elevate(g *mesh.Geometry, order int) (*mesh.Geometry, error) {
	if order < 2 {
		return nil, mesh.ErrInvalidFormat(fmt.Sprintf("order %d is not a higher-order mesh", order))
	}
	if order > 2 {
		return nil, mesh.ErrUnsupported(fmt.Sprintf("order %d elevation", order))
	}
	if len(g.Indices)%3 != 0 {
		return nil, mesh.ErrInvalidFormat(fmt.Sprintf(
			"index count %d is not a multiple of 3", len(g.Indices)))
	}

	triCount := g.TriangleCount()
	cache := newMidpointCache(g.Vertices)
	indices := make([]uint32, 0, 6*triCount)
	mapping := make([]int, 0, 4*triCount)
	quads := make([]mesh.QuadraticTriangle, 0, triCount)

	for tri := 0; tri < triCount; tri++ {
		v0, v1, v2 := g.Indices[3*tri], g.Indices[3*tri+1], g.Indices[3*tri+2]
		m01 := cache.midpoint(v0, v1)
		m12 := cache.midpoint(v1, v2)
		m20 := cache.midpoint(v2, v0)

		indices = append(indices, v0, v1, v2, m01, m12, m20)
		quads = append(quads, mesh.QuadraticTriangle{Vertices: [6]uint32{v0, v1, v2, m01, m12, m20}})

		// Each quadratic cell tessellates into 4 linear triangles downstream,
		// so the mapping reserves 4 consecutive entries per source cell.
		cell := g.CellFor(tri)
		mapping = append(mapping, cell, cell, cell, cell)
	}

	out := mesh.New(cache.vertices, indices, nil)
	out.TriangleToCell = mapping
	out.QuadraticTriangles = quads
	out.QuadraticEdges = append([]mesh.QuadraticEdge(nil), g.QuadraticEdges...)
	interpolateAttributes(g, out, cache)
	copyLookupTables(g, out)
	return out, nil
}

// Subdivide tessellates each triangle into 4 at its edge midpoints.
// Triangles backed by a quadratic record are tessellated through the
// record's stored midpoint vertices, following the curved surface; every
// other triangle gets freshly created midpoints. Meshes in the 6-per-cell
// quadratic index layout are handled whole. Cell attributes are untouched:
// the mapping gains 4 entries per input triangle so they stay addressable.
func Subdivide(g *mesh.Geometry) (*mesh.Geometry, error) {
	if quadraticLayout(g) {
		return subdivideQuadratic(g), nil
	}
	if len(g.Indices)%3 != 0 {
		return nil, mesh.ErrInvalidFormat(fmt.Sprintf(
			"index count %d is not a multiple of 3", len(g.Indices)))
	}
	return subdivideTriangles(g), nil
}

// quadraticLayout reports whether the index buffer uses the 6-per-cell
// layout Elevate emits, where each block repeats its cell's quadratic
// record. A mixed mesh from a file, where quadratic cells contribute only
// their corner triangle to the index buffer, does not match.
func quadraticLayout(g *mesh.Geometry) bool {
	n := len(g.QuadraticTriangles)
	if n == 0 || len(g.Indices) != 6*n {
		return false
	}
	for i, q := range g.QuadraticTriangles {
		for j := 0; j < 6; j++ {
			if g.Indices[6*i+j] != q.Vertices[j] {
				return false
			}
		}
	}
	return true
}

func subdivideQuadratic(g *mesh.Geometry) *mesh.Geometry {
	indices := make([]uint32, 0, 12*len(g.QuadraticTriangles))
	mapping := make([]int, 0, 4*len(g.QuadraticTriangles))
	for tri, q := range g.QuadraticTriangles {
		v := q.Vertices
		indices = append(indices,
			v[0], v[3], v[5],
			v[3], v[1], v[4],
			v[5], v[4], v[2],
			v[3], v[4], v[5],
		)
		// An elevated mesh's mapping already holds 4 entries per cell.
		cell := tri
		if len(g.TriangleToCell) == 4*len(g.QuadraticTriangles) {
			cell = g.TriangleToCell[4*tri]
		}
		mapping = append(mapping, cell, cell, cell, cell)
	}

	out := mesh.New(append([]mesh.Vec3(nil), g.Vertices...), indices, nil)
	out.TriangleToCell = mapping
	for key, attr := range g.Attributes {
		out.Attributes[key] = attr.Clone()
	}
	copyLookupTables(g, out)
	return out
}

func subdivideTriangles(g *mesh.Geometry) *mesh.Geometry {
	triCount := g.TriangleCount()
	cache := newMidpointCache(g.Vertices)
	// Quadratic records pin their curved midpoints to the edges they span,
	// so the corner triangle of a curved cell, and any flat neighbor
	// sharing one of its edges, subdivides through the stored vertex.
	for _, q := range g.QuadraticTriangles {
		v := q.Vertices
		cache.seed(v[0], v[1], v[3])
		cache.seed(v[1], v[2], v[4])
		cache.seed(v[2], v[0], v[5])
	}
	indices := make([]uint32, 0, 12*triCount)
	mapping := make([]int, 0, 4*triCount)

	for tri := 0; tri < triCount; tri++ {
		v0, v1, v2 := g.Indices[3*tri], g.Indices[3*tri+1], g.Indices[3*tri+2]
		m01 := cache.midpoint(v0, v1)
		m12 := cache.midpoint(v1, v2)
		m20 := cache.midpoint(v2, v0)
		indices = append(indices,
			v0, m01, m20,
			m01, v1, m12,
			m20, m12, v2,
			m01, m12, m20,
		)
		cell := g.CellFor(tri)
		mapping = append(mapping, cell, cell, cell, cell)
	}

	out := mesh.New(cache.vertices, indices, nil)
	out.TriangleToCell = mapping
	interpolateAttributes(g, out, cache)
	copyLookupTables(g, out)
	return out
}

// interpolateAttributes copies every attribute of src into dst, extending
// point attributes with the componentwise mean of the two endpoint values
// for each created midpoint. Cell attributes transfer unchanged.
func interpolateAttributes(src, dst *mesh.Geometry, cache *midpointCache) {
	for key, attr := range src.Attributes {
		// Inline lookup tables are palettes, not per-vertex data.
		if key.Loc != mesh.LocationPoint || strings.HasPrefix(key.Name, mesh.LookupTablePrefix) {
			dst.Attributes[key] = attr.Clone()
			continue
		}
		dst.Attributes[key] = extendAttribute(attr, cache.created)
	}
}

func extendAttribute(attr mesh.Attribute, edges []edgeKey) mesh.Attribute {
	out := attr.Clone()
	switch attr.Kind {
	case mesh.AttrScalar:
		nc := attr.NumComp
		if nc < 1 {
			nc = 1
		}
		for _, e := range edges {
			for c := 0; c < nc; c++ {
				out.Scalars = append(out.Scalars,
					(attr.Scalars[int(e.a)*nc+c]+attr.Scalars[int(e.b)*nc+c])/2)
			}
		}
	case mesh.AttrColorScalar:
		for _, e := range edges {
			a, b := attr.Colors[e.a], attr.Colors[e.b]
			mid := make([]float32, len(a))
			for c := range mid {
				mid[c] = (a[c] + b[c]) / 2
			}
			out.Colors = append(out.Colors, mid)
		}
	case mesh.AttrVector:
		for _, e := range edges {
			out.Vectors = append(out.Vectors, mesh.Mid(attr.Vectors[e.a], attr.Vectors[e.b]))
		}
	case mesh.AttrTensor:
		for _, e := range edges {
			a, b := attr.Tensors[e.a], attr.Tensors[e.b]
			var mid [9]float32
			for c := range mid {
				mid[c] = (a[c] + b[c]) / 2
			}
			out.Tensors = append(out.Tensors, mid)
		}
	}
	return out
}

func copyLookupTables(src, dst *mesh.Geometry) {
	for name, table := range src.LookupTables {
		dst.LookupTables[name] = append([]mesh.RGBA(nil), table...)
	}
}
