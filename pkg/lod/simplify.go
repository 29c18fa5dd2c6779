package lod

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/echolmy/vtkmesh/pkg/mesh"
)

// minSimplifyTriangles guards against collapsing tiny meshes into garbage:
// below this count every edge matters visually.
const minSimplifyTriangles = 30

// Simplify reduces the triangle count of g to approximately ratio times the
// original, preserving overall shape via quadric error metrics. Ratios
// below 0.2 switch to vertex clustering, which tolerates aggressive
// reduction better than repeated edge collapse. When the mesh is too small
// to reduce, the input is returned unchanged (as an independent copy)
// rather than failing. The result is deterministic for a given input.
func Simplify(g *mesh.Geometry, ratio float32) (*mesh.Geometry, error) {
	if ratio < 0.1 {
		ratio = 0.1
	}
	if ratio > 1 {
		ratio = 1
	}
	count := g.TriangleCount()
	if count == 0 {
		return g.Clone(), nil
	}
	if ratio < 0.2 {
		return clusterSimplify(g, ratio)
	}

	target := int(float32(count) * ratio)
	maxCollapses := count - target
	if half := count / 2; maxCollapses > half {
		maxCollapses = half
	}
	if count < minSimplifyTriangles || maxCollapses <= 0 {
		return g.Clone(), nil
	}

	q := newQEMMesh(g)
	q.computeVertexQuadrics()
	q.computeEdgeCosts()

	collapsed := 0
	failures := 0
	for i := 0; i < maxCollapses; i++ {
		remaining := q.triangleCount()
		if remaining <= target || remaining < minSimplifyTriangles {
			break
		}
		if !q.collapseCheapestEdge() {
			failures++
			if failures > 5 {
				break
			}
		} else {
			failures = 0
			collapsed++
		}
	}
	slog.Debug("edge-collapse simplification finished",
		"collapsed", collapsed, "triangles", q.triangleCount(), "target", target)

	return q.toGeometry(g), nil
}

type qemVertex struct {
	position mesh.Vec3
	quadric  quadric
	edges    []int
	deleted  bool
	// attrs holds this vertex's value for each carried point attribute,
	// parallel to qemMesh.attrKeys. Values merge by averaging on collapse.
	attrs [][]float32
}

type qemEdge struct {
	v0, v1    int
	cost      float64
	optimal   mesh.Vec3
	triangles []int
	deleted   bool
}

type qemTriangle struct {
	vertices [3]int
	plane    [4]float64
	deleted  bool
}

type qemMesh struct {
	vertices  []qemVertex
	edges     []qemEdge
	triangles []qemTriangle

	attrKeys  []mesh.AttributeKey
	attrMeta  []mesh.Attribute
	cellAttrs map[mesh.AttributeKey]mesh.Attribute
}

func newQEMMesh(g *mesh.Geometry) *qemMesh {
	q := &qemMesh{
		vertices:  make([]qemVertex, len(g.Vertices)),
		cellAttrs: make(map[mesh.AttributeKey]mesh.Attribute),
	}
	q.collectAttributes(g)

	for i, pos := range g.Vertices {
		q.vertices[i] = qemVertex{position: pos, attrs: q.vertexValues(g, i)}
	}

	for tri := 0; tri < g.TriangleCount(); tri++ {
		v0 := int(g.Indices[3*tri])
		v1 := int(g.Indices[3*tri+1])
		v2 := int(g.Indices[3*tri+2])

		p0, p1, p2 := g.Vertices[v0], g.Vertices[v1], g.Vertices[v2]
		n := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
		d := -n.Dot(p0)
		q.triangles = append(q.triangles, qemTriangle{
			vertices: [3]int{v0, v1, v2},
			plane:    [4]float64{float64(n[0]), float64(n[1]), float64(n[2]), float64(d)},
		})
	}

	q.buildEdges()
	q.updateVertexEdges()
	return q
}

// collectAttributes records the point attributes to carry through
// simplification and sets cell attributes aside. Keys are sorted so that
// the carried value layout is stable across runs.
func (q *qemMesh) collectAttributes(g *mesh.Geometry) {
	for key, attr := range g.Attributes {
		if strings.HasPrefix(key.Name, mesh.LookupTablePrefix) {
			continue
		}
		if key.Loc == mesh.LocationCell {
			q.cellAttrs[key] = attr
			continue
		}
		q.attrKeys = append(q.attrKeys, key)
	}
	sort.Slice(q.attrKeys, func(i, j int) bool {
		return q.attrKeys[i].Name < q.attrKeys[j].Name
	})
	q.attrMeta = make([]mesh.Attribute, len(q.attrKeys))
	for i, key := range q.attrKeys {
		q.attrMeta[i] = g.Attributes[key]
	}
}

// vertexValues flattens vertex i's value for each carried attribute.
func (q *qemMesh) vertexValues(g *mesh.Geometry, i int) [][]float32 {
	if len(q.attrKeys) == 0 {
		return nil
	}
	values := make([][]float32, len(q.attrKeys))
	for k, attr := range q.attrMeta {
		switch attr.Kind {
		case mesh.AttrScalar:
			nc := attr.NumComp
			if nc < 1 {
				nc = 1
			}
			if (i+1)*nc <= len(attr.Scalars) {
				values[k] = append([]float32(nil), attr.Scalars[i*nc:(i+1)*nc]...)
			}
		case mesh.AttrColorScalar:
			if i < len(attr.Colors) {
				values[k] = append([]float32(nil), attr.Colors[i]...)
			}
		case mesh.AttrVector:
			if i < len(attr.Vectors) {
				v := attr.Vectors[i]
				values[k] = []float32{v[0], v[1], v[2]}
			}
		case mesh.AttrTensor:
			if i < len(attr.Tensors) {
				values[k] = append([]float32(nil), attr.Tensors[i][:]...)
			}
		}
	}
	return values
}

// buildEdges derives the undirected edge set from the triangle list. The
// edges are sorted by vertex pair so the collapse order does not depend on
// map iteration.
func (q *qemMesh) buildEdges() {
	type pair struct{ a, b int }
	byPair := make(map[pair][]int)
	for tri, t := range q.triangles {
		v := t.vertices
		for _, e := range [3]pair{
			{min(v[0], v[1]), max(v[0], v[1])},
			{min(v[1], v[2]), max(v[1], v[2])},
			{min(v[2], v[0]), max(v[2], v[0])},
		} {
			byPair[e] = append(byPair[e], tri)
		}
	}

	pairs := make([]pair, 0, len(byPair))
	for p := range byPair {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})

	q.edges = make([]qemEdge, len(pairs))
	for i, p := range pairs {
		q.edges[i] = qemEdge{v0: p.a, v1: p.b, triangles: byPair[p]}
	}
}

func (q *qemMesh) updateVertexEdges() {
	for i := range q.vertices {
		q.vertices[i].edges = q.vertices[i].edges[:0]
	}
	for i, e := range q.edges {
		if e.deleted {
			continue
		}
		q.vertices[e.v0].edges = append(q.vertices[e.v0].edges, i)
		q.vertices[e.v1].edges = append(q.vertices[e.v1].edges, i)
	}
}

func (q *qemMesh) computeVertexQuadrics() {
	for i := range q.vertices {
		q.vertices[i].quadric = quadric{}
	}
	for _, t := range q.triangles {
		if t.deleted {
			continue
		}
		pq := planeQuadric(t.plane[0], t.plane[1], t.plane[2], t.plane[3])
		for _, v := range t.vertices {
			q.vertices[v].quadric.add(pq)
		}
	}
}

func (q *qemMesh) computeEdgeCosts() {
	for i := range q.edges {
		q.computeEdgeCost(i)
	}
}

// computeEdgeCost combines the endpoint quadrics and picks the collapse
// target: the analytic minimum when it exists, otherwise the cheapest of
// the two endpoints and their midpoint.
func (q *qemMesh) computeEdgeCost(i int) {
	e := &q.edges[i]
	if e.deleted {
		return
	}
	combined := q.vertices[e.v0].quadric
	combined.add(q.vertices[e.v1].quadric)

	if pos, ok := combined.optimalPosition(); ok {
		e.optimal = pos
		e.cost = combined.errorAt(pos)
		return
	}

	p0 := q.vertices[e.v0].position
	p1 := q.vertices[e.v1].position
	midpoint := mesh.Mid(p0, p1)
	c0 := combined.errorAt(p0)
	c1 := combined.errorAt(p1)
	cm := combined.errorAt(midpoint)
	switch {
	case c0 <= c1 && c0 <= cm:
		e.optimal, e.cost = p0, c0
	case c1 <= cm:
		e.optimal, e.cost = p1, c1
	default:
		e.optimal, e.cost = midpoint, cm
	}
}

// collapseCheapestEdge collapses the live edge with the lowest cost. Ties
// break toward the lowest edge index, keeping the result deterministic.
func (q *qemMesh) collapseCheapestEdge() bool {
	best := -1
	var bestCost float64
	for i, e := range q.edges {
		if e.deleted {
			continue
		}
		if best == -1 || e.cost < bestCost {
			best = i
			bestCost = e.cost
		}
	}
	if best == -1 {
		return false
	}
	return q.collapseEdge(best)
}

func (q *qemMesh) collapseEdge(idx int) bool {
	e := q.edges[idx]
	if e.deleted {
		return false
	}
	v0, v1 := e.v0, e.v1

	q.vertices[v0].position = e.optimal
	q.mergeVertexAttrs(v0, v1)

	v1Quadric := q.vertices[v1].quadric
	q.vertices[v0].quadric.add(v1Quadric)

	for i := range q.triangles {
		t := &q.triangles[i]
		if t.deleted {
			continue
		}
		for j, v := range t.vertices {
			if v == v1 {
				t.vertices[j] = v0
			}
		}
	}
	for _, tri := range e.triangles {
		q.triangles[tri].deleted = true
	}
	for i := range q.triangles {
		t := &q.triangles[i]
		if t.deleted {
			continue
		}
		v := t.vertices
		if v[0] == v[1] || v[1] == v[2] || v[2] == v[0] {
			t.deleted = true
		}
	}

	for _, other := range q.vertices[v1].edges {
		if other == idx {
			continue
		}
		oe := &q.edges[other]
		if oe.deleted {
			continue
		}
		if oe.v0 == v1 {
			oe.v0 = v0
		} else if oe.v1 == v1 {
			oe.v1 = v0
		}
		if oe.v0 == oe.v1 {
			oe.deleted = true
		}
	}

	q.vertices[v1].deleted = true
	q.edges[idx].deleted = true

	q.updateVertexEdges()
	for _, around := range q.vertices[v0].edges {
		q.computeEdgeCost(around)
	}
	return true
}

// mergeVertexAttrs averages v1's carried attribute values into v0's.
func (q *qemMesh) mergeVertexAttrs(v0, v1 int) {
	a0, a1 := q.vertices[v0].attrs, q.vertices[v1].attrs
	for k := range a0 {
		if k >= len(a1) || len(a0[k]) != len(a1[k]) {
			continue
		}
		for c := range a0[k] {
			a0[k][c] = (a0[k][c] + a1[k][c]) / 2
		}
	}
}

func (q *qemMesh) triangleCount() int {
	n := 0
	for _, t := range q.triangles {
		if !t.deleted {
			n++
		}
	}
	return n
}

// toGeometry compacts the surviving vertices and triangles into a fresh
// Geometry, rebuilding point attributes from the carried values and cell
// attributes as flat fills over the new triangle count.
func (q *qemMesh) toGeometry(src *mesh.Geometry) *mesh.Geometry {
	remap := make([]int, len(q.vertices))
	var vertices []mesh.Vec3
	for i := range q.vertices {
		if q.vertices[i].deleted {
			remap[i] = -1
			continue
		}
		remap[i] = len(vertices)
		vertices = append(vertices, q.vertices[i].position)
	}

	var indices []uint32
	for _, t := range q.triangles {
		if t.deleted {
			continue
		}
		n0, n1, n2 := remap[t.vertices[0]], remap[t.vertices[1]], remap[t.vertices[2]]
		if n0 < 0 || n1 < 0 || n2 < 0 {
			continue
		}
		indices = append(indices, uint32(n0), uint32(n1), uint32(n2))
	}

	out := mesh.New(vertices, indices, nil)
	q.rebuildPointAttributes(out, remap)
	rebuildCellAttributes(out, q.cellAttrs, len(indices)/3)
	for name, table := range src.LookupTables {
		out.LookupTables[name] = append([]mesh.RGBA(nil), table...)
	}
	return out
}

func (q *qemMesh) rebuildPointAttributes(out *mesh.Geometry, remap []int) {
	for k, key := range q.attrKeys {
		meta := q.attrMeta[k]
		attr := mesh.Attribute{
			Kind:      meta.Kind,
			NumComp:   meta.NumComp,
			TableName: meta.TableName,
			NValues:   meta.NValues,
		}
		for old, v := range q.vertices {
			if v.deleted || remap[old] < 0 || k >= len(v.attrs) || v.attrs[k] == nil {
				continue
			}
			val := v.attrs[k]
			switch meta.Kind {
			case mesh.AttrScalar:
				attr.Scalars = append(attr.Scalars, val...)
			case mesh.AttrColorScalar:
				attr.Colors = append(attr.Colors, append([]float32(nil), val...))
			case mesh.AttrVector:
				attr.Vectors = append(attr.Vectors, mesh.Vec3{val[0], val[1], val[2]})
			case mesh.AttrTensor:
				var t [9]float32
				copy(t[:], val)
				attr.Tensors = append(attr.Tensors, t)
			}
		}
		out.Attributes[key] = attr
	}
}

// rebuildCellAttributes resizes scalar cell attributes to the new triangle
// count. Simplification merges cells, so per-cell fidelity is gone; the
// flat fill keeps them addressable for color mapping.
func rebuildCellAttributes(out *mesh.Geometry, cellAttrs map[mesh.AttributeKey]mesh.Attribute, triCount int) {
	for key, attr := range cellAttrs {
		if attr.Kind != mesh.AttrScalar || len(attr.Scalars) == 0 {
			slog.Debug("dropping cell attribute after simplification", "name", key.Name)
			continue
		}
		data := make([]float32, triCount)
		for i := range data {
			data[i] = attr.Scalars[0]
		}
		out.Attributes[key] = mesh.Attribute{
			Kind:      mesh.AttrScalar,
			NumComp:   1,
			TableName: attr.TableName,
			Scalars:   data,
		}
	}
}
