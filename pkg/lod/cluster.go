package lod

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/chewxy/math32"

	"github.com/echolmy/vtkmesh/pkg/mesh"
)

type gridKey struct {
	x, y, z int32
}

// clusterSimplify reduces a mesh by snapping vertices to a uniform grid and
// keeping one representative per occupied cell. It handles aggressive
// ratios better than edge collapse: quality degrades gracefully instead of
// collapsing the mesh into slivers.
func clusterSimplify(g *mesh.Geometry, ratio float32) (*mesh.Geometry, error) {
	target := int(float32(g.TriangleCount()) * ratio)
	center, size := g.Bounds()

	resolution := math32.Max(20*math32.Sqrt(ratio), 8)
	cellSize := size / resolution
	if cellSize <= 0 {
		return g.Clone(), nil
	}

	grid := make(map[gridKey][]int)
	keyFor := func(v mesh.Vec3) gridKey {
		return gridKey{
			x: int32((v[0] - center[0] + size*0.5) / cellSize),
			y: int32((v[1] - center[1] + size*0.5) / cellSize),
			z: int32((v[2] - center[2] + size*0.5) / cellSize),
		}
	}
	for i, v := range g.Vertices {
		k := keyFor(v)
		grid[k] = append(grid[k], i)
	}

	keys := make([]gridKey, 0, len(grid))
	for k := range grid {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.x != b.x {
			return a.x < b.x
		}
		if a.y != b.y {
			return a.y < b.y
		}
		return a.z < b.z
	})

	// One representative per cell: the member closest to the cell center,
	// lowest index on ties.
	remap := make([]int, len(g.Vertices))
	var vertices []mesh.Vec3
	for _, k := range keys {
		members := grid[k]
		cellCenter := mesh.Vec3{
			center[0] + (float32(k.x)+0.5)*cellSize - size*0.5,
			center[1] + (float32(k.y)+0.5)*cellSize - size*0.5,
			center[2] + (float32(k.z)+0.5)*cellSize - size*0.5,
		}
		rep := members[0]
		best := g.Vertices[rep].Distance(cellCenter)
		for _, m := range members[1:] {
			if d := g.Vertices[m].Distance(cellCenter); d < best {
				rep, best = m, d
			}
		}
		newIdx := len(vertices)
		vertices = append(vertices, g.Vertices[rep])
		for _, m := range members {
			remap[m] = newIdx
		}
	}

	minArea := size * size * 1e-6
	seen := make(map[[3]int]bool)
	var indices []uint32
	for tri := 0; tri < g.TriangleCount(); tri++ {
		v0 := remap[g.Indices[3*tri]]
		v1 := remap[g.Indices[3*tri+1]]
		v2 := remap[g.Indices[3*tri+2]]
		if v0 == v1 || v1 == v2 || v2 == v0 {
			continue
		}

		p0, p1, p2 := vertices[v0], vertices[v1], vertices[v2]
		if area := 0.5 * p1.Sub(p0).Cross(p2.Sub(p0)).Length(); area < minArea {
			continue
		}

		id := [3]int{v0, v1, v2}
		sort.Ints(id[:])
		if seen[id] {
			continue
		}
		seen[id] = true
		indices = append(indices, uint32(v0), uint32(v1), uint32(v2))

		if len(indices)/3 >= target {
			break
		}
	}
	slog.Debug("clustering simplification finished",
		"cells", len(keys), "triangles", len(indices)/3, "target", target)

	out := mesh.New(vertices, indices, nil)
	clusterAttributes(g, out, remap)
	for name, table := range g.LookupTables {
		out.LookupTables[name] = append([]mesh.RGBA(nil), table...)
	}
	return out, nil
}

// clusterAttributes averages each point attribute over the vertices merged
// into one representative. Averaged vectors are renormalized. Cell
// attributes cannot survive clustering (cells merge unpredictably) and are
// dropped with a diagnostic.
func clusterAttributes(src, out *mesh.Geometry, remap []int) {
	for key, attr := range src.Attributes {
		if strings.HasPrefix(key.Name, mesh.LookupTablePrefix) {
			out.Attributes[key] = attr.Clone()
			continue
		}
		if key.Loc == mesh.LocationCell {
			slog.Debug("dropping cell attribute after clustering", "name", key.Name)
			continue
		}
		out.Attributes[key] = averageAttribute(attr, remap, out.VertexCount())
	}
}

func averageAttribute(attr mesh.Attribute, remap []int, newCount int) mesh.Attribute {
	counts := make([]int, newCount)

	switch attr.Kind {
	case mesh.AttrScalar:
		nc := attr.NumComp
		if nc < 1 {
			nc = 1
		}
		data := make([]float32, newCount*nc)
		for old, newIdx := range remap {
			if (old+1)*nc > len(attr.Scalars) {
				continue
			}
			for c := 0; c < nc; c++ {
				data[newIdx*nc+c] += attr.Scalars[old*nc+c]
			}
			counts[newIdx]++
		}
		for i := 0; i < newCount; i++ {
			if counts[i] > 0 {
				for c := 0; c < nc; c++ {
					data[i*nc+c] /= float32(counts[i])
				}
			}
		}
		return mesh.Attribute{Kind: mesh.AttrScalar, NumComp: nc, TableName: attr.TableName, Scalars: data}

	case mesh.AttrColorScalar:
		data := make([][]float32, newCount)
		for i := range data {
			data[i] = make([]float32, attr.NValues)
		}
		for old, newIdx := range remap {
			if old >= len(attr.Colors) {
				continue
			}
			for c, v := range attr.Colors[old] {
				if c < attr.NValues {
					data[newIdx][c] += v
				}
			}
			counts[newIdx]++
		}
		for i, color := range data {
			if counts[i] > 0 {
				for c := range color {
					color[c] /= float32(counts[i])
				}
			}
		}
		return mesh.Attribute{Kind: mesh.AttrColorScalar, NValues: attr.NValues, Colors: data}

	case mesh.AttrVector:
		data := make([]mesh.Vec3, newCount)
		for old, newIdx := range remap {
			if old >= len(attr.Vectors) {
				continue
			}
			data[newIdx] = data[newIdx].Add(attr.Vectors[old])
			counts[newIdx]++
		}
		for i := range data {
			if counts[i] > 0 {
				data[i] = data[i].Scale(1 / float32(counts[i])).Normalize()
			}
		}
		return mesh.Attribute{Kind: mesh.AttrVector, Vectors: data}

	case mesh.AttrTensor:
		data := make([][9]float32, newCount)
		for old, newIdx := range remap {
			if old >= len(attr.Tensors) {
				continue
			}
			for c := 0; c < 9; c++ {
				data[newIdx][c] += attr.Tensors[old][c]
			}
			counts[newIdx]++
		}
		for i := range data {
			if counts[i] > 0 {
				for c := 0; c < 9; c++ {
					data[i][c] /= float32(counts[i])
				}
			}
		}
		return mesh.Attribute{Kind: mesh.AttrTensor, Tensors: data}
	}
	return attr.Clone()
}
