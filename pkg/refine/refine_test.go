package refine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echolmy/vtkmesh/pkg/mesh"
)

func quadMesh() *mesh.Geometry {
	// Two triangles sharing the 0-2 diagonal of a unit square.
	return mesh.New(
		[]mesh.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		[]uint32{0, 1, 2, 0, 2, 3},
		nil,
	)
}

func TestElevateRejectsBadOrder(t *testing.T) {
	g := quadMesh()

	_, err := Elevate(g, 1)
	assert.True(t, mesh.IsKind(err, mesh.KindInvalidFormat), "order 1: %v", err)

	_, err = Elevate(g, 3)
	assert.True(t, mesh.IsKind(err, mesh.KindUnsupportedDataType), "order 3: %v", err)
}

func TestElevateRejectsNonTriangularMesh(t *testing.T) {
	g := mesh.New([]mesh.Vec3{{0, 0, 0}, {1, 0, 0}}, []uint32{0, 1}, nil)
	_, err := Elevate(g, 2)
	assert.True(t, mesh.IsKind(err, mesh.KindInvalidFormat), "got %v", err)
}

func TestElevateSingleTriangle(t *testing.T) {
	g := mesh.New(
		[]mesh.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[]uint32{0, 1, 2},
		nil,
	)
	out, err := Elevate(g, 2)
	require.NoError(t, err)

	require.Equal(t, 6, len(out.Indices))
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, out.Indices)
	require.Equal(t, 6, out.VertexCount())

	assert.Equal(t, mesh.Vec3{0.5, 0, 0}, out.Vertices[3])
	assert.Equal(t, mesh.Vec3{0.5, 0.5, 0}, out.Vertices[4])
	assert.Equal(t, mesh.Vec3{0, 0.5, 0}, out.Vertices[5])

	assert.Equal(t, []int{0, 0, 0, 0}, out.TriangleToCell)
	require.Len(t, out.QuadraticTriangles, 1)
	assert.Equal(t, [6]uint32{0, 1, 2, 3, 4, 5}, out.QuadraticTriangles[0].Vertices)
}

func TestElevateDeduplicatesSharedEdges(t *testing.T) {
	g := quadMesh()
	out, err := Elevate(g, 2)
	require.NoError(t, err)

	// 5 distinct undirected edges, so exactly 5 new vertices.
	assert.Equal(t, 4+5, out.VertexCount())
	assert.Equal(t, 2*6, len(out.Indices))
	for _, idx := range out.Indices {
		assert.Less(t, int(idx), out.VertexCount())
	}

	// Both triangles reference the same midpoint on the shared 0-2 edge.
	assert.Equal(t, out.Indices[5], out.Indices[9], "m20 of tri 0 vs m01 of tri 1")
}

func TestElevateInterpolatesPointAttributes(t *testing.T) {
	g := mesh.New(
		[]mesh.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[]uint32{0, 1, 2},
		nil,
	)
	g.SetAttribute("mass", mesh.LocationPoint, mesh.Attribute{
		Kind: mesh.AttrScalar, NumComp: 1, TableName: "default",
		Scalars: []float32{1, 3, 5},
	})
	g.SetAttribute("velocity", mesh.LocationPoint, mesh.Attribute{
		Kind:    mesh.AttrVector,
		Vectors: []mesh.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	})
	g.SetAttribute("label", mesh.LocationCell, mesh.Attribute{
		Kind: mesh.AttrScalar, NumComp: 1, Scalars: []float32{7},
	})

	out, err := Elevate(g, 2)
	require.NoError(t, err)

	massAttr, ok := out.Attribute("mass", mesh.LocationPoint)
	require.True(t, ok)
	// Midpoints created in edge order 01, 12, 20.
	assert.Equal(t, []float32{1, 3, 5, 2, 4, 3}, massAttr.Scalars)

	vel, ok := out.Attribute("velocity", mesh.LocationPoint)
	require.True(t, ok)
	require.Len(t, vel.Vectors, 6)
	assert.Equal(t, mesh.Vec3{0.5, 0.5, 0}, vel.Vectors[3])

	label, ok := out.Attribute("label", mesh.LocationCell)
	require.True(t, ok)
	assert.Equal(t, []float32{7}, label.Scalars, "cell attributes must pass through unchanged")
}

func TestElevateLeavesInputUntouched(t *testing.T) {
	g := quadMesh()
	out, err := Elevate(g, 2)
	require.NoError(t, err)

	out.Vertices[0] = mesh.Vec3{9, 9, 9}
	assert.Equal(t, mesh.Vec3{0, 0, 0}, g.Vertices[0])
	assert.Equal(t, 6, len(g.Indices))
}

func TestSubdivideLinear(t *testing.T) {
	g := mesh.New(
		[]mesh.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[]uint32{0, 1, 2},
		nil,
	)
	g.SetAttribute("mass", mesh.LocationPoint, mesh.Attribute{
		Kind: mesh.AttrScalar, NumComp: 1, Scalars: []float32{0, 2, 4},
	})

	out, err := Subdivide(g)
	require.NoError(t, err)

	assert.Equal(t, 4, out.TriangleCount())
	assert.Equal(t, 6, out.VertexCount())
	assert.Equal(t, []int{0, 0, 0, 0}, out.TriangleToCell)

	massAttr, _ := out.Attribute("mass", mesh.LocationPoint)
	assert.Equal(t, []float32{0, 2, 4, 1, 3, 2}, massAttr.Scalars)
	require.NoError(t, out.Validate())
}

func TestSubdivideMixedLinearAndQuadraticCells(t *testing.T) {
	// A file mixing flat and curved cells renders one corner triangle per
	// curved cell; the 6-point record lives alongside the index buffer.
	g := mesh.New(
		[]mesh.Vec3{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, // flat cell 0
			{2, 0, 0}, {4, 0, 0}, {2, 2, 0}, // curved cell 1 corners
			{3, 0, 0.5}, {3, 1, 0.5}, {2, 1, 0.5}, // curved cell 1 midpoints
		},
		[]uint32{0, 1, 2, 3, 4, 5},
		nil,
	)
	g.TriangleToCell = []int{0, 1}
	g.QuadraticTriangles = []mesh.QuadraticTriangle{{Vertices: [6]uint32{3, 4, 5, 6, 7, 8}}}

	out, err := Subdivide(g)
	require.NoError(t, err)

	// Both cells subdivide: the flat one creates 3 midpoints, the curved
	// one reuses its stored vertices.
	assert.Equal(t, 8, out.TriangleCount())
	assert.Equal(t, 12, out.VertexCount())
	assert.Equal(t, []int{0, 0, 0, 0, 1, 1, 1, 1}, out.TriangleToCell)

	assert.Equal(t, []uint32{3, 6, 8}, out.Indices[12:15])
	assert.Equal(t, []uint32{6, 7, 8}, out.Indices[21:24])
	assert.Equal(t, mesh.Vec3{3, 0, 0.5}, out.Vertices[6], "curved midpoint, not a flat one")
	require.NoError(t, out.Validate())
}

func TestSubdivideFlatNeighborReusesCurvedMidpoint(t *testing.T) {
	g := mesh.New(
		[]mesh.Vec3{
			{0, -1, 0},                            // flat cell apex
			{2, 0, 0}, {4, 0, 0}, {2, 2, 0},       // curved cell corners
			{3, 0, 0.5}, {3, 1, 0.5}, {2, 1, 0.5}, // curved cell midpoints
		},
		[]uint32{2, 1, 0, 1, 2, 3},
		nil,
	)
	g.TriangleToCell = []int{0, 1}
	g.QuadraticTriangles = []mesh.QuadraticTriangle{{Vertices: [6]uint32{1, 2, 3, 4, 5, 6}}}

	out, err := Subdivide(g)
	require.NoError(t, err)

	// The flat triangle shares the 1-2 edge with the curved cell, so its
	// midpoint on that edge is the stored vertex 4.
	assert.Equal(t, uint32(4), out.Indices[1], "m01 of the flat triangle")
	require.NoError(t, out.Validate())
}

func TestSubdivideQuadraticUsesStoredMidpoints(t *testing.T) {
	g := quadMesh()
	elevated, err := Elevate(g, 2)
	require.NoError(t, err)

	out, err := Subdivide(elevated)
	require.NoError(t, err)

	// 2 quadratic cells, 4 linear triangles each; no vertices created.
	assert.Equal(t, 8, out.TriangleCount())
	assert.Equal(t, elevated.VertexCount(), out.VertexCount())

	q := elevated.QuadraticTriangles[0].Vertices
	assert.Equal(t, []uint32{q[0], q[3], q[5]}, out.Indices[0:3])
	assert.Equal(t, []uint32{q[3], q[4], q[5]}, out.Indices[9:12])
	require.NoError(t, out.Validate())
}
