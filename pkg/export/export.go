// Package export bridges canonical geometry to CAD interchange: meshes go
// out as STL files, and signed distance fields come in as triangle meshes
// via marching cubes.
package export

import (
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/echolmy/vtkmesh/pkg/mesh"
)

// Triangles converts a geometry's triangle list into renderer triangles.
func Triangles(g *mesh.Geometry) ([]*sdf.Triangle3, error) {
	if g.IsEmpty() || g.TriangleCount() == 0 {
		return nil, mesh.ErrMissingData("no triangles to export")
	}

	out := make([]*sdf.Triangle3, 0, g.TriangleCount())
	for tri := 0; tri < g.TriangleCount(); tri++ {
		t := new(sdf.Triangle3)
		for j := 0; j < 3; j++ {
			idx := g.Indices[3*tri+j]
			if int(idx) >= g.VertexCount() {
				return nil, mesh.ErrIndexOutOfBounds(int(idx), g.VertexCount()-1)
			}
			v := g.Vertices[idx]
			t[j] = v3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
		}
		out = append(out, t)
	}
	return out, nil
}

// SaveSTL writes the geometry to path as a binary STL file.
func SaveSTL(path string, g *mesh.Geometry) error {
	triangles, err := Triangles(g)
	if err != nil {
		return err
	}
	if err := render.SaveSTL(path, triangles); err != nil {
		return mesh.ErrIO(err)
	}
	return nil
}
