package export

import (
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"

	"github.com/echolmy/vtkmesh/pkg/mesh"
)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// FromSDF tessellates a signed distance field into geometry using uniform
// marching cubes. cells sets the grid resolution; values below 1 use the
// default. Vertices are not welded: each triangle carries its own three
// vertices with the face normal, matching what the renderer emits.
func FromSDF(s sdf.SDF3, cells int) (*mesh.Geometry, error) {
	if cells < 1 {
		cells = defaultMeshCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)
	if len(triangles) == 0 {
		return nil, mesh.ErrMissingData("distance field produced no surface")
	}

	vertices := make([]mesh.Vec3, 0, 3*len(triangles))
	normals := make([]mesh.Vec3, 0, 3*len(triangles))
	indices := make([]uint32, 0, 3*len(triangles))
	for i, tri := range triangles {
		n := tri.Normal()
		fn := mesh.Vec3{float32(n.X), float32(n.Y), float32(n.Z)}
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, mesh.Vec3{float32(v.X), float32(v.Y), float32(v.Z)})
			normals = append(normals, fn)
			indices = append(indices, uint32(3*i+j))
		}
	}

	g := mesh.New(vertices, indices, nil)
	g.SetAttribute("normals", mesh.LocationPoint, mesh.Attribute{
		Kind:    mesh.AttrVector,
		Vectors: normals,
	})
	return g, nil
}
