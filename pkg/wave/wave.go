// Package wave generates plane-wave surface meshes: the real part of a
// complex plane wave sampled over a centered rectangular grid.
package wave

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/echolmy/vtkmesh/pkg/mesh"
)

// PlaneWave is the scalar field A*cos(k . (x, y) - omega*t + phi) over the
// horizontal plane.
type PlaneWave struct {
	Amplitude float32
	Phase     float32
	K         [2]float32
	Omega     float32
	Time      float32
}

// New returns a unit-amplitude standing wave with no direction.
func New() PlaneWave {
	return PlaneWave{Amplitude: 1, Omega: 1}
}

// RealPart evaluates the wave height at the horizontal position (x, y).
func (w PlaneWave) RealPart(x, y float32) float32 {
	return w.Amplitude * math32.Cos(w.K[0]*x+w.K[1]*y-w.Omega*w.Time+w.Phase)
}

// SetDirection points the wave vector along (x, y), normalized.
func (w *PlaneWave) SetDirection(x, y float32) {
	l := math32.Sqrt(x*x + y*y)
	if l > 0 {
		w.K = [2]float32{x / l, y / l}
	}
}

// SetTime advances the wave for animation.
func (w *PlaneWave) SetTime(t float32) {
	w.Time = t
}

// Surface samples the wave over a width x depth rectangle centered on the
// origin, at the given grid resolutions, and triangulates it. The result
// carries a 2-component "uv" point attribute spanning [0,1] on both axes.
// Resolutions below 2 cannot form a surface.
func Surface(w PlaneWave, width, depth float32, widthRes, depthRes int) (*mesh.Geometry, error) {
	if widthRes < 2 || depthRes < 2 {
		return nil, mesh.ErrInvalidFormat(fmt.Sprintf(
			"grid resolution %dx%d, need at least 2x2", widthRes, depthRes))
	}

	stepX := width / float32(widthRes-1)
	stepZ := depth / float32(depthRes-1)

	vertices := make([]mesh.Vec3, 0, widthRes*depthRes)
	uvs := make([]float32, 0, 2*widthRes*depthRes)
	for j := 0; j < depthRes; j++ {
		for i := 0; i < widthRes; i++ {
			x := float32(i)*stepX - width*0.5
			z := float32(j)*stepZ - depth*0.5
			vertices = append(vertices, mesh.Vec3{x, w.RealPart(x, z), z})
			uvs = append(uvs, float32(i)/float32(widthRes-1), float32(j)/float32(depthRes-1))
		}
	}

	indices := make([]uint32, 0, 6*(widthRes-1)*(depthRes-1))
	for j := 0; j < depthRes-1; j++ {
		for i := 0; i < widthRes-1; i++ {
			current := uint32(j*widthRes + i)
			nextRow := uint32((j+1)*widthRes + i)
			indices = append(indices,
				current, nextRow, current+1,
				current+1, nextRow, nextRow+1,
			)
		}
	}

	g := mesh.New(vertices, indices, nil)
	g.SetAttribute("uv", mesh.LocationPoint, mesh.Attribute{
		Kind:      mesh.AttrScalar,
		NumComp:   2,
		TableName: "default",
		Scalars:   uvs,
	})
	g.SetAttribute("normals", mesh.LocationPoint, mesh.Attribute{
		Kind:    mesh.AttrVector,
		Vectors: smoothNormals(vertices, indices),
	})
	return g, nil
}

// smoothNormals averages face normals area-weighted over each vertex.
func smoothNormals(vertices []mesh.Vec3, indices []uint32) []mesh.Vec3 {
	normals := make([]mesh.Vec3, len(vertices))
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		n := vertices[i1].Sub(vertices[i0]).Cross(vertices[i2].Sub(vertices[i0]))
		normals[i0] = normals[i0].Add(n)
		normals[i1] = normals[i1].Add(n)
		normals[i2] = normals[i2].Add(n)
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}
