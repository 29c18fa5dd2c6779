package mesh

// QuadraticEdge is a second-order edge with 3 control points:
// Vertices[0] and Vertices[1] are the endpoints (parameter 0 and 1),
// Vertices[2] is the midpoint (parameter 0.5) used by subdivision.
type QuadraticEdge struct {
	Vertices [3]uint32
}

// Endpoints returns the two endpoint indices.
func (e QuadraticEdge) Endpoints() [2]uint32 {
	return [2]uint32{e.Vertices[0], e.Vertices[1]}
}

// Midpoint returns the midpoint control-point index.
func (e QuadraticEdge) Midpoint() uint32 {
	return e.Vertices[2]
}

// LinearSegments splits the edge into its two linear halves.
func (e QuadraticEdge) LinearSegments() [2][2]uint32 {
	return [2][2]uint32{
		{e.Vertices[0], e.Vertices[2]},
		{e.Vertices[2], e.Vertices[1]},
	}
}

// QuadraticTriangle is a second-order triangle with 6 control points laid
// out in the standard order [v0, v1, v2, m01, m12, m20]: three corners
// followed by the three edge midpoints. Rendering uses only the corners;
// the midpoints drive subdivision toward the curved surface.
type QuadraticTriangle struct {
	Vertices [6]uint32
}

// Corners returns the three corner indices.
func (t QuadraticTriangle) Corners() [3]uint32 {
	return [3]uint32{t.Vertices[0], t.Vertices[1], t.Vertices[2]}
}

// EdgeMidpoints returns the midpoint indices for edges 01, 12, 20.
func (t QuadraticTriangle) EdgeMidpoints() [3]uint32 {
	return [3]uint32{t.Vertices[3], t.Vertices[4], t.Vertices[5]}
}
