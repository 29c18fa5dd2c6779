package vtk

import (
	"fmt"
	"log/slog"

	"github.com/echolmy/vtkmesh/pkg/mesh"
)

// Triangulation is the surface produced from a cell buffer: a flat triangle
// index list, a parallel triangle-to-source-cell mapping, and the
// higher-order cell records encountered along the way.
type Triangulation struct {
	Indices        []uint32
	TriangleToCell []int

	QuadraticTriangles []mesh.QuadraticTriangle
	QuadraticEdges     []mesh.QuadraticEdge
}

func (t *Triangulation) addTriangle(a, b, c uint32, cell int) {
	t.Indices = append(t.Indices, a, b, c)
	t.TriangleToCell = append(t.TriangleToCell, cell)
}

// fan emits a triangle fan anchored at verts[0]. Cells with fewer than
// three vertices produce no surface and are skipped with a diagnostic.
func (t *Triangulation) fan(verts []uint32, cell int) {
	if len(verts) < 3 {
		slog.Warn("skipping degenerate cell", "cell", cell, "vertices", len(verts))
		return
	}
	for i := 1; i < len(verts)-1; i++ {
		t.addTriangle(verts[0], verts[i], verts[i+1], cell)
	}
}

// TriangulateCells converts the typed cell buffer of an unstructured grid
// into a triangle surface. The buffer is walked strictly: a cell whose
// count prefix runs past the end of the buffer, a trailing remainder, or a
// type list that disagrees with the announced cell count all fail hard.
func TriangulateCells(cells Cells) (*Triangulation, error) {
	if len(cells.Types) != cells.NumCells {
		return nil, mesh.ErrInvalidFormat(fmt.Sprintf(
			"%d cell types for %d cells", len(cells.Types), cells.NumCells))
	}

	out := &Triangulation{}
	offset := 0
	for cell, ctype := range cells.Types {
		verts, next, err := readCell(cells.Data, offset, cell)
		if err != nil {
			return nil, err
		}
		offset = next

		switch ctype {
		case CellTriangle:
			if len(verts) != 3 {
				return nil, cellArityError(ctype, cell, 3, len(verts))
			}
			out.addTriangle(verts[0], verts[1], verts[2], cell)

		case CellQuad, CellPixel:
			if len(verts) != 4 {
				return nil, cellArityError(ctype, cell, 4, len(verts))
			}
			v := verts
			if ctype == CellPixel {
				// Pixel vertex order is axis-aligned row major; swap to the
				// winding quad splitting expects.
				v = []uint32{verts[0], verts[1], verts[3], verts[2]}
			}
			out.addTriangle(v[0], v[1], v[2], cell)
			out.addTriangle(v[0], v[2], v[3], cell)

		case CellTetra:
			if len(verts) != 4 {
				return nil, cellArityError(ctype, cell, 4, len(verts))
			}
			out.addTriangle(verts[0], verts[1], verts[2], cell)
			out.addTriangle(verts[0], verts[2], verts[3], cell)
			out.addTriangle(verts[0], verts[3], verts[1], cell)
			out.addTriangle(verts[1], verts[3], verts[2], cell)

		case CellPolygon:
			out.fan(verts, cell)

		case CellQuadraticEdge:
			if len(verts) != 3 {
				return nil, cellArityError(ctype, cell, 3, len(verts))
			}
			out.QuadraticEdges = append(out.QuadraticEdges,
				mesh.QuadraticEdge{Vertices: [3]uint32{verts[0], verts[1], verts[2]}})

		case CellQuadraticTriangle:
			if len(verts) != 6 {
				return nil, cellArityError(ctype, cell, 6, len(verts))
			}
			// Render the corner triangle; the full 6-point record stays
			// available for subdivision.
			out.addTriangle(verts[0], verts[1], verts[2], cell)
			out.QuadraticTriangles = append(out.QuadraticTriangles,
				mesh.QuadraticTriangle{Vertices: [6]uint32{
					verts[0], verts[1], verts[2], verts[3], verts[4], verts[5]}})

		case CellVertex, CellPolyVertex, CellLine, CellPolyLine:
			slog.Warn("skipping non-surface cell", "cell", cell, "type", ctype.String())

		default:
			// Unknown volumetric or polygonal types: fan over whatever
			// vertices the cell carries rather than dropping it outright.
			slog.Warn("fan-triangulating unrecognized cell", "cell", cell, "type", ctype.String())
			out.fan(verts, cell)
		}
	}
	if offset != len(cells.Data) {
		return nil, mesh.ErrInvalidFormat(fmt.Sprintf(
			"%d unread values remain in cell buffer", len(cells.Data)-offset))
	}
	return out, nil
}

// TriangulatePolygons converts a polydata POLYGONS buffer into a triangle
// surface. Triangles pass through, quads split along the 0-2 diagonal, and
// larger polygons fan from their first vertex.
func TriangulatePolygons(polys CellArray) (*Triangulation, error) {
	out := &Triangulation{}
	offset := 0
	for cell := 0; cell < polys.NumCells; cell++ {
		verts, next, err := readCell(polys.Data, offset, cell)
		if err != nil {
			return nil, err
		}
		offset = next

		switch len(verts) {
		case 3:
			out.addTriangle(verts[0], verts[1], verts[2], cell)
		case 4:
			out.addTriangle(verts[0], verts[1], verts[2], cell)
			out.addTriangle(verts[0], verts[2], verts[3], cell)
		default:
			out.fan(verts, cell)
		}
	}
	if offset != len(polys.Data) {
		return nil, mesh.ErrInvalidFormat(fmt.Sprintf(
			"%d unread values remain in polygon buffer", len(polys.Data)-offset))
	}
	return out, nil
}

// readCell reads one count-prefixed cell starting at offset and returns its
// vertex slice and the offset of the next cell.
func readCell(data []uint32, offset, cell int) ([]uint32, int, error) {
	if offset >= len(data) {
		return nil, 0, mesh.ErrInvalidFormat(fmt.Sprintf(
			"cell buffer exhausted at cell %d", cell))
	}
	count := int(data[offset])
	offset++
	if offset+count > len(data) {
		return nil, 0, mesh.ErrInvalidFormat(fmt.Sprintf(
			"cell %d declares %d vertices but buffer holds %d", cell, count, len(data)-offset))
	}
	return data[offset : offset+count], offset + count, nil
}

func cellArityError(ctype CellType, cell, want, got int) error {
	return mesh.ErrInvalidFormat(fmt.Sprintf(
		"%s cell %d has %d vertices, want %d", ctype, cell, got, want))
}
