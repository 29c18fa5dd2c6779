package vtk

import (
	"fmt"
	"log/slog"

	"github.com/echolmy/vtkmesh/pkg/mesh"
)

// Extractor converts one dataset piece into canonical geometry.
type Extractor interface {
	Extract(p *Piece) (*mesh.Geometry, error)
}

var (
	_ Extractor = UnstructuredGridExtractor{}
	_ Extractor = PolyDataExtractor{}
)

// Extract converts a parsed file into geometry. Only the first piece is
// honored; multi-piece files log a diagnostic for the rest.
func Extract(f *File) (*mesh.Geometry, error) {
	var ex Extractor
	switch f.Kind {
	case UnstructuredGrid:
		ex = UnstructuredGridExtractor{}
	case PolyData:
		ex = PolyDataExtractor{}
	default:
		return nil, mesh.ErrUnsupported(fmt.Sprintf("dataset kind %s", f.Kind))
	}

	if len(f.Pieces) == 0 {
		return nil, mesh.ErrMissingData("dataset has no pieces")
	}
	if len(f.Pieces) > 1 {
		slog.Warn("multi-piece dataset, extracting first piece only", "pieces", len(f.Pieces))
	}
	p := &f.Pieces[0]
	if p.Source != "" {
		return nil, mesh.ErrInvalidFormat(fmt.Sprintf("piece references external source %q", p.Source))
	}
	return ex.Extract(p)
}

// Load reads the legacy file at path and extracts its first piece.
func Load(path string) (*mesh.Geometry, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	return Extract(f)
}

// UnstructuredGridExtractor extracts DATASET UNSTRUCTURED_GRID pieces by
// triangulating the typed cell buffer.
type UnstructuredGridExtractor struct{}

func (UnstructuredGridExtractor) Extract(p *Piece) (*mesh.Geometry, error) {
	vertices, err := extractVertices(p.Points)
	if err != nil {
		return nil, err
	}
	tri, err := TriangulateCells(p.Cells)
	if err != nil {
		return nil, err
	}
	return assemble(p, vertices, tri)
}

// PolyDataExtractor extracts DATASET POLYDATA pieces from their POLYGONS
// list. Vertex and line primitives carry no surface and are skipped;
// triangle strips are not implemented.
type PolyDataExtractor struct{}

func (PolyDataExtractor) Extract(p *Piece) (*mesh.Geometry, error) {
	vertices, err := extractVertices(p.Points)
	if err != nil {
		return nil, err
	}
	if p.Verts != nil {
		slog.Warn("skipping VERTICES primitives", "cells", p.Verts.NumCells)
	}
	if p.Lines != nil {
		slog.Warn("skipping LINES primitives", "cells", p.Lines.NumCells)
	}
	if p.Strips != nil {
		slog.Warn("skipping TRIANGLE_STRIPS primitives, strip decoding not implemented", "cells", p.Strips.NumCells)
	}
	if p.Polys == nil {
		return nil, mesh.ErrMissingData("polydata has no POLYGONS section")
	}
	tri, err := TriangulatePolygons(*p.Polys)
	if err != nil {
		return nil, err
	}
	return assemble(p, vertices, tri)
}

func assemble(p *Piece, vertices []mesh.Vec3, tri *Triangulation) (*mesh.Geometry, error) {
	g := mesh.New(vertices, tri.Indices, nil)
	g.TriangleToCell = tri.TriangleToCell
	g.QuadraticTriangles = tri.QuadraticTriangles
	g.QuadraticEdges = tri.QuadraticEdges

	extractAttributes(g, p.PointData, mesh.LocationPoint)
	extractAttributes(g, p.CellData, mesh.LocationCell)
	g.ExtractLookupTables()

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func extractVertices(points []float32) ([]mesh.Vec3, error) {
	if len(points)%3 != 0 {
		return nil, mesh.ErrInvalidFormat(fmt.Sprintf(
			"point buffer length %d is not a multiple of 3", len(points)))
	}
	out := make([]mesh.Vec3, len(points)/3)
	for i := range out {
		out[i] = mesh.Vec3{points[3*i], points[3*i+1], points[3*i+2]}
	}
	return out, nil
}

// extractAttributes classifies every data array of one section. A single
// malformed or unsupported array is skipped with a diagnostic; it never
// fails the whole extraction.
func extractAttributes(g *mesh.Geometry, arrays []DataArray, loc mesh.Location) {
	for _, arr := range arrays {
		name, attr, err := classify(arr)
		if err != nil {
			slog.Warn("skipping attribute", "name", arr.Name, "section", arr.Elem.String(),
				"location", loc.String(), "reason", err)
			continue
		}
		g.SetAttribute(name, loc, attr)
	}
}

func classify(arr DataArray) (string, mesh.Attribute, error) {
	switch arr.Elem {
	case ElemScalars:
		tableName := arr.TableName
		if tableName == "" {
			tableName = "default"
		}
		return arr.Name, mesh.Attribute{
			Kind:      mesh.AttrScalar,
			NumComp:   arr.NumComp,
			TableName: tableName,
			Scalars:   arr.Data,
		}, nil

	case ElemColorScalars:
		if arr.NumComp < 1 {
			return "", mesh.Attribute{}, mesh.ErrInvalidFormat("color scalars without components")
		}
		colors := make([][]float32, 0, len(arr.Data)/arr.NumComp)
		for i := 0; i+arr.NumComp <= len(arr.Data); i += arr.NumComp {
			colors = append(colors, arr.Data[i:i+arr.NumComp])
		}
		return arr.Name, mesh.Attribute{
			Kind:    mesh.AttrColorScalar,
			NValues: arr.NumComp,
			Colors:  colors,
		}, nil

	case ElemVectors, ElemNormals:
		vectors, err := chunkVec3(arr.Data)
		if err != nil {
			return "", mesh.Attribute{}, err
		}
		return arr.Name, mesh.Attribute{Kind: mesh.AttrVector, Vectors: vectors}, nil

	case ElemTCoords:
		if arr.NumComp < 1 || arr.NumComp > 3 {
			return "", mesh.Attribute{}, mesh.ErrInvalidFormat(fmt.Sprintf(
				"texture coordinate dimension %d", arr.NumComp))
		}
		return arr.Name, mesh.Attribute{
			Kind:      mesh.AttrScalar,
			NumComp:   arr.NumComp,
			TableName: "default",
			Scalars:   arr.Data,
		}, nil

	case ElemTensors:
		if len(arr.Data)%9 != 0 {
			return "", mesh.Attribute{}, mesh.ErrInvalidFormat(fmt.Sprintf(
				"tensor buffer length %d is not a multiple of 9", len(arr.Data)))
		}
		tensors := make([][9]float32, len(arr.Data)/9)
		for i := range tensors {
			copy(tensors[i][:], arr.Data[9*i:9*i+9])
		}
		return arr.Name, mesh.Attribute{Kind: mesh.AttrTensor, Tensors: tensors}, nil

	case ElemLookupTable:
		if len(arr.Data)%4 != 0 {
			return "", mesh.Attribute{}, mesh.ErrInvalidFormat(fmt.Sprintf(
				"lookup table length %d is not a multiple of 4", len(arr.Data)))
		}
		table := make([]mesh.RGBA, len(arr.Data)/4)
		for i := range table {
			copy(table[i][:], arr.Data[4*i:4*i+4])
		}
		return mesh.LookupTablePrefix + arr.Name, mesh.Attribute{
			Kind:      mesh.AttrScalar,
			NumComp:   4,
			TableName: arr.Name,
			Scalars:   arr.Data,
			Table:     table,
		}, nil

	case ElemField:
		return "", mesh.Attribute{}, mesh.ErrUnsupported("field data")

	default:
		return "", mesh.Attribute{}, mesh.ErrUnsupported(arr.Elem.String())
	}
}

func chunkVec3(data []float32) ([]mesh.Vec3, error) {
	if len(data)%3 != 0 {
		return nil, mesh.ErrInvalidFormat(fmt.Sprintf(
			"vector buffer length %d is not a multiple of 3", len(data)))
	}
	out := make([]mesh.Vec3, len(data)/3)
	for i := range out {
		out[i] = mesh.Vec3{data[3*i], data[3*i+1], data[3*i+2]}
	}
	return out, nil
}
