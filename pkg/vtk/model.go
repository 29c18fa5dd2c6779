package vtk

import "fmt"

// DatasetKind identifies the DATASET structure of a legacy file.
type DatasetKind int

const (
	UnstructuredGrid DatasetKind = iota
	PolyData
	StructuredPoints
	StructuredGrid
	RectilinearGrid
	Field
)

func (k DatasetKind) String() string {
	switch k {
	case UnstructuredGrid:
		return "UNSTRUCTURED_GRID"
	case PolyData:
		return "POLYDATA"
	case StructuredPoints:
		return "STRUCTURED_POINTS"
	case StructuredGrid:
		return "STRUCTURED_GRID"
	case RectilinearGrid:
		return "RECTILINEAR_GRID"
	case Field:
		return "FIELD"
	default:
		return fmt.Sprintf("DatasetKind(%d)", int(k))
	}
}

// CellType carries the legacy VTK cell type codes.
type CellType int

const (
	CellVertex            CellType = 1
	CellPolyVertex        CellType = 2
	CellLine              CellType = 3
	CellPolyLine          CellType = 4
	CellTriangle          CellType = 5
	CellTriangleStrip     CellType = 6
	CellPolygon           CellType = 7
	CellPixel             CellType = 8
	CellQuad              CellType = 9
	CellTetra             CellType = 10
	CellQuadraticEdge     CellType = 21
	CellQuadraticTriangle CellType = 22
)

func (c CellType) String() string {
	switch c {
	case CellVertex:
		return "vertex"
	case CellPolyVertex:
		return "poly vertex"
	case CellLine:
		return "line"
	case CellPolyLine:
		return "poly line"
	case CellTriangle:
		return "triangle"
	case CellTriangleStrip:
		return "triangle strip"
	case CellPolygon:
		return "polygon"
	case CellPixel:
		return "pixel"
	case CellQuad:
		return "quad"
	case CellTetra:
		return "tetra"
	case CellQuadraticEdge:
		return "quadratic edge"
	case CellQuadraticTriangle:
		return "quadratic triangle"
	default:
		return fmt.Sprintf("cell type %d", int(c))
	}
}

// CellArray is the legacy flat cell encoding: for each cell a vertex count
// followed by that many point indices, all in one buffer.
type CellArray struct {
	NumCells int
	Data     []uint32
}

// Cells pairs the flat cell buffer of an unstructured grid with the
// parallel CELL_TYPES list.
type Cells struct {
	CellArray
	Types []CellType
}

// ElementType tags the dataset attribute sections of POINT_DATA and
// CELL_DATA.
type ElementType int

const (
	ElemScalars ElementType = iota
	ElemColorScalars
	ElemVectors
	ElemNormals
	ElemTCoords
	ElemTensors
	ElemLookupTable
	ElemField
)

func (e ElementType) String() string {
	switch e {
	case ElemScalars:
		return "SCALARS"
	case ElemColorScalars:
		return "COLOR_SCALARS"
	case ElemVectors:
		return "VECTORS"
	case ElemNormals:
		return "NORMALS"
	case ElemTCoords:
		return "TEXTURE_COORDINATES"
	case ElemTensors:
		return "TENSORS"
	case ElemLookupTable:
		return "LOOKUP_TABLE"
	case ElemField:
		return "FIELD"
	default:
		return fmt.Sprintf("ElementType(%d)", int(e))
	}
}

// DataArray is one attribute array from a POINT_DATA or CELL_DATA section.
// Data is flat: NumComp consecutive values per element.
type DataArray struct {
	Name      string
	Elem      ElementType
	NumComp   int
	TableName string
	Data      []float32
}

// Piece holds the geometry and attributes of one dataset piece. Points is a
// flat buffer of xyz triples. The topology fields depend on the dataset
// kind: unstructured grids fill Cells, polydata fills the four primitive
// lists.
type Piece struct {
	// Source names an external piece location. Inline pieces, the only kind
	// this package produces or extracts, leave it empty.
	Source string

	Points []float32

	Cells Cells

	Verts  *CellArray
	Lines  *CellArray
	Polys  *CellArray
	Strips *CellArray

	PointData []DataArray
	CellData  []DataArray
}

// File is a parsed legacy dataset.
type File struct {
	Version string
	Title   string
	Kind    DatasetKind
	Pieces  []Piece
}
