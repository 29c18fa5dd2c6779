package vtk

import (
	"reflect"
	"strings"
	"testing"

	"github.com/echolmy/vtkmesh/pkg/mesh"
)

const tetraGrid = `# vtk DataFile Version 3.0
single tetrahedron
ASCII
DATASET UNSTRUCTURED_GRID
POINTS 4 float
0 0 0
1 0 0
0 1 0
0 0 1
CELLS 1 5
4 0 1 2 3
CELL_TYPES 1
10
POINT_DATA 4
SCALARS temperature float 1
LOOKUP_TABLE default
0.0 0.25 0.5 1.0
VECTORS velocity float
1 0 0
0 1 0
0 0 1
1 1 0
CELL_DATA 1
SCALARS pressure float
LOOKUP_TABLE default
2.5
`

const squarePoly = `# vtk DataFile Version 2.0
unit square
ASCII
DATASET POLYDATA
POINTS 4 float
0 0 0
1 0 0
1 1 0
0 1 0
POLYGONS 1 5
4 0 1 2 3
POINT_DATA 4
COLOR_SCALARS rgb 3
1 0 0
0 1 0
0 0 1
1 1 1
`

func TestParseUnstructuredGrid(t *testing.T) {
	f, err := Parse(strings.NewReader(tetraGrid))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Kind != UnstructuredGrid {
		t.Errorf("Kind = %v, want UNSTRUCTURED_GRID", f.Kind)
	}
	if f.Title != "single tetrahedron" {
		t.Errorf("Title = %q", f.Title)
	}
	if len(f.Pieces) != 1 {
		t.Fatalf("got %d pieces, want 1", len(f.Pieces))
	}

	p := &f.Pieces[0]
	if len(p.Points) != 12 {
		t.Errorf("got %d point values, want 12", len(p.Points))
	}
	if p.Cells.NumCells != 1 || !reflect.DeepEqual(p.Cells.Data, []uint32{4, 0, 1, 2, 3}) {
		t.Errorf("cell buffer = %v", p.Cells.Data)
	}
	if !reflect.DeepEqual(p.Cells.Types, []CellType{CellTetra}) {
		t.Errorf("cell types = %v, want [tetra]", p.Cells.Types)
	}

	if len(p.PointData) != 2 {
		t.Fatalf("got %d point data arrays, want 2", len(p.PointData))
	}
	temp := p.PointData[0]
	if temp.Name != "temperature" || temp.Elem != ElemScalars || temp.NumComp != 1 {
		t.Errorf("scalar header = %+v", temp)
	}
	if temp.TableName != "default" {
		t.Errorf("scalar table = %q, want default", temp.TableName)
	}
	if !reflect.DeepEqual(temp.Data, []float32{0, 0.25, 0.5, 1}) {
		t.Errorf("scalar data = %v", temp.Data)
	}
	vel := p.PointData[1]
	if vel.Name != "velocity" || vel.Elem != ElemVectors || len(vel.Data) != 12 {
		t.Errorf("vector header = %+v", vel)
	}

	if len(p.CellData) != 1 || p.CellData[0].Name != "pressure" {
		t.Fatalf("cell data = %+v", p.CellData)
	}
	if !reflect.DeepEqual(p.CellData[0].Data, []float32{2.5}) {
		t.Errorf("cell scalar data = %v", p.CellData[0].Data)
	}
}

func TestParsePolyData(t *testing.T) {
	f, err := Parse(strings.NewReader(squarePoly))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if f.Kind != PolyData {
		t.Errorf("Kind = %v, want POLYDATA", f.Kind)
	}
	p := &f.Pieces[0]
	if p.Polys == nil || p.Polys.NumCells != 1 {
		t.Fatalf("polygons = %+v", p.Polys)
	}
	if !reflect.DeepEqual(p.Polys.Data, []uint32{4, 0, 1, 2, 3}) {
		t.Errorf("polygon buffer = %v", p.Polys.Data)
	}
	rgb := p.PointData[0]
	if rgb.Elem != ElemColorScalars || rgb.NumComp != 3 || len(rgb.Data) != 12 {
		t.Errorf("color scalars = %+v", rgb)
	}
}

func TestParseScalarsWithoutComponentCount(t *testing.T) {
	src := `# vtk DataFile Version 3.0
implicit component count
ASCII
DATASET POLYDATA
POINTS 3 float
0 0 0
1 0 0
0 1 0
POLYGONS 1 4
3 0 1 2
POINT_DATA 3
SCALARS mass float
LOOKUP_TABLE ramp
1 2 3
`
	f, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	arr := f.Pieces[0].PointData[0]
	if arr.NumComp != 1 {
		t.Errorf("NumComp = %d, want 1", arr.NumComp)
	}
	if arr.TableName != "ramp" {
		t.Errorf("TableName = %q, want ramp", arr.TableName)
	}
}

func TestParseScalarsBareHeaderWithIntegerData(t *testing.T) {
	// No component count, no LOOKUP_TABLE line, and the first data value
	// falls in the 1..4 range a component count would occupy. Only the
	// header's line break tells them apart.
	src := `# vtk DataFile Version 3.0
implicit everything
ASCII
DATASET POLYDATA
POINTS 3 float
0 0 0
1 0 0
0 1 0
POLYGONS 1 4
3 0 1 2
POINT_DATA 3
SCALARS ids int
2 3 4
`
	f, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	arr := f.Pieces[0].PointData[0]
	if arr.NumComp != 1 {
		t.Errorf("NumComp = %d, want 1", arr.NumComp)
	}
	if arr.TableName != "default" {
		t.Errorf("TableName = %q, want default", arr.TableName)
	}
	if !reflect.DeepEqual(arr.Data, []float32{2, 3, 4}) {
		t.Errorf("scalar data = %v", arr.Data)
	}
}

func TestParseScalarsRejectsOverlongHeader(t *testing.T) {
	src := `# vtk DataFile Version 3.0
bad header
ASCII
DATASET POLYDATA
POINTS 3 float
0 0 0
1 0 0
0 1 0
POLYGONS 1 4
3 0 1 2
POINT_DATA 3
SCALARS mass float 1 extra
1 2 3
`
	if _, err := Parse(strings.NewReader(src)); !mesh.IsKind(err, mesh.KindInvalidFormat) {
		t.Errorf("error = %v, want invalid format", err)
	}
}

func TestParseInlineLookupTable(t *testing.T) {
	src := `# vtk DataFile Version 3.0
palette
ASCII
DATASET POLYDATA
POINTS 3 float
0 0 0
1 0 0
0 1 0
POLYGONS 1 4
3 0 1 2
POINT_DATA 3
SCALARS level float 1
LOOKUP_TABLE ramp
0 0.5 1
LOOKUP_TABLE ramp 2
0 0 1 1
1 0 0 1
`
	f, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	pd := f.Pieces[0].PointData
	if len(pd) != 2 {
		t.Fatalf("got %d point data arrays, want 2", len(pd))
	}
	table := pd[1]
	if table.Elem != ElemLookupTable || table.Name != "ramp" {
		t.Errorf("table header = %+v", table)
	}
	if !reflect.DeepEqual(table.Data, []float32{0, 0, 1, 1, 1, 0, 0, 1}) {
		t.Errorf("table data = %v", table.Data)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantKind mesh.ErrorKind
	}{
		{
			"binary format rejected",
			"# vtk DataFile Version 3.0\ntitle\nBINARY\nDATASET POLYDATA\n",
			mesh.KindUnsupportedDataType,
		},
		{
			"missing magic header",
			"not a vtk file\ntitle\nASCII\n",
			mesh.KindInvalidFormat,
		},
		{
			"unknown dataset kind",
			"# vtk DataFile Version 3.0\ntitle\nASCII\nDATASET HOLOGRAM\n",
			mesh.KindInvalidFormat,
		},
		{
			"non-numeric coordinate",
			"# vtk DataFile Version 3.0\ntitle\nASCII\nDATASET POLYDATA\nPOINTS 1 float\n0 zero 0\n",
			mesh.KindConversion,
		},
		{
			"attribute section before data header",
			"# vtk DataFile Version 3.0\ntitle\nASCII\nDATASET POLYDATA\nSCALARS s float 1\n",
			mesh.KindInvalidFormat,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("Parse() = nil error, want failure")
			}
			if !mesh.IsKind(err, tt.wantKind) {
				t.Errorf("error = %v, want kind %v", err, tt.wantKind)
			}
		})
	}
}

func TestParseIsDeterministic(t *testing.T) {
	a, err := Parse(strings.NewReader(tetraGrid))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse(strings.NewReader(tetraGrid))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("parsing the same input twice produced different files")
	}
}
