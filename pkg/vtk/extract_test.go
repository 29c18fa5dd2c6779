package vtk

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/echolmy/vtkmesh/pkg/mesh"
)

func TestExtractUnstructuredGrid(t *testing.T) {
	f, err := Parse(strings.NewReader(tetraGrid))
	if err != nil {
		t.Fatal(err)
	}
	g, err := Extract(f)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if g.VertexCount() != 4 {
		t.Errorf("VertexCount() = %d, want 4", g.VertexCount())
	}
	if g.TriangleCount() != 4 {
		t.Errorf("TriangleCount() = %d, want 4", g.TriangleCount())
	}
	if !reflect.DeepEqual(g.TriangleToCell, []int{0, 0, 0, 0}) {
		t.Errorf("TriangleToCell = %v", g.TriangleToCell)
	}

	temp, ok := g.Attribute("temperature", mesh.LocationPoint)
	if !ok {
		t.Fatal("temperature attribute missing")
	}
	if temp.Kind != mesh.AttrScalar || !reflect.DeepEqual(temp.Scalars, []float32{0, 0.25, 0.5, 1}) {
		t.Errorf("temperature = %+v", temp)
	}
	vel, ok := g.Attribute("velocity", mesh.LocationPoint)
	if !ok {
		t.Fatal("velocity attribute missing")
	}
	if vel.Kind != mesh.AttrVector || len(vel.Vectors) != 4 || vel.Vectors[3] != (mesh.Vec3{1, 1, 0}) {
		t.Errorf("velocity = %+v", vel)
	}
	if _, ok := g.Attribute("pressure", mesh.LocationCell); !ok {
		t.Error("pressure cell attribute missing")
	}
}

func TestExtractPolyData(t *testing.T) {
	f, err := Parse(strings.NewReader(squarePoly))
	if err != nil {
		t.Fatal(err)
	}
	g, err := Extract(f)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !reflect.DeepEqual(g.Indices, []uint32{0, 1, 2, 0, 2, 3}) {
		t.Errorf("Indices = %v", g.Indices)
	}
	rgb, ok := g.Attribute("rgb", mesh.LocationPoint)
	if !ok {
		t.Fatal("rgb attribute missing")
	}
	if rgb.Kind != mesh.AttrColorScalar || rgb.NValues != 3 || len(rgb.Colors) != 4 {
		t.Errorf("rgb = %+v", rgb)
	}
	if !reflect.DeepEqual(rgb.Colors[2], []float32{0, 0, 1}) {
		t.Errorf("rgb.Colors[2] = %v", rgb.Colors[2])
	}
}

func TestExtractInlineLookupTable(t *testing.T) {
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
		t.Fatal(err)
	}
	g, err := Extract(f)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	table, ok := g.LookupTable("ramp")
	if !ok {
		t.Fatal("lookup table 'ramp' missing")
	}
	want := []mesh.RGBA{{0, 0, 1, 1}, {1, 0, 0, 1}}
	if !reflect.DeepEqual(table, want) {
		t.Errorf("table = %v, want %v", table, want)
	}
	level, ok := g.Attribute("level", mesh.LocationPoint)
	if !ok || level.TableName != "ramp" {
		t.Errorf("level attribute = %+v, want table ramp", level)
	}
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name     string
		file     *File
		wantKind mesh.ErrorKind
	}{
		{
			"no pieces",
			&File{Kind: UnstructuredGrid},
			mesh.KindMissingData,
		},
		{
			"external piece",
			&File{Kind: UnstructuredGrid, Pieces: []Piece{{Source: "part2.vtk"}}},
			mesh.KindInvalidFormat,
		},
		{
			"structured grid unsupported",
			&File{Kind: StructuredGrid, Pieces: []Piece{{}}},
			mesh.KindUnsupportedDataType,
		},
		{
			"polydata without polygons",
			&File{Kind: PolyData, Pieces: []Piece{{Points: []float32{0, 0, 0}}}},
			mesh.KindMissingData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.file)
			if err == nil {
				t.Fatal("Extract() = nil error, want failure")
			}
			if !mesh.IsKind(err, tt.wantKind) {
				t.Errorf("error = %v, want kind %v", err, tt.wantKind)
			}
		})
	}
}

func TestExtractSkipsUnsupportedAttribute(t *testing.T) {
	file := &File{
		Kind: PolyData,
		Pieces: []Piece{{
			Points: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
			Polys:  &CellArray{NumCells: 1, Data: []uint32{3, 0, 1, 2}},
			PointData: []DataArray{
				{Name: "meta", Elem: ElemField},
				{Name: "mass", Elem: ElemScalars, NumComp: 1, TableName: "default", Data: []float32{1, 2, 3}},
			},
		}},
	}
	g, err := Extract(file)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if _, ok := g.Attribute("meta", mesh.LocationPoint); ok {
		t.Error("field array was not skipped")
	}
	if _, ok := g.Attribute("mass", mesh.LocationPoint); !ok {
		t.Error("good attribute was dropped along with the bad one")
	}
}

func TestExtractTensorAttribute(t *testing.T) {
	data := make([]float32, 27)
	for i := range data {
		data[i] = float32(i)
	}
	file := &File{
		Kind: PolyData,
		Pieces: []Piece{{
			Points:    []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
			Polys:     &CellArray{NumCells: 1, Data: []uint32{3, 0, 1, 2}},
			PointData: []DataArray{{Name: "stress", Elem: ElemTensors, NumComp: 9, Data: data}},
		}},
	}
	g, err := Extract(file)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	stress, ok := g.Attribute("stress", mesh.LocationPoint)
	if !ok {
		t.Fatal("stress attribute missing")
	}
	if stress.Kind != mesh.AttrTensor || len(stress.Tensors) != 3 {
		t.Fatalf("stress = %+v", stress)
	}
	if stress.Tensors[1] != [9]float32{9, 10, 11, 12, 13, 14, 15, 16, 17} {
		t.Errorf("Tensors[1] = %v", stress.Tensors[1])
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tetra.vtk")
	if err := os.WriteFile(path, []byte(tetraGrid), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("loading the same file twice produced different geometry")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.vtk")); !mesh.IsKind(err, mesh.KindLoad) {
		t.Errorf("missing file error = %v, want load error", err)
	}
}
