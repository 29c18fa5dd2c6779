package mesh

import (
	"testing"
)

func TestGeometryCounts(t *testing.T) {
	tests := []struct {
		name      string
		vertices  []Vec3
		indices   []uint32
		wantVerts int
		wantTris  int
	}{
		{"empty", nil, nil, 0, 0},
		{"one triangle", []Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []uint32{0, 1, 2}, 3, 1},
		{"two triangles", []Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}, []uint32{0, 1, 2, 0, 2, 3}, 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.vertices, tt.indices, nil)
			if got := g.VertexCount(); got != tt.wantVerts {
				t.Errorf("VertexCount() = %d, want %d", got, tt.wantVerts)
			}
			if got := g.TriangleCount(); got != tt.wantTris {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.wantTris)
			}
		})
	}
}

func TestGeometryBounds(t *testing.T) {
	t.Run("empty mesh has unit size", func(t *testing.T) {
		g := New(nil, nil, nil)
		center, size := g.Bounds()
		if center != (Vec3{}) || size != 1 {
			t.Errorf("Bounds() = %v, %v, want origin, 1", center, size)
		}
	})
	t.Run("unit cube", func(t *testing.T) {
		g := New([]Vec3{{0, 0, 0}, {1, 1, 1}}, nil, nil)
		center, size := g.Bounds()
		if center != (Vec3{0.5, 0.5, 0.5}) {
			t.Errorf("center = %v, want {0.5 0.5 0.5}", center)
		}
		want := Vec3{1, 1, 1}.Length()
		if diff := size - want; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("size = %v, want %v", size, want)
		}
	})
}

func TestGeometryCellFor(t *testing.T) {
	g := New([]Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}, []uint32{0, 1, 2, 0, 2, 3}, nil)
	if got := g.CellFor(1); got != 1 {
		t.Errorf("identity CellFor(1) = %d, want 1", got)
	}
	g.TriangleToCell = []int{0, 0}
	if got := g.CellFor(1); got != 0 {
		t.Errorf("mapped CellFor(1) = %d, want 0", got)
	}
}

func TestExtractLookupTables(t *testing.T) {
	g := New([]Vec3{{0, 0, 0}}, nil, nil)
	table := []RGBA{{0, 0, 1, 1}, {1, 0, 0, 1}}
	g.SetAttribute(LookupTablePrefix+"ramp", LocationPoint, Attribute{
		Kind:      AttrScalar,
		NumComp:   4,
		TableName: "ramp",
		Scalars:   []float32{0, 0, 1, 1, 1, 0, 0, 1},
		Table:     table,
	})
	g.SetAttribute("temperature", LocationPoint, Attribute{
		Kind: AttrScalar, NumComp: 1, TableName: "ramp", Scalars: []float32{0.5},
	})

	g.ExtractLookupTables()

	got, ok := g.LookupTable("ramp")
	if !ok {
		t.Fatal("lookup table 'ramp' not extracted")
	}
	if len(got) != 2 || got[0] != table[0] || got[1] != table[1] {
		t.Errorf("LookupTable(ramp) = %v, want %v", got, table)
	}
	if names := g.LookupTableNames(); len(names) != 1 || names[0] != "ramp" {
		t.Errorf("LookupTableNames() = %v, want [ramp]", names)
	}
}

func TestGeometryCloneIsIndependent(t *testing.T) {
	g := New([]Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []uint32{0, 1, 2}, nil)
	g.TriangleToCell = []int{0}
	g.SetAttribute("speed", LocationPoint, Attribute{
		Kind: AttrScalar, NumComp: 1, Scalars: []float32{1, 2, 3},
	})

	clone := g.Clone()
	clone.Vertices[0] = Vec3{9, 9, 9}
	clone.Indices[0] = 2
	attr, _ := clone.Attribute("speed", LocationPoint)
	attr.Scalars[0] = 99

	if g.Vertices[0] != (Vec3{0, 0, 0}) {
		t.Error("clone shares vertex storage with original")
	}
	if g.Indices[0] != 0 {
		t.Error("clone shares index storage with original")
	}
	orig, _ := g.Attribute("speed", LocationPoint)
	if orig.Scalars[0] != 1 {
		t.Error("clone shares attribute storage with original")
	}
}

func TestGeometryValidate(t *testing.T) {
	tri := []Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

	tests := []struct {
		name     string
		mutate   func(*Geometry)
		wantKind ErrorKind
		wantOK   bool
	}{
		{"valid", func(g *Geometry) {}, 0, true},
		{"ragged indices", func(g *Geometry) { g.Indices = []uint32{0, 1} }, KindInvalidFormat, false},
		{"index past vertices", func(g *Geometry) { g.Indices = []uint32{0, 1, 7} }, KindIndexOutOfBounds, false},
		{"mapping length", func(g *Geometry) { g.TriangleToCell = []int{0, 1} }, KindAttributeMismatch, false},
		{
			"short point attribute",
			func(g *Geometry) {
				g.SetAttribute("s", LocationPoint, Attribute{Kind: AttrScalar, NumComp: 1, Scalars: []float32{1}})
			},
			KindAttributeMismatch, false,
		},
		{
			"cell attribute not addressable",
			func(g *Geometry) {
				g.TriangleToCell = []int{4}
				g.SetAttribute("c", LocationCell, Attribute{Kind: AttrScalar, NumComp: 1, Scalars: []float32{1}})
			},
			KindIndexOutOfBounds, false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(append([]Vec3(nil), tri...), []uint32{0, 1, 2}, nil)
			tt.mutate(g)
			err := g.Validate()
			if tt.wantOK {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !IsKind(err, tt.wantKind) {
				t.Errorf("Validate() kind = %v, want %v", err, tt.wantKind)
			}
		})
	}
}

func TestRGBALerp(t *testing.T) {
	a := RGBA{0, 0, 0, 1}
	b := RGBA{1, 1, 1, 1}
	if got := a.Lerp(b, 0.5); got != (RGBA{0.5, 0.5, 0.5, 1}) {
		t.Errorf("Lerp(0.5) = %v", got)
	}
	if got := a.Lerp(b, 0); got != a {
		t.Errorf("Lerp(0) = %v, want %v", got, a)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Errorf("Lerp(1) = %v, want %v", got, b)
	}
}
