package mesh

import "fmt"

// Location says whether an attribute is attached per point or per cell.
type Location int

const (
	LocationPoint Location = iota
	LocationCell
)

func (l Location) String() string {
	switch l {
	case LocationPoint:
		return "point"
	case LocationCell:
		return "cell"
	default:
		return fmt.Sprintf("Location(%d)", int(l))
	}
}

// AttributeKey identifies an attribute: keys are unique per Geometry.
type AttributeKey struct {
	Name string
	Loc  Location
}

// AttributeKind distinguishes the attribute payload variants.
type AttributeKind int

const (
	AttrScalar AttributeKind = iota
	AttrColorScalar
	AttrVector
	AttrTensor
)

func (k AttributeKind) String() string {
	switch k {
	case AttrScalar:
		return "scalar"
	case AttrColorScalar:
		return "color scalar"
	case AttrVector:
		return "vector"
	case AttrTensor:
		return "tensor"
	default:
		return fmt.Sprintf("AttributeKind(%d)", int(k))
	}
}

// Attribute is a tagged union over the four payload variants. Kind selects
// which field group is populated; consumption sites switch on Kind
// exhaustively. New variants are added here, not by subtyping.
type Attribute struct {
	Kind AttributeKind

	// Scalar payload. Scalars holds NumComp consecutive values per element.
	// TableName names the color map used to render the scalar; Table, when
	// non-nil, is an inline lookup table carried by the source file.
	NumComp   int
	TableName string
	Scalars   []float32
	Table     []RGBA

	// ColorScalar payload: one NValues-component color per element.
	NValues int
	Colors  [][]float32

	// Vector payload: one 3-vector per element.
	Vectors []Vec3

	// Tensor payload: one row-major 3x3 matrix per element.
	Tensors [][9]float32
}

// Count returns the number of elements (points or cells) the attribute
// carries values for.
func (a Attribute) Count() int {
	switch a.Kind {
	case AttrScalar:
		nc := a.NumComp
		if nc < 1 {
			nc = 1
		}
		return len(a.Scalars) / nc
	case AttrColorScalar:
		return len(a.Colors)
	case AttrVector:
		return len(a.Vectors)
	case AttrTensor:
		return len(a.Tensors)
	default:
		return 0
	}
}

// Clone returns a deep copy sharing no backing storage with a.
func (a Attribute) Clone() Attribute {
	out := a
	out.Scalars = append([]float32(nil), a.Scalars...)
	out.Table = append([]RGBA(nil), a.Table...)
	out.Vectors = append([]Vec3(nil), a.Vectors...)
	out.Tensors = append([][9]float32(nil), a.Tensors...)
	if a.Colors != nil {
		out.Colors = make([][]float32, len(a.Colors))
		for i, c := range a.Colors {
			out.Colors[i] = append([]float32(nil), c...)
		}
	}
	return out
}
