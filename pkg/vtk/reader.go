package vtk

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/echolmy/vtkmesh/pkg/mesh"
)

// Open reads and parses the legacy file at path.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, mesh.ErrLoad(path, err)
	}
	defer f.Close()
	parsed, err := Parse(f)
	if err != nil {
		return nil, mesh.ErrLoad(path, err)
	}
	return parsed, nil
}

// Parse reads a legacy ASCII dataset from r. Binary files are recognized
// and rejected as unsupported.
func Parse(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)

	version, err := readLine(br)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(version, "# vtk DataFile Version") {
		return nil, mesh.ErrInvalidFormat("missing '# vtk DataFile Version' header")
	}
	title, err := readLine(br)
	if err != nil {
		return nil, err
	}
	format, err := readLine(br)
	if err != nil {
		return nil, err
	}
	switch strings.ToUpper(strings.TrimSpace(format)) {
	case "ASCII":
	case "BINARY":
		return nil, mesh.ErrUnsupported("binary legacy files")
	default:
		return nil, mesh.ErrInvalidFormat(fmt.Sprintf("unknown data format %q", strings.TrimSpace(format)))
	}

	tk := newTokenizer(br)
	if err := tk.expect("DATASET"); err != nil {
		return nil, err
	}
	kindWord, err := tk.next()
	if err != nil {
		return nil, err
	}
	kind, err := datasetKind(kindWord)
	if err != nil {
		return nil, err
	}

	p := &parser{tk: tk}
	piece, err := p.parsePiece(kind)
	if err != nil {
		return nil, err
	}

	return &File{
		Version: strings.TrimSpace(strings.TrimPrefix(version, "# vtk DataFile Version")),
		Title:   strings.TrimSpace(title),
		Kind:    kind,
		Pieces:  []Piece{*piece},
	}, nil
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && line == "" {
		return "", mesh.ErrInvalidFormat("truncated header")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func datasetKind(word string) (DatasetKind, error) {
	switch strings.ToUpper(word) {
	case "UNSTRUCTURED_GRID":
		return UnstructuredGrid, nil
	case "POLYDATA":
		return PolyData, nil
	case "STRUCTURED_POINTS":
		return StructuredPoints, nil
	case "STRUCTURED_GRID":
		return StructuredGrid, nil
	case "RECTILINEAR_GRID":
		return RectilinearGrid, nil
	case "FIELD":
		return Field, nil
	default:
		return 0, mesh.ErrInvalidFormat(fmt.Sprintf("unknown dataset kind %q", word))
	}
}

// errEndOfLine marks a line break during line-scoped scanning.
var errEndOfLine = errors.New("end of line")

// tokenizer yields whitespace-separated tokens with one token of lookahead.
// It keeps track of line breaks, because some header lines (SCALARS) have
// optional trailing fields that only the line break disambiguates from the
// data that follows.
type tokenizer struct {
	r      *bufio.Reader
	peeked string
	has    bool
}

func newTokenizer(r *bufio.Reader) *tokenizer {
	return &tokenizer{r: r}
}

// scan reads the next token. With crossLines false it stops at the current
// line's break, consuming it, and reports errEndOfLine.
func (t *tokenizer) scan(crossLines bool) (string, error) {
	for {
		b, err := t.r.ReadByte()
		if err == io.EOF {
			return "", io.EOF
		}
		if err != nil {
			return "", mesh.ErrIO(err)
		}
		if b == '\n' {
			if !crossLines {
				return "", errEndOfLine
			}
			continue
		}
		if b == ' ' || b == '\t' || b == '\r' {
			continue
		}
		t.r.UnreadByte()
		break
	}
	var sb strings.Builder
	for {
		b, err := t.r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", mesh.ErrIO(err)
		}
		if b == ' ' || b == '\t' || b == '\r' || b == '\n' {
			t.r.UnreadByte()
			break
		}
		sb.WriteByte(b)
	}
	return sb.String(), nil
}

func (t *tokenizer) next() (string, error) {
	if t.has {
		t.has = false
		return t.peeked, nil
	}
	return t.scan(true)
}

// nextOnLine returns the next token on the current line; ok is false once
// the line break is reached. Callers must not mix it with a pending peek
// taken across the break.
func (t *tokenizer) nextOnLine() (tok string, ok bool, err error) {
	if t.has {
		t.has = false
		return t.peeked, true, nil
	}
	tok, err = t.scan(false)
	if err == errEndOfLine || err == io.EOF {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return tok, true, nil
}

func (t *tokenizer) peek() (string, error) {
	if !t.has {
		tok, err := t.next()
		if err != nil {
			return "", err
		}
		t.peeked = tok
		t.has = true
	}
	return t.peeked, nil
}

func (t *tokenizer) expect(keyword string) error {
	tok, err := t.next()
	if err != nil {
		return mesh.ErrInvalidFormat(fmt.Sprintf("expected %s, got end of input", keyword))
	}
	if !strings.EqualFold(tok, keyword) {
		return mesh.ErrInvalidFormat(fmt.Sprintf("expected %s, got %q", keyword, tok))
	}
	return nil
}

func (t *tokenizer) int(what string) (int, error) {
	tok, err := t.next()
	if err != nil {
		return 0, mesh.ErrInvalidFormat(fmt.Sprintf("missing %s", what))
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, mesh.ErrConversion(fmt.Sprintf("%s %q", what, tok), err)
	}
	return n, nil
}

func (t *tokenizer) float(what string) (float32, error) {
	tok, err := t.next()
	if err != nil {
		return 0, mesh.ErrInvalidFormat(fmt.Sprintf("missing %s", what))
	}
	f, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, mesh.ErrConversion(fmt.Sprintf("%s %q", what, tok), err)
	}
	return float32(f), nil
}

func (t *tokenizer) floats(n int, what string) ([]float32, error) {
	out := make([]float32, n)
	for i := range out {
		f, err := t.float(what)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func (t *tokenizer) uints(n int, what string) ([]uint32, error) {
	out := make([]uint32, n)
	for i := range out {
		v, err := t.int(what)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, mesh.ErrInvalidFormat(fmt.Sprintf("negative %s %d", what, v))
		}
		out[i] = uint32(v)
	}
	return out, nil
}

type parser struct {
	tk *tokenizer
}

// parsePiece reads dataset sections until end of input. attrTarget tracks
// whether data arrays land in PointData or CellData, with the element count
// announced by the most recent POINT_DATA/CELL_DATA header.
func (p *parser) parsePiece(kind DatasetKind) (*Piece, error) {
	piece := &Piece{}
	var attrs *[]DataArray
	attrCount := 0

	for {
		tok, err := p.tk.next()
		if err == io.EOF {
			return piece, nil
		}
		if err != nil {
			return nil, err
		}

		switch strings.ToUpper(tok) {
		case "POINTS":
			n, err := p.tk.int("point count")
			if err != nil {
				return nil, err
			}
			if _, err := p.tk.next(); err != nil { // data type
				return nil, mesh.ErrInvalidFormat("missing point data type")
			}
			piece.Points, err = p.tk.floats(3*n, "point coordinate")
			if err != nil {
				return nil, err
			}

		case "CELLS":
			arr, err := p.parseCellArray("cell")
			if err != nil {
				return nil, err
			}
			piece.Cells.CellArray = *arr

		case "CELL_TYPES":
			n, err := p.tk.int("cell type count")
			if err != nil {
				return nil, err
			}
			piece.Cells.Types = make([]CellType, n)
			for i := 0; i < n; i++ {
				c, err := p.tk.int("cell type")
				if err != nil {
					return nil, err
				}
				piece.Cells.Types[i] = CellType(c)
			}

		case "VERTICES":
			arr, err := p.parseCellArray("vertex")
			if err != nil {
				return nil, err
			}
			piece.Verts = arr

		case "LINES":
			arr, err := p.parseCellArray("line")
			if err != nil {
				return nil, err
			}
			piece.Lines = arr

		case "POLYGONS":
			arr, err := p.parseCellArray("polygon")
			if err != nil {
				return nil, err
			}
			piece.Polys = arr

		case "TRIANGLE_STRIPS":
			arr, err := p.parseCellArray("triangle strip")
			if err != nil {
				return nil, err
			}
			piece.Strips = arr

		case "POINT_DATA":
			attrCount, err = p.tk.int("point data count")
			if err != nil {
				return nil, err
			}
			attrs = &piece.PointData

		case "CELL_DATA":
			attrCount, err = p.tk.int("cell data count")
			if err != nil {
				return nil, err
			}
			attrs = &piece.CellData

		case "SCALARS", "COLOR_SCALARS", "VECTORS", "NORMALS",
			"TEXTURE_COORDINATES", "TENSORS", "LOOKUP_TABLE", "FIELD":
			if attrs == nil {
				return nil, mesh.ErrInvalidFormat(fmt.Sprintf("%s outside POINT_DATA/CELL_DATA", strings.ToUpper(tok)))
			}
			arr, err := p.parseDataArray(strings.ToUpper(tok), attrCount)
			if err != nil {
				return nil, err
			}
			*attrs = append(*attrs, *arr)

		case "METADATA":
			if err := p.skipMetadata(); err != nil {
				return nil, err
			}

		default:
			return nil, mesh.ErrInvalidFormat(fmt.Sprintf("unexpected keyword %q", tok))
		}
	}
}

// parseCellArray reads "n size" followed by size integers in the legacy
// count-prefixed layout.
func (p *parser) parseCellArray(what string) (*CellArray, error) {
	n, err := p.tk.int(what + " count")
	if err != nil {
		return nil, err
	}
	size, err := p.tk.int(what + " buffer size")
	if err != nil {
		return nil, err
	}
	data, err := p.tk.uints(size, what+" index")
	if err != nil {
		return nil, err
	}
	return &CellArray{NumCells: n, Data: data}, nil
}

func (p *parser) parseDataArray(section string, count int) (*DataArray, error) {
	switch section {
	case "SCALARS":
		// The component count is optional and integer data can look just
		// like it, so the header's own line break bounds the fields.
		name, ok, err := p.tk.nextOnLine()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, mesh.ErrInvalidFormat("missing scalar name")
		}
		if _, ok, err := p.tk.nextOnLine(); err != nil { // data type
			return nil, err
		} else if !ok {
			return nil, mesh.ErrInvalidFormat("missing scalar data type")
		}
		numComp := 1
		if tok, ok, err := p.tk.nextOnLine(); err != nil {
			return nil, err
		} else if ok {
			n, convErr := strconv.Atoi(tok)
			if convErr != nil {
				return nil, mesh.ErrConversion(fmt.Sprintf("scalar component count %q", tok), convErr)
			}
			if n < 1 || n > 4 {
				return nil, mesh.ErrInvalidFormat(fmt.Sprintf("scalar component count %d out of range", n))
			}
			numComp = n
			if extra, ok, err := p.tk.nextOnLine(); err != nil {
				return nil, err
			} else if ok {
				return nil, mesh.ErrInvalidFormat(fmt.Sprintf("trailing token %q on SCALARS line", extra))
			}
		}
		tableName := "default"
		if tok, err := p.tk.peek(); err == nil && strings.EqualFold(tok, "LOOKUP_TABLE") {
			p.tk.next()
			tableName, err = p.tk.next()
			if err != nil {
				return nil, mesh.ErrInvalidFormat("missing lookup table name")
			}
		}
		data, err := p.tk.floats(count*numComp, "scalar value")
		if err != nil {
			return nil, err
		}
		return &DataArray{Name: name, Elem: ElemScalars, NumComp: numComp, TableName: tableName, Data: data}, nil

	case "COLOR_SCALARS":
		name, err := p.tk.next()
		if err != nil {
			return nil, mesh.ErrInvalidFormat("missing color scalar name")
		}
		nValues, err := p.tk.int("color scalar component count")
		if err != nil {
			return nil, err
		}
		data, err := p.tk.floats(count*nValues, "color scalar value")
		if err != nil {
			return nil, err
		}
		return &DataArray{Name: name, Elem: ElemColorScalars, NumComp: nValues, Data: data}, nil

	case "VECTORS", "NORMALS":
		elem := ElemVectors
		if section == "NORMALS" {
			elem = ElemNormals
		}
		name, err := p.tk.next()
		if err != nil {
			return nil, mesh.ErrInvalidFormat("missing vector name")
		}
		if _, err := p.tk.next(); err != nil { // data type
			return nil, mesh.ErrInvalidFormat("missing vector data type")
		}
		data, err := p.tk.floats(count*3, "vector component")
		if err != nil {
			return nil, err
		}
		return &DataArray{Name: name, Elem: elem, NumComp: 3, Data: data}, nil

	case "TEXTURE_COORDINATES":
		name, err := p.tk.next()
		if err != nil {
			return nil, mesh.ErrInvalidFormat("missing texture coordinate name")
		}
		dim, err := p.tk.int("texture coordinate dimension")
		if err != nil {
			return nil, err
		}
		if _, err := p.tk.next(); err != nil { // data type
			return nil, mesh.ErrInvalidFormat("missing texture coordinate data type")
		}
		data, err := p.tk.floats(count*dim, "texture coordinate")
		if err != nil {
			return nil, err
		}
		return &DataArray{Name: name, Elem: ElemTCoords, NumComp: dim, Data: data}, nil

	case "TENSORS":
		name, err := p.tk.next()
		if err != nil {
			return nil, mesh.ErrInvalidFormat("missing tensor name")
		}
		if _, err := p.tk.next(); err != nil { // data type
			return nil, mesh.ErrInvalidFormat("missing tensor data type")
		}
		data, err := p.tk.floats(count*9, "tensor component")
		if err != nil {
			return nil, err
		}
		return &DataArray{Name: name, Elem: ElemTensors, NumComp: 9, Data: data}, nil

	case "LOOKUP_TABLE":
		name, err := p.tk.next()
		if err != nil {
			return nil, mesh.ErrInvalidFormat("missing lookup table name")
		}
		size, err := p.tk.int("lookup table size")
		if err != nil {
			return nil, err
		}
		data, err := p.tk.floats(size*4, "lookup table entry")
		if err != nil {
			return nil, err
		}
		return &DataArray{Name: name, Elem: ElemLookupTable, NumComp: 4, TableName: name, Data: data}, nil

	case "FIELD":
		name, err := p.tk.next()
		if err != nil {
			return nil, mesh.ErrInvalidFormat("missing field name")
		}
		numArrays, err := p.tk.int("field array count")
		if err != nil {
			return nil, err
		}
		// Field arrays have free-form shape; keep the section so extraction
		// can report it skipped, but discard the per-array payloads.
		for i := 0; i < numArrays; i++ {
			arrName, err := p.tk.next()
			if err != nil {
				return nil, mesh.ErrInvalidFormat("missing field array name")
			}
			numComp, err := p.tk.int("field array component count")
			if err != nil {
				return nil, err
			}
			numTuples, err := p.tk.int("field array tuple count")
			if err != nil {
				return nil, err
			}
			if _, err := p.tk.next(); err != nil { // data type
				return nil, mesh.ErrInvalidFormat("missing field array data type")
			}
			if _, err := p.tk.floats(numComp*numTuples, "field value"); err != nil {
				return nil, err
			}
			slog.Debug("discarding field array", "field", name, "array", arrName)
		}
		return &DataArray{Name: name, Elem: ElemField}, nil

	default:
		return nil, mesh.ErrInvalidFormat(fmt.Sprintf("unexpected attribute section %q", section))
	}
}

// skipMetadata consumes an empty METADATA block (INFORMATION 0), which is
// what current writers attach to POINTS sections. Non-empty blocks carry a
// free-form grammar this reader does not model.
func (p *parser) skipMetadata() error {
	if err := p.tk.expect("INFORMATION"); err != nil {
		return err
	}
	n, err := p.tk.int("metadata entry count")
	if err != nil {
		return err
	}
	if n != 0 {
		return mesh.ErrUnsupported("non-empty METADATA block")
	}
	return nil
}
