package pointcloud

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jackcrane/pointcloud-to-voxelprint/internal/voxerr"
)

// propType enumerates the numeric property widths the PLY spec allows
// (spec.md §4.1). Unknown type names fall back to ptFloat32.
type propType int

const (
	ptFloat32 propType = iota
	ptFloat64
	ptUint8
	ptInt8
	ptUint16
	ptInt16
	ptUint32
	ptInt32
)

func propTypeFromName(name string) propType {
	switch name {
	case "float", "float32":
		return ptFloat32
	case "double", "float64":
		return ptFloat64
	case "uchar", "uint8":
		return ptUint8
	case "char", "int8":
		return ptInt8
	case "ushort", "uint16":
		return ptUint16
	case "short", "int16":
		return ptInt16
	case "uint", "uint32":
		return ptUint32
	case "int", "int32":
		return ptInt32
	default:
		return ptFloat32
	}
}

func (t propType) width() int {
	switch t {
	case ptFloat32, ptUint32, ptInt32:
		return 4
	case ptFloat64:
		return 8
	case ptUint8, ptInt8:
		return 1
	case ptUint16, ptInt16:
		return 2
	default:
		return 4
	}
}

type property struct {
	name     string
	isList   bool
	countTy  propType // only meaningful when isList
	itemTy   propType
}

type element struct {
	name       string
	count      int
	properties []property
}

type header struct {
	binary   bool // false = ASCII, true = binary little-endian
	elements []element
}

// ParsePLY reads a PLY point cloud (ASCII or binary-little-endian vertex
// stream) from r, per spec.md §4.1.
func ParsePLY(r io.Reader) (Cloud, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	h, err := parseHeader(br)
	if err != nil {
		return Cloud{}, err
	}

	vertexIdx := -1
	for i, e := range h.elements {
		if e.name == "vertex" {
			vertexIdx = i
			break
		}
	}
	if vertexIdx < 0 || h.elements[vertexIdx].count == 0 {
		return Cloud{}, voxerr.New(voxerr.InvalidPLYHeader, "MissingVertexElement")
	}
	vertexEl := h.elements[vertexIdx]

	xi, yi, zi := -1, -1, -1
	ri, gi, bi, ai := -1, -1, -1, -1
	for i, p := range vertexEl.properties {
		switch p.name {
		case "x":
			xi = i
		case "y":
			yi = i
		case "z":
			zi = i
		case "r", "red":
			ri = i
		case "g", "green":
			gi = i
		case "b", "blue":
			bi = i
		case "a", "alpha":
			ai = i
		}
	}
	if xi < 0 || yi < 0 || zi < 0 {
		return Cloud{}, voxerr.New(voxerr.InvalidPLYHeader, "MissingCoordinate")
	}
	hasColor := ri >= 0 && gi >= 0 && bi >= 0

	var rowReader rowSource
	if h.binary {
		rowReader = &binaryRows{r: br}
	} else {
		rowReader = &asciiRows{s: newWordScanner(br)}
	}

	points := make([]Point, 0, vertexEl.count)
	for _, el := range h.elements {
		for row := 0; row < el.count; row++ {
			values := make([]float64, len(el.properties))
			for pi, p := range el.properties {
				if p.isList {
					n, err := rowReader.readScalar(p.countTy)
					if err != nil {
						return Cloud{}, voxerr.Wrap(voxerr.InvalidInputFile, "PLY vertex stream", err)
					}
					if err := rowReader.skipList(p.itemTy, int(n)); err != nil {
						return Cloud{}, voxerr.Wrap(voxerr.InvalidInputFile, "PLY vertex stream", err)
					}
					continue
				}
				v, err := rowReader.readScalar(p.itemTy)
				if err != nil {
					return Cloud{}, voxerr.Wrap(voxerr.InvalidInputFile, "PLY vertex stream", err)
				}
				values[pi] = v
			}

			if el.name != "vertex" {
				continue
			}
			pt := Point{X: values[xi], Y: values[yi], Z: values[zi]}
			if hasColor {
				pt.HasColor = true
				pt.R = normalizeChannel(values[ri])
				pt.G = normalizeChannel(values[gi])
				pt.B = normalizeChannel(values[bi])
				if ai >= 0 {
					pt.A = normalizeChannel(values[ai])
				} else {
					pt.A = 255
				}
			}
			points = append(points, pt)
		}
	}

	return NewCloud(points), nil
}

// normalizeChannel applies spec.md §4.1's color normalization: values in
// [0,1] are treated as normalized and scaled by 255; otherwise the value is
// clamped to [0,255]. Both paths round to the nearest integer.
func normalizeChannel(v float64) uint8 {
	if v >= 0 && v <= 1 {
		v *= 255
	}
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(math.Round(v))
}

func parseHeader(br *bufio.Reader) (header, error) {
	line, err := readLine(br)
	if err != nil || strings.TrimSpace(line) != "ply" {
		return header{}, voxerr.New(voxerr.InvalidPLYHeader, "missing 'ply' magic")
	}

	var h header
	var cur *element
	sawEndHeader := false
	sawFormat := false

	for {
		line, err = readLine(br)
		if err != nil {
			if err == io.EOF {
				break
			}
			return header{}, voxerr.Wrap(voxerr.IOError, "PLY header", err)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "comment", "obj_info":
			continue
		case "format":
			sawFormat = true
			if len(fields) < 2 {
				return header{}, voxerr.New(voxerr.InvalidPLYHeader, "UnsupportedFormat")
			}
			switch fields[1] {
			case "ascii":
				h.binary = false
			case "binary_little_endian":
				h.binary = true
			default:
				return header{}, voxerr.New(voxerr.InvalidPLYHeader, "UnsupportedFormat")
			}
		case "element":
			if len(fields) < 3 {
				return header{}, voxerr.New(voxerr.InvalidPLYHeader, "malformed element line")
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil {
				return header{}, voxerr.New(voxerr.InvalidPLYHeader, "malformed element count")
			}
			h.elements = append(h.elements, element{name: fields[1], count: count})
			cur = &h.elements[len(h.elements)-1]
		case "property":
			if cur == nil || len(fields) < 3 {
				return header{}, voxerr.New(voxerr.InvalidPLYHeader, "property outside element")
			}
			if fields[1] == "list" {
				if len(fields) < 5 {
					return header{}, voxerr.New(voxerr.InvalidPLYHeader, "malformed property list")
				}
				cur.properties = append(cur.properties, property{
					name:    fields[4],
					isList:  true,
					countTy: propTypeFromName(fields[2]),
					itemTy:  propTypeFromName(fields[3]),
				})
			} else {
				cur.properties = append(cur.properties, property{
					name:   fields[2],
					itemTy: propTypeFromName(fields[1]),
				})
			}
		case "end_header":
			sawEndHeader = true
		}
		if sawEndHeader {
			break
		}
	}

	if !sawEndHeader {
		return header{}, voxerr.New(voxerr.InvalidPLYHeader, "HeaderMissingEndMarker")
	}
	if !sawFormat {
		return header{}, voxerr.New(voxerr.InvalidPLYHeader, "UnsupportedFormat")
	}
	return h, nil
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	if line == "" && err == io.EOF {
		return "", io.EOF
	}
	return line, nil
}

// rowSource abstracts reading vertex/face rows from either an ASCII token
// stream or a binary-little-endian byte stream.
type rowSource interface {
	readScalar(t propType) (float64, error)
	skipList(itemTy propType, count int) error
}

type binaryRows struct {
	r *bufio.Reader
}

func (b *binaryRows) readScalar(t propType) (float64, error) {
	buf := make([]byte, t.width())
	if _, err := io.ReadFull(b.r, buf); err != nil {
		return 0, err
	}
	switch t {
	case ptFloat32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(buf))), nil
	case ptFloat64:
		return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
	case ptUint8:
		return float64(buf[0]), nil
	case ptInt8:
		return float64(int8(buf[0])), nil
	case ptUint16:
		return float64(binary.LittleEndian.Uint16(buf)), nil
	case ptInt16:
		return float64(int16(binary.LittleEndian.Uint16(buf))), nil
	case ptUint32:
		return float64(binary.LittleEndian.Uint32(buf)), nil
	case ptInt32:
		return float64(int32(binary.LittleEndian.Uint32(buf))), nil
	default:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(buf))), nil
	}
}

func (b *binaryRows) skipList(itemTy propType, count int) error {
	if count <= 0 {
		return nil
	}
	buf := make([]byte, itemTy.width()*count)
	_, err := io.ReadFull(b.r, buf)
	return err
}

type asciiRows struct {
	s *wordScanner
}

func (a *asciiRows) readScalar(t propType) (float64, error) {
	tok, err := a.s.Next()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(tok, 64)
}

func (a *asciiRows) skipList(itemTy propType, count int) error {
	for i := 0; i < count; i++ {
		if _, err := a.s.Next(); err != nil {
			return err
		}
	}
	return nil
}

// wordScanner tokenizes the remaining stream on whitespace, independent of
// line boundaries (ASCII PLY rows need not be one-per-line).
type wordScanner struct {
	r   *bufio.Reader
	buf []byte
}

func newWordScanner(r *bufio.Reader) *wordScanner {
	return &wordScanner{r: r}
}

func (w *wordScanner) Next() (string, error) {
	w.buf = w.buf[:0]
	// skip leading whitespace
	for {
		c, err := w.r.ReadByte()
		if err != nil {
			return "", err
		}
		if !isSpace(c) {
			w.buf = append(w.buf, c)
			break
		}
	}
	for {
		c, err := w.r.ReadByte()
		if err != nil {
			break
		}
		if isSpace(c) {
			break
		}
		w.buf = append(w.buf, c)
	}
	return string(w.buf), nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
