package loader

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidHeader is returned when the PLY header is missing, malformed or unterminated.
	ErrInvalidHeader = errors.New("invalid ply header")

	// ErrUnsupportedFormat is returned for PLY encodings, elements or properties the
	// loader does not read. Only binary little-endian triangle meshes with float x/y/z
	// vertices are supported.
	ErrUnsupportedFormat = errors.New("unsupported ply format")

	// ErrTruncated is returned when the body ends before the declared element counts.
	ErrTruncated = errors.New("truncated ply body")

	// ErrInvalidFace is returned for faces that are not triangles or that reference a
	// vertex outside the vertex list.
	ErrInvalidFace = errors.New("invalid ply face")
)

const (
	plyMagic        = "ply"
	plyEndHeader    = "end_header"
	plyFormatBinary = "binary_little_endian"

	// maxHeaderLines bounds the header scan so a text file without end_header fails fast.
	maxHeaderLines = 4096
)

// plyHeader holds the element counts and properties declared by a PLY header.
type plyHeader struct {
	format          string
	version         string
	vertexCount     int
	faceCount       int
	vertexProps     []string
	faceListCount   string
	faceListIndex   string
	comments        []string
	hasVertexHeader bool
	hasFaceHeader   bool
}

// parsePLYHeader reads header lines up to and including end_header.
//
// Parameters:
//   - br: reader positioned at the start of the file
//
// Returns:
//   - plyHeader: the parsed header
//   - error: wrapping ErrInvalidHeader or ErrUnsupportedFormat
func parsePLYHeader(br *bufio.Reader) (plyHeader, error) {
	var h plyHeader
	current := ""

	for lineNo := 0; ; lineNo++ {
		if lineNo >= maxHeaderLines {
			return h, fmt.Errorf("%w: no %s within %d lines", ErrInvalidHeader, plyEndHeader, maxHeaderLines)
		}
		raw, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || raw == "") {
			if err == io.EOF {
				return h, fmt.Errorf("%w: unexpected end of file before %s", ErrInvalidHeader, plyEndHeader)
			}
			return h, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
		}
		line := strings.TrimSpace(raw)

		if lineNo == 0 {
			if line != plyMagic {
				return h, fmt.Errorf("%w: missing %q magic", ErrInvalidHeader, plyMagic)
			}
			continue
		}
		if line == plyEndHeader {
			break
		}
		if err == io.EOF {
			return h, fmt.Errorf("%w: unexpected end of file before %s", ErrInvalidHeader, plyEndHeader)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "comment", "obj_info":
			h.comments = append(h.comments, strings.TrimSpace(strings.TrimPrefix(line, fields[0])))

		case "format":
			if len(fields) != 3 {
				return h, fmt.Errorf("%w: line %d: malformed format line %q", ErrInvalidHeader, lineNo+1, line)
			}
			h.format, h.version = fields[1], fields[2]
			if h.format != plyFormatBinary {
				return h, fmt.Errorf("%w: format %q", ErrUnsupportedFormat, h.format)
			}

		case "element":
			if len(fields) != 3 {
				return h, fmt.Errorf("%w: line %d: malformed element line %q", ErrInvalidHeader, lineNo+1, line)
			}
			n, convErr := strconv.Atoi(fields[2])
			if convErr != nil || n < 0 {
				return h, fmt.Errorf("%w: line %d: bad element count %q", ErrInvalidHeader, lineNo+1, fields[2])
			}
			switch fields[1] {
			case "vertex":
				h.vertexCount, h.hasVertexHeader = n, true
			case "face":
				h.faceCount, h.hasFaceHeader = n, true
			default:
				return h, fmt.Errorf("%w: element %q", ErrUnsupportedFormat, fields[1])
			}
			current = fields[1]

		case "property":
			if err := h.addProperty(current, fields); err != nil {
				return h, fmt.Errorf("line %d: %w", lineNo+1, err)
			}

		default:
			return h, fmt.Errorf("%w: line %d: unknown keyword %q", ErrInvalidHeader, lineNo+1, fields[0])
		}
	}

	return h, h.validate()
}

// addProperty records a property line for the element declared before it.
func (h *plyHeader) addProperty(element string, fields []string) error {
	switch element {
	case "vertex":
		if len(fields) != 3 {
			return fmt.Errorf("%w: malformed vertex property %q", ErrInvalidHeader, strings.Join(fields, " "))
		}
		if fields[1] != "float" && fields[1] != "float32" {
			return fmt.Errorf("%w: vertex property %s of type %s", ErrUnsupportedFormat, fields[2], fields[1])
		}
		h.vertexProps = append(h.vertexProps, fields[2])
	case "face":
		if len(fields) != 5 || fields[1] != "list" {
			return fmt.Errorf("%w: face property must be a list, got %q", ErrUnsupportedFormat, strings.Join(fields, " "))
		}
		if fields[4] != "vertex_indices" && fields[4] != "vertex_index" {
			return fmt.Errorf("%w: face property %q", ErrUnsupportedFormat, fields[4])
		}
		if fields[2] != "uchar" && fields[2] != "uint8" {
			return fmt.Errorf("%w: face list count type %s", ErrUnsupportedFormat, fields[2])
		}
		switch fields[3] {
		case "int", "int32", "uint", "uint32":
		default:
			return fmt.Errorf("%w: face list index type %s", ErrUnsupportedFormat, fields[3])
		}
		h.faceListCount, h.faceListIndex = fields[2], fields[3]
	default:
		return fmt.Errorf("%w: property before any element", ErrInvalidHeader)
	}
	return nil
}

// validate checks the header describes a layout readVertices and readFaces understand.
func (h *plyHeader) validate() error {
	if h.format == "" {
		return fmt.Errorf("%w: missing format line", ErrInvalidHeader)
	}
	if !h.hasVertexHeader {
		return fmt.Errorf("%w: missing vertex element", ErrInvalidHeader)
	}
	if len(h.vertexProps) != 3 || h.vertexProps[0] != "x" || h.vertexProps[1] != "y" || h.vertexProps[2] != "z" {
		return fmt.Errorf("%w: vertex properties %v, want [x y z]", ErrUnsupportedFormat, h.vertexProps)
	}
	if h.hasFaceHeader && h.faceListIndex == "" {
		return fmt.Errorf("%w: face element without vertex_indices list", ErrInvalidHeader)
	}
	return nil
}

// readPLYVertices reads vertexCount float32 triples and returns them with their mean.
//
// Parameters:
//   - r: reader positioned after end_header
//   - count: the number of vertices to read
//
// Returns:
//   - [][3]float32: the vertices
//   - [3]float32: the mean of the vertices, zero when count is 0
//   - error: wrapping ErrTruncated
func readPLYVertices(r io.Reader, count int) ([][3]float32, [3]float32, error) {
	var center [3]float32
	vertices := make([][3]float32, count)

	const stride = 12
	const batch = 4096
	buf := make([]byte, stride*min(count, batch))
	var sum [3]float64

	for start := 0; start < count; start += batch {
		n := min(batch, count-start)
		chunk := buf[:n*stride]
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, center, fmt.Errorf("%w: vertex %d of %d: %w", ErrTruncated, start, count, err)
		}
		for i := range n {
			o := i * stride
			v := [3]float32{
				math.Float32frombits(binary.LittleEndian.Uint32(chunk[o : o+4])),
				math.Float32frombits(binary.LittleEndian.Uint32(chunk[o+4 : o+8])),
				math.Float32frombits(binary.LittleEndian.Uint32(chunk[o+8 : o+12])),
			}
			vertices[start+i] = v
			sum[0] += float64(v[0])
			sum[1] += float64(v[1])
			sum[2] += float64(v[2])
		}
	}

	if count > 0 {
		for i := range 3 {
			center[i] = float32(sum[i] / float64(count))
		}
	}
	return vertices, center, nil
}

// readPLYFaces reads faceCount index lists. Every face must be a triangle whose indices
// fall inside [0, vertexCount).
//
// Parameters:
//   - r: reader positioned after the vertex list
//   - count: the number of faces to read
//   - vertexCount: the number of vertices the indices refer to
//
// Returns:
//   - [][3]uint32: the triangles
//   - error: wrapping ErrTruncated or ErrInvalidFace
func readPLYFaces(r io.Reader, count, vertexCount int) ([][3]uint32, error) {
	faces := make([][3]uint32, count)
	var rec [13]byte

	for i := range count {
		if _, err := io.ReadFull(r, rec[:1]); err != nil {
			return nil, fmt.Errorf("%w: face %d of %d: %w", ErrTruncated, i, count, err)
		}
		if n := rec[0]; n != 3 {
			return nil, fmt.Errorf("%w: face %d has %d vertices, only triangles are supported", ErrInvalidFace, i, n)
		}
		if _, err := io.ReadFull(r, rec[1:13]); err != nil {
			return nil, fmt.Errorf("%w: face %d of %d: %w", ErrTruncated, i, count, err)
		}
		for k := range 3 {
			idx := int32(binary.LittleEndian.Uint32(rec[1+k*4 : 5+k*4]))
			if idx < 0 || int(idx) >= vertexCount {
				return nil, fmt.Errorf("%w: face %d index %d outside [0, %d)", ErrInvalidFace, i, idx, vertexCount)
			}
			faces[i][k] = uint32(idx)
		}
	}
	return faces, nil
}
