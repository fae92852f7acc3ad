package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/philipparndt/goslice/pkg/geometry"
)

const (
	binaryHeaderSize = 80
	binaryFacetSize  = 50
)

// ErrNoFacets is returned when a payload parses but contains no triangles
var ErrNoFacets = errors.New("stl: no facets found")

// Parse reads an STL file and returns a Model
func Parse(filename string) (*Model, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return ParseBytes(data)
}

// ParseString parses an STL payload held in a string, as delivered by a
// text transport
func ParseString(payload string) (*Model, error) {
	return ParseBytes([]byte(payload))
}

// ParseReader parses an STL payload from a reader
func ParseReader(r io.Reader) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL payload: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses an STL payload, detecting ASCII or binary encoding
func ParseBytes(data []byte) (*Model, error) {
	var (
		model *Model
		err   error
	)
	if isASCII(data) {
		model, err = parseASCII(bytes.NewReader(data))
	} else {
		model, err = parseBinary(data)
	}
	if err != nil {
		return nil, err
	}
	if model.TriangleCount() == 0 {
		return nil, ErrNoFacets
	}
	return model, nil
}

// isASCII reports whether data looks like an ASCII STL. Binary exporters
// frequently start their header with "solid" too, so a payload whose size
// matches the binary layout exactly is treated as binary.
func isASCII(data []byte) bool {
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return false
	}
	if len(data) >= binaryHeaderSize+4 {
		count := binary.LittleEndian.Uint32(data[binaryHeaderSize:])
		if uint64(len(data)) == binaryHeaderSize+4+uint64(count)*binaryFacetSize {
			return false
		}
	}
	return true
}

// parseASCII parses an ASCII STL payload
func parseASCII(reader io.Reader) (*Model, error) {
	scanner := bufio.NewScanner(reader)
	model := NewModel("")

	var currentNormal geometry.Vector3
	var vertices []geometry.Vector3
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				model.Name = strings.Join(fields[1:], " ")
			}

		case "facet":
			if len(fields) < 5 || fields[1] != "normal" {
				return nil, fmt.Errorf("line %d: malformed facet", lineNo)
			}
			n, err := parseTriple(fields[2:5])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			currentNormal = n

		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: malformed vertex", lineNo)
			}
			v, err := parseTriple(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			vertices = append(vertices, v)

		case "endloop":
			if len(vertices) != 3 {
				return nil, fmt.Errorf("line %d: loop has %d vertices, expected 3", lineNo, len(vertices))
			}

		case "endfacet":
			if len(vertices) == 3 {
				model.AddTriangle(geometry.NewTriangle(currentNormal, vertices[0], vertices[1], vertices[2]))
			}
			vertices = vertices[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASCII STL: %w", err)
	}

	return model, nil
}

func parseTriple(fields []string) (geometry.Vector3, error) {
	var c [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geometry.Vector3{}, fmt.Errorf("invalid coordinate %q", f)
		}
		c[i] = v
	}
	return geometry.NewVector3(c[0], c[1], c[2]), nil
}

// parseBinary parses a binary STL payload
func parseBinary(data []byte) (*Model, error) {
	if len(data) < binaryHeaderSize+4 {
		return nil, fmt.Errorf("binary STL too short: %d bytes", len(data))
	}

	model := NewModel(string(bytes.TrimRight(data[:binaryHeaderSize], "\x00 ")))

	triangleCount := binary.LittleEndian.Uint32(data[binaryHeaderSize:])
	expected := uint64(binaryHeaderSize) + 4 + uint64(triangleCount)*binaryFacetSize
	if uint64(len(data)) < expected {
		return nil, fmt.Errorf("binary STL truncated: header declares %d facets, payload holds %d bytes", triangleCount, len(data))
	}

	reader := bytes.NewReader(data[binaryHeaderSize+4:])
	for i := uint32(0); i < triangleCount; i++ {
		var facet struct {
			Normal, V1, V2, V3 [3]float32
			Attribute          uint16
		}
		if err := binary.Read(reader, binary.LittleEndian, &facet); err != nil {
			return nil, fmt.Errorf("failed to read triangle %d: %w", i, err)
		}

		model.AddTriangle(geometry.NewTriangle(
			toVector(facet.Normal),
			toVector(facet.V1),
			toVector(facet.V2),
			toVector(facet.V3),
		))
	}

	return model, nil
}

func toVector(c [3]float32) geometry.Vector3 {
	return geometry.NewVector3(float64(c[0]), float64(c[1]), float64(c[2]))
}
