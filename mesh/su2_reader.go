package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadSU2 reads an SU2 native format file
func ReadSU2(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mesh := NewMesh()
	scanner := bufio.NewScanner(file)

	var ndime int

	nextLine := func() (fields []string, err error) {
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if strings.HasPrefix(line, "%") || line == "" {
				continue
			}
			return strings.Fields(line), nil
		}
		return nil, fmt.Errorf("unexpected end of file %s", filename)
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments
		if strings.HasPrefix(line, "%") || line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "NDIME="):
			if ndime, err = parseCount(line, "NDIME="); err != nil {
				return nil, err
			}
			if ndime != 2 && ndime != 3 {
				return nil, fmt.Errorf("unsupported dimension NDIME=%d", ndime)
			}

		case strings.HasPrefix(line, "NELEM="):
			if ndime == 0 {
				return nil, fmt.Errorf("NDIME must precede NELEM in %s", filename)
			}
			var nelem int
			if nelem, err = parseCount(line, "NELEM="); err != nil {
				return nil, err
			}

			mesh.Elements = make([][]int, 0, nelem)
			mesh.ElementTypes = make([]ElementType, 0, nelem)
			mesh.ElementTags = make([]int, 0, nelem)

			for i := 0; i < nelem; i++ {
				var fields []string
				if fields, err = nextLine(); err != nil {
					return nil, err
				}
				etype, verts, err := parseSU2Element(fields)
				if err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
				if etype.Dimension() != ndime {
					return nil, fmt.Errorf("element %d: %s element in a %dD mesh", i, etype, ndime)
				}
				mesh.Elements = append(mesh.Elements, verts)
				mesh.ElementTypes = append(mesh.ElementTypes, etype)
				mesh.ElementTags = append(mesh.ElementTags, 0) // Default subdomain
			}

		case strings.HasPrefix(line, "NPOIN="):
			if ndime == 0 {
				return nil, fmt.Errorf("NDIME must precede NPOIN in %s", filename)
			}
			var npoin int
			if npoin, err = parseCount(line, "NPOIN="); err != nil {
				return nil, err
			}

			mesh.Vertices = make([][]float64, npoin)

			for i := 0; i < npoin; i++ {
				var fields []string
				if fields, err = nextLine(); err != nil {
					return nil, err
				}
				if len(fields) < ndime {
					return nil, fmt.Errorf("point %d: expected %d coordinates, got %q", i, ndime, fields)
				}
				coords := make([]float64, 3)
				for j := 0; j < ndime; j++ {
					if coords[j], err = strconv.ParseFloat(fields[j], 64); err != nil {
						return nil, fmt.Errorf("point %d: %w", i, err)
					}
				}
				// Point ID is the optional trailing field
				ptID := i
				if len(fields) > ndime {
					if ptID, err = strconv.Atoi(fields[len(fields)-1]); err != nil {
						return nil, fmt.Errorf("point %d: %w", i, err)
					}
				}
				if ptID < 0 || ptID >= npoin {
					return nil, fmt.Errorf("point %d: index %d out of range", i, ptID)
				}
				mesh.Vertices[ptID] = coords
			}

		case strings.HasPrefix(line, "NMARK="):
			var nmark int
			if nmark, err = parseCount(line, "NMARK="); err != nil {
				return nil, err
			}

			for i := 0; i < nmark; i++ {
				var fields []string
				if fields, err = nextLine(); err != nil {
					return nil, err
				}
				markerLine := strings.Join(fields, " ")
				if !strings.HasPrefix(markerLine, "MARKER_TAG=") {
					return nil, fmt.Errorf("marker %d: expected MARKER_TAG, got %q", i, markerLine)
				}
				tagName := strings.TrimSpace(strings.TrimPrefix(markerLine, "MARKER_TAG="))

				if fields, err = nextLine(); err != nil {
					return nil, err
				}
				var nMarkerElems int
				if nMarkerElems, err = parseCount(strings.Join(fields, " "), "MARKER_ELEMS="); err != nil {
					return nil, fmt.Errorf("marker %s: %w", tagName, err)
				}

				mesh.BoundaryTags[i] = tagName
				faces := make([][]int, 0, nMarkerElems)
				for j := 0; j < nMarkerElems; j++ {
					if fields, err = nextLine(); err != nil {
						return nil, err
					}
					etype, verts, err := parseSU2Element(fields)
					if err != nil {
						return nil, fmt.Errorf("marker %s element %d: %w", tagName, j, err)
					}
					if etype.Dimension() != ndime-1 {
						return nil, fmt.Errorf("marker %s element %d: %s is not a boundary of a %dD mesh",
							tagName, j, etype, ndime)
					}
					faces = append(faces, verts)
				}
				mesh.BoundaryFaces[i] = faces
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}
	if ndime == 0 {
		return nil, fmt.Errorf("missing NDIME in %s", filename)
	}

	mesh.NumElements = len(mesh.Elements)
	mesh.NumVertices = len(mesh.Vertices)
	for i, v := range mesh.Vertices {
		if v == nil {
			return nil, fmt.Errorf("point %d never defined", i)
		}
	}
	mesh.BuildConnectivity()

	return mesh, nil
}

func parseCount(line, prefix string) (n int, err error) {
	fields := strings.Fields(strings.TrimPrefix(line, prefix))
	if len(fields) == 0 {
		return 0, fmt.Errorf("missing count after %s", prefix)
	}
	if n, err = strconv.Atoi(fields[0]); err != nil {
		return 0, fmt.Errorf("bad count after %s: %w", prefix, err)
	}
	return
}

// parseSU2Element maps an SU2 element line "type v0 v1 ... [id]" to our types
func parseSU2Element(fields []string) (etype ElementType, verts []int, err error) {
	if len(fields) < 2 {
		return 0, nil, fmt.Errorf("short element line %q", fields)
	}
	var su2Type int
	if su2Type, err = strconv.Atoi(fields[0]); err != nil {
		return
	}
	var numNodes int
	switch su2Type {
	case 3:
		etype, numNodes = Line, 2
	case 5:
		etype, numNodes = Triangle, 3
	case 9:
		etype, numNodes = Quad, 4
	case 10:
		etype, numNodes = Tet, 4
	case 12:
		etype, numNodes = Hex, 8
	case 13:
		etype, numNodes = Prism, 6
	case 14:
		etype, numNodes = Pyramid, 5
	default:
		return 0, nil, fmt.Errorf("unknown SU2 element type %d", su2Type)
	}
	if len(fields) < numNodes+1 {
		return 0, nil, fmt.Errorf("%s needs %d nodes, got %q", etype, numNodes, fields)
	}
	verts = make([]int, numNodes)
	for j := 0; j < numNodes; j++ {
		if verts[j], err = strconv.Atoi(fields[1+j]); err != nil {
			return
		}
	}
	return
}
