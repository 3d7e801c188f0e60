package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// gmshElementType2_2 maps the first order Gmsh 2.2 element types to our ElementType
var gmshElementType2_2 = map[int]ElementType{
	1: Line,
	2: Triangle,
	3: Quad,
	4: Tet,
	5: Hex,
	6: Prism,
	7: Pyramid,
}

const gmshPoint = 15

var gmshNodeCount = map[int]int{1: 2, 2: 3, 3: 4, 4: 4, 5: 8, 6: 6, 7: 5, gmshPoint: 1}

type gmshElement struct {
	dim      int
	etype    ElementType
	physical int
	nodes    []int // Gmsh node IDs
}

/*
ReadGmsh22 reads an ASCII Gmsh 2.2 file. Elements of the highest dimension become cells with
their physical tag as subdomain, elements one dimension lower carrying a physical tag become
boundary faces of the marker with that tag, named from $PhysicalNames.
*/
func ReadGmsh22(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var (
		scanner   = bufio.NewScanner(file)
		names     = make(map[int]string)
		nodeIndex = make(map[int]int)
		coords    [][]float64
		elements  []gmshElement
		version   string
	)
	// Increase scanner buffer for large files
	const maxScanTokenSize = 1024 * 1024 * 10 // 10MB
	scanner.Buffer(make([]byte, maxScanTokenSize), maxScanTokenSize)

	nextFields := func(section string) ([]string, error) {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected EOF in %s", section)
		}
		return strings.Fields(scanner.Text()), nil
	}
	readCount := func(section string) (n int, err error) {
		var fields []string
		if fields, err = nextFields(section); err != nil {
			return
		}
		if len(fields) != 1 {
			return 0, fmt.Errorf("invalid count line in %s", section)
		}
		if n, err = strconv.Atoi(fields[0]); err != nil {
			return 0, fmt.Errorf("invalid count in %s: %w", section, err)
		}
		return
	}

	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "$MeshFormat":
			fields, err := nextFields("MeshFormat")
			if err != nil {
				return nil, err
			}
			if len(fields) < 3 {
				return nil, fmt.Errorf("invalid MeshFormat line")
			}
			if version = fields[0]; !strings.HasPrefix(version, "2") {
				return nil, fmt.Errorf("unsupported Gmsh version: %s", version)
			}
			if fields[1] != "0" {
				return nil, fmt.Errorf("binary Gmsh files are not supported")
			}

		case "$PhysicalNames":
			n, err := readCount("PhysicalNames")
			if err != nil {
				return nil, err
			}
			for i := 0; i < n; i++ {
				fields, err := nextFields("PhysicalNames")
				if err != nil {
					return nil, err
				}
				if len(fields) < 3 {
					return nil, fmt.Errorf("invalid physical name entry")
				}
				tag, err := strconv.Atoi(fields[1])
				if err != nil {
					return nil, fmt.Errorf("invalid physical tag: %w", err)
				}
				names[tag] = strings.Trim(strings.Join(fields[2:], " "), "\"")
			}

		case "$Nodes":
			n, err := readCount("Nodes")
			if err != nil {
				return nil, err
			}
			for i := 0; i < n; i++ {
				fields, err := nextFields("Nodes")
				if err != nil {
					return nil, err
				}
				if len(fields) < 4 {
					return nil, fmt.Errorf("invalid node entry at line %d", i+1)
				}
				nodeID, err := strconv.Atoi(fields[0])
				if err != nil {
					return nil, fmt.Errorf("invalid node ID: %w", err)
				}
				xyz := make([]float64, 3)
				for j := 0; j < 3; j++ {
					if xyz[j], err = strconv.ParseFloat(fields[j+1], 64); err != nil {
						return nil, fmt.Errorf("invalid coordinate: %w", err)
					}
				}
				nodeIndex[nodeID] = len(coords)
				coords = append(coords, xyz)
			}

		case "$Elements":
			n, err := readCount("Elements")
			if err != nil {
				return nil, err
			}
			for i := 0; i < n; i++ {
				fields, err := nextFields("Elements")
				if err != nil {
					return nil, err
				}
				el, skip, err := parseGmshElement(fields)
				if err != nil {
					return nil, fmt.Errorf("element line %d: %w", i+1, err)
				}
				if !skip {
					elements = append(elements, el)
				}
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	if version == "" {
		return nil, fmt.Errorf("no $MeshFormat section found in %s", filename)
	}

	var dim int
	for _, el := range elements {
		if el.dim > dim {
			dim = el.dim
		}
	}
	if dim == 0 {
		return nil, fmt.Errorf("no cells in %s", filename)
	}
	mesh := NewMesh()
	mesh.Vertices = coords
	toIndex := func(ids []int) ([]int, error) {
		verts := make([]int, len(ids))
		for j, id := range ids {
			v, ok := nodeIndex[id]
			if !ok {
				return nil, fmt.Errorf("node %d never defined", id)
			}
			verts[j] = v
		}
		return verts, nil
	}
	for _, el := range elements {
		verts, err := toIndex(el.nodes)
		if err != nil {
			return nil, err
		}
		switch el.dim {
		case dim:
			mesh.Elements = append(mesh.Elements, verts)
			mesh.ElementTypes = append(mesh.ElementTypes, el.etype)
			mesh.ElementTags = append(mesh.ElementTags, el.physical)
		case dim - 1:
			if el.physical == 0 {
				continue
			}
			if _, ok := mesh.BoundaryTags[el.physical]; !ok {
				name, ok := names[el.physical]
				if !ok {
					name = fmt.Sprintf("physical-%d", el.physical)
				}
				mesh.BoundaryTags[el.physical] = name
			}
			mesh.BoundaryFaces[el.physical] = append(mesh.BoundaryFaces[el.physical], verts)
		}
	}
	mesh.NumElements = len(mesh.Elements)
	mesh.NumVertices = len(mesh.Vertices)
	mesh.BuildConnectivity()
	return mesh, nil
}

// parseGmshElement reads "id type ntags tags... nodes...", higher order types are skipped
func parseGmshElement(fields []string) (el gmshElement, skip bool, err error) {
	if len(fields) < 3 {
		return el, false, fmt.Errorf("invalid element entry")
	}
	var gmshType, numTags int
	if gmshType, err = strconv.Atoi(fields[1]); err != nil {
		return el, false, fmt.Errorf("invalid element type: %w", err)
	}
	if numTags, err = strconv.Atoi(fields[2]); err != nil {
		return el, false, fmt.Errorf("invalid number of tags: %w", err)
	}
	numNodes, ok := gmshNodeCount[gmshType]
	if !ok {
		return el, true, nil
	}
	start := 3 + numTags
	if len(fields) < start+numNodes {
		return el, false, fmt.Errorf("element type %d expects %d nodes, got %d",
			gmshType, numNodes, len(fields)-start)
	}
	if numTags > 0 {
		if el.physical, err = strconv.Atoi(fields[3]); err != nil {
			return el, false, fmt.Errorf("invalid tag: %w", err)
		}
	}
	if gmshType != gmshPoint {
		el.etype = gmshElementType2_2[gmshType]
		el.dim = el.etype.Dimension()
	}
	el.nodes = make([]int, numNodes)
	for j := range el.nodes {
		if el.nodes[j], err = strconv.Atoi(fields[start+j]); err != nil {
			return el, false, fmt.Errorf("invalid node ID: %w", err)
		}
	}
	return
}
