package mesh

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// ElementType represents different element types
type ElementType int

const (
	Line ElementType = iota
	Triangle
	Quad
	Tet
	Hex
	Prism
	Pyramid
)

func (e ElementType) String() string {
	return [...]string{"Line", "Triangle", "Quad", "Tet", "Hex", "Prism", "Pyramid"}[e]
}

// Dimension is the topological dimension of the element
func (e ElementType) Dimension() int {
	switch e {
	case Line:
		return 1
	case Triangle, Quad:
		return 2
	default:
		return 3
	}
}

// Face represents a face of an element
type Face struct {
	Vertices []int // Sorted vertex indices
	Nodes    []int // Vertex indices in the winding order of the first element
	Element  int   // Parent element
	LocalID  int   // Local face ID within element
}

// Mesh represents a complete unstructured mesh with all connectivity
type Mesh struct {
	// Geometry
	Vertices [][]float64 // Vertex coordinates [nvertices][3]

	// Element data
	Elements     [][]int       // Element to vertex connectivity [nelems][nverts_per_elem]
	ElementTypes []ElementType // Element type for each element
	ElementTags  []int         // Subdomain for each element

	// Connectivity (built during initialization)
	EToE [][]int // Element to element connectivity [nelems][nfaces_per_elem]
	EToF [][]int // Element to face connectivity [nelems][nfaces_per_elem]

	// Face data
	Faces         []Face          // All unique faces in mesh
	FaceMap       map[string]int  // Map from sorted vertex string to face ID
	BoundaryTags  map[int]string  // Boundary marker names
	BoundaryFaces map[int][][]int // Face vertex lists per boundary marker

	// Mesh statistics
	NumElements int
	NumVertices int
	NumFaces    int
}

func NewMesh() *Mesh {
	return &Mesh{
		FaceMap:       make(map[string]int),
		BoundaryTags:  make(map[int]string),
		BoundaryFaces: make(map[int][][]int),
	}
}

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".su2":
		return ReadSU2(filename)
	case ".msh":
		return ReadGmsh22(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

// Dimension is the largest element dimension present
func (m *Mesh) Dimension() (dim int) {
	for _, et := range m.ElementTypes {
		if d := et.Dimension(); d > dim {
			dim = d
		}
	}
	return
}

func faceKey(faceVerts []int) (key string, sorted []int) {
	sorted = make([]int, len(faceVerts))
	copy(sorted, faceVerts)
	sort.Ints(sorted)
	key = fmt.Sprintf("%v", sorted)
	return
}

// BuildConnectivity builds element-to-element and face connectivity
func (m *Mesh) BuildConnectivity() {
	m.EToE = make([][]int, m.NumElements)
	m.EToF = make([][]int, m.NumElements)
	m.Faces = m.Faces[:0]
	m.FaceMap = make(map[string]int)

	for elemID := 0; elemID < m.NumElements; elemID++ {
		faceVertices := GetElementFaces(m.ElementTypes[elemID], m.Elements[elemID])

		m.EToE[elemID] = make([]int, len(faceVertices))
		m.EToF[elemID] = make([]int, len(faceVertices))

		// Initialize to -1 (boundary)
		for i := range m.EToE[elemID] {
			m.EToE[elemID][i] = -1
			m.EToF[elemID][i] = -1
		}

		for localFaceID, faceVerts := range faceVertices {
			key, sorted := faceKey(faceVerts)

			if faceID, exists := m.FaceMap[key]; exists {
				// Face already exists - this is an interior face
				face := &m.Faces[faceID]
				neighborElem := face.Element
				neighborLocalID := face.LocalID

				m.EToE[elemID][localFaceID] = neighborElem
				m.EToE[neighborElem][neighborLocalID] = elemID

				m.EToF[elemID][localFaceID] = faceID
			} else {
				face := Face{
					Vertices: sorted,
					Nodes:    faceVerts,
					Element:  elemID,
					LocalID:  localFaceID,
				}

				faceID := len(m.Faces)
				m.Faces = append(m.Faces, face)
				m.FaceMap[key] = faceID
				m.EToF[elemID][localFaceID] = faceID
			}
		}
	}

	m.NumFaces = len(m.Faces)
}

// GetElementFaces returns the face vertices for each element type, wound so that the
// right hand normal of a 3D face points out of the element
func GetElementFaces(elemType ElementType, vertices []int) [][]int {
	switch elemType {
	case Line:
		return [][]int{
			{vertices[0]},
			{vertices[1]},
		}
	case Triangle:
		return [][]int{
			{vertices[0], vertices[1]},
			{vertices[1], vertices[2]},
			{vertices[2], vertices[0]},
		}
	case Quad:
		return [][]int{
			{vertices[0], vertices[1]},
			{vertices[1], vertices[2]},
			{vertices[2], vertices[3]},
			{vertices[3], vertices[0]},
		}
	case Tet:
		return [][]int{
			{vertices[0], vertices[2], vertices[1]}, // Face 0
			{vertices[0], vertices[1], vertices[3]}, // Face 1
			{vertices[1], vertices[2], vertices[3]}, // Face 2
			{vertices[0], vertices[3], vertices[2]}, // Face 3
		}
	case Hex:
		return [][]int{
			{vertices[0], vertices[3], vertices[2], vertices[1]}, // Face 0 (bottom)
			{vertices[4], vertices[5], vertices[6], vertices[7]}, // Face 1 (top)
			{vertices[0], vertices[1], vertices[5], vertices[4]}, // Face 2
			{vertices[1], vertices[2], vertices[6], vertices[5]}, // Face 3
			{vertices[2], vertices[3], vertices[7], vertices[6]}, // Face 4
			{vertices[3], vertices[0], vertices[4], vertices[7]}, // Face 5
		}
	case Prism:
		return [][]int{
			{vertices[0], vertices[2], vertices[1]},              // Face 0 (bottom tri)
			{vertices[3], vertices[4], vertices[5]},              // Face 1 (top tri)
			{vertices[0], vertices[1], vertices[4], vertices[3]}, // Face 2 (quad)
			{vertices[1], vertices[2], vertices[5], vertices[4]}, // Face 3 (quad)
			{vertices[2], vertices[0], vertices[3], vertices[5]}, // Face 4 (quad)
		}
	case Pyramid:
		return [][]int{
			{vertices[0], vertices[3], vertices[2], vertices[1]}, // Face 0 (base quad)
			{vertices[0], vertices[1], vertices[4]},              // Face 1 (tri)
			{vertices[1], vertices[2], vertices[4]},              // Face 2 (tri)
			{vertices[2], vertices[3], vertices[4]},              // Face 3 (tri)
			{vertices[3], vertices[0], vertices[4]},              // Face 4 (tri)
		}
	default:
		return [][]int{}
	}
}

// LogStatistics reports mesh statistics
func (m *Mesh) LogStatistics(log logrus.FieldLogger) {
	typeCounts := make(map[string]int)
	for _, t := range m.ElementTypes {
		typeCounts[t.String()]++
	}
	boundaryFaces := 0
	for i := 0; i < m.NumElements; i++ {
		for _, neighbor := range m.EToE[i] {
			if neighbor < 0 {
				boundaryFaces++
			}
		}
	}
	fields := logrus.Fields{
		"vertices":       m.NumVertices,
		"elements":       m.NumElements,
		"faces":          m.NumFaces,
		"boundary_faces": boundaryFaces,
		"markers":        len(m.BoundaryTags),
	}
	for name, count := range typeCounts {
		fields[name] = count
	}
	log.WithFields(fields).Info("mesh statistics")
}
