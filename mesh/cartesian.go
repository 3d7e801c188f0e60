package mesh

import "fmt"

// Marker tags written by NewCartesianMesh, two per direction
const (
	TagLeft = iota + 1
	TagRight
	TagBottom
	TagTop
	TagBack
	TagFront
)

var cartesianMarkers = [...]string{"", "left", "right", "bottom", "top", "back", "front"}

/*
NewCartesianMesh generates a structured mesh of the box [0,lengths[0]] x ... with n[d] cells in
each of the dim directions: lines in 1D, quads in 2D, hexes in 3D. Boundary markers are tagged
TagLeft/TagRight (x), TagBottom/TagTop (y) and TagBack/TagFront (z).
*/
func NewCartesianMesh(dim int, n []int, lengths []float64) (*Mesh, error) {
	if dim < 1 || dim > 3 {
		return nil, fmt.Errorf("cartesian mesh dimension must be 1, 2 or 3, got %d", dim)
	}
	if len(n) < dim || len(lengths) < dim {
		return nil, fmt.Errorf("need %d cell counts and lengths, got %v and %v", dim, n, lengths)
	}
	var (
		nc = [3]int{1, 1, 1}
		h  [3]float64
	)
	for d := 0; d < dim; d++ {
		if n[d] < 1 || lengths[d] <= 0 {
			return nil, fmt.Errorf("direction %d: need positive cell count and length, got %d and %g",
				d, n[d], lengths[d])
		}
		nc[d] = n[d]
		h[d] = lengths[d] / float64(n[d])
	}
	var (
		nv  = [3]int{nc[0] + 1, 1, 1}
		m   = NewMesh()
		vid = func(i, j, k int) int { return i + nv[0]*(j+nv[1]*k) }
	)
	for d := 1; d < dim; d++ {
		nv[d] = nc[d] + 1
	}
	for k := 0; k < nv[2]; k++ {
		for j := 0; j < nv[1]; j++ {
			for i := 0; i < nv[0]; i++ {
				m.Vertices = append(m.Vertices,
					[]float64{float64(i) * h[0], float64(j) * h[1], float64(k) * h[2]})
			}
		}
	}
	for k := 0; k < nc[2]; k++ {
		for j := 0; j < nc[1]; j++ {
			for i := 0; i < nc[0]; i++ {
				var (
					verts []int
					et    ElementType
				)
				switch dim {
				case 1:
					et, verts = Line, []int{vid(i, 0, 0), vid(i+1, 0, 0)}
				case 2:
					et, verts = Quad, []int{vid(i, j, 0), vid(i+1, j, 0), vid(i+1, j+1, 0), vid(i, j+1, 0)}
				case 3:
					et, verts = Hex, []int{
						vid(i, j, k), vid(i+1, j, k), vid(i+1, j+1, k), vid(i, j+1, k),
						vid(i, j, k+1), vid(i+1, j, k+1), vid(i+1, j+1, k+1), vid(i, j+1, k+1),
					}
				}
				m.Elements = append(m.Elements, verts)
				m.ElementTypes = append(m.ElementTypes, et)
				m.ElementTags = append(m.ElementTags, 0)
			}
		}
	}
	for tag := TagLeft; tag <= 2*dim; tag++ {
		m.BoundaryTags[tag] = cartesianMarkers[tag]
	}
	switch dim {
	case 1:
		m.BoundaryFaces[TagLeft] = [][]int{{vid(0, 0, 0)}}
		m.BoundaryFaces[TagRight] = [][]int{{vid(nc[0], 0, 0)}}
	case 2:
		for j := 0; j < nc[1]; j++ {
			m.BoundaryFaces[TagLeft] = append(m.BoundaryFaces[TagLeft], []int{vid(0, j, 0), vid(0, j+1, 0)})
			m.BoundaryFaces[TagRight] = append(m.BoundaryFaces[TagRight], []int{vid(nc[0], j, 0), vid(nc[0], j+1, 0)})
		}
		for i := 0; i < nc[0]; i++ {
			m.BoundaryFaces[TagBottom] = append(m.BoundaryFaces[TagBottom], []int{vid(i, 0, 0), vid(i+1, 0, 0)})
			m.BoundaryFaces[TagTop] = append(m.BoundaryFaces[TagTop], []int{vid(i, nc[1], 0), vid(i+1, nc[1], 0)})
		}
	case 3:
		for k := 0; k < nc[2]; k++ {
			for j := 0; j < nc[1]; j++ {
				for _, side := range []struct{ tag, i int }{{TagLeft, 0}, {TagRight, nc[0]}} {
					m.BoundaryFaces[side.tag] = append(m.BoundaryFaces[side.tag],
						[]int{vid(side.i, j, k), vid(side.i, j+1, k), vid(side.i, j+1, k+1), vid(side.i, j, k+1)})
				}
			}
		}
		for k := 0; k < nc[2]; k++ {
			for i := 0; i < nc[0]; i++ {
				for _, side := range []struct{ tag, j int }{{TagBottom, 0}, {TagTop, nc[1]}} {
					m.BoundaryFaces[side.tag] = append(m.BoundaryFaces[side.tag],
						[]int{vid(i, side.j, k), vid(i+1, side.j, k), vid(i+1, side.j, k+1), vid(i, side.j, k+1)})
				}
			}
		}
		for j := 0; j < nc[1]; j++ {
			for i := 0; i < nc[0]; i++ {
				for _, side := range []struct{ tag, k int }{{TagBack, 0}, {TagFront, nc[2]}} {
					m.BoundaryFaces[side.tag] = append(m.BoundaryFaces[side.tag],
						[]int{vid(i, j, side.k), vid(i+1, j, side.k), vid(i+1, j+1, side.k), vid(i, j+1, side.k)})
				}
			}
		}
	}
	m.NumElements = len(m.Elements)
	m.NumVertices = len(m.Vertices)
	m.BuildConnectivity()
	return m, nil
}
