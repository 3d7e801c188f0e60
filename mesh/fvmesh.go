package mesh

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

type Cell struct {
	ID        int
	Centroid  r3.Vec
	Volume    float64 // Planar volume, without the coordinate factor
	Subdomain int
	Faces     []int // Global face IDs in local face order
}

/*
FaceInfo carries the geometry of one face as seen by the finite volume discretization. The
normal points from Elem into Neighbor, or out of the domain on a boundary face. Boundary faces
have Neighbor == -1 and a ghost neighbor centroid mirrored through the face centroid.
*/
type FaceInfo struct {
	ID                int
	Elem, Neighbor    int
	Normal            r3.Vec
	Area              float64
	Centroid          r3.Vec
	ElemCentroid      r3.Vec
	NeighborCentroid  r3.Vec
	ElemVolume        float64
	NeighborVolume    float64
	ElemSubdomain     int
	NeighborSubdomain int
	BoundaryIDs       []int
	GC                float64 // Geometric weight of the elem side
	DCN               r3.Vec  // NeighborCentroid - ElemCentroid
	DCNMag            float64
	ECN               r3.Vec // Unit vector along DCN
}

func (fi *FaceInfo) IsBoundary() bool { return fi.Neighbor < 0 }

// HasBoundaryID reports whether the face carries the marker tag
func (fi *FaceInfo) HasBoundaryID(tag int) bool {
	for _, t := range fi.BoundaryIDs {
		if t == tag {
			return true
		}
	}
	return false
}

func (fi *FaceInfo) String() string {
	return fmt.Sprintf("face %d (elem %d, neighbor %d, centroid %v)", fi.ID, fi.Elem, fi.Neighbor, fi.Centroid)
}

type FVMesh struct {
	Dim           int
	Cells         []Cell
	Faces         []*FaceInfo
	BoundaryNames map[int]string
	boundaryIDs   []int
	coordSystems  map[int]CoordSystem
}

// NewFVMesh computes the finite volume geometry of a mesh with connectivity built
func NewFVMesh(m *Mesh) (fvm *FVMesh, err error) {
	if m.NumElements == 0 {
		return nil, fmt.Errorf("mesh has no elements")
	}
	if len(m.EToF) != m.NumElements {
		m.BuildConnectivity()
	}
	fvm = &FVMesh{
		Dim:           m.Dimension(),
		Cells:         make([]Cell, m.NumElements),
		Faces:         make([]*FaceInfo, m.NumFaces),
		BoundaryNames: make(map[int]string),
		coordSystems:  make(map[int]CoordSystem),
	}
	for k := 0; k < m.NumElements; k++ {
		c := &fvm.Cells[k]
		c.ID = k
		c.Subdomain = m.ElementTags[k]
		c.Faces = m.EToF[k]
		if c.Centroid, c.Volume, err = m.cellGeometry(k); err != nil {
			return nil, err
		}
	}
	for f := range m.Faces {
		face := &m.Faces[f]
		fi := &FaceInfo{
			ID:       f,
			Elem:     face.Element,
			Neighbor: m.EToE[face.Element][face.LocalID],
		}
		elem := &fvm.Cells[fi.Elem]
		fi.ElemCentroid, fi.ElemVolume, fi.ElemSubdomain = elem.Centroid, elem.Volume, elem.Subdomain
		if fi.Centroid, fi.Normal, fi.Area, err = m.faceGeometry(face.Nodes, elem.Centroid); err != nil {
			return nil, fmt.Errorf("face %d: %w", f, err)
		}
		if fi.IsBoundary() {
			fi.NeighborCentroid = r3.Sub(r3.Scale(2, fi.Centroid), fi.ElemCentroid)
			fi.NeighborVolume, fi.NeighborSubdomain = fi.ElemVolume, fi.ElemSubdomain
		} else {
			nbr := &fvm.Cells[fi.Neighbor]
			fi.NeighborCentroid, fi.NeighborVolume, fi.NeighborSubdomain = nbr.Centroid, nbr.Volume, nbr.Subdomain
		}
		fi.DCN = r3.Sub(fi.NeighborCentroid, fi.ElemCentroid)
		fi.DCNMag = r3.Norm(fi.DCN)
		denom := r3.Dot(fi.DCN, fi.Normal)
		if fi.DCNMag == 0 || denom == 0 {
			return nil, fmt.Errorf("face %d: degenerate centroid spacing", f)
		}
		fi.ECN = r3.Scale(1/fi.DCNMag, fi.DCN)
		fi.GC = r3.Dot(r3.Sub(fi.NeighborCentroid, fi.Centroid), fi.Normal) / denom
		fvm.Faces[f] = fi
	}
	tags := make([]int, 0, len(m.BoundaryFaces))
	for tag := range m.BoundaryFaces {
		tags = append(tags, tag)
	}
	sort.Ints(tags)
	for _, tag := range tags {
		fvm.BoundaryNames[tag] = m.BoundaryTags[tag]
		for _, verts := range m.BoundaryFaces[tag] {
			key, _ := faceKey(verts)
			f, ok := m.FaceMap[key]
			if !ok {
				return nil, fmt.Errorf("marker %d (%s): face %v is not a mesh face", tag, m.BoundaryTags[tag], verts)
			}
			fi := fvm.Faces[f]
			if !fi.HasBoundaryID(tag) {
				fi.BoundaryIDs = append(fi.BoundaryIDs, tag)
			}
		}
		fvm.boundaryIDs = append(fvm.boundaryIDs, tag)
	}
	return
}

func (fvm *FVMesh) NumCells() int { return len(fvm.Cells) }

// BoundaryIDs lists every marker tag in ascending order
func (fvm *FVMesh) BoundaryIDs() []int { return fvm.boundaryIDs }

// SetCoordSystem must be called before the mesh is shared between workers
func (fvm *FVMesh) SetCoordSystem(subdomain int, cs CoordSystem) {
	fvm.coordSystems[subdomain] = cs
}

func (fvm *FVMesh) CoordSystem(subdomain int) CoordSystem {
	return fvm.coordSystems[subdomain]
}

// CoordFactor evaluates the coordinate factor of the cell's subdomain at point x
func (fvm *FVMesh) CoordFactor(cell int, x r3.Vec) float64 {
	return fvm.CoordSystem(fvm.Cells[cell].Subdomain).Factor(x)
}

/*
LoopOverCellFaces calls action once for every face bounding cell. elemHasInfo is true when the
cell is the face's Elem, in which case the face normal already points out of the cell. Iteration
stops at the first error.
*/
func (fvm *FVMesh) LoopOverCellFaces(cell int, action func(fi *FaceInfo, elemHasInfo bool) error) (err error) {
	for _, f := range fvm.Cells[cell].Faces {
		fi := fvm.Faces[f]
		switch cell {
		case fi.Elem:
			err = action(fi, true)
		case fi.Neighbor:
			err = action(fi, false)
		default:
			panic(fmt.Sprintf("cell %d does not bound %s", cell, fi))
		}
		if err != nil {
			return
		}
	}
	return
}

// BoundaryFaces returns all faces carrying the marker tag
func (fvm *FVMesh) BoundaryFaces(tag int) (faces []*FaceInfo) {
	for _, fi := range fvm.Faces {
		if fi.HasBoundaryID(tag) {
			faces = append(faces, fi)
		}
	}
	return
}

func (m *Mesh) vertex(v int) r3.Vec {
	x := m.Vertices[v]
	return r3.Vec{X: x[0], Y: x[1], Z: x[2]}
}

func (m *Mesh) cellGeometry(k int) (centroid r3.Vec, volume float64, err error) {
	verts := m.Elements[k]
	switch m.ElementTypes[k] {
	case Line:
		a, b := m.vertex(verts[0]), m.vertex(verts[1])
		centroid = r3.Scale(0.5, r3.Add(a, b))
		volume = r3.Norm(r3.Sub(b, a))
	case Triangle, Quad:
		// Polygon in the xy plane
		var area2, cx, cy float64
		for i := range verts {
			a, b := m.vertex(verts[i]), m.vertex(verts[(i+1)%len(verts)])
			cross := a.X*b.Y - b.X*a.Y
			area2 += cross
			cx += (a.X + b.X) * cross
			cy += (a.Y + b.Y) * cross
		}
		if area2 == 0 {
			return centroid, 0, fmt.Errorf("element %d has zero area", k)
		}
		centroid = r3.Vec{X: cx / (3 * area2), Y: cy / (3 * area2)}
		volume = math.Abs(area2) / 2
	default:
		// Decompose into pyramids from the vertex average to each face
		var c0 r3.Vec
		for _, v := range verts {
			c0 = r3.Add(c0, m.vertex(v))
		}
		c0 = r3.Scale(1/float64(len(verts)), c0)
		var moment r3.Vec
		for _, nodes := range GetElementFaces(m.ElementTypes[k], verts) {
			fc, normal, area, ferr := m.faceGeometry(nodes, c0)
			if ferr != nil {
				return centroid, 0, fmt.Errorf("element %d: %w", k, ferr)
			}
			arm := r3.Sub(fc, c0)
			vp := r3.Dot(arm, normal) * area / 3
			volume += vp
			moment = r3.Add(moment, r3.Scale(vp, r3.Add(c0, r3.Scale(0.75, arm))))
		}
		if volume <= 0 {
			return centroid, 0, fmt.Errorf("element %d has non-positive volume", k)
		}
		centroid = r3.Scale(1/volume, moment)
	}
	if volume == 0 {
		err = fmt.Errorf("element %d has zero volume", k)
	}
	return
}

// faceGeometry returns the centroid, the unit normal pointing away from inside and the area
func (m *Mesh) faceGeometry(nodes []int, inside r3.Vec) (centroid, normal r3.Vec, area float64, err error) {
	switch len(nodes) {
	case 1:
		centroid = m.vertex(nodes[0])
		normal = r3.Sub(centroid, inside)
		area = 1
	case 2:
		a, b := m.vertex(nodes[0]), m.vertex(nodes[1])
		centroid = r3.Scale(0.5, r3.Add(a, b))
		d := r3.Sub(b, a)
		normal = r3.Vec{X: d.Y, Y: -d.X}
		area = r3.Norm(d)
	default:
		// Triangle fan from the first node
		var (
			p0      = m.vertex(nodes[0])
			sv, mc  r3.Vec
			fanArea float64
		)
		for i := 1; i+1 < len(nodes); i++ {
			p1, p2 := m.vertex(nodes[i]), m.vertex(nodes[i+1])
			s := r3.Scale(0.5, r3.Cross(r3.Sub(p1, p0), r3.Sub(p2, p0)))
			sv = r3.Add(sv, s)
			ta := r3.Norm(s)
			fanArea += ta
			mc = r3.Add(mc, r3.Scale(ta/3, r3.Add(p0, r3.Add(p1, p2))))
		}
		area = r3.Norm(sv)
		if area == 0 {
			return centroid, normal, 0, fmt.Errorf("face %v has zero area", nodes)
		}
		centroid = r3.Scale(1/fanArea, mc)
		normal = sv
	}
	nmag := r3.Norm(normal)
	if nmag == 0 || area == 0 {
		return centroid, normal, 0, fmt.Errorf("face %v is degenerate", nodes)
	}
	normal = r3.Scale(1/nmag, normal)
	if r3.Dot(r3.Sub(centroid, inside), normal) < 0 {
		normal = r3.Scale(-1, normal)
	}
	return
}
