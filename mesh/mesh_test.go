package mesh

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func checkOutwardNormals(t *testing.T, fvm *FVMesh) {
	t.Helper()
	for k := range fvm.Cells {
		var visited int
		err := fvm.LoopOverCellFaces(k, func(fi *FaceInfo, elemHasInfo bool) error {
			n := fi.Normal
			if !elemHasInfo {
				n = r3.Scale(-1, n)
			}
			assert.Greater(t, r3.Dot(r3.Sub(fi.Centroid, fvm.Cells[k].Centroid), n), 0.,
				"cell %d %s", k, fi)
			visited++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, len(fvm.Cells[k].Faces), visited)
	}
}

func TestCartesianMesh(t *testing.T) {
	t.Run("1D", func(t *testing.T) {
		m, err := NewCartesianMesh(1, []int{2}, []float64{2})
		require.NoError(t, err)
		assert.Equal(t, 2, m.NumElements)
		assert.Equal(t, 3, m.NumFaces)
		assert.Equal(t, 1, m.Dimension())
		fvm, err := NewFVMesh(m)
		require.NoError(t, err)
		assert.Equal(t, 1., fvm.Cells[0].Volume)
		assert.Equal(t, r3.Vec{X: 0.5}, fvm.Cells[0].Centroid)
		left := fvm.BoundaryFaces(TagLeft)
		require.Len(t, left, 1)
		assert.Equal(t, r3.Vec{X: -1}, left[0].Normal)
		assert.Equal(t, 1., left[0].Area)
		assert.Equal(t, r3.Vec{X: -0.5}, left[0].NeighborCentroid)
		for _, fi := range fvm.Faces {
			assert.InDelta(t, 0.5, fi.GC, 1.e-14)
			assert.InDelta(t, 1., fi.DCNMag, 1.e-14)
		}
		checkOutwardNormals(t, fvm)
		assert.Equal(t, []int{TagLeft, TagRight}, fvm.BoundaryIDs())
	})
	t.Run("2D", func(t *testing.T) {
		m, err := NewCartesianMesh(2, []int{3, 2}, []float64{3, 1})
		require.NoError(t, err)
		assert.Equal(t, 6, m.NumElements)
		assert.Equal(t, 17, m.NumFaces)
		fvm, err := NewFVMesh(m)
		require.NoError(t, err)
		var vol float64
		for _, c := range fvm.Cells {
			vol += c.Volume
		}
		assert.InDelta(t, 3., vol, 1.e-14)
		assert.InDelta(t, 0.5, fvm.Cells[0].Centroid.X, 1.e-14)
		assert.InDelta(t, 0.25, fvm.Cells[0].Centroid.Y, 1.e-14)
		for tag, count := range map[int]int{TagLeft: 2, TagRight: 2, TagBottom: 3, TagTop: 3} {
			faces := fvm.BoundaryFaces(tag)
			assert.Len(t, faces, count, fvm.BoundaryNames[tag])
			for _, fi := range faces {
				assert.True(t, fi.IsBoundary())
			}
		}
		for _, fi := range fvm.BoundaryFaces(TagTop) {
			assert.InDelta(t, 1., fi.Normal.Y, 1.e-14)
			assert.InDelta(t, 1., fi.Area, 1.e-14)
		}
		for _, fi := range fvm.Faces {
			assert.InDelta(t, 0.5, fi.GC, 1.e-14)
			if !fi.IsBoundary() {
				assert.Empty(t, fi.BoundaryIDs)
			}
		}
		checkOutwardNormals(t, fvm)
	})
	t.Run("3D", func(t *testing.T) {
		m, err := NewCartesianMesh(3, []int{2, 2, 2}, []float64{1, 1, 1})
		require.NoError(t, err)
		assert.Equal(t, 36, m.NumFaces)
		fvm, err := NewFVMesh(m)
		require.NoError(t, err)
		var vol float64
		for _, c := range fvm.Cells {
			vol += c.Volume
			assert.InDelta(t, 0.125, c.Volume, 1.e-14)
		}
		assert.InDelta(t, 1., vol, 1.e-14)
		c0 := fvm.Cells[0].Centroid
		assert.InDelta(t, 0.25, c0.X, 1.e-14)
		assert.InDelta(t, 0.25, c0.Y, 1.e-14)
		assert.InDelta(t, 0.25, c0.Z, 1.e-14)
		for tag := TagLeft; tag <= TagFront; tag++ {
			assert.Len(t, fvm.BoundaryFaces(tag), 4)
		}
		for _, fi := range fvm.BoundaryFaces(TagFront) {
			assert.InDelta(t, 1., fi.Normal.Z, 1.e-14)
			assert.InDelta(t, 0.25, fi.Area, 1.e-14)
		}
		checkOutwardNormals(t, fvm)
	})
	t.Run("Errors", func(t *testing.T) {
		_, err := NewCartesianMesh(4, []int{1, 1, 1, 1}, []float64{1, 1, 1, 1})
		assert.Error(t, err)
		_, err = NewCartesianMesh(2, []int{1}, []float64{1})
		assert.Error(t, err)
		_, err = NewCartesianMesh(1, []int{0}, []float64{1})
		assert.Error(t, err)
	})
}

func TestCoordSystem(t *testing.T) {
	x := r3.Vec{X: 2, Y: 5}
	assert.Equal(t, 1., XYZ.Factor(x))
	assert.InDelta(t, 4*math.Pi, RZ.Factor(x), 1.e-14)
	assert.InDelta(t, 16*math.Pi, RSpherical.Factor(x), 1.e-14)
	cs, err := NewCoordSystem("rz")
	assert.NoError(t, err)
	assert.Equal(t, RZ, cs)
	_, err = NewCoordSystem("polar")
	assert.Error(t, err)

	m, err := NewCartesianMesh(1, []int{2}, []float64{2})
	require.NoError(t, err)
	fvm, err := NewFVMesh(m)
	require.NoError(t, err)
	assert.Equal(t, XYZ, fvm.CoordSystem(0))
	fvm.SetCoordSystem(0, RZ)
	assert.InDelta(t, 2*math.Pi*0.5, fvm.CoordFactor(0, fvm.Cells[0].Centroid), 1.e-14)
}

func TestReadSU2(t *testing.T) {
	content := `% unit square split into two triangles
NDIME= 2
NELEM= 2
5 0 1 2 0
5 0 2 3 1
NPOIN= 4
0.0 0.0 0
1.0 0.0 1
1.0 1.0 2
0.0 1.0 3
NMARK= 2
MARKER_TAG= wall-lower
MARKER_ELEMS= 2
3 0 1
3 1 2
MARKER_TAG= inlet
MARKER_ELEMS= 2
3 2 3
3 3 0
`
	tmpFile := filepath.Join(t.TempDir(), "square.su2")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))
	m, err := ReadMeshFile(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumElements)
	assert.Equal(t, 5, m.NumFaces)
	assert.Equal(t, map[int]string{0: "wall-lower", 1: "inlet"}, m.BoundaryTags)
	assert.Len(t, m.BoundaryFaces[0], 2)

	fvm, err := NewFVMesh(m)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, fvm.Cells[0].Volume, 1.e-14)
	assert.InDelta(t, 2./3., fvm.Cells[0].Centroid.X, 1.e-14)
	assert.InDelta(t, 1./3., fvm.Cells[0].Centroid.Y, 1.e-14)
	var interior int
	for _, fi := range fvm.Faces {
		if fi.IsBoundary() {
			assert.Len(t, fi.BoundaryIDs, 1)
			continue
		}
		interior++
		assert.InDelta(t, 0.5, fi.GC, 1.e-14)
		assert.InDelta(t, -1/math.Sqrt2, fi.Normal.X, 1.e-14)
		assert.InDelta(t, math.Sqrt2, fi.Area, 1.e-14)
	}
	assert.Equal(t, 1, interior)
	checkOutwardNormals(t, fvm)

	t.Run("Errors", func(t *testing.T) {
		for name, bad := range map[string]string{
			"dimension": "NDIME= 4\n",
			"missing":   "NPOIN= 0\n",
			"element":   "NDIME= 2\nNELEM= 1\n7 0 1 2\n",
			"truncated": "NDIME= 2\nNPOIN= 3\n0 0\n",
		} {
			f := filepath.Join(t.TempDir(), name+".su2")
			require.NoError(t, os.WriteFile(f, []byte(bad), 0644))
			_, err := ReadSU2(f)
			assert.Error(t, err, name)
		}
		_, err := ReadMeshFile("grid.cgns")
		assert.Error(t, err)
	})
}

func TestReadGmsh22(t *testing.T) {
	// Two unit quads side by side, the second order line is skipped
	content := `$MeshFormat
2.2 0 8
$EndMeshFormat
$PhysicalNames
3
1 11 "Inflow-left"
1 12 "Wall"
2 20 "fluid"
$EndPhysicalNames
$Nodes
6
10 0 0 0
11 1 0 0
12 2 0 0
13 0 1 0
14 1 1 0
15 2 1 0
$EndNodes
$Elements
7
1 15 2 0 1 10
2 1 2 11 1 13 10
3 1 2 12 2 10 11
4 1 2 12 2 11 12
5 3 2 20 3 10 11 14 13
6 3 2 20 3 11 12 15 14
7 8 2 12 2 12 15 14
$EndElements
`
	tmpFile := filepath.Join(t.TempDir(), "channel.msh")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))
	m, err := ReadMeshFile(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Dimension())
	assert.Equal(t, 2, m.NumElements)
	assert.Equal(t, 7, m.NumFaces)
	assert.Equal(t, []int{20, 20}, m.ElementTags)
	assert.Equal(t, map[int]string{11: "Inflow-left", 12: "Wall"}, m.BoundaryTags)
	assert.Len(t, m.BoundaryFaces[12], 2)

	fvm, err := NewFVMesh(m)
	require.NoError(t, err)
	assert.Equal(t, []int{11, 12}, fvm.BoundaryIDs())
	assert.InDelta(t, 1, fvm.Cells[1].Volume, 1.e-14)
	assert.InDelta(t, 1.5, fvm.Cells[1].Centroid.X, 1.e-14)
	checkOutwardNormals(t, fvm)

	t.Run("Errors", func(t *testing.T) {
		for name, bad := range map[string]string{
			"version": "$MeshFormat\n4.1 0 8\n$EndMeshFormat\n",
			"binary":  "$MeshFormat\n2.2 1 8\n$EndMeshFormat\n",
			"empty":   "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n",
			"node":    "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n$Nodes\n1\n1 0 0 0\n$EndNodes\n$Elements\n1\n1 2 0 1 2 3\n$EndElements\n",
			"short":   "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n$Elements\n1\n1 3 0 1 2\n$EndElements\n",
			"format":  "$Nodes\n0\n$EndNodes\n",
		} {
			f := filepath.Join(t.TempDir(), name+".msh")
			require.NoError(t, os.WriteFile(f, []byte(bad), 0644))
			_, err := ReadGmsh22(f)
			assert.Error(t, err, name)
		}
	})
}
