package fv

import (
	"errors"
	"testing"

	"github.com/notargets/gofvns/ad"
	"github.com/notargets/gofvns/mesh"
	"github.com/notargets/gofvns/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func newCartesian(t *testing.T, dim int, n []int, lengths []float64) *mesh.FVMesh {
	t.Helper()
	m, err := mesh.NewCartesianMesh(dim, n, lengths)
	require.NoError(t, err)
	fvm, err := mesh.NewFVMesh(m)
	require.NoError(t, err)
	return fvm
}

func allTags(dim int) (tags []int) {
	for tag := mesh.TagLeft; tag <= 2*dim; tag++ {
		tags = append(tags, tag)
	}
	return
}

func TestInterpCoeffs(t *testing.T) {
	fi := &mesh.FaceInfo{Elem: 0, Neighbor: 1, GC: 0.3, Normal: r3.Vec{X: 1}}
	{ // Geometric weights follow the elem side
		c1, c2 := InterpCoeffs(Average, fi, true, r3.Vec{})
		assert.Equal(t, [2]float64{0.3, 0.7}, [2]float64{c1, c2})
		c1, c2 = InterpCoeffs(Average, fi, false, r3.Vec{})
		assert.Equal(t, [2]float64{0.7, 0.3}, [2]float64{c1, c2})
		c1, c2 = InterpCoeffs(RhieChow, fi, true, r3.Vec{})
		assert.Equal(t, [2]float64{0.3, 0.7}, [2]float64{c1, c2})
	}
	{ // Upwind picks the side the flow leaves
		c1, c2 := InterpCoeffs(Upwind, fi, true, r3.Vec{X: 2})
		assert.Equal(t, [2]float64{1, 0}, [2]float64{c1, c2})
		c1, c2 = InterpCoeffs(Upwind, fi, false, r3.Vec{X: 2})
		assert.Equal(t, [2]float64{0, 1}, [2]float64{c1, c2})
		c1, c2 = InterpCoeffs(Upwind, fi, true, r3.Vec{X: -2})
		assert.Equal(t, [2]float64{0, 1}, [2]float64{c1, c2})
		c1, c2 = InterpCoeffs(Upwind, fi, false, r3.Vec{X: -2})
		assert.Equal(t, [2]float64{1, 0}, [2]float64{c1, c2})
		c1, c2 = InterpCoeffs(Upwind, fi, true, r3.Vec{Y: 5})
		assert.Equal(t, [2]float64{0, 1}, [2]float64{c1, c2})
	}
	{
		v := Interpolate(Upwind, fi, true, ad.Variable(4, 0), ad.Variable(8, 1), r3.Vec{X: 1})
		assert.Equal(t, 4., v.Value)
		assert.Equal(t, 1., v.Derivative(0))
		assert.Equal(t, 0., v.Derivative(1))
		lv := LinearInterpolate(fi, true, ad.ConstVec(r3.Vec{X: 10}), ad.ConstVec(r3.Vec{X: 20}))
		assert.InDelta(t, 17., lv[0].Value, 1.e-14)
	}
	{
		m, err := NewInterpMethod(" RC ")
		assert.NoError(t, err)
		assert.Equal(t, RhieChow, m)
		_, err = NewInterpMethod("quick")
		assert.Error(t, err)
		assert.Panics(t, func() { InterpCoeffs(InterpMethod(9), fi, true, r3.Vec{}) })
	}
}

func TestGreenGaussLinearField(t *testing.T) {
	for _, dim := range []int{1, 2, 3} {
		var (
			n       = []int{3, 4, 2}
			lengths = []float64{1.5, 2, 1}
			fvm     = newCartesian(t, dim, n, lengths)
			grad    = r3.Vec{X: 2, Y: -3, Z: 0.5}
			field   = func(x r3.Vec) float64 { return 1 + r3.Dot(grad, x) }
			bcs     = NewWarehouse()
			sys     = NewSystem(fvm, bcs)
			p       = sys.AddVariable("p", 0)
		)
		if dim < 3 {
			grad.Z = 0
		}
		if dim < 2 {
			grad.Y = 0
		}
		bcs.Add(&BoundaryCondition{Type: types.BC_Dirichlet, Variable: "p", Boundaries: allTags(dim), Value: field})
		for k, c := range fvm.Cells {
			p.SetValue(k, field(c.Centroid))
		}
		sys.UpdateGradients()
		for k := range fvm.Cells {
			g := p.CellGradient(k).Values()
			assert.InDelta(t, grad.X, g.X, 1.e-12, "dim %d cell %d", dim, k)
			assert.InDelta(t, grad.Y, g.Y, 1.e-12, "dim %d cell %d", dim, k)
			assert.InDelta(t, grad.Z, g.Z, 1.e-12, "dim %d cell %d", dim, k)
		}
		for _, fi := range fvm.Faces {
			corrected := p.FaceGradient(fi).Values()
			uncorrected := p.UncorrectedFaceGradient(fi).Values()
			assert.InDelta(t, 0., r3.Norm(r3.Sub(corrected, uncorrected)), 1.e-12, "dim %d %s", dim, fi)
			assert.InDelta(t, field(fi.Centroid), p.FaceValue(fi).Value, 1.e-12)
			assert.InDelta(t, r3.Dot(grad, fi.Normal), p.GradDotNormal(fi).Value, 1.e-12)
		}
	}
}

func TestGreenGaussExtrapolated(t *testing.T) {
	// Nothing imposed on any boundary
	for _, dim := range []int{1, 2, 3} {
		var (
			fvm   = newCartesian(t, dim, []int{3, 4, 2}, []float64{1.5, 2, 1})
			grad  = r3.Vec{X: 2, Y: -3, Z: 0.5}
			sys   = NewSystem(fvm, NewWarehouse())
			p     = sys.AddVariable("p", 0)
			field = func(x r3.Vec) float64 { return 1 + r3.Dot(grad, x) }
		)
		if dim < 3 {
			grad.Z = 0
		}
		if dim < 2 {
			grad.Y = 0
		}
		for k, c := range fvm.Cells {
			p.SetValue(k, field(c.Centroid))
		}
		sys.UpdateGradients()
		for k := range fvm.Cells {
			g := p.CellGradient(k).Values()
			assert.InDeltaf(t, 0., r3.Norm(r3.Sub(grad, g)), 1.e-12, "dim %d cell %d", dim, k)
		}
		for _, fi := range fvm.Faces {
			corrected := p.FaceGradient(fi).Values()
			uncorrected := p.UncorrectedFaceGradient(fi).Values()
			assert.InDelta(t, 0., r3.Norm(r3.Sub(corrected, uncorrected)), 1.e-12, "dim %d %s", dim, fi)
		}
	}
	{ // A single cell between unconstrained faces keeps the zero gradient sum
		var (
			fvm = newCartesian(t, 1, []int{1}, []float64{1})
			p   = NewSystem(fvm, NewWarehouse()).AddVariable("p", 3)
		)
		g := p.CellGradient(0)
		assert.Equal(t, 0., g[0].Value)
	}
}

func TestVariable(t *testing.T) {
	var (
		fvm = newCartesian(t, 1, []int{2}, []float64{2})
		bcs = NewWarehouse()
		sys = NewSystem(fvm, bcs)
		u   = sys.AddVariable("u", 1)
		p   = sys.AddVariable("p", 0)
	)
	bcs.Add(NewBC(types.BC_InletVelocity, "u", 3, mesh.TagLeft))
	u.SetValues([]float64{1, 2})
	assert.Equal(t, u, sys.AddVariable("u", 5))
	assert.Equal(t, 4, sys.NDoF())
	assert.Equal(t, 3, p.DoF(1))
	assert.Equal(t, 1., u.ElemValue(0).Derivative(0))

	left := fvm.BoundaryFaces(mesh.TagLeft)[0]
	right := fvm.BoundaryFaces(mesh.TagRight)[0]
	{ // Imposed boundary
		assert.True(t, u.HasDirichlet(left))
		assert.Equal(t, 3., u.BoundaryFaceValue(left).Value)
		assert.Equal(t, 0, u.BoundaryFaceValue(left).NNZ())
		ghost := u.NeighborValue(left, 0)
		assert.Equal(t, 5., ghost.Value)
		assert.Equal(t, -1., ghost.Derivative(0))
		assert.Equal(t, 4., u.GradDotNormal(left).Value)
	}
	{ // Zero gradient boundary
		assert.False(t, u.HasDirichlet(right))
		assert.Equal(t, 2., u.BoundaryFaceValue(right).Value)
		assert.Equal(t, 1., u.NeighborValue(right, 1).Derivative(1))
		assert.Equal(t, 0., u.GradDotNormal(right).Value)
	}
	{ // Interior
		var interior *mesh.FaceInfo
		for _, fi := range fvm.Faces {
			if !fi.IsBoundary() {
				interior = fi
			}
		}
		require.NotNil(t, interior)
		assert.Equal(t, 2., u.NeighborValue(interior, 0).Value)
		assert.Equal(t, 1., u.NeighborValue(interior, 1).Value)
		assert.Equal(t, 1.5, u.FaceValue(interior).Value)
		d := u.GradDotNormal(interior)
		assert.Equal(t, 1., d.Value)
		assert.Equal(t, -1., d.Derivative(0))
	}
	{ // Stored gradients follow value changes
		sys.UpdateGradients()
		assert.InDelta(t, -1.5, u.CellGradient(0)[0].Value, 1.e-14)
		// Right face extrapolated with the cell gradient
		g := u.CellGradient(1)[0]
		assert.InDelta(t, 1., g.Value, 1.e-14)
		assert.InDelta(t, -1., g.Derivative(0), 1.e-14)
		assert.InDelta(t, 1., g.Derivative(1), 1.e-14)
		u.SetValue(1, 4)
		assert.Equal(t, 4., u.Value(1))
		assert.InDelta(t, 3., u.CellGradient(1)[0].Value, 1.e-14)
		u.SetValue(1, 2)
	}
	{
		_, err := sys.Variable("w")
		assert.True(t, errors.Is(err, ErrUnknownVariable))
		_, err = sys.Property("mu")
		assert.True(t, errors.Is(err, ErrUnknownProperty))
		sys.AddProperty("rho", Constant(2))
		sys.AddProperty("mu", CellValues{1, 3})
		assert.Equal(t, []string{"mu", "rho"}, sys.PropertyNames())
		_, err = sys.Property("nu")
		assert.Contains(t, err.Error(), "[mu rho]")
	}
}

func TestFunctors(t *testing.T) {
	var (
		fvm = newCartesian(t, 1, []int{2}, []float64{2})
		sys = NewSystem(fvm, nil)
		u   = sys.AddVariable("u", 0)
		rho = CellValues{2, 4}
	)
	u.SetValues([]float64{3, 5})
	rhoU := Product{A: rho, B: VariableFunctor{u}}
	{
		e := rhoU.Elem(1)
		assert.Equal(t, 20., e.Value)
		assert.Equal(t, 4., e.Derivative(1))
	}
	var interior *mesh.FaceInfo
	for _, fi := range fvm.Faces {
		if !fi.IsBoundary() {
			interior = fi
		}
	}
	{
		f := rhoU.Face(interior)
		assert.InDelta(t, 3.*4., f.Value, 1.e-14)
		assert.Equal(t, 3., rho.Face(interior).Value)
	}
	{
		right := fvm.BoundaryFaces(mesh.TagRight)[0]
		assert.Equal(t, 20., SideValue(rhoU, right, false).Value)
		assert.Equal(t, 20., SideValue(rhoU, right, true).Value)
		assert.Equal(t, 6., SideValue(rhoU, interior, true).Value)
		assert.Equal(t, 2., Constant(2).Face(right).Value)
	}
}

func TestWarehouse(t *testing.T) {
	bcs := NewWarehouse()
	bcs.Add(
		NewBC(types.BC_NoSlipWall, "u", 0, 1, 2),
		NewBC(types.BC_Dirichlet, "u", 7, 2),
		NewBC(types.BC_Symmetry, "v", 0, 3),
		NewBC(types.BC_OutletPressure, "p", 0, 4),
	)
	assert.Len(t, bcs.All(), 4)
	assert.Len(t, bcs.Query(2, types.BCFLAG.IsDirichlet), 2)
	assert.Len(t, bcs.Query(4, types.BCFLAG.IsFlow), 1)
	assert.True(t, bcs.HasTag(3))
	assert.False(t, bcs.HasTag(5))

	fi := &mesh.FaceInfo{Elem: 0, Neighbor: -1, BoundaryIDs: []int{3, 2}}
	bc, ok := bcs.DirichletBC("u", fi)
	require.True(t, ok)
	assert.Equal(t, types.BC_NoSlipWall, bc.Type)
	assert.Equal(t, "u_NoSlipWall", bc.Name)
	assert.Len(t, bcs.FluxBCs("v", fi), 1)
	assert.Empty(t, bcs.FluxBCs("u", fi))
	_, ok = bcs.DirichletBC("v", fi)
	assert.False(t, ok)
	assert.Equal(t, 0., (&BoundaryCondition{}).ValueAt(r3.Vec{}))
}
