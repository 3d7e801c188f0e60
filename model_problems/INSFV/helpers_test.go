package INSFV

import (
	"testing"

	"github.com/notargets/gofvns/fv"
	"github.com/notargets/gofvns/mesh"
	"github.com/notargets/gofvns/types"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

var velocityNames = []string{"u", "v", "w"}

type fixture struct {
	fvm   *mesh.FVMesh
	sys   *fv.System
	bcs   *fv.Warehouse
	cache *CoefficientCache
}

func newFixture(t *testing.T, dim int, n []int, lengths []float64, mu, rho float64, nWorkers int) *fixture {
	t.Helper()
	m, err := mesh.NewCartesianMesh(dim, n, lengths)
	require.NoError(t, err)
	return newMeshFixture(t, m, mu, rho, nWorkers)
}

func newMeshFixture(t *testing.T, m *mesh.Mesh, mu, rho float64, nWorkers int) *fixture {
	t.Helper()
	fvm, err := mesh.NewFVMesh(m)
	require.NoError(t, err)
	dim := fvm.Dim
	f := &fixture{
		fvm:   fvm,
		bcs:   fv.NewWarehouse(),
		cache: NewCoefficientCache(nWorkers),
	}
	f.sys = fv.NewSystem(fvm, f.bcs)
	for _, name := range velocityNames[:dim] {
		f.sys.AddVariable(name, 0)
	}
	f.sys.AddVariable("pressure", 0)
	f.sys.AddProperty("mu", fv.Constant(mu))
	f.sys.AddProperty("rho", fv.Constant(rho))
	return f
}

// velocityBC applies the same condition type to every velocity component
func (f *fixture) velocityBC(flag types.BCFLAG, value r3.Vec, tags ...int) {
	vals := [3]float64{value.X, value.Y, value.Z}
	for i, name := range velocityNames[:f.fvm.Dim] {
		f.bcs.Add(fv.NewBC(flag, name, vals[i], tags...))
	}
}

func (f *fixture) variable(t *testing.T, name string) *fv.Variable {
	t.Helper()
	v, err := f.sys.Variable(name)
	require.NoError(t, err)
	return v
}

// setField evaluates fn at every cell centroid
func (f *fixture) setField(t *testing.T, name string, fn func(x r3.Vec) float64) {
	t.Helper()
	v := f.variable(t, name)
	for k, c := range f.fvm.Cells {
		v.SetValue(k, fn(c.Centroid))
	}
}

func (f *fixture) kernel(t *testing.T, component string, modify ...func(p *Params)) *MomentumPredictor {
	t.Helper()
	p := NewParams(component)
	for _, mod := range modify {
		mod(&p)
	}
	mp, err := NewMomentumPredictor(f.sys, f.cache, p)
	require.NoError(t, err)
	return mp
}

func (f *fixture) kernels(t *testing.T) (kernels []*MomentumPredictor) {
	t.Helper()
	for _, c := range componentNames[:f.fvm.Dim] {
		kernels = append(kernels, f.kernel(t, c))
	}
	return
}

func interiorFaces(fvm *mesh.FVMesh) (faces []*mesh.FaceInfo) {
	for _, fi := range fvm.Faces {
		if !fi.IsBoundary() {
			faces = append(faces, fi)
		}
	}
	return
}
