package fv

import (
	"math"

	"github.com/notargets/gofvns/ad"
	"github.com/notargets/gofvns/mesh"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

/*
Variable is a cell centered field. Its cell values are the independent variables of the
system: the value in cell k carries a unit derivative at DoF Number*NumCells + k.

Boundary values come from the first Dirichlet condition on the face, otherwise the field is
extrapolated with zero gradient. Gradients extrapolate those faces to second order.
*/
type Variable struct {
	Name   string
	Number int
	values []float64
	mesh   *mesh.FVMesh
	bcs    *Warehouse
	grads  []ad.Vec
}

func (v *Variable) DoF(cell int) int { return v.Number*v.mesh.NumCells() + cell }

func (v *Variable) Value(cell int) float64 { return v.values[cell] }

// SetValue changes one cell value, stored gradients are dropped
func (v *Variable) SetValue(cell int, value float64) {
	v.values[cell] = value
	v.grads = nil
}

// SetValues replaces the cell values and drops stale gradients
func (v *Variable) SetValues(values []float64) {
	copy(v.values, values)
	v.grads = nil
}

func (v *Variable) ElemValue(cell int) ad.Real {
	return ad.Variable(v.values[cell], v.DoF(cell))
}

func (v *Variable) dirichlet(fi *mesh.FaceInfo) (ad.Real, bool) {
	if v.bcs == nil {
		return ad.Real{}, false
	}
	bc, ok := v.bcs.DirichletBC(v.Name, fi)
	if !ok {
		return ad.Real{}, false
	}
	return ad.Constant(bc.ValueAt(fi.Centroid)), true
}

// HasDirichlet is true when a boundary value is imposed on the face
func (v *Variable) HasDirichlet(fi *mesh.FaceInfo) bool {
	_, ok := v.dirichlet(fi)
	return ok
}

func (v *Variable) BoundaryFaceValue(fi *mesh.FaceInfo) ad.Real {
	if val, ok := v.dirichlet(fi); ok {
		return val
	}
	return v.ElemValue(fi.Elem)
}

/*
NeighborValue is the value across the face from cell. On a boundary face it is the ghost value
that places the boundary value on the face, or the cell's own value when nothing is imposed.
*/
func (v *Variable) NeighborValue(fi *mesh.FaceInfo, cell int) ad.Real {
	other := fi.Neighbor
	if cell == fi.Neighbor {
		other = fi.Elem
	}
	if other >= 0 {
		return v.ElemValue(other)
	}
	elem := v.ElemValue(cell)
	if val, ok := v.dirichlet(fi); ok {
		return val.Scale(2).Sub(elem)
	}
	return elem
}

func (v *Variable) FaceValue(fi *mesh.FaceInfo) ad.Real {
	if fi.IsBoundary() {
		return v.BoundaryFaceValue(fi)
	}
	return v.ElemValue(fi.Elem).Scale(fi.GC).Add(v.ElemValue(fi.Neighbor).Scale(1 - fi.GC))
}

// UpdateGradients computes and stores every cell gradient, call once the values are final
func (v *Variable) UpdateGradients() {
	grads := make([]ad.Vec, v.mesh.NumCells())
	for k := range grads {
		grads[k] = v.greenGauss(k)
	}
	v.grads = grads
}

// CellGradient is the Green-Gauss gradient, stored if UpdateGradients was called
func (v *Variable) CellGradient(cell int) ad.Vec {
	if v.grads != nil {
		return v.grads[cell]
	}
	return v.greenGauss(cell)
}

/*
greenGauss sums face values over the cell. A boundary face with nothing imposed takes the two
term extrapolation phi_C + grad_C.(x_f - x_C), which puts the cell gradient on both sides:

	(I - sum_f A_f/V n_f d_f^T) grad_C = sum_f A_f/V phi_C n_f + interior and imposed faces

The 3x3 system is solved per cell. When it is singular, as for a cell bounded on opposite
sides by such faces, the zero gradient values are kept.
*/
func (v *Variable) greenGauss(cell int) ad.Vec {
	var (
		c            = &v.mesh.Cells[cell]
		grad         ad.Vec
		lhs          = r3.Eye()
		extrapolated bool
	)
	_ = v.mesh.LoopOverCellFaces(cell, func(fi *mesh.FaceInfo, elemHasInfo bool) error {
		n := fi.Normal
		if !elemHasInfo {
			n = r3.Scale(-1, n)
		}
		var (
			phi = v.FaceValue(fi)
			w   = [3]float64{n.X, n.Y, n.Z}
		)
		for i := 0; i < 3; i++ {
			if w[i] == 0 {
				continue
			}
			grad[i] = grad[i].Add(phi.Scale(w[i] * fi.Area / c.Volume))
		}
		if fi.IsBoundary() && !v.HasDirichlet(fi) {
			outer := r3.NewMat(nil)
			outer.Outer(fi.Area/c.Volume, n, r3.Sub(fi.Centroid, fi.ElemCentroid))
			lhs.Sub(lhs, outer)
			extrapolated = true
		}
		return nil
	})
	if !extrapolated {
		return grad
	}
	return solveGradient(lhs, grad)
}

func solveGradient(lhs *r3.Mat, rhs ad.Vec) (grad ad.Vec) {
	if math.Abs(lhs.Det()) < 1.e-12 {
		return rhs
	}
	var inv mat.Dense
	if err := inv.Inverse(lhs); err != nil {
		return rhs
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if w := inv.At(i, j); w != 0 {
				grad[i] = grad[i].Add(rhs[j].Scale(w))
			}
		}
	}
	return
}

// UncorrectedFaceGradient interpolates the cell gradients, a boundary face uses its cell's
func (v *Variable) UncorrectedFaceGradient(fi *mesh.FaceInfo) ad.Vec {
	if fi.IsBoundary() {
		return v.CellGradient(fi.Elem)
	}
	return LinearInterpolate(fi, true, v.CellGradient(fi.Elem), v.CellGradient(fi.Neighbor))
}

/*
FaceGradient replaces the component of the interpolated gradient along the centroid to
centroid direction with the two point difference. A boundary face with an imposed value
corrects along the cell to face direction, otherwise it keeps the cell gradient.
*/
func (v *Variable) FaceGradient(fi *mesh.FaceInfo) ad.Vec {
	g := v.UncorrectedFaceGradient(fi)
	var (
		e     r3.Vec
		delta ad.Real
	)
	if fi.IsBoundary() {
		val, ok := v.dirichlet(fi)
		if !ok {
			return g
		}
		dCf := r3.Sub(fi.Centroid, fi.ElemCentroid)
		d := r3.Norm(dCf)
		e = r3.Scale(1/d, dCf)
		delta = val.Sub(v.ElemValue(fi.Elem)).Scale(1 / d)
	} else {
		e = fi.ECN
		delta = v.ElemValue(fi.Neighbor).Sub(v.ElemValue(fi.Elem)).Scale(1 / fi.DCNMag)
	}
	corr := delta.Sub(g.Dot(e))
	w := [3]float64{e.X, e.Y, e.Z}
	for i := 0; i < 3; i++ {
		if w[i] == 0 {
			continue
		}
		g[i] = g[i].Add(corr.Scale(w[i]))
	}
	return g
}

// GradDotNormal is the two point normal derivative, zero on a boundary with nothing imposed
func (v *Variable) GradDotNormal(fi *mesh.FaceInfo) ad.Real {
	if fi.IsBoundary() {
		val, ok := v.dirichlet(fi)
		if !ok {
			return ad.Real{}
		}
		d := r3.Norm(r3.Sub(fi.Centroid, fi.ElemCentroid))
		return val.Sub(v.ElemValue(fi.Elem)).Scale(1 / d)
	}
	return v.ElemValue(fi.Neighbor).Sub(v.ElemValue(fi.Elem)).Scale(1 / fi.DCNMag)
}
