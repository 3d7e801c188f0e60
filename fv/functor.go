package fv

import (
	"github.com/notargets/gofvns/ad"
	"github.com/notargets/gofvns/mesh"
)

// Functor evaluates a quantity at a cell or on a face
type Functor interface {
	Elem(cell int) ad.Real
	Face(fi *mesh.FaceInfo) ad.Real
}

type Constant float64

func (c Constant) Elem(int) ad.Real { return ad.Constant(float64(c)) }

func (c Constant) Face(*mesh.FaceInfo) ad.Real { return ad.Constant(float64(c)) }

// CellValues is a piecewise constant property, averaged on faces
type CellValues []float64

func (cv CellValues) Elem(cell int) ad.Real { return ad.Constant(cv[cell]) }

func (cv CellValues) Face(fi *mesh.FaceInfo) ad.Real {
	if fi.IsBoundary() {
		return cv.Elem(fi.Elem)
	}
	return ad.Constant(fi.GC*cv[fi.Elem] + (1-fi.GC)*cv[fi.Neighbor])
}

// VariableFunctor exposes a solution variable, differentiable with respect to its DoFs
type VariableFunctor struct {
	*Variable
}

func (vf VariableFunctor) Elem(cell int) ad.Real { return vf.ElemValue(cell) }

func (vf VariableFunctor) Face(fi *mesh.FaceInfo) ad.Real { return vf.FaceValue(fi) }

type Product struct {
	A, B Functor
}

func (p Product) Elem(cell int) ad.Real { return p.A.Elem(cell).Mul(p.B.Elem(cell)) }

func (p Product) Face(fi *mesh.FaceInfo) ad.Real { return p.A.Face(fi).Mul(p.B.Face(fi)) }

// SideValue evaluates f on one side of a face: the owning cell, or for the neighbor side of a
// boundary face, the face itself
func SideValue(f Functor, fi *mesh.FaceInfo, elemSide bool) ad.Real {
	switch {
	case elemSide:
		return f.Elem(fi.Elem)
	case fi.IsBoundary():
		return f.Face(fi)
	default:
		return f.Elem(fi.Neighbor)
	}
}
