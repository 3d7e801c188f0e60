package INSFV

import (
	"fmt"

	"github.com/notargets/gofvns/ad"
	"github.com/notargets/gofvns/fv"
	"github.com/notargets/gofvns/mesh"
)

func (mp *MomentumPredictor) CellVelocity(cell int) (v ad.Vec) {
	for i := 0; i < mp.dim; i++ {
		v[i] = mp.velocity[i].ElemValue(cell)
	}
	return
}

// NeighborVelocity is the velocity across fi from cell, boundary faces give the ghost velocity
func (mp *MomentumPredictor) NeighborVelocity(fi *mesh.FaceInfo, cell int) (v ad.Vec) {
	for i := 0; i < mp.dim; i++ {
		v[i] = mp.velocity[i].NeighborValue(fi, cell)
	}
	return
}

/*
BoundaryVelocity is the velocity on a boundary face. Symmetry planes and slip walls take the
cell velocity without its normal component, every other face takes the per component boundary
values.
*/
func (mp *MomentumPredictor) BoundaryVelocity(fi *mesh.FaceInfo) (v ad.Vec) {
	if cat, _, ok := mp.boundaries.FaceCategory(fi); ok && (cat == Symmetry || cat == SlipWall) {
		v = mp.CellVelocity(fi.Elem)
		un := v.Dot(fi.Normal)
		n := [3]float64{fi.Normal.X, fi.Normal.Y, fi.Normal.Z}
		for i := 0; i < mp.dim; i++ {
			if n[i] != 0 {
				v[i] = v[i].Sub(un.Scale(n[i]))
			}
		}
		return
	}
	for i := 0; i < mp.dim; i++ {
		v[i] = mp.velocity[i].BoundaryFaceValue(fi)
	}
	return
}

/*
InterpolateVelocity returns the face velocity. The Rhie-Chow method subtracts from the linear
average the difference between the corrected and interpolated pressure gradients, weighted by
D = V/a interpolated to the face, where a are the diagonal coefficients of worker tid's cache.
*/
func (mp *MomentumPredictor) InterpolateVelocity(tid int, fi *mesh.FaceInfo, method fv.InterpMethod) (v ad.Vec, err error) {
	if fi.IsBoundary() {
		return mp.BoundaryVelocity(fi), nil
	}
	v = fv.LinearInterpolate(fi, true, mp.CellVelocity(fi.Elem), mp.CellVelocity(fi.Neighbor))
	switch method {
	case fv.Average:
		return
	case fv.RhieChow:
	default:
		panic(fmt.Sprintf("velocity interpolation %s is not supported", method))
	}
	if ecs, ncs := mp.mesh.CoordSystem(fi.ElemSubdomain), mp.mesh.CoordSystem(fi.NeighborSubdomain); ecs != ncs {
		panic(fmt.Sprintf("%s joins %s and %s coordinate systems", fi, ecs, ncs))
	}
	var elemA, neighborA ad.Vec
	if elemA, err = mp.RCCoefficients(tid, fi.Elem); err != nil {
		return
	}
	if neighborA, err = mp.RCCoefficients(tid, fi.Neighbor); err != nil {
		return
	}
	var (
		gradP       = mp.pressure.FaceGradient(fi)
		uncGradP    = mp.pressure.UncorrectedFaceGradient(fi)
		elemVol     = fi.ElemVolume * mp.mesh.CoordFactor(fi.Elem, fi.ElemCentroid)
		neighborVol = fi.NeighborVolume * mp.mesh.CoordFactor(fi.Neighbor, fi.NeighborCentroid)
	)
	for i := 0; i < mp.dim; i++ {
		if elemA[i].Value == 0 || neighborA[i].Value == 0 {
			panic(fmt.Sprintf("zero momentum coefficient in component %d across %s", i, fi))
		}
		var (
			elemD     = ad.Constant(elemVol).Div(elemA[i])
			neighborD = ad.Constant(neighborVol).Div(neighborA[i])
			faceD     = elemD.Scale(fi.GC).Add(neighborD.Scale(1 - fi.GC))
		)
		v[i] = v[i].Sub(faceD.Mul(gradP[i].Sub(uncGradP[i])))
	}
	return
}
