package INSFV

import (
	"github.com/notargets/gofvns/ad"
	"github.com/notargets/gofvns/fv"
	"github.com/notargets/gofvns/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

/*
Skip is true for boundary faces whose momentum flux is not assembled here: faces with a
substitute flux condition for the transported variable, and faces that are neither flow
boundaries nor carry a value for it.
*/
func (mp *MomentumPredictor) Skip(fi *mesh.FaceInfo) bool {
	if !fi.IsBoundary() {
		return false
	}
	if len(mp.bcs.FluxBCs(mp.variable.Name, fi)) != 0 {
		return true
	}
	for _, tag := range fi.BoundaryIDs {
		if mp.boundaries.IsFlow(tag) {
			return false
		}
	}
	return !mp.variable.HasDirichlet(fi)
}

// FaceFlux is the momentum flux per unit area leaving the face's Elem
func (mp *MomentumPredictor) FaceFlux(tid int, fi *mesh.FaceInfo) (flux ad.Real, err error) {
	var v ad.Vec
	if v, err = mp.InterpolateVelocity(tid, fi, mp.velocityInterp); err != nil {
		return
	}
	var (
		phi = fv.Interpolate(mp.advectedInterp, fi, true,
			fv.SideValue(mp.advQuant, fi, true), fv.SideValue(mp.advQuant, fi, false), v.Values())
		muFace = fv.Interpolate(fv.Average, fi, true,
			fv.SideValue(mp.mu, fi, true), fv.SideValue(mp.mu, fi, false), r3.Vec{})
		dudn = mp.variable.GradDotNormal(fi)
	)
	flux = v.Dot(fi.Normal).Mul(phi).Sub(muFace.Mul(dudn))
	return
}
