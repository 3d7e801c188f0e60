package INSFV

import (
	"fmt"
	"math"

	"github.com/notargets/gofvns/ad"
	"github.com/notargets/gofvns/fv"
	"github.com/notargets/gofvns/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

/*
CoefficientCache memoizes the diagonal momentum coefficients of cells, one partition per
worker. A worker only touches its own partition so no locking is needed. Entries are valid for
one assembly pass: the driver clears every partition before the solution changes.
*/
type CoefficientCache struct {
	partitions []map[int]ad.Vec
}

func NewCoefficientCache(nWorkers int) *CoefficientCache {
	if nWorkers < 1 {
		nWorkers = 1
	}
	cc := &CoefficientCache{partitions: make([]map[int]ad.Vec, nWorkers)}
	for tid := range cc.partitions {
		cc.partitions[tid] = make(map[int]ad.Vec)
	}
	return cc
}

func (cc *CoefficientCache) NumWorkers() int { return len(cc.partitions) }

func (cc *CoefficientCache) partition(tid int) map[int]ad.Vec {
	if tid < 0 || tid >= len(cc.partitions) {
		panic(fmt.Sprintf("worker %d outside of coefficient cache with %d partitions", tid, len(cc.partitions)))
	}
	return cc.partitions[tid]
}

// Get returns the cached coefficients of cell for worker tid, computing them on a miss
func (cc *CoefficientCache) Get(tid, cell int, compute func(cell int) (ad.Vec, error)) (coeff ad.Vec, err error) {
	part := cc.partition(tid)
	var ok bool
	if coeff, ok = part[cell]; ok {
		return
	}
	if coeff, err = compute(cell); err != nil {
		return
	}
	part[cell] = coeff
	return
}

func (cc *CoefficientCache) Len(tid int) int { return len(cc.partition(tid)) }

func (cc *CoefficientCache) Clear(tid int) { clear(cc.partition(tid)) }

func (cc *CoefficientCache) ClearAll() {
	for _, part := range cc.partitions {
		clear(part)
	}
}

func (mp *MomentumPredictor) uniform(c ad.Real) (coeff ad.Vec) {
	for i := 0; i < mp.dim; i++ {
		coeff[i] = c
	}
	return
}

/*
FaceCoefficient is the contribution of one face to the diagonal coefficients of cell. The
surface vector points out of cell and carries the coordinate factor at the face centroid.
*/
func (mp *MomentumPredictor) FaceCoefficient(cell int, fi *mesh.FaceInfo, elemHasInfo bool) (coeff ad.Vec, err error) {
	var (
		normal   = fi.Normal
		centroid = fi.ElemCentroid
	)
	if !elemHasInfo {
		normal = r3.Scale(-1, normal)
		centroid = fi.NeighborCentroid
	}
	cat, _, ok := mp.boundaries.FaceCategory(fi)
	if !ok {
		return coeff, fmt.Errorf("%w: cell %d face %d with boundaries %v",
			ErrUnboundedFace, cell, fi.ID, fi.BoundaryIDs)
	}
	var (
		sMag    = fi.Area * mp.mesh.CoordFactor(cell, fi.Centroid)
		surface = r3.Scale(sMag, normal)
		faceMu  = mp.mu.Face(fi)
		n       = [3]float64{normal.X, normal.Y, normal.Z}
	)
	switch cat {
	case Interior:
		var (
			interpV = fv.LinearInterpolate(fi, elemHasInfo, mp.CellVelocity(cell), mp.NeighborVelocity(fi, cell))
			w, _    = fv.InterpCoeffs(mp.advectedInterp, fi, elemHasInfo, interpV.Values())
		)
		coeff = mp.uniform(mp.rho.Face(fi).Mul(interpV.Dot(surface)).Scale(w).
			Add(faceMu.Scale(sMag / fi.DCNMag)))
	case NoSlipWall:
		dPerp := math.Abs(r3.Dot(r3.Sub(fi.Centroid, centroid), normal))
		base := faceMu.Scale(sMag / dPerp)
		for i := 0; i < mp.dim; i++ {
			coeff[i] = base.Scale(1 - n[i]*n[i])
		}
	case SlipWall:
	case Flow, FullyDevelopedFlow:
		var (
			faceVelocity = mp.BoundaryVelocity(fi)
			w, _         = fv.InterpCoeffs(mp.advectedInterp, fi, elemHasInfo, faceVelocity.Values())
			temp         = mp.rho.Face(fi).Mul(faceVelocity.Dot(surface)).Scale(w)
		)
		if cat == Flow {
			temp = temp.Add(faceMu.Scale(sMag / r3.Norm(r3.Sub(fi.Centroid, centroid))))
		}
		coeff = mp.uniform(temp)
	case Symmetry:
		dPerp := math.Abs(r3.Dot(r3.Sub(fi.Centroid, centroid), normal))
		base := faceMu.Scale(2 * sMag / dPerp)
		for i := 0; i < mp.dim; i++ {
			coeff[i] = base.Scale(n[i] * n[i])
		}
	}
	return
}

// ComputeCoefficients sums the face contributions of every face bounding cell
func (mp *MomentumPredictor) ComputeCoefficients(cell int) (coeff ad.Vec, err error) {
	err = mp.mesh.LoopOverCellFaces(cell, func(fi *mesh.FaceInfo, elemHasInfo bool) error {
		c, err := mp.FaceCoefficient(cell, fi, elemHasInfo)
		if err != nil {
			return err
		}
		coeff = coeff.Add(c)
		return nil
	})
	return
}

// RCCoefficients returns the coefficients of cell through worker tid's cache partition
func (mp *MomentumPredictor) RCCoefficients(tid, cell int) (ad.Vec, error) {
	return mp.cache.Get(tid, cell, mp.ComputeCoefficients)
}

func (mp *MomentumPredictor) ClearCoefficients(tid int) { mp.cache.Clear(tid) }
