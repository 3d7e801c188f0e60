package INSFV

import (
	"fmt"
	"sync"

	"github.com/james-bowman/sparse"
	"github.com/notargets/gofvns/ad"
	"github.com/notargets/gofvns/fv"
	"github.com/notargets/gofvns/utils"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Result of one assembly pass
type Result struct {
	Residuals [][]float64 // Per kernel, per cell
	Norms     []float64   // L2 norm of each kernel's residual
	Jacobian  *sparse.CSR // Rows and columns are system DoFs
}

/*
Assembler runs assembly passes of a set of momentum kernels over one system. Faces are split
into one bucket per cache partition, each bucket is assembled by its own goroutine into private
accumulators which are reduced in worker order once all are done.
*/
type Assembler struct {
	System         *fv.System
	Kernels        []*MomentumPredictor
	Cache          *CoefficientCache
	Log            logrus.FieldLogger
	FaceBuckets    [][]int // Face IDs, one bucket per worker
	CellPartitions *utils.PartitionMap
	pass           int
}

func NewAssembler(sys *fv.System, kernels []*MomentumPredictor) (as *Assembler, err error) {
	if len(kernels) == 0 {
		return nil, fmt.Errorf("%w: no momentum kernels to assemble", ErrConfiguration)
	}
	ref := kernels[0]
	for _, k := range kernels[1:] {
		var (
			a, b = ref.Params(), k.Params()
		)
		switch {
		case k.Cache() != ref.Cache():
			return nil, fmt.Errorf("%w: %s and %s use different coefficient caches", ErrConfiguration, ref.Name, k.Name)
		case a.Velocity != b.Velocity || a.Mu != b.Mu || a.Rho != b.Rho || ref.advectedInterp != k.advectedInterp:
			// The cached coefficients of one kernel are read by all of them
			return nil, fmt.Errorf("%w: %s and %s compute coefficients differently", ErrConfiguration, ref.Name, k.Name)
		}
	}
	as = &Assembler{
		System:  sys,
		Kernels: kernels,
		Cache:   ref.Cache(),
		Log:     ref.Log,
	}
	as.PartitionFaces()
	as.CellPartitions = utils.NewPartitionMap(as.Cache.NumWorkers(), sys.Mesh.NumCells())
	return
}

// PartitionFaces balances interior and boundary faces separately across the workers
func (as *Assembler) PartitionFaces() {
	var (
		NP                      = as.Cache.NumWorkers()
		interiorFaces, bcFaces []int
	)
	for f, fi := range as.System.Mesh.Faces {
		if fi.IsBoundary() {
			bcFaces = append(bcFaces, f)
		} else {
			interiorFaces = append(interiorFaces, f)
		}
	}
	as.FaceBuckets = make([][]int, NP)
	pmI := utils.NewPartitionMap(NP, len(interiorFaces))
	pmB := utils.NewPartitionMap(NP, len(bcFaces))
	for np := 0; np < NP; np++ {
		IMin, IMax := pmI.GetBucketRange(np)
		BMin, BMax := pmB.GetBucketRange(np)
		bucket := make([]int, 0, pmI.GetBucketDimension(np)+pmB.GetBucketDimension(np))
		bucket = append(bucket, interiorFaces[IMin:IMax]...)
		bucket = append(bucket, bcFaces[BMin:BMax]...)
		as.FaceBuckets[np] = bucket
	}
}

// Run performs one assembly pass over the current solution
func (as *Assembler) Run() (res *Result, err error) {
	var (
		NP     = as.Cache.NumWorkers()
		nK     = len(as.Kernels)
		nCells = as.System.Mesh.NumCells()
		local  = make([][][]ad.Real, NP)
		errs   = make([]error, NP)
		wg     = sync.WaitGroup{}
	)
	as.pass++
	as.System.UpdateGradients()
	as.Cache.ClearAll()
	for np := 0; np < NP; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			local[np], errs[np] = as.assembleBucket(np)
		}(np)
	}
	wg.Wait()
	for np, e := range errs {
		if e != nil {
			return nil, fmt.Errorf("pass %d worker %d: %w", as.pass, np, e)
		}
	}

	var (
		ndof = as.System.NDoF()
		jac  = sparse.NewDOK(ndof, ndof)
	)
	res = &Result{
		Residuals: make([][]float64, nK),
		Norms:     make([]float64, nK),
	}
	for k, kernel := range as.Kernels {
		res.Residuals[k] = make([]float64, nCells)
		for cell := 0; cell < nCells; cell++ {
			var total ad.Real
			for np := 0; np < NP; np++ {
				total = total.Add(local[np][k][cell])
			}
			res.Residuals[k][cell] = total.Value
			row := kernel.Variable().DoF(cell)
			for _, p := range total.Derivs {
				jac.Set(row, p.Index, jac.At(row, p.Index)+p.Value)
			}
		}
		res.Norms[k] = floats.Norm(res.Residuals[k], 2)
		as.Log.WithFields(logrus.Fields{
			"pass":   as.pass,
			"kernel": kernel.Name,
			"l2":     res.Norms[k],
		}).Debug("assembled momentum residual")
	}
	res.Jacobian = jac.ToCSR()
	return
}

func (as *Assembler) assembleBucket(np int) (res [][]ad.Real, err error) {
	var (
		fvm    = as.System.Mesh
		nCells = fvm.NumCells()
	)
	res = make([][]ad.Real, len(as.Kernels))
	for k := range res {
		res[k] = make([]ad.Real, nCells)
	}
	for _, f := range as.FaceBuckets[np] {
		var (
			fi    = fvm.Faces[f]
			scale = fi.Area * fvm.CoordFactor(fi.Elem, fi.Centroid)
		)
		for k, kernel := range as.Kernels {
			if kernel.Skip(fi) {
				continue
			}
			var flux ad.Real
			if flux, err = kernel.FaceFlux(np, fi); err != nil {
				return
			}
			r := flux.Scale(scale)
			res[k][fi.Elem] = res[k][fi.Elem].Add(r)
			if !fi.IsBoundary() {
				res[k][fi.Neighbor] = res[k][fi.Neighbor].Sub(r)
			}
		}
	}
	kMin, kMax := as.CellPartitions.GetBucketRange(np)
	for k, kernel := range as.Kernels {
		if kernel.Transient == nil {
			continue
		}
		for cell := kMin; cell < kMax; cell++ {
			res[k][cell] = res[k][cell].Add(kernel.Transient(cell))
		}
	}
	return
}
