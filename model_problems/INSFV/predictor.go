package INSFV

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notargets/gofvns/ad"
	"github.com/notargets/gofvns/fv"
	"github.com/notargets/gofvns/mesh"
	"github.com/sirupsen/logrus"
)

var (
	ErrConfiguration = errors.New("invalid configuration")
	ErrUnboundedFace = errors.New("boundary face has no momentum treatment")
)

var componentNames = [3]string{"x", "y", "z"}

// Params names the collaborators of one momentum component kernel
type Params struct {
	Velocity             [3]string // u, v, w variable names, only the first Dim are used
	Pressure             string
	Mu, Rho              string // Property names
	MomentumComponent    string // x, y or z
	Variable             string // Transported variable, defaults to the component's velocity
	VelocityInterpMethod string // average or rc
	AdvectedInterpMethod string // average or upwind
}

func NewParams(component string) Params {
	return Params{
		Velocity:             [3]string{"u", "v", "w"},
		Pressure:             "pressure",
		Mu:                   "mu",
		Rho:                  "rho",
		MomentumComponent:    component,
		VelocityInterpMethod: "rc",
		AdvectedInterpMethod: "upwind",
	}
}

// CellTerm adds a residual contribution per cell, already integrated over the cell volume
type CellTerm func(cell int) ad.Real

/*
MomentumPredictor assembles the advective and viscous face fluxes of one momentum component
with Rhie-Chow face velocities. Kernels of all components share one CoefficientCache.
*/
type MomentumPredictor struct {
	Name      string
	Log       logrus.FieldLogger
	Transient CellTerm
	params    Params

	mesh       *mesh.FVMesh
	bcs        *fv.Warehouse
	cache      *CoefficientCache
	boundaries *BoundaryClassification
	dim, index int

	velocity [3]*fv.Variable
	pressure *fv.Variable
	variable *fv.Variable
	mu, rho  fv.Functor
	advQuant fv.Functor

	velocityInterp, advectedInterp fv.InterpMethod
}

func NewMomentumPredictor(sys *fv.System, cache *CoefficientCache, p Params) (mp *MomentumPredictor, err error) {
	if cache == nil {
		return nil, fmt.Errorf("%w: a coefficient cache is required", ErrConfiguration)
	}
	mp = &MomentumPredictor{
		Name:   "momentum_" + strings.ToLower(p.MomentumComponent),
		Log:    logrus.StandardLogger(),
		params: p,
		mesh:   sys.Mesh,
		bcs:    sys.BCs,
		cache:  cache,
		dim:    sys.Mesh.Dim,
		index:  -1,
	}
	for i, name := range componentNames {
		if strings.EqualFold(p.MomentumComponent, name) {
			mp.index = i
		}
	}
	if mp.index < 0 {
		return nil, fmt.Errorf("%w: momentum component %q must be one of x, y, z", ErrConfiguration, p.MomentumComponent)
	}
	if mp.index >= mp.dim {
		return nil, fmt.Errorf("%w: momentum component %s is outside of the %dD mesh",
			ErrConfiguration, p.MomentumComponent, mp.dim)
	}
	for i, vname := range []string{"u", "v", "w"}[:mp.dim] {
		if p.Velocity[i] == "" {
			return nil, fmt.Errorf("%w: in %dD the %s velocity must be supplied", ErrConfiguration, mp.dim, vname)
		}
		if mp.velocity[i], err = sys.Variable(p.Velocity[i]); err != nil {
			return nil, fmt.Errorf("%w: %s velocity: %w", ErrConfiguration, vname, err)
		}
	}
	if p.Pressure == "" {
		return nil, fmt.Errorf("%w: the pressure must be supplied", ErrConfiguration)
	}
	if mp.pressure, err = sys.Variable(p.Pressure); err != nil {
		return nil, fmt.Errorf("%w: pressure: %w", ErrConfiguration, err)
	}
	if mp.mu, err = sys.Property(p.Mu); err != nil {
		return nil, fmt.Errorf("%w: viscosity: %w", ErrConfiguration, err)
	}
	if mp.rho, err = sys.Property(p.Rho); err != nil {
		return nil, fmt.Errorf("%w: density: %w", ErrConfiguration, err)
	}
	varName := p.Variable
	if varName == "" {
		varName = p.Velocity[mp.index]
	}
	if mp.variable, err = sys.Variable(varName); err != nil {
		return nil, fmt.Errorf("%w: transported variable: %w", ErrConfiguration, err)
	}
	if mp.velocityInterp, err = fv.NewInterpMethod(p.VelocityInterpMethod); err != nil ||
		mp.velocityInterp == fv.Upwind {
		return nil, fmt.Errorf("%w: velocity interpolation %q must be average or rc",
			ErrConfiguration, p.VelocityInterpMethod)
	}
	if mp.advectedInterp, err = fv.NewInterpMethod(p.AdvectedInterpMethod); err != nil ||
		mp.advectedInterp == fv.RhieChow {
		return nil, fmt.Errorf("%w: advected interpolation %q must be average or upwind",
			ErrConfiguration, p.AdvectedInterpMethod)
	}
	for _, fi := range sys.Mesh.Faces {
		if fi.IsBoundary() {
			continue
		}
		if ecs, ncs := sys.Mesh.CoordSystem(fi.ElemSubdomain), sys.Mesh.CoordSystem(fi.NeighborSubdomain); ecs != ncs {
			return nil, fmt.Errorf("%w: %s joins subdomain %d (%s) and subdomain %d (%s)",
				ErrConfiguration, fi, fi.ElemSubdomain, ecs, fi.NeighborSubdomain, ncs)
		}
	}
	if mp.boundaries, err = ClassifyBoundaries(sys.Mesh.BoundaryIDs(), sys.BCs); err != nil {
		return nil, err
	}
	mp.advQuant = fv.Product{A: mp.rho, B: fv.VariableFunctor{Variable: mp.variable}}
	for _, tag := range sys.Mesh.BoundaryIDs() {
		cat, ok := mp.boundaries.Classify(tag)
		entry := mp.Log.WithFields(logrus.Fields{
			"kernel":   mp.Name,
			"boundary": tag,
			"marker":   sys.Mesh.BoundaryNames[tag],
		})
		if ok {
			entry.Debugf("classified as %s", cat)
		} else {
			entry.Debug("unclassified")
		}
	}
	return
}

// GhostLayers is the stencil depth required around a face: the Rhie-Chow coefficients of the
// face's cells read their neighbors
func (mp *MomentumPredictor) GhostLayers() int { return 2 }

func (mp *MomentumPredictor) Params() Params { return mp.params }

func (mp *MomentumPredictor) Variable() *fv.Variable { return mp.variable }

func (mp *MomentumPredictor) Component() int { return mp.index }

func (mp *MomentumPredictor) Classification() *BoundaryClassification { return mp.boundaries }

func (mp *MomentumPredictor) Cache() *CoefficientCache { return mp.cache }
