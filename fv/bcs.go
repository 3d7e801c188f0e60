package fv

import (
	"fmt"

	"github.com/notargets/gofvns/mesh"
	"github.com/notargets/gofvns/types"
	"gonum.org/v1/gonum/spatial/r3"
)

// BoundaryCondition attaches one condition type to one variable on a set of marker tags
type BoundaryCondition struct {
	Name       string
	Type       types.BCFLAG
	Variable   string
	Boundaries []int
	Value      func(x r3.Vec) float64 // Imposed value for Dirichlet type conditions, nil is zero
}

func NewBC(flag types.BCFLAG, variable string, value float64, tags ...int) *BoundaryCondition {
	return &BoundaryCondition{
		Name:       fmt.Sprintf("%s_%s", variable, flag),
		Type:       flag,
		Variable:   variable,
		Boundaries: tags,
		Value:      func(r3.Vec) float64 { return value },
	}
}

func (bc *BoundaryCondition) ValueAt(x r3.Vec) float64 {
	if bc.Value == nil {
		return 0
	}
	return bc.Value(x)
}

func (bc *BoundaryCondition) AppliesTo(tag int) bool {
	for _, t := range bc.Boundaries {
		if t == tag {
			return true
		}
	}
	return false
}

// Warehouse holds every boundary condition of a system, it is read only once workers start
type Warehouse struct {
	bcs []*BoundaryCondition
}

func NewWarehouse() *Warehouse {
	return &Warehouse{}
}

func (w *Warehouse) Add(bcs ...*BoundaryCondition) {
	w.bcs = append(w.bcs, bcs...)
}

func (w *Warehouse) All() []*BoundaryCondition { return w.bcs }

// Query returns the conditions on tag whose type satisfies match, in insertion order
func (w *Warehouse) Query(tag int, match func(types.BCFLAG) bool) (found []*BoundaryCondition) {
	for _, bc := range w.bcs {
		if bc.AppliesTo(tag) && match(bc.Type) {
			found = append(found, bc)
		}
	}
	return
}

// HasTag is true when any condition is applied on tag
func (w *Warehouse) HasTag(tag int) bool {
	return len(w.Query(tag, func(types.BCFLAG) bool { return true })) > 0
}

// DirichletBC finds the first value-imposing condition for variable on the face, tags are
// searched in face order
func (w *Warehouse) DirichletBC(variable string, fi *mesh.FaceInfo) (*BoundaryCondition, bool) {
	for _, tag := range fi.BoundaryIDs {
		for _, bc := range w.bcs {
			if bc.Variable == variable && bc.Type.IsDirichlet() && bc.AppliesTo(tag) {
				return bc, true
			}
		}
	}
	return nil, false
}

// FluxBCs returns the substitute flux conditions for variable on the face
func (w *Warehouse) FluxBCs(variable string, fi *mesh.FaceInfo) (found []*BoundaryCondition) {
	for _, tag := range fi.BoundaryIDs {
		for _, bc := range w.bcs {
			if bc.Variable == variable && bc.Type.IsFlux() && bc.AppliesTo(tag) {
				found = append(found, bc)
			}
		}
	}
	return
}
