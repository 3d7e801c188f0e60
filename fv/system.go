package fv

import (
	"errors"
	"fmt"
	"sort"

	"github.com/notargets/gofvns/mesh"
)

var (
	ErrUnknownVariable = errors.New("unknown variable")
	ErrUnknownProperty = errors.New("unknown property")
)

// System owns the variables, material properties and boundary conditions over one mesh
type System struct {
	Mesh       *mesh.FVMesh
	BCs        *Warehouse
	variables  []*Variable
	byName     map[string]*Variable
	properties map[string]Functor
}

func NewSystem(m *mesh.FVMesh, bcs *Warehouse) *System {
	if bcs == nil {
		bcs = NewWarehouse()
	}
	return &System{
		Mesh:       m,
		BCs:        bcs,
		byName:     make(map[string]*Variable),
		properties: make(map[string]Functor),
	}
}

// AddVariable appends a variable numbered after the existing ones, re-adding returns it
func (s *System) AddVariable(name string, initial float64) *Variable {
	if v, ok := s.byName[name]; ok {
		return v
	}
	v := &Variable{
		Name:   name,
		Number: len(s.variables),
		values: make([]float64, s.Mesh.NumCells()),
		mesh:   s.Mesh,
		bcs:    s.BCs,
	}
	for k := range v.values {
		v.values[k] = initial
	}
	s.variables = append(s.variables, v)
	s.byName[name] = v
	return v
}

func (s *System) Variable(name string) (*Variable, error) {
	if v, ok := s.byName[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
}

func (s *System) Variables() []*Variable { return s.variables }

func (s *System) AddProperty(name string, f Functor) {
	s.properties[name] = f
}

func (s *System) Property(name string) (Functor, error) {
	if f, ok := s.properties[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: %q, have %v", ErrUnknownProperty, name, s.PropertyNames())
}

// PropertyNames lists the registered properties in sorted order
func (s *System) PropertyNames() (names []string) {
	for name := range s.properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

// NDoF is the total number of degrees of freedom
func (s *System) NDoF() int { return len(s.variables) * s.Mesh.NumCells() }

// UpdateGradients refreshes the stored gradients of every variable
func (s *System) UpdateGradients() {
	for _, v := range s.variables {
		v.UpdateGradients()
	}
}
