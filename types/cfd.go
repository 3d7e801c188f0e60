package types

import (
	"fmt"
	"strings"
)

type BCFLAG uint8

const (
	BC_None BCFLAG = iota
	BC_InletVelocity
	BC_OutletPressure
	BC_FullyDevelopedFlow
	BC_NoSlipWall
	BC_SlipWall
	BC_Symmetry
	BC_Dirichlet
	BC_Flux
)

var bcFlagNames = [...]string{
	"None",
	"InletVelocity",
	"OutletPressure",
	"FullyDevelopedFlow",
	"NoSlipWall",
	"SlipWall",
	"Symmetry",
	"Dirichlet",
	"Flux",
}

func (bf BCFLAG) String() string {
	if int(bf) >= len(bcFlagNames) {
		return fmt.Sprintf("BCFLAG(%d)", bf)
	}
	return bcFlagNames[bf]
}

var BCNameMap = map[string]BCFLAG{
	"inletvelocity":      BC_InletVelocity,
	"outletpressure":     BC_OutletPressure,
	"fullydevelopedflow": BC_FullyDevelopedFlow,
	"noslipwall":         BC_NoSlipWall,
	"slipwall":           BC_SlipWall,
	"inflow":             BC_InletVelocity,
	"in":                 BC_InletVelocity,
	"inlet":              BC_InletVelocity,
	"out":                BC_OutletPressure,
	"outflow":            BC_OutletPressure,
	"outlet":             BC_OutletPressure,
	"fully_developed":    BC_FullyDevelopedFlow,
	"fullydeveloped":     BC_FullyDevelopedFlow,
	"wall":               BC_NoSlipWall,
	"noslip":             BC_NoSlipWall,
	"slip":               BC_SlipWall,
	"symmetry":           BC_Symmetry,
	"sym":                BC_Symmetry,
	"dirichlet":          BC_Dirichlet,
	"flux":               BC_Flux,
	"neuman":             BC_Flux,
}

func NewBCFLAG(label string) (bf BCFLAG, err error) {
	var ok bool
	if bf, ok = BCNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown boundary condition type: %q", label)
	}
	return
}

// IsFlow is true for conditions that pass fluid through the boundary
func (bf BCFLAG) IsFlow() bool {
	switch bf {
	case BC_InletVelocity, BC_OutletPressure, BC_FullyDevelopedFlow:
		return true
	}
	return false
}

// IsFullyDeveloped marks flow boundaries with no viscous contribution, an outlet is one
func (bf BCFLAG) IsFullyDeveloped() bool {
	return bf == BC_FullyDevelopedFlow || bf == BC_OutletPressure
}

// IsDirichlet is true when the condition fixes the value of the variable it is applied to
func (bf BCFLAG) IsDirichlet() bool {
	switch bf {
	case BC_InletVelocity, BC_OutletPressure, BC_NoSlipWall, BC_Dirichlet:
		return true
	}
	return false
}

// IsFlux is true when the condition replaces the face flux, a symmetry plane or slip wall
// transports no momentum through the face
func (bf BCFLAG) IsFlux() bool {
	switch bf {
	case BC_SlipWall, BC_Symmetry, BC_Flux:
		return true
	}
	return false
}

/*
A BCTAG is a boundary marker name of the form "Type-label", e.g. "Wall-top" or "Inflow-2".
The part before the first dash selects the condition type, the remainder is a free label.
*/
type BCTAG string

func NewBCTAG(label string) (bt BCTAG) {
	return BCTAG(strings.TrimSpace(label))
}

func (bt BCTAG) split() (flagName, label string) {
	name := string(bt)
	if ind := strings.Index(name, "-"); ind >= 0 {
		return name[:ind], name[ind+1:]
	}
	return name, ""
}

// GetFLAG returns BC_None when the marker carries no known condition type
func (bt BCTAG) GetFLAG() BCFLAG {
	flagName, _ := bt.split()
	bf, err := NewBCFLAG(flagName)
	if err != nil {
		return BC_None
	}
	return bf
}

func (bt BCTAG) GetLabel() string {
	_, label := bt.split()
	return label
}
