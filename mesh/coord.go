package mesh

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// CoordSystem converts planar face areas and cell volumes into physical ones
type CoordSystem uint8

const (
	XYZ CoordSystem = iota
	RZ              // axisymmetric about the y axis, x is the radius
	RSpherical      // spherically symmetric, x is the radius
)

func (cs CoordSystem) String() string {
	switch cs {
	case XYZ:
		return "XYZ"
	case RZ:
		return "RZ"
	case RSpherical:
		return "RSPHERICAL"
	}
	return fmt.Sprintf("CoordSystem(%d)", cs)
}

func NewCoordSystem(label string) (cs CoordSystem, err error) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "", "XYZ":
		cs = XYZ
	case "RZ":
		cs = RZ
	case "RSPHERICAL":
		cs = RSpherical
	default:
		err = fmt.Errorf("unknown coordinate system %q", label)
	}
	return
}

// Factor is the coordinate transformation factor at point x
func (cs CoordSystem) Factor(x r3.Vec) float64 {
	switch cs {
	case RZ:
		return 2 * math.Pi * x.X
	case RSpherical:
		return 4 * math.Pi * x.X * x.X
	}
	return 1
}
