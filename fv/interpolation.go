package fv

import (
	"fmt"
	"strings"

	"github.com/notargets/gofvns/ad"
	"github.com/notargets/gofvns/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

type InterpMethod uint8

const (
	Average InterpMethod = iota
	Upwind
	RhieChow
)

var InterpNames = map[string]InterpMethod{
	"average":   Average,
	"upwind":    Upwind,
	"rc":        RhieChow,
	"rhie-chow": RhieChow,
}

func (m InterpMethod) String() string {
	switch m {
	case Average:
		return "average"
	case Upwind:
		return "upwind"
	case RhieChow:
		return "rc"
	}
	return fmt.Sprintf("InterpMethod(%d)", m)
}

func NewInterpMethod(label string) (m InterpMethod, err error) {
	var ok bool
	if m, ok = InterpNames[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown interpolation method %q", label)
	}
	return
}

/*
InterpCoeffs returns the weights applied to the "one" and "two" values of a face
interpolation. oneIsElem is true when "one" is the value on the face's Elem side. Average and
Rhie-Chow weigh by the geometric factor GC. Upwind selects the side the advector flows out of,
by the sign of the advector along the face normal.
*/
func InterpCoeffs(m InterpMethod, fi *mesh.FaceInfo, oneIsElem bool, advector r3.Vec) (c1, c2 float64) {
	switch m {
	case Average, RhieChow:
		if oneIsElem {
			return fi.GC, 1 - fi.GC
		}
		return 1 - fi.GC, fi.GC
	case Upwind:
		if (r3.Dot(advector, fi.Normal) > 0) == oneIsElem {
			return 1, 0
		}
		return 0, 1
	}
	panic(fmt.Sprintf("unsupported interpolation method %s", m))
}

// Interpolate combines two sided values with the method weights
func Interpolate(m InterpMethod, fi *mesh.FaceInfo, oneIsElem bool, one, two ad.Real, advector r3.Vec) ad.Real {
	c1, c2 := InterpCoeffs(m, fi, oneIsElem, advector)
	return one.Scale(c1).Add(two.Scale(c2))
}

// LinearInterpolate is the GC weighted average of two sided vectors
func LinearInterpolate(fi *mesh.FaceInfo, oneIsElem bool, one, two ad.Vec) (v ad.Vec) {
	c1, c2 := InterpCoeffs(Average, fi, oneIsElem, r3.Vec{})
	for i := 0; i < 3; i++ {
		v[i] = one[i].Scale(c1).Add(two[i].Scale(c2))
	}
	return
}
