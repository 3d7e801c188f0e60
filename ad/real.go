package ad

import (
	"math"
	"sort"
)

// Partial is the derivative of a value with respect to one degree of freedom
type Partial struct {
	Index int
	Value float64
}

/*
Real is a forward mode differentiable scalar. Alongside its value it carries the partial
derivatives with respect to every degree of freedom that influenced it, stored sparsely and
sorted by degree of freedom index.

Real is a value type: no operation modifies the Derivs of an operand, every result owns a
freshly allocated slice.
*/
type Real struct {
	Value  float64
	Derivs []Partial
}

func Constant(value float64) Real {
	return Real{Value: value}
}

// Variable returns an independent variable, seeded with a unit derivative at dof
func Variable(value float64, dof int) Real {
	return Real{Value: value, Derivs: []Partial{{Index: dof, Value: 1}}}
}

// Derivative returns the partial derivative with respect to dof, zero when absent
func (a Real) Derivative(dof int) float64 {
	i := sort.Search(len(a.Derivs), func(i int) bool { return a.Derivs[i].Index >= dof })
	if i < len(a.Derivs) && a.Derivs[i].Index == dof {
		return a.Derivs[i].Value
	}
	return 0
}

func (a Real) NNZ() int { return len(a.Derivs) }

func (a Real) Add(b Real) Real {
	return Real{Value: a.Value + b.Value, Derivs: combine(1, a.Derivs, 1, b.Derivs)}
}

func (a Real) Sub(b Real) Real {
	return Real{Value: a.Value - b.Value, Derivs: combine(1, a.Derivs, -1, b.Derivs)}
}

func (a Real) Mul(b Real) Real {
	return Real{Value: a.Value * b.Value, Derivs: combine(b.Value, a.Derivs, a.Value, b.Derivs)}
}

func (a Real) Div(b Real) Real {
	var (
		q     = a.Value / b.Value
		oob   = 1. / b.Value
		scale = -q * oob
	)
	return Real{Value: q, Derivs: combine(oob, a.Derivs, scale, b.Derivs)}
}

func (a Real) Scale(s float64) Real {
	return Real{Value: a.Value * s, Derivs: scaled(s, a.Derivs)}
}

func (a Real) AddConst(c float64) Real {
	return Real{Value: a.Value + c, Derivs: scaled(1, a.Derivs)}
}

func (a Real) Neg() Real {
	return a.Scale(-1)
}

func (a Real) Abs() Real {
	if a.Value < 0 {
		return a.Neg()
	}
	return a.Scale(1)
}

func (a Real) Sqrt() Real {
	v := math.Sqrt(a.Value)
	return Real{Value: v, Derivs: scaled(0.5/v, a.Derivs)}
}

// Sum adds all values, left to right
func Sum(vals ...Real) (s Real) {
	for _, v := range vals {
		s = s.Add(v)
	}
	return
}

func scaled(alpha float64, a []Partial) (out []Partial) {
	if len(a) == 0 {
		return nil
	}
	out = make([]Partial, len(a))
	for i, p := range a {
		out[i] = Partial{Index: p.Index, Value: alpha * p.Value}
	}
	return
}

// combine merges alpha*a + beta*b, both sorted by index
func combine(alpha float64, a []Partial, beta float64, b []Partial) (out []Partial) {
	switch {
	case len(a) == 0 && len(b) == 0:
		return nil
	case len(b) == 0:
		return scaled(alpha, a)
	case len(a) == 0:
		return scaled(beta, b)
	}
	out = make([]Partial, 0, len(a)+len(b))
	var i, j int
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Index < b[j].Index:
			out = append(out, Partial{Index: a[i].Index, Value: alpha * a[i].Value})
			i++
		case a[i].Index > b[j].Index:
			out = append(out, Partial{Index: b[j].Index, Value: beta * b[j].Value})
			j++
		default:
			out = append(out, Partial{Index: a[i].Index, Value: alpha*a[i].Value + beta*b[j].Value})
			i++
			j++
		}
	}
	for ; i < len(a); i++ {
		out = append(out, Partial{Index: a[i].Index, Value: alpha * a[i].Value})
	}
	for ; j < len(b); j++ {
		out = append(out, Partial{Index: b[j].Index, Value: beta * b[j].Value})
	}
	return
}
