package ad

import "gonum.org/v1/gonum/spatial/r3"

// Vec is a differentiable 3 vector, components beyond the mesh dimension stay zero
type Vec [3]Real

func NewVec(x, y, z Real) Vec { return Vec{x, y, z} }

func ConstVec(v r3.Vec) Vec {
	return Vec{Constant(v.X), Constant(v.Y), Constant(v.Z)}
}

// Values strips the derivatives
func (u Vec) Values() r3.Vec {
	return r3.Vec{X: u[0].Value, Y: u[1].Value, Z: u[2].Value}
}

// Dot projects onto a constant direction. Components with a zero weight are skipped so
// that they do not add structural zeros to the derivative pattern.
func (u Vec) Dot(n r3.Vec) (d Real) {
	w := [3]float64{n.X, n.Y, n.Z}
	for i := 0; i < 3; i++ {
		if w[i] == 0 {
			continue
		}
		d = d.Add(u[i].Scale(w[i]))
	}
	return
}

func (u Vec) DotVec(v Vec) (d Real) {
	for i := 0; i < 3; i++ {
		d = d.Add(u[i].Mul(v[i]))
	}
	return
}

func (u Vec) Add(v Vec) (r Vec) {
	for i := 0; i < 3; i++ {
		r[i] = u[i].Add(v[i])
	}
	return
}

func (u Vec) Sub(v Vec) (r Vec) {
	for i := 0; i < 3; i++ {
		r[i] = u[i].Sub(v[i])
	}
	return
}

func (u Vec) Scale(s float64) (r Vec) {
	for i := 0; i < 3; i++ {
		r[i] = u[i].Scale(s)
	}
	return
}

func (u Vec) ScaleReal(s Real) (r Vec) {
	for i := 0; i < 3; i++ {
		r[i] = u[i].Mul(s)
	}
	return
}
