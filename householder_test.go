// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats"
)

// sliceVec and sliceSpace form a minimal test backend, independent of the
// native package, so that the white-box tests below exercise the solver
// exclusively through the VectorSpace interface.
type sliceVec []float64

func (v sliceVec) Len() int { return len(v) }

type sliceSpace struct{}

func (sliceSpace) NewVector(n int) Vector { return make(sliceVec, n) }
func (sliceSpace) Copy(dst, src Vector)   { copy(dst.(sliceVec), src.(sliceVec)) }
func (sliceSpace) CopyN(dst, src Vector, n int) {
	copy(dst.(sliceVec)[:n], src.(sliceVec)[:n])
}
func (sliceSpace) CopyToSlice(dst []float64, src Vector, n int) {
	copy(dst[:n], src.(sliceVec)[:n])
}
func (sliceSpace) Clear(v Vector)                   { clear(v.(sliceVec)) }
func (sliceSpace) At(v Vector, i int) float64       { return v.(sliceVec)[i] }
func (sliceSpace) SetAt(v Vector, i int, a float64) { v.(sliceVec)[i] = a }
func (sliceSpace) Dot(a, b Vector) float64 {
	return floats.Dot(a.(sliceVec), b.(sliceVec))
}
func (sliceSpace) Norm(v Vector) float64 { return floats.Norm(v.(sliceVec), 2) }
func (sliceSpace) Scale(alpha float64, v Vector) {
	floats.Scale(alpha, v.(sliceVec))
}
func (sliceSpace) AddScaled(dst Vector, alpha float64, s Vector) {
	floats.AddScaled(dst.(sliceVec), alpha, s.(sliceVec))
}

// denseOp is a row-major dense matrix operator over sliceVec.
type denseOp struct {
	n int
	a []float64
}

func (o denseOp) Apply(dst, x Vector) {
	d, src := dst.(sliceVec), x.(sliceVec)
	for i := 0; i < o.n; i++ {
		var sum float64
		for j := 0; j < o.n; j++ {
			sum += o.a[i*o.n+j] * src[j]
		}
		d[i] = sum
	}
}

// newTestState prepares a gmres state the way solve does, up to the point
// where the first inner iteration would run.
func newTestState(vs VectorSpace, a LinearOperator, b Vector, dim int) *gmres {
	n := b.Len()
	s := &gmres{
		vs:      vs,
		a:       a,
		m:       Identity,
		dim:     dim,
		tol:     1e-12,
		b:       b,
		x:       vs.NewVector(n),
		res:     vs.NewVector(n),
		vkt:     vs.NewVector(n),
		w:       vs.NewVector(n),
		u:       make([]Vector, dim),
		r:       make([]float64, dim*dim),
		projRhs: make([]float64, dim),
		stats:   &Stats{},
	}
	for i := range s.u {
		s.u[i] = vs.NewVector(n)
	}
	s.normb = vs.Norm(b)
	vs.Copy(s.res, b)
	s.rho0 = vs.Norm(s.res)
	vs.Scale(1/s.rho0, s.res)
	s.rho = 1
	return s
}

// TestHouseholderBasis checks that every finalized reflector has unit norm
// and that the residual magnitude tracked through the inner loop never
// grows.
func TestHouseholderBasis(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for _, n := range []int{2, 3, 5, 10, 30} {
		a := make([]float64, n*n)
		for i := range a {
			a[i] = rnd.NormFloat64()
		}
		for i := 0; i < n; i++ {
			a[i*n+i] += float64(n)
		}
		b := make(sliceVec, n)
		for i := range b {
			b[i] = rnd.NormFloat64()
		}

		vs := sliceSpace{}
		s := newTestState(vs, denseOp{n: n, a: a}, b, n)
		rhoPrev := s.rho
		for k := 0; k < n; k++ {
			if s.iterate(k) {
				break
			}
			norm := vs.Norm(s.u[k])
			if math.Abs(norm-1) > 1e-9 {
				t.Errorf("n=%v: reflector %v is not unit norm, |u|=%v", n, k, norm)
			}
			if s.rho > rhoPrev {
				t.Errorf("n=%v: residual magnitude grew at iteration %v: %v > %v", n, k, s.rho, rhoPrev)
			}
			rhoPrev = s.rho
		}
	}
}

// TestHouseholderFactorColumns checks that the stored triangular factor is
// consistent with the basis the reflectors represent: with z_i = P_0...P_i e_i
// and the candidate columns c_0 = r̂_0, c_j = z_{j-1}, every built column must
// satisfy
//
//	A c_j = sum_{i<=j} r_ij z_i.
//
// A sign mismatch between the factor and the basis makes the projected system
// produce a wrong correction while the residual estimate still shrinks.
func TestHouseholderFactorColumns(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for _, n := range []int{2, 3, 5, 10, 30} {
		a := make([]float64, n*n)
		for i := range a {
			a[i] = rnd.NormFloat64()
		}
		for i := 0; i < n; i++ {
			a[i*n+i] += float64(n)
		}
		b := make(sliceVec, n)
		for i := range b {
			b[i] = rnd.NormFloat64()
		}

		vs := sliceSpace{}
		op := denseOp{n: n, a: a}
		s := newTestState(vs, op, b, n)
		r0hat := make(sliceVec, n)
		copy(r0hat, s.res.(sliceVec))
		built := 0
		for k := 0; k < n; k++ {
			if s.iterate(k) {
				break
			}
			built = k + 1
		}

		// z_i = P_0 ... P_i e_i
		z := make([]sliceVec, built)
		for i := range z {
			z[i] = make(sliceVec, n)
			z[i][i] = 1
			for j := i; j >= 0; j-- {
				vs.AddScaled(z[i], -2*vs.Dot(s.u[j], z[i]), s.u[j])
			}
		}

		col := make(sliceVec, n)
		az := make(sliceVec, n)
		want := make(sliceVec, n)
		for c := 0; c < built; c++ {
			if c == 0 {
				copy(col, r0hat)
			} else {
				copy(col, z[c-1])
			}
			op.Apply(az, col)
			for i := range want {
				want[i] = 0
			}
			for i := 0; i <= c; i++ {
				vs.AddScaled(want, s.r[c*s.dim+i], z[i])
			}
			diff := floats.Distance(az, want, math.Inf(1))
			if diff > 1e-12*floats.Norm(az, 2) {
				t.Errorf("n=%v: factor column %v inconsistent with basis, |A z - Z r|=%v", n, c, diff)
			}
		}
	}
}

// TestHouseholderBreakdown checks that the basis construction stops once the
// Krylov subspace contains the solution. For the identity operator that
// happens in the second iteration.
func TestHouseholderBreakdown(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	n := 6
	id := identityOp{}
	b := make(sliceVec, n)
	for i := range b {
		b[i] = rnd.NormFloat64()
	}

	s := newTestState(sliceSpace{}, id, b, n)
	if s.iterate(0) {
		t.Fatal("unexpected breakdown in the first iteration")
	}
	if !s.iterate(1) {
		t.Error("expected breakdown in the second iteration")
	}
}

type identityOp struct{}

func (identityOp) Apply(dst, x Vector) { copy(dst.(sliceVec), x.(sliceVec)) }
