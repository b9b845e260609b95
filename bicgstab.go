// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"errors"
	"math"
	"time"
)

// BiCGSTAB implements the BiConjugate Gradient STABilized iterative method
// with preconditioning for solving systems of linear equations with a
// non-symmetric matrix. For symmetric positive definite systems use CG.
type BiCGSTAB struct {
	// Tolerance is the relative residual threshold. If it is zero, 1e-6
	// will be used.
	Tolerance float64

	// MaxIterations is the limit on the number of iterations. If it is
	// zero, twice the dimension of the system will be used.
	MaxIterations int
}

// Solve solves A x = b without preconditioning.
func (b *BiCGSTAB) Solve(vs VectorSpace, a LinearOperator, rhs Vector) (Result, error) {
	return b.SolvePrecond(vs, a, rhs, Identity)
}

// SolvePrecond solves A x = b with the preconditioner m. It returns a rho or
// omega breakdown error when the method degenerates, and ErrIterationLimit
// if the iteration budget is exhausted before the residual drops below the
// tolerance. Stats.ResidualNorm holds the norm of the final residual.
func (b *BiCGSTAB) SolvePrecond(vs VectorSpace, a LinearOperator, rhs Vector, m Preconditioner) (Result, error) {
	stats := Stats{StartTime: time.Now()}
	x, err := b.solve(vs, a, rhs, m, &stats)
	stats.Runtime = time.Since(stats.StartTime)
	return Result{X: x, Stats: stats}, err
}

func (b *BiCGSTAB) solve(vs VectorSpace, a LinearOperator, rhs Vector, m Preconditioner, stats *Stats) (Vector, error) {
	n := rhs.Len()
	tol := b.Tolerance
	if tol == 0 {
		tol = 1e-6
	}
	maxIter := b.MaxIterations
	if maxIter == 0 {
		maxIter = 2 * n
	}

	x := vs.NewVector(n)
	r := vs.NewVector(n)
	rt := vs.NewVector(n)
	p := vs.NewVector(n)
	phat := vs.NewVector(n)
	v := vs.NewVector(n)
	s := vs.NewVector(n)
	shat := vs.NewVector(n)
	t := vs.NewVector(n)

	vs.Copy(r, rhs) // x_0 = 0, r_0 = b
	normb := vs.Norm(rhs)
	if normb == 0 {
		return x, nil
	}
	vs.Copy(rt, r)

	var rho, rhoPrev, alpha, omega float64
	for iter := 0; iter < maxIter; iter++ {
		stats.Iterations++

		rho = vs.Dot(rt, r)
		if rho < dlamchE*dlamchE {
			return x, errors.New("iterative: rho breakdown")
		}
		if iter == 0 {
			vs.Copy(p, r)
		} else {
			beta := (rho / rhoPrev) * (alpha / omega)
			vs.AddScaled(p, -omega, v) // p_i -= ω v_i
			vs.Scale(beta, p)          // p_i *= β
			vs.AddScaled(p, 1, r)      // p_i += r_i
		}
		vs.Copy(phat, p)
		m.Apply(phat) // p^_i = M^{-1} p_i
		stats.PSolve++
		a.Apply(v, phat) // v_i = A p^_i
		stats.MatVec++

		alpha = rho / vs.Dot(rt, v)
		// Early check for tolerance.
		vs.AddScaled(r, -alpha, v)
		vs.Copy(s, r)
		rnorm := vs.Norm(r)
		stats.ResidualNorm = rnorm
		if rnorm/normb < tol {
			vs.AddScaled(x, alpha, phat)
			return x, nil
		}

		vs.Copy(shat, r)
		m.Apply(shat) // s^_i = M^{-1} s
		stats.PSolve++
		a.Apply(t, shat) // t_i = A s^_i
		stats.MatVec++

		omega = vs.Dot(t, s) / vs.Dot(t, t)
		vs.AddScaled(x, alpha, phat)
		vs.AddScaled(x, omega, shat)
		vs.AddScaled(r, -omega, t)

		rnorm = vs.Norm(r)
		stats.ResidualNorm = rnorm
		if rnorm/normb < tol {
			return x, nil
		}
		if math.Abs(omega) < dlamchE*dlamchE {
			return x, errors.New("iterative: omega breakdown")
		}
		rhoPrev = rho
	}
	return x, ErrIterationLimit
}
