// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"errors"
	"math"
	"time"
)

// BiCG implements the biconjugate gradient iterative method with
// preconditioning for solving systems of linear equations with a
// non-symmetric matrix. For symmetric positive definite systems use CG.
//
// BiCG iterates on A and A^T simultaneously and therefore needs a
// TransposeOperator and a TransposePreconditioner.
type BiCG struct {
	// Tolerance is the relative residual threshold. If it is zero, 1e-6
	// will be used.
	Tolerance float64

	// MaxIterations is the limit on the number of iterations. If it is
	// zero, twice the dimension of the system will be used.
	MaxIterations int
}

// Solve solves A x = b without preconditioning.
func (b *BiCG) Solve(vs VectorSpace, a TransposeOperator, rhs Vector) (Result, error) {
	return b.SolvePrecond(vs, a, rhs, Identity)
}

// SolvePrecond solves A x = b with the preconditioner m. It returns a rho
// breakdown error when the method degenerates, and ErrIterationLimit if the
// iteration budget is exhausted before the residual drops below the
// tolerance. Stats.ResidualNorm holds the norm of the final residual.
func (b *BiCG) SolvePrecond(vs VectorSpace, a TransposeOperator, rhs Vector, m TransposePreconditioner) (Result, error) {
	stats := Stats{StartTime: time.Now()}
	x, err := b.solve(vs, a, rhs, m, &stats)
	stats.Runtime = time.Since(stats.StartTime)
	return Result{X: x, Stats: stats}, err
}

func (b *BiCG) solve(vs VectorSpace, a TransposeOperator, rhs Vector, m TransposePreconditioner, stats *Stats) (Vector, error) {
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
	z := vs.NewVector(n)
	zt := vs.NewVector(n)
	p := vs.NewVector(n)
	pt := vs.NewVector(n)

	vs.Copy(r, rhs) // x_0 = 0, r_0 = b
	normb := vs.Norm(rhs)
	if normb == 0 {
		return x, nil
	}
	vs.Copy(rt, r)

	var rho, rhoPrev float64
	for iter := 0; iter < maxIter; iter++ {
		stats.Iterations++

		vs.Copy(z, r)
		m.Apply(z) // z = M^{-1} r_{i-1}
		stats.PSolve++
		vs.Copy(zt, rt)
		m.ApplyTrans(zt) // zt = M^{-T} rt_{i-1}
		stats.PSolve++

		rho = vs.Dot(z, rt)
		if math.Abs(rho) < dlamchE*dlamchE {
			return x, errors.New("iterative: rho breakdown")
		}
		if iter > 0 {
			beta := rho / rhoPrev
			vs.AddScaled(z, beta, p)
			vs.AddScaled(zt, beta, pt)
		}
		vs.Copy(p, z)
		vs.Copy(pt, zt)

		a.Apply(z, p) // z == q
		stats.MatVec++
		a.ApplyTrans(zt, pt) // zt == qt
		stats.MatVec++

		alpha := rho / vs.Dot(pt, z)
		vs.AddScaled(x, alpha, p)
		vs.AddScaled(r, -alpha, z)

		rnorm := vs.Norm(r)
		stats.ResidualNorm = rnorm
		if rnorm/normb < tol {
			return x, nil
		}

		// Prepare for the next iteration.
		vs.AddScaled(rt, -alpha, zt)
		rhoPrev = rho
	}
	return x, ErrIterationLimit
}
