// Copyright ©2016 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import "time"

// CG implements the preconditioned conjugate gradient method for solving
// systems of linear equations with a symmetric positive definite matrix. For
// non-symmetric systems use GMRES or BiCGSTAB.
type CG struct {
	// Tolerance is the relative residual threshold. If it is zero, 1e-6
	// will be used.
	Tolerance float64

	// MaxIterations is the limit on the number of iterations. If it is
	// zero, twice the dimension of the system will be used.
	MaxIterations int
}

// Solve solves A x = b without preconditioning.
func (cg *CG) Solve(vs VectorSpace, a LinearOperator, b Vector) (Result, error) {
	return cg.SolvePrecond(vs, a, b, Identity)
}

// SolvePrecond solves A x = b with the preconditioner m. It returns
// ErrIterationLimit if the iteration budget is exhausted before the residual
// drops below the tolerance. Stats.ResidualNorm holds the norm of the final
// residual.
func (cg *CG) SolvePrecond(vs VectorSpace, a LinearOperator, b Vector, m Preconditioner) (Result, error) {
	stats := Stats{StartTime: time.Now()}
	x, err := cg.solve(vs, a, b, m, &stats)
	stats.Runtime = time.Since(stats.StartTime)
	return Result{X: x, Stats: stats}, err
}

func (cg *CG) solve(vs VectorSpace, a LinearOperator, b Vector, m Preconditioner, stats *Stats) (Vector, error) {
	n := b.Len()
	tol := cg.Tolerance
	if tol == 0 {
		tol = 1e-6
	}
	maxIter := cg.MaxIterations
	if maxIter == 0 {
		maxIter = 2 * n
	}

	x := vs.NewVector(n)
	r := vs.NewVector(n)
	z := vs.NewVector(n)
	p := vs.NewVector(n)
	w := vs.NewVector(n)

	vs.Copy(r, b) // x_0 = 0, r_0 = b
	normb := vs.Norm(b)
	if normb == 0 {
		return x, nil
	}

	var rho, rhoPrev float64
	for iter := 0; iter < maxIter; iter++ {
		stats.Iterations++

		vs.Copy(z, r)
		m.Apply(z) // z = M^{-1} r_{i-1}
		stats.PSolve++
		rho = vs.Dot(r, z) // ρ_i = r_{i-1} · z
		if iter == 0 {
			vs.Copy(p, z)
		} else {
			beta := rho / rhoPrev    // β = ρ_i / ρ_{i-1}
			vs.AddScaled(z, beta, p) // z = z + β p_{i-1}
			vs.Copy(p, z)            // p_i = z
		}

		a.Apply(w, p) // w = A p_i
		stats.MatVec++
		alpha := rho / vs.Dot(p, w) // α = ρ_i / (p_i · w)
		vs.AddScaled(x, alpha, p)   // x_i = x_{i-1} + α p_i
		vs.AddScaled(r, -alpha, w)  // r_i = r_{i-1} - α w

		rnorm := vs.Norm(r)
		stats.ResidualNorm = rnorm
		if rnorm/normb < tol {
			return x, nil
		}
		rhoPrev = rho
	}
	return x, ErrIterationLimit
}
