// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"math"
	"time"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// GMRES solves systems of linear equations with a general non-singular matrix
// using the restarted generalized minimum residual method in the Householder
// formulation of Walker's "A Simpler GMRES". Instead of orthogonalizing the
// Krylov basis explicitly, the method accumulates Householder reflections
// that represent the basis implicitly, which is numerically more stable than
// Gram-Schmidt.
//
// After at most Restart inner iterations the basis is discarded and the
// method restarts from the accumulated solution, bounding the memory and work
// per cycle.
type GMRES struct {
	// Tolerance is the relative residual threshold. The solve stops as
	// soon as the norm of the preconditioned residual divided by the norm
	// of b falls below it. If it is zero, 1e-10 will be used.
	Tolerance float64

	// MaxIterations is the total inner iteration budget across all
	// restarts. If it is zero, 300 will be used.
	MaxIterations int

	// Restart is the dimension of the Krylov subspace built before a
	// restart. If it is zero, 20 will be used. It is clamped to the
	// dimension of the system.
	Restart int

	// Monitor, if non-nil, is called once at the start of every restart
	// cycle and once after every completed inner iteration with the
	// current residual estimate.
	Monitor func(Progress)
}

// breakdownTol is 10 times the machine epsilon. A Householder diagonal below
// it signals that the solution already lies in the Krylov subspace built so
// far. The value affects convergence on ill-conditioned systems, keep it in
// sync with the tests.
const breakdownTol = 10 * machEps

func (g *GMRES) settings() (tol float64, maxIter, restart int) {
	tol = g.Tolerance
	if tol == 0 {
		tol = 1e-10
	}
	maxIter = g.MaxIterations
	if maxIter == 0 {
		maxIter = 300
	}
	restart = g.Restart
	if restart == 0 {
		restart = 20
	}
	return tol, maxIter, restart
}

// MaxRestarts returns the number of restarts the solver may perform after the
// first cycle, MaxIterations/Restart rounded down. When MaxIterations is an
// exact positive multiple of Restart the count is reduced by one so that a
// full extra cycle can never exceed the iteration budget.
func (g *GMRES) MaxRestarts() int {
	_, maxIter, restart := g.settings()
	r := maxIter / restart
	if r > 0 && r*restart == maxIter {
		return r - 1
	}
	return r
}

// Solve solves A x = b without preconditioning.
func (g *GMRES) Solve(vs VectorSpace, a LinearOperator, b Vector) Result {
	return g.SolvePrecond(vs, a, b, Identity)
}

// SolvePrecond solves A x = b with the preconditioner m applied to the
// residuals.
//
// GMRES reports no errors. Numerical breakdown of the basis construction
// means that the solution already lies in the constructed subspace and ends
// the cycle early, and an exhausted restart budget returns the best solution
// found so far. Convergence is decided on the preconditioned residual of the
// updated solution at every restart boundary, not on the running estimate,
// which loses accuracy near machine precision. Stats.ResidualNorm holds the
// relative residual when the tolerance was met, and the un-normalized
// residual norm when the budget ran out, so callers must inspect it to
// decide whether the solve converged.
//
// The operator, the preconditioner and b are not modified.
func (g *GMRES) SolvePrecond(vs VectorSpace, a LinearOperator, b Vector, m Preconditioner) Result {
	stats := Stats{StartTime: time.Now()}
	x := g.solve(vs, a, b, m, &stats)
	stats.Runtime = time.Since(stats.StartTime)
	return Result{X: x, Stats: stats}
}

func (g *GMRES) solve(vs VectorSpace, a LinearOperator, b Vector, m Preconditioner, stats *Stats) Vector {
	tol, _, restart := g.settings()
	n := b.Len()
	// A basis larger than the system would access storage out of range,
	// and the residual over the full space is certain to be zero anyway.
	dim := min(restart, n)

	s := &gmres{
		vs:      vs,
		a:       a,
		m:       m,
		monitor: g.Monitor,
		dim:     dim,
		tol:     tol,
		b:       b,
		x:       vs.NewVector(n),
		res:     vs.NewVector(n),
		vkt:     vs.NewVector(n),
		w:       vs.NewVector(n),
		u:       make([]Vector, dim),
		r:       make([]float64, dim*dim),
		projRhs: make([]float64, dim),
		stats:   stats,
	}
	for i := range s.u {
		s.u[i] = vs.NewVector(n)
	}

	s.normb = vs.Norm(b)
	if s.normb == 0 {
		// The solution of A x = 0 is the zero vector.
		return s.x
	}

	maxRestarts := g.MaxRestarts()
	for it := 0; ; it++ {
		// res = M^{-1} (b - A x)
		a.Apply(s.w, s.x)
		stats.MatVec++
		vs.Copy(s.res, s.b)
		vs.AddScaled(s.res, -1, s.w)
		m.Apply(s.res)
		stats.PSolve++

		s.rho0 = vs.Norm(s.res)
		if s.rho0/s.normb < tol {
			stats.ResidualNorm = s.rho0 / s.normb
			break
		}
		if it > maxRestarts {
			stats.ResidualNorm = s.rho0
			break
		}
		if s.monitor != nil {
			s.monitor(Progress{Restart: it, Iteration: stats.Iterations, ResidualNorm: s.rho0 / s.normb})
		}
		s.cycle(it)
	}
	return s.x
}

// gmres holds the state of one solve. The naming follows the Householder
// formulation: u are the reflector vectors, r the triangular factor stored
// transposed, rho the running residual magnitude.
type gmres struct {
	vs      VectorSpace
	a       LinearOperator
	m       Preconditioner
	monitor func(Progress)

	dim int // Effective Krylov dimension, at most the problem size.

	tol   float64
	normb float64

	b   Vector // Right-hand side, read-only.
	x   Vector // Accumulated solution.
	res Vector // Residual direction, reused as reflection workspace.
	vkt Vector // Candidate basis vector.
	w   Vector // Operator application scratch.

	// Householder reflectors. u[k] is finalized with unit norm during
	// inner iteration k and not modified afterwards.
	u []Vector
	// Triangular factor, dim×dim, stored transposed: column k of the
	// logical upper triangular matrix occupies r[k*dim : k*dim+k+1].
	r []float64
	// Rotated right-hand side of the projected system, overwritten in
	// place by the triangular solve.
	projRhs []float64

	rho0 float64 // Residual norm at the start of the cycle.
	rho  float64 // Relative residual magnitude tracked through the cycle.

	stats *Stats
}

// cycle performs one restart on the current residual: it builds a Krylov
// basis of size at most dim, solves the projected system and folds the
// correction into the solution. On entry res holds the preconditioned
// residual of x with norm rho0. Whether the updated solution converged is
// judged by the caller on a freshly computed residual; the rho recurrence is
// only accurate enough to decide when to end the cycle.
func (s *gmres) cycle(it int) {
	vs := s.vs

	// Keep only the direction, rho tracks the magnitude from here on.
	vs.Scale(1/s.rho0, s.res)
	s.rho = 1
	s.reset()

	k := 0
	for ; k < s.dim; k++ {
		s.stats.MatVec++
		s.stats.PSolve++
		if s.iterate(k) {
			// Breakdown. The solution lies, up to round-off, in the
			// subspace built so far, continuing would divide by a
			// near-zero diagonal.
			break
		}
		s.stats.Iterations++
		est := math.Abs(s.rho * s.rho0 / s.normb)
		if s.monitor != nil {
			s.monitor(Progress{Restart: it, Iteration: s.stats.Iterations, ResidualNorm: est})
		}
		if est < s.tol {
			k++ // Count the basis vector built in this iteration.
			break
		}
	}

	s.update(k)
}

func (s *gmres) reset() {
	for _, u := range s.u {
		s.vs.Clear(u)
	}
	clear(s.r)
	clear(s.projRhs)
}

// iterate performs inner iteration k: it forms the k-th candidate vector,
// derives the Householder reflector that zeroes its trailing part, takes the
// residual through the reflection and updates rho. It reports breakdown of
// the basis construction.
func (s *gmres) iterate(k int) (breakdown bool) {
	vs := s.vs

	// Candidate vector. For k > 0 it starts from the k-th standard basis
	// vector and the operator is conjugated with the reflections built so
	// far; the two-sided application keeps the basis orthonormal without
	// ever forming it.
	if k == 0 {
		s.a.Apply(s.vkt, s.res)
		s.m.Apply(s.vkt)
	} else {
		vs.Clear(s.vkt)
		vs.SetAt(s.vkt, k-1, 1)
		for i := k - 1; i >= 0; i-- {
			vs.AddScaled(s.vkt, -2*vs.Dot(s.u[i], s.vkt), s.u[i])
		}
		s.a.Apply(s.w, s.vkt)
		s.m.Apply(s.w)
		vs.Copy(s.vkt, s.w)
		for i := 0; i < k; i++ {
			vs.AddScaled(s.vkt, -2*vs.Dot(s.u[i], s.vkt), s.u[i])
		}
	}

	// The leading k elements of the candidate are already in reflected
	// coordinates and stay untouched. The magnitude of the diagonal
	// element follows from the Pythagorean relation between the norm of
	// the candidate and the norm of its leading part; round-off can drive
	// the difference slightly negative when the trailing part is
	// negligible.
	vs.Clear(s.u[k])
	vs.CopyN(s.u[k], s.vkt, k)
	var ukk float64
	if d := vs.Dot(s.vkt, s.vkt) - vs.Dot(s.u[k], s.u[k]); d > 0 {
		ukk = math.Sqrt(d)
	}
	// The sign is chosen opposite to the candidate's k-th component so
	// that finalizing the reflector below never cancels. With equal
	// signs, a candidate whose trailing part is already reduced would
	// leave u[k] with a vanishing norm, and normalizing it would poison
	// the basis.
	if vs.At(s.vkt, k) > 0 {
		ukk = -ukk
	}
	vs.SetAt(s.u[k], k, ukk)

	if math.Abs(ukk) < breakdownTol {
		return true
	}

	// Column k of the transposed triangular factor.
	vs.CopyToSlice(s.r[k*s.dim:], s.u[k], k+1)

	// Finalize the reflector, sign and scale chosen so that it zeroes the
	// trailing part of the candidate, and take the residual through it.
	vs.AddScaled(s.u[k], -1, s.vkt)
	vs.Scale(-1/vs.Norm(s.u[k]), s.u[k])
	vs.AddScaled(s.res, -2*vs.Dot(s.u[k], s.res), s.u[k])

	// Round-off can push res[k] just outside [-rho, rho], the domain of
	// the acos below (machine precision reached).
	resk := vs.At(s.res, k)
	if resk > s.rho {
		resk = s.rho
		vs.SetAt(s.res, k, resk)
	}
	if resk < -s.rho {
		resk = -s.rho
		vs.SetAt(s.res, k, resk)
	}
	s.projRhs[k] = resk

	// Residual norm of the solution over the first k+1 basis vectors, in
	// closed form instead of an extra norm computation.
	s.rho *= math.Sin(math.Acos(s.projRhs[k] / s.rho))

	return false
}

// update solves the projected k×k triangular system and folds the correction
// of this cycle into the accumulated solution. k is the basis size actually
// built; k == 0 leaves the solution unchanged.
func (s *gmres) update(k int) {
	vs := s.vs

	if k > 0 {
		// The factor is stored transposed, so the upper triangular
		// solve is a Dtrsv on the lower triangle with the transpose
		// flag.
		bi := blas64.Implementation()
		bi.Dtrsv(blas.Lower, blas.Trans, blas.NonUnit, k, s.r, s.dim, s.projRhs, 1)
	}

	// Reuse the residual direction as scratch for the correction.
	vs.Scale(s.projRhs[0], s.res)
	for i := 0; i < k-1; i++ {
		vs.SetAt(s.res, i, vs.At(s.res, i)+s.projRhs[i+1])
	}
	// Map the correction back out of the reflected coordinates, applying
	// the reflections in decreasing order.
	for i := k - 1; i >= 0; i-- {
		vs.AddScaled(s.res, -2*vs.Dot(s.u[i], s.res), s.u[i])
	}
	vs.Scale(s.rho0, s.res)
	vs.AddScaled(s.x, 1, s.res)
}
