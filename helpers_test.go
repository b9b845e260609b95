// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative_test

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/vladimir-ch/iterative/internal/sparse"
	"github.com/vladimir-ch/iterative/native"
)

type testCase struct {
	name  string
	n     int
	a     native.Op
	diag  []float64 // Matrix diagonal, for Jacobi preconditioning.
	iters int
	tol   float64
}

// randomSPD returns a random symmetric positive-definite n×n system.
func randomSPD(n int, rnd *rand.Rand) testCase {
	lda := n
	a := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a[i*lda+j] = rnd.Float64()
		}
	}
	diag := make([]float64, n)
	for i := 0; i < n; i++ {
		a[i*lda+i] += float64(n)
		diag[i] = a[i*lda+i]
	}
	bi := blas64.Implementation()
	matVec := func(dst, x []float64) {
		bi.Dsymv(blas.Upper, n, 1, a, lda, x, 1, 0, dst, 1)
	}
	return testCase{
		name: fmt.Sprintf("randomSPD n=%v", n),
		n:    n,
		a: native.Op{
			MatVec:      matVec,
			MatTransVec: matVec, // The matrix is symmetric.
		},
		diag:  diag,
		iters: 10 * n,
		tol:   1e-8,
	}
}

// laplacian2D returns the system matrix of the five-point stencil of the
// Laplacian on an nx×ny grid, assembled through the DOK builder.
func laplacian2D(nx, ny int) testCase {
	n := nx * ny
	m := sparse.NewDOK(n, n)
	diag := make([]float64, n)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			i := y*nx + x
			m.SetAt(i, i, 4)
			diag[i] = 4
			if x > 0 {
				m.SetAt(i, i-1, -1)
			}
			if x < nx-1 {
				m.SetAt(i, i+1, -1)
			}
			if y > 0 {
				m.SetAt(i, i-nx, -1)
			}
			if y < ny-1 {
				m.SetAt(i, i+nx, -1)
			}
		}
	}
	c := m.Compile()
	return testCase{
		name:  fmt.Sprintf("laplacian2D %vx%v", nx, ny),
		n:     n,
		a:     native.Op{MatVec: c.MulVec, MatTransVec: c.MulTransVec},
		diag:  diag,
		iters: 10 * n,
		tol:   1e-8,
	}
}

// convDiff2D returns the system matrix of an upwind discretization of a
// convection-diffusion equation on an nx×ny grid. The matrix is
// non-symmetric for non-zero wind.
func convDiff2D(nx, ny int, wind float64) testCase {
	n := nx * ny
	m := sparse.NewCOO(n, n)
	diag := make([]float64, n)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			i := y*nx + x
			d := 4 + 2*wind
			m.Append(i, i, d)
			diag[i] = d
			if x > 0 {
				m.Append(i, i-1, -1-wind)
			}
			if x < nx-1 {
				m.Append(i, i+1, -1+wind)
			}
			if y > 0 {
				m.Append(i, i-nx, -1)
			}
			if y < ny-1 {
				m.Append(i, i+nx, -1)
			}
		}
	}
	c := m.Compile()
	return testCase{
		name:  fmt.Sprintf("convDiff2D %vx%v wind=%v", nx, ny, wind),
		n:     n,
		a:     native.Op{MatVec: c.MulVec, MatTransVec: c.MulTransVec},
		diag:  diag,
		iters: 10 * n,
		tol:   1e-8,
	}
}

// onesSystem returns the right-hand side for which the vector of all ones is
// the solution of tc, and that solution.
func onesSystem(tc testCase) (b, want native.Vector) {
	want = make(native.Vector, tc.n)
	for i := range want {
		want[i] = 1
	}
	b = make(native.Vector, tc.n)
	tc.a.MatVec(b, want)
	return b, want
}
