// Copyright ©2016 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package iterative provides iterative solvers for systems of linear equations
//
//	A x = b,
//
// where A is a non-singular dim×dim matrix, and x and b are vectors of
// dimension dim.
//
// The solvers are written against a small set of capability interfaces
// (Vector, VectorSpace, LinearOperator, Preconditioner) so that the same
// solver code runs on any vector backend. The native subpackage provides the
// host-memory implementation; backends for accelerator-resident vectors can
// be plugged in by implementing VectorSpace for their storage.
//
// A solver issues one backend operation at a time and waits for its result,
// it never issues overlapping operations on the same vector. Backends are
// free to parallelize internally.
package iterative

// Vector is an opaque handle to a vector stored in some backend. All
// operations on the stored elements go through the VectorSpace that created
// the vector.
type Vector interface {
	// Len returns the number of elements of the vector.
	Len() int
}

// VectorSpace provides the bulk vector operations of a backend. Methods panic
// if a vector was not created by the same backend or if lengths do not match.
type VectorSpace interface {
	// NewVector returns a new zero vector of length n.
	NewVector(n int) Vector

	// Copy copies src into dst.
	Copy(dst, src Vector)

	// CopyN copies the first n elements of src into dst, leaving the
	// remaining elements of dst untouched.
	CopyN(dst, src Vector, n int)

	// CopyToSlice copies the first n elements of src into the host slice
	// dst.
	CopyToSlice(dst []float64, src Vector, n int)

	// Clear sets all elements of v to zero.
	Clear(v Vector)

	// At returns the i-th element of v.
	At(v Vector, i int) float64

	// SetAt sets the i-th element of v to alpha.
	SetAt(v Vector, i int, alpha float64)

	// Dot returns the inner product of a and b.
	Dot(a, b Vector) float64

	// Norm returns the Euclidean norm of v.
	Norm(v Vector) float64

	// Scale multiplies v by alpha in place.
	Scale(alpha float64, v Vector)

	// AddScaled adds alpha*s to dst in place.
	AddScaled(dst Vector, alpha float64, s Vector)
}

// LinearOperator represents the matrix A of the linear system in terms of the
// matrix-vector product. Solvers never modify the operator.
type LinearOperator interface {
	// Apply computes A*x and stores the result into dst. dst and x must
	// not be aliased.
	Apply(dst, x Vector)
}

// TransposeOperator is a LinearOperator that can also form products with the
// transpose of the matrix. It is required by solvers like BiCG that iterate
// on A and A^T simultaneously.
type TransposeOperator interface {
	LinearOperator

	// ApplyTrans computes A^T*x and stores the result into dst. dst and x
	// must not be aliased.
	ApplyTrans(dst, x Vector)
}

// Preconditioner transforms residual vectors to improve the convergence rate
// of a solver without changing the solution of the system.
type Preconditioner interface {
	// Apply replaces v with M^{-1} v in place.
	Apply(v Vector)
}

// TransposePreconditioner is a Preconditioner that can also apply the inverse
// of M^T. It is required by BiCG.
type TransposePreconditioner interface {
	Preconditioner

	// ApplyTrans replaces v with M^{-T} v in place.
	ApplyTrans(v Vector)
}

// Identity is the no-op preconditioner. Solving with Identity is equivalent
// to solving without preconditioning, including the exact sequence of
// floating-point operations performed.
var Identity TransposePreconditioner = identity{}

type identity struct{}

func (identity) Apply(Vector)      {}
func (identity) ApplyTrans(Vector) {}
