// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package native

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/vladimir-ch/iterative"
)

// Op adapts matrix-vector product functions on raw slices to the operator
// interfaces of the iterative package.
type Op struct {
	// MatVec computes A*x and stores the result into dst. It must be
	// non-nil.
	MatVec func(dst, x []float64)

	// MatTransVec computes A^T*x and stores the result into dst. It may
	// be nil if no solver needing transpose products is used.
	MatTransVec func(dst, x []float64)
}

var _ iterative.TransposeOperator = Op{}

// Apply implements iterative.LinearOperator.
func (o Op) Apply(dst, x iterative.Vector) {
	if o.MatVec == nil {
		panic("native: nil matrix-vector multiplication")
	}
	o.MatVec(vec(dst), vec(x))
}

// ApplyTrans implements iterative.TransposeOperator.
func (o Op) ApplyTrans(dst, x iterative.Vector) {
	if o.MatTransVec == nil {
		panic("native: nil transpose matrix-vector multiplication")
	}
	o.MatTransVec(vec(dst), vec(x))
}

// DenseOp adapts a gonum matrix to the operator interfaces of the iterative
// package.
type DenseOp struct {
	A mat.Matrix
}

var _ iterative.TransposeOperator = DenseOp{}

// Apply implements iterative.LinearOperator.
func (d DenseOp) Apply(dst, x iterative.Vector) {
	dv := mat.NewVecDense(dst.Len(), vec(dst))
	dv.MulVec(d.A, mat.NewVecDense(x.Len(), vec(x)))
}

// ApplyTrans implements iterative.TransposeOperator.
func (d DenseOp) ApplyTrans(dst, x iterative.Vector) {
	dv := mat.NewVecDense(dst.Len(), vec(dst))
	dv.MulVec(d.A.T(), mat.NewVecDense(x.Len(), vec(x)))
}

// Jacobi is the diagonal preconditioner
//
//	M = diag(A),
//
// applied as an element-wise scaling by InvDiag, the precomputed reciprocals
// of the diagonal of A.
type Jacobi struct {
	InvDiag []float64
}

var _ iterative.TransposePreconditioner = Jacobi{}

// Apply implements iterative.Preconditioner.
func (j Jacobi) Apply(v iterative.Vector) {
	floats.Mul(vec(v), j.InvDiag)
}

// ApplyTrans implements iterative.TransposePreconditioner. A diagonal matrix
// is symmetric, so it is identical to Apply.
func (j Jacobi) ApplyTrans(v iterative.Vector) { j.Apply(v) }
