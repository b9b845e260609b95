// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package native provides the host-memory vector backend for the solvers in
// the iterative package.
package native

import (
	"gonum.org/v1/gonum/floats"

	"github.com/vladimir-ch/iterative"
)

// Vector is a vector stored in host memory.
type Vector []float64

// NewVector returns a zero host vector of length n.
func NewVector(n int) Vector { return make(Vector, n) }

// Len implements iterative.Vector.
func (v Vector) Len() int { return len(v) }

// Space implements iterative.VectorSpace on host memory. The zero value is
// ready to use.
//
// All methods panic if a vector is not a native Vector or if lengths do not
// match.
type Space struct{}

var _ iterative.VectorSpace = Space{}

func vec(v iterative.Vector) Vector {
	nv, ok := v.(Vector)
	if !ok {
		panic("native: not a native vector")
	}
	return nv
}

// NewVector implements iterative.VectorSpace.
func (Space) NewVector(n int) iterative.Vector { return make(Vector, n) }

// Copy implements iterative.VectorSpace.
func (Space) Copy(dst, src iterative.Vector) {
	d, s := vec(dst), vec(src)
	if len(d) != len(s) {
		panic("native: vector length mismatch")
	}
	copy(d, s)
}

// CopyN implements iterative.VectorSpace.
func (Space) CopyN(dst, src iterative.Vector, n int) {
	copy(vec(dst)[:n], vec(src)[:n])
}

// CopyToSlice implements iterative.VectorSpace.
func (Space) CopyToSlice(dst []float64, src iterative.Vector, n int) {
	copy(dst[:n], vec(src)[:n])
}

// Clear implements iterative.VectorSpace.
func (Space) Clear(v iterative.Vector) {
	clear(vec(v))
}

// At implements iterative.VectorSpace.
func (Space) At(v iterative.Vector, i int) float64 { return vec(v)[i] }

// SetAt implements iterative.VectorSpace.
func (Space) SetAt(v iterative.Vector, i int, alpha float64) { vec(v)[i] = alpha }

// Dot implements iterative.VectorSpace.
func (Space) Dot(a, b iterative.Vector) float64 {
	return floats.Dot(vec(a), vec(b))
}

// Norm implements iterative.VectorSpace.
func (Space) Norm(v iterative.Vector) float64 {
	return floats.Norm(vec(v), 2)
}

// Scale implements iterative.VectorSpace.
func (Space) Scale(alpha float64, v iterative.Vector) {
	floats.Scale(alpha, vec(v))
}

// AddScaled implements iterative.VectorSpace.
func (Space) AddScaled(dst iterative.Vector, alpha float64, s iterative.Vector) {
	floats.AddScaled(vec(dst), alpha, vec(s))
}
