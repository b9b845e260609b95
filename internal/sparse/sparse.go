// Copyright ©2017 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sparse provides simple sparse matrix formats for backing linear
// operators in tests.
package sparse

// COO is a coordinate-format builder for sparse matrices. Duplicate entries
// contribute additively to the matrix-vector products.
type COO struct {
	r, c int

	rows, cols []int
	vals       []float64
}

// NewCOO returns an empty r×c coordinate matrix.
func NewCOO(r, c int) *COO {
	return &COO{r: r, c: c}
}

// Dims returns the dimensions of the matrix.
func (m *COO) Dims() (r, c int) { return m.r, m.c }

// Append adds the entry v at (i, j).
func (m *COO) Append(i, j int, v float64) {
	if i < 0 || m.r <= i {
		panic("sparse: row index out of range")
	}
	if j < 0 || m.c <= j {
		panic("sparse: column index out of range")
	}
	m.rows = append(m.rows, i)
	m.cols = append(m.cols, j)
	m.vals = append(m.vals, v)
}

// Compile returns the matrix in compressed sparse row form.
func (m *COO) Compile() *CSR {
	// Counting sort of the entries by row.
	indptr := make([]int, m.r+1)
	for _, i := range m.rows {
		indptr[i+1]++
	}
	for i := 0; i < m.r; i++ {
		indptr[i+1] += indptr[i]
	}
	indices := make([]int, len(m.vals))
	data := make([]float64, len(m.vals))
	next := make([]int, m.r)
	copy(next, indptr[:m.r])
	for k, v := range m.vals {
		i := m.rows[k]
		indices[next[i]] = m.cols[k]
		data[next[i]] = v
		next[i]++
	}
	return &CSR{
		r:       m.r,
		c:       m.c,
		indptr:  indptr,
		indices: indices,
		data:    data,
	}
}

// DOK is a dictionary-of-keys builder for sparse matrices with random access
// to individual entries.
type DOK struct {
	r, c int

	data map[index]float64
}

type index struct {
	row, col int
}

// NewDOK returns an empty r×c dictionary-of-keys matrix.
func NewDOK(r, c int) *DOK {
	return &DOK{
		r:    r,
		c:    c,
		data: make(map[index]float64),
	}
}

// Dims returns the dimensions of the matrix.
func (m *DOK) Dims() (r, c int) { return m.r, m.c }

// At returns the entry at (i, j).
func (m *DOK) At(i, j int) float64 {
	m.check(i, j)
	return m.data[index{i, j}]
}

// SetAt sets the entry at (i, j) to v.
func (m *DOK) SetAt(i, j int, v float64) {
	m.check(i, j)
	m.data[index{i, j}] = v
}

func (m *DOK) check(i, j int) {
	if i < 0 || m.r <= i {
		panic("sparse: row index out of range")
	}
	if j < 0 || m.c <= j {
		panic("sparse: column index out of range")
	}
}

// Compile returns the matrix in compressed sparse row form.
func (m *DOK) Compile() *CSR {
	coo := NewCOO(m.r, m.c)
	for ij, v := range m.data {
		coo.Append(ij.row, ij.col, v)
	}
	return coo.Compile()
}

// CSR is a sparse matrix in compressed sparse row form supporting
// matrix-vector products.
type CSR struct {
	r, c int

	indptr  []int
	indices []int
	data    []float64
}

// Dims returns the dimensions of the matrix.
func (m *CSR) Dims() (r, c int) { return m.r, m.c }

// MulVec computes A*x and stores the result into dst.
func (m *CSR) MulVec(dst, x []float64) {
	if m.c != len(x) {
		panic("sparse: dimension mismatch")
	}
	if m.r != len(dst) {
		panic("sparse: dimension mismatch")
	}
	for i := 0; i < m.r; i++ {
		var sum float64
		for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
			sum += m.data[k] * x[m.indices[k]]
		}
		dst[i] = sum
	}
}

// MulTransVec computes A^T*x and stores the result into dst.
func (m *CSR) MulTransVec(dst, x []float64) {
	if m.c != len(dst) {
		panic("sparse: dimension mismatch")
	}
	if m.r != len(x) {
		panic("sparse: dimension mismatch")
	}
	for i := range dst {
		dst[i] = 0
	}
	for i := 0; i < m.r; i++ {
		for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
			dst[m.indices[k]] += m.data[k] * x[i]
		}
	}
}
