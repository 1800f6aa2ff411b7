// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linalg provides the sparse scatter-then-compress matrix used by
// the assembler's sparse path. Its Init/Put/ToMatrix lifecycle mirrors
// gosl/la.Triplet, the sparse coefficient matrix the wider gofem codebase
// builds global Jacobians into, but stores entries in plain Go slices
// instead of going through la.Triplet's cgo-backed UMFPACK/MUMPS solver
// bindings: this core only ever needs the assembled matrix converted to a
// dense gonum matrix for solving (see solve.Solve), so reproducing the
// familiar scatter API without the cgo dependency keeps both the dense and
// sparse assembly paths honest about sharing one solve routine.
package linalg

import "gonum.org/v1/gonum/mat"

// Triplet is a sparse matrix under construction: entries are scattered via
// Put in any order, including repeated (i,j) pairs, which accumulate like a
// classic coordinate-format assembly matrix.
type Triplet struct {
	m, n int
	i    []int
	j    []int
	x    []float64
	pos  int
}

// Init allocates a Triplet for an m x n matrix with room for maxNnz entries.
// Calling Put more than maxNnz times grows the backing slices normally; the
// capacity is a sizing hint, not a hard limit.
func (t *Triplet) Init(m, n, maxNnz int) {
	t.m, t.n = m, n
	t.i = make([]int, 0, maxNnz)
	t.j = make([]int, 0, maxNnz)
	t.x = make([]float64, 0, maxNnz)
	t.pos = 0
}

// Put scatters one value at (i,j), accumulating with any prior entry at the
// same position.
func (t *Triplet) Put(i, j int, x float64) {
	t.i = append(t.i, i)
	t.j = append(t.j, j)
	t.x = append(t.x, x)
	t.pos++
}

// Size returns the matrix dimensions.
func (t *Triplet) Size() (m, n int) { return t.m, t.n }

// Nnz returns the number of scattered (not yet compressed) entries.
func (t *Triplet) Nnz() int { return t.pos }

// ToMatrix compresses the scattered entries into a dense gonum matrix,
// summing duplicate (i,j) contributions. A destination may be supplied to
// reuse its backing storage; pass nil to allocate a new one.
func (t *Triplet) ToMatrix(dest *mat.Dense) *mat.Dense {
	if dest == nil {
		dest = mat.NewDense(t.m, t.n, nil)
	}
	for k := 0; k < t.pos; k++ {
		dest.Set(t.i[k], t.j[k], dest.At(t.i[k], t.j[k])+t.x[k])
	}
	return dest
}
