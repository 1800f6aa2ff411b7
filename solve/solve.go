// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solve reduces the global system to its free degrees of freedom
// and solves it, expanding the reduced displacement vector back to the full
// DOF ordering.
package solve

import (
	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/seismostudio/feacore/assemble"
	"github.com/seismostudio/feacore/mesh"
)

// FreeDofs returns the indices of every unrestrained DOF across msh's
// joints, in joint order, each joint contributing its 6 DOFs in
// (ux,uy,uz,rx,ry,rz) order.
func FreeDofs(msh mesh.Mesh) []int {
	var free []int
	for i, j := range msh.Joints {
		base := i * assemble.DofsPerJoint
		r := j.Restraint
		if !r.Ux {
			free = append(free, base+0)
		}
		if !r.Uy {
			free = append(free, base+1)
		}
		if !r.Uz {
			free = append(free, base+2)
		}
		if !r.Rx {
			free = append(free, base+3)
		}
		if !r.Ry {
			free = append(free, base+4)
		}
		if !r.Rz {
			free = append(free, base+5)
		}
	}
	return free
}

// Solve reduces sys.K/sys.F to the free DOFs in freeDofs, solves the
// resulting linear system and expands the result back to sys.TotalDof,
// leaving restrained DOFs at zero.
//
// It first attempts a direct LU factorization (gonum's VecDense.SolveVec,
// equivalent in shape to the source system's np.linalg.solve); only when
// that factorization reports the matrix is singular or near-singular does it
// fall back to an SVD-based least-squares solution (mirroring
// solve_linear_system's try/except around np.linalg.lstsq), rather than
// pre-emptively computing a condition number on every call, which would cost
// an extra O(n^3) decomposition on the common non-singular path for no
// benefit.
func Solve(sys assemble.System, freeDofs []int) ([]float64, []string, error) {
	var log []string
	n := len(freeDofs)

	Kr := mat.NewDense(n, n, nil)
	Fr := mat.NewVecDense(n, nil)
	for i, gi := range freeDofs {
		Fr.SetVec(i, sys.F[gi])
		for j, gj := range freeDofs {
			Kr.Set(i, j, sys.K.At(gi, gj))
		}
	}

	var ur mat.VecDense
	err := ur.SolveVec(Kr, Fr)
	if err != nil {
		log = append(log, io.Sf("solve: singular system detected (%v), falling back to least-squares", err))
		x, lstsqErr := leastSquares(Kr, Fr)
		if lstsqErr != nil {
			return nil, log, lstsqErr
		}
		ur = *x
	}

	full := make([]float64, sys.TotalDof)
	for i, gi := range freeDofs {
		full[gi] = ur.AtVec(i)
	}
	return full, log, nil
}

// svdRcond is the relative singular-value cutoff below which a mode is
// treated as part of the null space and excluded from the pseudoinverse,
// matching the intent of numpy's rcond=None (machine-precision) default.
const svdRcond = 1e-12

// leastSquares solves Kr*x = Fr via the Moore-Penrose pseudoinverse built
// from Kr's singular value decomposition, used only once a direct solve has
// reported Kr singular: x = V * Sigma^+ * U^T * Fr, with any singular value
// smaller than svdRcond times the largest treated as zero.
func leastSquares(Kr *mat.Dense, Fr *mat.VecDense) (*mat.VecDense, error) {
	var svd mat.SVD
	ok := svd.Factorize(Kr, mat.SVDThin)
	if !ok {
		return nil, chk.Err("solve: SVD factorization failed on singular system")
	}

	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	n := Fr.Len()
	threshold := 0.0
	if len(values) > 0 {
		threshold = values[0] * svdRcond
	}

	// y = U^T * Fr
	y := make([]float64, len(values))
	for k := range values {
		var sum float64
		for i := 0; i < n; i++ {
			sum += u.At(i, k) * Fr.AtVec(i)
		}
		if values[k] > threshold {
			y[k] = sum / values[k]
		}
	}

	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		var sum float64
		for k := range values {
			sum += v.At(i, k) * y[k]
		}
		out.SetVec(i, sum)
	}
	return out, nil
}
