// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package frameelem computes the local stiffness matrix and the
// local-to-global rotation of a single prismatic 3D frame element: a
// two-joint, twelve-degree-of-freedom Euler-Bernoulli beam with independent
// bending about both local transverse axes, axial and torsional stiffness.
package frameelem

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/gosl/chk"

	"github.com/seismostudio/feacore/model"
)

// Ndof is the number of degrees of freedom per element: 6 per joint, 2
// joints.
const Ndof = 12

// unitsPerMPa converts the Material's E/G (given in MPa per spec.md section
// 3) to the Pa the rest of the stiffness formula is expressed in.
const unitsPerMPa = 1e6

// Element is a single frame element's end joints, section and material,
// resolved from ids by the caller (assemble).
type Element struct {
	JointI, JointJ model.Joint
	Section        model.FrameSection
	Material       model.Material
	Orientation    float64 // degrees
}

// Length returns the straight-line distance between the element's end
// joints.
func (e Element) Length() float64 {
	dx := e.JointJ.X - e.JointI.X
	dy := e.JointJ.Y - e.JointI.Y
	dz := e.JointJ.Z - e.JointI.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// minLength is the length below which an element is considered degenerate
// (spec.md section 4.4): both Stiffness and Transformation reject it.
const minLength = 1e-6

// Stiffness builds the 12x12 local stiffness matrix of e. Iz governs bending
// that displaces local y and rotates about local z; Iy governs bending that
// displaces local z and rotates about local y, matching the DOF ordering
// (ux, uy, uz, rx, ry, rz) twice, once per end joint.
func (e Element) Stiffness() (*mat.Dense, error) {
	L := e.Length()
	if L < minLength {
		return nil, chk.Err("frame element has zero or near-zero length: %g", L)
	}

	E := e.Material.E * unitsPerMPa
	G := e.Material.G * unitsPerMPa
	A := e.Section.Properties.A
	Iy := e.Section.Properties.Iy
	Iz := e.Section.Properties.Iz
	J := e.Section.Properties.J

	k := mat.NewDense(Ndof, Ndof, nil)
	set := func(i, j int, v float64) { k.Set(i, j, v) }

	EAL := (E * A) / L
	set(0, 0, EAL)
	set(0, 6, -EAL)
	set(6, 0, -EAL)
	set(6, 6, EAL)

	GJL := (G * J) / L
	set(3, 3, GJL)
	set(3, 9, -GJL)
	set(9, 3, -GJL)
	set(9, 9, GJL)

	L2 := L * L
	L3 := L2 * L

	EIzL3 := 12 * E * Iz / L3
	EIzL2 := 6 * E * Iz / L2
	EIzL := E * Iz / L

	set(1, 1, EIzL3)
	set(1, 5, EIzL2)
	set(1, 7, -EIzL3)
	set(1, 11, EIzL2)

	set(5, 1, EIzL2)
	set(5, 5, 4*EIzL)
	set(5, 7, -EIzL2)
	set(5, 11, 2*EIzL)

	set(7, 1, -EIzL3)
	set(7, 5, -EIzL2)
	set(7, 7, EIzL3)
	set(7, 11, -EIzL2)

	set(11, 1, EIzL2)
	set(11, 5, 2*EIzL)
	set(11, 7, -EIzL2)
	set(11, 11, 4*EIzL)

	EIyL3 := 12 * E * Iy / L3
	EIyL2 := 6 * E * Iy / L2
	EIyL := E * Iy / L

	set(2, 2, EIyL3)
	set(2, 4, -EIyL2)
	set(2, 8, -EIyL3)
	set(2, 10, -EIyL2)

	set(4, 2, -EIyL2)
	set(4, 4, 4*EIyL)
	set(4, 8, EIyL2)
	set(4, 10, 2*EIyL)

	set(8, 2, -EIyL3)
	set(8, 4, EIyL2)
	set(8, 8, EIyL3)
	set(8, 10, EIyL2)

	set(10, 2, -EIyL2)
	set(10, 4, 2*EIyL)
	set(10, 8, EIyL2)
	set(10, 10, 4*EIyL)

	return k, nil
}

// Transformation builds the 12x12 block-diagonal rotation matrix (four
// copies of the 3x3 direction-cosine matrix R) that maps local displacements
// to global ones.
//
// The local y-axis is built by the same near-vertical special case as the
// source geometry: members within 0.99 of vertical (|cy| > 0.99) take local
// y along global X rather than letting the general formula divide by a
// near-zero horizontal projection. Orientation then rotates the (y,z) pair
// about the local x-axis by Orientation degrees, applied only when
// the angle is non-negligible.
func (e Element) Transformation() (*mat.Dense, error) {
	L := e.Length()
	if L < minLength {
		return nil, chk.Err("frame element has zero or near-zero length: %g", L)
	}

	dx := e.JointJ.X - e.JointI.X
	dy := e.JointJ.Y - e.JointI.Y
	dz := e.JointJ.Z - e.JointI.Z
	cx := dx / L
	cy := dy / L
	cz := dz / L

	var lyx, lyy, lyz float64
	if math.Abs(cy) > 0.99 {
		lyx, lyy, lyz = 1, 0, 0
	} else {
		temp := math.Sqrt(cx*cx + cz*cz)
		lyx = -cx * cy / temp
		lyy = temp
		lyz = -cz * cy / temp
	}

	lzx := cy*lyz - cz*lyy
	lzy := cz*lyx - cx*lyz
	lzz := cx*lyy - cy*lyx

	if math.Abs(e.Orientation) > 1e-6 {
		theta := e.Orientation * math.Pi / 180.0
		cosT, sinT := math.Cos(theta), math.Sin(theta)

		lyxN := cosT*lyx - sinT*lzx
		lyyN := cosT*lyy - sinT*lzy
		lyzN := cosT*lyz - sinT*lzz

		lzxN := sinT*lyx + cosT*lzx
		lzyN := sinT*lyy + cosT*lzy
		lzzN := sinT*lyz + cosT*lzz

		lyx, lyy, lyz = lyxN, lyyN, lyzN
		lzx, lzy, lzz = lzxN, lzyN, lzzN
	}

	R := mat.NewDense(3, 3, []float64{
		cx, cy, cz,
		lyx, lyy, lyz,
		lzx, lzy, lzz,
	})

	T := mat.NewDense(Ndof, Ndof, nil)
	for block := 0; block < 4; block++ {
		off := block * 3
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				T.Set(off+r, off+c, R.At(r, c))
			}
		}
	}
	return T, nil
}

// GlobalStiffness returns T^T * Klocal * T, the element's contribution to
// the global stiffness matrix, expressed in the global joint DOF ordering
// (JointI's 6 DOFs then JointJ's 6 DOFs).
func (e Element) GlobalStiffness() (*mat.Dense, error) {
	kl, err := e.Stiffness()
	if err != nil {
		return nil, err
	}
	T, err := e.Transformation()
	if err != nil {
		return nil, err
	}
	var tmp, kg mat.Dense
	tmp.Mul(kl, T)
	kg.Mul(T.T(), &tmp)
	return &kg, nil
}
