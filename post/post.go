// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package post recovers per-station internal frame forces and support
// reactions from a solved displacement vector.
package post

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/seismostudio/feacore/assemble"
	"github.com/seismostudio/feacore/mesh"
	"github.com/seismostudio/feacore/model"
	"github.com/seismostudio/feacore/result"
)

// minSegmentLength below which a sub-element reports all-zero forces rather
// than dividing by a near-zero length.
const minSegmentLength = 1e-4

// Displacements extracts the six-component displacement of every original
// joint from the full solution vector u.
func Displacements(original model.StructuralModel, msh mesh.Mesh, u []float64) []result.JointDisplacement {
	out := make([]result.JointDisplacement, 0, len(original.Joints))
	for _, j := range original.Joints {
		idx, ok := msh.JointIndex[j.ID]
		if !ok {
			continue
		}
		out = append(out, jointDisplacementAt(j.ID, msh, u, idx))
	}
	return out
}

func jointDisplacementAt(jointID int, msh mesh.Mesh, u []float64, idx int) result.JointDisplacement {
	base := idx * assemble.DofsPerJoint
	return result.JointDisplacement{
		JointID: jointID,
		Ux:      u[base+0],
		Uy:      u[base+1],
		Uz:      u[base+2],
		Rx:      u[base+3],
		Ry:      u[base+4],
		Rz:      u[base+5],
	}
}

// FrameResults computes the detailed per-station displacement and force
// breakdown of every original frame.
func FrameResults(original model.StructuralModel, msh mesh.Mesh, u []float64) map[int]result.DetailedFrameResult {
	out := make(map[int]result.DetailedFrameResult, len(msh.FrameMapping))

	for _, frame := range original.Frames {
		chain, ok := msh.FrameMapping[frame.ID]
		if !ok {
			continue
		}
		section := original.FindSection(frame.SectionID)
		material := func() *model.Material {
			if section == nil {
				return nil
			}
			return original.FindMaterial(section.MaterialID)
		}()

		n := len(chain)
		stations := make([]float64, n)
		disps := make([]result.JointDisplacement, n)
		forces := make([]result.FrameForces, n)
		for i, idx := range chain {
			stations[i] = float64(i) / float64(n-1)
			disps[i] = jointDisplacementAt(msh.Joints[idx].ID, msh, u, idx)
		}

		if section != nil && material != nil {
			for i := 0; i < n-1; i++ {
				idxA, idxB := chain[i], chain[i+1]
				nodeA, nodeB := msh.Joints[idxA], msh.Joints[idxB]
				uA := dofSlice(u, idxA)
				uB := dofSlice(u, idxB)
				start, end := segmentForces(nodeA, nodeB, uA, uB, *section, *material, frame.Orientation)
				forces[i] = start
				if i == n-2 {
					forces[i+1] = end
				}
			}
		}

		out[frame.ID] = result.DetailedFrameResult{
			Stations:      stations,
			Displacements: disps,
			Forces:        forces,
		}
	}
	return out
}

func dofSlice(u []float64, idx int) [6]float64 {
	base := idx * assemble.DofsPerJoint
	var d [6]float64
	copy(d[:], u[base:base+6])
	return d
}

// segmentForces recovers the local-axis internal forces at both ends of one
// meshed sub-element, in kN and kN.m.
//
// Ported from the source system's calculate_segment_forces: it builds its
// own rotation matrix directly from the direction cosines and the section
// orientation angle (a distinct construction from frameelem.Transformation,
// with its own vertical special case keyed on |cx|,|cz| < 0.001 rather than
// |cy| > 0.99), rotates the end displacement/rotation vectors into local
// axes, and recovers P, T, V2/M3 and V3/M2 from the same stiffness
// coefficients as frameelem.Stiffness applied directly to the rotated end
// states. M3 at the end is reported as the raw local moment (not negated)
// while M2 at the end is negated, an asymmetry carried over unchanged from
// the source formulation rather than "fixed" into a uniform sign.
func segmentForces(nodeA, nodeB model.Joint, uA, uB [6]float64, section model.FrameSection, material model.Material, orientationDeg float64) (start, end result.FrameForces) {
	dx := nodeB.X - nodeA.X
	dy := nodeB.Y - nodeA.Y
	dz := nodeB.Z - nodeA.Z
	L := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if L < minSegmentLength {
		return result.FrameForces{}, result.FrameForces{}
	}

	cx, cy, cz := dx/L, dy/L, dz/L
	beta := orientationDeg * math.Pi / 180

	var R [3][3]float64
	if math.Abs(cx) < 0.001 && math.Abs(cz) < 0.001 {
		if cy > 0 {
			R[0][1] = 1
			R[1][0] = -math.Cos(beta)
			R[1][2] = math.Sin(beta)
			R[2][0] = math.Sin(beta)
			R[2][2] = math.Cos(beta)
		} else {
			R[0][1] = -1
			R[1][0] = math.Cos(beta)
			R[1][2] = math.Sin(beta)
			R[2][0] = -math.Sin(beta)
			R[2][2] = math.Cos(beta)
		}
	} else {
		c1 := math.Sqrt(cx*cx + cz*cz)
		s, c := math.Sin(beta), math.Cos(beta)
		R[0][0], R[0][1], R[0][2] = cx, cy, cz
		R[1][0] = (-cx*cy*c - cz*s) / c1
		R[1][1] = c1 * c
		R[1][2] = (-cy*cz*c + cx*s) / c1
		R[2][0] = (cx*cy*s - cz*c) / c1
		R[2][1] = -c1 * s
		R[2][2] = (cy*cz*s + cx*c) / c1
	}

	uAt := transform3(R, uA[0:3])
	rAt := transform3(R, uA[3:6])
	uBt := transform3(R, uB[0:3])
	rBt := transform3(R, uB[3:6])

	E := material.E * 1e6
	G := material.G * 1e6
	A := section.Properties.A
	Ix := section.Properties.J
	Iy := section.Properties.Iy
	Iz := section.Properties.Iz

	L2 := L * L
	L3 := L2 * L

	kbz1 := 12 * E * Iz / L3
	kbz2 := 6 * E * Iz / L2
	kbz3 := 4 * E * Iz / L
	kbz4 := 2 * E * Iz / L

	P := (E * A / L) * (uBt[0] - uAt[0])
	T := (G * Ix / L) * (rBt[0] - rAt[0])

	FyA := kbz1*uAt[1] + kbz2*rAt[2] - kbz1*uBt[1] + kbz2*rBt[2]
	MzA := kbz2*uAt[1] + kbz3*rAt[2] - kbz2*uBt[1] + kbz4*rBt[2]
	MzB := kbz2*uAt[1] + kbz4*rAt[2] - kbz2*uBt[1] + kbz3*rBt[2]

	V2 := FyA
	M3 := -MzA
	M3End := MzB

	FzA := (12*E*Iy/L3)*uAt[2] + (-6*E*Iy/L2)*rAt[1] + (-12*E*Iy/L3)*uBt[2] + (-6*E*Iy/L2)*rBt[1]
	MyA := (-6*E*Iy/L2)*uAt[2] + (4*E*Iy/L)*rAt[1] + (6*E*Iy/L2)*uBt[2] + (2*E*Iy/L)*rBt[1]
	MyB := (-6*E*Iy/L2)*uAt[2] + (2*E*Iy/L)*rAt[1] + (6*E*Iy/L2)*uBt[2] + (4*E*Iy/L)*rBt[1]

	V3 := FzA
	M2 := MyA
	M2End := -MyB

	const toKilo = 1.0 / 1000.0
	start = result.FrameForces{P: P * toKilo, V2: V2 * toKilo, V3: V3 * toKilo, T: T * toKilo, M2: M2 * toKilo, M3: M3 * toKilo}
	end = result.FrameForces{P: P * toKilo, V2: V2 * toKilo, V3: V3 * toKilo, T: T * toKilo, M2: M2End * toKilo, M3: M3End * toKilo}
	return start, end
}

func transform3(R [3][3]float64, v []float64) [3]float64 {
	return [3]float64{
		R[0][0]*v[0] + R[0][1]*v[1] + R[0][2]*v[2],
		R[1][0]*v[0] + R[1][1]*v[1] + R[1][2]*v[2],
		R[2][0]*v[0] + R[2][1]*v[1] + R[2][2]*v[2],
	}
}

// Reactions computes support reactions as R = K*u - F over the full,
// unreduced system, reading off the 6 components at every original joint's
// solver index and converting from N/N.m to kN/kN.m.
func Reactions(original model.StructuralModel, msh mesh.Mesh, sys assemble.System, u []float64) []result.JointReaction {
	uVec := mat.NewVecDense(len(u), u)
	var ku mat.VecDense
	ku.MulVec(sys.K, uVec)

	out := make([]result.JointReaction, 0, len(original.Joints))
	for _, j := range original.Joints {
		idx, ok := msh.JointIndex[j.ID]
		if !ok {
			continue
		}
		base := idx * assemble.DofsPerJoint
		out = append(out, result.JointReaction{
			JointID: j.ID,
			Fx:      (ku.AtVec(base+0) - sys.F[base+0]) / 1000,
			Fy:      (ku.AtVec(base+1) - sys.F[base+1]) / 1000,
			Fz:      (ku.AtVec(base+2) - sys.F[base+2]) / 1000,
			Mx:      (ku.AtVec(base+3) - sys.F[base+3]) / 1000,
			My:      (ku.AtVec(base+4) - sys.F[base+4]) / 1000,
			Mz:      (ku.AtVec(base+5) - sys.F[base+5]) / 1000,
		})
	}
	return out
}

// MaxDisplacement returns the largest translational displacement magnitude
// over disps.
func MaxDisplacement(disps []result.JointDisplacement) float64 {
	max := 0.0
	for _, d := range disps {
		mag := math.Sqrt(d.Ux*d.Ux + d.Uy*d.Uy + d.Uz*d.Uz)
		if mag > max {
			max = mag
		}
	}
	return max
}
