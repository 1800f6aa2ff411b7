// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package assemble builds the global stiffness matrix and load vector for a
// single load case over a meshed model.
package assemble

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/seismostudio/feacore/frameelem"
	"github.com/seismostudio/feacore/linalg"
	"github.com/seismostudio/feacore/mesh"
	"github.com/seismostudio/feacore/model"
)

// DofsPerJoint is the number of degrees of freedom carried by one joint: 3
// translations, 3 rotations.
const DofsPerJoint = 6

// Gravity is the standard acceleration used for self-weight loads, m/s^2.
const Gravity = 9.81

// kNToN converts the kN / kN.m units point and distributed loads are
// specified in (spec.md section 3) into the N / N.m the stiffness
// formulation is expressed in; the same factor serves forces and moments.
const kNToN = 1000.0

// SparseThreshold is the total DOF count above which the sparse assembly
// path engages when SolverConfig.UseSparseSolver is set (spec.md section 5).
const SparseThreshold = 100

// System is the assembled global linear system: K is always a dense matrix
// by the time assembly returns (see linalg.Triplet's doc comment for why the
// sparse path still converges on mat.Dense), F is the load vector, and
// UsedSparse records which scatter path built it, for logging.
type System struct {
	K         *mat.Dense
	F         []float64
	TotalDof  int
	UsedSparse bool
}

// Global assembles the stiffness matrix and the load vector for one load
// case over msh, resolving sections/materials from original (the
// pre-meshing model, since point loads, distributed loads and the section
// lookups are all keyed by original ids).
//
// Ported from the source system's per-frame assembly loop and its three load
// kinds (self-weight, point loads, distributed loads) inside
// analyze_structure; the self-weight and point-load blocks translate nearly
// line for line, while the distributed-load block's segment clipping against
// each sub-element is kept in distributed.go to keep this file to topology
// and the two simple load kinds.
func Global(original model.StructuralModel, msh mesh.Mesh, loadCase model.LoadCase, cfg model.SolverConfig) (System, []string, error) {
	var log []string

	nodeCount := len(msh.Joints)
	totalDof := nodeCount * DofsPerJoint
	log = append(log, io.Sf("assemble: system DOF = %d", totalDof))

	useSparse := cfg.UseSparseSolver && totalDof > SparseThreshold

	var K *mat.Dense
	var skipLog []string
	if useSparse {
		log = append(log, io.Sf("assemble: using sparse scatter path (DOF=%d)", totalDof))
		var tr linalg.Triplet
		tr.Init(totalDof, totalDof, totalDof*24)
		var err error
		skipLog, err = scatterStiffness(&tr, msh, original)
		if err != nil {
			return System{}, log, err
		}
		K = tr.ToMatrix(nil)
	} else {
		log = append(log, io.Sf("assemble: using dense scatter path (DOF=%d)", totalDof))
		K = mat.NewDense(totalDof, totalDof, nil)
		var err error
		skipLog, err = scatterStiffnessDense(K, msh, original)
		if err != nil {
			return System{}, log, err
		}
	}
	log = append(log, skipLog...)

	F := make([]float64, totalDof)

	for _, pc := range loadCase.Patterns {
		pattern := original.FindLoadPattern(pc.PatternID)
		if pattern == nil {
			log = append(log, io.Sf("assemble: unknown load pattern %q, skipped", pc.PatternID))
			continue
		}
		if pattern.SelfWeight {
			applySelfWeight(F, msh, original, pc.Scale)
		}
		applyPointLoads(F, msh, original, pattern.ID, pc.Scale)
		segLog := applyDistributedLoads(F, msh, original, pattern.ID, pc.Scale, cfg.VerboseLog)
		log = append(log, segLog...)
	}

	if len(original.ShellElements) > 0 || len(original.AreaLoads) > 0 {
		log = append(log, io.Sf("assemble: %d shell element(s) and %d area load(s) present, both ignored (plate/shell stiffness is out of scope)", len(original.ShellElements), len(original.AreaLoads)))
	}

	return System{K: K, F: F, TotalDof: totalDof, UsedSparse: useSparse}, log, nil
}

func dofIndex(nodeIdx, localDof int) int { return nodeIdx*DofsPerJoint + localDof }

// resolveElement looks up the joints, section and material a meshed frame
// needs to contribute stiffness. When it cannot, it reports why via reason
// so callers can log a recoverable-issue warning instead of silently
// dropping the element (spec.md's propagation policy: missing section or
// material on an individual element is logged and the element skipped, not
// a hard error).
func resolveElement(f model.Frame, joints []model.Joint, jointIndex map[int]int, original model.StructuralModel) (elem frameelem.Element, startIdx, endIdx int, reason string, ok bool) {
	startIdx, okI := jointIndex[f.JointI]
	endIdx, okJ := jointIndex[f.JointJ]
	if !okI || !okJ {
		return frameelem.Element{}, 0, 0, "unresolved joint index", false
	}
	section := original.FindSection(f.SectionID)
	if section == nil {
		return frameelem.Element{}, 0, 0, io.Sf("section %q not found", f.SectionID), false
	}
	material := original.FindMaterial(section.MaterialID)
	if material == nil {
		return frameelem.Element{}, 0, 0, io.Sf("material %q not found", section.MaterialID), false
	}
	return frameelem.Element{
		JointI:      joints[startIdx],
		JointJ:      joints[endIdx],
		Section:     *section,
		Material:    *material,
		Orientation: f.Orientation,
	}, startIdx, endIdx, "", true
}

func scatterStiffnessDense(K *mat.Dense, msh mesh.Mesh, original model.StructuralModel) ([]string, error) {
	var log []string
	for _, f := range msh.Frames {
		e, startIdx, endIdx, reason, ok := resolveElement(f, msh.Joints, msh.JointIndex, original)
		if !ok {
			if reason != "" {
				log = append(log, io.Sf("assemble: frame %d skipped: %s", f.ID, reason))
			}
			continue
		}
		kg, err := e.GlobalStiffness()
		if err != nil {
			return log, chk.Err("frame %d: %v", f.ID, err)
		}
		dofs := elementDofs(startIdx, endIdx)
		for i, gi := range dofs {
			for j, gj := range dofs {
				K.Set(gi, gj, K.At(gi, gj)+kg.At(i, j))
			}
		}
	}
	return log, nil
}

func scatterStiffness(tr *linalg.Triplet, msh mesh.Mesh, original model.StructuralModel) ([]string, error) {
	var log []string
	for _, f := range msh.Frames {
		e, startIdx, endIdx, reason, ok := resolveElement(f, msh.Joints, msh.JointIndex, original)
		if !ok {
			if reason != "" {
				log = append(log, io.Sf("assemble: frame %d skipped: %s", f.ID, reason))
			}
			continue
		}
		kg, err := e.GlobalStiffness()
		if err != nil {
			return log, chk.Err("frame %d: %v", f.ID, err)
		}
		dofs := elementDofs(startIdx, endIdx)
		for i, gi := range dofs {
			for j, gj := range dofs {
				v := kg.At(i, j)
				if v != 0 {
					tr.Put(gi, gj, v)
				}
			}
		}
	}
	return log, nil
}

func elementDofs(startIdx, endIdx int) []int {
	dofs := make([]int, 0, 12)
	for _, idx := range [2]int{startIdx, endIdx} {
		base := idx * DofsPerJoint
		for k := 0; k < DofsPerJoint; k++ {
			dofs = append(dofs, base+k)
		}
	}
	return dofs
}

func applySelfWeight(F []float64, msh mesh.Mesh, original model.StructuralModel, scale float64) {
	for _, f := range msh.Frames {
		e, startIdx, endIdx, _, ok := resolveElement(f, msh.Joints, msh.JointIndex, original)
		if !ok {
			continue
		}
		w := e.Material.Density * e.Section.Properties.A * Gravity
		totalWeight := w * e.Length()
		nodal := (totalWeight / 2) * scale
		F[dofIndex(startIdx, 1)] -= nodal
		F[dofIndex(endIdx, 1)] -= nodal
	}
}

func applyPointLoads(F []float64, msh mesh.Mesh, original model.StructuralModel, patternID string, scale float64) {
	for _, pl := range original.PointLoads {
		if pl.PatternID != patternID {
			continue
		}
		idx, ok := msh.JointIndex[pl.JointID]
		if !ok {
			continue
		}
		F[dofIndex(idx, 0)] += pl.Fx * scale * kNToN
		F[dofIndex(idx, 1)] += pl.Fy * scale * kNToN
		F[dofIndex(idx, 2)] += pl.Fz * scale * kNToN
		F[dofIndex(idx, 3)] += pl.Mx * scale * kNToN
		F[dofIndex(idx, 4)] += pl.My * scale * kNToN
		F[dofIndex(idx, 5)] += pl.Mz * scale * kNToN
	}
}

func distance(a, b model.Joint) float64 {
	dx, dy, dz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
