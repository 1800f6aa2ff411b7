// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package post

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/seismostudio/feacore/assemble"
	"github.com/seismostudio/feacore/mesh"
	"github.com/seismostudio/feacore/model"
	"github.com/seismostudio/feacore/result"
)

func simpleModel() model.StructuralModel {
	return model.StructuralModel{
		Joints: []model.Joint{
			{ID: 1, X: 0, Y: 0, Z: 0, Restraint: model.Restraint{Ux: true, Uy: true, Uz: true, Rx: true, Ry: true, Rz: true}},
			{ID: 2, X: 4, Y: 0, Z: 0},
		},
		Frames: []model.Frame{
			{ID: 1, JointI: 1, JointJ: 2, SectionID: "S1"},
		},
		Materials: []model.Material{
			{ID: "M1", E: 200000, G: 76923, Nu: 0.3, Density: 7850},
		},
		Sections: []model.FrameSection{
			{ID: "S1", MaterialID: "M1", Properties: model.SectionProps{A: 0.01, Iy: 8e-5, Iz: 8e-5, J: 1.6e-4}},
		},
	}
}

func TestDisplacementsRoundTrip(t *testing.T) {
	chk.PrintTitle("DisplacementsRoundTrip")
	m := simpleModel()
	msh, _ := mesh.Build(m, 2)
	u := make([]float64, len(msh.Joints)*assemble.DofsPerJoint)
	endIdx := msh.JointIndex[2]
	u[endIdx*assemble.DofsPerJoint+1] = 0.005

	disps := Displacements(m, msh, u)
	chk.IntAssert(len(disps), 2)
	for _, d := range disps {
		if d.JointID == 2 {
			chk.Scalar(t, "uy", 1e-12, d.Uy, 0.005)
		}
	}
}

func TestFrameResultsZeroDisplacementGivesZeroForces(t *testing.T) {
	chk.PrintTitle("FrameResultsZeroDisplacementGivesZeroForces")
	m := simpleModel()
	msh, _ := mesh.Build(m, 3)
	u := make([]float64, len(msh.Joints)*assemble.DofsPerJoint)
	frameResults := FrameResults(m, msh, u)
	fr := frameResults[1]
	chk.IntAssert(len(fr.Forces), 4)
	for _, f := range fr.Forces {
		chk.Scalar(t, "P", 1e-9, f.P, 0)
		chk.Scalar(t, "M3", 1e-9, f.M3, 0)
	}
}

func TestMaxDisplacement(t *testing.T) {
	chk.PrintTitle("MaxDisplacement")
	disps := []result.JointDisplacement{
		{JointID: 1, Ux: 3, Uy: 4, Uz: 0},
		{JointID: 2, Ux: 0, Uy: 0, Uz: 0},
	}
	chk.Scalar(t, "max displacement", 1e-12, MaxDisplacement(disps), 5)
}
