// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyze

import (
	"errors"
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/seismostudio/feacore/model"
	"github.com/seismostudio/feacore/result"
)

func simplySupportedBeam() model.StructuralModel {
	return model.StructuralModel{
		Joints: []model.Joint{
			{ID: 1, X: 0, Y: 0, Z: 0, Restraint: model.Restraint{Ux: true, Uy: true, Uz: true, Rx: true}},
			{ID: 2, X: 5, Y: 0, Z: 0, Restraint: model.Restraint{Uy: true, Uz: true, Rx: true}},
		},
		Frames: []model.Frame{
			{ID: 1, JointI: 1, JointJ: 2, SectionID: "S1"},
		},
		Materials: []model.Material{
			{ID: "M1", E: 200000, G: 80000, Nu: 0.3, Density: 7850},
		},
		Sections: []model.FrameSection{
			{ID: "S1", MaterialID: "M1", Properties: model.SectionProps{A: 0.01, Iy: 8.33e-6, Iz: 8.33e-6, J: 1e-5}},
		},
		LoadPatterns: []model.LoadPattern{
			{ID: "P1"},
		},
		LoadCases: []model.LoadCase{
			{ID: "LC1", Name: "Gravity UDL", Patterns: []model.LoadCasePattern{{PatternID: "P1", Scale: 1}}},
		},
		DistributedFrameLoads: []model.DistributedFrameLoad{
			{FrameID: 1, PatternID: "P1", StartDistance: 0, EndDistance: 1, StartMagnitude: -10, EndMagnitude: -10, Direction: model.GlobalY},
		},
	}
}

// Scenario A: simply supported beam under a uniform gravity-direction load.
func TestScenarioSimplySupportedBeam(t *testing.T) {
	chk.PrintTitle("ScenarioSimplySupportedBeam")
	m := simplySupportedBeam()
	cfg := model.DefaultSolverConfig()
	cfg.MeshingSegments = 10
	cfg.EnableIntersectionCheck = false

	out, err := Analyze(m, "LC1", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsValid {
		t.Fatalf("expected IsValid=true on a successful analysis")
	}

	fd := out.FrameDetailedResults[1]
	mid := len(fd.Stations) / 2
	E := m.Materials[0].E * 1e6
	I := m.Sections[0].Properties.Iz
	w := 10000.0
	L := 5.0
	wantUy := -(5 * w * L * L * L * L) / (384 * E * I)
	gotUy := fd.Displacements[mid].Uy
	if math.Abs((gotUy-wantUy)/wantUy) > 0.01 {
		t.Fatalf("midspan uy = %g, want approx %g", gotUy, wantUy)
	}

	wantM3 := 31.25
	gotM3 := math.Abs(fd.Forces[mid].M3)
	if math.Abs((gotM3-wantM3)/wantM3) > 0.02 {
		t.Fatalf("midspan M3 = %g, want approx %g", gotM3, wantM3)
	}

	for _, r := range out.Reactions {
		if math.Abs((math.Abs(r.Fy)-25)/25) > 0.01 {
			t.Fatalf("reaction Fy at joint %d = %g, want approx 25", r.JointID, r.Fy)
		}
	}
}

func cantilever() model.StructuralModel {
	return model.StructuralModel{
		Joints: []model.Joint{
			{ID: 1, X: 0, Y: 0, Z: 0, Restraint: model.Restraint{Ux: true, Uy: true, Uz: true, Rx: true, Ry: true, Rz: true}},
			{ID: 2, X: 2, Y: 0, Z: 0},
		},
		Frames: []model.Frame{
			{ID: 1, JointI: 1, JointJ: 2, SectionID: "S1"},
		},
		Materials: []model.Material{
			{ID: "M1", E: 200000, G: 80000, Nu: 0.3, Density: 7850},
		},
		Sections: []model.FrameSection{
			{ID: "S1", MaterialID: "M1", Properties: model.SectionProps{A: 0.01, Iy: 8.33e-6, Iz: 8.33e-6, J: 1e-5}},
		},
		LoadPatterns: []model.LoadPattern{
			{ID: "P1"},
		},
		LoadCases: []model.LoadCase{
			{ID: "LC1", Name: "Tip load", Patterns: []model.LoadCasePattern{{PatternID: "P1", Scale: 1}}},
		},
		PointLoads: []model.PointLoad{
			{JointID: 2, PatternID: "P1", Fy: -10},
		},
	}
}

// Scenario B: cantilever with a tip point load.
func TestScenarioCantileverTipLoad(t *testing.T) {
	chk.PrintTitle("ScenarioCantileverTipLoad")
	m := cantilever()
	cfg := model.DefaultSolverConfig()
	cfg.EnableIntersectionCheck = false

	out, err := Analyze(m, "LC1", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sec := m.Sections[0]
	mat := m.Materials[0]
	E := mat.E * 1e6
	I := sec.Properties.Iz
	P := 10000.0
	L := 2.0
	wantTipUy := -(P * L * L * L) / (3 * E * I)

	var tipUy float64
	for _, d := range out.Displacements {
		if d.JointID == 2 {
			tipUy = d.Uy
		}
	}
	if math.Abs((tipUy-wantTipUy)/wantTipUy) > 0.01 {
		t.Fatalf("tip uy = %g, want approx %g", tipUy, wantTipUy)
	}

	fd := out.FrameDetailedResults[1]
	fixedM3 := math.Abs(fd.Forces[0].M3)
	if math.Abs((fixedM3-20)/20) > 0.02 {
		t.Fatalf("fixed-end M3 = %g, want approx 20", fixedM3)
	}

	for _, r := range out.Reactions {
		if r.JointID == 1 {
			if math.Abs((r.Fy-10)/10) > 0.01 {
				t.Fatalf("reaction Fy = %g, want approx 10", r.Fy)
			}
		}
	}
}

// Scenario C: self-weight only cantilever, forces confined to the loaded plane.
func TestScenarioSelfWeightOnly(t *testing.T) {
	chk.PrintTitle("ScenarioSelfWeightOnly")
	m := cantilever()
	m.PointLoads = nil
	m.LoadPatterns[0].SelfWeight = true
	cfg := model.DefaultSolverConfig()
	cfg.EnableIntersectionCheck = false

	out, err := Analyze(m, "LC1", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, d := range out.Displacements {
		if d.JointID == 2 {
			if d.Uy == 0 {
				t.Fatalf("expected nonzero tip uy under self-weight")
			}
			chk.Scalar(t, "ux", 1e-12, d.Ux, 0)
			chk.Scalar(t, "uz", 1e-12, d.Uz, 0)
		}
	}

	fd := out.FrameDetailedResults[1]
	for _, f := range fd.Forces {
		chk.Scalar(t, "M2", 1e-9, f.M2, 0)
		chk.Scalar(t, "V3", 1e-9, f.V3, 0)
		chk.Scalar(t, "T", 1e-9, f.T, 0)
	}
}

// Scenario D: intersection preprocessing followed by meshing/assembly must
// not error, and a second pass of preprocessing alone is idempotent
// (exercised directly against preprocess in its own package tests; here we
// only check Analyze tolerates the split model end to end).
func TestScenarioIntersectionPreprocessing(t *testing.T) {
	chk.PrintTitle("ScenarioIntersectionPreprocessing")
	m := model.StructuralModel{
		Joints: []model.Joint{
			{ID: 1, X: 0, Y: 0, Z: 0, Restraint: model.Restraint{Ux: true, Uy: true, Uz: true, Rx: true, Ry: true, Rz: true}},
			{ID: 2, X: 10, Y: 0, Z: 0, Restraint: model.Restraint{Ux: true, Uy: true, Uz: true, Rx: true, Ry: true, Rz: true}},
			{ID: 3, X: 5, Y: -5, Z: 0, Restraint: model.Restraint{Ux: true, Uy: true, Uz: true, Rx: true, Ry: true, Rz: true}},
			{ID: 4, X: 5, Y: 5, Z: 0, Restraint: model.Restraint{Ux: true, Uy: true, Uz: true, Rx: true, Ry: true, Rz: true}},
		},
		Frames: []model.Frame{
			{ID: 1, JointI: 1, JointJ: 2, SectionID: "S1"},
			{ID: 2, JointI: 3, JointJ: 4, SectionID: "S1"},
		},
		Materials: []model.Material{
			{ID: "M1", E: 200000, G: 80000, Nu: 0.3, Density: 7850},
		},
		Sections: []model.FrameSection{
			{ID: "S1", MaterialID: "M1", Properties: model.SectionProps{A: 0.01, Iy: 8.33e-6, Iz: 8.33e-6, J: 1e-5}},
		},
		LoadPatterns: []model.LoadPattern{{ID: "P1"}},
		LoadCases: []model.LoadCase{
			{ID: "LC1", Name: "Empty", Patterns: []model.LoadCasePattern{{PatternID: "P1", Scale: 1}}},
		},
	}
	cfg := model.DefaultSolverConfig()
	cfg.EnableIntersectionCheck = true
	if _, err := Analyze(m, "LC1", cfg); err != nil {
		t.Fatalf("unexpected error analyzing a model requiring intersection splitting: %v", err)
	}
}

// Scenario E: combination equals the scaled sum of two cases.
func TestScenarioLoadCombination(t *testing.T) {
	chk.PrintTitle("ScenarioLoadCombination")
	m := cantilever()
	dl := m
	dl.LoadCases = []model.LoadCase{{ID: "DL", Name: "Dead", Patterns: []model.LoadCasePattern{{PatternID: "P1", Scale: 1}}}}
	dl.PointLoads = []model.PointLoad{{JointID: 2, PatternID: "P1", Fy: -5}}

	ll := m
	ll.LoadCases = []model.LoadCase{{ID: "LL", Name: "Live", Patterns: []model.LoadCasePattern{{PatternID: "P1", Scale: 1}}}}
	ll.PointLoads = []model.PointLoad{{JointID: 2, PatternID: "P1", Fy: -8}}

	cfg := model.DefaultSolverConfig()
	cfg.EnableIntersectionCheck = false

	dlResult, err := Analyze(dl, "DL", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	llResult, err := Analyze(ll, "LL", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	combo := model.LoadCombination{
		ID:   "C1",
		Name: "1.2DL+1.6LL",
		Cases: []model.LoadCombinationCase{
			{CaseID: "DL", Scale: 1.2},
			{CaseID: "LL", Scale: 1.6},
		},
	}
	resultsMap := map[string]result.AnalysisResults{
		"DL": dlResult,
		"LL": llResult,
	}

	out, err := Combine(combo, resultsMap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, d := range out.Displacements {
		if d.JointID != 2 {
			continue
		}
		var dlUy, llUy float64
		for _, dd := range dlResult.Displacements {
			if dd.JointID == 2 {
				dlUy = dd.Uy
			}
		}
		for _, dd := range llResult.Displacements {
			if dd.JointID == 2 {
				llUy = dd.Uy
			}
		}
		want := 1.2*dlUy + 1.6*llUy
		chk.Scalar(t, "combined tip uy", 1e-9, d.Uy, want)
	}
}

func TestScenarioRestraintCompliance(t *testing.T) {
	chk.PrintTitle("ScenarioRestraintCompliance")
	m := cantilever()
	cfg := model.DefaultSolverConfig()
	cfg.EnableIntersectionCheck = false
	out, err := Analyze(m, "LC1", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, d := range out.Displacements {
		if d.JointID == 1 {
			chk.Scalar(t, "ux", 0, d.Ux, 0)
			chk.Scalar(t, "uy", 0, d.Uy, 0)
			chk.Scalar(t, "uz", 0, d.Uz, 0)
			chk.Scalar(t, "rx", 0, d.Rx, 0)
			chk.Scalar(t, "ry", 0, d.Ry, 0)
			chk.Scalar(t, "rz", 0, d.Rz, 0)
		}
	}
}

func TestAnalyzeUnknownLoadCase(t *testing.T) {
	chk.PrintTitle("AnalyzeUnknownLoadCase")
	m := cantilever()
	out, err := Analyze(m, "DOES-NOT-EXIST", model.DefaultSolverConfig())
	if !errors.Is(err, ErrUnknownLoadCase) {
		t.Fatalf("expected ErrUnknownLoadCase, got %v", err)
	}
	if out.IsValid {
		t.Fatalf("expected IsValid=false on a failed analysis")
	}
	if len(out.Displacements) != 0 || len(out.Reactions) != 0 || len(out.FrameDetailedResults) != 0 {
		t.Fatalf("expected empty result fields on a failed analysis, got %+v", out)
	}
	if len(out.Log) == 0 {
		t.Fatalf("expected the aborting error to be appended to the log")
	}
}

func TestMeshRefinementInvariance(t *testing.T) {
	chk.PrintTitle("MeshRefinementInvariance")
	m := cantilever()
	cfg1 := model.DefaultSolverConfig()
	cfg1.MeshingSegments = 1
	cfg1.EnableIntersectionCheck = false

	cfg20 := cfg1
	cfg20.MeshingSegments = 20

	out1, err := Analyze(m, "LC1", cfg1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out20, err := Analyze(m, "LC1", cfg20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, d1 := range out1.Displacements {
		for _, d20 := range out20.Displacements {
			if d1.JointID != d20.JointID {
				continue
			}
			if d1.Uy != 0 {
				if math.Abs((d1.Uy-d20.Uy)/d1.Uy) > 1e-9 {
					t.Fatalf("joint %d uy differs across mesh refinement: %g vs %g", d1.JointID, d1.Uy, d20.Uy)
				}
			}
		}
	}
}

func TestMeshStationCountInvariant(t *testing.T) {
	chk.PrintTitle("MeshStationCountInvariant")
	m := cantilever()
	cfg := model.DefaultSolverConfig()
	cfg.MeshingSegments = 7
	cfg.EnableIntersectionCheck = false
	out, err := Analyze(m, "LC1", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fd := out.FrameDetailedResults[1]
	chk.IntAssert(len(fd.Stations), 8)
	chk.IntAssert(len(fd.Displacements), 8)
	chk.IntAssert(len(fd.Forces), 8)
	for i := 1; i < len(fd.Stations); i++ {
		if fd.Stations[i] <= fd.Stations[i-1] {
			t.Fatalf("stations must be strictly increasing, got %v", fd.Stations)
		}
	}
}

// Invariant 3: the sum of reactions plus the sum of applied forces is zero
// per global component (here Fy, the only loaded direction).
func TestEquilibriumReactionsBalanceAppliedLoad(t *testing.T) {
	chk.PrintTitle("EquilibriumReactionsBalanceAppliedLoad")
	m := simplySupportedBeam()
	cfg := model.DefaultSolverConfig()
	cfg.MeshingSegments = 8
	cfg.EnableIntersectionCheck = false

	out, err := Analyze(m, "LC1", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sumReactionsFy float64
	for _, r := range out.Reactions {
		sumReactionsFy += r.Fy
	}

	// Uniform -10 kN/m gravity-direction load over the 5 m span.
	appliedFy := -10.0 * 5.0

	chk.Scalar(t, "reactions + applied load", 1e-6, sumReactionsFy+appliedFy, 0)
}

// Invariant 5: scaling every load by alpha scales every displacement, force
// and reaction by the same alpha.
func TestLinearityScalingLoadsScalesResponse(t *testing.T) {
	chk.PrintTitle("LinearityScalingLoadsScalesResponse")
	const alpha = 2.5

	base := cantilever()
	cfg := model.DefaultSolverConfig()
	cfg.EnableIntersectionCheck = false

	baseOut, err := Analyze(base, "LC1", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	scaled := cantilever()
	for i := range scaled.PointLoads {
		scaled.PointLoads[i].Fy *= alpha
	}
	scaledOut, err := Analyze(scaled, "LC1", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range baseOut.Displacements {
		want := baseOut.Displacements[i].Uy * alpha
		got := scaledOut.Displacements[i].Uy
		if want == 0 {
			chk.Scalar(t, "uy", 1e-12, got, 0)
			continue
		}
		if math.Abs((got-want)/want) > 1e-9 {
			t.Fatalf("joint %d uy not linear: base=%g scaled=%g want=%g", baseOut.Displacements[i].JointID, baseOut.Displacements[i].Uy, got, want)
		}
	}

	fdBase := baseOut.FrameDetailedResults[1]
	fdScaled := scaledOut.FrameDetailedResults[1]
	for i := range fdBase.Forces {
		want := fdBase.Forces[i].M3 * alpha
		got := fdScaled.Forces[i].M3
		if want == 0 {
			chk.Scalar(t, "M3", 1e-9, got, 0)
			continue
		}
		if math.Abs((got-want)/want) > 1e-9 {
			t.Fatalf("station %d M3 not linear: got=%g want=%g", i, got, want)
		}
	}

	for i := range baseOut.Reactions {
		want := baseOut.Reactions[i].Fy * alpha
		got := scaledOut.Reactions[i].Fy
		if math.Abs((got-want)/want) > 1e-9 {
			t.Fatalf("reaction %d Fy not linear: got=%g want=%g", i, got, want)
		}
	}
}

// Dense and sparse assembly must agree within solver tolerance regardless of
// which path total DOF count selects (spec.md section 9: "both code paths
// must yield identical results").
func TestDenseAndSparseAssemblyAgree(t *testing.T) {
	chk.PrintTitle("DenseAndSparseAssemblyAgree")
	m := simplySupportedBeam()

	cfgDense := model.DefaultSolverConfig()
	cfgDense.MeshingSegments = 20 // 21 joints * 6 DOF = 126 DOF, above SparseThreshold
	cfgDense.EnableIntersectionCheck = false
	cfgDense.UseSparseSolver = false

	cfgSparse := cfgDense
	cfgSparse.UseSparseSolver = true

	denseOut, err := Analyze(m, "LC1", cfgDense)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sparseOut, err := Analyze(m, "LC1", cfgSparse)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range denseOut.Displacements {
		chk.Scalar(t, "uy", 1e-9, sparseOut.Displacements[i].Uy, denseOut.Displacements[i].Uy)
	}
	for i := range denseOut.Reactions {
		chk.Scalar(t, "reaction Fy", 1e-9, sparseOut.Reactions[i].Fy, denseOut.Reactions[i].Fy)
	}
}
