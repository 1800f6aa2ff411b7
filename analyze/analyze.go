// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package analyze is the top-level entry point: it orchestrates
// preprocessing, meshing, assembly, solving and post-processing into a
// single load case analysis, and exposes load combination as a thin
// wrapper over combine.Combine.
package analyze

import (
	"errors"
	"time"

	"github.com/cpmech/gosl/io"

	"github.com/seismostudio/feacore/assemble"
	"github.com/seismostudio/feacore/combine"
	"github.com/seismostudio/feacore/geo"
	"github.com/seismostudio/feacore/mesh"
	"github.com/seismostudio/feacore/model"
	"github.com/seismostudio/feacore/post"
	"github.com/seismostudio/feacore/preprocess"
	"github.com/seismostudio/feacore/result"
	"github.com/seismostudio/feacore/solve"
)

// Analyze runs one load case through the full pipeline: optional
// intersection preprocessing, meshing, assembly, solving and
// post-processing. The input model m is never mutated; Analyze works on its
// own local copy throughout.
func Analyze(m model.StructuralModel, loadCaseID string, cfg model.SolverConfig) (result.AnalysisResults, error) {
	var log []string

	cfg, clamped := cfg.Normalize()
	if clamped {
		log = append(log, "analyze: meshing segment count clamped to [1,20]")
	}

	working := m
	if cfg.EnableIntersectionCheck {
		log = append(log, "analyze: running intersection detection")
		var splitLog []string
		working, splitLog = preprocess.Intersections(m, geo.DefaultTolerance)
		log = append(log, splitLog...)
	} else {
		log = append(log, "analyze: skipping intersection detection (disabled in config)")
	}

	loadCase := working.FindLoadCase(loadCaseID)
	if loadCase == nil {
		log = append(log, io.Sf("analyze: load case %q not found", loadCaseID))
		return failedResult(loadCaseID, log), newError(UnknownLoadCase, "load case %q not found", loadCaseID)
	}

	msh, meshLog := mesh.Build(working, cfg.MeshingSegments)
	log = append(log, meshLog...)

	sys, asmLog, err := assemble.Global(working, msh, *loadCase, cfg)
	log = append(log, asmLog...)
	if err != nil {
		log = append(log, io.Sf("analyze: assembling system: %v", err))
		return failedResult(loadCase.ID, log), newError(DegenerateElement, "assembling system: %v", err)
	}

	freeDofs := solve.FreeDofs(msh)
	log = append(log, io.Sf("analyze: solving system (free DOF: %d)", len(freeDofs)))
	u, solveLog, err := solve.Solve(sys, freeDofs)
	log = append(log, solveLog...)
	if err != nil {
		log = append(log, io.Sf("analyze: solving system: %v", err))
		return failedResult(loadCase.ID, log), newError(SingularSystem, "solving system: %v", err)
	}

	displacements := post.Displacements(working, msh, u)
	frameResults := post.FrameResults(working, msh, u)
	log = append(log, "analyze: calculating reactions")
	reactions := post.Reactions(working, msh, sys, u)

	log = append(log, "analyze: analysis complete")

	return result.AnalysisResults{
		CaseID:               loadCase.ID,
		CaseName:             loadCase.Name,
		Displacements:        displacements,
		FrameDetailedResults: frameResults,
		Reactions:            reactions,
		IsValid:              true,
		MaxDisplacement:      post.MaxDisplacement(displacements),
		Timestamp:            time.Now(),
		Log:                  log,
	}, nil
}

// failedResult builds the AnalysisResults a caller surfaces as a 400 when a
// structural error prevents producing any result (spec.md section 7):
// isValid is false, every slice/map is empty, and log carries the trail up
// to and including the error that aborted the run.
func failedResult(caseID string, log []string) result.AnalysisResults {
	return result.AnalysisResults{
		CaseID:  caseID,
		IsValid: false,
		Log:     log,
	}
}

// Combine superposes previously computed per-case results into a load
// combination result.
func Combine(combination model.LoadCombination, resultsMap map[string]result.AnalysisResults) (result.AnalysisResults, error) {
	out, err := combine.Combine(combination, resultsMap)
	if err != nil {
		failed := failedResult(combination.ID, []string{io.Sf("combine: %v", err)})
		switch {
		case errors.Is(err, combine.ErrIncompatibleStations):
			return failed, newError(IncompatibleStations, "%v", err)
		default:
			return failed, newError(MissingCase, "%v", err)
		}
	}
	return out, nil
}

// AnalyzeAll runs Analyze for every load case in m, returning a map keyed by
// case id. It stops and returns the first error encountered.
func AnalyzeAll(m model.StructuralModel, cfg model.SolverConfig) (map[string]result.AnalysisResults, error) {
	out := make(map[string]result.AnalysisResults, len(m.LoadCases))
	for _, lc := range m.LoadCases {
		r, err := Analyze(m, lc.ID, cfg)
		if err != nil {
			return nil, err
		}
		out[lc.ID] = r
	}
	return out, nil
}
