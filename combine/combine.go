// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package combine linearly superposes the results of previously computed
// load cases into a load combination result.
package combine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cpmech/gosl/io"

	"github.com/seismostudio/feacore/model"
	"github.com/seismostudio/feacore/result"
)

// ErrMissingCase and ErrIncompatibleStations are the two distinct failure
// modes Combine reports; wrap with fmt.Errorf's %w so callers can branch
// with errors.Is without parsing the message.
var (
	ErrMissingCase          = errors.New("combine: case referenced by combination has no results")
	ErrIncompatibleStations = errors.New("combine: frame has a different station count across cases")
)

// Combine superposes scaled per-case results per combination's cases.
//
// Ported from the source system's combine_results: every referenced case id
// is checked against resultsMap before any accumulation starts (a missing
// case aborts the whole combination rather than silently treating it as
// zero), after which displacements, per-frame detailed results and
// reactions are each summed with their case's scale factor.
func Combine(combination model.LoadCombination, resultsMap map[string]result.AnalysisResults) (result.AnalysisResults, error) {
	for _, c := range combination.Cases {
		if _, ok := resultsMap[c.CaseID]; !ok {
			return result.AnalysisResults{}, fmt.Errorf("%w: combination %q references %q", ErrMissingCase, combination.ID, c.CaseID)
		}
	}

	log := []string{io.Sf("combining results for %q", combination.Name)}

	dispMap := make(map[int]*result.JointDisplacement)
	var dispOrder []int

	frameMap := make(map[int]*result.DetailedFrameResult)
	var frameOrder []int

	reactionMap := make(map[int]*result.JointReaction)
	var reactionOrder []int

	for _, c := range combination.Cases {
		caseResult := resultsMap[c.CaseID]
		scale := c.Scale

		for _, d := range caseResult.Displacements {
			target, ok := dispMap[d.JointID]
			if !ok {
				target = &result.JointDisplacement{JointID: d.JointID}
				dispMap[d.JointID] = target
				dispOrder = append(dispOrder, d.JointID)
			}
			target.Ux += d.Ux * scale
			target.Uy += d.Uy * scale
			target.Uz += d.Uz * scale
			target.Rx += d.Rx * scale
			target.Ry += d.Ry * scale
			target.Rz += d.Rz * scale
		}

		stationCounts := make(map[int]int)
		for fid, detail := range caseResult.FrameDetailedResults {
			target, ok := frameMap[fid]
			if !ok {
				target = &result.DetailedFrameResult{
					Stations:      append([]float64(nil), detail.Stations...),
					Displacements: make([]result.JointDisplacement, len(detail.Displacements)),
					Forces:        make([]result.FrameForces, len(detail.Forces)),
				}
				for i, jd := range detail.Displacements {
					target.Displacements[i] = result.JointDisplacement{JointID: jd.JointID}
				}
				frameMap[fid] = target
				frameOrder = append(frameOrder, fid)
			}
			stationCounts[fid] = len(detail.Forces)
			if len(detail.Forces) != len(target.Forces) {
				return result.AnalysisResults{}, fmt.Errorf("%w: combination %q, frame %d (%d vs %d stations)", ErrIncompatibleStations, combination.ID, fid, len(detail.Forces), len(target.Forces))
			}
			for i, d := range detail.Displacements {
				t := &target.Displacements[i]
				t.Ux += d.Ux * scale
				t.Uy += d.Uy * scale
				t.Uz += d.Uz * scale
				t.Rx += d.Rx * scale
				t.Ry += d.Ry * scale
				t.Rz += d.Rz * scale
			}
			for i, f := range detail.Forces {
				t := &target.Forces[i]
				t.P += f.P * scale
				t.V2 += f.V2 * scale
				t.V3 += f.V3 * scale
				t.T += f.T * scale
				t.M2 += f.M2 * scale
				t.M3 += f.M3 * scale
			}
		}

		for _, r := range caseResult.Reactions {
			target, ok := reactionMap[r.JointID]
			if !ok {
				target = &result.JointReaction{JointID: r.JointID}
				reactionMap[r.JointID] = target
				reactionOrder = append(reactionOrder, r.JointID)
			}
			target.Fx += r.Fx * scale
			target.Fy += r.Fy * scale
			target.Fz += r.Fz * scale
			target.Mx += r.Mx * scale
			target.My += r.My * scale
			target.Mz += r.Mz * scale
		}
	}

	displacements := make([]result.JointDisplacement, 0, len(dispOrder))
	maxDisp := 0.0
	for _, id := range dispOrder {
		d := *dispMap[id]
		displacements = append(displacements, d)
		mag := math.Sqrt(d.Ux*d.Ux + d.Uy*d.Uy + d.Uz*d.Uz)
		if mag > maxDisp {
			maxDisp = mag
		}
	}

	frameResults := make(map[int]result.DetailedFrameResult, len(frameOrder))
	for _, id := range frameOrder {
		frameResults[id] = *frameMap[id]
	}

	reactions := make([]result.JointReaction, 0, len(reactionOrder))
	for _, id := range reactionOrder {
		reactions = append(reactions, *reactionMap[id])
	}

	return result.AnalysisResults{
		CaseID:               combination.ID,
		CaseName:             combination.Name,
		Displacements:        displacements,
		FrameDetailedResults: frameResults,
		Reactions:            reactions,
		IsValid:              true,
		MaxDisplacement:      maxDisp,
		Timestamp:            time.Now(),
		Log:                  log,
	}, nil
}
