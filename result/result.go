// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package result defines the output types shared by post, combine and
// analyze, kept in their own package to avoid an import cycle
// between post (which produces per-station forces) and combine (which sums
// AnalysisResults across cases).
package result

import "time"

// JointDisplacement is the six-component displacement/rotation state of one
// joint, in metres and radians.
type JointDisplacement struct {
	JointID int
	Ux, Uy, Uz float64
	Rx, Ry, Rz float64
}

// FrameForces is the six internal force/moment components at one station
// along a frame, in kN and kN.m, in the element's local axes.
type FrameForces struct {
	P, V2, V3 float64
	T, M2, M3 float64
}

// DetailedFrameResult is the per-station breakdown of one original frame:
// Stations holds the fractional position (0 at JointI, 1 at JointJ) of each
// entry in Displacements and Forces, which are always the same length.
type DetailedFrameResult struct {
	Stations      []float64
	Displacements []JointDisplacement
	Forces        []FrameForces
}

// JointReaction is the six-component reaction force/moment at a restrained
// joint, in kN and kN.m. Unrestrained joints report zero reactions.
type JointReaction struct {
	JointID int
	Fx, Fy, Fz float64
	Mx, My, Mz float64
}

// AnalysisResults is the complete output of one load case or combination:
// nodal displacements, per-frame internal forces, support reactions and the
// maximum displacement magnitude over all joints, the time the result was
// produced, plus the human-readable log produced along the way.
type AnalysisResults struct {
	CaseID               string
	CaseName             string
	Displacements        []JointDisplacement
	FrameDetailedResults map[int]DetailedFrameResult
	Reactions            []JointReaction
	IsValid              bool
	MaxDisplacement      float64
	Timestamp            time.Time
	Log                  []string
}
