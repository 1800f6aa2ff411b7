// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

// SolverConfig carries the tunables of a single analyze call. It mirrors the
// shape of the teacher's plain JSON-tagged option structs (inp.SolverData,
// inp.Data in the example pack) rather than a dynamic options bag: every
// field has one documented effect.
type SolverConfig struct {
	MeshingSegments         int  `json:"meshing_segments"`
	EnableIntersectionCheck bool `json:"enable_intersection_check"`
	UseSparseSolver         bool `json:"use_sparse_solver"`

	// VerboseLog enables the per-segment "skipped, no overlap" style debug
	// lines that the distributed-load decomposition can otherwise produce
	// in large numbers; off by default so normal results stay terse.
	VerboseLog bool `json:"verbose_log"`
}

// DefaultSolverConfig returns the documented defaults from spec.md section 6.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		MeshingSegments:         6,
		EnableIntersectionCheck: true,
		UseSparseSolver:         true,
	}
}

const (
	minMeshingSegments = 1
	maxMeshingSegments = 20
)

// Normalize clamps MeshingSegments to [1,20] and fills in the documented
// default (6) when zero, returning the adjusted config and whether a clamp
// happened (for logging).
func (c SolverConfig) Normalize() (SolverConfig, bool) {
	clamped := false
	if c.MeshingSegments == 0 {
		c.MeshingSegments = 6
	}
	if c.MeshingSegments < minMeshingSegments {
		c.MeshingSegments = minMeshingSegments
		clamped = true
	}
	if c.MeshingSegments > maxMeshingSegments {
		c.MeshingSegments = maxMeshingSegments
		clamped = true
	}
	return c, clamped
}
