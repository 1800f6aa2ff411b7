// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mesh subdivides the preprocessed model's frames into a uniform
// number of sub-elements, producing the flattened "solver" joint and frame
// lists that assemble/solve operate on, plus the mapping from each original
// frame id back to its ordered chain of solver-joint indices.
package mesh

import (
	"github.com/cpmech/gosl/io"

	"github.com/seismostudio/feacore/model"
)

// MinSegments and MaxSegments bound the per-frame subdivision count (spec.md
// section 6): a SolverConfig.MeshingSegments outside this range is clamped,
// not rejected.
const (
	MinSegments = 1
	MaxSegments = 20
)

// Mesh is the flattened structure the solver operates on: solver joints and
// frames carry synthetic negative ids for anything not present in the
// original model, and FrameMapping records, for each original frame id, the
// ordered solver-joint indices along its length (endpoints included).
type Mesh struct {
	Joints        []model.Joint
	Frames        []model.Frame
	FrameMapping  map[int][]int // original frame id -> solver joint indices, start to end
	JointIndex    map[int]int   // solver joint id -> index into Joints
}

// Build meshes m's frames into segments sub-elements each, clamping segments
// to [MinSegments, MaxSegments]. It never mutates m.
//
// Ported from the source system's per-frame meshing loop in
// analyze_structure: each frame is walked from its start joint to its end
// joint in `segments` equal fractional steps, synthesizing an interior joint
// and a sub-frame for every step but the last, and reusing the end joint's
// existing index for the final sub-frame. Synthetic joints and frames are
// assigned descending negative ids, mirroring the source's
// next_internal_joint_id / next_internal_frame_id counters, so they can
// never collide with a user-supplied id.
func Build(m model.StructuralModel, segments int) (Mesh, []string) {
	var log []string
	if segments < MinSegments {
		segments = MinSegments
		log = append(log, io.Sf("mesh: clamped meshing segments up to %d", MinSegments))
	}
	if segments > MaxSegments {
		segments = MaxSegments
		log = append(log, io.Sf("mesh: clamped meshing segments down to %d", MaxSegments))
	}

	joints := append([]model.Joint(nil), m.Joints...)
	jointIndex := make(map[int]int, len(joints))
	for i, j := range joints {
		jointIndex[j.ID] = i
	}

	nextJointID := -1
	nextFrameID := -1

	var frames []model.Frame
	mapping := make(map[int][]int, len(m.Frames))

	for _, frame := range m.Frames {
		startIdx, okI := jointIndex[frame.JointI]
		endIdx, okJ := jointIndex[frame.JointJ]
		if !okI || !okJ {
			log = append(log, io.Sf("mesh: frame %d references an unknown joint, skipped", frame.ID))
			continue
		}
		start := joints[startIdx]
		end := joints[endIdx]

		chain := []int{startIdx}
		prevIdx := startIdx

		for i := 1; i < segments; i++ {
			t := float64(i) / float64(segments)
			newJoint := model.Joint{
				ID: nextJointID,
				X:  start.X + (end.X-start.X)*t,
				Y:  start.Y + (end.Y-start.Y)*t,
				Z:  start.Z + (end.Z-start.Z)*t,
			}
			nextJointID--
			joints = append(joints, newJoint)
			newIdx := len(joints) - 1
			jointIndex[newJoint.ID] = newIdx
			chain = append(chain, newIdx)

			frames = append(frames, model.Frame{
				ID:          nextFrameID,
				JointI:      joints[prevIdx].ID,
				JointJ:      newJoint.ID,
				SectionID:   frame.SectionID,
				Orientation: frame.Orientation,
				OffsetY:     frame.OffsetY,
				OffsetZ:     frame.OffsetZ,
			})
			nextFrameID--
			prevIdx = newIdx
		}

		chain = append(chain, endIdx)
		frames = append(frames, model.Frame{
			ID:          nextFrameID,
			JointI:      joints[prevIdx].ID,
			JointJ:      end.ID,
			SectionID:   frame.SectionID,
			Orientation: frame.Orientation,
			OffsetY:     frame.OffsetY,
			OffsetZ:     frame.OffsetZ,
		})
		nextFrameID--

		mapping[frame.ID] = chain
	}

	log = append(log, io.Sf("mesh: %d -> %d joints, %d -> %d elements", len(m.Joints), len(joints), len(m.Frames), len(frames)))

	return Mesh{
		Joints:       joints,
		Frames:       frames,
		FrameMapping: mapping,
		JointIndex:   jointIndex,
	}, log
}

// StationCount returns the number of result stations along an original frame:
// one more than the number of sub-elements it was divided into.
func (mesh Mesh) StationCount(originalFrameID int) int {
	chain, ok := mesh.FrameMapping[originalFrameID]
	if !ok {
		return 0
	}
	return len(chain)
}
