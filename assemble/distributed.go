// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assemble

import (
	"math"

	"github.com/cpmech/gosl/io"

	"github.com/seismostudio/feacore/mesh"
	"github.com/seismostudio/feacore/model"
)

// minLoadRange guards against a zero-width trapezoidal load (StartDistance
// == EndDistance) producing a division by zero when interpolating
// magnitude; ported from the source system's max(0.0001, ...) guard.
const minLoadRange = 0.0001

// applyDistributedLoads resolves every DistributedFrameLoad under patternID
// against the sub-elements msh produced for its frame, clipping each
// trapezoidal load against every sub-element it overlaps and lumping the
// overlap's resultant force to that sub-element's two end nodes.
//
// The Local direction is resolved against the *original* (unmeshed) frame's
// geometry, not the sub-segment's: a frame's local axes are constant along
// its length regardless of how finely it was subdivided, matching the
// source system's own note that this block reads frame.orientation, not the
// sub-frame's. This is a separate, slightly different vertical-check
// formulation (up defaults to global Y, falling back to global X only when
// the member itself is within 0.99 of vertical) than either frameelem's
// Transformation or post's segment-force rotation, since it only needs a
// right-handed local triad, not a full DOF transformation.
func applyDistributedLoads(F []float64, msh mesh.Mesh, original model.StructuralModel, patternID string, scale float64, verbose bool) []string {
	var log []string
	for _, load := range original.DistributedFrameLoads {
		if load.PatternID != patternID {
			continue
		}
		frame := findOriginalFrame(original, load.FrameID)
		if frame == nil {
			continue
		}
		chain, ok := msh.FrameMapping[load.FrameID]
		if !ok {
			continue
		}
		startJoint := findOriginalJoint(original, frame.JointI)
		endJoint := findOriginalJoint(original, frame.JointJ)
		if startJoint == nil || endJoint == nil {
			continue
		}
		totalLength := distance(*startJoint, *endJoint)
		if totalLength < 1e-9 {
			continue
		}

		fx, fy, fz := resolveDirection(load.Direction, *frame, *startJoint, *endJoint)

		for i := 0; i < len(chain)-1; i++ {
			idxA, idxB := chain[i], chain[i+1]
			nodeA, nodeB := msh.Joints[idxA], msh.Joints[idxB]

			ratioA := distance(*startJoint, nodeA) / totalLength
			ratioB := distance(*startJoint, nodeB) / totalLength

			if ratioB <= load.StartDistance || ratioA >= load.EndDistance {
				if verbose {
					log = append(log, io.Sf("distributed load on frame %d: sub-element %d..%d has no overlap, skipped", load.FrameID, idxA, idxB))
				}
				continue
			}

			activeStart := math.Max(ratioA, load.StartDistance)
			activeEnd := math.Min(ratioB, load.EndDistance)

			loadRange := math.Max(minLoadRange, load.EndDistance-load.StartDistance)
			wStart := load.StartMagnitude + (load.EndMagnitude-load.StartMagnitude)*((activeStart-load.StartDistance)/loadRange)
			wEnd := load.StartMagnitude + (load.EndMagnitude-load.StartMagnitude)*((activeEnd-load.StartDistance)/loadRange)

			wAvg := (wStart + wEnd) / 2
			segmentLen := (activeEnd - activeStart) * totalLength
			totalForce := wAvg * segmentLen * scale * kNToN

			fNode := totalForce / 2
			F[dofIndex(idxA, 0)] += fx * fNode
			F[dofIndex(idxA, 1)] += fy * fNode
			F[dofIndex(idxA, 2)] += fz * fNode
			F[dofIndex(idxB, 0)] += fx * fNode
			F[dofIndex(idxB, 1)] += fy * fNode
			F[dofIndex(idxB, 2)] += fz * fNode
		}
	}
	return log
}

func resolveDirection(dir model.Direction, frame model.Frame, start, end model.Joint) (fx, fy, fz float64) {
	switch dir {
	case model.GlobalX:
		return 1, 0, 0
	case model.GlobalY:
		return 0, 1, 0
	case model.GlobalZ:
		return 0, 0, 1
	case model.Gravity:
		return 0, -1, 0
	case model.LocalX, model.LocalY, model.LocalZ:
		dx, dy, dz := end.X-start.X, end.Y-start.Y, end.Z-start.Z
		l := math.Sqrt(dx*dx + dy*dy + dz*dz)
		lx := [3]float64{dx / l, dy / l, dz / l}

		up := [3]float64{0, 1, 0}
		if math.Abs(lx[1]) > 0.99 {
			up = [3]float64{1, 0, 0}
		}

		lz := cross(lx, up)
		lz = normalize(lz)
		ly := cross(lz, lx)

		rad := frame.Orientation * math.Pi / 180
		c, s := math.Cos(rad), math.Sin(rad)

		lyRot := [3]float64{ly[0]*c + lz[0]*s, ly[1]*c + lz[1]*s, ly[2]*c + lz[2]*s}
		lzRot := [3]float64{-ly[0]*s + lz[0]*c, -ly[1]*s + lz[1]*c, -ly[2]*s + lz[2]*c}

		switch dir {
		case model.LocalX:
			return lx[0], lx[1], lx[2]
		case model.LocalY:
			return lyRot[0], lyRot[1], lyRot[2]
		default: // LocalZ
			return lzRot[0], lzRot[1], lzRot[2]
		}
	}
	return 0, 0, 0
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(v [3]float64) [3]float64 {
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if n < 1e-12 {
		return v
	}
	return [3]float64{v[0] / n, v[1] / n, v[2] / n}
}

func findOriginalFrame(m model.StructuralModel, id int) *model.Frame {
	for i := range m.Frames {
		if m.Frames[i].ID == id {
			return &m.Frames[i]
		}
	}
	return nil
}

func findOriginalJoint(m model.StructuralModel, id int) *model.Joint {
	for i := range m.Joints {
		if m.Joints[i].ID == id {
			return &m.Joints[i]
		}
	}
	return nil
}
