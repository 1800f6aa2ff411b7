// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package preprocess implements the intersection-detection pass that runs
// before meshing: joints lying on the interior of a frame (T-junctions) and
// frame-frame crossings are discovered and the affected frames are split so
// every connection is represented by a shared joint.
package preprocess

import (
	"sort"

	"github.com/cpmech/gosl/io"

	"github.com/seismostudio/feacore/geo"
	"github.com/seismostudio/feacore/model"
)

// split records one point at which a frame must be cut, before sorting.
type split struct {
	t   float64
	pt  geo.Vec3
}

// Intersections runs the T-junction and crossing detection pass on a copy of
// m and returns the adjusted model plus a human-readable log of what
// happened. m itself is never modified.
//
// Ported from the source system's preprocess_intersections: joints are
// checked against every non-incident frame (is_point_on_segment), then every
// unordered pair of frames without a shared endpoint is checked for a
// crossing (get_segment_intersection); both kinds of split point accumulate
// per frame, are deduplicated within tol, sorted by distance from the
// frame's start joint, and applied as a single pass of new Frame records
// sharing (or creating) joints at each cut.
func Intersections(m model.StructuralModel, tol float64) (model.StructuralModel, []string) {
	out := m.Clone()
	var log []string

	jointByID := make(map[int]model.Joint, len(out.Joints))
	for _, j := range out.Joints {
		jointByID[j.ID] = j
	}

	out.Frames, log = dropZeroLengthFrames(out.Frames, jointByID, tol, log)

	nextJointID := out.MaxJointID() + 1

	splits := make(map[int][]split)

	addSplit := func(frameID int, pt geo.Vec3) {
		for _, s := range splits[frameID] {
			if s.pt.Sub(pt).Length() < tol {
				return
			}
		}
		frame, ok := findFrame(out.Frames, frameID)
		if !ok {
			return
		}
		start := jointPoint(jointByID[frame.JointI])
		end := jointPoint(jointByID[frame.JointJ])
		length := end.Sub(start).Length()
		dist := pt.Sub(start).Length()
		t := 0.0
		if length > 0 {
			t = dist / length
		}
		splits[frameID] = append(splits[frameID], split{t: t, pt: pt})
	}

	// A. Node-on-frame (T-junctions).
	for _, j := range out.Joints {
		jp := jointPoint(j)
		for _, f := range out.Frames {
			if f.JointI == j.ID || f.JointJ == j.ID {
				continue
			}
			start := jointPoint(jointByID[f.JointI])
			end := jointPoint(jointByID[f.JointJ])
			if _, ok := geo.PointOnSegment(jp, start, end, tol); ok {
				addSplit(f.ID, jp)
			}
		}
	}

	// B. Frame-frame crossings.
	frames := out.Frames
	for i := 0; i < len(frames); i++ {
		for k := i + 1; k < len(frames); k++ {
			f1, f2 := frames[i], frames[k]
			common := f1.JointI == f2.JointI || f1.JointI == f2.JointJ ||
				f1.JointJ == f2.JointI || f1.JointJ == f2.JointJ
			if common {
				continue
			}
			p1s := jointPoint(jointByID[f1.JointI])
			p1e := jointPoint(jointByID[f1.JointJ])
			p2s := jointPoint(jointByID[f2.JointI])
			p2e := jointPoint(jointByID[f2.JointJ])
			if pt, ok := geo.SegmentIntersection(p1s, p1e, p2s, p2e, tol); ok {
				addSplit(f1.ID, pt)
				addSplit(f2.ID, pt)
			}
		}
	}

	if len(splits) == 0 {
		log = append(log, "intersection detection: no split points found")
		return out, log
	}

	log = append(log, io.Sf("intersection detection: splitting %d frame(s)", len(splits)))

	var kept []model.Frame
	for _, f := range out.Frames {
		if _, split := splits[f.ID]; !split {
			kept = append(kept, f)
		}
	}

	nextFrameID := out.MaxFrameID() + 1

	// Deterministic order: iterate original frames, not the map.
	for _, original := range out.Frames {
		pts, isSplit := splits[original.ID]
		if !isSplit {
			continue
		}
		sort.Slice(pts, func(i, j int) bool { return pts[i].t < pts[j].t })

		currentStart := original.JointI
		for _, s := range pts {
			midID, isNew := matchOrCreateJoint(&out.Joints, &jointByID, &nextJointID, s.pt, tol)
			if isNew {
				log = append(log, io.Sf("  new joint %d at (%.4f, %.4f, %.4f)", midID, s.pt.X, s.pt.Y, s.pt.Z))
			}
			kept = append(kept, model.Frame{
				ID:          nextFrameID,
				JointI:      currentStart,
				JointJ:      midID,
				SectionID:   original.SectionID,
				Orientation: original.Orientation,
				OffsetY:     original.OffsetY,
				OffsetZ:     original.OffsetZ,
			})
			nextFrameID++
			currentStart = midID
		}
		kept = append(kept, model.Frame{
			ID:          nextFrameID,
			JointI:      currentStart,
			JointJ:      original.JointJ,
			SectionID:   original.SectionID,
			Orientation: original.Orientation,
			OffsetY:     original.OffsetY,
			OffsetZ:     original.OffsetZ,
		})
		nextFrameID++
	}

	out.Frames = kept
	return out, log
}

// dropZeroLengthFrames removes frames whose endpoints coincide within tol
// (spec.md section 4.2 edge cases: "zero-length frames are dropped
// silently"), so neither detection pass below has to special-case a
// degenerate segment with no direction.
func dropZeroLengthFrames(frames []model.Frame, jointByID map[int]model.Joint, tol float64, log []string) ([]model.Frame, []string) {
	var kept []model.Frame
	dropped := 0
	for _, f := range frames {
		start := jointPoint(jointByID[f.JointI])
		end := jointPoint(jointByID[f.JointJ])
		if end.Sub(start).Length() < tol {
			dropped++
			continue
		}
		kept = append(kept, f)
	}
	if dropped > 0 {
		log = append(log, io.Sf("intersection detection: dropped %d zero-length frame(s)", dropped))
	}
	return kept, log
}

func findFrame(frames []model.Frame, id int) (model.Frame, bool) {
	for _, f := range frames {
		if f.ID == id {
			return f, true
		}
	}
	return model.Frame{}, false
}

func jointPoint(j model.Joint) geo.Vec3 { return geo.Vec3{X: j.X, Y: j.Y, Z: j.Z} }

// matchOrCreateJoint returns the id of an existing joint within tol of pt, or
// allocates and appends a new one, advancing *nextID.
func matchOrCreateJoint(joints *[]model.Joint, byID *map[int]model.Joint, nextID *int, pt geo.Vec3, tol float64) (id int, created bool) {
	for _, j := range *joints {
		if jointPoint(j).Sub(pt).Length() < tol {
			return j.ID, false
		}
	}
	newJoint := model.Joint{ID: *nextID, X: pt.X, Y: pt.Y, Z: pt.Z}
	*joints = append(*joints, newJoint)
	(*byID)[newJoint.ID] = newJoint
	id = *nextID
	*nextID++
	return id, true
}
