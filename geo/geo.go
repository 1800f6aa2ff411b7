// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geo implements the small geometric kernel the preprocessor relies
// on: point-on-segment membership and segment-segment intersection, both
// against an explicit, caller-supplied tolerance rather than a package
// global, so callers can reproduce a result in tests without any shared
// mutable state.
package geo

import "math"

// DefaultTolerance is the absolute distance tolerance used when the caller
// has no stronger opinion (metres).
const DefaultTolerance = 1e-4

// Vec3 is a plain 3-component point or vector.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

// PointOnSegment reports whether p lies strictly interior to the closed
// segment [a,b], within tol, and if so the fractional parameter t in (0,1)
// such that p ~= a + t*(b-a). A point within tol of either endpoint is
// rejected, not accepted: it is the endpoints themselves (shared joints)
// that already connect the segments, so only a genuine interior contact is
// a T-junction.
//
// Ported from the source system's is_point_on_segment: it first rejects a
// point within tol of either endpoint, then projects p onto the line
// through a and b and checks both the perpendicular (collinearity) distance
// and that the projected parameter falls strictly inside (tol/length,
// 1-tol/length).
func PointOnSegment(p, a, b Vec3, tol float64) (t float64, ok bool) {
	ab := b.Sub(a)
	segLen := ab.Length()
	if segLen < tol {
		// Degenerate segment: no interior to speak of.
		return 0, false
	}

	if p.Sub(a).Length() < tol || p.Sub(b).Length() < tol {
		return 0, false
	}

	ap := p.Sub(a)
	t = ap.Dot(ab) / (segLen * segLen)

	// Perpendicular distance from p to the infinite line through a,b.
	closest := a.Add(ab.Scale(t))
	perpDist := p.Sub(closest).Length()
	if perpDist > tol {
		return 0, false
	}

	tTol := tol / segLen
	if t <= tTol || t >= 1-tTol {
		return 0, false
	}
	return t, true
}

// SegmentIntersection finds the point of closest approach between segments
// [a,b] and [c,d] and reports whether that point is a genuine crossing:
// both the gap between the two closest points is within tol and each
// segment's parameter falls strictly inside (tol, 1-tol) — an endpoint hit
// (s or t at 0 or 1) is not a crossing, since a shared or touching endpoint
// is already a connection, handled by PointOnSegment or by the frames
// sharing a joint id outright. The returned point lies on the first
// segment, not at the midpoint of the two closest points.
//
// Ported from the source system's get_segment_intersection, which solves the
// two-line closest-point problem via the standard cross-product
// parameterization rather than a general line-line solve, since both
// segments are expressed as direction vectors from a common-ish frame.
func SegmentIntersection(a, b, c, d Vec3, tol float64) (p Vec3, ok bool) {
	d1 := b.Sub(a)
	d2 := d.Sub(c)
	r := a.Sub(c)

	a11 := d1.Dot(d1)
	a12 := d1.Dot(d2)
	a22 := d2.Dot(d2)
	b1 := d1.Dot(r)
	b2 := d2.Dot(r)

	denom := a11*a22 - a12*a12

	var s, t float64
	if math.Abs(denom) < 1e-12 {
		// Parallel (or near-parallel) segments: no unique closest point on
		// the lines, so no crossing to report. Collinear overlap is a
		// distinct scenario handled by PointOnSegment at the endpoints.
		return Vec3{}, false
	}
	s = (a12*b2 - a22*b1) / denom
	t = (a11*b2 - a12*b1) / denom

	if s <= tol || s >= 1-tol || t <= tol || t >= 1-tol {
		return Vec3{}, false
	}

	closest1 := a.Add(d1.Scale(s))
	closest2 := c.Add(d2.Scale(t))
	gap := closest1.Sub(closest2).Length()
	if gap > tol {
		return Vec3{}, false
	}

	return closest1, true
}
