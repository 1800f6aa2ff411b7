// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analyze

import (
	"github.com/cpmech/gosl/chk"
)

// Kind classifies an analysis failure so callers can branch on errors.Is
// without parsing message text.
type Kind int

const (
	_ Kind = iota
	UnknownLoadCase
	DegenerateElement
	MissingSection
	MissingMaterial
	SingularSystem
	IncompatibleStations
	MissingCase
	Internal
)

func (k Kind) String() string {
	switch k {
	case UnknownLoadCase:
		return "unknown load case"
	case DegenerateElement:
		return "degenerate element"
	case MissingSection:
		return "missing section"
	case MissingMaterial:
		return "missing material"
	case SingularSystem:
		return "singular system"
	case IncompatibleStations:
		return "incompatible stations"
	case MissingCase:
		return "missing case"
	case Internal:
		return "internal error"
	default:
		return "unknown"
	}
}

// Error wraps a Kind with a human-readable message built through
// gosl/chk.Err, the same error-construction convention the wider codebase
// uses for validation failures.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Is makes errors.Is(err, analyze.ErrSingularSystem) etc. work by comparing
// Kind rather than identity.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: chk.Err(format, args...).Error()}
}

// Sentinel errors usable with errors.Is; only Kind is compared, so the
// messages here are placeholders.
var (
	ErrUnknownLoadCase      = &Error{Kind: UnknownLoadCase, msg: "unknown load case"}
	ErrDegenerateElement    = &Error{Kind: DegenerateElement, msg: "degenerate element"}
	ErrMissingSection       = &Error{Kind: MissingSection, msg: "missing section"}
	ErrMissingMaterial      = &Error{Kind: MissingMaterial, msg: "missing material"}
	ErrSingularSystem       = &Error{Kind: SingularSystem, msg: "singular system"}
	ErrIncompatibleStations = &Error{Kind: IncompatibleStations, msg: "incompatible stations"}
	ErrMissingCase          = &Error{Kind: MissingCase, msg: "missing case"}
	ErrInternal             = &Error{Kind: Internal, msg: "internal error"}
)
