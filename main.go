// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command feacore runs a linear-elastic frame analysis from a JSON model
// file and prints a summary of displacements and reactions for every load
// case, mirroring the flag/io.Pf driven CLI shape of the source tool's own
// command, minus the MPI bootstrap this single-process solver has no use
// for.
package main

import (
	"encoding/json"
	"flag"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/seismostudio/feacore/analyze"
	"github.com/seismostudio/feacore/model"
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("ERROR: %v\n", err)
		}
	}()

	verbose := flag.Bool("v", false, "enable verbose solver logging")
	segments := flag.Int("segments", 0, "meshing segments per frame, 0 uses the default")
	sparse := flag.Bool("sparse", true, "use the sparse assembly path above the DOF threshold")
	flag.Parse()

	if len(flag.Args()) == 0 {
		chk.Panic("please provide a model filename. Ex.: frame.json")
	}
	fnamepath := flag.Arg(0)

	io.PfWhite("\nfeacore -- 3D linear-elastic frame analysis\n\n")

	buf, err := io.ReadFile(fnamepath)
	if err != nil {
		chk.Panic("cannot read %s: %v", fnamepath, err)
	}

	var m model.StructuralModel
	if err := json.Unmarshal(buf, &m); err != nil {
		chk.Panic("cannot parse %s: %v", fnamepath, err)
	}

	cfg := model.DefaultSolverConfig()
	if *segments > 0 {
		cfg.MeshingSegments = *segments
	}
	cfg.UseSparseSolver = *sparse
	cfg.VerboseLog = *verbose

	results, err := analyze.AnalyzeAll(m, cfg)
	if err != nil {
		chk.Panic("analysis failed: %v", err)
	}

	for _, lc := range m.LoadCases {
		r := results[lc.ID]
		io.Pf("\ncase %q (%s): max displacement = %g m\n", r.CaseID, r.CaseName, r.MaxDisplacement)
		for _, reac := range r.Reactions {
			io.Pf("  joint %d: Fx=%.4g Fy=%.4g Fz=%.4g kN\n", reac.JointID, reac.Fx, reac.Fy, reac.Fz)
		}
		if cfg.VerboseLog {
			for _, line := range r.Log {
				io.Pf("  %s\n", line)
			}
		}
	}

	for _, comb := range m.LoadCombinations {
		r, err := analyze.Combine(comb, results)
		if err != nil {
			io.PfRed("combination %q failed: %v\n", comb.ID, err)
			continue
		}
		io.Pf("\ncombination %q (%s): max displacement = %g m\n", r.CaseID, r.CaseName, r.MaxDisplacement)
	}
}
