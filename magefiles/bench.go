//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Bench groups the benchmark pipeline targets.
type Bench mg.Namespace

// Reconstruct rebuilds HTML for every layout JSON file in layouts/ into output/.
func (Bench) Reconstruct() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "reconstruct", "--batch", "--out", "output", "layouts")
}

// Compare scores output/ against fixtures/ and records the results for pipeline.
func (Bench) Compare(pipeline string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "compare",
		"--fixtures", "fixtures",
		"--generated", "output",
		"--out", filepath.Join("results", pipeline+"-compare.json"),
		"--pipeline", pipeline)
}

// Judge runs the LLM rubric over output/ for pipeline.
func (Bench) Judge(pipeline string) error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "judge",
		"--fixtures", "fixtures",
		"--output", "output",
		"--pipeline", pipeline,
		"--evaluations", filepath.Join("evaluations", pipeline+"-evaluations.json"),
		"--store")
}

// Report prints the leaderboard and exports it in every format.
func (Bench) Report() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "report", "--export", "yaml,json,xlsx")
}
