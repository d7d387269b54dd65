package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const solverYAML = `
kind: solver
def:
  gamma: 0.9
  maxIterations: 250
  epsilon: 1e-8
  mode: robust
  threshold: 0.3
  parallel: true
  workers: 4
`

const simYAML = `
kind: sim
def:
  runs: 1000
  horizon: 50
  probTerm: 0.01
  tranLimit: 100000
  gamma: 0.95
  seed: 42
  workers: 2
`

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadSolverConfig(t *testing.T) {
	Convey("LoadSolverConfig unwraps the kind/def envelope into a SolverConfig", t, func() {
		path := writeTemp(t, "solver.yaml", solverYAML)
		cfg, err := LoadSolverConfig(path)
		So(err, ShouldBeNil)
		So(cfg.Gamma, ShouldAlmostEqual, 0.9, 1e-12)
		So(cfg.MaxIterations, ShouldEqual, 250)
		So(cfg.Mode, ShouldEqual, "robust")
		So(cfg.Threshold, ShouldAlmostEqual, 0.3, 1e-12)
		So(cfg.Parallel, ShouldBeTrue)
		So(cfg.Workers, ShouldEqual, 4)
	})
}

func TestLoadSimConfig(t *testing.T) {
	Convey("LoadSimConfig unwraps the kind/def envelope into a SimConfig", t, func() {
		path := writeTemp(t, "sim.yaml", simYAML)
		cfg, err := LoadSimConfig(path)
		So(err, ShouldBeNil)
		So(cfg.Runs, ShouldEqual, 1000)
		So(cfg.Horizon, ShouldEqual, 50)
		So(cfg.Seed, ShouldEqual, int64(42))
	})
}
