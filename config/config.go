// Package config loads solver and simulation parameters from YAML, following
// the teacher's two-stage viper+yaml.v3 loading pattern (reinforcement.FromYaml):
// viper reads the file into a generic {kind, def} envelope, then the `def`
// section is re-marshaled and unmarshaled into the concrete typed config,
// letting one file format host multiple config "kinds" without viper itself
// knowing their shapes.
package config

import (
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// outerConfig is the generic envelope: Kind names which concrete config `Def`
// holds. Kind is decoded but not checked; the target type is decided by which
// loader (LoadSolverConfig or LoadSimConfig) the caller uses. Viper lowercases
// every key it reads, so the yaml tags below are all lowercase.
type outerConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// SolverConfig holds the solver's configuration parameters (§6): discount,
// iteration cap, residual tolerance, L1 threshold, uncertainty mode, and the
// parallel-sweep / MPI / sparsity / robustification knobs.
type SolverConfig struct {
	Gamma           float64 `yaml:"gamma"`
	MaxIterations   int     `yaml:"maxiterations"`
	Epsilon         float64 `yaml:"epsilon"`
	Mode            string  `yaml:"mode"` // "average" | "robust" | "optimistic"
	Threshold       float64 `yaml:"threshold"`
	Parallel        bool    `yaml:"parallel"`
	Workers         int     `yaml:"workers"`
	NInner          int     `yaml:"ninner"`
	EpsilonInner    float64 `yaml:"epsiloninner"`
	ShowProgress    bool    `yaml:"showprogress"`
	IgnoreThreshold float64 `yaml:"ignorethreshold"`
	AllowZeros      bool    `yaml:"allowzeros"`
}

// SimConfig holds the simulator's configuration parameters (§6): episode
// count, horizon, per-step termination probability, global transition limit,
// discount, random seed, and worker count.
type SimConfig struct {
	Runs      int     `yaml:"runs"`
	Horizon   int     `yaml:"horizon"`
	ProbTerm  float64 `yaml:"probterm"`
	TranLimit int     `yaml:"tranlimit"`
	Gamma     float64 `yaml:"gamma"`
	Seed      int64   `yaml:"seed"`
	Workers   int     `yaml:"workers"`
}

// LoadSolverConfig reads a YAML file at path and unmarshals its `def` section
// into a SolverConfig.
func LoadSolverConfig(path string) (*SolverConfig, error) {
	cfg := &SolverConfig{}
	if err := loadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadSimConfig reads a YAML file at path and unmarshals its `def` section
// into a SimConfig.
func LoadSimConfig(path string) (*SimConfig, error) {
	cfg := &SimConfig{}
	if err := loadInto(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadInto(path string, dest interface{}) error {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return err
	}

	outer := &outerConfig{}
	if err := vp.Unmarshal(outer); err != nil {
		return err
	}

	raw, err := yaml.Marshal(outer.Def)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(raw, dest)
}
