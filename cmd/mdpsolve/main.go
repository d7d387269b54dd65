/*
mdpsolve is a small command-line front end over the solver library: load an
MDP (or RMDP) from JSON and a solver configuration from YAML, run Gauss-Seidel
value iteration with the configured discount, iteration cap, tolerance and
mode, and print the resulting value function and policy. Flags give the two
file paths (-mdp, -config) plus -robust, -workers and -debug; Gauss-Seidel is
sequential, so -workers and the config's parallel settings have no effect on
the solve.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"mdp/action"
	"mdp/config"
	"mdp/internal/mdplog"
	"mdp/serialize"
	"mdp/solver"
)

var (
	mdpPath    *string
	configPath *string
	robustFlag *bool
	workers    *int
	debug      *bool
)

func init() {
	mdpPath = flag.String("mdp", "", "path to an MDP or RMDP JSON file (serialize.ToJSON[Robust] format)")
	configPath = flag.String("config", "./solver.yaml", "path to a solver config YAML file")
	robustFlag = flag.Bool("robust", false, "treat -mdp as a robustified MDP (serialize.ToJSONRobust format)")
	workers = flag.Int("workers", runtime.NumCPU(), "worker count for parallel Jacobi sweeps")
	debug = flag.Bool("debug", false, "emit debug-level log messages")
	flag.Parse()
}

func run() error {
	level := mdplog.LevelInfo
	if *debug {
		level = mdplog.LevelDebug
	}
	logger := mdplog.New(os.Stderr, level)

	if *mdpPath == "" {
		return fmt.Errorf("mdpsolve: -mdp is required")
	}

	logger.Debugf("loading solver config from %s", *configPath)
	cfg, err := config.LoadSolverConfig(*configPath)
	if err != nil {
		return fmt.Errorf("loading solver config: %w", err)
	}

	data, err := os.ReadFile(*mdpPath)
	if err != nil {
		return fmt.Errorf("reading mdp file: %w", err)
	}
	logger.Infof("loaded %s (%d bytes), mode=%s robust=%v", *mdpPath, len(data), cfg.Mode, *robustFlag)

	opts := solver.Options{
		Gamma:         cfg.Gamma,
		MaxIterations: cfg.MaxIterations,
		Epsilon:       cfg.Epsilon,
		Parallel:      cfg.Parallel,
		Workers:       cfg.Workers,
		Mode:          modeFromString(cfg.Mode),
	}
	if opts.Workers <= 0 {
		opts.Workers = *workers
	}
	if cfg.ShowProgress {
		opts.Progress = func(iteration int, residual float64) {
			fmt.Printf("iteration %d: residual %g\n", iteration, residual)
		}
	}

	if *robustFlag {
		rm, err := serialize.FromJSONRobust(data)
		if err != nil {
			return fmt.Errorf("parsing rmdp file: %w", err)
		}
		logger.Debugf("solving %d-state rmdp via Gauss-Seidel, gamma=%g mode=%s", len(rm.States), opts.Gamma, opts.Mode)
		sol, err := solver.SolveGaussSeidelRobust(rm, opts)
		if err != nil {
			return err
		}
		logger.Infof("converged after %d iterations, residual=%g", sol.Iterations, sol.Residual)
		printSolution(sol)
		return nil
	}

	m, err := serialize.FromJSON(data)
	if err != nil {
		return fmt.Errorf("parsing mdp file: %w", err)
	}
	logger.Debugf("solving %d-state mdp via Gauss-Seidel, gamma=%g", len(m.States), opts.Gamma)
	sol, err := solver.SolveGaussSeidel(m, opts)
	if err != nil {
		return err
	}
	logger.Infof("converged after %d iterations, residual=%g", sol.Iterations, sol.Residual)
	printSolution(sol)
	return nil
}

func printSolution(sol solver.Solution) {
	fmt.Printf("iterations: %d  residual: %g\n", sol.Iterations, sol.Residual)
	for s := range sol.V {
		fmt.Printf("state %4d  V=%12.6f  policy=%d\n", s, sol.V[s], sol.Policy[s])
	}
}

func modeFromString(s string) action.Mode {
	switch s {
	case "robust":
		return action.Robust
	case "optimistic":
		return action.Optimistic
	default:
		return action.Average
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
