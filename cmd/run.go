package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gabrielasuchopar/gocma/internal/config"
	"github.com/gabrielasuchopar/gocma/internal/es"
	"github.com/gabrielasuchopar/gocma/internal/objective"
	"github.com/gabrielasuchopar/gocma/internal/opt"
	"github.com/gabrielasuchopar/gocma/internal/store"
	"github.com/gabrielasuchopar/gocma/internal/trace"
)

var (
	objName         string
	dimension       int
	sigma           float64
	x0              float64
	lambda          int
	maxIter         int
	maxEvals        int
	seed            int64
	verbDisp        int
	dataDir         string
	traceEnabled    bool
	plotEnabled     bool
	checkpointEvery int
	configPath      string
	presetName      string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single optimization",
	Long:  `Minimizes a benchmark objective function and reports the best solution found.`,
	RunE:  runOptimization,
}

func init() {
	runCmd.Flags().StringVar(&objName, "objective", "sphere", "Objective function: sphere, elli, rosenbrock, rastrigin")
	runCmd.Flags().IntVar(&dimension, "dim", 10, "Search-space dimension")
	runCmd.Flags().Float64Var(&sigma, "sigma", 0.5, "Initial step size")
	runCmd.Flags().Float64Var(&x0, "x0", 1.0, "Starting point coordinate (replicated over all dimensions)")
	runCmd.Flags().IntVar(&lambda, "lambda", 0, "Population size (0 = default 4+3*ln(dim))")
	runCmd.Flags().IntVar(&maxIter, "iters", 1000, "Max iterations (0 = unbounded)")
	runCmd.Flags().IntVar(&maxEvals, "evals", 0, "Max objective evaluations (0 = unlimited)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	runCmd.Flags().IntVar(&verbDisp, "verb-disp", 0, "Print status every N iterations (0 = silent)")
	runCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Base directory for traces and checkpoints")
	runCmd.Flags().BoolVar(&traceEnabled, "trace", false, "Persist a JSONL trace of the run")
	runCmd.Flags().BoolVar(&plotEnabled, "plot", false, "Print an ASCII plot of the cost history")
	runCmd.Flags().IntVar(&checkpointEvery, "checkpoint-every", 0, "Save a checkpoint every N iterations (0 = disabled)")
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML config file with run presets")
	runCmd.Flags().StringVar(&presetName, "preset", "default", "Preset name within the config file")

	rootCmd.AddCommand(runCmd)
}

// resolveRun merges the config-file preset (if any) with the flag values.
func resolveRun() (config.Run, error) {
	if configPath == "" {
		return config.Run{
			Objective:       objName,
			Dimension:       dimension,
			Sigma:           sigma,
			Lambda:          lambda,
			MaxIter:         maxIter,
			MaxEvals:        maxEvals,
			Seed:            seed,
			VerbDisp:        verbDisp,
			CheckpointEvery: checkpointEvery,
		}, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Run{}, err
	}
	run, err := cfg.Preset(presetName)
	if err != nil {
		return config.Run{}, err
	}
	return run, nil
}

func runOptimization(cmd *cobra.Command, args []string) error {
	run, err := resolveRun()
	if err != nil {
		return err
	}
	if err := run.Validate(); err != nil {
		return fmt.Errorf("invalid run configuration: %w", err)
	}

	fn, err := objective.ByName(run.Objective)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	slog.Info("Starting optimization",
		"run_id", runID,
		"objective", run.Objective,
		"dim", run.Dimension,
		"sigma", run.Sigma,
		"max_iter", run.MaxIter,
	)

	xstart := make([]float64, run.Dimension)
	for i := range xstart {
		xstart[i] = x0
	}
	initialF := fn(xstart)

	esOpts := []es.Option{es.WithSeed(run.Seed)}
	if run.Lambda > 0 {
		esOpts = append(esOpts, es.WithLambda(run.Lambda))
	}
	strategy, err := es.New(xstart, run.Sigma, esOpts...)
	if err != nil {
		return fmt.Errorf("failed to create strategy: %w", err)
	}

	var lg *trace.Logger
	if traceEnabled {
		lg, err = trace.NewPersistent(dataDir, runID, 1)
		if err != nil {
			return err
		}
		defer lg.Close()
	} else {
		lg = trace.New(1)
	}
	strategy.SetLogger(lg.Register(strategy))

	driverOpts := es2driverBudget(run)
	if run.VerbDisp > 0 {
		driverOpts = append(driverOpts, opt.WithVerbDisp(run.VerbDisp))
	}

	if run.CheckpointEvery > 0 {
		checkpointStore, err := store.NewFSStore(dataDir)
		if err != nil {
			return fmt.Errorf("failed to create checkpoint store: %w", err)
		}
		driverOpts = append(driverOpts, opt.WithCallbacks(
			checkpointCallback(checkpointStore, runID, initialF, run),
		))
	}

	start := time.Now()
	if _, err := opt.Optimize(strategy, opt.Objective(fn), driverOpts...); err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}
	elapsed := time.Since(start)

	res, err := strategy.Result()
	if err != nil {
		return err
	}

	slog.Info("Optimization complete",
		"elapsed", elapsed,
		"iterations", res.Iterations,
		"evaluations", res.Evaluations,
		"initial_f", initialF,
		"best_f", res.BestF,
		"termination", strategy.Stop(),
	)

	if plotEnabled {
		fmt.Println(lg.Plot())
	}
	fmt.Printf("Run %s: f %.6e -> %.6e in %d iterations (%d evaluations, %s)\n",
		runID, initialF, res.BestF, res.Iterations, res.Evaluations, elapsed.Round(time.Millisecond))

	return nil
}

// es2driverBudget converts the run budgets to driver options.
func es2driverBudget(run config.Run) []opt.Option {
	var opts []opt.Option
	if run.MaxIter > 0 {
		opts = append(opts, opt.WithMaxIter(run.MaxIter))
	}
	if run.MaxEvals > 0 {
		opts = append(opts, opt.WithMaxEvals(run.MaxEvals))
	}
	return opts
}

// checkpointCallback saves a checkpoint every run.CheckpointEvery
// iterations.
func checkpointCallback(st store.Store, runID string, initialF float64, run config.Run) opt.Callback {
	cfg := store.RunConfig{
		Objective:          run.Objective,
		Dimension:          run.Dimension,
		Sigma:              run.Sigma,
		Lambda:             run.Lambda,
		MaxIter:            run.MaxIter,
		MaxEvals:           run.MaxEvals,
		Seed:               run.Seed,
		CheckpointInterval: run.CheckpointEvery,
	}
	return func(o opt.Optimizer) {
		res, err := o.Result()
		if err != nil || res.Iterations == 0 || res.Iterations%run.CheckpointEvery != 0 {
			return
		}
		cp := store.NewCheckpoint(runID, res.BestX, res.BestF, initialF, res.Iterations, res.Evaluations, cfg)
		if err := st.SaveCheckpoint(runID, cp); err != nil {
			slog.Warn("Failed to save checkpoint", "run_id", runID, "error", err)
		}
	}
}
