package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/gabrielasuchopar/gocma/internal/es"
	"github.com/gabrielasuchopar/gocma/internal/objective"
	"github.com/gabrielasuchopar/gocma/internal/opt"
	"github.com/gabrielasuchopar/gocma/internal/store"
	"github.com/gabrielasuchopar/gocma/internal/trace"
)

var (
	resumeDataDir string
	resumeIters   int
)

var resumeCmd = &cobra.Command{
	Use:   "resume [run-id]",
	Short: "Resume an optimization from its checkpoint",
	Long: `Continues a checkpointed run. The strategy is reinitialized at the
checkpointed best point; the best value never gets worse, but the continued
run is not a bit-exact continuation of the interrupted one.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for traces and checkpoints")
	resumeCmd.Flags().IntVar(&resumeIters, "iters", 0, "Additional iterations (0 = checkpointed budget)")

	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	runID := args[0]

	checkpointStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	cp, err := checkpointStore.LoadCheckpoint(runID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := cp.Validate(); err != nil {
		return fmt.Errorf("checkpoint is not usable: %w", err)
	}

	fn, err := objective.ByName(cp.Config.Objective)
	if err != nil {
		return err
	}

	iters := resumeIters
	if iters == 0 {
		iters = cp.Config.MaxIter
	}

	slog.Info("Resuming optimization",
		"run_id", runID,
		"objective", cp.Config.Objective,
		"from_iteration", cp.Iteration,
		"best_f", cp.BestF,
	)

	esOpts := []es.Option{es.WithSeed(cp.Config.Seed + int64(cp.Iteration))}
	if cp.Config.Lambda > 0 {
		esOpts = append(esOpts, es.WithLambda(cp.Config.Lambda))
	}
	strategy, err := es.New(cp.BestX, cp.Config.Sigma, esOpts...)
	if err != nil {
		return fmt.Errorf("failed to create strategy: %w", err)
	}

	lg, err := trace.NewPersistent(resumeDataDir, runID, 1)
	if err != nil {
		return err
	}
	defer lg.Close()
	strategy.SetLogger(lg.Register(strategy))

	driverOpts := []opt.Option{}
	if iters > 0 {
		driverOpts = append(driverOpts, opt.WithMaxIter(iters))
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

	// The checkpoint keeps the better of the two bests and accumulates
	// the counters across resumes.
	bestX, bestF := res.BestX, res.BestF
	if cp.BestF < bestF {
		bestX, bestF = cp.BestX, cp.BestF
	}
	updated := store.NewCheckpoint(runID, bestX, bestF, cp.InitialF,
		cp.Iteration+res.Iterations, cp.Evaluations+res.Evaluations, cp.Config)
	if err := checkpointStore.SaveCheckpoint(runID, updated); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	fmt.Printf("Resumed run %s: f %.6e -> %.6e (+%d iterations, %s)\n",
		runID, cp.BestF, bestF, res.Iterations, elapsed.Round(time.Millisecond))
	return nil
}
