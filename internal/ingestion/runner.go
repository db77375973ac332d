package ingestion

import (
	"context"
	"log/slog"

	"github.com/panjf2000/ants/v2"
)

// Runner serializes ingestion runs through a single-slot worker pool: at most
// one run is ever active against the store, so concurrent triggers queue
// behind each other instead of racing the idempotency check.
type Runner struct {
	coordinator *Coordinator
	pool        *ants.Pool
	logger      *slog.Logger
}

type runResult struct {
	report *Report
	err    error
}

// NewRunner creates the serialized runner
func NewRunner(logger *slog.Logger, coordinator *Coordinator) (*Runner, error) {
	// Pool size 1 is the concurrency model, not a tunable
	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}

	return &Runner{
		coordinator: coordinator,
		pool:        pool,
		logger:      logger,
	}, nil
}

// Run submits a batch and waits for its outcome. Callers arriving while a run
// is active block until the pool slot frees up.
func (r *Runner) Run(ctx context.Context, rows []SourceRow) (*Report, error) {
	resultChan := make(chan runResult, 1)

	err := r.pool.Submit(func() {
		report, err := r.coordinator.IngestRows(ctx, rows)
		resultChan <- runResult{report: report, err: err}
	})
	if err != nil {
		r.logger.Error("Failed to submit ingestion run", "error", err)
		return nil, err
	}

	res := <-resultChan
	return res.report, res.err
}

// Shutdown releases the worker pool
func (r *Runner) Shutdown() {
	r.logger.Info("Shutting down ingestion runner", "running", r.pool.Running())
	r.pool.Release()
}
