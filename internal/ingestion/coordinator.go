package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fraudlens-risk-platform/internal/domain/transaction"
	"github.com/fraudlens-risk-platform/internal/platform/persistence"
	"github.com/fraudlens-risk-platform/internal/risk"
)

// Scorer is the risk pipeline contract the coordinator depends on
type Scorer interface {
	Score(tx *transaction.Transaction) (*risk.ScoringResult, error)
}

// Alerter fans committed REVIEW/BLOCK transactions out to the analyst queue
type Alerter interface {
	Raise(ctx context.Context, tx *transaction.Transaction) error
}

// Report summarizes one ingestion run
type Report struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Chunks  int `json:"chunks"`
}

// Coordinator consumes a batch of raw rows and commits scored transactions in
// bounded chunks.
//
// Guarantees, per run:
//   - idempotency on the upstream source identifier: already-ingested rows
//     are skipped silently, never re-created, never re-scored
//   - at-most-once scoring: the pipeline runs once per new transaction,
//     after identity assignment and before the chunk commit
//   - chunk atomicity: a failed commit rolls back the whole chunk; a later
//     run restarts safely from the last durable chunk
//   - cancellation discards only the current uncommitted chunk
type Coordinator struct {
	txRunner  persistence.TxRunner
	repo      transaction.Repository
	pipeline  Scorer
	alerter   Alerter // optional
	chunkSize int
	pause     time.Duration
	logger    *slog.Logger
}

// NewCoordinator creates an ingestion coordinator. The pause is a deliberate
// throughput throttle keeping the feed visibly incremental to downstream
// consumers; it doubles as the cancellation check point.
func NewCoordinator(
	logger *slog.Logger,
	txRunner persistence.TxRunner,
	repo transaction.Repository,
	pipeline Scorer,
	alerter Alerter,
	chunkSize int,
	pause time.Duration,
) *Coordinator {
	if chunkSize <= 0 {
		chunkSize = 25
	}
	return &Coordinator{
		txRunner:  txRunner,
		repo:      repo,
		pipeline:  pipeline,
		alerter:   alerter,
		chunkSize: chunkSize,
		pause:     pause,
		logger:    logger,
	}
}

// IngestRows processes the batch sequentially in chunk order. The returned
// report reflects what became durable even when an error aborts the run.
func (c *Coordinator) IngestRows(ctx context.Context, rows []SourceRow) (*Report, error) {
	report := &Report{Total: len(rows)}

	// Guards against duplicate source ids within the same batch; the store
	// lookup only sees previously committed chunks.
	seen := make(map[string]struct{})

	for start := 0; start < len(rows); start += c.chunkSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		end := start + c.chunkSize
		if end > len(rows) {
			end = len(rows)
		}

		pending, err := c.prepareChunk(ctx, rows[start:end], seen, report)
		if err != nil {
			return report, err
		}

		if len(pending) > 0 {
			if err := c.commitChunk(ctx, pending); err != nil {
				return report, fmt.Errorf("chunk commit failed at row %d: %w", start, err)
			}
			report.Created += len(pending)
			report.Chunks++

			c.fanOutAlerts(ctx, pending)
		}

		if end < len(rows) && c.pause > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(c.pause):
			}
		}
	}

	c.logger.Info("Ingestion run finished",
		"total", report.Total,
		"created", report.Created,
		"skipped", report.Skipped,
		"chunks", report.Chunks,
	)
	return report, nil
}

// prepareChunk builds and scores the new transactions of one chunk without
// making anything durable. Scoring happens here — after the entity has its
// system identity, before the commit — so the idempotency check is the only
// gate in front of the pipeline.
func (c *Coordinator) prepareChunk(ctx context.Context, chunk []SourceRow, seen map[string]struct{}, report *Report) ([]*transaction.Transaction, error) {
	pending := make([]*transaction.Transaction, 0, len(chunk))

	for _, row := range chunk {
		sourceID := row.SourceID()

		if sourceID != "" {
			if _, dup := seen[sourceID]; dup {
				report.Skipped++
				continue
			}

			existing, err := c.repo.GetBySourceID(ctx, sourceID)
			if err != nil {
				return nil, fmt.Errorf("idempotency check failed for source %s: %w", sourceID, err)
			}
			if existing != nil {
				report.Skipped++
				seen[sourceID] = struct{}{}
				continue
			}
		}

		tx := buildTransaction(row)

		result, err := c.pipeline.Score(tx)
		if err != nil {
			// A missing artifact means no meaningful decision can be
			// produced for anything in this run: abort, do not retry.
			return nil, fmt.Errorf("scoring failed for source %s: %w", sourceID, err)
		}
		tx.ApplyAssessment(result.Assessment())

		pending = append(pending, tx)
		if sourceID != "" {
			seen[sourceID] = struct{}{}
		}
	}

	return pending, nil
}

// commitChunk makes the chunk durable as one atomic unit
func (c *Coordinator) commitChunk(ctx context.Context, pending []*transaction.Transaction) error {
	return c.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := c.repo.WithTx(tx)
		for _, t := range pending {
			if err := repo.Create(ctx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

// fanOutAlerts raises analyst alerts for the committed chunk. Alerts are
// advisory: a failure is logged and the run continues.
func (c *Coordinator) fanOutAlerts(ctx context.Context, committed []*transaction.Transaction) {
	if c.alerter == nil {
		return
	}

	for _, tx := range committed {
		d := tx.Assessment.Decision
		if d != transaction.DecisionReview && d != transaction.DecisionBlock {
			continue
		}
		if err := c.alerter.Raise(ctx, tx); err != nil {
			c.logger.Error("Failed to raise alert", "transaction_id", tx.ID.String(), "error", err)
		}
	}
}
