// Package postgres provides the PostgreSQL implementation of the transaction
// repository. It handles all database operations while maintaining transaction
// safety and proper error handling for the risk platform.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fraudlens-risk-platform/internal/domain/transaction"
	"github.com/fraudlens-risk-platform/internal/platform/persistence"
)

const uniqueViolationCode = "23505"

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing chunk commits to
// group multiple inserts into one atomic unit.
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const transactionColumns = `
		id, source_id, ingested_at,
		amount, product_code, card1, addr1, c1, c2, d1, device_type, device_info, identity_features,
		fraud_probability, anomaly_score, decision, severity, reasons, attributions,
		analyst_decision, analyst_reason, labeled_at
`

// Create stores a new transaction. The partial unique index on source_id
// turns a duplicate upstream identifier into ErrDuplicateSourceID.
func (r *TransactionRepository) Create(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	identity, err := marshalIdentity(tx.IdentityFeatures)
	if err != nil {
		return err
	}

	fields, err := assessmentFields(tx.Assessment)
	if err != nil {
		return err
	}

	_, err = r.querier.Exec(ctx, query,
		tx.ID,
		tx.SourceID,
		tx.IngestedAt,
		tx.Amount,
		tx.ProductCode,
		tx.Card1,
		tx.Addr1,
		tx.C1,
		tx.C2,
		tx.D1,
		tx.DeviceType,
		tx.DeviceInfo,
		identity,
		fields.fraudProbability,
		fields.anomalyScore,
		fields.decision,
		fields.severity,
		fields.reasons,
		fields.attributions,
		tx.AnalystDecision,
		tx.AnalystReason,
		tx.LabeledAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode && tx.SourceID != nil {
			return transaction.ErrDuplicateSourceID{SourceID: *tx.SourceID}
		}
		r.logger.Error("Failed to create transaction", "id", tx.ID.String(), "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its system identifier
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = $1
	`

	tx, err := scanTransaction(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

// GetBySourceID retrieves a transaction by its upstream source identifier.
// Returns (nil, nil) when no transaction carries the identifier, which is the
// signal the ingestion idempotency check relies on.
func (r *TransactionRepository) GetBySourceID(ctx context.Context, sourceID string) (*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE source_id = $1
	`

	tx, err := scanTransaction(r.querier.QueryRow(ctx, query, sourceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get transaction by source ID", "source_id", sourceID, "error", err)
		return nil, fmt.Errorf("failed to get transaction by source ID: %w", err)
	}

	return tx, nil
}

// UpdateAssessment overwrites the five computed fields together so readers
// never observe a partially scored transaction.
func (r *TransactionRepository) UpdateAssessment(ctx context.Context, id uuid.UUID, a *transaction.Assessment) error {
	query := `
		UPDATE transactions
		SET fraud_probability = $1, anomaly_score = $2, decision = $3, severity = $4, reasons = $5, attributions = $6
		WHERE id = $7
	`

	fields, err := assessmentFields(a)
	if err != nil {
		return err
	}

	result, err := r.querier.Exec(ctx, query,
		fields.fraudProbability,
		fields.anomalyScore,
		fields.decision,
		fields.severity,
		fields.reasons,
		fields.attributions,
		id,
	)
	if err != nil {
		r.logger.Error("Failed to update assessment", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update assessment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{TransactionID: id}
	}

	return nil
}

// UpdateAnalystLabel records the human reviewer's verdict on a transaction
func (r *TransactionRepository) UpdateAnalystLabel(ctx context.Context, id uuid.UUID, decision transaction.AnalystDecision, reason string, labeledAt time.Time) error {
	query := `
		UPDATE transactions
		SET analyst_decision = $1, analyst_reason = $2, labeled_at = $3
		WHERE id = $4
	`

	var reasonArg *string
	if reason != "" {
		reasonArg = &reason
	}

	result, err := r.querier.Exec(ctx, query, string(decision), reasonArg, labeledAt, id)
	if err != nil {
		r.logger.Error("Failed to update analyst label", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update analyst label: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{TransactionID: id}
	}

	return nil
}

// List returns transactions ordered by ingestion time, newest first
func (r *TransactionRepository) List(ctx context.Context, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY ingested_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.querier.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list transactions", "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*transaction.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}

// Count returns the total number of transactions
func (r *TransactionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.querier.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count transactions", "error", err)
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// jsonFields holds the serialized computed-field group for one row. All six
// columns are written together or not at all.
type jsonFields struct {
	fraudProbability *float64
	anomalyScore     *float64
	decision         *string
	severity         *string
	reasons          []byte
	attributions     []byte
}

func assessmentFields(a *transaction.Assessment) (jsonFields, error) {
	var f jsonFields
	if a == nil {
		return f, nil
	}

	reasons, err := json.Marshal(a.Reasons)
	if err != nil {
		return f, fmt.Errorf("failed to marshal reasons: %w", err)
	}
	attributions, err := json.Marshal(a.Attributions)
	if err != nil {
		return f, fmt.Errorf("failed to marshal attributions: %w", err)
	}

	decision := string(a.Decision)
	severity := string(a.Severity)
	f.fraudProbability = &a.FraudProbability
	f.anomalyScore = &a.AnomalyScore
	f.decision = &decision
	f.severity = &severity
	f.reasons = reasons
	f.attributions = attributions
	return f, nil
}

func marshalIdentity(features map[string]float64) ([]byte, error) {
	if features == nil {
		features = map[string]float64{}
	}
	data, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal identity features: %w", err)
	}
	return data, nil
}

func scanTransaction(row pgx.Row) (*transaction.Transaction, error) {
	var tx transaction.Transaction
	var identity []byte
	var fraudProbability, anomalyScore *float64
	var decision, severity, analystDecision *string
	var reasons, attributions []byte

	err := row.Scan(
		&tx.ID,
		&tx.SourceID,
		&tx.IngestedAt,
		&tx.Amount,
		&tx.ProductCode,
		&tx.Card1,
		&tx.Addr1,
		&tx.C1,
		&tx.C2,
		&tx.D1,
		&tx.DeviceType,
		&tx.DeviceInfo,
		&identity,
		&fraudProbability,
		&anomalyScore,
		&decision,
		&severity,
		&reasons,
		&attributions,
		&analystDecision,
		&tx.AnalystReason,
		&tx.LabeledAt,
	)
	if err != nil {
		return nil, err
	}

	if len(identity) > 0 {
		if err := json.Unmarshal(identity, &tx.IdentityFeatures); err != nil {
			return nil, fmt.Errorf("failed to unmarshal identity features: %w", err)
		}
	}

	// The computed fields are written all together; decision being present
	// means the whole assessment is.
	if decision != nil {
		a := transaction.Assessment{
			FraudProbability: *fraudProbability,
			AnomalyScore:     *anomalyScore,
			Decision:         transaction.Decision(*decision),
			Severity:         transaction.Severity(*severity),
		}
		if len(reasons) > 0 {
			if err := json.Unmarshal(reasons, &a.Reasons); err != nil {
				return nil, fmt.Errorf("failed to unmarshal reasons: %w", err)
			}
		}
		if len(attributions) > 0 {
			if err := json.Unmarshal(attributions, &a.Attributions); err != nil {
				return nil, fmt.Errorf("failed to unmarshal attributions: %w", err)
			}
		}
		tx.Assessment = &a
	}

	if analystDecision != nil {
		d := transaction.AnalystDecision(*analystDecision)
		tx.AnalystDecision = &d
	}

	return &tx, nil
}
