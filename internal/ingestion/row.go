// Package ingestion turns raw upstream rows into scored, durable transaction
// records: chunked commits, idempotency on the upstream identifier, and
// at-most-once scoring per transaction.
package ingestion

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fraudlens-risk-platform/internal/domain/transaction"
)

// SourceIDColumn is the upstream dataset's primary key column, used as the
// idempotency key. It is metadata only; the system identity is the UUID.
const SourceIDColumn = "TransactionID"

// SourceRow is one raw row from the batch source. Values arrive as text and
// any field may be absent or malformed.
type SourceRow map[string]string

// SourceID returns the upstream identifier, or "" when the row has none
func (r SourceRow) SourceID() string {
	return strings.TrimSpace(r[SourceIDColumn])
}

// floatField parses a numeric raw field. Missing, unparseable, NaN and
// infinite values all coerce to nil (stored as NULL) — malformed data is
// recovered locally, never fatal.
func floatField(r SourceRow, key string) *float64 {
	raw, ok := r[key]
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func stringField(r SourceRow, key string) *string {
	raw, ok := r[key]
	if !ok {
		return nil
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

// buildTransaction constructs a fresh unscored entity from a raw row,
// sanitizing every field on the way in.
func buildTransaction(row SourceRow) *transaction.Transaction {
	tx := transaction.New(row.SourceID())

	tx.Amount = floatField(row, "TransactionAmt")
	tx.ProductCode = stringField(row, "ProductCD")
	tx.Card1 = floatField(row, "card1")
	tx.Addr1 = floatField(row, "addr1")
	tx.C1 = floatField(row, "C1")
	tx.C2 = floatField(row, "C2")
	tx.D1 = floatField(row, "D1")
	tx.DeviceType = stringField(row, "DeviceType")
	tx.DeviceInfo = stringField(row, "DeviceInfo")

	identity := make(map[string]float64)
	for i := 1; i <= 38; i++ {
		key := fmt.Sprintf("id_%02d", i)
		if v := floatField(row, key); v != nil {
			identity[key] = *v
		}
	}
	if len(identity) > 0 {
		tx.IdentityFeatures = identity
	}

	return tx
}
