package alert

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudlens-risk-platform/internal/domain/transaction"
)

func TestNew(t *testing.T) {
	txID := uuid.New()
	a := New(txID, 0.85, transaction.SeverityHigh)

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.Equal(t, txID, a.TransactionID)
	assert.Equal(t, 0.85, a.RiskScore)
	assert.Equal(t, transaction.SeverityHigh, a.Severity)
	assert.Equal(t, StatusPending, a.Status)
	assert.False(t, a.CreatedAt.IsZero())
	assert.Nil(t, a.ResolvedAt)
}

func TestAlert_Resolve(t *testing.T) {
	now := time.Now().UTC()

	t.Run("Success", func(t *testing.T) {
		a := New(uuid.New(), 0.85, transaction.SeverityHigh)

		err := a.Resolve(transaction.AnalystConfirmFraud, "matches known pattern", now)
		require.NoError(t, err)

		assert.Equal(t, StatusResolved, a.Status)
		require.NotNil(t, a.AnalystDecision)
		assert.Equal(t, transaction.AnalystConfirmFraud, *a.AnalystDecision)
		require.NotNil(t, a.AnalystReason)
		assert.Equal(t, "matches known pattern", *a.AnalystReason)
		require.NotNil(t, a.ResolvedAt)
		assert.Equal(t, now, *a.ResolvedAt)
	})

	t.Run("EmptyReasonStaysNil", func(t *testing.T) {
		a := New(uuid.New(), 0.60, transaction.SeverityMedium)
		require.NoError(t, a.Resolve(transaction.AnalystApprove, "", now))
		assert.Nil(t, a.AnalystReason)
	})

	t.Run("DoubleResolveRejected", func(t *testing.T) {
		a := New(uuid.New(), 0.85, transaction.SeverityHigh)
		require.NoError(t, a.Resolve(transaction.AnalystApprove, "", now))

		err := a.Resolve(transaction.AnalystConfirmFraud, "", now.Add(time.Minute))
		assert.ErrorIs(t, err, ErrAlreadyResolved)
		assert.Equal(t, transaction.AnalystApprove, *a.AnalystDecision)
	})
}
