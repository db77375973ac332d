package risk

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/fraudlens-risk-platform/internal/domain/transaction"
)

// featureNameRx sanitizes column names the same way the training job does,
// so inference lookups always hit the trained contract.
var featureNameRx = regexp.MustCompile(`[^A-Za-z0-9_]`)

func sanitizeFeatureName(name string) string {
	return featureNameRx.ReplaceAllString(name, "_")
}

// featureValue maps one trained feature column onto the transaction's raw
// fields. Missing, NaN and infinite values coerce to the neutral default 0 so
// inference stays live when upstream data is incomplete. Categorical text is
// force-coerced numerically, exactly matching the training-side encoding.
func featureValue(tx *transaction.Transaction, column string) float64 {
	var v float64

	switch name := sanitizeFeatureName(column); name {
	case "TransactionAmt":
		v = derefFloat(tx.Amount)
	case "ProductCD":
		v = coerceNumeric(tx.ProductCode)
	case "card1":
		v = derefFloat(tx.Card1)
	case "addr1":
		v = derefFloat(tx.Addr1)
	case "C1":
		v = derefFloat(tx.C1)
	case "C2":
		v = derefFloat(tx.C2)
	case "D1":
		v = derefFloat(tx.D1)
	case "DeviceType":
		v = coerceNumeric(tx.DeviceType)
	case "DeviceInfo":
		v = coerceNumeric(tx.DeviceInfo)
	default:
		if strings.HasPrefix(name, "id_") {
			v = tx.IdentityFeatures[name]
		}
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// featureVector aligns the transaction onto the exact trained column set,
// in training order. Unknown columns contribute 0.
func featureVector(tx *transaction.Transaction, columns []string) []float64 {
	x := make([]float64, len(columns))
	for i, col := range columns {
		x[i] = featureValue(tx, col)
	}
	return x
}

func derefFloat(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func coerceNumeric(p *string) float64 {
	if p == nil {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*p), 64)
	if err != nil {
		return 0
	}
	return f
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
