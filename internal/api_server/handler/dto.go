package handler

// AttributionResponse represents one feature attribution in API responses
type AttributionResponse struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
}

// AssessmentResponse represents a risk assessment in API responses
type AssessmentResponse struct {
	FraudProbability float64               `json:"fraud_probability"`
	AnomalyScore     float64               `json:"anomaly_score"`
	Decision         string                `json:"decision"`
	Severity         string                `json:"severity"`
	Reasons          []string              `json:"reasons"`
	Attributions     []AttributionResponse `json:"attributions"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID         string `json:"id"`
	SourceID   string `json:"source_id,omitempty"`
	IngestedAt string `json:"ingested_at"`

	Amount      *float64 `json:"amount"`
	ProductCode *string  `json:"product_code"`
	DeviceType  *string  `json:"device_type"`
	DeviceInfo  *string  `json:"device_info"`

	Assessment *AssessmentResponse `json:"assessment,omitempty"`

	AnalystDecision string `json:"analyst_decision,omitempty"`
	AnalystReason   string `json:"analyst_reason,omitempty"`
	LabeledAt       string `json:"labeled_at,omitempty"`
}

// TransactionListResponse represents a list of transactions in API responses
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// ScoringResponse represents an on-demand scoring result in API responses
type ScoringResponse struct {
	TransactionID string             `json:"transaction_id"`
	Persisted     bool               `json:"persisted"`
	Assessment    AssessmentResponse `json:"assessment"`
}

// FeedbackRequest represents an analyst label submitted for a transaction
type FeedbackRequest struct {
	Decision string `json:"decision" binding:"required,oneof=APPROVE CONFIRM_FRAUD"`
	Reason   string `json:"reason,omitempty"`
}

// StartIngestionRequest represents a request to start a batch ingestion run
type StartIngestionRequest struct {
	Limit int `json:"limit" binding:"min=0"`
}

// IngestionReportResponse represents the outcome of an ingestion run
type IngestionReportResponse struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Chunks  int `json:"chunks"`
}

// AlertResponse represents an analyst alert in API responses
type AlertResponse struct {
	ID              string  `json:"id"`
	TransactionID   string  `json:"transaction_id"`
	RiskScore       float64 `json:"risk_score"`
	Severity        string  `json:"severity"`
	Status          string  `json:"status"`
	AnalystDecision string  `json:"analyst_decision,omitempty"`
	AnalystReason   string  `json:"analyst_reason,omitempty"`
	ResolvedAt      string  `json:"resolved_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// AlertListResponse represents the pending analyst queue in API responses
type AlertListResponse struct {
	Alerts []AlertResponse `json:"alerts"`
}

// ResolveAlertRequest represents an analyst resolution of an alert
type ResolveAlertRequest struct {
	Decision string `json:"decision" binding:"required,oneof=APPROVE CONFIRM_FRAUD"`
	Reason   string `json:"reason,omitempty"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
