// Package audit defines the append-only audit record shapes and the sink
// abstraction the enforcer and the hallucination detector write through.
// Records never carry raw input text or original PII values, only one-way
// hashes and category tags.
package audit

import "time"

// Action tags recorded with each security event.
const (
	ActionInputValidationFailed = "INPUT_VALIDATION_FAILED"
	ActionCaseInputProcessed    = "CASE_INPUT_PROCESSED"
	ActionFileUploadValidation  = "FILE_UPLOAD_VALIDATION"
)

// Record is one row of the security audit stream, one JSON object per line.
type Record struct {
	Timestamp           time.Time `json:"timestamp"`
	RequestID           string    `json:"request_id"`
	UserID              string    `json:"user_id,omitempty"`
	Action              string    `json:"action"`
	OriginalInputHash   string    `json:"original_input_hash"`
	PIICategories       []string  `json:"pii_types_detected"`
	NumRedactions       int       `json:"num_redactions"`
	RedactionConfidence float64   `json:"redaction_confidence_score"`
	ValidationPassed    bool      `json:"validation_passed"`
	RiskScore           float64   `json:"risk_score"`
	Violations          []string  `json:"violations"`
	IPAddress           string    `json:"ip_address,omitempty"`
}

// SuspectedReference describes one flagged reference inside a
// HallucinationRecord.
type SuspectedReference struct {
	Kind                  string  `json:"type"`
	Text                  string  `json:"text"`
	Reason                string  `json:"reason"`
	Confidence            float64 `json:"confidence"`
	ValidatedAgainstIndex bool    `json:"validated_against_index"`
	MatchedStatute        bool    `json:"matched_statute"`
}

// HallucinationRecord is one row of the hallucination audit stream. The
// generated text is truncated so the log stays bounded.
type HallucinationRecord struct {
	Timestamp     time.Time            `json:"timestamp"`
	UserID        string               `json:"user_id"`
	OutputExcerpt string               `json:"output_excerpt"`
	SuspectedRefs []SuspectedReference `json:"suspected_fake_refs"`
	Confidence    float64              `json:"confidence_score"`
	NumSuspected  int                  `json:"num_suspected"`
}
