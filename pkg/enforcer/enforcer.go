// Package enforcer ties input validation, PII redaction, and audit logging
// into a single entry point for case material entering the pipeline. Every
// call produces exactly one audit record; audit failures are logged and
// never block processing.
package enforcer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lexiqlabs/lexshield/pkg/audit"
	"github.com/lexiqlabs/lexshield/pkg/common"
	"github.com/lexiqlabs/lexshield/pkg/config"
	"github.com/lexiqlabs/lexshield/pkg/hallucination"
	"github.com/lexiqlabs/lexshield/pkg/input_validation"
	"github.com/lexiqlabs/lexshield/pkg/pii_redaction"
)

// Caller identifies who submitted the input. Both fields are optional.
type Caller struct {
	UserID    string
	IPAddress string
}

// ProcessResult is the outcome of one case-input submission.
type ProcessResult struct {
	RequestID      string
	Accepted       bool
	RedactedText   string
	Violations     []string
	RiskScore      float64
	NumRedactions  int
	PIICategories  []string
	PlaceholderMap map[string]pii_redaction.PlaceholderInfo
}

// FileResult is the outcome of one file-upload check.
type FileResult struct {
	RequestID         string
	Accepted          bool
	SanitizedFilename string
	Violations        []string
	RiskScore         float64
}

// Stats counts what the enforcer has seen since construction.
type Stats struct {
	Processed     uint64
	Rejected      uint64
	PIIRedactions uint64
}

// Enforcer is the façade over the security pipeline. It is safe for
// concurrent use.
type Enforcer struct {
	validator     *input_validation.Validator
	redactor      *pii_redaction.Redactor
	detector      *hallucination.Detector
	sink          audit.Sink
	logger        *logrus.Logger
	minConfidence float64

	seq           atomic.Uint64
	processed     atomic.Uint64
	rejected      atomic.Uint64
	piiRedactions atomic.Uint64
}

// New builds an enforcer. detector may be nil when outbound validation is
// not needed; sink may be nil to disable audit persistence.
func New(validator *input_validation.Validator, redactor *pii_redaction.Redactor, detector *hallucination.Detector, sink audit.Sink, logger *logrus.Logger) *Enforcer {
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &Enforcer{
		validator:     validator,
		redactor:      redactor,
		detector:      detector,
		sink:          sink,
		logger:        logger,
		minConfidence: pii_redaction.DefaultMinConfidence,
	}
}

// NewFromConfig assembles the full pipeline from loaded configuration.
// index may be nil when no retrieval index is available; hallucinationSink
// receives the detector's records and may differ from the main audit sink.
func NewFromConfig(cfg *config.Config, index hallucination.Index, sink audit.Sink, hallucinationSink audit.Sink, logger *logrus.Logger) *Enforcer {
	validator := input_validation.NewValidator(logger, input_validation.Limits{
		MaxTextLength: cfg.Validation.MaxTextLength,
		MinTextLength: cfg.Validation.MinTextLength,
		MaxFileSizeMB: cfg.Validation.MaxFileSizeMB,
		RiskThreshold: cfg.Validation.RiskThreshold,
	})
	detector := hallucination.NewDetector(index, hallucinationSink, logger, hallucination.Config{
		Matcher: hallucination.MatcherConfig{
			OverlapThreshold: cfg.Hallucination.OverlapThreshold,
			SearchK:          cfg.Hallucination.SearchK,
			Timeout:          cfg.Hallucination.IndexTimeout,
			MaxFailures:      cfg.Hallucination.MaxFailures,
			BreakerReset:     cfg.Hallucination.BreakerReset,
			CacheTTL:         cfg.Hallucination.CacheTTL,
		},
		Concurrency: cfg.Hallucination.Concurrency,
	})
	e := New(validator, pii_redaction.NewRedactor(logger), detector, sink, logger)
	if cfg.Redaction.MinConfidence > 0 {
		e.minConfidence = cfg.Redaction.MinConfidence
	}
	return e
}

// ProcessCaseInput validates and redacts one piece of case text. Rejected
// input is never echoed back; the audit record carries only a hash of the
// original.
func (e *Enforcer) ProcessCaseInput(ctx context.Context, text string, caller Caller) ProcessResult {
	requestID := e.nextRequestID()
	ctx = context.WithValue(ctx, common.RequestIdKey, requestID)
	e.processed.Add(1)

	vres := e.validator.ValidateCaseText(text)
	if !vres.Valid {
		e.rejected.Add(1)
		e.writeRecord(ctx, audit.Record{
			Timestamp:         time.Now().UTC(),
			RequestID:         requestID,
			UserID:            userOrAnonymous(caller.UserID),
			Action:            audit.ActionInputValidationFailed,
			OriginalInputHash: hashText(text),
			ValidationPassed:  false,
			RiskScore:         vres.RiskScore,
			Violations:        vres.Violations,
			IPAddress:         caller.IPAddress,
		})
		if e.logger != nil {
			e.logger.WithFields(logrus.Fields{
				"request_id": requestID,
				"risk_score": vres.RiskScore,
				"violations": vres.Violations,
			}).Warn("case input rejected")
		}
		return ProcessResult{
			RequestID:  requestID,
			Accepted:   false,
			Violations: vres.Violations,
			RiskScore:  vres.RiskScore,
		}
	}

	rres := e.redactor.Redact(vres.Sanitized, e.minConfidence)
	e.piiRedactions.Add(uint64(rres.NumRedactions))

	e.writeRecord(ctx, audit.Record{
		Timestamp:           time.Now().UTC(),
		RequestID:           requestID,
		UserID:              userOrAnonymous(caller.UserID),
		Action:              audit.ActionCaseInputProcessed,
		OriginalInputHash:   rres.OriginalHash,
		PIICategories:       rres.Categories,
		NumRedactions:       rres.NumRedactions,
		RedactionConfidence: rres.Confidence,
		ValidationPassed:    true,
		RiskScore:           vres.RiskScore,
		IPAddress:           caller.IPAddress,
	})

	return ProcessResult{
		RequestID:      requestID,
		Accepted:       true,
		RedactedText:   rres.RedactedText,
		RiskScore:      vres.RiskScore,
		NumRedactions:  rres.NumRedactions,
		PIICategories:  rres.Categories,
		PlaceholderMap: rres.PlaceholderMap,
	}
}

// ProcessFileUpload checks one file upload and records the outcome.
func (e *Enforcer) ProcessFileUpload(ctx context.Context, filename string, sizeBytes int64, mimeType string, caller Caller) FileResult {
	requestID := e.nextRequestID()
	ctx = context.WithValue(ctx, common.RequestIdKey, requestID)
	e.processed.Add(1)

	vres := e.validator.ValidateFileUpload(filename, sizeBytes, mimeType)
	if !vres.Valid {
		e.rejected.Add(1)
	}

	e.writeRecord(ctx, audit.Record{
		Timestamp:         time.Now().UTC(),
		RequestID:         requestID,
		UserID:            userOrAnonymous(caller.UserID),
		Action:            audit.ActionFileUploadValidation,
		OriginalInputHash: hashText(filename),
		ValidationPassed:  vres.Valid,
		RiskScore:         vres.RiskScore,
		Violations:        vres.Violations,
		IPAddress:         caller.IPAddress,
	})

	return FileResult{
		RequestID:         requestID,
		Accepted:          vres.Valid,
		SanitizedFilename: vres.Sanitized,
		Violations:        vres.Violations,
		RiskScore:         vres.RiskScore,
	}
}

// ValidateOutput checks generated text for fabricated legal references
// before it is shown to the caller. With no detector configured the text
// passes unchecked.
func (e *Enforcer) ValidateOutput(ctx context.Context, text string, caller Caller) hallucination.Report {
	if e.detector == nil {
		return hallucination.Report{Confidence: 1.0, Summary: "Output validation disabled"}
	}
	return e.detector.DetectForUser(ctx, text, caller.UserID)
}

// Stats returns cumulative counters.
func (e *Enforcer) Stats() Stats {
	return Stats{
		Processed:     e.processed.Load(),
		Rejected:      e.rejected.Load(),
		PIIRedactions: e.piiRedactions.Load(),
	}
}

func (e *Enforcer) nextRequestID() string {
	n := e.seq.Add(1)
	return fmt.Sprintf("REQ_%s_%06d", time.Now().UTC().Format("20060102150405"), n%1000000)
}

func (e *Enforcer) writeRecord(ctx context.Context, rec audit.Record) {
	if err := e.sink.Write(ctx, rec); err != nil && e.logger != nil {
		e.logger.WithError(err).Warn("failed to write audit record")
	}
}

func userOrAnonymous(userID string) string {
	if userID == "" {
		return "anonymous"
	}
	return userID
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
