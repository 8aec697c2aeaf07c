// Package hallucination validates legal references in generated text
// against known statute tables and the retrieval index, and reports
// suspected fabrications. Detection never mutates the text and never fails
// because of infrastructure: unverifiable references are left unflagged.
package hallucination

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/lexiqlabs/lexshield/pkg/audit"
	"github.com/lexiqlabs/lexshield/pkg/common"
	"github.com/lexiqlabs/lexshield/pkg/legal_refs"
)

// Verdict confidence values per outcome class.
const (
	confidenceValid        = 0.9
	confidenceNotFound     = 0.8
	confidenceDoesNotExist = 0.95
	confidenceDefault      = 0.5
)

// defaultConcurrency bounds how many references are validated in parallel
// within one detection pass.
const defaultConcurrency = 4

// outputExcerptLimit caps how much generated text is copied into the
// hallucination audit stream.
const outputExcerptLimit = 500

// Verdict is the per-reference outcome.
type Verdict struct {
	Suspected             bool
	Reference             legal_refs.Reference
	Confidence            float64
	Reason                string
	ValidatedAgainstIndex bool
	MatchedStatute        bool
}

// Report aggregates one detection pass.
type Report struct {
	HasHallucinations bool
	NumReferences     int
	NumSuspected      int
	SuspectedRefs     []Verdict
	Confidence        float64
	Summary           string
}

// Config tunes a Detector. Zero values use defaults.
type Config struct {
	Matcher     MatcherConfig
	Concurrency int
}

// Detector composes reference extraction, statute validation, and citation
// matching into a single pass over generated text.
type Detector struct {
	statutes    StatuteValidator
	matcher     *CitationMatcher
	logger      *logrus.Logger
	sink        audit.Sink
	concurrency int
}

// NewDetector builds a detector. index may be nil, in which case case
// citations are reported as unverifiable rather than fabricated. sink
// receives one HallucinationRecord per pass that flags anything; pass
// audit.NopSink{} to disable.
func NewDetector(index Index, sink audit.Sink, logger *logrus.Logger, cfg Config) *Detector {
	if cfg.Concurrency == 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &Detector{
		matcher:     NewCitationMatcher(index, logger, cfg.Matcher),
		logger:      logger,
		sink:        sink,
		concurrency: cfg.Concurrency,
	}
}

// Detect extracts legal references from generated text and validates each
// one. The overall confidence is the mean over suspected verdicts, or 1.0
// when nothing is suspected.
func (d *Detector) Detect(ctx context.Context, text string) Report {
	return d.DetectForUser(ctx, text, "")
}

// DetectForUser is Detect with a user identifier attached to any audit
// record the pass produces.
func (d *Detector) DetectForUser(ctx context.Context, text, userID string) Report {
	refs := legal_refs.Extract(text)
	if len(refs) == 0 {
		return Report{
			HasHallucinations: false,
			NumReferences:     0,
			Confidence:        1.0,
			Summary:           "No references found to validate",
		}
	}

	verdicts := make([]Verdict, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			verdicts[i] = d.validate(gctx, ref)
			return nil
		})
	}
	_ = g.Wait() // validation never returns an error

	var suspected []Verdict
	for _, v := range verdicts {
		if v.Suspected {
			suspected = append(suspected, v)
		}
	}

	confidence := 1.0
	if len(suspected) > 0 {
		sum := 0.0
		for _, v := range suspected {
			sum += v.Confidence
		}
		confidence = sum / float64(len(suspected))
	}

	report := Report{
		HasHallucinations: len(suspected) > 0,
		NumReferences:     len(refs),
		NumSuspected:      len(suspected),
		SuspectedRefs:     suspected,
		Confidence:        confidence,
		Summary:           summarize(len(refs), len(suspected)),
	}

	if len(suspected) > 0 {
		d.record(ctx, text, userID, report)
	}
	return report
}

func (d *Detector) validate(ctx context.Context, ref legal_refs.Reference) Verdict {
	var valid bool
	var reason string
	validatedIndex := true
	matchedStatute := true

	if ref.Kind == legal_refs.KindCase {
		valid, reason = d.matcher.Match(ctx, ref)
		validatedIndex = valid
	} else {
		valid, reason = d.statutes.Validate(ref)
		matchedStatute = valid
	}

	confidence := confidenceDefault
	reasonLower := strings.ToLower(reason)
	switch {
	case valid:
		confidence = confidenceValid
	case strings.Contains(reasonLower, "does not exist"):
		confidence = confidenceDoesNotExist
	case strings.Contains(reasonLower, "not found"):
		confidence = confidenceNotFound
	}

	return Verdict{
		Suspected:             !valid,
		Reference:             ref,
		Confidence:            confidence,
		Reason:                reason,
		ValidatedAgainstIndex: validatedIndex,
		MatchedStatute:        matchedStatute,
	}
}

func (d *Detector) record(ctx context.Context, text, userID string, report Report) {
	if userID == "" {
		if v, ok := ctx.Value(common.UserIdKey).(string); ok {
			userID = v
		}
	}
	if userID == "" {
		userID = "anonymous"
	}
	suspectedRefs := make([]audit.SuspectedReference, 0, len(report.SuspectedRefs))
	for _, v := range report.SuspectedRefs {
		suspectedRefs = append(suspectedRefs, audit.SuspectedReference{
			Kind:                  string(v.Reference.Kind),
			Text:                  v.Reference.Text,
			Reason:                v.Reason,
			Confidence:            v.Confidence,
			ValidatedAgainstIndex: v.ValidatedAgainstIndex,
			MatchedStatute:        v.MatchedStatute,
		})
	}

	rec := audit.HallucinationRecord{
		Timestamp:     time.Now().UTC(),
		UserID:        userID,
		OutputExcerpt: truncate(text, outputExcerptLimit),
		SuspectedRefs: suspectedRefs,
		Confidence:    report.Confidence,
		NumSuspected:  report.NumSuspected,
	}
	if err := d.sink.Write(ctx, rec); err != nil && d.logger != nil {
		d.logger.WithError(err).Warn("failed to write hallucination audit record")
	}
	if d.logger != nil {
		d.logger.WithFields(logrus.Fields{
			"num_references": report.NumReferences,
			"num_suspected":  report.NumSuspected,
			"confidence":     report.Confidence,
		}).Warn("suspected hallucinations in generated text")
	}
}

func summarize(total, suspected int) string {
	if suspected == 0 {
		return fmt.Sprintf("All %d references validated successfully.", total)
	}
	return fmt.Sprintf("Found %d suspected hallucination(s) out of %d total references. Please verify these references independently.", suspected, total)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
