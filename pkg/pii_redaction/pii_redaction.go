// Package pii_redaction detects and redacts personally identifiable
// information in case text while preserving enough structure for the
// language model to reason over. Detected spans are replaced with stable
// placeholders derived from a one-way hash of the original value; the
// original values are never stored.
package pii_redaction

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lexiqlabs/lexshield/pkg/pii_entities"
)

// DefaultMinConfidence is the confidence threshold below which detections
// are discarded.
const DefaultMinConfidence = 0.7

// contextWindow is the number of characters inspected on each side of a
// match during false-positive suppression.
const contextWindow = 50

// ErrUnredactUnsupported is returned by Unredact unconditionally. Redaction
// is one-way; any attempt to reverse it fails loudly rather than silently
// returning the redacted text.
var ErrUnredactUnsupported = errors.New("unredaction is not supported: redaction is one-way")

// Detection is a single PII match inside the scanned text.
type Detection struct {
	Category    pii_entities.Category
	Value       string
	Placeholder string
	Start       int
	End         int
	Confidence  float64
}

// PlaceholderInfo describes what a placeholder stands for without revealing
// the original value.
type PlaceholderInfo struct {
	Category   string  `json:"pii_type"`
	ValueHash  string  `json:"original_value_hash"`
	Confidence float64 `json:"confidence"`
}

// Detail is the per-redaction entry surfaced in results and audit metadata.
type Detail struct {
	Category    string  `json:"type"`
	Placeholder string  `json:"placeholder"`
	Confidence  float64 `json:"confidence"`
}

// Result is the outcome of one redaction pass.
type Result struct {
	JobID          string
	RedactedText   string
	OriginalHash   string
	Categories     []string
	NumRedactions  int
	PlaceholderMap map[string]PlaceholderInfo
	Confidence     float64
	Details        []Detail
}

// Redactor scans text against the pii_entities pattern library. It holds no
// per-call state; a Redactor is safe for concurrent use.
type Redactor struct {
	logger *logrus.Logger
}

func NewRedactor(logger *logrus.Logger) *Redactor {
	return &Redactor{logger: logger}
}

// Redact detects PII in text and replaces every detection at or above
// minConfidence with a placeholder. It is a pure function of its inputs and
// the pattern library.
func (r *Redactor) Redact(text string, minConfidence float64) Result {
	detections := r.detect(text)

	kept := detections[:0]
	for _, d := range detections {
		if d.Confidence >= minConfidence {
			kept = append(kept, d)
		}
	}
	kept = resolveOverlaps(kept)

	// Assign placeholders in text order so ordinals read left to right.
	// The same value always maps to the same placeholder within a pass.
	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	counters := make(map[pii_entities.Category]int)
	seen := make(map[string]string)
	for i := range kept {
		kept[i].Placeholder = nextPlaceholder(counters, seen, kept[i].Category, kept[i].Value)
	}

	// Replace right to left so earlier offsets stay valid.
	redacted := text
	placeholderMap := make(map[string]PlaceholderInfo, len(kept))
	details := make([]Detail, 0, len(kept))
	categories := make(map[string]bool)
	for i := len(kept) - 1; i >= 0; i-- {
		d := kept[i]
		redacted = redacted[:d.Start] + d.Placeholder + redacted[d.End:]
		placeholderMap[d.Placeholder] = PlaceholderInfo{
			Category:   string(d.Category),
			ValueHash:  hashValue(d.Value),
			Confidence: d.Confidence,
		}
		categories[string(d.Category)] = true
	}
	for _, d := range kept {
		details = append(details, Detail{
			Category:    string(d.Category),
			Placeholder: d.Placeholder,
			Confidence:  d.Confidence,
		})
	}

	confidence := 1.0
	if len(kept) > 0 {
		sum := 0.0
		for _, d := range kept {
			sum += d.Confidence
		}
		confidence = sum / float64(len(kept))
	}

	categoryList := make([]string, 0, len(categories))
	for c := range categories {
		categoryList = append(categoryList, c)
	}
	sort.Strings(categoryList)

	if r.logger != nil && len(kept) > 0 {
		r.logger.WithFields(logrus.Fields{
			"num_redactions": len(kept),
			"categories":     categoryList,
		}).Debug("pii redacted")
	}

	return Result{
		JobID:          uuid.NewString(),
		RedactedText:   redacted,
		OriginalHash:   hashValue(text),
		Categories:     categoryList,
		NumRedactions:  len(kept),
		PlaceholderMap: placeholderMap,
		Confidence:     confidence,
		Details:        details,
	}
}

// Unredact exists so callers discover explicitly that reversal is not
// available. It always returns ErrUnredactUnsupported.
func (r *Redactor) Unredact(string, map[string]PlaceholderInfo) (string, error) {
	return "", ErrUnredactUnsupported
}

func (r *Redactor) detect(text string) []Detection {
	var detections []Detection
	for _, category := range pii_entities.DetectionOrder {
		for _, pattern := range pii_entities.Patterns[category] {
			for _, loc := range pattern.FindAllStringIndex(text, -1) {
				value := text[loc[0]:loc[1]]
				if isFalsePositive(category, value, text, loc[0]) {
					continue
				}
				detections = append(detections, Detection{
					Category:   category,
					Value:      value,
					Start:      loc[0],
					End:        loc[1],
					Confidence: pii_entities.BaseConfidence[category],
				})
			}
		}
	}
	return detections
}

// resolveOverlaps drops detections whose span overlaps an already accepted
// higher-confidence one. Exact duplicates collapse; at equal confidence the
// longer and earlier span wins.
func resolveOverlaps(detections []Detection) []Detection {
	sorted := make([]Detection, len(detections))
	copy(sorted, detections)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		li, lj := sorted[i].End-sorted[i].Start, sorted[j].End-sorted[j].Start
		if li != lj {
			return li > lj
		}
		return sorted[i].Start < sorted[j].Start
	})

	var accepted []Detection
	for _, d := range sorted {
		overlaps := false
		for _, a := range accepted {
			if d.Start < a.End && a.Start < d.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			accepted = append(accepted, d)
		}
	}
	return accepted
}

func isFalsePositive(category pii_entities.Category, value, text string, position int) bool {
	start := position - contextWindow
	if start < 0 {
		start = 0
	}
	end := position + len(value) + contextWindow
	if end > len(text) {
		end = len(text)
	}
	context := strings.ToLower(text[start:end])

	switch category {
	case pii_entities.PersonName:
		valueLower := strings.ToLower(value)
		for _, term := range pii_entities.PersonNameSkipTerms {
			if strings.Contains(valueLower, term) {
				return true
			}
		}
		if containsAny(context, pii_entities.PersonNameSkipTerms) &&
			!containsAny(context, pii_entities.Honorifics) {
			return true
		}
		// ALL-CAPS matches are acronyms or case-name fragments.
		if len(value) > 2 && value == strings.ToUpper(value) {
			return true
		}

	case pii_entities.Phone:
		if containsAny(context, pii_entities.PhoneContextSkipTerms) {
			return true
		}

	case pii_entities.BankAccount:
		if pii_entities.YearPattern.MatchString(value) {
			return true
		}
		if containsAny(context, pii_entities.BankAccountContextSkipTerms) {
			return true
		}
	}
	return false
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

func nextPlaceholder(counters map[pii_entities.Category]int, seen map[string]string, category pii_entities.Category, value string) string {
	key := string(category) + "\x00" + value
	if placeholder, ok := seen[key]; ok {
		return placeholder
	}
	counters[category]++
	placeholder := fmt.Sprintf("[%s_%d_%s]",
		pii_entities.PlaceholderPrefix[category],
		counters[category],
		hashValue(value)[:8],
	)
	seen[key] = placeholder
	return placeholder
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
