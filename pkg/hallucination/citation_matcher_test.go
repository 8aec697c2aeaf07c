package hallucination

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lexiqlabs/lexshield/pkg/legal_refs"
)

type stubIndex struct {
	candidates []Candidate
	err        error
	calls      atomic.Int64
}

func (s *stubIndex) Search(_ context.Context, _ string, _ int) ([]Candidate, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

func caseRef(citation string) legal_refs.Reference {
	return legal_refs.Reference{Kind: legal_refs.KindCase, Text: citation, Citation: citation}
}

func TestNumericOverlap(t *testing.T) {
	tests := []struct {
		a, b    string
		overlap float64
	}{
		{"2025 INSC 456", "[2025] INSC 456", 1.0},
		{"[2025] 1 S.C.R. 100", "[2025] 1 S.C.R. 999", 2.0 / 3.0},
		{"2025 INSC 456", "1998 AIR 731", 0.0},
		{"no digits here", "2025 INSC 456", 0.0},
		{"", "", 0.0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.overlap, NumericOverlap(tt.a, tt.b), 0.001, "%q vs %q", tt.a, tt.b)
	}
}

func TestMatch_FoundInIndex(t *testing.T) {
	index := &stubIndex{candidates: []Candidate{{Citation: "[2025] INSC 456", Title: "X v. Y"}}}
	m := NewCitationMatcher(index, nil, MatcherConfig{})

	valid, reason := m.Match(context.Background(), caseRef("2025 INSC 456"))
	assert.True(t, valid)
	assert.Contains(t, reason, "Found in index")
}

func TestMatch_NotFound(t *testing.T) {
	index := &stubIndex{candidates: []Candidate{{Citation: "1998 AIR 731"}}}
	m := NewCitationMatcher(index, nil, MatcherConfig{})

	valid, reason := m.Match(context.Background(), caseRef("2025 INSC 456"))
	assert.False(t, valid)
	assert.Equal(t, "Citation not found in index", reason)
}

func TestMatch_IndexErrorIsUnverifiable(t *testing.T) {
	index := &stubIndex{err: errors.New("connection refused")}
	m := NewCitationMatcher(index, nil, MatcherConfig{})

	valid, reason := m.Match(context.Background(), caseRef("2025 INSC 456"))
	assert.True(t, valid)
	assert.Contains(t, reason, "unverifiable")
}

func TestMatch_NilIndex(t *testing.T) {
	m := NewCitationMatcher(nil, nil, MatcherConfig{})

	valid, reason := m.Match(context.Background(), caseRef("2025 INSC 456"))
	assert.True(t, valid)
	assert.Equal(t, "No retrieval index available for validation", reason)
}

func TestMatch_NonCaseReference(t *testing.T) {
	index := &stubIndex{}
	m := NewCitationMatcher(index, nil, MatcherConfig{})

	valid, reason := m.Match(context.Background(), legal_refs.Reference{Kind: legal_refs.KindStatute, Act: "IPC", Section: "302"})
	assert.True(t, valid)
	assert.Equal(t, "Not a case reference", reason)
	assert.Equal(t, int64(0), index.calls.Load())
}

func TestMatch_ResultsAreCached(t *testing.T) {
	index := &stubIndex{candidates: []Candidate{{Citation: "[2025] INSC 456"}}}
	m := NewCitationMatcher(index, nil, MatcherConfig{CacheTTL: time.Minute})

	ref := caseRef("2025 INSC 456")
	m.Match(context.Background(), ref)
	m.Match(context.Background(), ref)

	assert.Equal(t, int64(1), index.calls.Load())
}

func TestMatch_ErrorsAreNotCached(t *testing.T) {
	index := &stubIndex{err: errors.New("temporarily down")}
	m := NewCitationMatcher(index, nil, MatcherConfig{CacheTTL: time.Minute})

	ref := caseRef("2025 INSC 456")
	m.Match(context.Background(), ref)
	index.err = nil
	index.candidates = []Candidate{{Citation: "[2025] INSC 456"}}

	valid, reason := m.Match(context.Background(), ref)
	assert.True(t, valid)
	assert.Contains(t, reason, "Found in index")
	assert.Equal(t, int64(2), index.calls.Load())
}

func TestMatch_BreakerResetIndependentOfQueryTimeout(t *testing.T) {
	index := &stubIndex{err: errors.New("connection refused")}
	m := NewCitationMatcher(index, nil, MatcherConfig{
		Timeout:      time.Minute,
		MaxFailures:  1,
		BreakerReset: 10 * time.Millisecond,
	})

	ref := caseRef("2025 INSC 456")
	valid, reason := m.Match(context.Background(), ref)
	assert.True(t, valid)
	assert.Contains(t, reason, "unverifiable")

	// Index is healthy again, but the breaker is still open.
	index.err = nil
	index.candidates = []Candidate{{Citation: "[2025] INSC 456"}}
	valid, reason = m.Match(context.Background(), ref)
	assert.True(t, valid)
	assert.Contains(t, reason, "unverifiable")

	// The reset interval, not the one-minute query timeout, reopens the path.
	time.Sleep(30 * time.Millisecond)
	valid, reason = m.Match(context.Background(), ref)
	assert.True(t, valid)
	assert.Contains(t, reason, "Found in index")
}

func TestCitationsMatch_Threshold(t *testing.T) {
	m := NewCitationMatcher(&stubIndex{}, nil, MatcherConfig{OverlapThreshold: 0.7})

	assert.True(t, m.CitationsMatch("2025 INSC 456", "[2025] INSC 456"))
	assert.False(t, m.CitationsMatch("[2025] 1 S.C.R. 100", "[2025] 1 S.C.R. 999"))
}
