package hallucination

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lexiqlabs/lexshield/pkg/common"
	"github.com/lexiqlabs/lexshield/pkg/infra/breaker"
	"github.com/lexiqlabs/lexshield/pkg/infra/cache"
	"github.com/lexiqlabs/lexshield/pkg/legal_refs"
)

// DefaultOverlapThreshold is the fraction of numeric tokens two citations
// must share to be considered the same citation. Kept configurable; the
// default only preserves behavioral compatibility.
const DefaultOverlapThreshold = 0.7

// DefaultSearchK is how many candidates are requested from the index per
// citation.
const DefaultSearchK = 3

// DefaultBreakerReset is how long an open circuit breaker waits before
// letting probes through to the index again.
const DefaultBreakerReset = 30 * time.Second

// ErrIndexUnavailable marks retrieval-index infrastructure failures. The
// matcher converts it into the unverifiable path; it never escapes Detect.
var ErrIndexUnavailable = errors.New("retrieval index unavailable")

// Candidate is one ranked result from the retrieval index.
type Candidate struct {
	Citation string
	Title    string
	Score    float64
}

// Index is the external retrieval-index collaborator. Implementations may
// block; the matcher bounds every call with a timeout and a circuit
// breaker.
type Index interface {
	Search(ctx context.Context, query string, k int) ([]Candidate, error)
}

// MatcherConfig tunes the citation matcher. Zero values use defaults.
// Timeout bounds a single index query; BreakerReset is how long the
// breaker stays open after tripping.
type MatcherConfig struct {
	OverlapThreshold float64
	SearchK          int
	Timeout          time.Duration
	MaxFailures      uint32
	BreakerReset     time.Duration
	CacheTTL         time.Duration
}

// CitationMatcher validates case citations against the retrieval index
// using fuzzy numeric-token overlap.
type CitationMatcher struct {
	index     Index
	logger    *logrus.Logger
	breaker   breaker.CircuitBreaker
	cache     *cache.TTLMap[matchOutcome]
	threshold float64
	searchK   int
	timeout   time.Duration
}

type matchOutcome struct {
	valid  bool
	reason string
}

func NewCitationMatcher(index Index, logger *logrus.Logger, cfg MatcherConfig) *CitationMatcher {
	if cfg.OverlapThreshold == 0 {
		cfg.OverlapThreshold = DefaultOverlapThreshold
	}
	if cfg.SearchK == 0 {
		cfg.SearchK = DefaultSearchK
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = common.IndexQueryTimeout
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.BreakerReset == 0 {
		cfg.BreakerReset = DefaultBreakerReset
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = common.CitationCacheTTL
	}
	return &CitationMatcher{
		index:     index,
		logger:    logger,
		breaker:   breaker.NewCircuitBreaker("retrieval-index", cfg.BreakerReset, cfg.MaxFailures),
		cache:     cache.NewTTLMap[matchOutcome](cfg.CacheTTL),
		threshold: cfg.OverlapThreshold,
		searchK:   cfg.SearchK,
		timeout:   cfg.Timeout,
	}
}

// Match checks a case citation against the index. Infrastructure failures
// (index unreachable, timeout, breaker open) yield valid=true with an
// unverifiable reason: an outage must not flag legitimate output.
func (m *CitationMatcher) Match(ctx context.Context, ref legal_refs.Reference) (bool, string) {
	if ref.Kind != legal_refs.KindCase {
		return true, "Not a case reference"
	}
	if m.index == nil {
		return true, "No retrieval index available for validation"
	}

	if outcome, ok := m.cache.Get(ref.Citation); ok {
		return outcome.valid, outcome.reason
	}

	var candidates []Candidate
	err := m.breaker.Execute(func() error {
		queryCtx, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()
		var searchErr error
		candidates, searchErr = m.index.Search(queryCtx, ref.Citation, m.searchK)
		if searchErr != nil {
			return fmt.Errorf("%w: %v", ErrIndexUnavailable, searchErr)
		}
		return nil
	})
	if err != nil {
		if m.logger != nil {
			m.logger.WithError(err).WithField("citation", ref.Citation).
				Warn("citation lookup failed; treating as unverifiable")
		}
		return true, "Citation unverifiable: retrieval index unavailable"
	}

	for _, candidate := range candidates {
		if m.CitationsMatch(ref.Citation, candidate.Citation) {
			outcome := matchOutcome{valid: true, reason: fmt.Sprintf("Found in index: %s", candidate.Citation)}
			m.cache.Set(ref.Citation, outcome)
			return outcome.valid, outcome.reason
		}
	}

	outcome := matchOutcome{valid: false, reason: "Citation not found in index"}
	m.cache.Set(ref.Citation, outcome)
	return outcome.valid, outcome.reason
}

// CitationsMatch reports whether two citations share enough numeric tokens
// to be the same citation.
func (m *CitationMatcher) CitationsMatch(a, b string) bool {
	return NumericOverlap(a, b) >= m.threshold
}

var digitRunPattern = regexp.MustCompile(`\d+`)

// NumericOverlap computes the overlap between the sets of digit runs in two
// strings: |intersection| / max(|a|, |b|). Either side empty yields 0.
func NumericOverlap(a, b string) float64 {
	setA := digitSet(a)
	setB := digitSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	shared := 0
	for run := range setA {
		if setB[run] {
			shared++
		}
	}
	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	return float64(shared) / float64(larger)
}

func digitSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, run := range digitRunPattern.FindAllString(s, -1) {
		set[run] = true
	}
	return set
}
