// Package legal_refs recognizes mentions of Indian statutes, constitutional
// articles, and case citations in generated text, and carries the tables of
// known-valid section ranges used to validate them.
package legal_refs

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Kind classifies an extracted reference.
type Kind string

const (
	KindCase    Kind = "case"
	KindStatute Kind = "statute"
	KindArticle Kind = "article"
)

// Reference is one legal-reference mention found in text.
type Reference struct {
	Kind     Kind
	Text     string
	Section  string
	Act      string
	Citation string
	Position int
}

// Statute describes an act's valid section numbering. Sections run from 1
// to MaxSection; SpecialSections enumerates lettered sections (498A, 66A)
// that sit outside plain numeric ranges.
type Statute struct {
	FullName        string
	MaxSection      int
	SpecialSections []string
}

// KnownStatutes maps act tags to their section tables.
var KnownStatutes = map[string]Statute{
	"IPC": {
		FullName:        "Indian Penal Code, 1860",
		MaxSection:      511,
		SpecialSections: []string{"498A", "376A", "376B", "376C", "376D"},
	},
	"CrPC": {
		FullName:   "Code of Criminal Procedure, 1973",
		MaxSection: 484,
	},
	"CPC": {
		FullName:   "Code of Civil Procedure, 1908",
		MaxSection: 158,
	},
	"IT_Act": {
		FullName:        "Information Technology Act, 2000",
		MaxSection:      87,
		SpecialSections: []string{"66A", "66B", "66C", "66D", "66E", "66F"},
	},
	"Evidence_Act": {
		FullName:   "Indian Evidence Act, 1872",
		MaxSection: 167,
	},
	"Constitution": {
		FullName:        "Constitution of India",
		MaxSection:      395,
		SpecialSections: []string{"12A", "21A", "35A", "51A", "371A", "371B"},
	},
}

// Lookup returns the section table for an act tag.
func Lookup(act string) (Statute, bool) {
	s, ok := KnownStatutes[act]
	return s, ok
}

// HasSection reports whether a section identifier exists in the statute,
// either as a special lettered section or a number in range.
func (s Statute) HasSection(section string) bool {
	if s.IsSpecial(section) {
		return true
	}
	num, ok := SectionNumber(section)
	if !ok {
		return false
	}
	return num >= 1 && num <= s.MaxSection
}

// IsSpecial reports whether the section is one of the statute's lettered
// special sections, ignoring case.
func (s Statute) IsSpecial(section string) bool {
	upper := strings.ToUpper(section)
	for _, special := range s.SpecialSections {
		if upper == special {
			return true
		}
	}
	return false
}

// SectionNumber extracts the leading numeric part of a section identifier,
// so "376A" yields 376.
func SectionNumber(section string) (int, bool) {
	digits := leadingDigitsPattern.FindString(section)
	if digits == "" {
		return 0, false
	}
	num, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return num, true
}

var leadingDigitsPattern = regexp.MustCompile(`^\d+`)

// Case citation shapes: [2025] 1 S.C.R. 123, 2025 INSC 456, 2025 SCC 123.
var citationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\[(\d{4})\]\s*\d+\s*S\.C\.R\.\s*\d+`),
	regexp.MustCompile(`(?i)\d{4}\s*INSC\s*\d+`),
	regexp.MustCompile(`(?i)\d{4}\s*SCC\s*\d+`),
}

// Statute section shapes per act; the first capture group is the section.
var statutePatterns = []struct {
	act      string
	patterns []*regexp.Regexp
}{
	{"IPC", []*regexp.Regexp{
		regexp.MustCompile(`(?i)Section\s+(\d+[A-Z]?)\s+(?:of\s+)?(?:the\s+)?IPC`),
		regexp.MustCompile(`(?i)IPC\s+Section\s+(\d+[A-Z]?)`),
		regexp.MustCompile(`(?i)s\.?\s*(\d+[A-Z]?)\s+IPC`),
	}},
	{"CrPC", []*regexp.Regexp{
		regexp.MustCompile(`(?i)Section\s+(\d+[A-Z]?)\s+(?:of\s+)?(?:the\s+)?Cr\.?P\.?C`),
		regexp.MustCompile(`(?i)Cr\.?P\.?C\.?\s+Section\s+(\d+[A-Z]?)`),
	}},
	{"CPC", []*regexp.Regexp{
		regexp.MustCompile(`(?i)Section\s+(\d+[A-Z]?)\s+(?:of\s+)?(?:the\s+)?C\.?P\.?C`),
		regexp.MustCompile(`(?i)C\.?P\.?C\.?\s+Section\s+(\d+[A-Z]?)`),
	}},
	{"IT_Act", []*regexp.Regexp{
		regexp.MustCompile(`(?i)Section\s+(\d+[A-Z]?)\s+(?:of\s+)?(?:the\s+)?IT\s+Act`),
	}},
	{"Evidence_Act", []*regexp.Regexp{
		regexp.MustCompile(`(?i)Section\s+(\d+[A-Z]?)\s+(?:of\s+)?(?:the\s+)?Evidence\s+Act`),
	}},
}

// Constitutional article shapes; the bare form catches mentions without the
// trailing "of the Constitution".
var articlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Article\s+(\d+[A-Z]?)\s+of\s+(?:the\s+)?Constitution`),
	regexp.MustCompile(`(?i)Article\s+(\d+[A-Z]?)`),
}

type candidate struct {
	ref   Reference
	start int
	end   int
}

// Extract finds every legal-reference mention in text. Overlapping matches
// from alternative patterns collapse to the longest span so one mention
// yields one Reference.
func Extract(text string) []Reference {
	var candidates []candidate

	for _, pattern := range citationPatterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			matched := text[loc[0]:loc[1]]
			candidates = append(candidates, candidate{
				ref: Reference{
					Kind:     KindCase,
					Text:     matched,
					Citation: matched,
					Position: loc[0],
				},
				start: loc[0],
				end:   loc[1],
			})
		}
	}

	for _, entry := range statutePatterns {
		for _, pattern := range entry.patterns {
			for _, loc := range pattern.FindAllStringSubmatchIndex(text, -1) {
				section := ""
				if loc[2] >= 0 {
					section = text[loc[2]:loc[3]]
				}
				candidates = append(candidates, candidate{
					ref: Reference{
						Kind:     KindStatute,
						Text:     text[loc[0]:loc[1]],
						Section:  strings.ToUpper(section),
						Act:      entry.act,
						Position: loc[0],
					},
					start: loc[0],
					end:   loc[1],
				})
			}
		}
	}

	for _, pattern := range articlePatterns {
		for _, loc := range pattern.FindAllStringSubmatchIndex(text, -1) {
			section := ""
			if loc[2] >= 0 {
				section = text[loc[2]:loc[3]]
			}
			candidates = append(candidates, candidate{
				ref: Reference{
					Kind:     KindArticle,
					Text:     text[loc[0]:loc[1]],
					Section:  strings.ToUpper(section),
					Act:      "Constitution",
					Position: loc[0],
				},
				start: loc[0],
				end:   loc[1],
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].start != candidates[j].start {
			return candidates[i].start < candidates[j].start
		}
		return candidates[i].end > candidates[j].end
	})

	var refs []Reference
	lastEnd := -1
	for _, c := range candidates {
		if c.start < lastEnd {
			continue
		}
		refs = append(refs, c.ref)
		lastEnd = c.end
	}
	return refs
}
