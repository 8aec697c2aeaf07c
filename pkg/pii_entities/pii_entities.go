// Package pii_entities provides the PII (Personally Identifiable Information)
// categories detected in case text and their detection patterns. This package
// is pure data shared between pii_redaction and the enforcer; it has no
// behavior beyond lookups.
package pii_entities

import "regexp"

// Category represents a type of personal data that can be detected.
type Category string

const (
	Phone       Category = "phone"
	Email       Category = "email"
	Aadhaar     Category = "aadhaar"
	PAN         Category = "pan"
	BankAccount Category = "bank_account"
	PersonName  Category = "person_name"
)

// Patterns contains regex patterns for each category. A category may have
// several alternative patterns; all are run during a scan.
var Patterns = map[Category][]*regexp.Regexp{
	Phone: {
		regexp.MustCompile(`\+?91[-\s]?\d{10}`),
		regexp.MustCompile(`\d{10}`),
		regexp.MustCompile(`\(\d{3}\)\s?\d{3}[-\s]?\d{4}`),
	},
	Email: {
		regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	},
	Aadhaar: {
		regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`),
		regexp.MustCompile(`\b\d{12}\b`),
	},
	PAN: {
		regexp.MustCompile(`\b[A-Z]{5}\d{4}[A-Z]\b`),
	},
	BankAccount: {
		regexp.MustCompile(`\b\d{9,18}\b`),
	},
	PersonName: {
		regexp.MustCompile(`\b(?:Mr\.|Mrs\.|Ms\.|Dr\.|Justice|Hon'?ble)\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`),
		regexp.MustCompile(`\b[A-Z][a-z]+\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?\b`),
	},
}

// DetectionOrder defines the order in which categories are scanned
// (more specific formats first so overlap resolution favors them).
var DetectionOrder = []Category{
	Email,
	PAN,
	Aadhaar,
	Phone,
	BankAccount,
	PersonName,
}

// BaseConfidence is the per-category confidence assigned to a match.
// Confidence is not currently adjusted per match beyond the base value.
var BaseConfidence = map[Category]float64{
	Email:       0.95,
	Aadhaar:     0.90,
	PAN:         0.95,
	Phone:       0.75,
	BankAccount: 0.60,
	PersonName:  0.70,
}

// PlaceholderPrefix is the tag used inside redaction placeholders,
// e.g. [PHONE_1_a3f9c0d2].
var PlaceholderPrefix = map[Category]string{
	Phone:       "PHONE",
	Email:       "EMAIL",
	Aadhaar:     "AADHAAR",
	PAN:         "PAN",
	BankAccount: "BANK_ACCOUNT",
	PersonName:  "PERSON",
}

// PersonNameSkipTerms lists lowercase phrases that mark a name-shaped match
// as a legal entity, section header, or organization rather than a person.
// A match is suppressed when its value or surrounding context contains one
// of these, unless an honorific appears in the context.
var PersonNameSkipTerms = []string{
	// Courts and proceedings
	"supreme court", "high court", "civil appeal", "criminal appeal",
	"state of", "union of", "petitioner", "respondent", "appellant",
	// Government entities
	"state government", "central government", "union government",
	"government of", "ministry of",
	// Corporate entities
	"company", "corporation", "platform", "limited", "ltd",
	"private limited", "pvt ltd", "public limited",
	// Section headers
	"legal issues", "facts", "arguments", "case:", "v.", "vs.",
	"background", "issues", "judgment", "order", "relief",
	// Generic entities
	"social media", "bank", "insurance", "trust", "society",
}

// Honorifics override the skip-term context check for person names.
var Honorifics = []string{"justice", "mr.", "mrs.", "ms.", "dr."}

// PhoneContextSkipTerms suppress phone-shaped matches that sit next to
// docket or statute numbering.
var PhoneContextSkipTerms = []string{"section", "case no", "appeal no"}

// BankAccountContextSkipTerms suppress account-shaped matches near statute
// or case references.
var BankAccountContextSkipTerms = []string{"section", "case"}

// YearPattern recognizes four-digit years, which are never account numbers.
var YearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// AllCategories contains every valid category.
var AllCategories = map[Category]bool{
	Phone:       true,
	Email:       true,
	Aadhaar:     true,
	PAN:         true,
	BankAccount: true,
	PersonName:  true,
}

// IsValid checks if a category name is known.
func IsValid(category string) bool {
	return AllCategories[Category(category)]
}

// GetPatterns returns the regex patterns for a category.
func GetPatterns(category Category) []*regexp.Regexp {
	return Patterns[category]
}
