package input_validation

import "regexp"

// ThreatType tags the pattern set a violation came from.
type ThreatType string

const (
	PromptInjection ThreatType = "prompt_injection"
	XSS             ThreatType = "xss"
	SQL             ThreatType = "sql"
)

// threatPatterns holds the compiled pattern sets checked against case text.
// SQL patterns are defensive only; nothing in this system executes SQL.
var threatPatterns = map[ThreatType][]*regexp.Regexp{
	PromptInjection: {
		regexp.MustCompile(`(?i)ignore\s+(?:all\s+)?(?:previous|above|prior|the\s+above)\s+(?:instructions?|commands?)`),
		regexp.MustCompile(`(?i)disregard\s+(?:previous|above|prior)`),
		regexp.MustCompile(`(?i)forget\s+(?:previous|above|prior)`),
		regexp.MustCompile(`(?i)you\s+are\s+now\s+(?:in\s+)?(?:admin|system|root)`),
		regexp.MustCompile(`(?i)new\s+instructions?:`),
		regexp.MustCompile(`(?i)system\s*:\s*(?:ignore|disregard|forget)`),
		regexp.MustCompile(`(?i)system\s+(?:prompt|mode):`),
		regexp.MustCompile(`(?i)jailbreak`),
		regexp.MustCompile(`(?i)DAN\s+mode`),
		regexp.MustCompile(`(?i)(?:begin|start|end)\s+(?:system|admin)`),
		regexp.MustCompile(`(?i)\[system\]`),
		regexp.MustCompile(`(?i)/\*\s*system\s*\*/`),
		regexp.MustCompile(`(?i)override\s+(?:security|protocols)`),
		regexp.MustCompile(`(?i)instructions?\s+(?:are\s+)?void`),
	},
	XSS: {
		regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)onerror\s*=`),
		regexp.MustCompile(`(?i)onload\s*=`),
		regexp.MustCompile(`(?i)<iframe`),
		regexp.MustCompile(`(?i)<embed`),
		regexp.MustCompile(`(?i)<object`),
	},
	SQL: {
		regexp.MustCompile(`(?i);\s*drop\s+table`),
		regexp.MustCompile(`(?i);\s*delete\s+from`),
		regexp.MustCompile(`(?i)union\s+select`),
		regexp.MustCompile(`--\s*$`),
		regexp.MustCompile(`(?s)/\*.*\*/`),
	},
}

// Risk weights per check. Scores are additive and capped at 1.0.
const (
	riskTooLong          = 0.3
	riskTooShort         = 0.2
	riskPromptInjection  = 0.5
	riskXSS              = 0.4
	riskSQL              = 0.3
	riskSpecialChars     = 0.2
	riskFileTooLarge     = 0.5
	riskBadExtension     = 0.6
	riskBadContentType   = 0.4
	riskBadFilenameChars = 0.3
	riskPathTraversal    = 0.7
	riskBadParameter     = 0.2
	riskInvalidAgent     = 0.5
)

var (
	// Letters, marks, and digits from any script count as ordinary text;
	// Devanagari matras are combining marks and must not score as special.
	specialCharPattern = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s.,;:!?()\[\]{}\-'"/]`)
	htmlTagPattern     = regexp.MustCompile(`<[^>]+>`)
	jsPrefixPattern    = regexp.MustCompile(`(?i)javascript:`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	badFilenameChars   = regexp.MustCompile(`[<>:"|?*]`)
)
