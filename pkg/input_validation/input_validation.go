// Package input_validation validates and sanitizes untrusted inputs before
// they reach the language model. Every check runs independently so a caller
// always receives the full violation list; rejections are values, never
// errors.
package input_validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// Limits bound the accepted inputs. Zero values fall back to defaults.
type Limits struct {
	MaxTextLength int     `mapstructure:"max_text_length"`
	MinTextLength int     `mapstructure:"min_text_length"`
	MaxFileSizeMB int64   `mapstructure:"max_file_size_mb"`
	RiskThreshold float64 `mapstructure:"risk_threshold"`
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxTextLength: 50000,
		MinTextLength: 10,
		MaxFileSizeMB: 10,
		RiskThreshold: 0.5,
	}
}

// Result is the outcome of one validation call. Sanitized is populated
// regardless of validity so callers can keep a cleaned copy.
type Result struct {
	Valid      bool
	Sanitized  string
	Violations []string
	RiskScore  float64
}

// Params carries the numeric request parameters subject to bounds checks.
// Nil fields are absent and skipped.
type Params struct {
	K           *int
	MaxTokens   *int
	Temperature *float64
}

// ValidAgents enumerates the agent names a request may enable.
var ValidAgents = []string{"precedents", "statutes", "news", "bench"}

// Validator checks raw inputs against the threat pattern sets and the
// configured limits. It is stateless and safe for concurrent use.
type Validator struct {
	logger *logrus.Logger
	limits Limits
}

func NewValidator(logger *logrus.Logger, limits Limits) *Validator {
	defaults := DefaultLimits()
	if limits.MaxTextLength == 0 {
		limits.MaxTextLength = defaults.MaxTextLength
	}
	if limits.MinTextLength == 0 {
		limits.MinTextLength = defaults.MinTextLength
	}
	if limits.MaxFileSizeMB == 0 {
		limits.MaxFileSizeMB = defaults.MaxFileSizeMB
	}
	if limits.RiskThreshold == 0 {
		limits.RiskThreshold = defaults.RiskThreshold
	}
	return &Validator{logger: logger, limits: limits}
}

// ValidateCaseText checks case description text. All checks contribute to
// the risk score independently; the text is valid only when the score stays
// under the configured risk threshold and no violation was recorded.
func (v *Validator) ValidateCaseText(text string) Result {
	var violations []string
	risk := 0.0

	// Bounds are in characters, not bytes; multibyte scripts must not hit
	// the ceiling three times early.
	length := utf8.RuneCountInString(text)
	if length > v.limits.MaxTextLength {
		violations = append(violations, fmt.Sprintf("Text exceeds maximum length of %d characters", v.limits.MaxTextLength))
		risk += riskTooLong
	}
	if length < v.limits.MinTextLength {
		violations = append(violations, fmt.Sprintf("Text too short (minimum %d characters)", v.limits.MinTextLength))
		risk += riskTooShort
	}

	if threat, pattern := matchThreat(PromptInjection, text); threat {
		violations = append(violations, fmt.Sprintf("Potential prompt injection detected: pattern %q found", pattern))
		risk += riskPromptInjection
	}
	if threat, pattern := matchThreat(XSS, text); threat {
		violations = append(violations, fmt.Sprintf("Potential XSS attack detected: pattern %q found", pattern))
		risk += riskXSS
	}
	if threat, pattern := matchThreat(SQL, text); threat {
		violations = append(violations, fmt.Sprintf("SQL injection pattern detected: pattern %q found", pattern))
		risk += riskSQL
	}

	if hasExcessiveSpecialChars(text) {
		violations = append(violations, "Excessive special characters detected")
		risk += riskSpecialChars
	}

	result := Result{
		Valid:      risk < v.limits.RiskThreshold && len(violations) == 0,
		Sanitized:  sanitizeText(text),
		Violations: violations,
		RiskScore:  capRisk(risk),
	}

	if v.logger != nil && !result.Valid {
		v.logger.WithFields(logrus.Fields{
			"risk_score": result.RiskScore,
			"violations": len(result.Violations),
		}).Warn("case text rejected")
	}
	return result
}

// ValidateFileUpload checks an upload's filename, size and declared MIME
// type. Only PDF documents are accepted.
func (v *Validator) ValidateFileUpload(filename string, sizeBytes int64, contentType string) Result {
	var violations []string
	risk := 0.0

	maxBytes := v.limits.MaxFileSizeMB * 1024 * 1024
	if sizeBytes > maxBytes {
		violations = append(violations, fmt.Sprintf("File size exceeds %dMB limit", v.limits.MaxFileSizeMB))
		risk += riskFileTooLarge
	}

	ext := ""
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		ext = strings.ToLower(filename[idx+1:])
	}
	if ext != "pdf" {
		violations = append(violations, fmt.Sprintf("File type .%s not allowed. Only PDF files accepted.", ext))
		risk += riskBadExtension
	}

	if contentType != "application/pdf" {
		violations = append(violations, fmt.Sprintf("Content type %s not allowed", contentType))
		risk += riskBadContentType
	}

	if badFilenameChars.MatchString(filename) {
		violations = append(violations, "Filename contains invalid characters")
		risk += riskBadFilenameChars
	}

	if strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		violations = append(violations, "Potential path traversal detected in filename")
		risk += riskPathTraversal
	}

	return Result{
		Valid:      risk < v.limits.RiskThreshold && len(violations) == 0,
		Sanitized:  sanitizeFilename(filename),
		Violations: violations,
		RiskScore:  capRisk(risk),
	}
}

// ValidateParameters bounds-checks the numeric request parameters.
func (v *Validator) ValidateParameters(params Params) Result {
	var violations []string
	risk := 0.0

	if params.K != nil && (*params.K < 1 || *params.K > 20) {
		violations = append(violations, "Parameter 'k' must be between 1 and 20")
		risk += riskBadParameter
	}
	if params.MaxTokens != nil && (*params.MaxTokens < 100 || *params.MaxTokens > 4000) {
		violations = append(violations, "Parameter 'max_tokens' must be between 100 and 4000")
		risk += riskBadParameter
	}
	if params.Temperature != nil && (*params.Temperature < 0 || *params.Temperature > 1) {
		violations = append(violations, "Parameter 'temperature' must be between 0 and 1")
		risk += riskBadParameter
	}

	return Result{
		Valid:      len(violations) == 0,
		Sanitized:  "",
		Violations: violations,
		RiskScore:  capRisk(risk),
	}
}

// ValidateAgentSelection checks agent names against the allowed set and
// returns the sanitized selection as a comma-separated list.
func (v *Validator) ValidateAgentSelection(agents []string) Result {
	var violations []string
	var sanitized []string
	risk := 0.0

	for _, agent := range agents {
		if isValidAgent(agent) {
			sanitized = append(sanitized, agent)
			continue
		}
		violations = append(violations, fmt.Sprintf("Invalid agent: %s", agent))
		risk += riskInvalidAgent
	}

	return Result{
		Valid:      len(violations) == 0,
		Sanitized:  strings.Join(sanitized, ","),
		Violations: violations,
		RiskScore:  capRisk(risk),
	}
}

func matchThreat(threat ThreatType, text string) (bool, string) {
	for _, pattern := range threatPatterns[threat] {
		if pattern.MatchString(text) {
			return true, pattern.String()
		}
	}
	return false, ""
}

func hasExcessiveSpecialChars(text string) bool {
	if text == "" {
		return false
	}
	special := len(specialCharPattern.FindAllString(text, -1))
	return float64(special)/float64(utf8.RuneCountInString(text)) > 0.2
}

func sanitizeText(text string) string {
	sanitized := htmlTagPattern.ReplaceAllString(text, "")
	sanitized = jsPrefixPattern.ReplaceAllString(sanitized, "")
	sanitized = whitespacePattern.ReplaceAllString(sanitized, " ")
	return strings.TrimSpace(sanitized)
}

func sanitizeFilename(filename string) string {
	if idx := strings.LastIndexAny(filename, `/\`); idx >= 0 {
		filename = filename[idx+1:]
	}
	filename = badFilenameChars.ReplaceAllString(filename, "")
	if len(filename) > 255 {
		name, ext := filename, ""
		if idx := strings.LastIndex(filename, "."); idx >= 0 {
			name, ext = filename[:idx], filename[idx:]
		}
		if len(name) > 250 {
			name = name[:250]
		}
		filename = name + ext
	}
	return filename
}

func isValidAgent(agent string) bool {
	for _, valid := range ValidAgents {
		if agent == valid {
			return true
		}
	}
	return false
}

func capRisk(risk float64) float64 {
	if risk > 1.0 {
		return 1.0
	}
	return risk
}
