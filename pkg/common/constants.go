package common

import "time"

const (
	// CitationCacheTTL bounds how long a citation verdict from the retrieval
	// index is reused before the index is queried again.
	CitationCacheTTL = 10 * time.Minute

	// IndexQueryTimeout caps a single retrieval-index lookup.
	IndexQueryTimeout = 5 * time.Second

	DefaultAuditLogFile         = "logs/security_audit.log"
	DefaultHallucinationLogFile = "logs/hallucination_audit.log"
)
