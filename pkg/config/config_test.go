package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	require.NoError(t, Load(t.TempDir()))
	cfg := GetConfig()

	assert.Equal(t, 50000, cfg.Validation.MaxTextLength)
	assert.Equal(t, 10, cfg.Validation.MinTextLength)
	assert.Equal(t, int64(10), cfg.Validation.MaxFileSizeMB)
	assert.InDelta(t, 0.5, cfg.Validation.RiskThreshold, 0.001)
	assert.InDelta(t, 0.7, cfg.Redaction.MinConfidence, 0.001)
	assert.InDelta(t, 0.7, cfg.Hallucination.OverlapThreshold, 0.001)
	assert.Equal(t, 3, cfg.Hallucination.SearchK)
	assert.Equal(t, 5*time.Second, cfg.Hallucination.IndexTimeout)
	assert.Equal(t, 30*time.Second, cfg.Hallucination.BreakerReset)
	assert.Equal(t, 10*time.Minute, cfg.Hallucination.CacheTTL)
	assert.Equal(t, "logs/security_audit.log", cfg.Audit.LogFile)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := []byte("validation:\n  max_text_length: 1000\nredaction:\n  min_confidence: 0.9\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	require.NoError(t, Load(dir))
	cfg := GetConfig()

	assert.Equal(t, 1000, cfg.Validation.MaxTextLength)
	assert.InDelta(t, 0.9, cfg.Redaction.MinConfidence, 0.001)
	// Untouched keys keep their defaults.
	assert.Equal(t, 10, cfg.Validation.MinTextLength)
}

func TestFromMap(t *testing.T) {
	cfg, err := FromMap(map[string]interface{}{
		"validation": map[string]interface{}{
			"max_text_length": 2000,
		},
		"hallucination": map[string]interface{}{
			"index_timeout": "2s",
			"search_k":      5,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.Validation.MaxTextLength)
	assert.Equal(t, 2*time.Second, cfg.Hallucination.IndexTimeout)
	assert.Equal(t, 5, cfg.Hallucination.SearchK)
}

func TestFromMap_BadValue(t *testing.T) {
	_, err := FromMap(map[string]interface{}{
		"validation": map[string]interface{}{
			"max_text_length": "not a number",
		},
	})
	assert.Error(t, err)
}
