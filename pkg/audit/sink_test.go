package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSink_AppendsNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "security_audit.log")
	sink, err := NewFileSink(path)
	require.NoError(t, err)
	defer sink.Close()

	ctx := context.Background()
	require.NoError(t, sink.Write(ctx, Record{
		Timestamp: time.Now().UTC(),
		RequestID: "REQ_20250901120000_000001",
		Action:    ActionCaseInputProcessed,
	}))
	require.NoError(t, sink.Write(ctx, Record{
		Timestamp: time.Now().UTC(),
		RequestID: "REQ_20250901120000_000002",
		Action:    ActionInputValidationFailed,
	}))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var row map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &row))
		lines = append(lines, row)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, lines, 2)
	assert.Equal(t, ActionCaseInputProcessed, lines[0]["action"])
	assert.Equal(t, ActionInputValidationFailed, lines[1]["action"])
	assert.Equal(t, "REQ_20250901120000_000001", lines[0]["request_id"])
}

func TestFileSink_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "audit.log")
	sink, err := NewFileSink(path)
	require.NoError(t, err)
	defer sink.Close()

	_, err = os.Stat(filepath.Dir(path))
	assert.NoError(t, err)
}

func TestNopSink(t *testing.T) {
	sink := NopSink{}
	assert.NoError(t, sink.Write(context.Background(), Record{}))
	assert.NoError(t, sink.Close())
}

func TestMultiSink_FansOut(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFileSink(filepath.Join(dir, "a.log"))
	require.NoError(t, err)
	b, err := NewFileSink(filepath.Join(dir, "b.log"))
	require.NoError(t, err)

	multi := NewMultiSink(a, b, NopSink{})
	require.NoError(t, multi.Write(context.Background(), Record{RequestID: "REQ_X"}))
	require.NoError(t, multi.Close())

	for _, name := range []string{"a.log", "b.log"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Contains(t, string(data), "REQ_X")
	}
}

func TestHallucinationRecord_JSONShape(t *testing.T) {
	rec := HallucinationRecord{
		Timestamp:     time.Now().UTC(),
		UserID:        "user-1",
		OutputExcerpt: "Section 999 of IPC",
		SuspectedRefs: []SuspectedReference{{
			Kind:       "statute",
			Text:       "Section 999 of IPC",
			Reason:     "Section 999 does not exist in Indian Penal Code, 1860",
			Confidence: 0.95,
		}},
		Confidence:   0.95,
		NumSuspected: 1,
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"suspected_fake_refs"`)
	assert.Contains(t, string(data), `"confidence_score"`)
	assert.Contains(t, string(data), `"num_suspected"`)
}
