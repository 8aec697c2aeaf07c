package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sink receives audit records. Implementations must tolerate concurrent
// writers. Writes are best-effort from the caller's point of view: the
// enforcer logs a failed write once and continues.
type Sink interface {
	Write(ctx context.Context, record any) error
	Close() error
}

// FileSink appends newline-delimited JSON records to a file. The file is
// opened with O_APPEND so concurrent processes interleave whole lines.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileSink opens (creating if needed) the audit file at path.
func NewFileSink(path string) (*FileSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating audit log directory: %w", err)
		}
	}
	file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &FileSink{file: file}, nil
}

func (s *FileSink) Write(_ context.Context, record any) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling audit record: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(line); err != nil {
		return fmt.Errorf("appending audit record: %w", err)
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// NopSink discards records. Used in tests and when auditing is disabled.
type NopSink struct{}

func (NopSink) Write(context.Context, any) error { return nil }
func (NopSink) Close() error                     { return nil }

// MultiSink fans records out to several sinks. The first error is returned
// after all sinks have been attempted.
type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Write(ctx context.Context, record any) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Write(ctx, record); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiSink) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
