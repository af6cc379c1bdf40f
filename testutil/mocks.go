// Package testutil holds stream fakes and frame builders shared by package tests.
package testutil

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
)

// ErrBrokenPipe is the error returned by FailingWriter and ErrReader.
var ErrBrokenPipe = errors.New("broken pipe")

// FailingWriter accepts the first OKWrites writes and fails every write after that.
type FailingWriter struct {
	OKWrites int

	mu     sync.Mutex
	writes int
	buf    strings.Builder
}

func (w *FailingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writes >= w.OKWrites {
		return 0, ErrBrokenPipe
	}
	w.writes++
	return w.buf.Write(p)
}

// String returns what was written before the writer started failing.
func (w *FailingWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

// ErrReader returns Data first and then Err instead of io.EOF.
type ErrReader struct {
	Data string
	Err  error

	off int
}

func (r *ErrReader) Read(p []byte) (int, error) {
	if r.off < len(r.Data) {
		n := copy(p, r.Data[r.off:])
		r.off += n
		return n, nil
	}
	if r.Err == nil {
		return 0, ErrBrokenPipe
	}
	return 0, r.Err
}

// SyncBuffer is a strings.Builder safe for concurrent writers and readers.
type SyncBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// FrameLine encodes fields as a single JSON object line (without newline).
func FrameLine(t *testing.T, fields map[string]any) string {
	t.Helper()
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	return string(data)
}

// Stream joins lines with newlines and terminates the last one.
func Stream(lines ...string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
