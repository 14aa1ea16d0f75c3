package oracle

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// traceRecord is one line of traces/<session_id>.jsonl.
type traceRecord struct {
	CallID    string    `json:"call_id"`
	Timestamp time.Time `json:"ts"`
	SessionID string    `json:"session_id"`
	Op        string    `json:"op"`
	Phase     string    `json:"phase,omitempty"`
	Messages  []Message `json:"messages"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Tracer appends one JSON-lines record per oracle call to a per-session
// trace file. A single mutex serializes writes across sessions — traces
// are low-volume compared to the snapshot files, so one lock is enough.
type Tracer struct {
	dir string
	mu  sync.Mutex
}

// NewTracer creates a Tracer writing under dir. An empty dir disables
// tracing (Write becomes a no-op), useful for tests that don't care about
// the trace side effect.
func NewTracer(dir string) *Tracer {
	return &Tracer{dir: dir}
}

// Write appends one trace record for a single oracle call. Storage
// failures are logged and otherwise swallowed — tracing is diagnostic,
// never load-bearing for the controller's response.
func (t *Tracer) Write(sessionID, op, phase string, messages []Message, output string, callErr error) {
	if t.dir == "" {
		return
	}
	rec := traceRecord{
		CallID:    uuid.NewString(),
		Timestamp: time.Now(),
		SessionID: sessionID,
		Op:        op,
		Phase:     phase,
		Messages:  messages,
		Output:    output,
	}
	if callErr != nil {
		rec.Error = callErr.Error()
	}
	line, err := json.Marshal(rec)
	if err != nil {
		slog.Default().Warn("oracle: marshal trace record", "error", err)
		return
	}
	line = append(line, '\n')

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		slog.Default().Warn("oracle: create traces dir", "error", err)
		return
	}
	path := filepath.Join(t.dir, sessionID+".jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Default().Warn("oracle: open trace file", "session_id", sessionID, "error", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(line); err != nil {
		slog.Default().Warn("oracle: write trace record", "session_id", sessionID, "error", err)
	}
}
