package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	return srv, srv.Close
}

func jsonContentResponse(w http.ResponseWriter, content string) {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func TestIntroExtractClampsOutOfRange(t *testing.T) {
	srv, closeFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		jsonContentResponse(w, `{"semester": 99, "progress_percent": -5}`)
	})
	defer closeFn()

	c := NewClient(Config{BaseURL: srv.URL, Model: "primary"}, t.TempDir())
	out, err := c.IntroExtract(context.Background(), "s1", "bin im 99. semester")
	require.NoError(t, err)
	assert.Nil(t, out.Semester)
	assert.Nil(t, out.ProgressPercent)
}

func TestIntroExtractKeepsInRangeValues(t *testing.T) {
	srv, closeFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		jsonContentResponse(w, `{"semester": 5, "progress_percent": 60}`)
	})
	defer closeFn()

	c := NewClient(Config{BaseURL: srv.URL, Model: "primary"}, "")
	out, err := c.IntroExtract(context.Background(), "s1", "5. semester, 60 prozent")
	require.NoError(t, err)
	require.NotNil(t, out.Semester)
	assert.Equal(t, 5, *out.Semester)
	require.NotNil(t, out.ProgressPercent)
	assert.Equal(t, 60, *out.ProgressPercent)
}

func TestPickPhaseQuestionFallsBackOnEmptyOrRepeat(t *testing.T) {
	srv, closeFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		jsonContentResponse(w, `{"question": "", "rationale": ""}`)
	})
	defer closeFn()

	c := NewClient(Config{BaseURL: srv.URL, Model: "primary"}, "")
	out, err := c.PickPhaseQuestion(context.Background(), "s1", "Allgemeine Fragen", []string{"A", "B"}, []string{"A"})
	require.NoError(t, err)
	assert.Equal(t, "B", out.Question)
}

func TestPickPhaseQuestionUsesModelChoiceWhenValid(t *testing.T) {
	srv, closeFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		jsonContentResponse(w, `{"question": "B", "rationale": "next"}`)
	})
	defer closeFn()

	c := NewClient(Config{BaseURL: srv.URL, Model: "primary"}, "")
	out, err := c.PickPhaseQuestion(context.Background(), "s1", "Allgemeine Fragen", []string{"A", "B"}, []string{"A"})
	require.NoError(t, err)
	assert.Equal(t, "B", out.Question)
	assert.Equal(t, "next", out.Rationale)
}

func TestResolveTLClampsConfidence(t *testing.T) {
	srv, closeFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		jsonContentResponse(w, `{"match_id": "T-1", "match_title": "X", "confidence": 3.5, "need_clarify": false}`)
	})
	defer closeFn()

	c := NewClient(Config{BaseURL: srv.URL, Model: "primary"}, "")
	out, err := c.ResolveTL(context.Background(), "s1", "X", []ResolveCandidate{{ID: "T-1", Title: "X"}})
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.Confidence)
}

func TestExtractFactsClampsDifficultyAndNonFiniteNumbers(t *testing.T) {
	srv, closeFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		jsonContentResponse(w, `{"difficulty_1_5": 9, "prep_weeks": 1e400, "hours_per_week": 5}`)
	})
	defer closeFn()

	c := NewClient(Config{BaseURL: srv.URL, Model: "primary"}, "")
	out, err := c.ExtractFacts(context.Background(), "s1", "Analysis I", "war schwer", FactDeltas{})
	require.NoError(t, err)
	assert.Nil(t, out.Difficulty1to5)
	assert.Nil(t, out.PrepWeeks)
	require.NotNil(t, out.HoursPerWeek)
	assert.Equal(t, 5.0, *out.HoursPerWeek)
}

func TestClassifyHTTPErrorQuotaVsRateLimit(t *testing.T) {
	assert.Equal(t, ClassQuotaExhausted, classifyHTTPError(429, true))
	assert.Equal(t, ClassRateLimited, classifyHTTPError(429, false))
	assert.Equal(t, ClassOther, classifyHTTPError(500, false))
}

func TestInvokeJSONRetriesAgainstFallbackOnOtherError(t *testing.T) {
	var calls int32
	srv, closeFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		atomic.AddInt32(&calls, 1)
		if req.Model == "primary" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": {"message": "boom"}}`))
			return
		}
		jsonContentResponse(w, `{"intent": "continue"}`)
	})
	defer closeFn()

	c := NewClient(Config{BaseURL: srv.URL, Model: "primary", FallbackModel: "fallback", BackoffMin: time.Millisecond, BackoffMax: 20 * time.Millisecond}, "")
	out, err := c.ControlIntent(context.Background(), "s1", "weiter")
	require.NoError(t, err)
	assert.Equal(t, "continue", out.Intent)
	assert.GreaterOrEqual(t, calls, int32(2))
}

func TestInvokeJSONDoesNotRetryOnQuotaExhausted(t *testing.T) {
	var calls int32
	srv, closeFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": "insufficient_quota", "message": "quota exceeded"}}`))
	})
	defer closeFn()

	c := NewClient(Config{BaseURL: srv.URL, Model: "primary", FallbackModel: "fallback"}, "")
	_, err := c.ControlIntent(context.Background(), "s1", "weiter")
	require.Error(t, err)
	var ce *CallError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ClassQuotaExhausted, ce.Class)
	assert.EqualValues(t, 1, calls)
}

func TestEnsureJSONGuardSkipsWhenAlreadyMentionsJSON(t *testing.T) {
	messages := []Message{{Role: "system", Content: "Respond in JSON."}}
	out := ensureJSONGuard(messages)
	assert.Len(t, out, 1)
}

func TestEnsureJSONGuardPrependsWhenMissing(t *testing.T) {
	messages := []Message{{Role: "user", Content: "hallo"}}
	out := ensureJSONGuard(messages)
	require.Len(t, out, 2)
	assert.Equal(t, "system", out[0].Role)
}

func TestTracerWritesOneLinePerCall(t *testing.T) {
	dir := t.TempDir()
	tracer := NewTracer(dir)
	tracer.Write("s1", "intro_extract", "await_semester_progress", []Message{{Role: "user", Content: "hi"}}, `{"semester":null}`, nil)
	tracer.Write("s1", "control_intent", "", []Message{{Role: "user", Content: "weiter"}}, `{"intent":"continue"}`, nil)

	raw, err := os.ReadFile(filepath.Join(dir, "s1.jsonl"))
	require.NoError(t, err)
	lines := splitNonEmptyLines(string(raw))
	assert.Len(t, lines, 2)
}

func splitNonEmptyLines(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
