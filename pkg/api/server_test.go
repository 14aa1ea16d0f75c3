package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JeWeidn/tkc-Chatbot/pkg/catalog"
	"github.com/JeWeidn/tkc-Chatbot/pkg/config"
	"github.com/JeWeidn/tkc-Chatbot/pkg/dialogue"
	"github.com/JeWeidn/tkc-Chatbot/pkg/evaluation"
	"github.com/JeWeidn/tkc-Chatbot/pkg/knowledge"
	"github.com/JeWeidn/tkc-Chatbot/pkg/oracle"
	"github.com/JeWeidn/tkc-Chatbot/pkg/session"
)

// newTestAPIServer wires a full Server over temp-dir stores and a fake
// oracle endpoint that answers every classifier with canned JSON keyed by a
// distinctive prompt substring.
func newTestAPIServer(t *testing.T, oracleRules map[string]string) (*Server, *session.Store, string) {
	t.Helper()
	dir := t.TempDir()

	catalogPath := filepath.Join(dir, "catalog.json")
	catalogData := `[{"id":"T-1001","title":"Mathematik 1 [T-1001]","text":"Erfolgskontrolle(n): Schriftliche Klausur. Dozent: Prof. Dr. Hannah Richter.","new_knowledge":[]}]`
	require.NoError(t, os.WriteFile(catalogPath, []byte(catalogData), 0o644))
	idx := catalog.Load(catalogPath)

	fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		var text strings.Builder
		for _, m := range req.Messages {
			text.WriteString(m.Content)
			text.WriteString("\n")
		}
		content := "{}"
		for substr, canned := range oracleRules {
			if strings.Contains(text.String(), substr) {
				content = canned
				break
			}
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{"choices": []map[string]any{{"message": map[string]any{"content": content}}}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(fake.Close)

	tracesDir := filepath.Join(dir, "traces")
	oc := oracle.NewClient(oracle.Config{BaseURL: fake.URL, Model: "test-model"}, tracesDir)

	know := knowledge.NewStore(idx, filepath.Join(dir, "k.jsonld.json"), filepath.Join(dir, "k.ttl"))
	sessions := session.NewStore(filepath.Join(dir, "sessions.json"))
	pools := config.QuestionPools{
		General: []string{"Wie läuft dein Studium bisher?"},
		TL:      []string{"Wie hast du dich vorbereitet?"},
		WrapUp:  []string{"Noch eine Teilleistung?"},
	}
	ctl := dialogue.New(idx, know, sessions, oc, pools, 6)
	evalSvc := evaluation.NewService(sessions, know, oc, filepath.Join(dir, "evaluations.jsonl"))

	return NewServer(ctl, evalSvc, idx, tracesDir, nil), sessions, tracesDir
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestInterviewStartReturnsGreetingAndSessionID(t *testing.T) {
	s, sessions, _ := newTestAPIServer(t, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/interview/start", `{"sessionId":"s1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, dialogue.Greeting, resp.Answer)
	assert.Equal(t, "s1", resp.SessionID)
	assert.NotNil(t, resp.Sources)

	st := sessions.Get("s1")
	require.NotNil(t, st)
	assert.Equal(t, session.StageAwaitSemesterProgress, st.Stage)
}

func TestInterviewStartRequiresSessionID(t *testing.T) {
	s, _, _ := newTestAPIServer(t, nil)
	rec := doJSON(t, s, http.MethodPost, "/api/interview/start", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRetrieveRequiresQuestion(t *testing.T) {
	s, _, _ := newTestAPIServer(t, nil)
	rec := doJSON(t, s, http.MethodPost, "/api/retrieve", `{"sessionId":"s1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRetrieveRunsOneTurn(t *testing.T) {
	s, sessions, _ := newTestAPIServer(t, map[string]string{
		"Extract the student's semester":               `{"semester":5,"progress_percent":70}`,
		"Pick the single best next interview question": `{"question":"Wie läuft dein Studium bisher?","rationale":"ok"}`,
	})

	rec := doJSON(t, s, http.MethodPost, "/api/interview/start", `{"sessionId":"s1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/retrieve", `{"sessionId":"s1","question":"Ich bin im 5. Semester und etwa 70% durch."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Wie läuft dein Studium bisher?", resp.Answer)

	st := sessions.Get("s1")
	require.NotNil(t, st)
	assert.Equal(t, session.StageGeneral, st.Stage)
	require.NotNil(t, st.General.Semester)
	assert.Equal(t, 5, *st.General.Semester)
}

func TestEvaluationSubmitRejectsOutOfRangeRating(t *testing.T) {
	s, sessions, _ := newTestAPIServer(t, nil)
	sessions.GetOrCreate("s1")

	rec := doJSON(t, s, http.MethodPost, "/api/evaluation/submit", `{"sessionId":"s1","ratings":{"overall":7}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluationSubmitAcceptsValidRatings(t *testing.T) {
	s, sessions, _ := newTestAPIServer(t, nil)
	sessions.GetOrCreate("s1")

	rec := doJSON(t, s, http.MethodPost, "/api/evaluation/submit", `{"sessionId":"s1","ratings":{"overall":3},"comments":"gut"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp EvaluationSubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Message)
	assert.Equal(t, "s1", resp.SessionID)

	st := sessions.Get("s1")
	require.NotNil(t, st.Evaluation.State)
	assert.Equal(t, "done", *st.Evaluation.State)
}

func TestEvaluationStartReturnsSchemaAndSummary(t *testing.T) {
	s, sessions, _ := newTestAPIServer(t, map[string]string{
		"Summarize this interview transcript": "Kurzes Gespräch über Mathematik 1.",
	})
	sessions.WithLock("s1", func(st *session.State) error {
		st.RecordTurn("hallo", "willkommen", "")
		return nil
	})

	rec := doJSON(t, s, http.MethodPost, "/api/evaluation/start", `{"sessionId":"s1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp EvaluationStartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.EvalSchema.Items, 5)
	assert.Equal(t, 1, resp.EvalSchema.Scale.Min)
	assert.Equal(t, 5, resp.EvalSchema.Scale.Max)
	assert.Equal(t, "Kurzes Gespräch über Mathematik 1.", resp.Summary)
}

func TestConversationsListAndDelete(t *testing.T) {
	s, sessions, _ := newTestAPIServer(t, nil)
	sessions.GetOrCreate("s1")

	rec := doJSON(t, s, http.MethodGet, "/api/conversations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ConversationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Sessions, "s1")

	rec = doJSON(t, s, http.MethodDelete, "/api/conversations/s1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/api/conversations/s1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteConversationRemovesTraceFile(t *testing.T) {
	s, sessions, tracesDir := newTestAPIServer(t, nil)
	sessions.GetOrCreate("s1")
	require.NoError(t, os.MkdirAll(tracesDir, 0o755))
	tracePath := filepath.Join(tracesDir, "s1.jsonl")
	require.NoError(t, os.WriteFile(tracePath, []byte("{}\n"), 0o644))

	rec := doJSON(t, s, http.MethodDelete, "/api/conversations/s1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err := os.Stat(tracePath)
	assert.True(t, os.IsNotExist(err))
}

func TestTracesUnknownSessionReturns404(t *testing.T) {
	s, _, _ := newTestAPIServer(t, nil)
	rec := doJSON(t, s, http.MethodGet, "/api/traces/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTracesStreamsJSONLines(t *testing.T) {
	s, sessions, tracesDir := newTestAPIServer(t, nil)
	sessions.GetOrCreate("s1")
	require.NoError(t, os.MkdirAll(tracesDir, 0o755))
	line := `{"op":"intro_extract"}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(tracesDir, "s1.jsonl"), []byte(line), 0o644))

	rec := doJSON(t, s, http.MethodGet, "/api/traces/s1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/jsonl")
	assert.Equal(t, line, rec.Body.String())
}

func TestHealthReportsCatalogAndSessions(t *testing.T) {
	s, sessions, _ := newTestAPIServer(t, nil)
	sessions.GetOrCreate("s1")

	rec := doJSON(t, s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 1, resp.CatalogSize)
	assert.Equal(t, 1, resp.SessionCount)
	assert.False(t, resp.OracleDisabled)
}
