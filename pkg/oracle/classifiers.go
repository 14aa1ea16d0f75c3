package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// Every classifier in this file validates and clamps the oracle's raw JSON
// before returning a typed value — the controller never sees an untyped
// oracle object.

// IntroExtract is the S0 classifier: semester and progress are clamped to
// their valid ranges, out-of-range becomes nil rather than an error.
type IntroExtract struct {
	Semester        *int `json:"semester"`
	ProgressPercent *int `json:"progress_percent"`
}

func (c *Client) IntroExtract(ctx context.Context, sessionID, userText string) (IntroExtract, error) {
	var out IntroExtract
	messages := []Message{
		{Role: "system", Content: "Extract the student's semester (1-20) and study progress percent (0-100) from the reply. Respond as JSON {\"semester\": int|null, \"progress_percent\": int|null}."},
		{Role: "user", Content: userText},
	}
	if err := c.invokeJSON(ctx, sessionID, "intro_extract", "await_semester_progress", messages, &out); err != nil {
		return IntroExtract{}, err
	}
	if out.Semester != nil && (*out.Semester < 1 || *out.Semester > 20) {
		out.Semester = nil
	}
	if out.ProgressPercent != nil && (*out.ProgressPercent < 0 || *out.ProgressPercent > 100) {
		out.ProgressPercent = nil
	}
	return out, nil
}

// PhaseQuestion is the pick_phase_question / pick_next_tl_question result.
type PhaseQuestion struct {
	Question  string `json:"question"`
	Rationale string `json:"rationale"`
}

// PickPhaseQuestion asks the oracle to choose the next question from pool,
// honoring already_asked, falling back to a deterministic random pick from
// the pool when the oracle's answer is empty or a repeat — the controller
// must make progress even when the oracle is degraded.
func (c *Client) PickPhaseQuestion(ctx context.Context, sessionID, phaseName string, pool, alreadyAsked []string) (PhaseQuestion, error) {
	messages := []Message{
		{Role: "system", Content: fmt.Sprintf("Pick the single best next interview question for phase %q from the given pool. Never repeat an already-asked question. Respond as JSON {\"question\": string, \"rationale\": string}.", phaseName)},
		{Role: "user", Content: fmt.Sprintf("pool: %v\nalready_asked: %v", pool, alreadyAsked)},
	}
	var out PhaseQuestion
	err := c.invokeJSON(ctx, sessionID, "pick_phase_question", phaseName, messages, &out)
	if err != nil || out.Question == "" || containsStr(alreadyAsked, out.Question) {
		out.Question = randomUnasked(pool, alreadyAsked)
		out.Rationale = "fallback: random pool pick"
	}
	return out, nil
}

// PickNextTLQuestion is the Phase-3 ("in_tl") counterpart of
// PickPhaseQuestion, additionally given a hint derived from the course's
// Erfolgskontrolle(n) text.
func (c *Client) PickNextTLQuestion(ctx context.Context, sessionID, hint string, pool, alreadyAsked []string) (PhaseQuestion, error) {
	messages := []Message{
		{Role: "system", Content: "Pick the single best next depth-interview question about this Teilleistung from the given pool, informed by the exam-format hint. Never repeat an already-asked question. Respond as JSON {\"question\": string, \"rationale\": string}."},
		{Role: "user", Content: fmt.Sprintf("hint: %s\npool: %v\nalready_asked: %v", hint, pool, alreadyAsked)},
	}
	var out PhaseQuestion
	err := c.invokeJSON(ctx, sessionID, "pick_next_tl_question", "in_tl", messages, &out)
	if err != nil || out.Question == "" || containsStr(alreadyAsked, out.Question) {
		out.Question = randomUnasked(pool, alreadyAsked)
		out.Rationale = "fallback: random pool pick"
	}
	return out, nil
}

// TemporalHint enumerates detect_entities' temporal_hint field.
type TemporalHint string

const (
	TemporalPast    TemporalHint = "past"
	TemporalFuture  TemporalHint = "future"
	TemporalMixed   TemporalHint = "mixed"
	TemporalUnknown TemporalHint = "unknown"
)

// WroteHint enumerates detect_entities' wrote_hint field.
type WroteHint string

const (
	WroteHigh   WroteHint = "high"
	WroteMedium WroteHint = "medium"
	WroteLow    WroteHint = "low"
)

// DetectEntities is the S1/S2 entity-extraction classifier.
type DetectEntities struct {
	FoundArea      string       `json:"found_area"`
	FoundTLText    string       `json:"found_tl_text"`
	FoundTLList    []string     `json:"found_tl_list"`
	MentionsThesis bool         `json:"mentions_thesis"`
	ThesisTopic    string       `json:"thesis_topic"`
	TemporalHint   TemporalHint `json:"temporal_hint"`
	WroteProb      *float64     `json:"wrote_prob"`
	WroteHint      *WroteHint   `json:"wrote_hint"`
}

func (c *Client) DetectEntities(ctx context.Context, sessionID, userText string, history []Message, strictCurrent bool) (DetectEntities, error) {
	messages := append([]Message{
		{Role: "system", Content: fmt.Sprintf("Detect mentioned Teilleistungen/courses and the student's thesis/temporal framing. strict_current=%v restricts matching to the course currently under discussion. Respond as JSON with found_area, found_tl_text, found_tl_list, mentions_thesis, thesis_topic, temporal_hint (past|future|mixed|unknown), wrote_prob (0..1|null), wrote_hint (high|medium|low|null).", strictCurrent)},
	}, history...)
	messages = append(messages, Message{Role: "user", Content: userText})

	var out DetectEntities
	if err := c.invokeJSON(ctx, sessionID, "detect_entities", "", messages, &out); err != nil {
		return DetectEntities{}, err
	}
	if out.WroteProb != nil {
		if math.IsNaN(*out.WroteProb) || math.IsInf(*out.WroteProb, 0) {
			out.WroteProb = nil
		} else {
			clamped := clampFloat(*out.WroteProb, 0, 1)
			out.WroteProb = &clamped
		}
	}
	switch out.TemporalHint {
	case TemporalPast, TemporalFuture, TemporalMixed, TemporalUnknown:
	default:
		out.TemporalHint = TemporalUnknown
	}
	if out.WroteHint != nil {
		switch *out.WroteHint {
		case WroteHigh, WroteMedium, WroteLow:
		default:
			out.WroteHint = nil
		}
	}
	return out, nil
}

// ControlIntent is the abort/continue classifier run on every turn outside
// the await_semester_progress stage.
type ControlIntent struct {
	Intent string `json:"intent"` // "abort" | "continue"
}

func (c *Client) ControlIntent(ctx context.Context, sessionID, userText string) (ControlIntent, error) {
	messages := []Message{
		{Role: "system", Content: "Classify whether the student wants to abort the current course discussion and move on, or continue. Respond as JSON {\"intent\": \"abort\"|\"continue\"}."},
		{Role: "user", Content: userText},
	}
	var out ControlIntent
	if err := c.invokeJSON(ctx, sessionID, "control_intent", "", messages, &out); err != nil {
		return ControlIntent{}, err
	}
	if out.Intent != "abort" {
		out.Intent = "continue"
	}
	return out, nil
}

// TitleMatch enumerates the yes/no/unclear result of the written-confirm
// family of classifiers.
type TitleMatch string

const (
	TitleMatchYes     TitleMatch = "yes"
	TitleMatchNo      TitleMatch = "no"
	TitleMatchUnclear TitleMatch = "unclear"
)

// WrittenConfirm is the shared result shape of yes_no, written, and
// combined_title_written.
type WrittenConfirm struct {
	TitleMatch TitleMatch `json:"title_match"`
	Wrote      *bool      `json:"wrote"`
}

func (c *Client) YesNo(ctx context.Context, sessionID, userText string) (WrittenConfirm, error) {
	return c.writtenConfirmLike(ctx, sessionID, "yes_no", "Classify the reply as a plain yes/no/unclear answer. Respond as JSON {\"title_match\": \"yes\"|\"no\"|\"unclear\", \"wrote\": null}.", userText)
}

func (c *Client) Written(ctx context.Context, sessionID, userText string) (WrittenConfirm, error) {
	return c.writtenConfirmLike(ctx, sessionID, "written", "Classify whether the student has already completed the exam/Erfolgskontrolle for this course. Respond as JSON {\"title_match\": \"yes\", \"wrote\": true|false|null}.", userText)
}

func (c *Client) CombinedTitleWritten(ctx context.Context, sessionID, title, userText string) (WrittenConfirm, error) {
	return c.writtenConfirmLike(ctx, sessionID, "combined_title_written",
		fmt.Sprintf("Classify whether the reply confirms the course title %q, and whether the student has already completed it. Respond as JSON {\"title_match\": \"yes\"|\"no\"|\"unclear\", \"wrote\": true|false|null}.", title),
		userText)
}

func (c *Client) writtenConfirmLike(ctx context.Context, sessionID, op, system, userText string) (WrittenConfirm, error) {
	messages := []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: userText},
	}
	var out WrittenConfirm
	if err := c.invokeJSON(ctx, sessionID, op, "", messages, &out); err != nil {
		return WrittenConfirm{}, err
	}
	switch out.TitleMatch {
	case TitleMatchYes, TitleMatchNo, TitleMatchUnclear:
	default:
		out.TitleMatch = TitleMatchUnclear
	}
	return out, nil
}

// ResolveTL is the mention-to-catalog-entry resolver.
type ResolveTL struct {
	MatchID         string  `json:"match_id"`
	MatchTitle      string  `json:"match_title"`
	Confidence      float64 `json:"confidence"`
	NeedClarify     bool    `json:"need_clarify"`
	ClarifyQuestion string  `json:"clarify_question"`
}

// ResolveCandidate is one catalog candidate offered to the oracle.
type ResolveCandidate struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (c *Client) ResolveTL(ctx context.Context, sessionID, mention string, candidates []ResolveCandidate) (ResolveTL, error) {
	messages := []Message{
		{Role: "system", Content: "Resolve the student's course mention against the candidate list. Respond as JSON {\"match_id\": string, \"match_title\": string, \"confidence\": 0..1, \"need_clarify\": bool, \"clarify_question\": string}."},
		{Role: "user", Content: fmt.Sprintf("mention: %q\ncandidates: %v", mention, candidates)},
	}
	var out ResolveTL
	if err := c.invokeJSON(ctx, sessionID, "resolve_tl", "", messages, &out); err != nil {
		return ResolveTL{}, err
	}
	if math.IsNaN(out.Confidence) || math.IsInf(out.Confidence, 0) {
		out.Confidence = 0
	}
	out.Confidence = clampFloat(out.Confidence, 0, 1)
	return out, nil
}

// CandidateDecision is the pick_candidate_from_reply result.
type CandidateDecision struct {
	Decision string `json:"decision"` // pick | none | free
	Idx      *int   `json:"idx,omitempty"`
	Title    string `json:"title,omitempty"`
}

func (c *Client) PickCandidateFromReply(ctx context.Context, sessionID string, list []ResolveCandidate, reply string) (CandidateDecision, error) {
	messages := []Message{
		{Role: "system", Content: "The student was shown a numbered candidate list and replied. Decide pick (chose one by number), none (declined), or free (gave a different title). Respond as JSON {\"decision\": \"pick\"|\"none\"|\"free\", \"idx\": int|null, \"title\": string}."},
		{Role: "user", Content: fmt.Sprintf("candidates: %v\nreply: %q", list, reply)},
	}
	var out CandidateDecision
	if err := c.invokeJSON(ctx, sessionID, "pick_candidate_from_reply", "", messages, &out); err != nil {
		return CandidateDecision{}, err
	}
	switch out.Decision {
	case "pick", "none", "free":
	default:
		out.Decision = "none"
	}
	return out, nil
}

// FactDeltas mirrors knowledge.FactSet's shape — duplicated here (rather
// than imported) so the oracle package stays free of a knowledge import
// and the classifier's wire contract is explicit about what the oracle is
// allowed to return.
type FactDeltas struct {
	ExamType       *string  `json:"exam_type"`
	PrepWeeks      *float64 `json:"prep_weeks"`
	HoursPerWeek   *float64 `json:"hours_per_week"`
	Difficulty1to5 *int     `json:"difficulty_1_5"`
	Strategies     []string `json:"strategies"`
	Materials      []string `json:"materials"`
	Pitfalls       []string `json:"pitfalls"`
	Tips           []string `json:"tips"`
}

func (c *Client) ExtractFacts(ctx context.Context, sessionID, title, answer string, prevFacts FactDeltas) (FactDeltas, error) {
	messages := []Message{
		{Role: "system", Content: "Extract depth-interview facts about this Teilleistung's exam from the student's answer: exam_type, prep_weeks, hours_per_week, difficulty_1_5 (1..5), strategies, materials, pitfalls, tips. Only include fields actually supported by this answer. Respond as JSON."},
		{Role: "user", Content: fmt.Sprintf("course: %q\nprev_facts: %+v\nanswer: %q", title, prevFacts, answer)},
	}
	// Numbers arrive as json.Number so a literal that overflows float64 (1e400) becomes nil.
	var raw struct {
		FactDeltas
		PrepWeeks    *json.Number `json:"prep_weeks"`
		HoursPerWeek *json.Number `json:"hours_per_week"`
	}
	if err := c.invokeJSON(ctx, sessionID, "extract_facts", "in_tl", messages, &raw); err != nil {
		return FactDeltas{}, err
	}
	out := raw.FactDeltas
	for dst, n := range map[**float64]*json.Number{&out.PrepWeeks: raw.PrepWeeks, &out.HoursPerWeek: raw.HoursPerWeek} {
		if n != nil {
			if v, err := n.Float64(); err == nil {
				*dst = &v
			}
		}
	}
	if out.Difficulty1to5 != nil && (*out.Difficulty1to5 < 1 || *out.Difficulty1to5 > 5) {
		out.Difficulty1to5 = nil
	}
	if out.PrepWeeks != nil && nonFinite(*out.PrepWeeks) {
		out.PrepWeeks = nil
	}
	if out.HoursPerWeek != nil && nonFinite(*out.HoursPerWeek) {
		out.HoursPerWeek = nil
	}
	return out, nil
}

// SummarizeTranscript produces the free-form 3-6 sentence prose summary
// used by evaluation.start.
func (c *Client) SummarizeTranscript(ctx context.Context, sessionID string, transcript []Message) (string, error) {
	messages := append([]Message{
		{Role: "system", Content: "Summarize this interview transcript in 3 to 6 sentences of plain German prose, no JSON, no lists."},
	}, transcript...)

	guarded := messages // summarize is free-form prose, not JSON — no guard prepended
	content, err := c.call(ctx, c.model, guarded)
	c.tracer.Write(sessionID, "summarize_transcript", "", guarded, content, err)
	if err != nil {
		var ce *CallError
		if asCallError(err, &ce) && isRetryable(ce.Class) && c.fallbackModel != "" && c.fallbackModel != c.model {
			content, err = c.call(ctx, c.fallbackModel, guarded)
			c.tracer.Write(sessionID, "summarize_transcript", "", guarded, content, err)
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(content), nil
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func nonFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// randomUnasked returns a random element of pool not present in
// alreadyAsked, or "" if none remain.
func randomUnasked(pool, alreadyAsked []string) string {
	var remaining []string
	for _, q := range pool {
		if !containsStr(alreadyAsked, q) {
			remaining = append(remaining, q)
		}
	}
	if len(remaining) == 0 {
		return ""
	}
	return remaining[rand.Intn(len(remaining))]
}
