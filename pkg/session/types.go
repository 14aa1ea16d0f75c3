// Package session implements the Session Store: a serializable
// session_id → SessionState map, snapshotted to disk after every handled
// turn, plus the per-session serialization the Dialogue Controller needs
package session

import (
	"time"

	"github.com/JeWeidn/tkc-Chatbot/pkg/knowledge"
)

// Stage is one of the five dialogue-controller stages.
type Stage string

const (
	StageAwaitSemesterProgress Stage = "await_semester_progress"
	StageGeneral               Stage = "general"
	StageTLSearch              Stage = "tl_search"
	StageInTL                  Stage = "in_tl"
	StageWrapUp                Stage = "wrap_up"
)

// Mode distinguishes the scripted interview from free-form Q&A.
type Mode string

const (
	ModeInterview Mode = "interview"
	ModeQA        Mode = "qa"
)

// TurnRole identifies who produced a transcript entry.
type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// Turn is one transcript entry.
type Turn struct {
	Role      TurnRole       `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// General holds the intro-extraction result.
type General struct {
	Semester        *int `json:"semester,omitempty"`
	ProgressPercent *int `json:"progress_percent,omitempty"`
}

// Counters tracks stage-scoped counters.
type Counters struct {
	GeneralQ int `json:"general_q"`
}

// CandidateRef is one numbered shortlist entry presented for disambiguation.
type CandidateRef struct {
	Idx   int    `json:"idx"`
	ID    string `json:"id"`
	Title string `json:"title"`
}

// PendingCandidate is the single course awaiting a combined title+written
// confirmation.
type PendingCandidate struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Current is the per-course working set.
type Current struct {
	Area    string `json:"area,omitempty"`
	TLID    string `json:"tl_id,omitempty"`
	TLTitle string `json:"tl_title,omitempty"`

	AwaitingWrittenConfirm      bool `json:"awaiting_written_confirm"`
	AwaitingTitleWrittenConfirm bool `json:"awaiting_title_written_confirm"`
	AwaitingCandidateChoice     bool `json:"awaiting_candidate_choice"`

	Candidates         []CandidateRef    `json:"candidates,omitempty"`
	PendingTLCandidate *PendingCandidate `json:"pending_tl_candidate,omitempty"`
	TLFacts            knowledge.FactSet `json:"tl_facts"`
	InTLRounds         int               `json:"in_tl_rounds"`
	DeclinedWritten    []string          `json:"declined_written,omitempty"`
	LastConfirmTL      string            `json:"last_confirm_tl,omitempty"`
}

// Flags carries operational state that outlives a single turn.
type Flags struct {
	LLMDisabled       bool    `json:"llm_disabled"`
	LLMDisabledReason *string `json:"llm_disabled_reason,omitempty"`
}

// EvaluationState is the post-interview evaluation sub-state.
type EvaluationState struct {
	State       *string        `json:"state,omitempty"` // nil | "in_progress" | "done"
	Index       int            `json:"index"`
	Answers     map[string]int `json:"answers,omitempty"`
	Comments    string         `json:"comments,omitempty"`
	Corrections string         `json:"corrections,omitempty"`
}

// State is the full per-session dialogue state.
type State struct {
	SessionID  string          `json:"session_id"`
	Mode       Mode            `json:"mode"`
	StartedAt  time.Time       `json:"started_at"`
	Stage      Stage           `json:"stage"`
	General    General         `json:"general"`
	Counters   Counters        `json:"counters"`
	AskedLog   []string        `json:"asked_log,omitempty"`
	Transcript []Turn          `json:"transcript,omitempty"`
	Current    Current         `json:"current"`
	Flags      Flags           `json:"flags"`
	Evaluation EvaluationState `json:"evaluation"`
}

// NewState creates a fresh session in its initial stage, mode "interview".
func NewState(sessionID string) *State {
	s := &State{
		SessionID: sessionID,
		Mode:      ModeInterview,
		StartedAt: time.Now(),
		Stage:     StageAwaitSemesterProgress,
	}
	Sanitize(s)
	return s
}

// Reset clears all mutable interview fields in place, as if the session had
// just been created, but keeps the session id.
func (s *State) Reset() {
	sessionID := s.SessionID
	*s = *NewState(sessionID)
}

// HasAskedBefore reports whether question has already been emitted in this
// session.
func (s *State) HasAskedBefore(question string) bool {
	for _, q := range s.AskedLog {
		if q == question {
			return true
		}
	}
	return false
}

// RecordTurn appends exactly one user entry and one assistant entry to the
// transcript, and — if askedQuestion is non-empty and not a repeat — one
// entry to asked_log. Every handled turn grows the transcript by exactly
// one user + one assistant entry; asked_log grows by at most one.
func (s *State) RecordTurn(userText, assistantText, askedQuestion string) {
	now := time.Now()
	s.Transcript = append(s.Transcript,
		Turn{Role: RoleUser, Content: userText, Timestamp: now},
		Turn{Role: RoleAssistant, Content: assistantText, Timestamp: now},
	)
	if askedQuestion != "" && !s.HasAskedBefore(askedQuestion) {
		s.AskedLog = append(s.AskedLog, askedQuestion)
	}
}

// EnterInTL transitions into the in_tl stage, resetting the per-course
// round counter and fact accumulator.
func (s *State) EnterInTL() {
	s.Stage = StageInTL
	s.Current.InTLRounds = 0
	s.Current.TLFacts = knowledge.FactSet{}
}

// ClearAwaiting clears all awaiting_* sub-states and the pending candidate,
// preserving the invariant that at most one awaiting_* flag is true and
// that pending_tl_candidate is non-nil iff awaiting_title_written_confirm
// is true.
func (s *State) ClearAwaiting() {
	s.Current.AwaitingWrittenConfirm = false
	s.Current.AwaitingTitleWrittenConfirm = false
	s.Current.AwaitingCandidateChoice = false
	s.Current.PendingTLCandidate = nil
	s.Current.Candidates = nil
}

// Abort clears the current working set (except Area) and re-enters
// tl_search.
func (s *State) Abort() {
	area := s.Current.Area
	s.Current = Current{Area: area}
	s.Stage = StageTLSearch
}
