// Package dialogue implements the Dialogue Controller: the per-request
// driver that consumes one user turn, calls the Oracle Adapter for
// classifiers, updates the session's state, emits exactly one assistant
// utterance, and persists the resulting state.
package dialogue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JeWeidn/tkc-Chatbot/pkg/catalog"
	"github.com/JeWeidn/tkc-Chatbot/pkg/config"
	"github.com/JeWeidn/tkc-Chatbot/pkg/knowledge"
	"github.com/JeWeidn/tkc-Chatbot/pkg/oracle"
	"github.com/JeWeidn/tkc-Chatbot/pkg/session"
)

// Greeting is the fixed multi-line greeting emitted idempotently by
// interview.start.
const Greeting = "Hallo! Schön, dass du dir Zeit nimmst.\n" +
	"Ich interviewe dich kurz zu den Teilleistungen, die du bereits abgelegt hast — wie sie geprüft wurden, wie du dich vorbereitet hast und was dir im Rückblick geholfen hätte.\n" +
	"Lass uns loslegen: In welchem Semester bist du aktuell und wie weit bist du ungefähr durch dein Studium?"

// MaxInTLRounds caps the depth-interview round count per Teilleistung
// before the controller forces a transition to wrap_up.
const MaxInTLRounds = 6

// Controller wires the Catalog Index, Knowledge Store, Session Store and
// Oracle Adapter together into the state machine.
type Controller struct {
	catalog       *catalog.Index
	knowledge     *knowledge.Store
	sessions      *session.Store
	oracle        *oracle.Client
	pools         config.QuestionPools
	maxInTLRounds int
}

// New creates a Controller. maxInTLRounds <= 0 falls back to MaxInTLRounds.
func New(idx *catalog.Index, know *knowledge.Store, sessions *session.Store, oc *oracle.Client, pools config.QuestionPools, maxInTLRounds int) *Controller {
	if maxInTLRounds <= 0 {
		maxInTLRounds = MaxInTLRounds
	}
	return &Controller{
		catalog:       idx,
		knowledge:     know,
		sessions:      sessions,
		oracle:        oc,
		pools:         pools,
		maxInTLRounds: maxInTLRounds,
	}
}

// Start implements interview.start(session_id, force). A
// fresh or forced session gets the greeting appended exactly once.
func (ctl *Controller) Start(ctx context.Context, sessionID string, force bool) (string, error) {
	var answer string
	err := ctl.sessions.WithLock(sessionID, func(st *session.State) error {
		if force {
			st.Reset()
		}
		if len(st.Transcript) == 0 {
			st.Transcript = append(st.Transcript, session.Turn{Role: session.RoleAssistant, Content: Greeting})
		}
		answer = Greeting
		return nil
	})
	return answer, err
}

// Reset implements interview.reset(session_id): identical to
// Start(sessionID, force=true).
func (ctl *Controller) Reset(ctx context.Context, sessionID string) (string, error) {
	return ctl.Start(ctx, sessionID, true)
}

// SetMode records the session's mode ("interview"|"qa"), honoring the
// optional `mode` field the HTTP layer accepts on interview.start/retrieve
//. Unrecognized values are ignored rather than rejected, since
// mode selection is advisory metadata, not a state-machine input.
func (ctl *Controller) SetMode(sessionID string, mode session.Mode) error {
	if mode != session.ModeInterview && mode != session.ModeQA {
		return nil
	}
	return ctl.sessions.WithLock(sessionID, func(st *session.State) error {
		st.Mode = mode
		return nil
	})
}

// Sessions exposes the Session Store for the HTTP endpoints that list and
// delete sessions (GET /api/conversations, DELETE /api/conversations/:id) and sit outside
// the per-turn state machine.
func (ctl *Controller) Sessions() *session.Store {
	return ctl.sessions
}

// HandleTurn implements POST /api/retrieve: it runs exactly one state
// transition for userText, persists the resulting session, and returns
// the single assistant utterance for this turn.
func (ctl *Controller) HandleTurn(ctx context.Context, sessionID, userText string) (string, error) {
	var answer string
	err := ctl.sessions.WithLock(sessionID, func(st *session.State) error {
		if st.Flags.LLMDisabled {
			answer = llmDisabledReason(st)
			st.RecordTurn(userText, answer, "")
			return nil
		}

		result, err := ctl.dispatch(ctx, st, userText)
		if err != nil {
			var ce *oracle.CallError
			if asCallError(err, &ce) {
				answer = ctl.handleOracleError(st, ce)
				st.RecordTurn(userText, answer, "")
				return nil
			}
			// Storage or programming error: log-and-degrade rather than
			// letting it escape the HTTP handler.
			slog.Default().Warn("dialogue: turn failed", "session_id", sessionID, "error", err)
			answer = "Entschuldigung, da ist etwas schiefgelaufen — kannst du deine letzte Antwort noch einmal senden?"
			st.RecordTurn(userText, answer, "")
			return nil
		}

		answer = result.answer
		st.RecordTurn(userText, answer, result.askedQuestion)
		return nil
	})
	return answer, err
}

// turnResult is the stage handler's output: the assistant utterance to
// emit and, if it was a fresh pool question, the question string to
// register in asked_log.
type turnResult struct {
	answer        string
	askedQuestion string
}

// dispatch runs the control_intent abort check (in every stage except
// await_semester_progress) and then the current stage's handler.
func (ctl *Controller) dispatch(ctx context.Context, st *session.State, userText string) (turnResult, error) {
	if st.Stage != session.StageAwaitSemesterProgress {
		intent, err := ctl.oracle.ControlIntent(ctx, st.SessionID, userText)
		if err != nil {
			return turnResult{}, err
		}
		if intent.Intent == "abort" {
			st.Abort()
			return ctl.handleTLSearchIdentify(ctx, st)
		}
	}

	switch st.Stage {
	case session.StageAwaitSemesterProgress:
		return ctl.handleAwaitSemesterProgress(ctx, st, userText)
	case session.StageGeneral:
		return ctl.handleGeneral(ctx, st, userText)
	case session.StageTLSearch:
		return ctl.handleTLSearch(ctx, st, userText)
	case session.StageInTL:
		return ctl.handleInTL(ctx, st, userText)
	case session.StageWrapUp:
		return ctl.handleWrapUp(ctx, st, userText)
	default:
		return turnResult{}, fmt.Errorf("dialogue: unknown stage %q", st.Stage)
	}
}

func asCallError(err error, target **oracle.CallError) bool {
	ce, ok := err.(*oracle.CallError)
	if !ok {
		return false
	}
	*target = ce
	return true
}

// llmDisabledReason returns the sticky user-facing message set once the
// oracle reports quota exhaustion.
func llmDisabledReason(st *session.State) string {
	if st.Flags.LLMDisabledReason != nil {
		return *st.Flags.LLMDisabledReason
	}
	return "Der Interview-Assistent ist aktuell nicht verfügbar (Kontingent erschöpft). Bitte versuche es später erneut."
}

// handleOracleError classifies an oracle failure into the user-facing
// behavior: quota flips the sticky flag, rate-limit
// is transient, everything else has already been retried once against the
// fallback model by the Oracle Adapter and is surfaced as a generic resend
// prompt.
func (ctl *Controller) handleOracleError(st *session.State, ce *oracle.CallError) string {
	switch ce.Class {
	case oracle.ClassQuotaExhausted:
		reason := "Der Interview-Assistent ist aktuell nicht verfügbar (Kontingent erschöpft). Bitte versuche es später erneut."
		st.Flags.LLMDisabled = true
		st.Flags.LLMDisabledReason = &reason
		return reason
	case oracle.ClassRateLimited:
		return "Gerade ist viel los — bitte versuche es in Kürze noch einmal."
	default:
		return "Entschuldigung, das konnte ich gerade nicht verarbeiten — kannst du deine Antwort noch einmal senden?"
	}
}
