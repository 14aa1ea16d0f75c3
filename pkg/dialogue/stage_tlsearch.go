package dialogue

import (
	"context"

	"github.com/JeWeidn/tkc-Chatbot/pkg/oracle"
	"github.com/JeWeidn/tkc-Chatbot/pkg/session"
)

// handleTLSearch handles the tl_search stage: title identification,
// including the candidate-choice and combined title+written confirmation
// sub-dialogues.
func (ctl *Controller) handleTLSearch(ctx context.Context, st *session.State, userText string) (turnResult, error) {
	entities, err := ctl.oracle.DetectEntities(ctx, st.SessionID, userText, recentHistory(st), true)
	if err != nil {
		return turnResult{}, err
	}
	if entities.TemporalHint == oracle.TemporalFuture {
		return turnResult{answer: rephrasedPastTenseQuestion}, nil
	}

	switch {
	case st.Current.AwaitingCandidateChoice:
		return ctl.handleCandidateChoiceReply(ctx, st, userText)
	case st.Current.AwaitingTitleWrittenConfirm:
		return ctl.handleCombinedConfirmReply(ctx, st, userText)
	case st.Current.AwaitingWrittenConfirm:
		return ctl.handleTLSearchWrittenConfirmReply(ctx, st, userText)
	}

	mention := entities.FoundTLText
	if mention == "" && len(entities.FoundTLList) > 0 {
		mention = entities.FoundTLList[0]
	}
	if mention != "" {
		result, resolved, err := ctl.resolveMention(ctx, st, mention, entities.WroteProb)
		if err != nil {
			return turnResult{}, err
		}
		if resolved {
			return result, nil
		}
	}
	return turnResult{answer: newIdentificationQuestion}, nil
}

// handleTLSearchIdentify emits a fresh identification question without
// consuming a classifier call — used right after an abort clears the
// current working set.
func (ctl *Controller) handleTLSearchIdentify(ctx context.Context, st *session.State) (turnResult, error) {
	return turnResult{answer: newIdentificationQuestion}, nil
}

// handleCandidateChoiceReply resolves a reply to a numbered candidate list
func (ctl *Controller) handleCandidateChoiceReply(ctx context.Context, st *session.State, userText string) (turnResult, error) {
	list := make([]oracle.ResolveCandidate, 0, len(st.Current.Candidates))
	for _, c := range st.Current.Candidates {
		list = append(list, oracle.ResolveCandidate{ID: c.ID, Title: c.Title})
	}

	decision, err := ctl.oracle.PickCandidateFromReply(ctx, st.SessionID, list, userText)
	if err != nil {
		return turnResult{}, err
	}

	switch decision.Decision {
	case "pick":
		var chosen *session.CandidateRef
		for i := range st.Current.Candidates {
			if decision.Idx != nil && st.Current.Candidates[i].Idx == *decision.Idx {
				chosen = &st.Current.Candidates[i]
				break
			}
		}
		st.ClearAwaiting()
		if chosen == nil {
			return turnResult{answer: newIdentificationQuestion}, nil
		}
		course := ctl.catalog.Entry(chosen.ID)
		if course == nil {
			return turnResult{answer: newIdentificationQuestion}, nil
		}
		return ctl.beginCombinedConfirm(st, course), nil
	case "free":
		st.ClearAwaiting()
		result, resolved, err := ctl.resolveMention(ctx, st, decision.Title, nil)
		if err != nil {
			return turnResult{}, err
		}
		if resolved {
			return result, nil
		}
		return turnResult{answer: newIdentificationQuestion}, nil
	default: // "none"
		st.ClearAwaiting()
		return turnResult{answer: newIdentificationQuestion}, nil
	}
}

// yesNoReprompt is the pure yes/no question asked after a combined confirm
// establishes the title but leaves "already taken" unresolved.
const yesNoReprompt = "Hast du diese Teilleistung bereits abgeschlossen — ja oder nein?"

// handleCombinedConfirmReply classifies the reply to the "did you mean X —
// have you taken it?" prompt.
func (ctl *Controller) handleCombinedConfirmReply(ctx context.Context, st *session.State, userText string) (turnResult, error) {
	pending := st.Current.PendingTLCandidate
	if pending == nil {
		st.ClearAwaiting()
		return turnResult{answer: newIdentificationQuestion}, nil
	}
	title := pending.Title

	confirm, err := ctl.oracle.CombinedTitleWritten(ctx, st.SessionID, title, userText)
	if err != nil {
		return turnResult{}, err
	}

	switch confirm.TitleMatch {
	case oracle.TitleMatchYes:
		switch {
		case confirm.Wrote != nil && *confirm.Wrote:
			course := ctl.catalog.Entry(pending.ID)
			st.ClearAwaiting()
			if course == nil {
				return turnResult{answer: newIdentificationQuestion}, nil
			}
			return ctl.enterInTLDirect(ctx, st, course)
		case confirm.Wrote != nil && !*confirm.Wrote:
			st.Current.DeclinedWritten = append(st.Current.DeclinedWritten, title)
			st.ClearAwaiting()
			return turnResult{answer: newIdentificationQuestion}, nil
		default: // wrote == nil
			st.Current.AwaitingTitleWrittenConfirm = false
			st.Current.AwaitingWrittenConfirm = true
			st.Current.LastConfirmTL = pending.ID
			st.Current.PendingTLCandidate = nil
			return turnResult{answer: yesNoReprompt}, nil
		}
	case oracle.TitleMatchNo:
		st.ClearAwaiting()
		return turnResult{answer: newIdentificationQuestion}, nil
	default: // unclear — re-ask the same combined prompt
		course := ctl.catalog.Entry(pending.ID)
		if course == nil {
			st.ClearAwaiting()
			return turnResult{answer: newIdentificationQuestion}, nil
		}
		return ctl.beginCombinedConfirm(st, course), nil
	}
}

// handleTLSearchWrittenConfirmReply resolves the pure yes/no reprompt left
// over from a combined-confirm where wrote was null, while still in
// tl_search.
func (ctl *Controller) handleTLSearchWrittenConfirmReply(ctx context.Context, st *session.State, userText string) (turnResult, error) {
	written, err := ctl.oracle.Written(ctx, st.SessionID, userText)
	if err != nil {
		return turnResult{}, err
	}
	switch {
	case written.Wrote != nil && *written.Wrote:
		course := ctl.catalog.Entry(st.Current.LastConfirmTL)
		st.ClearAwaiting()
		if course == nil {
			return turnResult{answer: newIdentificationQuestion}, nil
		}
		return ctl.enterInTLDirect(ctx, st, course)
	case written.Wrote != nil && !*written.Wrote:
		st.Current.DeclinedWritten = append(st.Current.DeclinedWritten, st.Current.LastConfirmTL)
		st.ClearAwaiting()
		return turnResult{answer: newIdentificationQuestion}, nil
	default:
		return turnResult{answer: yesNoReprompt}, nil
	}
}
