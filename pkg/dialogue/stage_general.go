package dialogue

import (
	"context"

	"github.com/JeWeidn/tkc-Chatbot/pkg/oracle"
	"github.com/JeWeidn/tkc-Chatbot/pkg/session"
)

// maxGeneralQuestions is the number of broad questions the controller asks
// in the general stage before forcing a transition to tl_search.
const maxGeneralQuestions = 2

// handleGeneral handles the general stage: detect mentions, resolve the
// least-known one if several are found, and either enter a course
// discussion or keep asking broad questions.
func (ctl *Controller) handleGeneral(ctx context.Context, st *session.State, userText string) (turnResult, error) {
	entities, err := ctl.oracle.DetectEntities(ctx, st.SessionID, userText, recentHistory(st), false)
	if err != nil {
		return turnResult{}, err
	}

	mention := entities.FoundTLText
	if len(entities.FoundTLList) > 1 {
		picked, err := ctl.pickLeastKnownMention(ctx, st.SessionID, entities.FoundTLList)
		if err != nil {
			return turnResult{}, err
		}
		if picked != "" {
			mention = picked
		}
	} else if mention == "" && len(entities.FoundTLList) == 1 {
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

	st.Counters.GeneralQ++
	if st.Counters.GeneralQ > maxGeneralQuestions {
		st.Stage = session.StageTLSearch
		return turnResult{answer: newIdentificationQuestion}, nil
	}

	pq, err := ctl.oracle.PickPhaseQuestion(ctx, st.SessionID, "Allgemeine Fragen", ctl.pools.Pool("general"), st.AskedLog)
	if err != nil {
		return turnResult{}, err
	}
	question, asked := questionOrFallback(pq.Question, newIdentificationQuestion)
	return turnResult{answer: question, askedQuestion: asked}, nil
}

// recentHistory returns the last few transcript turns as oracle.Message
// history for detect_entities, which takes conversational context into
// account.
func recentHistory(st *session.State) []oracle.Message {
	const maxTurns = 6
	start := 0
	if len(st.Transcript) > maxTurns {
		start = len(st.Transcript) - maxTurns
	}
	out := make([]oracle.Message, 0, len(st.Transcript)-start)
	for _, t := range st.Transcript[start:] {
		role := "user"
		if t.Role == session.RoleAssistant {
			role = "assistant"
		}
		out = append(out, oracle.Message{Role: role, Content: t.Content})
	}
	return out
}
