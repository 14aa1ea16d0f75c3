package dialogue

import (
	"context"

	"github.com/JeWeidn/tkc-Chatbot/pkg/session"
)

// handleAwaitSemesterProgress handles the opening stage: extract
// semester/progress, move to general, and ask the first Allgemeine Frage.
func (ctl *Controller) handleAwaitSemesterProgress(ctx context.Context, st *session.State, userText string) (turnResult, error) {
	intro, err := ctl.oracle.IntroExtract(ctx, st.SessionID, userText)
	if err != nil {
		return turnResult{}, err
	}
	st.General.Semester = intro.Semester
	st.General.ProgressPercent = intro.ProgressPercent
	st.Stage = session.StageGeneral

	pq, err := ctl.oracle.PickPhaseQuestion(ctx, st.SessionID, "Allgemeine Fragen", ctl.pools.Pool("general"), st.AskedLog)
	if err != nil {
		return turnResult{}, err
	}
	question, asked := questionOrFallback(pq.Question, newIdentificationQuestion)
	return turnResult{answer: question, askedQuestion: asked}, nil
}
