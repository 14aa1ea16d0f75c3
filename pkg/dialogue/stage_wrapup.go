package dialogue

import (
	"context"

	"github.com/JeWeidn/tkc-Chatbot/pkg/session"
)

// handleWrapUp handles the wrap_up stage: the single phase-4 question
// asking about another course was already emitted by handleInTL's
// round-limit transition. This turn is the student's reply to it, so the
// controller flips straight back to tl_search and processes the reply as a
// fresh identification turn.
func (ctl *Controller) handleWrapUp(ctx context.Context, st *session.State, userText string) (turnResult, error) {
	st.Stage = session.StageTLSearch
	return ctl.handleTLSearch(ctx, st, userText)
}
