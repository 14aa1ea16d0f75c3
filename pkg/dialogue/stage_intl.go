package dialogue

import (
	"context"

	"github.com/JeWeidn/tkc-Chatbot/pkg/catalog"
	"github.com/JeWeidn/tkc-Chatbot/pkg/knowledge"
	"github.com/JeWeidn/tkc-Chatbot/pkg/oracle"
	"github.com/JeWeidn/tkc-Chatbot/pkg/session"
)

// handleInTL handles the in_tl stage: the per-course depth interview.
func (ctl *Controller) handleInTL(ctx context.Context, st *session.State, userText string) (turnResult, error) {
	st.Current.InTLRounds++
	if st.Current.InTLRounds > ctl.maxInTLRounds {
		st.Current.InTLRounds = 0
		st.Stage = session.StageWrapUp
		pq, err := ctl.oracle.PickPhaseQuestion(ctx, st.SessionID, "Phase-4 Übergang", ctl.pools.Pool("wrap_up"), st.AskedLog)
		if err != nil {
			return turnResult{}, err
		}
		question, asked := questionOrFallback(pq.Question, newIdentificationQuestion)
		return turnResult{answer: question, askedQuestion: asked}, nil
	}

	// A restored snapshot could in principle carry an unresolved
	// written-confirm into in_tl; the normal path resolves it in tl_search
	// before ever reaching here (see handleTLSearchWrittenConfirmReply).
	if st.Current.AwaitingWrittenConfirm {
		return ctl.handleTLSearchWrittenConfirmReply(ctx, st, userText)
	}

	course := ctl.catalog.Entry(st.Current.TLID)
	if course == nil {
		st.Stage = session.StageTLSearch
		return turnResult{answer: newIdentificationQuestion}, nil
	}

	deltas, err := ctl.oracle.ExtractFacts(ctx, st.SessionID, catalog.CleanTitle(course.Title), userText, toFactDeltas(st.Current.TLFacts))
	if err != nil {
		return turnResult{}, err
	}
	merged := knowledge.Merge(st.Current.TLFacts, fromFactDeltas(deltas))
	st.Current.TLFacts = merged

	if _, err := ctl.knowledge.SaveNewKnowledge(course.ID, st.SessionID, merged); err != nil {
		// Storage failure: logged by the caller's generic handler, turn
		// still proceeds with a user-visible response.
		return turnResult{}, err
	}

	hint := ctl.catalog.ErfolgskontrolleText(course.ID)
	pq, err := ctl.oracle.PickNextTLQuestion(ctx, st.SessionID, hint, ctl.pools.Pool("tl"), st.AskedLog)
	if err != nil {
		return turnResult{}, err
	}
	question, asked := questionOrFallback(pq.Question, inTLFollowUp)
	return turnResult{answer: question, askedQuestion: asked}, nil
}

func toFactDeltas(f knowledge.FactSet) oracle.FactDeltas {
	return oracle.FactDeltas{
		ExamType:       f.ExamType,
		PrepWeeks:      f.PrepWeeks,
		HoursPerWeek:   f.HoursPerWeek,
		Difficulty1to5: f.Difficulty1to5,
		Strategies:     f.Strategies,
		Materials:      f.Materials,
		Pitfalls:       f.Pitfalls,
		Tips:           f.Tips,
	}
}

func fromFactDeltas(d oracle.FactDeltas) knowledge.FactSet {
	return knowledge.FactSet{
		ExamType:       d.ExamType,
		PrepWeeks:      d.PrepWeeks,
		HoursPerWeek:   d.HoursPerWeek,
		Difficulty1to5: d.Difficulty1to5,
		Strategies:     d.Strategies,
		Materials:      d.Materials,
		Pitfalls:       d.Pitfalls,
		Tips:           d.Tips,
	}
}
