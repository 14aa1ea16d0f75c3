package dialogue

import (
	"context"
	"fmt"

	"github.com/JeWeidn/tkc-Chatbot/pkg/catalog"
	"github.com/JeWeidn/tkc-Chatbot/pkg/knowledge"
	"github.com/JeWeidn/tkc-Chatbot/pkg/oracle"
	"github.com/JeWeidn/tkc-Chatbot/pkg/session"
)

// resolveConfidenceThreshold is the cutoff above which a
// resolve_tl result is treated as resolved rather than ambiguous.
const resolveConfidenceThreshold = 0.6

// wroteConfidenceThreshold is the cutoff above which the controller skips
// the combined title+written confirmation and enters in_tl directly.
const wroteConfidenceThreshold = 0.85

// toResolveCandidates adapts catalog fuzzy-match results to the oracle's
// resolve_tl wire shape.
func toResolveCandidates(cands []catalog.Candidate) []oracle.ResolveCandidate {
	out := make([]oracle.ResolveCandidate, 0, len(cands))
	for _, c := range cands {
		out = append(out, oracle.ResolveCandidate{ID: c.ID, Title: c.Title})
	}
	return out
}

// resolveMention runs resolve_tl for one course mention: high confidence
// enters either in_tl directly
// (high wrote_prob) or the combined confirm step; ambiguous-but-plausible
// mentions become a numbered candidate-choice prompt; anything else is
// reported unresolved so the caller falls back to a fresh identification
// question. wroteProb is nil when the caller has no detect_entities signal
// for it (the candidate "free"/"pick" paths are treated as confirm-first).
func (ctl *Controller) resolveMention(ctx context.Context, st *session.State, mention string, wroteProb *float64) (turnResult, bool, error) {
	if mention == "" {
		return turnResult{}, false, nil
	}

	cands := ctl.catalog.Candidates(mention, 3)
	resolved, err := ctl.oracle.ResolveTL(ctx, st.SessionID, mention, toResolveCandidates(cands))
	if err != nil {
		return turnResult{}, false, err
	}

	if resolved.Confidence >= resolveConfidenceThreshold && resolved.MatchID != "" {
		course := ctl.catalog.Entry(resolved.MatchID)
		if course == nil {
			course = ctl.catalog.TryResolveByIDOrTitle(resolved.MatchTitle)
		}
		if course != nil {
			if wroteProb != nil && *wroteProb >= wroteConfidenceThreshold {
				result, err := ctl.enterInTLDirect(ctx, st, course)
				return result, true, err
			}
			result := ctl.beginCombinedConfirm(st, course)
			return result, true, nil
		}
	}

	if resolved.NeedClarify && len(cands) > 0 {
		return ctl.presentCandidateChoice(st, cands), true, nil
	}

	return turnResult{}, false, nil
}

// pickLeastKnownMention picks among several resolved mentions the one with
// the lowest knowledge.LeastKnownScore, returning its raw mention text to treat as a single
// mention going forward. Candidates below resolveConfidenceThreshold are
// ignored. Returns "" if none qualify.
func (ctl *Controller) pickLeastKnownMention(ctx context.Context, sessionID string, mentions []string) (string, error) {
	type scored struct {
		mention string
		course  *catalog.Course
		score   int
	}
	var qualifying []scored
	for _, m := range mentions {
		cands := ctl.catalog.Candidates(m, 3)
		resolved, err := ctl.oracle.ResolveTL(ctx, sessionID, m, toResolveCandidates(cands))
		if err != nil {
			return "", err
		}
		if resolved.Confidence < resolveConfidenceThreshold || resolved.MatchID == "" {
			continue
		}
		course := ctl.catalog.Entry(resolved.MatchID)
		if course == nil {
			continue
		}
		qualifying = append(qualifying, scored{mention: m, course: course, score: knowledge.LeastKnownScore(course)})
	}
	if len(qualifying) == 0 {
		return "", nil
	}
	best := qualifying[0]
	for _, s := range qualifying[1:] {
		if s.score < best.score {
			best = s
		}
	}
	return best.mention, nil
}

// enterInTLDirect transitions straight into in_tl for course (the high
// wrote_prob path), emitting the first Phase-3
// question prefixed with the fixed "Lass uns über ..." sentence.
func (ctl *Controller) enterInTLDirect(ctx context.Context, st *session.State, course *catalog.Course) (turnResult, error) {
	st.Current.TLID = course.ID
	st.Current.TLTitle = course.Title
	st.EnterInTL()

	cleanTitle := catalog.CleanTitle(course.Title)
	hint := ctl.catalog.ErfolgskontrolleText(course.ID)
	pq, err := ctl.oracle.PickNextTLQuestion(ctx, st.SessionID, hint, ctl.pools.Pool("tl"), st.AskedLog)
	if err != nil {
		return turnResult{}, err
	}
	question, asked := questionOrFallback(pq.Question, inTLFollowUp)
	answer := fmt.Sprintf("Lass uns über „%s\" sprechen. %s", cleanTitle, question)
	return turnResult{answer: answer, askedQuestion: asked}, nil
}

// beginCombinedConfirm sets up the pending-candidate / title+written
// confirmation state and emits the combined prompt.
func (ctl *Controller) beginCombinedConfirm(st *session.State, course *catalog.Course) turnResult {
	st.Stage = session.StageTLSearch
	st.ClearAwaiting()
	st.Current.PendingTLCandidate = &session.PendingCandidate{ID: course.ID, Title: course.Title}
	st.Current.AwaitingTitleWrittenConfirm = true

	cleanTitle := catalog.CleanTitle(course.Title)
	instructor := ctl.catalog.PrimaryInstructor(course.ID)
	answer := fmt.Sprintf("Meintest du „%s\"", cleanTitle)
	if instructor != "" {
		answer += fmt.Sprintf(" (bei %s)", instructor)
	}
	answer += " — und hast du diese Teilleistung bereits abgeschlossen?"
	return turnResult{answer: answer}
}

// presentCandidateChoice shows up to 3 numbered candidates and awaits the
// student's pick.
func (ctl *Controller) presentCandidateChoice(st *session.State, cands []catalog.Candidate) turnResult {
	st.ClearAwaiting()
	st.Current.AwaitingCandidateChoice = true

	refs := make([]session.CandidateRef, 0, len(cands))
	answer := "Meinst du eine dieser Teilleistungen?\n"
	for i, c := range cands {
		idx := i + 1
		refs = append(refs, session.CandidateRef{Idx: idx, ID: c.ID, Title: c.Title})
		answer += fmt.Sprintf("%d. %s\n", idx, catalog.CleanTitle(c.Title))
	}
	st.Current.Candidates = refs
	return turnResult{answer: answer}
}

// newIdentificationQuestion is the deterministic fallback identification
// prompt used whenever no mention could be resolved.
const newIdentificationQuestion = "Über welche Teilleistung möchtest du als Nächstes sprechen?"

// inTLFollowUp keeps an in_tl turn from emitting an empty utterance once
// every pool question has been asked. Not registered in asked_log, so it
// may repeat without violating the non-repetition invariant.
const inTLFollowUp = "Gibt es sonst noch etwas, das dir zu dieser Teilleistung wichtig erscheint?"

// questionOrFallback returns the emitted question plus the asked_log entry
// for a pool-pick result: an exhausted pool (empty question) degrades to
// fallback and registers nothing.
func questionOrFallback(question, fallback string) (string, string) {
	if question == "" {
		return fallback, ""
	}
	return question, question
}

// rephrasedPastTenseQuestion is emitted when detect_entities reports a
// future temporal_hint: it explicitly asks for an
// already-completed course.
const rephrasedPastTenseQuestion = "Lass uns über eine Teilleistung sprechen, die du bereits abgeschlossen hast — welche war das?"
