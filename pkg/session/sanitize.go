package session

import "time"

// Sanitize re-applies default values for every missing field and coerces
// invariants, making stored snapshots forward-compatible with evolving
// state shapes. It is a fixed point: calling it twice in a
// row produces the same result as calling it once.
func Sanitize(s *State) {
	if s.Mode == "" {
		s.Mode = ModeInterview
	}
	if s.Stage == "" {
		s.Stage = StageAwaitSemesterProgress
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}

	sanitizeAwaitingInvariant(s)
	sanitizeCandidateInvariant(s)
	sanitizeDeduplicateAskedLog(s)

	if s.General.Semester != nil && (*s.General.Semester < 1 || *s.General.Semester > 20) {
		s.General.Semester = nil
	}
	if s.General.ProgressPercent != nil && (*s.General.ProgressPercent < 0 || *s.General.ProgressPercent > 100) {
		s.General.ProgressPercent = nil
	}
	if s.Current.InTLRounds < 0 {
		s.Current.InTLRounds = 0
	}
}

// sanitizeAwaitingInvariant enforces "at most one of awaiting_* is true at
// any moment" by keeping only the first true flag found, in a
// fixed precedence order. It leaves pending_tl_candidate/candidates as they
// are; sanitizeCandidateInvariant clears them afterwards.
func sanitizeAwaitingInvariant(s *State) {
	c := &s.Current
	flagsSet := 0
	if c.AwaitingTitleWrittenConfirm {
		flagsSet++
	}
	if c.AwaitingWrittenConfirm {
		flagsSet++
	}
	if c.AwaitingCandidateChoice {
		flagsSet++
	}
	if flagsSet <= 1 {
		return
	}
	// Precedence: title+written confirm, then written confirm, then
	// candidate choice — the most specific pending question wins.
	switch {
	case c.AwaitingTitleWrittenConfirm:
		c.AwaitingWrittenConfirm = false
		c.AwaitingCandidateChoice = false
	case c.AwaitingWrittenConfirm:
		c.AwaitingCandidateChoice = false
	}
}

// sanitizeCandidateInvariant enforces:
//   - pending_tl_candidate non-nil iff awaiting_title_written_confirm is true
//   - candidates non-empty iff awaiting_candidate_choice is true
func sanitizeCandidateInvariant(s *State) {
	c := &s.Current
	if !c.AwaitingTitleWrittenConfirm {
		c.PendingTLCandidate = nil
	} else if c.PendingTLCandidate == nil {
		c.AwaitingTitleWrittenConfirm = false
	}

	if !c.AwaitingCandidateChoice {
		c.Candidates = nil
	} else if len(c.Candidates) == 0 {
		c.AwaitingCandidateChoice = false
	}
}

// sanitizeDeduplicateAskedLog removes any duplicate question strings,
// keeping the first occurrence, preserving the non-repetition invariant
// even if a corrupted snapshot somehow contained a duplicate.
func sanitizeDeduplicateAskedLog(s *State) {
	seen := make(map[string]struct{}, len(s.AskedLog))
	out := make([]string, 0, len(s.AskedLog))
	for _, q := range s.AskedLog {
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	s.AskedLog = out
}
