package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeIsFixedPoint(t *testing.T) {
	s := &State{
		Current: Current{
			AwaitingTitleWrittenConfirm: true,
			AwaitingCandidateChoice:     true,
			PendingTLCandidate:          &PendingCandidate{ID: "T-1001", Title: "Mathe"},
			Candidates:                  []CandidateRef{{Idx: 1, ID: "T-1001", Title: "Mathe"}},
		},
		AskedLog: []string{"A", "A", "B"},
	}
	Sanitize(s)
	first := *s

	Sanitize(s)
	assert.Equal(t, first, *s)
}

func TestSanitizeEnforcesAtMostOneAwaiting(t *testing.T) {
	s := &State{Current: Current{
		AwaitingTitleWrittenConfirm: true,
		AwaitingWrittenConfirm:      true,
		AwaitingCandidateChoice:     true,
		PendingTLCandidate:          &PendingCandidate{ID: "T-1", Title: "X"},
		Candidates:                  []CandidateRef{{Idx: 1, ID: "T-1", Title: "X"}},
	}}
	Sanitize(s)

	count := 0
	if s.Current.AwaitingTitleWrittenConfirm {
		count++
	}
	if s.Current.AwaitingWrittenConfirm {
		count++
	}
	if s.Current.AwaitingCandidateChoice {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestSanitizePendingCandidateInvariant(t *testing.T) {
	s := &State{Current: Current{AwaitingTitleWrittenConfirm: false, PendingTLCandidate: &PendingCandidate{ID: "T-1"}}}
	Sanitize(s)
	assert.Nil(t, s.Current.PendingTLCandidate)

	s2 := &State{Current: Current{AwaitingTitleWrittenConfirm: true, PendingTLCandidate: nil}}
	Sanitize(s2)
	assert.False(t, s2.Current.AwaitingTitleWrittenConfirm)
}

func TestSanitizeCandidatesInvariant(t *testing.T) {
	s := &State{Current: Current{AwaitingCandidateChoice: false, Candidates: []CandidateRef{{Idx: 1}}}}
	Sanitize(s)
	assert.Empty(t, s.Current.Candidates)
}

func TestSanitizeDeduplicatesAskedLog(t *testing.T) {
	s := &State{AskedLog: []string{"A", "B", "A", "C", "B"}}
	Sanitize(s)
	assert.Equal(t, []string{"A", "B", "C"}, s.AskedLog)
}

func TestSanitizeClampsOutOfRangeGeneral(t *testing.T) {
	sem := 99
	pct := -5
	s := &State{General: General{Semester: &sem, ProgressPercent: &pct}}
	Sanitize(s)
	assert.Nil(t, s.General.Semester)
	assert.Nil(t, s.General.ProgressPercent)
}

func TestSanitizeFillsMissingDefaults(t *testing.T) {
	s := &State{}
	Sanitize(s)
	assert.Equal(t, ModeInterview, s.Mode)
	assert.Equal(t, StageAwaitSemesterProgress, s.Stage)
	assert.False(t, s.StartedAt.IsZero())
}
