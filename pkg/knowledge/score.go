package knowledge

import "github.com/JeWeidn/tkc-Chatbot/pkg/catalog"

// LeastKnownScore is the least-known tie-breaker: the sum
// of signals already present in a course's new_knowledge log — each
// populated scalar fact counts 1, each non-empty list field counts 1, plus
// min(2, count of prior entries), plus 1 if the descriptor text length
// exceeds 200 characters. The dialogue controller picks the course with the
// minimum score (the "least-known" one) among multiple resolved mentions.
func LeastKnownScore(course *catalog.Course) int {
	entries, err := decodeEntries(course.NewKnowledge)
	if err != nil {
		entries = nil
	}

	score := 0
	if anyEntryHasScalar(entries, func(f FactSet) bool { return f.ExamType != nil }) {
		score++
	}
	if anyEntryHasScalar(entries, func(f FactSet) bool { return f.PrepWeeks != nil }) {
		score++
	}
	if anyEntryHasScalar(entries, func(f FactSet) bool { return f.HoursPerWeek != nil }) {
		score++
	}
	if anyEntryHasScalar(entries, func(f FactSet) bool { return f.Difficulty1to5 != nil }) {
		score++
	}
	if anyEntryHasScalar(entries, func(f FactSet) bool { return len(f.Strategies) > 0 }) {
		score++
	}
	if anyEntryHasScalar(entries, func(f FactSet) bool { return len(f.Materials) > 0 }) {
		score++
	}
	if anyEntryHasScalar(entries, func(f FactSet) bool { return len(f.Pitfalls) > 0 }) {
		score++
	}
	if anyEntryHasScalar(entries, func(f FactSet) bool { return len(f.Tips) > 0 }) {
		score++
	}

	prior := len(entries)
	if prior > 2 {
		prior = 2
	}
	score += prior

	if len(course.Text) > 200 {
		score++
	}
	return score
}

func anyEntryHasScalar(entries []Entry, pred func(FactSet) bool) bool {
	for _, e := range entries {
		if pred(e.Facts) {
			return true
		}
	}
	return false
}
