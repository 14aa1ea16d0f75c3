package evaluation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JeWeidn/tkc-Chatbot/pkg/knowledge"
)

// difficultyLabels maps difficulty_1_5 to its German rendering label
// ("N/5 (<label>)").
var difficultyLabels = map[int]string{
	1: "sehr leicht",
	2: "leicht",
	3: "mittel",
	4: "anspruchsvoll",
	5: "sehr anspruchsvoll",
}

const noFactsSentence = "Für diese Teilleistung liegen noch keine Angaben vor."

// RenderMarkdown renders one "### <clean_title> (<id>)" section per course
// with a single natural-language paragraph describing its facts.
func RenderMarkdown(courses []knowledge.CourseFacts) string {
	if len(courses) == 0 {
		return ""
	}
	var b strings.Builder
	for i, c := range courses {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "### %s (%s)\n\n", c.CleanTitle, c.CourseID)
		b.WriteString(renderParagraph(c.Facts))
	}
	return b.String()
}

// renderParagraph composes the per-course paragraph from whichever fact
// fields are populated, joining sentences with a single space.
func renderParagraph(f knowledge.FactSet) string {
	var sentences []string

	if f.ExamType != nil {
		sentences = append(sentences, fmt.Sprintf("Die Prüfung erfolgte %s.", *f.ExamType))
	}
	if f.PrepWeeks != nil {
		sentences = append(sentences, fmt.Sprintf("Die Vorbereitung dauerte etwa %s Wochen.", formatNumber(*f.PrepWeeks)))
	}
	if f.HoursPerWeek != nil {
		sentences = append(sentences, fmt.Sprintf("Der wöchentliche Aufwand lag bei etwa %s Stunden.", formatNumber(*f.HoursPerWeek)))
	}
	if f.Difficulty1to5 != nil {
		label := difficultyLabels[*f.Difficulty1to5]
		sentences = append(sentences, fmt.Sprintf("Der Schwierigkeitsgrad wurde mit %d/5 (%s) eingeschätzt.", *f.Difficulty1to5, label))
	}
	if len(f.Strategies) > 0 {
		sentences = append(sentences, fmt.Sprintf("Hilfreiche Lernstrategien waren %s.", joinGerman(f.Strategies)))
	}
	if len(f.Materials) > 0 {
		sentences = append(sentences, fmt.Sprintf("Als Materialien wurden %s genutzt.", joinGerman(f.Materials)))
	}
	if len(f.Pitfalls) > 0 {
		sentences = append(sentences, fmt.Sprintf("Typische Fallstricke waren %s.", joinGerman(f.Pitfalls)))
	}
	if len(f.Tips) > 0 {
		sentences = append(sentences, fmt.Sprintf("Als Tipp wurde genannt: %s.", joinGerman(f.Tips)))
	}

	if len(sentences) == 0 {
		return noFactsSentence
	}
	return strings.Join(sentences, " ")
}

// joinGerman joins a list of strings in the natural German style "A, B und
// C".
func joinGerman(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " und " + items[len(items)-1]
	}
}

// formatNumber renders a float without a trailing ".0" for whole numbers.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
