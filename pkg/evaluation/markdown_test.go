package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JeWeidn/tkc-Chatbot/pkg/knowledge"
)

func strp(s string) *string   { return &s }
func intp(i int) *int         { return &i }
func f64p(f float64) *float64 { return &f }

func TestRenderMarkdownSectionHeadingAndFacts(t *testing.T) {
	courses := []knowledge.CourseFacts{
		{
			CourseID:   "T-1002",
			CleanTitle: "Statistik",
			Facts: knowledge.FactSet{
				ExamType:       strp("schriftlich"),
				Difficulty1to5: intp(4),
				Strategies:     []string{"Altklausuren", "Lerngruppe"},
			},
		},
	}
	md := RenderMarkdown(courses)
	assert.Contains(t, md, "### Statistik (T-1002)")
	assert.Contains(t, md, "schriftlich")
	assert.Contains(t, md, "4/5 (anspruchsvoll)")
	assert.Contains(t, md, "Altklausuren und Lerngruppe")
}

func TestRenderMarkdownPlaceholderWhenNoFacts(t *testing.T) {
	courses := []knowledge.CourseFacts{{CourseID: "T-1001", CleanTitle: "Mathematik 1"}}
	md := RenderMarkdown(courses)
	assert.Contains(t, md, noFactsSentence)
}

func TestJoinGermanStyles(t *testing.T) {
	assert.Equal(t, "", joinGerman(nil))
	assert.Equal(t, "A", joinGerman([]string{"A"}))
	assert.Equal(t, "A und B", joinGerman([]string{"A", "B"}))
	assert.Equal(t, "A, B und C", joinGerman([]string{"A", "B", "C"}))
}

func TestDifficultyLabelsCoverFullRange(t *testing.T) {
	for i := 1; i <= 5; i++ {
		assert.NotEmpty(t, difficultyLabels[i])
	}
}
