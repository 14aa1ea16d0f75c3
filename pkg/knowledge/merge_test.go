package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func TestMergeScalarRightBiased(t *testing.T) {
	a := FactSet{ExamType: strp("schriftlich")}
	b := FactSet{ExamType: strp("mündlich")}
	assert.Equal(t, "mündlich", *Merge(a, b).ExamType)

	c := FactSet{ExamType: nil}
	assert.Equal(t, "schriftlich", *Merge(a, c).ExamType)
}

func TestMergeListsDeduplicatePreservingOrder(t *testing.T) {
	a := FactSet{Strategies: []string{"Altklausuren", "Karteikarten"}}
	b := FactSet{Strategies: []string{"Karteikarten", "Lerngruppe"}}
	merged := Merge(a, b)
	assert.Equal(t, []string{"Altklausuren", "Karteikarten", "Lerngruppe"}, merged.Strategies)
}

func TestMergeIsAssociativeForLists(t *testing.T) {
	a := FactSet{Strategies: []string{"A", "B"}}
	b := FactSet{Strategies: []string{"B", "C"}}
	c := FactSet{Strategies: []string{"C", "D"}}

	left := Merge(Merge(a, b), c)
	right := Merge(a, Merge(b, c))
	assert.Equal(t, left.Strategies, right.Strategies)
}

func TestMergeScalarLastNonNullAcrossThree(t *testing.T) {
	a := FactSet{Difficulty1to5: intp(2)}
	b := FactSet{}
	c := FactSet{Difficulty1to5: intp(4)}

	left := Merge(Merge(a, b), c)
	right := Merge(a, Merge(b, c))
	assert.Equal(t, *left.Difficulty1to5, *right.Difficulty1to5)
	assert.Equal(t, 4, *left.Difficulty1to5)
}
