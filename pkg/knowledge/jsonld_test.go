package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildJSONLDFieldsAndEvidence(t *testing.T) {
	facts := FactSet{
		ExamType:       strp("schriftlich"),
		Difficulty1to5: intp(4),
		Strategies:     []string{"Altklausuren"},
	}
	doc := BuildJSONLD("Statistik", facts, "s1")

	assert.Equal(t, "ex:Course", doc.Type)
	assert.Equal(t, "Statistik", doc.Name)
	assert.Equal(t, "schriftlich", doc.ExamType)
	assert.Equal(t, 4, doc.Difficulty)
	assert.Equal(t, []string{"Altklausuren"}, doc.Strategy)
	assert.Equal(t, "s1", doc.Evidence)
	assert.Equal(t, "http://example.org/wi-ontology#", doc.Context["ex"])
	assert.Equal(t, "http://schema.org/", doc.Context["schema"])
}

func TestBuildTurtleEscapesQuotesAndBackslashes(t *testing.T) {
	facts := FactSet{ExamType: strp(`mündlich "mit" Vorbereitung\Nachbereitung`)}
	ttl := BuildTurtle("T-1003", "Datenbanksysteme", facts, "s1")

	assert.Contains(t, ttl, `ex:T-1003 a ex:Course`)
	assert.Contains(t, ttl, `\"mit\"`)
	assert.Contains(t, ttl, `\\Nachbereitung`)
	assert.Contains(t, ttl, `ex:evidence "s1"`)
}
