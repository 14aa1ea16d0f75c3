package knowledge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JeWeidn/tkc-Chatbot/pkg/catalog"
)

func newTestStore(t *testing.T) (*Store, *catalog.Index, string, string) {
	t.Helper()
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.json")
	courses := []map[string]any{
		{"id": "T-1002", "title": "Statistik [T-1002]", "text": "Erfolgskontrolle(n): schriftlich. Dozent: Prof. Vogel.", "new_knowledge": []any{}},
	}
	raw, err := json.Marshal(courses)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(catalogPath, raw, 0o644))

	idx := catalog.Load(catalogPath)
	jsonldPath := filepath.Join(dir, "knowledge.jsonld.json")
	turtlePath := filepath.Join(dir, "knowledge.ttl")
	return NewStore(idx, jsonldPath, turtlePath), idx, jsonldPath, turtlePath
}

func TestSaveNewKnowledgeCreatesThenMerges(t *testing.T) {
	store, idx, jsonldPath, turtlePath := newTestStore(t)

	res1, err := store.SaveNewKnowledge("T-1002", "s1", FactSet{
		ExamType:   strp("schriftlich"),
		Strategies: []string{"Altklausuren"},
	})
	require.NoError(t, err)
	assert.True(t, res1.Created)

	res2, err := store.SaveNewKnowledge("T-1002", "s1", FactSet{
		Difficulty1to5: intp(4),
		Strategies:     []string{"Lerngruppe"},
	})
	require.NoError(t, err)
	assert.False(t, res2.Created)
	assert.Equal(t, "schriftlich", *res2.Entry.Facts.ExamType)
	assert.Equal(t, 4, *res2.Entry.Facts.Difficulty1to5)
	assert.Equal(t, []string{"Altklausuren", "Lerngruppe"}, res2.Entry.Facts.Strategies)

	// Exactly one entry in the course's new_knowledge log for this session.
	course := idx.Entry("T-1002")
	require.Len(t, course.NewKnowledge, 1)

	// Exactly one JSON-LD document and one Turtle block — the merge call
	// did not append additional global documents.
	jsonldRaw, err := os.ReadFile(jsonldPath)
	require.NoError(t, err)
	var docs []json.RawMessage
	require.NoError(t, json.Unmarshal(jsonldRaw, &docs))
	assert.Len(t, docs, 1)

	ttlRaw, err := os.ReadFile(turtlePath)
	require.NoError(t, err)
	assert.Equal(t, 1, countOccurrences(string(ttlRaw), "ex:T-1002 a ex:Course"))
}

func TestSaveNewKnowledgeIdempotentWithIdenticalInput(t *testing.T) {
	store, idx, _, _ := newTestStore(t)
	facts := FactSet{ExamType: strp("mündlich")}

	_, err := store.SaveNewKnowledge("T-1002", "s1", facts)
	require.NoError(t, err)
	_, err = store.SaveNewKnowledge("T-1002", "s1", facts)
	require.NoError(t, err)

	course := idx.Entry("T-1002")
	require.Len(t, course.NewKnowledge, 1)
}

func TestSaveNewKnowledgeSeparateSessionsGetSeparateEntries(t *testing.T) {
	store, idx, _, _ := newTestStore(t)

	_, err := store.SaveNewKnowledge("T-1002", "s1", FactSet{ExamType: strp("schriftlich")})
	require.NoError(t, err)
	_, err = store.SaveNewKnowledge("T-1002", "s2", FactSet{ExamType: strp("mündlich")})
	require.NoError(t, err)

	course := idx.Entry("T-1002")
	assert.Len(t, course.NewKnowledge, 2)
}

func TestSaveNewKnowledgeUnknownCourse(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	_, err := store.SaveNewKnowledge("T-9999", "s1", FactSet{})
	assert.Error(t, err)
}

func countOccurrences(s, substr string) int {
	count := 0
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			count++
		}
	}
	return count
}
