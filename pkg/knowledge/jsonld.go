package knowledge

// JSONLDContext is the fixed @context shared by every emitted document
var JSONLDContext = map[string]string{
	"ex":     "http://example.org/wi-ontology#",
	"schema": "http://schema.org/",
}

// JSONLDDocument is one Course document in the global JSON-LD array file.
type JSONLDDocument struct {
	Context    map[string]string `json:"@context"`
	Type       string            `json:"@type"`
	Name       string            `json:"name"`
	ExamType   string            `json:"examType,omitempty"`
	Difficulty int               `json:"difficulty,omitempty"`
	PrepWeeks  float64           `json:"prepWeeks,omitempty"`
	HoursPerWk float64           `json:"hoursPerWeek,omitempty"`
	Strategy   []string          `json:"strategy,omitempty"`
	Material   []string          `json:"material,omitempty"`
	Pitfall    []string          `json:"pitfall,omitempty"`
	Tip        []string          `json:"tip,omitempty"`
	Evidence   string            `json:"evidence"`
}

// BuildJSONLD renders a FactSet into one Course document with the
// predicates name, examType, difficulty, prepWeeks, hoursPerWeek,
// strategy, material, pitfall, tip and evidence. Evidence references the
// session by id string only — knowledge never owns a session object.
func BuildJSONLD(cleanTitle string, facts FactSet, sessionID string) *JSONLDDocument {
	doc := &JSONLDDocument{
		Context:  JSONLDContext,
		Type:     "ex:Course",
		Name:     cleanTitle,
		Strategy: facts.Strategies,
		Material: facts.Materials,
		Pitfall:  facts.Pitfalls,
		Tip:      facts.Tips,
		Evidence: sessionID,
	}
	if facts.ExamType != nil {
		doc.ExamType = *facts.ExamType
	}
	if facts.Difficulty1to5 != nil {
		doc.Difficulty = *facts.Difficulty1to5
	}
	if facts.PrepWeeks != nil {
		doc.PrepWeeks = *facts.PrepWeeks
	}
	if facts.HoursPerWeek != nil {
		doc.HoursPerWk = *facts.HoursPerWeek
	}
	return doc
}
