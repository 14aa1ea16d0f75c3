// Package catalog provides the Catalog Index: a load-time structure over the
// curated set of Teilleistungen (course components) the interview can ask
// about, with fuzzy candidate search and per-id descriptive lookups.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Course is one catalog entry. Immutable at runtime except for its
// NewKnowledge log, which the Knowledge Store appends/merges into.
//
// NewKnowledge is kept as raw JSON so the dependency-first Catalog Index
// never needs to know the shape of a knowledge entry, keeping the
// catalog file readable independently of the knowledge store.
type Course struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Text         string            `json:"text"`
	NewKnowledge []json.RawMessage `json:"new_knowledge"`
}

// Candidate is one fuzzy-search result.
type Candidate struct {
	ID    string
	Title string
	Score float64
}

// Index is the in-memory, load-time catalog. Zero value is a valid empty
// index: a missing or malformed catalog file yields an empty index, never
// a crash.
type Index struct {
	mu      sync.Mutex
	path    string
	courses []*Course
	byID    map[string]*Course
}

// Load reads a catalog JSON array from path. On any read or parse failure it
// returns an empty Index (no error is reported) so the dialogue controller keeps
// working (treating every mention as unresolved) rather than failing
// startup over a malformed catalog file.
func Load(path string) *Index {
	idx := &Index{path: path, byID: make(map[string]*Course)}

	raw, err := os.ReadFile(path)
	if err != nil {
		return idx
	}

	var courses []*Course
	if err := json.Unmarshal(raw, &courses); err != nil {
		return idx
	}

	idx.courses = courses
	for _, c := range courses {
		idx.byID[c.ID] = c
	}
	return idx
}

// LoadErr behaves like Load but also reports whether the file was read and
// parsed successfully. Nothing in this repository calls it; the health
// endpoint reports the size of the Index that Load returned.
func LoadErr(path string) (*Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return &Index{byID: make(map[string]*Course)}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var courses []*Course
	if err := json.Unmarshal(raw, &courses); err != nil {
		return &Index{byID: make(map[string]*Course)}, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	idx := &Index{courses: courses, byID: make(map[string]*Course, len(courses))}
	for _, c := range courses {
		idx.byID[c.ID] = c
	}
	return idx, nil
}

// Len returns the number of loaded courses.
func (idx *Index) Len() int {
	return len(idx.courses)
}

// Entry looks up a course by id. Returns nil if not found.
func (idx *Index) Entry(id string) *Course {
	return idx.byID[id]
}

// All returns every loaded course, in catalog order.
func (idx *Index) All() []*Course {
	return idx.courses
}

var idBracketRE = regexp.MustCompile(`\[?(T-[A-Za-z0-9_-]+)\]?`)

// CleanTitle strips any bracketed (or bare trailing) catalog id substring
// from a title, e.g. "Mathematik 1 [T-1001]" → "Mathematik 1".
func CleanTitle(title string) string {
	cleaned := idBracketRE.ReplaceAllString(title, "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return strings.TrimSpace(cleaned)
}

var erfolgskontrolleRE = regexp.MustCompile(`(?is)Erfolgskontrolle\(?n?\)?\s*:?\s*(.+?)(?:Dozent|$)`)
var dozentRE = regexp.MustCompile(`(?i)Dozent\w*\s*:\s*(.+)`)

// ErfolgskontrolleText extracts the "Erfolgskontrolle(n)" paragraph from a
// course's descriptor text, or "" if absent.
func (idx *Index) ErfolgskontrolleText(id string) string {
	c := idx.byID[id]
	if c == nil {
		return ""
	}
	m := erfolgskontrolleRE.FindStringSubmatch(c.Text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// PrimaryInstructor extracts the "Dozent:" line from a course's descriptor
// text, or "" if absent.
func (idx *Index) PrimaryInstructor(id string) string {
	c := idx.byID[id]
	if c == nil {
		return ""
	}
	m := dozentRE.FindStringSubmatch(c.Text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m[1]), "."))
}

// Candidates returns the top-k fuzzy matches for query, sorted descending by
// score. Score = 0.6·Dice(bigrams) + 0.4·Jaccard(tokens), both computed over
// normalized text.
func (idx *Index) Candidates(query string, k int) []Candidate {
	if k <= 0 {
		k = 3
	}
	nq := normalize(query)
	if nq == "" {
		return nil
	}
	qBigrams := bigrams(nq)
	qTokens := tokenSet(nq)

	out := make([]Candidate, 0, len(idx.courses))
	for _, c := range idx.courses {
		nt := normalize(CleanTitle(c.Title))
		score := 0.6*diceCoefficient(qBigrams, bigrams(nt)) + 0.4*jaccardIndex(qTokens, tokenSet(nt))
		out = append(out, Candidate{ID: c.ID, Title: c.Title, Score: score})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > k {
		out = out[:k]
	}
	return out
}

// TryResolveByIDOrTitle is used by the Knowledge Store:
// locate a course by id, by id embedded in its own title, or by
// case-insensitive clean-title match.
func (idx *Index) TryResolveByIDOrTitle(idOrTitle string) *Course {
	if c := idx.byID[idOrTitle]; c != nil {
		return c
	}
	if m := idBracketRE.FindStringSubmatch(idOrTitle); len(m) > 1 {
		if c := idx.byID[m[1]]; c != nil {
			return c
		}
	}
	target := strings.ToLower(CleanTitle(idOrTitle))
	for _, c := range idx.courses {
		if strings.ToLower(CleanTitle(c.Title)) == target {
			return c
		}
	}
	return nil
}

// UpdateNewKnowledge replaces a course's new_knowledge log in memory and
// rewrites the whole catalog file to disk; single-process discipline makes
// rewrite-on-save safe.
// Serialized by idx.mu so concurrent sessions touching different courses
// don't interleave partial writes.
func (idx *Index) UpdateNewKnowledge(courseID string, entries []json.RawMessage) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	c := idx.byID[courseID]
	if c == nil {
		return fmt.Errorf("catalog: unknown course id %q", courseID)
	}
	c.NewKnowledge = entries

	if idx.path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(idx.courses, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	tmp := idx.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write catalog temp file: %w", err)
	}
	if err := os.Rename(tmp, idx.path); err != nil {
		return fmt.Errorf("replace catalog file: %w", err)
	}
	return nil
}
