package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/JeWeidn/tkc-Chatbot/pkg/catalog"
)

// Store is the Knowledge Store: read-modify-write of
// per-course new_knowledge entries plus append to the two global
// serialization files.
type Store struct {
	catalog *catalog.Index

	mu         sync.Mutex // serializes writes to the two global files
	jsonldPath string
	turtlePath string
}

// NewStore creates a Knowledge Store backed by idx for course lookups and
// writing global JSON-LD/Turtle files at the given paths.
func NewStore(idx *catalog.Index, jsonldPath, turtlePath string) *Store {
	return &Store{catalog: idx, jsonldPath: jsonldPath, turtlePath: turtlePath}
}

// SaveResult reports what SaveNewKnowledge did, primarily for tests and
// logging.
type SaveResult struct {
	CourseID string
	Created  bool // true on first entry for (course, session); false on merge
	Entry    Entry
}

// SaveNewKnowledge records one session's facts for a course:
//  1. Locate the course by id, by id embedded in title, or by
//     case-insensitive clean-title match.
//  2. If an entry for sessionID already exists, merge facts into it.
//  3. Else append a new entry.
//  4. Recompute jsonld/ttl from the effective facts. A newly created entry
//     is also appended to the two global files; a merge updates the
//     course-local entry in place without appending new global documents
//     so exactly one JSON-LD document and one Turtle block exist per
//     (course_id, session_id).
func (s *Store) SaveNewKnowledge(courseIDOrTitle, sessionID string, facts FactSet) (SaveResult, error) {
	course := s.catalog.TryResolveByIDOrTitle(courseIDOrTitle)
	if course == nil {
		return SaveResult{}, fmt.Errorf("knowledge: unknown course %q", courseIDOrTitle)
	}
	cleanTitle := catalog.CleanTitle(course.Title)

	entries, err := decodeEntries(course.NewKnowledge)
	if err != nil {
		return SaveResult{}, fmt.Errorf("knowledge: decode existing entries for %s: %w", course.ID, err)
	}

	idx := -1
	for i, e := range entries {
		if e.SessionID == sessionID {
			idx = i
			break
		}
	}

	created := idx < 0
	var effective FactSet
	if created {
		effective = facts
	} else {
		effective = Merge(entries[idx].Facts, facts)
	}

	entry := Entry{
		SessionID: sessionID,
		Timestamp: time.Now(),
		Facts:     effective,
		JSONLD:    BuildJSONLD(cleanTitle, effective, sessionID),
		TTL:       BuildTurtle(course.ID, cleanTitle, effective, sessionID),
	}

	if created {
		entries = append(entries, entry)
	} else {
		entry.Timestamp = entries[idx].Timestamp // preserve first-seen timestamp
		entries[idx] = entry
	}

	raw, err := encodeEntries(entries)
	if err != nil {
		return SaveResult{}, fmt.Errorf("knowledge: encode entries for %s: %w", course.ID, err)
	}
	if err := s.catalog.UpdateNewKnowledge(course.ID, raw); err != nil {
		return SaveResult{}, fmt.Errorf("knowledge: persist course %s: %w", course.ID, err)
	}

	if created {
		if err := s.appendGlobal(entry); err != nil {
			return SaveResult{}, err
		}
	}

	return SaveResult{CourseID: course.ID, Created: created, Entry: entry}, nil
}

// CourseFacts is one course's merged facts for a given session, returned by
// SessionFacts for evaluation rendering.
type CourseFacts struct {
	CourseID   string  `json:"course_id"`
	CleanTitle string  `json:"clean_title"`
	Facts      FactSet `json:"facts"`
}

// SessionFacts scans every catalog course for a new_knowledge entry
// belonging to sessionID and returns the ones found, in catalog order. Used
// by evaluation.start to aggregate "what did we learn about this student's
// courses" without the Knowledge Store depending on the Session Store
func (s *Store) SessionFacts(sessionID string) ([]CourseFacts, error) {
	var out []CourseFacts
	for _, course := range s.catalog.All() {
		entries, err := decodeEntries(course.NewKnowledge)
		if err != nil {
			return nil, fmt.Errorf("knowledge: decode entries for %s: %w", course.ID, err)
		}
		for _, e := range entries {
			if e.SessionID == sessionID {
				out = append(out, CourseFacts{
					CourseID:   course.ID,
					CleanTitle: catalog.CleanTitle(course.Title),
					Facts:      e.Facts,
				})
				break
			}
		}
	}
	return out, nil
}

func decodeEntries(raw []json.RawMessage) ([]Entry, error) {
	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		var e Entry
		if err := json.Unmarshal(r, &e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func encodeEntries(entries []Entry) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		raw, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

// appendGlobal appends one JSON-LD document to the global array file and one
// Turtle block to the global stream file.
func (s *Store) appendGlobal(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.jsonldPath != "" {
		if err := appendJSONLDDocument(s.jsonldPath, entry.JSONLD); err != nil {
			return fmt.Errorf("knowledge: append json-ld: %w", err)
		}
	}
	if s.turtlePath != "" {
		if err := appendTurtleBlock(s.turtlePath, entry.TTL); err != nil {
			return fmt.Errorf("knowledge: append turtle: %w", err)
		}
	}
	return nil
}

// appendJSONLDDocument reads the existing JSON array (treating a missing or
// empty file as an empty array),
// appends doc, and rewrites the whole file.
func appendJSONLDDocument(path string, doc any) error {
	var docs []json.RawMessage
	if raw, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(raw, &docs) // tolerate in-flight/partial content; fall back to empty
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	docs = append(docs, encoded)

	out, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// appendTurtleBlock appends block to the append-only Turtle stream file.
func appendTurtleBlock(path, block string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(block + "\n")
	return err
}
