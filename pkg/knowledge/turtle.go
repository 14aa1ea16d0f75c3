package knowledge

import (
	"fmt"
	"strconv"
	"strings"
)

var ttlReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// escapeTTL escapes a string literal for embedding in a Turtle document
func escapeTTL(s string) string {
	return ttlReplacer.Replace(s)
}

// BuildTurtle renders one subject block for (cleanTitle, facts, sessionID,
// courseID) using the same predicate set as BuildJSONLD. One block is
// appended per saved entry; the store is free to append-only or rewrite
func BuildTurtle(courseID, cleanTitle string, facts FactSet, sessionID string) string {
	var b strings.Builder
	subject := fmt.Sprintf("ex:%s", courseID)

	fmt.Fprintf(&b, "%s a ex:Course ;\n", subject)
	fmt.Fprintf(&b, "    schema:name \"%s\" ;\n", escapeTTL(cleanTitle))

	if facts.ExamType != nil {
		fmt.Fprintf(&b, "    ex:examType \"%s\" ;\n", escapeTTL(*facts.ExamType))
	}
	if facts.Difficulty1to5 != nil {
		fmt.Fprintf(&b, "    ex:difficulty %d ;\n", *facts.Difficulty1to5)
	}
	if facts.PrepWeeks != nil {
		fmt.Fprintf(&b, "    ex:prepWeeks %s ;\n", strconv.FormatFloat(*facts.PrepWeeks, 'g', -1, 64))
	}
	if facts.HoursPerWeek != nil {
		fmt.Fprintf(&b, "    ex:hoursPerWeek %s ;\n", strconv.FormatFloat(*facts.HoursPerWeek, 'g', -1, 64))
	}
	for _, s := range facts.Strategies {
		fmt.Fprintf(&b, "    ex:strategy \"%s\" ;\n", escapeTTL(s))
	}
	for _, m := range facts.Materials {
		fmt.Fprintf(&b, "    ex:material \"%s\" ;\n", escapeTTL(m))
	}
	for _, p := range facts.Pitfalls {
		fmt.Fprintf(&b, "    ex:pitfall \"%s\" ;\n", escapeTTL(p))
	}
	for _, t := range facts.Tips {
		fmt.Fprintf(&b, "    ex:tip \"%s\" ;\n", escapeTTL(t))
	}
	fmt.Fprintf(&b, "    ex:evidence \"%s\" .\n", escapeTTL(sessionID))

	return b.String()
}
