package knowledge

// Merge combines two FactSets: scalars from b win if non-null, else a is
// kept; list fields become a deduplicated union preserving first-seen order
//. Merge is associative for the list fields and right-biased
// for scalars, so Merge(Merge(a,b),c) == Merge(a, Merge(b,c)).
func Merge(a, b FactSet) FactSet {
	out := FactSet{
		ExamType:       firstNonNil(b.ExamType, a.ExamType),
		PrepWeeks:      firstNonNilFloat(b.PrepWeeks, a.PrepWeeks),
		HoursPerWeek:   firstNonNilFloat(b.HoursPerWeek, a.HoursPerWeek),
		Difficulty1to5: firstNonNilInt(b.Difficulty1to5, a.Difficulty1to5),
		Strategies:     unionPreserveOrder(a.Strategies, b.Strategies),
		Materials:      unionPreserveOrder(a.Materials, b.Materials),
		Pitfalls:       unionPreserveOrder(a.Pitfalls, b.Pitfalls),
		Tips:           unionPreserveOrder(a.Tips, b.Tips),
	}
	return out
}

func firstNonNil(primary, fallback *string) *string {
	if primary != nil {
		return primary
	}
	return fallback
}

func firstNonNilFloat(primary, fallback *float64) *float64 {
	if primary != nil {
		return primary
	}
	return fallback
}

func firstNonNilInt(primary, fallback *int) *int {
	if primary != nil {
		return primary
	}
	return fallback
}

// unionPreserveOrder returns the deduplicated union of a and b, keeping the
// order in which each string was first seen (a's elements first, then b's).
func unionPreserveOrder(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
