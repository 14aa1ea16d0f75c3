package catalog

import (
	"strings"
	"unicode"
)

var umlautReplacer = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
	"Ä", "ae", "Ö", "oe", "Ü", "ue",
)

// normalize lowercases, ASCII-folds German umlauts, strips non-alphanumerics
// and collapses whitespace.
func normalize(s string) string {
	s = strings.ToLower(s)
	s = umlautReplacer.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// bigrams returns the set of overlapping 2-character substrings of s
// (spaces included), used for the Dice coefficient term.
func bigrams(s string) map[string]struct{} {
	runes := []rune(s)
	set := make(map[string]struct{})
	if len(runes) < 2 {
		if len(runes) == 1 {
			set[string(runes)] = struct{}{}
		}
		return set
	}
	for i := 0; i < len(runes)-1; i++ {
		set[string(runes[i:i+2])] = struct{}{}
	}
	return set
}

// tokenSet splits normalized text on whitespace into a set of unique tokens.
func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}

// diceCoefficient computes the Sørensen–Dice coefficient between two
// bigram sets: 2|A∩B| / (|A|+|B|). Symmetric, bounded in [0,1].
func diceCoefficient(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := intersectionSize(a, b)
	return 2 * float64(inter) / float64(len(a)+len(b))
}

// jaccardIndex computes |A∩B| / |A∪B|. Symmetric, bounded in [0,1].
func jaccardIndex(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := intersectionSize(a, b)
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func intersectionSize(a, b map[string]struct{}) int {
	small, large := a, b
	if len(large) < len(small) {
		small, large = large, small
	}
	count := 0
	for k := range small {
		if _, ok := large[k]; ok {
			count++
		}
	}
	return count
}
