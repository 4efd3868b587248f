// Package fuzzy scores string similarity on [0,100] and picks the best
// candidate above a threshold.
//
// Every scorer is deterministic. Scorers need not be symmetric.
package fuzzy

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultThreshold is the minimum score a match needs by default.
const DefaultThreshold = 60

// Scorer returns the similarity of a and b on [0,100].
type Scorer func(a, b string) int

// Ratio is the normalized Levenshtein similarity of a and b, computed over
// runes. Two empty strings are identical.
func Ratio(a, b string) int {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := max(la, lb)
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return round(100 * float64(longest-d) / float64(longest))
}

// TokenSortRatio compares a and b after normalizing them and sorting their
// tokens, so word order does not matter.
func TokenSortRatio(a, b string) int {
	return Ratio(sortedTokens(Process(a)), sortedTokens(Process(b)))
}

// TokenSetRatio compares the shared tokens of a and b against each side's
// shared-plus-remaining tokens and keeps the best score. A string whose
// tokens are a subset of the other's scores 100.
func TokenSetRatio(a, b string) int {
	ta, tb := tokenSet(Process(a)), tokenSet(Process(b))
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var common, onlyA, onlyB []string
	for tok := range ta {
		if tb[tok] {
			common = append(common, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tb {
		if !ta[tok] {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	sect := strings.Join(common, " ")
	combinedA := strings.TrimSpace(sect + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(sect + " " + strings.Join(onlyB, " "))

	best := Ratio(combinedA, combinedB)
	if sect != "" {
		best = max(best, Ratio(sect, combinedA), Ratio(sect, combinedB))
	}
	return best
}

// WeightedRatio is the default scorer: the best of Ratio on the normalized
// strings and the two token scores scaled by 0.95. It returns 0 when either
// side normalizes to nothing.
func WeightedRatio(a, b string) int {
	pa, pb := Process(a), Process(b)
	if pa == "" || pb == "" {
		return 0
	}
	const tokenScale = 0.95
	base := float64(Ratio(pa, pb))
	sorted := float64(TokenSortRatio(pa, pb)) * tokenScale
	set := float64(TokenSetRatio(pa, pb)) * tokenScale
	return round(math.Max(base, math.Max(sorted, set)))
}

// Process normalizes s for comparison: NFKC, Unicode case folding, every
// rune that is not a letter or digit replaced by a space, and surrounding
// space trimmed.
func Process(s string) string {
	s = cases.Fold().String(norm.NFKC.String(s))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	return strings.TrimSpace(s)
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

func round(f float64) int {
	return int(math.Round(f))
}

var scorers = map[string]Scorer{
	"ratio":      Ratio,
	"token_sort": TokenSortRatio,
	"token_set":  TokenSetRatio,
	"weighted":   WeightedRatio,
}

// ScorerNames lists the names accepted by ScorerByName.
func ScorerNames() []string {
	names := make([]string, 0, len(scorers))
	for name := range scorers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScorerByName returns the named scorer. The empty name selects
// WeightedRatio.
func ScorerByName(name string) (Scorer, error) {
	if name == "" {
		return WeightedRatio, nil
	}
	s, ok := scorers[name]
	if !ok {
		return nil, fmt.Errorf("unknown scorer %q (want one of %s)", name, strings.Join(ScorerNames(), ", "))
	}
	return s, nil
}
