package fuzzy

// Match is the best-scoring universe entry for a candidate.
type Match struct {
	Text  string // Matched universe entry
	Index int    // Position of Text in the universe
	Score int
}

// Matcher pairs a scorer with a threshold. The zero value scores with
// WeightedRatio and a threshold of zero; use NewMatcher for the defaults.
type Matcher struct {
	Scorer    Scorer
	Threshold int
}

// NewMatcher returns a Matcher using WeightedRatio and DefaultThreshold.
func NewMatcher() Matcher {
	return Matcher{Scorer: WeightedRatio, Threshold: DefaultThreshold}
}

// Best returns the highest-scoring entry of universe for candidate. The
// first entry reaching the maximum wins. It reports false when the universe
// is empty or the maximum is below the threshold.
func (m Matcher) Best(candidate string, universe []string) (Match, bool) {
	score := m.Scorer
	if score == nil {
		score = WeightedRatio
	}

	best := Match{Index: -1, Score: -1}
	for i, entry := range universe {
		if s := score(candidate, entry); s > best.Score {
			best = Match{Text: entry, Index: i, Score: s}
		}
	}
	if best.Index < 0 || best.Score < m.Threshold {
		return Match{}, false
	}
	return best, true
}

// Match runs Best once per candidate against the whole universe and returns
// the matches keyed by candidate. Unmatched candidates are absent.
func (m Matcher) Match(candidates, universe []string) map[string]Match {
	out := make(map[string]Match)
	for _, c := range candidates {
		if _, done := out[c]; done {
			continue
		}
		if match, ok := m.Best(c, universe); ok {
			out[c] = match
		}
	}
	return out
}

// BestMatch scores candidate against universe with WeightedRatio.
func BestMatch(candidate string, universe []string, threshold int) (Match, bool) {
	return Matcher{Scorer: WeightedRatio, Threshold: threshold}.Best(candidate, universe)
}
