package fuzzy

import (
	"reflect"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 57},
		{"abc", "abc", 100},
		{"", "", 100},
		{"abc", "", 0},
		{"語言", "語言學", 67},
	}
	for _, tt := range tests {
		if got := Ratio(tt.a, tt.b); got != tt.want {
			t.Errorf("Ratio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTokenScorers(t *testing.T) {
	if got := TokenSortRatio("new york mets", "mets new york"); got != 100 {
		t.Errorf("TokenSortRatio reordered = %d, want 100", got)
	}
	if got := TokenSortRatio("Hello, World!", "world hello"); got != 100 {
		t.Errorf("TokenSortRatio punctuation = %d, want 100", got)
	}
	if got := TokenSetRatio("fuzzy was a bear", "fuzzy fuzzy was a bear"); got != 100 {
		t.Errorf("TokenSetRatio duplicate tokens = %d, want 100", got)
	}
	if got := TokenSetRatio("allocation", "the portfolio allocation is 40"); got != 100 {
		t.Errorf("TokenSetRatio subset = %d, want 100", got)
	}
	if got := TokenSetRatio("", "abc"); got != 0 {
		t.Errorf("TokenSetRatio empty = %d, want 0", got)
	}
}

func TestWeightedRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"trailing punctuation", "Portfolio allocation is 40%", "Portfolio allocation is 40%.", 100},
		{"case", "PORTFOLIO", "portfolio", 100},
		{"reordered tokens scaled", "new york mets", "mets new york", 95},
		{"empty side", "", "abc", 0},
		{"punctuation only", "!!!", "abc", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeightedRatio(tt.a, tt.b); got != tt.want {
				t.Errorf("WeightedRatio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestProcess(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Hello, World! ", "hello  world"},
		{"ＡＢＣ-Über", "abc über"},
		{"40%", "40"},
		{"新增內容", "新增內容"},
	}
	for _, tt := range tests {
		if got := Process(tt.in); got != tt.want {
			t.Errorf("Process(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScoresInRange(t *testing.T) {
	inputs := []string{"", "a", "abc def", "完全不同的文字", "Portfolio allocation is 40%.", "!!"}
	for name, score := range scorers {
		for _, a := range inputs {
			for _, b := range inputs {
				if s := score(a, b); s < 0 || s > 100 {
					t.Errorf("%s(%q, %q) = %d out of range", name, a, b, s)
				}
			}
		}
	}
}

func TestScorerByName(t *testing.T) {
	for _, name := range []string{"", "ratio", "token_sort", "token_set", "weighted"} {
		if s, err := ScorerByName(name); err != nil || s == nil {
			t.Errorf("ScorerByName(%q) = %v, %v", name, s, err)
		}
	}
	if _, err := ScorerByName("partial"); err == nil {
		t.Error("unknown scorer should fail")
	}
	if got := ScorerNames(); !reflect.DeepEqual(got, []string{"ratio", "token_set", "token_sort", "weighted"}) {
		t.Errorf("ScorerNames = %v", got)
	}
}
