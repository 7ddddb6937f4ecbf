package fuzzy

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// Ratcliff scores below are the same numbers difflib's get_close_matches
// produces for these pairs.
func TestScoreRatcliff(t *testing.T) {
	testCases := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"abc", "abc", 1},
		{"abcd", "bcde", 0.75},
		{"apple", "appel", 0.8},
		{"abc", "xyz", 0},
		{"আমি", "আমি", 1},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s→%s", tc.a, tc.b), func(t *testing.T) {
			if got := Default.Score(tc.a, tc.b); got != tc.want {
				t.Errorf("Score(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestMatchRanksAndCuts(t *testing.T) {
	candidates := []string{"ape", "apple", "peach", "puppy"}
	got := Match("appel", candidates, 3, 0.6)
	want := []string{"apple", "ape"}
	if len(got) != len(want) {
		t.Fatalf("Match = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Match[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMatchTiesKeepCandidateOrder(t *testing.T) {
	// both differ from the query by one substitution
	candidates := []string{"abd", "abe", "abc"}
	got := Match("abx", candidates, 5, 0.5)
	want := []string{"abd", "abe", "abc"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie order broken: %q", got)
		}
	}
}

func TestMatchSelfFirst(t *testing.T) {
	candidates := []string{"তুমি কেমন আছ", "আমি ভালো আছি", "আমি ভালো নেই"}
	for _, c := range candidates {
		got := Match(c, candidates, 5, 0.3)
		if len(got) == 0 || got[0] != c {
			t.Errorf("Match(%q) = %q, expected itself first", c, got)
		}
	}
}

func TestMatchBengaliSentence(t *testing.T) {
	corpus := []string{"তুমি কেমন আছ", "আমি ভালো আছি", "আজ আকাশ মেঘলা"}
	got := Match("তুমি কেমন", corpus, 5, 0.3)
	if len(got) == 0 || got[0] != "তুমি কেমন আছ" {
		t.Errorf("Match = %q", got)
	}
}

func TestMatchDegenerate(t *testing.T) {
	if got := Match("a", []string{"a"}, 0, 0.5); got != nil {
		t.Errorf("maxResults 0 should return nil, got %q", got)
	}
	if got := Match("a", nil, 3, 0.5); got != nil {
		t.Errorf("no candidates should return nil, got %q", got)
	}
	if got := Match("a", []string{"a"}, 3, 1.5); got != nil {
		t.Errorf("bad cutoff should return nil, got %q", got)
	}
}

func TestNewAlgorithms(t *testing.T) {
	for _, name := range []string{"", "ratcliff", "levenshtein", "Jaro-Winkler", "osa", "cosine"} {
		m, err := New(name)
		if err != nil {
			t.Errorf("New(%q): %v", name, err)
			continue
		}
		if got := m.Score("কলম", "কলম"); got != 1 {
			t.Errorf("%s self score = %v", m.Algorithm(), got)
		}
		if got := m.Score("", "কলম"); got != 0 {
			t.Errorf("%s empty score = %v", m.Algorithm(), got)
		}
	}
	if _, err := New("soundex"); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Errorf("expected ErrUnknownAlgorithm, got %v", err)
	}
}

func TestLevenshteinMatch(t *testing.T) {
	m, err := New("levenshtein")
	if err != nil {
		t.Fatal(err)
	}
	got := m.MatchScored("kitten", []string{"sitting", "kitten", "mitten"}, 2, 0.5)
	if len(got) != 2 || got[0].Text != "kitten" || got[1].Text != "mitten" {
		t.Errorf("MatchScored = %+v", got)
	}
}

func BenchmarkMatchWords(b *testing.B) {
	words := make([]string, 5000)
	for i := range words {
		words[i] = fmt.Sprintf("শব্দ%d", i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Match("শব্দ১২", words, 5, 0.6)
	}
}

func TestScoreMatchesRanking(t *testing.T) {
	// long enough for difflib's popular-element junk heuristic to apply
	query := strings.Repeat("আমি ভালো আছি ", 20)
	candidates := []string{
		strings.Repeat("আমি ভালো আছি ", 18) + "তুমি কেমন আছ",
		strings.Repeat("তুমি ভালো আছ ", 20),
	}
	for _, sc := range Default.MatchScored(query, candidates, 5, 0) {
		if got := Default.Score(query, sc.Text); got != sc.Score {
			t.Errorf("Score = %v, ranked with %v", got, sc.Score)
		}
	}
}
