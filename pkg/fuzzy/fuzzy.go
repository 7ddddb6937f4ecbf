// Package fuzzy ranks candidate strings by similarity to a query.
//
// The default score is the Ratcliff/Obershelp ratio computed by
// go-difflib's SequenceMatcher over runes, so Bengali grapheme parts are
// compared one code point at a time instead of one byte at a time.
// Other normalized metrics from go-edlib can be selected by name.
package fuzzy

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/hbollon/go-edlib"
	"github.com/pmezard/go-difflib/difflib"
)

// Algorithm names a similarity metric.
type Algorithm string

const (
	Ratcliff     Algorithm = "ratcliff"
	Levenshtein  Algorithm = "levenshtein"
	Damerau      Algorithm = "damerau"
	OSA          Algorithm = "osa"
	LCS          Algorithm = "lcs"
	Jaro         Algorithm = "jaro"
	JaroWinkler  Algorithm = "jaro-winkler"
	Cosine       Algorithm = "cosine"
	Jaccard      Algorithm = "jaccard"
	SorensenDice Algorithm = "sorensen-dice"
	Qgram        Algorithm = "qgram"
)

var edlibAlgorithms = map[Algorithm]edlib.Algorithm{
	Levenshtein:  edlib.Levenshtein,
	Damerau:      edlib.DamerauLevenshtein,
	OSA:          edlib.OSADamerauLevenshtein,
	LCS:          edlib.Lcs,
	Jaro:         edlib.Jaro,
	JaroWinkler:  edlib.JaroWinkler,
	Cosine:       edlib.Cosine,
	Jaccard:      edlib.Jaccard,
	SorensenDice: edlib.SorensenDice,
	Qgram:        edlib.Qgram,
}

// ErrUnknownAlgorithm is returned by New for unsupported metric names.
var ErrUnknownAlgorithm = errors.New("unknown similarity algorithm")

// Scored is a candidate with its similarity score in [0,1].
type Scored struct {
	Text  string
	Score float64
}

// Matcher ranks candidates with one metric. It holds no per-query state
// and is safe for concurrent use.
type Matcher struct {
	algo Algorithm
}

// Default is the ratcliff matcher.
var Default = &Matcher{algo: Ratcliff}

// New returns a matcher for the named algorithm. An empty name selects ratcliff.
func New(name string) (*Matcher, error) {
	algo := Algorithm(strings.ToLower(strings.TrimSpace(name)))
	if algo == "" || algo == Ratcliff {
		return &Matcher{algo: Ratcliff}, nil
	}
	if _, ok := edlibAlgorithms[algo]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return &Matcher{algo: algo}, nil
}

// Algorithm returns the metric in use.
func (m *Matcher) Algorithm() Algorithm { return m.algo }

// Match returns at most maxResults candidates whose similarity to query
// is at least minSimilarity, best first. Equal scores keep candidate order.
func Match(query string, candidates []string, maxResults int, minSimilarity float64) []string {
	return Default.Match(query, candidates, maxResults, minSimilarity)
}

// Match is the matcher's version of the package-level Match.
func (m *Matcher) Match(query string, candidates []string, maxResults int, minSimilarity float64) []string {
	scored := m.MatchScored(query, candidates, maxResults, minSimilarity)
	if len(scored) == 0 {
		return nil
	}
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.Text
	}
	return out
}

// MatchScored is Match with the scores attached.
func (m *Matcher) MatchScored(query string, candidates []string, maxResults int, minSimilarity float64) []Scored {
	if maxResults <= 0 || len(candidates) == 0 {
		return nil
	}
	if minSimilarity < 0 || minSimilarity > 1 {
		log.Warnf("similarity cutoff %v outside [0,1], no matches", minSimilarity)
		return nil
	}

	var results []Scored
	if m.algo == Ratcliff {
		results = ratcliffScan(query, candidates, minSimilarity)
	} else {
		for _, c := range candidates {
			if score := m.Score(query, c); score >= minSimilarity {
				results = append(results, Scored{Text: c, Score: score})
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

// Score returns the similarity of candidate b to query a in [0,1], the
// same value Match ranks b by.
func (m *Matcher) Score(a, b string) float64 {
	if m.algo == Ratcliff {
		return difflib.NewMatcher(runes(b), runes(a)).Ratio()
	}
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	score, err := edlib.StringsSimilarity(a, b, edlibAlgorithms[m.algo])
	if err != nil {
		log.Debugf("similarity %s failed for %q/%q: %v", m.algo, a, b, err)
		return 0
	}
	return float64(score)
}

// ratcliffScan keeps the query as the second sequence so its index is
// built once, and runs the cheap upper bounds before the full ratio.
func ratcliffScan(query string, candidates []string, cutoff float64) []Scored {
	sm := difflib.NewMatcher(nil, runes(query))
	var results []Scored
	for _, c := range candidates {
		sm.SetSeq1(runes(c))
		if sm.RealQuickRatio() < cutoff || sm.QuickRatio() < cutoff {
			continue
		}
		if ratio := sm.Ratio(); ratio >= cutoff {
			results = append(results, Scored{Text: c, Score: ratio})
		}
	}
	return results
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
