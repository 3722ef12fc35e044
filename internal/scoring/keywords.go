package scoring

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultKeywords is the built-in suspicious keyword list.
var DefaultKeywords = []string{
	"password", "hack", "leak", "resign", "confidential", "cheat", "login", "otp",
}

type keywordRule struct {
	word    string
	pattern *regexp.Regexp
}

// KeywordMatcher finds suspicious keywords in message bodies.
// Matching is whole-word and case-insensitive.
type KeywordMatcher struct {
	rules []keywordRule
}

// NewKeywordMatcher compiles one word-boundary pattern per keyword.
// Keywords are lower-cased; blanks and duplicates are dropped.
func NewKeywordMatcher(words []string) (*KeywordMatcher, error) {
	m := &KeywordMatcher{}
	seen := make(map[string]bool)
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("compile keyword %q: %w", w, err)
		}
		m.rules = append(m.rules, keywordRule{word: w, pattern: re})
	}
	return m, nil
}

// Keywords returns the normalized keyword list.
func (m *KeywordMatcher) Keywords() []string {
	out := make([]string, len(m.rules))
	for i, r := range m.rules {
		out[i] = r.word
	}
	return out
}

// Match returns the distinct keywords found across bodies, ordered by
// first appearance (message order, then keyword order within a message).
func (m *KeywordMatcher) Match(bodies []string) []string {
	var found []string
	hit := make(map[string]bool)
	for _, body := range bodies {
		for _, r := range m.rules {
			if hit[r.word] {
				continue
			}
			if r.pattern.MatchString(body) {
				hit[r.word] = true
				found = append(found, r.word)
			}
		}
	}
	return found
}
