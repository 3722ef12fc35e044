// Package scoring turns one cycle's raw signals into a trust score,
// a reason list, and the escalation trigger decision.
package scoring

import (
	"fmt"
	"strings"
	"time"
)

// Policy penalties.
const (
	OffHoursPenalty  = 20
	WrongUserPenalty = 30
)

// DefaultThreshold is the trust score below which a cycle triggers escalation.
const DefaultThreshold = 50

// Policy holds the scoring rules. It is immutable once a Scorer is built.
type Policy struct {
	Keywords    []string
	OfficeHours Window
	Threshold   int
}

// Signals are the raw collector outputs for one cycle.
type Signals struct {
	Faces    int
	Bodies   []string
	Now      time.Time
	Expected string // employee the session monitors
	Actual   string // OS user currently logged in
}

// Result is the scored cycle.
type Result struct {
	Behavior  int
	Email     int
	Trust     int
	Keywords  []string
	OffHours  bool
	WrongUser bool
	Reasons   Reasons
}

// Scorer applies a Policy. Safe for concurrent use; holds no mutable state.
type Scorer struct {
	policy  Policy
	matcher *KeywordMatcher
}

// NewScorer compiles the keyword list of p.
func NewScorer(p Policy) (*Scorer, error) {
	m, err := NewKeywordMatcher(p.Keywords)
	if err != nil {
		return nil, fmt.Errorf("scoring: %w", err)
	}
	p.Keywords = m.Keywords()
	return &Scorer{policy: p, matcher: m}, nil
}

// Policy returns the policy the scorer was built with.
func (s *Scorer) Policy() Policy { return s.policy }

// Evaluate scores raw signals: face bins, keyword matches, then penalties.
func (s *Scorer) Evaluate(sig Signals) *Result {
	words := s.matcher.Match(sig.Bodies)
	res := s.Compute(BehaviorScore(sig.Faces), EmailScore(len(words)), sig.Now, sig.Expected, sig.Actual, words...)
	res.Keywords = words
	return res
}

// Compute applies the trust formula to already-derived scores.
// keywords are recorded as reasons ahead of the penalty reasons.
func (s *Scorer) Compute(behavior, email int, now time.Time, expected, actual string, keywords ...string) *Result {
	res := &Result{Behavior: behavior, Email: email}
	for _, w := range keywords {
		res.Reasons.Add(KeywordTag(w))
	}

	trust := floorHalf(behavior + email)

	if !s.policy.OfficeHours.Contains(now) {
		res.OffHours = true
		trust -= OffHoursPenalty
		res.Reasons.Add(TagUnusualTime)
	}

	if !strings.EqualFold(strings.TrimSpace(actual), strings.TrimSpace(expected)) {
		res.WrongUser = true
		trust -= WrongUserPenalty
		res.Reasons.Add(WrongUserTag(actual))
	}

	res.Trust = trust
	return res
}

// Triggered reports whether the result should be handed to the escalation
// machine: trust strictly below threshold, or any reason present.
func (s *Scorer) Triggered(res *Result) bool {
	return res.Trust < s.policy.Threshold || res.Reasons.Len() > 0
}

// floorHalf is floor(n/2) for any sign of n.
func floorHalf(n int) int {
	if n < 0 {
		return -((-n + 1) / 2)
	}
	return n / 2
}
