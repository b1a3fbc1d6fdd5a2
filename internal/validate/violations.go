package validate

import "sort"

// RuleID identifies a validation rule. The identifier doubles as the
// user-facing description written to the Reviewer table, so the literal text
// is load-bearing: tests assert on it and the predicate rewriter keys its
// declarative overrides on it.
type RuleID string

// Violations maps a violated rule to the set of ROUTE_IDs that violate it.
// Membership is deduplicated and a rule key is only ever present with a
// non-empty set.
type Violations map[RuleID]map[string]struct{}

// NewViolations returns an empty violation set.
func NewViolations() Violations {
	return make(Violations)
}

// Add records routeIDs as violating rule. Calling Add with no route IDs is a
// no-op, which preserves the invariant that no rule maps to an empty set.
func (v Violations) Add(rule RuleID, routeIDs ...string) {
	if len(routeIDs) == 0 {
		return
	}
	set, ok := v[rule]
	if !ok {
		set = make(map[string]struct{}, len(routeIDs))
		v[rule] = set
	}
	for _, id := range routeIDs {
		set[id] = struct{}{}
	}
}

// Merge returns the union of a and b as a new violation set. The operation
// is commutative and idempotent: merge order over any number of per-record
// results never changes the final set.
func Merge(a, b Violations) Violations {
	out := NewViolations()
	for rule, set := range a {
		for id := range set {
			out.Add(rule, id)
		}
	}
	for rule, set := range b {
		for id := range set {
			out.Add(rule, id)
		}
	}
	return out
}

// Rules returns the violated rules in stable sorted order.
func (v Violations) Rules() []RuleID {
	rules := make([]RuleID, 0, len(v))
	for rule := range v {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i] < rules[j] })
	return rules
}

// RouteIDs returns the sorted ROUTE_IDs recorded against rule.
func (v Violations) RouteIDs(rule RuleID) []string {
	set, ok := v[rule]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Total returns the number of (rule, route) pairs in the set.
func (v Violations) Total() int {
	n := 0
	for _, set := range v {
		n += len(set)
	}
	return n
}

// Aggregator owns the run-wide violation set. Per-record results from the
// attribute checks and per-group results from the sequence validator are
// folded in additively; the aggregate is handed to the predicate rewriter
// read-only once the scan completes.
type Aggregator struct {
	merged Violations
}

// NewAggregator returns an aggregator with an empty violation set.
func NewAggregator() *Aggregator {
	return &Aggregator{merged: NewViolations()}
}

// Fold merges one result into the run-wide set.
func (a *Aggregator) Fold(v Violations) {
	a.merged = Merge(a.merged, v)
}

// Result returns the aggregated violation set.
func (a *Aggregator) Result() Violations {
	return a.merged
}
