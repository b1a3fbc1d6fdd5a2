package validate

import (
	"sort"
	"strconv"
)

// Sequence rule texts. Like the attribute rules, the literal text is the
// persisted check description.
const (
	RuleCountyOrderTooManyRoutes RuleID = "COUNTY_ORDER has too many ROUTE_IDs for this DOT_ID"
	RuleCountyOrderNotOne        RuleID = "COUNTY_ORDER does not equal '01' for singular DOT_ID"
	RuleCountyOrderNotIncrement  RuleID = "COUNTY_ORDER does not increment by a value of 1 for this DOT_ID"
)

// GroupEntry is one route's membership in a county-order bucket.
type GroupEntry struct {
	RouteID   string
	Direction string
}

// DotGroup maps a parseable COUNTY_ORDER integer to the routes recorded at
// that position along one physical roadway.
type DotGroup map[int][]GroupEntry

// GroupIndex maps DOT_ID to its county-order buckets. The index must be
// built over the entire active table, not just the edited subset: sequence
// correctness for an edited route depends on siblings outside the edit
// scope. It is rebuilt per run and never persisted.
type GroupIndex map[string]DotGroup

// BuildGroupIndex derives the grouping index from segments. Records whose
// COUNTY_ORDER does not parse as an integer are skipped: the malformed value
// is already reported by the attribute checks, and reporting it here too
// would double-count the same defect.
func BuildGroupIndex(segments []Segment) GroupIndex {
	index := make(GroupIndex)
	for _, seg := range segments {
		order, err := strconv.Atoi(seg.CountyOrder)
		if err != nil {
			continue
		}
		group, ok := index[seg.DotID]
		if !ok {
			group = make(DotGroup)
			index[seg.DotID] = group
		}
		group[order] = append(group[order], GroupEntry{
			RouteID:   seg.RouteID,
			Direction: seg.Direction,
		})
	}
	return index
}

// CheckGroup validates the county-order sequencing of one DOT_ID group.
//
// Buckets holding a divided or undivided route pair collapse to a single
// representative before the sequence walk. Buckets whose direction codes do
// not form a known pair are left out of the walk entirely: repeated or
// mismatched DIRECTION codes are the network-level SQL check's finding, and
// flagging them here as well would report the same defect twice.
func CheckGroup(group DotGroup) Violations {
	v := NewViolations()

	// Resolve each bucket to one representative route.
	resolved := make(map[int]GroupEntry)
	for order, entries := range group {
		if len(entries) > 2 {
			for _, entry := range entries {
				v.Add(RuleCountyOrderTooManyRoutes, entry.RouteID)
			}
		}
		switch {
		case len(entries) == 1:
			resolved[order] = entries[0]
		case len(entries) > 1:
			if hasValidDirectionPair(entries) {
				resolved[order] = entries[0]
			}
		}
	}

	if len(resolved) == 0 {
		return v
	}

	orders := make([]int, 0, len(resolved))
	for order := range resolved {
		orders = append(orders, order)
	}
	sort.Ints(orders)

	// A group whose present orders are exactly 1..n is correctly sequenced.
	if consecutiveFromOne(orders) {
		return v
	}

	if len(orders) == 1 {
		for _, entry := range group[orders[0]] {
			v.Add(RuleCountyOrderNotOne, entry.RouteID)
		}
		return v
	}

	// Attribute each break in the sequence to the later order of the pair.
	for i := 1; i < len(orders); i++ {
		if orders[i]-orders[i-1] != 1 {
			for _, entry := range group[orders[i]] {
				v.Add(RuleCountyOrderNotIncrement, entry.RouteID)
			}
		}
	}
	return v
}

// hasValidDirectionPair reports whether the direction codes present include
// one of the two valid pairings for a shared county order: primary-undivided
// with reverse-no-inventory ("0"/"3"), or primary-divided with
// reverse-divided ("1"/"2").
func hasValidDirectionPair(entries []GroupEntry) bool {
	present := make(map[string]bool, len(entries))
	for _, entry := range entries {
		present[entry.Direction] = true
	}
	if present[DirectionPrimaryUndivided] && present[DirectionReverseNoInv] {
		return true
	}
	return present[DirectionPrimaryDivided] && present[DirectionReverseDivided]
}

func consecutiveFromOne(sorted []int) bool {
	for i, order := range sorted {
		if order != i+1 {
			return false
		}
	}
	return true
}
