// Package predicate rewrites aggregated validation findings into SQL WHERE
// clauses that can be re-executed against the feature store to select
// exactly the offending records.
package predicate

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/vitale232/WMXDataReviewerTools/internal/validate"
)

// DefaultWarnAbove is the enumerated-predicate size at which the builder
// starts logging a warning. The feature store rejects membership predicates
// well before this point becomes comfortable.
const DefaultWarnAbove = 5000

// declarativeClauses overrides the enumerated ROUTE_ID IN (...) strategy for
// rules known to produce tens of thousands of offenders under a full-table
// scan, where an enumerated predicate exceeds the store's expression limits.
// Each clause restates the rule's violation condition directly against the
// table columns.
//
// This table is maintained by hand against the rule texts in
// internal/validate and has to stay in sync with them. A rule missing from
// the table silently falls back to enumeration however large its result is;
// the builder's size warning is the only guard.
var declarativeClauses = map[validate.RuleID]string{
	validate.RuleSigningNullRoadRamp:        "SIGNING IS NOT NULL AND ROADWAY_TYPE IN (1, 2)",
	validate.RuleRouteSuffixNullRoadRamp:    "ROUTE_SUFFIX IS NOT NULL AND ROADWAY_TYPE IN (1, 2)",
	validate.RuleRoadwayFeatureNullRoadRamp: "ROADWAY_FEATURE IS NOT NULL AND ROADWAY_TYPE IN (1, 2)",
	validate.RuleRouteQualifierRoadRamp:     "(ROUTE_QUALIFIER <> 10 OR ROUTE_QUALIFIER IS NULL) AND ROADWAY_TYPE IN (1, 2)",
	validate.RuleParkwayFlagRoadRamp:        "PARKWAY_FLAG = 'T' AND ROADWAY_TYPE IN (1, 2)",
}

// Builder composes selection predicates from a violated rule and its
// offending route IDs. The active-routes and base-scope fragments are
// supplied by the caller and conjoined verbatim; the builder never
// interprets their contents.
type Builder struct {
	// ActiveRoutes is the active-routes filter fragment appended to every
	// predicate.
	ActiveRoutes string
	// BaseScope optionally restricts predicates to the run's edit scope,
	// e.g. routes edited by one user since a date. Empty means no base
	// scope.
	BaseScope string
	// WarnAbove is the enumerated route-ID count that triggers a size
	// warning. Zero means DefaultWarnAbove.
	WarnAbove int

	logger *slog.Logger
}

// NewBuilder returns a builder with the given filter fragments. A nil
// logger discards the cardinality warnings.
func NewBuilder(activeRoutes, baseScope string, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{
		ActiveRoutes: activeRoutes,
		BaseScope:    baseScope,
		logger:       logger,
	}
}

// Rewrite converts one aggregated finding into a WHERE clause. It returns
// ok=false, and no clause, when routeIDs is empty: an empty finding must
// produce no downstream selection at all.
//
// Rules present in the declarative override table ignore routeIDs entirely
// and use the hand-written condition; all other rules enumerate the IDs in a
// ROUTE_ID membership predicate.
func (b *Builder) Rewrite(rule validate.RuleID, routeIDs []string) (clause string, ok bool) {
	if len(routeIDs) == 0 {
		return "", false
	}

	core, declarative := declarativeClauses[rule]
	if !declarative {
		if n := len(routeIDs); n > b.warnAbove() {
			b.logger.Warn("enumerated predicate may exceed store limits",
				"rule", string(rule), "route_ids", n)
		}
		core = RouteIDIn(routeIDs)
	}

	clause = fmt.Sprintf("%s AND (%s)", core, b.ActiveRoutes)
	if b.BaseScope != "" {
		clause = fmt.Sprintf("(%s) AND (%s)", b.BaseScope, clause)
	}
	return clause, true
}

// HasDeclarativeClause reports whether rule uses the declarative override
// strategy rather than route-ID enumeration.
func HasDeclarativeClause(rule validate.RuleID) bool {
	_, ok := declarativeClauses[rule]
	return ok
}

func (b *Builder) warnAbove() int {
	if b.WarnAbove > 0 {
		return b.WarnAbove
	}
	return DefaultWarnAbove
}

// RouteIDIn builds a ROUTE_ID membership predicate.
func RouteIDIn(routeIDs []string) string {
	return "ROUTE_ID IN (" + quoteList(routeIDs) + ")"
}

// DotIDIn builds a DOT_ID membership predicate conjoined with the builder's
// active-routes fragment. Used by the network-level SQL checks, which
// identify violations by roadway rather than by route.
func (b *Builder) DotIDIn(dotIDs []string) string {
	return fmt.Sprintf("DOT_ID IN (%s) AND (%s)", quoteList(dotIDs), b.ActiveRoutes)
}

// GroupKey identifies one DOT_ID/COUNTY_ORDER bucket flagged by a
// network-level check.
type GroupKey struct {
	DotID       string
	CountyOrder string
}

// GroupKeysClause builds an OR-chain selecting every flagged
// DOT_ID/COUNTY_ORDER bucket, each term conjoined with the active-routes
// fragment. Returns "" for no keys.
func (b *Builder) GroupKeysClause(keys []GroupKey) string {
	terms := make([]string, 0, len(keys))
	for _, key := range keys {
		terms = append(terms, fmt.Sprintf(
			"DOT_ID = '%s' AND COUNTY_ORDER = '%s' AND (%s)",
			key.DotID, key.CountyOrder, b.ActiveRoutes,
		))
	}
	return strings.Join(terms, " OR ")
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, value := range values {
		quoted[i] = "'" + value + "'"
	}
	return strings.Join(quoted, ", ")
}
