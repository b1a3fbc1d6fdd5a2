// Package milepoint provides access to the Milepoint network table: the
// scope clauses that select records for validation, SQL-backed record and
// grouping sources for the rule engine, and the network-level SQL checks
// that run alongside it.
package milepoint

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTable is the versioned view of the Milepoint table in production.
const DefaultTable = "LRSN_Milepoint_evw"

// DefaultDomain is the account domain prefixed to lowercase editor names.
const DefaultDomain = "SVC"

// ActiveRoutesWhereClause selects routes whose validity window includes the
// present time: no retirement date in the past and no future-dated start.
const ActiveRoutesWhereClause = "(FROM_DATE IS NULL OR FROM_DATE <= CURRENT_TIMESTAMP) AND " +
	"(TO_DATE IS NULL OR TO_DATE >= CURRENT_TIMESTAMP)"

// editedDateFormat matches the timestamp literals the store accepts.
const editedDateFormat = "2006-01-02 15:04:05"

// EditedRoutesWhereClause selects active routes edited by user since the
// given time. The EDITED_BY column stores either the uppercase short
// username or the lowercase name qualified with the account domain,
// depending on which client wrote the edit, so both spellings are matched.
func EditedRoutesWhereClause(editedSince time.Time, user, domain string) string {
	if domain == "" {
		domain = DefaultDomain
	}
	return fmt.Sprintf(
		"EDITED_DATE >= '%s' AND (EDITED_BY = '%s' OR EDITED_BY = '%s@%s') AND (%s)",
		editedSince.Format(editedDateFormat),
		strings.ToUpper(user),
		strings.ToLower(user),
		strings.ToLower(domain),
		ActiveRoutesWhereClause,
	)
}

// attributeColumns is the select list for the roadway-level attribute
// checks.
const attributeColumns = "ROUTE_ID, DOT_ID, COUNTY_ORDER, ROADWAY_TYPE, SIGNING, " +
	"ROUTE_NUMBER, ROUTE_SUFFIX, ROUTE_QUALIFIER, PARKWAY_FLAG, ROADWAY_FEATURE, DIRECTION"

// segmentsQuery selects the attribute tuple of every record matching scope.
func segmentsQuery(table, scope string) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s", attributeColumns, table, scope)
}

// UniqueRoadwayAttrsQuery finds DOT_ID/COUNTY_ORDER combinations holding
// more than one distinct roadway-level attribute combination. A divided
// roadway's primary and reverse routes must agree on every attribute except
// DIRECTION.
func UniqueRoadwayAttrsQuery(table string) string {
	return fmt.Sprintf(
		"SELECT DOT_ID, COUNTY_ORDER, "+
			"COUNT (DISTINCT CONCAT(SIGNING, ROUTE_NUMBER, ROUTE_SUFFIX, "+
			"ROADWAY_TYPE, ROUTE_QUALIFIER, ROADWAY_FEATURE, PARKWAY_FLAG)) "+
			"FROM %s WHERE %s "+
			"GROUP BY DOT_ID, COUNTY_ORDER "+
			"HAVING COUNT (DISTINCT CONCAT(SIGNING, ROUTE_NUMBER, ROUTE_SUFFIX, "+
			"ROADWAY_TYPE, ROUTE_QUALIFIER, ROADWAY_FEATURE, PARKWAY_FLAG)) > 1",
		table, ActiveRoutesWhereClause,
	)
}

// UniqueCountyOrderDirectionQuery finds DOT_ID/COUNTY_ORDER combinations
// where a DIRECTION code repeats, e.g. a roadway whose primary and reverse
// routes are both coded as primary.
func UniqueCountyOrderDirectionQuery(table string) string {
	return fmt.Sprintf(
		"SELECT DOT_ID, COUNTY_ORDER, DIRECTION, COUNT (1) "+
			"FROM %s WHERE %s "+
			"GROUP BY DOT_ID, COUNTY_ORDER, DIRECTION "+
			"HAVING COUNT (1) > 1",
		table, ActiveRoutesWhereClause,
	)
}
