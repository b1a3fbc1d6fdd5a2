package milepoint

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/vitale232/WMXDataReviewerTools/internal/adapter"
	"github.com/vitale232/WMXDataReviewerTools/internal/predicate"
)

// Check descriptions written to the Reviewer table by the network-level
// checks.
const (
	CheckUniqueRoadwayAttrsTitle = "ROUTE_ID with improper roadway attrs across DOT_ID"
	CheckUniqueCoDirTitle        = "Non-Unique COUNTY_ORDER and DIRECTION for this DOT_ID"
)

// CheckResult is one network-level finding ready for write-back: the
// description, the selection clause for the offending records, and the
// number of flagged keys behind it. A nil result means the check passed.
type CheckResult struct {
	Description string
	WhereClause string
	Flagged     int
}

// NetworkChecks runs the whole-table SQL validations that complement the
// per-record engine: attribute agreement across a divided roadway, and
// non-repeating direction codes. These own the direction-pairing findings
// the sequence validator deliberately skips.
type NetworkChecks struct {
	db     adapter.Adapter
	table  string
	pred   *predicate.Builder
	logger *slog.Logger
}

// NewNetworkChecks creates the SQL check runner. An empty table uses
// DefaultTable; a nil logger discards debug output.
func NewNetworkChecks(db adapter.Adapter, table string, pred *predicate.Builder, logger *slog.Logger) *NetworkChecks {
	if table == "" {
		table = DefaultTable
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &NetworkChecks{db: db, table: table, pred: pred, logger: logger}
}

// UniqueCountyOrderDirection flags DOT_ID/COUNTY_ORDER buckets where a
// DIRECTION code repeats. The result clause selects every flagged bucket.
func (n *NetworkChecks) UniqueCountyOrderDirection(ctx context.Context) (*CheckResult, error) {
	rows, err := n.db.Query(ctx, UniqueCountyOrderDirectionQuery(n.table))
	if err != nil {
		return nil, fmt.Errorf("county order/direction check failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []predicate.GroupKey
	for rows.Next() {
		var (
			dotID, countyOrder, direction sql.NullString
			count                         int64
		)
		if err := rows.Scan(&dotID, &countyOrder, &direction, &count); err != nil {
			return nil, fmt.Errorf("failed to scan county order/direction row: %w", err)
		}
		keys = append(keys, predicate.GroupKey{
			DotID:       dotID.String,
			CountyOrder: countyOrder.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read county order/direction rows: %w", err)
	}

	if len(keys) == 0 {
		n.logger.Debug("county order/direction check passed")
		return nil, nil
	}

	return &CheckResult{
		Description: CheckUniqueCoDirTitle,
		WhereClause: n.pred.GroupKeysClause(keys),
		Flagged:     len(keys),
	}, nil
}

// UniqueRoadwayAttrs flags routes whose roadway-level attribute combination
// disagrees with their DOT_ID/COUNTY_ORDER siblings. The GROUP BY query
// identifies the offending roadways; the routes actually at fault are the
// ones whose attribute tuple occurs exactly once within the flagged
// selection, since a lone disagreeing route is the edit that broke the
// agreement.
func (n *NetworkChecks) UniqueRoadwayAttrs(ctx context.Context) (*CheckResult, error) {
	rows, err := n.db.Query(ctx, UniqueRoadwayAttrsQuery(n.table))
	if err != nil {
		return nil, fmt.Errorf("roadway attrs check failed: %w", err)
	}

	var dotIDs []string
	for rows.Next() {
		var (
			dotID, countyOrder sql.NullString
			count              int64
		)
		if err := rows.Scan(&dotID, &countyOrder, &count); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan roadway attrs row: %w", err)
		}
		// A missing DOT_ID is caught by its own attribute rule; keep the
		// empty string so the flagged bucket still selects.
		dotIDs = append(dotIDs, dotID.String)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to read roadway attrs rows: %w", err)
	}
	_ = rows.Close()

	if len(dotIDs) == 0 {
		n.logger.Debug("roadway attrs check passed")
		return nil, nil
	}

	routeIDs, err := n.disagreeingRoutes(ctx, dotIDs)
	if err != nil {
		return nil, err
	}
	if len(routeIDs) == 0 {
		return nil, nil
	}

	return &CheckResult{
		Description: CheckUniqueRoadwayAttrsTitle,
		WhereClause: predicate.RouteIDIn(routeIDs) + " AND (" + ActiveRoutesWhereClause + ")",
		Flagged:     len(routeIDs),
	}, nil
}

// disagreeingRoutes narrows the flagged DOT_IDs to the route IDs whose
// attribute tuple occurs exactly once within the selection.
func (n *NetworkChecks) disagreeingRoutes(ctx context.Context, dotIDs []string) ([]string, error) {
	query := fmt.Sprintf(
		"SELECT ROUTE_ID, CONCAT(SIGNING, ROUTE_NUMBER, ROUTE_SUFFIX, "+
			"ROADWAY_TYPE, ROUTE_QUALIFIER, ROADWAY_FEATURE, PARKWAY_FLAG) "+
			"FROM %s WHERE %s",
		n.table, n.pred.DotIDIn(dotIDs),
	)

	rows, err := n.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select flagged roadways: %w", err)
	}
	defer func() { _ = rows.Close() }()

	routesByTuple := make(map[string][]string)
	var order []string
	for rows.Next() {
		var routeID, tuple sql.NullString
		if err := rows.Scan(&routeID, &tuple); err != nil {
			return nil, fmt.Errorf("failed to scan flagged roadway row: %w", err)
		}
		if _, seen := routesByTuple[tuple.String]; !seen {
			order = append(order, tuple.String)
		}
		routesByTuple[tuple.String] = append(routesByTuple[tuple.String], routeID.String)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read flagged roadway rows: %w", err)
	}

	var routeIDs []string
	for _, tuple := range order {
		if routes := routesByTuple[tuple]; len(routes) == 1 {
			routeIDs = append(routeIDs, routes[0])
		}
	}
	return routeIDs, nil
}
