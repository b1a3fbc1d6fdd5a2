package milepoint

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/vitale232/WMXDataReviewerTools/internal/adapter"
	"github.com/vitale232/WMXDataReviewerTools/internal/validate"
)

// RecordSource supplies the segments selected by the run's scope clause.
type RecordSource interface {
	Segments(ctx context.Context) ([]validate.Segment, error)
}

// GroupSource supplies the DOT_ID grouping index over the entire active
// table, regardless of the run's edit scope. Sequence correctness for an
// edited route depends on siblings the edit scope excludes, so the index
// must always cover the full table.
type GroupSource interface {
	GroupIndex(ctx context.Context) (validate.GroupIndex, error)
}

// SQLSource reads Milepoint records through a feature store adapter. It
// implements both RecordSource (scoped) and GroupSource (always full
// active table).
type SQLSource struct {
	db     adapter.Adapter
	table  string
	scope  string
	logger *slog.Logger
}

// NewSQLSource creates a source over table restricted to the scope clause.
// An empty table uses DefaultTable; a nil logger discards debug output.
func NewSQLSource(db adapter.Adapter, table, scope string, logger *slog.Logger) *SQLSource {
	if table == "" {
		table = DefaultTable
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLSource{db: db, table: table, scope: scope, logger: logger}
}

// Segments returns every record matching the source's scope clause.
func (s *SQLSource) Segments(ctx context.Context) ([]validate.Segment, error) {
	query := segmentsQuery(s.table, s.scope)
	s.logger.Debug("selecting segments", "table", s.table, "where", s.scope)

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select segments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	segments, err := scanSegments(rows)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("segments selected", "count", len(segments))
	return segments, nil
}

// GroupIndex builds the DOT_ID grouping index over all active records.
func (s *SQLSource) GroupIndex(ctx context.Context) (validate.GroupIndex, error) {
	query := segmentsQuery(s.table, ActiveRoutesWhereClause)
	s.logger.Debug("loading grouping index", "table", s.table)

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load grouping index: %w", err)
	}
	defer func() { _ = rows.Close() }()

	segments, err := scanSegments(rows)
	if err != nil {
		return nil, err
	}

	index := validate.BuildGroupIndex(segments)
	s.logger.Debug("grouping index loaded", "dot_ids", len(index))
	return index, nil
}

// scanSegments converts rows from the attribute select list into segments.
// NULL text columns become empty strings; a NULL ROUTE_QUALIFIER scans to
// zero, which the qualifier rules treat the same as any other non-"No
// Qualifier" code.
func scanSegments(rows *sql.Rows) ([]validate.Segment, error) {
	var segments []validate.Segment
	for rows.Next() {
		var (
			routeID, dotID, countyOrder            sql.NullString
			roadwayType                            sql.NullInt64
			signing, routeNumber, routeSuffix      sql.NullString
			routeQualifier                         sql.NullInt64
			parkwayFlag, roadwayFeature, direction sql.NullString
		)
		err := rows.Scan(
			&routeID, &dotID, &countyOrder, &roadwayType, &signing,
			&routeNumber, &routeSuffix, &routeQualifier, &parkwayFlag,
			&roadwayFeature, &direction,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan segment row: %w", err)
		}
		segments = append(segments, validate.Segment{
			RouteID:        routeID.String,
			DotID:          dotID.String,
			CountyOrder:    countyOrder.String,
			RoadwayType:    validate.RoadwayType(roadwayType.Int64),
			Signing:        signing.String,
			RouteNumber:    routeNumber.String,
			RouteSuffix:    routeSuffix.String,
			RouteQualifier: int(routeQualifier.Int64),
			ParkwayFlag:    parkwayFlag.String,
			RoadwayFeature: roadwayFeature.String,
			Direction:      direction.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read segment rows: %w", err)
	}
	return segments, nil
}
