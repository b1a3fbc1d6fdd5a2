package runner

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitale232/WMXDataReviewerTools/internal/adapter"
	"github.com/vitale232/WMXDataReviewerTools/internal/milepoint"
	"github.com/vitale232/WMXDataReviewerTools/internal/predicate"
	"github.com/vitale232/WMXDataReviewerTools/internal/validate"
)

type fakeRecords struct {
	segments []validate.Segment
	err      error
}

func (f fakeRecords) Segments(_ context.Context) ([]validate.Segment, error) {
	return f.segments, f.err
}

type fakeGroups struct {
	index validate.GroupIndex
	err   error
}

func (f fakeGroups) GroupIndex(_ context.Context) (validate.GroupIndex, error) {
	return f.index, f.err
}

type sinkWrite struct {
	description string
	whereClause string
	recordCount int
}

type memSink struct {
	writes []sinkWrite
	err    error
}

func (s *memSink) Write(description, whereClause string, recordCount int) error {
	if s.err != nil {
		return s.err
	}
	s.writes = append(s.writes, sinkWrite{description, whereClause, recordCount})
	return nil
}

func cleanRoad(routeID, dotID, countyOrder string) validate.Segment {
	return validate.Segment{
		RouteID:        routeID,
		DotID:          dotID,
		CountyOrder:    countyOrder,
		RoadwayType:    validate.RoadwayTypeRoad,
		RouteQualifier: validate.RouteQualifierNone,
		Direction:      validate.DirectionPrimaryUndivided,
	}
}

func newRunner(records fakeRecords, groups fakeGroups, sink Sink) *Runner {
	pred := predicate.NewBuilder(milepoint.ActiveRoutesWhereClause, "", nil)
	return New(records, groups, validate.Checker{}, pred, sink, nil)
}

func TestRunClean(t *testing.T) {
	segments := []validate.Segment{
		cleanRoad("100000011", "100001", "01"),
		cleanRoad("100000021", "100001", "02"),
	}
	sink := &memSink{}
	r := newRunner(
		fakeRecords{segments: segments},
		fakeGroups{index: validate.BuildGroupIndex(segments)},
		sink,
	)

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.SegmentsChecked)
	assert.Equal(t, 1, report.GroupsChecked)
	assert.Empty(t, report.Findings)
	assert.Empty(t, sink.writes)
}

func TestRunAttributeViolation(t *testing.T) {
	bad := cleanRoad("100000011", "100001", "01")
	bad.Signing = "1"
	segments := []validate.Segment{bad}

	sink := &memSink{}
	r := newRunner(
		fakeRecords{segments: segments},
		fakeGroups{index: validate.BuildGroupIndex(segments)},
		sink,
	)

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)

	finding := report.Findings[0]
	assert.Equal(t, validate.RuleSigningNullRoadRamp, finding.Rule)
	assert.Equal(t, []string{"100000011"}, finding.RouteIDs)
	// Rule carries a declarative override, not an enumerated predicate.
	assert.Contains(t, finding.WhereClause, "SIGNING IS NOT NULL AND ROADWAY_TYPE IN (1, 2)")
	assert.NotContains(t, finding.WhereClause, "ROUTE_ID IN")

	require.Len(t, sink.writes, 1)
	assert.Equal(t, string(validate.RuleSigningNullRoadRamp), sink.writes[0].description)
	assert.Equal(t, 1, sink.writes[0].recordCount)
}

func TestRunSequenceViolationFromFullIndex(t *testing.T) {
	// The scope only touches the order-01 route, but the full index knows
	// the roadway jumps from 01 to 03.
	scoped := []validate.Segment{cleanRoad("100000011", "100001", "01")}
	network := []validate.Segment{
		cleanRoad("100000011", "100001", "01"),
		cleanRoad("100000031", "100001", "03"),
	}

	sink := &memSink{}
	r := newRunner(
		fakeRecords{segments: scoped},
		fakeGroups{index: validate.BuildGroupIndex(network)},
		sink,
	)

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)

	finding := report.Findings[0]
	assert.Equal(t, validate.RuleCountyOrderNotIncrement, finding.Rule)
	assert.Equal(t, []string{"100000031"}, finding.RouteIDs)
	assert.Contains(t, finding.WhereClause, "ROUTE_ID IN ('100000031')")
	assert.Contains(t, finding.WhereClause, milepoint.ActiveRoutesWhereClause)
}

func TestRunSkipsRoadwaysOutsideScope(t *testing.T) {
	// A broken roadway the scope never touched stays unreported.
	scoped := []validate.Segment{cleanRoad("100000011", "100001", "01")}
	network := []validate.Segment{
		cleanRoad("100000011", "100001", "01"),
		cleanRoad("200000021", "200002", "02"),
	}

	sink := &memSink{}
	r := newRunner(
		fakeRecords{segments: scoped},
		fakeGroups{index: validate.BuildGroupIndex(network)},
		sink,
	)

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.GroupsChecked)
	assert.Empty(t, report.Findings)
}

func TestRunInvalidRoadwayTypeAborts(t *testing.T) {
	bad := cleanRoad("100000011", "100001", "01")
	bad.RoadwayType = 6
	segments := []validate.Segment{
		cleanRoad("900000011", "900001", "99"), // would otherwise be flagged
		bad,
	}

	sink := &memSink{}
	r := newRunner(
		fakeRecords{segments: segments},
		fakeGroups{index: validate.BuildGroupIndex(segments)},
		sink,
	)

	_, err := r.Run(context.Background())
	require.Error(t, err)

	var invalid *validate.InvalidRoadwayTypeError
	assert.ErrorAs(t, err, &invalid)
	assert.Empty(t, sink.writes)
}

func TestRunLoadErrorPropagates(t *testing.T) {
	r := newRunner(
		fakeRecords{err: errors.New("connection reset")},
		fakeGroups{index: validate.GroupIndex{}},
		&memSink{},
	)

	_, err := r.Run(context.Background())
	assert.ErrorContains(t, err, "failed to load segments")
}

func TestRunSinkErrorPropagates(t *testing.T) {
	bad := cleanRoad("100000011", "100001", "01")
	bad.Signing = "1"
	segments := []validate.Segment{bad}

	r := newRunner(
		fakeRecords{segments: segments},
		fakeGroups{index: validate.BuildGroupIndex(segments)},
		&memSink{err: errors.New("disk full")},
	)

	_, err := r.Run(context.Background())
	assert.ErrorContains(t, err, "disk full")
}

func TestRunNilSinkIsDryRun(t *testing.T) {
	bad := cleanRoad("100000011", "100001", "01")
	bad.Signing = "1"
	segments := []validate.Segment{bad}

	r := newRunner(
		fakeRecords{segments: segments},
		fakeGroups{index: validate.BuildGroupIndex(segments)},
		nil,
	)

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Findings, 1)
}

// mockAdapter wraps a sqlmock connection in the adapter contract.
type mockAdapter struct {
	adapter.BaseSQLAdapter
}

func (m *mockAdapter) Connect(_ context.Context, _ adapter.Config) error { return nil }
func (m *mockAdapter) DialectName() string                               { return "mock" }

func newMockAdapter(t *testing.T) (*mockAdapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &mockAdapter{adapter.BaseSQLAdapter{
		DB:     db,
		Logger: slog.New(slog.DiscardHandler),
	}}, mock
}

func TestRunNetworkChecks(t *testing.T) {
	db, mock := newMockAdapter(t)

	mock.ExpectQuery("GROUP BY DOT_ID, COUNTY_ORDER, DIRECTION").WillReturnRows(
		sqlmock.NewRows([]string{"DOT_ID", "COUNTY_ORDER", "DIRECTION", "COUNT (1)"}).
			AddRow("100001", "01", "0", 2))
	mock.ExpectQuery("GROUP BY DOT_ID, COUNTY_ORDER").WillReturnRows(
		sqlmock.NewRows([]string{"DOT_ID", "COUNTY_ORDER", "COUNT"}))

	pred := predicate.NewBuilder(milepoint.ActiveRoutesWhereClause, "", nil)
	checks := milepoint.NewNetworkChecks(db, "", pred, nil)

	sink := &memSink{}
	r := newRunner(fakeRecords{}, fakeGroups{}, sink)

	results, err := r.RunNetworkChecks(context.Background(), checks)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, milepoint.CheckUniqueCoDirTitle, results[0].Description)

	require.Len(t, sink.writes, 1)
	assert.Contains(t, sink.writes[0].whereClause, "DOT_ID = '100001' AND COUNTY_ORDER = '01'")
	assert.NoError(t, mock.ExpectationsWereMet())
}
