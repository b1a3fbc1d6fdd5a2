// Package validate implements the roadway-level attribute validations for
// the Milepoint network table. It contains the per-record rule engine
// dispatched on ROADWAY_TYPE, the county-order sequence validator that works
// across all routes sharing a DOT_ID, and the violation set the two feed.
package validate

import "fmt"

// RoadwayType is the coded ROADWAY_TYPE domain value that drives which
// attribute rules apply to a record.
type RoadwayType int

// Valid ROADWAY_TYPE codes. Code 4 is reserved and carries no rules.
const (
	RoadwayTypeRoad        RoadwayType = 1
	RoadwayTypeRamp        RoadwayType = 2
	RoadwayTypeRoute       RoadwayType = 3
	RoadwayTypeReserved    RoadwayType = 4
	RoadwayTypeNonMainline RoadwayType = 5
)

// Valid reports whether t is one of the five defined ROADWAY_TYPE codes.
func (t RoadwayType) Valid() bool {
	return t >= RoadwayTypeRoad && t <= RoadwayTypeNonMainline
}

func (t RoadwayType) String() string {
	switch t {
	case RoadwayTypeRoad:
		return "Road"
	case RoadwayTypeRamp:
		return "Ramp"
	case RoadwayTypeRoute:
		return "Route"
	case RoadwayTypeReserved:
		return "Reserved"
	case RoadwayTypeNonMainline:
		return "Non-Mainline"
	default:
		return fmt.Sprintf("RoadwayType(%d)", int(t))
	}
}

// DIRECTION domain codes. The codes encode a route's role in the
// divided/undivided inventory representation.
const (
	DirectionPrimaryUndivided = "0"
	DirectionPrimaryDivided   = "1"
	DirectionReverseDivided   = "2"
	DirectionReverseNoInv     = "3"
)

// RouteQualifierNone is the coded ROUTE_QUALIFIER value for "No Qualifier".
const RouteQualifierNone = 10

// ParkwayFlagYes is the coded PARKWAY_FLAG value meaning the route is a parkway.
const ParkwayFlagYes = "T"

// Segment is one row of the Milepoint table: the roadway-level attributes of
// a single route record. Coded text fields use the empty string to model a
// NULL column value.
type Segment struct {
	RouteID        string      // nine digit route identifier
	DotID          string      // six digit identifier shared by one physical roadway
	CountyOrder    string      // zero padded two digit sequence position, e.g. "01"
	RoadwayType    RoadwayType // discriminant for the type-specific rules
	Signing        string
	RouteNumber    string
	RouteSuffix    string
	RouteQualifier int // coded value, 10 = "No Qualifier"
	ParkwayFlag    string
	RoadwayFeature string
	Direction      string // one of "0", "1", "2", "3"
}

// InvalidRoadwayTypeError reports a record whose ROADWAY_TYPE is outside the
// defined domain. This is a caller-input defect, not a validation finding:
// every downstream rule is meaningless for an undefined type, so a run is
// aborted rather than producing a partial report.
type InvalidRoadwayTypeError struct {
	RouteID     string
	RoadwayType RoadwayType
}

func (e *InvalidRoadwayTypeError) Error() string {
	return fmt.Sprintf(
		"ROADWAY_TYPE is outside of the valid range for ROUTE_ID %s: must be one of (1, 2, 3, 4, 5), got %d",
		e.RouteID, int(e.RoadwayType),
	)
}
