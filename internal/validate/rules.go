package validate

import (
	"fmt"
	"regexp"
	"strconv"
)

// Rule texts. The exact wording is part of the contract with the Reviewer
// table (the text is the persisted check description), so changes here are
// breaking and must be coordinated with the declarative override table in
// internal/predicate.
const (
	RuleRouteIDNineDigits  RuleID = "ROUTE_ID must be a nine digit number"
	RuleDotIDSixDigits     RuleID = "DOT_ID must be a six digit number"
	RuleCountyOrderPadded  RuleID = "COUNTY_ORDER must be a zero padded two digit number (e.g. '01')"
	RuleCountyOrderNonZero RuleID = "COUNTY_ORDER must be greater than '00'"

	RuleSigningNullRoadRamp        RuleID = "SIGNING must be null when ROADWAY_TYPE in ('Road', 'Ramp')"
	RuleRouteNumberNullRoadRamp    RuleID = "ROUTE_NUMBER must be null when ROADWAY_TYPE in ('Road', 'Ramp')"
	RuleRouteSuffixNullRoadRamp    RuleID = "ROUTE_SUFFIX must be null when ROADWAY_TYPE in ('Road', 'Ramp')"
	RuleRouteQualifierRoadRamp     RuleID = "ROUTE_QUALIFIER must be 'No Qualifier' when ROADWAY_TYPE in ('Road', 'Ramp')"
	RuleParkwayFlagRoadRamp        RuleID = "PARKWAY_FLAG must be 'No' when ROADWAY_TYPE in ('Road', 'Ramp')"
	RuleRoadwayFeatureNullRoadRamp RuleID = "ROADWAY_FEATURE must be null when ROADWAY_TYPE in ('Road', 'Ramp')"

	RuleRouteNumberRequiredRoute RuleID = "ROUTE_NUMBER must not be null when ROADWAY_TYPE=Route"
	RuleRoadwayFeatureNullRoute  RuleID = "ROADWAY_FEATURE must be null when ROADWAY_TYPE=Route"
	RuleRouteNumber900Route      RuleID = "ROUTE_NUMBER must be a '900' route (i.e. 9xx) when ROADWAY_TYPE=Route and SIGNING is null"

	RuleSigningNullNonMainline            RuleID = "SIGNING must be null when ROADWAY_TYPE=Non-Mainline"
	RuleRouteNumberNullNonMainline        RuleID = "ROUTE_NUMBER must be null when ROADWAY_TYPE=Non-Mainline"
	RuleRouteSuffixNullNonMainline        RuleID = "ROUTE_SUFFIX must be null when ROADWAY_TYPE=Non-Mainline"
	RuleRouteQualifierNullNonMainline     RuleID = "ROUTE_QUALIFIER must be null when ROADWAY_TYPE=Non-Mainline"
	RuleParkwayFlagNonMainline            RuleID = "PARKWAY_FLAG must be 'No' when ROADWAY_TYPE=Non-Mainline"
	RuleRoadwayFeatureRequiredNonMainline RuleID = "ROADWAY_FEATURE must not be null when ROADWAY_TYPE=Non-Mainline"
)

// DefaultMaxCountyOrder is the advisory upper bound on COUNTY_ORDER. It
// reflects the current known county count along any one roadway, not a hard
// domain limit, and is configurable for the day that assumption breaks.
const DefaultMaxCountyOrder = 28

// RuleCountyOrderMax renders the advisory upper-bound rule text for the
// configured maximum. With the default of 28 it reads
// "COUNTY_ORDER should be less than '29'".
func RuleCountyOrderMax(max int) RuleID {
	return RuleID(fmt.Sprintf("COUNTY_ORDER should be less than '%02d'", max+1))
}

var (
	routeIDPattern     = regexp.MustCompile(`^\d{9}$`)
	dotIDPattern       = regexp.MustCompile(`^\d{6}$`)
	countyOrderPattern = regexp.MustCompile(`^\d{2}$`)
	route900Pattern    = regexp.MustCompile(`^9\d{2}$`)
)

// Checker evaluates the roadway-level attribute rules for single records.
// The zero value uses DefaultMaxCountyOrder.
type Checker struct {
	// MaxCountyOrder overrides the advisory COUNTY_ORDER upper bound
	// when > 0.
	MaxCountyOrder int
}

func (c Checker) maxCountyOrder() int {
	if c.MaxCountyOrder > 0 {
		return c.MaxCountyOrder
	}
	return DefaultMaxCountyOrder
}

// CheckSegment evaluates every rule applicable to seg and returns the
// violated rules, each mapped to seg's ROUTE_ID. A ROADWAY_TYPE outside the
// defined domain returns an *InvalidRoadwayTypeError and no findings: the
// type-specific rules cannot be chosen for an undefined type, so the record
// is a caller defect rather than a validation result.
func (c Checker) CheckSegment(seg Segment) (Violations, error) {
	if !seg.RoadwayType.Valid() {
		return nil, &InvalidRoadwayTypeError{RouteID: seg.RouteID, RoadwayType: seg.RoadwayType}
	}

	v := NewViolations()

	// Key-field shape checks apply to every roadway type.
	if !routeIDPattern.MatchString(seg.RouteID) {
		v.Add(RuleRouteIDNineDigits, seg.RouteID)
	}
	if !dotIDPattern.MatchString(seg.DotID) {
		v.Add(RuleDotIDSixDigits, seg.RouteID)
	}
	if !countyOrderPattern.MatchString(seg.CountyOrder) {
		v.Add(RuleCountyOrderPadded, seg.RouteID)
	} else {
		// Range checks only run on a well-formed value so a malformed
		// COUNTY_ORDER is not additionally reported as out of range.
		order, _ := strconv.Atoi(seg.CountyOrder)
		if order == 0 {
			v.Add(RuleCountyOrderNonZero, seg.RouteID)
		}
		if order > c.maxCountyOrder() {
			v.Add(RuleCountyOrderMax(c.maxCountyOrder()), seg.RouteID)
		}
	}

	switch seg.RoadwayType {
	case RoadwayTypeRoad, RoadwayTypeRamp:
		if seg.Signing != "" {
			v.Add(RuleSigningNullRoadRamp, seg.RouteID)
		}
		if seg.RouteNumber != "" {
			v.Add(RuleRouteNumberNullRoadRamp, seg.RouteID)
		}
		if seg.RouteSuffix != "" {
			v.Add(RuleRouteSuffixNullRoadRamp, seg.RouteID)
		}
		if seg.RouteQualifier != RouteQualifierNone {
			v.Add(RuleRouteQualifierRoadRamp, seg.RouteID)
		}
		if seg.ParkwayFlag == ParkwayFlagYes {
			v.Add(RuleParkwayFlagRoadRamp, seg.RouteID)
		}
		if seg.RoadwayFeature != "" {
			v.Add(RuleRoadwayFeatureNullRoadRamp, seg.RouteID)
		}

	case RoadwayTypeRoute:
		if seg.RouteNumber == "" {
			v.Add(RuleRouteNumberRequiredRoute, seg.RouteID)
		}
		if seg.RoadwayFeature != "" {
			v.Add(RuleRoadwayFeatureNullRoute, seg.RouteID)
		}
		if seg.Signing == "" && !route900Pattern.MatchString(seg.RouteNumber) {
			v.Add(RuleRouteNumber900Route, seg.RouteID)
		}

	case RoadwayTypeNonMainline:
		if seg.Signing != "" {
			v.Add(RuleSigningNullNonMainline, seg.RouteID)
		}
		if seg.RouteNumber != "" {
			v.Add(RuleRouteNumberNullNonMainline, seg.RouteID)
		}
		if seg.RouteSuffix != "" {
			v.Add(RuleRouteSuffixNullNonMainline, seg.RouteID)
		}
		if seg.RouteQualifier != RouteQualifierNone {
			v.Add(RuleRouteQualifierNullNonMainline, seg.RouteID)
		}
		if seg.ParkwayFlag == ParkwayFlagYes {
			v.Add(RuleParkwayFlagNonMainline, seg.RouteID)
		}
		if seg.RoadwayFeature == "" {
			v.Add(RuleRoadwayFeatureRequiredNonMainline, seg.RouteID)
		}

	case RoadwayTypeReserved:
		// No rules defined for the reserved type.
	}

	return v, nil
}
