package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cleanSegment returns a segment that satisfies every rule for the given
// roadway type.
func cleanSegment(t RoadwayType) Segment {
	seg := Segment{
		RouteID:        "100000001",
		DotID:          "100001",
		CountyOrder:    "01",
		RoadwayType:    t,
		RouteQualifier: RouteQualifierNone,
		Direction:      DirectionPrimaryUndivided,
	}
	switch t {
	case RoadwayTypeRoute:
		seg.Signing = "1"
		seg.RouteNumber = "17"
	case RoadwayTypeNonMainline:
		seg.RoadwayFeature = "21"
	}
	return seg
}

func TestCheckSegmentCleanByType(t *testing.T) {
	for _, rt := range []RoadwayType{
		RoadwayTypeRoad,
		RoadwayTypeRamp,
		RoadwayTypeRoute,
		RoadwayTypeReserved,
		RoadwayTypeNonMainline,
	} {
		t.Run(rt.String(), func(t *testing.T) {
			v, err := Checker{}.CheckSegment(cleanSegment(rt))
			require.NoError(t, err)
			assert.Empty(t, v, "expected no violations for a clean %s segment", rt)
		})
	}
}

func TestCheckSegmentInvalidRoadwayType(t *testing.T) {
	for _, rt := range []RoadwayType{0, 6, -1, 99} {
		seg := cleanSegment(RoadwayTypeRoad)
		seg.RoadwayType = rt

		v, err := Checker{}.CheckSegment(seg)
		require.Error(t, err)
		assert.Nil(t, v)

		var typeErr *InvalidRoadwayTypeError
		require.ErrorAs(t, err, &typeErr)
		assert.Equal(t, seg.RouteID, typeErr.RouteID)
		assert.Equal(t, rt, typeErr.RoadwayType)
	}
}

func TestCheckSegmentKeyFieldShapes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Segment)
		rule   RuleID
	}{
		{"route id too short", func(s *Segment) { s.RouteID = "12345678" }, RuleRouteIDNineDigits},
		{"route id non numeric", func(s *Segment) { s.RouteID = "10000000X" }, RuleRouteIDNineDigits},
		{"dot id too long", func(s *Segment) { s.DotID = "1000001" }, RuleDotIDSixDigits},
		{"dot id empty", func(s *Segment) { s.DotID = "" }, RuleDotIDSixDigits},
		{"county order unpadded", func(s *Segment) { s.CountyOrder = "1" }, RuleCountyOrderPadded},
		{"county order empty", func(s *Segment) { s.CountyOrder = "" }, RuleCountyOrderPadded},
		{"county order zero", func(s *Segment) { s.CountyOrder = "00" }, RuleCountyOrderNonZero},
		{"county order above max", func(s *Segment) { s.CountyOrder = "29" }, RuleCountyOrderMax(DefaultMaxCountyOrder)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := cleanSegment(RoadwayTypeRoad)
			tt.mutate(&seg)

			v, err := Checker{}.CheckSegment(seg)
			require.NoError(t, err)
			assert.Equal(t, []string{seg.RouteID}, v.RouteIDs(tt.rule))
		})
	}
}

func TestCheckSegmentMalformedCountyOrderSkipsRangeChecks(t *testing.T) {
	seg := cleanSegment(RoadwayTypeRoad)
	seg.CountyOrder = "0"

	v, err := Checker{}.CheckSegment(seg)
	require.NoError(t, err)

	assert.Contains(t, v, RuleCountyOrderPadded)
	assert.NotContains(t, v, RuleCountyOrderNonZero,
		"a malformed COUNTY_ORDER must not also be reported as out of range")
	assert.NotContains(t, v, RuleCountyOrderMax(DefaultMaxCountyOrder))
}

func TestCheckSegmentMaxCountyOrderConfigurable(t *testing.T) {
	seg := cleanSegment(RoadwayTypeRoad)
	seg.CountyOrder = "15"

	v, err := Checker{MaxCountyOrder: 12}.CheckSegment(seg)
	require.NoError(t, err)

	assert.Equal(t, []string{seg.RouteID}, v.RouteIDs(RuleCountyOrderMax(12)))
	assert.Equal(t, RuleID("COUNTY_ORDER should be less than '13'"), RuleCountyOrderMax(12))
}

func TestCheckSegmentRoadRampRules(t *testing.T) {
	for _, rt := range []RoadwayType{RoadwayTypeRoad, RoadwayTypeRamp} {
		t.Run(rt.String(), func(t *testing.T) {
			seg := cleanSegment(rt)
			seg.Signing = "1"
			seg.RouteNumber = "17"
			seg.RouteSuffix = "A"
			seg.RouteQualifier = 2
			seg.ParkwayFlag = ParkwayFlagYes
			seg.RoadwayFeature = "21"

			v, err := Checker{}.CheckSegment(seg)
			require.NoError(t, err)

			for _, rule := range []RuleID{
				RuleSigningNullRoadRamp,
				RuleRouteNumberNullRoadRamp,
				RuleRouteSuffixNullRoadRamp,
				RuleRouteQualifierRoadRamp,
				RuleParkwayFlagRoadRamp,
				RuleRoadwayFeatureNullRoadRamp,
			} {
				assert.Equal(t, []string{seg.RouteID}, v.RouteIDs(rule), "rule %q", rule)
			}
		})
	}
}

func TestCheckSegmentRouteRules(t *testing.T) {
	t.Run("unsigned route must be a 900 route", func(t *testing.T) {
		seg := cleanSegment(RoadwayTypeRoute)
		seg.Signing = ""
		seg.RouteNumber = "805"

		v, err := Checker{}.CheckSegment(seg)
		require.NoError(t, err)
		assert.Equal(t, []string{seg.RouteID}, v.RouteIDs(RuleRouteNumber900Route))
	})

	t.Run("unsigned 900 route passes", func(t *testing.T) {
		seg := cleanSegment(RoadwayTypeRoute)
		seg.Signing = ""
		seg.RouteNumber = "901"

		v, err := Checker{}.CheckSegment(seg)
		require.NoError(t, err)
		assert.NotContains(t, v, RuleRouteNumber900Route)
	})

	t.Run("missing route number", func(t *testing.T) {
		seg := cleanSegment(RoadwayTypeRoute)
		seg.Signing = "1"
		seg.RouteNumber = ""

		v, err := Checker{}.CheckSegment(seg)
		require.NoError(t, err)
		assert.Equal(t, []string{seg.RouteID}, v.RouteIDs(RuleRouteNumberRequiredRoute))
	})

	t.Run("roadway feature must be null", func(t *testing.T) {
		seg := cleanSegment(RoadwayTypeRoute)
		seg.RoadwayFeature = "21"

		v, err := Checker{}.CheckSegment(seg)
		require.NoError(t, err)
		assert.Equal(t, []string{seg.RouteID}, v.RouteIDs(RuleRoadwayFeatureNullRoute))
	})
}

func TestCheckSegmentNonMainlineRules(t *testing.T) {
	seg := cleanSegment(RoadwayTypeNonMainline)
	seg.Signing = "1"
	seg.RouteNumber = "17"
	seg.RouteSuffix = "A"
	seg.RouteQualifier = 2
	seg.ParkwayFlag = ParkwayFlagYes
	seg.RoadwayFeature = ""

	v, err := Checker{}.CheckSegment(seg)
	require.NoError(t, err)

	for _, rule := range []RuleID{
		RuleSigningNullNonMainline,
		RuleRouteNumberNullNonMainline,
		RuleRouteSuffixNullNonMainline,
		RuleRouteQualifierNullNonMainline,
		RuleParkwayFlagNonMainline,
		RuleRoadwayFeatureRequiredNonMainline,
	} {
		assert.Equal(t, []string{seg.RouteID}, v.RouteIDs(rule), "rule %q", rule)
	}
}
