package dfd

import (
	"math"
	"testing"

	"navdbc/internal/geo"
)

func TestOpposedRunwayIdent(t *testing.T) {
	tests := []struct {
		ident string
		want  string
	}{
		{"RW11R", "RW29L"},
		{"RW01", "RW19"},
		{"RW36C", "RW18C"},
		{"RW09L", "RW27R"},
		{"RW29L", "RW11R"},
		{"RW18", "RW36"},
		{"RW27R", "RW09L"},
		{"RW02W", "RW20W"},
	}
	for _, tt := range tests {
		if got := OpposedRunwayIdent(tt.ident); got != tt.want {
			t.Errorf("OpposedRunwayIdent(%q) = %q, want %q", tt.ident, got, tt.want)
		}
	}
}

func row(ident string, bearing float64) RunwayRow {
	return RunwayRow{
		AirportIdent:    "KJFK",
		Ident:           ident,
		Region:          "K6",
		TrueBearing:     bearing,
		MagneticBearing: bearing,
		LengthFeet:      10000,
		WidthFeet:       150,
	}
}

func TestPairRunwaysMatched(t *testing.T) {
	rows := []RunwayRow{
		row("RW04L", 43),
		row("RW22R", 223),
		row("RW04R", 43),
		row("RW22L", 223),
	}
	pairs := PairRunways(rows)
	if len(pairs) != 2 {
		t.Fatalf("pairs = %d, want 2", len(pairs))
	}
	if pairs[0].Primary.Ident != "RW04L" || pairs[0].Secondary.Ident != "RW22R" {
		t.Errorf("pair 0 = %s/%s", pairs[0].Primary.Ident, pairs[0].Secondary.Ident)
	}
	if pairs[1].Primary.Ident != "RW04R" || pairs[1].Secondary.Ident != "RW22L" {
		t.Errorf("pair 1 = %s/%s", pairs[1].Primary.Ident, pairs[1].Secondary.Ident)
	}
	for _, p := range pairs {
		if p.Primary.Closed || p.Secondary.Closed {
			t.Error("matched pairs must not contain synthesized ends")
		}
	}
}

func TestPairRunwaysSynthesized(t *testing.T) {
	lone := row("RW13", 131)
	lone.DisplacedThresholdFeet = 400
	lone.LocalizerIdent = "IJFK"

	pairs := PairRunways([]RunwayRow{lone})
	if len(pairs) != 1 {
		t.Fatalf("pairs = %d, want 1", len(pairs))
	}
	p := pairs[0]
	if p.Primary.Ident != "RW13" {
		t.Errorf("primary = %s, want RW13", p.Primary.Ident)
	}
	if p.Secondary.Ident != "RW31" {
		t.Errorf("secondary = %s, want RW31", p.Secondary.Ident)
	}
	if !p.Secondary.Closed {
		t.Error("synthesized end must be flagged closed")
	}
	// No data about the other end: cleared, not copied.
	if p.Secondary.DisplacedThresholdFeet != 0 {
		t.Errorf("synthesized displaced threshold = %d, want 0", p.Secondary.DisplacedThresholdFeet)
	}
	if p.Secondary.LocalizerIdent != "" {
		t.Errorf("synthesized localizer = %q, want empty", p.Secondary.LocalizerIdent)
	}
	if math.Abs(p.Secondary.TrueBearing-311) > 1e-9 {
		t.Errorf("synthesized bearing = %v, want 311", p.Secondary.TrueBearing)
	}
	if p.Primary.Closed {
		t.Error("real end must not be flagged closed")
	}
}

func TestPairRunwaysCompleteCoverage(t *testing.T) {
	// Odd set: two matchable ends plus one lone end. Every input row
	// must appear in exactly one pair and no pair may hold two
	// synthesized rows.
	rows := []RunwayRow{
		row("RW09", 90),
		row("RW27", 270),
		row("RW18", 180),
	}
	pairs := PairRunways(rows)
	if len(pairs) != 2 {
		t.Fatalf("pairs = %d, want 2", len(pairs))
	}

	seen := make(map[string]int)
	for _, p := range pairs {
		if p.Primary.Closed && p.Secondary.Closed {
			t.Error("pair with two synthesized rows")
		}
		if !p.Primary.Closed {
			seen[p.Primary.Ident]++
		}
		if !p.Secondary.Closed {
			seen[p.Secondary.Ident]++
		}
	}
	for _, r := range rows {
		if seen[r.Ident] != 1 {
			t.Errorf("row %s consumed %d times, want exactly 1", r.Ident, seen[r.Ident])
		}
	}
}

func TestAssembleRunwaysGeometry(t *testing.T) {
	primary := row("RW09", 90)
	primary.Pos = geo.Pos{Lon: -73.80, Lat: 40.64}
	primary.ThresholdElevationFeet = 12
	primary.LocalizerIdent = "IXYZ"
	secondary := row("RW27", 270)
	secondary.Pos = geo.Pos{Lon: -73.77, Lat: 40.64}
	secondary.ThresholdElevationFeet = 14

	var rect geo.Rect
	runways, stats := AssembleRunways([]RunwayRow{primary, secondary}, geo.FixedMagVar(0), &rect)
	if len(runways) != 1 {
		t.Fatalf("runways = %d, want 1", len(runways))
	}
	rw := runways[0]

	if rw.AltitudeFeet != 13 {
		t.Errorf("altitude = %d, want 13", rw.AltitudeFeet)
	}
	wantCenter := geo.Pos{Lon: -73.785, Lat: 40.64}
	if math.Abs(rw.Center.Lon-wantCenter.Lon) > 1e-9 || math.Abs(rw.Center.Lat-wantCenter.Lat) > 1e-9 {
		t.Errorf("center = %+v, want %+v", rw.Center, wantCenter)
	}
	if rw.Primary.Name != "09" || rw.Secondary.Name != "27" {
		t.Errorf("end names = %q/%q", rw.Primary.Name, rw.Secondary.Name)
	}

	// Each end is projected outward from the shared center: the primary
	// end (runway 09, heading east) lies west of the center.
	if rw.Primary.Pos.Lon >= rw.Center.Lon {
		t.Errorf("primary end lon %v should be west of center %v", rw.Primary.Pos.Lon, rw.Center.Lon)
	}
	if rw.Secondary.Pos.Lon <= rw.Center.Lon {
		t.Errorf("secondary end lon %v should be east of center %v", rw.Secondary.Pos.Lon, rw.Center.Lon)
	}

	// 10000 ft runway: ends are about 1524 m from the center.
	if !rect.IsValid() {
		t.Fatal("rect must cover the projected ends")
	}
	if !rect.Contains(rw.Primary.Pos) || !rect.Contains(rw.Secondary.Pos) {
		t.Error("rect must contain both projected ends")
	}

	if stats.NumRunways != 1 {
		t.Errorf("num runways = %d, want 1", stats.NumRunways)
	}
	if stats.NumRunwayEndIls != 1 {
		t.Errorf("ils ends = %d, want 1", stats.NumRunwayEndIls)
	}
	if stats.LongestLengthFeet != 10000 || stats.LongestWidthFeet != 150 {
		t.Errorf("longest = %d x %d", stats.LongestLengthFeet, stats.LongestWidthFeet)
	}
}

func TestAssembleRunwaysMagneticVariation(t *testing.T) {
	primary := row("RW09", 0)
	primary.MagneticBearing = 85
	secondary := row("RW27", 0)
	secondary.MagneticBearing = 265

	var rect geo.Rect
	runways, _ := AssembleRunways([]RunwayRow{primary, secondary}, geo.FixedMagVar(-13), &rect)
	if len(runways) != 1 {
		t.Fatalf("runways = %d, want 1", len(runways))
	}
	if math.Abs(runways[0].Heading-72) > 1e-9 {
		t.Errorf("true heading = %v, want 72", runways[0].Heading)
	}
	if math.Abs(runways[0].Secondary.Heading-252) > 1e-9 {
		t.Errorf("secondary heading = %v, want 252", runways[0].Secondary.Heading)
	}
}

func TestAssembleRunwaysLongestTieBreak(t *testing.T) {
	first := row("RW09", 90)
	first.LengthFeet = 8000
	first.WidthFeet = 100
	firstOpp := row("RW27", 270)
	firstOpp.LengthFeet = 8000

	second := row("RW13", 130)
	second.LengthFeet = 8000
	second.WidthFeet = 200
	secondOpp := row("RW31", 310)
	secondOpp.LengthFeet = 8000

	var rect geo.Rect
	_, stats := AssembleRunways([]RunwayRow{first, firstOpp, second, secondOpp}, geo.FixedMagVar(0), &rect)
	if stats.NumRunways != 2 {
		t.Fatalf("num runways = %d, want 2", stats.NumRunways)
	}
	// Strict > comparison: the first runway of a given max length wins.
	if stats.LongestWidthFeet != 100 {
		t.Errorf("longest width = %d, want 100 (first of equal lengths)", stats.LongestWidthFeet)
	}
}
