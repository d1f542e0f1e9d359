// Package dfd assembles flat, order-dependent relational source rows
// into the graph-shaped canonical structures of the navigation
// database: paired runway ends, directed airway edges and per-airport
// procedure batches.
package dfd

import (
	"fmt"
	"strings"

	"navdbc/internal/geo"
)

// RunwayRow is one physical runway end as presented by the relational
// source: a single row per end, no linkage to the opposite end.
type RunwayRow struct {
	AirportIdent string
	Ident        string // e.g. "RW11R"
	Region       string

	Pos             geo.Pos
	TrueBearing     float64
	MagneticBearing float64

	LengthFeet             int
	WidthFeet              int
	ThresholdElevationFeet int
	DisplacedThresholdFeet int

	LocalizerIdent    string
	LocalizerCategory string

	Closed bool // set only on synthesized opposite ends
}

// RunwayPair couples the two ends of one physical runway. At most one
// of the two is synthesized (Closed set, no localizer); never both.
type RunwayPair struct {
	Primary   RunwayRow
	Secondary RunwayRow
}

// OpposedRunwayIdent derives the identifier of the opposite runway end:
// strip the two-character prefix, add 18 to the number wrapping past
// 36, swap L and R (C and no designator are their own opposites), and
// zero-pad back to the fixed-width naming of the source format.
// "RW11R" becomes "RW29L".
func OpposedRunwayIdent(ident string) string {
	name := ident
	prefix := ""
	if len(name) > 2 {
		prefix, name = name[:2], name[2:]
	}

	digits := 0
	for digits < len(name) && digits < 2 && name[digits] >= '0' && name[digits] <= '9' {
		digits++
	}
	num := 0
	for _, c := range name[:digits] {
		num = num*10 + int(c-'0')
	}

	designator := name[digits:]
	switch designator {
	case "R":
		designator = "L"
	case "L":
		designator = "R"
	}

	num += 18
	if num > 36 {
		num -= 36
	}
	return fmt.Sprintf("%s%02d%s", prefix, num, designator)
}

// PairRunways reduces the unordered single-end rows of one airport to
// complete end pairs. Rows whose opposite end exists in the set are
// matched by the derived opposed identifier; rows without a match get a
// synthesized closed opposite, so every input row lands in exactly one
// pair.
func PairRunways(rows []RunwayRow) []RunwayPair {
	var pairs []RunwayPair
	consumed := make(map[string]bool, len(rows))

	for _, row := range rows {
		if consumed[row.Ident] {
			continue
		}
		opposedIdent := OpposedRunwayIdent(row.Ident)

		matched := false
		for _, other := range rows {
			if other.Ident == opposedIdent {
				consumed[row.Ident] = true
				consumed[opposedIdent] = true
				pairs = append(pairs, RunwayPair{Primary: row, Secondary: other})
				matched = true
				break
			}
		}

		if !matched {
			// Assume the other end is closed. We have no data about it, so
			// the displaced threshold and localizer are cleared rather than
			// copied. The synthesized end is never itself matched.
			opposed := row
			opposed.Ident = opposedIdent
			opposed.DisplacedThresholdFeet = 0
			opposed.LocalizerIdent = ""
			opposed.LocalizerCategory = ""
			opposed.TrueBearing = geo.OpposedCourse(row.TrueBearing)
			opposed.MagneticBearing = geo.OpposedCourse(row.MagneticBearing)
			opposed.Closed = true
			pairs = append(pairs, RunwayPair{Primary: row, Secondary: opposed})
		}
	}
	return pairs
}

// RunwayEnd is one end of an assembled runway with its projected
// absolute position.
type RunwayEnd struct {
	Name                   string // end name without the source prefix, e.g. "11R"
	Heading                float64
	Pos                    geo.Pos
	DisplacedThresholdFeet int
	LocalizerIdent         string
	Closed                 bool
}

// Runway is the reduced output for one physical runway.
type Runway struct {
	AirportIdent string
	LengthFeet   int
	WidthFeet    int
	Heading      float64 // true heading of the primary end
	AltitudeFeet int     // average of both threshold elevations
	Center       geo.Pos
	Primary      RunwayEnd
	Secondary    RunwayEnd
}

// RunwayStats is the per-airport summary derived while assembling.
type RunwayStats struct {
	NumRunways        int
	NumRunwayEndIls   int // ends carrying a localizer reference
	LongestLengthFeet int
	LongestWidthFeet  int
	LongestHeading    float64
}

// AssembleRunways pairs all runway rows of one airport and computes the
// pair geometry: center from both source coordinates, true headings
// from magnetic bearing plus station declination, and each end's
// absolute position projected outward from the shared center. The
// airport bounding rectangle is extended to cover both projected ends.
func AssembleRunways(rows []RunwayRow, magvar geo.MagVar, rect *geo.Rect) ([]Runway, RunwayStats) {
	pairs := PairRunways(rows)

	var stats RunwayStats
	runways := make([]Runway, 0, len(pairs))

	for _, pair := range pairs {
		primary, secondary := pair.Primary, pair.Secondary

		length := primary.LengthFeet
		width := primary.WidthFeet
		center := primary.Pos.Mid(secondary.Pos)

		decl := magvar(center)
		heading := geo.NormalizeCourse(primary.MagneticBearing + decl)
		opposedHeading := geo.NormalizeCourse(secondary.MagneticBearing + decl)

		if primary.LocalizerIdent != "" {
			stats.NumRunwayEndIls++
		}
		if secondary.LocalizerIdent != "" {
			stats.NumRunwayEndIls++
		}
		if length > stats.LongestLengthFeet {
			stats.LongestLengthFeet = length
			stats.LongestWidthFeet = width
			stats.LongestHeading = heading
		}
		stats.NumRunways++

		// Project both ends outward from the shared center. This
		// reconciles small coordinate inconsistencies between the two
		// source rows.
		halfLength := geo.FeetToMeter(float64(length)) / 2
		primaryPos := center.Endpoint(halfLength, opposedHeading)
		secondaryPos := center.Endpoint(halfLength, heading)
		rect.Extend(primaryPos)
		rect.Extend(secondaryPos)

		runways = append(runways, Runway{
			AirportIdent: primary.AirportIdent,
			LengthFeet:   length,
			WidthFeet:    width,
			Heading:      heading,
			AltitudeFeet: (primary.ThresholdElevationFeet + secondary.ThresholdElevationFeet) / 2,
			Center:       center,
			Primary: RunwayEnd{
				Name:                   stripRunwayPrefix(primary.Ident),
				Heading:                heading,
				Pos:                    primaryPos,
				DisplacedThresholdFeet: primary.DisplacedThresholdFeet,
				LocalizerIdent:         primary.LocalizerIdent,
				Closed:                 primary.Closed,
			},
			Secondary: RunwayEnd{
				Name:                   stripRunwayPrefix(secondary.Ident),
				Heading:                opposedHeading,
				Pos:                    secondaryPos,
				DisplacedThresholdFeet: secondary.DisplacedThresholdFeet,
				LocalizerIdent:         secondary.LocalizerIdent,
				Closed:                 secondary.Closed,
			},
		})
	}
	return runways, stats
}

func stripRunwayPrefix(ident string) string {
	if strings.HasPrefix(ident, "RW") {
		return ident[2:]
	}
	return ident
}
