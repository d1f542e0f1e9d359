package dfd

import "navdbc/internal/geo"

// AirwayRouteRow is one point along a named route as presented by the
// relational source, pre-sorted by (route name, sequence number).
type AirwayRouteRow struct {
	RouteName  string
	SeqNo      int
	WaypointID int64
	Pos        geo.Pos

	// DescCode is the two-character waypoint description code. A second
	// character of 'E' marks the row as the last point of a contiguous
	// fragment.
	DescCode string

	// Level is the altitude band: B all altitudes, H high airways,
	// L low airways.
	Level string

	// DirectionRestriction is F forward-only, B backward-only, blank or
	// empty for none.
	DirectionRestriction string

	MinAltitudeFeet int
	MaxAltitudeFeet int
}

// EndOfRoute reports whether the row carries the end-of-route marker.
func (r AirwayRouteRow) EndOfRoute() bool {
	return len(r.DescCode) > 1 && r.DescCode[1] == 'E'
}

// AirwayType classifies an airway by altitude band.
type AirwayType string

const (
	AirwayJet    AirwayType = "J"
	AirwayVictor AirwayType = "V"
	AirwayBoth   AirwayType = "B"
)

// airwayTypeFor maps the source altitude band code to the airway type.
func airwayTypeFor(level string) AirwayType {
	switch level {
	case "H":
		return AirwayJet
	case "L":
		return AirwayVictor
	}
	return AirwayBoth
}

// AirwayDirection is the directional restriction of an edge.
type AirwayDirection string

const (
	DirectionNone     AirwayDirection = "N"
	DirectionForward  AirwayDirection = "F"
	DirectionBackward AirwayDirection = "B"
)

// airwayDirectionFor normalizes the source restriction code; blank
// means unrestricted.
func airwayDirectionFor(code string) AirwayDirection {
	switch code {
	case "F":
		return DirectionForward
	case "B":
		return DirectionBackward
	}
	return DirectionNone
}

// AirwayEdge is one directed edge of an assembled airway. Sequence
// numbers restart at 1 in every fragment; fragment numbers restart at 1
// for every route name.
type AirwayEdge struct {
	AirwayName     string
	Type           AirwayType
	FragmentNumber int
	SequenceNumber int
	Direction      AirwayDirection

	FromWaypointID int64
	ToWaypointID   int64
	FromPos        geo.Pos
	ToPos          geo.Pos
	Bounding       geo.Rect

	MinAltitudeFeet int
	MaxAltitudeFeet int
}

// AirwayAssembler turns the flat ordered route-point stream into
// directed edges grouped into fragments. It is a single forward pass:
// feed rows in source order to Add; an edge comes out for every pair of
// consecutive rows that share a route name where the earlier row is not
// marked end-of-route. The final row of the input never produces a
// trailing edge, so no flush call is needed.
type AirwayAssembler struct {
	prev           AirwayRouteRow
	prevName       string
	prevEndOfRoute bool
	sequenceNumber int
	fragmentNumber int
}

// NewAirwayAssembler returns an assembler ready for the first row.
func NewAirwayAssembler() *AirwayAssembler {
	return &AirwayAssembler{sequenceNumber: 1, fragmentNumber: 1}
}

// Add consumes the next row and returns the edge ending at it, if any.
// Edge attributes (altitude band, direction, type) come from the
// earlier row of the pair.
func (a *AirwayAssembler) Add(cur AirwayRouteRow) (AirwayEdge, bool) {
	nameChange := a.prevName != "" && cur.RouteName != a.prevName

	var edge AirwayEdge
	emitted := false
	if a.prevName != "" {
		if !nameChange && a.prevEndOfRoute {
			// Same name but the previous row closed its fragment: a route
			// may legitimately split into disjoint fragments.
			a.fragmentNumber++
			a.sequenceNumber = 1
		}

		if !nameChange && !a.prevEndOfRoute {
			bounding := geo.RectFor(a.prev.Pos)
			bounding.Extend(cur.Pos)

			edge = AirwayEdge{
				AirwayName:      a.prev.RouteName,
				Type:            airwayTypeFor(a.prev.Level),
				FragmentNumber:  a.fragmentNumber,
				SequenceNumber:  a.sequenceNumber,
				Direction:       airwayDirectionFor(a.prev.DirectionRestriction),
				FromWaypointID:  a.prev.WaypointID,
				ToWaypointID:    cur.WaypointID,
				FromPos:         a.prev.Pos,
				ToPos:           cur.Pos,
				Bounding:        bounding,
				MinAltitudeFeet: a.prev.MinAltitudeFeet,
				MaxAltitudeFeet: a.prev.MaxAltitudeFeet,
			}
			a.sequenceNumber++
			emitted = true
		}
	}

	a.prev = cur
	a.prevName = cur.RouteName
	a.prevEndOfRoute = cur.EndOfRoute()

	if nameChange {
		a.fragmentNumber = 1
		a.sequenceNumber = 1
	}
	return edge, emitted
}

// AssembleAirways runs the assembler over a complete row slice.
func AssembleAirways(rows []AirwayRouteRow) []AirwayEdge {
	assembler := NewAirwayAssembler()
	var edges []AirwayEdge
	for _, row := range rows {
		if edge, ok := assembler.Add(row); ok {
			edges = append(edges, edge)
		}
	}
	return edges
}
