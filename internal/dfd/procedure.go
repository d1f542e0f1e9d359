package dfd

import (
	"fmt"

	"navdbc/internal/geo"
)

// ProcedureInput is one procedure leg row from the relational source,
// shared by approaches, SIDs and STARs. Leg semantics are interpreted
// by the procedure writer downstream; the compiler only carries the row
// through the per-airport reduction.
type ProcedureInput struct {
	RowCode string // "APPCH", "SID" or "STAR"
	Context string // human-readable position for diagnostics

	AirportIdent string
	AirportID    int64

	SeqNo           int
	RouteType       byte
	ProcedureIdent  string
	TransitionIdent string

	FixIdent    string
	IcaoCode    string
	DescCode    string
	WaypointPos geo.Pos

	TurnDir     string
	PathTerm    string
	RecdNavaid  string
	RecdNavPos  geo.Pos
	Theta       float64
	Rho         float64
	MagCourse   float64
	RteHoldTime float64 // minutes, hold legs only
	RteHoldDist float64 // nautical miles, all other legs

	AltDescr        string
	Altitude1       string
	Altitude2       string
	TransAltitude   string
	SpeedLimitDescr string
	SpeedLimit      int

	CenterFixOrTaaPt string
	CenterPos        geo.Pos
}

// SetHoldOrDistance fills the hold-time/distance pair from the shared
// source column: hold path terminators (H*) carry minutes, everything
// else a distance.
func (p *ProcedureInput) SetHoldOrDistance(value float64) {
	p.RteHoldTime, p.RteHoldDist = 0, 0
	if len(p.PathTerm) > 0 && p.PathTerm[0] == 'H' {
		p.RteHoldTime = value
	} else {
		p.RteHoldDist = value
	}
}

// ProcedureSink consumes procedure rows one airport at a time. Write is
// called per row in source order; Finish once all rows of an airport
// have been written; Reset before the next airport begins.
type ProcedureSink interface {
	Write(input ProcedureInput) error
	Finish(input ProcedureInput) error
	Reset()
}

// ProcedureReducer feeds an ordered procedure row stream to a sink,
// flushing on every airport change and once at the end of input. Same
// accumulate-then-flush-on-key-change shape as the airway assembly.
type ProcedureReducer struct {
	sink       ProcedureSink
	curAirport string
	last       ProcedureInput
	seen       bool
}

// NewProcedureReducer returns a reducer writing to sink.
func NewProcedureReducer(sink ProcedureSink) *ProcedureReducer {
	return &ProcedureReducer{sink: sink}
}

// Add consumes the next row. Rows must arrive ordered by airport.
func (r *ProcedureReducer) Add(input ProcedureInput) error {
	if r.curAirport != "" && input.AirportIdent != r.curAirport {
		if err := r.sink.Finish(r.last); err != nil {
			return fmt.Errorf("finish airport %s: %w", r.curAirport, err)
		}
		r.sink.Reset()
	}

	if err := r.sink.Write(input); err != nil {
		return fmt.Errorf("write procedure row %s: %w", input.Context, err)
	}
	r.curAirport = input.AirportIdent
	r.last = input
	r.seen = true
	return nil
}

// Flush finishes the final airport. A no-op when no rows were added.
func (r *ProcedureReducer) Flush() error {
	if !r.seen {
		return nil
	}
	if err := r.sink.Finish(r.last); err != nil {
		return fmt.Errorf("finish airport %s: %w", r.curAirport, err)
	}
	r.sink.Reset()
	r.seen = false
	r.curAirport = ""
	return nil
}
