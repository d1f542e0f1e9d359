// Package compile orchestrates a full database build: runway pairing
// per airport, airway fragment assembly, binary approach decoding and
// procedure row reduction, feeding one or more storage writers.
package compile

import (
	"context"
	"fmt"
	"time"

	"navdbc/internal/bgl"
	"navdbc/internal/dfd"
	"navdbc/internal/diag"
	"navdbc/internal/geo"
	"navdbc/internal/source"
	"navdbc/internal/storage"
)

// airwayBatchSize is the number of assembled edges buffered before a
// writer flush.
const airwayBatchSize = 500

// Stats counts the output of one compile run.
type Stats struct {
	Airports    int
	Runways     int
	AirwayEdges int
	Approaches  int
	Invalid     int // approaches withheld for failing validity checks

	ProcedureRows     int
	ProcedureAirports int
}

// Compiler runs the build stages. Cancellation is honored between units
// of work (airports, routes, top-level records), never inside one.
type Compiler struct {
	Writer   storage.Writer
	Reporter Reporter
	MagVar   geo.MagVar
	Variant  bgl.Variant
	Diags    *diag.Collector

	Stats Stats
}

// New returns a compiler with a no-op reporter and a fixed zero
// declination. Callers override the fields they care about.
func New(writer storage.Writer) *Compiler {
	return &Compiler{
		Writer:   writer,
		Reporter: NopReporter{},
		MagVar:   geo.FixedMagVar(0),
		Variant:  bgl.VariantClassic,
		Diags:    &diag.Collector{},
	}
}

// reportNew forwards diagnostics recorded since mark to the reporter.
func (c *Compiler) reportNew(stage string, mark int) {
	for _, d := range c.Diags.All()[mark:] {
		c.Reporter.Diagnostic(stage, d)
	}
}

// CompileRunways reads runway end rows per airport, assembles the pairs
// and writes one airport record per airport.
func (c *Compiler) CompileRunways(ctx context.Context, src *source.DB) error {
	const stage = "runways"
	c.Reporter.Stage(stage)
	start := time.Now()
	airports := 0

	err := src.StreamRunways(ctx, func(airportIdent string, rows []dfd.RunwayRow) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		var rect geo.Rect
		runways, stats := dfd.AssembleRunways(rows, c.MagVar, &rect)

		record := storage.AirportRecord{
			Ident:    airportIdent,
			Runways:  runways,
			Stats:    stats,
			Bounding: rect,
		}
		if err := c.Writer.WriteAirport(ctx, record); err != nil {
			return fmt.Errorf("write airport %s: %w", airportIdent, err)
		}

		airports++
		c.Stats.Airports++
		c.Stats.Runways += len(runways)
		c.Reporter.Unit(stage, airportIdent, len(runways))
		return nil
	})
	if err != nil {
		return fmt.Errorf("compile runways: %w", err)
	}

	c.Reporter.Done(stage, airports, time.Since(start))
	return nil
}

// CompileAirways folds the ordered route-point stream into directed
// edges and writes them in batches.
func (c *Compiler) CompileAirways(ctx context.Context, src *source.DB) error {
	const stage = "airways"
	c.Reporter.Stage(stage)
	start := time.Now()

	assembler := dfd.NewAirwayAssembler()
	batch := make([]dfd.AirwayEdge, 0, airwayBatchSize)
	lastRoute := ""
	edges := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.Writer.WriteAirwayEdges(ctx, batch); err != nil {
			return fmt.Errorf("write airway edges: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	err := src.StreamAirwayRows(ctx, func(row dfd.AirwayRouteRow) error {
		// Route boundaries are the cancellation points here; single
		// routes are small.
		if row.RouteName != lastRoute {
			if err := ctx.Err(); err != nil {
				return err
			}
			if lastRoute != "" {
				c.Reporter.Unit(stage, lastRoute, edges)
			}
			lastRoute = row.RouteName
		}

		if edge, ok := assembler.Add(row); ok {
			batch = append(batch, edge)
			edges++
			c.Stats.AirwayEdges++
			if len(batch) >= airwayBatchSize {
				return flush()
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("compile airways: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}
	if lastRoute != "" {
		c.Reporter.Unit(stage, lastRoute, edges)
	}

	c.Reporter.Done(stage, edges, time.Since(start))
	return nil
}

// CompileApproaches decodes every approach record in the binary stream
// and writes the valid ones. Invalid approaches are counted and
// recorded as diagnostics; unrelated top-level records are skipped.
func (c *Compiler) CompileApproaches(ctx context.Context, data []byte) error {
	const stage = "approaches"
	c.Reporter.Stage(stage)
	start := time.Now()

	s := bgl.NewStream(data)
	decoded := 0

	for s.Tell() < s.Len() {
		if err := ctx.Err(); err != nil {
			return err
		}

		offset := s.Tell()
		rec, err := bgl.ReadRecord(s)
		if err != nil {
			return fmt.Errorf("read record at offset %d: %w", offset, err)
		}

		if rec.Tag != bgl.TagApproach && rec.Tag != bgl.TagApproachNew {
			if err := rec.SeekToEnd(s); err != nil {
				return fmt.Errorf("skip record 0x%04x: %w", uint16(rec.Tag), err)
			}
			continue
		}

		mark := c.Diags.Count()
		approach, err := bgl.DecodeApproach(s, rec, c.Variant, c.Diags)
		if err != nil {
			return fmt.Errorf("decode approach at offset %d: %w", rec.Start, err)
		}
		if err := rec.SeekToEnd(s); err != nil {
			return fmt.Errorf("seek past approach at offset %d: %w", rec.Start, err)
		}

		if !approach.Valid() {
			c.Stats.Invalid++
			c.Diags.Add(diag.InvalidStructure, approach.FixAirportIdent,
				"approach %s %s failed validity checks", approach.Type, approach.RunwayName())
			c.reportNew(stage, mark)
			continue
		}
		c.reportNew(stage, mark)

		if err := c.Writer.WriteApproach(ctx, approach.FixAirportIdent, approach); err != nil {
			return fmt.Errorf("write approach %s: %w", approach.FixAirportIdent, err)
		}
		decoded++
		c.Stats.Approaches++
		c.Reporter.Unit(stage, approach.FixAirportIdent, len(approach.Legs))
	}

	c.Reporter.Done(stage, decoded, time.Since(start))
	return nil
}

// ReduceProcedures streams procedure rows of one row code through the
// per-airport reducer into sink.
func (c *Compiler) ReduceProcedures(ctx context.Context, src *source.DB, rowCode string, sink dfd.ProcedureSink) error {
	stage := "procedures/" + rowCode
	c.Reporter.Stage(stage)
	start := time.Now()

	reducer := dfd.NewProcedureReducer(sink)
	lastAirport := ""
	rows := 0

	err := src.StreamProcedureRows(ctx, rowCode, func(input dfd.ProcedureInput) error {
		if input.AirportIdent != lastAirport {
			if err := ctx.Err(); err != nil {
				return err
			}
			if lastAirport != "" {
				c.Reporter.Unit(stage, lastAirport, rows)
			}
			lastAirport = input.AirportIdent
			c.Stats.ProcedureAirports++
		}
		rows++
		c.Stats.ProcedureRows++
		return reducer.Add(input)
	})
	if err != nil {
		return fmt.Errorf("reduce %s rows: %w", rowCode, err)
	}
	if err := reducer.Flush(); err != nil {
		return fmt.Errorf("flush %s reducer: %w", rowCode, err)
	}
	if lastAirport != "" {
		c.Reporter.Unit(stage, lastAirport, rows)
	}

	c.Reporter.Done(stage, c.Stats.ProcedureAirports, time.Since(start))
	return nil
}
