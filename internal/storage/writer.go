// Package storage persists the compiled navigation data. The primary
// output is a SQLite database; PostgreSQL and ClickHouse targets share
// the same writer interface so the pipeline does not care where the
// rows land.
package storage

import (
	"context"
	"fmt"

	"navdbc/internal/bgl"
	"navdbc/internal/dfd"
	"navdbc/internal/geo"
)

// AirportRecord is the per-airport unit handed to a writer: all
// assembled runways plus the summary derived from them.
type AirportRecord struct {
	Ident    string
	Runways  []dfd.Runway
	Stats    dfd.RunwayStats
	Bounding geo.Rect
}

// Writer receives compiled output one unit at a time. Implementations
// are not safe for concurrent use; the pipeline writes from a single
// goroutine.
type Writer interface {
	CreateSchema(ctx context.Context) error
	WriteAirport(ctx context.Context, airport AirportRecord) error
	WriteAirwayEdges(ctx context.Context, edges []dfd.AirwayEdge) error
	WriteApproach(ctx context.Context, airportIdent string, approach *bgl.Approach) error
	Close() error
}

// Config holds connection settings for all supported output targets.
type Config struct {
	SQLitePath string
	Postgres   PostgresConfig
	ClickHouse ClickHouseConfig
}

// DefaultConfig returns a configuration with default local development
// settings.
func DefaultConfig() Config {
	return Config{
		SQLitePath: "navdb.sqlite",
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "navdb",
			User:     "navdb",
			Password: "navdb",
		},
		ClickHouse: ClickHouseConfig{
			Host:     "localhost",
			Port:     9000,
			Database: "navdb",
			User:     "default",
			Password: "",
		},
	}
}

// MultiWriter fans every write out to all targets in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter returns a writer wrapping all given targets.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// CreateSchema creates the schema on every target.
func (m *MultiWriter) CreateSchema(ctx context.Context) error {
	for _, w := range m.writers {
		if err := w.CreateSchema(ctx); err != nil {
			return err
		}
	}
	return nil
}

// WriteAirport writes the airport to every target.
func (m *MultiWriter) WriteAirport(ctx context.Context, airport AirportRecord) error {
	for _, w := range m.writers {
		if err := w.WriteAirport(ctx, airport); err != nil {
			return err
		}
	}
	return nil
}

// WriteAirwayEdges writes the edges to every target.
func (m *MultiWriter) WriteAirwayEdges(ctx context.Context, edges []dfd.AirwayEdge) error {
	for _, w := range m.writers {
		if err := w.WriteAirwayEdges(ctx, edges); err != nil {
			return err
		}
	}
	return nil
}

// WriteApproach writes the approach to every target.
func (m *MultiWriter) WriteApproach(ctx context.Context, airportIdent string, approach *bgl.Approach) error {
	for _, w := range m.writers {
		if err := w.WriteApproach(ctx, airportIdent, approach); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every target, returning the first error.
func (m *MultiWriter) Close() error {
	var firstErr error
	for _, w := range m.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close writer: %w", err)
		}
	}
	return firstErr
}
