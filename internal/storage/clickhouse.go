package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"navdbc/internal/bgl"
	"navdbc/internal/dfd"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// ClickHouseDB exports a denormalized copy of the compiled data for
// analytic queries: coverage per region, airway network statistics,
// approach type distribution. Not a replacement for the relational
// output.
type ClickHouseDB struct {
	conn driver.Conn
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	// Test the connection.
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (d *ClickHouseDB) Close() error {
	return d.conn.Close()
}

// CreateSchema creates the ClickHouse tables.
func (d *ClickHouseDB) CreateSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS airports (
			ident                   LowCardinality(String),
			num_runways             UInt16,
			num_runway_end_ils      UInt16,
			longest_runway_length   UInt32,
			longest_runway_width    UInt32,
			longest_runway_heading  Float64,
			left_lonx               Float64,
			top_laty                Float64,
			right_lonx              Float64,
			bottom_laty             Float64,
			compiled_at             DateTime64(3) DEFAULT now64(3)
		)
		ENGINE = MergeTree()
		ORDER BY (ident)`,

		`CREATE TABLE IF NOT EXISTS airway_edges (
			airway_name       LowCardinality(String),
			airway_type       LowCardinality(String),
			fragment_no       UInt16,
			sequence_no       UInt16,
			direction         LowCardinality(String),
			from_waypoint_id  Int64,
			to_waypoint_id    Int64,
			from_lonx         Float64,
			from_laty         Float64,
			to_lonx           Float64,
			to_laty           Float64,
			minimum_altitude  Int32,
			maximum_altitude  Int32,
			compiled_at       DateTime64(3) DEFAULT now64(3)
		)
		ENGINE = MergeTree()
		ORDER BY (airway_name, fragment_no, sequence_no)`,

		`CREATE TABLE IF NOT EXISTS approaches (
			airport_ident      LowCardinality(String),
			runway_name        LowCardinality(String),
			suffix             LowCardinality(String),
			type               LowCardinality(String),
			gps_overlay        UInt8,
			fix_ident          String,
			fix_region         LowCardinality(String),
			num_legs           UInt16,
			num_missed_legs    UInt16,
			num_transitions    UInt16,
			compiled_at        DateTime64(3) DEFAULT now64(3)
		)
		ENGINE = MergeTree()
		ORDER BY (airport_ident, type, runway_name)`,
	}

	for _, q := range queries {
		if err := d.conn.Exec(ctx, q); err != nil {
			return fmt.Errorf("create clickhouse schema: %w", err)
		}
	}
	return nil
}

// WriteAirport exports the airport summary row.
func (d *ClickHouseDB) WriteAirport(ctx context.Context, airport AirportRecord) error {
	err := d.conn.Exec(ctx, `
		INSERT INTO airports (ident, num_runways, num_runway_end_ils,
			longest_runway_length, longest_runway_width, longest_runway_heading,
			left_lonx, top_laty, right_lonx, bottom_laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		airport.Ident, uint16(airport.Stats.NumRunways), uint16(airport.Stats.NumRunwayEndIls),
		uint32(airport.Stats.LongestLengthFeet), uint32(airport.Stats.LongestWidthFeet),
		airport.Stats.LongestHeading,
		airport.Bounding.West, airport.Bounding.North, airport.Bounding.East, airport.Bounding.South)
	if err != nil {
		return fmt.Errorf("insert airport %s: %w", airport.Ident, err)
	}
	return nil
}

// WriteAirwayEdges exports airway edges using a prepared batch.
func (d *ClickHouseDB) WriteAirwayEdges(ctx context.Context, edges []dfd.AirwayEdge) error {
	if len(edges) == 0 {
		return nil
	}

	batch, err := d.conn.PrepareBatch(ctx, `
		INSERT INTO airway_edges (airway_name, airway_type, fragment_no, sequence_no, direction,
			from_waypoint_id, to_waypoint_id, from_lonx, from_laty, to_lonx, to_laty,
			minimum_altitude, maximum_altitude)`)
	if err != nil {
		return fmt.Errorf("prepare airway batch: %w", err)
	}

	for _, e := range edges {
		err := batch.Append(
			e.AirwayName, string(e.Type), uint16(e.FragmentNumber), uint16(e.SequenceNumber),
			string(e.Direction), e.FromWaypointID, e.ToWaypointID,
			e.FromPos.Lon, e.FromPos.Lat, e.ToPos.Lon, e.ToPos.Lat,
			int32(e.MinAltitudeFeet), int32(e.MaxAltitudeFeet))
		if err != nil {
			return fmt.Errorf("append airway edge %s: %w", e.AirwayName, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send airway batch: %w", err)
	}
	return nil
}

// WriteApproach exports one approach summary row.
func (d *ClickHouseDB) WriteApproach(ctx context.Context, airportIdent string, approach *bgl.Approach) error {
	suffix := ""
	if approach.Suffix != 0 {
		suffix = string(rune(approach.Suffix))
	}
	err := d.conn.Exec(ctx, `
		INSERT INTO approaches (airport_ident, runway_name, suffix, type, gps_overlay,
			fix_ident, fix_region, num_legs, num_missed_legs, num_transitions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		airportIdent, approach.RunwayName(), suffix,
		approach.Type.String(), boolToUInt8(approach.GpsOverlay),
		approach.FixIdent, approach.FixRegion,
		uint16(len(approach.Legs)), uint16(len(approach.MissedLegs)), uint16(len(approach.Transitions)))
	if err != nil {
		return fmt.Errorf("insert approach %s: %w", airportIdent, err)
	}
	return nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
