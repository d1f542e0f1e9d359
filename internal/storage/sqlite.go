package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"navdbc/internal/bgl"
	"navdbc/internal/dfd"
)

// SQLiteDB writes the compiled database to a local SQLite file, the
// primary output target.
type SQLiteDB struct {
	db *sql.DB
}

// OpenSQLite opens or creates the output database at the given path.
func OpenSQLite(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (d *SQLiteDB) Close() error {
	return d.db.Close()
}

// CreateSchema creates the output tables and indices.
func (d *SQLiteDB) CreateSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS airport (
		airport_id INTEGER PRIMARY KEY AUTOINCREMENT,
		ident TEXT NOT NULL,
		num_runways INTEGER NOT NULL,
		num_runway_end_ils INTEGER NOT NULL,
		longest_runway_length INTEGER NOT NULL,
		longest_runway_width INTEGER NOT NULL,
		longest_runway_heading REAL NOT NULL,
		left_lonx REAL,
		top_laty REAL,
		right_lonx REAL,
		bottom_laty REAL
	);

	CREATE INDEX IF NOT EXISTS idx_airport_ident ON airport(ident);

	CREATE TABLE IF NOT EXISTS runway (
		runway_id INTEGER PRIMARY KEY AUTOINCREMENT,
		airport_id INTEGER NOT NULL REFERENCES airport(airport_id),
		length INTEGER NOT NULL,
		width INTEGER NOT NULL,
		heading REAL NOT NULL,
		altitude INTEGER NOT NULL,
		lonx REAL NOT NULL,
		laty REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runway_airport ON runway(airport_id);

	CREATE TABLE IF NOT EXISTS runway_end (
		runway_end_id INTEGER PRIMARY KEY AUTOINCREMENT,
		runway_id INTEGER NOT NULL REFERENCES runway(runway_id),
		name TEXT NOT NULL,
		end_type TEXT NOT NULL,
		heading REAL NOT NULL,
		lonx REAL NOT NULL,
		laty REAL NOT NULL,
		offset_threshold INTEGER NOT NULL,
		ils_ident TEXT,
		is_closed INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runway_end_runway ON runway_end(runway_id);
	CREATE INDEX IF NOT EXISTS idx_runway_end_name ON runway_end(name);

	CREATE TABLE IF NOT EXISTS airway (
		airway_id INTEGER PRIMARY KEY AUTOINCREMENT,
		airway_name TEXT NOT NULL,
		airway_type TEXT NOT NULL,
		airway_fragment_no INTEGER NOT NULL,
		sequence_no INTEGER NOT NULL,
		direction TEXT NOT NULL,
		from_waypoint_id INTEGER NOT NULL,
		to_waypoint_id INTEGER NOT NULL,
		from_lonx REAL NOT NULL,
		from_laty REAL NOT NULL,
		to_lonx REAL NOT NULL,
		to_laty REAL NOT NULL,
		left_lonx REAL NOT NULL,
		top_laty REAL NOT NULL,
		right_lonx REAL NOT NULL,
		bottom_laty REAL NOT NULL,
		minimum_altitude INTEGER,
		maximum_altitude INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_airway_name ON airway(airway_name);
	CREATE INDEX IF NOT EXISTS idx_airway_from ON airway(from_waypoint_id);
	CREATE INDEX IF NOT EXISTS idx_airway_to ON airway(to_waypoint_id);

	CREATE TABLE IF NOT EXISTS approach (
		approach_id INTEGER PRIMARY KEY AUTOINCREMENT,
		airport_ident TEXT NOT NULL,
		runway_name TEXT,
		suffix TEXT,
		type TEXT NOT NULL,
		gps_overlay INTEGER NOT NULL DEFAULT 0,
		fix_type TEXT,
		fix_ident TEXT,
		fix_region TEXT,
		fix_airport_ident TEXT,
		altitude REAL,
		heading REAL,
		missed_altitude REAL
	);

	CREATE INDEX IF NOT EXISTS idx_approach_airport ON approach(airport_ident);

	CREATE TABLE IF NOT EXISTS transition (
		transition_id INTEGER PRIMARY KEY AUTOINCREMENT,
		approach_id INTEGER NOT NULL REFERENCES approach(approach_id),
		type TEXT NOT NULL,
		fix_type TEXT,
		fix_ident TEXT,
		fix_region TEXT,
		fix_airport_ident TEXT,
		altitude REAL,
		dme_ident TEXT,
		dme_region TEXT,
		dme_radial INTEGER,
		dme_distance REAL
	);

	CREATE INDEX IF NOT EXISTS idx_transition_approach ON transition(approach_id);

	CREATE TABLE IF NOT EXISTS approach_leg (
		approach_leg_id INTEGER PRIMARY KEY AUTOINCREMENT,
		approach_id INTEGER REFERENCES approach(approach_id),
		transition_id INTEGER REFERENCES transition(transition_id),
		is_missed INTEGER NOT NULL DEFAULT 0,
		type TEXT NOT NULL,
		alt_descriptor INTEGER,
		turn_direction INTEGER,
		true_course INTEGER NOT NULL DEFAULT 0,
		is_flyover INTEGER NOT NULL DEFAULT 0,
		fix_type TEXT,
		fix_ident TEXT,
		fix_region TEXT,
		fix_airport_ident TEXT,
		recommended_fix_type TEXT,
		recommended_fix_ident TEXT,
		recommended_fix_region TEXT,
		theta REAL,
		rho REAL,
		course REAL,
		dist_or_time REAL,
		altitude1 REAL,
		altitude2 REAL,
		speed_limit REAL,
		vertical_angle REAL
	);

	CREATE INDEX IF NOT EXISTS idx_approach_leg_approach ON approach_leg(approach_id);
	CREATE INDEX IF NOT EXISTS idx_approach_leg_transition ON approach_leg(transition_id);
	`

	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// WriteAirport stores one airport with its runways, both ends per
// runway, inside a single transaction.
func (d *SQLiteDB) WriteAirport(ctx context.Context, airport AirportRecord) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin airport transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO airport (ident, num_runways, num_runway_end_ils,
			longest_runway_length, longest_runway_width, longest_runway_heading,
			left_lonx, top_laty, right_lonx, bottom_laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		airport.Ident, airport.Stats.NumRunways, airport.Stats.NumRunwayEndIls,
		airport.Stats.LongestLengthFeet, airport.Stats.LongestWidthFeet, airport.Stats.LongestHeading,
		airport.Bounding.West, airport.Bounding.North, airport.Bounding.East, airport.Bounding.South)
	if err != nil {
		return fmt.Errorf("insert airport %s: %w", airport.Ident, err)
	}
	airportID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("airport id: %w", err)
	}

	for _, rw := range airport.Runways {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO runway (airport_id, length, width, heading, altitude, lonx, laty)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			airportID, rw.LengthFeet, rw.WidthFeet, rw.Heading, rw.AltitudeFeet,
			rw.Center.Lon, rw.Center.Lat)
		if err != nil {
			return fmt.Errorf("insert runway %s/%s: %w", airport.Ident, rw.Primary.Name, err)
		}
		runwayID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("runway id: %w", err)
		}

		for _, end := range []struct {
			end     dfd.RunwayEnd
			endType string
		}{
			{rw.Primary, "P"},
			{rw.Secondary, "S"},
		} {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO runway_end (runway_id, name, end_type, heading, lonx, laty,
					offset_threshold, ils_ident, is_closed)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				runwayID, end.end.Name, end.endType, end.end.Heading,
				end.end.Pos.Lon, end.end.Pos.Lat,
				end.end.DisplacedThresholdFeet, nullIfEmpty(end.end.LocalizerIdent),
				boolToInt(end.end.Closed))
			if err != nil {
				return fmt.Errorf("insert runway end %s: %w", end.end.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit airport %s: %w", airport.Ident, err)
	}
	return nil
}

// WriteAirwayEdges stores a batch of assembled airway edges.
func (d *SQLiteDB) WriteAirwayEdges(ctx context.Context, edges []dfd.AirwayEdge) error {
	if len(edges) == 0 {
		return nil
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin airway transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO airway (airway_name, airway_type, airway_fragment_no, sequence_no, direction,
			from_waypoint_id, to_waypoint_id, from_lonx, from_laty, to_lonx, to_laty,
			left_lonx, top_laty, right_lonx, bottom_laty,
			minimum_altitude, maximum_altitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare airway insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range edges {
		_, err := stmt.ExecContext(ctx,
			e.AirwayName, string(e.Type), e.FragmentNumber, e.SequenceNumber, string(e.Direction),
			e.FromWaypointID, e.ToWaypointID,
			e.FromPos.Lon, e.FromPos.Lat, e.ToPos.Lon, e.ToPos.Lat,
			e.Bounding.West, e.Bounding.North, e.Bounding.East, e.Bounding.South,
			e.MinAltitudeFeet, e.MaxAltitudeFeet)
		if err != nil {
			return fmt.Errorf("insert airway edge %s: %w", e.AirwayName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit airway edges: %w", err)
	}
	return nil
}

// WriteApproach stores one decoded approach with its transitions and
// all leg lists in a single transaction.
func (d *SQLiteDB) WriteApproach(ctx context.Context, airportIdent string, approach *bgl.Approach) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approach transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	suffix := ""
	if approach.Suffix != 0 {
		suffix = string(rune(approach.Suffix))
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO approach (airport_ident, runway_name, suffix, type, gps_overlay,
			fix_type, fix_ident, fix_region, fix_airport_ident,
			altitude, heading, missed_altitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		airportIdent, nullIfEmpty(approach.RunwayName()), nullIfEmpty(suffix),
		approach.Type.String(), boolToInt(approach.GpsOverlay),
		approach.FixType.String(), approach.FixIdent, approach.FixRegion, approach.FixAirportIdent,
		approach.Altitude, approach.Heading, approach.MissedAltitude)
	if err != nil {
		return fmt.Errorf("insert approach %s: %w", airportIdent, err)
	}
	approachID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("approach id: %w", err)
	}

	if err := d.writeLegs(ctx, tx, approachID, 0, false, approach.Legs); err != nil {
		return err
	}
	if err := d.writeLegs(ctx, tx, approachID, 0, true, approach.MissedLegs); err != nil {
		return err
	}

	for _, trans := range approach.Transitions {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO transition (approach_id, type, fix_type, fix_ident, fix_region,
				fix_airport_ident, altitude, dme_ident, dme_region, dme_radial, dme_distance)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			approachID, trans.Type.String(),
			trans.FixType.String(), trans.FixIdent, trans.FixRegion, trans.FixAirportIdent,
			trans.Altitude, nullIfEmpty(trans.DmeIdent), nullIfEmpty(trans.DmeRegion),
			trans.DmeRadial, trans.DmeDist)
		if err != nil {
			return fmt.Errorf("insert transition %s: %w", trans.FixIdent, err)
		}
		transitionID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("transition id: %w", err)
		}
		if err := d.writeLegs(ctx, tx, 0, transitionID, false, trans.Legs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit approach %s: %w", airportIdent, err)
	}
	return nil
}

// writeLegs inserts one leg list. Exactly one of approachID and
// transitionID is set.
func (d *SQLiteDB) writeLegs(ctx context.Context, tx *sql.Tx, approachID, transitionID int64, missed bool, legs []bgl.Leg) error {
	for _, leg := range legs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO approach_leg (approach_id, transition_id, is_missed, type,
				alt_descriptor, turn_direction, true_course, is_flyover,
				fix_type, fix_ident, fix_region, fix_airport_ident,
				recommended_fix_type, recommended_fix_ident, recommended_fix_region,
				theta, rho, course, dist_or_time, altitude1, altitude2, speed_limit, vertical_angle)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			nullIfZero(approachID), nullIfZero(transitionID), boolToInt(missed), leg.Type.String(),
			leg.AltDescriptor, leg.TurnDirection, boolToInt(leg.TrueCourse), boolToInt(leg.Flyover),
			leg.FixType.String(), leg.FixIdent, leg.FixRegion, leg.FixAirportIdent,
			leg.RecommendedFixType.String(), leg.RecommendedFixIdent, leg.RecommendedFixRegion,
			leg.Theta, leg.Rho, leg.Course, leg.DistOrTime,
			leg.Altitude1, leg.Altitude2, leg.SpeedLimit, leg.VerticalAngle)
		if err != nil {
			return fmt.Errorf("insert leg %s: %w", leg.FixIdent, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
