package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"navdbc/internal/bgl"
	"navdbc/internal/dfd"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// PostgresDB writes the compiled database to a shared PostgreSQL
// instance, for deployments where multiple consumers read the result.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresDB, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// Test the connection.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Close closes the PostgreSQL connection pool.
func (d *PostgresDB) Close() error {
	d.pool.Close()
	return nil
}

// CreateSchema creates the PostgreSQL tables.
func (d *PostgresDB) CreateSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS airport (
		airport_id              SERIAL PRIMARY KEY,
		ident                   TEXT NOT NULL,
		num_runways             INTEGER NOT NULL,
		num_runway_end_ils      INTEGER NOT NULL,
		longest_runway_length   INTEGER NOT NULL,
		longest_runway_width    INTEGER NOT NULL,
		longest_runway_heading  DOUBLE PRECISION NOT NULL,
		left_lonx               DOUBLE PRECISION,
		top_laty                DOUBLE PRECISION,
		right_lonx              DOUBLE PRECISION,
		bottom_laty             DOUBLE PRECISION
	);

	CREATE INDEX IF NOT EXISTS idx_airport_ident ON airport(ident);

	CREATE TABLE IF NOT EXISTS runway (
		runway_id   SERIAL PRIMARY KEY,
		airport_id  INTEGER NOT NULL REFERENCES airport(airport_id) ON DELETE CASCADE,
		length      INTEGER NOT NULL,
		width       INTEGER NOT NULL,
		heading     DOUBLE PRECISION NOT NULL,
		altitude    INTEGER NOT NULL,
		lonx        DOUBLE PRECISION NOT NULL,
		laty        DOUBLE PRECISION NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runway_airport ON runway(airport_id);

	CREATE TABLE IF NOT EXISTS runway_end (
		runway_end_id     SERIAL PRIMARY KEY,
		runway_id         INTEGER NOT NULL REFERENCES runway(runway_id) ON DELETE CASCADE,
		name              TEXT NOT NULL,
		end_type          TEXT NOT NULL,
		heading           DOUBLE PRECISION NOT NULL,
		lonx              DOUBLE PRECISION NOT NULL,
		laty              DOUBLE PRECISION NOT NULL,
		offset_threshold  INTEGER NOT NULL,
		ils_ident         TEXT,
		is_closed         BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS idx_runway_end_runway ON runway_end(runway_id);

	CREATE TABLE IF NOT EXISTS airway (
		airway_id           SERIAL PRIMARY KEY,
		airway_name         TEXT NOT NULL,
		airway_type         TEXT NOT NULL,
		airway_fragment_no  INTEGER NOT NULL,
		sequence_no         INTEGER NOT NULL,
		direction           TEXT NOT NULL,
		from_waypoint_id    BIGINT NOT NULL,
		to_waypoint_id      BIGINT NOT NULL,
		from_lonx           DOUBLE PRECISION NOT NULL,
		from_laty           DOUBLE PRECISION NOT NULL,
		to_lonx             DOUBLE PRECISION NOT NULL,
		to_laty             DOUBLE PRECISION NOT NULL,
		left_lonx           DOUBLE PRECISION NOT NULL,
		top_laty            DOUBLE PRECISION NOT NULL,
		right_lonx          DOUBLE PRECISION NOT NULL,
		bottom_laty         DOUBLE PRECISION NOT NULL,
		minimum_altitude    INTEGER,
		maximum_altitude    INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_airway_name ON airway(airway_name);

	CREATE TABLE IF NOT EXISTS approach (
		approach_id        SERIAL PRIMARY KEY,
		airport_ident      TEXT NOT NULL,
		runway_name        TEXT,
		suffix             TEXT,
		type               TEXT NOT NULL,
		gps_overlay        BOOLEAN NOT NULL DEFAULT FALSE,
		fix_type           TEXT,
		fix_ident          TEXT,
		fix_region         TEXT,
		fix_airport_ident  TEXT,
		altitude           REAL,
		heading            REAL,
		missed_altitude    REAL
	);

	CREATE INDEX IF NOT EXISTS idx_approach_airport ON approach(airport_ident);

	CREATE TABLE IF NOT EXISTS transition (
		transition_id      SERIAL PRIMARY KEY,
		approach_id        INTEGER NOT NULL REFERENCES approach(approach_id) ON DELETE CASCADE,
		type               TEXT NOT NULL,
		fix_type           TEXT,
		fix_ident          TEXT,
		fix_region         TEXT,
		fix_airport_ident  TEXT,
		altitude           REAL,
		dme_ident          TEXT,
		dme_region         TEXT,
		dme_radial         INTEGER,
		dme_distance       REAL
	);

	CREATE INDEX IF NOT EXISTS idx_transition_approach ON transition(approach_id);

	CREATE TABLE IF NOT EXISTS approach_leg (
		approach_leg_id         SERIAL PRIMARY KEY,
		approach_id             INTEGER REFERENCES approach(approach_id) ON DELETE CASCADE,
		transition_id           INTEGER REFERENCES transition(transition_id) ON DELETE CASCADE,
		is_missed               BOOLEAN NOT NULL DEFAULT FALSE,
		type                    TEXT NOT NULL,
		alt_descriptor          INTEGER,
		turn_direction          INTEGER,
		true_course             BOOLEAN NOT NULL DEFAULT FALSE,
		is_flyover              BOOLEAN NOT NULL DEFAULT FALSE,
		fix_type                TEXT,
		fix_ident               TEXT,
		fix_region              TEXT,
		fix_airport_ident       TEXT,
		recommended_fix_type    TEXT,
		recommended_fix_ident   TEXT,
		recommended_fix_region  TEXT,
		theta                   REAL,
		rho                     REAL,
		course                  REAL,
		dist_or_time            REAL,
		altitude1               REAL,
		altitude2               REAL,
		speed_limit             REAL,
		vertical_angle          REAL
	);

	CREATE INDEX IF NOT EXISTS idx_approach_leg_approach ON approach_leg(approach_id);
	`

	if _, err := d.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create postgres schema: %w", err)
	}
	return nil
}

// WriteAirport stores one airport with all runways and ends.
func (d *PostgresDB) WriteAirport(ctx context.Context, airport AirportRecord) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin airport transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var airportID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO airport (ident, num_runways, num_runway_end_ils,
			longest_runway_length, longest_runway_width, longest_runway_heading,
			left_lonx, top_laty, right_lonx, bottom_laty)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING airport_id`,
		airport.Ident, airport.Stats.NumRunways, airport.Stats.NumRunwayEndIls,
		airport.Stats.LongestLengthFeet, airport.Stats.LongestWidthFeet, airport.Stats.LongestHeading,
		airport.Bounding.West, airport.Bounding.North, airport.Bounding.East, airport.Bounding.South).
		Scan(&airportID)
	if err != nil {
		return fmt.Errorf("insert airport %s: %w", airport.Ident, err)
	}

	for _, rw := range airport.Runways {
		var runwayID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO runway (airport_id, length, width, heading, altitude, lonx, laty)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING runway_id`,
			airportID, rw.LengthFeet, rw.WidthFeet, rw.Heading, rw.AltitudeFeet,
			rw.Center.Lon, rw.Center.Lat).Scan(&runwayID)
		if err != nil {
			return fmt.Errorf("insert runway %s/%s: %w", airport.Ident, rw.Primary.Name, err)
		}

		batch := &pgx.Batch{}
		for _, end := range []struct {
			end     dfd.RunwayEnd
			endType string
		}{
			{rw.Primary, "P"},
			{rw.Secondary, "S"},
		} {
			batch.Queue(`
				INSERT INTO runway_end (runway_id, name, end_type, heading, lonx, laty,
					offset_threshold, ils_ident, is_closed)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				runwayID, end.end.Name, end.endType, end.end.Heading,
				end.end.Pos.Lon, end.end.Pos.Lat,
				end.end.DisplacedThresholdFeet, nullIfEmpty(end.end.LocalizerIdent), end.end.Closed)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert runway ends %s: %w", rw.Primary.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit airport %s: %w", airport.Ident, err)
	}
	return nil
}

// WriteAirwayEdges stores a batch of assembled airway edges using a
// single pgx batch round trip.
func (d *PostgresDB) WriteAirwayEdges(ctx context.Context, edges []dfd.AirwayEdge) error {
	if len(edges) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range edges {
		batch.Queue(`
			INSERT INTO airway (airway_name, airway_type, airway_fragment_no, sequence_no, direction,
				from_waypoint_id, to_waypoint_id, from_lonx, from_laty, to_lonx, to_laty,
				left_lonx, top_laty, right_lonx, bottom_laty,
				minimum_altitude, maximum_altitude)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			e.AirwayName, string(e.Type), e.FragmentNumber, e.SequenceNumber, string(e.Direction),
			e.FromWaypointID, e.ToWaypointID,
			e.FromPos.Lon, e.FromPos.Lat, e.ToPos.Lon, e.ToPos.Lat,
			e.Bounding.West, e.Bounding.North, e.Bounding.East, e.Bounding.South,
			e.MinAltitudeFeet, e.MaxAltitudeFeet)
	}

	if err := d.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert airway edges: %w", err)
	}
	return nil
}

// WriteApproach stores one decoded approach with transitions and legs.
func (d *PostgresDB) WriteApproach(ctx context.Context, airportIdent string, approach *bgl.Approach) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin approach transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	suffix := ""
	if approach.Suffix != 0 {
		suffix = string(rune(approach.Suffix))
	}
	var approachID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO approach (airport_ident, runway_name, suffix, type, gps_overlay,
			fix_type, fix_ident, fix_region, fix_airport_ident,
			altitude, heading, missed_altitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING approach_id`,
		airportIdent, nullIfEmpty(approach.RunwayName()), nullIfEmpty(suffix),
		approach.Type.String(), approach.GpsOverlay,
		approach.FixType.String(), approach.FixIdent, approach.FixRegion, approach.FixAirportIdent,
		approach.Altitude, approach.Heading, approach.MissedAltitude).Scan(&approachID)
	if err != nil {
		return fmt.Errorf("insert approach %s: %w", airportIdent, err)
	}

	if err := pgWriteLegs(ctx, tx, approachID, 0, false, approach.Legs); err != nil {
		return err
	}
	if err := pgWriteLegs(ctx, tx, approachID, 0, true, approach.MissedLegs); err != nil {
		return err
	}

	for _, trans := range approach.Transitions {
		var transitionID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO transition (approach_id, type, fix_type, fix_ident, fix_region,
				fix_airport_ident, altitude, dme_ident, dme_region, dme_radial, dme_distance)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING transition_id`,
			approachID, trans.Type.String(),
			trans.FixType.String(), trans.FixIdent, trans.FixRegion, trans.FixAirportIdent,
			trans.Altitude, nullIfEmpty(trans.DmeIdent), nullIfEmpty(trans.DmeRegion),
			trans.DmeRadial, trans.DmeDist).Scan(&transitionID)
		if err != nil {
			return fmt.Errorf("insert transition %s: %w", trans.FixIdent, err)
		}
		if err := pgWriteLegs(ctx, tx, 0, transitionID, false, trans.Legs); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit approach %s: %w", airportIdent, err)
	}
	return nil
}

func pgWriteLegs(ctx context.Context, tx pgx.Tx, approachID, transitionID int64, missed bool, legs []bgl.Leg) error {
	if len(legs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, leg := range legs {
		batch.Queue(`
			INSERT INTO approach_leg (approach_id, transition_id, is_missed, type,
				alt_descriptor, turn_direction, true_course, is_flyover,
				fix_type, fix_ident, fix_region, fix_airport_ident,
				recommended_fix_type, recommended_fix_ident, recommended_fix_region,
				theta, rho, course, dist_or_time, altitude1, altitude2, speed_limit, vertical_angle)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
				$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
			nullIfZero(approachID), nullIfZero(transitionID), missed, leg.Type.String(),
			leg.AltDescriptor, leg.TurnDirection, leg.TrueCourse, leg.Flyover,
			leg.FixType.String(), leg.FixIdent, leg.FixRegion, leg.FixAirportIdent,
			leg.RecommendedFixType.String(), leg.RecommendedFixIdent, leg.RecommendedFixRegion,
			leg.Theta, leg.Rho, leg.Course, leg.DistOrTime,
			leg.Altitude1, leg.Altitude2, leg.SpeedLimit, leg.VerticalAngle)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert approach legs: %w", err)
	}
	return nil
}
