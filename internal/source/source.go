// Package source reads the flat relational export tables that feed the
// compiler: runway end rows, airway route-point rows and procedure leg
// rows, each delivered in the order the reducers require. The export is
// a SQLite database; the reducers themselves never see SQL.
package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"navdbc/internal/dfd"
	"navdbc/internal/geo"
)

// DB wraps the relational source database.
type DB struct {
	db *sql.DB
}

// Open opens a source database read-only.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open source database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping source database: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the source database.
func (s *DB) Close() error {
	return s.db.Close()
}

// StreamRunways reads all runway end rows ordered by airport and hands
// each airport's complete row set to fn. This is the collect-per-key
// half of the runway reduction; pairing happens in the caller.
func (s *DB) StreamRunways(ctx context.Context, fn func(airportIdent string, rows []dfd.RunwayRow) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT airport_identifier, runway_identifier, icao_code,
			runway_longitude, runway_latitude,
			runway_true_bearing, runway_magnetic_bearing,
			runway_length, runway_width,
			landing_threshold_elevation, displaced_threshold_distance,
			llz_identifier, llz_mls_gls_category
		FROM tbl_runways
		ORDER BY airport_identifier, runway_identifier`)
	if err != nil {
		return fmt.Errorf("query runways: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var collected []dfd.RunwayRow
	lastAirport := ""
	for rows.Next() {
		var r dfd.RunwayRow
		var llzIdent, llzCategory sql.NullString
		err := rows.Scan(&r.AirportIdent, &r.Ident, &r.Region,
			&r.Pos.Lon, &r.Pos.Lat,
			&r.TrueBearing, &r.MagneticBearing,
			&r.LengthFeet, &r.WidthFeet,
			&r.ThresholdElevationFeet, &r.DisplacedThresholdFeet,
			&llzIdent, &llzCategory)
		if err != nil {
			return fmt.Errorf("scan runway row: %w", err)
		}
		r.LocalizerIdent = llzIdent.String
		r.LocalizerCategory = llzCategory.String

		if lastAirport != "" && lastAirport != r.AirportIdent {
			if err := fn(lastAirport, collected); err != nil {
				return err
			}
			collected = collected[:0]
		}
		collected = append(collected, r)
		lastAirport = r.AirportIdent
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate runway rows: %w", err)
	}
	if len(collected) > 0 {
		return fn(lastAirport, collected)
	}
	return nil
}

// StreamAirwayRows reads all route-point rows ordered by route name and
// sequence number, the order the fragment assembler depends on.
func (s *DB) StreamAirwayRows(ctx context.Context, fn func(dfd.AirwayRouteRow) error) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT route_identifier, seqno, waypoint_id,
			waypoint_longitude, waypoint_latitude,
			waypoint_description_code, flightlevel, direction_restriction,
			minimum_altitude1, maximum_altitude
		FROM tbl_airways
		ORDER BY route_identifier, seqno`)
	if err != nil {
		return fmt.Errorf("query airways: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var r dfd.AirwayRouteRow
		var direction sql.NullString
		err := rows.Scan(&r.RouteName, &r.SeqNo, &r.WaypointID,
			&r.Pos.Lon, &r.Pos.Lat,
			&r.DescCode, &r.Level, &direction,
			&r.MinAltitudeFeet, &r.MaxAltitudeFeet)
		if err != nil {
			return fmt.Errorf("scan airway row: %w", err)
		}
		r.DirectionRestriction = direction.String
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// procedureTables maps the procedure row code to its source table.
var procedureTables = map[string]string{
	"APPCH": "tbl_iaps",
	"SID":   "tbl_sids",
	"STAR":  "tbl_stars",
}

// StreamProcedureRows reads procedure leg rows for one row code
// (APPCH, SID or STAR), ordered by airport, procedure, route type,
// transition and sequence number.
func (s *DB) StreamProcedureRows(ctx context.Context, rowCode string, fn func(dfd.ProcedureInput) error) error {
	table, ok := procedureTables[rowCode]
	if !ok {
		return fmt.Errorf("unknown procedure row code %q", rowCode)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT airport_identifier, procedure_identifier, route_type, transition_identifier,
			seqno, waypoint_identifier, waypoint_icao_code, waypoint_description_code,
			waypoint_longitude, waypoint_latitude,
			turn_direction, path_termination, recommanded_navaid,
			recommanded_navaid_longitude, recommanded_navaid_latitude,
			theta, rho, magnetic_course, route_distance_holding_distance_time,
			altitude_description, altitude1, altitude2, transition_altitude,
			speed_limit_description, speed_limit,
			center_waypoint, center_waypoint_longitude, center_waypoint_latitude
		FROM %s
		ORDER BY airport_identifier, procedure_identifier, route_type, transition_identifier, seqno`, table))
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		input := dfd.ProcedureInput{RowCode: rowCode}
		var routeType, turnDir, recdNavaid, altDescr, alt1, alt2, transAlt, speedDescr, centerFix sql.NullString
		var recdLon, recdLat, holdOrDist, centerLon, centerLat sql.NullFloat64
		var speedLimit sql.NullInt64
		err := rows.Scan(&input.AirportIdent, &input.ProcedureIdent, &routeType, &input.TransitionIdent,
			&input.SeqNo, &input.FixIdent, &input.IcaoCode, &input.DescCode,
			&input.WaypointPos.Lon, &input.WaypointPos.Lat,
			&turnDir, &input.PathTerm, &recdNavaid,
			&recdLon, &recdLat,
			&input.Theta, &input.Rho, &input.MagCourse, &holdOrDist,
			&altDescr, &alt1, &alt2, &transAlt,
			&speedDescr, &speedLimit,
			&centerFix, &centerLon, &centerLat)
		if err != nil {
			return fmt.Errorf("scan %s row: %w", table, err)
		}

		if routeType.Valid && len(routeType.String) > 0 {
			input.RouteType = routeType.String[0]
		}
		input.TurnDir = turnDir.String
		input.RecdNavaid = recdNavaid.String
		input.RecdNavPos = geo.Pos{Lon: recdLon.Float64, Lat: recdLat.Float64}
		input.SetHoldOrDistance(holdOrDist.Float64)
		input.AltDescr = altDescr.String
		input.Altitude1 = alt1.String
		input.Altitude2 = alt2.String
		input.TransAltitude = transAlt.String
		input.SpeedLimitDescr = speedDescr.String
		input.SpeedLimit = int(speedLimit.Int64)
		input.CenterFixOrTaaPt = centerFix.String
		input.CenterPos = geo.Pos{Lon: centerLon.Float64, Lat: centerLat.Float64}
		input.Context = fmt.Sprintf("airport %s, procedure %s, transition %s",
			input.AirportIdent, input.ProcedureIdent, input.TransitionIdent)

		if err := fn(input); err != nil {
			return err
		}
	}
	return rows.Err()
}
