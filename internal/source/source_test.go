package source

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"navdbc/internal/dfd"
)

func newProcedureDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.sqlite")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	schema := `
	CREATE TABLE tbl_iaps (
		airport_identifier TEXT, procedure_identifier TEXT, route_type TEXT,
		transition_identifier TEXT, seqno INTEGER,
		waypoint_identifier TEXT, waypoint_icao_code TEXT, waypoint_description_code TEXT,
		waypoint_longitude REAL, waypoint_latitude REAL,
		turn_direction TEXT, path_termination TEXT, recommanded_navaid TEXT,
		recommanded_navaid_longitude REAL, recommanded_navaid_latitude REAL,
		theta REAL, rho REAL, magnetic_course REAL, route_distance_holding_distance_time REAL,
		altitude_description TEXT, altitude1 TEXT, altitude2 TEXT, transition_altitude TEXT,
		speed_limit_description TEXT, speed_limit INTEGER,
		center_waypoint TEXT, center_waypoint_longitude REAL, center_waypoint_latitude REAL
	);`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}

	rows := [][]any{
		{"KJFK", "I04R", "I", "BAMNE", 10, "BAMNE", "K6", "E  ",
			-73.9, 40.5, "", "IF", "", 0.0, 0.0, 0.0, 0.0, 0.0, 0.0,
			"", "2000", "", "18000", "", 0, "", 0.0, 0.0},
		{"KJFK", "I04R", "I", "BAMNE", 20, "RW04R", "K6", "GY M",
			-73.78, 40.62, "", "TF", "", 0.0, 0.0, 0.0, 0.0, 43.0, 5.2,
			"", "", "", "18000", "", 0, "", 0.0, 0.0},
		{"KJFK", "I04R", "I", "BAMNE", 30, "", "", "",
			-73.7, 40.7, "R", "HM", "", 0.0, 0.0, 0.0, 0.0, 223.0, 1.5,
			"", "4000", "", "18000", "", 210, "", 0.0, 0.0},
	}
	for _, r := range rows {
		if _, err := db.Exec(`INSERT INTO tbl_iaps VALUES
			(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`, r...); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	src, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = src.Close() })
	return src
}

func TestStreamProcedureRows(t *testing.T) {
	src := newProcedureDB(t)

	var rows []dfd.ProcedureInput
	err := src.StreamProcedureRows(context.Background(), "APPCH", func(input dfd.ProcedureInput) error {
		rows = append(rows, input)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for i, r := range rows {
		if r.RowCode != "APPCH" {
			t.Errorf("row %d code = %q", i, r.RowCode)
		}
		if r.SeqNo != (i+1)*10 {
			t.Errorf("row %d seqno = %d, want %d", i, r.SeqNo, (i+1)*10)
		}
	}

	// Track leg: shared column lands in the distance field.
	if rows[1].RteHoldDist != 5.2 || rows[1].RteHoldTime != 0 {
		t.Errorf("track leg hold/dist = %v/%v, want 0/5.2", rows[1].RteHoldTime, rows[1].RteHoldDist)
	}
	// Hold leg: shared column lands in the time field.
	if rows[2].RteHoldTime != 1.5 || rows[2].RteHoldDist != 0 {
		t.Errorf("hold leg hold/dist = %v/%v, want 1.5/0", rows[2].RteHoldTime, rows[2].RteHoldDist)
	}
	if rows[2].SpeedLimit != 210 {
		t.Errorf("speed limit = %d, want 210", rows[2].SpeedLimit)
	}
	if rows[0].Context == "" {
		t.Error("context string must be filled for diagnostics")
	}
}

func TestStreamProcedureRowsUnknownCode(t *testing.T) {
	src := newProcedureDB(t)
	err := src.StreamProcedureRows(context.Background(), "BOGUS", func(dfd.ProcedureInput) error {
		t.Fatal("callback must not run")
		return nil
	})
	if err == nil {
		t.Fatal("expected error for unknown row code")
	}
}
