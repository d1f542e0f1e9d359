// Command navdbc compiles a navigation database from a relational
// source export and optional binary procedure data.
//
// Usage:
//
//	navdbc compile -source nav_source.sqlite [options]
//
// Options:
//
//	-source PATH        Relational source database (required)
//	-procedures PATH    Binary procedure record file (optional)
//	-sqlite PATH        SQLite output path (default: navdb.sqlite)
//	-pg                 Also write to PostgreSQL
//	-pg-host HOST       PostgreSQL host (default: localhost, env: POSTGRES_HOST)
//	-pg-port PORT       PostgreSQL port (default: 5432, env: POSTGRES_PORT)
//	-pg-database DB     PostgreSQL database (default: navdb, env: POSTGRES_DATABASE)
//	-pg-user USER       PostgreSQL user (default: navdb, env: POSTGRES_USER)
//	-pg-password PASS   PostgreSQL password (default: navdb, env: POSTGRES_PASSWORD)
//	-clickhouse         Also export analytic tables to ClickHouse
//	-ch-host HOST       ClickHouse host (default: localhost, env: CLICKHOUSE_HOST)
//	-ch-port PORT       ClickHouse port (default: 9000, env: CLICKHOUSE_PORT)
//	-ch-database DB     ClickHouse database (default: navdb, env: CLICKHOUSE_DATABASE)
//	-nats URL           Publish progress events to NATS (optional)
//	-nats-subject SUBJ  NATS subject (default: navdbc.progress)
//	-magvar DEG         Fixed magnetic declination, east positive (default: 0)
//	-new-format         Decode the extended binary record layout
//	-verbose            Per-unit progress logging
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/labstack/gommon/log"

	"navdbc/internal/bgl"
	"navdbc/internal/compile"
	"navdbc/internal/geo"
	"navdbc/internal/source"
	"navdbc/internal/storage"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "navdbc - navigation database compiler:")
	fmt.Fprintln(w, "  compile  - build the output database from a source export")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  navdbc compile -source nav_source.sqlite [-sqlite navdb.sqlite] [-procedures data.bin]")
	fmt.Fprintln(w, "")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "compile":
		runCompile(os.Args[2:])
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
}

func runCompile(args []string) {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	sourcePath := fs.String("source", "", "Relational source database (required)")
	proceduresPath := fs.String("procedures", "", "Binary procedure record file")
	sqlitePath := fs.String("sqlite", "navdb.sqlite", "SQLite output path")

	pgEnabled := fs.Bool("pg", false, "Also write to PostgreSQL")
	pgHost := fs.String("pg-host", envOrDefault("POSTGRES_HOST", "localhost"), "PostgreSQL host")
	pgPort := fs.Int("pg-port", envOrDefaultInt("POSTGRES_PORT", 5432), "PostgreSQL port")
	pgDB := fs.String("pg-database", envOrDefault("POSTGRES_DATABASE", "navdb"), "PostgreSQL database")
	pgUser := fs.String("pg-user", envOrDefault("POSTGRES_USER", "navdb"), "PostgreSQL user")
	pgPassword := fs.String("pg-password", envOrDefault("POSTGRES_PASSWORD", "navdb"), "PostgreSQL password")

	chEnabled := fs.Bool("clickhouse", false, "Also export analytic tables to ClickHouse")
	chHost := fs.String("ch-host", envOrDefault("CLICKHOUSE_HOST", "localhost"), "ClickHouse host")
	chPort := fs.Int("ch-port", envOrDefaultInt("CLICKHOUSE_PORT", 9000), "ClickHouse port")
	chDB := fs.String("ch-database", envOrDefault("CLICKHOUSE_DATABASE", "navdb"), "ClickHouse database")
	chUser := fs.String("ch-user", envOrDefault("CLICKHOUSE_USER", "default"), "ClickHouse user")
	chPassword := fs.String("ch-password", envOrDefault("CLICKHOUSE_PASSWORD", ""), "ClickHouse password")

	natsURL := fs.String("nats", "", "Publish progress events to this NATS URL")
	natsSubject := fs.String("nats-subject", "navdbc.progress", "NATS subject for progress events")

	magvarDeg := fs.Float64("magvar", 0, "Fixed magnetic declination in degrees, east positive")
	newFormat := fs.Bool("new-format", false, "Decode the extended binary record layout")
	verbose := fs.Bool("verbose", false, "Per-unit progress logging")
	_ = fs.Parse(args)

	logger := log.New("navdbc")
	logger.SetHeader("${time_rfc3339} ${level}")
	if *verbose {
		logger.SetLevel(log.DEBUG)
	} else {
		logger.SetLevel(log.INFO)
	}

	if *sourcePath == "" {
		fmt.Fprintln(os.Stderr, "Missing required -source flag")
		fs.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := source.Open(*sourcePath)
	if err != nil {
		logger.Fatalf("open source: %v", err)
	}
	defer func() { _ = src.Close() }()

	writer, err := openWriters(ctx, storage.Config{
		SQLitePath: *sqlitePath,
		Postgres: storage.PostgresConfig{
			Host: *pgHost, Port: *pgPort, Database: *pgDB,
			User: *pgUser, Password: *pgPassword,
		},
		ClickHouse: storage.ClickHouseConfig{
			Host: *chHost, Port: *chPort, Database: *chDB,
			User: *chUser, Password: *chPassword,
		},
	}, *pgEnabled, *chEnabled)
	if err != nil {
		logger.Fatalf("open output: %v", err)
	}
	defer func() { _ = writer.Close() }()

	if err := writer.CreateSchema(ctx); err != nil {
		logger.Fatalf("create schema: %v", err)
	}

	reporter := compile.MultiReporter{compile.NewLogReporter(logger)}
	if *natsURL != "" {
		nr, err := compile.NewNATSReporter(*natsURL, *natsSubject)
		if err != nil {
			logger.Fatalf("nats reporter: %v", err)
		}
		defer func() { _ = nr.Close() }()
		reporter = append(reporter, nr)
	}

	c := compile.New(writer)
	c.Reporter = reporter
	c.MagVar = geo.FixedMagVar(*magvarDeg)
	if *newFormat {
		c.Variant = bgl.VariantNew
	}

	if err := c.CompileRunways(ctx, src); err != nil {
		logger.Fatalf("runways: %v", err)
	}
	if err := c.CompileAirways(ctx, src); err != nil {
		logger.Fatalf("airways: %v", err)
	}

	if *proceduresPath != "" {
		data, err := os.ReadFile(*proceduresPath)
		if err != nil {
			logger.Fatalf("read procedures: %v", err)
		}
		if err := c.CompileApproaches(ctx, data); err != nil {
			logger.Fatalf("approaches: %v", err)
		}
	}

	sink := &compile.CountingSink{}
	for _, rowCode := range []string{"APPCH", "SID", "STAR"} {
		if err := c.ReduceProcedures(ctx, src, rowCode, sink); err != nil {
			logger.Fatalf("%s: %v", rowCode, err)
		}
	}

	logger.Infof("compile done: airports=%d runways=%d airway_edges=%d approaches=%d invalid=%d procedure_rows=%d",
		c.Stats.Airports, c.Stats.Runways, c.Stats.AirwayEdges,
		c.Stats.Approaches, c.Stats.Invalid, c.Stats.ProcedureRows)
	if n := c.Diags.Count(); n > 0 {
		logger.Warnf("%d diagnostics recorded", n)
	}
}

// openWriters builds the writer stack: SQLite always, PostgreSQL and
// ClickHouse when enabled.
func openWriters(ctx context.Context, cfg storage.Config, pg, ch bool) (storage.Writer, error) {
	sq, err := storage.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	writers := []storage.Writer{sq}

	if pg {
		pgdb, err := storage.OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			_ = sq.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		writers = append(writers, pgdb)
	}
	if ch {
		chdb, err := storage.OpenClickHouse(ctx, cfg.ClickHouse)
		if err != nil {
			for _, w := range writers {
				_ = w.Close()
			}
			return nil, fmt.Errorf("clickhouse: %w", err)
		}
		writers = append(writers, chdb)
	}

	if len(writers) == 1 {
		return writers[0], nil
	}
	return storage.NewMultiWriter(writers...), nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
