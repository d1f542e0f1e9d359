package compile

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/nats-io/nats.go"

	"navdbc/internal/diag"
)

// Reporter receives progress while the pipeline runs. Implementations
// must tolerate being called from a single goroutine only.
type Reporter interface {
	Stage(stage string)
	Unit(stage, ident string, count int)
	Diagnostic(stage string, d diag.Diagnostic)
	Done(stage string, units int, elapsed time.Duration)
}

// NopReporter discards all progress.
type NopReporter struct{}

func (NopReporter) Stage(string)                       {}
func (NopReporter) Unit(string, string, int)           {}
func (NopReporter) Diagnostic(string, diag.Diagnostic) {}
func (NopReporter) Done(string, int, time.Duration)    {}

// LogReporter writes progress to a leveled logger. Per-unit lines go
// out at debug level so a default run only shows stage boundaries.
type LogReporter struct {
	Log *log.Logger
}

// NewLogReporter returns a reporter writing to logger.
func NewLogReporter(logger *log.Logger) *LogReporter {
	return &LogReporter{Log: logger}
}

func (r *LogReporter) Stage(stage string) {
	r.Log.Infof("stage %s started", stage)
}

func (r *LogReporter) Unit(stage, ident string, count int) {
	r.Log.Debugf("%s: %s (%d)", stage, ident, count)
}

func (r *LogReporter) Diagnostic(stage string, d diag.Diagnostic) {
	r.Log.Warnf("%s: %s: %s", stage, d.Context, d.Message)
}

func (r *LogReporter) Done(stage string, units int, elapsed time.Duration) {
	r.Log.Infof("stage %s done: %d units in %s", stage, units, elapsed.Round(time.Millisecond))
}

// progressEvent is the wire shape of one NATS progress message.
type progressEvent struct {
	Event   string `json:"event"` // "stage", "unit", "diagnostic", "done"
	Stage   string `json:"stage"`
	Ident   string `json:"ident,omitempty"`
	Count   int    `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Elapsed string `json:"elapsed,omitempty"`
}

// NATSReporter publishes progress events as JSON so other services can
// follow a long compile without polling the output database. Publish
// failures are counted, not fatal; losing a progress event never aborts
// a compile.
type NATSReporter struct {
	conn    *nats.Conn
	subject string

	// PublishErrors counts events that could not be published.
	PublishErrors int
}

// NewNATSReporter connects to the given NATS URL and publishes to
// subject.
func NewNATSReporter(url, subject string) (*NATSReporter, error) {
	conn, err := nats.Connect(url,
		nats.Name("navdbc"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSReporter{conn: conn, subject: subject}, nil
}

// Close flushes pending events and closes the connection.
func (r *NATSReporter) Close() error {
	if err := r.conn.Drain(); err != nil {
		return fmt.Errorf("drain nats: %w", err)
	}
	return nil
}

func (r *NATSReporter) publish(ev progressEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		r.PublishErrors++
		return
	}
	if err := r.conn.Publish(r.subject, data); err != nil {
		r.PublishErrors++
	}
}

func (r *NATSReporter) Stage(stage string) {
	r.publish(progressEvent{Event: "stage", Stage: stage})
}

func (r *NATSReporter) Unit(stage, ident string, count int) {
	r.publish(progressEvent{Event: "unit", Stage: stage, Ident: ident, Count: count})
}

func (r *NATSReporter) Diagnostic(stage string, d diag.Diagnostic) {
	r.publish(progressEvent{Event: "diagnostic", Stage: stage, Ident: d.Context, Message: d.Message})
}

func (r *NATSReporter) Done(stage string, units int, elapsed time.Duration) {
	r.publish(progressEvent{Event: "done", Stage: stage, Count: units, Elapsed: elapsed.String()})
}

// MultiReporter fans progress out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Stage(stage string) {
	for _, r := range m {
		r.Stage(stage)
	}
}

func (m MultiReporter) Unit(stage, ident string, count int) {
	for _, r := range m {
		r.Unit(stage, ident, count)
	}
}

func (m MultiReporter) Diagnostic(stage string, d diag.Diagnostic) {
	for _, r := range m {
		r.Diagnostic(stage, d)
	}
}

func (m MultiReporter) Done(stage string, units int, elapsed time.Duration) {
	for _, r := range m {
		r.Done(stage, units, elapsed)
	}
}
