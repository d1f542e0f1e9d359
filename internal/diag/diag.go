// Package diag collects non-fatal decode diagnostics. Decoders report
// anomalies here instead of logging so the core packages stay
// side-effect-free; the pipeline aggregates and reports them at the end
// of a compile run.
package diag

import "fmt"

// Kind classifies a diagnostic.
type Kind string

const (
	// UnknownSubRecordTag marks a sub-record with a tag outside the known
	// set. The record is skipped and the parent decode continues.
	UnknownSubRecordTag Kind = "unknown_subrecord_tag"

	// StructuralSizeMismatch marks a sub-record whose declared end lies
	// beyond its parent's bound. The parent completes with partial children.
	StructuralSizeMismatch Kind = "structural_size_mismatch"

	// InvalidStructure marks a decoded unit that failed its validity
	// checks and was withheld from the writer.
	InvalidStructure Kind = "invalid_structure"
)

// Diagnostic is one anomaly recorded against an enclosing unit of work
// (one approach, one airport, one route).
type Diagnostic struct {
	Kind    Kind
	Context string // e.g. airport ident or route name
	Message string
}

func (d Diagnostic) String() string {
	if d.Context == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", d.Kind, d.Context, d.Message)
}

// Collector accumulates diagnostics. The zero value is ready to use.
// A nil *Collector discards everything, so callers that do not care can
// pass nil.
type Collector struct {
	diags []Diagnostic
}

// Add records one diagnostic.
func (c *Collector) Add(kind Kind, context, format string, args ...any) {
	if c == nil {
		return
	}
	c.diags = append(c.diags, Diagnostic{
		Kind:    kind,
		Context: context,
		Message: fmt.Sprintf(format, args...),
	})
}

// All returns the recorded diagnostics in insertion order.
func (c *Collector) All() []Diagnostic {
	if c == nil {
		return nil
	}
	return c.diags
}

// Count returns the number of recorded diagnostics.
func (c *Collector) Count() int {
	if c == nil {
		return 0
	}
	return len(c.diags)
}

// CountKind returns the number of diagnostics of the given kind.
func (c *Collector) CountKind(kind Kind) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, d := range c.diags {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
