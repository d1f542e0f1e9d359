package compile

import "navdbc/internal/dfd"

// CountingSink counts procedure rows and airports without storing
// anything. Used when a run reduces procedures only for validation, or
// as the default when no procedure writer is configured.
type CountingSink struct {
	Rows     int
	Airports int
}

func (s *CountingSink) Write(dfd.ProcedureInput) error {
	s.Rows++
	return nil
}

func (s *CountingSink) Finish(dfd.ProcedureInput) error {
	s.Airports++
	return nil
}

func (s *CountingSink) Reset() {}
