package dfd

import "testing"

// recordingSink captures the reducer's calls in order.
type recordingSink struct {
	calls []string
}

func (s *recordingSink) Write(input ProcedureInput) error {
	s.calls = append(s.calls, "write:"+input.AirportIdent+"/"+input.ProcedureIdent)
	return nil
}

func (s *recordingSink) Finish(input ProcedureInput) error {
	s.calls = append(s.calls, "finish:"+input.AirportIdent)
	return nil
}

func (s *recordingSink) Reset() {
	s.calls = append(s.calls, "reset")
}

func TestProcedureReducerFlushOnAirportChange(t *testing.T) {
	sink := &recordingSink{}
	r := NewProcedureReducer(sink)

	rows := []ProcedureInput{
		{AirportIdent: "KJFK", ProcedureIdent: "I04R", SeqNo: 10},
		{AirportIdent: "KJFK", ProcedureIdent: "I04R", SeqNo: 20},
		{AirportIdent: "KLGA", ProcedureIdent: "I22", SeqNo: 10},
	}
	for _, row := range rows {
		if err := r.Add(row); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"write:KJFK/I04R",
		"write:KJFK/I04R",
		"finish:KJFK",
		"reset",
		"write:KLGA/I22",
		"finish:KLGA",
		"reset",
	}
	if len(sink.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", sink.calls, want)
	}
	for i := range want {
		if sink.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, sink.calls[i], want[i])
		}
	}
}

func TestProcedureReducerEmptyFlush(t *testing.T) {
	sink := &recordingSink{}
	r := NewProcedureReducer(sink)
	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}
	if len(sink.calls) != 0 {
		t.Errorf("calls = %v, want none for empty input", sink.calls)
	}
}

func TestSetHoldOrDistance(t *testing.T) {
	hold := ProcedureInput{PathTerm: "HM"}
	hold.SetHoldOrDistance(1.5)
	if hold.RteHoldTime != 1.5 || hold.RteHoldDist != 0 {
		t.Errorf("hold leg: time=%v dist=%v, want 1.5/0", hold.RteHoldTime, hold.RteHoldDist)
	}

	track := ProcedureInput{PathTerm: "TF"}
	track.SetHoldOrDistance(12)
	if track.RteHoldDist != 12 || track.RteHoldTime != 0 {
		t.Errorf("track leg: time=%v dist=%v, want 0/12", track.RteHoldTime, track.RteHoldDist)
	}
}
