package bgl

import (
	"navdbc/internal/diag"
)

// Approach is one decoded instrument approach procedure with its
// primary legs, missed-approach legs and entry transitions.
type Approach struct {
	Suffix           byte // optional one-character suffix, 0 if absent
	RunwayNumber     int  // 1-36, 0 for procedures not aligned with a runway
	RunwayDesignator RunwayDesignator
	Type             ApproachType
	GpsOverlay       bool

	FixType         FixType
	FixIdent        string
	FixRegion       string
	FixAirportIdent string

	Altitude       float32 // feet
	Heading        float32 // degrees
	MissedAltitude float32 // feet

	Legs        []Leg
	MissedLegs  []Leg
	Transitions []Transition
}

// RunwayName returns the runway end name the approach serves, e.g.
// "11R", or an empty string for circling-only procedures.
func (a *Approach) RunwayName() string {
	return RunwayName(a.RunwayNumber, a.RunwayDesignator)
}

// Valid reports whether the approach is structurally usable: at least
// one primary leg, a recognized approach type, and every leg and
// transition individually valid.
func (a *Approach) Valid() bool {
	if len(a.Legs) == 0 || !a.Type.Valid() {
		return false
	}
	for _, leg := range a.Legs {
		if !leg.Valid() {
			return false
		}
	}
	for _, leg := range a.MissedLegs {
		if !leg.Valid() {
			return false
		}
	}
	for _, trans := range a.Transitions {
		if !trans.Valid() {
			return false
		}
	}
	return true
}

// Transition is an entry transition into an approach. Same nested
// shape as the approach itself: header, optional DME block, then
// count-prefixed leg lists.
type Transition struct {
	Type TransitionType

	FixType         FixType
	FixIdent        string
	FixRegion       string
	FixAirportIdent string

	Altitude float32 // feet

	DmeIdent        string
	DmeRegion       string
	DmeAirportIdent string
	DmeRadial       int
	DmeDist         float32 // meters

	Legs []Leg
}

// Valid reports whether the transition has legs, a recognized type and
// all-valid legs.
func (t *Transition) Valid() bool {
	if len(t.Legs) == 0 || !t.Type.Valid() {
		return false
	}
	for _, leg := range t.Legs {
		if !leg.Valid() {
			return false
		}
	}
	return true
}

// DecodeApproach decodes one approach record. The cursor must be
// positioned just past the record prefix described by rec. Only a
// stream underflow aborts the decode; structural anomalies are recorded
// against dc and the approach completes with whatever was read. The
// caller is responsible for the final rec.SeekToEnd.
func DecodeApproach(s *Stream, rec Record, variant Variant, dc *diag.Collector) (*Approach, error) {
	a := &Approach{}

	suffix, err := s.ReadUByte()
	if err != nil {
		return nil, err
	}
	a.Suffix = suffix

	rwNum, err := s.ReadUByte()
	if err != nil {
		return nil, err
	}
	a.RunwayNumber = int(rwNum)

	typeByte, err := s.ReadUByte()
	if err != nil {
		return nil, err
	}
	a.Type, a.RunwayDesignator, a.GpsOverlay = DecodeApproachTypeByte(typeByte)

	// Declared counts; the sub-record loop is authoritative.
	for i := 0; i < 3; i++ {
		if _, err := s.ReadUByte(); err != nil {
			return nil, err
		}
	}

	fixWord, err := s.ReadUInt()
	if err != nil {
		return nil, err
	}
	a.FixType, a.FixIdent = DecodeFixWord(fixWord)

	regionWord, err := s.ReadUInt()
	if err != nil {
		return nil, err
	}
	a.FixRegion, a.FixAirportIdent = DecodeRegionWord(regionWord)

	for _, dst := range []*float32{&a.Altitude, &a.Heading, &a.MissedAltitude} {
		if *dst, err = s.ReadFloat(); err != nil {
			return nil, err
		}
	}

	if variant == VariantNew {
		// Reserved bytes in the extended record layout.
		if err := s.Skip(4); err != nil {
			return nil, err
		}
	}

	for s.Tell() < rec.End() {
		sub, err := ReadRecord(s)
		if err != nil {
			return nil, err
		}
		if boundErr := sub.CheckBound(rec); boundErr != nil {
			dc.Add(diag.StructuralSizeMismatch, a.FixAirportIdent, "approach: %v", boundErr)
			return a, nil
		}

		switch sub.Tag {
		case TagLegs, TagLegsNew, TagLegsNew116, TagLegsNew118:
			if a.Legs, err = decodeLegList(s, sub.Tag, a.Legs); err != nil {
				return nil, err
			}

		case TagMissedLegs, TagMissedLegsNew, TagMissedLegsNew116, TagMissedLegsNew118:
			if a.MissedLegs, err = decodeLegList(s, sub.Tag, a.MissedLegs); err != nil {
				return nil, err
			}

		case TagTransition, TagTransitionNew, TagTransitionNew116:
			if err := sub.SeekToStart(s); err != nil {
				return nil, err
			}
			trans, err := DecodeTransition(s, dc)
			if err != nil {
				return nil, err
			}
			a.Transitions = append(a.Transitions, *trans)

		default:
			// The extended simulator family ships undocumented extension
			// records; skipping them silently there is expected.
			if variant != VariantNew {
				dc.Add(diag.UnknownSubRecordTag, a.FixAirportIdent,
					"approach: unexpected sub-record tag 0x%04x at offset %d", uint16(sub.Tag), sub.Start)
			}
		}

		if err := sub.SeekToEnd(s); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// DecodeTransition decodes one transition record starting at its
// prefix. Shares the sub-record loop shape with DecodeApproach.
func DecodeTransition(s *Stream, dc *diag.Collector) (*Transition, error) {
	rec, err := ReadRecord(s)
	if err != nil {
		return nil, err
	}

	t := &Transition{}

	typ, err := s.ReadUByte()
	if err != nil {
		return nil, err
	}
	t.Type = TransitionType(typ)

	// Declared leg count; the leg-list sub-record is authoritative.
	if _, err := s.ReadUByte(); err != nil {
		return nil, err
	}

	fixWord, err := s.ReadUInt()
	if err != nil {
		return nil, err
	}
	t.FixType, t.FixIdent = DecodeFixWord(fixWord)

	regionWord, err := s.ReadUInt()
	if err != nil {
		return nil, err
	}
	t.FixRegion, t.FixAirportIdent = DecodeRegionWord(regionWord)

	if t.Altitude, err = s.ReadFloat(); err != nil {
		return nil, err
	}

	if t.Type == TransitionDME {
		dmeWord, err := s.ReadUInt()
		if err != nil {
			return nil, err
		}
		t.DmeIdent = DecodeIcao(dmeWord >> 5)

		dmeRegionWord, err := s.ReadUInt()
		if err != nil {
			return nil, err
		}
		t.DmeRegion, t.DmeAirportIdent = DecodeRegionWord(dmeRegionWord)

		radial, err := s.ReadInt()
		if err != nil {
			return nil, err
		}
		t.DmeRadial = int(radial)

		if t.DmeDist, err = s.ReadFloat(); err != nil {
			return nil, err
		}
	}

	if rec.Tag == TagTransitionNew116 {
		if err := s.Skip(8); err != nil {
			return nil, err
		}
	}

	for s.Tell() < rec.End() {
		sub, err := ReadRecord(s)
		if err != nil {
			return nil, err
		}
		if boundErr := sub.CheckBound(rec); boundErr != nil {
			dc.Add(diag.StructuralSizeMismatch, t.FixAirportIdent, "transition: %v", boundErr)
			return t, nil
		}

		switch sub.Tag {
		case TagTransitionLegs, TagTransitionLegsNew, TagTransitionLegs116, TagTransitionLegs118:
			if t.Legs, err = decodeLegList(s, sub.Tag, t.Legs); err != nil {
				return nil, err
			}

		default:
			dc.Add(diag.UnknownSubRecordTag, t.FixAirportIdent,
				"transition: unexpected sub-record tag 0x%04x at offset %d", uint16(sub.Tag), sub.Start)
		}

		if err := sub.SeekToEnd(s); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// decodeLegList reads the uint16 leg count and that many legs,
// appending to dst.
func decodeLegList(s *Stream, tag RecordTag, dst []Leg) ([]Leg, error) {
	count, err := s.ReadUShort()
	if err != nil {
		return dst, err
	}
	for i := 0; i < int(count); i++ {
		leg, err := DecodeLeg(s, tag)
		if err != nil {
			return dst, err
		}
		dst = append(dst, leg)
	}
	return dst, nil
}
