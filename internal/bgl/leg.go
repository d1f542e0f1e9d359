package bgl

// Leg is one decoded procedure leg. Full leg semantics (altitude
// restriction interpretation, hold geometry and so on) belong to the
// procedure writer downstream; this package only decodes the wire
// representation.
type Leg struct {
	Type          LegType
	AltDescriptor uint8 // raw altitude-restriction descriptor
	TurnDirection uint8 // 0 none, 1 left, 2 right, 3 either
	TrueCourse    bool
	Flyover       bool

	FixType         FixType
	FixIdent        string
	FixRegion       string
	FixAirportIdent string

	RecommendedFixType   FixType
	RecommendedFixIdent  string
	RecommendedFixRegion string

	Theta      float32 // bearing from the recommended fix, degrees
	Rho        float32 // distance from the recommended fix, meters
	Course     float32 // degrees, true if TrueCourse is set
	DistOrTime float32 // meters, or minutes for hold legs
	Altitude1  float32 // feet
	Altitude2  float32 // feet

	SpeedLimit    float32 // knots; revision 116 and later
	VerticalAngle float32 // degrees; revision 118 and later
}

// legListRevision returns how many trailing per-leg floats the given
// leg-list tag revision carries beyond the classic layout.
func legListRevision(tag RecordTag) int {
	switch tag {
	case TagLegsNew116, TagMissedLegsNew116, TagTransitionLegs116:
		return 1
	case TagLegsNew118, TagMissedLegsNew118, TagTransitionLegs118:
		return 2
	}
	return 0
}

// DecodeLeg decodes one leg at the current cursor position. Legs are
// not length-prefixed themselves; they are packed back to back inside a
// count-prefixed leg-list sub-record, so the leg-list tag decides the
// per-leg layout revision.
func DecodeLeg(s *Stream, listTag RecordTag) (Leg, error) {
	var leg Leg
	var err error

	var typ, flags uint8
	if typ, err = s.ReadUByte(); err != nil {
		return leg, err
	}
	leg.Type = LegType(typ)
	if leg.AltDescriptor, err = s.ReadUByte(); err != nil {
		return leg, err
	}
	if leg.TurnDirection, err = s.ReadUByte(); err != nil {
		return leg, err
	}
	if flags, err = s.ReadUByte(); err != nil {
		return leg, err
	}
	leg.TrueCourse = flags&0x01 != 0
	leg.Flyover = flags&0x02 != 0

	var w uint32
	if w, err = s.ReadUInt(); err != nil {
		return leg, err
	}
	leg.FixType, leg.FixIdent = DecodeFixWord(w)

	if w, err = s.ReadUInt(); err != nil {
		return leg, err
	}
	leg.FixRegion, leg.FixAirportIdent = DecodeRegionWord(w)

	if w, err = s.ReadUInt(); err != nil {
		return leg, err
	}
	leg.RecommendedFixType, leg.RecommendedFixIdent = DecodeFixWord(w)

	if w, err = s.ReadUInt(); err != nil {
		return leg, err
	}
	leg.RecommendedFixRegion, _ = DecodeRegionWord(w)

	for _, dst := range []*float32{
		&leg.Theta, &leg.Rho, &leg.Course, &leg.DistOrTime,
		&leg.Altitude1, &leg.Altitude2,
	} {
		if *dst, err = s.ReadFloat(); err != nil {
			return leg, err
		}
	}

	if rev := legListRevision(listTag); rev >= 1 {
		if leg.SpeedLimit, err = s.ReadFloat(); err != nil {
			return leg, err
		}
		if rev >= 2 {
			if leg.VerticalAngle, err = s.ReadFloat(); err != nil {
				return leg, err
			}
		}
	}
	return leg, nil
}

// Valid reports whether the leg has a recognized path terminator and a
// plausible fix reference. Legs without a fix (heading and course legs)
// decode with an empty ident, which is fine; a non-empty ident with an
// unrecognized fix type is not.
func (l Leg) Valid() bool {
	if !l.Type.Valid() {
		return false
	}
	if l.FixIdent != "" && !l.FixType.Valid() {
		return false
	}
	return true
}
