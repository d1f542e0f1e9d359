package bgl

import (
	"encoding/binary"
	"errors"
	"math"
	"reflect"
	"testing"

	"navdbc/internal/diag"
)

// builder assembles wire-format records for tests.
type builder struct {
	buf []byte
}

func (b *builder) u8(v uint8)   { b.buf = append(b.buf, v) }
func (b *builder) u16(v uint16) { b.buf = binary.LittleEndian.AppendUint16(b.buf, v) }
func (b *builder) u32(v uint32) { b.buf = binary.LittleEndian.AppendUint32(b.buf, v) }
func (b *builder) f32(v float32) {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, math.Float32bits(v))
}

func (b *builder) fixWord(t *testing.T, fixType FixType, ident string) {
	t.Helper()
	v, err := EncodeIcao(ident)
	if err != nil {
		t.Fatal(err)
	}
	b.u32(uint32(fixType) | v<<5)
}

func (b *builder) regionWord(t *testing.T, region, airport string) {
	t.Helper()
	r, err := EncodeIcao(region)
	if err != nil {
		t.Fatal(err)
	}
	a, err := EncodeIcao(airport)
	if err != nil {
		t.Fatal(err)
	}
	b.u32(r | a<<11)
}

// record writes a tag+size prefixed record whose body is produced by fn.
// padding adds trailing bytes inside the declared size that no decoder
// consumes.
func (b *builder) record(tag RecordTag, padding int, fn func(*builder)) {
	body := &builder{}
	if fn != nil {
		fn(body)
	}
	b.u16(uint16(tag))
	b.u32(uint32(len(body.buf) + padding + 6))
	b.buf = append(b.buf, body.buf...)
	b.buf = append(b.buf, make([]byte, padding)...)
}

// leg writes one classic-layout leg with a TF path terminator to the
// given waypoint.
func (b *builder) leg(t *testing.T, ident string) {
	t.Helper()
	b.u8(uint8(LegTF))
	b.u8(1) // altitude descriptor
	b.u8(0) // turn direction
	b.u8(0) // flags
	b.fixWord(t, FixTypeTerminalWaypoint, ident)
	b.regionWord(t, "K6", "KJFK")
	b.fixWord(t, FixTypeNone, "")
	b.regionWord(t, "", "")
	for _, f := range []float32{0, 0, 42.5, 9260, 2000, 0} {
		b.f32(f)
	}
}

// buildApproach assembles a representative ILS approach record: two
// primary legs, one missed leg, one full transition with one leg.
func buildApproach(t *testing.T, extraSub func(*builder)) []byte {
	t.Helper()
	root := &builder{}
	root.record(0x0024, 0, func(b *builder) {
		b.u8('A')                                                                // suffix
		b.u8(4)                                                                  // runway number
		b.u8(EncodeApproachTypeByte(ApproachTypeILS, DesignatorRight, false))    // packed type
		b.u8(1)                                                                  // transition count
		b.u8(2)                                                                  // leg count
		b.u8(1)                                                                  // missed leg count
		b.fixWord(t, FixTypeRunway, "RW04R")                                     //
		b.regionWord(t, "K6", "KJFK")                                            //
		for _, f := range []float32{50.5, 43.6, 2000} {                          // alt, hdg, missed alt
			b.f32(f)
		}

		b.record(TagLegs, 0, func(b *builder) {
			b.u16(2)
			b.leg(t, "DPK")
			b.leg(t, "BAMNE")
		})
		b.record(TagMissedLegs, 0, func(b *builder) {
			b.u16(1)
			b.leg(t, "DUFFY")
		})
		b.record(TagTransition, 0, func(b *builder) {
			b.u8(uint8(TransitionFull))
			b.u8(1)
			b.fixWord(t, FixTypeWaypoint, "DPK")
			b.regionWord(t, "K6", "KJFK")
			b.f32(3000)
			b.record(TagTransitionLegs, 0, func(b *builder) {
				b.u16(1)
				b.leg(t, "DPK")
			})
		})
		if extraSub != nil {
			extraSub(b)
		}
	})
	return root.buf
}

func decode(t *testing.T, buf []byte, variant Variant, dc *diag.Collector) (*Approach, error) {
	t.Helper()
	s := NewStream(buf)
	rec, err := ReadRecord(s)
	if err != nil {
		t.Fatal(err)
	}
	return DecodeApproach(s, rec, variant, dc)
}

func TestDecodeApproach(t *testing.T) {
	dc := &diag.Collector{}
	a, err := decode(t, buildApproach(t, nil), VariantClassic, dc)
	if err != nil {
		t.Fatal(err)
	}

	if a.Suffix != 'A' {
		t.Errorf("suffix = %q, want A", a.Suffix)
	}
	if a.RunwayNumber != 4 || a.RunwayDesignator != DesignatorRight {
		t.Errorf("runway = %d%v, want 4R", a.RunwayNumber, a.RunwayDesignator)
	}
	if a.RunwayName() != "04R" {
		t.Errorf("runway name = %q, want 04R", a.RunwayName())
	}
	if a.Type != ApproachTypeILS {
		t.Errorf("type = %v, want ILS", a.Type)
	}
	if a.GpsOverlay {
		t.Error("overlay = true, want false")
	}
	if a.FixType != FixTypeRunway || a.FixIdent != "RW04R" {
		t.Errorf("fix = %v %q, want runway RW04R", a.FixType, a.FixIdent)
	}
	if a.FixRegion != "K6" || a.FixAirportIdent != "KJFK" {
		t.Errorf("region/airport = %q/%q, want K6/KJFK", a.FixRegion, a.FixAirportIdent)
	}
	if a.Altitude != 50.5 || a.Heading != 43.6 || a.MissedAltitude != 2000 {
		t.Errorf("scalars = %v %v %v", a.Altitude, a.Heading, a.MissedAltitude)
	}

	if len(a.Legs) != 2 {
		t.Fatalf("legs = %d, want 2", len(a.Legs))
	}
	if a.Legs[0].FixIdent != "DPK" || a.Legs[1].FixIdent != "BAMNE" {
		t.Errorf("leg fixes = %q, %q", a.Legs[0].FixIdent, a.Legs[1].FixIdent)
	}
	if a.Legs[0].Type != LegTF {
		t.Errorf("leg type = %v, want TF", a.Legs[0].Type)
	}
	if a.Legs[0].Course != 42.5 {
		t.Errorf("leg course = %v, want 42.5", a.Legs[0].Course)
	}
	if len(a.MissedLegs) != 1 || a.MissedLegs[0].FixIdent != "DUFFY" {
		t.Fatalf("missed legs = %+v", a.MissedLegs)
	}

	if len(a.Transitions) != 1 {
		t.Fatalf("transitions = %d, want 1", len(a.Transitions))
	}
	trans := a.Transitions[0]
	if trans.Type != TransitionFull || trans.FixIdent != "DPK" || trans.Altitude != 3000 {
		t.Errorf("transition = %+v", trans)
	}
	if len(trans.Legs) != 1 || trans.Legs[0].FixIdent != "DPK" {
		t.Errorf("transition legs = %+v", trans.Legs)
	}

	if !a.Valid() {
		t.Error("approach should be valid")
	}
	if dc.Count() != 0 {
		t.Errorf("diagnostics = %v, want none", dc.All())
	}
}

func TestDecodeApproachIdempotent(t *testing.T) {
	buf := buildApproach(t, nil)

	first, err := decode(t, buf, VariantClassic, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := decode(t, buf, VariantClassic, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two decodes of the same buffer differ")
	}
}

func TestDecodeApproachUnknownTag(t *testing.T) {
	buf := buildApproach(t, func(b *builder) {
		b.record(RecordTag(0x0099), 4, nil)
	})

	dc := &diag.Collector{}
	a, err := decode(t, buf, VariantClassic, dc)
	if err != nil {
		t.Fatal(err)
	}
	// The unknown record is skipped; everything else decodes normally.
	if len(a.Legs) != 2 || len(a.Transitions) != 1 {
		t.Errorf("legs = %d, transitions = %d", len(a.Legs), len(a.Transitions))
	}
	if dc.CountKind(diag.UnknownSubRecordTag) != 1 {
		t.Errorf("diagnostics = %v, want one unknown-tag entry", dc.All())
	}
}

func TestDecodeApproachUnknownTagSuppressedForNewVariant(t *testing.T) {
	// The extended record layout carries 4 reserved header bytes and its
	// unknown extension tags are expected, not diagnosed.
	root := &builder{}
	root.record(0x0024, 0, func(b *builder) {
		b.u8(0)
		b.u8(22)
		b.u8(EncodeApproachTypeByte(ApproachTypeRNAV, DesignatorNone, true))
		b.u8(0)
		b.u8(1)
		b.u8(0)
		b.fixWord(t, FixTypeWaypoint, "BAMNE")
		b.regionWord(t, "K6", "KBOS")
		for _, f := range []float32{0, 224, 3000} {
			b.f32(f)
		}
		b.u32(0) // reserved
		b.record(RecordTag(0x0099), 2, nil)
		b.record(TagLegsNew, 0, func(b *builder) {
			b.u16(1)
			b.leg(t, "BAMNE")
		})
	})

	dc := &diag.Collector{}
	a, err := decode(t, root.buf, VariantNew, dc)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Legs) != 1 {
		t.Fatalf("legs = %d, want 1", len(a.Legs))
	}
	if !a.GpsOverlay {
		t.Error("overlay = false, want true")
	}
	if dc.Count() != 0 {
		t.Errorf("diagnostics = %v, want none for the extended variant", dc.All())
	}
}

func TestRecordBoundarySafety(t *testing.T) {
	// A sub-record that declares more bytes than its decoder consumes
	// must leave the cursor exactly at start+size, never short or long.
	buf := buildApproach(t, func(b *builder) {
		b.record(TagMissedLegs, 7, func(b *builder) {
			b.u16(1)
			b.leg(t, "WAVEY")
		})
	})

	a, err := decode(t, buf, VariantClassic, nil)
	if err != nil {
		t.Fatal(err)
	}
	// The padded list decodes its one leg and the loop recovers to pick
	// up nothing further; a misplaced cursor would corrupt the decode.
	if len(a.MissedLegs) != 2 {
		t.Fatalf("missed legs = %d, want 2", len(a.MissedLegs))
	}
	if a.MissedLegs[1].FixIdent != "WAVEY" {
		t.Errorf("missed leg fix = %q, want WAVEY", a.MissedLegs[1].FixIdent)
	}

	s := NewStream(buf)
	rec, err := ReadRecord(s)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeApproach(s, rec, VariantClassic, nil); err != nil {
		t.Fatal(err)
	}
	if s.Tell() != rec.End() {
		t.Errorf("cursor = %d, want record end %d", s.Tell(), rec.End())
	}
}

func TestStructuralSizeMismatch(t *testing.T) {
	// Hand-build an approach whose last sub-record declares an end past
	// the parent bound. The parent completes with partial children.
	root := &builder{}
	root.record(0x0024, 0, func(b *builder) {
		b.u8(0)
		b.u8(9)
		b.u8(EncodeApproachTypeByte(ApproachTypeVOR, DesignatorNone, false))
		b.u8(0)
		b.u8(1)
		b.u8(0)
		b.fixWord(t, FixTypeVOR, "LGA")
		b.regionWord(t, "K6", "KLGA")
		for _, f := range []float32{0, 90, 1500} {
			b.f32(f)
		}
		b.record(TagLegs, 0, func(b *builder) {
			b.u16(1)
			b.leg(t, "LGA")
		})
	})
	// Overwrite the trailing sub-record with one whose declared size
	// overshoots the parent: tag 0x0030, size 0xffff.
	over := &builder{}
	over.u16(0x0030)
	over.u32(0xffff)
	buf := append(root.buf, over.buf...)
	// Grow the parent's declared size to cover the new prefix only.
	binary.LittleEndian.PutUint32(buf[2:], uint32(len(buf)))

	dc := &diag.Collector{}
	a, err := decode(t, buf, VariantClassic, dc)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Legs) != 1 {
		t.Errorf("legs = %d, want 1 decoded before the bad record", len(a.Legs))
	}
	if dc.CountKind(diag.StructuralSizeMismatch) != 1 {
		t.Errorf("diagnostics = %v, want one size-mismatch entry", dc.All())
	}
}

func TestDecodeApproachOutOfBounds(t *testing.T) {
	buf := buildApproach(t, nil)
	// Truncate in the middle of the transition.
	truncated := buf[:len(buf)-20]
	// Keep the declared record size intact so the loop tries to read on.
	s := NewStream(truncated)
	rec := Record{Tag: 0x0024, Size: len(buf), Start: 0}
	if err := s.Skip(6); err != nil {
		t.Fatal(err)
	}
	_, err := DecodeApproach(s, rec, VariantClassic, nil)
	if !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("decode of truncated buffer = %v, want ErrOutOfBounds", err)
	}
}

func TestApproachValidity(t *testing.T) {
	valid := &Approach{
		Type: ApproachTypeILS,
		Legs: []Leg{{Type: LegIF, FixType: FixTypeWaypoint, FixIdent: "DPK"}},
	}
	if !valid.Valid() {
		t.Error("approach with legs and known type should be valid")
	}

	noLegs := &Approach{Type: ApproachTypeILS}
	if noLegs.Valid() {
		t.Error("approach without legs should be invalid")
	}

	badType := &Approach{
		Type: ApproachTypeUnknown,
		Legs: []Leg{{Type: LegIF}},
	}
	if badType.Valid() {
		t.Error("approach with unknown type should be invalid")
	}

	badLeg := &Approach{
		Type: ApproachTypeILS,
		Legs: []Leg{{Type: LegType(99)}},
	}
	if badLeg.Valid() {
		t.Error("approach with invalid leg should be invalid")
	}

	badTransition := &Approach{
		Type:        ApproachTypeILS,
		Legs:        []Leg{{Type: LegIF}},
		Transitions: []Transition{{Type: TransitionFull}},
	}
	if badTransition.Valid() {
		t.Error("approach with legless transition should be invalid")
	}
}

func TestDecodeDMETransition(t *testing.T) {
	root := &builder{}
	root.record(TagTransition, 0, func(b *builder) {
		b.u8(uint8(TransitionDME))
		b.u8(1)
		b.fixWord(t, FixTypeVOR, "DPK")
		b.regionWord(t, "K6", "KJFK")
		b.f32(4000)
		// DME block.
		ident, err := EncodeIcao("DPK")
		if err != nil {
			t.Fatal(err)
		}
		b.u32(ident << 5)
		b.regionWord(t, "K6", "KJFK")
		b.u32(258)
		b.f32(18520)
		b.record(TagTransitionLegs, 0, func(b *builder) {
			b.u16(1)
			b.leg(t, "DPK")
		})
	})

	s := NewStream(root.buf)
	dc := &diag.Collector{}
	trans, err := DecodeTransition(s, dc)
	if err != nil {
		t.Fatal(err)
	}
	if trans.Type != TransitionDME {
		t.Errorf("type = %v, want DME", trans.Type)
	}
	if trans.DmeIdent != "DPK" || trans.DmeRegion != "K6" || trans.DmeAirportIdent != "KJFK" {
		t.Errorf("dme = %q/%q/%q", trans.DmeIdent, trans.DmeRegion, trans.DmeAirportIdent)
	}
	if trans.DmeRadial != 258 || trans.DmeDist != 18520 {
		t.Errorf("dme radial/dist = %d/%v", trans.DmeRadial, trans.DmeDist)
	}
	if !trans.Valid() {
		t.Error("transition should be valid")
	}
	if dc.Count() != 0 {
		t.Errorf("diagnostics = %v", dc.All())
	}
}
