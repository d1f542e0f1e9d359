package bgl

// Variant selects between the classic record layout and the newer
// simulator family that extends it. The new family adds reserved header
// bytes and is known to emit undocumented extension sub-records, so
// unknown-tag diagnostics are suppressed for it.
type Variant int

const (
	VariantClassic Variant = iota
	VariantNew
)

// RecordTag identifies a record or sub-record in the stream.
type RecordTag uint16

// Top-level approach tags and the sub-record tags nested inside
// approach and transition records. The *New tags are the
// extended-format equivalents; the 116/118 revisions carry additional
// per-leg fields.
const (
	TagApproach          RecordTag = 0x0024
	TagApproachNew       RecordTag = 0x00e4
	TagTransition        RecordTag = 0x002c
	TagLegs              RecordTag = 0x002d
	TagMissedLegs        RecordTag = 0x002e
	TagTransitionLegs    RecordTag = 0x002f
	TagTransitionNew     RecordTag = 0x00ec
	TagLegsNew           RecordTag = 0x00ed
	TagMissedLegsNew     RecordTag = 0x00ee
	TagTransitionLegsNew RecordTag = 0x00ef
	TagTransitionNew116  RecordTag = 0x01ec
	TagLegsNew116        RecordTag = 0x01ed
	TagMissedLegsNew116  RecordTag = 0x01ee
	TagTransitionLegs116 RecordTag = 0x01ef
	TagLegsNew118        RecordTag = 0x02ed
	TagMissedLegsNew118  RecordTag = 0x02ee
	TagTransitionLegs118 RecordTag = 0x02ef
)

// ApproachType is the kind of instrument approach, packed into the low
// four bits of the approach type byte.
type ApproachType uint8

const (
	ApproachTypeUnknown ApproachType = 0
	ApproachTypeGPS     ApproachType = 1
	ApproachTypeVOR     ApproachType = 2
	ApproachTypeNDB     ApproachType = 3
	ApproachTypeILS     ApproachType = 4
	ApproachTypeLOC     ApproachType = 5
	ApproachTypeSDF     ApproachType = 6
	ApproachTypeLDA     ApproachType = 7
	ApproachTypeVORDME  ApproachType = 8
	ApproachTypeNDBDME  ApproachType = 9
	ApproachTypeRNAV    ApproachType = 10
	ApproachTypeLOCBC   ApproachType = 11
	ApproachTypeTACAN   ApproachType = 12
	ApproachTypeHelo    ApproachType = 13
	ApproachTypeGLS     ApproachType = 14
	ApproachTypeMLS     ApproachType = 15
)

func (t ApproachType) String() string {
	switch t {
	case ApproachTypeGPS:
		return "GPS"
	case ApproachTypeVOR:
		return "VOR"
	case ApproachTypeNDB:
		return "NDB"
	case ApproachTypeILS:
		return "ILS"
	case ApproachTypeLOC:
		return "LOC"
	case ApproachTypeSDF:
		return "SDF"
	case ApproachTypeLDA:
		return "LDA"
	case ApproachTypeVORDME:
		return "VORDME"
	case ApproachTypeNDBDME:
		return "NDBDME"
	case ApproachTypeRNAV:
		return "RNAV"
	case ApproachTypeLOCBC:
		return "LOCB"
	case ApproachTypeTACAN:
		return "TCN"
	case ApproachTypeHelo:
		return "HELI"
	case ApproachTypeGLS:
		return "GLS"
	case ApproachTypeMLS:
		return "MLS"
	}
	return "UNKN"
}

// Valid reports whether the type is one of the recognized enum values.
func (t ApproachType) Valid() bool {
	return t.String() != "UNKN"
}

// RunwayDesignator is the runway side letter, packed into bits 4-6 of
// the approach type byte.
type RunwayDesignator uint8

const (
	DesignatorNone   RunwayDesignator = 0
	DesignatorLeft   RunwayDesignator = 1
	DesignatorRight  RunwayDesignator = 2
	DesignatorCenter RunwayDesignator = 3
	DesignatorWater  RunwayDesignator = 4
	DesignatorA      RunwayDesignator = 5
	DesignatorB      RunwayDesignator = 6
)

func (d RunwayDesignator) String() string {
	switch d {
	case DesignatorLeft:
		return "L"
	case DesignatorRight:
		return "R"
	case DesignatorCenter:
		return "C"
	case DesignatorWater:
		return "W"
	case DesignatorA:
		return "A"
	case DesignatorB:
		return "B"
	}
	return ""
}

// FixType classifies the fix a procedure references, packed into the
// low four bits of a fix descriptor word.
type FixType uint8

const (
	FixTypeNone             FixType = 0
	FixTypeAirport          FixType = 1
	FixTypeVOR              FixType = 2
	FixTypeNDB              FixType = 3
	FixTypeTerminalNDB      FixType = 4
	FixTypeWaypoint         FixType = 5
	FixTypeTerminalWaypoint FixType = 6
	FixTypeRunway           FixType = 7
	FixTypeLocalizer        FixType = 8
)

func (t FixType) String() string {
	switch t {
	case FixTypeAirport:
		return "A"
	case FixTypeVOR:
		return "V"
	case FixTypeNDB:
		return "N"
	case FixTypeTerminalNDB:
		return "TN"
	case FixTypeWaypoint:
		return "W"
	case FixTypeTerminalWaypoint:
		return "TW"
	case FixTypeRunway:
		return "R"
	case FixTypeLocalizer:
		return "L"
	}
	return ""
}

// Valid reports whether the fix type is recognized.
func (t FixType) Valid() bool {
	return t.String() != ""
}

// TransitionType is the kind of entry transition.
type TransitionType uint8

const (
	TransitionFull TransitionType = 1
	TransitionDME  TransitionType = 2
)

func (t TransitionType) String() string {
	switch t {
	case TransitionFull:
		return "F"
	case TransitionDME:
		return "D"
	}
	return ""
}

// Valid reports whether the transition type is recognized.
func (t TransitionType) Valid() bool {
	return t.String() != ""
}

// LegType is the ARINC-style path terminator of a procedure leg.
type LegType uint8

const (
	LegAF LegType = iota + 1 // arc to fix
	LegCA                    // course to altitude
	LegCD                    // course to DME distance
	LegCF                    // course to fix
	LegCI                    // course to intercept
	LegCR                    // course to radial
	LegDF                    // direct to fix
	LegFA                    // fix to altitude
	LegFC                    // track from fix for distance
	LegFD                    // track from fix to DME distance
	LegFM                    // from fix to manual termination
	LegHA                    // hold to altitude
	LegHF                    // hold, single circuit
	LegHM                    // hold to manual termination
	LegIF                    // initial fix
	LegPI                    // procedure turn
	LegRF                    // constant radius arc
	LegTF                    // track to fix
	LegVA                    // heading to altitude
	LegVD                    // heading to DME distance
	LegVI                    // heading to intercept
	LegVM                    // heading to manual termination
	LegVR                    // heading to radial
)

var legTypeNames = [...]string{
	LegAF: "AF", LegCA: "CA", LegCD: "CD", LegCF: "CF", LegCI: "CI",
	LegCR: "CR", LegDF: "DF", LegFA: "FA", LegFC: "FC", LegFD: "FD",
	LegFM: "FM", LegHA: "HA", LegHF: "HF", LegHM: "HM", LegIF: "IF",
	LegPI: "PI", LegRF: "RF", LegTF: "TF", LegVA: "VA", LegVD: "VD",
	LegVI: "VI", LegVM: "VM", LegVR: "VR",
}

func (t LegType) String() string {
	if int(t) < len(legTypeNames) {
		return legTypeNames[t]
	}
	return ""
}

// Valid reports whether the path terminator is recognized.
func (t LegType) Valid() bool {
	return t.String() != ""
}
