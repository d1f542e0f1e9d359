// Package geo provides the small set of geodesy primitives the compiler
// needs: course normalization, great-circle endpoint projection, unit
// conversion and bounding rectangles. Positions are degrees, longitude
// east-positive, latitude north-positive.
package geo

import "math"

// EarthRadiusMeter is the mean earth radius used for all projections.
const EarthRadiusMeter = 6371. * 1000.

// Pos is a geographic coordinate in degrees.
type Pos struct {
	Lon float64
	Lat float64
}

// Valid reports whether the position is inside the plausible coordinate range.
func (p Pos) Valid() bool {
	return p.Lon >= -180 && p.Lon <= 180 && p.Lat >= -90 && p.Lat <= 90
}

// Endpoint returns the position reached from p after traveling the given
// distance in meters on the given true course in degrees.
func (p Pos) Endpoint(distanceMeter, courseDeg float64) Pos {
	dist := distanceMeter / EarthRadiusMeter
	course := toRadians(courseDeg)
	lat1 := toRadians(p.Lat)
	lon1 := toRadians(p.Lon)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(dist) +
		math.Cos(lat1)*math.Sin(dist)*math.Cos(course))
	lon2 := lon1 + math.Atan2(math.Sin(course)*math.Sin(dist)*math.Cos(lat1),
		math.Cos(dist)-math.Sin(lat1)*math.Sin(lat2))

	return Pos{Lon: normalizeLon(toDegrees(lon2)), Lat: toDegrees(lat2)}
}

// Mid returns the arithmetic midpoint of p and other. Sufficient for the
// short distances between paired runway ends.
func (p Pos) Mid(other Pos) Pos {
	return Pos{Lon: (p.Lon + other.Lon) / 2, Lat: (p.Lat + other.Lat) / 2}
}

// NormalizeCourse brings a course in degrees into the range [0, 360).
func NormalizeCourse(deg float64) float64 {
	norm := math.Mod(deg, 360)
	if norm < 0 {
		norm += 360
	}
	return norm
}

// OpposedCourse returns the reciprocal of a course in degrees.
func OpposedCourse(deg float64) float64 {
	return NormalizeCourse(deg + 180)
}

// FeetToMeter converts feet to meters.
func FeetToMeter(feet float64) float64 {
	return feet * 0.3048
}

// MeterToFeet converts meters to feet.
func MeterToFeet(meter float64) float64 {
	return meter / 0.3048
}

// MagVar looks up the magnetic declination in degrees at a position.
// East declination is positive. The real lookup is provided by the
// caller; the compiler treats it as a black box.
type MagVar func(Pos) float64

// FixedMagVar returns a MagVar that reports the same declination
// everywhere. Used for tests and for sources that carry their own
// station declination.
func FixedMagVar(decl float64) MagVar {
	return func(Pos) float64 { return decl }
}

// MagVarGrid is a regular global declination grid: Values[i][j] is the
// declination at latitude -90+i*Spacing, longitude -180+j*Spacing.
// Rows must cover -90..90 and columns -180..180 inclusive.
type MagVarGrid struct {
	SpacingDeg float64
	Values     [][]float64
}

// At interpolates the declination at p bilinearly from the four
// surrounding grid nodes.
func (g *MagVarGrid) At(p Pos) float64 {
	li := (p.Lat + 90) / g.SpacingDeg
	lj := (p.Lon + 180) / g.SpacingDeg

	i, j := int(li), int(lj)
	if i >= len(g.Values)-1 {
		i = len(g.Values) - 2
	}
	if j >= len(g.Values[i])-1 {
		j = len(g.Values[i]) - 2
	}
	fi, fj := li-float64(i), lj-float64(j)

	bottom := g.Values[i][j]*(1-fj) + g.Values[i][j+1]*fj
	top := g.Values[i+1][j]*(1-fj) + g.Values[i+1][j+1]*fj
	return bottom*(1-fi) + top*fi
}

// GridMagVar returns a MagVar backed by a declination grid.
func GridMagVar(g *MagVarGrid) MagVar {
	return g.At
}

// Rect is a bounding rectangle in degrees. The zero value is empty and
// extends to exactly the first position added.
type Rect struct {
	West, North, East, South float64

	valid bool
}

// RectFor returns a degenerate rectangle covering a single position.
func RectFor(p Pos) Rect {
	r := Rect{}
	r.Extend(p)
	return r
}

// IsValid reports whether the rectangle covers at least one position.
func (r *Rect) IsValid() bool {
	return r.valid
}

// Extend grows the rectangle to include the given position.
func (r *Rect) Extend(p Pos) {
	if !r.valid {
		r.West, r.East = p.Lon, p.Lon
		r.North, r.South = p.Lat, p.Lat
		r.valid = true
		return
	}
	if p.Lon < r.West {
		r.West = p.Lon
	}
	if p.Lon > r.East {
		r.East = p.Lon
	}
	if p.Lat > r.North {
		r.North = p.Lat
	}
	if p.Lat < r.South {
		r.South = p.Lat
	}
}

// Contains reports whether the position lies inside the rectangle.
func (r *Rect) Contains(p Pos) bool {
	return r.valid && p.Lon >= r.West && p.Lon <= r.East &&
		p.Lat >= r.South && p.Lat <= r.North
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

func normalizeLon(lon float64) float64 {
	norm := math.Mod(lon+180, 360)
	if norm < 0 {
		norm += 360
	}
	return norm - 180
}
