// Package twd97 converts TWD97 planar coordinates (the Taiwan 2-degree
// transverse Mercator zone on the GRS80 ellipsoid) to WGS84 geographic
// coordinates using the closed-form series inverse.
package twd97

import "math"

// Params holds the projection constants. These must match the authoritative
// TWD97 definition exactly; a different ellipsoid or false easting shifts the
// output by hundreds of meters.
type Params struct {
	SemiMajor       float64 // a, meters
	SemiMinor       float64 // b, meters
	ScaleFactor     float64 // k0
	FalseEasting    float64 // dx, meters
	FalseNorthing   float64 // dy, meters
	CentralMeridian float64 // lon0, degrees east
}

// TWD97 is the Taiwan Datum 1997 2-degree zone (EPSG:3826).
var TWD97 = Params{
	SemiMajor:       6378137.0,
	SemiMinor:       6356752.314140,
	ScaleFactor:     0.9999,
	FalseEasting:    250000,
	FalseNorthing:   0,
	CentralMeridian: 121,
}

// ToWGS84 converts a TWD97 easting/northing pair to (latitude, longitude) in
// decimal degrees. The function is pure and performs no range validation;
// callers are expected to check the result against the Taiwan bounding
// envelope and discard implausible output.
func ToWGS84(x, y float64) (lat, lng float64) {
	return TWD97.Inverse(x, y)
}

// Inverse computes the series-expansion inverse transverse Mercator
// projection: footpoint latitude from the meridian arc, then latitude and
// longitude correction terms.
func (p Params) Inverse(x, y float64) (lat, lng float64) {
	a := p.SemiMajor
	b := p.SemiMinor
	k0 := p.ScaleFactor
	lon0 := p.CentralMeridian * math.Pi / 180

	e2 := 1 - (b*b)/(a*a) // first eccentricity squared

	x1 := x - p.FalseEasting
	y1 := y - p.FalseNorthing

	// Meridian arc length and footpoint latitude.
	m := y1 / k0
	mu := m / (a * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	j1 := 3*e1/2 - 27*math.Pow(e1, 3)/32
	j2 := 21*e1*e1/16 - 55*math.Pow(e1, 4)/32
	j3 := 151 * math.Pow(e1, 3) / 96
	j4 := 1097 * math.Pow(e1, 4) / 512

	fp := mu + j1*math.Sin(2*mu) + j2*math.Sin(4*mu) + j3*math.Sin(6*mu) + j4*math.Sin(8*mu)

	sinFp := math.Sin(fp)
	cosFp := math.Cos(fp)
	tanFp := math.Tan(fp)

	ep2 := e2 / (1 - e2) // second eccentricity squared
	c1 := ep2 * cosFp * cosFp
	t1 := tanFp * tanFp
	n1 := a / math.Sqrt(1-e2*sinFp*sinFp)
	r1 := a * (1 - e2) / math.Pow(1-e2*sinFp*sinFp, 1.5)
	d := x1 / (n1 * k0)

	// Latitude correction terms.
	q1 := n1 * tanFp / r1
	q2 := d * d / 2
	q3 := (5 + 3*t1 + 10*c1 - 4*c1*c1 - 9*ep2) * math.Pow(d, 4) / 24
	q4 := (61 + 90*t1 + 298*c1 + 45*t1*t1 - 252*ep2 - 3*c1*c1) * math.Pow(d, 6) / 720

	latRad := fp - q1*(q2-q3+q4)

	// Longitude correction terms.
	q5 := d
	q6 := (1 + 2*t1 + c1) * math.Pow(d, 3) / 6
	q7 := (5 - 2*c1 + 28*t1 - 3*c1*c1 + 8*ep2 + 24*t1*t1) * math.Pow(d, 5) / 120

	lngRad := lon0 + (q5-q6+q7)/cosFp

	return latRad * 180 / math.Pi, lngRad * 180 / math.Pi
}
