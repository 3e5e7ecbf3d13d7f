// Package geom provides frame-tagged Cartesian geometry on a spherical Earth.
//
// Every point and vector carries a reference frame as a type parameter, so a
// Global-frame value can never be passed where a Local-frame value is expected
// without going through one of the named conversion functions below.
package geom

import (
	"errors"
	"math"
)

// EarthRadius is the arithmetic mean Earth radius (R1) as per IUGG, in metres.
const EarthRadius = 6_371_008.8

// Global is the Earth-centred frame: origin at the sphere's centre, X towards
// lat 0°/lon 0°, Y towards lat 0°/lon 90°, Z towards the north pole.
type Global struct{}

// Local is an observer-tangent frame: origin at the observer, X = geographic
// north, Y = west, Z = up.
type Local struct{}

// Frame is the set of valid frame tags. It only constrains type parameters;
// frame values themselves are never instantiated.
type Frame interface {
	Global | Local
}

// ErrPolarObserver is returned when a local basis is requested at (or very
// near) a pole, where the north direction is undefined.
var ErrPolarObserver = errors.New("geom: local basis undefined for polar observer")

// LatLon is a geodetic coordinate pair in degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeoPos is a geodetic position: LatLon plus elevation in metres above the
// reference sphere.
type GeoPos struct {
	LatLon
	Elevation float64 `json:"elevation"`
}

// Point3 is a position in frame F, in metres.
type Point3[F Frame] struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vector3 is a displacement or velocity in frame F.
type Vector3[F Frame] struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec returns the position vector from the frame origin to p.
func (p Point3[F]) Vec() Vector3[F] {
	return Vector3[F]{p.X, p.Y, p.Z}
}

// Add returns the point p translated by v.
func (p Point3[F]) Add(v Vector3[F]) Point3[F] {
	return Point3[F]{p.X + v.X, p.Y + v.Y, p.Z + v.Z}
}

// Sub returns the vector from other to p.
func (p Point3[F]) Sub(other Point3[F]) Vector3[F] {
	return Vector3[F]{p.X - other.X, p.Y - other.Y, p.Z - other.Z}
}

// Add returns v + other.
func (v Vector3[F]) Add(other Vector3[F]) Vector3[F] {
	return Vector3[F]{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vector3[F]) Sub(other Vector3[F]) Vector3[F] {
	return Vector3[F]{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v multiplied by s.
func (v Vector3[F]) Scale(s float64) Vector3[F] {
	return Vector3[F]{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and other.
func (v Vector3[F]) Dot(other Vector3[F]) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product v × other.
func (v Vector3[F]) Cross(other Vector3[F]) Vector3[F] {
	return Vector3[F]{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Norm returns the Euclidean norm of v.
func (v Vector3[F]) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged.
func (v Vector3[F]) Normalize() Vector3[F] {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// RotateAbout rotates v by angle radians about the given unit-length axis
// (Rodrigues' rotation formula).
func (v Vector3[F]) RotateAbout(axis Vector3[F], angle float64) Vector3[F] {
	sin, cos := math.Sincos(angle)
	return v.Scale(cos).
		Add(axis.Cross(v).Scale(sin)).
		Add(axis.Scale(axis.Dot(v) * (1 - cos)))
}

// ToGlobalUnit returns the unit-sphere global position of the given geodetic
// coordinates.
func ToGlobalUnit(ll LatLon) Point3[Global] {
	latRad := Radians(ll.Lat)
	lonRad := Radians(ll.Lon)
	return Point3[Global]{
		X: math.Cos(lonRad) * math.Cos(latRad),
		Y: math.Sin(lonRad) * math.Cos(latRad),
		Z: math.Sin(latRad),
	}
}

// ToGlobal returns the global position of a geodetic position, scaling the
// unit direction by EarthRadius plus elevation.
func ToGlobal(pos GeoPos) Point3[Global] {
	unit := ToGlobalUnit(pos.LatLon)
	r := EarthRadius + pos.Elevation
	return Point3[Global]{X: unit.X * r, Y: unit.Y * r, Z: unit.Z * r}
}

// Basis is an orthonormal north/west/up triad at some global position.
type Basis struct {
	North Vector3[Global]
	West  Vector3[Global]
	Up    Vector3[Global]
}

// LocalBasis builds the tangent-frame basis at the given observer position.
// It fails with ErrPolarObserver when the observer is close enough to a pole
// that the north direction degenerates.
func LocalBasis(observer Point3[Global]) (Basis, error) {
	up := observer.Vec().Normalize()
	northPole := Point3[Global]{Z: EarthRadius}
	toPole := northPole.Sub(observer)

	west := up.Cross(toPole)
	// At a pole, toPole is parallel to up and the cross product collapses.
	if west.Norm() < 1e-9*toPole.Norm() {
		return Basis{}, ErrPolarObserver
	}
	west = west.Normalize()
	north := west.Cross(up)

	return Basis{North: north, West: west, Up: up}, nil
}

// ToLocalFromGlobal expresses a global target position in the observer's
// local frame.
func ToLocalFromGlobal(observer, target Point3[Global]) (Point3[Local], error) {
	basis, err := LocalBasis(observer)
	if err != nil {
		return Point3[Local]{}, err
	}
	rel := target.Sub(observer)
	return Point3[Local]{
		X: rel.Dot(basis.North),
		Y: rel.Dot(basis.West),
		Z: rel.Dot(basis.Up),
	}, nil
}

// ToLocalVec expresses a global-frame vector (e.g. a velocity) in the
// observer's local frame. Unlike ToLocalFromGlobal it does not subtract
// origins.
func ToLocalVec(observer Point3[Global], v Vector3[Global]) (Vector3[Local], error) {
	basis, err := LocalBasis(observer)
	if err != nil {
		return Vector3[Local]{}, err
	}
	return Vector3[Local]{
		X: v.Dot(basis.North),
		Y: v.Dot(basis.West),
		Z: v.Dot(basis.Up),
	}, nil
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }
