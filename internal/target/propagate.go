// Package target simulates a single airborne target on a great-circle track
// and broadcasts its telemetry to all connected TCP clients.
package target

import (
	"fmt"

	"github.com/saviobatista/pointing-sim/internal/geom"
)

// Step advances a global target position along a great circle by
// elapsed seconds of level flight at constant ground speed and constant
// compass heading (track, degrees, 0 = north, positive eastward).
//
// The local north/west basis is re-derived at the current target position
// every call, so the heading stays locked to a fixed bearing even as the
// tangent frame rotates with the target's motion over the sphere. It returns
// the new position and the instantaneous global velocity vector.
func Step(pos geom.Point3[geom.Global], trackDeg, groundSpeed, elapsed float64) (geom.Point3[geom.Global], geom.Vector3[geom.Global], error) {
	posVec := pos.Vec()
	radius := posVec.Norm() // EarthRadius + elevation for level flight
	if radius == 0 {
		return pos, geom.Vector3[geom.Global]{}, fmt.Errorf("target at sphere centre")
	}

	arcLength := elapsed * groundSpeed
	travelAngle := arcLength / radius

	basis, err := geom.LocalBasis(pos)
	if err != nil {
		return pos, geom.Vector3[geom.Global]{}, fmt.Errorf("cannot derive track direction: %w", err)
	}

	// Rotate north by -track about up to get the direction of travel, then
	// advance the position about the perpendicular forward axis.
	trackDir := basis.North.RotateAbout(basis.Up, -geom.Radians(trackDeg))
	fwdAxis := posVec.Cross(trackDir).Normalize()
	newPosVec := posVec.RotateAbout(fwdAxis, travelAngle)

	newPos := geom.Point3[geom.Global]{X: newPosVec.X, Y: newPosVec.Y, Z: newPosVec.Z}
	return newPos, trackDir.Scale(groundSpeed), nil
}
