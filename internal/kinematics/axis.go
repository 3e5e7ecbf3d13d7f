// Package kinematics models a velocity-controlled mount axis as a closed-form
// trapezoidal velocity profile. Position and speed are derived from elapsed
// wall-clock time at query time, so there is no fixed-timestep integration
// and no accumulated drift.
package kinematics

import "time"

// MaxAccel is the fixed maximum angular acceleration of an axis, in °/s².
const MaxAccel = 6.0

// Axis is one mechanical axis of the mount. All angles are in degrees and
// angular velocities in °/s.
//
// Axis is not safe for concurrent use; the owner is expected to hold a lock
// (see the mount package).
type Axis struct {
	t0        time.Time
	pos0      float64
	spd0      float64
	targetSpd float64
	accelDur  float64 // seconds to reach targetSpd from spd0

	now func() time.Time
}

// NewAxis creates an axis at the given position moving at the given speed,
// with no pending acceleration.
func NewAxis(pos, speed float64) *Axis {
	a := &Axis{
		pos0:      pos,
		spd0:      speed,
		targetSpd: speed,
		now:       time.Now,
	}
	a.t0 = a.now()
	return a
}

// State returns the current position and speed, evaluated analytically from
// the time elapsed since the last command.
func (a *Axis) State() (pos, speed float64) {
	dt := a.now().Sub(a.t0).Seconds()

	accel := 0.0
	switch {
	case a.targetSpd > a.spd0:
		accel = MaxAccel
	case a.targetSpd < a.spd0:
		accel = -MaxAccel
	}

	posDuringAccel := func(dt float64) float64 {
		return a.pos0 + a.spd0*dt + accel*dt*dt/2
	}

	if dt < a.accelDur {
		return posDuringAccel(dt), a.spd0 + accel*dt
	}
	return posDuringAccel(a.accelDur) + a.targetSpd*(dt-a.accelDur), a.targetSpd
}

// SetTargetSpeed commands a new target speed. The instantaneous state becomes
// the new baseline, so commands compose mid-ramp: the axis accelerates from
// wherever it currently is. A target equal to the current speed yields a
// zero-length ramp.
func (a *Axis) SetTargetSpeed(target float64) {
	pos0, spd0 := a.State()

	a.t0 = a.now()
	a.pos0 = pos0
	a.spd0 = spd0
	a.targetSpd = target
	a.accelDur = abs(target-spd0) / MaxAccel
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
