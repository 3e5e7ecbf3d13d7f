package types

import (
	"time"

	"github.com/saviobatista/pointing-sim/internal/geom"
)

// TelemetryLine is one raw telemetry line as received from the wire,
// before parsing.
type TelemetryLine struct {
	Raw       string    `json:"raw"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// TargetInfoMessage is a single telemetry sample, always expressed in the
// receiving observer's local frame. Immutable once constructed.
type TargetInfoMessage struct {
	Position geom.Point3[geom.Local]  `json:"position"`
	Velocity geom.Vector3[geom.Local] `json:"velocity"`
	Track    float64                  `json:"track"`    // heading, degrees
	Altitude float64                  `json:"altitude"` // metres above the reference sphere
}

// MountState is a read-only snapshot of both mount axes at one query time.
// Positions are in degrees, velocities in °/s.
type MountState struct {
	Axis1Pos float64 `json:"axis1_pos"`
	Axis2Pos float64 `json:"axis2_pos"`
	Axis1Vel float64 `json:"axis1_vel"`
	Axis2Vel float64 `json:"axis2_vel"`
}

// TargetState is the flattened latest-target-sample shape cached in Redis.
type TargetState struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Z         float64   `json:"z"`
	VX        float64   `json:"vx"`
	VY        float64   `json:"vy"`
	VZ        float64   `json:"vz"`
	Track     float64   `json:"track"`
	Altitude  float64   `json:"altitude"`
	Timestamp time.Time `json:"timestamp"`
}

// MountSnapshot is the latest mount state shape cached in Redis.
type MountSnapshot struct {
	MountState
	Timestamp time.Time `json:"timestamp"`
}

// NewTargetState flattens a telemetry sample for caching.
func NewTargetState(msg *TargetInfoMessage, ts time.Time) *TargetState {
	return &TargetState{
		X:         msg.Position.X,
		Y:         msg.Position.Y,
		Z:         msg.Position.Z,
		VX:        msg.Velocity.X,
		VY:        msg.Velocity.Y,
		VZ:        msg.Velocity.Z,
		Track:     msg.Track,
		Altitude:  msg.Altitude,
		Timestamp: ts,
	}
}
