// Package mount owns the two-axis mount simulation state and its line-based
// TCP control protocol.
package mount

import (
	"sync"

	"github.com/saviobatista/pointing-sim/internal/kinematics"
	"github.com/saviobatista/pointing-sim/internal/types"
)

// Mount holds both axis models behind a single reader-writer lock. Any number
// of readers may snapshot the state through Get while the protocol handler
// issues commands; all critical sections are short, pure computations.
type Mount struct {
	mu    sync.RWMutex
	axis1 *kinematics.Axis // azimuth-like
	axis2 *kinematics.Axis // altitude-like
}

// New creates a mount at position (0, 0) and at rest.
func New() *Mount {
	return &Mount{
		axis1: kinematics.NewAxis(0, 0),
		axis2: kinematics.NewAxis(0, 0),
	}
}

// Get returns a snapshot of both axes evaluated at the current time.
func (m *Mount) Get() types.MountState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	axis1Pos, axis1Vel := m.axis1.State()
	axis2Pos, axis2Vel := m.axis2.State()
	return types.MountState{
		Axis1Pos: axis1Pos,
		Axis2Pos: axis2Pos,
		Axis1Vel: axis1Vel,
		Axis2Vel: axis2Vel,
	}
}

// Slew commands new target angular velocities for both axes, in °/s.
func (m *Mount) Slew(axis1, axis2 float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.axis1.SetTargetSpeed(axis1)
	m.axis2.SetTargetSpeed(axis2)
}

// Stop commands both axes to decelerate to rest. Equivalent to Slew(0, 0).
func (m *Mount) Stop() {
	m.Slew(0, 0)
}
