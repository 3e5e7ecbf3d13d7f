package testutils

import (
	"context"
	"fmt"
	"time"

	"github.com/saviobatista/pointing-sim/internal/geom"
	"github.com/saviobatista/pointing-sim/internal/types"
)

// MockTargetInfoMessage creates a telemetry sample for testing.
func MockTargetInfoMessage() *types.TargetInfoMessage {
	return &types.TargetInfoMessage{
		Position: geom.Point3[geom.Local]{X: 1000, Y: -250.5, Z: 5000},
		Velocity: geom.Vector3[geom.Local]{X: 0, Y: 200, Z: 0},
		Track:    -90,
		Altitude: 5000,
	}
}

// MockTelemetryLine creates a raw telemetry line for testing.
func MockTelemetryLine() *types.TelemetryLine {
	return &types.TelemetryLine{
		Raw:       "1000.0;-250.5;5000.0;0.0;200.0;0.0;-90.0;5000.0",
		Timestamp: time.Now().UTC(),
		Source:    "test-source",
	}
}

// WaitForCondition waits for a condition to be true with timeout
func WaitForCondition(condition func() bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for condition")
		case <-ticker.C:
			if condition() {
				return nil
			}
		}
	}
}
