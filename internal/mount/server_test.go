package mount

import (
	"bufio"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/saviobatista/pointing-sim/internal/kinematics"
)

func startTestServer(t *testing.T) (*Server, *Mount) {
	t.Helper()

	m := New()
	srv, err := NewServer(m, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewServer() failed: %v", err)
	}
	go srv.Serve()
	t.Cleanup(func() {
		if err := srv.Close(); err != nil {
			t.Logf("server close: %v", err)
		}
	})
	return srv, m
}

// axis1PosAfter evaluates the ramp-limited position reached dt seconds after
// commanding targetSpd from rest.
func axis1PosAfter(targetSpd, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	rampDur := targetSpd / kinematics.MaxAccel
	if dt < rampDur {
		return 0.5 * kinematics.MaxAccel * dt * dt
	}
	return 0.5*kinematics.MaxAccel*rampDur*rampDur + targetSpd*(dt-rampDur)
}

func TestServerSlewThenGetPosition(t *testing.T) {
	srv, _ := startTestServer(t)

	client, err := Dial(srv.Addr(), time.Second)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	defer client.Close()

	slewBefore := time.Now()
	if err := client.Slew(1, 0); err != nil {
		t.Fatalf("Slew() failed: %v", err)
	}
	slewAfter := time.Now()

	time.Sleep(300 * time.Millisecond)

	queryBefore := time.Now()
	axis1, axis2, err := client.GetPosition()
	if err != nil {
		t.Fatalf("GetPosition() failed: %v", err)
	}
	queryAfter := time.Now()

	// The closed-form profile is monotonic in elapsed time, so the reported
	// position must fall between the positions computed for the tightest
	// and loosest possible command-to-query intervals.
	minDt := queryBefore.Sub(slewAfter).Seconds()
	maxDt := queryAfter.Sub(slewBefore).Seconds()
	// The wire format carries four decimal places; allow for the rounding.
	minPos := axis1PosAfter(1, minDt) - 1e-4
	maxPos := axis1PosAfter(1, maxDt) + 1e-4

	if axis1 < minPos || axis1 > maxPos {
		t.Errorf("axis1 = %v, want within [%v, %v]", axis1, minPos, maxPos)
	}
	if axis2 != 0 {
		t.Errorf("axis2 = %v, want 0", axis2)
	}
}

func TestServerMalformedLineKeepsConnectionOpen(t *testing.T) {
	srv, _ := startTestServer(t)

	conn, err := net.Dial("tcp", srv.Addr())
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	defer conn.Close()

	// A malformed request is logged and dropped without a reply; the next
	// well-formed request must still be answered.
	if _, err := fmt.Fprintf(conn, "FlyToTheMoon;1;2\nGetPosition\n"); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline() failed: %v", err)
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if line != "Position;0.0000;0.0000\n" {
		t.Errorf("reply = %q, want Position;0.0000;0.0000", line)
	}
}

func TestServerStop(t *testing.T) {
	srv, m := startTestServer(t)

	client, err := Dial(srv.Addr(), time.Second)
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	defer client.Close()

	if err := client.Slew(0.5, 0.5); err != nil {
		t.Fatalf("Slew() failed: %v", err)
	}
	if err := client.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}

	// Braking from at most 0.5°/s at 6°/s² completes within 84 ms.
	time.Sleep(150 * time.Millisecond)
	state := m.Get()
	if state.Axis1Vel != 0 || state.Axis2Vel != 0 {
		t.Errorf("velocities after stop = (%v, %v), want (0, 0)", state.Axis1Vel, state.Axis2Vel)
	}
}

func TestServerAcceptsNextClientAfterDisconnect(t *testing.T) {
	srv, _ := startTestServer(t)

	first, err := Dial(srv.Addr(), time.Second)
	if err != nil {
		t.Fatalf("first Dial() failed: %v", err)
	}
	if _, _, err := first.GetPosition(); err != nil {
		t.Fatalf("first GetPosition() failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("first Close() failed: %v", err)
	}

	second, err := Dial(srv.Addr(), time.Second)
	if err != nil {
		t.Fatalf("second Dial() failed: %v", err)
	}
	defer second.Close()

	// The server handles one client at a time; after the first disconnect
	// the second session must be served. Allow a moment for the server to
	// notice the disconnect and accept again.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, _, err := second.GetPosition(); err == nil {
			return
		} else if time.Now().After(deadline) {
			t.Fatalf("second GetPosition() failed: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
