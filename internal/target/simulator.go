package target

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saviobatista/pointing-sim/internal/geom"
	"github.com/saviobatista/pointing-sim/internal/parser"
	"github.com/saviobatista/pointing-sim/internal/stats"
	"github.com/saviobatista/pointing-sim/internal/types"
)

// Default scenario: observer on the equator at the prime meridian, target
// 5 km up a few hundredths of a degree away, flying due west at 200 m/s.
const (
	DefaultObserverLat  = 0.0
	DefaultObserverLon  = 0.0
	DefaultInitialLat   = 0.05
	DefaultInitialLon   = 0.1
	DefaultElevation    = 5000.0 // metres
	DefaultTrack        = -90.0  // degrees
	DefaultGroundSpeed  = 200.0  // m/s
	DefaultTickPeriod   = 250 * time.Millisecond
)

// Publisher is an optional bus hook invoked with every broadcast line
// (e.g. the NATS client).
type Publisher interface {
	PublishTelemetryLine(line *types.TelemetryLine) error
}

// Scenario describes the simulated flight.
type Scenario struct {
	Observer    geom.GeoPos
	Initial     geom.GeoPos
	Track       float64 // degrees
	GroundSpeed float64 // m/s
	TickPeriod  time.Duration
}

// DefaultScenario returns the compiled-in flight used by cmd/targetsim.
func DefaultScenario() Scenario {
	return Scenario{
		Observer: geom.GeoPos{
			LatLon: geom.LatLon{Lat: DefaultObserverLat, Lon: DefaultObserverLon},
		},
		Initial: geom.GeoPos{
			LatLon:    geom.LatLon{Lat: DefaultInitialLat, Lon: DefaultInitialLon},
			Elevation: DefaultElevation,
		},
		Track:       DefaultTrack,
		GroundSpeed: DefaultGroundSpeed,
		TickPeriod:  DefaultTickPeriod,
	}
}

// Simulator propagates the target each tick and fans the serialized telemetry
// out to every connected client, pruning clients whose writes fail.
type Simulator struct {
	scenario Scenario
	observer geom.Point3[geom.Global]
	pos      geom.Point3[geom.Global]

	ln        net.Listener
	publisher Publisher
	stats     *stats.Stats

	mu      sync.Mutex
	clients map[string]net.Conn

	stopChan chan struct{}
}

// New binds the broadcast listener. A bind failure is fatal for the caller.
func New(addr string, scenario Scenario, publisher Publisher, st *stats.Stats) (*Simulator, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind target simulator on %s: %w", addr, err)
	}
	if st == nil {
		st = stats.New()
	}
	return &Simulator{
		scenario:  scenario,
		observer:  geom.ToGlobal(scenario.Observer),
		pos:       geom.ToGlobal(scenario.Initial),
		ln:        ln,
		publisher: publisher,
		stats:     st,
		clients:   make(map[string]net.Conn),
		stopChan:  make(chan struct{}),
	}, nil
}

// Addr returns the bound listen address.
func (s *Simulator) Addr() string {
	return s.ln.Addr().String()
}

// Run accepts clients and broadcasts telemetry until the context is
// cancelled. The trajectory is advanced by real elapsed time each tick, not
// by the nominal tick period, so scheduling jitter does not bias it.
func (s *Simulator) Run(ctx context.Context) {
	go s.acceptLoop()

	ticker := time.NewTicker(s.scenario.TickPeriod)
	defer ticker.Stop()

	lastUpdate := time.Now()
	for {
		select {
		case <-ctx.Done():
			s.close()
			return
		case <-ticker.C:
			now := time.Now()
			elapsed := now.Sub(lastUpdate).Seconds()
			lastUpdate = now

			if err := s.tick(elapsed, now); err != nil {
				log.Printf("target: tick skipped: %v", err)
			}
		}
	}
}

// tick advances the target and broadcasts one telemetry line.
func (s *Simulator) tick(elapsed float64, now time.Time) error {
	newPos, velocity, err := Step(s.pos, s.scenario.Track, s.scenario.GroundSpeed, elapsed)
	if err != nil {
		return err
	}
	s.pos = newPos

	localPos, err := geom.ToLocalFromGlobal(s.observer, s.pos)
	if err != nil {
		return fmt.Errorf("observer frame conversion: %w", err)
	}
	localVel, err := geom.ToLocalVec(s.observer, velocity)
	if err != nil {
		return fmt.Errorf("observer frame conversion: %w", err)
	}

	msg := &types.TargetInfoMessage{
		Position: localPos,
		Velocity: localVel,
		Track:    s.scenario.Track,
		Altitude: s.pos.Vec().Norm() - geom.EarthRadius,
	}
	line := parser.FormatTargetInfo(msg)

	s.broadcast(line)
	s.stats.IncrementBroadcastMessages()

	if s.publisher != nil {
		err := s.publisher.PublishTelemetryLine(&types.TelemetryLine{
			Raw:       line,
			Timestamp: now.UTC(),
			Source:    s.Addr(),
		})
		if err != nil {
			log.Printf("target: bus publish failed: %v", err)
		}
	}
	return nil
}

// broadcast writes the line to every connected client and prunes the ones
// whose writes fail. The client list lock is not held across the network
// writes.
func (s *Simulator) broadcast(line string) {
	s.mu.Lock()
	conns := make(map[string]net.Conn, len(s.clients))
	for id, conn := range s.clients {
		conns[id] = conn
	}
	s.mu.Unlock()

	var failed []string
	for id, conn := range conns {
		if _, err := fmt.Fprintf(conn, "%s\n", line); err != nil {
			failed = append(failed, id)
		}
	}

	if len(failed) == 0 {
		return
	}
	s.mu.Lock()
	for _, id := range failed {
		if conn, ok := s.clients[id]; ok {
			conn.Close()
			delete(s.clients, id)
			s.stats.IncrementDroppedClients()
		}
	}
	s.stats.SetActiveClients(uint64(len(s.clients)))
	s.mu.Unlock()
	log.Printf("target: dropped %d disconnected client(s)", len(failed))
}

// acceptLoop registers new clients until the listener is closed.
func (s *Simulator) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.stopChan:
				return
			default:
				log.Printf("target: accept error: %v", err)
				continue
			}
		}

		id := uuid.New().String()
		s.mu.Lock()
		s.clients[id] = conn
		active := len(s.clients)
		s.mu.Unlock()
		s.stats.SetActiveClients(uint64(active))
		log.Printf("target: client %s connected from %s (%d active)", id, conn.RemoteAddr(), active)
	}
}

func (s *Simulator) close() {
	close(s.stopChan)
	if err := s.ln.Close(); err != nil {
		log.Printf("target: listener close: %v", err)
	}
	s.mu.Lock()
	for _, conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[string]net.Conn)
	s.mu.Unlock()
}
