package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/saviobatista/pointing-sim/internal/capture"
	"github.com/saviobatista/pointing-sim/internal/config"
	"github.com/saviobatista/pointing-sim/internal/interp"
	"github.com/saviobatista/pointing-sim/internal/mount"
	"github.com/saviobatista/pointing-sim/internal/parser"
	"github.com/saviobatista/pointing-sim/internal/redis"
	"github.com/saviobatista/pointing-sim/internal/stats"
	"github.com/saviobatista/pointing-sim/internal/types"
)

const mountDialTimeout = time.Second

// StateStore defines the interface for caching latest state
type StateStore interface {
	StoreTargetState(ctx context.Context, state *types.TargetState) error
	StoreMountState(ctx context.Context, snapshot *types.MountSnapshot) error
	Close() error
}

// Tracker feeds telemetry lines into the interpolator and keeps the latest
// published sample for periodic reporting.
type Tracker struct {
	interp *interp.TargetInterpolator
	stats  *stats.Stats

	mu       sync.Mutex
	latest   *types.TargetInfoMessage
	latestAt time.Time
}

func NewTracker(ti *interp.TargetInterpolator, st *stats.Stats) *Tracker {
	t := &Tracker{interp: ti, stats: st}
	ti.Subscribe(t.onSample)
	return t
}

func (t *Tracker) onSample(msg types.TargetInfoMessage) {
	t.mu.Lock()
	t.latest = &msg
	t.latestAt = time.Now().UTC()
	t.mu.Unlock()
}

// ProcessLine parses a raw telemetry line and hands it to the interpolator.
func (t *Tracker) ProcessLine(line types.TelemetryLine) error {
	t.stats.IncrementTotalLines()
	t.stats.UpdateLastMessageTime()

	msg, err := parser.ParseTargetInfo(line.Raw)
	if err != nil {
		t.stats.IncrementFailedLines()
		return fmt.Errorf("failed to parse telemetry line: %w", err)
	}
	t.stats.IncrementParsedLines()
	t.interp.Notify(*msg)
	return nil
}

// Frame advances the displayed state by one rendering frame. It runs whether
// or not fresh telemetry arrived.
func (t *Tracker) Frame() {
	t.interp.Interpolate()
	t.stats.IncrementInterpolations()
}

// Latest returns the most recently published sample, or nil before the first
// telemetry line.
func (t *Tracker) Latest() (*types.TargetInfoMessage, time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest, t.latestAt
}

func main() {
	if err := run(); err != nil {
		log.Printf("Tracker failed: %v", err)
		os.Exit(1)
	}
}

// run contains the main application logic and can be tested
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	st := stats.New()
	ti := interp.New()
	tracker := NewTracker(ti, st)

	// The Redis cache is optional; without it the tracker only logs.
	var store StateStore
	if cfg.RedisAddr != "" {
		client, err := redis.New(cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to create Redis client: %w", err)
		}
		defer client.Close()
		store = client
		log.Printf("Caching latest state in Redis at %s", cfg.RedisAddr)

		ti.Subscribe(func(msg types.TargetInfoMessage) {
			state := types.NewTargetState(&msg, time.Now().UTC())
			storeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := store.StoreTargetState(storeCtx, state); err != nil {
				log.Printf("Failed to store target state: %v", err)
			}
		})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	feed := capture.New(cfg.TargetAddr)
	feed.Start()
	defer feed.Stop()
	log.Printf("Capturing telemetry from %s", cfg.TargetAddr)

	go pollMount(ctx, cfg.MountAddr, cfg.MountPollInterval, store)
	go st.StartLogging(ctx, cfg.StatsInterval)

	frameTicker := time.NewTicker(cfg.FrameInterval)
	defer frameTicker.Stop()
	reportTicker := time.NewTicker(cfg.MountPollInterval)
	defer reportTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Shutting down...")
			return nil
		case <-frameTicker.C:
			drainLines(feed.Lines(), tracker)
			tracker.Frame()
		case <-reportTicker.C:
			if msg, at := tracker.Latest(); msg != nil {
				log.Printf("Target: pos=(%.1f, %.1f, %.1f) m vel=(%.1f, %.1f, %.1f) m/s track=%.1f° alt=%.1f m (age %s)",
					msg.Position.X, msg.Position.Y, msg.Position.Z,
					msg.Velocity.X, msg.Velocity.Y, msg.Velocity.Z,
					msg.Track, msg.Altitude, time.Since(at).Round(time.Millisecond))
			}
		}
	}
}

// drainLines consumes every buffered telemetry line without blocking.
func drainLines(lines <-chan types.TelemetryLine, tracker *Tracker) {
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			if err := tracker.ProcessLine(line); err != nil {
				log.Printf("Skipping telemetry line from %s: %v", line.Source, err)
			}
		default:
			return
		}
	}
}

// pollMount periodically reads the mount position over its control protocol,
// reconnecting after any failure.
func pollMount(ctx context.Context, addr string, interval time.Duration, store StateStore) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var client *mount.Client
	defer func() {
		if client != nil {
			client.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if client == nil {
			c, err := mount.Dial(addr, mountDialTimeout)
			if err != nil {
				log.Printf("Failed to connect to mount at %s: %v", addr, err)
				continue
			}
			log.Printf("Connected to mount at %s", addr)
			client = c
		}

		axis1, axis2, err := client.GetPosition()
		if err != nil {
			log.Printf("Mount poll failed: %v", err)
			client.Close()
			client = nil
			continue
		}
		log.Printf("Mount position: axis1=%.4f° axis2=%.4f°", axis1, axis2)

		if store != nil {
			snapshot := &types.MountSnapshot{
				MountState: types.MountState{Axis1Pos: axis1, Axis2Pos: axis2},
				Timestamp:  time.Now().UTC(),
			}
			storeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			if err := store.StoreMountState(storeCtx, snapshot); err != nil {
				log.Printf("Failed to store mount state: %v", err)
			}
			cancel()
		}
	}
}
