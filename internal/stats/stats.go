// Package stats tracks simple processing counters for the simulator and
// consumer loops.
package stats

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Stats tracks message processing statistics. Counter updates are atomic so
// hot paths never contend on the mutex.
type Stats struct {
	// Consumer side
	TotalLines     uint64
	ParsedLines    uint64
	FailedLines    uint64
	Interpolations uint64

	// Broadcast side
	BroadcastMessages uint64
	DroppedClients    uint64
	ActiveClients     uint64

	// Timing
	LastMessageTime time.Time

	mu sync.RWMutex
}

// New creates a new Stats instance.
func New() *Stats {
	return &Stats{
		LastMessageTime: time.Now(),
	}
}

// IncrementTotalLines counts a received raw line.
func (s *Stats) IncrementTotalLines() {
	atomic.AddUint64(&s.TotalLines, 1)
}

// IncrementParsedLines counts a successfully parsed line.
func (s *Stats) IncrementParsedLines() {
	atomic.AddUint64(&s.ParsedLines, 1)
}

// IncrementFailedLines counts a line that failed to parse.
func (s *Stats) IncrementFailedLines() {
	atomic.AddUint64(&s.FailedLines, 1)
}

// IncrementInterpolations counts one extrapolation pass.
func (s *Stats) IncrementInterpolations() {
	atomic.AddUint64(&s.Interpolations, 1)
}

// IncrementBroadcastMessages counts one telemetry broadcast tick.
func (s *Stats) IncrementBroadcastMessages() {
	atomic.AddUint64(&s.BroadcastMessages, 1)
}

// IncrementDroppedClients counts a client pruned after a failed write.
func (s *Stats) IncrementDroppedClients() {
	atomic.AddUint64(&s.DroppedClients, 1)
}

// SetActiveClients records the current number of connected clients.
func (s *Stats) SetActiveClients(count uint64) {
	atomic.StoreUint64(&s.ActiveClients, count)
}

// UpdateLastMessageTime stamps the most recent message arrival.
func (s *Stats) UpdateLastMessageTime() {
	s.mu.Lock()
	s.LastMessageTime = time.Now()
	s.mu.Unlock()
}

// GetStats returns a copy of the current statistics.
func (s *Stats) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"total_lines":        atomic.LoadUint64(&s.TotalLines),
		"parsed_lines":       atomic.LoadUint64(&s.ParsedLines),
		"failed_lines":       atomic.LoadUint64(&s.FailedLines),
		"interpolations":     atomic.LoadUint64(&s.Interpolations),
		"broadcast_messages": atomic.LoadUint64(&s.BroadcastMessages),
		"dropped_clients":    atomic.LoadUint64(&s.DroppedClients),
		"active_clients":     atomic.LoadUint64(&s.ActiveClients),
		"last_message_time":  s.LastMessageTime,
	}
}

// String returns a string representation of the statistics.
func (s *Stats) String() string {
	stats := s.GetStats()
	return fmt.Sprintf(
		"Total Lines: %d\n"+
			"Parsed Lines: %d\n"+
			"Failed Lines: %d\n"+
			"Interpolations: %d\n"+
			"Broadcast Messages: %d\n"+
			"Dropped Clients: %d\n"+
			"Active Clients: %d\n"+
			"Last Message Time: %s",
		stats["total_lines"],
		stats["parsed_lines"],
		stats["failed_lines"],
		stats["interpolations"],
		stats["broadcast_messages"],
		stats["dropped_clients"],
		stats["active_clients"],
		stats["last_message_time"],
	)
}

// StartLogging logs the statistics at the given interval until the context is
// cancelled.
func (s *Stats) StartLogging(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Printf("stats:\n%s", s)
		}
	}
}
