package stats

import (
	"strings"
	"sync"
	"testing"
)

func TestCountersIncrement(t *testing.T) {
	s := New()

	s.IncrementTotalLines()
	s.IncrementTotalLines()
	s.IncrementParsedLines()
	s.IncrementFailedLines()
	s.IncrementInterpolations()
	s.IncrementBroadcastMessages()
	s.IncrementDroppedClients()
	s.SetActiveClients(3)

	got := s.GetStats()
	want := map[string]uint64{
		"total_lines":        2,
		"parsed_lines":       1,
		"failed_lines":       1,
		"interpolations":     1,
		"broadcast_messages": 1,
		"dropped_clients":    1,
		"active_clients":     3,
	}
	for key, wantVal := range want {
		if got[key] != wantVal {
			t.Errorf("GetStats()[%q] = %v, want %v", key, got[key], wantVal)
		}
	}
}

func TestConcurrentIncrements(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.IncrementTotalLines()
				s.UpdateLastMessageTime()
			}
		}()
	}
	wg.Wait()

	if got := s.GetStats()["total_lines"]; got != uint64(1000) {
		t.Errorf("total_lines = %v, want 1000", got)
	}
}

func TestStringContainsCounters(t *testing.T) {
	s := New()
	s.IncrementBroadcastMessages()

	out := s.String()
	for _, want := range []string{"Total Lines: 0", "Broadcast Messages: 1", "Active Clients: 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q:\n%s", want, out)
		}
	}
}
