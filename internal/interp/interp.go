// Package interp dead-reckons target telemetry between samples, decoupling
// the slow telemetry arrival rate from an arbitrarily fast consumer loop.
package interp

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saviobatista/pointing-sim/internal/types"
)

// Subscriber receives every republished telemetry sample.
type Subscriber func(types.TargetInfoMessage)

type sample struct {
	at  time.Time
	msg types.TargetInfoMessage
}

// TargetInterpolator tracks the most recent telemetry sample and, on each
// Interpolate call, republishes a linearly extrapolated sample to all
// registered subscribers.
type TargetInterpolator struct {
	mu   sync.Mutex
	last *sample
	subs map[string]Subscriber

	now func() time.Time
}

// New creates an interpolator with no sample and no subscribers.
func New() *TargetInterpolator {
	return &TargetInterpolator{
		subs: make(map[string]Subscriber),
		now:  time.Now,
	}
}

// Subscribe registers a subscriber and returns its registry ID.
func (t *TargetInterpolator) Subscribe(fn Subscriber) string {
	id := uuid.New().String()
	t.mu.Lock()
	t.subs[id] = fn
	t.mu.Unlock()
	return id
}

// Unsubscribe removes a subscriber. Unknown IDs are ignored, so a subscriber
// that is already gone never causes a failure.
func (t *TargetInterpolator) Unsubscribe(id string) {
	t.mu.Lock()
	delete(t.subs, id)
	t.mu.Unlock()
}

// Notify replaces the stored sample, stamped with the reception time, and
// republishes the exact sample without extrapolation.
func (t *TargetInterpolator) Notify(msg types.TargetInfoMessage) {
	t.mu.Lock()
	t.last = &sample{at: t.now(), msg: msg}
	t.mu.Unlock()

	t.publish(msg)
}

// Interpolate republishes the last sample with its position dead-reckoned by
// the time elapsed since reception; velocity and track are carried through
// unchanged. Safe to call at any rate; a no-op while no sample has arrived.
func (t *TargetInterpolator) Interpolate() {
	t.mu.Lock()
	if t.last == nil {
		t.mu.Unlock()
		return
	}
	dt := t.now().Sub(t.last.at).Seconds()
	msg := t.last.msg
	t.mu.Unlock()

	msg.Position = msg.Position.Add(msg.Velocity.Scale(dt))
	t.publish(msg)
}

// publish calls every subscriber with the sample. The subscriber list is
// snapshotted first so no lock is held across the callbacks.
func (t *TargetInterpolator) publish(msg types.TargetInfoMessage) {
	t.mu.Lock()
	subs := make([]Subscriber, 0, len(t.subs))
	for _, fn := range t.subs {
		subs = append(subs, fn)
	}
	t.mu.Unlock()

	for _, fn := range subs {
		fn(msg)
	}
}
