// Package events fans bus activity out to in-process subscribers, such
// as the websocket event tap.
package events

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wirebus/wirebus/pkg/signal"
)

// Event is the canonical event payload broadcast to subscribers.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// Broadcaster broadcasts events to in-process subscribers. A token
// bucket caps broadcast throughput; events over the limit are dropped
// so a signal storm cannot back up into the bus.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	limiter     *rate.Limiter

	dropped int64
}

// Config controls broadcaster behavior.
type Config struct {
	// RatePerSec caps broadcast throughput. Zero disables the cap.
	RatePerSec float64
	// Burst is the token bucket burst size.
	Burst int
}

// NewBroadcaster creates a broadcaster instance.
func NewBroadcaster(cfg Config) *Broadcaster {
	var limiter *rate.Limiter
	if cfg.RatePerSec > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst)
	}
	return &Broadcaster{
		subscribers: make(map[chan Event]struct{}),
		limiter:     limiter,
	}
}

// Subscribe subscribes to events with a buffered channel.
func (b *Broadcaster) Subscribe(buffer int) chan Event {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; !ok {
		return
	}
	delete(b.subscribers, ch)
	close(ch)
}

// Broadcast delivers an event to all subscribers. Slow subscribers and
// rate-limit overflow both drop the event rather than block.
func (b *Broadcaster) Broadcast(event Event) {
	if b.limiter != nil && !b.limiter.Allow() {
		b.mu.Lock()
		b.dropped++
		b.mu.Unlock()
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	// Channels are closed only under the write lock, so sending under
	// the read lock cannot race a close.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Dropped returns the number of events dropped by the rate limiter.
func (b *Broadcaster) Dropped() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// OnBusEvent implements signal.Observer, translating bus activity into
// broadcast events. Register the broadcaster with Bus.Observe to feed
// the websocket tap.
func (b *Broadcaster) OnBusEvent(ev signal.Event) {
	payload := map[string]any{
		"emitter": ev.Emitter,
		"signal":  ev.Signal,
	}
	if ev.Slot != "" {
		payload["slot"] = ev.Slot
	}
	if ev.Kind == signal.EventEmitted {
		payload["bindings"] = ev.Bindings
		payload["failures"] = ev.Failures
	}
	if ev.Error != "" {
		payload["error"] = ev.Error
	}

	b.Broadcast(Event{
		Type:      "bus." + ev.Kind.String(),
		Timestamp: ev.Timestamp,
		Payload:   payload,
	})
}

// Close closes all subscriber channels.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, ch)
	}
}
