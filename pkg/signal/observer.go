package signal

import (
	"sync"
	"time"
)

// EventKind classifies bus lifecycle events.
type EventKind int

const (
	EventDeclared EventKind = iota
	EventConnected
	EventDisconnected
	EventEmitted
	EventSlotFailed
	EventEmitterRemoved
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventDeclared:
		return "DECLARED"
	case EventConnected:
		return "CONNECTED"
	case EventDisconnected:
		return "DISCONNECTED"
	case EventEmitted:
		return "EMITTED"
	case EventSlotFailed:
		return "SLOT_FAILED"
	case EventEmitterRemoved:
		return "EMITTER_REMOVED"
	default:
		return "UNKNOWN"
	}
}

// Event describes one bus state change, for diagnostics and dashboards.
type Event struct {
	Kind      EventKind
	Emitter   string
	Signal    string
	Slot      string
	Bindings  int
	Failures  int
	Error     string
	Timestamp time.Time
}

// Observer receives bus lifecycle events. Implementations are invoked
// synchronously on the goroutine that mutated the bus and must return
// quickly.
type Observer interface {
	OnBusEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnBusEvent calls the wrapped function.
func (f ObserverFunc) OnBusEvent(ev Event) { f(ev) }

// observerSet holds registered observers. Notification happens outside the
// registry mutex so an observer may call back into the bus.
type observerSet struct {
	mu        sync.RWMutex
	observers []Observer
}

func newObserverSet() *observerSet {
	return &observerSet{}
}

func (s *observerSet) add(o Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

func (s *observerSet) remove(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.observers {
		if existing == o {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}

func (s *observerSet) notify(ev Event) {
	s.mu.RLock()
	observers := s.observers
	s.mu.RUnlock()

	if len(observers) == 0 {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	for _, o := range observers {
		o.OnBusEvent(ev)
	}
}
