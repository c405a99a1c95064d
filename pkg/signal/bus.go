package signal

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wirebus/wirebus/pkg/logger"
)

// Bus is the central signal-slot registry: emitter identity -> declared
// signal names -> ordered binding lists. All methods are safe for
// concurrent use.
type Bus struct {
	mu       sync.Mutex
	emitters map[any]*emitterEntry
	log      logger.Logger
	tracer   trace.Tracer
	observer *observerSet
}

type emitterEntry struct {
	name    string
	signals map[string][]*binding
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(log logger.Logger) Option {
	return func(b *Bus) { b.log = log }
}

// WithTracer enables an OpenTelemetry span around each Emit call.
func WithTracer(tracer trace.Tracer) Option {
	return func(b *Bus) { b.tracer = tracer }
}

// WithObserver registers an observer at construction time.
func WithObserver(o Observer) Option {
	return func(b *Bus) { b.observer.add(o) }
}

// New creates an empty Bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		emitters: make(map[any]*emitterEntry),
		log:      logger.Global(),
		observer: newObserverSet(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Declare registers a signal name for the given emitter. Declaring the
// same (emitter, name) pair twice is a no-op. The emitter is keyed by
// identity: two distinct objects never alias one registration.
func (b *Bus) Declare(emitter any, name string) error {
	if err := checkEmitter(emitter); err != nil {
		return err
	}
	if err := checkSignalName(name); err != nil {
		return err
	}

	b.mu.Lock()
	entry, ok := b.emitters[emitter]
	if !ok {
		entry = &emitterEntry{
			name:    describe(emitter),
			signals: make(map[string][]*binding),
		}
		b.emitters[emitter] = entry
	}
	_, declared := entry.signals[name]
	if !declared {
		entry.signals[name] = nil
	}
	emitterName := entry.name
	b.mu.Unlock()

	if !declared {
		metricsRecorder().RecordDeclare(name)
		b.observer.notify(Event{Kind: EventDeclared, Emitter: emitterName, Signal: name})
	}
	return nil
}

// Connect binds a free callback to a declared signal and returns a handle
// for later Disconnect. Every call appends a new binding: callbacks carry
// no identity, so the bus cannot deduplicate them.
func (b *Bus) Connect(emitter any, name string, fn SlotFunc) (Handle, error) {
	if fn == nil {
		return Handle{}, &InvalidArgumentError{Argument: "slot", Reason: "callback cannot be nil"}
	}
	return b.connect(emitter, name, &binding{
		signal:   name,
		slotName: callbackName(fn),
		invoke:   fn,
	})
}

// ConnectMethod binds receiver's named method to a declared signal. The
// method is resolved at connect time; a missing method fails with
// UnknownSlotError. Connecting the same (emitter, signal, receiver,
// method) tuple twice is a no-op that returns the existing handle, so
// double wiring never causes double delivery.
func (b *Bus) ConnectMethod(emitter any, name string, receiver any, method string) (Handle, error) {
	if err := checkReceiver(receiver); err != nil {
		return Handle{}, err
	}
	invoke, err := methodSlot(receiver, method)
	if err != nil {
		return Handle{}, err
	}
	return b.connect(emitter, name, &binding{
		signal:   name,
		receiver: receiver,
		slotName: fmt.Sprintf("%s.%s", describe(receiver), method),
		invoke:   invoke,
	})
}

func (b *Bus) connect(emitter any, name string, bd *binding) (Handle, error) {
	if err := checkEmitter(emitter); err != nil {
		return Handle{}, err
	}
	if err := checkSignalName(name); err != nil {
		return Handle{}, err
	}

	b.mu.Lock()
	entry, ok := b.emitters[emitter]
	if !ok {
		b.mu.Unlock()
		return Handle{}, &UnknownSignalError{Emitter: describe(emitter), Signal: name}
	}
	list, declared := entry.signals[name]
	if !declared {
		b.mu.Unlock()
		return Handle{}, &UnknownSignalError{Emitter: entry.name, Signal: name}
	}

	// Method bindings deduplicate on the (emitter, signal, receiver,
	// method) tuple.
	if bd.receiver != nil {
		for _, existing := range list {
			if existing.receiver == bd.receiver && existing.slotName == bd.slotName {
				h := Handle{id: existing.id, emitter: emitter, signal: name}
				b.mu.Unlock()
				return h, nil
			}
		}
	}

	bd.id = uuid.NewString()
	bd.connectedAt = time.Now().UTC()
	entry.signals[name] = append(list, bd)
	emitterName := entry.name
	b.mu.Unlock()

	metricsRecorder().RecordConnect(name)
	b.observer.notify(Event{Kind: EventConnected, Emitter: emitterName, Signal: name, Slot: bd.slotName})
	return Handle{id: bd.id, emitter: emitter, signal: name}, nil
}

// Disconnect removes the binding identified by the handle. Disconnecting a
// zero-value, unknown, or already-removed handle is a safe no-op.
func (b *Bus) Disconnect(h Handle) {
	if h.id == "" || h.emitter == nil {
		return
	}

	b.mu.Lock()
	entry, ok := b.emitters[h.emitter]
	if !ok {
		b.mu.Unlock()
		return
	}
	list := entry.signals[h.signal]
	var removed *binding
	for i, bd := range list {
		if bd.id == h.id {
			removed = bd
			entry.signals[h.signal] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	emitterName := entry.name
	b.mu.Unlock()

	if removed != nil {
		metricsRecorder().RecordDisconnect(h.signal)
		b.observer.notify(Event{Kind: EventDisconnected, Emitter: emitterName, Signal: h.signal, Slot: removed.slotName})
	}
}

// DisconnectReceiver removes every binding across the whole bus whose
// receiver is the given object, and returns the number removed. This is
// the teardown contract for receivers about to be discarded: the bus holds
// receivers strongly, so a forgotten binding would otherwise keep the
// object reachable and invocable.
func (b *Bus) DisconnectReceiver(receiver any) int {
	// Non-comparable receivers can never have been bound; comparing
	// them against stored bindings would panic.
	if checkReceiver(receiver) != nil {
		return 0
	}

	type droppedBinding struct {
		emitter string
		signal  string
		slot    string
	}
	var dropped []droppedBinding

	b.mu.Lock()
	for _, entry := range b.emitters {
		for name, list := range entry.signals {
			kept := list[:0:0]
			for _, bd := range list {
				if bd.receiver == receiver {
					dropped = append(dropped, droppedBinding{emitter: entry.name, signal: name, slot: bd.slotName})
					continue
				}
				kept = append(kept, bd)
			}
			entry.signals[name] = kept
		}
	}
	b.mu.Unlock()

	for _, d := range dropped {
		metricsRecorder().RecordDisconnect(d.signal)
		b.observer.notify(Event{Kind: EventDisconnected, Emitter: d.emitter, Signal: d.signal, Slot: d.slot})
	}
	return len(dropped)
}

// Remove drops an emitter's declarations and all bindings on its signals.
// Removing an unknown emitter is a no-op. This is the emitter-side
// teardown contract; the bus never relies on garbage collection to forget
// an emitter.
func (b *Bus) Remove(emitter any) {
	if emitter == nil {
		return
	}

	b.mu.Lock()
	entry, ok := b.emitters[emitter]
	if ok {
		delete(b.emitters, emitter)
	}
	b.mu.Unlock()

	if ok {
		b.observer.notify(Event{Kind: EventEmitterRemoved, Emitter: entry.name})
	}
}

// Emit synchronously delivers the signal to every bound slot, in
// connection order, on the calling goroutine. Dispatch iterates a snapshot
// of the binding list taken here, so reentrant connect/disconnect/emit
// from inside a slot cannot corrupt or reorder this delivery.
//
// Emitting an undeclared signal fails with UnknownSignalError: an emit
// that silently vanishes is a bug factory, so misdeclaration surfaces
// immediately. Emitting a declared signal with zero bindings is a no-op.
//
// Slot failures do not stop the fan-out. Each failing slot contributes a
// SlotInvocationError and Emit returns them joined; errors.As and the Is*
// helpers unwrap them.
func (b *Bus) Emit(ctx context.Context, emitter any, name string, args ...any) error {
	if err := checkEmitter(emitter); err != nil {
		return err
	}
	if err := checkSignalName(name); err != nil {
		return err
	}

	b.mu.Lock()
	entry, ok := b.emitters[emitter]
	if !ok {
		b.mu.Unlock()
		metricsRecorder().RecordEmitRejected(name, "unknown_emitter")
		return &UnknownSignalError{Emitter: describe(emitter), Signal: name}
	}
	list, declared := entry.signals[name]
	if !declared {
		b.mu.Unlock()
		metricsRecorder().RecordEmitRejected(name, "undeclared_signal")
		return &UnknownSignalError{Emitter: entry.name, Signal: name}
	}
	snapshot := append([]*binding(nil), list...)
	emitterName := entry.name
	b.mu.Unlock()

	start := time.Now()
	ctx, span := b.startSpan(ctx, emitterName, name, len(snapshot))

	var errs []error
	for _, bd := range snapshot {
		if err := invokeSlot(bd, args); err != nil {
			inv := &SlotInvocationError{Emitter: emitterName, Signal: name, Slot: bd.slotName, Cause: err}
			errs = append(errs, inv)
			metricsRecorder().RecordSlotFailure(name, failureReason(err))
			b.observer.notify(Event{Kind: EventSlotFailed, Emitter: emitterName, Signal: name, Slot: bd.slotName, Error: err.Error()})
			b.log.WarnContext(ctx, "slot invocation failed",
				"emitter", emitterName,
				"signal", name,
				"slot", bd.slotName,
				"error", err,
			)
		}
	}

	metricsRecorder().RecordEmit(name, len(snapshot), time.Since(start))
	b.observer.notify(Event{Kind: EventEmitted, Emitter: emitterName, Signal: name, Bindings: len(snapshot), Failures: len(errs)})

	if span != nil {
		if len(errs) > 0 {
			span.SetStatus(codes.Error, fmt.Sprintf("%d of %d slots failed", len(errs), len(snapshot)))
		}
		span.End()
	}
	return errors.Join(errs...)
}

// invokeSlot calls one slot with panic isolation, so a panicking
// subscriber degrades to a per-slot error instead of unwinding the
// emitter.
func invokeSlot(bd *binding, args []any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("slot panicked: %v", r)
		}
	}()
	return bd.invoke(args...)
}

func (b *Bus) startSpan(ctx context.Context, emitterName, name string, bindings int) (context.Context, trace.Span) {
	if b.tracer == nil {
		return ctx, nil
	}
	return b.tracer.Start(ctx, "signal.emit",
		trace.WithAttributes(
			attribute.String("signal.emitter", emitterName),
			attribute.String("signal.name", name),
			attribute.Int("signal.bindings", bindings),
		),
	)
}

// Observe registers an observer for bus lifecycle events. Observers are
// invoked synchronously and must not block; buffer and drop on the
// observer side if needed.
func (b *Bus) Observe(o Observer) {
	b.observer.add(o)
}

// Unobserve removes a previously registered observer.
func (b *Bus) Unobserve(o Observer) {
	b.observer.remove(o)
}

// Stats summarizes the registry for health reporting.
type Stats struct {
	Emitters int `json:"emitters"`
	Signals  int `json:"signals"`
	Bindings int `json:"bindings"`
}

// Stats returns current registry counts.
func (b *Bus) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	var s Stats
	s.Emitters = len(b.emitters)
	for _, entry := range b.emitters {
		s.Signals += len(entry.signals)
		for _, list := range entry.signals {
			s.Bindings += len(list)
		}
	}
	return s
}

func checkEmitter(emitter any) error {
	if emitter == nil {
		return &InvalidArgumentError{Argument: "emitter", Reason: "cannot be nil"}
	}
	if !reflect.TypeOf(emitter).Comparable() {
		return &InvalidArgumentError{Argument: "emitter", Reason: "must be an identity-bearing (comparable) value; pass a pointer"}
	}
	return nil
}

// checkReceiver mirrors checkEmitter: bindings deduplicate and tear
// down by receiver identity, so the receiver must be comparable or the
// == against stored bindings panics.
func checkReceiver(receiver any) error {
	if receiver == nil {
		return &InvalidArgumentError{Argument: "receiver", Reason: "cannot be nil"}
	}
	if !reflect.TypeOf(receiver).Comparable() {
		return &InvalidArgumentError{Argument: "receiver", Reason: "must be an identity-bearing (comparable) value; pass a pointer"}
	}
	return nil
}

func checkSignalName(name string) error {
	if name == "" {
		return &InvalidArgumentError{Argument: "signal name", Reason: "cannot be empty"}
	}
	return nil
}

func failureReason(err error) string {
	if err == nil {
		return "unknown"
	}
	var inv *SlotInvocationError
	if errors.As(err, &inv) {
		err = inv.Cause
	}
	if _, ok := err.(interface{ Timeout() bool }); ok {
		return "timeout"
	}
	return "slot_error"
}
