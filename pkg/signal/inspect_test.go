package signal

import (
	"testing"
)

func TestInspect_Listing(t *testing.T) {
	em := &pinger{name: "orders"}
	bus := newDeclaredBus(t, em, "orderPlaced", "orderCancelled")
	rec := &recorder{name: "payments"}

	if _, err := bus.ConnectMethod(em, "orderPlaced", rec, "OnPing"); err != nil {
		t.Fatal(err)
	}
	if _, err := bus.Connect(em, "orderPlaced", func(args ...any) error { return nil }); err != nil {
		t.Fatal(err)
	}

	info, ok := bus.Inspect(em)
	if !ok {
		t.Fatal("expected emitter to be present")
	}
	if info.Emitter != "orders" {
		t.Fatalf("expected emitter label from Stringer, got %q", info.Emitter)
	}
	if len(info.Signals) != 2 {
		t.Fatalf("expected 2 signals, got %d", len(info.Signals))
	}
	// Sorted by name: orderCancelled first.
	if info.Signals[0].Name != "orderCancelled" || len(info.Signals[0].Bindings) != 0 {
		t.Fatalf("unexpected first signal: %+v", info.Signals[0])
	}
	placed := info.Signals[1]
	if placed.Name != "orderPlaced" || len(placed.Bindings) != 2 {
		t.Fatalf("unexpected orderPlaced listing: %+v", placed)
	}
	// Bindings keep connection order: the method binding came first.
	if placed.Bindings[0].Receiver == "" {
		t.Fatalf("expected method binding first, got %+v", placed.Bindings[0])
	}
	if placed.Bindings[0].ID == "" || placed.Bindings[0].ConnectedAt.IsZero() {
		t.Fatalf("binding metadata missing: %+v", placed.Bindings[0])
	}
}

func TestInspect_UnknownEmitter(t *testing.T) {
	bus := New()
	if _, ok := bus.Inspect(&pinger{name: "ghost"}); ok {
		t.Fatal("expected ok=false for unregistered emitter")
	}
	if _, ok := bus.Inspect(nil); ok {
		t.Fatal("expected ok=false for nil emitter")
	}
}

func TestInspectAll_SortedStable(t *testing.T) {
	bus := New()
	b := &pinger{name: "bravo"}
	a := &pinger{name: "alpha"}
	for _, em := range []*pinger{b, a} {
		if err := bus.Declare(em, "finished"); err != nil {
			t.Fatal(err)
		}
	}

	infos := bus.InspectAll()
	if len(infos) != 2 {
		t.Fatalf("expected 2 emitters, got %d", len(infos))
	}
	if infos[0].Emitter != "alpha" || infos[1].Emitter != "bravo" {
		t.Fatalf("expected name-sorted output, got %q then %q", infos[0].Emitter, infos[1].Emitter)
	}
}
