package signal

import (
	"context"
	"fmt"
	"testing"
)

func BenchmarkEmit_SingleSlot(b *testing.B) {
	em := &pinger{name: "bench"}
	bus := New()
	if err := bus.Declare(em, "ping"); err != nil {
		b.Fatal(err)
	}
	if _, err := bus.Connect(em, "ping", func(args ...any) error { return nil }); err != nil {
		b.Fatal(err)
	}

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := bus.Emit(ctx, em, "ping", i); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEmit_FanOut(b *testing.B) {
	for _, slots := range []int{4, 16, 64} {
		b.Run(fmt.Sprintf("slots-%d", slots), func(b *testing.B) {
			em := &pinger{name: "bench"}
			bus := New()
			if err := bus.Declare(em, "ping"); err != nil {
				b.Fatal(err)
			}
			for i := 0; i < slots; i++ {
				if _, err := bus.Connect(em, "ping", func(args ...any) error { return nil }); err != nil {
					b.Fatal(err)
				}
			}

			ctx := context.Background()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := bus.Emit(ctx, em, "ping", i); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEmit_MethodSlot(b *testing.B) {
	em := &pinger{name: "bench"}
	bus := New()
	if err := bus.Declare(em, "ping"); err != nil {
		b.Fatal(err)
	}
	rec := &recorder{}
	if _, err := bus.ConnectMethod(em, "ping", rec, "OnPing"); err != nil {
		b.Fatal(err)
	}

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := bus.Emit(ctx, em, "ping", i); err != nil {
			b.Fatal(err)
		}
	}
}
