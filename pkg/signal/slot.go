package signal

import "fmt"

// Slot adapts a typed single-payload handler to the dynamic SlotFunc
// shape. It gives pipeline wiring compile-time payload checking while the
// bus itself stays string-keyed; a payload of the wrong dynamic type is
// reported as a per-slot dispatch error.
func Slot[T any](fn func(T) error) SlotFunc {
	return func(args ...any) error {
		if len(args) != 1 {
			return fmt.Errorf("typed slot wants exactly 1 argument, emit carried %d", len(args))
		}
		v, ok := args[0].(T)
		if !ok {
			var want T
			return fmt.Errorf("typed slot wants %T payload, emit carried %T", want, args[0])
		}
		return fn(v)
	}
}

// SlotNoErr adapts a typed handler without an error return.
func SlotNoErr[T any](fn func(T)) SlotFunc {
	return Slot(func(v T) error {
		fn(v)
		return nil
	})
}
