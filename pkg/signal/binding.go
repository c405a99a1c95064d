package signal

import (
	"fmt"
	"reflect"
	"runtime"
	"time"
)

// SlotFunc is the dynamic shape every slot is invoked through. The argument
// list is a contract between the emitter and its subscribers; the bus does
// not inspect it.
type SlotFunc func(args ...any) error

// Handle identifies one binding for later Disconnect. The zero value is a
// valid no-op handle.
type Handle struct {
	id      string
	emitter any
	signal  string
}

// ID returns the unique binding identifier, or "" for the zero handle.
func (h Handle) ID() string { return h.id }

// Signal returns the signal name the handle is bound to.
func (h Handle) Signal() string { return h.signal }

// binding is one subscription record. The bus owns these; receivers are
// held strongly, so lifetime is managed by explicit Disconnect, Remove, or
// DisconnectReceiver calls.
type binding struct {
	id          string
	signal      string
	receiver    any // nil for free callbacks
	slotName    string
	invoke      SlotFunc
	connectedAt time.Time
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// methodSlot resolves a named method on receiver and wraps it as a
// SlotFunc. Resolution happens at connect time so a misspelled slot name
// surfaces immediately as UnknownSlotError.
func methodSlot(receiver any, method string) (SlotFunc, error) {
	rv := reflect.ValueOf(receiver)
	m := rv.MethodByName(method)
	if !m.IsValid() {
		return nil, &UnknownSlotError{Receiver: describe(receiver), Slot: method}
	}
	mt := m.Type()

	return func(args ...any) error {
		in, err := packArgs(mt, args)
		if err != nil {
			return err
		}
		out := m.Call(in)
		if n := len(out); n > 0 && out[n-1].Type().Implements(errorType) {
			if !out[n-1].IsNil() {
				return out[n-1].Interface().(error)
			}
		}
		return nil
	}, nil
}

// packArgs converts the emitted argument list into reflect call values for
// the slot's signature. Arity and type mismatches are reported as errors so
// dispatch can wrap them per slot instead of panicking the emitter.
func packArgs(mt reflect.Type, args []any) ([]reflect.Value, error) {
	fixed := mt.NumIn()
	if mt.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("slot wants at least %d arguments, emit carried %d", fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("slot wants %d arguments, emit carried %d", fixed, len(args))
	}

	in := make([]reflect.Value, 0, len(args))
	for i, arg := range args {
		var pt reflect.Type
		if i < fixed {
			pt = mt.In(i)
		} else {
			pt = mt.In(mt.NumIn() - 1).Elem()
		}
		v, err := argValue(pt, arg, i)
		if err != nil {
			return nil, err
		}
		in = append(in, v)
	}
	return in, nil
}

func argValue(pt reflect.Type, arg any, pos int) (reflect.Value, error) {
	if arg == nil {
		switch pt.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
			return reflect.Zero(pt), nil
		}
		return reflect.Value{}, fmt.Errorf("argument %d is nil but slot parameter is %s", pos, pt)
	}
	av := reflect.ValueOf(arg)
	if !av.Type().AssignableTo(pt) {
		return reflect.Value{}, fmt.Errorf("argument %d is %s, slot parameter is %s", pos, av.Type(), pt)
	}
	return av, nil
}

// callbackName derives a readable label for a free callback, used by
// inspect output and error messages.
func callbackName(fn SlotFunc) string {
	if fn == nil {
		return "<nil>"
	}
	pc := reflect.ValueOf(fn).Pointer()
	if f := runtime.FuncForPC(pc); f != nil {
		return f.Name()
	}
	return fmt.Sprintf("callback(0x%x)", pc)
}

// describe renders an emitter or receiver for diagnostics. Objects that
// implement fmt.Stringer control their own label.
func describe(v any) string {
	if v == nil {
		return "<nil>"
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return fmt.Sprintf("%T(%p)", v, v)
	}
	return fmt.Sprintf("%T", v)
}
