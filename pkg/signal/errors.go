package signal

import (
	"errors"
	"fmt"
)

// InvalidArgumentError is returned when a caller passes a malformed
// argument, such as an empty signal name or a nil emitter.
type InvalidArgumentError struct {
	Argument string
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Argument, e.Reason)
}

// UnknownSignalError is returned when connect or emit references an
// (emitter, signal) pair that was never declared.
type UnknownSignalError struct {
	Emitter string
	Signal  string
}

func (e *UnknownSignalError) Error() string {
	return fmt.Sprintf("signal %q is not declared on emitter %s", e.Signal, e.Emitter)
}

// UnknownSlotError is returned when ConnectMethod names a method that does
// not exist on the receiver at bind time.
type UnknownSlotError struct {
	Receiver string
	Slot     string
}

func (e *UnknownSlotError) Error() string {
	return fmt.Sprintf("receiver %s has no method %q", e.Receiver, e.Slot)
}

// SlotInvocationError wraps a failure raised by one bound slot during
// dispatch. Emit collects one per failed slot and returns them joined.
type SlotInvocationError struct {
	Emitter string
	Signal  string
	Slot    string
	Cause   error
}

func (e *SlotInvocationError) Error() string {
	return fmt.Sprintf("slot %s failed handling signal %q from %s: %v",
		e.Slot, e.Signal, e.Emitter, e.Cause)
}

func (e *SlotInvocationError) Unwrap() error { return e.Cause }

// IsInvalidArgument returns true if the error is an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}

// IsUnknownSignal returns true if the error is an UnknownSignalError.
func IsUnknownSignal(err error) bool {
	var target *UnknownSignalError
	return errors.As(err, &target)
}

// IsUnknownSlot returns true if the error is an UnknownSlotError.
func IsUnknownSlot(err error) bool {
	var target *UnknownSlotError
	return errors.As(err, &target)
}

// IsSlotInvocation returns true if the error is or contains a
// SlotInvocationError.
func IsSlotInvocation(err error) bool {
	var target *SlotInvocationError
	return errors.As(err, &target)
}
