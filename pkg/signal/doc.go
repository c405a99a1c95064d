// Package signal provides the signal-slot dispatch bus at the heart of
// Wirebus.
//
// Emitters declare named signals on a Bus, wiring code connects receiver
// methods or free callbacks to them, and at runtime an emitter raises a
// signal with Emit. The bus resolves the name to the ordered list of
// bindings and invokes every slot synchronously, on the calling goroutine,
// in connection order.
//
// The bus is an explicit dependency: construct one with New and pass it to
// the objects that need it. There is no package-level bus, so tests can
// create isolated instances.
//
// Delivery semantics:
//   - Dispatch iterates a snapshot of the binding list taken at the start
//     of the Emit call. A slot may connect, disconnect, or emit on the same
//     bus while a dispatch is in flight without corrupting it.
//   - A failing slot (returned error or recovered panic) never suppresses
//     delivery to the remaining slots. Failures are wrapped in
//     SlotInvocationError and returned from Emit as a joined error.
//   - A slow synchronous slot blocks the emitting goroutine. Receivers that
//     need to do real work should hand it to a worker pool and raise a
//     follow-up signal when done.
package signal
