package signal

import (
	"sort"
	"time"
)

// BindingInfo describes one live binding, in connection order.
type BindingInfo struct {
	ID          string    `json:"id"`
	Slot        string    `json:"slot"`
	Receiver    string    `json:"receiver,omitempty"`
	ConnectedAt time.Time `json:"connected_at"`
}

// SignalInfo lists the live bindings of one declared signal.
type SignalInfo struct {
	Name     string        `json:"name"`
	Bindings []BindingInfo `json:"bindings"`
}

// EmitterInfo is the debugging view of one emitter: its declared signals
// and their bindings. Signals are sorted by name; bindings keep connection
// order.
type EmitterInfo struct {
	Emitter string       `json:"emitter"`
	Signals []SignalInfo `json:"signals"`
}

// Inspect returns the current declarations and bindings for one emitter.
// The second return is false when the emitter has never declared anything.
// Read-only; no side effects.
func (b *Bus) Inspect(emitter any) (EmitterInfo, bool) {
	if emitter == nil {
		return EmitterInfo{}, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.emitters[emitter]
	if !ok {
		return EmitterInfo{}, false
	}
	return snapshotEntry(entry), true
}

// InspectAll returns the debugging view of every registered emitter,
// sorted by emitter name for stable output.
func (b *Bus) InspectAll() []EmitterInfo {
	b.mu.Lock()
	defer b.mu.Unlock()

	infos := make([]EmitterInfo, 0, len(b.emitters))
	for _, entry := range b.emitters {
		infos = append(infos, snapshotEntry(entry))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Emitter < infos[j].Emitter })
	return infos
}

// snapshotEntry is called with the bus mutex held.
func snapshotEntry(entry *emitterEntry) EmitterInfo {
	info := EmitterInfo{
		Emitter: entry.name,
		Signals: make([]SignalInfo, 0, len(entry.signals)),
	}
	for name, list := range entry.signals {
		si := SignalInfo{Name: name, Bindings: make([]BindingInfo, 0, len(list))}
		for _, bd := range list {
			bi := BindingInfo{
				ID:          bd.id,
				Slot:        bd.slotName,
				ConnectedAt: bd.connectedAt,
			}
			if bd.receiver != nil {
				bi.Receiver = describe(bd.receiver)
			}
			si.Bindings = append(si.Bindings, bi)
		}
		info.Signals = append(info.Signals, si)
	}
	sort.Slice(info.Signals, func(i, j int) bool { return info.Signals[i].Name < info.Signals[j].Name })
	return info
}
