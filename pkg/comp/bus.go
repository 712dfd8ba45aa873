package comp

import "github.com/tpresley/todomvc-cycle/pkg/stream"

// A Bus is an ordered broadcast of actions for one component instance.
//
// Delivery is never re-entrant: an action emitted while an earlier action is
// being delivered (the follow-up case) goes into a mailbox and is delivered
// once the current delivery completes, still within the same scheduling turn.
// All subscribers observe actions in emission order.
type Bus struct {
	out        *stream.Stream[Action]
	mailbox    []Action
	delivering bool
}

// NewBus creates a bus on the given loop.
func NewBus(lp *stream.Loop) *Bus {
	return &Bus{out: stream.New[Action](lp)}
}

// Stream returns the stream of actions delivered through the bus.
func (b *Bus) Stream() *stream.Stream[Action] { return b.out }

// Next returns a Next function bound to the bus.
func (b *Bus) Next() Next {
	return func(typ string, data any) { b.Emit(Action{Type: typ, Data: data}) }
}

// Emit delivers a to all subscribers of the bus's stream. Must be called on
// the loop.
func (b *Bus) Emit(a Action) {
	b.mailbox = append(b.mailbox, a)
	if b.delivering {
		return
	}
	b.delivering = true
	defer func() { b.delivering = false }()
	for len(b.mailbox) > 0 {
		next := b.mailbox[0]
		b.mailbox = b.mailbox[1:]
		b.out.Emit(next)
	}
}
