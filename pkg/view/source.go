package view

import "github.com/tpresley/todomvc-cycle/pkg/stream"

// Source is the event-side facade of the driver handed to components. A
// scoped Source prefixes every selector it resolves, so the elements of
// sibling components can never observe each other.
type Source struct {
	d      *Driver
	prefix string
}

// Source returns an unscoped facade of the driver.
func (d *Driver) Source() *Source {
	return &Source{d: d}
}

// Scope returns a facade whose selectors are prefixed with name and a
// slash. It implements the scoping hook of the component engine.
func (s *Source) Scope(name string) any {
	return &Source{d: s.d, prefix: s.prefix + name + "/"}
}

// Selector resolves sel to the full selector this facade would use.
func (s *Source) Selector(sel string) string {
	return s.prefix + sel
}

// Select returns a handle on the element named by sel.
func (s *Source) Select(sel string) *Handle {
	return &Handle{d: s.d, sel: s.prefix + sel}
}

// Handle addresses one element of the view.
type Handle struct {
	d   *Driver
	sel string
}

// Events returns the stream of events of the given name on the element.
// Calling it again with the same name returns the same stream.
//
// Input elements emit "input" (string, the text after the edit), "submit"
// (string, the text when Enter was pressed) and "cancel" (nil, Escape).
// Other focusable elements emit "activate" (nil) on Enter or Space.
func (h *Handle) Events(name string) *stream.Stream[any] {
	return h.d.eventStream(h.sel, name)
}
