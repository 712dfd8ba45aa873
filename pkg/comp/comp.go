// Package comp implements the component engine.
//
// A component turns named event sources ("intents") into typed actions,
// broadcasts them on a per-instance bus, and routes them through a handler
// table that produces one effect stream per named sink: state reducers for
// the state sink, command values for everything else, and a debounced view
// snapshot for the view sink. Components nest: a parent merges its children's
// sink streams with its own and feeds their view values into its own view
// function. State is scoped down the tree with lenses (Isolate), and dynamic
// lists of children are managed by Collection.
//
// Everything runs on a single stream.Loop; the engine performs no I/O of its
// own. Feeding sinks to the outside world and feeding source events back in
// is the embedder's job (see pkg/run).
package comp

import "github.com/tpresley/todomvc-cycle/pkg/logutil"

var logger = logutil.GetLogger("[comp] ")

// An Action is a named message describing something that happened, carrying
// optional payload data. Actions are immutable once emitted.
type Action struct {
	Type string
	Data any
}

// Next schedules a follow-up action on the bus of the component whose handler
// received it. It may be called zero or more times per handler invocation;
// the follow-up is delivered strictly after the current action's delivery
// completes, so a handler never observes its own not-yet-applied effects.
type Next func(typ string, data any)

// Action types the engine injects itself.
const (
	// Bootstrap is delivered to every component instance exactly once,
	// before any other action, one turn after the instance is built.
	Bootstrap = "BOOTSTRAP"
	// Initialize carries Spec.Initial and follows Bootstrap. Unless the
	// handler table overrides it, it replaces the component's state with the
	// carried value.
	Initialize = "INITIALIZE"
)

// Reserved sink names.
const (
	// StateSink is the distinguished sink carrying state reducers, and the
	// source name carrying the component's scoped state stream.
	StateSink = "state"
	// ViewSink carries the component's render snapshots.
	ViewSink = "view"
)
