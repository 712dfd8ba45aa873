package comp

// handlerKind tags the shape of a Handler.
type handlerKind int

const (
	kindInvalid handlerKind = iota
	kindReduce
	kindCommand
	kindConst
	kindPass
)

// A Handler describes what one (sink, action type) pair contributes when an
// action of that type fires. Handlers are tagged variants built with Reduce,
// Command, Const or Pass; the shape is fixed at construction, and Build
// rejects shapes that don't fit their sink. The zero Handler is invalid.
type Handler struct {
	kind    handlerKind
	reduce  func(state, data any, next Next) (any, bool)
	command func(data any, next Next) (any, bool)
	value   any
}

// Reduce makes a state handler from a typed reducer. The reducer gets the
// current state and the action's data, and returns the new state; returning
// false aborts, leaving state unchanged and emitting nothing. The reducer
// runs when the reduction is applied by the state owner, so follow-ups
// scheduled through next always observe its result.
//
// Valid only on the state sink. If the current state is not an S the reducer
// gets the zero S and a diagnostic is logged.
func Reduce[S any](f func(state S, data any, next Next) (S, bool)) Handler {
	if f == nil {
		return Handler{}
	}
	return Handler{kind: kindReduce, reduce: func(state, data any, next Next) (any, bool) {
		s, ok := state.(S)
		if !ok && state != nil {
			logger.Printf("reducer wants %T, state is %T", s, state)
		}
		newState, ok := f(s, data, next)
		if !ok {
			return state, false
		}
		return newState, true
	}}
}

// Command makes a handler that computes the emitted value from the action's
// data; returning false aborts the emission. Valid on any sink except the
// state sink.
func Command(f func(data any, next Next) (any, bool)) Handler {
	if f == nil {
		return Handler{}
	}
	return Handler{kind: kindCommand, command: f}
}

// Const makes a handler that emits v verbatim whenever the action fires. On
// the state sink it replaces the state with v.
func Const(v any) Handler { return Handler{kind: kindConst, value: v} }

// Pass is the handler that emits the action's data unchanged. On the state
// sink it replaces the state with the data; this is what Initialize does
// unless the table overrides it.
var Pass = Handler{kind: kindPass}

// runCommand invokes a command handler, turning a panic into an abort.
func runCommand(name, sink, typ string, f func(any, Next) (any, bool), data any, next Next) (v any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("%s: handler for (%s, %s) panicked: %v", name, sink, typ, r)
			v, ok = nil, false
		}
	}()
	return f(data, next)
}
