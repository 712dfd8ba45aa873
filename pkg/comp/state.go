package comp

import "github.com/tpresley/todomvc-cycle/pkg/stream"

// A ReducerFunc is the value carried on the state sink. The state owner
// applies it to the current state to get the new state; reporting false
// leaves the state untouched and suppresses the emission.
type ReducerFunc func(state any) (any, bool)

// A StateStore owns the authoritative state at the root of a component tree.
// It applies reductions arriving on the root's state sink strictly in
// emission order and publishes each new state on a remembered stream, which
// serves as the root component's state source.
type StateStore struct {
	cur any
	out *stream.Stream[any]
}

// NewStateStore creates a store holding initial. The initial value is the
// first emission of Source.
func NewStateStore(lp *stream.Loop, initial any) *StateStore {
	st := &StateStore{cur: initial, out: stream.New[any](lp).Remember()}
	st.out.Emit(initial)
	return st
}

// Source returns the remembered stream of state values.
func (st *StateStore) Source() *stream.Stream[any] { return st.out }

// Current returns the latest state.
func (st *StateStore) Current() any { return st.cur }

// Watch subscribes the store to a state sink.
func (st *StateStore) Watch(sink *stream.Stream[any]) {
	sink.Subscribe(func(v any) {
		rf, ok := v.(ReducerFunc)
		if !ok {
			logger.Printf("state sink carried %T, want ReducerFunc", v)
			return
		}
		newState, ok := applyReducer(st.cur, rf)
		if !ok {
			return
		}
		st.cur = newState
		st.out.Emit(newState)
	})
}

// applyReducer applies rf to cur, turning a panic into an abort.
func applyReducer(cur any, rf ReducerFunc) (v any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("state reducer panicked: %v", r)
			v, ok = cur, false
		}
	}()
	return rf(cur)
}
