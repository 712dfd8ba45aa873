package comp

import (
	"reflect"

	"github.com/tpresley/todomvc-cycle/pkg/stream"
)

// A Lens scopes parent state down to child state.
type Lens interface {
	// Extract returns the child state contained in parent. For a given
	// parent value it must always return the same value, so that unchanged
	// sub-state can be recognized and skipped.
	Extract(parent any) any
	// Merge returns a new parent with the child state folded back in. It
	// must not mutate either argument.
	Merge(parent, child any) any
}

// LensOf makes a Lens from a typed getter and setter.
func LensOf[P, C any](get func(P) C, put func(P, C) P) Lens {
	return funcLens{
		get: func(parent any) any {
			p, _ := parent.(P)
			return get(p)
		},
		put: func(parent, child any) any {
			p, _ := parent.(P)
			c, _ := child.(C)
			return put(p, c)
		},
	}
}

type funcLens struct {
	get func(any) any
	put func(any, any) any
}

func (l funcLens) Extract(parent any) any      { return l.get(parent) }
func (l funcLens) Merge(parent, child any) any { return l.put(parent, child) }

// Key returns a lens into one key of a map[string]any state.
func Key(name string) Lens { return keyLens(name) }

type keyLens string

func (l keyLens) Extract(parent any) any {
	m, _ := parent.(map[string]any)
	return m[string(l)]
}

func (l keyLens) Merge(parent, child any) any {
	m, _ := parent.(map[string]any)
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[string(l)] = child
	return out
}

// Identity is the lens that scopes nothing: the child sees and replaces the
// whole parent state.
var Identity Lens = identityLens{}

type identityLens struct{}

func (identityLens) Extract(parent any) any      { return parent }
func (identityLens) Merge(parent, child any) any { return child }

// A Scoper is a source that can derive a namespaced variant of itself. The
// view driver's facade is one; Isolate scopes every source that implements
// it, so that sibling components cannot observe each other's elements.
type Scoper interface {
	Scope(name string) any
}

// Isolate wraps a factory so that instances see the parent state through l
// and every Scoper source scoped under scope. State reductions the instance
// emits are rewrapped to apply to the parent state through the lens.
func Isolate(f Factory, scope string, l Lens) Factory {
	return func(src Sources) (Sinks, error) {
		parent, err := stateSource(src)
		if err != nil {
			return nil, err
		}
		lp := parent.Loop()
		child := make(Sources, len(src))
		for name, s := range src {
			if name == StateSink {
				continue
			}
			if sc, ok := s.(Scoper); ok {
				child[name] = sc.Scope(scope)
			} else {
				child[name] = s
			}
		}
		child[StateSink] = scopedState(lp, parent, l)
		sinks, err := f(child)
		if err != nil {
			return nil, err
		}
		if st, ok := sinks[StateSink]; ok {
			wrapped := stream.New[any](lp)
			st.Subscribe(func(v any) {
				rf, ok := v.(ReducerFunc)
				if !ok {
					logger.Printf("state sink carried %T, want ReducerFunc", v)
					return
				}
				wrapped.Emit(lensReducer(l, rf))
			})
			sinks[StateSink] = wrapped
		}
		return sinks, nil
	}
}

// scopedState derives the child state stream: parent emissions mapped
// through Extract, skipping values identical to the last one extracted.
func scopedState(lp *stream.Loop, parent *stream.Stream[any], l Lens) *stream.Stream[any] {
	out := stream.New[any](lp).Remember()
	var last any
	var has bool
	parent.Subscribe(func(v any) {
		c := l.Extract(v)
		if has && same(c, last) {
			return
		}
		last, has = c, true
		out.Emit(c)
	})
	return out
}

// lensReducer lifts a child state reduction to a parent one.
func lensReducer(l Lens, rf ReducerFunc) ReducerFunc {
	return func(parent any) (any, bool) {
		child, ok := rf(l.Extract(parent))
		if !ok {
			return parent, false
		}
		return l.Merge(parent, child), true
	}
}

// same reports whether a and b are the same value: identical references for
// reference kinds, equal values for comparable types. It never panics on
// uncomparable operands; for those it errs towards false.
func same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && (va.Len() == 0 || va.Pointer() == vb.Pointer())
	case reflect.Map, reflect.Ptr, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}
	if va.Type().Comparable() {
		return a == b
	}
	return false
}
