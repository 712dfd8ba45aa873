package comp

import (
	"fmt"
	"sort"
	"time"

	"github.com/tpresley/todomvc-cycle/pkg/stream"
)

type (
	// Sources hold the named inputs of a component: driver facades, event
	// streams, and the component's state stream under StateSink.
	Sources map[string]any
	// Sinks hold the named output streams of a component instance.
	Sinks map[string]*stream.Stream[any]
	// A Factory builds a component instance from its sources.
	Factory func(Sources) (Sinks, error)
)

// Spec describes a component. The zero value is a valid component that does
// nothing.
type Spec struct {
	// Name identifies the component in diagnostics.
	Name string
	// Intent derives a pre-shaped action stream from the sources. Intents
	// derives named event streams instead; each event becomes an action of
	// that name carrying the event as data. Setting both is a configuration
	// error.
	Intent  func(Sources) *stream.Stream[Action]
	Intents func(Sources) map[string]*stream.Stream[any]
	// On is the handler table: sink name, then action type. The view sink
	// cannot be handled directly; it is computed by View.
	On map[string]map[string]Handler
	// View computes the render value from the component's state and its
	// children's latest views. Nil means the instance emits no views of its
	// own.
	View func(ViewInput) any
	// Children names child factories. A child's view feeds ViewInput;
	// its other sinks merge with the parent's same-named sinks.
	Children map[string]Factory
	// Initial, when non-nil, is delivered in an Initialize action right
	// after Bootstrap.
	Initial any
	// Debounce is the view recomputation window. Zero recomputes at the
	// end of the turn in which an input changed.
	Debounce time.Duration
}

// ViewInput is the argument to Spec.View.
type ViewInput struct {
	State    any
	Children map[string]any
}

// Build assembles a component instance on the loop of its state source.
//
// The returned Sinks have an entry for every source name, every sink named
// in sp.On and by children, plus StateSink and ViewSink; entries not fed by
// any handler never emit. The synthetic Bootstrap and Initialize actions are
// emitted, and the intent streams attached to the bus, one turn after Build
// returns, so that the embedder can subscribe to all sinks first.
func Build(sp Spec, src Sources) (Sinks, error) {
	st, err := stateSource(src)
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", sp.Name, err)
	}
	if sp.Intent != nil && sp.Intents != nil {
		return nil, fmt.Errorf("component %s: both Intent and Intents set", sp.Name)
	}
	table, err := normalizeTable(sp)
	if err != nil {
		return nil, err
	}

	lp := st.Loop()
	bus := NewBus(lp)

	childSinks := make(map[string]Sinks, len(sp.Children))
	childNames := sortedKeys(sp.Children)
	for _, name := range childNames {
		f := sp.Children[name]
		if f == nil {
			return nil, fmt.Errorf("component %s: child %s has nil factory", sp.Name, name)
		}
		sinks, err := f(src)
		if err != nil {
			return nil, fmt.Errorf("component %s: child %s: %w", sp.Name, name, err)
		}
		childSinks[name] = sinks
	}

	out := make(Sinks)
	out[StateSink] = stream.New[any](lp)
	out[ViewSink] = stream.New[any](lp).Remember()
	for name := range src {
		addSink(out, lp, name)
	}
	for name := range table {
		addSink(out, lp, name)
	}
	for _, sinks := range childSinks {
		for name := range sinks {
			if name != ViewSink {
				addSink(out, lp, name)
			}
		}
	}

	for _, sink := range sortedKeys(table) {
		wireSink(sp.Name, bus, sink, table[sink], out[sink])
	}
	for _, name := range childNames {
		for sinkName, s := range childSinks[name] {
			if sinkName == ViewSink {
				continue
			}
			dst := out[sinkName]
			s.Subscribe(func(v any) { dst.Emit(v) })
		}
	}

	r := &renderer{
		lp: lp, name: sp.Name, view: sp.View, out: out[ViewSink],
		debounce: sp.Debounce, children: make(map[string]any),
	}
	for _, name := range childNames {
		if vw, ok := childSinks[name][ViewSink]; ok {
			name := name
			vw.Subscribe(func(v any) { r.setChild(name, v) })
		}
	}
	st.Subscribe(r.setState)

	lp.Defer(func() {
		bus.Emit(Action{Type: Bootstrap})
		if sp.Initial != nil {
			bus.Emit(Action{Type: Initialize, Data: sp.Initial})
		}
		if sp.Intent != nil {
			sp.Intent(src).Subscribe(bus.Emit)
		}
		if sp.Intents != nil {
			m := sp.Intents(src)
			for _, name := range sortedKeys(m) {
				typ := name
				m[typ].Subscribe(func(v any) {
					bus.Emit(Action{Type: typ, Data: v})
				})
			}
		}
	})

	return out, nil
}

// normalizeTable validates the handler table and installs the built-in
// Initialize handler if needed.
func normalizeTable(sp Spec) (map[string]map[string]Handler, error) {
	table := make(map[string]map[string]Handler, len(sp.On)+1)
	for sink, types := range sp.On {
		if sink == ViewSink {
			return nil, fmt.Errorf("component %s: the view sink is computed, not handled", sp.Name)
		}
		table[sink] = make(map[string]Handler, len(types))
		for typ, h := range types {
			switch {
			case h.kind == kindInvalid:
				return nil, fmt.Errorf("component %s: invalid handler for (%s, %s)", sp.Name, sink, typ)
			case h.kind == kindReduce && sink != StateSink:
				return nil, fmt.Errorf("component %s: Reduce handler for (%s, %s) outside the state sink", sp.Name, sink, typ)
			case h.kind == kindCommand && sink == StateSink:
				return nil, fmt.Errorf("component %s: Command handler for state type %s; use Reduce", sp.Name, typ)
			}
			table[sink][typ] = h
		}
	}
	if sp.Initial != nil {
		if _, ok := table[StateSink][Initialize]; !ok {
			if table[StateSink] == nil {
				table[StateSink] = make(map[string]Handler, 1)
			}
			table[StateSink][Initialize] = Pass
		}
	}
	return table, nil
}

// wireSink subscribes one sink's handlers to the bus.
func wireSink(name string, bus *Bus, sink string, types map[string]Handler, dst *stream.Stream[any]) {
	next := bus.Next()
	bus.Stream().Subscribe(func(a Action) {
		h, ok := types[a.Type]
		if !ok {
			return
		}
		switch h.kind {
		case kindConst:
			if sink == StateSink {
				v := h.value
				dst.Emit(ReducerFunc(func(any) (any, bool) { return v, true }))
			} else {
				dst.Emit(h.value)
			}
		case kindPass:
			if sink == StateSink {
				data := a.Data
				dst.Emit(ReducerFunc(func(any) (any, bool) { return data, true }))
			} else {
				dst.Emit(a.Data)
			}
		case kindCommand:
			v, ok := runCommand(name, sink, a.Type, h.command, a.Data, next)
			if !ok {
				return
			}
			dst.Emit(v)
		case kindReduce:
			data := a.Data
			reduce := h.reduce
			dst.Emit(ReducerFunc(func(state any) (any, bool) {
				return reduce(state, data, next)
			}))
		}
	})
}

// A renderer debounces view recomputation: it collects the latest state and
// child views, and emits sp.View of them once the debounce window closes,
// skipping the recomputation when every input is the same as last time.
type renderer struct {
	lp       *stream.Loop
	name     string
	view     func(ViewInput) any
	out      *stream.Stream[any]
	debounce time.Duration

	gen      int
	cancel   func()
	state    any
	hasState bool
	children map[string]any

	rendered         bool
	renderedState    any
	renderedChildren map[string]any
}

func (r *renderer) setState(v any) {
	r.state, r.hasState = v, true
	r.schedule()
}

func (r *renderer) setChild(name string, v any) {
	r.children[name] = v
	r.schedule()
}

func (r *renderer) schedule() {
	if r.view == nil {
		return
	}
	r.gen++
	g := r.gen
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	fire := func() {
		if g != r.gen {
			return
		}
		r.cancel = nil
		r.render()
	}
	if r.debounce > 0 {
		r.cancel = r.lp.After(r.debounce, fire)
	} else {
		r.lp.Defer(fire)
	}
}

func (r *renderer) render() {
	if !r.hasState {
		return
	}
	if r.rendered && same(r.state, r.renderedState) && sameViews(r.children, r.renderedChildren) {
		return
	}
	children := make(map[string]any, len(r.children))
	for k, v := range r.children {
		children[k] = v
	}
	v, ok := callView(r.name, r.view, ViewInput{State: r.state, Children: children})
	if !ok {
		return
	}
	r.rendered = true
	r.renderedState = r.state
	r.renderedChildren = children
	r.out.Emit(v)
}

func sameViews(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !same(v, w) {
			return false
		}
	}
	return true
}

func callView(name string, f func(ViewInput) any, in ViewInput) (v any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("%s: view panicked: %v", name, r)
			v, ok = nil, false
		}
	}()
	return f(in), true
}

func stateSource(src Sources) (*stream.Stream[any], error) {
	s, ok := src[StateSink]
	if !ok {
		return nil, fmt.Errorf("sources have no %q entry", StateSink)
	}
	st, ok := s.(*stream.Stream[any])
	if !ok {
		return nil, fmt.Errorf("source %q is %T, not a stream", StateSink, s)
	}
	return st, nil
}

func addSink(out Sinks, lp *stream.Loop, name string) {
	if _, ok := out[name]; !ok {
		out[name] = stream.New[any](lp)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
