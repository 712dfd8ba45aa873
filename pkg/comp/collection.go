package comp

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/tpresley/todomvc-cycle/pkg/stream"
)

// RemovedSource is the extra source Collection gives each item instance. It
// emits once, after the item's key has disappeared from the collection, so
// the item can run its own cleanup.
const RemovedSource = "removed"

// A CollectionOpt configures Collection.
type CollectionOpt func(*collOpts)

type collOpts struct {
	key   func(any) int
	sinks []string
}

// WithKey sets the key extractor for collection items. The default reads an
// integer ID field from a struct or a map[string]any item.
func WithKey(fn func(item any) int) CollectionOpt {
	return func(o *collOpts) { o.key = fn }
}

// WithSinks pre-creates relays for the named item sinks. Item sinks named
// after one of the embedder's sources are relayed automatically; any other
// sink an item emits on, such as a command sink, must be declared here.
func WithSinks(names ...string) CollectionOpt {
	return func(o *collOpts) { o.sinks = append(o.sinks, names...) }
}

// Collection returns a factory that manages one child instance of item per
// element of a slice-valued piece of the parent state.
//
// l.Extract must yield a []any of item states in display order; l.Merge
// folds an updated slice back into the parent. Keys identify items across
// emissions: a key not seen in the previous slice gets a fresh instance,
// scoped under the key's decimal string; a key that disappears has its
// instance shut down. Live keys must be unique; the behavior under duplicate
// keys is undefined.
//
// Shutting down closes the instance's gate, so none of its sinks contribute
// to the collection's output ever again, and then signals its RemovedSource.
// A key that is later re-added gets a fresh instance; the old one stays
// silenced.
//
// Non-view item sinks merge into the collection's same-named sinks. The
// relays exist for the embedder's source names and the names declared with
// WithSinks; an item sink matching neither is dropped. The view sink is an
// ordered combine: a []any of per-item views in current key order, skipping
// items that have not rendered yet, re-emitted when any item view or the
// order changes. State reductions emitted by an item apply to the item's
// slot of the extracted slice.
func Collection(item Factory, l Lens, opts ...CollectionOpt) Factory {
	var o collOpts
	for _, opt := range opts {
		opt(&o)
	}
	if o.key == nil {
		o.key = defaultKey
	}
	return func(src Sources) (Sinks, error) {
		parent, err := stateSource(src)
		if err != nil {
			return nil, fmt.Errorf("collection: %w", err)
		}
		lp := parent.Loop()
		c := &collection{
			lp: lp, item: item, lens: l, key: o.key, src: src,
			insts: make(map[int]*collItem),
			out:   make(Sinks),
		}
		c.out[StateSink] = stream.New[any](lp)
		c.out[ViewSink] = stream.New[any](lp).Remember()
		for name := range src {
			addSink(c.out, lp, name)
		}
		for _, name := range o.sinks {
			addSink(c.out, lp, name)
		}
		parent.Subscribe(c.update)
		return c.out, nil
	}
}

type collection struct {
	lp    *stream.Loop
	item  Factory
	lens  Lens
	key   func(any) int
	src   Sources
	insts map[int]*collItem
	order []int
	out   Sinks
}

// A collItem is one live (or formerly live) item instance.
type collItem struct {
	key     int
	gone    *gate
	state   *stream.Stream[any]
	removed *stream.Stream[any]
	subs    []*stream.Sub[any]

	lastState any
	hasState  bool
	view      any
	hasView   bool
}

// A gate cuts an instance off from the collection's outputs once its key is
// removed, even though the instance's own streams may still emit.
type gate struct{ closed bool }

func (c *collection) update(v any) {
	extracted := c.lens.Extract(v)
	var items []any
	if extracted != nil {
		var ok bool
		items, ok = extracted.([]any)
		if !ok {
			logger.Printf("collection lens extracted %T, want []any", extracted)
			return
		}
	}

	seen := make(map[int]bool, len(items))
	order := make([]int, 0, len(items))
	for _, it := range items {
		k := c.key(it)
		if seen[k] {
			logger.Printf("collection: duplicate key %d; instance kept on the first occurrence", k)
			continue
		}
		seen[k] = true
		order = append(order, k)
		inst, ok := c.insts[k]
		if !ok {
			inst = c.add(k)
		}
		if !inst.hasState || !same(it, inst.lastState) {
			inst.lastState, inst.hasState = it, true
			inst.state.Emit(it)
		}
	}
	for k, inst := range c.insts {
		if !seen[k] {
			c.remove(k, inst)
		}
	}

	if !equalKeys(c.order, order) {
		c.order = order
		c.emitViews()
	}
}

func (c *collection) add(k int) *collItem {
	inst := &collItem{
		key:     k,
		gone:    &gate{},
		state:   stream.New[any](c.lp).Remember(),
		removed: stream.New[any](c.lp).Remember(),
	}
	c.insts[k] = inst

	scope := strconv.Itoa(k)
	src := make(Sources, len(c.src)+1)
	for name, s := range c.src {
		if name == StateSink {
			continue
		}
		if sc, ok := s.(Scoper); ok {
			src[name] = sc.Scope(scope)
		} else {
			src[name] = s
		}
	}
	src[StateSink] = inst.state
	src[RemovedSource] = inst.removed

	sinks, err := c.item(src)
	if err != nil {
		panic(fmt.Sprintf("collection item %d: %v", k, err))
	}

	g := inst.gone
	if st, ok := sinks[StateSink]; ok {
		il := itemLens{lens: c.lens, key: k, keyOf: c.key}
		dst := c.out[StateSink]
		inst.subs = append(inst.subs, st.Subscribe(func(v any) {
			if g.closed {
				return
			}
			rf, ok := v.(ReducerFunc)
			if !ok {
				logger.Printf("state sink carried %T, want ReducerFunc", v)
				return
			}
			dst.Emit(lensReducer(il, rf))
		}))
	}
	if vw, ok := sinks[ViewSink]; ok {
		inst.subs = append(inst.subs, vw.Subscribe(func(v any) {
			if g.closed {
				return
			}
			inst.view, inst.hasView = v, true
			c.emitViews()
		}))
	}
	for name, s := range sinks {
		if name == StateSink || name == ViewSink || name == RemovedSource {
			continue
		}
		relay, ok := c.out[name]
		if !ok {
			logger.Printf("collection: item sink %q matches no source; dropped", name)
			continue
		}
		inst.subs = append(inst.subs, s.Subscribe(func(v any) {
			if g.closed {
				return
			}
			relay.Emit(v)
		}))
	}
	return inst
}

func (c *collection) remove(k int, inst *collItem) {
	delete(c.insts, k)
	inst.gone.closed = true
	for _, sub := range inst.subs {
		sub.Close()
	}
	// Deferred so that the removal signal, and any state reduction it
	// provokes, is delivered outside the state emission being handled.
	removed := inst.removed
	c.lp.Defer(func() { removed.Emit(nil) })
}

func (c *collection) emitViews() {
	views := make([]any, 0, len(c.order))
	for _, k := range c.order {
		if inst := c.insts[k]; inst != nil && inst.hasView {
			views = append(views, inst.view)
		}
	}
	c.out[ViewSink].Emit(views)
}

// itemLens addresses one keyed slot of the slice-valued sub-state.
type itemLens struct {
	lens  Lens
	key   int
	keyOf func(any) int
}

func (il itemLens) Extract(parent any) any {
	items, _ := il.lens.Extract(parent).([]any)
	for _, it := range items {
		if il.keyOf(it) == il.key {
			return it
		}
	}
	return nil
}

func (il itemLens) Merge(parent, child any) any {
	items, _ := il.lens.Extract(parent).([]any)
	out := make([]any, len(items))
	for i, it := range items {
		if il.keyOf(it) == il.key {
			out[i] = child
		} else {
			out[i] = it
		}
	}
	return il.lens.Merge(parent, out)
}

func equalKeys(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// defaultKey reads an integer ID from a struct field or map entry.
func defaultKey(item any) int {
	switch it := item.(type) {
	case map[string]any:
		for _, name := range []string{"id", "ID"} {
			if v, ok := it[name]; ok {
				if n, ok := intOf(v); ok {
					return n
				}
			}
		}
	default:
		v := reflect.ValueOf(item)
		if v.Kind() == reflect.Ptr {
			v = v.Elem()
		}
		if v.Kind() == reflect.Struct {
			for _, name := range []string{"ID", "Id"} {
				if f := v.FieldByName(name); f.IsValid() && f.CanInt() {
					return int(f.Int())
				}
			}
		}
	}
	panic(fmt.Sprintf("collection: no usable key in item of type %T; use WithKey", item))
}

func intOf(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
