package comp

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/tpresley/todomvc-cycle/pkg/stream"
)

func TestBuild_ConfigErrors(t *testing.T) {
	lp := stream.NewLoop()
	src := Sources{StateSink: stream.New[any](lp)}
	tests := []struct {
		name string
		sp   Spec
		src  Sources
	}{
		{"no state source", Spec{}, Sources{}},
		{"state source not a stream", Spec{}, Sources{StateSink: "nope"}},
		{"Intent and Intents both set", Spec{
			Intent:  func(Sources) *stream.Stream[Action] { return nil },
			Intents: func(Sources) map[string]*stream.Stream[any] { return nil },
		}, src},
		{"zero handler", Spec{
			On: map[string]map[string]Handler{"out": {"X": {}}},
		}, src},
		{"nil Reduce", Spec{
			On: map[string]map[string]Handler{StateSink: {"X": Reduce[int](nil)}},
		}, src},
		{"nil Command", Spec{
			On: map[string]map[string]Handler{"out": {"X": Command(nil)}},
		}, src},
		{"Reduce outside the state sink", Spec{
			On: map[string]map[string]Handler{"out": {"X": Reduce(
				func(s int, _ any, _ Next) (int, bool) { return s, true })}},
		}, src},
		{"Command on the state sink", Spec{
			On: map[string]map[string]Handler{StateSink: {"X": Command(
				func(any, Next) (any, bool) { return nil, true })}},
		}, src},
		{"handler on the view sink", Spec{
			On: map[string]map[string]Handler{ViewSink: {"X": Pass}},
		}, src},
		{"nil child factory", Spec{
			Children: map[string]Factory{"c": nil},
		}, src},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Build(test.sp, test.src); err == nil {
				t.Errorf("Build -> nil error")
			}
		})
	}
}

func TestBuild_EmitsBootstrapThenInitialize(t *testing.T) {
	lp := stream.NewLoop()
	store := NewStateStore(lp, nil)
	sp := Spec{
		Name:    "test",
		Initial: "seed",
		On: map[string]map[string]Handler{
			"out": {Bootstrap: Const("boot"), Initialize: Pass},
		},
	}
	var got []any
	lp.Post(func() {
		sinks, err := Build(sp, Sources{StateSink: store.Source()})
		if err != nil {
			t.Fatalf("Build -> error %v", err)
		}
		store.Watch(sinks[StateSink])
		sinks["out"].Subscribe(func(v any) { got = append(got, v) })
	})
	lp.Stabilize()
	if want := []any{"boot", "seed"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	// The built-in Initialize handler replaced the state with Initial.
	if store.Current() != "seed" {
		t.Errorf("state is %v, want seed", store.Current())
	}
}

func TestBuild_SinkUniverseCoversSourcesHandlersAndChildren(t *testing.T) {
	lp := stream.NewLoop()
	store := NewStateStore(lp, nil)
	child := func(src Sources) (Sinks, error) {
		return Sinks{"notify": stream.New[any](lp)}, nil
	}
	sp := Spec{
		On:       map[string]map[string]Handler{"cmd": {"GO": Pass}},
		Children: map[string]Factory{"c": child},
	}
	var sinks Sinks
	lp.Post(func() {
		var err error
		sinks, err = Build(sp, Sources{StateSink: store.Source(), "ext": "facade"})
		if err != nil {
			t.Fatalf("Build -> error %v", err)
		}
	})
	lp.Stabilize()
	for _, name := range []string{StateSink, ViewSink, "ext", "cmd", "notify"} {
		if sinks[name] == nil {
			t.Errorf("no %q sink", name)
		}
	}
}

func TestBuild_ReductionsApplyInOrderAndFollowUpsSeeThem(t *testing.T) {
	lp := stream.NewLoop()
	store := NewStateStore(lp, nil)
	acts := stream.New[Action](lp)
	sp := Spec{
		Name:    "calc",
		Initial: 1,
		Intent:  func(Sources) *stream.Stream[Action] { return acts },
		On: map[string]map[string]Handler{
			StateSink: {
				"ADD": Reduce(func(s int, data any, next Next) (int, bool) {
					if data.(int) > 100 {
						return 0, false
					}
					next("NOTE", nil)
					return s + data.(int), true
				}),
				"MUL": Reduce(func(s int, data any, _ Next) (int, bool) {
					return s * data.(int), true
				}),
			},
			"log": {"NOTE": Const("noted")},
		},
	}
	var logGot []any
	lp.Post(func() {
		sinks, err := Build(sp, Sources{StateSink: store.Source()})
		if err != nil {
			t.Fatalf("Build -> error %v", err)
		}
		store.Watch(sinks[StateSink])
		sinks["log"].Subscribe(func(v any) { logGot = append(logGot, v) })
	})
	lp.Stabilize()
	if store.Current() != 1 {
		t.Errorf("state is %v, want 1", store.Current())
	}

	lp.Post(func() { acts.Emit(Action{Type: "ADD", Data: 2}) })
	lp.Stabilize()
	if store.Current() != 3 {
		t.Errorf("state is %v, want 3", store.Current())
	}
	if want := []any{"noted"}; !reflect.DeepEqual(logGot, want) {
		t.Errorf("log got %v, want %v", logGot, want)
	}

	// An aborting reduction changes nothing and emits nothing.
	lp.Post(func() { acts.Emit(Action{Type: "ADD", Data: 1000}) })
	lp.Stabilize()
	if store.Current() != 3 {
		t.Errorf("state is %v, want 3 after abort", store.Current())
	}

	// Two actions in one turn apply in emission order: (3+4)*3, not 3*3+4.
	lp.Post(func() {
		acts.Emit(Action{Type: "ADD", Data: 4})
		acts.Emit(Action{Type: "MUL", Data: 3})
	})
	lp.Stabilize()
	if store.Current() != 21 {
		t.Errorf("state is %v, want 21", store.Current())
	}
}

func TestBuild_CommandCanAbort(t *testing.T) {
	lp := stream.NewLoop()
	store := NewStateStore(lp, nil)
	acts := stream.New[Action](lp)
	sp := Spec{
		Intent: func(Sources) *stream.Stream[Action] { return acts },
		On: map[string]map[string]Handler{
			"out": {"ECHO": Command(func(data any, _ Next) (any, bool) {
				s, ok := data.(string)
				return s, ok && s != ""
			})},
		},
	}
	var got []any
	lp.Post(func() {
		sinks, err := Build(sp, Sources{StateSink: store.Source()})
		if err != nil {
			t.Fatalf("Build -> error %v", err)
		}
		sinks["out"].Subscribe(func(v any) { got = append(got, v) })
	})
	lp.Stabilize()
	lp.Post(func() {
		acts.Emit(Action{Type: "ECHO", Data: "a"})
		acts.Emit(Action{Type: "ECHO", Data: ""})
		acts.Emit(Action{Type: "ECHO", Data: "b"})
	})
	lp.Stabilize()
	if want := []any{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestBuild_ViewCoalescesChangesWithinATurn(t *testing.T) {
	lp := stream.NewLoop()
	store := NewStateStore(lp, 0)
	acts := stream.New[Action](lp)
	calls := 0
	sp := Spec{
		Intent: func(Sources) *stream.Stream[Action] { return acts },
		On: map[string]map[string]Handler{
			StateSink: {"ADD": Reduce(func(s int, data any, _ Next) (int, bool) {
				return s + data.(int), true
			})},
		},
		View: func(in ViewInput) any { calls++; return in.State },
	}
	var views []any
	lp.Post(func() {
		sinks, err := Build(sp, Sources{StateSink: store.Source()})
		if err != nil {
			t.Fatalf("Build -> error %v", err)
		}
		store.Watch(sinks[StateSink])
		sinks[ViewSink].Subscribe(func(v any) { views = append(views, v) })
	})
	lp.Stabilize()
	if want := []any{0}; !reflect.DeepEqual(views, want) {
		t.Errorf("views %v, want %v", views, want)
	}

	lp.Post(func() {
		acts.Emit(Action{Type: "ADD", Data: 1})
		acts.Emit(Action{Type: "ADD", Data: 2})
	})
	lp.Stabilize()
	if want := []any{0, 3}; !reflect.DeepEqual(views, want) {
		t.Errorf("views %v, want %v", views, want)
	}
	if calls != 2 {
		t.Errorf("view ran %d times, want 2", calls)
	}
}

func TestBuild_ViewSkipsWhenInputsAreSame(t *testing.T) {
	lp := stream.NewLoop()
	initial := []string{"x"}
	store := NewStateStore(lp, initial)
	acts := stream.New[Action](lp)
	calls := 0
	sp := Spec{
		Intent: func(Sources) *stream.Stream[Action] { return acts },
		On: map[string]map[string]Handler{
			StateSink: {"TOUCH": Reduce(func(s []string, _ any, _ Next) ([]string, bool) {
				return s, true
			})},
		},
		View: func(in ViewInput) any { calls++; return len(in.State.([]string)) },
	}
	lp.Post(func() {
		sinks, err := Build(sp, Sources{StateSink: store.Source()})
		if err != nil {
			t.Fatalf("Build -> error %v", err)
		}
		store.Watch(sinks[StateSink])
	})
	lp.Stabilize()
	if calls != 1 {
		t.Fatalf("view ran %d times, want 1", calls)
	}

	// TOUCH returns the same slice; the state store emits it again, but the
	// view is not recomputed.
	lp.Post(func() { acts.Emit(Action{Type: "TOUCH"}) })
	lp.Stabilize()
	if calls != 1 {
		t.Errorf("view ran %d times, want still 1", calls)
	}
}

func TestBuild_ViewIsRemembered(t *testing.T) {
	lp := stream.NewLoop()
	store := NewStateStore(lp, "s")
	sp := Spec{View: func(in ViewInput) any { return "v:" + in.State.(string) }}
	var sinks Sinks
	lp.Post(func() {
		var err error
		sinks, err = Build(sp, Sources{StateSink: store.Source()})
		if err != nil {
			t.Fatalf("Build -> error %v", err)
		}
	})
	lp.Stabilize()
	var got any
	lp.Post(func() {
		sinks[ViewSink].Subscribe(func(v any) { got = v })
	})
	lp.Stabilize()
	if got != "v:s" {
		t.Errorf("late subscriber got %v, want v:s", got)
	}
}

func TestBuild_ChildSinksMergeAndChildViewsFeedParentView(t *testing.T) {
	lp := stream.NewLoop()
	store := NewStateStore(lp, "s")
	child := func(src Sources) (Sinks, error) {
		return Build(Spec{
			Name: "child",
			On: map[string]map[string]Handler{
				"notify": {Bootstrap: Const("child-up")},
			},
			View: func(in ViewInput) any { return "child:" + in.State.(string) },
		}, src)
	}
	sp := Spec{
		Name:     "parent",
		Children: map[string]Factory{"kid": child},
		On: map[string]map[string]Handler{
			"notify": {Bootstrap: Const("parent-up")},
		},
		View: func(in ViewInput) any {
			return fmt.Sprintf("parent[%v]", in.Children["kid"])
		},
	}
	var notify, views []any
	lp.Post(func() {
		sinks, err := Build(sp, Sources{StateSink: store.Source()})
		if err != nil {
			t.Fatalf("Build -> error %v", err)
		}
		sinks["notify"].Subscribe(func(v any) { notify = append(notify, v) })
		sinks[ViewSink].Subscribe(func(v any) { views = append(views, v) })
	})
	lp.Stabilize()
	if want := []any{"child-up", "parent-up"}; !reflect.DeepEqual(notify, want) {
		t.Errorf("notify got %v, want %v", notify, want)
	}
	if want := []any{"parent[child:s]"}; !reflect.DeepEqual(views, want) {
		t.Errorf("views %v, want %v", views, want)
	}
}

func TestBuild_PanickingHandlersAbortButDeliveryContinues(t *testing.T) {
	lp := stream.NewLoop()
	store := NewStateStore(lp, 0)
	acts := stream.New[Action](lp)
	sp := Spec{
		Intent: func(Sources) *stream.Stream[Action] { return acts },
		On: map[string]map[string]Handler{
			StateSink: {"BOOM": Reduce(func(s int, _ any, _ Next) (int, bool) {
				panic("reducer")
			})},
			"out": {
				"BOOM": Command(func(any, Next) (any, bool) { panic("command") }),
				"OK":   Const("fine"),
			},
		},
	}
	var got []any
	lp.Post(func() {
		sinks, err := Build(sp, Sources{StateSink: store.Source()})
		if err != nil {
			t.Fatalf("Build -> error %v", err)
		}
		store.Watch(sinks[StateSink])
		sinks["out"].Subscribe(func(v any) { got = append(got, v) })
	})
	lp.Stabilize()
	lp.Post(func() {
		acts.Emit(Action{Type: "BOOM"})
		acts.Emit(Action{Type: "OK"})
	})
	lp.Stabilize()
	if store.Current() != 0 {
		t.Errorf("state is %v, want 0", store.Current())
	}
	if want := []any{"fine"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
