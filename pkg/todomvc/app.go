package todomvc

import (
	"encoding/json"
	"fmt"

	"github.com/tpresley/todomvc-cycle/pkg/comp"
	"github.com/tpresley/todomvc-cycle/pkg/run"
	"github.com/tpresley/todomvc-cycle/pkg/storage"
	"github.com/tpresley/todomvc-cycle/pkg/stream"
	"github.com/tpresley/todomvc-cycle/pkg/ui"
	"github.com/tpresley/todomvc-cycle/pkg/view"
)

// Action types flowing on the component buses.
const (
	actionLoaded    = "LOADED"
	actionFilter    = "FILTER"
	actionToggleAll = "TOGGLE_ALL"
	actionPersist   = "PERSIST"

	actionNewTodo   = "NEW_TODO"
	actionClearForm = "CLEAR_FORM"

	actionToggle     = "TOGGLE"
	actionDelete     = "DELETE"
	actionStartEdit  = "START_EDIT"
	actionPrepEdit   = "PREP_EDIT"
	actionFocusEdit  = "FOCUS_EDIT"
	actionCancelEdit = "CANCEL_EDIT"
	actionDoneEdit   = "DONE_EDIT"
	actionRemoved    = "REMOVED"

	actionClearCompleted = "CLEAR_COMPLETED"
)

// App returns the root component. It loads the stored todos, owns the
// filter, handles the toggle-all element, persists every state change once
// loading is done, and assembles the form, the list and the footer.
func App() comp.Factory {
	return func(src comp.Sources) (comp.Sinks, error) {
		v, err := viewSource(src)
		if err != nil {
			return nil, err
		}
		st, ok := src[run.StorageSource].(*storage.Driver)
		if !ok {
			return nil, fmt.Errorf("source %q is %T, want *storage.Driver",
				run.StorageSource, src[run.StorageSource])
		}
		routeStream, ok := src[run.RouteSource].(*stream.Stream[any])
		if !ok {
			return nil, fmt.Errorf("source %q is %T, want a stream",
				run.RouteSource, src[run.RouteSource])
		}
		stateStream, ok := src[comp.StateSink].(*stream.Stream[any])
		if !ok {
			return nil, fmt.Errorf("source %q is %T, want a stream",
				comp.StateSink, src[comp.StateSink])
		}

		return comp.Build(comp.Spec{
			Name:    "app",
			Initial: AppState{},
			Intents: func(comp.Sources) map[string]*stream.Stream[any] {
				return map[string]*stream.Stream[any]{
					actionLoaded:    stream.First(st.Get(todosKey, []Todo(nil), DecodeTodos)),
					actionFilter:    routeStream,
					actionToggleAll: v.Select("toggle-all").Events("activate"),
					actionPersist:   stateStream,
				}
			},
			On: map[string]map[string]comp.Handler{
				comp.StateSink: {
					actionLoaded:    comp.Reduce(reduceLoaded),
					actionFilter:    comp.Reduce(reduceFilter),
					actionToggleAll: comp.Reduce(reduceToggleAll),
				},
				run.RouteSource: {
					comp.Bootstrap: comp.Const(routes),
				},
				run.StorageSource: {
					actionPersist: comp.Command(persistCommand),
				},
			},
			Children: map[string]comp.Factory{
				"form":   Form(),
				"list":   TodoList(),
				"footer": Footer(),
			},
			View: appView(v),
		}, src)
	}
}

func viewSource(src comp.Sources) (*view.Source, error) {
	v, ok := src[run.ViewSource].(*view.Source)
	if !ok {
		return nil, fmt.Errorf("source %q is %T, want *view.Source",
			run.ViewSource, src[run.ViewSource])
	}
	return v, nil
}

func reduceLoaded(s AppState, data any, _ comp.Next) (AppState, bool) {
	todos, _ := data.([]Todo)
	s.Todos = todos
	s.Loaded = true
	return s, true
}

func reduceFilter(s AppState, data any, _ comp.Next) (AppState, bool) {
	route, _ := data.(string)
	s.Filter = filterOf(route)
	return s, true
}

// reduceToggleAll completes every todo, or reopens every todo when all of
// them are already completed, so that hitting it twice is a no-op overall.
func reduceToggleAll(s AppState, _ any, _ comp.Next) (AppState, bool) {
	all := true
	for _, t := range s.Todos {
		if !t.Completed {
			all = false
			break
		}
	}
	todos := make([]Todo, len(s.Todos))
	for i, t := range s.Todos {
		t.Completed = !all
		todos[i] = t
	}
	s.Todos = todos
	return s, true
}

// persistCommand turns a state change into a storage write. Nothing
// persists until the stored todos have been loaded.
func persistCommand(data any, _ comp.Next) (any, bool) {
	s, ok := data.(AppState)
	if !ok || !s.Loaded {
		return nil, false
	}
	return storage.Entry{Key: todosKey, Value: json.RawMessage(EncodeTodos(s.Todos))}, true
}

func appView(v *view.Source) func(comp.ViewInput) any {
	return func(in comp.ViewInput) any {
		s, _ := in.State.(AppState)
		form, _ := in.Children["form"].(view.Node)
		footer, _ := in.Children["footer"].(view.Node)
		items, _ := in.Children["list"].([]any)

		list := view.Node{Kind: view.Box}
		for _, it := range items {
			if n, ok := it.(view.Node); ok {
				list.Children = append(list.Children, n)
			}
		}

		allDone := len(s.Todos) > 0
		for _, t := range s.Todos {
			if !t.Completed {
				allDone = false
				break
			}
		}
		return view.Node{Kind: view.Box, Children: []view.Node{
			{Kind: view.Text, Text: "todos", Style: ui.Bold},
			form,
			{Sel: v.Selector("toggle-all"), Kind: view.Check, Checked: allDone, Text: "Mark all as complete"},
			list,
			footer,
		}}
	}
}
