package todomvc

import (
	"strings"

	"github.com/tpresley/todomvc-cycle/pkg/comp"
	"github.com/tpresley/todomvc-cycle/pkg/run"
	"github.com/tpresley/todomvc-cycle/pkg/stream"
	"github.com/tpresley/todomvc-cycle/pkg/view"
)

// Form returns the new-todo form, scoped under "form".
func Form() comp.Factory {
	return comp.Isolate(form, "form", comp.Identity)
}

func form(src comp.Sources) (comp.Sinks, error) {
	v, err := viewSource(src)
	if err != nil {
		return nil, err
	}
	return comp.Build(comp.Spec{
		Name: "form",
		Intents: func(comp.Sources) map[string]*stream.Stream[any] {
			return map[string]*stream.Stream[any]{
				actionNewTodo: v.Select("new").Events("submit"),
			}
		},
		On: map[string]map[string]comp.Handler{
			comp.StateSink: {
				actionNewTodo: comp.Reduce(reduceNewTodo),
			},
			run.EffectsSink: {
				actionClearForm: comp.Const(view.Command{
					Name: view.SetValue, Sel: v.Selector("new"), Value: "",
				}),
			},
		},
		View: func(comp.ViewInput) any {
			return view.Node{Sel: v.Selector("new"), Kind: view.Input, Text: "What needs to be done?"}
		},
	}, src)
}

// reduceNewTodo appends a todo with the submitted title and the next free
// ID. A title that trims to nothing aborts, and the form is not cleared.
func reduceNewTodo(s AppState, data any, next comp.Next) (AppState, bool) {
	title, _ := data.(string)
	title = strings.TrimSpace(title)
	if title == "" {
		return s, false
	}
	maxID := 0
	for _, t := range s.Todos {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	todos := make([]Todo, len(s.Todos), len(s.Todos)+1)
	copy(todos, s.Todos)
	s.Todos = append(todos, Todo{ID: maxID + 1, Title: title})
	next(actionClearForm, nil)
	return s, true
}
