package todomvc

import (
	"github.com/tpresley/todomvc-cycle/pkg/comp"
	"github.com/tpresley/todomvc-cycle/pkg/run"
)

// TodoList returns the collection that manages one TodoItem per live todo.
func TodoList() comp.Factory {
	return comp.Collection(TodoItem(), todosLens{},
		comp.WithKey(todoID), comp.WithSinks(run.EffectsSink))
}

func todoID(item any) int {
	t, _ := item.(Todo)
	return t.ID
}

// todosLens scopes AppState to the []any of todos the list manages.
// Extract yields the non-deleted entries annotated with their visibility
// under the current filter; Merge folds changed entries back by ID and
// removes the ones an item marked deleted.
type todosLens struct{}

func (todosLens) Extract(parent any) any {
	s, _ := parent.(AppState)
	items := make([]any, 0, len(s.Todos))
	for _, t := range s.Todos {
		if t.Deleted {
			continue
		}
		t.Hidden = hiddenUnder(s.Filter, t)
		items = append(items, t)
	}
	return items
}

func (todosLens) Merge(parent, child any) any {
	s, _ := parent.(AppState)
	items, _ := child.([]any)
	updated := make(map[int]Todo, len(items))
	for _, it := range items {
		if t, ok := it.(Todo); ok {
			updated[t.ID] = t
		}
	}
	todos := make([]Todo, 0, len(s.Todos))
	for _, t := range s.Todos {
		u, ok := updated[t.ID]
		if !ok {
			todos = append(todos, t)
			continue
		}
		if u.Deleted {
			continue
		}
		// Hidden is an annotation of Extract, not app state.
		u.Hidden = false
		todos = append(todos, u)
	}
	s.Todos = todos
	return s
}
