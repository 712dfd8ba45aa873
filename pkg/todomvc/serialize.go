package todomvc

import (
	"encoding/json"

	"github.com/tpresley/todomvc-cycle/pkg/must"
)

// todosKey is the store key the todo list persists under.
const todosKey = "todos"

// storedTodo is the persisted shape of a todo.
type storedTodo struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// EncodeTodos returns the persistent JSON form of todos: the id, title and
// completed fields of the entries not marked deleted.
func EncodeTodos(todos []Todo) []byte {
	stored := make([]storedTodo, 0, len(todos))
	for _, t := range todos {
		if t.Deleted {
			continue
		}
		stored = append(stored, storedTodo{ID: t.ID, Title: t.Title, Completed: t.Completed})
	}
	return must.OK1(json.Marshal(stored))
}

// DecodeTodos parses the persistent JSON form back into todos. Its shape
// fits the decode argument of the storage driver's Get.
func DecodeTodos(raw []byte) (any, error) {
	var stored []storedTodo
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	todos := make([]Todo, len(stored))
	for i, s := range stored {
		todos[i] = Todo{ID: s.ID, Title: s.Title, Completed: s.Completed}
	}
	return todos, nil
}
