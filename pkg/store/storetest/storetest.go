// Package storetest keeps test suites against storedefs.Store.
package storetest

import (
	"testing"

	"github.com/tpresley/todomvc-cycle/pkg/store/storedefs"
)

// TestKV tests the key-value functionality of a Store.
func TestKV(t *testing.T, s storedefs.Store) {
	testGet(t, s, "todos", "", storedefs.ErrNoKey)

	mustOK(t, s.Set("todos", "[]"))
	testGet(t, s, "todos", "[]", nil)

	mustOK(t, s.Set("todos", `[{"id":1,"title":"x","completed":false}]`))
	testGet(t, s, "todos", `[{"id":1,"title":"x","completed":false}]`, nil)

	testGet(t, s, "filter", "", storedefs.ErrNoKey)
	mustOK(t, s.Set("filter", "active"))
	testGet(t, s, "filter", "active", nil)
}

func testGet(t *testing.T, s storedefs.Store, key, wantValue string, wantErr error) {
	t.Helper()
	value, err := s.Get(key)
	if value != wantValue || !matchErr(err, wantErr) {
		t.Errorf("Get(%q) -> (%q, %v), want (%q, %v)",
			key, value, err, wantValue, wantErr)
	}
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("got error %v, want nil", err)
	}
}

func matchErr(e1, e2 error) bool {
	return (e1 == nil && e2 == nil) || (e1 != nil && e2 != nil && e1.Error() == e2.Error())
}
