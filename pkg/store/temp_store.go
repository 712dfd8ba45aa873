package store

import (
	"fmt"
	"path/filepath"

	"github.com/tpresley/todomvc-cycle/pkg/store/storedefs"
	"github.com/tpresley/todomvc-cycle/pkg/testutil"
)

// MustTempStore returns a Store backed by a temporary file, and arranges for
// it to be closed when the test finishes. It panics if the store cannot be
// created.
func MustTempStore(c testutil.Cleanuper) storedefs.Store {
	st, err := NewStore(filepath.Join(testutil.TempDir(c), "db"))
	if err != nil {
		panic(fmt.Sprintf("failed to create temp store: %v", err))
	}
	c.Cleanup(func() {
		st.Close()
	})
	return st
}
