// Package storage implements the persistence driver: a bridge between the
// component engine and a storedefs.Store.
//
// The driver exposes one stream per key. The stream emits the decoded stored
// value one turn after the key is first requested, and again after every
// write to the key made through the same driver. Writes from other processes
// sharing the store are only observed on the next load.
package storage

import (
	"encoding/json"

	"github.com/tpresley/todomvc-cycle/pkg/logutil"
	"github.com/tpresley/todomvc-cycle/pkg/store/storedefs"
	"github.com/tpresley/todomvc-cycle/pkg/stream"
)

var logger = logutil.GetLogger("[storage] ")

// Entry is a write request: Value is serialized with encoding/json and
// persisted under Key.
type Entry struct {
	Key   string
	Value any
}

// Driver adapts a storedefs.Store to the loop. All methods must be called
// on the loop.
type Driver struct {
	lp    *stream.Loop
	store storedefs.Store
	keys  map[string]keyStream
}

type keyStream struct {
	out    *stream.Stream[any]
	def    any
	decode func([]byte) (any, error)
}

// NewDriver creates a Driver on the given loop and store.
func NewDriver(lp *stream.Loop, st storedefs.Store) *Driver {
	return &Driver{lp: lp, store: st, keys: make(map[string]keyStream)}
}

// Get returns the stream of values stored under key, decoded with decode. A
// missing key or a failing decode yields def instead. The def and decode of
// the first call for a key stick; later calls return the same stream.
func (d *Driver) Get(key string, def any, decode func([]byte) (any, error)) *stream.Stream[any] {
	if ks, ok := d.keys[key]; ok {
		return ks.out
	}
	ks := keyStream{out: stream.New[any](d.lp).Remember(), def: def, decode: decode}
	d.keys[key] = ks
	d.lp.Defer(func() {
		ks.out.Emit(d.read(key, ks))
	})
	return ks.out
}

func (d *Driver) read(key string, ks keyStream) any {
	raw, err := d.store.Get(key)
	if err != nil {
		if err != storedefs.ErrNoKey {
			logger.Printf("read %q: %v", key, err)
		}
		return ks.def
	}
	v, err := ks.decode([]byte(raw))
	if err != nil {
		logger.Printf("decode %q: %v", key, err)
		return ks.def
	}
	return v
}

// Persist executes one write request, which must be an Entry. Errors are
// logged and otherwise swallowed; persistence failures must not take down
// the loop. After a successful write the key's stream re-emits the stored
// value, decoded the same way a fresh load would be.
func (d *Driver) Persist(v any) {
	entry, ok := v.(Entry)
	if !ok {
		logger.Printf("dropping write of %T, want storage.Entry", v)
		return
	}
	raw, err := json.Marshal(entry.Value)
	if err != nil {
		logger.Printf("encode %q: %v", entry.Key, err)
		return
	}
	if err := d.store.Set(entry.Key, string(raw)); err != nil {
		logger.Printf("write %q: %v", entry.Key, err)
		return
	}
	if ks, ok := d.keys[entry.Key]; ok {
		ks.out.Emit(d.read(entry.Key, ks))
	}
}
