// Package route implements the routing driver, a small notifier that maps
// digit keys to named routes.
package route

import (
	"github.com/tpresley/todomvc-cycle/pkg/logutil"
	"github.com/tpresley/todomvc-cycle/pkg/stream"
	"github.com/tpresley/todomvc-cycle/pkg/ui"
)

var logger = logutil.GetLogger("[route] ")

// Driver assigns digit keys to routes in registration order and emits the
// name of the route being switched to. All methods must be called on the
// loop.
type Driver struct {
	lp      *stream.Loop
	out     *stream.Stream[any]
	routes  []string
	known   map[string]bool
	initial string
	started bool
}

// NewDriver creates a Driver. A non-empty initial is emitted as the first
// active route; with an empty initial the first registered route is.
func NewDriver(lp *stream.Loop, initial string) *Driver {
	return &Driver{
		lp:      lp,
		out:     stream.New[any](lp).Remember(),
		known:   make(map[string]bool),
		initial: initial,
	}
}

// Stream returns the stream of active route names.
func (d *Driver) Stream() *stream.Stream[any] { return d.out }

// Register handles one registration request, a string or []string of route
// names. The first nine distinct routes get the digit keys 1 to 9 in order;
// registering a known route again is a no-op. The initial route is emitted
// one turn after the first registration, so that the registering component
// is fully wired when it arrives.
func (d *Driver) Register(v any) {
	switch names := v.(type) {
	case string:
		d.register(names)
	case []string:
		for _, name := range names {
			d.register(name)
		}
	default:
		logger.Printf("dropping route registration of %T", v)
	}
}

func (d *Driver) register(name string) {
	if d.known[name] {
		return
	}
	d.known[name] = true
	d.routes = append(d.routes, name)
	if len(d.routes) > 9 {
		logger.Printf("route %q has no digit key", name)
	}
	if !d.started {
		d.started = true
		d.lp.Defer(func() {
			if d.initial != "" {
				d.out.Emit(d.initial)
			} else {
				d.out.Emit(d.routes[0])
			}
		})
	}
}

// HandleKey reacts to a key that nothing else has consumed: a digit key
// switches to the route assigned to it. It reports whether the key was
// consumed.
func (d *Driver) HandleKey(k ui.Key) bool {
	if k.Mod != 0 || k.Rune < '1' || k.Rune > '9' {
		return false
	}
	i := int(k.Rune - '1')
	if i >= len(d.routes) {
		return false
	}
	d.out.Emit(d.routes[i])
	return true
}
