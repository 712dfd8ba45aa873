// Package run owns the feedback loop of an application: it builds the root
// component with the driver sources, feeds the component's sinks back into
// the drivers, and pumps terminal events and signals into the loop until a
// quit key or a fatal error stops it.
package run

import (
	"sync"
	"syscall"
	"time"

	"github.com/tpresley/todomvc-cycle/pkg/comp"
	"github.com/tpresley/todomvc-cycle/pkg/logutil"
	"github.com/tpresley/todomvc-cycle/pkg/route"
	"github.com/tpresley/todomvc-cycle/pkg/storage"
	"github.com/tpresley/todomvc-cycle/pkg/store/storedefs"
	"github.com/tpresley/todomvc-cycle/pkg/stream"
	"github.com/tpresley/todomvc-cycle/pkg/sys"
	"github.com/tpresley/todomvc-cycle/pkg/term"
	"github.com/tpresley/todomvc-cycle/pkg/ui"
	"github.com/tpresley/todomvc-cycle/pkg/view"
)

var logger = logutil.GetLogger("[run] ")

// Source and sink names the runner wires to the drivers. The root component
// sees sources named ViewSource, StorageSource, RouteSource and
// comp.StateSink; its sinks of the same names feed the respective drivers,
// and EffectsSink feeds element commands to the view driver.
const (
	ViewSource    = "view"
	StorageSource = "storage"
	RouteSource   = "route"
	EffectsSink   = "effects"
)

// App bundles what it takes to run a component tree on a terminal.
type App struct {
	// TTY is the terminal to run on. Nil means term.StdTTY.
	TTY term.TTY
	// Store backs the storage driver.
	Store storedefs.Store
	// Root is the root component factory.
	Root comp.Factory
	// InitialRoute, when non-empty, overrides the route emitted on startup.
	InitialRoute string
	// Debounce coalesces screen redraws: a rendered view is only drawn
	// after no newer view arrived for this long. Zero draws every view.
	Debounce time.Duration
}

// Run builds the component tree, sets up the terminal, and runs the loop
// until a quit key (q outside an input, or Ctrl-C anywhere) or an
// unrecoverable terminal read error. The terminal is restored on the way
// out. Errors from the root factory abort Run before the terminal is
// touched.
func (app App) Run() error {
	tty := app.TTY
	if tty == nil {
		tty = term.StdTTY
	}

	lp := stream.NewLoop()
	viewDriver := view.NewDriver(lp, tty)
	storageDriver := storage.NewDriver(lp, app.Store)
	routeDriver := route.NewDriver(lp, app.InitialRoute)
	stateStore := comp.NewStateStore(lp, nil)

	sinks, err := app.Root(comp.Sources{
		ViewSource:     viewDriver.Source(),
		StorageSource:  storageDriver,
		RouteSource:    routeDriver.Stream(),
		comp.StateSink: stateStore.Source(),
	})
	if err != nil {
		return err
	}

	stateStore.Watch(sinks[comp.StateSink])
	render := viewDriver.Render
	if app.Debounce > 0 {
		render = debounced(lp, app.Debounce, viewDriver.Render)
	}
	sinks[comp.ViewSink].Subscribe(render)
	if s, ok := sinks[StorageSource]; ok {
		s.Subscribe(storageDriver.Persist)
	}
	if s, ok := sinks[RouteSource]; ok {
		s.Subscribe(routeDriver.Register)
	}
	if s, ok := sinks[EffectsSink]; ok {
		// Deferred so that a command always runs after the redraw of the
		// state change that requested it, when its target element exists.
		s.Subscribe(func(v any) {
			lp.Defer(func() { viewDriver.RunCommand(v) })
		})
	}

	viewDriver.Unhandled().Subscribe(func(k ui.Key) {
		switch k {
		case ui.K('q'), ui.K('C', ui.Ctrl):
			lp.Return(nil)
		default:
			routeDriver.HandleKey(k)
		}
	})

	restore, err := tty.Setup()
	if err != nil {
		return err
	}
	defer restore()

	var wg sync.WaitGroup
	defer wg.Wait()

	// Relay input events. The reader goroutine reads one event per request;
	// requests are sent from loop tasks, so they stop as soon as the loop
	// does and the goroutine winds down.
	reqRead := make(chan struct{}, 1)
	reqRead <- struct{}{}
	defer close(reqRead)
	defer tty.CloseReader()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range reqRead {
			event, err := tty.ReadEvent()
			if err == nil {
				lp.Post(func() {
					viewDriver.HandleEvent(event)
					reqRead <- struct{}{}
				})
			} else if err == term.ErrStopped {
				return
			} else if term.IsReadErrorRecoverable(err) {
				lp.Post(func() {
					logger.Println("error reading terminal:", err)
					reqRead <- struct{}{}
				})
			} else {
				lp.Return(err)
				return
			}
		}
	}()

	// Relay signals. Terminals deliver Ctrl-C as SIGINT rather than as a
	// byte, so quitting on it belongs here rather than in the key handler.
	sigCh := tty.NotifySignals()
	defer tty.StopSignals()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for sig := range sigCh {
			switch sig {
			case sys.SIGWINCH:
				lp.Post(func() { viewDriver.Redraw(true) })
			case syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP:
				lp.Return(nil)
			}
		}
	}()

	return lp.Run()
}

// debounced wraps draw so that only the latest of a burst of views is drawn.
func debounced(lp *stream.Loop, d time.Duration, draw func(any)) func(any) {
	var pending any
	var cancel func()
	return func(v any) {
		pending = v
		if cancel != nil {
			cancel()
		}
		cancel = lp.After(d, func() {
			cancel = nil
			draw(pending)
		})
	}
}
