package todomvc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/tpresley/todomvc-cycle/pkg/config"
	"github.com/tpresley/todomvc-cycle/pkg/daemon"
	"github.com/tpresley/todomvc-cycle/pkg/daemon/daemondefs"
	"github.com/tpresley/todomvc-cycle/pkg/env"
	"github.com/tpresley/todomvc-cycle/pkg/logutil"
	"github.com/tpresley/todomvc-cycle/pkg/prog"
	"github.com/tpresley/todomvc-cycle/pkg/run"
	"github.com/tpresley/todomvc-cycle/pkg/store"
	"github.com/tpresley/todomvc-cycle/pkg/store/storedefs"
	"github.com/tpresley/todomvc-cycle/pkg/sys"
	"github.com/tpresley/todomvc-cycle/pkg/term"
	"github.com/tpresley/todomvc-cycle/pkg/ui"
)

// defaultDebounce is how long the UI waits for a newer view before drawing
// one, when the config does not say otherwise.
const defaultDebounce = 10 * time.Millisecond

var errNotTerminal = errors.New("todomvc requires a terminal on stdin and stdout")

// Program is the interactive UI subprogram. It accepts any invocation that
// reaches it, so it must come last in the composite.
var Program prog.Program = program{}

type program struct{}

func (program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	if len(args) > 0 {
		return prog.BadUsage("todomvc accepts no arguments")
	}

	cfg, err := loadConfig(f, fds[2])
	if err != nil {
		return err
	}
	if f.Log == "" && cfg.Log != "" {
		if err := logutil.SetOutputFile(cfg.Log); err != nil {
			fmt.Fprintln(fds[2], "warning:", err)
		}
	}

	filter := f.Filter
	if filter == "" {
		filter = cfg.Filter
	}
	initialRoute, err := filterRoute(filter)
	if err != nil {
		return prog.BadUsage(err.Error())
	}

	if !sys.IsATTY(fds[0].Fd()) || !sys.IsATTY(fds[1].Fd()) {
		return errNotTerminal
	}
	if os.Getenv(env.NO_COLOR) != "" {
		ui.NoColor = true
	}

	st, err := openStore(fds[2], f, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	debounce := defaultDebounce
	if cfg.Debounce > 0 {
		debounce = time.Duration(cfg.Debounce)
	}

	return run.App{
		TTY:          term.NewTTY(fds[0], fds[1]),
		Store:        st,
		Root:         App(),
		InitialRoute: initialRoute,
		Debounce:     debounce,
	}.Run()
}

// loadConfig loads the config file named by -config, or the one at the
// default path. An unusable default path or file only warns; an explicitly
// given file must load.
func loadConfig(f *prog.Flags, stderr io.Writer) (config.Config, error) {
	if f.Config != "" {
		return config.Load(f.Config)
	}
	path, err := config.Path()
	if err == nil {
		var cfg config.Config
		cfg, err = config.Load(path)
		if err == nil {
			return cfg, nil
		}
	}
	fmt.Fprintf(stderr, "warning: %v; continuing with defaults\n", err)
	return config.Config{}, nil
}

// filterRoute maps a filter name from the CLI or config to the route the UI
// starts on. An empty route means the default of the routing driver.
func filterRoute(filter string) (string, error) {
	switch filter {
	case "", "all":
		return "", nil
	case "active":
		return "/active", nil
	case "completed":
		return "/completed", nil
	}
	return "", fmt.Errorf(`invalid filter %q, want "active" or "completed"`, filter)
}

// openStore opens the backing store, directly or through the storage
// daemon. The daemon is used when the config sets daemon or when a socket
// path is given; it is spawned as needed.
func openStore(stderr io.Writer, f *prog.Flags, cfg config.Config) (storedefs.Store, error) {
	dbPath := f.DB
	if dbPath == "" {
		dbPath = cfg.DB
	}
	if dbPath == "" {
		p, err := config.DBPath()
		if err != nil {
			return nil, err
		}
		dbPath = p
	}

	sockPath := f.Sock
	if sockPath == "" {
		sockPath = cfg.Sock
	}
	if sockPath == "" && !cfg.Daemon {
		return store.NewStore(dbPath)
	}

	runDir, err := config.RunDir()
	if err != nil {
		return nil, err
	}
	if sockPath == "" {
		sockPath = filepath.Join(runDir, "sock")
	}
	cl, err := daemon.Activate(stderr, &daemondefs.SpawnConfig{
		DbPath: dbPath, SockPath: sockPath, RunDir: runDir})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to storage daemon: %w", err)
	}
	return cl, nil
}
