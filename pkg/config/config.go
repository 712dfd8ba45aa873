// Package config loads todomvc's configuration file and derives the standard
// paths used by the program.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tpresley/todomvc-cycle/pkg/env"
	"github.com/tpresley/todomvc-cycle/pkg/fsutil"
)

// Config is the configuration file of todomvc. All fields are optional;
// command-line flags override values given here.
type Config struct {
	// DB is the path to the database file.
	DB string `yaml:"db"`
	// Sock is the path to the daemon socket. Setting it implies Daemon.
	Sock string `yaml:"sock"`
	// Daemon makes todomvc access the database through the storage daemon,
	// spawning it if needed.
	Daemon bool `yaml:"daemon"`
	// Filter is the initial filter, "active" or "completed". Empty shows all
	// todos.
	Filter string `yaml:"filter"`
	// Debounce is the delay used to coalesce consecutive view updates.
	Debounce Duration `yaml:"debounce"`
	// Log is a path to write debug logs to.
	Log string `yaml:"log"`
}

// Duration wraps time.Duration so that it can be written in the configuration
// file as a string like "10ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// Load reads the configuration file at path. A missing file is not an error
// and yields a zero Config.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the default path of the configuration file,
// $XDG_CONFIG_HOME/todomvc/config.yaml, with ~/.config substituted when
// $XDG_CONFIG_HOME is unset.
func Path() (string, error) {
	base := os.Getenv(env.XDG_CONFIG_HOME)
	if base == "" {
		home, err := fsutil.GetHome()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "todomvc", "config.yaml"), nil
}

// DBPath returns the default path of the database file,
// $XDG_DATA_HOME/todomvc/db.bolt, with ~/.local/share substituted when
// $XDG_DATA_HOME is unset. It creates the containing directory if it doesn't
// exist yet.
func DBPath() (string, error) {
	base := os.Getenv(env.XDG_DATA_HOME)
	if base == "" {
		home, err := fsutil.GetHome()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	db := filepath.Join(base, "todomvc", "db.bolt")
	return db, os.MkdirAll(filepath.Dir(db), 0700)
}
