// Package env keeps names of environment variables with special significance
// to todomvc.
package env

// Environment variables with special significance to todomvc.
//
// Note that some of these env vars may be significant only in special
// circumstances, such as when running unit tests.
const (
	HOME                    = "HOME"
	NO_COLOR                = "NO_COLOR"
	TODOMVC_TEST_TIME_SCALE = "TODOMVC_TEST_TIME_SCALE"
	XDG_CONFIG_HOME         = "XDG_CONFIG_HOME"
	XDG_DATA_HOME           = "XDG_DATA_HOME"
	XDG_RUNTIME_DIR         = "XDG_RUNTIME_DIR"
)
