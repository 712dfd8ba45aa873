package testutil

import (
	"os"
	"strconv"
	"time"

	"github.com/tpresley/todomvc-cycle/pkg/env"
)

// Scaled returns d scaled by $TODOMVC_TEST_TIME_SCALE. If the environment
// variable does not exist or contains an invalid value, the scale defaults to
// 1. Tests that wait for events to happen use this so that the scale can be
// raised on slow machines.
func Scaled(d time.Duration) time.Duration {
	return time.Duration(float64(d) * getTestTimeScale())
}

func getTestTimeScale() float64 {
	env := os.Getenv(env.TODOMVC_TEST_TIME_SCALE)
	if env == "" {
		return 1
	}
	scale, err := strconv.ParseFloat(env, 64)
	if err != nil || scale <= 0 {
		return 1
	}
	return scale
}
