// Package testlogger exposes test-scoped loggers for debugging placement
// tests.
package testlogger

import (
	"os"
	"testing"

	"github.com/go-kit/log"
)

// New returns a log.Logger bound to a test. Output is synchronized and
// tagged with the test name so interleaved tests stay readable.
func New(t *testing.T) log.Logger {
	t.Helper()

	return log.With(
		log.NewSyncLogger(log.NewLogfmtLogger(os.Stderr)),
		"test", t.Name(),
	)
}
