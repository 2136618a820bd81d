package debug

import (
	"testing"

	"github.com/timandy/routine"
)

var sink = routine.NewThreadLocal[testing.TB]()

// Capture redirects this goroutine's heap traces to t for the remainder of
// the test, so a failing allocation sequence carries its own trace.
func Capture(t testing.TB) {
	t.Helper()

	prev := sink.Get()
	sink.Set(t)
	t.Cleanup(func() { sink.Set(prev) })
}
