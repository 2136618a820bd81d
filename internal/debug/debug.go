//go:build debug

// Package debug traces heap operations when the allocator is built with the
// debug tag. Without the tag, every hook compiles to a no-op.
package debug

import (
	"flag"
	"fmt"
	"os"
	"regexp"

	"github.com/timandy/routine"

	"github.com/flier/zmalloc/internal/xflag"
)

// Enabled is true when the allocator is built with the debug tag.
const Enabled = true

var (
	tracePattern = xflag.Func("filter", "regexp to filter heap traces by", regexp.Compile)
	nocapture    = flag.Bool("nocapture", false, "disables capturing heap traces as test logs")
)

// Logf records one heap operation. op names it (alloc, free, realloc, grow,
// unmap); format and args describe the block or arena it touched.
//
// Traces go to stderr prefixed with the goroutine id, so interleavings under
// lock contention stay attributable. While a test registered with [Capture]
// is running on the calling goroutine, traces go to its log instead.
func Logf(op, format string, args ...any) {
	line := fmt.Sprintf("zmalloc [g%04d] %s: %s",
		routine.Goid(), op, fmt.Sprintf(format, args...))

	if p := *tracePattern; p != nil && !p.MatchString(line) {
		return
	}

	if t := sink.Get(); t != nil && !*nocapture {
		t.Log(line)
		return
	}

	_, _ = fmt.Fprintln(os.Stderr, line)
}
