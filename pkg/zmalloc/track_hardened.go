//go:build hardened

package zmalloc

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/dolthub/maphash"
)

// The hardened build shadows every live payload address in a sharded set and
// aborts the process on double frees and frees of foreign pointers. The set
// is purely diagnostic: pointer resolution still goes through the pools, so
// the baseline contract is unchanged for well-behaved callers.

const trackShards = 64

type trackShard struct {
	mu   sync.Mutex
	live map[uintptr]struct{}
}

var (
	trackHash = maphash.NewHasher[uintptr]()
	tracked   [trackShards]trackShard
)

func shardOf(p unsafe.Pointer) *trackShard {
	return &tracked[trackHash.Hash(uintptr(p))%trackShards]
}

func registerPtr(p unsafe.Pointer) {
	s := shardOf(p)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.live == nil {
		s.live = make(map[uintptr]struct{})
	}
	if _, ok := s.live[uintptr(p)]; ok {
		panic(fmt.Sprintf("zmalloc: handed out live pointer %#x twice\n%s",
			uintptr(p), callerTrace()))
	}
	s.live[uintptr(p)] = struct{}{}
}

func forgetPtr(p unsafe.Pointer) {
	s := shardOf(p)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.live[uintptr(p)]; !ok {
		panic(fmt.Sprintf("zmalloc: double free of %#x\n%s",
			uintptr(p), callerTrace()))
	}
	delete(s.live, uintptr(p))
}

func badPointer(p unsafe.Pointer) {
	panic(fmt.Sprintf("zmalloc: %#x was never allocated here\n%s",
		uintptr(p), callerTrace()))
}

// callerTrace names the frames above the allocator's entry points, so a
// hardened abort points at the call site that misused the heap rather than
// at the tracker.
func callerTrace() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(3, pcs)

	var out strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&out, "\tat %s (%s:%d)\n",
			frame.Function, filepath.Base(frame.File), frame.Line)

		if !more {
			break
		}
	}

	return out.String()
}
