//go:build go1.22

package zmalloc

import (
	"math"

	"github.com/flier/zmalloc/pkg/mem"
	"github.com/flier/zmalloc/pkg/xunsafe/layout"
)

// Align is the alignment of every payload returned by [Malloc].
const Align = 16

// Size-class thresholds, applied to the raw request size before alignment.
const (
	TinyMax  = 128  // largest request served from the tiny pool
	SmallMax = 2048 // largest request served from the small pool
)

// Arena capacities for the pooled classes, in pages. Chosen so that at least
// a hundred maximum-sized blocks fit per arena.
const (
	tinyArenaPages  = 8
	smallArenaPages = 52
)

// class identifies one of the three size-segregated pools.
type class int

const (
	tiny class = iota
	small
	large

	numClasses
)

func (c class) String() string {
	switch c {
	case tiny:
		return "TINY"
	case small:
		return "SMALL"
	default:
		return "LARGE"
	}
}

// alignSize rounds n up to the next multiple of Align.
//
// It reports false for non-positive sizes and for sizes so large that the
// rounding itself would overflow.
func alignSize(n int) (uintptr, bool) {
	if n <= 0 || n > math.MaxInt-(Align-1) {
		return 0, false
	}
	return uintptr(layout.RoundUp(n, Align)), true
}

// classify maps a raw request size to its pool and to the capacity a fresh
// arena for that pool should be mapped with.
//
// Classification looks at the request as the caller made it, never at the
// aligned size.
func classify(n int) (class, uintptr) {
	page := uintptr(mem.Pagesize())

	switch {
	case n <= TinyMax:
		return tiny, tinyArenaPages * page
	case n <= SmallMax:
		return small, smallArenaPages * page
	default:
		aligned, _ := alignSize(n)
		return large, layout.RoundUp(aligned+blockSize+arenaSize, page)
	}
}
