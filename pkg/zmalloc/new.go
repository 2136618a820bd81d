//go:build go1.22

package zmalloc

import (
	"unsafe"

	"github.com/flier/zmalloc/pkg/xunsafe"
	"github.com/flier/zmalloc/pkg/xunsafe/layout"
)

// New allocates a value of type T on the allocator heap and initializes it
// with v. It returns nil when the underlying allocation fails or when T is
// zero-sized.
//
// T must not require alignment beyond [Align], and must not contain Go
// pointers: the heap is invisible to the garbage collector, so anything T
// points at would not be kept alive.
func New[T any](v T) *T {
	l := layout.Of[T]()
	if l.Align > Align {
		panic("zmalloc: over-aligned object")
	}

	p := xunsafe.Cast[T]((*byte)(Malloc(l.Size)))
	if p == nil {
		return nil
	}
	*p = v
	return p
}

// Delete releases a value previously allocated with [New].
func Delete[T any](p *T) {
	Free(unsafe.Pointer(p))
}
