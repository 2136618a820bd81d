//go:build go1.21

// Package mem wraps the host's anonymous page-mapping primitive.
//
// The allocator's only way of obtaining memory is to ask the host for fresh
// writable pages and to hand them back wholesale; this package is that
// boundary. Mappings are private, anonymous, readable-writable and
// zero-filled, and must be released with the exact size they were obtained
// with.
package mem

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/flier/zmalloc/pkg/xunsafe"
)

// Pagesize returns the host page size, queried once per process.
var Pagesize = sync.OnceValue(os.Getpagesize)

// MapError reports a mapping request the host refused.
type MapError struct {
	Size int
	Err  error
}

func (e *MapError) Error() string {
	return fmt.Sprintf("mem: map %d bytes: %v", e.Size, e.Err)
}

func (e *MapError) Unwrap() error { return e.Err }

// Map obtains n bytes of fresh, zero-filled, private anonymous memory from
// the host. n must be a positive multiple of [Pagesize].
//
// The returned address is page-aligned and invisible to the garbage
// collector; the region stays valid until the matching [Unmap].
func Map(n int) (xunsafe.Addr[byte], error) {
	b, err := unix.Mmap(-1, 0, n,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return 0, &MapError{Size: n, Err: err}
	}

	return xunsafe.AddrOf(unsafe.SliceData(b)), nil
}

// Unmap releases exactly the n bytes previously mapped at addr.
func Unmap(addr xunsafe.Addr[byte], n int) error {
	return unix.Munmap(unsafe.Slice(addr.AssertValid(), n))
}
