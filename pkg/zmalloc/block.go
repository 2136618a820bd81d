//go:build go1.22

package zmalloc

import (
	"unsafe"

	"github.com/flier/zmalloc/pkg/xunsafe"
)

// block precedes every payload handed out by the allocator. It lives inside
// the mapped region it describes, immediately before the payload bytes.
//
// Blocks within an arena are strictly address-ordered along the next chain.
type block struct {
	size uintptr // payload bytes; a positive multiple of Align
	next xunsafe.Addr[block]
	free bool
	_    [15]byte // pads the header to a multiple of Align so payloads stay aligned
}

// arena heads one region obtained from the host. The arena owns every byte
// in [base, base+size), including its own header and all block headers.
type arena struct {
	size   uintptr // total mapped bytes, headers included
	next   xunsafe.Addr[arena]
	blocks xunsafe.Addr[block] // non-zero once constructed
	_      [8]byte // keeps the first payload aligned
}

const (
	blockSize = unsafe.Sizeof(block{})
	arenaSize = unsafe.Sizeof(arena{})
)

// payload returns the caller-visible bytes of b, one header past its start.
func (b *block) payload() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(b), blockSize)
}

// headerOf maps a caller pointer back to the address its block header would
// occupy. The result is a candidate only; nothing has validated it yet.
func headerOf(p unsafe.Pointer) xunsafe.Addr[block] {
	return xunsafe.Addr[block](uintptr(p) - blockSize)
}

// split carves the surplus beyond aligned bytes off b into a new free block.
// The caller has already checked the surplus can host a header plus at least
// Align bytes of payload.
func (b *block) split(aligned uintptr) {
	nb := xunsafe.ByteAdd[block](b, blockSize+aligned)
	nb.size = b.size - aligned - blockSize
	nb.free = true
	nb.next = b.next

	b.size = aligned
	b.next = xunsafe.AddrOf(nb)
}

// base returns the first byte of the arena's mapping.
func (a *arena) base() xunsafe.Addr[byte] {
	return xunsafe.AddrOf(xunsafe.Cast[byte](a))
}

// end returns the first byte past the arena's mapping.
func (a *arena) end() xunsafe.Addr[byte] {
	return a.base().Add(int(a.size))
}

// last walks to the final block of the arena's chain.
func (a *arena) last() *block {
	b := a.blocks.AssertValid()
	for b.next != 0 {
		b = b.next.AssertValid()
	}
	return b
}
