//go:build go1.22

// Package zmalloc implements a zoned, size-segregated heap allocator over the
// host's anonymous page-mapping primitive.
//
// Requests are split three ways: tiny (up to 128 bytes) and small (up to 2048
// bytes) requests share pre-reserved arenas of fixed capacity, while anything
// larger gets a dedicated mapping of its own. Every payload is preceded by an
// intrusive header that ties it back to its arena, so the allocator needs no
// side table: a pointer is resolved by scanning the pools it could belong to.
//
// The public surface mirrors the C allocation triad:
//
//	p := zmalloc.Malloc(64)
//	p = zmalloc.Realloc(p, 128)
//	zmalloc.Free(p)
//	zmalloc.ShowAllocMem()
//
// All entry points serialize on one process-wide mutex; concurrent callers
// observe a total order of heap operations. Tiny and small arenas live for
// the process lifetime and freed blocks in them are recycled in place; large
// mappings are returned to the host as soon as their block is freed.
//
// Memory handed out by this package is invisible to the garbage collector.
// Payloads must not store Go pointers, and every allocation must be released
// with [Free] (or by process exit, which reclaims all mappings).
package zmalloc

import (
	"sync"
	"unsafe"

	"github.com/flier/zmalloc/internal/debug"
	"github.com/flier/zmalloc/pkg/mem"
	"github.com/flier/zmalloc/pkg/xunsafe"
)

// state is the allocator singleton: three pool heads and the lock that
// guards every read and write of pool, arena, and block metadata.
type state struct {
	mu    sync.Mutex
	pools [numClasses]pool
}

var global state

// Malloc returns a pointer to at least size writable bytes, or nil when size
// is non-positive, the aligned size would overflow, or the host refuses to
// map more memory.
//
// The returned pointer is 16-byte aligned and uninitialized. It stays valid
// until passed to [Free] or [Realloc].
func Malloc(size int) unsafe.Pointer {
	global.mu.Lock()
	defer global.mu.Unlock()

	return global.alloc(size)
}

// Free releases a pointer previously returned by [Malloc] or [Realloc].
// A nil pointer is a no-op, as is a pointer this allocator never issued.
func Free(p unsafe.Pointer) {
	global.mu.Lock()
	defer global.mu.Unlock()

	global.release(p)
}

// Realloc resizes the allocation at p to at least size bytes.
//
// A nil p behaves as [Malloc]; a non-positive size behaves as [Free] and
// returns nil. When the existing block already covers the aligned size the
// pointer is returned unchanged. Otherwise a new block is allocated, the
// payload copied, and the old block freed; on allocation failure the
// original stays live and Realloc returns nil. A pointer this allocator
// never issued resolves to nothing and yields nil without being
// dereferenced.
func Realloc(p unsafe.Pointer, size int) unsafe.Pointer {
	if p == nil {
		return Malloc(size)
	}
	if size <= 0 {
		Free(p)
		return nil
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	b := global.resolve(headerOf(p))
	if b == nil {
		badPointer(p)
		return nil
	}

	aligned, ok := alignSize(size)
	if !ok {
		return nil
	}
	if b.size >= aligned {
		debug.Logf("realloc", "%#x keeps %d bytes for %d", uintptr(p), b.size, size)
		return p
	}

	np := global.alloc(size)
	if np == nil {
		return nil
	}

	// The copy happens while the old block is still live; it goes back on
	// the free chain only afterwards.
	n := min(b.size, uintptr(size))
	xunsafe.Copy((*byte)(np), (*byte)(p), n)
	global.release(p)

	debug.Logf("realloc", "%#x -> %#x, %d bytes", uintptr(p), uintptr(np), size)
	return np
}

// alloc is the lock-held allocation path shared by Malloc and Realloc.
func (s *state) alloc(size int) unsafe.Pointer {
	if size <= 0 {
		return nil
	}
	aligned, ok := alignSize(size)
	if !ok {
		return nil
	}

	c, capacity := classify(size)

	var p unsafe.Pointer
	if c == large {
		// Large arenas hold exactly one block apiece: their free unmaps the
		// whole mapping, so the page-rounding slack must never be carved
		// into a second block.
		p = s.pools[c].grow(aligned, capacity)
	} else {
		p = s.pools[c].alloc(aligned, capacity)
	}
	if p != nil {
		registerPtr(p)
		debug.Logf("alloc", "%v %#x, %d bytes", c, uintptr(p), size)
	}
	return p
}

// release is the lock-held free path shared by Free and Realloc.
//
// Tiny and small blocks flip their free bit and stay where they are; a large
// block takes its whole arena back to the host. Unknown pointers fall
// through silently (the hardened build aborts instead).
func (s *state) release(p unsafe.Pointer) {
	if p == nil {
		return
	}

	cand := headerOf(p)

	if b := s.pools[tiny].findBlock(cand); b != nil {
		forgetPtr(p)
		b.free = true
		debug.Logf("free", "%v %#x, %d bytes", tiny, uintptr(p), b.size)
		return
	}
	if b := s.pools[small].findBlock(cand); b != nil {
		forgetPtr(p)
		b.free = true
		debug.Logf("free", "%v %#x, %d bytes", small, uintptr(p), b.size)
		return
	}
	if ar := s.pools[large].findArena(cand); ar != nil {
		forgetPtr(p)
		s.pools[large].unlink(ar)
		size := ar.size
		debug.Logf("unmap", "%v %#x, arena %d bytes", large, uintptr(p), size)
		_ = mem.Unmap(ar.base(), int(size))
		return
	}

	badPointer(p)
}

// resolve maps a candidate header address back to its live block, searching
// the tiny, small, and large pools in that order.
func (s *state) resolve(cand xunsafe.Addr[block]) *block {
	if b := s.pools[tiny].findBlock(cand); b != nil {
		return b
	}
	if b := s.pools[small].findBlock(cand); b != nil {
		return b
	}
	if ar := s.pools[large].findArena(cand); ar != nil {
		return ar.blocks.AssertValid()
	}
	return nil
}

