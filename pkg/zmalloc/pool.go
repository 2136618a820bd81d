//go:build go1.22

package zmalloc

import (
	"unsafe"

	"github.com/flier/zmalloc/internal/debug"
	"github.com/flier/zmalloc/pkg/mem"
	"github.com/flier/zmalloc/pkg/xunsafe"
)

// pool is the head of one size class's arena chain. Fresh arenas are pushed
// at the head; within an arena, blocks stay address-ordered.
type pool struct {
	head xunsafe.Addr[arena]
}

// alloc returns a payload of aligned bytes from the pool, trying in order: a
// free block somewhere in the chain, a lazily appended block at some arena's
// tail, and finally a fresh arena of capacity bytes from the host.
//
// Returns nil only when the host refuses the mapping.
func (p *pool) alloc(aligned, capacity uintptr) unsafe.Pointer {
	if q := p.findFree(aligned); q != nil {
		return q
	}
	if q := p.extendTail(aligned); q != nil {
		return q
	}
	return p.grow(aligned, capacity)
}

// findFree scans the arena chain head to tail for the first free block large
// enough for the request, splitting off the surplus when it can still host a
// header plus a minimal payload.
func (p *pool) findFree(aligned uintptr) unsafe.Pointer {
	for aa := p.head; aa != 0; aa = aa.AssertValid().next {
		for ba := aa.AssertValid().blocks; ba != 0; ba = ba.AssertValid().next {
			b := ba.AssertValid()
			if !b.free || b.size < aligned {
				continue
			}

			b.free = false
			if b.size > aligned+blockSize+Align {
				b.split(aligned)
			}
			return b.payload()
		}
	}
	return nil
}

// extendTail appends a new in-use block past the last block of the first
// arena with enough room left before its end. Arenas are never
// pre-partitioned; they fill on demand.
func (p *pool) extendTail(aligned uintptr) unsafe.Pointer {
	for aa := p.head; aa != 0; aa = aa.AssertValid().next {
		ar := aa.AssertValid()
		prev := ar.last()

		pos := xunsafe.AddrOf(xunsafe.Cast[byte](prev)).Add(int(blockSize + prev.size))
		if pos.Add(int(blockSize+aligned)) > ar.end() {
			continue
		}

		nb := xunsafe.Cast[block](pos.AssertValid())
		nb.size = aligned
		nb.free = false
		nb.next = 0
		prev.next = xunsafe.AddrOf(nb)

		return nb.payload()
	}
	return nil
}

// grow maps a fresh arena of capacity bytes, carves the first block out of
// it, and pushes the arena at the head of the pool.
func (p *pool) grow(aligned, capacity uintptr) unsafe.Pointer {
	base, err := mem.Map(int(capacity))
	if err != nil {
		debug.Logf("grow", "map failed: %v", err)
		return nil
	}

	ar := xunsafe.Cast[arena](base.AssertValid())
	ar.size = capacity
	ar.next = p.head

	first := xunsafe.ByteAdd[block](ar, arenaSize)
	first.size = aligned
	first.free = false
	first.next = 0
	ar.blocks = xunsafe.AddrOf(first)

	p.head = xunsafe.AddrOf(ar)
	debug.Logf("grow", "arena %#x, %d bytes", uintptr(p.head), capacity)

	return first.payload()
}

// findBlock returns the block header at cand if this pool owns one, by
// walking every arena's chain, and nil otherwise.
func (p *pool) findBlock(cand xunsafe.Addr[block]) *block {
	for aa := p.head; aa != 0; aa = aa.AssertValid().next {
		for ba := aa.AssertValid().blocks; ba != 0; ba = ba.AssertValid().next {
			if ba == cand {
				return ba.AssertValid()
			}
		}
	}
	return nil
}

// findArena locates the arena whose single block sits at cand. Only
// meaningful for the large pool, where every arena carries exactly one block.
func (p *pool) findArena(cand xunsafe.Addr[block]) *arena {
	for aa := p.head; aa != 0; aa = aa.AssertValid().next {
		if aa.AssertValid().blocks == cand {
			return aa.AssertValid()
		}
	}
	return nil
}

// unlink removes ar from the chain, handling the head specially.
func (p *pool) unlink(ar *arena) {
	target := xunsafe.AddrOf(ar)
	if p.head == target {
		p.head = ar.next
		return
	}

	for aa := p.head; aa != 0; aa = aa.AssertValid().next {
		cur := aa.AssertValid()
		if cur.next == target {
			cur.next = ar.next
			return
		}
	}
}
