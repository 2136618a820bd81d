//go:build go1.22

package zmalloc

// PoolStats counts one pool's arenas and live blocks.
type PoolStats struct {
	Arenas     int
	LiveBlocks int
	LiveBytes  uintptr
}

// AllocStats is a point-in-time snapshot of the whole heap.
type AllocStats struct {
	Tiny, Small, Large PoolStats
}

// TotalLiveBytes sums the live payload bytes across the three pools.
func (st AllocStats) TotalLiveBytes() uintptr {
	return st.Tiny.LiveBytes + st.Small.LiveBytes + st.Large.LiveBytes
}

// Stats gathers per-pool counters under the allocator lock.
func Stats() AllocStats {
	global.mu.Lock()
	defer global.mu.Unlock()

	return AllocStats{
		Tiny:  global.pools[tiny].stats(),
		Small: global.pools[small].stats(),
		Large: global.pools[large].stats(),
	}
}

func (p *pool) stats() (st PoolStats) {
	for aa := p.head; aa != 0; aa = aa.AssertValid().next {
		st.Arenas++
		for ba := aa.AssertValid().blocks; ba != 0; ba = ba.AssertValid().next {
			b := ba.AssertValid()
			if b.free {
				continue
			}
			st.LiveBlocks++
			st.LiveBytes += b.size
		}
	}
	return
}
