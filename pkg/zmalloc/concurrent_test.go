//go:build go1.22

package zmalloc_test

import (
	"math/rand"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"

	"github.com/flier/zmalloc/pkg/zmalloc"
)

type liveAlloc struct {
	p    unsafe.Pointer
	size int
	tag  byte
}

// TestConcurrentChurn drives random alloc/free sequences from several
// goroutines at once. Every payload carries a per-allocation pattern that is
// verified just before its free; an overlap between two live payloads would
// show up as a corrupted pattern.
func TestConcurrentChurn(t *testing.T) {
	const (
		goroutines = 8
		iterations = 400
		maxHeld    = 16
	)

	before := zmalloc.Stats()

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)

		go func(seed int64) {
			defer wg.Done()

			rng := rand.New(rand.NewSource(seed))
			held := make([]liveAlloc, 0, maxHeld)
			tag := byte(seed)

			release := func(i int) {
				a := held[i]
				assert.True(t, check(a.p, a.size, a.tag), "payload overwritten")
				zmalloc.Free(a.p)
				held = append(held[:i], held[i+1:]...)
			}

			for i := 0; i < iterations; i++ {
				if len(held) == maxHeld || (len(held) > 0 && rng.Intn(3) == 0) {
					release(rng.Intn(len(held)))
					continue
				}

				size := 1 + rng.Intn(4096)
				p := zmalloc.Malloc(size)
				if !assert.NotNil(t, p, "allocation failed") {
					continue
				}

				tag += 31
				fill(p, size, tag)
				held = append(held, liveAlloc{p, size, tag})
			}

			for len(held) > 0 {
				release(len(held) - 1)
			}
		}(int64(g))
	}

	wg.Wait()

	st := zmalloc.Stats()
	assert.Equal(t, before.Tiny.LiveBytes, st.Tiny.LiveBytes)
	assert.Equal(t, before.Small.LiveBytes, st.Small.LiveBytes)
	assert.Equal(t, before.Large.LiveBytes, st.Large.LiveBytes)
}
