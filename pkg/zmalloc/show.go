//go:build go1.22

package zmalloc

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
)

// dumpBuffers recycles the formatting buffers behind Dump, so inspecting the
// heap does not itself churn the Go heap.
var dumpBuffers = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// ShowAllocMem prints the live allocation map to standard output.
//
// The format is line-oriented and stable: each pool prints its label and the
// address of its first arena, then one line per live block in list order, and
// the dump ends with the total of live bytes across all three pools. Free
// blocks are omitted.
//
//	TINY : 0x104f08000
//	0x104f08040 - 0x104f08050 : 16 bytes
//	SMALL : 0x104f10000
//	...
//	Total : 16 bytes
func ShowAllocMem() {
	_ = Dump(os.Stdout)
}

// Dump writes the same allocation map as [ShowAllocMem] to w.
func Dump(w io.Writer) error {
	buf := dumpBuffers.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		dumpBuffers.Put(buf)
	}()

	global.mu.Lock()
	global.dump(buf)
	global.mu.Unlock()

	_, err := w.Write(buf.Bytes())
	return err
}

func (s *state) dump(buf *bytes.Buffer) {
	var total uintptr

	for c := tiny; c < numClasses; c++ {
		p := &s.pools[c]
		fmt.Fprintf(buf, "%v : %#x\n", c, uintptr(p.head))

		for aa := p.head; aa != 0; aa = aa.AssertValid().next {
			for ba := aa.AssertValid().blocks; ba != 0; ba = ba.AssertValid().next {
				b := ba.AssertValid()
				if b.free {
					continue
				}

				start := uintptr(b.payload())
				fmt.Fprintf(buf, "%#x - %#x : %d bytes\n", start, start+b.size, b.size)
				total += b.size
			}
		}
	}

	fmt.Fprintf(buf, "Total : %d bytes\n", total)
}
