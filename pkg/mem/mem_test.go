//go:build go1.21

package mem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flier/zmalloc/pkg/mem"
	"github.com/flier/zmalloc/pkg/xerrors"
)

func TestPagesize(t *testing.T) {
	t.Parallel()

	page := mem.Pagesize()
	assert.Greater(t, page, 0)
	assert.Zero(t, page&(page-1), "page size is a power of two")
	assert.Equal(t, page, mem.Pagesize(), "memoized")
}

func TestMapUnmap(t *testing.T) {
	n := mem.Pagesize() * 4

	addr, err := mem.Map(n)
	require.NoError(t, err)
	require.NotZero(t, addr)
	assert.Zero(t, uintptr(addr)%uintptr(mem.Pagesize()), "mapping is page-aligned")

	// Fresh mappings arrive zeroed and writable.
	p := addr.AssertValid()
	for _, off := range []int{0, 1, n / 2, n - 1} {
		b := addr.Add(off).AssertValid()
		assert.Zero(t, *b)
		*b = 0xa5
	}
	assert.EqualValues(t, 0xa5, *p)

	require.NoError(t, mem.Unmap(addr, n))
}

func TestMapFailure(t *testing.T) {
	_, err := mem.Map(-1)
	require.Error(t, err)

	me, ok := xerrors.AsA[*mem.MapError](err)
	require.True(t, ok)
	assert.Equal(t, -1, me.Size)
	assert.ErrorContains(t, err, "map -1 bytes")
}
