//go:build go1.22

package zmalloc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flier/zmalloc/pkg/mem"
)

func TestHeaderLayout(t *testing.T) {
	t.Parallel()

	// Payload alignment hangs off both headers being Align multiples.
	assert.Zero(t, blockSize%Align)
	assert.Zero(t, arenaSize%Align)
}

func TestAlignSize(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		n    int
		want uintptr
	}{
		{1, 16},
		{15, 16},
		{16, 16},
		{17, 32},
		{1024, 1024},
		{2049, 2064},
	} {
		got, ok := alignSize(tc.n)
		assert.True(t, ok, "alignSize(%d)", tc.n)
		assert.Equal(t, tc.want, got, "alignSize(%d)", tc.n)
	}

	for _, n := range []int{0, -1, math.MinInt, math.MaxInt, math.MaxInt - 14} {
		_, ok := alignSize(n)
		assert.False(t, ok, "alignSize(%d)", n)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	page := uintptr(mem.Pagesize())

	for _, tc := range []struct {
		n        int
		class    class
		capacity uintptr
	}{
		{1, tiny, 8 * page},
		{128, tiny, 8 * page},
		{129, small, 52 * page},
		{2048, small, 52 * page},
	} {
		c, capacity := classify(tc.n)
		assert.Equal(t, tc.class, c, "classify(%d)", tc.n)
		assert.Equal(t, tc.capacity, capacity, "classify(%d)", tc.n)
	}

	c, capacity := classify(2049)
	assert.Equal(t, large, c)
	assert.Zero(t, capacity%page, "large capacity is page-rounded")
	assert.GreaterOrEqual(t, capacity, uintptr(2064)+blockSize+arenaSize)
}

func TestClassString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "TINY", tiny.String())
	assert.Equal(t, "SMALL", small.String())
	assert.Equal(t, "LARGE", large.String())
}
