//go:build go1.21

package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flier/zmalloc/pkg/xunsafe/layout"
)

func TestSizeAlign(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 8, layout.Size[int64]())
	assert.Equal(t, 1, layout.Size[byte]())
	assert.Equal(t, 8, layout.Align[int64]())

	l := layout.Of[struct {
		A int64
		B byte
	}]()
	assert.Equal(t, 16, l.Size)
	assert.Equal(t, 8, l.Align)
}

func TestRounding(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 16, layout.RoundUp(1, 16))
	assert.Equal(t, 16, layout.RoundUp(16, 16))
	assert.Equal(t, 32, layout.RoundUp(17, 16))
	assert.Equal(t, 0, layout.RoundDown(15, 16))
	assert.Equal(t, 16, layout.RoundDown(31, 16))
	assert.Equal(t, 15, layout.Padding(1, 16))
	assert.Equal(t, 0, layout.Padding(32, 16))
}
