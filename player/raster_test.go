package player

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPixel(t *testing.T) {
	assert.Equal(t, "\x1b[38;2;255;0;128m██", RenderPixel(255, 0, 128))
	assert.Equal(t, "\x1b[38;2;0;0;0m██", RenderPixel(0, 0, 0))
	assert.Equal(t, "\x1b[38;2;1;2;3m██", RenderPixel(1, 2, 3))
}

func TestRasterizeRowOrder(t *testing.T) {
	// 2x2 frame: red, green / blue, white
	f := &Frame{
		Width:  2,
		Height: 2,
		RGB: []byte{
			255, 0, 0, 0, 255, 0,
			0, 0, 255, 255, 255, 255,
		},
	}

	r := Rasterize(f)
	require.Len(t, r.Rows, 2)
	assert.Equal(t, 2, r.Width)
	assert.Equal(t, 2, r.Height)

	assert.Equal(t, RenderPixel(255, 0, 0)+RenderPixel(0, 255, 0), r.Rows[0])
	assert.Equal(t, RenderPixel(0, 0, 255)+RenderPixel(255, 255, 255), r.Rows[1])

	// Two block characters per pixel, nothing else printable
	assert.Equal(t, 4, strings.Count(r.Rows[0], "█"))
}

func TestRasterizeEmpty(t *testing.T) {
	assert.Empty(t, Rasterize(nil).Rows)
	assert.Empty(t, Rasterize(&Frame{}).Rows)
	assert.Empty(t, Rasterize(&Frame{Width: 2, Height: 2}).Rows, "missing pixel data")
	assert.Empty(t, Rasterize(&Frame{Width: 2, Height: 2, RGB: []byte{1, 2, 3}}).Rows, "truncated pixel data")
}

func TestRasterizeIdempotent(t *testing.T) {
	f := &Frame{
		Width:  3,
		Height: 1,
		RGB:    []byte{10, 20, 30, 40, 50, 60, 70, 80, 90},
	}

	first := Rasterize(f)
	second := Rasterize(f)
	assert.Equal(t, first, second)
}
