package player

import (
	"fmt"
	"strings"
)

// Each pixel is drawn as two full blocks so it comes out roughly square
// on common terminal fonts (cells are about twice as tall as wide).
const pixelBlocks = "██"

// RenderPixel returns the escape sequence drawing one pixel: a truecolor
// foreground set followed by a pair of block characters.
func RenderPixel(r, g, b byte) string {
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s", r, g, b, pixelBlocks)
}

// Rasterize converts a decoded frame into one escape string per pixel
// row, top to bottom. A nil frame, zero dimensions or truncated pixel
// data produce an empty raster.
func Rasterize(f *Frame) RasterFrame {
	if f == nil || f.Width <= 0 || f.Height <= 0 || len(f.RGB) < f.Width*f.Height*3 {
		return RasterFrame{}
	}

	rows := make([]string, f.Height)
	var sb strings.Builder
	for y := 0; y < f.Height; y++ {
		sb.Reset()
		// Worst case per pixel: 19 escape bytes plus 6 for the two blocks
		sb.Grow(f.Width * 25)
		base := y * f.Width * 3
		for x := 0; x < f.Width; x++ {
			off := base + x*3
			sb.WriteString(RenderPixel(f.RGB[off], f.RGB[off+1], f.RGB[off+2]))
		}
		rows[y] = sb.String()
	}

	return RasterFrame{Rows: rows, Width: f.Width, Height: f.Height}
}
