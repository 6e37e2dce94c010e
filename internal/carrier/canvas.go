package carrier

import (
	"image"
	"image/color"
)

// Card background gradient, top to bottom.
var (
	canvasTop    = color.NRGBA{R: 0x2b, G: 0x3a, B: 0x67, A: 0xff}
	canvasBottom = color.NRGBA{R: 0xe8, G: 0xb4, B: 0xbc, A: 0xff}
)

// NewCanvas returns a fresh, fully opaque card background.
func NewCanvas(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		c := lerp(canvasTop, canvasBottom, y, height)
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func lerp(a, b color.NRGBA, i, n int) color.NRGBA {
	if n <= 1 {
		return a
	}
	mix := func(x, y uint8) uint8 {
		return uint8((int(x)*(n-1-i) + int(y)*i) / (n - 1))
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}
