package datacard

import (
	"fmt"
	"image"

	kerrors "github.com/selfcheck/datacard/internal/errors"
)

// region addresses the reserved rows of an image in scan order.
type region struct {
	img   *image.NRGBA
	x0    int
	y0    int
	width int
	rows  int
}

func (f Format) region(img *image.NRGBA) (region, error) {
	if img == nil {
		return region{}, fmt.Errorf("%w: nil image", kerrors.ErrCarrierTooSmall)
	}
	b := img.Rect
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return region{}, fmt.Errorf("%w: %dx%d", kerrors.ErrCarrierTooSmall, b.Dx(), b.Dy())
	}
	rows := f.rows(b.Dy())
	r := region{img: img, x0: b.Min.X, y0: b.Max.Y - rows, width: b.Dx(), rows: rows}

	// The last pixel must lie inside Pix, or indexing would panic.
	if last := r.offset(r.pixels() - 1); last < 0 || last+4 > len(img.Pix) {
		return region{}, fmt.Errorf("%w: pixel buffer shorter than its bounds", kerrors.ErrCarrierTooSmall)
	}
	return r, nil
}

func (r region) pixels() int {
	return r.width * r.rows
}

func (r region) capacity() int {
	return r.pixels() * channelsPerPixel
}

// offset returns the Pix index of the i-th pixel of the region.
func (r region) offset(i int) int {
	return r.img.PixOffset(r.x0+i%r.width, r.y0+i/r.width)
}

// read collects up to n channel bytes starting at the first pixel.
func (r region) read(n int) []byte {
	out := make([]byte, 0, min(n, r.capacity()))
	for i := 0; i < r.pixels() && len(out) < n; i++ {
		o := r.offset(i)
		for c := 0; c < channelsPerPixel && len(out) < n; c++ {
			out = append(out, r.img.Pix[o+c])
		}
	}
	return out
}

// write stores data starting at the first pixel and makes every touched
// pixel opaque. The caller guarantees data fits.
func (r region) write(data []byte) {
	for i, n := 0, 0; n < len(data); i++ {
		o := r.offset(i)
		for c := 0; c < channelsPerPixel && n < len(data); c++ {
			r.img.Pix[o+c] = data[n]
			n++
		}
		r.img.Pix[o+alphaChannel] = 0xff
	}
}
