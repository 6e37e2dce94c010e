// Package carrier loads and saves the images that hold data cards.
//
// Cards must survive a save/load cycle bit for bit, so only lossless
// formats are written (PNG, BMP, QOI). WebP and JPEG images can be read,
// for example to use a photo as the carrier, but never written.
package carrier

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/selfcheck/datacard/internal/errors"

	"github.com/xfmoulet/qoi"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Image formats.
const (
	FormatPNG  = "png"
	FormatBMP  = "bmp"
	FormatQOI  = "qoi"
	FormatWebP = "webp"
	FormatJPEG = "jpeg"
)

// Writable reports whether cards can be saved in format.
func Writable(format string) bool {
	switch format {
	case FormatPNG, FormatBMP, FormatQOI:
		return true
	default:
		return false
	}
}

// FormatFromPath guesses the image format from a file extension.
func FormatFromPath(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "jpg":
		return FormatJPEG
	case "qoif":
		return FormatQOI
	default:
		return ext
	}
}

// Decode reads an image in any registered format and returns it as NRGBA
// together with the format name.
func Decode(r io.Reader) (*image.NRGBA, string, error) {
	img, format, err := image.Decode(bufio.NewReader(r))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", kerrors.ErrUnsupportedImage
		}
		return nil, "", fmt.Errorf("decoding image: %w", err)
	}
	return ToNRGBA(img), format, nil
}

// ToNRGBA returns img as *image.NRGBA, converting when needed.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

// Encode writes img to w in a lossless format.
func Encode(w io.Writer, img *image.NRGBA, format string) error {
	switch format {
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatQOI:
		return qoi.Encode(w, img)
	default:
		return fmt.Errorf("%w: cannot write %q, use png, bmp or qoi", kerrors.ErrUnsupportedImage, format)
	}
}

// Load reads the image at path.
func Load(path string) (*image.NRGBA, string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%w: %s", kerrors.ErrFileNotFound, path)
		}
		return nil, "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	img, format, err := Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	return img, format, nil
}

// Save writes img to path. The file is written next to its destination
// and renamed into place, so a failed save never leaves half an image.
func Save(path string, img *image.NRGBA, format string) error {
	if !Writable(format) {
		return fmt.Errorf("%w: cannot write %q, use png, bmp or qoi", kerrors.ErrUnsupportedImage, format)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".datacard-*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := Encode(w, img, format); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding %s: %w", format, err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("moving card into place: %w", err)
	}
	return nil
}
