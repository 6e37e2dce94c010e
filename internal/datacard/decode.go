package datacard

import (
	"encoding/binary"
	"fmt"
	"image"

	kerrors "github.com/selfcheck/datacard/internal/errors"
)

// Header describes a card without its payload.
type Header struct {
	Version Version

	// MagicLen is the length of the matched marker.
	MagicLen int

	// Length is the payload size stored in the container.
	Length int
}

// Result is the outcome of a successful decode.
type Result struct {
	Payload []byte
	Version Version
}

// Encrypted reports whether the payload is ciphertext.
func (r Result) Encrypted() bool {
	return r.Version.Encrypted()
}

// Peek runs the header pass: it identifies the marker and validates the
// length field without reading the payload.
func (f Format) Peek(img *image.NRGBA) (Header, error) {
	if err := f.Validate(); err != nil {
		return Header{}, err
	}
	r, err := f.region(img)
	if err != nil {
		return Header{}, err
	}
	return f.peek(r)
}

func (f Format) peek(r region) (Header, error) {
	header := r.read(f.headerSize())

	v, magicLen, ok := f.Detect(header)
	if !ok {
		return Header{}, kerrors.ErrInvalidMagic
	}
	if len(header) < magicLen+lengthSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, region holds %d",
			kerrors.ErrTruncated, magicLen+lengthSize, len(header))
	}

	length := binary.LittleEndian.Uint32(header[magicLen:])
	bound := uint64(r.img.Rect.Dx()) * uint64(r.img.Rect.Dy()) * channelsPerPixel
	if length == 0 || uint64(length) > bound {
		return Header{}, fmt.Errorf("%w: %d not in (0, %d]", kerrors.ErrInvalidLength, length, bound)
	}

	return Header{Version: v, MagicLen: magicLen, Length: int(length)}, nil
}

// Decode extracts the payload of the card held by img. On failure the
// returned Result is the zero value.
func (f Format) Decode(img *image.NRGBA) (Result, error) {
	if err := f.Validate(); err != nil {
		return Result{}, err
	}
	r, err := f.region(img)
	if err != nil {
		return Result{}, err
	}

	h, err := f.peek(r)
	if err != nil {
		return Result{}, err
	}

	// Second pass from the start of the region.
	start := h.MagicLen + lengthSize
	need := start + h.Length
	data := r.read(need)
	if len(data) < need {
		return Result{}, fmt.Errorf("%w: container needs %d bytes, region holds %d",
			kerrors.ErrTruncated, need, len(data))
	}

	return Result{Payload: data[start:need:need], Version: h.Version}, nil
}

// Decode extracts a card from img using DefaultFormat.
func Decode(img *image.NRGBA) (Result, error) {
	return DefaultFormat.Decode(img)
}
