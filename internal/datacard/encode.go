package datacard

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	kerrors "github.com/selfcheck/datacard/internal/errors"
)

// Encode writes payload into the reserved region of img as a card of
// version v. If the container does not fit, ErrPayloadTooLarge is returned
// and img is left unmodified. An empty payload is ErrInvalidLength, since
// a zero length field never decodes.
func (f Format) Encode(img *image.NRGBA, payload []byte, v Version) error {
	if err := f.Validate(); err != nil {
		return err
	}
	magic := f.Magic(v)
	if magic == nil {
		return fmt.Errorf("%w: unknown version %d", kerrors.ErrInvalidFormat, v)
	}

	if len(payload) == 0 {
		return fmt.Errorf("%w: payload is empty", kerrors.ErrInvalidLength)
	}

	r, err := f.region(img)
	if err != nil {
		return err
	}

	total := ContainerSize(len(magic), len(payload))
	if uint64(len(payload)) > math.MaxUint32 || total > r.capacity() {
		return fmt.Errorf("%w: container needs %d bytes, %dx%d image holds %d",
			kerrors.ErrPayloadTooLarge, total, img.Rect.Dx(), img.Rect.Dy(), r.capacity())
	}

	container := make([]byte, 0, total)
	container = append(container, magic...)
	container = binary.LittleEndian.AppendUint32(container, uint32(len(payload)))
	container = append(container, payload...)

	r.write(container)
	return nil
}

// Encode writes payload into img using DefaultFormat.
func Encode(img *image.NRGBA, payload []byte, encrypted bool) error {
	return DefaultFormat.Encode(img, payload, VersionFor(encrypted))
}
