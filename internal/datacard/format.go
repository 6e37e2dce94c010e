package datacard

import (
	"bytes"
	"fmt"

	kerrors "github.com/selfcheck/datacard/internal/errors"
)

// DataRows is the number of bottom rows reserved for the container.
const DataRows = 8

// Version markers.
const (
	MagicPlain     = "GJV1"
	MagicEncrypted = "GJCARD2"
)

const (
	lengthSize       = 4
	channelsPerPixel = 3
	alphaChannel     = 3
)

// Version identifies the container layout and whether the payload is ciphertext.
type Version int

const (
	VersionUnknown Version = iota
	VersionPlain
	VersionEncrypted
)

// String implements fmt.Stringer.
func (v Version) String() string {
	switch v {
	case VersionPlain:
		return "v1-plain"
	case VersionEncrypted:
		return "v2-encrypted"
	default:
		return "unknown"
	}
}

// Encrypted reports whether v marks a ciphertext payload.
func (v Version) Encrypted() bool {
	return v == VersionEncrypted
}

// VersionFor returns the version used for a payload that is or is not encrypted.
func VersionFor(encrypted bool) Version {
	if encrypted {
		return VersionEncrypted
	}
	return VersionPlain
}

// Format is the container definition shared by the encoder and the decoder.
type Format struct {
	// Rows is the height of the reserved region.
	Rows int

	// Plain is the marker of plaintext cards.
	Plain []byte

	// Encrypted is the marker of ciphertext cards.
	Encrypted []byte
}

// DefaultFormat is the format every card written by this package uses.
var DefaultFormat = Format{
	Rows:      DataRows,
	Plain:     []byte(MagicPlain),
	Encrypted: []byte(MagicEncrypted),
}

// Validate checks that the format can tell both versions apart.
func (f Format) Validate() error {
	if f.Rows <= 0 {
		return fmt.Errorf("%w: rows must be positive, got %d", kerrors.ErrInvalidFormat, f.Rows)
	}
	if len(f.Plain) == 0 || len(f.Encrypted) == 0 {
		return fmt.Errorf("%w: empty marker", kerrors.ErrInvalidFormat)
	}
	if bytes.Equal(f.Plain, f.Encrypted) {
		return fmt.Errorf("%w: markers must differ", kerrors.ErrInvalidFormat)
	}
	// Detection tries the encrypted marker first; if it prefixed the plain
	// marker no plain card could ever be read back.
	if bytes.HasPrefix(f.Plain, f.Encrypted) {
		return fmt.Errorf("%w: encrypted marker is a prefix of the plain marker", kerrors.ErrInvalidFormat)
	}
	return nil
}

// Magic returns the marker for v, or nil for an unknown version.
func (f Format) Magic(v Version) []byte {
	switch v {
	case VersionPlain:
		return f.Plain
	case VersionEncrypted:
		return f.Encrypted
	default:
		return nil
	}
}

// ContainerSize returns the number of bytes a container occupies.
func ContainerSize(magicLen, payloadLen int) int {
	return magicLen + lengthSize + payloadLen
}

// rows returns the reserved row count for an image of the given height.
func (f Format) rows(height int) int {
	return min(f.Rows, height)
}

// Capacity returns how many container bytes fit in the reserved region.
func (f Format) Capacity(width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	return width * f.rows(height) * channelsPerPixel
}

// MaxPayload returns the largest payload a card of version v can carry.
func (f Format) MaxPayload(width, height int, v Version) int {
	n := f.Capacity(width, height) - ContainerSize(len(f.Magic(v)), 0)
	return max(n, 0)
}

// headerSize is the number of bytes the header pass collects.
func (f Format) headerSize() int {
	return max(len(f.Plain), len(f.Encrypted)) + lengthSize
}

// Detect identifies the marker at the start of header. The encrypted
// marker is tried first.
func (f Format) Detect(header []byte) (Version, int, bool) {
	if bytes.HasPrefix(header, f.Encrypted) {
		return VersionEncrypted, len(f.Encrypted), true
	}
	if bytes.HasPrefix(header, f.Plain) {
		return VersionPlain, len(f.Plain), true
	}
	return VersionUnknown, 0, false
}

// Capacity reports the container capacity of DefaultFormat.
func Capacity(width, height int) int {
	return DefaultFormat.Capacity(width, height)
}
