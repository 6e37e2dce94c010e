package secrets

import (
	"bytes"
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	kerrors "github.com/selfcheck/datacard/internal/errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

// MinPasswordLength is the shortest password accepted on export.
const MinPasswordLength = 6

const (
	keySize   = 32
	saltSize  = 16
	nonceSize = 24

	// magic(4) time(4) memory(4) threads(1)
	paramsSize = 4 + 4 + 4 + 1
	headerSize = paramsSize + saltSize + nonceSize

	// Open reads the parameters from an untrusted card, so they are capped
	// at what a desktop can derive in a few seconds.
	maxTime      = 8
	maxMemoryKiB = 256 << 10
	maxThreads   = 16
)

var envelopeMagic = []byte("DCS1")

// KDFParams are the argon2id parameters used to derive a key from a password.
type KDFParams struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultKDFParams follows the argon2 package's recommended settings.
var DefaultKDFParams = KDFParams{Time: 1, MemoryKiB: 64 * 1024, Threads: 4}

// Validate checks that p is within the range Seal writes and Open accepts.
func (p KDFParams) Validate() error {
	if p.Time == 0 || p.Time > maxTime {
		return fmt.Errorf("argon2 time must be in [1, %d], got %d", maxTime, p.Time)
	}
	if p.Threads == 0 || p.Threads > maxThreads {
		return fmt.Errorf("argon2 threads must be in [1, %d], got %d", maxThreads, p.Threads)
	}
	if p.MemoryKiB < 8*uint32(p.Threads) || p.MemoryKiB > maxMemoryKiB {
		return fmt.Errorf("argon2 memory must be in [%d, %d] KiB, got %d", 8*uint32(p.Threads), maxMemoryKiB, p.MemoryKiB)
	}
	return nil
}

// DeriveKey derives a secretbox key from password and salt.
func DeriveKey(password, salt []byte, p KDFParams) *[keySize]byte {
	var key [keySize]byte
	copy(key[:], argon2.IDKey(password, salt, p.Time, p.MemoryKiB, p.Threads, keySize))
	return &key
}

// Seal encrypts plaintext with a key derived from password. The returned
// envelope carries the KDF parameters, salt and nonce needed by Open.
func Seal(plaintext, password []byte, p KDFParams) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
	}

	header := make([]byte, headerSize)
	copy(header, envelopeMagic)
	binary.LittleEndian.PutUint32(header[4:], p.Time)
	binary.LittleEndian.PutUint32(header[8:], p.MemoryKiB)
	header[12] = p.Threads

	salt := header[paramsSize : paramsSize+saltSize]
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("%w: reading salt: %v", kerrors.ErrEncryptFailed, err)
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("%w: reading nonce: %v", kerrors.ErrEncryptFailed, err)
	}
	copy(header[paramsSize+saltSize:], nonce[:])

	key := DeriveKey(password, salt, p)
	return secretbox.Seal(header, plaintext, &nonce, key), nil
}

// Open decrypts an envelope produced by Seal. A wrong password, a damaged
// envelope and foreign data all return ErrDecryptFailed.
func Open(envelope, password []byte) ([]byte, error) {
	if len(envelope) < headerSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: envelope is %d bytes", kerrors.ErrDecryptFailed, len(envelope))
	}
	if !bytes.Equal(envelope[:4], envelopeMagic) {
		return nil, fmt.Errorf("%w: unknown envelope", kerrors.ErrDecryptFailed)
	}

	p := KDFParams{
		Time:      binary.LittleEndian.Uint32(envelope[4:]),
		MemoryKiB: binary.LittleEndian.Uint32(envelope[8:]),
		Threads:   envelope[12],
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrDecryptFailed, err)
	}

	salt := envelope[paramsSize : paramsSize+saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], envelope[paramsSize+saltSize:headerSize])

	key := DeriveKey(password, salt, p)
	plaintext, ok := secretbox.Open(nil, envelope[headerSize:], &nonce, key)
	if !ok {
		return nil, fmt.Errorf("%w: wrong password or damaged card", kerrors.ErrDecryptFailed)
	}
	return plaintext, nil
}

// IsEnvelope reports whether data starts like a Seal envelope.
func IsEnvelope(data []byte) bool {
	return len(data) >= headerSize+secretbox.Overhead && bytes.Equal(data[:4], envelopeMagic)
}

// ValidatePassword enforces the export password rules: a minimum length in
// characters and, when requireConfirm is set, a matching confirmation.
func ValidatePassword(password, confirm []byte, requireConfirm bool) error {
	if n := utf8.RuneCount(password); n < MinPasswordLength {
		return fmt.Errorf("%w: %d characters, need at least %d", kerrors.ErrPasswordTooShort, n, MinPasswordLength)
	}
	if requireConfirm && subtle.ConstantTimeCompare(password, confirm) != 1 {
		return kerrors.ErrPasswordMismatch
	}
	return nil
}
