package errors

import "errors"

// Codec errors are returned by the data-card encoder and decoder.
var (
	// ErrPayloadTooLarge indicates the container does not fit in the reserved region.
	ErrPayloadTooLarge = errors.New("payload too large for carrier image")

	// ErrInvalidMagic indicates no known version marker was found.
	ErrInvalidMagic = errors.New("no data card marker found")

	// ErrInvalidLength indicates the length field is zero or out of range.
	ErrInvalidLength = errors.New("invalid data card length")

	// ErrTruncated indicates the reserved region ended before the container did.
	ErrTruncated = errors.New("data card is truncated")

	// ErrInvalidFormat indicates a malformed format definition.
	ErrInvalidFormat = errors.New("invalid data card format")
)

// Cryptographic errors indicate failures around password protection.
var (
	// ErrEncryptFailed indicates the payload could not be encrypted.
	ErrEncryptFailed = errors.New("failed to encrypt payload")

	// ErrDecryptFailed indicates the payload could not be decrypted, usually a wrong password.
	ErrDecryptFailed = errors.New("failed to decrypt payload")

	// ErrPasswordTooShort indicates the password is below the minimum length.
	ErrPasswordTooShort = errors.New("password is too short")

	// ErrPasswordMismatch indicates the confirmation entry differs from the password.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrPasswordCancelled indicates the user declined to enter a password.
	ErrPasswordCancelled = errors.New("password entry cancelled")
)

// Carrier errors indicate problems with the image holding a card.
var (
	// ErrUnsupportedImage indicates the image format cannot be read or written.
	ErrUnsupportedImage = errors.New("unsupported image format")

	// ErrCarrierTooSmall indicates the image dimensions are unusable.
	ErrCarrierTooSmall = errors.New("carrier image is too small")
)

// Bundle errors indicate problems with the archive carried inside a card.
var (
	// ErrInvalidBundle indicates the bundle could not be parsed.
	ErrInvalidBundle = errors.New("invalid bundle")

	// ErrUnsafePath indicates a bundle entry would escape the destination directory.
	ErrUnsafePath = errors.New("unsafe path in bundle")
)

// File errors indicate issues with file discovery or access.
var (
	// ErrNoFilesFound indicates no files matched the provided patterns.
	ErrNoFilesFound = errors.New("no matching files found")

	// ErrFileNotFound indicates a specific file could not be located.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileExists indicates a file would be overwritten.
	ErrFileExists = errors.New("file already exists")

	// ErrInvalidDateFormat indicates a date filter could not be parsed.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrInvalidConfig indicates the user configuration is malformed.
	ErrInvalidConfig = errors.New("configuration is invalid")
)
