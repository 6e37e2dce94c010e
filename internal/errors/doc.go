// Package errors provides typed error values for the datacard application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
//   - Codec errors: the container does not fit or cannot be read
//     (ErrPayloadTooLarge, ErrInvalidMagic, ErrInvalidLength, ErrTruncated)
//   - Crypto errors: password and authentication failures (ErrDecryptFailed)
//   - Carrier errors: image format problems (ErrUnsupportedImage)
//   - Bundle errors: malformed or unsafe bundles (ErrInvalidBundle, ErrUnsafePath)
//   - File errors: file system issues (ErrNoFilesFound, ErrFileNotFound)
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("%w: need %d bytes, have %d", errors.ErrPayloadTooLarge, need, have)
//
// Handle errors in the CLI layer:
//
//	result, err := workflows.Import(ctx, opts)
//	if errors.Is(err, kerrors.ErrInvalidMagic) {
//	    // Show "not a data card" message
//	}
package errors
