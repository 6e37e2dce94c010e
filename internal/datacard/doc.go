// Package datacard hides a byte payload in the pixels of a carrier image
// and recovers it.
//
// A data card is an ordinary image whose bottom DataRows rows hold a
// container:
//
//	magic | length (uint32, little-endian) | payload
//
// The container is written three bytes per pixel into the R, G and B
// channels, scanning the reserved rows top to bottom and left to right.
// The alpha channel never carries data; it is forced to 255 on every pixel
// that receives a container byte so the colors survive straight-alpha
// round trips. Pixels past the end of the container are not touched.
//
// # Versions
//
// The magic marker doubles as the version tag:
//
//   - VersionPlain ("GJV1"): the payload is plaintext
//   - VersionEncrypted ("GJCARD2"): the payload is ciphertext produced by
//     the caller
//
// The markers have different lengths. Detection always tries the encrypted
// marker first, so a plain marker that is a prefix of the encrypted one can
// never cause an encrypted card to be read as plain.
//
// # Decoding
//
// Decoding is two passes over the same scan order: a header pass reads
// enough bytes to identify the marker and the length, then a second pass
// from the start of the region reads the whole container. Failures return
// a zero Result and one of ErrInvalidMagic, ErrInvalidLength or
// ErrTruncated from the internal/errors package.
//
// The codec performs no locking and keeps no reference to the image.
// Calls on different images may run concurrently.
package datacard
