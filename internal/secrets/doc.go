// Package secrets provides password-based encryption for data-card payloads.
//
// An export can be protected with a password. The payload handed to the
// card codec is then an envelope:
//
//	"DCS1" | time (u32) | memory KiB (u32) | threads (u8) | salt (16) | nonce (24) | secretbox
//
// The key is derived with argon2id from the password and a random salt.
// The KDF parameters travel in the envelope, so cards written with one
// configuration can be opened after the configuration changes. Encryption
// uses NaCl secretbox, which authenticates the ciphertext: a wrong password
// is detected and reported as ErrDecryptFailed rather than producing
// garbage.
//
// # Password Rules
//
// Export passwords must be at least MinPasswordLength characters and must
// be entered twice. Import only needs the password once.
package secrets
