// Package utils provides shared utility functions for datacard.
//
// # System Utilities
//
//   - GetUsername: returns the current system username
//   - UniquePath: picks a free output name by appending -2, -3, ...
//
// # String Utilities
//
//   - FormatPaths: formats file paths for human-readable output
//   - FormatBytes: renders sizes as KiB, MiB, ...
//
// # I/O Utilities
//
//   - ReadStdin: reads a password piped on standard input
//
// # Terminal Utilities
//
//   - IsTerminal: checks if stdin is a terminal
//   - ReadPassphrase, ReadPassphraseFromTTY: hidden input
//   - PromptPassword: asks for a card password, honouring DATACARD_PASSWORD
package utils
