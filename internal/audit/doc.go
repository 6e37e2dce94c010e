// Package audit keeps a local history of card exports and imports.
//
// # Log Format
//
// The history is stored as JSON Lines (one JSON object per line) at:
//
//	<user data dir>/datacard/history.jsonl
//
// Each entry contains:
//   - Timestamp (RFC3339 with microseconds, UTC)
//   - Installation UUID
//   - Operation name (export or import)
//   - Card id, image path, bundled files, encryption flag and payload size
//
// # Usage
//
//	entry := audit.LogWithUser(audit.OpExport)
//	entry.Files = files
//	audit.Log(entry)
//
// # Failure Handling
//
// Logging is best-effort. If the history cannot be written, the operation
// continues without error.
package audit
