// Package bundle packs exported files into the payload carried by a data
// card, and unpacks them again.
//
// A bundle is a zstd-compressed tar stream. Its first entry is always
// manifest.toml, which records the card id, the creation time and the
// list of files that follow:
//
//	card_id = "7d3f..."
//	created_at = 2026-10-19T08:00:00Z
//
//	[[files]]
//	path = "journal/2026-10.md"
//	size = 1834
//
// Carrier capacity is small, so zstd replaces gzip and the compression
// level is configurable.
//
// Unpack refuses entries that would land outside the destination
// directory and, unless asked to overwrite, entries that already exist.
// The conflict check runs before anything is written.
package bundle
