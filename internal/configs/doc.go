// Package configs manages user configuration for datacard.
//
// Configuration is stored in TOML at <user config dir>/datacard/config.toml:
//
//	[user]
//	user_uuid = "0b6c..."
//
//	[card]
//	width = 480
//	height = 320
//	format = "png"
//
//	[bundle]
//	compression_level = "best"
//
//	[crypto]
//	time = 1
//	memory_kib = 65536
//	threads = 4
//
// Missing keys fall back to DefaultUserConfig, so an empty or absent file
// is valid. The user UUID identifies this installation in the history log
// and in bundle manifests; it is generated on first use.
//
// # Settings
//
// UserDatacardSettings holds the config and data directories. It is
// initialized at startup and tests may point it at temporary directories.
package configs
