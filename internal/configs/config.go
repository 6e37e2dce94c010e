package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/selfcheck/datacard/internal/bundle"
	"github.com/selfcheck/datacard/internal/carrier"
	"github.com/selfcheck/datacard/internal/datacard"
	kerrors "github.com/selfcheck/datacard/internal/errors"
	"github.com/selfcheck/datacard/internal/secrets"

	"github.com/google/uuid"
)

// maxCardSide bounds generated canvases.
const maxCardSide = 16384

type UserConfig struct {
	User   User         `toml:"user"`
	Card   CardConfig   `toml:"card"`
	Bundle BundleConfig `toml:"bundle"`
	Crypto CryptoConfig `toml:"crypto"`
}

type User struct {
	UUID string `toml:"user_uuid"`
}

// CardConfig controls freshly generated cards.
type CardConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Format string `toml:"format"`
}

type BundleConfig struct {
	CompressionLevel string `toml:"compression_level"`
}

// CryptoConfig holds the argon2id parameters for new exports.
type CryptoConfig struct {
	Time      uint32 `toml:"time"`
	MemoryKiB uint32 `toml:"memory_kib"`
	Threads   uint8  `toml:"threads"`
}

// DefaultUserConfig returns the configuration used when no file exists.
func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Card: CardConfig{
			Width:  480,
			Height: 320,
			Format: carrier.FormatPNG,
		},
		Bundle: BundleConfig{
			CompressionLevel: "best",
		},
		Crypto: CryptoConfig{
			Time:      secrets.DefaultKDFParams.Time,
			MemoryKiB: secrets.DefaultKDFParams.MemoryKiB,
			Threads:   secrets.DefaultKDFParams.Threads,
		},
	}
}

// LoadUserConfig loads the user configuration from the config file.
func LoadUserConfig() (*UserConfig, error) {
	configPath := ConfigPath()
	config := DefaultUserConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", kerrors.ErrInvalidConfig, configPath, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveUserConfig saves the user configuration to the config file.
func SaveUserConfig(config *UserConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if err := SaveTOML(ConfigPath(), config); err != nil {
		return fmt.Errorf("failed to save user config: %w", err)
	}
	return nil
}

// GenerateUserUUID generates a new UUID for this installation.
func GenerateUserUUID() string {
	return uuid.New().String()
}

// EnsureUserConfig loads the user configuration and gives it a UUID,
// saving the file if one had to be generated.
func EnsureUserConfig() (*UserConfig, error) {
	config, err := LoadUserConfig()
	if err != nil {
		return nil, err
	}

	if config.User.UUID == "" {
		config.User.UUID = GenerateUserUUID()
		if err := SaveUserConfig(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// Validate checks every section of the configuration.
func (c *UserConfig) Validate() error {
	if c.Card.Width <= 0 || c.Card.Width > maxCardSide {
		return fmt.Errorf("%w: card.width must be in [1, %d], got %d", kerrors.ErrInvalidConfig, maxCardSide, c.Card.Width)
	}
	if c.Card.Height < datacard.DataRows || c.Card.Height > maxCardSide {
		return fmt.Errorf("%w: card.height must be in [%d, %d], got %d", kerrors.ErrInvalidConfig, datacard.DataRows, maxCardSide, c.Card.Height)
	}
	if !carrier.Writable(c.Card.Format) {
		return fmt.Errorf("%w: card.format must be png, bmp or qoi, got %q", kerrors.ErrInvalidConfig, c.Card.Format)
	}
	if _, err := bundle.ParseLevel(c.Bundle.CompressionLevel); err != nil {
		return fmt.Errorf("%w: bundle.compression_level: %v", kerrors.ErrInvalidConfig, err)
	}
	if err := c.KDFParams().Validate(); err != nil {
		return fmt.Errorf("%w: crypto: %v", kerrors.ErrInvalidConfig, err)
	}
	if c.User.UUID != "" {
		if _, err := uuid.Parse(c.User.UUID); err != nil {
			return fmt.Errorf("%w: user.user_uuid: %v", kerrors.ErrInvalidConfig, err)
		}
	}
	return nil
}

// KDFParams returns the crypto section as argon2 parameters.
func (c *UserConfig) KDFParams() secrets.KDFParams {
	return secrets.KDFParams{
		Time:      c.Crypto.Time,
		MemoryKiB: c.Crypto.MemoryKiB,
		Threads:   c.Crypto.Threads,
	}
}

// Keys lists the settable keys in display order.
var Keys = []string{
	"card.width",
	"card.height",
	"card.format",
	"bundle.compression_level",
	"crypto.time",
	"crypto.memory_kib",
	"crypto.threads",
}

// Get returns the value of a dotted key as a string.
func (c *UserConfig) Get(key string) (string, error) {
	switch key {
	case "card.width":
		return strconv.Itoa(c.Card.Width), nil
	case "card.height":
		return strconv.Itoa(c.Card.Height), nil
	case "card.format":
		return c.Card.Format, nil
	case "bundle.compression_level":
		return c.Bundle.CompressionLevel, nil
	case "crypto.time":
		return strconv.FormatUint(uint64(c.Crypto.Time), 10), nil
	case "crypto.memory_kib":
		return strconv.FormatUint(uint64(c.Crypto.MemoryKiB), 10), nil
	case "crypto.threads":
		return strconv.FormatUint(uint64(c.Crypto.Threads), 10), nil
	case "user.user_uuid":
		return c.User.UUID, nil
	default:
		return "", fmt.Errorf("%w: unknown key %q", kerrors.ErrInvalidConfig, key)
	}
}

// Set parses value into the dotted key and validates the result. On error
// c is left unchanged.
func (c *UserConfig) Set(key, value string) error {
	next := *c
	value = strings.TrimSpace(value)

	var err error
	switch key {
	case "card.width":
		next.Card.Width, err = strconv.Atoi(value)
	case "card.height":
		next.Card.Height, err = strconv.Atoi(value)
	case "card.format":
		next.Card.Format = carrier.FormatFromPath("x." + value)
	case "bundle.compression_level":
		next.Bundle.CompressionLevel = strings.ToLower(value)
	case "crypto.time":
		next.Crypto.Time, err = parseUint32(value)
	case "crypto.memory_kib":
		next.Crypto.MemoryKiB, err = parseUint32(value)
	case "crypto.threads":
		var n uint64
		n, err = strconv.ParseUint(value, 10, 8)
		next.Crypto.Threads = uint8(n)
	default:
		return fmt.Errorf("%w: unknown key %q", kerrors.ErrInvalidConfig, key)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", kerrors.ErrInvalidConfig, key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}

	*c = next
	return nil
}

func parseUint32(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	return uint32(n), err
}
