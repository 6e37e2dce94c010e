package bundle

import (
	"bytes"
	"fmt"
	"time"

	kerrors "github.com/selfcheck/datacard/internal/errors"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

// ManifestName is the name of the first entry of every bundle.
const ManifestName = "manifest.toml"

// Manifest describes the contents of a bundle.
type Manifest struct {
	CardID    string      `toml:"card_id"`
	CreatedAt time.Time   `toml:"created_at"`
	Creator   string      `toml:"creator,omitempty"`
	Files     []FileEntry `toml:"files"`
}

// FileEntry is one file stored in a bundle.
type FileEntry struct {
	Path string `toml:"path"`
	Size int64  `toml:"size"`
}

// NewManifest returns a manifest with a fresh card id.
func NewManifest(creator string) *Manifest {
	return &Manifest{
		CardID:    uuid.New().String(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Creator:   creator,
	}
}

// TotalSize returns the sum of all file sizes.
func (m *Manifest) TotalSize() int64 {
	var n int64
	for _, f := range m.Files {
		n += f.Size
	}
	return n
}

func (m *Manifest) marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return buf.Bytes(), nil
}

func parseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", kerrors.ErrInvalidBundle, err)
	}
	if _, err := uuid.Parse(m.CardID); err != nil {
		return nil, fmt.Errorf("%w: manifest card id %q", kerrors.ErrInvalidBundle, m.CardID)
	}
	return &m, nil
}
