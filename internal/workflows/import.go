package workflows

import (
	"context"
	"fmt"

	"github.com/selfcheck/datacard/internal/audit"
	"github.com/selfcheck/datacard/internal/bundle"
	"github.com/selfcheck/datacard/internal/carrier"
	"github.com/selfcheck/datacard/internal/datacard"
	kerrors "github.com/selfcheck/datacard/internal/errors"
	"github.com/selfcheck/datacard/internal/secrets"
)

// PasswordFunc supplies the password for an encrypted card. It is only
// called once the card is known to be encrypted.
type PasswordFunc func() ([]byte, error)

// ImportOptions configures the import workflow.
type ImportOptions struct {
	// ImagePath is the card image to read.
	ImagePath string

	// Dest is the directory files are extracted into.
	// If empty, uses the current working directory.
	Dest string

	// Password is asked for the password of an encrypted card.
	Password PasswordFunc

	// Overwrite replaces files that already exist in Dest.
	Overwrite bool

	// DryRun lists the card contents without writing anything.
	DryRun bool
}

// ImportResult contains the outcome of an import operation.
type ImportResult struct {
	Manifest *bundle.Manifest

	// Files are the written paths, or the bundle names on a dry run.
	Files []string

	Version      datacard.Version
	PayloadBytes int
	DryRun       bool
}

// Import reads a data card image and extracts its files.
//
// Returns ErrFileNotFound if the image doesn't exist.
// Returns ErrInvalidMagic if the image holds no card.
// Returns ErrDecryptFailed if the password is wrong.
// Returns ErrFileExists if a file would be overwritten without Overwrite.
func Import(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	img, _, err := carrier.Load(opts.ImagePath)
	if err != nil {
		return nil, err
	}

	card, err := datacard.DefaultFormat.Decode(img)
	if err != nil {
		return nil, fmt.Errorf("reading card from %s: %w", opts.ImagePath, err)
	}

	result := &ImportResult{
		Version:      card.Version,
		PayloadBytes: len(card.Payload),
		DryRun:       opts.DryRun,
	}

	data := card.Payload
	if card.Encrypted() {
		if opts.Password == nil {
			return nil, fmt.Errorf("%w: card is encrypted", kerrors.ErrPasswordCancelled)
		}
		if !secrets.IsEnvelope(card.Payload) {
			return nil, fmt.Errorf("%w: encrypted card holds no sealed envelope", kerrors.ErrDecryptFailed)
		}
		password, err := opts.Password()
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err = secrets.Open(card.Payload, password)
		if err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.DryRun {
		result.Manifest, result.Files, err = bundle.List(data)
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	dest, err := resolveDir(opts.Dest)
	if err != nil {
		return nil, err
	}

	result.Manifest, result.Files, err = bundle.Unpack(data, dest, opts.Overwrite)
	if err != nil {
		return nil, fmt.Errorf("extracting card: %w", err)
	}

	auditEntry := audit.LogWithUser(audit.OpImport)
	auditEntry.CardID = result.Manifest.CardID
	auditEntry.ImagePath = opts.ImagePath
	for _, f := range result.Manifest.Files {
		auditEntry.Files = append(auditEntry.Files, f.Path)
	}
	auditEntry.Encrypted = card.Encrypted()
	auditEntry.PayloadBytes = result.PayloadBytes
	auditEntry.Version = card.Version.String()
	audit.Log(auditEntry)

	return result, nil
}
