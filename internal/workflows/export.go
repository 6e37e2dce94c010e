package workflows

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/selfcheck/datacard/internal/audit"
	"github.com/selfcheck/datacard/internal/bundle"
	"github.com/selfcheck/datacard/internal/carrier"
	"github.com/selfcheck/datacard/internal/configs"
	"github.com/selfcheck/datacard/internal/datacard"
	kerrors "github.com/selfcheck/datacard/internal/errors"
	"github.com/selfcheck/datacard/internal/secrets"
	"github.com/selfcheck/datacard/internal/utils"
)

// maxCanvasWidth bounds how far a generated canvas is widened to fit a payload.
const maxCanvasWidth = 16384

// ExportOptions configures the export workflow.
type ExportOptions struct {
	// Files are paths, directories or glob patterns (with ** support) to bundle.
	Files []string

	// Root is the directory bundle paths are made relative to.
	// If empty, uses the current working directory.
	Root string

	// CarrierPath is an existing image to hide the card in.
	// If empty, a gradient canvas is generated from the user config.
	CarrierPath string

	// OutputPath is where the card image is written.
	// If empty, defaults to datacard-<card id>.<format> in Root.
	OutputPath string

	// Format is the output image format. If empty it is taken from
	// OutputPath's extension, then from the user config.
	Format string

	// Password encrypts the bundle when non-empty.
	Password []byte

	// Force overwrites an existing OutputPath.
	Force bool
}

// ExportResult contains the outcome of an export operation.
type ExportResult struct {
	CardID     string
	Files      []string
	OutputPath string
	Format     string
	Version    datacard.Version

	// BundleBytes is the size of the compressed bundle, PayloadBytes the
	// size actually written after optional encryption.
	BundleBytes  int
	PayloadBytes int

	// MaxPayload is the largest payload the output image could hold.
	MaxPayload int

	Width, Height int

	// GeneratedCanvas is true when no carrier image was given.
	GeneratedCanvas bool
}

// Export bundles files into a data card and writes it as an image.
//
// Returns ErrNoFilesFound if the patterns match nothing.
// Returns ErrFileExists if OutputPath exists and Force is not set.
// Returns ErrPayloadTooLarge if the bundle does not fit the carrier.
// Returns ErrUnsupportedImage if the output format is lossy or unknown.
func Export(ctx context.Context, opts ExportOptions) (*ExportResult, error) {
	userConfig, err := configs.EnsureUserConfig()
	if err != nil {
		return nil, fmt.Errorf("loading user config: %w", err)
	}

	root, err := resolveDir(opts.Root)
	if err != nil {
		return nil, err
	}

	files, err := bundle.ResolveFiles(opts.Files, root)
	if err != nil {
		return nil, err
	}

	level, err := bundle.ParseLevel(userConfig.Bundle.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidConfig, err)
	}

	manifest := bundle.NewManifest(configs.UserDatacardSettings.Username)
	data, err := bundle.Pack(root, files, manifest, level)
	if err != nil {
		return nil, fmt.Errorf("packing bundle: %w", err)
	}

	result := &ExportResult{
		CardID:      manifest.CardID,
		BundleBytes: len(data),
		Version:     datacard.VersionFor(len(opts.Password) > 0),
	}
	for _, f := range manifest.Files {
		result.Files = append(result.Files, f.Path)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload := data
	if result.Version.Encrypted() {
		if err := secrets.ValidatePassword(opts.Password, nil, false); err != nil {
			return nil, err
		}
		payload, err = secrets.Seal(data, opts.Password, userConfig.KDFParams())
		if err != nil {
			return nil, err
		}
	}
	result.PayloadBytes = len(payload)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := exportCanvas(opts.CarrierPath, userConfig, len(payload), result.Version)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	result.Width, result.Height = bounds.Dx(), bounds.Dy()
	result.GeneratedCanvas = opts.CarrierPath == ""
	result.MaxPayload = datacard.DefaultFormat.MaxPayload(result.Width, result.Height, result.Version)

	if len(payload) > result.MaxPayload {
		return nil, fmt.Errorf("%w: card needs %d bytes, a %dx%d image holds %d",
			kerrors.ErrPayloadTooLarge, len(payload), result.Width, result.Height, result.MaxPayload)
	}

	if err := datacard.DefaultFormat.Encode(img, payload, result.Version); err != nil {
		return nil, err
	}

	result.Format = exportFormat(opts, userConfig)
	if !carrier.Writable(result.Format) {
		return nil, fmt.Errorf("%w: cannot write %q, use png, bmp or qoi", kerrors.ErrUnsupportedImage, result.Format)
	}

	result.OutputPath, err = exportPath(opts, root, manifest.CardID, result.Format)
	if err != nil {
		return nil, err
	}

	if err := carrier.Save(result.OutputPath, img, result.Format); err != nil {
		return nil, fmt.Errorf("saving card: %w", err)
	}

	auditEntry := audit.LogWithUser(audit.OpExport)
	auditEntry.CardID = manifest.CardID
	auditEntry.ImagePath = result.OutputPath
	auditEntry.Files = result.Files
	auditEntry.Encrypted = result.Version.Encrypted()
	auditEntry.PayloadBytes = result.PayloadBytes
	auditEntry.Version = result.Version.String()
	audit.Log(auditEntry)

	return result, nil
}

// exportCanvas loads the carrier image, or generates a canvas from the
// config and widens it until payloadLen bytes fit.
func exportCanvas(carrierPath string, userConfig *configs.UserConfig, payloadLen int, v datacard.Version) (*image.NRGBA, error) {
	if carrierPath != "" {
		img, _, err := carrier.Load(carrierPath)
		if err != nil {
			return nil, err
		}
		if img.Bounds().Empty() {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrCarrierTooSmall, carrierPath)
		}
		return img, nil
	}

	width, height := userConfig.Card.Width, userConfig.Card.Height
	need := datacard.ContainerSize(len(datacard.DefaultFormat.Magic(v)), payloadLen)
	perColumn := datacard.DefaultFormat.Capacity(1, height)
	if fit := (need + perColumn - 1) / perColumn; fit > width {
		width = min(fit, maxCanvasWidth)
	}
	return carrier.NewCanvas(width, height), nil
}

func exportFormat(opts ExportOptions, userConfig *configs.UserConfig) string {
	if opts.Format != "" {
		return opts.Format
	}
	if opts.OutputPath != "" {
		if f := carrier.FormatFromPath(opts.OutputPath); f != "" {
			return f
		}
	}
	return userConfig.Card.Format
}

// exportPath picks the output path. A default name never clobbers an
// existing file; an explicit one does only with Force.
func exportPath(opts ExportOptions, root, cardID, format string) (string, error) {
	if opts.OutputPath == "" {
		name := fmt.Sprintf("datacard-%s.%s", cardID[:8], format)
		return utils.UniquePath(filepath.Join(root, name)), nil
	}

	if _, err := os.Stat(opts.OutputPath); err == nil && !opts.Force {
		return "", fmt.Errorf("%w: %s (use --force to overwrite)", kerrors.ErrFileExists, opts.OutputPath)
	}
	return opts.OutputPath, nil
}

// resolveDir returns dir as an absolute path, defaulting to the working directory.
func resolveDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	return abs, nil
}
