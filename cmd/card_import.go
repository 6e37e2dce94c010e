package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/selfcheck/datacard/internal/bundle"
	kerrors "github.com/selfcheck/datacard/internal/errors"
	"github.com/selfcheck/datacard/internal/ui"
	"github.com/selfcheck/datacard/internal/utils"
	"github.com/selfcheck/datacard/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	importDest          string
	importOverwrite     bool
	importDryRun        bool
	importPasswordStdin bool
)

func init() {
	importCmd.Flags().StringVarP(&importDest, "dest", "C", "", "directory to extract into (default: current directory)")
	importCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "replace files that already exist")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "list the card contents without writing files")
	importCmd.Flags().BoolVar(&importPasswordStdin, "password-stdin", false, "read the password from stdin")
}

// resetImportCommandState resets the import command's global state for testing.
func resetImportCommandState() {
	importDest = ""
	importOverwrite = false
	importDryRun = false
	importPasswordStdin = false
}

var importCmd = &cobra.Command{
	Use:   "import <image>",
	Short: "Extract the files stored in a data card image",
	Long: `Reads the data card in an image and extracts its files.

Encrypted cards ask for their password, which can also be piped with
--password-stdin or set in DATACARD_PASSWORD. Existing files are never
replaced unless --overwrite is given.

Examples:
  # Extract into the current directory
  datacard card import card.png

  # See what a card holds first
  datacard card import card.png --dry-run

  # Extract somewhere else, replacing files
  datacard card import card.png -C restore/ --overwrite`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting import command")
		imagePath := args[0]

		spinner, cleanup := startSpinner("Reading card...", verbose)
		defer cleanup()

		opts := workflows.ImportOptions{
			ImagePath: imagePath,
			Dest:      importDest,
			Overwrite: importOverwrite,
			DryRun:    importDryRun,
			Password: func() ([]byte, error) {
				Logger.Debugf("Card is encrypted, asking for password")
				return pauseSpinner(spinner, func() ([]byte, error) {
					return readCardPassword(importPasswordStdin, false)
				})
			},
		}

		result, err := workflows.Import(context.Background(), opts)
		if err != nil {
			spinner.FinalMSG = formatImportError(err, imagePath)
			return reported(err)
		}

		Logger.Infof("Read %s card with %d byte payload", result.Version, result.PayloadBytes)

		if result.DryRun {
			spinner.FinalMSG = formatManifest(result.Manifest, imagePath) + "\n" +
				ui.Warning.Sprint("[dry-run]") + " No files were written"
			return nil
		}

		spinner.FinalMSG = ui.Done() + " Imported card " +
			ui.Highlight.Sprint(workflows.ShortID(result.Manifest.CardID)) +
			" from " + ui.Path.Sprint(imagePath) + "\n\n" +
			"Files written:" + utils.FormatPaths(result.Files)
		return nil
	},
}

// formatManifest renders the card id, creator and file list of a bundle.
func formatManifest(m *bundle.Manifest, imagePath string) string {
	out := ui.Hint() + " Card " + ui.Highlight.Sprint(workflows.ShortID(m.CardID)) +
		" in " + ui.Path.Sprint(imagePath) + "\n"
	out += fmt.Sprintf("  %-10s %s\n", "Created:", m.CreatedAt.Format("2006-01-02 15:04:05"))
	if m.Creator != "" {
		out += fmt.Sprintf("  %-10s %s\n", "Creator:", m.Creator)
	}
	out += fmt.Sprintf("  %-10s %d (%s)\n", "Files:", len(m.Files), utils.FormatBytes(m.TotalSize()))
	for _, f := range m.Files {
		out += fmt.Sprintf("    %-40s %s\n", ui.Path.Sprint(f.Path), ui.Muted.Sprint(utils.FormatBytes(f.Size)))
	}
	return out
}

func formatImportError(err error, imagePath string) string {
	switch {
	case errors.Is(err, kerrors.ErrFileNotFound):
		return ui.Failed() + " Image not found: " + ui.Path.Sprint(imagePath)

	case errors.Is(err, kerrors.ErrUnsupportedImage):
		return ui.Failed() + " " + ui.Path.Sprint(imagePath) + " is not an image datacard can read"

	case errors.Is(err, kerrors.ErrInvalidMagic):
		return ui.Failed() + " No data card found in " + ui.Path.Sprint(imagePath) + "\n" +
			ui.Hint() + " Cards only survive lossless formats; a re-saved or resized copy loses them"

	case errors.Is(err, kerrors.ErrInvalidLength), errors.Is(err, kerrors.ErrTruncated):
		return ui.Failed() + " The card in " + ui.Path.Sprint(imagePath) + " is damaged: " + err.Error()

	case errors.Is(err, kerrors.ErrDecryptFailed):
		return ui.Failed() + " Wrong password, or the card is damaged"

	case errors.Is(err, kerrors.ErrPasswordCancelled), errors.Is(err, kerrors.ErrPasswordMismatch):
		return formatPasswordError(err)

	case errors.Is(err, kerrors.ErrFileExists):
		return ui.Failed() + " " + err.Error() + "\n" +
			ui.Hint() + " Run with " + ui.Code.Sprint("--overwrite") + " to replace it, or pick another " + ui.Code.Sprint("--dest")

	case errors.Is(err, kerrors.ErrInvalidBundle), errors.Is(err, kerrors.ErrUnsafePath):
		return ui.Failed() + " The card does not hold a datacard bundle: " + err.Error()

	default:
		return ui.Failed() + " Failed to import card: " + err.Error()
	}
}
