package cmd

import (
	"context"
	"errors"
	"fmt"

	kerrors "github.com/selfcheck/datacard/internal/errors"
	"github.com/selfcheck/datacard/internal/ui"
	"github.com/selfcheck/datacard/internal/utils"
	"github.com/selfcheck/datacard/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	exportOutputPath    string
	exportCarrierPath   string
	exportFormat        string
	exportRoot          string
	exportEncrypt       bool
	exportPasswordStdin bool
	exportForce         bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutputPath, "output", "o", "", "output image path (default: datacard-<id>.<format>)")
	exportCmd.Flags().StringVarP(&exportCarrierPath, "carrier", "c", "", "existing image to hide the card in (default: generated canvas)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "output format: png, bmp or qoi")
	exportCmd.Flags().StringVar(&exportRoot, "root", "", "directory bundle paths are relative to (default: current directory)")
	exportCmd.Flags().BoolVarP(&exportEncrypt, "encrypt", "e", false, "encrypt the card with a password")
	exportCmd.Flags().BoolVar(&exportPasswordStdin, "password-stdin", false, "read the password from stdin (implies --encrypt)")
	exportCmd.Flags().BoolVarP(&exportForce, "force", "f", false, "overwrite an existing output image")
}

// resetExportCommandState resets the export command's global state for testing.
func resetExportCommandState() {
	exportOutputPath = ""
	exportCarrierPath = ""
	exportFormat = ""
	exportRoot = ""
	exportEncrypt = false
	exportPasswordStdin = false
	exportForce = false
}

var exportCmd = &cobra.Command{
	Use:   "export <file|dir|glob>...",
	Short: "Bundle files into a data card image",
	Long: `Packs the given files into a compressed bundle and writes it into the
bottom rows of an image.

Without --carrier a gradient canvas is generated, widened when the bundle
needs more room. With --carrier the card is written into a copy of that
image; lossy inputs such as JPEG are fine, but the output is always a
lossless format.

With --encrypt the bundle is sealed with a password before it is written.
The password is prompted for twice, read from stdin with --password-stdin,
or taken from the DATACARD_PASSWORD environment variable.

Examples:
  # Export two files to a generated card
  datacard card export .env config.toml

  # Hide a directory in a photo, encrypted
  datacard card export secrets/ -c photo.jpg -o card.png --encrypt

  # Export every .env below the current directory
  datacard card export '**/.env'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting export command")
		Logger.Debugf("Patterns: %v", args)

		opts := workflows.ExportOptions{
			Files:       args,
			Root:        exportRoot,
			CarrierPath: exportCarrierPath,
			OutputPath:  exportOutputPath,
			Format:      exportFormat,
			Force:       exportForce,
		}

		if exportEncrypt || exportPasswordStdin {
			password, err := readCardPassword(exportPasswordStdin, true)
			if err != nil {
				fmt.Println(formatPasswordError(err))
				return reported(err)
			}
			opts.Password = password
		}

		spinner, cleanup := startSpinner("Exporting card...", verbose)
		defer cleanup()

		result, err := workflows.Export(context.Background(), opts)
		if err != nil {
			spinner.FinalMSG = formatExportError(err)
			return reported(err)
		}

		Logger.Infof("Wrote %d bytes into %dx%d %s image", result.PayloadBytes, result.Width, result.Height, result.Format)

		finalMessage := ui.Done() + " Exported card " + ui.Highlight.Sprint(workflows.ShortID(result.CardID)) +
			" to " + ui.Path.Sprint(result.OutputPath) + "\n\n" +
			"Files:" + utils.FormatPaths(result.Files) + "\n" +
			fmt.Sprintf("  %-10s %s\n", "Version:", result.Version) +
			fmt.Sprintf("  %-10s %s of %s\n", "Payload:", utils.FormatBytes(int64(result.PayloadBytes)), utils.FormatBytes(int64(result.MaxPayload))) +
			fmt.Sprintf("  %-10s %dx%d %s", "Image:", result.Width, result.Height, result.Format)
		if result.Version.Encrypted() {
			finalMessage += "\n\n" + ui.Hint() + " Keep the password safe, the card can't be read without it"
		}

		spinner.FinalMSG = finalMessage
		return nil
	},
}

func formatExportError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrNoFilesFound), errors.Is(err, kerrors.ErrFileNotFound):
		return ui.Failed() + " " + err.Error() + "\n" +
			ui.Hint() + " Check the paths and patterns you passed"

	case errors.Is(err, kerrors.ErrPayloadTooLarge):
		return ui.Failed() + " The files don't fit: " + err.Error() + "\n" +
			ui.Hint() + " Use a wider carrier image, or leave out " + ui.Code.Sprint("--carrier") + " to generate one"

	case errors.Is(err, kerrors.ErrFileExists):
		return ui.Failed() + " " + err.Error()

	case errors.Is(err, kerrors.ErrUnsupportedImage):
		return ui.Failed() + " " + err.Error() + "\n" +
			ui.Hint() + " Cards must be saved as png, bmp or qoi; lossy formats destroy the data"

	case errors.Is(err, kerrors.ErrUnsafePath):
		return ui.Failed() + " " + err.Error() + "\n" +
			ui.Hint() + " Files must live below " + ui.Code.Sprint("--root")

	case errors.Is(err, kerrors.ErrPasswordTooShort):
		return formatPasswordError(err)

	default:
		return ui.Failed() + " Failed to export card: " + err.Error()
	}
}

func formatPasswordError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrPasswordCancelled):
		return ui.Caution() + " No password entered, nothing was done"
	case errors.Is(err, kerrors.ErrPasswordMismatch):
		return ui.Failed() + " Passwords do not match"
	case errors.Is(err, kerrors.ErrPasswordTooShort):
		return ui.Failed() + " " + err.Error()
	default:
		return ui.Failed() + " Failed to read password: " + err.Error()
	}
}
