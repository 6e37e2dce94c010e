package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	kerrors "github.com/selfcheck/datacard/internal/errors"
	"github.com/selfcheck/datacard/internal/ui"
	"github.com/selfcheck/datacard/internal/utils"
	"github.com/selfcheck/datacard/internal/workflows"

	"github.com/spf13/cobra"
)

var inspectJSON bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "output as JSON array")
}

// resetInspectCommandState resets the inspect command's global state for testing.
func resetInspectCommandState() {
	inspectJSON = false
}

// inspectJSONEntry is the --json form of an InspectResult.
type inspectJSONEntry struct {
	Path         string   `json:"path"`
	Format       string   `json:"format"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Capacity     int      `json:"capacity"`
	MaxPlain     int      `json:"max_plain"`
	MaxEncrypted int      `json:"max_encrypted"`
	HasCard      bool     `json:"has_card"`
	Version      string   `json:"version,omitempty"`
	PayloadBytes int      `json:"payload_bytes,omitempty"`
	CardID       string   `json:"card_id,omitempty"`
	Files        []string `json:"files,omitempty"`
	Error        string   `json:"error,omitempty"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <image|glob>...",
	Short: "Show card capacity and contents of images",
	Long: `Reports, for each image, how many bytes a card could hold and whether
one is already present.

Examples:
  datacard card inspect photo.png
  datacard card inspect 'cards/**/*.png' --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting inspect command")

		spinner, cleanup := startSpinner("Inspecting images...", verbose)
		defer cleanup()

		results, err := workflows.Inspect(context.Background(), workflows.InspectOptions{Paths: args})
		if err != nil {
			spinner.FinalMSG = formatInspectError(err)
			return reported(err)
		}
		Logger.Debugf("Inspected %d images", len(results))

		if inspectJSON {
			spinner.FinalMSG = ""
			return outputInspectJSON(results)
		}

		var b strings.Builder
		for i, r := range results {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(formatInspectResult(r))
		}
		spinner.FinalMSG = b.String()
		return nil
	},
}

func formatInspectResult(r workflows.InspectResult) string {
	var b strings.Builder
	if r.ImageErr != nil {
		b.WriteString(ui.Path.Sprint(r.Path) + "\n")
		fmt.Fprintf(&b, "  %-10s %s\n", "Skipped:", ui.Muted.Sprint(r.ImageErr.Error()))
		return b.String()
	}
	b.WriteString(ui.Path.Sprint(r.Path) + fmt.Sprintf(" (%s, %dx%d)\n", r.Format, r.Width, r.Height))
	fmt.Fprintf(&b, "  %-10s %s plain, %s encrypted\n", "Capacity:",
		utils.FormatBytes(int64(r.MaxPlain)), utils.FormatBytes(int64(r.MaxEncrypted)))

	if !r.HasCard {
		reason := "none"
		if r.CardErr != nil && !errors.Is(r.CardErr, kerrors.ErrInvalidMagic) {
			reason = "damaged (" + r.CardErr.Error() + ")"
		}
		fmt.Fprintf(&b, "  %-10s %s\n", "Card:", ui.Muted.Sprint(reason))
		return b.String()
	}

	fmt.Fprintf(&b, "  %-10s %s, %s\n", "Card:", ui.Highlight.Sprint(r.Version), utils.FormatBytes(int64(r.PayloadBytes)))
	if r.Manifest != nil {
		fmt.Fprintf(&b, "  %-10s %s\n", "ID:", r.Manifest.CardID)
		for _, f := range r.Manifest.Files {
			fmt.Fprintf(&b, "    - %s\n", ui.Path.Sprint(f.Path))
		}
	}
	return b.String()
}

func outputInspectJSON(results []workflows.InspectResult) error {
	entries := make([]inspectJSONEntry, 0, len(results))
	for _, r := range results {
		e := inspectJSONEntry{
			Path:         r.Path,
			Format:       r.Format,
			Width:        r.Width,
			Height:       r.Height,
			Capacity:     r.Capacity,
			MaxPlain:     r.MaxPlain,
			MaxEncrypted: r.MaxEncrypted,
			HasCard:      r.HasCard,
		}
		if r.HasCard {
			e.Version = r.Version.String()
			e.PayloadBytes = r.PayloadBytes
		} else if r.ImageErr != nil {
			e.Error = r.ImageErr.Error()
		} else if r.CardErr != nil {
			e.Error = r.CardErr.Error()
		}
		if r.Manifest != nil {
			e.CardID = r.Manifest.CardID
			for _, f := range r.Manifest.Files {
				e.Files = append(e.Files, f.Path)
			}
		}
		entries = append(entries, e)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func formatInspectError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrNoFilesFound), errors.Is(err, kerrors.ErrFileNotFound):
		return ui.Failed() + " " + err.Error()
	case errors.Is(err, kerrors.ErrUnsupportedImage):
		return ui.Failed() + " " + err.Error() + "\n" +
			ui.Hint() + " Supported images: png, jpeg, bmp, webp, qoi"
	default:
		return ui.Failed() + " Failed to inspect images: " + err.Error()
	}
}
