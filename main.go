package main

import (
	"fmt"
	"os"

	"github.com/selfcheck/datacard/cmd"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "datacard",
	Short: "datacard - hide files in the pixels of an image.",
	Long: `datacard packs files into a compressed, optionally encrypted bundle and
writes it into the bottom rows of an image. Any lossless copy of the image
can be turned back into the files.

Usage:
  datacard <command> [flags]

Available Commands:
  card       Export, import and inspect data cards
  config     Manage datacard configuration

Run 'datacard help <command>' for more details on a specific command.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(c *cobra.Command, args []string) {
		cmd.PrintBanner()
		fmt.Println("Run 'datacard --help' to see available commands.")
	},
}

func init() {
	rootCmd.AddCommand(cmd.CardCmd)
	rootCmd.AddCommand(cmd.ConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !cmd.AlreadyReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
