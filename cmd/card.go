package cmd

import (
	logger "github.com/selfcheck/datacard/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	verbose bool
	debug   bool
	Logger  logger.Logger

	CardCmd = &cobra.Command{
		Use:   "card",
		Short: "Hide files in images and read them back",
		Long: `Exports files into a data card stored in the bottom rows of an image,
imports them again, and inspects images for cards.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing card command with verbose=%t, debug=%t", verbose, debug)
		},
	}
)

func init() {
	CardCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	CardCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")

	CardCmd.AddCommand(exportCmd)
	CardCmd.AddCommand(importCmd)
	CardCmd.AddCommand(inspectCmd)
	CardCmd.AddCommand(logCmd)
}

// GetCardCmd returns the CardCmd for testing.
func GetCardCmd() *cobra.Command {
	return CardCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	resetExportCommandState()
	resetImportCommandState()
	resetInspectCommandState()
	resetLogCommandState()
	resetCobraFlagState(CardCmd)
}

// resetCobraFlagState clears Changed on every flag below c so reused
// commands parse cleanly in tests.
func resetCobraFlagState(c *cobra.Command) {
	reset := func(flag *pflag.Flag) { flag.Changed = false }
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCobraFlagState(sub)
	}
}

// SetLogger sets the logger for testing.
func SetLogger(l logger.Logger) {
	Logger = l
}
