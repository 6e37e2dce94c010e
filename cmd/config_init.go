package cmd

import (
	"fmt"
	"os"

	"github.com/selfcheck/datacard/internal/configs"
	"github.com/selfcheck/datacard/internal/ui"

	"github.com/spf13/cobra"
)

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "reset an existing configuration to defaults (keeps the installation id)")
}

// resetConfigInitState resets the config init command's global state for testing.
func resetConfigInitState() {
	configInitForce = false
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the user configuration file",
	Long: `Writes a configuration file with default settings and a fresh
installation id used in the export and import history.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ConfigLogger.Infof("Starting config init command")

		spinner, cleanup := startSpinnerWithFlags("Initializing configuration...", configVerbose, configDebug)
		defer cleanup()

		created, err := RunConfigInit(configInitForce)
		if err != nil {
			spinner.FinalMSG = ui.Failed() + " " + err.Error()
			return reported(err)
		}

		path := configs.ConfigPath()
		if !created {
			spinner.FinalMSG = ui.Note() + " Configuration already exists at " + ui.Path.Sprint(path) + "\n" +
				ui.Hint() + " Run " + ui.Code.Sprint("datacard config init --force") + " to reset it"
			return nil
		}

		spinner.FinalMSG = ui.Done() + " Wrote configuration to " + ui.Path.Sprint(path)
		return nil
	},
}

// RunConfigInit writes the default configuration and reports whether a
// file was written. An existing file is only replaced when force is set.
func RunConfigInit(force bool) (bool, error) {
	path := configs.ConfigPath()
	_, statErr := os.Stat(path)
	exists := statErr == nil

	if exists && !force {
		ConfigLogger.Debugf("Config already exists at %s", path)
		return false, nil
	}

	userConfig := configs.DefaultUserConfig()
	if exists {
		// Keep the installation id so the history stays attributable.
		if old, err := configs.LoadUserConfig(); err == nil {
			userConfig.User.UUID = old.User.UUID
		}
	}
	if userConfig.User.UUID == "" {
		userConfig.User.UUID = configs.GenerateUserUUID()
	}

	if err := configs.SaveUserConfig(userConfig); err != nil {
		return false, fmt.Errorf("failed to save user config: %w", err)
	}
	ConfigLogger.Infof("Saved config with installation id %s", userConfig.User.UUID)
	return true, nil
}
