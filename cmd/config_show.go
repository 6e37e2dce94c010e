package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/selfcheck/datacard/internal/configs"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	configShowJSON bool
	configShowPath bool
)

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")
	configShowCmd.Flags().BoolVar(&configShowPath, "path", false, "print only the config file path")
}

// resetConfigShowState resets the config show command's global state for testing.
func resetConfigShowState() {
	configShowJSON = false
	configShowPath = false
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Displays the effective configuration: the file's values layered over
the defaults.

Examples:
  datacard config show
  datacard config show --json
  datacard config show --path`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ConfigLogger.Infof("Starting config show command")
		ConfigLogger.Debugf("Flags: json=%t, path=%t", configShowJSON, configShowPath)

		path := configs.ConfigPath()
		if configShowPath {
			fmt.Println(path)
			return nil
		}

		ConfigLogger.Debugf("Loading user config from %s", path)
		userConfig, err := configs.LoadUserConfig()
		if err != nil {
			return ConfigLogger.ErrorfAndReturn("Failed to load user config: %w", err)
		}

		if configShowJSON {
			return outputUserConfigJSON(userConfig)
		}
		return outputUserConfigText(userConfig, path)
	},
}

// outputUserConfigJSON outputs user config in JSON format.
func outputUserConfigJSON(config *configs.UserConfig) error {
	output, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return ConfigLogger.ErrorfAndReturn("Failed to marshal config to JSON: %w", err)
	}
	fmt.Println(string(output))
	return nil
}

// outputUserConfigText outputs user config in human-readable format.
func outputUserConfigText(config *configs.UserConfig, path string) error {
	source := path
	if _, err := os.Stat(path); os.IsNotExist(err) {
		source = "defaults, no file at " + path
	}
	fmt.Println(color.CyanString("User Configuration") + " (" + source + "):")
	fmt.Println()

	for _, key := range configs.Keys {
		value, err := config.Get(key)
		if err != nil {
			return err
		}
		fmt.Printf("  %-26s %s\n", key, color.GreenString(value))
	}

	id := config.User.UUID
	if id == "" {
		id = "(not set, run " + color.YellowString("datacard config init") + ")"
	} else {
		id = color.YellowString(id)
	}
	fmt.Printf("  %-26s %s\n", "user.user_uuid", id)
	return nil
}
