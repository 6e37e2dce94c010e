package cmd

import (
	"errors"
	"strings"

	"github.com/selfcheck/datacard/internal/configs"
	kerrors "github.com/selfcheck/datacard/internal/errors"
	"github.com/selfcheck/datacard/internal/ui"

	"github.com/spf13/cobra"
)

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a configuration value",
	Long: `Sets one configuration value and saves the file. The whole
configuration is validated before it is written.

Keys:
  ` + strings.Join(configs.Keys, "\n  ") + `

Examples:
  datacard config set card.format qoi
  datacard config set crypto.memory_kib 262144`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		ConfigLogger.Infof("Setting %s", key)

		spinner, cleanup := startSpinnerWithFlags("Updating configuration...", configVerbose, configDebug)
		defer cleanup()

		userConfig, err := configs.LoadUserConfig()
		if err != nil {
			spinner.FinalMSG = ui.Failed() + " " + err.Error()
			return reported(err)
		}
		if userConfig.User.UUID == "" {
			userConfig.User.UUID = configs.GenerateUserUUID()
		}

		if err := userConfig.Set(key, value); err != nil {
			msg := ui.Failed() + " " + err.Error()
			if errors.Is(err, kerrors.ErrInvalidConfig) && strings.Contains(err.Error(), "unknown key") {
				msg += "\n" + ui.Hint() + " Valid keys:" + "\n    " + strings.Join(configs.Keys, "\n    ")
			}
			spinner.FinalMSG = msg
			return reported(err)
		}

		if err := configs.SaveUserConfig(userConfig); err != nil {
			spinner.FinalMSG = ui.Failed() + " " + err.Error()
			return reported(err)
		}

		newValue, _ := userConfig.Get(key)
		spinner.FinalMSG = ui.Done() + " Set " + ui.Code.Sprint(key) + " to " + ui.Highlight.Sprint(newValue)
		return nil
	},
}
