package configs

import (
	"log"
	"os"
	"path/filepath"

	"github.com/selfcheck/datacard/internal/utils"
)

type UserSettings struct {
	UserConfigsPath string
	UserDataPath    string
	Username        string
}

var UserDatacardSettings *UserSettings

func init() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("error getting home directory: %s", err)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		log.Fatalf("error getting config directory: %s", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	username, err := utils.GetUsername()
	if err != nil {
		log.Fatalf("error getting username: %s", err)
	}

	UserDatacardSettings = &UserSettings{
		UserConfigsPath: filepath.Join(configDir, "datacard"),
		UserDataPath:    filepath.Join(dataDir, "datacard"),
		Username:        username,
	}
}

// ConfigPath returns the path of the user config file.
func ConfigPath() string {
	return filepath.Join(UserDatacardSettings.UserConfigsPath, "config.toml")
}
