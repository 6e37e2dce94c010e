package workflows

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/selfcheck/datacard/internal/configs"

	"github.com/stretchr/testify/require"
)

// setupWorkflowEnv points the user config and history at a temp directory
// and returns a fresh working directory for the test.
func setupWorkflowEnv(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()

	original := configs.UserDatacardSettings
	configs.UserDatacardSettings = &configs.UserSettings{
		UserConfigsPath: filepath.Join(tempDir, "config"),
		UserDataPath:    filepath.Join(tempDir, "data"),
		Username:        "testuser",
	}
	t.Cleanup(func() {
		configs.UserDatacardSettings = original
	})

	cfg := configs.DefaultUserConfig()
	cfg.Card.Width = 64
	cfg.Card.Height = 32
	cfg.Crypto.MemoryKiB = 64
	cfg.Crypto.Threads = 1
	require.NoError(t, configs.SaveUserConfig(cfg))

	work := filepath.Join(tempDir, "work")
	require.NoError(t, os.MkdirAll(work, 0700))
	return work
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func exportSample(t *testing.T, work string, password []byte) *ExportResult {
	t.Helper()
	writeFile(t, filepath.Join(work, ".env"), "API_KEY=abc123\n")
	writeFile(t, filepath.Join(work, "config", "app.toml"), "port = 8080\n")

	result, err := Export(context.Background(), ExportOptions{
		Files:    []string{".env", "config"},
		Root:     work,
		Password: password,
	})
	require.NoError(t, err)
	return result
}
