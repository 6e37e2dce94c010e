// Package cmd contains testing utilities shared between command tests.
// This file provides common functions for setting up test environments
// and capturing output.
package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/selfcheck/datacard/internal/configs"
	logger "github.com/selfcheck/datacard/internal/logging"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// setupTestEnvironment points user settings at a temp directory, writes a
// config with cheap key derivation, and changes into a fresh working
// directory which it returns.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()

	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get original working directory: %v", err)
	}
	originalUserSettings := configs.UserDatacardSettings
	originalNoColor := color.NoColor

	tempDir := t.TempDir()
	workDir := filepath.Join(tempDir, "work")
	if err := os.MkdirAll(workDir, 0700); err != nil {
		t.Fatalf("Failed to create work directory: %v", err)
	}

	configs.UserDatacardSettings = &configs.UserSettings{
		UserConfigsPath: filepath.Join(tempDir, "config"),
		UserDataPath:    filepath.Join(tempDir, "data"),
		Username:        "testuser",
	}
	color.NoColor = true
	t.Setenv("NO_COLOR", "1")

	if err := os.Chdir(workDir); err != nil {
		t.Fatalf("Failed to change to work directory: %v", err)
	}

	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Fatalf("Failed to change to original directory: %v", err)
		}
		configs.UserDatacardSettings = originalUserSettings
		color.NoColor = originalNoColor
		ResetGlobalState()
		ResetConfigState()
	})

	userConfig := configs.DefaultUserConfig()
	userConfig.Card.Width = 64
	userConfig.Card.Height = 32
	userConfig.Crypto.MemoryKiB = 64
	userConfig.Crypto.Threads = 1
	if err := configs.SaveUserConfig(userConfig); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	ResetGlobalState()
	ResetConfigState()
	return workDir
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	outputChan := make(chan string, 2)
	errChan := make(chan string, 1)

	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stdoutReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stderrReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		errChan <- buf.String()
	}()

	err := fn()

	stdoutWriter.Close()
	stderrWriter.Close()

	os.Stdout = originalStdout
	os.Stderr = originalStderr

	stdout := <-outputChan
	stderr := <-errChan

	return stdout + stderr, err
}

// runCLI executes the datacard command line with args on a fresh root
// command and returns everything it printed.
func runCLI(args ...string) (string, error) {
	return captureOutput(func() error {
		Logger = logger.Logger{}
		ConfigLogger = logger.Logger{}

		rootCmd := &cobra.Command{
			Use:           "datacard",
			SilenceUsage:  true,
			SilenceErrors: true,
		}
		rootCmd.AddCommand(CardCmd)
		rootCmd.AddCommand(ConfigCmd)
		rootCmd.SetArgs(args)

		defer ResetGlobalState()
		defer ResetConfigState()
		return rootCmd.Execute()
	})
}
