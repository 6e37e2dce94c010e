package utils

import (
	"fmt"
	"os"
	"runtime"

	kerrors "github.com/selfcheck/datacard/internal/errors"
	"github.com/selfcheck/datacard/internal/secrets"

	"golang.org/x/term"
)

// PasswordEnv names the environment variable consulted before prompting.
const PasswordEnv = "DATACARD_PASSWORD"

// readPassword is swapped out in tests.
var readPassword = readPassphraseAnyTTY

// ReadPassphrase prompts the user for a passphrase without echoing input.
// Returns an error if stdin is not a terminal.
func ReadPassphrase(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot read passphrase: stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}

	return passphrase, nil
}

// ReadPassphraseFromTTY prompts on /dev/tty (or CON on Windows), for when
// stdin carries other input.
func ReadPassphraseFromTTY(prompt string) ([]byte, error) {
	tty, err := os.Open(ttyPath())
	if err != nil {
		return nil, fmt.Errorf("cannot open %s for passphrase input: %w", ttyPath(), err)
	}
	defer tty.Close()

	fd := int(tty.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%s is not a terminal", ttyPath())
	}

	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}

	return passphrase, nil
}

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// PromptPassword asks for the card password. The title is shown once above
// the prompt and message is the prompt itself. When isExport is set the
// password is entered twice and checked against the export rules.
//
// A non-empty DATACARD_PASSWORD skips the prompt entirely.
func PromptPassword(title, message string, isExport bool) ([]byte, error) {
	if env := os.Getenv(PasswordEnv); env != "" {
		password := []byte(env)
		if isExport {
			if err := secrets.ValidatePassword(password, password, true); err != nil {
				return nil, err
			}
		}
		return password, nil
	}

	if title != "" {
		fmt.Fprintln(os.Stderr, title)
	}

	password, err := readPassword(message)
	if err != nil {
		return nil, err
	}
	if len(password) == 0 {
		return nil, kerrors.ErrPasswordCancelled
	}
	if !isExport {
		return password, nil
	}

	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return nil, err
	}
	if err := secrets.ValidatePassword(password, confirm, true); err != nil {
		return nil, err
	}
	return password, nil
}

func readPassphraseAnyTTY(prompt string) ([]byte, error) {
	if IsTerminal() {
		return ReadPassphrase(prompt)
	}
	return ReadPassphraseFromTTY(prompt)
}

func ttyPath() string {
	if runtime.GOOS == "windows" {
		return "CON"
	}
	return "/dev/tty"
}
