package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/selfcheck/datacard/internal/secrets"
	"github.com/selfcheck/datacard/internal/ui"
	"github.com/selfcheck/datacard/internal/utils"

	"github.com/briandowns/spinner"
	"github.com/common-nighthawk/go-figure"
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string, verbose bool) (*spinner.Spinner, func()) {
	return startSpinnerWithFlags(message, verbose, debug)
}

// startSpinnerWithFlags is startSpinner for commands with their own flag
// variables, such as the config commands.
func startSpinnerWithFlags(message string, verbose, debugFlag bool) (*spinner.Spinner, func()) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr

	// Continue without a colored spinner if it fails.
	_ = s.Color("cyan")

	quiet := !verbose && !debugFlag
	if quiet {
		s.Start()
		log.SetOutput(io.Discard)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Print to stdout so tests can capture it.
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// pauseSpinner stops s while fn runs, for prompts in the middle of a command.
func pauseSpinner(s *spinner.Spinner, fn func() ([]byte, error)) ([]byte, error) {
	wasActive := s.Active()
	if wasActive {
		s.Stop()
	}
	defer func() {
		if wasActive {
			s.Start()
		}
	}()
	return fn()
}

// readCardPassword reads a password piped on stdin when fromStdin is set,
// otherwise prompts on the terminal.
func readCardPassword(fromStdin, isExport bool) ([]byte, error) {
	if fromStdin {
		password, err := utils.ReadStdin()
		if err != nil {
			return nil, err
		}
		if isExport {
			if err := secrets.ValidatePassword(password, nil, false); err != nil {
				return nil, err
			}
		}
		return password, nil
	}

	title := "This card is encrypted."
	if isExport {
		title = "Choose a password for this card."
	}
	return utils.PromptPassword(title, "Password: ", isExport)
}

// PrintBanner prints the datacard logo.
func PrintBanner() {
	banner := figure.NewColorFigure("datacard", "small", "cyan", true)
	banner.Print()
	fmt.Println()
}

// reportedError wraps an error whose message a command already printed.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// reported marks err as shown to the user so main only sets the exit code.
func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err}
}

// AlreadyReported reports whether the command that returned err has
// already printed a message for it.
func AlreadyReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}
