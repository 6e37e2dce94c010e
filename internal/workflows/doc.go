// Package workflows provides high-level orchestration for datacard commands.
//
// Workflows coordinate the lower packages (bundle, secrets, carrier,
// datacard, audit) into complete user-facing features. Each workflow
// handles a single command's business logic, independent of CLI concerns
// like flag parsing, spinners, and output formatting.
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// # Available Workflows
//
//   - Export: bundles files and hides them in an image
//   - Import: reads a card image and extracts its files
//   - Inspect: reports capacity and card presence per image
//   - Log: filters the local export/import history
//
// # Error Handling
//
// Workflows return sentinel errors from the internal/errors package,
// wrapped with context. Use errors.Is() to check for specific conditions:
//
//	result, err := workflows.Import(ctx, opts)
//	if errors.Is(err, kerrors.ErrDecryptFailed) {
//	    // Wrong password
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter
// and check it between expensive steps.
package workflows
