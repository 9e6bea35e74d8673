// Package errors provides error handling conventions for agentsync.
//
// It re-exports the constructors and inspection helpers of
// github.com/cockroachdb/errors so the rest of the module imports a single
// errors package, and adds the sentinel taxonomy used by the batch engine
// together with an ExitError type for CLI exit code handling.
//
// # Taxonomy
//
//   - [ErrValidation]: malformed input or unknown provider, rejected before
//     any snapshot is taken
//   - [ErrConflict]: a capability or existing-entry conflict was detected
//   - [ErrExecution]: an install or remove step reported failure mid-batch
//   - [ErrRollbackStep]: an individual rollback action itself failed
//
// Callers check for these with [Is]:
//
//	if errors.Is(err, errors.ErrValidation) {
//	    // nothing was touched
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid plan, conflicts, etc.)
//   - ExitSystem (2): System-related error (I/O, failed batch, etc.)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion:
//
//	err := errors.NewUserError(errors.ErrInvalidConfig, "Check your config file")
//	var exitErr *errors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
