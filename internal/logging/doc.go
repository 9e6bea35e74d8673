// Package logging provides structured logging for agentsync using slog.
//
// Loggers are plain [*slog.Logger] values threaded explicitly through the
// engine; nothing in the batch executor or policy applier reaches for the
// global default logger. The CLI builds one logger per invocation and stores
// it in the command context with [NewContext].
//
// The text handler colorizes output on a TTY and redacts attribute values
// that look like credentials, since MCP server headers and env blocks are
// routinely logged at debug level.
//
// For tests, use [ForTest] to route log output through the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
package logging
