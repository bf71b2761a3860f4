package cli

import "fmt"

// Exit codes returned by mofmaster commands.
const (
	exitSuccess      = 0
	exitValidation   = 1 // bad flags, declarations, or cron expressions
	exitRuntime      = 2 // server, store, or shutdown failures
	exitFileNotFound = 3 // a named definitions file does not exist
)

// ExitError carries the process exit code a failed command should
// terminate with. main unwraps it via errors.As before os.Exit.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

// exitError builds an ExitError from a format string.
func exitError(code int, format string, args ...any) *ExitError {
	return &ExitError{Code: code, Message: fmt.Sprintf(format, args...)}
}
