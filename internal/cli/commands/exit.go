package commands

import (
	"errors"
)

// Process exit codes.
const (
	ExitOK     = 0
	ExitUsage  = 1 // input not redirected, bad flags or configuration
	ExitParse  = 2 // the SQL does not parse
	ExitRender = 3 // capture or rendering failed
)

// ErrInputNotRedirected is returned when SQL would be read from a terminal.
var ErrInputNotRedirected = errors.New("input is not redirected")

// ExitError carries the exit code a failure maps to. Reported errors have
// already been written to stderr.
type ExitError struct {
	Code     int
	Err      error
	Reported bool
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps err to a process exit code. Errors that carry no code are
// usage errors.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUsage
}

// Reported reports whether err has already been shown to the user.
func Reported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}
