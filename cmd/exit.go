package cmd

import "fmt"

// ExitUsage is returned for invalid flags, arguments or policy files.
const ExitUsage = 3

// exitError carries a report-derived exit code through cobra without an
// error message; the report has already been written.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func exitWith(code int) error {
	if code == 0 {
		return nil
	}
	return &exitError{code: code}
}
