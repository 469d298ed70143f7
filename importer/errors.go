package importer

import (
	"fmt"
	"strings"
)

// ProcessError is returned when the importer exits unsuccessfully.
type ProcessError struct {
	Binary   string
	Args     []string
	ExitCode int    // ExitCode is -1 when the process could not be started.
	Output   []byte // Output holds the combined stdout and stderr.
	Err      error
}

func (e *ProcessError) Error() string {
	if e.ExitCode == -1 {
		return fmt.Sprintf("%s %s: could not start: %v",
			e.Binary, strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("%s %s: exit status %d: %v\n%s",
		e.Binary, strings.Join(e.Args, " "), e.ExitCode, e.Err, e.Output)
}

func (e *ProcessError) Unwrap() error { return e.Err }
