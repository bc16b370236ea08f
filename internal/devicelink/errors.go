package devicelink

import "fmt"

// ErrorKind classifies a command failure.
type ErrorKind int

const (
	// KindTransport means the intermediary server could not be reached.
	KindTransport ErrorKind = iota
	// KindRejected means the intermediary was reached but reported failure.
	KindRejected
)

// CommandError is the typed outcome of a failed SendCommand.
type CommandError struct {
	Kind    ErrorKind
	Command string
	Message string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("command %q: %s: %v", e.Command, e.Message, e.Err)
	}
	return fmt.Sprintf("command %q: %s", e.Command, e.Message)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsRejected reports whether err is a CommandError of kind KindRejected.
func IsRejected(err error) bool {
	ce, ok := err.(*CommandError)
	return ok && ce.Kind == KindRejected
}
