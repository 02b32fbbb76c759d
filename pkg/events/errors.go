package events

import "fmt"

// Error codes carried by NotifyError.
const (
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeConnection    = "CONNECTION_ERROR"
	CodeSerialization = "SERIALIZATION_ERROR"
)

// NotifyError is a structured error from the publisher or the observer.
type NotifyError struct {
	Code    string
	Message string
	Err     error
}

func (e *NotifyError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}

// Is matches any NotifyError with the same code, so errors.Is(err, ErrConnection) works for
// every connection failure.
func (e *NotifyError) Is(target error) bool {
	t, ok := target.(*NotifyError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrConfiguration = &NotifyError{Code: CodeConfiguration, Message: "invalid publisher configuration"}
	ErrConnection    = &NotifyError{Code: CodeConnection, Message: "broker connection unavailable"}
	ErrSerialization = &NotifyError{Code: CodeSerialization, Message: "cannot build message payload"}
)

func newNotifyError(code, message string, err error) *NotifyError {
	return &NotifyError{Code: code, Message: message, Err: err}
}

func configurationErrorf(err error, format string, args ...any) *NotifyError {
	return newNotifyError(CodeConfiguration, fmt.Sprintf(format, args...), err)
}

func connectionErrorf(err error, format string, args ...any) *NotifyError {
	return newNotifyError(CodeConnection, fmt.Sprintf(format, args...), err)
}
