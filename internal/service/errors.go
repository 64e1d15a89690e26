package service

import "errors"

var (
	ErrConnectFailed  = errors.New("device connect failed")
	ErrNotConnected   = errors.New("device is not connected")
	ErrRunInProgress  = errors.New("process already starting or running")
	ErrStartRejected  = errors.New("device rejected the profile")
	ErrStartTransport = errors.New("start request did not complete")
	ErrStartPending   = errors.New("process start is still pending")
	ErrNotRunning     = errors.New("process is not running")
	ErrSessionClosed  = errors.New("session closed")
)

// opError carries the operator-facing message of a failed operation. It
// matches its kind with errors.Is and unwraps to the underlying cause.
type opError struct {
	kind  error
	msg   string
	cause error
}

func newOpError(kind error, msg string, cause error) *opError {
	return &opError{kind: kind, msg: msg, cause: cause}
}

func (e *opError) Error() string { return e.msg }

func (e *opError) Is(target error) bool { return target == e.kind }

func (e *opError) Unwrap() error { return e.cause }
