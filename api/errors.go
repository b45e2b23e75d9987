package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ConnError means no response reached the client: DNS failure, refused
// connection, timeout. It never carries a server payload.
type ConnError struct {
	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("server unreachable: %v", e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

// StatusError means the server answered with a failure status. Message
// is the best human-readable explanation the response offered.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// ValidationError reports a client-side form constraint violation. The
// request never left the machine.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// IsAuthError reports whether err is a 401 from the backend, i.e. the
// bearer token was rejected and the matching session should be dropped.
func IsAuthError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusUnauthorized
}

// IsConnError reports whether err was a transport failure.
func IsConnError(err error) bool {
	var ce *ConnError
	return errors.As(err, &ce)
}
