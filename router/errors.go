package router

import (
	"errors"
	"net/http"
)

var (
	ErrEmptyKey           = errors.New("must provide a key in the path")
	ErrReservedKey        = errors.New("key is reserved")
	ErrUnreadableBody     = errors.New("cannot read request body")
	ErrInvalidEncoding    = errors.New("request body is not valid UTF-8 text")
	ErrMethodNotSupported = errors.New("only GET and POST methods are supported")
)

// statusOf maps a handler error to the response status.
// Everything the caller can correct is a 4xx.
func statusOf(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, ErrMethodNotSupported):
		return http.StatusNotFound
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}

// isClientError reports whether err is one the caller can correct, as opposed to a fault of the server.
func isClientError(err error) bool {
	var maxBytesErr *http.MaxBytesError
	for _, target := range []error{ErrEmptyKey, ErrReservedKey, ErrUnreadableBody, ErrInvalidEncoding, ErrMethodNotSupported} {
		if errors.Is(err, target) {
			return true
		}
	}
	return errors.As(err, &maxBytesErr)
}
