package errors

import (
	"net/http"
)

type StatusCode int

// Error implements error
func (status StatusCode) Error() string {
	return http.StatusText(int(status))
}

func Status(code int) *Error {
	return &Error{Kind: http.StatusText(code), status: StatusCode(code)}
}

var (
	Invalid     *Error = Status(http.StatusBadRequest)
	NotFound    *Error = Status(http.StatusNotFound)
	Conflict    *Error = Status(http.StatusConflict)
	Unavailable *Error = Status(http.StatusServiceUnavailable)
)

// StatusOf returns the HTTP status carried by the first kinded error in the chain,
// or 500 when there is none.
func StatusOf(err error) int {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			if e.status != 0 {
				return int(e.status)
			}
		case StatusCode:
			return int(e)
		}
		err = Unwrap(err)
	}
	return http.StatusInternalServerError
}
