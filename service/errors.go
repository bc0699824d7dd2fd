package service

import (
	"fmt"
	"net/http"
)

type Kind int

const (
	FileTooLarge Kind = iota + 1
	DecodeFailure
	RemovalFailure
	EncodeFailure
	NoInputAvailable
)

func (k Kind) String() string {
	switch k {
	case FileTooLarge:
		return "FILE_TOO_LARGE"
	case DecodeFailure:
		return "DECODE_FAILURE"
	case RemovalFailure:
		return "REMOVAL_FAILURE"
	case EncodeFailure:
		return "ENCODE_FAILURE"
	case NoInputAvailable:
		return "NO_INPUT_AVAILABLE"
	default:
		return "UNKNOWN"
	}
}

// Status is the HTTP status used for the kind on the API route.
func (k Kind) Status() int {
	switch k {
	case FileTooLarge:
		return http.StatusRequestEntityTooLarge
	case DecodeFailure:
		return http.StatusUnprocessableEntity
	case RemovalFailure:
		return http.StatusBadGateway
	case NoInputAvailable:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// UserError is a request failure whose message can be shown to the user.
type UserError struct {
	Kind  Kind
	Err   error
	Limit int64
}

func (e *UserError) Error() string {
	switch e.Kind {
	case FileTooLarge:
		return fmt.Sprintf("file too large: please upload an image smaller than %s", FormatSize(e.Limit))
	case DecodeFailure:
		return fmt.Sprintf("error opening image: %v", e.Err)
	case RemovalFailure:
		return fmt.Sprintf("error processing image: %v", e.Err)
	case EncodeFailure:
		return fmt.Sprintf("error encoding image: %v", e.Err)
	case NoInputAvailable:
		return "no image uploaded and default image not found: please upload an image"
	default:
		return fmt.Sprintf("unexpected error: %v", e.Err)
	}
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// Warning reports whether the failure is shown as a warning, not an error.
func (e *UserError) Warning() bool {
	return e.Kind == NoInputAvailable
}

func FormatSize(n int64) string {
	const mb = 1024 * 1024
	switch {
	case n >= mb && n%mb == 0:
		return fmt.Sprintf("%dMB", n/mb)
	case n >= mb:
		return fmt.Sprintf("%.1fMB", float64(n)/mb)
	case n >= 1024 && n%1024 == 0:
		return fmt.Sprintf("%dKB", n/1024)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
