// Package failure carries an HTTP status and an optional machine-readable
// kind alongside an error, so handlers can render any service error.
package failure

import (
	"errors"
	"net/http"
)

const internalErrorMessage = "internal server error"

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	err     error
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}

func newFailure(code int, kind, msg string, cause error) *Failure {
	return &Failure{Code: code, Kind: kind, Message: msg, err: cause}
}

func (e *Failure) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Failure) Unwrap() error {
	return e.err
}

// BadRequest uses err's text as the message. A nil err stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return newFailure(http.StatusBadRequest, "", err.Error(), err)
}

func BadRequestFromString(msg string) error {
	return newFailure(http.StatusBadRequest, "", msg, nil)
}

func Unauthorized(msg string) error {
	return newFailure(http.StatusUnauthorized, "", msg, nil)
}

func Forbidden(msg string) error {
	return newFailure(http.StatusForbidden, "", msg, nil)
}

// NotFound takes the full message, e.g. "hotel not found".
func NotFound(msg string) error {
	return newFailure(http.StatusNotFound, "", msg, nil)
}

func Conflict(msg string) error {
	return newFailure(http.StatusConflict, "", msg, nil)
}

// InternalError hides err from the response body but keeps it for logs and errors.Is.
func InternalError(err error) error {
	if err == nil {
		return nil
	}

	return newFailure(http.StatusInternalServerError, "", internalErrorMessage, err)
}

// GetCode returns 500 for anything that is not a Failure.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetKind returns the machine-readable kind of an error interface, or an empty string.
func GetKind(err error) string {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Kind
	}

	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind string) bool {
	return err != nil && GetKind(err) == kind
}

// GetMessage returns the client-facing message. Errors that are not a
// Failure never leak their text.
func GetMessage(err error) string {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Message
	}

	return internalErrorMessage
}
