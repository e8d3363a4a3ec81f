package errors

import (
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies failures that can reach the user.
type Kind string

const (
	KindInvalidURL            Kind = "InvalidUrl"
	KindTranscriptUnavailable Kind = "TranscriptUnavailable"
	KindRetrievalFailed       Kind = "RetrievalFailed"
	KindInvalidInput          Kind = "InvalidInput"
	KindInternal              Kind = "Internal"
)

type AppError struct {
	Kind    Kind   `json:"-"`
	Code    int    `json:"-"`
	Message string `json:"error"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func E(kind Kind, code int, op string, err error, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func InvalidURL(op string, err error, message string) *AppError {
	return E(KindInvalidURL, http.StatusBadRequest, op, err, message)
}

func TranscriptUnavailable(op string, err error, message string) *AppError {
	return E(KindTranscriptUnavailable, http.StatusNotFound, op, err, message)
}

func RetrievalFailed(op string, err error, message string) *AppError {
	return E(KindRetrievalFailed, http.StatusBadGateway, op, err, message)
}

func InvalidInput(op string, err error, message string) *AppError {
	return E(KindInvalidInput, http.StatusBadRequest, op, err, message)
}

func Internal(op string, err error, message string) *AppError {
	return E(KindInternal, http.StatusInternalServerError, op, err, message)
}

// AsAppError returns the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if pkgerrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
