package services

import (
	"errors"
	"fmt"
)

// Kind classifies a ServiceError so callers can branch on the failure
// class without string matching.
type Kind string

const (
	KindIllegalParameter  Kind = "ILLEGAL_PARAMETER"
	KindBadRequest        Kind = "BAD_REQUEST"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindForbidden         Kind = "FORBIDDEN"
	KindCourseLocked      Kind = "COURSE_LOCKED"
	KindDuplicateResource Kind = "DUPLICATE_RESOURCE"
	KindUploadFailed      Kind = "UPLOAD_FAILED"
	KindNotFound          Kind = "NOT_FOUND"
)

type ServiceError struct {
	Kind    Kind
	Status  int
	Message string
}

func (e ServiceError) Error() string {
	return e.Message
}

func ErrIllegalParameter(msg string) error {
	return ServiceError{Kind: KindIllegalParameter, Status: 400, Message: msg}
}

func ErrBadRequest(msg string) error {
	return ServiceError{Kind: KindBadRequest, Status: 400, Message: msg}
}

func ErrUnauthorized(msg string) error {
	return ServiceError{Kind: KindUnauthorized, Status: 401, Message: msg}
}

func ErrForbidden(msg string) error {
	return ServiceError{Kind: KindForbidden, Status: 403, Message: msg}
}

// ErrCourseLocked reports a state-machine violation on an approved
// course. Caller-correctable, so it maps to a 400-class status.
func ErrCourseLocked(msg string) error {
	return ServiceError{Kind: KindCourseLocked, Status: 409, Message: msg}
}

func ErrDuplicateResource(msg string) error {
	return ServiceError{Kind: KindDuplicateResource, Status: 409, Message: msg}
}

func ErrUploadFailed(msg string) error {
	return ServiceError{Kind: KindUploadFailed, Status: 500, Message: msg}
}

func ErrNotFound(msg string) error {
	return ServiceError{Kind: KindNotFound, Status: 404, Message: msg}
}

// IsKind reports whether err is a ServiceError of the given kind.
func IsKind(err error, kind Kind) bool {
	var se ServiceError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
