package services

import (
	"errors"
	"strings"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrForbidden          = errors.New("You do not have permission to perform this action.")
	ErrEmailTaken         = errors.New("Email address is already registered.")
	ErrInvalidCredentials = errors.New("Invalid email or password.")
	ErrWrongPassword      = errors.New("Current password is incorrect.")
	ErrSelfDelete         = errors.New("You cannot delete your own account.")
	ErrSelfRoleChange     = errors.New("You cannot change your own role.")
	ErrInvalidRole        = errors.New("Invalid role selected.")
	ErrHierarchy          = errors.New("Selected class, subject and chapter do not match.")
	ErrSystem             = errors.New("A system error occurred. Please try again.")
)

// ValidationError carries user-facing form messages in display order
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, " ")
}

// NewValidationError builds a ValidationError from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// UploadError lists every reason an uploaded file was rejected
type UploadError struct {
	Reasons []string
}

func (e *UploadError) Error() string {
	return strings.Join(e.Reasons, " ")
}

// Messages returns the user-facing messages of err when it is a
// ValidationError or UploadError, else a single generic message
func Messages(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Messages
	}
	var ue *UploadError
	if errors.As(err, &ue) {
		return ue.Reasons
	}
	for _, known := range []error{ErrEmailTaken, ErrInvalidCredentials, ErrWrongPassword, ErrSelfDelete, ErrSelfRoleChange, ErrInvalidRole, ErrHierarchy} {
		if errors.Is(err, known) {
			return []string{known.Error()}
		}
	}
	return []string{ErrSystem.Error()}
}
