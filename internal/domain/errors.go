package domain

import "errors"

// Domain errors
var (
	ErrFuneralNotFound    = errors.New("funeral not found")
	ErrBrochureNotFound   = errors.New("brochure not found")
	ErrCondolenceNotFound = errors.New("condolence not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidFile        = errors.New("invalid file")
	ErrServiceKeyMissing  = errors.New("admin operation blocked: service key not configured")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
