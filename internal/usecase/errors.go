package usecase

import "errors"

// DomainError is a business-rule rejection the caller can act on.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError is an infrastructure failure surfaced as a generic
// retryable condition.
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// DuplicateError rejects a submission whose contact identifier is
// already on file. Field names which one (email or phone) so the form
// can flag it inline.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return e.Field + " already registered"
}

func IsDuplicateError(err error) bool {
	var de *DuplicateError
	return errors.As(err, &de)
}
