package core

import (
	"errors"
	"fmt"
)

// Reason tags why a user-entered value was rejected. Rendering it as a
// human-readable message is left to the presentation layer.
type Reason string

const (
	ReasonEmptyInput         Reason = "empty_input"
	ReasonNotANumber         Reason = "not_a_number"
	ReasonNonPositive        Reason = "non_positive"
	ReasonTooLarge           Reason = "too_large"
	ReasonUnrecognizedFormat Reason = "unrecognized_format"
	ReasonFutureDate         Reason = "future_date"
	ReasonTooOld             Reason = "too_old"
	ReasonNotInCatalog       Reason = "not_in_catalog"
	ReasonInvalidKind        Reason = "invalid_kind"
	ReasonTooLong            Reason = "too_long"
)

// Field names used in validation errors.
const (
	FieldKind        = "kind"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldDate        = "date"
	FieldDescription = "description"
)

// ValidationError is returned by every validator.
type ValidationError struct {
	Field  string
	Reason Reason
	// Limit is set for ReasonTooLong.
	Limit int
}

// Sentinels for errors.Is; they match a ValidationError of the same reason
// regardless of field.
var (
	ErrEmptyInput         = &ValidationError{Reason: ReasonEmptyInput}
	ErrNotANumber         = &ValidationError{Reason: ReasonNotANumber}
	ErrNonPositive        = &ValidationError{Reason: ReasonNonPositive}
	ErrTooLarge           = &ValidationError{Reason: ReasonTooLarge}
	ErrUnrecognizedFormat = &ValidationError{Reason: ReasonUnrecognizedFormat}
	ErrFutureDate         = &ValidationError{Reason: ReasonFutureDate}
	ErrTooOld             = &ValidationError{Reason: ReasonTooOld}
	ErrNotInCatalog       = &ValidationError{Reason: ReasonNotInCatalog}
	ErrInvalidKind        = &ValidationError{Reason: ReasonInvalidKind}
	ErrTooLong            = &ValidationError{Reason: ReasonTooLong}
)

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return string(e.Reason)
	}
	if e.Limit > 0 {
		return fmt.Sprintf("%s: %s (max %d)", e.Field, e.Reason, e.Limit)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	if t.Field == "" {
		return t.Reason == e.Reason
	}
	return *t == *e
}

// ReasonOf extracts the validation reason from err, if any.
func ReasonOf(err error) (Reason, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason, true
	}
	return "", false
}
