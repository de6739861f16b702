// Package validator turns ozzo-validation results into typed, field-named errors.
package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/KOMKZ/yogan-vehicle-api/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Kind tells callers what was wrong with the input.
type Kind string

const (
	KindNilItem      Kind = "nil_item"
	KindInvalidID    Kind = "invalid_id"
	KindMissingField Kind = "missing_field"
	KindInvalidValue Kind = "invalid_value"
)

const codeNotBlank = "validation_not_blank"

// NotBlank rejects strings made only of whitespace. Pair it with validation.Required,
// which rejects the empty string.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool { return strings.TrimSpace(s) != "" },
	validation.NewError(codeNotBlank, "cannot be blank"),
)

// Validatable is implemented by request and domain types.
type Validatable interface {
	Validate() error
}

// ValidationError reports malformed caller input. Field names the first offending
// field (alphabetically when several fail); Fields holds every failure.
type ValidationError struct {
	Field   string
	Kind    Kind
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap makes errors.Is(err, errcode.ErrValidationFailed) hold.
func (e *ValidationError) Unwrap() error {
	return errcode.ErrValidationFailed
}

// Layered converts e into the HTTP-facing error.
func (e *ValidationError) Layered() *errcode.LayeredError {
	fields := e.Fields
	if fields == nil {
		fields = map[string]string{e.Field: e.Message}
	}
	return errcode.ErrValidationFailed.
		WithMsg(e.Error()).
		WithFields(map[string]interface{}{
			"field":  e.Field,
			"kind":   string(e.Kind),
			"fields": fields,
		})
}

func NilItem(field string) *ValidationError {
	return &ValidationError{Field: field, Kind: KindNilItem, Message: "is required"}
}

// PositiveID fails with KindInvalidID unless id > 0.
func PositiveID(field string, id int64) error {
	const msg = "must be greater than zero"
	err := validation.Validate(id,
		validation.Required.Error(msg),
		validation.Min(int64(1)).Error(msg),
	)
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Kind: KindInvalidID, Message: err.Error()}
}

// Validate runs v.Validate and converts ozzo field errors into a *ValidationError.
// Any other error is returned unchanged.
func Validate(v Validatable) error {
	err := v.Validate()
	if err == nil {
		return nil
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return FromErrors(fieldErrs)
	}
	return err
}

// FromErrors converts ozzo field errors. It returns nil when errs holds no failure.
func FromErrors(errs validation.Errors) error {
	names := make([]string, 0, len(errs))
	fields := make(map[string]string, len(errs))
	for name, fieldErr := range errs {
		if fieldErr == nil {
			continue
		}
		names = append(names, name)
		fields[name] = fieldErr.Error()
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	first := names[0]
	return &ValidationError{
		Field:   first,
		Kind:    kindOf(errs[first]),
		Message: fields[first],
		Fields:  fields,
	}
}

func kindOf(err error) Kind {
	var ve validation.Error
	if errors.As(err, &ve) {
		switch ve.Code() {
		case validation.ErrRequired.Code(), validation.ErrNilOrNotEmpty.Code(), codeNotBlank:
			return KindMissingField
		}
	}
	return KindInvalidValue
}
