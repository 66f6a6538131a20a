// CineSync - Movie Catalog Search Index Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinesync

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/cinesync/internal/models"
)

// ErrValidation matches every *DocumentValidationError via errors.Is.
var ErrValidation = errors.New("document validation failed")

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed constraint on a source column.
type FieldError struct {
	field   string
	tag     string
	param   string
	message string
}

// Field returns the column name that failed validation.
func (e FieldError) Field() string { return e.field }

// Tag returns the validation tag that failed.
func (e FieldError) Tag() string { return e.tag }

// Param returns the parameter for the validation tag (e.g., "100" for "max=100").
func (e FieldError) Param() string { return e.param }

func (e FieldError) Error() string { return e.message }

// DocumentValidationError reports every failed constraint of one source row.
type DocumentValidationError struct {
	RowType string
	RowID   string
	errors  []FieldError
}

// Errors returns the individual field errors.
func (e *DocumentValidationError) Errors() []FieldError {
	return e.errors
}

// Fields returns the names of the failing columns in validation order.
func (e *DocumentValidationError) Fields() []string {
	out := make([]string, len(e.errors))
	for i, fe := range e.errors {
		out[i] = fe.field
	}
	return out
}

func (e *DocumentValidationError) Error() string {
	if len(e.errors) == 0 {
		return fmt.Sprintf("%s %s: validation failed", e.RowType, e.RowID)
	}
	messages := make([]string, len(e.errors))
	for i, fe := range e.errors {
		messages[i] = fe.message
	}
	return fmt.Sprintf("%s %s: %s", e.RowType, e.RowID, strings.Join(messages, "; "))
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *DocumentValidationError) Is(target error) bool {
	return target == ErrValidation
}

// GetValidator returns the singleton validator instance.
// Field names in errors come from the db struct tag when present.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("db"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})

	return validate
}

// ValidateRow checks row against its validate tags. It returns nil or a
// *DocumentValidationError.
func ValidateRow(row models.Row) error {
	err := GetValidator().Struct(row)
	if err == nil {
		return nil
	}

	verr := &DocumentValidationError{
		RowType: reflect.Indirect(reflect.ValueOf(row)).Type().Name(),
		RowID:   row.RowID().String(),
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.errors = []FieldError{{field: "unknown", tag: "unknown", message: err.Error()}}
		return verr
	}

	verr.errors = make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		verr.errors[i] = FieldError{
			field:   fe.Field(),
			tag:     fe.Tag(),
			param:   fe.Param(),
			message: translateError(fe),
		}
	}
	return verr
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"uuid":     "%s must be a valid UUID",
}

// translateError converts a validator.FieldError to a human-readable message.
func translateError(fe validator.FieldError) string {
	if template, ok := errorMessageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field())
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s validation", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
