// Yamba - Playlist Management and Realtime Fan-out Engine
// Copyright 2026 Yamba contributors
// SPDX-License-Identifier: GPL-3.0-or-later
// https://github.com/yamba/manager

package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldViolation is one failed field with its tag and translated message.
type FieldViolation struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// RequestValidationError aggregates every field violation of one request.
type RequestValidationError struct {
	violations []FieldViolation
}

// Violations returns the individual field violations.
func (ve *RequestValidationError) Violations() []FieldViolation {
	return ve.violations
}

// Error joins the per-field messages.
func (ve *RequestValidationError) Error() string {
	if len(ve.violations) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.violations))
	for i, v := range ve.violations {
		messages[i] = v.Message
	}
	return strings.Join(messages, "; ")
}

// GetValidator returns the singleton validator. Thread-safe; the validator
// caches struct metadata across calls.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct validates tagged fields of s. Returns nil when everything
// passes, otherwise a *RequestValidationError listing every violation.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{violations: []FieldViolation{
			{Field: "unknown", Tag: "unknown", Message: err.Error()},
		}}
	}

	violations := make([]FieldViolation, len(fieldErrs))
	for i, fe := range fieldErrs {
		violations[i] = FieldViolation{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translate(fe),
		}
	}
	return &RequestValidationError{violations: violations}
}

var messageTemplates = map[string]string{
	"required": "%s is required",
	"url":      "%s must be a valid URL",
	"oneof":    "%s has an unsupported value",
}

// translate renders a field error as a human-readable message.
func translate(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := messageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}

	isString := fe.Kind().String() == "string"
	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
