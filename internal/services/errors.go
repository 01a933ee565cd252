package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// serviceError carries structured failure context for a stage or collaborator.
type serviceError struct {
	marker    error
	stage     string
	operation string
	message   string
	cause     error
}

func (e *serviceError) Error() string {
	detail := buildDetail(e.stage, e.operation, e.message)
	if e.cause != nil {
		return fmt.Sprintf("%v: %s: %v", e.marker, detail, e.cause)
	}
	return fmt.Sprintf("%v: %s", e.marker, detail)
}

func (e *serviceError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.marker, e.cause}
	}
	return []error{e.marker}
}

// Wrap builds an error that includes stage context while tagging it with the
// provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &serviceError{
		marker:    marker,
		stage:     strings.TrimSpace(stage),
		operation: strings.TrimSpace(operation),
		message:   strings.TrimSpace(message),
		cause:     err,
	}
}

// ErrorDetails exposes the structured context attached by Wrap.
type ErrorDetails struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Cause     error
}

// Details extracts structured failure context from an error chain. Errors not
// produced by Wrap yield a details record carrying only the error text.
func Details(err error) ErrorDetails {
	var svcErr *serviceError
	if errors.As(err, &svcErr) {
		return ErrorDetails{
			Marker:    svcErr.marker,
			Stage:     svcErr.stage,
			Operation: svcErr.operation,
			Message:   svcErr.message,
			Cause:     svcErr.cause,
		}
	}
	details := ErrorDetails{}
	if err != nil {
		details.Message = strings.TrimSpace(err.Error())
		details.Cause = err
	}
	return details
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage != "" {
		parts = append(parts, stage)
	}
	if operation != "" {
		parts = append(parts, operation)
	}
	if message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
