package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound is used by adapters; the core reports missing quizzes as absent values.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrUnknownQuestionType indicates a question type outside the supported set.
	ErrUnknownQuestionType = errors.New("unknown question type")
	// ErrSeedInvalid marks a seed catalog entry that cannot be imported.
	ErrSeedInvalid = errors.New("invalid seed quiz")
)

// ValidationError reports a question whose choices break its type's rules.
type ValidationError struct {
	Type   QuestionType
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(t QuestionType, reason string) *ValidationError {
	return &ValidationError{Type: t, Reason: reason}
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func unknownType(t QuestionType) *ValidationError {
	return &ValidationError{
		Type:   t,
		Reason: fmt.Sprintf("unsupported question type %q", string(t)),
		Err:    ErrUnknownQuestionType,
	}
}
