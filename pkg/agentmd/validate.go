package agentmd

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidOptions is returned when Options fail validation. The
// returned error is an *OptionsError; use errors.As for the details.
var ErrInvalidOptions = errors.New("invalid options")

// ValidationError describes one invalid option.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// OptionsError lists every invalid option.
type OptionsError struct {
	Errors []ValidationError
}

func (e *OptionsError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return ErrInvalidOptions.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *OptionsError) Unwrap() error {
	return ErrInvalidOptions
}

var validate = sync.OnceValue(func() *validator.Validate {
	v := validator.New()
	// Fence characters cannot be listed in a oneof tag.
	if err := v.RegisterValidation("fencechar", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "`" || s == "~"
	}); err != nil {
		panic(err)
	}
	return v
})

// Validate checks opts against the allowed option values. A nil opts is valid.
func Validate(opts *Options) error {
	if opts == nil {
		return nil
	}

	err := validate().Struct(opts)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	oe := &OptionsError{}
	for _, fe := range fieldErrs {
		oe.Errors = append(oe.Errors, ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
			Value:   fe.Value(),
		})
	}
	return oe
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	case "fencechar":
		return "must be ` or ~"
	case "url":
		return "must be an absolute URL"
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
