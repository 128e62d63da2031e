// Package config holds the validated parameters of a benchmark invocation.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/weiihann/corebench/kernel"
)

// Language is the tag this implementation writes into every result record.
const Language = "go"

// ErrInvalidConfig indicates a missing or out-of-range parameter.
var ErrInvalidConfig = errors.New("invalid configuration")

// validate reports field errors under their command-line flag names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("flag"); name != "" {
			return "--" + name
		}

		return f.Name
	})

	return v
}

// Run is the immutable configuration of one benchmark invocation.
type Run struct {
	Algorithm  kernel.Algorithm `flag:"alg" validate:"oneof=1 2 3 4 5"`
	Threads    int              `flag:"threads" validate:"min=1,max=256"`
	Runs       int              `flag:"runs" validate:"min=1,max=1000"`
	Size       int64            `flag:"size" validate:"min=1"`
	OutputPath string           `flag:"out" validate:"required"`
}

// Validate checks every field and returns an error wrapping
// ErrInvalidConfig that names each offending flag.
func (r Run) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	errs := make([]error, 0, len(fieldErrs)+1)
	errs = append(errs, ErrInvalidConfig)

	for _, fe := range fieldErrs {
		errs = append(errs, errors.New(describe(fe)))
	}

	return errors.Join(errs...)
}

// Args renders the configuration as the command-line flags shared by
// every implementation of the benchmark.
func (r Run) Args() []string {
	return []string{
		"--alg", strconv.Itoa(int(r.Algorithm)),
		"--threads", strconv.Itoa(r.Threads),
		"--runs", strconv.Itoa(r.Runs),
		"--size", strconv.FormatInt(r.Size, 10),
		"--out", r.OutputPath,
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s, got %d", fe.Field(), fe.Param(), fe.Value())
	case "min":
		return fmt.Sprintf("%s must be at least %s, got %d", fe.Field(), fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s, got %d", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
	}
}
