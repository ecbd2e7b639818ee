package diagram

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	errs "github.com/matzehuels/diagrams/pkg/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// validatorInstance returns the shared validator. Field names in errors use
// the JSON tag so messages match the wire format. The "ident" tag applies
// [errs.ValidateName] to identifier fields.
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
			return errs.ValidateName("", fl.Field().String()) == nil
		})
		validate = v
	})
	return validate
}

// Validate checks the `validate` struct tags of an element and returns a
// VALIDATION_FAILED error describing the first violation.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errs.Wrap(errs.ErrCodeValidation, err, "invalid element")
	}
	return describe(verrs[0])
}

func describe(fe validator.FieldError) error {
	field := fe.Field()
	switch fe.Tag() {
	case "ident":
		if err := errs.ValidateName(field, fmt.Sprint(fe.Value())); err != nil {
			return err
		}
		return errs.New(errs.ErrCodeValidation, "%s is invalid", field)
	case "required":
		return errs.New(errs.ErrCodeValidation, "%s is required", field)
	case "oneof":
		return errs.New(errs.ErrCodeValidation, "%s must be one of [%s], got %v", field, fe.Param(), fe.Value())
	case "gte":
		return errs.New(errs.ErrCodeValidation, "%s must be at least %s, got %v", field, fe.Param(), fe.Value())
	case "dive":
		return errs.New(errs.ErrCodeValidation, "%s has an invalid element", field)
	default:
		return errs.New(errs.ErrCodeValidation, "%s failed %q validation", field, fe.Tag())
	}
}
