package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/tripadvisor-api/internal/repository"
)

// Validator adapts validator/v10 to echo.Validator.  Failures come back as
// ValidationFailure errors naming the offending JSON fields.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return repository.Invalid(err.Error())
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		switch f.Tag() {
		case "required":
			parts = append(parts, f.Field()+" is required")
		case "email":
			parts = append(parts, f.Field()+" must be a valid email")
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", f.Field(), f.Tag()))
		}
	}
	return repository.Invalid(strings.Join(parts, "; "))
}
