package graph

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterStructValidation(educationRules, Education{})
	v.RegisterStructValidation(experienceRules, Experience{})
	return v
}

func educationRules(sl validator.StructLevel) {
	e := sl.Current().Interface().(Education)
	periodRules(sl, e.StartDate, e.EndDate)
}

func experienceRules(sl validator.StructLevel) {
	e := sl.Current().Interface().(Experience)
	periodRules(sl, e.StartDate, e.EndDate)
}

// periodRules requires a start date and rejects an end date before it.
func periodRules(sl validator.StructLevel, start time.Time, end *time.Time) {
	if start.IsZero() {
		sl.ReportError(start, "start_date", "StartDate", "required", "")
		return
	}
	if end != nil && end.Before(start) {
		sl.ReportError(*end, "end_date", "EndDate", "after_start", "")
	}
}

// Validate checks the field-level invariants of an entity and returns a
// *ValidationError naming every violating field.
func Validate(entity any) error {
	return toValidationError(validate.Struct(entity))
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return &ValidationError{Fields: fields}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "gt":
		return "this field is required"
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("ensure this value is greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("ensure this value is less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "after_start":
		return "end_date must not precede start_date"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
