package models

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

// Money fields are checked as float64 so tags like gte=0 apply to them.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Violation is the first struct-tag rule a value breaks.
type Violation struct {
	Field string
	Tag   string
}

// Check validates v against its `validate` tags and returns the first violation, if any.
func Check(v any) (Violation, bool) {
	err := validate.Struct(v)
	if err == nil {
		return Violation{}, true
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return Violation{Field: fieldErrs[0].Field(), Tag: fieldErrs[0].Tag()}, false
	}
	return Violation{Tag: err.Error()}, false
}
