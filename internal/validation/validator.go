// Package validation checks request payloads against the declarative rules kept in
// `validate` struct tags next to each input type.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"litverse-be/internal/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const msgInvalidInput = "invalid input"

var timeType = reflect.TypeOf(time.Time{})

// Validator is safe for concurrent use; build one at startup and share it.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names so clients see the field they actually sent
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	registerRules(v)

	return &Validator{v: v}
}

// ValidateFull checks every rule on s and reports all failures at once.
func (val *Validator) ValidateFull(s any) error {
	return translate(val.v.Struct(s))
}

// ValidatePartial checks only the fields present in s: non-nil pointers, and the
// present fields of non-nil nested structs. Omitted fields never trigger
// "required".
func (val *Validator) ValidatePartial(s any) error {
	fields := PresentFields(s)
	if len(fields) == 0 {
		return nil
	}
	return translate(val.v.StructPartial(s, fields...))
}

// PresentFields lists the Go field paths of s that carry a value, in the
// namespaced form StructPartial expects ("Address.City").
func PresentFields(s any) []string {
	rv := reflect.ValueOf(s)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return presentFields(rv, "")
}

func presentFields(rv reflect.Value, prefix string) []string {
	var out []string
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv := rv.Field(i)
		name := prefix + sf.Name

		switch fv.Kind() {
		case reflect.Ptr:
			if fv.IsNil() {
				continue
			}
			elem := fv.Elem()
			if elem.Kind() == reflect.Struct && elem.Type() != timeType && elem.Type() != reflect.TypeOf(decimal.Decimal{}) {
				nested := presentFields(elem, name+".")
				if len(nested) == 0 {
					out = append(out, name)
				}
				out = append(out, nested...)
				continue
			}
			out = append(out, name)
		case reflect.Slice, reflect.Map:
			if fv.IsNil() {
				continue
			}
			out = append(out, name)
		default:
			out = append(out, name)
		}
	}
	return out
}

func translate(err error) error {
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return apperror.Wrap(apperror.KindInternal, "validator misuse", err)
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Wrap(apperror.KindInternal, "validation failed", err)
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperror.FieldError{
			Field:   fieldPath(fe),
			Message: messageFor(fe),
			Code:    fe.Tag(),
		})
	}
	return apperror.Validation(msgInvalidInput, fields)
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return sizeMessage(fe, "at least")
	case "max":
		return sizeMessage(fe, "at most")
	case "len":
		return sizeMessage(fe, "exactly")
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "numeric", "number":
		return "must contain only digits"
	case "unique":
		return "must not contain duplicates"
	}
	if msg, ok := ruleMessages[fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
}

func sizeMessage(fe validator.FieldError, bound string) string {
	switch fe.Kind() {
	case reflect.String:
		return fmt.Sprintf("must be %s %s characters long", bound, fe.Param())
	case reflect.Slice, reflect.Map, reflect.Array:
		return fmt.Sprintf("must contain %s %s items", bound, fe.Param())
	default:
		return fmt.Sprintf("must be %s %s", bound, fe.Param())
	}
}
