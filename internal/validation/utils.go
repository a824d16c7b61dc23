package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/shelter/internal/errs"
)

// Validatable is implemented by request payloads. Validate usually returns
// Struct(req) and may return CustomValidationErrors instead.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a field failure that no struct tag expresses.
type CustomValidationError struct {
	Field   string
	Message string
}

type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// Struct applies the `validate` tags of v.
func Struct(v any) error {
	return validate.Struct(v)
}

// BindAndValidate binds the request into payload, which must be a pointer,
// then validates it. Both failures are returned as a 400 *errs.HTTPError;
// validation failures carry field errors.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return errs.NewBadRequestError(bindErrorMessage(err), false, nil, nil)
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors)
	}

	return nil
}

// bindErrorMessage extracts the client-facing part of a bind error.
func bindErrorMessage(err error) string {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if msg, ok := echoErr.Message.(string); ok && msg != "" {
			return msg
		}
	}
	return "Invalid request body"
}

func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

// extractValidationError returns the response message and field errors for
// a failed Validate call. Errors of unknown shape keep their own message.
func extractValidationError(err error) (string, []errs.FieldError) {
	var validationErrors validator.ValidationErrors
	var customValidationErrors CustomValidationErrors

	switch {
	case errors.As(err, &validationErrors):
		fieldErrors := make([]errs.FieldError, 0, len(validationErrors))
		for _, fe := range validationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: strings.ToLower(fe.Field()),
				Error: fieldMessage(fe),
			})
		}
		return "Validation failed", fieldErrors

	case errors.As(err, &customValidationErrors):
		fieldErrors := make([]errs.FieldError, 0, len(customValidationErrors))
		for _, ce := range customValidationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{Field: ce.Field, Error: ce.Message})
		}
		return "Validation failed", fieldErrors

	default:
		return err.Error(), []errs.FieldError{}
	}
}

// fieldMessage phrases one validator failure for clients. min and max read
// as lengths for strings and entry counts for maps and slices.
func fieldMessage(fe validator.FieldError) string {
	kind := fe.Type().Kind()

	unit := ""
	switch kind {
	case reflect.String:
		unit = " characters"
	case reflect.Map, reflect.Slice:
		unit = " entries"
	}

	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if kind == reflect.Map || kind == reflect.Slice {
			return fmt.Sprintf("must have at least %s%s", fe.Param(), unit)
		}
		return fmt.Sprintf("must be at least %s%s", fe.Param(), unit)
	case "max":
		return fmt.Sprintf("must not exceed %s%s", fe.Param(), unit)
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "dive":
		return "some items are invalid"
	}

	if fe.Param() != "" {
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("failed %s", fe.Tag())
}
