// Package validation binds request bodies and checks them.
//
// Request types declare rules with go-playground/validator struct tags, or
// return CustomValidationErrors for checks tags cannot express. Failures are
// turned into a 400 errs.HTTPError with one FieldError per offending field,
// named by its JSON key.
package validation
