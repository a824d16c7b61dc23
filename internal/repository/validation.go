package repository

import (
	"encoding/json"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/deppfellow/shelter/internal/errs"
	"github.com/deppfellow/shelter/internal/mongoerr"
)

const operatorPrefix = "$"

// SanitizeQuery rejects anything that is not a string-keyed mapping, and any
// mapping with a key starting with "$" at any depth. A safe query is returned
// unchanged.
func SanitizeQuery(q any) (Query, error) {
	query, ok := asMap(q)
	if !ok {
		return nil, mongoerr.NewValidationError("sanitize", "query must be a mapping of field names to values")
	}

	if path, found := findOperatorKey(query, ""); found {
		return nil, mongoerr.NewValidationError("sanitize", "unsafe query operator detected",
			errs.FieldError{Field: path, Error: "keys must not start with " + operatorPrefix})
	}

	return Query(query), nil
}

// ValidateDocument checks that name, type and age are present, that name and
// type are strings, and that age is a non-negative integer. Every problem is
// reported as a separate field error. A valid document is returned unchanged.
func ValidateDocument(doc Document) (Document, error) {
	if len(doc) == 0 {
		return nil, mongoerr.NewValidationError("validate", "document must not be empty")
	}

	var fields []errs.FieldError
	for _, field := range requiredFields {
		if _, ok := doc[field]; !ok {
			fields = append(fields, errs.FieldError{Field: field, Error: "is required"})
		}
	}
	fields = append(fields, checkFieldTypes(doc)...)

	if len(fields) > 0 {
		return nil, mongoerr.NewValidationError("validate", "Validation failed", fields...)
	}

	return doc, nil
}

// checkFieldTypes checks the known fields present in doc: name and type must
// be strings, age a non-negative integer. Absent fields are not reported.
func checkFieldTypes(doc Document) []errs.FieldError {
	var fields []errs.FieldError

	for _, field := range []string{FieldName, FieldType} {
		if v, ok := doc[field]; ok {
			if _, isString := v.(string); !isString {
				fields = append(fields, errs.FieldError{Field: field, Error: "must be a string"})
			}
		}
	}

	if age, ok := doc[FieldAge]; ok && !isNonNegativeInteger(age) {
		fields = append(fields, errs.FieldError{Field: FieldAge, Error: "must be a non-negative integer"})
	}

	return fields
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case Query:
		return m, true
	case Document:
		return m, true
	case bson.M:
		return m, true
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}

// findOperatorKey walks nested mappings and arrays and returns the dotted
// path of the first "$" key it meets. Keys are visited in sorted order so the
// reported path is stable.
func findOperatorKey(v any, path string) (string, bool) {
	join := func(key string) string {
		if path == "" {
			return key
		}
		return path + "." + key
	}

	if m, ok := asMap(v); ok {
		for _, key := range slices.Sorted(maps.Keys(m)) {
			if strings.HasPrefix(key, operatorPrefix) {
				return join(key), true
			}
			if p, found := findOperatorKey(m[key], join(key)); found {
				return p, true
			}
		}
		return "", false
	}

	switch val := v.(type) {
	case bson.D:
		for _, e := range val {
			if strings.HasPrefix(e.Key, operatorPrefix) {
				return join(e.Key), true
			}
			if p, found := findOperatorKey(e.Value, join(e.Key)); found {
				return p, true
			}
		}
	case bson.E:
		return findOperatorKey(bson.D{val}, path)
	case bson.A:
		return findOperatorKey([]any(val), path)
	case []any:
		for i, item := range val {
			if p, found := findOperatorKey(item, join(strconv.Itoa(i))); found {
				return p, true
			}
		}
	}

	return "", false
}

// isNonNegativeInteger accepts any Go integer kind, whole-number floats and
// integral json.Number values. Booleans are not integers.
func isNonNegativeInteger(v any) bool {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i >= 0
		}
		f, err := n.Float64()
		return err == nil && isWhole(f) && f >= 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() >= 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return isWhole(f) && f >= 0
	default:
		return false
	}
}

func isWhole(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && math.Trunc(f) == f
}

// normalizeNumbers returns a copy of m that the driver can encode faithfully:
// json.Number becomes int64 or float64, and a whole-number age becomes int64
// so it is stored as an integer rather than a double.
func normalizeNumbers(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for key, v := range m {
		v = normalizeValue(v)
		if key == FieldAge {
			if f, ok := v.(float64); ok && isWhole(f) && math.Abs(f) <= 1<<53 {
				v = int64(f)
			}
		}
		out[key] = v
	}
	return out
}

func normalizeValue(v any) any {
	if m, ok := asMap(v); ok {
		return normalizeNumbers(m)
	}

	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	}

	return v
}
