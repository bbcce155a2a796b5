// Package validation checks job payloads against struct tags and JSON schemas.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Merge appends other's errors to r.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Valid = len(r.Errors) == 0
}

// Add records a single error.
func (r *ValidationResult) Add(field, code, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Code: code, Message: message})
	r.Valid = false
}

// Summary joins the errors for logs and BPMN error details.
func (r *ValidationResult) Summary() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

func Valid() *ValidationResult {
	return &ValidationResult{Valid: true}
}

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct applies `validate` struct tags. Field names in the result
// use the json names.
func ValidateStruct(s interface{}) *ValidationResult {
	result := Valid()
	err := structValidator.Struct(s)
	if err == nil {
		return result
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		result.Add("", "INVALID_STRUCT", err.Error())
		return result
	}
	for _, fe := range fieldErrs {
		result.Add(fieldPath(fe.Namespace()), strings.ToUpper(fe.Tag()), tagMessage(fe))
	}
	return result
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field missing"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// ValidateDocument validates doc against a JSON schema given as a Go value.
// An error is returned only when the schema itself cannot be used.
func ValidateDocument(schema map[string]interface{}, doc interface{}) (*ValidationResult, error) {
	res, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	result := Valid()
	if res.Valid() {
		return result, nil
	}

	schemaErrs := res.Errors()
	sort.SliceStable(schemaErrs, func(i, j int) bool {
		return schemaErrs[i].Field() < schemaErrs[j].Field()
	})
	for _, e := range schemaErrs {
		field := e.Field()
		if prop, ok := e.Details()["property"].(string); ok && field == "(root)" {
			field = prop
		}
		result.Add(field, strings.ToUpper(e.Type()), e.Description())
	}
	return result, nil
}
