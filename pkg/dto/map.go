package dto

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/oksasatya/go-users-contract/pkg/validation"
)

// ValidationError carries field-level messages for data that failed to map
// onto a DTO.
type ValidationError struct {
	Details map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + validation.Summary(e.Details)
}

// Map decodes plain into a T, dropping keys T does not declare, converting
// scalar strings where T expects numbers or booleans, and validates the result
// against T's binding rules.
func Map[T any](v *validator.Validate, plain map[string]interface{}) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
		Result:           &out,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(plain); err != nil {
		return out, &ValidationError{Details: decodeDetails(err)}
	}
	if err := v.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return out, &ValidationError{Details: validation.ToDetails(verrs)}
		}
		return out, err
	}
	return out, nil
}

// Plain flattens the exported fields of a struct into a map keyed by JSON
// name. Nested values are kept as-is.
func Plain(v any) map[string]interface{} {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	rt := rv.Type()
	out := make(map[string]interface{}, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		out[name] = rv.Field(i).Interface()
	}
	return out
}

// mapstructure reports messages such as "'limit' expected type 'int', got ..."
// or "cannot parse 'limit' as int: ..."; the first quoted token is the field.
func decodeDetails(err error) map[string]string {
	var merr *mapstructure.Error
	if !errors.As(err, &merr) {
		return map[string]string{"payload": err.Error()}
	}
	out := make(map[string]string, len(merr.Errors))
	for _, msg := range merr.Errors {
		field := "payload"
		if start := strings.Index(msg, "'"); start >= 0 {
			if end := strings.Index(msg[start+1:], "'"); end > 0 {
				field = msg[start+1 : start+1+end]
			}
		}
		out[field] = msg
	}
	return out
}
