// Package dto describes API boundary shapes: field schemas read from struct
// tags, projections of those schemas, and decoding of plain data into
// validated DTO structs.
package dto

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/go-users-contract/pkg/validation"
)

// Field is the boundary description of one DTO field, keyed by its JSON name.
type Field struct {
	Name     string
	Type     string // OpenAPI primitive: string, integer, number, boolean, array, object
	Format   string
	Rules    string // validator rules excluding required/omitempty
	Required bool
	Example  string
}

// Schema is an ordered set of fields.
type Schema struct {
	Name   string
	Fields []Field
}

var timeType = reflect.TypeOf(time.Time{})

// SchemaOf reads the json, binding, format and example tags of T.
// T must be a struct type.
func SchemaOf[T any](name string) Schema {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("dto: SchemaOf requires a struct, got %s", t))
	}
	s := Schema{Name: name}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		jsonName := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		if jsonName == "-" {
			continue
		}
		if jsonName == "" {
			jsonName = sf.Name
		}
		typ, format := openAPIType(sf.Type)
		if f := sf.Tag.Get("format"); f != "" {
			format = f
		}
		required, rules := splitRules(sf.Tag.Get("binding"))
		s.Fields = append(s.Fields, Field{
			Name:     jsonName,
			Type:     typ,
			Format:   format,
			Rules:    rules,
			Required: required,
			Example:  sf.Tag.Get("example"),
		})
	}
	return s
}

// Pick projects the named fields of s into a new schema, keeping each
// field's rules. Picked fields become required, or optional when optional
// is true. The result lists fields in the order of keys.
func (s Schema) Pick(name string, keys []string, optional bool) (Schema, error) {
	out := Schema{Name: name, Fields: make([]Field, 0, len(keys))}
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		f, ok := s.Field(k)
		if !ok {
			return Schema{}, fmt.Errorf("dto: %s has no field %q", s.Name, k)
		}
		seen[k] = true
		f.Required = !optional
		out.Fields = append(out.Fields, f)
	}
	return out, nil
}

// MustPick is Pick for package-level schema declarations.
func (s Schema) MustPick(name string, keys []string, optional bool) Schema {
	out, err := s.Pick(name, keys, optional)
	if err != nil {
		panic(err)
	}
	return out
}

// Field looks up a field by JSON name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names lists the JSON names of the schema's fields in order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// RequiredNames lists the names of required fields in order.
func (s Schema) RequiredNames() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Rules renders the schema as a rule set for validator.ValidateMap.
func (s Schema) Rules() map[string]interface{} {
	out := make(map[string]interface{}, len(s.Fields))
	for _, f := range s.Fields {
		tag := "omitempty"
		if f.Required {
			tag = "required"
		}
		if f.Rules != "" {
			tag += "," + f.Rules
		}
		out[f.Name] = tag
	}
	return out
}

// Validate checks plain data against the schema's rules. Keys the schema
// does not declare are ignored. It returns nil when the data is valid.
func (s Schema) Validate(v *validator.Validate, plain map[string]interface{}) map[string]string {
	return validation.MapDetails(v.ValidateMap(plain, s.Rules()))
}

func splitRules(tag string) (bool, string) {
	if tag == "" {
		return false, ""
	}
	required := false
	var rest []string
	for _, r := range strings.Split(tag, ",") {
		switch r {
		case "required":
			required = true
		case "omitempty", "":
		default:
			rest = append(rest, r)
		}
	}
	return required, strings.Join(rest, ",")
}

func openAPIType(t reflect.Type) (string, string) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return "string", "date-time"
	}
	switch t.Kind() {
	case reflect.String:
		return "string", ""
	case reflect.Bool:
		return "boolean", ""
	case reflect.Int64, reflect.Uint64:
		return "integer", "int64"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return "integer", "int32"
	case reflect.Float32:
		return "number", "float"
	case reflect.Float64:
		return "number", "double"
	case reflect.Slice, reflect.Array:
		return "array", ""
	default:
		return "object", ""
	}
}
