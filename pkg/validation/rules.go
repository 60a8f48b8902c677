package validation

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-productform/pkg/schema"
)

// Fallback messages used when a descriptor carries no message of its own.
const (
	DefaultRequiredMessage = "is required"
	DefaultTypeMessage     = "must be a number"
	DefaultOptionMessage   = "is not a valid option"
)

// Rules validates form values against the constraints declared by a schema.
// It holds no mutable state; Validate is a pure function of its input.
type Rules struct {
	fields []schema.Field
}

// New derives validation rules from the data fields of s.
func New(s schema.Schema) *Rules {
	return &Rules{fields: s.DataFields()}
}

// Validate returns field errors keyed by field name. Item level errors of a
// field-array use dotted paths ("photos.1.url"). Valid values yield an empty
// map.
func (r *Rules) Validate(values map[string]any) map[string]string {
	out := make(map[string]string)
	if r == nil {
		return out
	}
	for _, field := range r.fields {
		value, present := values[field.Name]
		if !present {
			value = nil
		}
		checkField(field, field.Name, value, out)
	}
	return out
}

func checkField(field schema.Field, path string, value any, out map[string]string) {
	switch {
	case field.Kind.Textual():
		text, ok := value.(string)
		if value != nil && !ok {
			out[path] = field.Message(schema.MessageType, "must be text")
			return
		}
		if field.Required && strings.TrimSpace(text) == "" {
			out[path] = field.Message(schema.MessageRequired, DefaultRequiredMessage)
		}

	case field.Kind.Numeric():
		if isBlank(value) {
			if field.Required {
				out[path] = field.Message(schema.MessageRequired, DefaultRequiredMessage)
			}
			return
		}
		if _, ok := value.(float64); !ok {
			out[path] = field.Message(schema.MessageType, DefaultTypeMessage)
		}

	case field.Kind == schema.KindSelect:
		if isBlank(value) {
			if field.Required {
				out[path] = field.Message(schema.MessageRequired, DefaultRequiredMessage)
			}
			return
		}
		if !field.HasOption(value) {
			out[path] = field.Message(schema.MessageOption, DefaultOptionMessage)
		}

	case field.Kind == schema.KindCheckbox:
		checked, _ := value.(bool)
		if field.Required && !checked {
			out[path] = field.Message(schema.MessageRequired, DefaultRequiredMessage)
		}

	case field.Kind == schema.KindFieldArray:
		items, _ := value.([]map[string]any)
		if field.Required && len(items) == 0 {
			out[path] = field.Message(schema.MessageRequired, DefaultRequiredMessage)
			return
		}
		item := field.Item()
		for idx, record := range items {
			itemPath := fmt.Sprintf("%s.%d.%s", path, idx, item.Name)
			checkField(item, itemPath, record[item.Name], out)
		}
	}
}

func isBlank(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	default:
		return false
	}
}
