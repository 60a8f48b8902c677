package schema

import (
	"fmt"
	"strings"
)

// ConfigurationError signals a defect in the schema itself. It is never a
// user-correctable condition.
type ConfigurationError struct {
	Field  string
	Kind   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("schema: ")
	if e.Field != "" {
		fmt.Fprintf(&b, "field %q: ", e.Field)
	}
	b.WriteString(e.Reason)
	if e.Kind != "" {
		fmt.Fprintf(&b, " %q", e.Kind)
	}
	return b.String()
}

func validateFields(fields []Field) error {
	if len(fields) == 0 {
		return &ConfigurationError{Reason: "schema declares no fields"}
	}
	seen := make(map[string]struct{}, len(fields))
	for idx, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return &ConfigurationError{Reason: fmt.Sprintf("field at index %d has no name", idx)}
		}
		if kind, err := ParseFieldKind(string(field.Kind)); err != nil || kind != field.Kind {
			return &ConfigurationError{Field: name, Kind: string(field.Kind), Reason: "unknown field kind"}
		}
		if field.Kind.Decorative() {
			continue
		}
		if _, exists := seen[name]; exists {
			return &ConfigurationError{Field: name, Reason: "duplicate field name"}
		}
		seen[name] = struct{}{}

		switch field.Kind {
		case KindSelect:
			if len(field.Options) == 0 {
				return &ConfigurationError{Field: name, Reason: "select field requires options"}
			}
			keys := make(map[string]struct{}, len(field.Options))
			for _, option := range field.Options {
				key := option.Key()
				if key == "" {
					return &ConfigurationError{Field: name, Reason: fmt.Sprintf("option %q has an unsupported value", option.Label)}
				}
				if _, dup := keys[key]; dup {
					return &ConfigurationError{Field: name, Reason: fmt.Sprintf("duplicate option value %q", key)}
				}
				keys[key] = struct{}{}
			}
		case KindFieldArray:
			if kind, err := ParseFieldKind(string(field.ItemKind)); err != nil || kind != field.ItemKind {
				return &ConfigurationError{Field: name, Kind: string(field.ItemKind), Reason: "unknown item kind"}
			}
			if field.ItemKind == KindHeading || field.ItemKind == KindFieldArray || field.ItemKind == KindSelect {
				return &ConfigurationError{Field: name, Kind: string(field.ItemKind), Reason: "unsupported item kind"}
			}
			if strings.TrimSpace(field.ItemName) == "" {
				return &ConfigurationError{Field: name, Reason: "field-array requires an item name"}
			}
		}
	}
	return nil
}
