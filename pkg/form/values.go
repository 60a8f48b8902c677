package form

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-productform/pkg/schema"
)

// Item is one record of a field-array sequence, keyed by the item name.
type Item = map[string]any

func initialValues(fields []schema.Field) map[string]any {
	values := make(map[string]any, len(fields))
	for _, field := range fields {
		if value, ok := initialValue(field); ok {
			values[field.Name] = value
		}
	}
	return values
}

func initialValue(field schema.Field) (any, bool) {
	if field.Default != nil {
		if value, err := coerce(field, field.Default); err == nil && value != nil {
			return value, true
		}
	}
	switch {
	case field.Kind == schema.KindFieldArray:
		return []Item{blankItem(field)}, true
	case field.Kind.Textual():
		return "", true
	case field.Kind == schema.KindCheckbox:
		return false, true
	default:
		return nil, false
	}
}

func blankItem(field schema.Field) Item {
	item := field.Item()
	value, _ := initialValue(item)
	return Item{field.ItemName: value}
}

// coerce converts a widget-reported value into the type bound to field.
// Strings that cannot be parsed for numeric and select fields are kept as is
// so the validator can report them at submit time.
func coerce(field schema.Field, value any) (any, error) {
	switch {
	case field.Kind.Decorative():
		return nil, ErrUnknownField
	case field.Kind.Textual():
		switch typed := value.(type) {
		case nil:
			return "", nil
		case string:
			return typed, nil
		}
		return nil, &ValueError{Field: field.Name, Value: value, Reason: "expected text"}
	case field.Kind.Numeric():
		return coerceNumber(field, value)
	case field.Kind == schema.KindSelect:
		return coerceSelect(field, value)
	case field.Kind == schema.KindCheckbox:
		switch typed := value.(type) {
		case nil:
			return false, nil
		case bool:
			return typed, nil
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
			if err != nil {
				return nil, &ValueError{Field: field.Name, Value: value, Reason: "expected a boolean"}
			}
			return parsed, nil
		}
		return nil, &ValueError{Field: field.Name, Value: value, Reason: "expected a boolean"}
	case field.Kind == schema.KindFieldArray:
		return coerceItems(field, value)
	}
	return nil, &schema.ConfigurationError{Field: field.Name, Kind: string(field.Kind), Reason: "unknown field kind"}
}

func coerceNumber(field schema.Field, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if f, ok := schema.NormalizeNumber(value); ok {
		return f, nil
	}
	raw, ok := value.(string)
	if !ok {
		return nil, &ValueError{Field: field.Name, Value: value, Reason: "expected a number"}
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64); err == nil {
		return f, nil
	}
	return raw, nil
}

func coerceSelect(field schema.Field, value any) (any, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(typed) == "" {
			return nil, nil
		}
		if option, ok := field.OptionByKey(typed); ok {
			return option.Value, nil
		}
		return typed, nil
	case bool:
		return nil, &ValueError{Field: field.Name, Value: value, Reason: "expected an option value"}
	}
	if f, ok := schema.NormalizeNumber(value); ok {
		if field.HasOption(f) {
			option, _ := field.OptionByKey(schema.OptionKey(f))
			return option.Value, nil
		}
		return f, nil
	}
	return nil, &ValueError{Field: field.Name, Value: value, Reason: "expected an option value"}
}

func coerceItems(field schema.Field, value any) (any, error) {
	var raw []any
	switch typed := value.(type) {
	case nil:
		return []Item{}, nil
	case []Item:
		for _, item := range typed {
			raw = append(raw, item)
		}
	case []any:
		raw = typed
	default:
		return nil, &ValueError{Field: field.Name, Value: value, Reason: "expected a sequence of records"}
	}

	descriptor := field.Item()
	items := make([]Item, 0, len(raw))
	for _, entry := range raw {
		record, ok := entry.(map[string]any)
		if !ok {
			return nil, &ValueError{Field: field.Name, Value: entry, Reason: "expected a record"}
		}
		item := blankItem(field)
		if sub, present := record[field.ItemName]; present {
			coerced, err := coerce(descriptor, sub)
			if err != nil {
				return nil, err
			}
			item[field.ItemName] = coerced
		}
		items = append(items, item)
	}
	return items, nil
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case []Item:
		clone := make([]Item, len(typed))
		for i, item := range typed {
			clone[i] = cloneItem(item)
		}
		return clone
	case Item:
		return cloneItem(typed)
	default:
		return typed
	}
}

func cloneItem(item Item) Item {
	clone := make(Item, len(item))
	for k, v := range item {
		clone[k] = v
	}
	return clone
}
