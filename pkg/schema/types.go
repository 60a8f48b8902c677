package schema

import (
	"strconv"
	"strings"
)

// FieldKind is the closed set of field kinds a descriptor may declare.
type FieldKind string

const (
	KindText       FieldKind = "text"
	KindNumber     FieldKind = "number"
	KindPrice      FieldKind = "price"
	KindSelect     FieldKind = "select"
	KindTextArea   FieldKind = "textarea"
	KindMarkdown   FieldKind = "markdown"
	KindCheckbox   FieldKind = "checkbox"
	KindHeading    FieldKind = "heading"
	KindFieldArray FieldKind = "field-array"
)

// Kinds lists every supported kind in declaration order.
func Kinds() []FieldKind {
	return []FieldKind{
		KindText,
		KindNumber,
		KindPrice,
		KindSelect,
		KindTextArea,
		KindMarkdown,
		KindCheckbox,
		KindHeading,
		KindFieldArray,
	}
}

// ParseFieldKind maps a raw kind name onto the closed set. Unknown names are
// reported as a ConfigurationError.
func ParseFieldKind(raw string) (FieldKind, error) {
	candidate := FieldKind(strings.ToLower(strings.TrimSpace(raw)))
	for _, kind := range Kinds() {
		if kind == candidate {
			return kind, nil
		}
	}
	return "", &ConfigurationError{Kind: raw, Reason: "unknown field kind"}
}

// Decorative reports whether fields of this kind carry no data slot.
func (k FieldKind) Decorative() bool {
	return k == KindHeading
}

// Numeric reports whether the bound value is a number.
func (k FieldKind) Numeric() bool {
	return k == KindNumber || k == KindPrice
}

// Textual reports whether the bound value is free-form text.
func (k FieldKind) Textual() bool {
	return k == KindText || k == KindTextArea || k == KindMarkdown
}

// Option is a single select choice. Numeric values are stored as float64 so
// a value survives a round-trip through its string key unchanged.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value any    `json:"value" yaml:"value"`
}

// Key returns the string form a select widget reports for this option.
func (o Option) Key() string {
	return OptionKey(o.Value)
}

// OptionKey stringifies an option value.
func OptionKey(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		if f, ok := toFloat(typed); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return ""
	}
}

// Layout carries presentation-only grid hints.
type Layout struct {
	Columns     int `json:"columns,omitempty" yaml:"columns,omitempty"`
	SpaceBefore int `json:"spaceBefore,omitempty" yaml:"spaceBefore,omitempty"`
	SpaceAfter  int `json:"spaceAfter,omitempty" yaml:"spaceAfter,omitempty"`
}

// Message keys understood by the validation package.
const (
	MessageRequired = "required"
	MessageType     = "type"
	MessageOption   = "option"
)

// Field describes one form field.
type Field struct {
	Name        string            `json:"name"`
	Kind        FieldKind         `json:"kind"`
	Label       string            `json:"label,omitempty"`
	Description string            `json:"description,omitempty"`
	Required    bool              `json:"required,omitempty"`
	Default     any               `json:"default,omitempty"`
	Options     []Option          `json:"options,omitempty"`
	Messages    map[string]string `json:"messages,omitempty"`
	Layout      Layout            `json:"layout"`

	// ItemKind, ItemName and ItemRequired describe each entry of a
	// field-array. Every item is a record keyed by ItemName.
	ItemKind     FieldKind `json:"itemKind,omitempty"`
	ItemName     string    `json:"itemName,omitempty"`
	ItemRequired bool      `json:"itemRequired,omitempty"`
}

// OptionByKey restores the typed option matching a widget-reported key.
func (f Field) OptionByKey(key string) (Option, bool) {
	trimmed := strings.TrimSpace(key)
	for _, option := range f.Options {
		if option.Key() == trimmed {
			return option, true
		}
	}
	return Option{}, false
}

// HasOption reports whether value is one of the declared option values.
func (f Field) HasOption(value any) bool {
	key := OptionKey(value)
	if key == "" {
		return false
	}
	option, ok := f.OptionByKey(key)
	if !ok {
		return false
	}
	_, wantString := option.Value.(string)
	_, gotString := value.(string)
	return wantString == gotString
}

// Item returns the descriptor used for a single field-array entry.
func (f Field) Item() Field {
	return Field{
		Name:     f.ItemName,
		Kind:     f.ItemKind,
		Label:    f.Label,
		Required: f.ItemRequired,
		Messages: cloneMessages(f.Messages),
	}
}

// Message returns the configured user message for rule, or fallback.
func (f Field) Message(rule, fallback string) string {
	if msg := strings.TrimSpace(f.Messages[rule]); msg != "" {
		return msg
	}
	return fallback
}

// Action is a submit control declared by the form.
type Action struct {
	Name  string `json:"name" yaml:"name"`
	Label string `json:"label" yaml:"label"`
}

// Form groups the form-level texts and submit controls.
type Form struct {
	ID       string   `json:"id"`
	Title    string   `json:"title,omitempty"`
	Subtitle string   `json:"subtitle,omitempty"`
	Actions  []Action `json:"actions,omitempty"`
}

// Schema is an immutable ordered sequence of field descriptors. Accessors
// hand out copies so a shared Schema can never be mutated by a session.
type Schema struct {
	form   Form
	fields []Field
}

// New validates fields and returns an immutable schema.
func New(form Form, fields []Field) (Schema, error) {
	if err := validateFields(fields); err != nil {
		return Schema{}, err
	}
	cloned := make([]Field, len(fields))
	for idx, field := range fields {
		cloned[idx] = cloneField(field)
	}
	form.Actions = append([]Action(nil), form.Actions...)
	return Schema{form: form, fields: cloned}, nil
}

// Form returns the form-level configuration.
func (s Schema) Form() Form {
	out := s.form
	out.Actions = append([]Action(nil), s.form.Actions...)
	return out
}

// Fields returns the descriptors in schema order.
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	for idx, field := range s.fields {
		out[idx] = cloneField(field)
	}
	return out
}

// Len reports the number of descriptors, decorative ones included.
func (s Schema) Len() int {
	return len(s.fields)
}

// Field looks up a data-bearing descriptor by name. Decorative entries are
// never returned because they own no value.
func (s Schema) Field(name string) (Field, bool) {
	for _, field := range s.fields {
		if field.Name == name && !field.Kind.Decorative() {
			return cloneField(field), true
		}
	}
	return Field{}, false
}

// DataFields returns the descriptors that own a value slot.
func (s Schema) DataFields() []Field {
	out := make([]Field, 0, len(s.fields))
	for _, field := range s.fields {
		if field.Kind.Decorative() {
			continue
		}
		out = append(out, cloneField(field))
	}
	return out
}

func cloneField(field Field) Field {
	out := field
	if len(field.Options) > 0 {
		out.Options = append([]Option(nil), field.Options...)
	}
	out.Messages = cloneMessages(field.Messages)
	return out
}

func cloneMessages(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int8:
		return float64(typed), true
	case int16:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint8:
		return float64(typed), true
	case uint16:
		return float64(typed), true
	case uint32:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	default:
		return 0, false
	}
}

// NormalizeNumber converts any Go numeric type to float64.
func NormalizeNumber(value any) (float64, bool) {
	return toFloat(value)
}
