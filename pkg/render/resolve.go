package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-productform/pkg/schema"
)

// Built-in widget identifiers handed to the presentation shell.
const (
	WidgetTextInput      = "text-input"
	WidgetNumberInput    = "number-input"
	WidgetPriceInput     = "price-input"
	WidgetSelect         = "select"
	WidgetTextArea       = "textarea"
	WidgetMarkdownEditor = "markdown-editor"
	WidgetCheckbox       = "checkbox"
	WidgetHeading        = "heading"
	WidgetFieldArray     = "field-array"
)

// OptionProp is a select choice as a widget sees it. Key is the string the
// widget reports back; Value keeps the original type.
type OptionProp struct {
	Label string `json:"label"`
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Directive is the widget-ready instruction derived from one descriptor.
type Directive struct {
	Name        string           `json:"name"`
	Kind        schema.FieldKind `json:"kind"`
	Widget      string           `json:"widget"`
	Label       string           `json:"label,omitempty"`
	Description string           `json:"description,omitempty"`
	Required    bool             `json:"required,omitempty"`
	Options     []OptionProp     `json:"options,omitempty"`
	Layout      schema.Layout    `json:"layout"`

	// Item is the directive for one entry of a field-array.
	Item *Directive `json:"item,omitempty"`
}

// Decorative reports whether the directive owns no value.
func (d Directive) Decorative() bool {
	return d.Kind.Decorative()
}

// Resolver maps descriptors to directives. Widget names can be overridden per
// kind; the set of kinds itself is closed.
type Resolver struct {
	mu        sync.RWMutex
	overrides map[schema.FieldKind]string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithWidget overrides the widget name used for kind.
func WithWidget(kind schema.FieldKind, widget string) Option {
	return func(r *Resolver) {
		trimmed := strings.TrimSpace(widget)
		if trimmed == "" {
			return
		}
		r.overrides[kind] = trimmed
	}
}

// NewResolver constructs a resolver with the built-in widget table.
func NewResolver(options ...Option) *Resolver {
	r := &Resolver{overrides: make(map[schema.FieldKind]string)}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

var defaultResolver = NewResolver()

// Resolve resolves a descriptor with the default widget table.
func Resolve(field schema.Field) (Directive, error) {
	return defaultResolver.Resolve(field)
}

// ResolveAll resolves every descriptor of s with the default widget table.
func ResolveAll(s schema.Schema) ([]Directive, error) {
	return defaultResolver.ResolveAll(s)
}

// MustResolveAll is like ResolveAll but panics on a ConfigurationError. An
// unresolvable schema is a programming error and must halt the program.
func MustResolveAll(s schema.Schema) []Directive {
	directives, err := ResolveAll(s)
	if err != nil {
		panic(err)
	}
	return directives
}

// Resolve returns the directive for field. Unknown kinds yield a
// *schema.ConfigurationError.
func (r *Resolver) Resolve(field schema.Field) (Directive, error) {
	widget, err := r.widgetFor(field.Name, field.Kind)
	if err != nil {
		return Directive{}, err
	}

	directive := Directive{
		Name:        field.Name,
		Kind:        field.Kind,
		Widget:      widget,
		Label:       field.Label,
		Description: field.Description,
		Required:    field.Required,
		Layout:      field.Layout,
	}

	switch field.Kind {
	case schema.KindSelect:
		directive.Options = make([]OptionProp, len(field.Options))
		for idx, option := range field.Options {
			directive.Options[idx] = OptionProp{
				Label: option.Label,
				Key:   option.Key(),
				Value: option.Value,
			}
		}
	case schema.KindFieldArray:
		item := field.Item()
		if item.Kind == schema.KindFieldArray || item.Kind.Decorative() {
			return Directive{}, &schema.ConfigurationError{
				Field:  field.Name,
				Kind:   string(item.Kind),
				Reason: "unsupported item kind",
			}
		}
		resolved, err := r.Resolve(item)
		if err != nil {
			return Directive{}, fmt.Errorf("render: item of %q: %w", field.Name, err)
		}
		directive.Item = &resolved
	}

	return directive, nil
}

// ResolveAll resolves descriptors in schema order.
func (r *Resolver) ResolveAll(s schema.Schema) ([]Directive, error) {
	fields := s.Fields()
	out := make([]Directive, 0, len(fields))
	for _, field := range fields {
		directive, err := r.Resolve(field)
		if err != nil {
			return nil, err
		}
		out = append(out, directive)
	}
	return out, nil
}

func (r *Resolver) widgetFor(name string, kind schema.FieldKind) (string, error) {
	widget, err := builtinWidget(kind)
	if err != nil {
		return "", &schema.ConfigurationError{Field: name, Kind: string(kind), Reason: "unknown field kind"}
	}
	if r == nil {
		return widget, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if override, ok := r.overrides[kind]; ok {
		return override, nil
	}
	return widget, nil
}

func builtinWidget(kind schema.FieldKind) (string, error) {
	switch kind {
	case schema.KindText:
		return WidgetTextInput, nil
	case schema.KindNumber:
		return WidgetNumberInput, nil
	case schema.KindPrice:
		return WidgetPriceInput, nil
	case schema.KindSelect:
		return WidgetSelect, nil
	case schema.KindTextArea:
		return WidgetTextArea, nil
	case schema.KindMarkdown:
		return WidgetMarkdownEditor, nil
	case schema.KindCheckbox:
		return WidgetCheckbox, nil
	case schema.KindHeading:
		return WidgetHeading, nil
	case schema.KindFieldArray:
		return WidgetFieldArray, nil
	default:
		return "", fmt.Errorf("render: unknown kind %q", kind)
	}
}
