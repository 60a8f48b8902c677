package schema

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML (or JSON, which YAML accepts) form document into an
// immutable Schema.
func Parse(data []byte, source string) (Schema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Schema{}, fmt.Errorf("schema: file %s is empty", source)
	}

	var doc documentFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Schema{}, fmt.Errorf("schema: parse %s: %w", source, err)
	}

	fields := make([]Field, 0, len(doc.Fields))
	for idx, raw := range doc.Fields {
		field, err := normaliseField(raw)
		if err != nil {
			return Schema{}, fmt.Errorf("schema: %s field %d: %w", source, idx, err)
		}
		fields = append(fields, field)
	}

	form := Form{
		ID:       strings.TrimSpace(doc.Form.ID),
		Title:    doc.Form.Title,
		Subtitle: doc.Form.Subtitle,
	}
	for _, action := range doc.Form.Actions {
		name := strings.TrimSpace(action.Name)
		if name == "" {
			return Schema{}, fmt.Errorf("schema: %s declares an action without a name", source)
		}
		form.Actions = append(form.Actions, Action{Name: name, Label: action.Label})
	}

	return New(form, fields)
}

// LoadFile reads and parses a schema document from disk.
func LoadFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS reads and parses a schema document from fsys.
func LoadFS(fsys fs.FS, path string) (Schema, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Schema{}, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return Parse(data, path)
}

type documentFile struct {
	Form   formFile    `yaml:"form"`
	Fields []fieldFile `yaml:"fields"`
}

type formFile struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	Subtitle string   `yaml:"subtitle"`
	Actions  []Action `yaml:"actions"`
}

type fieldFile struct {
	Name         string            `yaml:"name"`
	Kind         string            `yaml:"kind"`
	Label        string            `yaml:"label"`
	Description  string            `yaml:"description"`
	Required     bool              `yaml:"required"`
	Default      any               `yaml:"default"`
	Options      []Option          `yaml:"options"`
	Messages     map[string]string `yaml:"messages"`
	Layout       Layout            `yaml:"layout"`
	ItemKind     string            `yaml:"itemKind"`
	ItemName     string            `yaml:"itemName"`
	ItemRequired bool              `yaml:"itemRequired"`
}

func normaliseField(raw fieldFile) (Field, error) {
	name := strings.TrimSpace(raw.Name)
	kind, err := ParseFieldKind(raw.Kind)
	if err != nil {
		return Field{}, &ConfigurationError{Field: name, Kind: raw.Kind, Reason: "unknown field kind"}
	}

	field := Field{
		Name:         name,
		Kind:         kind,
		Label:        raw.Label,
		Description:  raw.Description,
		Required:     raw.Required,
		Default:      normaliseValue(raw.Default),
		Messages:     cloneMessages(raw.Messages),
		Layout:       raw.Layout,
		ItemName:     strings.TrimSpace(raw.ItemName),
		ItemRequired: raw.ItemRequired,
	}

	if len(raw.Options) > 0 {
		field.Options = make([]Option, len(raw.Options))
		for idx, option := range raw.Options {
			field.Options[idx] = Option{
				Label: option.Label,
				Value: normaliseValue(option.Value),
			}
		}
	}

	if kind == KindFieldArray {
		itemKind := raw.ItemKind
		if strings.TrimSpace(itemKind) == "" {
			itemKind = string(KindText)
		}
		parsed, err := ParseFieldKind(itemKind)
		if err != nil {
			return Field{}, &ConfigurationError{Field: name, Kind: itemKind, Reason: "unknown item kind"}
		}
		field.ItemKind = parsed
		if field.ItemName == "" {
			field.ItemName = "url"
		}
	}

	return field, nil
}

func normaliseValue(value any) any {
	if f, ok := toFloat(value); ok {
		return f
	}
	return value
}
