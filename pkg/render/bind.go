package render

// Binder is the slice of a form session that bound directives talk to.
type Binder interface {
	Value(name string) (any, bool)
	FieldError(name string) string
	SetValue(name string, value any) error
	SetItemValue(name string, index int, sub string, value any) error
	AddArrayItem(name string) error
	RemoveArrayItem(name string, index int) error
}

// Bound is a directive with the current value, validation message and
// change handlers attached.
type Bound struct {
	Directive

	Value    any
	Error    string
	OnChange func(value any) error

	// Field-array only.
	Items      []BoundItem
	AddItem    func() error
	RemoveItem func(index int) error
}

// BoundItem is one entry of a bound field-array.
type BoundItem struct {
	Index     int
	Directive Directive
	Value     any
	OnChange  func(value any) error
}

// Bind attaches the binder's current state to directives, preserving order.
// Headings come back without value or handlers.
func Bind(directives []Directive, b Binder) []Bound {
	out := make([]Bound, 0, len(directives))
	for _, directive := range directives {
		out = append(out, bindOne(directive, b))
	}
	return out
}

func bindOne(directive Directive, b Binder) Bound {
	bound := Bound{Directive: directive}
	if directive.Decorative() || b == nil {
		return bound
	}

	name := directive.Name
	bound.Value, _ = b.Value(name)
	bound.Error = b.FieldError(name)

	if directive.Item == nil {
		bound.OnChange = func(value any) error {
			return b.SetValue(name, value)
		}
		return bound
	}

	item := *directive.Item
	bound.AddItem = func() error {
		return b.AddArrayItem(name)
	}
	bound.RemoveItem = func(index int) error {
		return b.RemoveArrayItem(name, index)
	}

	records, _ := bound.Value.([]map[string]any)
	for idx, record := range records {
		index := idx
		bound.Items = append(bound.Items, BoundItem{
			Index:     index,
			Directive: item,
			Value:     record[item.Name],
			OnChange: func(value any) error {
				return b.SetItemValue(name, index, item.Name, value)
			},
		})
	}
	return bound
}
