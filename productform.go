package productform

import (
	"strings"

	"github.com/goliatone/go-productform/pkg/form"
	"github.com/goliatone/go-productform/pkg/render"
	"github.com/goliatone/go-productform/pkg/schema"
)

// Directive aliases render.Directive for callers that only need the facade.
type Directive = render.Directive

// Session aliases form.Session.
type Session = form.Session

// LoadSchema reads the form document at path. An empty path selects the
// embedded product schema.
func LoadSchema(path string) (schema.Schema, error) {
	if strings.TrimSpace(path) == "" {
		return schema.Product()
	}
	return schema.LoadFile(path)
}

// Directives resolves every descriptor of s in order.
func Directives(s schema.Schema) ([]Directive, error) {
	return render.ResolveAll(s)
}

// NewSession opens a form session over s persisting through creator.
func NewSession(s schema.Schema, creator form.Creator, options ...form.Option) (*Session, error) {
	return form.NewSession(s, creator, options...)
}

// NewProductSession opens a session over the embedded product schema.
func NewProductSession(creator form.Creator, options ...form.Option) (*Session, error) {
	s, err := schema.Product()
	if err != nil {
		return nil, err
	}
	return form.NewSession(s, creator, options...)
}
