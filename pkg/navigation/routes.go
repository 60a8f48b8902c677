package navigation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// Action tags reported by the submit controls.
const (
	// ActionSave stores the product and returns to the listing.
	ActionSave = "submit"
	// ActionSaveAndPrint stores the product and opens its print view.
	ActionSaveAndPrint = "submit-and-print"
	// ActionCancel leaves the form without submitting.
	ActionCancel = "cancel"
)

// Default route templates. Templates are pongo2 strings rendered with the
// new product id bound to "id".
const (
	DefaultListing = "/"
	DefaultDetail  = "/product/{{ id }}/print"
)

// Routes maps a submit action and product id to a navigation target.
type Routes struct {
	listingSource string
	detailSource  string

	mu      sync.Mutex
	listing *pongo2.Template
	detail  *pongo2.Template
}

// NewRoutes compiles the listing and detail templates. Blank templates fall
// back to the defaults.
func NewRoutes(listing, detail string) (*Routes, error) {
	listing = strings.TrimSpace(listing)
	if listing == "" {
		listing = DefaultListing
	}
	detail = strings.TrimSpace(detail)
	if detail == "" {
		detail = DefaultDetail
	}

	listingTpl, err := pongo2.FromString(listing)
	if err != nil {
		return nil, fmt.Errorf("navigation: listing template: %w", err)
	}
	detailTpl, err := pongo2.FromString(detail)
	if err != nil {
		return nil, fmt.Errorf("navigation: detail template: %w", err)
	}

	return &Routes{
		listingSource: listing,
		detailSource:  detail,
		listing:       listingTpl,
		detail:        detailTpl,
	}, nil
}

// DefaultRoutes returns the built-in route table.
func DefaultRoutes() *Routes {
	routes, err := NewRoutes(DefaultListing, DefaultDetail)
	if err != nil {
		panic(err)
	}
	return routes
}

// Target returns where to go after a successful submission. ActionSave leads
// to the listing; every other action, including an empty or unknown one,
// leads to the detail view of id.
func (r *Routes) Target(action string, id int64) (string, error) {
	if strings.TrimSpace(action) == ActionSave {
		return r.render(r.listing, id)
	}
	return r.render(r.detail, id)
}

// Listing renders the listing target, used by cancel controls.
func (r *Routes) Listing() string {
	out, err := r.render(r.listing, 0)
	if err != nil {
		return r.listingSource
	}
	return out
}

// Sources returns the raw listing and detail templates.
func (r *Routes) Sources() (listing, detail string) {
	return r.listingSource, r.detailSource
}

func (r *Routes) render(tpl *pongo2.Template, id int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, err := tpl.Execute(pongo2.Context{"id": id})
	if err != nil {
		return "", fmt.Errorf("navigation: render target: %w", err)
	}
	return strings.TrimSpace(out), nil
}
