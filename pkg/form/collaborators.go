package form

import "context"

// ID identifies a persisted record. Identifiers are generated by the
// persistence collaborator and never by the session.
type ID = int64

// Picture is the child record linked to a freshly created product.
type Picture struct {
	URL       string `json:"url"`
	Order     int    `json:"order"`
	ProductID ID     `json:"product_id"`
	WebShop   bool   `json:"web_shop"`
}

// Creator persists the parent record and its children. Both calls may block;
// the session imposes no timeout of its own.
type Creator interface {
	CreateProduct(ctx context.Context, fields map[string]any) (ID, error)
	CreatePictures(ctx context.Context, pictures []Picture) ([]ID, error)
}

// Validator maps a values snapshot to field errors. Fields without an error
// are absent from the result. Implementations must be pure.
type Validator interface {
	Validate(values map[string]any) map[string]string
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(values map[string]any) map[string]string

// Validate implements Validator.
func (fn ValidatorFunc) Validate(values map[string]any) map[string]string {
	return fn(values)
}

// Navigator receives the post-success navigation target. It is fire and
// forget.
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(target string)

// Navigate implements Navigator.
func (fn NavigatorFunc) Navigate(target string) {
	fn(target)
}
