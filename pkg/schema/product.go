package schema

import (
	_ "embed"
	"sync"
)

//go:embed product.yaml
var productDocument []byte

var loadProduct = sync.OnceValues(func() (Schema, error) {
	return Parse(productDocument, "product.yaml")
})

// Product returns the built-in product entry schema. It is parsed once per
// process and shared read-only by every session.
func Product() (Schema, error) {
	return loadProduct()
}

// MustProduct is like Product but panics when the embedded document is
// invalid, which can only happen through a programming error.
func MustProduct() Schema {
	s, err := Product()
	if err != nil {
		panic(err)
	}
	return s
}
