package graphql

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-productform/pkg/form"
)

const insertProduct = `mutation insertProduct($product: product_insert_input!) {
  insert_product_one(object: $product) {
    id
  }
}`

const insertPictures = `mutation insertPictures($pictures: [picture_insert_input!]!) {
  insert_picture(objects: $pictures) {
    returning {
      id
    }
  }
}`

// WithColumns renames form field names to product column names before the
// insert. Fields without a mapping keep their name.
func WithColumns(columns map[string]string) Option {
	return func(c *Client) {
		for field, column := range columns {
			field = strings.TrimSpace(field)
			column = strings.TrimSpace(column)
			if field == "" || column == "" {
				continue
			}
			c.columns[field] = column
		}
	}
}

var _ form.Creator = (*Client)(nil)

// CreateProduct inserts one product and returns its generated id.
func (c *Client) CreateProduct(ctx context.Context, fields map[string]any) (form.ID, error) {
	product := make(map[string]any, len(fields))
	for name, value := range fields {
		if column, ok := c.columns[name]; ok {
			name = column
		}
		product[name] = value
	}

	var data struct {
		InsertProductOne *struct {
			ID form.ID `json:"id"`
		} `json:"insert_product_one"`
	}
	if err := c.Do(ctx, "insertProduct", insertProduct, map[string]any{"product": product}, &data); err != nil {
		return 0, err
	}
	if data.InsertProductOne == nil {
		return 0, fmt.Errorf("graphql: insertProduct returned no product")
	}
	return data.InsertProductOne.ID, nil
}

// CreatePictures inserts all pictures in one mutation and returns their ids
// in insertion order.
func (c *Client) CreatePictures(ctx context.Context, pictures []form.Picture) ([]form.ID, error) {
	var data struct {
		InsertPicture *struct {
			Returning []struct {
				ID form.ID `json:"id"`
			} `json:"returning"`
		} `json:"insert_picture"`
	}
	if err := c.Do(ctx, "insertPictures", insertPictures, map[string]any{"pictures": pictures}, &data); err != nil {
		return nil, err
	}
	if data.InsertPicture == nil {
		return nil, fmt.Errorf("graphql: insertPictures returned no pictures")
	}
	ids := make([]form.ID, 0, len(data.InsertPicture.Returning))
	for _, row := range data.InsertPicture.Returning {
		ids = append(ids, row.ID)
	}
	return ids, nil
}
