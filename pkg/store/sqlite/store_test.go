package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-productform/pkg/form"
	"github.com/goliatone/go-productform/pkg/navigation"
	"github.com/goliatone/go-productform/pkg/schema"
	"github.com/goliatone/go-productform/pkg/store/sqlite"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "products.db")
	store, err := sqlite.Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_CreateProductAndPictures(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	id, err := store.CreateProduct(ctx, map[string]any{"name": "Muumimuki", "price": 9.9})
	require.NoError(t, err)
	assert.Positive(t, id)

	fields, err := store.Product(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Muumimuki", "price": 9.9}, fields)

	ids, err := store.CreatePictures(ctx, []form.Picture{
		{URL: "a.jpg", Order: 0, ProductID: id, WebShop: true},
		{URL: "b.jpg", Order: 1, ProductID: id, WebShop: false},
	})
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	pictures, err := store.Pictures(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []form.Picture{
		{URL: "a.jpg", Order: 0, ProductID: id, WebShop: true},
		{URL: "b.jpg", Order: 1, ProductID: id, WebShop: false},
	}, pictures)
}

func TestStore_PictureBatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	id, err := store.CreateProduct(ctx, map[string]any{"name": "Kuppi"})
	require.NoError(t, err)

	_, err = store.CreatePictures(ctx, []form.Picture{
		{URL: "a.jpg", Order: 0, ProductID: id, WebShop: true},
		{URL: "orphan.jpg", Order: 1, ProductID: id + 1000, WebShop: true},
	})
	require.Error(t, err)

	pictures, err := store.Pictures(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, pictures)
}

func TestStore_ProductNotFound(t *testing.T) {
	_, err := openStore(t).Product(context.Background(), 404)
	assert.True(t, errors.Is(err, sqlite.ErrNotFound))
}

func TestStore_BacksFormSession(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	session, err := form.NewSession(schema.MustProduct(), store)
	require.NoError(t, err)
	require.NoError(t, session.SetValue("name", "Aku Ankka"))
	require.NoError(t, session.SetValue("price", "12,50"))
	require.NoError(t, session.SetValue("vat_class", "24"))
	require.NoError(t, session.SetItemValue("photos", 0, "url", "a.jpg"))

	result, err := session.Submit(ctx, navigation.ActionSave)
	require.NoError(t, err)
	assert.Equal(t, "/", result.Target)

	fields, err := store.Product(ctx, result.ProductID)
	require.NoError(t, err)
	assert.Equal(t, "Aku Ankka", fields["name"])
	assert.NotContains(t, fields, "photos")

	pictures, err := store.Pictures(ctx, result.ProductID)
	require.NoError(t, err)
	require.Len(t, pictures, 1)
	assert.Equal(t, "a.jpg", pictures[0].URL)
}
