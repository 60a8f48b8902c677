package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-productform/pkg/form"
)

// DefaultDSN keeps the database next to the working directory.
const DefaultDSN = "file:productform.db?_pragma=foreign_keys(1)"

// ErrNotFound is returned when a product id has no row.
var ErrNotFound = errors.New("sqlite: product not found")

const schemaDDL = `
CREATE TABLE IF NOT EXISTS product (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	fields     TEXT    NOT NULL,
	created_at TEXT    NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS picture (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	product_id INTEGER NOT NULL REFERENCES product(id),
	url        TEXT    NOT NULL,
	position   INTEGER NOT NULL,
	web_shop   INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS picture_product_idx ON picture(product_id, position);
`

// Store persists products and their pictures in a local SQLite database.
type Store struct {
	db *sql.DB
}

var _ form.Creator = (*Store)(nil)

// Open connects to dsn and creates the tables when missing.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = DefaultDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateProduct stores the field map as a JSON document and returns the row id.
func (s *Store) CreateProduct(ctx context.Context, fields map[string]any) (form.ID, error) {
	encoded, err := sonic.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("sqlite: encode product: %w", err)
	}
	res, err := s.db.ExecContext(ctx, "INSERT INTO product (fields) VALUES (?)", string(encoded))
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: product id: %w", err)
	}
	return id, nil
}

// CreatePictures inserts every picture in one transaction. Either all rows
// are written or none are.
func (s *Store) CreatePictures(ctx context.Context, pictures []form.Picture) (ids []form.ID, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO picture (product_id, url, position, web_shop) VALUES (?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: prepare picture insert: %w", err)
	}
	defer stmt.Close()

	ids = make([]form.ID, 0, len(pictures))
	for _, picture := range pictures {
		webShop := 0
		if picture.WebShop {
			webShop = 1
		}
		res, execErr := stmt.ExecContext(ctx, picture.ProductID, picture.URL, picture.Order, webShop)
		if execErr != nil {
			return nil, fmt.Errorf("sqlite: insert picture %d: %w", picture.Order, execErr)
		}
		id, idErr := res.LastInsertId()
		if idErr != nil {
			return nil, fmt.Errorf("sqlite: picture id: %w", idErr)
		}
		ids = append(ids, id)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: commit pictures: %w", err)
	}
	return ids, nil
}

// Product loads the stored field map for id.
func (s *Store) Product(ctx context.Context, id form.ID) (map[string]any, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT fields FROM product WHERE id = ?", id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load product %d: %w", id, err)
	}
	fields := make(map[string]any)
	if err := sonic.UnmarshalString(raw, &fields); err != nil {
		return nil, fmt.Errorf("sqlite: decode product %d: %w", id, err)
	}
	return fields, nil
}

// Pictures lists the pictures attached to productID in display order.
func (s *Store) Pictures(ctx context.Context, productID form.ID) ([]form.Picture, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT url, position, product_id, web_shop FROM picture WHERE product_id = ? ORDER BY position, id",
		productID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list pictures: %w", err)
	}
	defer rows.Close()

	var pictures []form.Picture
	for rows.Next() {
		var (
			picture form.Picture
			webShop int
		)
		if err := rows.Scan(&picture.URL, &picture.Order, &picture.ProductID, &webShop); err != nil {
			return nil, fmt.Errorf("sqlite: scan picture: %w", err)
		}
		picture.WebShop = webShop != 0
		pictures = append(pictures, picture)
	}
	return pictures, rows.Err()
}
