package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/caroya1/campus-market/internal/market"
)

const productColumns = `id, name, description, price, original_price, stock, category, image_url, created_at, updated_at`

func scanProduct(row pgx.Row) (*market.Product, error) {
	var p market.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.OriginalPrice,
		&p.Stock, &p.Category, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ProductByID(ctx context.Context, id int64) (*market.Product, error) {
	return scanProduct(s.q(ctx).QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
}

// ProductForUpdate locks the row; two checkouts touching the same product
// queue up here.
func (s *Store) ProductForUpdate(ctx context.Context, id int64) (*market.Product, error) {
	return scanProduct(s.q(ctx).QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1 FOR UPDATE`, id))
}

func (s *Store) CreateProduct(ctx context.Context, p *market.Product) error {
	return s.q(ctx).QueryRow(ctx, `
		INSERT INTO products(name, description, price, original_price, stock, category, image_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at`,
		p.Name, p.Description, p.Price, p.OriginalPrice, p.Stock, p.Category, p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	_, err := s.q(ctx).Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	return err
}

func (s *Store) SetStock(ctx context.Context, id int64, stock int) error {
	_, err := s.q(ctx).Exec(ctx,
		`UPDATE products SET stock=$2, updated_at=now() WHERE id=$1`, id, stock)
	return err
}

func (s *Store) ListProducts(ctx context.Context, f market.ProductFilter) ([]market.Product, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY id
		LIMIT $3 OFFSET $4`,
		f.Category, f.Keyword, f.Size, (f.Page-1)*f.Size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
