package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/caroya1/campus-market/internal/market"
)

// CartLines left-joins products so removed products come back with zero
// joined fields instead of silently disappearing from the cart.
func (s *Store) CartLines(ctx context.Context, userID int64) ([]market.CartLine, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at, c.updated_at,
		       COALESCE(p.name, ''), COALESCE(p.price, 0), COALESCE(p.image_url, '')
		FROM cart_items c
		LEFT JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.CartLine
	for rows.Next() {
		var l market.CartLine
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt,
			&l.ProductName, &l.ProductPrice, &l.ProductImageURL); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) CartLine(ctx context.Context, userID, productID int64) (*market.CartLine, error) {
	var l market.CartLine
	err := s.q(ctx).QueryRow(ctx, `
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM cart_items WHERE user_id=$1 AND product_id=$2`,
		userID, productID,
	).Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) InsertCartLine(ctx context.Context, l *market.CartLine) error {
	return s.q(ctx).QueryRow(ctx, `
		INSERT INTO cart_items(user_id, product_id, quantity)
		VALUES ($1,$2,$3)
		RETURNING id, created_at, updated_at`,
		l.UserID, l.ProductID, l.Quantity,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (s *Store) UpdateCartQuantity(ctx context.Context, userID, productID int64, qty int) error {
	_, err := s.q(ctx).Exec(ctx, `
		UPDATE cart_items SET quantity=$3, updated_at=now()
		WHERE user_id=$1 AND product_id=$2`,
		userID, productID, qty)
	return err
}

func (s *Store) DeleteCartLine(ctx context.Context, userID, productID int64) (bool, error) {
	ct, err := s.q(ctx).Exec(ctx,
		`DELETE FROM cart_items WHERE user_id=$1 AND product_id=$2`, userID, productID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (s *Store) ClearCart(ctx context.Context, userID int64) error {
	_, err := s.q(ctx).Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	return err
}
