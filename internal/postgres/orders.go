package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/caroya1/campus-market/internal/market"
)

const orderColumns = `id, order_number, user_id, total_amount, status, payment_method, shipping_address, remark, created_at, updated_at`

func scanOrder(row pgx.Row) (*market.Order, error) {
	var o market.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.TotalAmount, &o.Status,
		&o.PaymentMethod, &o.ShippingAddress, &o.Remark, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) CreateOrder(ctx context.Context, o *market.Order, lines []market.OrderLine) error {
	err := s.q(ctx).QueryRow(ctx, `
		INSERT INTO orders(order_number, user_id, total_amount, status, payment_method, shipping_address, remark)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at`,
		o.OrderNumber, o.UserID, o.TotalAmount, o.Status, o.PaymentMethod, o.ShippingAddress, o.Remark,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return err
	}
	for i := range lines {
		lines[i].OrderID = o.ID
		err := s.q(ctx).QueryRow(ctx, `
			INSERT INTO order_items(order_id, product_id, product_name, product_price, product_image_url, quantity, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING id, created_at`,
			lines[i].OrderID, lines[i].ProductID, lines[i].ProductName, lines[i].ProductPrice,
			lines[i].ProductImageURL, lines[i].Quantity, lines[i].Subtotal,
		).Scan(&lines[i].ID, &lines[i].CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) OrderByID(ctx context.Context, id int64) (*market.Order, error) {
	return scanOrder(s.q(ctx).QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
}

func (s *Store) OrderForUpdate(ctx context.Context, id int64) (*market.Order, error) {
	return scanOrder(s.q(ctx).QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id))
}

func (s *Store) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	var n int
	if err := s.q(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE order_number=$1`, number).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) SetOrderStatus(ctx context.Context, id int64, st market.OrderStatus) error {
	_, err := s.q(ctx).Exec(ctx,
		`UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, id, st)
	return err
}

func (s *Store) OrdersByUser(ctx context.Context, userID int64, page, size int) ([]market.Order, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id=$1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`, userID, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (s *Store) OrderLinesByOrder(ctx context.Context, orderID int64) ([]market.OrderLine, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT id, order_id, product_id, product_name, product_price, product_image_url, quantity, subtotal, created_at
		FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.OrderLine
	for rows.Next() {
		var l market.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.ProductPrice,
			&l.ProductImageURL, &l.Quantity, &l.Subtotal, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
