package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/caroya1/campus-market/internal/market"
)

const userColumns = `id, username, password_hash, nickname, email, phone, gender, balance, user_type, created_at, updated_at`

func scanUser(row pgx.Row) (*market.User, error) {
	var u market.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Nickname, &u.Email, &u.Phone,
		&u.Gender, &u.Balance, &u.UserType, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (*market.User, error) {
	return scanUser(s.q(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*market.User, error) {
	return scanUser(s.q(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username))
}

func (s *Store) UserForUpdate(ctx context.Context, id int64) (*market.User, error) {
	return scanUser(s.q(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1 FOR UPDATE`, id))
}

func (s *Store) CreateUser(ctx context.Context, u *market.User) error {
	return s.q(ctx).QueryRow(ctx, `
		INSERT INTO users(username, password_hash, nickname, email, phone, gender, balance, user_type)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`,
		u.Username, u.PasswordHash, u.Nickname, u.Email, u.Phone, u.Gender, u.Balance, u.UserType,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (s *Store) UpdateUser(ctx context.Context, u *market.User) error {
	_, err := s.q(ctx).Exec(ctx, `
		UPDATE users SET nickname=$2, email=$3, phone=$4, gender=$5, updated_at=now()
		WHERE id=$1`,
		u.ID, u.Nickname, u.Email, u.Phone, u.Gender)
	return err
}

func (s *Store) SetBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	_, err := s.q(ctx).Exec(ctx,
		`UPDATE users SET balance=$2, updated_at=now() WHERE id=$1`, id, balance)
	return err
}
