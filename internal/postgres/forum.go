package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/caroya1/campus-market/internal/market"
)

func (s *Store) InsertBalanceEvent(ctx context.Context, ev *market.BalanceEvent) error {
	return s.q(ctx).QueryRow(ctx, `
		INSERT INTO balance_events(user_id, amount, method, status, transaction_id, remark)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`,
		ev.UserID, ev.Amount, ev.Method, ev.Status, ev.TransactionID, ev.Remark,
	).Scan(&ev.ID, &ev.CreatedAt)
}

func (s *Store) BalanceEventsByUser(ctx context.Context, userID int64) ([]market.BalanceEvent, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT id, user_id, amount, method, status, transaction_id, remark, created_at
		FROM balance_events WHERE user_id=$1 ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.BalanceEvent
	for rows.Next() {
		var ev market.BalanceEvent
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.Amount, &ev.Method, &ev.Status,
			&ev.TransactionID, &ev.Remark, &ev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

const postColumns = `p.id, p.title, p.content, p.author_id, p.views, p.created_at, p.updated_at, COALESCE(u.nickname, '')`

func scanPost(row pgx.Row) (*market.Post, error) {
	var p market.Post
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.Views,
		&p.CreatedAt, &p.UpdatedAt, &p.AuthorName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) PostByID(ctx context.Context, id int64) (*market.Post, error) {
	return scanPost(s.q(ctx).QueryRow(ctx, `
		SELECT `+postColumns+` FROM forum_posts p
		LEFT JOIN users u ON u.id = p.author_id
		WHERE p.id=$1`, id))
}

func (s *Store) CreatePost(ctx context.Context, p *market.Post) error {
	return s.q(ctx).QueryRow(ctx, `
		INSERT INTO forum_posts(title, content, author_id)
		VALUES ($1,$2,$3)
		RETURNING id, created_at, updated_at`,
		p.Title, p.Content, p.AuthorID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (s *Store) IncrementPostViews(ctx context.Context, id int64) error {
	_, err := s.q(ctx).Exec(ctx, `UPDATE forum_posts SET views = views + 1 WHERE id=$1`, id)
	return err
}

func (s *Store) ListPosts(ctx context.Context, keyword string, page, size int) ([]market.Post, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT `+postColumns+` FROM forum_posts p
		LEFT JOIN users u ON u.id = p.author_id
		WHERE ($1 = '' OR p.title ILIKE '%' || $1 || '%')
		ORDER BY p.id DESC
		LIMIT $2 OFFSET $3`, keyword, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Store) PostsByUser(ctx context.Context, userID int64) ([]market.Post, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT `+postColumns+` FROM forum_posts p
		LEFT JOIN users u ON u.id = p.author_id
		WHERE p.author_id=$1
		ORDER BY p.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
