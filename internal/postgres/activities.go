package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/caroya1/campus-market/internal/market"
)

const activityColumns = `id, title, content, author_id, views, image_url, reserved_count, max_capacity, status, created_at, updated_at`

func scanActivity(row pgx.Row) (*market.Activity, error) {
	var a market.Activity
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.AuthorID, &a.Views, &a.ImageURL,
		&a.ReservedCount, &a.MaxCapacity, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) ActivityByID(ctx context.Context, id int64) (*market.Activity, error) {
	return scanActivity(s.q(ctx).QueryRow(ctx,
		`SELECT `+activityColumns+` FROM learning_activities WHERE id=$1`, id))
}

// ActivityForUpdate locks the row so concurrent reservers serialize on the
// reserved_count check.
func (s *Store) ActivityForUpdate(ctx context.Context, id int64) (*market.Activity, error) {
	return scanActivity(s.q(ctx).QueryRow(ctx,
		`SELECT `+activityColumns+` FROM learning_activities WHERE id=$1 FOR UPDATE`, id))
}

func (s *Store) CreateActivity(ctx context.Context, a *market.Activity) error {
	return s.q(ctx).QueryRow(ctx, `
		INSERT INTO learning_activities(title, content, author_id, views, image_url, reserved_count, max_capacity, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`,
		a.Title, a.Content, a.AuthorID, a.Views, a.ImageURL, a.ReservedCount, a.MaxCapacity, a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (s *Store) SetReservedCount(ctx context.Context, id int64, n int) error {
	_, err := s.q(ctx).Exec(ctx,
		`UPDATE learning_activities SET reserved_count=$2, updated_at=now() WHERE id=$1`, id, n)
	return err
}

func (s *Store) IncrementActivityViews(ctx context.Context, id int64) error {
	_, err := s.q(ctx).Exec(ctx,
		`UPDATE learning_activities SET views = views + 1 WHERE id=$1`, id)
	return err
}

func (s *Store) ListActivities(ctx context.Context, keyword string, page, size int) ([]market.Activity, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT `+activityColumns+` FROM learning_activities
		WHERE ($1 = '' OR title ILIKE '%' || $1 || '%')
		ORDER BY id DESC
		LIMIT $2 OFFSET $3`, keyword, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *Store) HasReservation(ctx context.Context, userID, activityID int64) (bool, error) {
	var n int
	if err := s.q(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM reservations WHERE user_id=$1 AND activity_id=$2`,
		userID, activityID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) InsertReservation(ctx context.Context, r *market.Reservation) error {
	return s.q(ctx).QueryRow(ctx, `
		INSERT INTO reservations(user_id, activity_id)
		VALUES ($1,$2)
		RETURNING id, created_at`,
		r.UserID, r.ActivityID,
	).Scan(&r.ID, &r.CreatedAt)
}

func (s *Store) DeleteReservation(ctx context.Context, userID, activityID int64) (bool, error) {
	ct, err := s.q(ctx).Exec(ctx,
		`DELETE FROM reservations WHERE user_id=$1 AND activity_id=$2`, userID, activityID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (s *Store) ReservationsByUser(ctx context.Context, userID int64) ([]market.Reservation, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT r.id, r.user_id, r.activity_id, r.created_at, COALESCE(a.title, '')
		FROM reservations r
		LEFT JOIN learning_activities a ON a.id = r.activity_id
		WHERE r.user_id = $1
		ORDER BY r.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.Reservation
	for rows.Next() {
		var r market.Reservation
		if err := rows.Scan(&r.ID, &r.UserID, &r.ActivityID, &r.CreatedAt, &r.ActivityTitle); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) HasFavorite(ctx context.Context, userID, postID int64, postType string) (bool, error) {
	var n int
	if err := s.q(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id=$1 AND post_id=$2 AND post_type=$3`,
		userID, postID, postType).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) InsertFavorite(ctx context.Context, f *market.Favorite) error {
	return s.q(ctx).QueryRow(ctx, `
		INSERT INTO favorites(user_id, post_id, post_type)
		VALUES ($1,$2,$3)
		RETURNING id, created_at`,
		f.UserID, f.PostID, f.PostType,
	).Scan(&f.ID, &f.CreatedAt)
}

func (s *Store) DeleteFavorite(ctx context.Context, userID, postID int64, postType string) (bool, error) {
	ct, err := s.q(ctx).Exec(ctx,
		`DELETE FROM favorites WHERE user_id=$1 AND post_id=$2 AND post_type=$3`,
		userID, postID, postType)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
