package market

import "context"

// ActivityManager enforces the capacity ceiling on learning activities.
// reservedCount only moves through Reserve (+1) and CancelReservation (-1),
// both under a row lock, so it stays inside [0, maxCapacity] no matter how
// many reservers race.
type ActivityManager struct {
	store ActivityStore
}

func NewActivityManager(store ActivityStore) *ActivityManager {
	return &ActivityManager{store: store}
}

// Reserve claims one unit of capacity for the user.
func (m *ActivityManager) Reserve(ctx context.Context, userID, activityID int64) (*Activity, error) {
	var out *Activity
	err := m.store.WithTx(ctx, func(ctx context.Context) error {
		a, err := m.store.ActivityForUpdate(ctx, activityID)
		if err != nil {
			return err
		}
		if a == nil {
			return NotFound(CodeActivityNotFound, "activity not found")
		}
		if a.Status != ActivityActive {
			return BusinessRule(CodeActivityClosed, "activity is closed")
		}
		if a.ReservedCount >= a.MaxCapacity {
			return BusinessRule(CodeActivityFull, "activity is full")
		}
		reserved, err := m.store.HasReservation(ctx, userID, activityID)
		if err != nil {
			return err
		}
		if reserved {
			return BusinessRule(CodeAlreadyReserved, "you have already reserved this activity")
		}
		if err := m.store.InsertReservation(ctx, &Reservation{UserID: userID, ActivityID: activityID}); err != nil {
			return err
		}
		if err := m.store.SetReservedCount(ctx, activityID, a.ReservedCount+1); err != nil {
			return err
		}
		a.ReservedCount++
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CancelReservation releases the user's claim. The decrement is floored at 0
// as a clamp against drift.
func (m *ActivityManager) CancelReservation(ctx context.Context, userID, activityID int64) (*Activity, error) {
	var out *Activity
	err := m.store.WithTx(ctx, func(ctx context.Context) error {
		deleted, err := m.store.DeleteReservation(ctx, userID, activityID)
		if err != nil {
			return err
		}
		if !deleted {
			return NotFound(CodeReservationNotFound, "you have not reserved this activity")
		}
		a, err := m.store.ActivityForUpdate(ctx, activityID)
		if err != nil {
			return err
		}
		if a != nil {
			n := a.ReservedCount - 1
			if n < 0 {
				n = 0
			}
			if err := m.store.SetReservedCount(ctx, activityID, n); err != nil {
				return err
			}
			a.ReservedCount = n
			out = a
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List pages through activities, optionally filtered by a title keyword.
func (m *ActivityManager) List(ctx context.Context, keyword string, page, size int) ([]Activity, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}
	return m.store.ListActivities(ctx, keyword, page, size)
}

// Detail bumps the view counter and returns the activity.
func (m *ActivityManager) Detail(ctx context.Context, activityID int64) (*Activity, error) {
	if err := m.store.IncrementActivityViews(ctx, activityID); err != nil {
		return nil, err
	}
	a, err := m.store.ActivityByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, NotFound(CodeActivityNotFound, "activity not found")
	}
	return a, nil
}

func (m *ActivityManager) UserReservations(ctx context.Context, userID int64) ([]Reservation, error) {
	return m.store.ReservationsByUser(ctx, userID)
}

func (m *ActivityManager) AddFavorite(ctx context.Context, userID, activityID int64) error {
	return m.store.WithTx(ctx, func(ctx context.Context) error {
		a, err := m.store.ActivityByID(ctx, activityID)
		if err != nil {
			return err
		}
		if a == nil {
			return NotFound(CodeActivityNotFound, "activity not found")
		}
		has, err := m.store.HasFavorite(ctx, userID, activityID, FavoriteTypeActivity)
		if err != nil {
			return err
		}
		if has {
			return BusinessRule(CodeAlreadyFavorited, "already favorited this activity")
		}
		return m.store.InsertFavorite(ctx, &Favorite{UserID: userID, PostID: activityID, PostType: FavoriteTypeActivity})
	})
}

func (m *ActivityManager) RemoveFavorite(ctx context.Context, userID, activityID int64) error {
	deleted, err := m.store.DeleteFavorite(ctx, userID, activityID, FavoriteTypeActivity)
	if err != nil {
		return err
	}
	if !deleted {
		return NotFound(CodeFavoriteNotFound, "favorite not found")
	}
	return nil
}

func (m *ActivityManager) IsFavorite(ctx context.Context, userID, activityID int64) (bool, error) {
	return m.store.HasFavorite(ctx, userID, activityID, FavoriteTypeActivity)
}
