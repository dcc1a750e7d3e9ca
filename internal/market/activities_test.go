package market_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caroya1/campus-market/internal/market"
	"github.com/caroya1/campus-market/internal/memstore"
)

func seedActivity(t *testing.T, store *memstore.Store, capacity int, status market.ActivityStatus) *market.Activity {
	t.Helper()
	a := &market.Activity{Title: "go workshop", MaxCapacity: capacity, Status: status}
	require.NoError(t, store.CreateActivity(context.Background(), a))
	return a
}

func TestReserve(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	mgr := market.NewActivityManager(store)
	act := seedActivity(t, store, 3, market.ActivityActive)

	got, err := mgr.Reserve(ctx, 1, act.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReservedCount)

	has, err := store.HasReservation(ctx, 1, act.ID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestReserveNotFound(t *testing.T) {
	store := memstore.New()
	mgr := market.NewActivityManager(store)

	_, err := mgr.Reserve(context.Background(), 1, 999)
	assert.Equal(t, market.CodeActivityNotFound, market.CodeOf(err))
}

func TestReserveClosed(t *testing.T) {
	store := memstore.New()
	mgr := market.NewActivityManager(store)
	act := seedActivity(t, store, 3, market.ActivityClosed)

	_, err := mgr.Reserve(context.Background(), 1, act.ID)
	assert.Equal(t, market.CodeActivityClosed, market.CodeOf(err))
}

func TestReserveFull(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	mgr := market.NewActivityManager(store)
	act := seedActivity(t, store, 1, market.ActivityActive)

	_, err := mgr.Reserve(ctx, 1, act.ID)
	require.NoError(t, err)

	_, err = mgr.Reserve(ctx, 2, act.ID)
	assert.Equal(t, market.CodeActivityFull, market.CodeOf(err))
}

func TestReserveTwice(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	mgr := market.NewActivityManager(store)
	act := seedActivity(t, store, 5, market.ActivityActive)

	_, err := mgr.Reserve(ctx, 1, act.ID)
	require.NoError(t, err)

	_, err = mgr.Reserve(ctx, 1, act.ID)
	assert.Equal(t, market.CodeAlreadyReserved, market.CodeOf(err))

	// count unchanged by the rejected attempt
	a, _ := store.ActivityByID(ctx, act.ID)
	assert.Equal(t, 1, a.ReservedCount)
}

func TestConcurrentReserveNeverExceedsCapacity(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	mgr := market.NewActivityManager(store)
	act := seedActivity(t, store, 3, market.ActivityActive)

	const reservers = 8
	var wg sync.WaitGroup
	results := make([]error, reservers)
	for i := 0; i < reservers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = mgr.Reserve(ctx, int64(i+1), act.ID)
		}(i)
	}
	wg.Wait()

	var ok, full int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case market.CodeOf(err) == market.CodeActivityFull:
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 3, ok)
	assert.Equal(t, reservers-3, full)

	a, _ := store.ActivityByID(ctx, act.ID)
	assert.Equal(t, 3, a.ReservedCount)
}

func TestCancelReservation(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	mgr := market.NewActivityManager(store)
	act := seedActivity(t, store, 3, market.ActivityActive)

	_, err := mgr.Reserve(ctx, 1, act.ID)
	require.NoError(t, err)

	got, err := mgr.CancelReservation(ctx, 1, act.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ReservedCount)

	// freed seat can be taken again
	_, err = mgr.Reserve(ctx, 2, act.ID)
	require.NoError(t, err)
}

func TestCancelReservationNotReserved(t *testing.T) {
	store := memstore.New()
	mgr := market.NewActivityManager(store)
	act := seedActivity(t, store, 3, market.ActivityActive)

	_, err := mgr.CancelReservation(context.Background(), 1, act.ID)
	assert.Equal(t, market.CodeReservationNotFound, market.CodeOf(err))
}

func TestDetailBumpsViews(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	mgr := market.NewActivityManager(store)
	act := seedActivity(t, store, 3, market.ActivityActive)

	for i := 0; i < 3; i++ {
		a, err := mgr.Detail(ctx, act.ID)
		require.NoError(t, err)
		assert.Equal(t, i+1, a.Views)
	}
}

func TestUserReservationsCarryTitle(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	mgr := market.NewActivityManager(store)
	act := seedActivity(t, store, 3, market.ActivityActive)

	_, err := mgr.Reserve(ctx, 7, act.ID)
	require.NoError(t, err)

	rs, err := mgr.UserReservations(ctx, 7)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, "go workshop", rs[0].ActivityTitle)
}

func TestActivityFavorites(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	mgr := market.NewActivityManager(store)
	act := seedActivity(t, store, 3, market.ActivityActive)

	require.NoError(t, mgr.AddFavorite(ctx, 1, act.ID))

	err := mgr.AddFavorite(ctx, 1, act.ID)
	assert.Equal(t, market.CodeAlreadyFavorited, market.CodeOf(err))

	has, err := mgr.IsFavorite(ctx, 1, act.ID)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, mgr.RemoveFavorite(ctx, 1, act.ID))

	err = mgr.RemoveFavorite(ctx, 1, act.ID)
	assert.Equal(t, market.CodeFavoriteNotFound, market.CodeOf(err))
}

func TestListActivitiesKeyword(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	mgr := market.NewActivityManager(store)
	for i := 0; i < 3; i++ {
		a := &market.Activity{Title: fmt.Sprintf("workshop %d", i), MaxCapacity: 10, Status: market.ActivityActive}
		require.NoError(t, store.CreateActivity(ctx, a))
	}
	a := &market.Activity{Title: "hackathon", MaxCapacity: 10, Status: market.ActivityActive}
	require.NoError(t, store.CreateActivity(ctx, a))

	got, err := mgr.List(ctx, "workshop", 1, 10)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
