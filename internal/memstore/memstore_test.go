package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caroya1/campus-market/internal/market"
)

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := &market.User{Username: "alice", Balance: decimal.NewFromInt(100)}
	require.NoError(t, s.CreateUser(ctx, u))
	p := &market.Product{Name: "lamp", Stock: 5}
	require.NoError(t, s.CreateProduct(ctx, p))

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(ctx context.Context) error {
		if err := s.SetBalance(ctx, u.ID, decimal.NewFromInt(40)); err != nil {
			return err
		}
		if err := s.SetStock(ctx, p.ID, 1); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// every write inside the failed unit is gone
	gotU, _ := s.UserByID(ctx, u.ID)
	assert.True(t, gotU.Balance.Equal(decimal.NewFromInt(100)))
	gotP, _ := s.ProductByID(ctx, p.ID)
	assert.Equal(t, 5, gotP.Stock)
}

func TestWithTxCommits(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := &market.User{Username: "alice", Balance: decimal.NewFromInt(100)}
	require.NoError(t, s.CreateUser(ctx, u))

	err := s.WithTx(ctx, func(ctx context.Context) error {
		return s.SetBalance(ctx, u.ID, decimal.NewFromInt(40))
	})
	require.NoError(t, err)

	got, _ := s.UserByID(ctx, u.ID)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(40)))
}

func TestWithTxNestedJoinsEnclosingUnit(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := &market.User{Username: "alice", Balance: decimal.NewFromInt(100)}
	require.NoError(t, s.CreateUser(ctx, u))

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(ctx context.Context) error {
		if err := s.WithTx(ctx, func(ctx context.Context) error {
			return s.SetBalance(ctx, u.ID, decimal.NewFromInt(1))
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// the inner write belonged to the outer unit and rolled back with it
	got, _ := s.UserByID(ctx, u.ID)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(100)))
}

func TestCreateOrderAssignsIDsAndLines(t *testing.T) {
	ctx := context.Background()
	s := New()
	o := &market.Order{OrderNumber: "ORD20250101120000001", UserID: 1, Status: market.OrderPaid}
	lines := []market.OrderLine{
		{ProductID: 1, ProductName: "lamp", Quantity: 2},
		{ProductID: 2, ProductName: "mug", Quantity: 1},
	}
	require.NoError(t, s.CreateOrder(ctx, o, lines))
	require.NotZero(t, o.ID)

	got, err := s.OrderLinesByOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, l := range got {
		assert.Equal(t, o.ID, l.OrderID)
		assert.NotZero(t, l.ID)
	}

	exists, err := s.OrderNumberExists(ctx, o.OrderNumber)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPageSlice(t *testing.T) {
	in := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, pageSlice(in, 1, 2))
	assert.Equal(t, []int{3, 4}, pageSlice(in, 2, 2))
	assert.Equal(t, []int{5}, pageSlice(in, 3, 2))
	assert.Nil(t, pageSlice(in, 4, 2))
}
