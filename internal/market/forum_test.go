package market_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caroya1/campus-market/internal/market"
	"github.com/caroya1/campus-market/internal/memstore"
)

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := market.NewForumService(store)

	p, err := svc.CreatePost(ctx, 1, "selling a bike", "barely used, meet at gate 3")
	require.NoError(t, err)
	assert.NotZero(t, p.ID)

	_, err = svc.CreatePost(ctx, 1, "", "content")
	assert.Equal(t, market.CodeInvalidInput, market.CodeOf(err))
	_, err = svc.CreatePost(ctx, 1, "title", "")
	assert.Equal(t, market.CodeInvalidInput, market.CodeOf(err))
}

func TestPostDetailBumpsViews(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := market.NewForumService(store)

	p, err := svc.CreatePost(ctx, 1, "lost card", "blue wallet near the library")
	require.NoError(t, err)

	got, err := svc.Detail(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)

	_, err = svc.Detail(ctx, 999)
	assert.Equal(t, market.CodePostNotFound, market.CodeOf(err))
}

func TestPostAuthorNameJoined(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := market.NewForumService(store)
	u := &market.User{Username: "alice", Nickname: "Alice"}
	require.NoError(t, store.CreateUser(ctx, u))

	_, err := svc.CreatePost(ctx, u.ID, "study group", "thursdays 7pm")
	require.NoError(t, err)

	posts, err := svc.List(ctx, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Alice", posts[0].AuthorName)
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := market.NewCatalogService(store)

	require.NoError(t, svc.Create(ctx, &market.Product{Name: "desk lamp", Price: dec("12.00"), Stock: 3, Category: "dorm"}))
	require.NoError(t, svc.Create(ctx, &market.Product{Name: "textbook", Price: dec("30.00"), Stock: 1, Category: "books"}))

	err := svc.Create(ctx, &market.Product{Name: "", Price: dec("1.00")})
	assert.Equal(t, market.CodeInvalidInput, market.CodeOf(err))

	all, err := svc.List(ctx, market.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	books, err := svc.List(ctx, market.ProductFilter{Category: "books"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "textbook", books[0].Name)

	byName, err := svc.List(ctx, market.ProductFilter{Keyword: "lamp"})
	require.NoError(t, err)
	assert.Len(t, byName, 1)

	_, err = svc.Get(ctx, 999)
	assert.Equal(t, market.CodeProductNotFound, market.CodeOf(err))
}
