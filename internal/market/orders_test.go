package market_test

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caroya1/campus-market/internal/market"
	"github.com/caroya1/campus-market/internal/memstore"
)

var orderNumberRe = regexp.MustCompile(`^ORD\d{17}$`)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fixture struct {
	store  *memstore.Store
	engine *market.OrderEngine
	ledger *market.Ledger
	cart   *market.CartService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	ledger := market.NewLedger(store)
	return &fixture{
		store:  store,
		engine: market.NewOrderEngine(store, ledger),
		ledger: ledger,
		cart:   market.NewCartService(store),
	}
}

func (f *fixture) seedUser(t *testing.T, balance string) *market.User {
	t.Helper()
	u := &market.User{Username: "alice", Balance: dec(balance)}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return u
}

func (f *fixture) seedProduct(t *testing.T, name, price string, stock int) *market.Product {
	t.Helper()
	p := &market.Product{Name: name, Price: dec(price), Stock: stock}
	require.NoError(t, f.store.CreateProduct(context.Background(), p))
	return p
}

func (f *fixture) addToCart(t *testing.T, userID, productID int64, qty int) {
	t.Helper()
	require.NoError(t, f.cart.Add(context.Background(), userID, productID, qty))
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t, "100.00")
	prod := f.seedProduct(t, "used textbook", "20.00", 10)
	f.addToCart(t, user.ID, prod.ID, 2)

	order, err := f.engine.Checkout(ctx, user.ID, "dorm 12-304", "leave at door")
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Regexp(t, orderNumberRe, order.OrderNumber)
	assert.Equal(t, market.OrderPaid, order.Status)
	assert.True(t, order.TotalAmount.Equal(dec("40.00")), "total = %s", order.TotalAmount)
	assert.Equal(t, "balance", order.PaymentMethod)
	assert.Equal(t, "dorm 12-304", order.ShippingAddress)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, "used textbook", order.Lines[0].ProductName)
	assert.True(t, order.Lines[0].Subtotal.Equal(dec("40.00")))

	// balance debited
	u, err := f.store.UserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, u.Balance.Equal(dec("60.00")), "balance = %s", u.Balance)

	// stock decremented
	p, err := f.store.ProductByID(ctx, prod.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, p.Stock)

	// cart cleared
	lines, err := f.store.CartLines(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	// debit recorded on the ledger
	events, err := f.ledger.History(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Amount.Equal(dec("-40.00")))
	assert.Equal(t, "balance", events[0].Method)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "100.00")

	_, err := f.engine.Checkout(context.Background(), user.ID, "dorm", "")
	assert.Equal(t, market.CodeCartEmpty, market.CodeOf(err))
}

func TestCheckoutInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t, "10.00")
	prod := f.seedProduct(t, "lamp", "20.00", 5)
	f.addToCart(t, user.ID, prod.ID, 1)

	_, err := f.engine.Checkout(ctx, user.ID, "dorm", "")
	assert.Equal(t, market.CodeInsufficientBalance, market.CodeOf(err))

	// nothing moved
	u, _ := f.store.UserByID(ctx, user.ID)
	assert.True(t, u.Balance.Equal(dec("10.00")))
	p, _ := f.store.ProductByID(ctx, prod.ID)
	assert.Equal(t, 5, p.Stock)
	lines, _ := f.store.CartLines(ctx, user.ID)
	assert.Len(t, lines, 1)
	orders, _ := f.engine.ListOrders(ctx, user.ID, 1, 10)
	assert.Empty(t, orders)
}

func TestCheckoutInsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t, "100.00")
	prod := f.seedProduct(t, "bike", "20.00", 3)
	f.addToCart(t, user.ID, prod.ID, 2)

	// stock shrinks after the line was added
	require.NoError(t, f.store.SetStock(ctx, prod.ID, 1))

	_, err := f.engine.Checkout(ctx, user.ID, "dorm", "")
	assert.Equal(t, market.CodeInsufficientStock, market.CodeOf(err))

	u, _ := f.store.UserByID(ctx, user.ID)
	assert.True(t, u.Balance.Equal(dec("100.00")))
	events, _ := f.ledger.History(ctx, user.ID)
	assert.Empty(t, events)
}

func TestCheckoutProductRemoved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t, "100.00")
	prod := f.seedProduct(t, "desk", "20.00", 3)
	f.addToCart(t, user.ID, prod.ID, 1)
	require.NoError(t, f.store.DeleteProduct(ctx, prod.ID))

	_, err := f.engine.Checkout(ctx, user.ID, "dorm", "")
	assert.Equal(t, market.CodeProductNotFound, market.CodeOf(err))
}

func TestCancelOrderRestoresBalanceAndStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t, "100.00")
	prod := f.seedProduct(t, "kettle", "15.00", 4)
	f.addToCart(t, user.ID, prod.ID, 2)

	order, err := f.engine.Checkout(ctx, user.ID, "dorm", "")
	require.NoError(t, err)

	cancelled, err := f.engine.CancelOrder(ctx, order.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, market.OrderCancelled, cancelled.Status)

	u, _ := f.store.UserByID(ctx, user.ID)
	assert.True(t, u.Balance.Equal(dec("100.00")), "balance = %s", u.Balance)
	p, _ := f.store.ProductByID(ctx, prod.ID)
	assert.Equal(t, 4, p.Stock)

	// debit then refund on the trail
	events, _ := f.ledger.History(ctx, user.ID)
	require.Len(t, events, 2)
	assert.Equal(t, "refund", events[0].Method)
	assert.True(t, events[0].Amount.Equal(dec("30.00")))
}

func TestCancelOrderWrongUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t, "100.00")
	other := &market.User{Username: "bob", Balance: dec("50.00")}
	require.NoError(t, f.store.CreateUser(ctx, other))
	prod := f.seedProduct(t, "chair", "10.00", 5)
	f.addToCart(t, user.ID, prod.ID, 1)

	order, err := f.engine.Checkout(ctx, user.ID, "dorm", "")
	require.NoError(t, err)

	_, err = f.engine.CancelOrder(ctx, order.ID, other.ID)
	assert.Equal(t, market.CodeNotAuthorized, market.CodeOf(err))
	assert.True(t, market.IsKind(err, market.KindNotAuthorized))

	// untouched
	o, _ := f.store.OrderByID(ctx, order.ID)
	assert.Equal(t, market.OrderPaid, o.Status)
}

func TestCancelOrderTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t, "100.00")
	prod := f.seedProduct(t, "mug", "5.00", 5)
	f.addToCart(t, user.ID, prod.ID, 1)

	order, err := f.engine.Checkout(ctx, user.ID, "dorm", "")
	require.NoError(t, err)

	_, err = f.engine.CancelOrder(ctx, order.ID, user.ID)
	require.NoError(t, err)

	_, err = f.engine.CancelOrder(ctx, order.ID, user.ID)
	assert.Equal(t, market.CodeInvalidOrderState, market.CodeOf(err))

	// no second refund
	u, _ := f.store.UserByID(ctx, user.ID)
	assert.True(t, u.Balance.Equal(dec("100.00")))
}

func TestCancelOrderProductRemovedMeanwhile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t, "100.00")
	prod := f.seedProduct(t, "poster", "8.00", 2)
	f.addToCart(t, user.ID, prod.ID, 1)

	order, err := f.engine.Checkout(ctx, user.ID, "dorm", "")
	require.NoError(t, err)
	require.NoError(t, f.store.DeleteProduct(ctx, prod.ID))

	cancelled, err := f.engine.CancelOrder(ctx, order.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, market.OrderCancelled, cancelled.Status)

	// refund still lands even though the stock restore was skipped
	u, _ := f.store.UserByID(ctx, user.ID)
	assert.True(t, u.Balance.Equal(dec("100.00")))
}

func TestOrderDetailScopedToOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t, "100.00")
	other := &market.User{Username: "bob"}
	require.NoError(t, f.store.CreateUser(ctx, other))
	prod := f.seedProduct(t, "fan", "25.00", 2)
	f.addToCart(t, user.ID, prod.ID, 1)

	order, err := f.engine.Checkout(ctx, user.ID, "dorm", "")
	require.NoError(t, err)

	got, err := f.engine.OrderDetail(ctx, order.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)

	_, err = f.engine.OrderDetail(ctx, order.ID, other.ID)
	assert.Equal(t, market.CodeNotAuthorized, market.CodeOf(err))
}

func TestConcurrentCheckoutLimitedStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	prod := f.seedProduct(t, "calculator", "10.00", 3)

	const buyers = 4
	users := make([]*market.User, buyers)
	for i := range users {
		u := &market.User{Username: "buyer" + string(rune('a'+i)), Balance: dec("100.00")}
		require.NoError(t, f.store.CreateUser(ctx, u))
		users[i] = u
		f.addToCart(t, u.ID, prod.ID, 2)
	}

	var wg sync.WaitGroup
	results := make([]error, buyers)
	for i, u := range users {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			_, results[i] = f.engine.Checkout(ctx, userID, "dorm", "")
		}(i, u.ID)
	}
	wg.Wait()

	var ok, outOfStock int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case market.CodeOf(err) == market.CodeInsufficientStock:
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// stock 3, each buyer wants 2: exactly one checkout can win
	assert.Equal(t, 1, ok)
	assert.Equal(t, buyers-1, outOfStock)

	p, _ := f.store.ProductByID(ctx, prod.ID)
	assert.Equal(t, 1, p.Stock)
}
