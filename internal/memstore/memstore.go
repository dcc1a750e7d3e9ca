// Package memstore is an in-memory market.Store. It backs the unit tests and
// the STORE=memory mode for local development. WithTx serializes writers with
// one lock and snapshots state, so a failed unit of work rolls back fully.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/caroya1/campus-market/internal/market"
)

type pairKey struct{ a, b int64 }

type favKey struct {
	userID, postID int64
	postType       string
}

type Store struct {
	mu     sync.RWMutex
	nextID int64

	users        map[int64]market.User
	userIDByName map[string]int64
	products     map[int64]market.Product
	cart         map[int64]map[int64]market.CartLine // userID -> productID -> line
	orders       map[int64]market.Order
	orderLines   map[int64][]market.OrderLine
	activities   map[int64]market.Activity
	reservations map[pairKey]market.Reservation // {userID, activityID}
	favorites    map[favKey]market.Favorite
	events       map[int64][]market.BalanceEvent
	posts        map[int64]market.Post
}

var _ market.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		nextID:       0,
		users:        map[int64]market.User{},
		userIDByName: map[string]int64{},
		products:     map[int64]market.Product{},
		cart:         map[int64]map[int64]market.CartLine{},
		orders:       map[int64]market.Order{},
		orderLines:   map[int64][]market.OrderLine{},
		activities:   map[int64]market.Activity{},
		reservations: map[pairKey]market.Reservation{},
		favorites:    map[favKey]market.Favorite{},
		events:       map[int64][]market.BalanceEvent{},
		posts:        map[int64]market.Post{},
	}
}

// --- transaction handling -------------------------------------------------

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

func (s *Store) rlock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) wlock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithTx takes the global write lock for the whole unit of work and restores
// a snapshot when fn fails, so partial mutations never become visible.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx) // nested: join the enclosing unit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshotState struct {
	nextID       int64
	users        map[int64]market.User
	userIDByName map[string]int64
	products     map[int64]market.Product
	cart         map[int64]map[int64]market.CartLine
	orders       map[int64]market.Order
	orderLines   map[int64][]market.OrderLine
	activities   map[int64]market.Activity
	reservations map[pairKey]market.Reservation
	favorites    map[favKey]market.Favorite
	events       map[int64][]market.BalanceEvent
	posts        map[int64]market.Post
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSliceMap[K comparable, V any](m map[K][]V) map[K][]V {
	out := make(map[K][]V, len(m))
	for k, v := range m {
		out[k] = append([]V(nil), v...)
	}
	return out
}

func (s *Store) snapshot() snapshotState {
	cart := make(map[int64]map[int64]market.CartLine, len(s.cart))
	for uid, lines := range s.cart {
		cart[uid] = cloneMap(lines)
	}
	return snapshotState{
		nextID:       s.nextID,
		users:        cloneMap(s.users),
		userIDByName: cloneMap(s.userIDByName),
		products:     cloneMap(s.products),
		cart:         cart,
		orders:       cloneMap(s.orders),
		orderLines:   cloneSliceMap(s.orderLines),
		activities:   cloneMap(s.activities),
		reservations: cloneMap(s.reservations),
		favorites:    cloneMap(s.favorites),
		events:       cloneSliceMap(s.events),
		posts:        cloneMap(s.posts),
	}
}

func (s *Store) restore(snap snapshotState) {
	s.nextID = snap.nextID
	s.users = snap.users
	s.userIDByName = snap.userIDByName
	s.products = snap.products
	s.cart = snap.cart
	s.orders = snap.orders
	s.orderLines = snap.orderLines
	s.activities = snap.activities
	s.reservations = snap.reservations
	s.favorites = snap.favorites
	s.events = snap.events
	s.posts = snap.posts
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// --- users ----------------------------------------------------------------

func (s *Store) UserByID(ctx context.Context, id int64) (*market.User, error) {
	defer s.rlock(ctx)()
	if u, ok := s.users[id]; ok {
		cp := u
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*market.User, error) {
	defer s.rlock(ctx)()
	if id, ok := s.userIDByName[username]; ok {
		u := s.users[id]
		return &u, nil
	}
	return nil, nil
}

// UserForUpdate is a plain read here; the tx-wide write lock already
// serializes every writer.
func (s *Store) UserForUpdate(ctx context.Context, id int64) (*market.User, error) {
	return s.UserByID(ctx, id)
}

func (s *Store) CreateUser(ctx context.Context, u *market.User) error {
	defer s.wlock(ctx)()
	u.ID = s.id()
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	s.userIDByName[u.Username] = u.ID
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, u *market.User) error {
	defer s.wlock(ctx)()
	cur, ok := s.users[u.ID]
	if !ok {
		return nil
	}
	u.Balance = cur.Balance // balance moves only via SetBalance
	u.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = *u
	return nil
}

func (s *Store) SetBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	defer s.wlock(ctx)()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	u.Balance = balance
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return nil
}

// --- products -------------------------------------------------------------

func (s *Store) ProductByID(ctx context.Context, id int64) (*market.Product, error) {
	defer s.rlock(ctx)()
	if p, ok := s.products[id]; ok {
		cp := p
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) ProductForUpdate(ctx context.Context, id int64) (*market.Product, error) {
	return s.ProductByID(ctx, id)
}

func (s *Store) CreateProduct(ctx context.Context, p *market.Product) error {
	defer s.wlock(ctx)()
	p.ID = s.id()
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	s.products[p.ID] = *p
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	defer s.wlock(ctx)()
	delete(s.products, id)
	return nil
}

func (s *Store) SetStock(ctx context.Context, id int64, stock int) error {
	defer s.wlock(ctx)()
	p, ok := s.products[id]
	if !ok {
		return nil
	}
	p.Stock = stock
	p.UpdatedAt = time.Now().UTC()
	s.products[id] = p
	return nil
}

func (s *Store) ListProducts(ctx context.Context, f market.ProductFilter) ([]market.Product, error) {
	defer s.rlock(ctx)()
	var out []market.Product
	for _, p := range s.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Keyword != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Keyword)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return pageSlice(out, f.Page, f.Size), nil
}

// --- cart -----------------------------------------------------------------

func (s *Store) CartLines(ctx context.Context, userID int64) ([]market.CartLine, error) {
	defer s.rlock(ctx)()
	var out []market.CartLine
	for _, l := range s.cart[userID] {
		if p, ok := s.products[l.ProductID]; ok {
			l.ProductName = p.Name
			l.ProductPrice = p.Price
			l.ProductImageURL = p.ImageURL
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CartLine(ctx context.Context, userID, productID int64) (*market.CartLine, error) {
	defer s.rlock(ctx)()
	if l, ok := s.cart[userID][productID]; ok {
		return &l, nil
	}
	return nil, nil
}

func (s *Store) InsertCartLine(ctx context.Context, l *market.CartLine) error {
	defer s.wlock(ctx)()
	l.ID = s.id()
	now := time.Now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now
	if s.cart[l.UserID] == nil {
		s.cart[l.UserID] = map[int64]market.CartLine{}
	}
	s.cart[l.UserID][l.ProductID] = *l
	return nil
}

func (s *Store) UpdateCartQuantity(ctx context.Context, userID, productID int64, qty int) error {
	defer s.wlock(ctx)()
	l, ok := s.cart[userID][productID]
	if !ok {
		return nil
	}
	l.Quantity = qty
	l.UpdatedAt = time.Now().UTC()
	s.cart[userID][productID] = l
	return nil
}

func (s *Store) DeleteCartLine(ctx context.Context, userID, productID int64) (bool, error) {
	defer s.wlock(ctx)()
	if _, ok := s.cart[userID][productID]; !ok {
		return false, nil
	}
	delete(s.cart[userID], productID)
	return true, nil
}

func (s *Store) ClearCart(ctx context.Context, userID int64) error {
	defer s.wlock(ctx)()
	delete(s.cart, userID)
	return nil
}

// --- orders ---------------------------------------------------------------

func (s *Store) CreateOrder(ctx context.Context, o *market.Order, lines []market.OrderLine) error {
	defer s.wlock(ctx)()
	o.ID = s.id()
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	s.orders[o.ID] = *o
	stored := make([]market.OrderLine, 0, len(lines))
	for i := range lines {
		l := lines[i]
		l.ID = s.id()
		l.OrderID = o.ID
		l.CreatedAt = now
		stored = append(stored, l)
	}
	s.orderLines[o.ID] = stored
	return nil
}

func (s *Store) OrderByID(ctx context.Context, id int64) (*market.Order, error) {
	defer s.rlock(ctx)()
	if o, ok := s.orders[id]; ok {
		cp := o
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) OrderForUpdate(ctx context.Context, id int64) (*market.Order, error) {
	return s.OrderByID(ctx, id)
}

func (s *Store) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	defer s.rlock(ctx)()
	for _, o := range s.orders {
		if o.OrderNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) SetOrderStatus(ctx context.Context, id int64, st market.OrderStatus) error {
	defer s.wlock(ctx)()
	o, ok := s.orders[id]
	if !ok {
		return nil
	}
	o.Status = st
	o.UpdatedAt = time.Now().UTC()
	s.orders[id] = o
	return nil
}

func (s *Store) OrdersByUser(ctx context.Context, userID int64, page, size int) ([]market.Order, error) {
	defer s.rlock(ctx)()
	var out []market.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return pageSlice(out, page, size), nil
}

func (s *Store) OrderLinesByOrder(ctx context.Context, orderID int64) ([]market.OrderLine, error) {
	defer s.rlock(ctx)()
	return append([]market.OrderLine(nil), s.orderLines[orderID]...), nil
}

// --- activities -----------------------------------------------------------

func (s *Store) ActivityByID(ctx context.Context, id int64) (*market.Activity, error) {
	defer s.rlock(ctx)()
	if a, ok := s.activities[id]; ok {
		cp := a
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) ActivityForUpdate(ctx context.Context, id int64) (*market.Activity, error) {
	return s.ActivityByID(ctx, id)
}

func (s *Store) CreateActivity(ctx context.Context, a *market.Activity) error {
	defer s.wlock(ctx)()
	a.ID = s.id()
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	s.activities[a.ID] = *a
	return nil
}

func (s *Store) SetReservedCount(ctx context.Context, id int64, n int) error {
	defer s.wlock(ctx)()
	a, ok := s.activities[id]
	if !ok {
		return nil
	}
	a.ReservedCount = n
	a.UpdatedAt = time.Now().UTC()
	s.activities[id] = a
	return nil
}

func (s *Store) IncrementActivityViews(ctx context.Context, id int64) error {
	defer s.wlock(ctx)()
	a, ok := s.activities[id]
	if !ok {
		return nil
	}
	a.Views++
	s.activities[id] = a
	return nil
}

func (s *Store) ListActivities(ctx context.Context, keyword string, page, size int) ([]market.Activity, error) {
	defer s.rlock(ctx)()
	var out []market.Activity
	for _, a := range s.activities {
		if keyword != "" && !strings.Contains(strings.ToLower(a.Title), strings.ToLower(keyword)) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return pageSlice(out, page, size), nil
}

// --- reservations ---------------------------------------------------------

func (s *Store) HasReservation(ctx context.Context, userID, activityID int64) (bool, error) {
	defer s.rlock(ctx)()
	_, ok := s.reservations[pairKey{userID, activityID}]
	return ok, nil
}

func (s *Store) InsertReservation(ctx context.Context, r *market.Reservation) error {
	defer s.wlock(ctx)()
	r.ID = s.id()
	r.CreatedAt = time.Now().UTC()
	s.reservations[pairKey{r.UserID, r.ActivityID}] = *r
	return nil
}

func (s *Store) DeleteReservation(ctx context.Context, userID, activityID int64) (bool, error) {
	defer s.wlock(ctx)()
	k := pairKey{userID, activityID}
	if _, ok := s.reservations[k]; !ok {
		return false, nil
	}
	delete(s.reservations, k)
	return true, nil
}

func (s *Store) ReservationsByUser(ctx context.Context, userID int64) ([]market.Reservation, error) {
	defer s.rlock(ctx)()
	var out []market.Reservation
	for _, r := range s.reservations {
		if r.UserID != userID {
			continue
		}
		if a, ok := s.activities[r.ActivityID]; ok {
			r.ActivityTitle = a.Title
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// --- balance events -------------------------------------------------------

func (s *Store) InsertBalanceEvent(ctx context.Context, ev *market.BalanceEvent) error {
	defer s.wlock(ctx)()
	ev.ID = s.id()
	ev.CreatedAt = time.Now().UTC()
	s.events[ev.UserID] = append(s.events[ev.UserID], *ev)
	return nil
}

func (s *Store) BalanceEventsByUser(ctx context.Context, userID int64) ([]market.BalanceEvent, error) {
	defer s.rlock(ctx)()
	out := append([]market.BalanceEvent(nil), s.events[userID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// --- favorites ------------------------------------------------------------

func (s *Store) HasFavorite(ctx context.Context, userID, postID int64, postType string) (bool, error) {
	defer s.rlock(ctx)()
	_, ok := s.favorites[favKey{userID, postID, postType}]
	return ok, nil
}

func (s *Store) InsertFavorite(ctx context.Context, f *market.Favorite) error {
	defer s.wlock(ctx)()
	f.ID = s.id()
	f.CreatedAt = time.Now().UTC()
	s.favorites[favKey{f.UserID, f.PostID, f.PostType}] = *f
	return nil
}

func (s *Store) DeleteFavorite(ctx context.Context, userID, postID int64, postType string) (bool, error) {
	defer s.wlock(ctx)()
	k := favKey{userID, postID, postType}
	if _, ok := s.favorites[k]; !ok {
		return false, nil
	}
	delete(s.favorites, k)
	return true, nil
}

// --- forum ----------------------------------------------------------------

func (s *Store) PostByID(ctx context.Context, id int64) (*market.Post, error) {
	defer s.rlock(ctx)()
	if p, ok := s.posts[id]; ok {
		if u, uok := s.users[p.AuthorID]; uok {
			p.AuthorName = u.Nickname
		}
		return &p, nil
	}
	return nil, nil
}

func (s *Store) CreatePost(ctx context.Context, p *market.Post) error {
	defer s.wlock(ctx)()
	p.ID = s.id()
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	s.posts[p.ID] = *p
	return nil
}

func (s *Store) IncrementPostViews(ctx context.Context, id int64) error {
	defer s.wlock(ctx)()
	p, ok := s.posts[id]
	if !ok {
		return nil
	}
	p.Views++
	s.posts[id] = p
	return nil
}

func (s *Store) ListPosts(ctx context.Context, keyword string, page, size int) ([]market.Post, error) {
	defer s.rlock(ctx)()
	var out []market.Post
	for _, p := range s.posts {
		if keyword != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(keyword)) {
			continue
		}
		if u, ok := s.users[p.AuthorID]; ok {
			p.AuthorName = u.Nickname
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return pageSlice(out, page, size), nil
}

func (s *Store) PostsByUser(ctx context.Context, userID int64) ([]market.Post, error) {
	defer s.rlock(ctx)()
	var out []market.Post
	for _, p := range s.posts {
		if p.AuthorID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func pageSlice[T any](in []T, page, size int) []T {
	if size <= 0 {
		return in
	}
	if page < 1 {
		page = 1
	}
	from := (page - 1) * size
	if from >= len(in) {
		return nil
	}
	to := from + size
	if to > len(in) {
		to = len(in)
	}
	return in[from:to]
}
