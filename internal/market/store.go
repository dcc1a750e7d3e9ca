package market

import (
	"context"

	"github.com/shopspring/decimal"
)

// TxManager wraps fn in one unit of work: everything commits or nothing does.
// Implementations must give fn isolation strong enough that a
// read-ForUpdate / check / write sequence cannot lose updates.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repositories return (nil, nil) when the row does not exist; mapping absence
// to a domain error is the service's job.

type UserRepo interface {
	UserByID(ctx context.Context, id int64) (*User, error)
	UserByUsername(ctx context.Context, username string) (*User, error)
	// UserForUpdate locks the row for the rest of the transaction. Balance
	// mutations must go through it.
	UserForUpdate(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, u *User) error
	UpdateUser(ctx context.Context, u *User) error
	SetBalance(ctx context.Context, id int64, balance decimal.Decimal) error
}

type ProductFilter struct {
	Category string
	Keyword  string
	Page     int
	Size     int
}

type ProductRepo interface {
	ProductByID(ctx context.Context, id int64) (*Product, error)
	ProductForUpdate(ctx context.Context, id int64) (*Product, error)
	CreateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id int64) error
	SetStock(ctx context.Context, id int64, stock int) error
	ListProducts(ctx context.Context, f ProductFilter) ([]Product, error)
}

type CartRepo interface {
	// CartLines returns the user's lines with product name/price/image
	// joined in. Lines whose product vanished keep zero joined fields.
	CartLines(ctx context.Context, userID int64) ([]CartLine, error)
	CartLine(ctx context.Context, userID, productID int64) (*CartLine, error)
	InsertCartLine(ctx context.Context, l *CartLine) error
	UpdateCartQuantity(ctx context.Context, userID, productID int64, qty int) error
	DeleteCartLine(ctx context.Context, userID, productID int64) (bool, error)
	ClearCart(ctx context.Context, userID int64) error
}

type OrderRepo interface {
	// CreateOrder persists the order and its lines together.
	CreateOrder(ctx context.Context, o *Order, lines []OrderLine) error
	OrderByID(ctx context.Context, id int64) (*Order, error)
	OrderForUpdate(ctx context.Context, id int64) (*Order, error)
	OrderNumberExists(ctx context.Context, number string) (bool, error)
	SetOrderStatus(ctx context.Context, id int64, s OrderStatus) error
	OrdersByUser(ctx context.Context, userID int64, page, size int) ([]Order, error)
	OrderLinesByOrder(ctx context.Context, orderID int64) ([]OrderLine, error)
}

type ActivityRepo interface {
	ActivityByID(ctx context.Context, id int64) (*Activity, error)
	ActivityForUpdate(ctx context.Context, id int64) (*Activity, error)
	CreateActivity(ctx context.Context, a *Activity) error
	SetReservedCount(ctx context.Context, id int64, n int) error
	IncrementActivityViews(ctx context.Context, id int64) error
	ListActivities(ctx context.Context, keyword string, page, size int) ([]Activity, error)
}

type ReservationRepo interface {
	HasReservation(ctx context.Context, userID, activityID int64) (bool, error)
	InsertReservation(ctx context.Context, r *Reservation) error
	DeleteReservation(ctx context.Context, userID, activityID int64) (bool, error)
	ReservationsByUser(ctx context.Context, userID int64) ([]Reservation, error)
}

type BalanceEventRepo interface {
	InsertBalanceEvent(ctx context.Context, ev *BalanceEvent) error
	BalanceEventsByUser(ctx context.Context, userID int64) ([]BalanceEvent, error)
}

type FavoriteRepo interface {
	HasFavorite(ctx context.Context, userID, postID int64, postType string) (bool, error)
	InsertFavorite(ctx context.Context, f *Favorite) error
	DeleteFavorite(ctx context.Context, userID, postID int64, postType string) (bool, error)
}

type PostRepo interface {
	PostByID(ctx context.Context, id int64) (*Post, error)
	CreatePost(ctx context.Context, p *Post) error
	IncrementPostViews(ctx context.Context, id int64) error
	ListPosts(ctx context.Context, keyword string, page, size int) ([]Post, error)
	PostsByUser(ctx context.Context, userID int64) ([]Post, error)
}

// Per-service views over the full store.

type OrderStore interface {
	TxManager
	UserRepo
	ProductRepo
	CartRepo
	OrderRepo
	BalanceEventRepo
}

type ActivityStore interface {
	TxManager
	ActivityRepo
	ReservationRepo
	FavoriteRepo
}

type LedgerStore interface {
	TxManager
	UserRepo
	BalanceEventRepo
}

type CartStore interface {
	TxManager
	ProductRepo
	CartRepo
}

// Store is everything a backend must provide.
type Store interface {
	TxManager
	UserRepo
	ProductRepo
	CartRepo
	OrderRepo
	ActivityRepo
	ReservationRepo
	BalanceEventRepo
	FavoriteRepo
	PostRepo
}
