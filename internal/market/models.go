package market

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           int64           `json:"id"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"-"`
	Nickname     string          `json:"nickname"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Gender       string          `json:"gender"`
	Balance      decimal.Decimal `json:"balance"`
	UserType     string          `json:"user_type"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	Stock         int             `json:"stock"`
	Category      string          `json:"category"`
	ImageURL      string          `json:"image_url"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CartLine is one (user, product) row. Product fields are joined in on read
// so the cart page does not need a second round trip; they are not stored.
type CartLine struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProductName     string          `json:"product_name,omitempty"`
	ProductPrice    decimal.Decimal `json:"product_price"`
	ProductImageURL string          `json:"product_image_url,omitempty"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"order_number"`
	UserID          int64           `json:"user_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          OrderStatus     `json:"status"`
	PaymentMethod   string          `json:"payment_method"`
	ShippingAddress string          `json:"shipping_address"`
	Remark          string          `json:"remark"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Lines []OrderLine `json:"lines,omitempty"`
}

// OrderLine snapshots the product at purchase time. The copy is intentional:
// historical orders must survive later price changes and product removal.
type OrderLine struct {
	ID              int64           `json:"id"`
	OrderID         int64           `json:"order_id"`
	ProductID       int64           `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductPrice    decimal.Decimal `json:"product_price"`
	ProductImageURL string          `json:"product_image_url"`
	Quantity        int             `json:"quantity"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	CreatedAt       time.Time       `json:"created_at"`
}

type Activity struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	AuthorID      int64          `json:"author_id"`
	Views         int            `json:"views"`
	ImageURL      string         `json:"image_url"`
	ReservedCount int            `json:"reserved_count"`
	MaxCapacity   int            `json:"max_capacity"`
	Status        ActivityStatus `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type Reservation struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	ActivityID int64     `json:"activity_id"`
	CreatedAt  time.Time `json:"created_at"`

	ActivityTitle string `json:"activity_title,omitempty"`
}

// BalanceEvent is append-only. Amount is signed: recharge and refund are
// positive, checkout debit is negative.
type BalanceEvent struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id"`
	Remark        string          `json:"remark"`
	CreatedAt     time.Time       `json:"created_at"`
}

type Favorite struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PostID    int64     `json:"post_id"`
	PostType  string    `json:"post_type"`
	CreatedAt time.Time `json:"created_at"`
}

type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"author_id"`
	Views     int       `json:"views"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AuthorName string `json:"author_name,omitempty"`
}

const (
	FavoriteTypeActivity = "learning"
	FavoriteTypeForum    = "forum"
)
