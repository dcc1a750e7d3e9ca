package market

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const orderNumberAttempts = 5

// OrderEngine turns a cart into an order. Checkout and CancelOrder each run
// as one unit of work: balance, stock, cart and order rows move together or
// not at all.
type OrderEngine struct {
	store  OrderStore
	ledger *Ledger
}

func NewOrderEngine(store OrderStore, ledger *Ledger) *OrderEngine {
	return &OrderEngine{store: store, ledger: ledger}
}

// Checkout validates the whole cart against live stock and the user's
// balance, then commits order + lines, balance debit, stock decrement and
// cart clear in one transaction.
func (e *OrderEngine) Checkout(ctx context.Context, userID int64, shippingAddress, remark string) (*Order, error) {
	var out *Order
	err := e.store.WithTx(ctx, func(ctx context.Context) error {
		user, err := e.store.UserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return NotFound(CodeUserNotFound, "user not found")
		}

		lines, err := e.store.CartLines(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return BusinessRule(CodeCartEmpty, "cart is empty")
		}

		total := decimal.Zero
		for _, l := range lines {
			total = total.Add(l.ProductPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		if user.Balance.LessThan(total) {
			return BusinessRule(CodeInsufficientBalance, fmt.Sprintf(
				"insufficient balance: current %s, required %s", user.Balance, total))
		}

		// Lock every product row before touching stock; two checkouts
		// against the same product serialize here. The total is rebuilt
		// from the locked prices so it always matches the line subtotals.
		products := make(map[int64]*Product, len(lines))
		total = decimal.Zero
		for _, l := range lines {
			p, err := e.store.ProductForUpdate(ctx, l.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return NotFound(CodeProductNotFound, fmt.Sprintf("product no longer exists: id=%d", l.ProductID))
			}
			if p.Stock < l.Quantity {
				return BusinessRule(CodeInsufficientStock, fmt.Sprintf(
					"insufficient stock for %s: have %d, need %d", p.Name, p.Stock, l.Quantity))
			}
			products[l.ProductID] = p
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		if user.Balance.LessThan(total) {
			return BusinessRule(CodeInsufficientBalance, fmt.Sprintf(
				"insufficient balance: current %s, required %s", user.Balance, total))
		}

		number, err := e.nextOrderNumber(ctx)
		if err != nil {
			return err
		}

		order := &Order{
			OrderNumber:     number,
			UserID:          userID,
			TotalAmount:     total,
			Status:          OrderPaid, // balance payment settles immediately
			PaymentMethod:   "balance",
			ShippingAddress: shippingAddress,
			Remark:          remark,
		}
		orderLines := make([]OrderLine, 0, len(lines))
		for _, l := range lines {
			p := products[l.ProductID]
			orderLines = append(orderLines, OrderLine{
				ProductID:       p.ID,
				ProductName:     p.Name,
				ProductPrice:    p.Price,
				ProductImageURL: p.ImageURL,
				Quantity:        l.Quantity,
				Subtotal:        p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))),
			})
		}
		if err := e.store.CreateOrder(ctx, order, orderLines); err != nil {
			return err
		}

		if err := e.ledger.debit(ctx, user, total, "order "+number); err != nil {
			return err
		}
		for _, l := range lines {
			p := products[l.ProductID]
			if err := e.store.SetStock(ctx, p.ID, p.Stock-l.Quantity); err != nil {
				return err
			}
		}
		if err := e.store.ClearCart(ctx, userID); err != nil {
			return err
		}

		order.Lines = orderLines
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CancelOrder is checkout's structural inverse. A paid order refunds the
// balance and restores stock; products deleted in the meantime are skipped.
func (e *OrderEngine) CancelOrder(ctx context.Context, orderID, userID int64) (*Order, error) {
	var out *Order
	err := e.store.WithTx(ctx, func(ctx context.Context) error {
		order, err := e.store.OrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil || order.UserID != userID {
			// Do not reveal whether the order exists for someone else.
			return NotAuthorized(CodeNotAuthorized, "order not found or no permission")
		}
		if !order.Status.Cancellable() {
			return BusinessRule(CodeInvalidOrderState, fmt.Sprintf("order in status %q cannot be cancelled", order.Status))
		}

		if order.Status == OrderPaid {
			user, err := e.store.UserForUpdate(ctx, userID)
			if err != nil {
				return err
			}
			if user == nil {
				return NotFound(CodeUserNotFound, "user not found")
			}
			if err := e.ledger.refund(ctx, user, order.TotalAmount, "refund "+order.OrderNumber); err != nil {
				return err
			}
			lines, err := e.store.OrderLinesByOrder(ctx, orderID)
			if err != nil {
				return err
			}
			for _, l := range lines {
				p, err := e.store.ProductForUpdate(ctx, l.ProductID)
				if err != nil {
					return err
				}
				if p == nil {
					continue // product removed since purchase
				}
				if err := e.store.SetStock(ctx, p.ID, p.Stock+l.Quantity); err != nil {
					return err
				}
			}
		}

		if err := e.store.SetOrderStatus(ctx, orderID, OrderCancelled); err != nil {
			return err
		}
		order.Status = OrderCancelled
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// OrderDetail returns the order with its lines, scoped to the owner.
func (e *OrderEngine) OrderDetail(ctx context.Context, orderID, userID int64) (*Order, error) {
	order, err := e.store.OrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != userID {
		return nil, NotAuthorized(CodeNotAuthorized, "order not found or no permission")
	}
	lines, err := e.store.OrderLinesByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return order, nil
}

// ListOrders pages through the user's own orders, newest first.
func (e *OrderEngine) ListOrders(ctx context.Context, userID int64, page, size int) ([]Order, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}
	return e.store.OrdersByUser(ctx, userID, page, size)
}

func (e *OrderEngine) nextOrderNumber(ctx context.Context) (string, error) {
	for i := 0; i < orderNumberAttempts; i++ {
		n := newOrderNumber(time.Now())
		exists, err := e.store.OrderNumberExists(ctx, n)
		if err != nil {
			return "", err
		}
		if !exists {
			return n, nil
		}
	}
	return "", fmt.Errorf("order number collision after %d attempts", orderNumberAttempts)
}
