package market

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// CartService keeps at most one line per (user, product): adding a product
// already in the cart bumps the quantity instead of duplicating the row.
type CartService struct {
	store CartStore
}

func NewCartService(store CartStore) *CartService {
	return &CartService{store: store}
}

func (s *CartService) Add(ctx context.Context, userID, productID int64, qty int) error {
	if qty <= 0 {
		return Validation(CodeInvalidQuantity, "quantity must be greater than 0")
	}
	return s.store.WithTx(ctx, func(ctx context.Context) error {
		p, err := s.store.ProductByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return NotFound(CodeProductNotFound, "product not found")
		}
		line, err := s.store.CartLine(ctx, userID, productID)
		if err != nil {
			return err
		}
		want := qty
		if line != nil {
			want += line.Quantity
		}
		if p.Stock < want {
			return BusinessRule(CodeInsufficientStock, fmt.Sprintf(
				"insufficient stock for %s: have %d, need %d", p.Name, p.Stock, want))
		}
		if line != nil {
			return s.store.UpdateCartQuantity(ctx, userID, productID, want)
		}
		return s.store.InsertCartLine(ctx, &CartLine{UserID: userID, ProductID: productID, Quantity: qty})
	})
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID int64, qty int) error {
	if qty <= 0 {
		return Validation(CodeInvalidQuantity, "quantity must be greater than 0")
	}
	return s.store.WithTx(ctx, func(ctx context.Context) error {
		line, err := s.store.CartLine(ctx, userID, productID)
		if err != nil {
			return err
		}
		if line == nil {
			return NotFound(CodeCartLineNotFound, "product is not in the cart")
		}
		p, err := s.store.ProductByID(ctx, productID)
		if err != nil {
			return err
		}
		if p != nil && p.Stock < qty {
			return BusinessRule(CodeInsufficientStock, fmt.Sprintf(
				"insufficient stock for %s: have %d, need %d", p.Name, p.Stock, qty))
		}
		return s.store.UpdateCartQuantity(ctx, userID, productID, qty)
	})
}

func (s *CartService) Remove(ctx context.Context, userID, productID int64) error {
	deleted, err := s.store.DeleteCartLine(ctx, userID, productID)
	if err != nil {
		return err
	}
	if !deleted {
		return NotFound(CodeCartLineNotFound, "product is not in the cart")
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID int64) error {
	return s.store.ClearCart(ctx, userID)
}

// List returns the cart lines with product data joined and the running total.
func (s *CartService) List(ctx context.Context, userID int64) ([]CartLine, decimal.Decimal, error) {
	lines, err := s.store.CartLines(ctx, userID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	total := decimal.Zero
	for i := range lines {
		lines[i].LineTotal = lines[i].ProductPrice.Mul(decimal.NewFromInt(int64(lines[i].Quantity)))
		total = total.Add(lines[i].LineTotal)
	}
	return lines, total, nil
}
