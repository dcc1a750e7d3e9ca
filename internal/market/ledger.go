package market

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger owns the user balance and its append-only event trail. Balance is
// never written from anywhere else.
type Ledger struct {
	store LedgerStore
}

func NewLedger(store LedgerStore) *Ledger {
	return &Ledger{store: store}
}

// Credit recharges the user's balance and records the event.
func (l *Ledger) Credit(ctx context.Context, userID int64, amount decimal.Decimal, method string) (*BalanceEvent, error) {
	if amount.Sign() <= 0 {
		return nil, BusinessRule(CodeInvalidAmount, "recharge amount must be greater than 0")
	}
	var out *BalanceEvent
	err := l.store.WithTx(ctx, func(ctx context.Context) error {
		user, err := l.store.UserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return NotFound(CodeUserNotFound, "user not found")
		}
		if err := l.store.SetBalance(ctx, userID, user.Balance.Add(amount)); err != nil {
			return err
		}
		ev := &BalanceEvent{
			UserID:        userID,
			Amount:        amount,
			Method:        method,
			Status:        "success",
			TransactionID: transactionID(),
			Remark:        "balance recharge",
		}
		if err := l.store.InsertBalanceEvent(ctx, ev); err != nil {
			return err
		}
		out = ev
		return nil
	})
	return out, err
}

// History lists the user's balance events, newest first.
func (l *Ledger) History(ctx context.Context, userID int64) ([]BalanceEvent, error) {
	return l.store.BalanceEventsByUser(ctx, userID)
}

// debit runs inside the caller's transaction on an already locked user row.
// The caller has checked amount <= balance; the ledger does not clamp here.
func (l *Ledger) debit(ctx context.Context, user *User, amount decimal.Decimal, remark string) error {
	if err := l.store.SetBalance(ctx, user.ID, user.Balance.Sub(amount)); err != nil {
		return err
	}
	return l.store.InsertBalanceEvent(ctx, &BalanceEvent{
		UserID:        user.ID,
		Amount:        amount.Neg(),
		Method:        "balance",
		Status:        "success",
		TransactionID: transactionID(),
		Remark:        remark,
	})
}

// refund is debit's inverse, same contract.
func (l *Ledger) refund(ctx context.Context, user *User, amount decimal.Decimal, remark string) error {
	if err := l.store.SetBalance(ctx, user.ID, user.Balance.Add(amount)); err != nil {
		return err
	}
	return l.store.InsertBalanceEvent(ctx, &BalanceEvent{
		UserID:        user.ID,
		Amount:        amount,
		Method:        "refund",
		Status:        "success",
		TransactionID: transactionID(),
		Remark:        remark,
	})
}

func transactionID() string {
	return "TXN" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}
