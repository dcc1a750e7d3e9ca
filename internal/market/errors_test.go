package market_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/caroya1/campus-market/internal/market"
)

func TestCodeOfUnwraps(t *testing.T) {
	err := market.BusinessRule(market.CodeInsufficientStock, "have 1, need 2")
	wrapped := fmt.Errorf("checkout: %w", err)

	assert.Equal(t, market.CodeInsufficientStock, market.CodeOf(wrapped))
	assert.True(t, market.IsKind(wrapped, market.KindBusinessRule))
	assert.False(t, market.IsKind(wrapped, market.KindNotFound))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Empty(t, market.CodeOf(errors.New("disk on fire")))
	assert.Empty(t, market.CodeOf(nil))
	assert.False(t, market.IsKind(errors.New("x"), market.KindValidation))
}
