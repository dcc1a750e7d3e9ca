package httpx

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caroya1/campus-market/internal/market"
)

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) Result {
	t.Helper()
	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestOKEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]int{"n": 1})

	assert.Equal(t, 200, rec.Code)
	res := decodeResult(t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, 200, res.Code)
	assert.Equal(t, "ok", res.Message)
}

func TestFailDomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, market.BusinessRule(market.CodeInsufficientBalance, "insufficient balance: current 10, required 40"))

	assert.Equal(t, 400, rec.Code)
	res := decodeResult(t, rec)
	assert.False(t, res.Success)
	assert.Equal(t, 400, res.Code)
	// business message passes through verbatim
	assert.Equal(t, "insufficient balance: current 10, required 40", res.Message)
}

func TestFailInternalErrorIsOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, errors.New("pq: connection refused"))

	assert.Equal(t, 500, rec.Code)
	res := decodeResult(t, rec)
	assert.False(t, res.Success)
	assert.Equal(t, "internal error", res.Message)
	assert.NotContains(t, res.Message, "connection refused")
}
