package market

import "errors"

// Kind classifies expected domain failures. Anything that is not a *Error is
// treated as an internal fault by the HTTP layer.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindBusinessRule
	KindNotAuthorized
)

// Stable machine-readable codes carried next to the human message.
const (
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeProductNotFound     = "PRODUCT_NOT_FOUND"
	CodeCartEmpty           = "CART_EMPTY"
	CodeCartLineNotFound    = "CART_LINE_NOT_FOUND"
	CodeInvalidQuantity     = "INVALID_QUANTITY"
	CodeOrderNotFound       = "ORDER_NOT_FOUND"
	CodeInvalidOrderState   = "INVALID_ORDER_STATE"
	CodeActivityNotFound    = "ACTIVITY_NOT_FOUND"
	CodeActivityClosed      = "ACTIVITY_CLOSED"
	CodeActivityFull        = "ACTIVITY_FULL"
	CodeAlreadyReserved     = "ALREADY_RESERVED"
	CodeReservationNotFound = "RESERVATION_NOT_FOUND"
	CodeInvalidAmount       = "INVALID_AMOUNT"
	CodeAlreadyFavorited    = "ALREADY_FAVORITED"
	CodeFavoriteNotFound    = "FAVORITE_NOT_FOUND"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeUsernameTaken       = "USERNAME_TAKEN"
	CodeBadCredentials      = "BAD_CREDENTIALS"
	CodeNotAuthorized       = "NOT_AUTHORIZED"
	CodePostNotFound        = "POST_NOT_FOUND"
	CodeInvalidInput        = "INVALID_INPUT"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func Validation(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

func NotFound(code, msg string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: msg}
}

func BusinessRule(code, msg string) *Error {
	return &Error{Kind: KindBusinessRule, Code: code, Message: msg}
}

func NotAuthorized(code, msg string) *Error {
	return &Error{Kind: KindNotAuthorized, Code: code, Message: msg}
}

// CodeOf returns the stable code of a domain error, or "" for internal faults.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
