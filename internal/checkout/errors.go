package checkout

import "errors"

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to check out")
	ErrIncompleteAddress = errors.New("shipping address is incomplete")
	ErrMissingOrderIDs   = errors.New("missing provider or local order id")
	ErrOrderMismatch     = errors.New("provider order id does not match the local order")
	ErrNotCapturable     = errors.New("order is not awaiting capture")
	ErrPaymentDeclined   = errors.New("payment was declined")
)
