package ledger

import "errors"

// Engine errors. Handlers map these to HTTP statuses; everything else that
// comes out of the engine wraps one of them.
var (
	// ErrInvalidInput - malformed or out-of-range arguments (non-positive
	// quantity, negative price, unknown category, ...)
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound - a referenced entity (product, staff, bank account) does
	// not exist in the aggregate
	ErrNotFound = errors.New("not found")

	// ErrInsufficientStock - a sale would take a product's stock below zero.
	// Checked hard at commit time, not just at add-to-cart.
	ErrInsufficientStock = errors.New("insufficient stock")
)
