package checkout

import "errors"

var (
	// ErrInvalidInput covers missing or malformed request fields, including a
	// selected SKU that is not present in the user's cart.
	ErrInvalidInput = errors.New("invalid checkout input")

	// ErrAddressNotFound: the address does not exist or belongs to another user.
	ErrAddressNotFound = errors.New("address not found")

	// ErrInsufficientStock: authoritative stock below the requested quantity.
	// The whole commit unit is rolled back.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrConcurrencyExhausted: the bounded CAS retry loop lost every attempt
	// to a racing checkout. Transient; the caller may resubmit.
	ErrConcurrencyExhausted = errors.New("stock contention, retry")
)
