package payment

import "errors"

// Status is the terminal state of a processed payment. A payment is assigned
// exactly one status and never transitions afterwards.
type Status string

const (
	// StatusAuthorized means the acquiring bank confirmed the authorization.
	StatusAuthorized Status = "Authorized"
	// StatusDeclined means the bank returned a not-authorized verdict, or the
	// bank could not be reached at all. Both collapse to the same state.
	StatusDeclined Status = "Declined"
	// StatusRejected means the request failed local validation and never
	// reached the bank. Rejected payments are never persisted.
	StatusRejected Status = "Rejected"
)

// ErrNotFound is returned by repositories when no payment matches an identifier.
var ErrNotFound = errors.New("payment not found")

// Payment is the persisted record of a processed authorization attempt.
// The full card number and CVV are never stored; only the last four digits
// of the card number are kept for display purposes.
type Payment struct {
	ID                 string
	Status             Status
	CardNumberLastFour string
	ExpiryMonth        int
	ExpiryYear         int
	Currency           string
	Amount             int64
}
