package payment

import (
	"github.com/frahmantamala/payment-gateway/internal/core/datamodel/payment"
)

// PostPaymentRequest is the payload submitted by a merchant to authorize a
// card payment. It is transient: the full card number and CVV are never
// persisted or logged.
type PostPaymentRequest struct {
	CardNumber  string `json:"cardNumber"`
	ExpiryMonth int    `json:"expiryMonth"`
	ExpiryYear  int    `json:"expiryYear"`
	Currency    string `json:"currency"`
	Amount      int64  `json:"amount"`
	Cvv         string `json:"cvv"`
}

// PostPaymentResponse is the outcome of a processed payment. Rejected
// outcomes carry no identifier because nothing was persisted, and carry the
// full set of violated rules instead.
type PostPaymentResponse struct {
	ID                 string         `json:"id,omitempty"`
	Status             payment.Status `json:"status"`
	CardNumberLastFour string         `json:"cardNumberLastFour"`
	ExpiryMonth        int            `json:"expiryMonth"`
	ExpiryYear         int            `json:"expiryYear"`
	Currency           string         `json:"currency"`
	Amount             int64          `json:"amount"`
	ErrorMessages      []string       `json:"errorMessages,omitempty"`
}

// GetPaymentResponse is the masked view of a previously processed payment.
type GetPaymentResponse struct {
	ID                 string         `json:"id"`
	Status             payment.Status `json:"status"`
	CardNumberLastFour string         `json:"cardNumberLastFour"`
	ExpiryMonth        int            `json:"expiryMonth"`
	ExpiryYear         int            `json:"expiryYear"`
	Currency           string         `json:"currency"`
	Amount             int64          `json:"amount"`
}

// lastFour returns the trailing four characters of a card number, or the
// whole string when it is shorter than four characters.
func lastFour(cardNumber string) string {
	if len(cardNumber) <= 4 {
		return cardNumber
	}
	return cardNumber[len(cardNumber)-4:]
}
