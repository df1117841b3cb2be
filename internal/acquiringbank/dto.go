package acquiringbank

// AuthorizationRequest is the outbound payload sent to the acquiring bank.
type AuthorizationRequest struct {
	CardNumber string `json:"card_number"`
	ExpiryDate string `json:"expiry_date"`
	Currency   string `json:"currency"`
	Amount     int64  `json:"amount"`
	Cvv        string `json:"cvv"`
}

// AuthorizationResponse is the bank's verdict. The authorization code is
// opaque and passed through without interpretation.
type AuthorizationResponse struct {
	Authorized        bool   `json:"authorized"`
	AuthorizationCode string `json:"authorization_code"`
}
