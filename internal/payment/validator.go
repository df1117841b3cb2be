package payment

import (
	"time"

	errors "github.com/frahmantamala/payment-gateway/internal"
	"github.com/frahmantamala/payment-gateway/internal/core/common/validation"
)

// PostPaymentValidator checks a payment request against the acceptance rules.
// The clock is injected so expiry checks are deterministic under test, and the
// accepted currency codes come from configuration rather than being baked in.
type PostPaymentValidator struct {
	now        func() time.Time
	currencies []string
}

func NewPostPaymentValidator(now func() time.Time, currencies []string) *PostPaymentValidator {
	return &PostPaymentValidator{
		now:        now,
		currencies: currencies,
	}
}

// Validate evaluates every rule and reports every violation, not just the
// first. A nil result means the request is acceptable.
func (v *PostPaymentValidator) Validate(req *PostPaymentRequest) *errors.AppError {
	validator := validation.NewValidator()

	validator.Field("cardNumber", req.CardNumber).
		Required("The card number is required.", errors.ErrCodeInvalidCard).
		LengthBetween(14, 19, "The card number must be between 14 and 19 characters in length.", errors.ErrCodeInvalidCard).
		Digits("The card number must only contain numeric characters.", errors.ErrCodeInvalidCard)

	validator.Field("expiryMonth", req.ExpiryMonth).
		IntBetween(1, 12, "Expiry month must be between 1-12.", errors.ErrCodeInvalidExpiry)

	expiryMonth, expiryYear := req.ExpiryMonth, req.ExpiryYear
	validator.Field("expiry", nil).Custom(func(interface{}) *errors.AppError {
		if !v.expiryInFuture(expiryMonth, expiryYear) {
			return errors.NewValidationFieldError("expiry",
				"The expiry month/year combination must be in the future.", errors.ErrCodeInvalidExpiry)
		}
		return nil
	})

	validator.Field("currency", req.Currency).
		LengthBetween(3, 3, "The currency code must be exactly 3 characters.", errors.ErrCodeInvalidCurrency).
		OneOfFold(v.currencies, "The currency code is not a valid ISO currency code.", errors.ErrCodeInvalidCurrency)

	validator.Field("amount", req.Amount).
		GreaterThan(0, "The amount must be greater than zero.", errors.ErrCodeInvalidAmount)

	validator.Field("cvv", req.Cvv).
		Required("The CVV is required.", errors.ErrCodeInvalidCVV).
		LengthBetween(3, 4, "The CVV must be between 3 and 4 characters in length.", errors.ErrCodeInvalidCVV).
		Digits("The CVV must only contain numeric characters.", errors.ErrCodeInvalidCVV)

	return validator.Validate()
}

// expiryInFuture reports whether the first day of the expiry month falls
// strictly after the first day of the current month. The current month itself
// is not valid. A month/year pair that cannot form a calendar date fails the
// rule outright.
func (v *PostPaymentValidator) expiryInFuture(month, year int) bool {
	if month < 1 || month > 12 || year < 1 || year > 9999 {
		return false
	}

	now := v.now().UTC()
	expiry := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	return expiry.After(currentMonth)
}
