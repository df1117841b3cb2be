package payment

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	errors "github.com/frahmantamala/payment-gateway/internal"
	"github.com/frahmantamala/payment-gateway/internal/acquiringbank"
	"github.com/frahmantamala/payment-gateway/internal/core/datamodel/payment"
)

// BankClient is the outbound contract to the acquiring bank. A non-nil error
// covers every failure mode: transport, timeout, non-success status and
// undecodable responses.
type BankClient interface {
	Authorize(ctx context.Context, req *acquiringbank.AuthorizationRequest) (*acquiringbank.AuthorizationResponse, error)
}

// PaymentRepository is the persisted-payment lookup store. Callers guarantee
// identifier uniqueness; the store only promises first-match lookup.
type PaymentRepository interface {
	Add(p *payment.Payment) error
	GetByID(id string) (*payment.Payment, error)
}

// PaymentService orchestrates the processing pipeline: validation, the bank
// call, status derivation and persistence. It is the only component with side
// effects beyond memory.
type PaymentService struct {
	bank       BankClient
	repository PaymentRepository
	validator  *PostPaymentValidator
	logger     *slog.Logger
}

func NewPaymentService(bank BankClient, repository PaymentRepository, validator *PostPaymentValidator, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		bank:       bank,
		repository: repository,
		validator:  validator,
		logger:     logger,
	}
}

// ProcessPayment runs a submitted request through the pipeline and returns
// the outcome. Rejected outcomes short-circuit before the bank call and are
// never persisted. Authorized and Declined outcomes are always persisted.
// Only unexpected internal faults are returned as errors.
func (s *PaymentService) ProcessPayment(ctx context.Context, req *PostPaymentRequest) (*PostPaymentResponse, error) {
	if appErr := s.validator.Validate(req); appErr != nil {
		s.logger.Warn("payment request rejected by validation",
			"card_last_four", lastFour(req.CardNumber),
			"violations", appErr.GetDetailedMessage())

		return rejectedResponse(req, appErr), nil
	}

	status := s.authorize(ctx, req)

	entity := &payment.Payment{
		ID:                 uuid.NewString(),
		Status:             status,
		CardNumberLastFour: lastFour(req.CardNumber),
		ExpiryMonth:        req.ExpiryMonth,
		ExpiryYear:         req.ExpiryYear,
		Currency:           req.Currency,
		Amount:             req.Amount,
	}

	if err := s.repository.Add(entity); err != nil {
		s.logger.Error("failed to persist payment", "error", err, "payment_id", entity.ID)
		return nil, errors.NewInternalError("failed to persist payment", err)
	}

	s.logger.Info("payment processed",
		"payment_id", entity.ID,
		"status", entity.Status,
		"currency", entity.Currency,
		"amount", entity.Amount)

	return mapPostPaymentResponse(entity), nil
}

// authorize performs the single bank attempt and collapses every failure mode
// into Declined. Unreachability is indistinguishable from a decline at the API
// boundary: the gateway fails safe toward non-authorization.
func (s *PaymentService) authorize(ctx context.Context, req *PostPaymentRequest) payment.Status {
	bankReq := &acquiringbank.AuthorizationRequest{
		CardNumber: req.CardNumber,
		ExpiryDate: fmt.Sprintf("%02d/%04d", req.ExpiryMonth, req.ExpiryYear),
		Currency:   req.Currency,
		Amount:     req.Amount,
		Cvv:        req.Cvv,
	}

	bankResp, err := s.bank.Authorize(ctx, bankReq)
	if err != nil {
		s.logger.Warn("acquiring bank call failed, declining payment",
			"error", err,
			"card_last_four", lastFour(req.CardNumber))
		return payment.StatusDeclined
	}

	if !bankResp.Authorized {
		return payment.StatusDeclined
	}

	return payment.StatusAuthorized
}

// GetPayment looks up a previously processed payment by identifier.
func (s *PaymentService) GetPayment(id string) (*GetPaymentResponse, error) {
	p, err := s.repository.GetByID(id)
	if err != nil {
		if stderrors.Is(err, payment.ErrNotFound) {
			return nil, errors.ErrPaymentNotFound
		}
		s.logger.Error("failed to load payment", "error", err, "payment_id", id)
		return nil, errors.NewInternalError("failed to load payment", err)
	}

	return &GetPaymentResponse{
		ID:                 p.ID,
		Status:             p.Status,
		CardNumberLastFour: p.CardNumberLastFour,
		ExpiryMonth:        p.ExpiryMonth,
		ExpiryYear:         p.ExpiryYear,
		Currency:           p.Currency,
		Amount:             p.Amount,
	}, nil
}

func rejectedResponse(req *PostPaymentRequest, appErr *errors.AppError) *PostPaymentResponse {
	resp := &PostPaymentResponse{
		Status:             payment.StatusRejected,
		CardNumberLastFour: lastFour(req.CardNumber),
		ExpiryMonth:        req.ExpiryMonth,
		ExpiryYear:         req.ExpiryYear,
		Currency:           req.Currency,
		Amount:             req.Amount,
	}

	if details, ok := appErr.Details.(errors.ValidationErrors); ok {
		resp.ErrorMessages = details.Messages()
	}

	return resp
}

func mapPostPaymentResponse(p *payment.Payment) *PostPaymentResponse {
	return &PostPaymentResponse{
		ID:                 p.ID,
		Status:             p.Status,
		CardNumberLastFour: p.CardNumberLastFour,
		ExpiryMonth:        p.ExpiryMonth,
		ExpiryYear:         p.ExpiryYear,
		Currency:           p.Currency,
		Amount:             p.Amount,
	}
}
