package payment

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	errors "github.com/frahmantamala/payment-gateway/internal"
	"github.com/frahmantamala/payment-gateway/internal/core/datamodel/payment"
	"github.com/frahmantamala/payment-gateway/internal/transport"
)

type ServiceAPI interface {
	ProcessPayment(ctx context.Context, req *PostPaymentRequest) (*PostPaymentResponse, error)
	GetPayment(id string) (*GetPaymentResponse, error)
}

type Handler struct {
	transport.BaseHandler
	PaymentService ServiceAPI
	ProcessTimeout time.Duration
	Logger         *slog.Logger
}

func NewHandler(paymentService ServiceAPI, processTimeout time.Duration, logger *slog.Logger) *Handler {
	if processTimeout <= 0 {
		processTimeout = 30 * time.Second
	}
	return &Handler{
		PaymentService: paymentService,
		ProcessTimeout: processTimeout,
		Logger:         logger,
	}
}

// CreatePayment handles POST /api/v1/payments
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req PostPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("CreatePayment: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.ProcessTimeout)
	defer cancel()

	resp, err := h.PaymentService.ProcessPayment(ctx, &req)
	if err != nil {
		h.Logger.Error("CreatePayment: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	switch resp.Status {
	case payment.StatusAuthorized:
		h.WriteJSON(w, http.StatusOK, resp)
	case payment.StatusDeclined:
		h.WriteJSON(w, http.StatusUnprocessableEntity, resp)
	default:
		h.WriteJSON(w, http.StatusBadRequest, resp)
	}
}

// GetPayment handles GET /api/v1/payments/{id}
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	resp, err := h.PaymentService.GetPayment(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
