package payment_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internalerrors "github.com/frahmantamala/payment-gateway/internal"
	"github.com/frahmantamala/payment-gateway/internal/acquiringbank"
	"github.com/frahmantamala/payment-gateway/internal/core/datamodel/payment"
	paymentpkg "github.com/frahmantamala/payment-gateway/internal/payment"
)

// Mock repository for testing
type mockPaymentRepository struct {
	payments []payment.Payment
	addError error
	getError error
	addCalls int
}

func (m *mockPaymentRepository) Add(p *payment.Payment) error {
	m.addCalls++
	if m.addError != nil {
		return m.addError
	}
	m.payments = append(m.payments, *p)
	return nil
}

func (m *mockPaymentRepository) GetByID(id string) (*payment.Payment, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	for i := range m.payments {
		if m.payments[i].ID == id {
			found := m.payments[i]
			return &found, nil
		}
	}
	return nil, payment.ErrNotFound
}

var _ = Describe("PaymentService", func() {
	var (
		paymentService *paymentpkg.PaymentService
		mockRepo       *mockPaymentRepository
		bankServer     *httptest.Server
		bankCalls      atomic.Int64
		bankAuthorized bool
		logger         *slog.Logger
	)

	now := func() time.Time {
		return time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	}

	validRequest := func() *paymentpkg.PostPaymentRequest {
		return &paymentpkg.PostPaymentRequest{
			CardNumber:  "4444333322221111",
			ExpiryMonth: 1,
			ExpiryYear:  2028,
			Currency:    "GBP",
			Amount:      100,
			Cvv:         "123",
		}
	}

	newService := func(bankURL string) *paymentpkg.PaymentService {
		bankClient := acquiringbank.NewClient(acquiringbank.Config{
			BaseURL: bankURL,
			Timeout: 2 * time.Second,
		}, logger)
		validator := paymentpkg.NewPostPaymentValidator(now, []string{"USD", "EUR", "GBP"})
		return paymentpkg.NewPaymentService(bankClient, mockRepo, validator, logger)
	}

	BeforeEach(func() {
		mockRepo = &mockPaymentRepository{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bankCalls.Store(0)
		bankAuthorized = true

		bankServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bankCalls.Add(1)
			response := acquiringbank.AuthorizationResponse{
				Authorized:        bankAuthorized,
				AuthorizationCode: "auth-code-1",
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(response)
		}))

		paymentService = newService(bankServer.URL)
	})

	AfterEach(func() {
		bankServer.Close()
	})

	Describe("ProcessPayment", func() {
		Context("when the bank authorizes the payment", func() {
			It("should return an authorized outcome with a minted identifier", func() {
				resp, err := paymentService.ProcessPayment(context.Background(), validRequest())

				Expect(err).ToNot(HaveOccurred())
				Expect(resp.Status).To(Equal(payment.StatusAuthorized))
				Expect(resp.ID).ToNot(BeEmpty())
				Expect(resp.CardNumberLastFour).To(Equal("1111"))
				Expect(resp.Currency).To(Equal("GBP"))
				Expect(resp.Amount).To(Equal(int64(100)))
				Expect(resp.ErrorMessages).To(BeEmpty())
			})

			It("should persist the payment retrievable by its identifier", func() {
				resp, err := paymentService.ProcessPayment(context.Background(), validRequest())
				Expect(err).ToNot(HaveOccurred())

				stored, err := paymentService.GetPayment(resp.ID)
				Expect(err).ToNot(HaveOccurred())
				Expect(stored.ID).To(Equal(resp.ID))
				Expect(stored.Status).To(Equal(payment.StatusAuthorized))
				Expect(stored.CardNumberLastFour).To(Equal("1111"))
				Expect(stored.ExpiryMonth).To(Equal(1))
				Expect(stored.ExpiryYear).To(Equal(2028))
			})

			It("should mint a fresh identifier per payment", func() {
				first, err := paymentService.ProcessPayment(context.Background(), validRequest())
				Expect(err).ToNot(HaveOccurred())
				second, err := paymentService.ProcessPayment(context.Background(), validRequest())
				Expect(err).ToNot(HaveOccurred())

				Expect(first.ID).ToNot(Equal(second.ID))
			})
		})

		Context("when the bank does not authorize the payment", func() {
			BeforeEach(func() {
				bankAuthorized = false
			})

			It("should return a declined outcome that is still persisted", func() {
				resp, err := paymentService.ProcessPayment(context.Background(), validRequest())

				Expect(err).ToNot(HaveOccurred())
				Expect(resp.Status).To(Equal(payment.StatusDeclined))
				Expect(resp.ID).ToNot(BeEmpty())

				stored, err := paymentService.GetPayment(resp.ID)
				Expect(err).ToNot(HaveOccurred())
				Expect(stored.Status).To(Equal(payment.StatusDeclined))
			})
		})

		Context("when the bank returns a non-success status", func() {
			BeforeEach(func() {
				bankServer.Close()
				bankServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusServiceUnavailable)
				}))
				paymentService = newService(bankServer.URL)
			})

			It("should collapse the failure into a persisted declined outcome", func() {
				resp, err := paymentService.ProcessPayment(context.Background(), validRequest())

				Expect(err).ToNot(HaveOccurred())
				Expect(resp.Status).To(Equal(payment.StatusDeclined))

				stored, err := paymentService.GetPayment(resp.ID)
				Expect(err).ToNot(HaveOccurred())
				Expect(stored.Status).To(Equal(payment.StatusDeclined))
			})
		})

		Context("when the bank response cannot be decoded", func() {
			BeforeEach(func() {
				bankServer.Close()
				bankServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte("not json"))
				}))
				paymentService = newService(bankServer.URL)
			})

			It("should decline the payment", func() {
				resp, err := paymentService.ProcessPayment(context.Background(), validRequest())

				Expect(err).ToNot(HaveOccurred())
				Expect(resp.Status).To(Equal(payment.StatusDeclined))
			})
		})

		Context("when the bank is unreachable", func() {
			BeforeEach(func() {
				unreachable := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
				unreachable.Close()
				paymentService = newService(unreachable.URL)
			})

			It("should decline the payment and still persist it", func() {
				resp, err := paymentService.ProcessPayment(context.Background(), validRequest())

				Expect(err).ToNot(HaveOccurred())
				Expect(resp.Status).To(Equal(payment.StatusDeclined))

				stored, err := paymentService.GetPayment(resp.ID)
				Expect(err).ToNot(HaveOccurred())
				Expect(stored.Status).To(Equal(payment.StatusDeclined))
			})
		})

		Context("when the caller cancels while the bank call is in flight", func() {
			BeforeEach(func() {
				bankServer.Close()
				bankServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					// Drain the body so the server starts its background read;
					// otherwise it never notices the client disconnect and the
					// request context is never canceled, deadlocking Close.
					io.Copy(io.Discard, r.Body)
					<-r.Context().Done()
				}))
				paymentService = newService(bankServer.URL)
			})

			It("should fail fast with a declined outcome instead of hanging", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
				defer cancel()

				start := time.Now()
				resp, err := paymentService.ProcessPayment(ctx, validRequest())

				Expect(err).ToNot(HaveOccurred())
				Expect(resp.Status).To(Equal(payment.StatusDeclined))
				Expect(time.Since(start)).To(BeNumerically("<", time.Second))
			})
		})

		Context("when the request fails validation", func() {
			It("should reject without contacting the bank or the store", func() {
				req := validRequest()
				req.Currency = "ABC"

				resp, err := paymentService.ProcessPayment(context.Background(), req)

				Expect(err).ToNot(HaveOccurred())
				Expect(resp.Status).To(Equal(payment.StatusRejected))
				Expect(resp.ID).To(BeEmpty())
				Expect(resp.ErrorMessages).To(ContainElement("The currency code is not a valid ISO currency code."))
				Expect(bankCalls.Load()).To(Equal(int64(0)))
				Expect(mockRepo.addCalls).To(Equal(0))
			})

			It("should report a month-range violation for expiry month 13 without a store write", func() {
				req := validRequest()
				req.ExpiryMonth = 13

				resp, err := paymentService.ProcessPayment(context.Background(), req)

				Expect(err).ToNot(HaveOccurred())
				Expect(resp.Status).To(Equal(payment.StatusRejected))
				Expect(resp.ErrorMessages).To(ContainElement("Expiry month must be between 1-12."))
				Expect(mockRepo.addCalls).To(Equal(0))
			})

			It("should echo the masked card data on the rejected outcome", func() {
				req := validRequest()
				req.Amount = 0

				resp, err := paymentService.ProcessPayment(context.Background(), req)

				Expect(err).ToNot(HaveOccurred())
				Expect(resp.CardNumberLastFour).To(Equal("1111"))
				Expect(resp.ExpiryMonth).To(Equal(1))
				Expect(resp.ExpiryYear).To(Equal(2028))
				Expect(resp.Currency).To(Equal("GBP"))
			})
		})

		Context("when persistence fails unexpectedly", func() {
			BeforeEach(func() {
				mockRepo.addError = errors.New("store corrupted")
			})

			It("should surface an internal fault instead of an outcome", func() {
				resp, err := paymentService.ProcessPayment(context.Background(), validRequest())

				Expect(resp).To(BeNil())
				Expect(err).To(HaveOccurred())
				appErr, ok := internalerrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(internalerrors.ErrorTypeInternal))
			})
		})
	})

	Describe("GetPayment", func() {
		Context("when no payment matches the identifier", func() {
			It("should return the not-found error", func() {
				resp, err := paymentService.GetPayment("missing-id")

				Expect(resp).To(BeNil())
				Expect(err).To(Equal(internalerrors.ErrPaymentNotFound))
			})
		})

		Context("when lookup fails unexpectedly", func() {
			BeforeEach(func() {
				mockRepo.getError = errors.New("store corrupted")
			})

			It("should surface an internal fault", func() {
				resp, err := paymentService.GetPayment("any-id")

				Expect(resp).To(BeNil())
				appErr, ok := internalerrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(internalerrors.ErrorTypeInternal))
			})
		})

		Context("when the payment exists", func() {
			It("should return identical field values on repeated lookups", func() {
				resp, err := paymentService.ProcessPayment(context.Background(), validRequest())
				Expect(err).ToNot(HaveOccurred())

				first, err := paymentService.GetPayment(resp.ID)
				Expect(err).ToNot(HaveOccurred())
				second, err := paymentService.GetPayment(resp.ID)
				Expect(err).ToNot(HaveOccurred())

				Expect(first).To(Equal(second))
			})
		})
	})
})
