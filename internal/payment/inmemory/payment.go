package inmemory

import (
	"sync"

	"github.com/frahmantamala/payment-gateway/internal/core/datamodel/payment"
)

// PaymentRepository keeps processed payments for the lifetime of the process.
// Records are append-only: no update, no delete. Lookup scans in insertion
// order, so a duplicate identifier (which correct callers never produce)
// resolves to the first inserted record.
type PaymentRepository struct {
	mu       sync.RWMutex
	payments []payment.Payment
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		payments: make([]payment.Payment, 0),
	}
}

// Add stores a copy of the payment. Uniqueness of identifiers is the caller's
// guarantee, not the store's.
func (r *PaymentRepository) Add(p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.payments = append(r.payments, *p)
	return nil
}

// GetByID returns a copy of the first payment matching the identifier, or
// payment.ErrNotFound when nothing matches.
func (r *PaymentRepository) GetByID(id string) (*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.payments {
		if r.payments[i].ID == id {
			found := r.payments[i]
			return &found, nil
		}
	}

	return nil, payment.ErrNotFound
}
