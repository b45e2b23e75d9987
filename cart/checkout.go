package cart

import (
	"context"

	"github.com/google/uuid"

	"rental-storefront/api"
	models "rental-storefront/model"
)

// OutcomeKind classifies what happened to one cart item during a
// confirmation run.
type OutcomeKind string

const (
	// OutcomeConfirmed: the backend accepted the sale.
	OutcomeConfirmed OutcomeKind = "confirmed"
	// OutcomeSkipped: the authoritative re-check said the product is
	// no longer available. The item is dropped without a record.
	OutcomeSkipped OutcomeKind = "skipped"
	// OutcomeFailed: the item's calls errored. The item stays in the
	// cart so the user can retry.
	OutcomeFailed OutcomeKind = "failed"
)

// Outcome is the per-item result of a confirmation run.
type Outcome struct {
	ProductID int64
	Kind      OutcomeKind
	Message   string
	Record    *models.RentalRecord
}

// Report aggregates a confirmation run. Partial failure is reported
// here, never as an error from Checkout.
type Report struct {
	Succeeded int
	Skipped   int
	Failed    int
	Outcomes  []Outcome
	Records   []models.RentalRecord
}

// Checkout converts the whole cart into rental records. Items are
// processed sequentially so server-visible ordering stays
// deterministic and error attribution stays per-item.
//
// The only whole-call errors are a missing token and a token the
// backend rejects mid-run; both block every remaining item. Items
// already committed stay committed.
func (r *Reconciler) Checkout(ctx context.Context, token string) (Report, error) {
	return r.confirm(ctx, token, nil)
}

// CheckoutOne is the immediate "rent now" path: it confirms a single
// cart item, leaving the rest of the cart untouched.
func (r *Reconciler) CheckoutOne(ctx context.Context, token string, productID int64) (Report, error) {
	return r.confirm(ctx, token, func(item models.CartItem) bool {
		return item.Product.ID == productID
	})
}

func (r *Reconciler) confirm(ctx context.Context, token string, selected func(models.CartItem) bool) (Report, error) {
	if token == "" {
		return Report{}, ErrNoSession
	}
	report, mutated, err := r.confirmBatch(ctx, token, selected)
	if mutated {
		r.notify()
	}
	return report, err
}

func (r *Reconciler) confirmBatch(ctx context.Context, token string, selected func(models.CartItem) bool) (Report, bool, error) {
	// One confirmation run at a time; the lock also blocks add/remove
	// until the run completes.
	r.mu.Lock()
	defer r.mu.Unlock()

	var report Report
	mutated := false

	batch := make([]models.CartItem, 0, len(r.items))
	for _, item := range r.items {
		if selected == nil || selected(item) {
			batch = append(batch, item)
		}
	}

	for _, item := range batch {
		id := item.Product.ID

		// The cached snapshot is not trusted here; the single-product
		// fetch is the authoritative availability check.
		current, err := r.backend.GetProduct(ctx, token, id)
		if err != nil {
			if api.IsAuthError(err) {
				return report, mutated, err
			}
			report.Failed++
			report.Outcomes = append(report.Outcomes, Outcome{ProductID: id, Kind: OutcomeFailed, Message: err.Error()})
			continue
		}

		if !current.Available() {
			if r.dropLocked(id) {
				mutated = true
			}
			report.Skipped++
			report.Outcomes = append(report.Outcomes, Outcome{ProductID: id, Kind: OutcomeSkipped, Message: "no longer available"})
			continue
		}

		resp, err := r.backend.CreateSale(ctx, token, id, item.Product.Price)
		if err != nil {
			if api.IsAuthError(err) {
				return report, mutated, err
			}
			report.Failed++
			report.Outcomes = append(report.Outcomes, Outcome{ProductID: id, Kind: OutcomeFailed, Message: err.Error()})
			continue
		}

		total := resp.Total
		if total == 0 {
			total = item.Product.Price
		}
		record := models.RentalRecord{
			ID:          uuid.NewString(),
			ProductID:   id,
			BackendID:   resp.ProdutoID,
			Total:       total,
			ConfirmedAt: r.now(),
		}
		r.rentals = append(r.rentals, record)
		if r.dropLocked(id) {
			mutated = true
		}
		report.Succeeded++
		report.Records = append(report.Records, record)
		report.Outcomes = append(report.Outcomes, Outcome{ProductID: id, Kind: OutcomeConfirmed, Record: &record})
	}

	return report, mutated, nil
}

// dropLocked removes the item and persists. A failed persist here is
// deliberately swallowed: the sale side effect already happened and
// the cart will reconcile on the next successful mutation.
func (r *Reconciler) dropLocked(productID int64) bool {
	i := r.indexLocked(productID)
	if i < 0 {
		return false
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	_ = r.persistLocked()
	return true
}
