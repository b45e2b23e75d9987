// Package cart maintains the locally persisted selection of items
// pending rental and guarantees a rental is never confirmed for an
// item whose availability changed since selection.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"rental-storefront/api"
	models "rental-storefront/model"
	"rental-storefront/store"
)

var (
	// ErrDuplicateInCart signals the product is already selected. An
	// expected race, not a defect; callers match it and move on.
	ErrDuplicateInCart = errors.New("already in cart")

	// ErrUnavailable signals the product's cached status is not
	// available.
	ErrUnavailable = errors.New("product not available")

	// ErrNoSession blocks a whole checkout run: there is no token to
	// authenticate any item with.
	ErrNoSession = errors.New("no active session")
)

// Backend is the slice of the API client the confirmation flow needs.
type Backend interface {
	GetProduct(ctx context.Context, token string, id int64) (models.Product, error)
	CreateSale(ctx context.Context, token string, productID int64, price float64) (api.SaleResponse, error)
}

// Reconciler owns the cart. All operations run to completion under one
// lock, so a checkout never overlaps another mutation of the same cart.
type Reconciler struct {
	mu      sync.Mutex
	store   store.Store
	backend Backend
	items   []models.CartItem
	rentals []models.RentalRecord
	subs    []func()

	now func() time.Time
}

// NewReconciler hydrates the cart from storage. A corrupt persisted
// cart starts empty rather than wedging the storefront.
func NewReconciler(st store.Store, backend Backend) (*Reconciler, error) {
	r := &Reconciler{store: st, backend: backend, now: time.Now}
	raw, ok, err := st.Get(store.KeyCart)
	if err != nil {
		return nil, fmt.Errorf("hydrate cart: %w", err)
	}
	if ok && len(raw) > 0 {
		if err := json.Unmarshal(raw, &r.items); err != nil {
			r.items = nil
		}
	}
	return r, nil
}

// Subscribe registers fn to run after every cart mutation. Callbacks
// run outside the reconciler's lock.
func (r *Reconciler) Subscribe(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, fn)
}

// Add snapshots the product into the cart. The snapshot is what gets
// priced at checkout; the live status is re-checked there.
func (r *Reconciler) Add(p models.Product) error {
	r.mu.Lock()
	if r.indexLocked(p.ID) >= 0 {
		r.mu.Unlock()
		return ErrDuplicateInCart
	}
	if !p.Available() {
		r.mu.Unlock()
		return ErrUnavailable
	}
	r.items = append(r.items, models.CartItem{Product: p, AddedAt: r.now()})
	if err := r.persistLocked(); err != nil {
		r.items = r.items[:len(r.items)-1]
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	r.notify()
	return nil
}

// Remove drops the product from the cart. A no-op when absent.
func (r *Reconciler) Remove(productID int64) error {
	r.mu.Lock()
	i := r.indexLocked(productID)
	if i < 0 {
		r.mu.Unlock()
		return nil
	}
	removed := r.items[i]
	r.items = append(r.items[:i], r.items[i+1:]...)
	if err := r.persistLocked(); err != nil {
		r.items = append(r.items[:i], append([]models.CartItem{removed}, r.items[i:]...)...)
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	r.notify()
	return nil
}

// Items returns the cart in insertion order.
func (r *Reconciler) Items() []models.CartItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.CartItem, len(r.items))
	copy(out, r.items)
	return out
}

// Total sums the snapshot prices; 0 for an empty cart.
func (r *Reconciler) Total() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total float64
	for _, item := range r.items {
		total += item.Product.Price
	}
	return total
}

// Rentals returns the records committed during this session, oldest
// first. They are deliberately not persisted across restarts.
func (r *Reconciler) Rentals() []models.RentalRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.RentalRecord, len(r.rentals))
	copy(out, r.rentals)
	return out
}

func (r *Reconciler) indexLocked(productID int64) int {
	for i, item := range r.items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

// persistLocked writes the cart through to storage. The in-memory cart
// and the persisted cart are identical after every returned operation.
func (r *Reconciler) persistLocked() error {
	raw, err := json.Marshal(r.items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.store.Set(store.KeyCart, raw); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

func (r *Reconciler) notify() {
	r.mu.Lock()
	subs := make([]func(), len(r.subs))
	copy(subs, r.subs)
	r.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
