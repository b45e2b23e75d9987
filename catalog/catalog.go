// Package catalog holds the most recently fetched snapshot of rentable
// items. The snapshot is allowed to go stale; availability is settled
// authoritatively at confirmation time, not here.
package catalog

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	models "rental-storefront/model"
)

// Fetcher is the slice of the API client the cache needs.
type Fetcher interface {
	ListProducts(ctx context.Context, token string) ([]models.Product, error)
}

// Filter narrows a List call. Zero values leave that dimension
// unfiltered.
type Filter struct {
	Status     models.Status
	SearchTerm string
}

// Cache is the client-side catalog snapshot.
type Cache struct {
	mu        sync.RWMutex
	client    Fetcher
	baseURL   string
	products  []models.Product
	fetchedAt time.Time
}

// NewCache builds an empty cache. baseURL is used to rewrite relative
// image references into fetchable URLs.
func NewCache(client Fetcher, baseURL string) *Cache {
	return &Cache{client: client, baseURL: baseURL}
}

// Refresh replaces the snapshot wholesale. There is no incremental
// merge: staleness is tolerated and resolved later, so the last full
// listing always wins.
func (c *Cache) Refresh(ctx context.Context, token string) error {
	products, err := c.client.ListProducts(ctx, token)
	if err != nil {
		return err
	}
	for i := range products {
		products[i].ImageURL = models.NormalizeImageURL(products[i].ImageURL, c.baseURL)
	}

	c.mu.Lock()
	c.products = products
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return nil
}

// List returns a filtered view of the snapshot. Never touches the
// network. The search term matches case-insensitively against
// category, colors and the id rendered as a string.
func (c *Cache) List(f Filter) []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(f.SearchTerm))
	out := make([]models.Product, 0, len(c.products))
	for _, p := range c.products {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if term != "" && !matches(p, term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Get looks one product up in the snapshot.
func (c *Cache) Get(id int64) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// Counts tallies the snapshot per status, for the dashboard stats row.
func (c *Cache) Counts() map[models.Status]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	counts := map[models.Status]int{}
	for _, p := range c.products {
		counts[p.Status]++
	}
	return counts
}

// FetchedAt reports when the snapshot was last replaced; zero if never.
func (c *Cache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

func matches(p models.Product, term string) bool {
	return strings.Contains(strings.ToLower(p.Category), term) ||
		strings.Contains(strings.ToLower(p.Colors), term) ||
		strings.Contains(strconv.FormatInt(p.ID, 10), term)
}
