package services_test

import (
	"context"
	"errors"
	"sync"

	"github.com/shoplens/smart-product-advisor/internal/domain/entities"
	"github.com/shoplens/smart-product-advisor/internal/domain/repositories"
)

// fakeCache is an in-memory CacheProvider that records TTLs and can be
// made to fail on demand.
type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]int
	failGet bool
	failSet bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		data: make(map[string][]byte),
		ttls: make(map[string]int),
	}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, errors.New("cache unavailable")
	}
	data, ok := c.data[key]
	if !ok {
		return nil, errors.New("key not found")
	}
	return data, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSet {
		return errors.New("cache unavailable")
	}
	c.data[key] = value
	c.ttls[key] = expirationSeconds
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	delete(c.ttls, key)
	return nil
}

func (c *fakeCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return false, errors.New("cache unavailable")
	}
	_, ok := c.data[key]
	return ok, nil
}

// fakeProcessor returns a canned intent or error and counts calls
type fakeProcessor struct {
	intent *entities.ProcessedQuery
	err    error
	calls  int
}

func (p *fakeProcessor) ProcessQuery(ctx context.Context, query string) (*entities.ProcessedQuery, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.intent, nil
}

// fakeProductRepo serves a fixed result and records the criteria and
// filters it was called with
type fakeProductRepo struct {
	result       *repositories.SearchResult
	err          error
	lastCriteria repositories.SearchCriteria
	lastFilters  repositories.SearchFilters
	searchCalls  int
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id string) (*entities.Product, error) {
	for _, p := range r.result.Products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeProductRepo) List(ctx context.Context, page, limit int) (*repositories.SearchResult, error) {
	return r.result, r.err
}

func (r *fakeProductRepo) SearchWithFilters(ctx context.Context, criteria repositories.SearchCriteria, filters repositories.SearchFilters) (*repositories.SearchResult, error) {
	r.searchCalls++
	r.lastCriteria = criteria
	r.lastFilters = filters
	return r.result, r.err
}

func (r *fakeProductRepo) Categories(ctx context.Context) ([]string, error) { return nil, nil }
func (r *fakeProductRepo) Brands(ctx context.Context) ([]string, error)    { return nil, nil }
func (r *fakeProductRepo) Create(ctx context.Context, product *entities.Product) error {
	return nil
}
func (r *fakeProductRepo) Update(ctx context.Context, product *entities.Product) error {
	return nil
}
func (r *fakeProductRepo) Delete(ctx context.Context, id string) error { return nil }
