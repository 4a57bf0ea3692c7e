package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/partsdesk/storefront/internal/core/domain"
	"github.com/partsdesk/storefront/internal/core/ports"
)

const (
	initialPageSize = 20
	pageIncrement   = 20
	persistTimeout  = 2 * time.Second
)

// FilterProducts returns the products matching every non-empty criterion.
// Matching is a trimmed, case-insensitive substring test; input order is kept.
func FilterProducts(products []domain.Product, c domain.Criteria) []domain.Product {
	partNo := normalize(c.PartNumber)
	partName := normalize(c.PartName)
	hsn := normalize(c.HSNCode)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !contains(p.PartNumber, partNo) || !contains(p.PartName, partName) || !contains(p.HSNCode, hsn) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Page returns the first size elements of list.
func Page[T any](list []T, size int) []T {
	if size < 0 {
		size = 0
	}
	if size > len(list) {
		size = len(list)
	}
	return list[:size]
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func contains(field, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(field), needle)
}

// Pager tracks the visible prefix size of an incrementally loaded list.
// A load-more request schedules one increment after a settle delay; requests
// arriving while it is pending are dropped.
type Pager struct {
	delay time.Duration
	after func(time.Duration, func())

	mu      sync.Mutex
	size    int
	pending bool
}

func NewPager(delay time.Duration) *Pager {
	return &Pager{
		delay: delay,
		after: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		size:  initialPageSize,
	}
}

// Size is the current prefix length.
func (p *Pager) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

// Pending reports whether an increment is scheduled but not applied yet.
func (p *Pager) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// LoadMore schedules a single increment of the page size. It returns false
// when the request was coalesced into a pending increment or when every one
// of total elements is already visible.
func (p *Pager) LoadMore(total int) bool {
	p.mu.Lock()
	if p.pending || p.size >= total {
		p.mu.Unlock()
		return false
	}
	p.pending = true
	p.mu.Unlock()

	if p.delay <= 0 {
		p.apply()
		return true
	}
	p.after(p.delay, p.apply)
	return true
}

// Reset returns the pager to its initial size and cancels interest in any
// pending increment.
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.size = initialPageSize
	p.pending = false
}

func (p *Pager) apply() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.pending {
		return
	}
	p.size += pageIncrement
	p.pending = false
}

// CatalogView is the visible state of the product list.
type CatalogView struct {
	Criteria domain.Criteria  `json:"criteria"`
	Items    []domain.Product `json:"items"`
	Matched  int              `json:"matched"`
	Total    int              `json:"total"`
	PageSize int              `json:"page_size"`
	HasMore  bool             `json:"has_more"`
	Loading  bool             `json:"loading"`
}

// CatalogService holds the fetched catalog, the active filter criteria and
// the load-more pager.
type CatalogService struct {
	api      ports.CatalogAPI
	store    ports.StateStore
	session  *SessionService
	debounce *Debouncer
	pager    *Pager
	log      zerolog.Logger

	mu       sync.Mutex
	products []domain.Product
	criteria domain.Criteria
	loaded   bool
}

func NewCatalogService(api ports.CatalogAPI, store ports.StateStore, session *SessionService, filterDebounce, loadMoreDelay time.Duration, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		api:      api,
		store:    store,
		session:  session,
		debounce: NewDebouncer(filterDebounce),
		pager:    NewPager(loadMoreDelay),
		log:      log,
	}
}

// RestoreCriteria loads persisted filter criteria. A missing or corrupt
// record leaves the criteria empty.
func (s *CatalogService) RestoreCriteria(ctx context.Context) domain.Criteria {
	raw, ok, err := s.store.Get(ctx, ports.KeyFilters)
	if err != nil {
		s.log.Warn().Err(err).Msg("filter restore failed")
		return domain.Criteria{}
	}
	if !ok {
		return domain.Criteria{}
	}
	var c domain.Criteria
	if err := json.Unmarshal(raw, &c); err != nil {
		s.log.Warn().Err(err).Msg("persisted filters corrupt, ignoring")
		return domain.Criteria{}
	}

	s.mu.Lock()
	s.criteria = c
	s.mu.Unlock()
	return c
}

// Reload fetches the catalog. A failed fetch leaves an empty catalog; only a
// rejected session is reported back.
func (s *CatalogService) Reload(ctx context.Context) error {
	if _, err := s.session.Current(ctx); err != nil {
		return err
	}

	products, err := s.api.ListProducts(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("catalog fetch failed, showing empty catalog")
		products = nil
	}

	s.mu.Lock()
	s.products = products
	s.loaded = err == nil
	s.mu.Unlock()

	return degrade(ctx, s.session, err)
}

// EnsureLoaded fetches the catalog unless a fetch has already succeeded.
func (s *CatalogService) EnsureLoaded(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if loaded {
		return nil
	}
	return s.Reload(ctx)
}

// SetCriteria replaces the filter criteria. Persistence happens once the
// criteria stop changing for the debounce window. The page size is kept.
func (s *CatalogService) SetCriteria(c domain.Criteria) CatalogView {
	s.mu.Lock()
	s.criteria = c
	s.mu.Unlock()

	s.debounce.Trigger(func() { s.persistCriteria(c) })
	return s.Visible()
}

// Criteria returns the active filter criteria.
func (s *CatalogService) Criteria() domain.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

// Visible returns the current page of the filtered catalog.
func (s *CatalogService) Visible() CatalogView {
	s.mu.Lock()
	products := s.products
	c := s.criteria
	s.mu.Unlock()

	filtered := FilterProducts(products, c)
	size := s.pager.Size()
	return CatalogView{
		Criteria: c,
		Items:    Page(filtered, size),
		Matched:  len(filtered),
		Total:    len(products),
		PageSize: size,
		HasMore:  size < len(filtered),
		Loading:  s.pager.Pending(),
	}
}

// LoadMore requests the next page. See Pager.LoadMore.
func (s *CatalogService) LoadMore() bool {
	s.mu.Lock()
	matched := len(FilterProducts(s.products, s.criteria))
	s.mu.Unlock()
	return s.pager.LoadMore(matched)
}

// Flush writes pending criteria immediately. Called on shutdown.
func (s *CatalogService) Flush() {
	s.debounce.Flush()
}

func (s *CatalogService) persistCriteria(c domain.Criteria) {
	raw, err := json.Marshal(c)
	if err != nil {
		s.log.Error().Err(err).Msg("encode filters")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.store.Put(ctx, ports.KeyFilters, raw); err != nil {
		s.log.Error().Err(err).Msg("persist filters failed")
	}
}
