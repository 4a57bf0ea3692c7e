package service

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/partsdesk/storefront/internal/core/domain"
	"github.com/partsdesk/storefront/internal/core/ports"
)

const historyPerPage = 10

// FilterOrders returns the orders matching c, in input order.
//
// Date compares the UTC calendar day of CreatedAt with c.Date (YYYY-MM-DD);
// orders without a timestamp never match a date. Excel orders carry no line
// items, so any client name matches them.
func FilterOrders(orders []domain.HistoricalOrder, c domain.HistoryCriteria) []domain.HistoricalOrder {
	client := normalize(c.ClientName)
	date := strings.TrimSpace(c.Date)

	out := make([]domain.HistoricalOrder, 0, len(orders))
	for _, o := range orders {
		if date != "" {
			if o.CreatedAt.IsZero() || o.CreatedAt.UTC().Format("2006-01-02") != date {
				continue
			}
		}
		if client != "" && !o.IsExcelOrder && !anyClientMatches(o.Cart, client) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func anyClientMatches(items []domain.CartLineItem, client string) bool {
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.ClientName), client) {
			return true
		}
	}
	return false
}

// HistoryService is the admin order history panel.
type HistoryService struct {
	api     ports.OrderAPI
	session *SessionService
	log     zerolog.Logger

	mu       sync.Mutex
	orders   []domain.HistoricalOrder
	criteria domain.HistoryCriteria
	page     int
}

func NewHistoryService(api ports.OrderAPI, session *SessionService, log zerolog.Logger) *HistoryService {
	return &HistoryService{api: api, session: session, log: log, page: 1}
}

// Reload fetches the order history. Failure leaves an empty list.
func (s *HistoryService) Reload(ctx context.Context) (domain.Page[domain.HistoricalOrder], error) {
	if _, err := s.session.Require(ctx, domain.RoleAdmin); err != nil {
		return domain.Page[domain.HistoricalOrder]{}, err
	}

	orders, err := s.api.History(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("order history fetch failed, showing empty history")
		orders = nil
	}

	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()

	return s.Current(), degrade(ctx, s.session, err)
}

// SetCriteria replaces the filter and jumps back to the first page.
func (s *HistoryService) SetCriteria(c domain.HistoryCriteria) domain.Page[domain.HistoricalOrder] {
	s.mu.Lock()
	s.criteria = c
	s.page = 1
	s.mu.Unlock()
	return s.Current()
}

// Criteria returns the active filter.
func (s *HistoryService) Criteria() domain.HistoryCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

// Current returns the current page of the filtered history.
func (s *HistoryService) Current() domain.Page[domain.HistoricalOrder] {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := Paginate(FilterOrders(s.orders, s.criteria), s.page, historyPerPage)
	s.page = p.Page
	return p
}

// GoTo moves to page, clamped to the available range.
func (s *HistoryService) GoTo(page int) domain.Page[domain.HistoricalOrder] {
	s.mu.Lock()
	s.page = page
	s.mu.Unlock()
	return s.Current()
}

// Next advances one page, stopping at the last.
func (s *HistoryService) Next() domain.Page[domain.HistoricalOrder] {
	s.mu.Lock()
	s.page++
	s.mu.Unlock()
	return s.Current()
}

// Prev goes back one page, stopping at the first.
func (s *HistoryService) Prev() domain.Page[domain.HistoricalOrder] {
	s.mu.Lock()
	s.page--
	s.mu.Unlock()
	return s.Current()
}
