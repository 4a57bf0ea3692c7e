package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/partsdesk/storefront/internal/core/domain"
	"github.com/partsdesk/storefront/internal/core/ports"
)

// GrandTotal sums the line totals of items. An empty cart totals 0.
func GrandTotal(items []domain.CartLineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Total
	}
	return sum
}

// CartService mirrors the server-side cart of the active session. Every
// mutation is confirmed remotely before the mirror changes.
type CartService struct {
	api      ports.CartAPI
	session  *SessionService
	serial   ports.Serializer // optional
	notifier ports.Notifier   // optional
	log      zerolog.Logger

	mu    sync.Mutex
	items []domain.CartLineItem
}

func NewCartService(api ports.CartAPI, session *SessionService, serial ports.Serializer, notifier ports.Notifier, log zerolog.Logger) *CartService {
	return &CartService{
		api:      api,
		session:  session,
		serial:   serial,
		notifier: notifier,
		log:      log,
	}
}

// Refresh replaces the mirror with the server cart of the session's client.
// A failed fetch leaves the mirror empty.
func (s *CartService) Refresh(ctx context.Context) ([]domain.CartLineItem, error) {
	sess, err := s.session.Current(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.api.ListItems(ctx, sess.ClientName())
	if err != nil {
		s.log.Warn().Err(err).Str("client", sess.ClientName()).Msg("cart fetch failed, showing empty cart")
		items = nil
	}

	s.mu.Lock()
	s.items = append([]domain.CartLineItem(nil), items...)
	s.mu.Unlock()

	return s.Items(), degrade(ctx, s.session, err)
}

// AddItem adds quantity units of product and records the server-confirmed
// line. A backend that merges repeated adds of a part answers with the
// existing line, which replaces its copy in the mirror.
func (s *CartService) AddItem(ctx context.Context, product domain.Product, quantity int) (*domain.CartLineItem, error) {
	if quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "Please enter a valid quantity")
	}
	sess, err := s.session.Current(ctx)
	if err != nil {
		return nil, err
	}

	item, err := s.api.AddItem(ctx, ports.AddItemInput{
		Product:    product,
		ClientName: sess.ClientName(),
		Quantity:   quantity,
	})
	if err != nil {
		s.log.Error().Err(err).Str("part_number", product.PartNumber).Int("quantity", quantity).Msg("add to cart failed")
		return nil, s.session.Invalidate(ctx, fmt.Errorf("add item: %w", err))
	}

	confirmed := item.WithQuantity(item.Quantity)
	s.upsert(confirmed)

	s.log.Info().Str("item_id", confirmed.ID).Str("part_number", confirmed.PartNumber).Int("quantity", confirmed.Quantity).Msg("item added to cart")
	if s.notifier != nil {
		s.notifier.Notify("Item added", fmt.Sprintf("%s x%d added to your cart", confirmed.PartName, confirmed.Quantity))
	}
	return &confirmed, nil
}

// UpdateQuantity sets the quantity of itemID. Quantities below 1 are ignored
// and the unchanged item is returned.
func (s *CartService) UpdateQuantity(ctx context.Context, itemID string, quantity int) (*domain.CartLineItem, error) {
	current, ok := s.find(itemID)
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	if quantity < 1 {
		return &current, nil
	}
	if _, err := s.session.Current(ctx); err != nil {
		return nil, err
	}

	var updated domain.CartLineItem
	err := s.run(ctx, itemID, func(ctx context.Context) error {
		if err := s.api.UpdateQuantity(ctx, itemID, quantity); err != nil {
			return err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := range s.items {
			if s.items[i].ID == itemID {
				s.items[i] = s.items[i].WithQuantity(quantity)
				updated = s.items[i]
				return nil
			}
		}
		return domain.ErrItemNotFound
	})
	if err != nil {
		s.log.Error().Err(err).Str("item_id", itemID).Int("quantity", quantity).Msg("quantity update failed")
		return nil, s.session.Invalidate(ctx, fmt.Errorf("update quantity: %w", err))
	}

	s.log.Info().Str("item_id", itemID).Int("quantity", quantity).Msg("cart quantity updated")
	return &updated, nil
}

// RemoveItem deletes itemID remotely, then drops it from the mirror.
func (s *CartService) RemoveItem(ctx context.Context, itemID string) error {
	if _, ok := s.find(itemID); !ok {
		return domain.ErrItemNotFound
	}
	if _, err := s.session.Current(ctx); err != nil {
		return err
	}

	err := s.run(ctx, itemID, func(ctx context.Context) error {
		if err := s.api.DeleteItem(ctx, itemID); err != nil {
			return err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := range s.items {
			if s.items[i].ID == itemID {
				s.items = append(s.items[:i], s.items[i+1:]...)
				break
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Str("item_id", itemID).Msg("remove from cart failed")
		return s.session.Invalidate(ctx, fmt.Errorf("remove item: %w", err))
	}

	s.log.Info().Str("item_id", itemID).Msg("item removed from cart")
	return nil
}

// Items returns a copy of the mirrored cart.
func (s *CartService) Items() []domain.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartLineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Count is the number of line items.
func (s *CartService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Total is the grand total of the mirrored cart.
func (s *CartService) Total() float64 {
	return GrandTotal(s.Items())
}

// Reset empties the mirror. Used after a successful order and on logout.
func (s *CartService) Reset() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

// upsert replaces the line sharing item's ID or appends item.
func (s *CartService) upsert(item domain.CartLineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID != "" {
		for i := range s.items {
			if s.items[i].ID == item.ID {
				s.items[i] = item
				return
			}
		}
	}
	s.items = append(s.items, item)
}

func (s *CartService) find(itemID string) (domain.CartLineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ID == itemID {
			return it, true
		}
	}
	return domain.CartLineItem{}, false
}

func (s *CartService) run(ctx context.Context, key string, job func(context.Context) error) error {
	if s.serial == nil {
		return job(ctx)
	}
	return s.serial.Do(ctx, key, job)
}
