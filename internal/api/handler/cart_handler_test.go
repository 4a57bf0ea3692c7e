package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/partsdesk/storefront/internal/core/domain"
)

type stubCart struct {
	items     []domain.CartLineItem
	refreshFn func() ([]domain.CartLineItem, error)
	addFn     func(product domain.Product, quantity int) (*domain.CartLineItem, error)
	updateFn  func(itemID string, quantity int) (*domain.CartLineItem, error)
	removeFn  func(itemID string) error
}

func (s *stubCart) Refresh(context.Context) ([]domain.CartLineItem, error) {
	if s.refreshFn != nil {
		return s.refreshFn()
	}
	return s.items, nil
}

func (s *stubCart) AddItem(_ context.Context, product domain.Product, quantity int) (*domain.CartLineItem, error) {
	return s.addFn(product, quantity)
}

func (s *stubCart) UpdateQuantity(_ context.Context, itemID string, quantity int) (*domain.CartLineItem, error) {
	return s.updateFn(itemID, quantity)
}

func (s *stubCart) RemoveItem(_ context.Context, itemID string) error {
	return s.removeFn(itemID)
}

func (s *stubCart) Items() []domain.CartLineItem { return s.items }

type stubExporter struct {
	got []domain.CartLineItem
}

func (s *stubExporter) ExportCart(items []domain.CartLineItem) ([]byte, error) {
	s.got = items
	return []byte("xlsx"), nil
}

func lineItems(n int) []domain.CartLineItem {
	out := make([]domain.CartLineItem, n)
	for i := range out {
		out[i] = domain.CartLineItem{ID: fmt.Sprintf("l%d", i), PartNumber: fmt.Sprintf("P%d", i), MRP: 10, Quantity: 1, Total: 10}
	}
	return out
}

// ---- Get ----

func TestCartHandler_Get_Paginates(t *testing.T) {
	h := NewCartHandler(&stubCart{items: lineItems(25)}, &stubExporter{})
	c, rec := newJSONContext(http.MethodGet, "/cart?page=2", "")

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp struct {
		Items      []domain.CartLineItem `json:"items"`
		Page       int                   `json:"page"`
		TotalPages int                   `json:"total_pages"`
		Count      int                   `json:"count"`
		GrandTotal float64               `json:"grand_total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Page != 2 || resp.TotalPages != 2 || len(resp.Items) != 5 {
		t.Errorf("page=%d pages=%d items=%d", resp.Page, resp.TotalPages, len(resp.Items))
	}
	if resp.Count != 25 || resp.GrandTotal != 250 {
		t.Errorf("count=%d total=%v", resp.Count, resp.GrandTotal)
	}
}

func TestCartHandler_Get_StaleSession(t *testing.T) {
	cart := &stubCart{refreshFn: func() ([]domain.CartLineItem, error) { return nil, domain.ErrStaleSession }}
	c, _ := newJSONContext(http.MethodGet, "/cart", "")

	if err := NewCartHandler(cart, &stubExporter{}).Get(c); !errors.Is(err, domain.ErrStaleSession) {
		t.Fatalf("expected ErrStaleSession, got %v", err)
	}
}

// ---- Mutations ----

func TestCartHandler_AddItem_Created(t *testing.T) {
	cart := &stubCart{
		addFn: func(p domain.Product, q int) (*domain.CartLineItem, error) {
			if p.PartNumber != "A1" || p.MRP != 125 || q != 2 {
				t.Fatalf("unexpected args: %+v %d", p, q)
			}
			item := domain.CartLineItem{ID: "l1", PartNumber: "A1", MRP: 125}.WithQuantity(q)
			return &item, nil
		},
	}
	c, rec := newJSONContext(http.MethodPost, "/cart/items", `{"part_name":"Brake Pad","part_number":"A1","mrp":125,"quantity":2}`)

	if err := NewCartHandler(cart, &stubExporter{}).AddItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestCartHandler_AddItem_MissingPartNumber(t *testing.T) {
	cart := &stubCart{
		addFn: func(domain.Product, int) (*domain.CartLineItem, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	c, _ := newJSONContext(http.MethodPost, "/cart/items", `{"part_name":"Brake Pad","quantity":2}`)

	if err := NewCartHandler(cart, &stubExporter{}).AddItem(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCartHandler_UpdateQuantity_UsesPathID(t *testing.T) {
	cart := &stubCart{
		updateFn: func(id string, q int) (*domain.CartLineItem, error) {
			if id != "l7" || q != 3 {
				t.Fatalf("unexpected args: %s %d", id, q)
			}
			item := domain.CartLineItem{ID: id, MRP: 50}.WithQuantity(q)
			return &item, nil
		},
	}
	c, rec := newJSONContext(http.MethodPut, "/cart/items/l7", `{"quantity":3}`)
	c.SetParamNames("id")
	c.SetParamValues("l7")

	if err := NewCartHandler(cart, &stubExporter{}).UpdateQuantity(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var item domain.CartLineItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if item.Total != 150 {
		t.Errorf("total = %v, want 150", item.Total)
	}
}

func TestCartHandler_RemoveItem_NotFound(t *testing.T) {
	cart := &stubCart{removeFn: func(string) error { return domain.ErrItemNotFound }}
	c, _ := newJSONContext(http.MethodDelete, "/cart/items/zz", "")
	c.SetParamNames("id")
	c.SetParamValues("zz")

	if err := NewCartHandler(cart, &stubExporter{}).RemoveItem(c); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestCartHandler_RemoveItem_NoContent(t *testing.T) {
	cart := &stubCart{removeFn: func(string) error { return nil }}
	c, rec := newJSONContext(http.MethodDelete, "/cart/items/l1", "")
	c.SetParamNames("id")
	c.SetParamValues("l1")

	if err := NewCartHandler(cart, &stubExporter{}).RemoveItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

// ---- Export ----

func TestCartHandler_Export_Attachment(t *testing.T) {
	exp := &stubExporter{}
	h := NewCartHandler(&stubCart{items: lineItems(3)}, exp)
	c, rec := newJSONContext(http.MethodGet, "/cart/export", "")

	if err := h.Export(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Header().Get("Content-Type") != xlsxMIME {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
	if rec.Header().Get("Content-Disposition") != `attachment; filename="cart.xlsx"` {
		t.Errorf("disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if len(exp.got) != 3 || rec.Body.String() != "xlsx" {
		t.Errorf("exported %d lines, body %q", len(exp.got), rec.Body.String())
	}
}
