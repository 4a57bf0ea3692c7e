package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/partsdesk/storefront/internal/core/domain"
	"github.com/partsdesk/storefront/internal/core/ports"
)

const cartSheet = "Cart"

var cartSheetHeader = []string{"Client Name", "HSN Code", "Part Name", "Part Number", "MRP", "Quantity", "Total"}

// DraftService stages the cart across checkout. At most one draft is
// persisted; beginning a new one overwrites the old.
type DraftService struct {
	store    ports.StateStore
	orders   ports.OrderAPI
	cart     *CartService
	session  *SessionService
	codec    ports.SpreadsheetCodec
	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string
}

func NewDraftService(store ports.StateStore, orders ports.OrderAPI, cart *CartService, session *SessionService, codec ports.SpreadsheetCodec, log zerolog.Logger) *DraftService {
	return &DraftService{
		store:    store,
		orders:   orders,
		cart:     cart,
		session:  session,
		codec:    codec,
		validate: newValidator(),
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Begin snapshots items into a new persisted draft for username.
func (s *DraftService) Begin(ctx context.Context, username string, items []domain.CartLineItem) (*domain.OrderDraft, error) {
	if strings.TrimSpace(username) == "" {
		return nil, domain.NewValidationError("username", "username is required")
	}
	if len(items) == 0 {
		return nil, domain.NewValidationError("items", "Your cart is empty")
	}

	draft := domain.OrderDraft{
		ID:        s.newID(),
		Username:  username,
		LineItems: append([]domain.CartLineItem(nil), items...),
		CreatedAt: s.now().UTC(),
	}
	if err := s.persist(ctx, draft); err != nil {
		return nil, err
	}
	s.log.Info().Str("draft_id", draft.ID).Str("username", username).Int("items", len(items)).Msg("order draft started")
	return &draft, nil
}

// Resume returns the persisted draft. A missing or corrupt record yields none.
func (s *DraftService) Resume(ctx context.Context) (*domain.OrderDraft, bool) {
	raw, ok, err := s.store.Get(ctx, ports.KeyDraft)
	if err != nil {
		s.log.Warn().Err(err).Msg("draft restore failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var draft domain.OrderDraft
	if err := json.Unmarshal(raw, &draft); err != nil || draft.Username == "" {
		s.log.Warn().Msg("persisted draft corrupt, ignoring")
		return nil, false
	}
	return &draft, true
}

// Open returns the draft checkout should show: handoff when the caller has
// one, otherwise the persisted draft.
func (s *DraftService) Open(ctx context.Context, handoff *domain.OrderDraft) (*domain.OrderDraft, error) {
	if handoff != nil {
		d := *handoff
		if d.ID == "" {
			d.ID = s.newID()
		}
		if d.CreatedAt.IsZero() {
			d.CreatedAt = s.now().UTC()
		}
		if err := s.persist(ctx, d); err != nil {
			return nil, err
		}
		return &d, nil
	}
	if d, ok := s.Resume(ctx); ok {
		return d, nil
	}
	return nil, domain.ErrNoDraft
}

// Submit sends draft with the contact email. Success clears the persisted
// draft and the live cart; failure keeps both for a retry.
func (s *DraftService) Submit(ctx context.Context, draft domain.OrderDraft, email string) error {
	email = strings.TrimSpace(email)
	if err := s.checkEmail(email); err != nil {
		return err
	}
	if len(draft.LineItems) == 0 {
		return domain.NewValidationError("items", "Your cart is empty")
	}
	if _, err := s.session.Current(ctx); err != nil {
		return err
	}

	key := draft.ID
	if key == "" {
		key = s.newID()
	}
	if err := s.orders.SubmitOrder(ctx, draft, email, key); err != nil {
		s.log.Error().Err(err).Str("draft_id", draft.ID).Str("username", draft.Username).Msg("order submission failed")
		err = s.session.Invalidate(ctx, err)
		return fmt.Errorf("submit order: %w: %w", domain.ErrSubmitFailed, err)
	}

	if err := s.store.Delete(ctx, ports.KeyDraft); err != nil {
		s.log.Error().Err(err).Str("draft_id", draft.ID).Msg("failed to clear submitted draft")
	}
	s.cart.Reset()
	s.log.Info().Str("draft_id", draft.ID).Str("username", draft.Username).Float64("grand_total", GrandTotal(draft.LineItems)).Msg("order submitted")
	return nil
}

// SubmitSpreadsheet uploads an Excel order file.
func (s *DraftService) SubmitSpreadsheet(ctx context.Context, filename string, data []byte, email string) error {
	if len(data) == 0 {
		return domain.NewValidationError("file", "Please select an Excel file")
	}
	email = strings.TrimSpace(email)
	if err := s.checkEmail(email); err != nil {
		return err
	}
	if _, err := s.session.Current(ctx); err != nil {
		return err
	}
	if filename == "" {
		filename = "order.xlsx"
	}

	err := s.orders.SubmitSpreadsheet(ctx, ports.SpreadsheetUpload{Filename: filename, Data: data, Email: email})
	if err != nil {
		s.log.Error().Err(err).Str("filename", filename).Msg("spreadsheet order failed")
		err = s.session.Invalidate(ctx, err)
		return fmt.Errorf("submit spreadsheet: %w: %w", domain.ErrSubmitFailed, err)
	}
	s.log.Info().Str("filename", filename).Int("bytes", len(data)).Msg("spreadsheet order submitted")
	return nil
}

// Preview decodes the first sheet of an Excel order so it can be checked
// before upload.
func (s *DraftService) Preview(data []byte) ([]string, []domain.SheetRow, error) {
	if len(data) == 0 {
		return nil, nil, domain.NewValidationError("file", "Please select an Excel file")
	}
	header, rows, err := s.codec.Decode(data)
	if err != nil {
		return nil, nil, domain.NewValidationError("file", "Could not read the Excel file")
	}
	return header, rows, nil
}

// ExportCart renders items as an xlsx workbook.
func (s *DraftService) ExportCart(items []domain.CartLineItem) ([]byte, error) {
	rows := make([][]string, 0, len(items)+1)
	for _, it := range items {
		rows = append(rows, []string{
			it.ClientName,
			it.HSNCode,
			it.PartName,
			it.PartNumber,
			formatAmount(it.MRP),
			strconv.Itoa(it.Quantity),
			formatAmount(it.Total),
		})
	}
	rows = append(rows, []string{"", "", "", "", "", "Grand Total", formatAmount(GrandTotal(items))})

	out, err := s.codec.Encode(cartSheet, cartSheetHeader, rows)
	if err != nil {
		return nil, fmt.Errorf("export cart: %w", err)
	}
	return out, nil
}

func (s *DraftService) checkEmail(email string) error {
	if email == "" {
		return domain.NewValidationError("email", "Please enter email")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return domain.NewValidationError("email", "Please enter a valid email address")
	}
	return nil
}

func (s *DraftService) persist(ctx context.Context, d domain.OrderDraft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("persist draft: %w", err)
	}
	if err := s.store.Put(ctx, ports.KeyDraft, raw); err != nil {
		return fmt.Errorf("persist draft: %w", err)
	}
	return nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
