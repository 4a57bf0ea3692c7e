package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/partsdesk/storefront/internal/api/metrics"
	"github.com/partsdesk/storefront/internal/core/domain"
	"github.com/partsdesk/storefront/internal/core/service"
)

const (
	previewRows    = 10
	maxUploadBytes = 10 << 20
)

// DraftManager is the slice of the draft service the gateway needs.
type DraftManager interface {
	Begin(ctx context.Context, username string, items []domain.CartLineItem) (*domain.OrderDraft, error)
	Open(ctx context.Context, handoff *domain.OrderDraft) (*domain.OrderDraft, error)
	Submit(ctx context.Context, draft domain.OrderDraft, email string) error
	SubmitSpreadsheet(ctx context.Context, filename string, data []byte, email string) error
	Preview(data []byte) ([]string, []domain.SheetRow, error)
}

// CartSnapshot yields the current cart lines.
type CartSnapshot interface {
	Items() []domain.CartLineItem
}

type CheckoutHandler struct {
	drafts DraftManager
	cart   CartSnapshot
}

func NewCheckoutHandler(drafts DraftManager, cart CartSnapshot) *CheckoutHandler {
	return &CheckoutHandler{drafts: drafts, cart: cart}
}

type submitRequest struct {
	Email string `json:"email"`
	// Draft is handed over by the caller; the persisted draft is used when absent.
	Draft *domain.OrderDraft `json:"draft,omitempty"`
}

type draftResponse struct {
	domain.OrderDraft
	GrandTotal float64 `json:"grand_total"`
}

type previewResponse struct {
	Header []string          `json:"header"`
	Rows   []domain.SheetRow `json:"rows"`
	Total  int               `json:"total"`
}

// BeginDraft snapshots the cart into a new order draft.
//
// @Summary      Start checkout
// @Tags         checkout
// @Produce      json
// @Success      201  {object}  draftResponse
// @Failure      422  {object}  map[string]string
// @Router       /checkout/draft [post]
func (h *CheckoutHandler) BeginDraft(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	draft, err := h.drafts.Begin(c.Request().Context(), sess.Username, h.cart.Items())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toDraftResponse(draft))
}

// GetDraft returns the persisted order draft.
//
// @Summary      Current draft
// @Tags         checkout
// @Produce      json
// @Success      200  {object}  draftResponse
// @Failure      404  {object}  map[string]string
// @Router       /checkout/draft [get]
func (h *CheckoutHandler) GetDraft(c echo.Context) error {
	draft, err := h.drafts.Open(c.Request().Context(), nil)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDraftResponse(draft))
}

// Submit sends the order with the contact email.
//
// @Summary      Submit order
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        body  body      submitRequest  true  "Contact email and optional draft"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /checkout/submit [post]
func (h *CheckoutHandler) Submit(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	ctx := c.Request().Context()
	draft, err := h.drafts.Open(ctx, req.Draft)
	if err != nil {
		return err
	}
	err = h.drafts.Submit(ctx, *draft, req.Email)
	metrics.OrdersSubmittedTotal.WithLabelValues("cart", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Order sent successfully"})
}

// PreviewExcel decodes an uploaded workbook and returns its first rows.
//
// @Summary      Preview Excel order
// @Tags         checkout
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Excel workbook"
// @Success      200   {object}  previewResponse
// @Failure      422   {object}  map[string]string
// @Router       /checkout/excel/preview [post]
func (h *CheckoutHandler) PreviewExcel(c echo.Context) error {
	_, data, err := formFile(c, "file")
	if err != nil {
		return err
	}
	header, rows, err := h.drafts.Preview(data)
	if err != nil {
		return err
	}
	total := len(rows)
	if len(rows) > previewRows {
		rows = rows[:previewRows]
	}
	return c.JSON(http.StatusOK, previewResponse{Header: header, Rows: rows, Total: total})
}

// SubmitExcel uploads a workbook as an order.
//
// @Summary      Submit Excel order
// @Tags         checkout
// @Accept       multipart/form-data
// @Produce      json
// @Param        file   formData  file    true  "Excel workbook"
// @Param        email  formData  string  true  "Contact email"
// @Success      200    {object}  map[string]string
// @Failure      422    {object}  map[string]string
// @Failure      502    {object}  map[string]string
// @Router       /checkout/excel [post]
func (h *CheckoutHandler) SubmitExcel(c echo.Context) error {
	name, data, err := formFile(c, "file")
	if err != nil {
		return err
	}
	err = h.drafts.SubmitSpreadsheet(c.Request().Context(), name, data, c.FormValue("email"))
	metrics.OrdersSubmittedTotal.WithLabelValues("excel", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Excel order uploaded successfully"})
}

func toDraftResponse(d *domain.OrderDraft) draftResponse {
	return draftResponse{OrderDraft: *d, GrandTotal: service.GrandTotal(d.LineItems)}
}

// formFile reads an uploaded file. A missing file yields empty data so the
// service reports it as a validation error.
func formFile(c echo.Context, field string) (string, []byte, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, echo.NewHTTPError(http.StatusBadRequest, "invalid upload")
	}
	if fh.Size > maxUploadBytes {
		return "", nil, domain.NewValidationError(field, "The Excel file is too large")
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, err
	}
	return fh.Filename, data, nil
}
