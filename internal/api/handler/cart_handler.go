package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/partsdesk/storefront/internal/api/metrics"
	"github.com/partsdesk/storefront/internal/core/domain"
	"github.com/partsdesk/storefront/internal/core/service"
)

const (
	cartPerPage = 20
	xlsxMIME    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// CartManager is the slice of the cart service the gateway needs.
type CartManager interface {
	Refresh(ctx context.Context) ([]domain.CartLineItem, error)
	AddItem(ctx context.Context, product domain.Product, quantity int) (*domain.CartLineItem, error)
	UpdateQuantity(ctx context.Context, itemID string, quantity int) (*domain.CartLineItem, error)
	RemoveItem(ctx context.Context, itemID string) error
	Items() []domain.CartLineItem
}

// CartExporter renders cart lines as a spreadsheet.
type CartExporter interface {
	ExportCart(items []domain.CartLineItem) ([]byte, error)
}

type CartHandler struct {
	cart     CartManager
	exporter CartExporter
}

func NewCartHandler(cart CartManager, exporter CartExporter) *CartHandler {
	return &CartHandler{cart: cart, exporter: exporter}
}

type addItemRequest struct {
	ID         string  `json:"id"`
	ExternalID string  `json:"external_id"`
	HSNCode    string  `json:"hsn_code"`
	PartName   string  `json:"part_name"   validate:"required,notblank"`
	PartNumber string  `json:"part_number" validate:"required,notblank"`
	ModelCode  string  `json:"model_code"`
	MRP        float64 `json:"mrp"         validate:"gte=0"`
	Quantity   int     `json:"quantity"`
}

func (r addItemRequest) product() domain.Product {
	return domain.Product{
		ID:         r.ID,
		ExternalID: r.ExternalID,
		HSNCode:    r.HSNCode,
		PartName:   r.PartName,
		PartNumber: r.PartNumber,
		ModelCode:  r.ModelCode,
		MRP:        r.MRP,
	}
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	domain.Page[domain.CartLineItem]
	Count      int     `json:"count"`
	GrandTotal float64 `json:"grand_total"`
}

// Get refreshes the cart from the backend and returns one page of it.
//
// @Summary      Cart
// @Tags         cart
// @Produce      json
// @Param        page  query     int  false  "Page number (20 per page)"
// @Success      200   {object}  cartResponse
// @Failure      401   {object}  map[string]string
// @Router       /cart [get]
func (h *CartHandler) Get(c echo.Context) error {
	items, err := h.cart.Refresh(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cartResponse{
		Page:       service.Paginate(items, queryInt(c, "page", 1), cartPerPage),
		Count:      len(items),
		GrandTotal: service.GrandTotal(items),
	})
}

// AddItem adds a product to the cart.
//
// @Summary      Add to cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body      addItemRequest  true  "Product and quantity"
// @Success      201   {object}  domain.CartLineItem
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	item, err := h.cart.AddItem(c.Request().Context(), req.product(), req.Quantity)
	metrics.CartMutationsTotal.WithLabelValues("add", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

// UpdateQuantity sets the quantity of a cart line. Quantities below 1 are
// ignored and the line is returned unchanged.
//
// @Summary      Update quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Cart item ID"
// @Param        body  body      updateQuantityRequest  true  "New quantity"
// @Success      200   {object}  domain.CartLineItem
// @Failure      404   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /cart/items/{id} [put]
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	var req updateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	item, err := h.cart.UpdateQuantity(c.Request().Context(), c.Param("id"), req.Quantity)
	metrics.CartMutationsTotal.WithLabelValues("update", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// RemoveItem deletes a cart line.
//
// @Summary      Remove from cart
// @Tags         cart
// @Param        id   path  string  true  "Cart item ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c echo.Context) error {
	err := h.cart.RemoveItem(c.Request().Context(), c.Param("id"))
	metrics.CartMutationsTotal.WithLabelValues("remove", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Export downloads the cart as an Excel workbook.
//
// @Summary      Export cart
// @Tags         cart
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Failure      401  {object}  map[string]string
// @Router       /cart/export [get]
func (h *CartHandler) Export(c echo.Context) error {
	items, err := h.cart.Refresh(c.Request().Context())
	if err != nil {
		return err
	}
	data, err := h.exporter.ExportCart(items)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="cart.xlsx"`)
	return c.Blob(http.StatusOK, xlsxMIME, data)
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(c echo.Context, name string, def int) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}
