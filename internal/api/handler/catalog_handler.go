package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/partsdesk/storefront/internal/core/domain"
	"github.com/partsdesk/storefront/internal/core/service"
)

// CatalogBrowser is the slice of the catalog service the gateway needs.
type CatalogBrowser interface {
	Reload(ctx context.Context) error
	EnsureLoaded(ctx context.Context) error
	SetCriteria(c domain.Criteria) service.CatalogView
	Visible() service.CatalogView
	LoadMore() bool
}

type CatalogHandler struct {
	catalog CatalogBrowser
}

func NewCatalogHandler(catalog CatalogBrowser) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type loadMoreResponse struct {
	Accepted bool                `json:"accepted"`
	View     service.CatalogView `json:"view"`
}

// Get returns the visible page of the filtered catalog. The first request
// fetches the catalog.
//
// @Summary      Visible catalog
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  service.CatalogView
// @Failure      401  {object}  map[string]string
// @Router       /catalog [get]
func (h *CatalogHandler) Get(c echo.Context) error {
	if err := h.catalog.EnsureLoaded(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.catalog.Visible())
}

// SetCriteria replaces the filter criteria.
//
// @Summary      Set filter criteria
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        body  body      domain.Criteria  true  "Filter criteria"
// @Success      200   {object}  service.CatalogView
// @Router       /catalog/criteria [put]
func (h *CatalogHandler) SetCriteria(c echo.Context) error {
	var req domain.Criteria
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.JSON(http.StatusOK, h.catalog.SetCriteria(req))
}

// LoadMore grows the visible page. Requests while a load is pending are
// coalesced.
//
// @Summary      Load more products
// @Tags         catalog
// @Produce      json
// @Success      202  {object}  loadMoreResponse
// @Router       /catalog/more [post]
func (h *CatalogHandler) LoadMore(c echo.Context) error {
	accepted := h.catalog.LoadMore()
	return c.JSON(http.StatusAccepted, loadMoreResponse{Accepted: accepted, View: h.catalog.Visible()})
}

// Reload fetches the catalog from the backend.
//
// @Summary      Reload catalog
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  service.CatalogView
// @Failure      401  {object}  map[string]string
// @Router       /catalog/reload [post]
func (h *CatalogHandler) Reload(c echo.Context) error {
	if err := h.catalog.Reload(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.catalog.Visible())
}
