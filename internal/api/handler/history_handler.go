package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/partsdesk/storefront/internal/core/domain"
)

// HistoryBrowser is the slice of the history service the gateway needs.
type HistoryBrowser interface {
	Reload(ctx context.Context) (domain.Page[domain.HistoricalOrder], error)
	SetCriteria(c domain.HistoryCriteria) domain.Page[domain.HistoricalOrder]
	Current() domain.Page[domain.HistoricalOrder]
	GoTo(page int) domain.Page[domain.HistoricalOrder]
}

type HistoryHandler struct {
	history HistoryBrowser
}

func NewHistoryHandler(history HistoryBrowser) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// Get returns a page of the filtered order history. refresh=true refetches
// from the backend first.
//
// @Summary      Order history
// @Tags         admin
// @Produce      json
// @Param        page     query     int   false  "Page number (10 per page)"
// @Param        refresh  query     bool  false  "Refetch from the backend"
// @Success      200      {object}  domain.Page[domain.HistoricalOrder]
// @Failure      403      {object}  map[string]string
// @Router       /admin/history [get]
func (h *HistoryHandler) Get(c echo.Context) error {
	if c.QueryParam("refresh") == "true" {
		if _, err := h.history.Reload(c.Request().Context()); err != nil {
			return err
		}
	}
	if c.QueryParam("page") != "" {
		return c.JSON(http.StatusOK, h.history.GoTo(queryInt(c, "page", 1)))
	}
	return c.JSON(http.StatusOK, h.history.Current())
}

// SetCriteria replaces the history filter and returns the first page.
//
// @Summary      Filter order history
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      domain.HistoryCriteria  true  "Client name and YYYY-MM-DD date"
// @Success      200   {object}  domain.Page[domain.HistoricalOrder]
// @Failure      422   {object}  map[string]string
// @Router       /admin/history/criteria [put]
func (h *HistoryHandler) SetCriteria(c echo.Context) error {
	var req historyCriteriaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.history.SetCriteria(domain.HistoryCriteria{ClientName: req.ClientName, Date: req.Date}))
}

type historyCriteriaRequest struct {
	ClientName string `json:"client_name"`
	Date       string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}
