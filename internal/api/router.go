package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/partsdesk/storefront/docs"
	"github.com/partsdesk/storefront/internal/api/handler"
	"github.com/partsdesk/storefront/internal/api/middleware"
	"github.com/partsdesk/storefront/internal/core/domain"
	"github.com/partsdesk/storefront/internal/core/service"
)

// Deps carries everything the gateway serves.
type Deps struct {
	Sessions  *service.SessionService
	Catalog   *service.CatalogService
	Cart      *service.CartService
	Drafts    *service.DraftService
	History   *service.HistoryService
	Directory *service.DirectoryService
	// Ready lists the dependencies checked by the readiness probe.
	Ready map[string]handler.Pinger
	// Registry receives the HTTP metrics. The default registry when nil.
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))

	promCfg := echoprometheus.MiddlewareConfig{Subsystem: "gateway"}
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if d.Registry != nil {
		promCfg.Registerer = d.Registry
		gatherer = d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(promCfg))

	// --- Handlers ---
	sessionHandler := handler.NewSessionHandler(d.Sessions, d.Cart)
	catalogHandler := handler.NewCatalogHandler(d.Catalog)
	cartHandler := handler.NewCartHandler(d.Cart, d.Drafts)
	checkoutHandler := handler.NewCheckoutHandler(d.Drafts, d.Cart)
	historyHandler := handler.NewHistoryHandler(d.History)
	directoryHandler := handler.NewDirectoryHandler(d.Directory)

	requireSession := middleware.RequireSession(d.Sessions)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/login", sessionHandler.Login)
	e.POST("/auth/register", sessionHandler.Register)
	e.POST("/auth/logout", sessionHandler.Logout)
	e.GET("/auth/session", sessionHandler.Session)

	// --- Storefront routes (session required) ---
	catalog := e.Group("/catalog", requireSession)
	catalog.GET("", catalogHandler.Get)
	catalog.PUT("/criteria", catalogHandler.SetCriteria)
	catalog.POST("/more", catalogHandler.LoadMore)
	catalog.POST("/reload", catalogHandler.Reload)

	cart := e.Group("/cart", requireSession)
	cart.GET("", cartHandler.Get)
	cart.POST("/items", cartHandler.AddItem)
	cart.PUT("/items/:id", cartHandler.UpdateQuantity)
	cart.DELETE("/items/:id", cartHandler.RemoveItem)
	cart.GET("/export", cartHandler.Export)

	checkout := e.Group("/checkout", requireSession)
	checkout.POST("/draft", checkoutHandler.BeginDraft)
	checkout.GET("/draft", checkoutHandler.GetDraft)
	checkout.POST("/submit", checkoutHandler.Submit)
	checkout.POST("/excel/preview", checkoutHandler.PreviewExcel)
	checkout.POST("/excel", checkoutHandler.SubmitExcel)

	// --- Admin routes ---
	admin := e.Group("/admin", requireSession, adminOnly)
	admin.GET("/history", historyHandler.Get)
	admin.PUT("/history/criteria", historyHandler.SetCriteria)
	admin.GET("/users", directoryHandler.List)
	admin.POST("/users", directoryHandler.Create)
	admin.PUT("/users/:username", directoryHandler.Update)
	admin.DELETE("/users/:username", directoryHandler.Delete)

	// --- Health probes, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Ready)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error()
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
