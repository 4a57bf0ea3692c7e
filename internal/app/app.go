// Package app builds the storefront core from configuration and runs the
// gateway.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/partsdesk/storefront/internal/api"
	"github.com/partsdesk/storefront/internal/api/handler"
	"github.com/partsdesk/storefront/internal/api/metrics"
	"github.com/partsdesk/storefront/internal/core/ports"
	"github.com/partsdesk/storefront/internal/core/service"
	"github.com/partsdesk/storefront/internal/infrastructure/config"
	"github.com/partsdesk/storefront/internal/infrastructure/db/memory"
	mongostore "github.com/partsdesk/storefront/internal/infrastructure/db/mongo"
	redisstore "github.com/partsdesk/storefront/internal/infrastructure/db/redis"
	"github.com/partsdesk/storefront/internal/infrastructure/notify"
	"github.com/partsdesk/storefront/internal/infrastructure/queue"
	"github.com/partsdesk/storefront/internal/infrastructure/remote"
	"github.com/partsdesk/storefront/internal/infrastructure/seal"
	"github.com/partsdesk/storefront/internal/infrastructure/spreadsheet"
)

const shutdownTimeout = 10 * time.Second

// StateBackend is a durable state store that can report its health.
type StateBackend interface {
	ports.StateStore
	handler.Pinger
}

// App holds every component of the storefront core.
type App struct {
	Sessions  *service.SessionService
	Catalog   *service.CatalogService
	Cart      *service.CartService
	Drafts    *service.DraftService
	History   *service.HistoryService
	Directory *service.DirectoryService

	cfg      *config.Config
	log      zerolog.Logger
	store    StateBackend
	backend  string
	notifier *notify.Async
	stop     context.CancelFunc
	closers  []func(context.Context) error
}

// New connects the state backend and builds the services. The session and
// the filter criteria persisted by a previous run are restored.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log, backend: cfg.State.Backend}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.store = store

	var sealer ports.Sealer
	if cfg.State.SealKey != "" {
		box, err := seal.New(cfg.State.SealKey)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("session sealer: %w", err)
		}
		sealer = box
	}

	var sessions *service.SessionService
	client := remote.NewClient(
		cfg.API.BaseURL,
		cfg.API.Timeout,
		func() string { return sessions.Token() },
		log.With().Str("component", "remote").Logger(),
		remote.WithObserver(metrics.ObserveRemote),
	)
	sessions = service.NewSessionService(store, client, sealer, log.With().Str("component", "session").Logger())

	serialCtx, stop := context.WithCancel(context.Background())
	a.stop = stop
	serializer := queue.NewSerializer(0, log.With().Str("component", "serializer").Logger())
	serializer.OnDepth(metrics.ObserveQueueDepth)
	serializer.Start(serialCtx)

	a.notifier = notify.NewAsync(notify.NewLogNotifier(log.With().Str("component", "notify").Logger()), 0, log)
	codec := spreadsheet.NewCodec()

	a.Sessions = sessions
	a.Catalog = service.NewCatalogService(client, store, sessions, cfg.Catalog.FilterDebounce, cfg.Catalog.LoadMoreDelay, log.With().Str("component", "catalog").Logger())
	a.Cart = service.NewCartService(client, sessions, serializer, a.notifier, log.With().Str("component", "cart").Logger())
	a.Drafts = service.NewDraftService(store, client, a.Cart, sessions, codec, log.With().Str("component", "draft").Logger())
	a.History = service.NewHistoryService(client, sessions, log.With().Str("component", "history").Logger())
	a.Directory = service.NewDirectoryService(client, sessions, log.With().Str("component", "directory").Logger())

	if sess, ok := sessions.Restore(ctx); ok {
		log.Info().Str("username", sess.Username).Str("home", sess.Home()).Msg("resuming session")
	}
	a.Catalog.RestoreCriteria(ctx)
	return a, nil
}

func (a *App) openStore(ctx context.Context) (StateBackend, error) {
	switch a.cfg.State.Backend {
	case "memory":
		a.log.Warn().Msg("using in-memory state; session and draft are lost on exit")
		return memory.NewStateStore(), nil
	case "mongo":
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: a.cfg.Mongo.URI, Database: a.cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Disconnect)
		return mongostore.NewStateStore(db), nil
	default:
		client, err := redisstore.Connect(ctx, redisstore.Config{Addr: a.cfg.Redis.Addr, Password: a.cfg.Redis.Password, DB: a.cfg.Redis.DB})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		return redisstore.NewStateStore(client, a.cfg.Redis.Prefix), nil
	}
}

// Router returns the gateway for the app's services.
func (a *App) Router() *echo.Echo {
	return api.NewRouter(api.Deps{
		Sessions:  a.Sessions,
		Catalog:   a.Catalog,
		Cart:      a.Cart,
		Drafts:    a.Drafts,
		History:   a.History,
		Directory: a.Directory,
		Ready:     map[string]handler.Pinger{a.backend: a.store},
		Log:       a.log,
	})
}

// Serve runs the gateway until ctx is cancelled, then shuts it down.
func (a *App) Serve(ctx context.Context) error {
	e := a.Router()
	errCh := make(chan error, 1)

	go func() {
		a.log.Info().Str("port", a.cfg.Port).Str("backend", a.backend).Msg("gateway listening")
		errCh <- e.Start(":" + a.cfg.Port)
	}()

	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutting down gateway")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Close flushes pending filter criteria, stops background workers and
// disconnects the state backend.
func (a *App) Close(ctx context.Context) {
	if a.Catalog != nil {
		a.Catalog.Flush()
	}
	if a.notifier != nil {
		a.notifier.Close()
	}
	if a.stop != nil {
		a.stop()
	}
	for _, c := range a.closers {
		if err := c(ctx); err != nil {
			a.log.Error().Err(err).Msg("failed to close state backend")
		}
	}
}
