package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/partsdesk/storefront/internal/api/metrics"
	"github.com/partsdesk/storefront/internal/core/domain"
)

// SessionManager is the slice of the session service the gateway needs.
type SessionManager interface {
	Authenticate(ctx context.Context, username, password string) (*domain.Session, error)
	Register(ctx context.Context, in domain.NewUser) error
	Logout(ctx context.Context)
	Current(ctx context.Context) (*domain.Session, error)
}

// Resetter drops per-session state held outside the session itself.
type Resetter interface {
	Reset()
}

type SessionHandler struct {
	sessions SessionManager
	reset    []Resetter
}

func NewSessionHandler(sessions SessionManager, reset ...Resetter) *SessionHandler {
	return &SessionHandler{sessions: sessions, reset: reset}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
	Home     string `json:"home"`
}

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:       s.ID,
		Username: s.Username,
		Name:     s.Name,
		Role:     s.Role,
		Home:     s.Home(),
	}
}

// Login authenticates against the backend and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /auth/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	sess, err := h.sessions.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.SessionEventsTotal.WithLabelValues("login_failed").Inc()
		return err
	}
	metrics.SessionEventsTotal.WithLabelValues("login").Inc()
	for _, r := range h.reset {
		r.Reset()
	}
	return c.JSON(http.StatusOK, toSessionResponse(sess))
}

// Register creates a new account. The user signs in afterwards.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      domain.NewUser  true  "Account details"
// @Success      201   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /auth/register [post]
func (h *SessionHandler) Register(c echo.Context) error {
	var req domain.NewUser
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if err := h.sessions.Register(c.Request().Context(), req); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "Registration successful. Please login."})
}

// Logout ends the session. It always succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *SessionHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c.Request().Context())
	for _, r := range h.reset {
		r.Reset()
	}
	metrics.SessionEventsTotal.WithLabelValues("logout").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Session returns the active session.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/session [get]
func (h *SessionHandler) Session(c echo.Context) error {
	sess, err := h.sessions.Current(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(sess))
}
