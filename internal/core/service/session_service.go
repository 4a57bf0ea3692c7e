package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/partsdesk/storefront/internal/core/domain"
	"github.com/partsdesk/storefront/internal/core/ports"
)

const restoreTimeout = 2 * time.Second

// SessionService owns the authenticated session of the device. It is the
// explicit session object every other component is handed.
type SessionService struct {
	store    ports.StateStore
	auth     ports.AuthAPI
	sealer   ports.Sealer // optional
	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time

	mu      sync.RWMutex
	current *domain.Session
}

func NewSessionService(store ports.StateStore, auth ports.AuthAPI, sealer ports.Sealer, log zerolog.Logger) *SessionService {
	return &SessionService{
		store:    store,
		auth:     auth,
		sealer:   sealer,
		validate: newValidator(),
		log:      log,
		now:      time.Now,
	}
}

// Restore loads the persisted session at startup. Missing, corrupt or
// undecryptable records are treated as "no session"; it never returns an error.
func (s *SessionService) Restore(ctx context.Context) (*domain.Session, bool) {
	ctx, cancel := context.WithTimeout(ctx, restoreTimeout)
	defer cancel()

	raw, ok, err := s.store.Get(ctx, ports.KeySession)
	if err != nil {
		s.log.Warn().Err(err).Msg("session restore failed, starting signed out")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	if s.sealer != nil {
		if raw, err = s.sealer.Open(raw); err != nil {
			s.log.Warn().Err(err).Msg("session record cannot be opened, discarding")
			return nil, false
		}
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil || sess.Token == "" || sess.Username == "" {
		s.log.Warn().Msg("session record corrupt, discarding")
		return nil, false
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()

	s.log.Info().Str("username", sess.Username).Str("role", sess.Role).Msg("session restored")
	return cloneSession(&sess), true
}

// Login persists sess and makes it the active session, replacing any other.
func (s *SessionService) Login(ctx context.Context, sess domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("login: encode session: %w", err)
	}
	if s.sealer != nil {
		if raw, err = s.sealer.Seal(raw); err != nil {
			return fmt.Errorf("login: seal session: %w", err)
		}
	}
	if err := s.store.Put(ctx, ports.KeySession, raw); err != nil {
		return fmt.Errorf("login: persist session: %w", err)
	}

	s.mu.Lock()
	s.current = cloneSession(&sess)
	s.mu.Unlock()

	s.log.Info().Str("username", sess.Username).Str("role", sess.Role).Msg("session started")
	return nil
}

// Authenticate checks credentials against the backend and starts a session.
// Nothing is persisted when the backend rejects the credentials.
func (s *SessionService) Authenticate(ctx context.Context, username, password string) (*domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewValidationError("username", "Username is required")
	}
	if password == "" {
		return nil, domain.NewValidationError("password", "Password is required")
	}

	res, err := s.auth.Login(ctx, username, password)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("login rejected")
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if res == nil || res.Session.Token == "" {
		return nil, &domain.RemoteError{Op: "authenticate", Message: "Something went wrong. Please try again."}
	}

	if err := s.Login(ctx, res.Session); err != nil {
		return nil, err
	}
	return cloneSession(&res.Session), nil
}

// Register creates an account. Every field is required.
func (s *SessionService) Register(ctx context.Context, in domain.NewUser) error {
	in = in.Trimmed()
	in.Role = ""
	if err := validateStruct(s.validate, in); err != nil {
		return err
	}
	if err := s.auth.Register(ctx, in); err != nil {
		s.log.Error().Err(err).Str("username", in.Username).Msg("registration failed")
		return fmt.Errorf("register: %w", err)
	}
	s.log.Info().Str("username", in.Username).Msg("account registered")
	return nil
}

// Logout clears the session unconditionally. In-memory state goes first so a
// storage failure cannot leave the device signed in.
func (s *SessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()

	if err := s.store.Delete(ctx, ports.KeySession); err != nil {
		s.log.Error().Err(err).Msg("failed to delete persisted session")
	}
	if prev != nil {
		s.log.Info().Str("username", prev.Username).Msg("session ended")
	}
}

// Current returns the active session, or ErrAuthRequired. A session whose
// token has expired is destroyed and reported as ErrStaleSession.
func (s *SessionService) Current(ctx context.Context) (*domain.Session, error) {
	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()

	if cur == nil {
		return nil, domain.ErrAuthRequired
	}
	if tokenExpired(cur.Token, s.now()) {
		s.log.Info().Str("username", cur.Username).Msg("token expired")
		s.Logout(ctx)
		return nil, domain.ErrStaleSession
	}
	return cloneSession(cur), nil
}

// Require returns the active session if its role is one of roles.
func (s *SessionService) Require(ctx context.Context, roles ...string) (*domain.Session, error) {
	sess, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if sess.Role == r {
			return sess, nil
		}
	}
	return nil, domain.ErrForbidden
}

// Token returns the bearer token of the active session, or "".
func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Invalidate logs out when err says the backend rejected the token. It
// returns err unchanged so callers can write `return s.Invalidate(ctx, err)`.
func (s *SessionService) Invalidate(ctx context.Context, err error) error {
	if errors.Is(err, domain.ErrStaleSession) {
		s.log.Warn().Err(err).Msg("backend rejected token, signing out")
		s.Logout(ctx)
	}
	return err
}

// tokenExpired inspects the exp claim without verifying the signature; the
// client never holds the signing key. Opaque tokens never expire locally.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}

func cloneSession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// degrade is used by read paths that fall back to an empty result. Only a
// rejected session survives as an error.
func degrade(ctx context.Context, session *SessionService, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrStaleSession) {
		return session.Invalidate(ctx, err)
	}
	return nil
}
