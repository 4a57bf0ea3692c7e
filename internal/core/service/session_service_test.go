package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/partsdesk/storefront/internal/core/domain"
	"github.com/partsdesk/storefront/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub state store
// ---------------------------------------------------------------------------

type memStore struct {
	mu        sync.Mutex
	data      map[string][]byte
	puts      map[string]int
	getErr    error
	putErr    error
	deleteErr error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte), puts: make(map[string]int)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = append([]byte(nil), value...)
	m.puts[key]++
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return m.deleteErr
}

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func (m *memStore) putCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts[key]
}

// ---------------------------------------------------------------------------
// Stub auth API
// ---------------------------------------------------------------------------

type stubAuthAPI struct {
	result      *ports.LoginResult
	loginErr    error
	registerErr error
	registered  []domain.NewUser
	loginCalls  int
}

func (a *stubAuthAPI) Login(_ context.Context, _, _ string) (*ports.LoginResult, error) {
	a.loginCalls++
	if a.loginErr != nil {
		return nil, a.loginErr
	}
	return a.result, nil
}

func (a *stubAuthAPI) Register(_ context.Context, u domain.NewUser) error {
	if a.registerErr != nil {
		return a.registerErr
	}
	a.registered = append(a.registered, u)
	return nil
}

type failingSealer struct{}

func (failingSealer) Seal(p []byte) ([]byte, error) { return p, nil }
func (failingSealer) Open([]byte) ([]byte, error)   { return nil, errors.New("message authentication failed") }

var testUser = domain.Session{ID: "u1", Username: "alice", Name: "Acme Motors", Role: domain.RoleUser, Token: "opaque-token"}
var testAdmin = domain.Session{ID: "a1", Username: "root", Name: "Admin", Role: domain.RoleAdmin, Token: "admin-token"}

// newSignedIn returns a session service with sess already logged in.
func newSignedIn(t *testing.T, sess domain.Session) (*SessionService, *memStore) {
	t.Helper()
	store := newMemStore()
	s := NewSessionService(store, &stubAuthAPI{}, nil, zerolog.Nop())
	if err := s.Login(context.Background(), sess); err != nil {
		t.Fatalf("login: %v", err)
	}
	return s, store
}

// ---------------------------------------------------------------------------
// Restore / Login / Logout
// ---------------------------------------------------------------------------

func TestSessionService_RestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, store := newSignedIn(t, testUser)

	// A fresh service over the same store simulates a restart.
	restarted := NewSessionService(store, &stubAuthAPI{}, nil, zerolog.Nop())
	got, ok := restarted.Restore(ctx)
	if !ok {
		t.Fatal("expected a restored session")
	}
	if *got != testUser {
		t.Errorf("restored %+v, want %+v", *got, testUser)
	}
	if _, err := restarted.Current(ctx); err != nil {
		t.Errorf("Current after restore: %v", err)
	}
}

func TestSessionService_RestoreFailSoft(t *testing.T) {
	cases := []struct {
		name   string
		setup  func(*memStore)
		sealer ports.Sealer
	}{
		{"missing", func(*memStore) {}, nil},
		{"corrupt", func(m *memStore) { m.data[ports.KeySession] = []byte(`{"username":`) }, nil},
		{"no token", func(m *memStore) { m.data[ports.KeySession] = []byte(`{"username":"alice"}`) }, nil},
		{"store error", func(m *memStore) { m.getErr = errors.New("connection refused") }, nil},
		{"unsealable", func(m *memStore) { m.data[ports.KeySession] = []byte("garbage") }, failingSealer{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			tc.setup(store)
			s := NewSessionService(store, &stubAuthAPI{}, tc.sealer, zerolog.Nop())

			got, ok := s.Restore(context.Background())
			if ok || got != nil {
				t.Fatalf("expected no session, got %+v", got)
			}
			if _, err := s.Current(context.Background()); !errors.Is(err, domain.ErrAuthRequired) {
				t.Errorf("Current: expected ErrAuthRequired, got %v", err)
			}
		})
	}
}

func TestSessionService_LoginReplacesExisting(t *testing.T) {
	ctx := context.Background()
	s, _ := newSignedIn(t, testUser)

	if err := s.Login(ctx, testAdmin); err != nil {
		t.Fatalf("second login: %v", err)
	}
	cur, err := s.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur.Username != "root" {
		t.Errorf("expected admin session, got %s", cur.Username)
	}
}

func TestSessionService_LogoutClearsEvenWhenStoreFails(t *testing.T) {
	ctx := context.Background()
	s, store := newSignedIn(t, testUser)
	store.deleteErr = errors.New("disk full")

	s.Logout(ctx)

	if _, err := s.Current(ctx); !errors.Is(err, domain.ErrAuthRequired) {
		t.Errorf("expected ErrAuthRequired after logout, got %v", err)
	}
	if s.Token() != "" {
		t.Error("token must be cleared")
	}
}

func TestSessionService_LoginPersistFailureKeepsSignedOut(t *testing.T) {
	store := newMemStore()
	store.putErr = errors.New("read-only")
	s := NewSessionService(store, &stubAuthAPI{}, nil, zerolog.Nop())

	if err := s.Login(context.Background(), testUser); err == nil {
		t.Fatal("expected error")
	}
	if _, err := s.Current(context.Background()); !errors.Is(err, domain.ErrAuthRequired) {
		t.Errorf("expected ErrAuthRequired, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Authenticate / Register
// ---------------------------------------------------------------------------

func TestSessionService_Authenticate(t *testing.T) {
	store := newMemStore()
	auth := &stubAuthAPI{result: &ports.LoginResult{Session: testUser}}
	s := NewSessionService(store, auth, nil, zerolog.Nop())

	got, err := s.Authenticate(context.Background(), "  alice ", "secret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.Home() != "catalog" {
		t.Errorf("user home = %s, want catalog", got.Home())
	}
	if !store.has(ports.KeySession) {
		t.Error("session must be persisted")
	}
}

func TestSessionService_AuthenticateWrongCredentialsPersistsNothing(t *testing.T) {
	store := newMemStore()
	auth := &stubAuthAPI{loginErr: &domain.RemoteError{Op: "login", Status: 401, Message: "Invalid username or password"}}
	s := NewSessionService(store, auth, nil, zerolog.Nop())

	_, err := s.Authenticate(context.Background(), "alice", "wrong")
	if !errors.Is(err, domain.ErrRemote) {
		t.Fatalf("expected ErrRemote, got %v", err)
	}
	if msg := domain.UserMessage(err); msg != "Invalid username or password" {
		t.Errorf("user message = %q", msg)
	}
	if store.has(ports.KeySession) {
		t.Error("nothing must be persisted on failed login")
	}
	if _, err := s.Current(context.Background()); !errors.Is(err, domain.ErrAuthRequired) {
		t.Errorf("expected ErrAuthRequired, got %v", err)
	}
}

func TestSessionService_AuthenticateValidatesBeforeRemote(t *testing.T) {
	auth := &stubAuthAPI{}
	s := NewSessionService(newMemStore(), auth, nil, zerolog.Nop())

	if _, err := s.Authenticate(context.Background(), " ", "x"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty username: expected ErrValidation, got %v", err)
	}
	if _, err := s.Authenticate(context.Background(), "alice", ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty password: expected ErrValidation, got %v", err)
	}
	if auth.loginCalls != 0 {
		t.Errorf("remote must not be called, got %d calls", auth.loginCalls)
	}
}

func TestSessionService_Register(t *testing.T) {
	auth := &stubAuthAPI{}
	s := NewSessionService(newMemStore(), auth, nil, zerolog.Nop())
	in := domain.NewUser{
		Name: "Bob", Company: "Acme", Address: "1 Main St", Email: "bob@acme.test",
		Phone: "555-0100", Username: "bob", Password: "pw",
	}

	if err := s.Register(context.Background(), in); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(auth.registered) != 1 {
		t.Fatalf("expected 1 registration, got %d", len(auth.registered))
	}

	in.Email = "not-an-email"
	err := s.Register(context.Background(), in)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "email" {
		t.Errorf("expected email validation error, got %v", err)
	}

	in.Email = "bob@acme.test"
	in.Phone = ""
	if err := s.Register(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing phone: expected ErrValidation, got %v", err)
	}
	if len(auth.registered) != 1 {
		t.Error("invalid input must not reach the backend")
	}
}

func TestSessionService_RegisterRejectsBlankFields(t *testing.T) {
	auth := &stubAuthAPI{}
	s := NewSessionService(newMemStore(), auth, nil, zerolog.Nop())
	valid := domain.NewUser{
		Name: "Bob", Company: "Acme", Address: "1 Main St", Email: "bob@acme.test",
		Phone: "555-0100", Username: "bob", Password: "pw",
	}

	cases := map[string]func(*domain.NewUser){
		"name":     func(u *domain.NewUser) { u.Name = "   " },
		"address":  func(u *domain.NewUser) { u.Address = "\t" },
		"username": func(u *domain.NewUser) { u.Username = " " },
		"password": func(u *domain.NewUser) { u.Password = "  " },
	}
	for field, blank := range cases {
		in := valid
		blank(&in)
		err := s.Register(context.Background(), in)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) || ve.Field != field {
			t.Errorf("blank %s: expected validation error on %s, got %v", field, field, err)
		}
	}
	if len(auth.registered) != 0 {
		t.Errorf("blank input must not reach the backend, got %+v", auth.registered)
	}

	padded := valid
	padded.Username = "  bob  "
	if err := s.Register(context.Background(), padded); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := auth.registered[0].Username; got != "bob" {
		t.Errorf("username sent as %q, want trimmed", got)
	}
}

// ---------------------------------------------------------------------------
// Current / Require / Invalidate
// ---------------------------------------------------------------------------

func TestSessionService_ExpiredTokenIsStale(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte("server-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sess := testUser
	sess.Token = token
	s, store := newSignedIn(t, sess)

	if _, err := s.Current(context.Background()); !errors.Is(err, domain.ErrStaleSession) {
		t.Fatalf("expected ErrStaleSession, got %v", err)
	}
	if store.has(ports.KeySession) {
		t.Error("stale session must be removed from storage")
	}
	if _, err := s.Current(context.Background()); !errors.Is(err, domain.ErrAuthRequired) {
		t.Errorf("second call: expected ErrAuthRequired, got %v", err)
	}
}

func TestSessionService_Require(t *testing.T) {
	s, _ := newSignedIn(t, testUser)
	if _, err := s.Require(context.Background(), domain.RoleAdmin); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if _, err := s.Require(context.Background(), domain.RoleUser, domain.RoleAdmin); err != nil {
		t.Errorf("expected access, got %v", err)
	}
}

func TestSessionService_InvalidateOnlyOnStale(t *testing.T) {
	ctx := context.Background()
	s, _ := newSignedIn(t, testUser)

	other := &domain.RemoteError{Op: "cart", Status: 500}
	if got := s.Invalidate(ctx, other); got != other {
		t.Errorf("error must be returned unchanged")
	}
	if _, err := s.Current(ctx); err != nil {
		t.Fatalf("non-401 failure must keep the session: %v", err)
	}

	stale := &domain.RemoteError{Op: "cart", Status: 401, Err: domain.ErrStaleSession}
	_ = s.Invalidate(ctx, stale)
	if _, err := s.Current(ctx); !errors.Is(err, domain.ErrAuthRequired) {
		t.Errorf("expected logout after 401, got %v", err)
	}
}
