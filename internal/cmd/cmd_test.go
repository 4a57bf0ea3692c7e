package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestWhoami_SignedOut(t *testing.T) {
	t.Setenv("STATE_BACKEND", "memory")

	out, err := runCLI(t, "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out, "Not signed in") {
		t.Errorf("output = %q", out)
	}
}

func TestLogin_AgainstBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api1/auth/login" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"opaque","user":{"_id":"u1","username":"alice","name":"Acme Motors","role":"user"}}`))
	}))
	defer srv.Close()

	t.Setenv("STATE_BACKEND", "memory")
	t.Setenv("API_BASE_URL", srv.URL+"/api1")

	out, err := runCLI(t, "login", "-u", "alice", "-p", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Signed in as alice (user)") {
		t.Errorf("output = %q", out)
	}
}

func TestLogin_MissingPassword(t *testing.T) {
	t.Setenv("STATE_BACKEND", "memory")

	_, err := runCLI(t, "login", "-u", "alice", "-p", "")
	if err == nil || !strings.Contains(err.Error(), "Password is required") {
		t.Fatalf("expected validation error, got %v", err)
	}
}
