package seal

import (
	"bytes"
	"errors"
	"testing"
)

func TestBox_RoundTrip(t *testing.T) {
	b, err := New("correct horse")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	plain := []byte(`{"username":"alice","token":"t"}`)

	sealed, err := b.Seal(plain)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if bytes.Contains(sealed, []byte("alice")) {
		t.Error("sealed record leaks plaintext")
	}
	got, err := b.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("got %q", got)
	}

	again, _ := b.Seal(plain)
	if bytes.Equal(again, sealed) {
		t.Error("two seals of the same record must differ")
	}
}

func TestBox_OpenRejects(t *testing.T) {
	b, _ := New("key one")
	other, _ := New("key two")
	sealed, _ := b.Seal([]byte("secret"))

	if _, err := other.Open(sealed); !errors.Is(err, ErrOpen) {
		t.Errorf("other key: expected ErrOpen, got %v", err)
	}
	if _, err := b.Open([]byte("short")); !errors.Is(err, ErrOpen) {
		t.Errorf("truncated: expected ErrOpen, got %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if _, err := b.Open(sealed); !errors.Is(err, ErrOpen) {
		t.Errorf("tampered: expected ErrOpen, got %v", err)
	}
}

func TestNew_EmptyPassphrase(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected error")
	}
}
