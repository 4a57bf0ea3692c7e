// Package seal encrypts small records at rest with NaCl secretbox.
package seal

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var ErrOpen = errors.New("seal: record cannot be opened")

// Box seals records with a key derived from a passphrase. Output layout is
// nonce || box.
type Box struct {
	key [32]byte
}

// New derives the key from passphrase. An empty passphrase is rejected.
func New(passphrase string) (*Box, error) {
	if passphrase == "" {
		return nil, errors.New("seal: empty passphrase")
	}
	return &Box{key: sha256.Sum256([]byte(passphrase))}, nil
}

func (b *Box) Seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("seal: nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plain, &nonce, &b.key), nil
}

func (b *Box) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrOpen
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &b.key)
	if !ok {
		return nil, ErrOpen
	}
	return plain, nil
}
