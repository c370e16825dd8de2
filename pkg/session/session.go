// Package session persists the single credential pair consulted at
// startup to re-authenticate against the profile collection.
package session

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/driftwave/client/pkg/mirror"
)

const mirrorKey = "local_session"

const BcryptCost = 12

var (
	ErrNoSession       = errors.New("no stored session")
	ErrInvalidPassword = errors.New("invalid password")
)

type Credentials struct {
	Alias        string `msgpack:"alias"`
	PasswordHash []byte `msgpack:"password_hash"`
}

type Store struct {
	mirror *mirror.Mirror
}

func NewStore(m *mirror.Mirror) *Store {
	return &Store{mirror: m}
}

// Save hashes and persists the credential pair, replacing any previous
// session.
func (s *Store) Save(alias string, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return err
	}
	return s.mirror.Save(mirrorKey, &Credentials{Alias: alias, PasswordHash: hash})
}

// Load returns the persisted credentials, if any.
func (s *Store) Load() (Credentials, error) {
	var creds Credentials
	if !s.mirror.Load(mirrorKey, &creds) || creds.Alias == "" {
		return creds, ErrNoSession
	}
	return creds, nil
}

// Verify checks password against the stored hash.
func (s *Store) Verify(password string) error {
	creds, err := s.Load()
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword(creds.PasswordHash, []byte(password)) != nil {
		return ErrInvalidPassword
	}
	return nil
}

// Clear forgets the stored session.
func (s *Store) Clear() error {
	return s.mirror.Delete(mirrorKey)
}
