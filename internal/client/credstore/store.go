// Package credstore persists the bearer credential between runs.
//
// The credential is encoded with gorilla/securecookie: an HMAC guards it
// against tampering, AES encrypts it at rest and the embedded timestamp
// enforces a maximum age. The keys live in the same database, so the store
// protects against a copied token value, not against a copied database.
package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/storage"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/gorilla/securecookie"
)

const (
	keyHash       = "credstore.hash_key"
	keyBlock      = "credstore.block_key"
	keyCredential = "session.credential"
	keyProfile    = "session.profile"

	cookieName = "access_token"
)

var (
	// ErrNoCredential means nothing is persisted.
	ErrNoCredential = errors.New("no persisted credential")
	// ErrExpired covers both an aged-out and an undecodable credential.
	ErrExpired = errors.New("persisted credential expired or invalid")
	// ErrInsecureOrigin is returned by Set when secure storage is on and the
	// API origin is plain http on a non-loopback host.
	ErrInsecureOrigin = errors.New("refusing to persist credential for insecure origin")
)

type Options struct {
	MaxAge time.Duration
	// Secure with Origin enables the insecure-origin check.
	Secure bool
	Origin string
	Logger logging.Logger
}

type Store struct {
	db     *sql.DB
	kv     *storage.KV
	codec  *securecookie.SecureCookie
	secure bool
	origin string
	log    logging.Logger
}

// New loads or generates the codec keys and returns a ready store.
func New(ctx context.Context, db *sql.DB, opts Options) (*Store, error) {
	if opts.MaxAge <= 0 {
		return nil, errors.New("credstore: max age must be positive")
	}

	kv := storage.NewKV(db)
	hashKey, err := loadOrCreateKey(ctx, kv, keyHash, 64)
	if err != nil {
		return nil, err
	}
	blockKey, err := loadOrCreateKey(ctx, kv, keyBlock, 32)
	if err != nil {
		return nil, err
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(int(opts.MaxAge / time.Second))
	codec.SetSerializer(securecookie.JSONEncoder{})

	return &Store{
		db:     db,
		kv:     kv,
		codec:  codec,
		secure: opts.Secure,
		origin: opts.Origin,
		log:    logging.OrNop(opts.Logger),
	}, nil
}

func loadOrCreateKey(ctx context.Context, kv *storage.KV, name string, size int) ([]byte, error) {
	key, err := kv.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(key) == size {
		return key, nil
	}
	key = securecookie.GenerateRandomKey(size)
	if key == nil {
		return nil, fmt.Errorf("credstore: generate %s", name)
	}
	if err := kv.Set(ctx, name, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Get returns the persisted credential. An expired or tampered value is
// erased and reported as ErrExpired.
func (s *Store) Get(ctx context.Context) (string, error) {
	raw, err := s.kv.Get(ctx, keyCredential)
	if err != nil {
		return "", err
	}
	if raw == nil {
		return "", ErrNoCredential
	}

	var credential string
	if err := s.codec.Decode(cookieName, string(raw), &credential); err != nil {
		s.log.Info(ctx, "discarding persisted credential", "reason", err.Error())
		if rmErr := s.Remove(ctx); rmErr != nil {
			return "", rmErr
		}
		return "", ErrExpired
	}
	return credential, nil
}

// Set persists credential together with an opaque profile snapshot in one
// transaction. A nil profile leaves any stored profile unchanged.
func (s *Store) Set(ctx context.Context, credential string, profile []byte) error {
	if s.secure && !safeOrigin(s.origin) {
		return ErrInsecureOrigin
	}

	encoded, err := s.codec.Encode(cookieName, credential)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}

	return storage.WithTx(ctx, s.db, func(ctx context.Context, tx storage.DBTX) error {
		kv := storage.NewKV(tx)
		if err := kv.Set(ctx, keyCredential, []byte(encoded)); err != nil {
			return err
		}
		if profile != nil {
			return kv.Set(ctx, keyProfile, profile)
		}
		return nil
	})
}

// SetProfile replaces the stored profile snapshot, when a credential exists.
func (s *Store) SetProfile(ctx context.Context, profile []byte) error {
	raw, err := s.kv.Get(ctx, keyCredential)
	if err != nil || raw == nil {
		return err
	}
	return s.kv.Set(ctx, keyProfile, profile)
}

// Profile returns the stored profile snapshot or nil.
func (s *Store) Profile(ctx context.Context) ([]byte, error) {
	return s.kv.Get(ctx, keyProfile)
}

// Remove erases the credential and the profile. Idempotent.
func (s *Store) Remove(ctx context.Context) error {
	return storage.WithTx(ctx, s.db, func(ctx context.Context, tx storage.DBTX) error {
		kv := storage.NewKV(tx)
		if err := kv.Delete(ctx, keyCredential); err != nil {
			return err
		}
		return kv.Delete(ctx, keyProfile)
	})
}

func safeOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Scheme == "https" {
		return true
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
