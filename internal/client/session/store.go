package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/credstore"
	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
)

// Persister keeps the credential, and a profile snapshot, across restarts.
// credstore.Store implements it.
type Persister interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, credential string, profile []byte) error
	SetProfile(ctx context.Context, profile []byte) error
	Profile(ctx context.Context) ([]byte, error)
	Remove(ctx context.Context) error
}

// FetchMe resolves the identity behind credential.
type FetchMe func(ctx context.Context, credential string) (*Identity, error)

var anonymous = &Snapshot{}

type Store struct {
	state atomic.Pointer[Snapshot]

	// mu serialises writers; readers only load state.
	mu      sync.Mutex
	// pmu is held across a transition and its persistence so that the
	// persisted credential follows the order of transitions. Taken before mu.
	pmu     sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int

	persist Persister
	log     logging.Logger
	now     func() time.Time
}

// New returns an anonymous store. persist may be nil for an in-memory session.
func New(persist Persister, log logging.Logger) *Store {
	s := &Store{
		subs:    make(map[int]func(Snapshot)),
		persist: persist,
		log:     logging.OrNop(log),
		now:     time.Now,
	}
	s.state.Store(anonymous)
	return s
}

func (s *Store) Snapshot() Snapshot { return *s.state.Load() }

func (s *Store) Credential() string { return s.state.Load().Credential }

func (s *Store) Identity() *Identity { return s.state.Load().Identity }

func (s *Store) Authenticated() bool { return s.state.Load().Authenticated }

// Subscribe registers fn to be called after every transition.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Login stores identity and credential and persists them.
func (s *Store) Login(ctx context.Context, identity *Identity, credential string) error {
	if identity == nil || credential == "" {
		return common.Validation("login requires an identity and a credential")
	}
	id := *identity

	s.pmu.Lock()
	defer s.pmu.Unlock()

	s.swap(ctx, &Snapshot{Identity: &id, Credential: credential, Authenticated: true})
	s.log.Info(ctx, "session authenticated", "user_id", id.ID)

	if s.persist != nil {
		if err := s.persist.Set(ctx, credential, marshalIdentity(&id)); err != nil {
			s.log.Warn(ctx, "persist credential failed", "error", err)
		}
	}
	return nil
}

// Logout clears the session and erases the persisted credential.
// It is a no-op when already anonymous.
func (s *Store) Logout(ctx context.Context) {
	s.pmu.Lock()
	defer s.pmu.Unlock()

	if !s.clear(ctx, "", "logout") {
		return
	}
	s.erase(ctx)
}

// Reject is the forced logout triggered by an authentication-rejected
// response. When sent is non-empty the session is only torn down if sent is
// still the current credential, so a stale response cannot end a newer
// session. It reports whether a transition happened.
func (s *Store) Reject(ctx context.Context, sent string) bool {
	s.pmu.Lock()
	defer s.pmu.Unlock()

	if !s.clear(ctx, sent, "credential rejected") {
		return false
	}
	s.erase(ctx)
	return true
}

// UpdateProfile replaces the identity, keeping the credential. No-op when
// anonymous.
func (s *Store) UpdateProfile(ctx context.Context, identity *Identity) {
	if identity == nil {
		return
	}
	id := *identity

	s.pmu.Lock()
	defer s.pmu.Unlock()

	s.mu.Lock()
	cur := s.state.Load()
	if !cur.Authenticated {
		s.mu.Unlock()
		return
	}
	next := &Snapshot{Identity: &id, Credential: cur.Credential, Authenticated: true}
	s.state.Store(next)
	subs := s.subscribers()
	s.mu.Unlock()

	notify(subs, *next)

	if s.persist != nil {
		if err := s.persist.SetProfile(ctx, marshalIdentity(&id)); err != nil {
			s.log.Warn(ctx, "persist profile failed", "error", err)
		}
	}
}

// Restore resumes a persisted session. An absent, expired or rejected
// credential leaves the store anonymous and erased. When fetchMe fails for
// any other reason the persisted profile is used instead.
func (s *Store) Restore(ctx context.Context, fetchMe FetchMe) error {
	if s.persist == nil {
		return nil
	}

	credential, err := s.persist.Get(ctx)
	switch {
	case errors.Is(err, credstore.ErrNoCredential), errors.Is(err, credstore.ErrExpired):
		return nil
	case err != nil:
		return err
	}

	if Expired(credential, s.now()) {
		s.log.Info(ctx, "persisted credential expired")
		s.erase(ctx)
		return nil
	}

	identity, err := fetchMe(ctx, credential)
	if err == nil {
		return s.Login(ctx, identity, credential)
	}
	if common.KindOf(err) == common.KindUnauthenticated {
		s.log.Info(ctx, "persisted credential rejected")
		s.erase(ctx)
		return nil
	}

	cached := s.cachedIdentity(ctx)
	if cached == nil {
		return err
	}
	s.log.Warn(ctx, "restoring session from cached profile", "error", err)
	s.swap(ctx, &Snapshot{Identity: cached, Credential: credential, Authenticated: true})
	return nil
}

// clear swaps in the anonymous state. A non-empty want must match the
// current credential.
func (s *Store) clear(ctx context.Context, want, reason string) bool {
	s.mu.Lock()
	cur := s.state.Load()
	if !cur.Authenticated || (want != "" && cur.Credential != want) {
		s.mu.Unlock()
		return false
	}
	s.state.Store(anonymous)
	subs := s.subscribers()
	s.mu.Unlock()

	s.log.Info(ctx, "session cleared", "reason", reason, "user_id", cur.UserID())
	notify(subs, *anonymous)
	return true
}

func (s *Store) swap(_ context.Context, next *Snapshot) {
	s.mu.Lock()
	s.state.Store(next)
	subs := s.subscribers()
	s.mu.Unlock()
	notify(subs, *next)
}

func (s *Store) erase(ctx context.Context) {
	if s.persist == nil {
		return
	}
	if err := s.persist.Remove(ctx); err != nil {
		s.log.Warn(ctx, "erase persisted credential failed", "error", err)
	}
}

func (s *Store) cachedIdentity(ctx context.Context) *Identity {
	raw, err := s.persist.Profile(ctx)
	if err != nil || raw == nil {
		return nil
	}
	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil
	}
	return &id
}

// subscribers must be called with mu held.
func (s *Store) subscribers() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}

func marshalIdentity(id *Identity) []byte {
	b, _ := json.Marshal(id)
	return b
}
