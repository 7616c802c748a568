package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/credstore"
	"github.com/dmitrijs2005/gophsocial/internal/client/storage"
	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePersister struct {
	mu         sync.Mutex
	credential string
	profile    []byte
	getErr     error
	setErr     error
	removed    int

	// setEntered and setGate, when non-nil, hold Set until the test lets
	// it write.
	setEntered chan struct{}
	setGate    chan struct{}
}

func (f *fakePersister) Get(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	if f.credential == "" {
		return "", credstore.ErrNoCredential
	}
	return f.credential, nil
}

func (f *fakePersister) Set(_ context.Context, credential string, profile []byte) error {
	if f.setGate != nil {
		close(f.setEntered)
		<-f.setGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.credential = credential
	if profile != nil {
		f.profile = profile
	}
	return nil
}

func (f *fakePersister) SetProfile(_ context.Context, profile []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profile = profile
	return nil
}

func (f *fakePersister) Profile(context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile, nil
}

func (f *fakePersister) Remove(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credential, f.profile = "", nil
	f.removed++
	return nil
}

func ann() *Identity { return &Identity{ID: 1, Username: "ann", Email: "ann@example.com"} }

func TestStore_StartsAnonymous(t *testing.T) {
	s := New(nil, nil)
	snap := s.Snapshot()
	assert.False(t, snap.Authenticated)
	assert.Nil(t, snap.Identity)
	assert.Empty(t, snap.Credential)
	assert.Equal(t, 0, snap.UserID())
}

func TestStore_LoginLogout(t *testing.T) {
	ctx := context.Background()
	p := &fakePersister{}
	s := New(p, nil)

	require.NoError(t, s.Login(ctx, ann(), "tok"))
	assert.True(t, s.Authenticated())
	assert.Equal(t, "tok", s.Credential())
	assert.Equal(t, "ann", s.Identity().Username)
	assert.Equal(t, "tok", p.credential)
	assert.JSONEq(t, `{"id":1,"email":"ann@example.com","username":"ann","bio":"","follower_count":0,"following_count":0}`, string(p.profile))

	s.Logout(ctx)
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Credential())
	assert.Nil(t, s.Identity())
	assert.Empty(t, p.credential)
	assert.Equal(t, 1, p.removed)

	s.Logout(ctx)
	assert.Equal(t, 1, p.removed, "logout when anonymous is a no-op")
}

func TestStore_LoginRequiresBoth(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil)

	err := s.Login(ctx, nil, "tok")
	assert.ErrorIs(t, err, common.ErrValidation)
	err = s.Login(ctx, ann(), "")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.False(t, s.Authenticated())
}

func TestStore_LoginCopiesIdentity(t *testing.T) {
	s := New(nil, nil)
	id := ann()
	require.NoError(t, s.Login(context.Background(), id, "tok"))
	id.Username = "mutated"
	assert.Equal(t, "ann", s.Identity().Username)
}

func TestStore_PersistFailureDoesNotFailLogin(t *testing.T) {
	s := New(&fakePersister{setErr: errors.New("disk full")}, nil)
	require.NoError(t, s.Login(context.Background(), ann(), "tok"))
	assert.True(t, s.Authenticated())
}

func TestStore_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	p := &fakePersister{}
	s := New(p, nil)

	s.UpdateProfile(ctx, &Identity{ID: 1, Username: "ghost"})
	assert.False(t, s.Authenticated(), "no-op when anonymous")

	require.NoError(t, s.Login(ctx, ann(), "tok"))
	s.UpdateProfile(ctx, &Identity{ID: 1, Username: "annie", Bio: "hi"})

	assert.True(t, s.Authenticated())
	assert.Equal(t, "tok", s.Credential())
	assert.Equal(t, "annie", s.Identity().Username)
	assert.Contains(t, string(p.profile), "annie")
}

func TestStore_Reject(t *testing.T) {
	ctx := context.Background()
	s := New(&fakePersister{}, nil)
	require.NoError(t, s.Login(ctx, ann(), "old"))
	require.NoError(t, s.Login(ctx, ann(), "new"))

	assert.False(t, s.Reject(ctx, "old"), "stale credential cannot end the newer session")
	assert.True(t, s.Authenticated())

	assert.True(t, s.Reject(ctx, "new"))
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Credential())

	assert.False(t, s.Reject(ctx, "new"), "already anonymous")
}

func TestStore_RejectDuringLoginPersistEndsErased(t *testing.T) {
	ctx := context.Background()
	p := &fakePersister{setEntered: make(chan struct{}), setGate: make(chan struct{})}
	s := New(p, nil)

	loggedIn := make(chan error, 1)
	go func() { loggedIn <- s.Login(ctx, ann(), "tok") }()
	<-p.setEntered

	rejected := make(chan bool, 1)
	go func() { rejected <- s.Reject(ctx, "tok") }()

	select {
	case <-rejected:
		t.Fatal("reject finished while login was still persisting")
	case <-time.After(50 * time.Millisecond):
	}

	close(p.setGate)
	require.NoError(t, <-loggedIn)
	assert.True(t, <-rejected)

	assert.False(t, s.Authenticated())
	_, err := p.Get(ctx)
	assert.ErrorIs(t, err, credstore.ErrNoCredential, "rejected credential must not be written back")
	assert.Equal(t, 1, p.removed)
}

func TestStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil)

	var got []bool
	cancel := s.Subscribe(func(snap Snapshot) { got = append(got, snap.Authenticated) })

	require.NoError(t, s.Login(ctx, ann(), "tok"))
	s.UpdateProfile(ctx, ann())
	s.Reject(ctx, "tok")
	s.Logout(ctx)
	cancel()
	require.NoError(t, s.Login(ctx, ann(), "tok"))

	assert.Equal(t, []bool{true, true, false}, got)
}

func TestStore_ConcurrentReadersSeeConsistentSnapshots(t *testing.T) {
	ctx := context.Background()
	s := New(nil, nil)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := s.Snapshot()
				if snap.Authenticated != (snap.Identity != nil && snap.Credential != "") {
					t.Error("inconsistent snapshot")
					return
				}
			}
		}()
	}
	for i := 0; i < 200; i++ {
		_ = s.Login(ctx, ann(), "tok")
		s.Logout(ctx)
	}
	close(stop)
	wg.Wait()
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ann@example.com",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return tok
}

func TestCredentialClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	c, ok := CredentialClaims(signed(t, exp))
	require.True(t, ok)
	assert.Equal(t, "ann@example.com", c.Subject)
	assert.True(t, exp.Equal(c.ExpiresAt))

	_, ok = CredentialClaims("opaque-token")
	assert.False(t, ok)

	now := time.Now()
	assert.True(t, Expired(signed(t, now.Add(-time.Minute)), now))
	assert.False(t, Expired(signed(t, now.Add(time.Minute)), now))
	assert.False(t, Expired("opaque-token", now))
}

func TestStore_Restore(t *testing.T) {
	ctx := context.Background()
	me := func(id *Identity, err error) FetchMe {
		return func(context.Context, string) (*Identity, error) { return id, err }
	}

	t.Run("nothing persisted", func(t *testing.T) {
		s := New(&fakePersister{}, nil)
		called := false
		require.NoError(t, s.Restore(ctx, func(context.Context, string) (*Identity, error) {
			called = true
			return nil, nil
		}))
		assert.False(t, called)
		assert.False(t, s.Authenticated())
	})

	t.Run("valid credential", func(t *testing.T) {
		p := &fakePersister{credential: "tok"}
		s := New(p, nil)
		var sent string
		require.NoError(t, s.Restore(ctx, func(_ context.Context, c string) (*Identity, error) {
			sent = c
			return ann(), nil
		}))
		assert.Equal(t, "tok", sent)
		assert.True(t, s.Authenticated())
		assert.Equal(t, "ann", s.Identity().Username)
	})

	t.Run("expired jwt is erased without a request", func(t *testing.T) {
		p := &fakePersister{credential: signed(t, time.Now().Add(-time.Hour))}
		s := New(p, nil)
		require.NoError(t, s.Restore(ctx, func(context.Context, string) (*Identity, error) {
			t.Fatal("fetchMe must not be called")
			return nil, nil
		}))
		assert.False(t, s.Authenticated())
		assert.Equal(t, 1, p.removed)
	})

	t.Run("rejected credential is erased", func(t *testing.T) {
		p := &fakePersister{credential: "tok"}
		s := New(p, nil)
		require.NoError(t, s.Restore(ctx, me(nil, &common.Failure{Kind: common.KindUnauthenticated, Status: 401})))
		assert.False(t, s.Authenticated())
		assert.Empty(t, p.credential)
	})

	t.Run("offline falls back to cached profile", func(t *testing.T) {
		p := &fakePersister{credential: "tok", profile: []byte(`{"id":1,"username":"ann"}`)}
		s := New(p, nil)
		require.NoError(t, s.Restore(ctx, me(nil, &common.Failure{Kind: common.KindUnknown})))
		assert.True(t, s.Authenticated())
		assert.Equal(t, "ann", s.Identity().Username)
		assert.Equal(t, "tok", p.credential, "credential is kept")
	})

	t.Run("offline without cached profile", func(t *testing.T) {
		p := &fakePersister{credential: "tok"}
		s := New(p, nil)
		err := s.Restore(ctx, me(nil, &common.Failure{Kind: common.KindUnknown}))
		require.Error(t, err)
		assert.False(t, s.Authenticated())
		assert.Equal(t, "tok", p.credential)
	})

	t.Run("storage error", func(t *testing.T) {
		s := New(&fakePersister{getErr: errors.New("io")}, nil)
		require.Error(t, s.Restore(ctx, me(ann(), nil)))
		assert.False(t, s.Authenticated())
	})

	t.Run("no persister", func(t *testing.T) {
		s := New(nil, nil)
		require.NoError(t, s.Restore(ctx, me(ann(), nil)))
		assert.False(t, s.Authenticated())
	})
}

func TestStore_WithCredstore(t *testing.T) {
	ctx := context.Background()
	db, err := storage.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	cs, err := credstore.New(ctx, db, credstore.Options{MaxAge: time.Hour})
	require.NoError(t, err)

	s := New(cs, nil)
	require.NoError(t, s.Login(ctx, ann(), "tok"))

	restarted := New(cs, nil)
	require.NoError(t, restarted.Restore(ctx, func(_ context.Context, c string) (*Identity, error) {
		assert.Equal(t, "tok", c)
		return ann(), nil
	}))
	assert.True(t, restarted.Authenticated())

	restarted.Logout(ctx)
	_, err = cs.Get(ctx)
	assert.ErrorIs(t, err, credstore.ErrNoCredential)
}
