package credstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/storage"
	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts Options) (*Store, *sql.DB) {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	if opts.MaxAge == 0 {
		opts.MaxAge = time.Hour
	}
	s, err := New(ctx, db, opts)
	require.NoError(t, err)
	return s, db
}

func TestStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t, Options{})

	_, err := s.Get(ctx)
	require.ErrorIs(t, err, ErrNoCredential)

	require.NoError(t, s.Set(ctx, "tok-1", []byte(`{"id":1}`)))

	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got)

	p, err := s.Profile(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1}`, string(p))

	require.NoError(t, s.Remove(ctx))
	require.NoError(t, s.Remove(ctx))

	_, err = s.Get(ctx)
	require.ErrorIs(t, err, ErrNoCredential)
	p, err = s.Profile(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestStore_ValueIsEncodedAtRest(t *testing.T) {
	ctx := context.Background()
	s, db := setup(t, Options{})
	require.NoError(t, s.Set(ctx, "secret-token", nil))

	raw, err := storage.NewKV(db).Get(ctx, keyCredential)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")
}

func TestStore_KeysSurviveReopen(t *testing.T) {
	ctx := context.Background()
	s, db := setup(t, Options{})
	require.NoError(t, s.Set(ctx, "tok", nil))

	again, err := New(ctx, db, Options{MaxAge: time.Hour})
	require.NoError(t, err)

	got, err := again.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", got)
}

func TestStore_TamperedValueIsErased(t *testing.T) {
	ctx := context.Background()
	s, db := setup(t, Options{})
	require.NoError(t, s.Set(ctx, "tok", nil))
	require.NoError(t, storage.NewKV(db).Set(ctx, keyCredential, []byte("garbage")))

	_, err := s.Get(ctx)
	require.ErrorIs(t, err, ErrExpired)

	_, err = s.Get(ctx)
	require.ErrorIs(t, err, ErrNoCredential)
}

func TestStore_ExpiredValueIsErased(t *testing.T) {
	ctx := context.Background()
	s, db := setup(t, Options{})

	require.NoError(t, s.Set(ctx, "tok", nil))
	hashKey, err := storage.NewKV(db).Get(ctx, keyHash)
	require.NoError(t, err)
	blockKey, err := storage.NewKV(db).Get(ctx, keyBlock)
	require.NoError(t, err)

	// Timestamps have one-second resolution, so shrink the max age and wait.
	s.codec = securecookie.New(hashKey, blockKey).MaxAge(1)
	s.codec.SetSerializer(securecookie.JSONEncoder{})
	time.Sleep(2100 * time.Millisecond)

	_, err = s.Get(ctx)
	require.ErrorIs(t, err, ErrExpired)
}

func TestStore_InsecureOrigin(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		origin string
		ok     bool
	}{
		{"https://api.example.com", true},
		{"http://127.0.0.1:8000", true},
		{"http://localhost:8000", true},
		{"http://[::1]:8000", true},
		{"http://api.example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			s, _ := setup(t, Options{Secure: true, Origin: tt.origin})
			err := s.Set(ctx, "tok", nil)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInsecureOrigin)
			}
		})
	}

	s, _ := setup(t, Options{Secure: false, Origin: "http://api.example.com"})
	assert.NoError(t, s.Set(ctx, "tok", nil))
}

func TestStore_SetProfileRequiresCredential(t *testing.T) {
	ctx := context.Background()
	s, _ := setup(t, Options{})

	require.NoError(t, s.SetProfile(ctx, []byte(`{}`)))
	p, err := s.Profile(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)

	require.NoError(t, s.Set(ctx, "tok", []byte(`{"v":1}`)))
	require.NoError(t, s.SetProfile(ctx, []byte(`{"v":2}`)))
	p, err = s.Profile(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(p))
}

func TestNew_RejectsNonPositiveMaxAge(t *testing.T) {
	db, err := storage.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = New(context.Background(), db, Options{})
	require.Error(t, err)
}
