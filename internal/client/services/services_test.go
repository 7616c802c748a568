package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/optimistic"
	"github.com/dmitrijs2005/gophsocial/internal/client/session"
	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakePosts struct {
	likes, unlikes []int
	ret            *models.Post
	err            error
}

func (f *fakePosts) Like(_ context.Context, id int) (*models.Post, error) {
	f.likes = append(f.likes, id)
	return f.ret, f.err
}

func (f *fakePosts) Unlike(_ context.Context, id int) (*models.Post, error) {
	f.unlikes = append(f.unlikes, id)
	return f.ret, f.err
}

type fakeFollows struct {
	follows, unfollows []int
	ret                *models.User
	err                error
}

func (f *fakeFollows) Follow(_ context.Context, id int) (*models.User, error) {
	f.follows = append(f.follows, id)
	return f.ret, f.err
}

func (f *fakeFollows) Unfollow(_ context.Context, id int) (*models.User, error) {
	f.unfollows = append(f.unfollows, id)
	return f.ret, f.err
}

type fakeUsers struct {
	signupIn   *models.UserCreate
	loginIn    *models.UserLogin
	loginErr   error
	token      string
	meCred     string
	me         *models.User
	meErr      error
	updateID   int
	updateIn   *models.UserUpdate
	passwordIn *models.PasswordUpdate
}

func (f *fakeUsers) Signup(_ context.Context, in models.UserCreate) (*models.User, error) {
	f.signupIn = &in
	return &models.User{ID: 1, Email: in.Email, Username: in.Username}, nil
}

func (f *fakeUsers) Login(_ context.Context, in models.UserLogin) (*models.Token, error) {
	f.loginIn = &in
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.Token{AccessToken: f.token, TokenType: "bearer"}, nil
}

func (f *fakeUsers) Me(_ context.Context, credential string) (*models.User, error) {
	f.meCred = credential
	return f.me, f.meErr
}

func (f *fakeUsers) Update(_ context.Context, id int, in models.UserUpdate) (*models.User, error) {
	f.updateID, f.updateIn = id, &in
	return &models.User{ID: id, Email: "ann@example.com", Username: *in.Username, Bio: *in.Bio}, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, _ int, in models.PasswordUpdate) error {
	f.passwordIn = &in
	return nil
}

func signedInStore(t *testing.T, id int) *session.Store {
	t.Helper()
	s := session.New(nil, nil)
	require.NoError(t, s.Login(context.Background(), &session.Identity{ID: id, Username: "ann"}, "tok"))
	return s
}

// ---- likes ----

func TestNextLike(t *testing.T) {
	tests := []struct {
		in, want models.Post
	}{
		{models.Post{IsLiked: false, LikeCount: 5}, models.Post{IsLiked: true, LikeCount: 6}},
		{models.Post{IsLiked: true, LikeCount: 6}, models.Post{IsLiked: false, LikeCount: 5}},
		{models.Post{IsLiked: true, LikeCount: 0}, models.Post{IsLiked: false, LikeCount: 0}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NextLike(tt.in))
	}
	p := models.Post{LikeCount: 3}
	assert.Equal(t, p, NextLike(NextLike(p)))
}

func TestLikeService_Toggle(t *testing.T) {
	ctx := context.Background()

	t.Run("like then unlike picks the endpoint from the desired state", func(t *testing.T) {
		api := &fakePosts{}
		coll := optimistic.NewCollection(PostKey, []models.Post{{ID: 7, LikeCount: 5}})
		svc := NewLikeService(api, signedInStore(t, 1))

		res := svc.Toggle(ctx, coll, 7)
		require.True(t, res.OK())
		assert.Equal(t, models.Post{ID: 7, IsLiked: true, LikeCount: 6}, res.Value)

		res = svc.Toggle(ctx, coll, 7)
		require.True(t, res.OK())
		assert.Equal(t, models.Post{ID: 7, IsLiked: false, LikeCount: 5}, res.Value)

		assert.Equal(t, []int{7}, api.likes)
		assert.Equal(t, []int{7}, api.unlikes)
	})

	t.Run("authoritative post wins", func(t *testing.T) {
		api := &fakePosts{ret: &models.Post{ID: 7, IsLiked: true, LikeCount: 9}}
		coll := optimistic.NewCollection(PostKey, []models.Post{{ID: 7, LikeCount: 5}})

		res := NewLikeService(api, signedInStore(t, 1)).Toggle(ctx, coll, 7)
		require.True(t, res.OK())
		assert.True(t, res.Authoritative)
		got, _ := coll.Get(7)
		assert.Equal(t, 9, got.LikeCount)
	})

	t.Run("failure rolls back", func(t *testing.T) {
		api := &fakePosts{err: &common.Failure{Kind: common.KindNotFound, Status: 404}}
		before := models.Post{ID: 7, IsLiked: true, LikeCount: 1}
		coll := optimistic.NewCollection(PostKey, []models.Post{before})

		res := NewLikeService(api, signedInStore(t, 1)).Toggle(ctx, coll, 7)
		assert.Equal(t, common.KindNotFound, res.Kind())
		got, _ := coll.Get(7)
		assert.Equal(t, before, got)
	})

	t.Run("anonymous sends nothing", func(t *testing.T) {
		api := &fakePosts{}
		coll := optimistic.NewCollection(PostKey, []models.Post{{ID: 7}})

		res := NewLikeService(api, session.New(nil, nil)).Toggle(ctx, coll, 7)
		assert.Equal(t, common.KindUnauthenticated, res.Kind())
		assert.Empty(t, api.likes)
		got, _ := coll.Get(7)
		assert.False(t, got.IsLiked)
	})
}

// ---- follows ----

func TestNextFollow(t *testing.T) {
	u := NextFollow(models.User{ID: 2, FollowerCount: 3})
	assert.True(t, u.Following())
	assert.Equal(t, 4, u.FollowerCount)

	u = NextFollow(u)
	assert.False(t, u.Following())
	assert.Equal(t, 3, u.FollowerCount)

	yes := true
	u = NextFollow(models.User{IsFollowing: &yes, FollowerCount: 0})
	assert.Equal(t, 0, u.FollowerCount)
	assert.True(t, yes, "the input's flag is not mutated")
}

func TestFollowVisible(t *testing.T) {
	assert.False(t, FollowVisible(1, 1, true), "never on one's own profile")
	assert.False(t, FollowVisible(1, 2, false))
	assert.True(t, FollowVisible(1, 2, true))
}

func TestFollowService_Toggle(t *testing.T) {
	ctx := context.Background()

	t.Run("follow", func(t *testing.T) {
		api := &fakeFollows{}
		cell := optimistic.NewCell(UserKey)
		cell.Set(models.User{ID: 2, FollowerCount: 1})

		res := NewFollowService(api, signedInStore(t, 1)).Toggle(ctx, cell)
		require.True(t, res.OK())
		assert.True(t, res.Value.Following())
		assert.Equal(t, []int{2}, api.follows)
	})

	t.Run("unfollow rollback", func(t *testing.T) {
		yes := true
		api := &fakeFollows{err: errors.New("network")}
		cell := optimistic.NewCell(UserKey)
		cell.Set(models.User{ID: 2, FollowerCount: 1, IsFollowing: &yes})

		res := NewFollowService(api, signedInStore(t, 1)).Toggle(ctx, cell)
		require.False(t, res.OK())
		assert.Equal(t, []int{2}, api.unfollows)
		got, _ := cell.Get()
		assert.True(t, got.Following())
		assert.Equal(t, 1, got.FollowerCount)
	})

	t.Run("self follow rejected", func(t *testing.T) {
		api := &fakeFollows{}
		cell := optimistic.NewCell(UserKey)
		cell.Set(models.User{ID: 1})

		res := NewFollowService(api, signedInStore(t, 1)).Toggle(ctx, cell)
		assert.Equal(t, common.KindValidation, res.Kind())
		assert.Empty(t, api.follows)
	})

	t.Run("anonymous", func(t *testing.T) {
		api := &fakeFollows{}
		cell := optimistic.NewCell(UserKey)
		cell.Set(models.User{ID: 2})

		res := NewFollowService(api, session.New(nil, nil)).Toggle(ctx, cell)
		assert.Equal(t, common.KindUnauthenticated, res.Kind())
		assert.Empty(t, api.follows)
	})
}

// ---- auth ----

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	users := &fakeUsers{token: "tok-9", me: &models.User{ID: 9, Username: "ann", Email: "ann@example.com"}}
	store := session.New(nil, nil)

	id, err := NewAuthService(users, store, nil).Login(ctx, " ann@example.com ", "password1")
	require.NoError(t, err)
	assert.Equal(t, 9, id.ID)
	assert.Equal(t, "ann@example.com", users.loginIn.Email)
	assert.Equal(t, "tok-9", users.meCred, "identity is resolved with the new token")
	assert.True(t, store.Authenticated())
	assert.Equal(t, "tok-9", store.Credential())
}

func TestAuthService_LoginFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("validation", func(t *testing.T) {
		users := &fakeUsers{}
		_, err := NewAuthService(users, session.New(nil, nil), nil).Login(ctx, "", "")
		assert.ErrorIs(t, err, common.ErrValidation)
		assert.Nil(t, users.loginIn)
	})

	t.Run("rejected", func(t *testing.T) {
		users := &fakeUsers{loginErr: &common.Failure{Kind: common.KindUnauthenticated, Status: 401}}
		store := session.New(nil, nil)
		_, err := NewAuthService(users, store, nil).Login(ctx, "a@b", "x")
		assert.ErrorIs(t, err, common.ErrUnauthenticated)
		assert.False(t, store.Authenticated())
	})

	t.Run("me fails", func(t *testing.T) {
		users := &fakeUsers{token: "t", meErr: &common.Failure{Kind: common.KindUnknown}}
		store := session.New(nil, nil)
		_, err := NewAuthService(users, store, nil).Login(ctx, "a@b", "x")
		assert.ErrorIs(t, err, common.ErrUnknown)
		assert.False(t, store.Authenticated())
	})

	t.Run("empty token", func(t *testing.T) {
		users := &fakeUsers{}
		_, err := NewAuthService(users, session.New(nil, nil), nil).Login(ctx, "a@b", "x")
		assert.Error(t, err)
	})
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()
	users := &fakeUsers{token: "t", me: &models.User{ID: 1, Username: "ann"}}
	store := session.New(nil, nil)
	svc := NewAuthService(users, store, nil)

	_, err := svc.Signup(ctx, models.UserCreate{Email: "bad", Username: "ann", Password: "password1"})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Nil(t, users.signupIn)

	id, err := svc.Signup(ctx, models.UserCreate{Email: "ann@example.com", Username: " ann ", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "ann", users.signupIn.Username)
	assert.Equal(t, "password1", users.loginIn.Password)
	assert.Equal(t, 1, id.ID)
	assert.True(t, store.Authenticated())
}

func TestAuthService_Restore(t *testing.T) {
	users := &fakeUsers{me: &models.User{ID: 1}}
	require.NoError(t, NewAuthService(users, session.New(nil, nil), nil).Restore(context.Background()))
	assert.Empty(t, users.meCred, "nothing persisted, nothing fetched")
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	users := &fakeUsers{}

	_, err := NewAuthService(users, session.New(nil, nil), nil).UpdateProfile(ctx, "x", "")
	assert.ErrorIs(t, err, common.ErrUnauthenticated)

	store := signedInStore(t, 4)
	svc := NewAuthService(users, store, nil)

	_, err = svc.UpdateProfile(ctx, "   ", "bio")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Nil(t, users.updateIn)

	id, err := svc.UpdateProfile(ctx, "annie", "hello")
	require.NoError(t, err)
	assert.Equal(t, 4, users.updateID)
	assert.Equal(t, "annie", id.Username)
	assert.Equal(t, "hello", store.Identity().Bio)
	assert.Equal(t, "tok", store.Credential())
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	users := &fakeUsers{}
	svc := NewAuthService(users, signedInStore(t, 4), nil)

	assert.ErrorIs(t, svc.ChangePassword(ctx, "old", "newpassword", "different"), common.ErrValidation)
	assert.ErrorIs(t, svc.ChangePassword(ctx, "old", "short", "short"), common.ErrValidation)
	assert.Nil(t, users.passwordIn)

	require.NoError(t, svc.ChangePassword(ctx, "old", "newpassword", "newpassword"))
	assert.Equal(t, models.PasswordUpdate{OldPassword: "old", NewPassword: "newpassword"}, *users.passwordIn)
}
