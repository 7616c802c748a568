package fakeapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	t     *testing.T
	base  string
	token string
}

func (c call) do(method, path string, body any) (int, []byte) {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, data
}

func setup(t *testing.T) (*Server, call) {
	t.Helper()
	s := New()
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return s, call{t: t, base: srv.URL}
}

func TestSignupLoginMe(t *testing.T) {
	_, c := setup(t)

	status, _ := c.do(http.MethodPost, "/users/signup", models.UserCreate{Email: "a@x.io", Username: "a", Password: "password1"})
	require.Equal(t, http.StatusOK, status)

	status, body := c.do(http.MethodPost, "/users/signup", models.UserCreate{Email: "A@x.io", Username: "b", Password: "password1"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"detail":"Email already registered"}`, string(body))

	status, _ = c.do(http.MethodPost, "/users/token", models.UserLogin{Email: "a@x.io", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = c.do(http.MethodPost, "/users/token", models.UserLogin{Email: "a@x.io", Password: "password1"})
	require.Equal(t, http.StatusOK, status)
	var tok models.Token
	require.NoError(t, json.Unmarshal(body, &tok))
	require.NotEmpty(t, tok.AccessToken)

	status, _ = c.do(http.MethodGet, "/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	c.token = tok.AccessToken
	status, body = c.do(http.MethodGet, "/users/me", nil)
	require.Equal(t, http.StatusOK, status)
	var me models.User
	require.NoError(t, json.Unmarshal(body, &me))
	assert.Equal(t, "a", me.Username)
}

func TestLikeReportsViewerState(t *testing.T) {
	s, c := setup(t)
	ann := s.AddUser("ann@x.io", "ann", "password1")
	p := s.AddPost(ann.ID, "hi", 2)
	c.token = s.IssueToken(ann.ID)
	path := "/posts/" + strconv.Itoa(p.ID) + "/like"

	status, body := c.do(http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, status)
	var got models.Post
	require.NoError(t, json.Unmarshal(body, &got))
	assert.True(t, got.IsLiked)
	assert.Equal(t, 3, got.LikeCount)

	status, body = c.do(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &got))
	assert.False(t, got.IsLiked)
	assert.Equal(t, 2, got.LikeCount)

	s.VoidMutations = true
	status, body = c.do(http.MethodPost, path, nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Empty(t, body)
	seen, _ := s.Post(p.ID, ann.ID)
	assert.True(t, seen.IsLiked)

	s.RemovePost(p.ID)
	status, _ = c.do(http.MethodPost, path, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestOnlyAuthorsEdit(t *testing.T) {
	s, c := setup(t)
	ann := s.AddUser("ann@x.io", "ann", "password1")
	bob := s.AddUser("bob@x.io", "bob", "password2")
	p := s.AddPost(ann.ID, "mine", 0)
	cm := s.AddComment(p.ID, ann.ID, "also mine")

	c.token = s.IssueToken(bob.ID)
	content := "stolen"
	status, _ := c.do(http.MethodPut, "/posts/"+strconv.Itoa(p.ID), models.PostUpdate{Content: &content})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = c.do(http.MethodDelete, "/comments/"+strconv.Itoa(cm.ID), nil)
	assert.Equal(t, http.StatusForbidden, status)

	c.token = s.IssueToken(ann.ID)
	content = "edited #go"
	status, body := c.do(http.MethodPut, "/posts/"+strconv.Itoa(p.ID), models.PostUpdate{Content: &content})
	require.Equal(t, http.StatusOK, status)
	var got models.Post
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Hashtags, 1)
	assert.Equal(t, "go", got.Hashtags[0].Name)
}

func TestListingsAndAuth(t *testing.T) {
	s, c := setup(t)
	ann := s.AddUser("ann@x.io", "ann", "password1")
	bob := s.AddUser("bob@x.io", "bob", "password2")
	quiet := s.AddPost(bob.ID, "quiet", 0)
	loud := s.AddPost(bob.ID, "loud", 9)
	s.AddFollow(ann.ID, bob.ID)

	for _, path := range []string{"/posts", "/posts/feed", "/posts/liked"} {
		status, _ := c.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
	}

	status, body := c.do(http.MethodGet, "/posts/trending", nil)
	require.Equal(t, http.StatusOK, status)
	var posts []models.Post
	require.NoError(t, json.Unmarshal(body, &posts))
	require.Len(t, posts, 2)
	assert.Equal(t, loud.ID, posts[0].ID)

	status, body = c.do(http.MethodGet, "/posts?user_id="+strconv.Itoa(bob.ID)+"&sort_by=oldest", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &posts))
	assert.Equal(t, quiet.ID, posts[0].ID)

	c.token = s.IssueToken(ann.ID)
	status, body = c.do(http.MethodGet, "/posts/feed?limit=1", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &posts))
	assert.Len(t, posts, 1)

	status, body = c.do(http.MethodGet, "/users/"+strconv.Itoa(bob.ID), nil)
	require.Equal(t, http.StatusOK, status)
	var u models.User
	require.NoError(t, json.Unmarshal(body, &u))
	assert.True(t, u.Following())
	assert.Equal(t, 1, u.FollowerCount)
}

func TestFaultsHoldsAndRequests(t *testing.T) {
	s, c := setup(t)
	bob := s.AddUser("bob@x.io", "bob", "password2")
	path := "/users/" + strconv.Itoa(bob.ID)

	s.FailNext(http.MethodGet, "/users/{id}", http.StatusServiceUnavailable)
	status, body := c.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.JSONEq(t, `{"detail":"Service Unavailable"}`, string(body))

	status, _ = c.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, status, "a fault fires once")

	h := s.Hold(http.MethodGet, path)
	done := make(chan int, 1)
	go func() {
		resp, err := http.Get(c.base + path)
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()
	select {
	case <-h.Arrived():
	case <-time.After(5 * time.Second):
		t.Fatal("request never arrived")
	}
	select {
	case <-done:
		t.Fatal("held request completed early")
	default:
	}
	h.Release()
	h.Release()
	assert.Equal(t, http.StatusOK, <-done)

	assert.Equal(t, []string{"GET " + path, "GET " + path, "GET " + path}, s.Requests())
}
