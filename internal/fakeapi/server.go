// Package fakeapi is an in-memory implementation of the social service REST
// API. Tests run the client stack against it through httptest.
//
// Besides the endpoints it supports fault injection (FailNext), holding a
// request until the test releases it (Hold) and a request log (Requests).
package fakeapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var epoch = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

type user struct {
	models.User
	password string
}

type post struct {
	id        int
	userID    int
	content   string
	createdAt time.Time
	baseLikes int
	likes     map[int]bool
	images    []models.Image
}

type fault struct {
	method, route string
	status        int
	detail        string
}

// Hold blocks one matching request until Release is called.
type Hold struct {
	method, path string
	arrived      chan struct{}
	release      chan struct{}
	once         sync.Once
}

// Arrived is closed once the held request reached the server.
func (h *Hold) Arrived() <-chan struct{} { return h.arrived }

func (h *Hold) Release() { h.once.Do(func() { close(h.release) }) }

type Server struct {
	mu       sync.Mutex
	nextID   int
	users    map[int]*user
	posts    map[int]*post
	comments map[int]*models.Comment
	follows  map[[2]int]bool
	tokens   map[string]int
	faults   []fault
	holds    []*Hold
	requests []string

	// VoidMutations makes like and follow answer 204 without a body.
	VoidMutations bool

	router chi.Router
}

func New() *Server {
	s := &Server{
		users:    map[int]*user{},
		posts:    map[int]*post{},
		comments: map[int]*models.Comment{},
		follows:  map[[2]int]bool{},
		tokens:   map[string]int{},
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/users/signup", s.wrap("/users/signup", s.signup))
	r.Post("/users/token", s.wrap("/users/token", s.token))
	r.Get("/users/me", s.wrap("/users/me", s.authed(s.me)))
	r.Get("/users/search", s.wrap("/users/search", s.searchUsers))
	r.Get("/users/{id}", s.wrap("/users/{id}", s.getUser))
	r.Put("/users/{id}", s.wrap("/users/{id}", s.authed(s.updateUser)))
	r.Put("/users/{id}/password", s.wrap("/users/{id}/password", s.authed(s.updatePassword)))
	r.Post("/users/{id}/follow", s.wrap("/users/{id}/follow", s.authed(s.follow(true))))
	r.Delete("/users/{id}/follow", s.wrap("/users/{id}/follow", s.authed(s.follow(false))))
	r.Get("/users/{id}/followers", s.wrap("/users/{id}/followers", s.followList(true)))
	r.Get("/users/{id}/following", s.wrap("/users/{id}/following", s.followList(false)))

	r.Get("/posts", s.wrap("/posts", s.listPosts))
	r.Post("/posts", s.wrap("/posts", s.authed(s.createPost)))
	r.Get("/posts/feed", s.wrap("/posts/feed", s.authed(s.feed)))
	r.Get("/posts/trending", s.wrap("/posts/trending", s.trending))
	r.Get("/posts/liked", s.wrap("/posts/liked", s.authed(s.liked)))
	r.Get("/posts/{id}", s.wrap("/posts/{id}", s.getPost))
	r.Put("/posts/{id}", s.wrap("/posts/{id}", s.authed(s.updatePost)))
	r.Delete("/posts/{id}", s.wrap("/posts/{id}", s.authed(s.deletePost)))
	r.Post("/posts/{id}/like", s.wrap("/posts/{id}/like", s.authed(s.like(true))))
	r.Delete("/posts/{id}/like", s.wrap("/posts/{id}/like", s.authed(s.like(false))))
	r.Get("/posts/{id}/comments", s.wrap("/posts/{id}/comments", s.listComments))
	r.Post("/posts/{id}/comments", s.wrap("/posts/{id}/comments", s.authed(s.createComment)))
	r.Put("/comments/{id}", s.wrap("/comments/{id}", s.authed(s.updateComment)))
	r.Delete("/comments/{id}", s.wrap("/comments/{id}", s.authed(s.deleteComment)))
	r.Get("/tags/{name}/posts", s.wrap("/tags/{name}/posts", s.tagPosts))

	return r
}

// ---- seeding and test controls ----

// AddUser creates an account and returns it.
func (s *Server) AddUser(email, username, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUser(email, username, "", password).User
}

// IssueToken returns a valid bearer token for userID.
func (s *Server) IssueToken(userID int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issue(userID)
}

// RevokeTokens invalidates every issued token.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	s.tokens = map[string]int{}
	s.mu.Unlock()
}

// AddPost creates a post by userID with baseLikes likes from unknown users.
func (s *Server) AddPost(userID int, content string, baseLikes int) models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.addPost(userID, content)
	p.baseLikes = baseLikes
	return s.view(p, 0)
}

// AddLike records a like on postID by userID.
func (s *Server) AddLike(postID, userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.posts[postID]; ok {
		p.likes[userID] = true
	}
}

// AddFollow records follower -> followee.
func (s *Server) AddFollow(follower, followee int) {
	s.mu.Lock()
	s.follows[[2]int{follower, followee}] = true
	s.mu.Unlock()
}

// AddComment creates a comment by userID on postID.
func (s *Server) AddComment(postID, userID int, content string) models.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.addComment(postID, userID, content)
	return *c
}

// Post returns postID as seen by viewer (0 for anonymous).
func (s *Server) Post(postID, viewer int) (models.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return models.Post{}, false
	}
	return s.view(p, viewer), true
}

// RemovePost deletes postID as if another session had deleted it.
func (s *Server) RemovePost(postID int) {
	s.mu.Lock()
	delete(s.posts, postID)
	s.mu.Unlock()
}

// Following reports whether follower follows followee.
func (s *Server) Following(follower, followee int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.follows[[2]int{follower, followee}]
}

// FailNext makes the next request to method and route pattern (e.g.
// "/posts/{id}/like") answer status.
func (s *Server) FailNext(method, route string, status int) {
	s.mu.Lock()
	s.faults = append(s.faults, fault{method: method, route: route, status: status, detail: http.StatusText(status)})
	s.mu.Unlock()
}

// Hold blocks the next request to method and concrete path until released.
// The request is processed after release, against the state at that time.
func (s *Server) Hold(method, path string) *Hold {
	h := &Hold{method: method, path: path, arrived: make(chan struct{}), release: make(chan struct{})}
	s.mu.Lock()
	s.holds = append(s.holds, h)
	s.mu.Unlock()
	return h
}

// Requests returns "METHOD /path" for every request received, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// ---- plumbing ----

type handler func(w http.ResponseWriter, r *http.Request, viewer int)

func (s *Server) wrap(route string, h handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		hold := s.takeHold(r.Method, r.URL.Path)
		f, failing := s.takeFault(r.Method, route)
		s.mu.Unlock()

		if hold != nil {
			close(hold.arrived)
			select {
			case <-hold.release:
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			writeError(w, f.status, f.detail)
			return
		}
		h(w, r, s.viewer(r))
	}
}

func (s *Server) authed(h handler) handler {
	return func(w http.ResponseWriter, r *http.Request, viewer int) {
		if viewer == 0 {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		h(w, r, viewer)
	}
}

func (s *Server) viewer(r *http.Request) int {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[auth[len(prefix):]]
}

// takeHold and takeFault must be called with mu held.
func (s *Server) takeHold(method, path string) *Hold {
	for i, h := range s.holds {
		if h.method == method && h.path == path {
			s.holds = append(s.holds[:i], s.holds[i+1:]...)
			return h
		}
	}
	return nil
}

func (s *Server) takeFault(method, route string) (fault, bool) {
	for i, f := range s.faults {
		if f.method == method && f.route == route {
			s.faults = append(s.faults[:i], s.faults[i+1:]...)
			return f, true
		}
	}
	return fault{}, false
}

func (s *Server) id() int {
	s.nextID++
	return s.nextID
}

func (s *Server) issue(userID int) string {
	tok := uuid.NewString()
	s.tokens[tok] = userID
	return tok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func pathID(r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "id"))
	return n, err == nil
}

func queryInt(r *http.Request, key string, def int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return n
	}
	return def
}

func page[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "invalid JSON body"}},
		})
		return false
	}
	return true
}

// sortedPosts returns posts matching keep, newest first.
func (s *Server) sortedPosts(keep func(*post) bool) []*post {
	out := make([]*post, 0, len(s.posts))
	for _, p := range s.posts {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id > out[j].id })
	return out
}

func (s *Server) views(ps []*post, viewer int) []models.Post {
	out := make([]models.Post, 0, len(ps))
	for _, p := range ps {
		out = append(out, s.view(p, viewer))
	}
	return out
}
