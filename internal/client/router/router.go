// Package router resolves client paths such as "/post/7" or
// "/search?q=ann" to routes and keeps the navigation history of the shell.
package router

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

type Name string

const (
	Home     Name = "home"
	Post     Name = "post"
	Profile  Name = "profile"
	Tag      Name = "tag"
	Search   Name = "search"
	Settings Name = "settings"
	SignIn   Name = "signin"
	SignUp   Name = "signup"
	NotFound Name = "not-found"
)

const (
	PathHome   = "/"
	PathSignIn = "/auth/signin"
	PathSignUp = "/auth/signup"
)

// Navigator is the navigation collaborator the views depend on.
type Navigator interface {
	Navigate(path string)
	Current() string
}

// Route is a matched path.
type Route struct {
	Name    Name
	Pattern string
	Path    string
	Params  map[string]string
	Query   url.Values
}

// IntParam returns the named path parameter as an integer.
func (r Route) IntParam(key string) (int, bool) {
	n, err := strconv.Atoi(r.Params[key])
	return n, err == nil
}

var table = []struct {
	name    Name
	pattern string
}{
	{Home, "/"},
	{Post, "/post/{postID}"},
	{Profile, "/profile/{userID}"},
	{Tag, "/tags/{tagName}"},
	{Search, "/search"},
	{Settings, "/settings"},
	{SignIn, PathSignIn},
	{SignUp, PathSignUp},
}

var (
	mux   *chi.Mux
	names = map[string]Name{}
)

func init() {
	mux = chi.NewRouter()
	noop := func(http.ResponseWriter, *http.Request) {}
	for _, r := range table {
		mux.Get(r.pattern, noop)
		names[r.pattern] = r.name
	}
}

// Match resolves path. Unknown paths yield a NotFound route.
func Match(path string) Route {
	p, query := split(path)
	route := Route{Name: NotFound, Path: p, Query: query, Params: map[string]string{}}

	rctx := chi.NewRouteContext()
	if !mux.Match(rctx, http.MethodGet, p) {
		return route
	}
	pattern := rctx.RoutePattern()
	route.Name, route.Pattern = names[pattern], pattern
	for i, k := range rctx.URLParams.Keys {
		if v, err := url.PathUnescape(rctx.URLParams.Values[i]); err == nil {
			route.Params[k] = v
		}
	}
	return route
}

// ParseQuery returns the query parameters of path.
func ParseQuery(path string) url.Values {
	_, q := split(path)
	return q
}

// Param returns one query parameter of path.
func Param(path, key string) string {
	return ParseQuery(path).Get(key)
}

// Protected reports whether the route is only shown to signed-in users.
func Protected(r Route) bool {
	return r.Name == Home || r.Name == Settings
}

// Guard redirects an anonymous visitor away from a protected route and
// reports whether the route may be shown.
func Guard(nav Navigator, r Route, authenticated bool) bool {
	if authenticated || !Protected(r) {
		return true
	}
	nav.Navigate(PathSignIn + "?next=" + url.QueryEscape(r.Path))
	return false
}

func split(path string) (string, url.Values) {
	p, raw, _ := strings.Cut(path, "?")
	if p == "" {
		p = "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	q, err := url.ParseQuery(raw)
	if err != nil {
		q = url.Values{}
	}
	return p, q
}

// History is an in-memory Navigator with a back stack.
type History struct {
	mu    sync.Mutex
	stack []string
}

func NewHistory(start string) *History {
	if start == "" {
		start = PathHome
	}
	return &History{stack: []string{start}}
}

func (h *History) Navigate(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stack[len(h.stack)-1] == path {
		return
	}
	h.stack = append(h.stack, path)
}

func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack[len(h.stack)-1]
}

// Back pops the current path. The first entry is never popped.
func (h *History) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.stack) < 2 {
		return false
	}
	h.stack = h.stack[:len(h.stack)-1]
	return true
}

// Path builders.

func PostPath(id int) string    { return "/post/" + strconv.Itoa(id) }
func ProfilePath(id int) string { return "/profile/" + strconv.Itoa(id) }
func TagPath(name string) string {
	return "/tags/" + url.PathEscape(name)
}
func SearchPath(q string) string {
	return "/search?q=" + url.QueryEscape(q)
}
