package views

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
)

// SearchView finds users by a substring of their username.
type SearchView struct {
	state
	d       *Deps
	query   string
	results []models.User
}

func NewSearchView(d *Deps) *SearchView {
	return &SearchView{d: d}
}

func (v *SearchView) Query() string { return v.query }

func (v *SearchView) Results() []models.User {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.User(nil), v.results...)
}

// Search runs query. An empty query clears the results without a request.
func (v *SearchView) Search(ctx context.Context, query string) ([]models.User, error) {
	v.query = strings.TrimSpace(query)
	v.clearNotice()
	if v.query == "" {
		v.setResults(nil)
		v.set(StatusIdle, nil)
		return nil, nil
	}

	v.set(StatusLoading, nil)
	users, err := v.d.Users.Search(ctx, v.query)
	if err != nil {
		v.setResults(nil)
		v.loadFailed(err, "Search failed. Please try again later.")
		return nil, err
	}
	v.setResults(users)
	v.set(StatusReady, nil)
	if len(users) == 0 {
		v.note(LevelInfo, "No users found.")
	}
	return users, nil
}

func (v *SearchView) setResults(users []models.User) {
	v.mu.Lock()
	v.results = users
	v.mu.Unlock()
}
